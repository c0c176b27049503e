package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go-services-marketplace/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidFile is returned before any upload is attempted
	ErrInvalidFile = errors.New("evidence file must be an image up to 5 MB")
)

// maxEvidenceBytes caps completion-evidence uploads
const maxEvidenceBytes = 5 << 20

// EvidenceStorage persists completion-evidence artifacts and returns a stable
// reference. Implementations must fail closed: no reference, no side effects.
type EvidenceStorage interface {
	Store(ctx context.Context, file io.Reader, contentType string, size int64) (string, error)
}

// CloudinaryStorage stores evidence images in a Cloudinary folder.
type CloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryStorage(cfg config.CloudinaryConfig) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	logrus.Info("Cloudinary storage initialized")

	return &CloudinaryStorage{cld: cld, folder: cfg.Folder}, nil
}

func (s *CloudinaryStorage) Store(ctx context.Context, file io.Reader, contentType string, size int64) (string, error) {
	if size <= 0 || size > maxEvidenceBytes {
		return "", ErrInvalidFile
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrInvalidFile
	}

	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:   s.folder,
		PublicID: uuid.New().String(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload evidence: %w", err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("evidence upload returned no URL: %s", result.Error.Message)
	}

	return result.SecureURL, nil
}
