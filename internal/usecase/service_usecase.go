package usecase

import (
	"context"
	"errors"

	"go-services-marketplace/internal/converter"
	"go-services-marketplace/internal/delivery/dto"
	"go-services-marketplace/internal/delivery/http/middleware"
	"go-services-marketplace/internal/domain/entity"
	"go-services-marketplace/internal/domain/repository"
	"go-services-marketplace/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrServiceNotOwned = errors.New("service does not belong to you")

type ServiceUsecase interface {
	Create(ctx context.Context, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error)
	GetAll(ctx context.Context, page, limit int) (*dto.ServiceListResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ServiceResponse, error)
	GetMine(ctx context.Context) (*dto.ServiceListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateServiceRequest) (*dto.ServiceResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type serviceUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	serviceRepo  repository.ServiceRepository
	auditService service.AuditService
}

func NewServiceUsecase(db *gorm.DB, log *logrus.Logger, serviceRepo repository.ServiceRepository, auditService service.AuditService) ServiceUsecase {
	return &serviceUsecase{
		db:           db,
		log:          log,
		serviceRepo:  serviceRepo,
		auditService: auditService,
	}
}

func (u *serviceUsecase) Create(ctx context.Context, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error) {
	providerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	svc := &entity.Service{
		ProviderID:  providerID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Address:     req.Address,
	}

	if err := u.serviceRepo.Create(u.db.WithContext(ctx), svc); err != nil {
		u.log.Warnf("Failed to create service: %+v", err)
		return nil, err
	}

	u.auditService.LogCreate(u.db.WithContext(ctx), &providerID, entity.AuditActionServiceCreate,
		"service", svc.ID.String(), svc.Title)

	return converter.ServiceToResponse(svc), nil
}

func (u *serviceUsecase) GetAll(ctx context.Context, page, limit int) (*dto.ServiceListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	services, total, err := u.serviceRepo.FindAll(u.db.WithContext(ctx), limit, offset)
	if err != nil {
		u.log.Warnf("Failed to list services: %+v", err)
		return nil, err
	}

	return &dto.ServiceListResponse{
		Services: converter.ServicesToResponses(services),
		Total:    total,
	}, nil
}

func (u *serviceUsecase) GetByID(ctx context.Context, id uuid.UUID) (*dto.ServiceResponse, error) {
	svc, err := u.serviceRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find service %s: %+v", id, err)
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}

	return converter.ServiceToResponse(svc), nil
}

func (u *serviceUsecase) GetMine(ctx context.Context) (*dto.ServiceListResponse, error) {
	providerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	services, err := u.serviceRepo.FindByProviderID(u.db.WithContext(ctx), providerID)
	if err != nil {
		u.log.Warnf("Failed to list services for provider %s: %+v", providerID, err)
		return nil, err
	}

	return &dto.ServiceListResponse{
		Services: converter.ServicesToResponses(services),
		Total:    int64(len(services)),
	}, nil
}

func (u *serviceUsecase) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateServiceRequest) (*dto.ServiceResponse, error) {
	svc, err := u.loadOwned(ctx, id)
	if err != nil {
		return nil, err
	}

	svc.Title = req.Title
	svc.Description = req.Description
	svc.Category = req.Category
	svc.Price = req.Price
	svc.Address = req.Address
	if req.IsActive != nil {
		svc.IsActive = req.IsActive
	}

	if err := u.serviceRepo.Update(u.db.WithContext(ctx), svc); err != nil {
		u.log.Warnf("Failed to update service %s: %+v", id, err)
		return nil, err
	}

	providerID := svc.ProviderID
	u.auditService.LogUpdate(u.db.WithContext(ctx), &providerID, entity.AuditActionServiceUpdate,
		"service", svc.ID.String(), nil, svc.Title)

	return converter.ServiceToResponse(svc), nil
}

func (u *serviceUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	svc, err := u.loadOwned(ctx, id)
	if err != nil {
		return err
	}

	if err := u.serviceRepo.Delete(u.db.WithContext(ctx), id); err != nil {
		u.log.Warnf("Failed to delete service %s: %+v", id, err)
		return err
	}

	providerID := svc.ProviderID
	u.auditService.LogDelete(u.db.WithContext(ctx), &providerID, entity.AuditActionServiceDelete,
		"service", svc.ID.String(), svc.Title)

	return nil
}

func (u *serviceUsecase) loadOwned(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	providerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	svc, err := u.serviceRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find service %s: %+v", id, err)
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}
	if svc.ProviderID != providerID {
		return nil, ErrServiceNotOwned
	}

	return svc, nil
}
