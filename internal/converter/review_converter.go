package converter

import (
	"go-services-marketplace/internal/delivery/dto"
	"go-services-marketplace/internal/domain/entity"

	"github.com/google/uuid"
)

// ReviewToResponse converts a Review entity to ReviewResponse DTO
func ReviewToResponse(review *entity.Review) *dto.ReviewResponse {
	if review == nil {
		return nil
	}

	response := &dto.ReviewResponse{
		ID:         review.ID,
		BookingID:  review.BookingID,
		ServiceID:  review.ServiceID,
		CustomerID: review.CustomerID,
		Rating:     review.Rating,
		Comment:    review.Comment,
		CreatedAt:  review.CreatedAt,
	}

	if review.Customer.ID != uuid.Nil {
		response.CustomerName = review.Customer.FullName
	}

	return response
}

// ReviewsToResponses converts a slice of Review entities to ReviewResponse DTOs
func ReviewsToResponses(reviews []entity.Review) []dto.ReviewResponse {
	responses := make([]dto.ReviewResponse, len(reviews))
	for i, review := range reviews {
		resp := ReviewToResponse(&review)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
