package converter

import (
	"go-services-marketplace/internal/delivery/dto"
	"go-services-marketplace/internal/domain/entity"

	"github.com/google/uuid"
)

// ServiceToResponse converts a Service entity to ServiceResponse DTO
func ServiceToResponse(service *entity.Service) *dto.ServiceResponse {
	if service == nil {
		return nil
	}

	response := &dto.ServiceResponse{
		ID:          service.ID,
		ProviderID:  service.ProviderID,
		Title:       service.Title,
		Description: service.Description,
		Category:    service.Category,
		Price:       service.Price,
		Address:     service.Address,
		IsActive:    service.IsActive,
		CreatedAt:   service.CreatedAt,
		UpdatedAt:   service.UpdatedAt,
	}

	if service.Provider.ID != uuid.Nil {
		response.ProviderName = service.Provider.FullName
	}

	return response
}

// ServicesToResponses converts a slice of Service entities to ServiceResponse DTOs
func ServicesToResponses(services []entity.Service) []dto.ServiceResponse {
	responses := make([]dto.ServiceResponse, len(services))
	for i, service := range services {
		resp := ServiceToResponse(&service)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
