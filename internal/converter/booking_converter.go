package converter

import (
	"go-services-marketplace/internal/delivery/dto"
	"go-services-marketplace/internal/domain/entity"

	"github.com/google/uuid"
)

// BookingToResponse converts a Booking entity to BookingResponse DTO
func BookingToResponse(booking *entity.Booking) *dto.BookingResponse {
	if booking == nil {
		return nil
	}

	response := &dto.BookingResponse{
		ID:              booking.ID,
		ServiceID:       booking.ServiceID,
		CustomerID:      booking.CustomerID,
		ProviderID:      booking.ProviderID,
		Status:          string(booking.Status),
		ScheduledDate:   booking.ScheduledDate.Format("2006-01-02"),
		ScheduledTime:   booking.ScheduledTime,
		TotalAmount:     booking.TotalAmount,
		CustomerName:    booking.CustomerName,
		CustomerEmail:   booking.CustomerEmail,
		CustomerPhone:   booking.CustomerPhone,
		CustomerAddress: booking.CustomerAddress,
		Notes:           booking.Notes,
		CreatedAt:       booking.CreatedAt,
		UpdatedAt:       booking.UpdatedAt,
	}

	if booking.EvidenceURL != nil {
		response.EvidenceURL = *booking.EvidenceURL
	}

	// Include service info if preloaded
	if booking.Service.ID != uuid.Nil {
		response.Service = ServiceToResponse(&booking.Service)
	}

	return response
}

// BookingsToResponses converts a slice of Booking entities to BookingResponse DTOs
func BookingsToResponses(bookings []entity.Booking) []dto.BookingResponse {
	responses := make([]dto.BookingResponse, len(bookings))
	for i, booking := range bookings {
		resp := BookingToResponse(&booking)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
