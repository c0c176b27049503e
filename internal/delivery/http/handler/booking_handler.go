package handler

import (
	"encoding/json"
	"net/http"

	"go-services-marketplace/internal/delivery/dto"
	"go-services-marketplace/internal/domain/entity"
	"go-services-marketplace/internal/infrastructure/storage"
	"go-services-marketplace/internal/usecase"
	"go-services-marketplace/pkg/response"
	"go-services-marketplace/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type BookingHandler struct {
	bookingUsecase usecase.BookingUsecase
	validator      *validator.CustomValidator
}

func NewBookingHandler(bookingUsecase usecase.BookingUsecase, validator *validator.CustomValidator) *BookingHandler {
	return &BookingHandler{
		bookingUsecase: bookingUsecase,
		validator:      validator,
	}
}

// Create handles booking creation by a customer
// @Summary Create a booking
// @Description Book a service at a scheduled date and time
// @Tags Bookings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Create Booking Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /bookings [post]
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	booking, err := h.bookingUsecase.CreateBooking(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrServiceNotFound:
			response.NotFound(w, "Service not found")
		case usecase.ErrInvalidScheduleDate, usecase.ErrInvalidTimeFormat:
			response.BadRequest(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to create booking")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Booking created successfully", booking)
}

// Get handles retrieving a single booking
// @Summary Get a booking
// @Description Get a booking visible to its customer, its provider or an admin
// @Tags Bookings
// @Security BearerAuth
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	booking, err := h.bookingUsecase.GetBooking(r.Context(), bookingID)
	if err != nil {
		h.writeBookingError(w, err, "Failed to get booking")
		return
	}

	response.Success(w, http.StatusOK, "Booking retrieved successfully", booking)
}

// GetMine handles listing the logged-in customer's bookings
// @Summary List my bookings
// @Tags Bookings
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /bookings [get]
func (h *BookingHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookingUsecase.GetMyBookings(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to list bookings")
		return
	}

	response.Success(w, http.StatusOK, "Bookings retrieved successfully", bookings)
}

// GetProviderBookings handles listing bookings addressed to the provider
// @Summary List provider bookings
// @Tags Bookings
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /provider/bookings [get]
func (h *BookingHandler) GetProviderBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookingUsecase.GetProviderBookings(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to list bookings")
		return
	}

	response.Success(w, http.StatusOK, "Bookings retrieved successfully", bookings)
}

// UpdateStatus handles booking status transitions
// @Summary Change booking status
// @Description Request a status transition (confirm, reject, start, cancel)
// @Tags Bookings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.UpdateBookingStatusRequest true "Update Status Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /bookings/{id}/status [patch]
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	var req dto.UpdateBookingStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	booking, err := h.bookingUsecase.Transition(r.Context(), bookingID, &req)
	if err != nil {
		h.writeBookingError(w, err, "Failed to update booking status")
		return
	}

	response.Success(w, http.StatusOK, "Booking status updated successfully", booking)
}

// Complete handles the evidence-gated completion of a booking
// @Summary Complete a booking
// @Description Upload completion evidence and move the booking to completed
// @Tags Bookings
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Booking ID"
// @Param evidence formData file true "Completion evidence image"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /bookings/{id}/complete [post]
func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	file, header, err := r.FormFile("evidence")
	if err != nil {
		response.BadRequest(w, "Evidence file is required")
		return
	}
	defer file.Close()

	booking, err := h.bookingUsecase.CompleteBooking(r.Context(), bookingID, file, header.Header.Get("Content-Type"), header.Size)
	if err != nil {
		h.writeBookingError(w, err, "Failed to complete booking")
		return
	}

	response.Success(w, http.StatusOK, "Booking completed successfully", booking)
}

// Delete handles removal of an inactive booking
// @Summary Delete a booking
// @Description Delete a pending, cancelled or rejected booking
// @Tags Bookings
// @Security BearerAuth
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	if err := h.bookingUsecase.DeleteBooking(r.Context(), bookingID); err != nil {
		h.writeBookingError(w, err, "Failed to delete booking")
		return
	}

	response.Success(w, http.StatusOK, "Booking deleted successfully", nil)
}

func (h *BookingHandler) writeBookingError(w http.ResponseWriter, err error, fallback string) {
	switch err {
	case usecase.ErrBookingNotFound:
		response.NotFound(w, "Booking not found")
	case usecase.ErrBookingAccessDenied, entity.ErrActorNotAllowed:
		response.Forbidden(w, err.Error())
	case usecase.ErrInvalidStatusValue, entity.ErrTransitionTooEarly, entity.ErrEvidenceRequired, storage.ErrInvalidFile:
		response.BadRequest(w, err.Error())
	case entity.ErrInvalidTransition, usecase.ErrBookingConflict, usecase.ErrBookingNotInProgress, usecase.ErrBookingNotDeletable:
		response.Conflict(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}
