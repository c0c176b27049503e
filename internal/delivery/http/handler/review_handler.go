package handler

import (
	"encoding/json"
	"net/http"

	"go-services-marketplace/internal/delivery/dto"
	"go-services-marketplace/internal/usecase"
	"go-services-marketplace/pkg/response"
	"go-services-marketplace/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ReviewHandler struct {
	reviewUsecase usecase.ReviewUsecase
	validator     *validator.CustomValidator
}

func NewReviewHandler(reviewUsecase usecase.ReviewUsecase, validator *validator.CustomValidator) *ReviewHandler {
	return &ReviewHandler{
		reviewUsecase: reviewUsecase,
		validator:     validator,
	}
}

// Create handles review creation for a completed booking
// @Summary Review a completed booking
// @Tags Reviews
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateReviewRequest true "Create Review Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /reviews [post]
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	review, err := h.reviewUsecase.Create(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrBookingNotFound:
			response.NotFound(w, "Booking not found")
		case usecase.ErrBookingAccessDenied:
			response.Forbidden(w, err.Error())
		case usecase.ErrBookingNotCompleted, usecase.ErrBookingAlreadyReviewed:
			response.Conflict(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to create review")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Review created successfully", review)
}

// GetByService handles the public review listing for a service
// @Summary List reviews for a service
// @Tags Reviews
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} response.Response
// @Router /services/{id}/reviews [get]
func (h *ReviewHandler) GetByService(w http.ResponseWriter, r *http.Request) {
	serviceID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid service ID")
		return
	}

	reviews, err := h.reviewUsecase.GetByServiceID(r.Context(), serviceID)
	if err != nil {
		response.InternalServerError(w, "Failed to list reviews")
		return
	}

	response.Success(w, http.StatusOK, "Reviews retrieved successfully", reviews)
}
