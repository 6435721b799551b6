package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go-rental-marketplace/internal/delivery/dto"
	"go-rental-marketplace/internal/delivery/http/middleware"
	"go-rental-marketplace/internal/domain/entity"
	"go-rental-marketplace/internal/usecase"
	"go-rental-marketplace/pkg/response"
	"go-rental-marketplace/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type PropertyHandler struct {
	propertyUsecase usecase.PropertyUsecase
	validator       *validator.CustomValidator
}

func NewPropertyHandler(propertyUsecase usecase.PropertyUsecase, validator *validator.CustomValidator) *PropertyHandler {
	return &PropertyHandler{
		propertyUsecase: propertyUsecase,
		validator:       validator,
	}
}

func (h *PropertyHandler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.CreatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	property, err := h.propertyUsecase.CreateProperty(r.Context(), ownerID, &req)
	if err != nil {
		switch err {
		case usecase.ErrNegativeRent, usecase.ErrNegativeDeposit:
			response.Error(w, http.StatusBadRequest, err.Error(), nil)
		default:
			response.InternalServerError(w, "Failed to create property")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Property created successfully", property)
}

func (h *PropertyHandler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	propertyID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid property ID", nil)
		return
	}

	var req dto.UpdatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	property, err := h.propertyUsecase.UpdateProperty(r.Context(), propertyID, ownerID, &req)
	if err != nil {
		switch err {
		case usecase.ErrPropertyNotFound:
			response.NotFound(w, "Property not found")
		case usecase.ErrPropertyNotOwned:
			response.Forbidden(w, "Property does not belong to you")
		case usecase.ErrNegativeRent, usecase.ErrNegativeDeposit:
			response.Error(w, http.StatusBadRequest, err.Error(), nil)
		default:
			response.InternalServerError(w, "Failed to update property")
		}
		return
	}

	response.Success(w, http.StatusOK, "Property updated successfully", property)
}

func (h *PropertyHandler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	propertyID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid property ID", nil)
		return
	}

	if err := h.propertyUsecase.DeleteProperty(r.Context(), propertyID, ownerID); err != nil {
		switch err {
		case usecase.ErrPropertyNotFound:
			response.NotFound(w, "Property not found")
		case usecase.ErrPropertyNotOwned:
			response.Forbidden(w, "Property does not belong to you")
		default:
			response.InternalServerError(w, "Failed to delete property")
		}
		return
	}

	response.Success(w, http.StatusOK, "Property deleted successfully", nil)
}

func (h *PropertyHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	propertyID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid property ID", nil)
		return
	}

	var req dto.SetAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	property, err := h.propertyUsecase.SetAvailability(r.Context(), propertyID, ownerID, *req.IsAvailable)
	if err != nil {
		switch err {
		case usecase.ErrPropertyNotFound:
			response.NotFound(w, "Property not found")
		case usecase.ErrPropertyNotOwned:
			response.Forbidden(w, "Property does not belong to you")
		default:
			response.InternalServerError(w, "Failed to update availability")
		}
		return
	}

	response.Success(w, http.StatusOK, "Property availability updated successfully", property)
}

func (h *PropertyHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid property ID", nil)
		return
	}

	property, err := h.propertyUsecase.GetProperty(r.Context(), propertyID)
	if err != nil {
		switch err {
		case usecase.ErrPropertyNotFound:
			response.NotFound(w, "Property not found")
		default:
			response.InternalServerError(w, "Failed to get property")
		}
		return
	}

	response.Success(w, http.StatusOK, "Property retrieved successfully", property)
}

func (h *PropertyHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := &entity.PropertyFilter{
		City:         query.Get("city"),
		PropertyType: query.Get("type"),
		MaxRent:      query.Get("max_rent"),
	}
	if minBedrooms, err := strconv.Atoi(query.Get("min_bedrooms")); err == nil {
		filter.MinBedrooms = minBedrooms
	}
	if query.Get("available") == "true" {
		filter.AvailableOnly = true
	}

	properties, err := h.propertyUsecase.ListProperties(r.Context(), filter)
	if err != nil {
		response.InternalServerError(w, "Failed to list properties")
		return
	}

	response.Success(w, http.StatusOK, "Properties retrieved successfully", properties)
}

func (h *PropertyHandler) ListMyProperties(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	properties, err := h.propertyUsecase.ListByOwner(r.Context(), ownerID)
	if err != nil {
		response.InternalServerError(w, "Failed to list properties")
		return
	}

	response.Success(w, http.StatusOK, "Properties retrieved successfully", properties)
}
