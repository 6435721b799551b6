package converter

import (
	"go-rental-marketplace/internal/delivery/dto"
	"go-rental-marketplace/internal/domain/entity"

	"github.com/google/uuid"
)

// PropertyToResponse converts a Property entity to PropertyResponse DTO
func PropertyToResponse(property *entity.Property) *dto.PropertyResponse {
	if property == nil {
		return nil
	}

	response := &dto.PropertyResponse{
		ID:              property.ID,
		OwnerID:         property.OwnerID,
		Title:           property.Title,
		Description:     property.Description,
		PropertyType:    string(property.PropertyType),
		Address:         property.Address,
		City:            property.City,
		Bedrooms:        property.Bedrooms,
		Bathrooms:       property.Bathrooms,
		AreaSqm:         property.AreaSqm,
		MonthlyRent:     property.MonthlyRent,
		SecurityDeposit: property.SecurityDeposit,
		IsAvailable:     property.IsAvailable,
		CreatedAt:       property.CreatedAt,
		UpdatedAt:       property.UpdatedAt,
	}

	if property.Owner.ID != uuid.Nil {
		response.OwnerName = property.Owner.FullName
	}

	return response
}

// PropertiesToResponses converts a slice of Property entities to response DTOs
func PropertiesToResponses(properties []entity.Property) []dto.PropertyResponse {
	responses := make([]dto.PropertyResponse, len(properties))
	for i, property := range properties {
		resp := PropertyToResponse(&property)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
