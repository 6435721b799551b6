package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreatePropertyRequest struct {
	Title           string          `json:"title" validate:"required,min=3,max=255"`
	Description     string          `json:"description" validate:"omitempty,max=5000"`
	PropertyType    string          `json:"property_type" validate:"required,oneof=apartment house studio room"`
	Address         string          `json:"address" validate:"required,max=500"`
	City            string          `json:"city" validate:"required,max=100"`
	Bedrooms        int             `json:"bedrooms" validate:"gte=0,lte=50"`
	Bathrooms       int             `json:"bathrooms" validate:"gte=0,lte=50"`
	AreaSqm         int             `json:"area_sqm" validate:"gte=0"`
	MonthlyRent     decimal.Decimal `json:"monthly_rent" validate:"required"`
	SecurityDeposit decimal.Decimal `json:"security_deposit"`
}

type UpdatePropertyRequest struct {
	Title           string          `json:"title" validate:"required,min=3,max=255"`
	Description     string          `json:"description" validate:"omitempty,max=5000"`
	PropertyType    string          `json:"property_type" validate:"required,oneof=apartment house studio room"`
	Address         string          `json:"address" validate:"required,max=500"`
	City            string          `json:"city" validate:"required,max=100"`
	Bedrooms        int             `json:"bedrooms" validate:"gte=0,lte=50"`
	Bathrooms       int             `json:"bathrooms" validate:"gte=0,lte=50"`
	AreaSqm         int             `json:"area_sqm" validate:"gte=0"`
	MonthlyRent     decimal.Decimal `json:"monthly_rent" validate:"required"`
	SecurityDeposit decimal.Decimal `json:"security_deposit"`
}

type SetAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" validate:"required"`
}

// Response DTOs

type PropertyResponse struct {
	ID              uuid.UUID       `json:"id"`
	OwnerID         uuid.UUID       `json:"owner_id"`
	OwnerName       string          `json:"owner_name,omitempty"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	PropertyType    string          `json:"property_type"`
	Address         string          `json:"address"`
	City            string          `json:"city"`
	Bedrooms        int             `json:"bedrooms"`
	Bathrooms       int             `json:"bathrooms"`
	AreaSqm         int             `json:"area_sqm"`
	MonthlyRent     decimal.Decimal `json:"monthly_rent"`
	SecurityDeposit decimal.Decimal `json:"security_deposit"`
	IsAvailable     bool            `json:"is_available"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type PropertyListResponse struct {
	Properties []PropertyResponse `json:"properties"`
	Total      int                `json:"total"`
}
