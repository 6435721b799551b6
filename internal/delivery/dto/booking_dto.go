package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateBookingRequest struct {
	PropertyID     uuid.UUID `json:"property_id" validate:"required"`
	StartDate      string    `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate        string    `json:"end_date" validate:"required,datetime=2006-01-02"`
	SpecialRequest string    `json:"special_request" validate:"omitempty,max=2000"`
}

type SetBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected active completed cancelled"`
	Reason string `json:"reason" validate:"omitempty,max=2000"`
}

type AddPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Method        string          `json:"method" validate:"required,oneof=bank_transfer card cash other"`
	TransactionID string          `json:"transaction_id" validate:"omitempty,max=100"`
	Description   string          `json:"description" validate:"omitempty,max=2000"`
}

type AddMessageRequest struct {
	Body string `json:"body" validate:"required,min=1,max=5000"`
}

// Response DTOs

type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	PaidBy        uuid.UUID       `json:"paid_by"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Description   string          `json:"description,omitempty"`
	PaidAt        time.Time       `json:"paid_at"`
}

type MessageResponse struct {
	ID        uuid.UUID `json:"id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Body      string    `json:"body"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type BookingResponse struct {
	ID                 uuid.UUID         `json:"id"`
	PropertyID         uuid.UUID         `json:"property_id"`
	RenterID           uuid.UUID         `json:"renter_id"`
	OwnerID            uuid.UUID         `json:"owner_id"`
	StartDate          string            `json:"start_date"`
	EndDate            string            `json:"end_date"`
	MonthlyRent        decimal.Decimal   `json:"monthly_rent"`
	SecurityDeposit    decimal.Decimal   `json:"security_deposit"`
	TotalAmount        decimal.Decimal   `json:"total_amount"`
	Status             string            `json:"status"`
	PaymentStatus      string            `json:"payment_status"`
	SpecialRequest     string            `json:"special_request,omitempty"`
	CancelledBy        *uuid.UUID        `json:"cancelled_by,omitempty"`
	CancellationReason string            `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time        `json:"cancelled_at,omitempty"`
	Property           *PropertyResponse `json:"property,omitempty"`
	Payments           []PaymentResponse `json:"payments,omitempty"`
	Messages           []MessageResponse `json:"messages,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}
