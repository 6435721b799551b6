package converter

import (
	"go-rental-marketplace/internal/delivery/dto"
	"go-rental-marketplace/internal/domain/entity"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// BookingToResponse converts a Booking entity to BookingResponse DTO
func BookingToResponse(booking *entity.Booking) *dto.BookingResponse {
	if booking == nil {
		return nil
	}

	response := &dto.BookingResponse{
		ID:                 booking.ID,
		PropertyID:         booking.PropertyID,
		RenterID:           booking.RenterID,
		OwnerID:            booking.OwnerID,
		StartDate:          booking.StartDate.Format(dateLayout),
		EndDate:            booking.EndDate.Format(dateLayout),
		MonthlyRent:        booking.MonthlyRent,
		SecurityDeposit:    booking.SecurityDeposit,
		TotalAmount:        booking.TotalAmount,
		Status:             string(booking.Status),
		PaymentStatus:      string(booking.PaymentStatus),
		SpecialRequest:     booking.SpecialRequest,
		CancelledBy:        booking.CancelledBy,
		CancellationReason: booking.CancellationReason,
		CancelledAt:        booking.CancelledAt,
		CreatedAt:          booking.CreatedAt,
		UpdatedAt:          booking.UpdatedAt,
	}

	if booking.Property.ID != uuid.Nil {
		response.Property = PropertyToResponse(&booking.Property)
	}

	if len(booking.Payments) > 0 {
		response.Payments = PaymentsToResponses(booking.Payments)
	}
	if len(booking.Messages) > 0 {
		response.Messages = MessagesToResponses(booking.Messages)
	}

	return response
}

// BookingsToResponses converts a slice of Booking entities to response DTOs
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

// PaymentsToResponses converts ledger entries to response DTOs
func PaymentsToResponses(payments []entity.Payment) []dto.PaymentResponse {
	responses := make([]dto.PaymentResponse, len(payments))
	for i, payment := range payments {
		responses[i] = dto.PaymentResponse{
			ID:            payment.ID,
			PaidBy:        payment.PaidBy,
			Amount:        payment.Amount,
			Method:        string(payment.Method),
			TransactionID: payment.TransactionID,
			Description:   payment.Description,
			PaidAt:        payment.PaidAt,
		}
	}
	return responses
}

// MessagesToResponses converts communication log entries to response DTOs
func MessagesToResponses(messages []entity.BookingMessage) []dto.MessageResponse {
	responses := make([]dto.MessageResponse, len(messages))
	for i, message := range messages {
		responses[i] = dto.MessageResponse{
			ID:        message.ID,
			SenderID:  message.SenderID,
			Body:      message.Body,
			IsRead:    message.IsRead,
			CreatedAt: message.CreatedAt,
		}
	}
	return responses
}
