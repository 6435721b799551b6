package repository

import (
	"go-rental-marketplace/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(db *gorm.DB, message *entity.BookingMessage) error
	FindByBookingID(db *gorm.DB, bookingID uuid.UUID) ([]entity.BookingMessage, error)
	// MarkRead flags all messages on the booking not sent by readerID.
	MarkRead(db *gorm.DB, bookingID, readerID uuid.UUID) (int64, error)
}
