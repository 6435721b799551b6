package repository

import (
	"go-rental-marketplace/internal/domain/entity"
	domainRepo "go-rental-marketplace/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type messageRepository struct{}

func NewMessageRepository() domainRepo.MessageRepository {
	return &messageRepository{}
}

func (r *messageRepository) Create(db *gorm.DB, message *entity.BookingMessage) error {
	return db.Create(message).Error
}

func (r *messageRepository) FindByBookingID(db *gorm.DB, bookingID uuid.UUID) ([]entity.BookingMessage, error) {
	var messages []entity.BookingMessage
	err := db.Where("booking_id = ?", bookingID).Order("created_at ASC").Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead flags everything the counterparty sent as read.
func (r *messageRepository) MarkRead(db *gorm.DB, bookingID, readerID uuid.UUID) (int64, error) {
	result := db.Model(&entity.BookingMessage{}).
		Where("booking_id = ? AND sender_id != ? AND is_read = ?", bookingID, readerID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}
