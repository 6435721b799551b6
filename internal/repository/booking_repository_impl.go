package repository

import (
	"errors"
	"time"

	"go-rental-marketplace/internal/domain/entity"
	domainRepo "go-rental-marketplace/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type bookingRepository struct{}

func NewBookingRepository() domainRepo.BookingRepository {
	return &bookingRepository{}
}

func (r *bookingRepository) Create(db *gorm.DB, booking *entity.Booking) error {
	return db.Create(booking).Error
}

func (r *bookingRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := db.Preload("Property").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payments.paid_at ASC")
		}).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("booking_messages.created_at ASC")
		}).
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// FindByUserID returns bookings where the user is either party.
func (r *bookingRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := db.Preload("Property").
		Where("renter_id = ? OR owner_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// CountConflicting counts approved/active bookings on the property whose
// half-open range [start_date, end_date) intersects [start, end).
// Touching endpoints do not conflict. Pending bookings never block.
func (r *bookingRepository) CountConflicting(db *gorm.DB, propertyID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (int64, error) {
	var count int64
	query := db.Model(&entity.Booking{}).
		Where("property_id = ?", propertyID).
		Where("status IN ?", []entity.BookingStatus{entity.BookingStatusApproved, entity.BookingStatusActive}).
		Where("start_date < ? AND ? < end_date", end, start)
	if excludeID != uuid.Nil {
		query = query.Where("id != ?", excludeID)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *bookingRepository) Update(db *gorm.DB, booking *entity.Booking) error {
	return db.Omit("Property", "Renter", "Owner", "Payments", "Messages").Save(booking).Error
}

func (r *bookingRepository) UpdatePaymentStatus(db *gorm.DB, id uuid.UUID, status entity.PaymentStatus) error {
	return db.Model(&entity.Booking{}).
		Where("id = ?", id).
		Update("payment_status", status).Error
}
