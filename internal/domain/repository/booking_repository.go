package repository

import (
	"time"

	"go-rental-marketplace/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(db *gorm.DB, booking *entity.Booking) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Booking, error)
	FindByUserID(db *gorm.DB, userID uuid.UUID) ([]entity.Booking, error)
	// CountConflicting counts approved/active bookings on the property
	// whose half-open date range intersects [start, end). excludeID
	// skips the booking being re-evaluated; uuid.Nil excludes nothing.
	CountConflicting(db *gorm.DB, propertyID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (int64, error)
	Update(db *gorm.DB, booking *entity.Booking) error
	UpdatePaymentStatus(db *gorm.DB, id uuid.UUID, status entity.PaymentStatus) error
}
