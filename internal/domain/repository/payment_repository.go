package repository

import (
	"go-rental-marketplace/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentRepository is append-only: the ledger has no update or delete.
type PaymentRepository interface {
	Create(db *gorm.DB, payment *entity.Payment) error
	FindByBookingID(db *gorm.DB, bookingID uuid.UUID) ([]entity.Payment, error)
	SumByBookingID(db *gorm.DB, bookingID uuid.UUID) (decimal.Decimal, error)
}
