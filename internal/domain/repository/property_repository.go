package repository

import (
	"go-rental-marketplace/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PropertyRepository interface {
	Create(db *gorm.DB, property *entity.Property) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Property, error)
	FindByOwnerID(db *gorm.DB, ownerID uuid.UUID) ([]entity.Property, error)
	FindAll(db *gorm.DB, filter *entity.PropertyFilter) ([]entity.Property, error)
	Update(db *gorm.DB, property *entity.Property) error
	SetAvailability(db *gorm.DB, id uuid.UUID, available bool) (int64, error)
	Delete(db *gorm.DB, id uuid.UUID) (int64, error)
}
