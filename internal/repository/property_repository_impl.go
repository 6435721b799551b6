package repository

import (
	"errors"

	"go-rental-marketplace/internal/domain/entity"
	domainRepo "go-rental-marketplace/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type propertyRepository struct{}

func NewPropertyRepository() domainRepo.PropertyRepository {
	return &propertyRepository{}
}

func (r *propertyRepository) Create(db *gorm.DB, property *entity.Property) error {
	return db.Create(property).Error
}

func (r *propertyRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Property, error) {
	var property entity.Property
	err := db.Preload("Owner").Where("id = ?", id).First(&property).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &property, nil
}

func (r *propertyRepository) FindByOwnerID(db *gorm.DB, ownerID uuid.UUID) ([]entity.Property, error) {
	var properties []entity.Property
	err := db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&properties).Error
	if err != nil {
		return nil, err
	}
	return properties, nil
}

// FindAll returns listings matching the filter, only for active owners.
func (r *propertyRepository) FindAll(db *gorm.DB, filter *entity.PropertyFilter) ([]entity.Property, error) {
	var properties []entity.Property
	query := db.
		Joins("JOIN users ON users.id = properties.owner_id").
		Where("users.is_active = ?", true)

	if filter != nil {
		if filter.City != "" {
			query = query.Where("properties.city ILIKE ?", "%"+filter.City+"%")
		}
		if filter.PropertyType != "" {
			query = query.Where("properties.property_type = ?", filter.PropertyType)
		}
		if filter.MinBedrooms > 0 {
			query = query.Where("properties.bedrooms >= ?", filter.MinBedrooms)
		}
		if filter.MaxRent != "" {
			query = query.Where("properties.monthly_rent <= ?", filter.MaxRent)
		}
		if filter.AvailableOnly {
			query = query.Where("properties.is_available = ?", true)
		}
	}

	err := query.Preload("Owner").Order("properties.created_at DESC").Find(&properties).Error
	if err != nil {
		return nil, err
	}
	return properties, nil
}

func (r *propertyRepository) Update(db *gorm.DB, property *entity.Property) error {
	return db.Omit("Owner").Save(property).Error
}

// SetAvailability flips the availability flag directly, returning
// affected rows (0 = property missing).
func (r *propertyRepository) SetAvailability(db *gorm.DB, id uuid.UUID, available bool) (int64, error) {
	result := db.Model(&entity.Property{}).
		Where("id = ?", id).
		Update("is_available", available)
	return result.RowsAffected, result.Error
}

func (r *propertyRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.Property{})
	return result.RowsAffected, result.Error
}
