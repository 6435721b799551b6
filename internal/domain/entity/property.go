package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PropertyType categorizes a listing
type PropertyType string

const (
	PropertyTypeApartment PropertyType = "apartment"
	PropertyTypeHouse     PropertyType = "house"
	PropertyTypeStudio    PropertyType = "studio"
	PropertyTypeRoom      PropertyType = "room"
)

// Property represents a rental listing owned by an owner user.
// IsAvailable gates new booking requests: it is flipped off when a
// booking is approved and restored when that booking is cancelled or
// rejected. Completion does not auto-reopen the listing; the owner
// re-lists explicitly.
type Property struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"owner_id"`
	Title           string          `gorm:"type:varchar(255);not null" json:"title"`
	Description     string          `gorm:"type:text" json:"description,omitempty"`
	PropertyType    PropertyType    `gorm:"type:varchar(20);not null;default:'apartment'" json:"property_type"`
	Address         string          `gorm:"type:varchar(500);not null" json:"address"`
	City            string          `gorm:"type:varchar(100);not null;index" json:"city"`
	Bedrooms        int             `gorm:"not null;default:1" json:"bedrooms"`
	Bathrooms       int             `gorm:"not null;default:1" json:"bathrooms"`
	AreaSqm         int             `gorm:"not null;default:0" json:"area_sqm"`
	MonthlyRent     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"monthly_rent"`
	SecurityDeposit decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"security_deposit"`
	IsAvailable     bool            `gorm:"not null;default:true;index" json:"is_available"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Owner    User      `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Bookings []Booking `gorm:"foreignKey:PropertyID" json:"bookings,omitempty"`
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Property) TableName() string {
	return "properties"
}
