package usecase

import (
	"context"
	"errors"

	"go-rental-marketplace/internal/converter"
	"go-rental-marketplace/internal/delivery/dto"
	"go-rental-marketplace/internal/domain/entity"
	"go-rental-marketplace/internal/domain/repository"
	"go-rental-marketplace/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrPropertyNotOwned = errors.New("property does not belong to you")
	ErrNegativeRent     = errors.New("monthly rent must not be negative")
	ErrNegativeDeposit  = errors.New("security deposit must not be negative")
)

type PropertyUsecase interface {
	CreateProperty(ctx context.Context, ownerID uuid.UUID, req *dto.CreatePropertyRequest) (*dto.PropertyResponse, error)
	UpdateProperty(ctx context.Context, propertyID, ownerID uuid.UUID, req *dto.UpdatePropertyRequest) (*dto.PropertyResponse, error)
	DeleteProperty(ctx context.Context, propertyID, ownerID uuid.UUID) error
	SetAvailability(ctx context.Context, propertyID, ownerID uuid.UUID, available bool) (*dto.PropertyResponse, error)
	GetProperty(ctx context.Context, propertyID uuid.UUID) (*dto.PropertyResponse, error)
	ListProperties(ctx context.Context, filter *entity.PropertyFilter) (*dto.PropertyListResponse, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) (*dto.PropertyListResponse, error)
}

type propertyUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	propertyRepo repository.PropertyRepository
	auditService service.AuditService
}

func NewPropertyUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	propertyRepo repository.PropertyRepository,
	auditService service.AuditService,
) PropertyUsecase {
	return &propertyUsecase{
		db:           db,
		log:          log,
		propertyRepo: propertyRepo,
		auditService: auditService,
	}
}

func (u *propertyUsecase) CreateProperty(ctx context.Context, ownerID uuid.UUID, req *dto.CreatePropertyRequest) (*dto.PropertyResponse, error) {
	if req.MonthlyRent.IsNegative() {
		return nil, ErrNegativeRent
	}
	if req.SecurityDeposit.IsNegative() {
		return nil, ErrNegativeDeposit
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	property := &entity.Property{
		OwnerID:         ownerID,
		Title:           req.Title,
		Description:     req.Description,
		PropertyType:    entity.PropertyType(req.PropertyType),
		Address:         req.Address,
		City:            req.City,
		Bedrooms:        req.Bedrooms,
		Bathrooms:       req.Bathrooms,
		AreaSqm:         req.AreaSqm,
		MonthlyRent:     req.MonthlyRent,
		SecurityDeposit: req.SecurityDeposit,
		IsAvailable:     true,
	}

	if err := u.propertyRepo.Create(tx, property); err != nil {
		u.log.Warnf("Failed to create property: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogAction(ctx, tx, &ownerID, entity.AuditActionPropertyCreate, "property", property.ID.String(), entity.JSON{
		"title": property.Title,
		"city":  property.City,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.PropertyToResponse(property), nil
}

func (u *propertyUsecase) UpdateProperty(ctx context.Context, propertyID, ownerID uuid.UUID, req *dto.UpdatePropertyRequest) (*dto.PropertyResponse, error) {
	if req.MonthlyRent.IsNegative() {
		return nil, ErrNegativeRent
	}
	if req.SecurityDeposit.IsNegative() {
		return nil, ErrNegativeDeposit
	}

	property, err := u.loadOwned(ctx, propertyID, ownerID)
	if err != nil {
		return nil, err
	}

	property.Title = req.Title
	property.Description = req.Description
	property.PropertyType = entity.PropertyType(req.PropertyType)
	property.Address = req.Address
	property.City = req.City
	property.Bedrooms = req.Bedrooms
	property.Bathrooms = req.Bathrooms
	property.AreaSqm = req.AreaSqm
	property.MonthlyRent = req.MonthlyRent
	property.SecurityDeposit = req.SecurityDeposit

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.propertyRepo.Update(tx, property); err != nil {
		u.log.Warnf("Failed to update property %s: %+v", propertyID, err)
		return nil, err
	}

	if err := u.auditService.LogAction(ctx, tx, &ownerID, entity.AuditActionPropertyUpdate, "property", property.ID.String(), entity.JSON{
		"title": property.Title,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.PropertyToResponse(property), nil
}

func (u *propertyUsecase) DeleteProperty(ctx context.Context, propertyID, ownerID uuid.UUID) error {
	if _, err := u.loadOwned(ctx, propertyID, ownerID); err != nil {
		return err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	rows, err := u.propertyRepo.Delete(tx, propertyID)
	if err != nil {
		u.log.Warnf("Failed to delete property %s: %+v", propertyID, err)
		return err
	}
	if rows == 0 {
		return ErrPropertyNotFound
	}

	if err := u.auditService.LogAction(ctx, tx, &ownerID, entity.AuditActionPropertyDelete, "property", propertyID.String(), nil); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}
	return nil
}

// SetAvailability is the owner's explicit re-list / un-list switch. It
// is also how a property comes back on the market after a completed
// lease, which never reopens it automatically.
func (u *propertyUsecase) SetAvailability(ctx context.Context, propertyID, ownerID uuid.UUID, available bool) (*dto.PropertyResponse, error) {
	property, err := u.loadOwned(ctx, propertyID, ownerID)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if _, err := u.propertyRepo.SetAvailability(tx, propertyID, available); err != nil {
		u.log.Warnf("Failed to set availability for property %s: %+v", propertyID, err)
		return nil, err
	}

	if available {
		if err := u.auditService.LogAction(ctx, tx, &ownerID, entity.AuditActionPropertyRelist, "property", propertyID.String(), nil); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	property.IsAvailable = available
	return converter.PropertyToResponse(property), nil
}

func (u *propertyUsecase) GetProperty(ctx context.Context, propertyID uuid.UUID) (*dto.PropertyResponse, error) {
	property, err := u.propertyRepo.FindByID(u.db.WithContext(ctx), propertyID)
	if err != nil {
		u.log.Warnf("Failed to find property %s: %+v", propertyID, err)
		return nil, err
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}
	return converter.PropertyToResponse(property), nil
}

func (u *propertyUsecase) ListProperties(ctx context.Context, filter *entity.PropertyFilter) (*dto.PropertyListResponse, error) {
	properties, err := u.propertyRepo.FindAll(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list properties: %+v", err)
		return nil, err
	}
	return &dto.PropertyListResponse{
		Properties: converter.PropertiesToResponses(properties),
		Total:      len(properties),
	}, nil
}

func (u *propertyUsecase) ListByOwner(ctx context.Context, ownerID uuid.UUID) (*dto.PropertyListResponse, error) {
	properties, err := u.propertyRepo.FindByOwnerID(u.db.WithContext(ctx), ownerID)
	if err != nil {
		u.log.Warnf("Failed to list properties for owner %s: %+v", ownerID, err)
		return nil, err
	}
	return &dto.PropertyListResponse{
		Properties: converter.PropertiesToResponses(properties),
		Total:      len(properties),
	}, nil
}

func (u *propertyUsecase) loadOwned(ctx context.Context, propertyID, ownerID uuid.UUID) (*entity.Property, error) {
	property, err := u.propertyRepo.FindByID(u.db.WithContext(ctx), propertyID)
	if err != nil {
		u.log.Warnf("Failed to find property %s: %+v", propertyID, err)
		return nil, err
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}
	if property.OwnerID != ownerID {
		return nil, ErrPropertyNotOwned
	}
	return property, nil
}
