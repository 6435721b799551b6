package usecase

import (
	"context"
	"testing"

	"go-rental-marketplace/internal/delivery/dto"
	"go-rental-marketplace/internal/domain/entity"
	"go-rental-marketplace/internal/repository"
	"go-rental-marketplace/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPropertyUsecaseForTest(t *testing.T) (PropertyUsecase, *bookingTestEnv) {
	t.Helper()

	env := newBookingTestEnv(t)

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	uc := NewPropertyUsecase(
		env.db,
		log,
		repository.NewPropertyRepository(),
		service.NewAuditService(log, repository.NewAuditLogRepository()),
	)
	return uc, env
}

func validCreatePropertyRequest() *dto.CreatePropertyRequest {
	return &dto.CreatePropertyRequest{
		Title:           "Quiet studio near the station",
		PropertyType:    "studio",
		Address:         "4 Mill Lane",
		City:            "Utrecht",
		Bedrooms:        1,
		Bathrooms:       1,
		AreaSqm:         35,
		MonthlyRent:     decimal.NewFromInt(850),
		SecurityDeposit: decimal.NewFromInt(850),
	}
}

func TestCreatePropertyStartsAvailable(t *testing.T) {
	uc, env := newPropertyUsecaseForTest(t)

	property, err := uc.CreateProperty(context.Background(), env.owner.ID, validCreatePropertyRequest())
	require.NoError(t, err)

	assert.True(t, property.IsAvailable)
	assert.Equal(t, env.owner.ID, property.OwnerID)
	assert.True(t, property.MonthlyRent.Equal(decimal.NewFromInt(850)))
}

func TestCreatePropertyRejectsNegativeMoney(t *testing.T) {
	uc, env := newPropertyUsecaseForTest(t)
	ctx := context.Background()

	req := validCreatePropertyRequest()
	req.MonthlyRent = decimal.NewFromInt(-1)
	_, err := uc.CreateProperty(ctx, env.owner.ID, req)
	assert.ErrorIs(t, err, ErrNegativeRent)

	req = validCreatePropertyRequest()
	req.SecurityDeposit = decimal.NewFromInt(-1)
	_, err = uc.CreateProperty(ctx, env.owner.ID, req)
	assert.ErrorIs(t, err, ErrNegativeDeposit)
}

func TestUpdatePropertyOwnershipGate(t *testing.T) {
	uc, env := newPropertyUsecaseForTest(t)
	ctx := context.Background()

	req := &dto.UpdatePropertyRequest{
		Title:        "Renamed listing",
		PropertyType: "apartment",
		Address:      "12 Harbour Street",
		City:         "Rotterdam",
		Bedrooms:     2,
		Bathrooms:    1,
		MonthlyRent:  decimal.NewFromInt(1100),
	}

	_, err := uc.UpdateProperty(ctx, env.property.ID, uuid.New(), req)
	assert.ErrorIs(t, err, ErrPropertyNotOwned)

	_, err = uc.UpdateProperty(ctx, uuid.New(), env.owner.ID, req)
	assert.ErrorIs(t, err, ErrPropertyNotFound)

	updated, err := uc.UpdateProperty(ctx, env.property.ID, env.owner.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Renamed listing", updated.Title)
	assert.True(t, updated.MonthlyRent.Equal(decimal.NewFromInt(1100)))
}

func TestSetAvailabilityRelists(t *testing.T) {
	uc, env := newPropertyUsecaseForTest(t)
	ctx := context.Background()

	delisted, err := uc.SetAvailability(ctx, env.property.ID, env.owner.ID, false)
	require.NoError(t, err)
	assert.False(t, delisted.IsAvailable)

	relisted, err := uc.SetAvailability(ctx, env.property.ID, env.owner.ID, true)
	require.NoError(t, err)
	assert.True(t, relisted.IsAvailable)

	// Re-listing leaves an audit trail entry
	var count int64
	require.NoError(t, env.db.Model(&entity.AuditLog{}).
		Where("action = ?", entity.AuditActionPropertyRelist).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	_, err = uc.SetAvailability(ctx, env.property.ID, uuid.New(), true)
	assert.ErrorIs(t, err, ErrPropertyNotOwned)
}

func TestDeleteProperty(t *testing.T) {
	uc, env := newPropertyUsecaseForTest(t)
	ctx := context.Background()

	require.NoError(t, uc.DeleteProperty(ctx, env.property.ID, env.owner.ID))

	_, err := uc.GetProperty(ctx, env.property.ID)
	assert.ErrorIs(t, err, ErrPropertyNotFound)

	err = uc.DeleteProperty(ctx, env.property.ID, env.owner.ID)
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestListByOwner(t *testing.T) {
	uc, env := newPropertyUsecaseForTest(t)
	ctx := context.Background()

	_, err := uc.CreateProperty(ctx, env.owner.ID, validCreatePropertyRequest())
	require.NoError(t, err)

	list, err := uc.ListByOwner(ctx, env.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)

	empty, err := uc.ListByOwner(ctx, env.renter.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Total)
}
