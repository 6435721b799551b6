package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-rental-marketplace/internal/delivery/dto"
	"go-rental-marketplace/internal/domain/entity"
	"go-rental-marketplace/internal/repository"
	"go-rental-marketplace/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type bookingTestEnv struct {
	db       *gorm.DB
	uc       *bookingUsecase
	owner    *entity.User
	renter   *entity.User
	property *entity.Property
	now      time.Time
}

func newBookingTestEnv(t *testing.T) *bookingTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.Property{},
		&entity.Booking{},
		&entity.Payment{},
		&entity.BookingMessage{},
		&entity.AuditLog{},
	))
	require.NoError(t, repository.NewRoleRepository().EnsureDefaults(context.Background(), db))

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	env := &bookingTestEnv{
		db:  db,
		now: time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC),
	}

	auditService := service.NewAuditService(log, repository.NewAuditLogRepository())
	uc := NewBookingUsecase(
		db,
		log,
		repository.NewBookingRepository(),
		repository.NewPropertyRepository(),
		repository.NewPaymentRepository(),
		repository.NewMessageRepository(),
		service.NewLocalPropertyLock(),
		auditService,
	).(*bookingUsecase)
	uc.now = func() time.Time { return env.now }
	env.uc = uc

	env.owner = &entity.User{
		RoleID:   entity.RoleIDOwner,
		Email:    "owner@example.com",
		Password: "hashed",
		FullName: "Olivia Owner",
	}
	env.renter = &entity.User{
		RoleID:   entity.RoleIDRenter,
		Email:    "renter@example.com",
		Password: "hashed",
		FullName: "Ravi Renter",
	}
	require.NoError(t, db.Create(env.owner).Error)
	require.NoError(t, db.Create(env.renter).Error)

	env.property = &entity.Property{
		OwnerID:         env.owner.ID,
		Title:           "Sunny two bedroom flat",
		PropertyType:    entity.PropertyTypeApartment,
		Address:         "12 Harbour Street",
		City:            "Rotterdam",
		Bedrooms:        2,
		Bathrooms:       1,
		MonthlyRent:     decimal.NewFromInt(1000),
		SecurityDeposit: decimal.NewFromInt(500),
		IsAvailable:     true,
	}
	require.NoError(t, db.Create(env.property).Error)

	return env
}

func (e *bookingTestEnv) createBooking(t *testing.T, start, end string) *dto.BookingResponse {
	t.Helper()
	booking, err := e.uc.CreateBooking(context.Background(), e.renter.ID, &dto.CreateBookingRequest{
		PropertyID: e.property.ID,
		StartDate:  start,
		EndDate:    end,
	})
	require.NoError(t, err)
	return booking
}

func (e *bookingTestEnv) setStatus(t *testing.T, bookingID, actorID uuid.UUID, status, reason string) *dto.BookingResponse {
	t.Helper()
	booking, err := e.uc.SetStatus(context.Background(), bookingID, actorID, &dto.SetBookingStatusRequest{
		Status: status,
		Reason: reason,
	})
	require.NoError(t, err)
	return booking
}

func (e *bookingTestEnv) reloadProperty(t *testing.T) *entity.Property {
	t.Helper()
	var property entity.Property
	require.NoError(t, e.db.First(&property, "id = ?", e.property.ID).Error)
	return &property
}

func TestCreateBookingComputesTotal(t *testing.T) {
	env := newBookingTestEnv(t)

	// 60 days -> 2 billable months: 1000*2 + 500 deposit
	booking := env.createBooking(t, "2025-03-01", "2025-04-30")

	assert.Equal(t, string(entity.BookingStatusPending), booking.Status)
	assert.Equal(t, string(entity.PaymentStatusPending), booking.PaymentStatus)
	assert.True(t, booking.TotalAmount.Equal(decimal.NewFromInt(2500)), "total = %s", booking.TotalAmount)
	assert.Equal(t, env.renter.ID, booking.RenterID)
	assert.Equal(t, env.owner.ID, booking.OwnerID)
	assert.Equal(t, "2025-03-01", booking.StartDate)
	assert.Equal(t, "2025-04-30", booking.EndDate)
}

func TestCreateBookingMinimumOneMonth(t *testing.T) {
	env := newBookingTestEnv(t)

	// A ten day stay still bills one full month
	booking := env.createBooking(t, "2025-03-01", "2025-03-11")
	assert.True(t, booking.TotalAmount.Equal(decimal.NewFromInt(1500)), "total = %s", booking.TotalAmount)
}

func TestCreateBookingInvalidDateRange(t *testing.T) {
	env := newBookingTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		start string
		end   string
	}{
		{"end before start", "2025-04-01", "2025-03-01"},
		{"equal dates", "2025-03-01", "2025-03-01"},
		{"malformed start", "01-03-2025", "2025-04-01"},
		{"malformed end", "2025-03-01", "not-a-date"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.uc.CreateBooking(ctx, env.renter.ID, &dto.CreateBookingRequest{
				PropertyID: env.property.ID,
				StartDate:  tc.start,
				EndDate:    tc.end,
			})
			assert.ErrorIs(t, err, ErrInvalidDateRange)
		})
	}
}

func TestCreateBookingOwnProperty(t *testing.T) {
	env := newBookingTestEnv(t)

	_, err := env.uc.CreateBooking(context.Background(), env.owner.ID, &dto.CreateBookingRequest{
		PropertyID: env.property.ID,
		StartDate:  "2025-03-01",
		EndDate:    "2025-04-01",
	})
	assert.ErrorIs(t, err, ErrOwnPropertyBooking)
}

func TestCreateBookingUnavailableProperty(t *testing.T) {
	env := newBookingTestEnv(t)
	require.NoError(t, env.db.Model(env.property).Update("is_available", false).Error)

	_, err := env.uc.CreateBooking(context.Background(), env.renter.ID, &dto.CreateBookingRequest{
		PropertyID: env.property.ID,
		StartDate:  "2025-03-01",
		EndDate:    "2025-04-01",
	})
	assert.ErrorIs(t, err, ErrPropertyUnavailable)
}

func TestCreateBookingUnknownProperty(t *testing.T) {
	env := newBookingTestEnv(t)

	_, err := env.uc.CreateBooking(context.Background(), env.renter.ID, &dto.CreateBookingRequest{
		PropertyID: uuid.New(),
		StartDate:  "2025-03-01",
		EndDate:    "2025-04-01",
	})
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestPendingBookingsDoNotBlockEachOther(t *testing.T) {
	env := newBookingTestEnv(t)

	first := env.createBooking(t, "2025-03-01", "2025-04-01")
	second := env.createBooking(t, "2025-03-15", "2025-04-15")

	// Approving the first succeeds; the overlapping second can then
	// only be rejected, approval hits the conflict checker.
	env.setStatus(t, first.ID, env.owner.ID, "approved", "")
	_, err := env.uc.SetStatus(context.Background(), second.ID, env.owner.ID, &dto.SetBookingStatusRequest{Status: "approved"})
	assert.ErrorIs(t, err, ErrBookingConflict)
}

func TestApprovalConflictIsHalfOpen(t *testing.T) {
	env := newBookingTestEnv(t)

	first := env.createBooking(t, "2025-03-01", "2025-04-01")
	env.setStatus(t, first.ID, env.owner.ID, "approved", "")

	// Property is off the market after approval, re-list for the next stay
	require.NoError(t, env.db.Model(env.property).Update("is_available", true).Error)

	// Back to back stay starting on the previous end date does not conflict
	second := env.createBooking(t, "2025-04-01", "2025-05-01")
	approved := env.setStatus(t, second.ID, env.owner.ID, "approved", "")
	assert.Equal(t, string(entity.BookingStatusApproved), approved.Status)
}

func TestApproveTakesPropertyOffMarket(t *testing.T) {
	env := newBookingTestEnv(t)

	booking := env.createBooking(t, "2025-03-01", "2025-04-01")
	assert.True(t, env.reloadProperty(t).IsAvailable)

	approved := env.setStatus(t, booking.ID, env.owner.ID, "approved", "")
	assert.Equal(t, string(entity.BookingStatusApproved), approved.Status)
	assert.False(t, env.reloadProperty(t).IsAvailable)
}

func TestCancelFromApprovedRestoresAvailability(t *testing.T) {
	env := newBookingTestEnv(t)

	booking := env.createBooking(t, "2025-03-01", "2025-04-01")
	env.setStatus(t, booking.ID, env.owner.ID, "approved", "")

	cancelled := env.setStatus(t, booking.ID, env.renter.ID, "cancelled", "plans changed")
	assert.Equal(t, string(entity.BookingStatusCancelled), cancelled.Status)
	assert.Equal(t, "plans changed", cancelled.CancellationReason)
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, env.renter.ID, *cancelled.CancelledBy)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.True(t, env.reloadProperty(t).IsAvailable)
}

func TestCancelRequiresReason(t *testing.T) {
	env := newBookingTestEnv(t)

	booking := env.createBooking(t, "2025-03-01", "2025-04-01")
	env.setStatus(t, booking.ID, env.owner.ID, "approved", "")

	_, err := env.uc.SetStatus(context.Background(), booking.ID, env.renter.ID, &dto.SetBookingStatusRequest{Status: "cancelled"})
	assert.ErrorIs(t, err, entity.ErrMissingCancellationReason)

	// Nothing changed
	reloaded, err := env.uc.GetBooking(context.Background(), booking.ID, env.renter.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.BookingStatusApproved), reloaded.Status)
}

func TestRejectFromPending(t *testing.T) {
	env := newBookingTestEnv(t)

	booking := env.createBooking(t, "2025-03-01", "2025-04-01")
	rejected := env.setStatus(t, booking.ID, env.owner.ID, "rejected", "")

	assert.Equal(t, string(entity.BookingStatusRejected), rejected.Status)
	// Rejection of a never-approved booking leaves availability alone
	assert.True(t, env.reloadProperty(t).IsAvailable)
}

func TestSetStatusActorGating(t *testing.T) {
	env := newBookingTestEnv(t)
	ctx := context.Background()

	booking := env.createBooking(t, "2025-03-01", "2025-04-01")

	// Renter cannot approve their own request
	_, err := env.uc.SetStatus(ctx, booking.ID, env.renter.ID, &dto.SetBookingStatusRequest{Status: "approved"})
	assert.ErrorIs(t, err, ErrActorNotAllowed)

	// A stranger is not a party at all
	_, err = env.uc.SetStatus(ctx, booking.ID, uuid.New(), &dto.SetBookingStatusRequest{Status: "approved"})
	assert.ErrorIs(t, err, ErrNotBookingParty)
}

func TestSetStatusIllegalTransition(t *testing.T) {
	env := newBookingTestEnv(t)

	booking := env.createBooking(t, "2025-03-01", "2025-04-01")

	_, err := env.uc.SetStatus(context.Background(), booking.ID, env.owner.ID, &dto.SetBookingStatusRequest{Status: "completed"})

	var illegal *entity.IllegalTransitionError
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, entity.BookingStatusPending, illegal.From)
	assert.Equal(t, entity.BookingStatusCompleted, illegal.To)
}

// hookedPropertyLock wraps a locker, counting acquisitions and running
// a one-time callback right after the first lock is taken. The callback
// simulates work committed by a concurrent request inside the window
// between the unlocked read and the locked transaction.
type hookedPropertyLock struct {
	inner    service.PropertyLocker
	mu       sync.Mutex
	acquired int
	once     sync.Once
	onFirst  func()
}

func (l *hookedPropertyLock) Acquire(ctx context.Context, propertyID uuid.UUID) (func(), error) {
	release, err := l.inner.Acquire(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.acquired++
	l.mu.Unlock()
	if l.onFirst != nil {
		l.once.Do(l.onFirst)
	}
	return release, nil
}

func TestSetStatusRevalidatesUnderPropertyLock(t *testing.T) {
	env := newBookingTestEnv(t)

	booking := env.createBooking(t, "2025-03-01", "2025-04-01")

	// The owner's rejection lands after approve's first read but before
	// its transaction begins.
	env.uc.locker = &hookedPropertyLock{
		inner: service.NewLocalPropertyLock(),
		onFirst: func() {
			require.NoError(t, env.db.Model(&entity.Booking{}).
				Where("id = ?", booking.ID).
				Update("status", entity.BookingStatusRejected).Error)
		},
	}

	_, err := env.uc.SetStatus(context.Background(), booking.ID, env.owner.ID, &dto.SetBookingStatusRequest{Status: "approved"})

	var illegal *entity.IllegalTransitionError
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, entity.BookingStatusRejected, illegal.From)
	assert.Equal(t, entity.BookingStatusApproved, illegal.To)

	var stored entity.Booking
	require.NoError(t, env.db.First(&stored, "id = ?", booking.ID).Error)
	assert.Equal(t, entity.BookingStatusRejected, stored.Status)
	assert.True(t, env.reloadProperty(t).IsAvailable)
}

func TestEveryTransitionHoldsPropertyLock(t *testing.T) {
	env := newBookingTestEnv(t)

	booking := env.createBooking(t, "2025-03-01", "2025-04-01")

	lock := &hookedPropertyLock{inner: service.NewLocalPropertyLock()}
	env.uc.locker = lock

	env.setStatus(t, booking.ID, env.owner.ID, "approved", "")
	env.setStatus(t, booking.ID, env.renter.ID, "cancelled", "found another place")

	assert.Equal(t, 2, lock.acquired)
	assert.True(t, env.reloadProperty(t).IsAvailable)
}

func TestCreateBookingRechecksAvailabilityUnderLock(t *testing.T) {
	env := newBookingTestEnv(t)

	// The property is delisted after the unlocked availability read.
	env.uc.locker = &hookedPropertyLock{
		inner: service.NewLocalPropertyLock(),
		onFirst: func() {
			_, err := repository.NewPropertyRepository().SetAvailability(env.db, env.property.ID, false)
			require.NoError(t, err)
		},
	}

	_, err := env.uc.CreateBooking(context.Background(), env.renter.ID, &dto.CreateBookingRequest{
		PropertyID: env.property.ID,
		StartDate:  "2025-03-01",
		EndDate:    "2025-04-01",
	})
	assert.ErrorIs(t, err, ErrPropertyUnavailable)

	var count int64
	require.NoError(t, env.db.Model(&entity.Booking{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestActivationAndCompletionDates(t *testing.T) {
	env := newBookingTestEnv(t)
	ctx := context.Background()

	booking := env.createBooking(t, "2025-03-01", "2025-04-01")
	env.setStatus(t, booking.ID, env.owner.ID, "approved", "")

	// Move-in before the start date is refused
	_, err := env.uc.SetStatus(ctx, booking.ID, env.owner.ID, &dto.SetBookingStatusRequest{Status: "active"})
	assert.ErrorIs(t, err, ErrActivationTooEarly)

	env.now = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	active := env.setStatus(t, booking.ID, env.owner.ID, "active", "")
	assert.Equal(t, string(entity.BookingStatusActive), active.Status)

	// Move-out before the end date is refused
	_, err = env.uc.SetStatus(ctx, booking.ID, env.owner.ID, &dto.SetBookingStatusRequest{Status: "completed"})
	assert.ErrorIs(t, err, ErrCompletionTooEarly)

	env.now = time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)
	completed := env.setStatus(t, booking.ID, env.owner.ID, "completed", "")
	assert.Equal(t, string(entity.BookingStatusCompleted), completed.Status)

	// Completion does not auto-relist the property
	assert.False(t, env.reloadProperty(t).IsAvailable)
}

func TestPaymentLedgerDerivesStatus(t *testing.T) {
	env := newBookingTestEnv(t)
	ctx := context.Background()

	booking := env.createBooking(t, "2025-03-01", "2025-04-30")
	env.setStatus(t, booking.ID, env.owner.ID, "approved", "")

	partial, err := env.uc.AddPayment(ctx, booking.ID, env.renter.ID, &dto.AddPaymentRequest{
		Amount: decimal.NewFromInt(1500),
		Method: "bank_transfer",
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.PaymentStatusPartial), partial.PaymentStatus)
	assert.Len(t, partial.Payments, 1)

	paid, err := env.uc.AddPayment(ctx, booking.ID, env.renter.ID, &dto.AddPaymentRequest{
		Amount: decimal.NewFromInt(1000),
		Method: "card",
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.PaymentStatusPaid), paid.PaymentStatus)
	assert.Len(t, paid.Payments, 2)
}

func TestBookingLifecycleEndToEnd(t *testing.T) {
	env := newBookingTestEnv(t)
	ctx := context.Background()

	booking := env.createBooking(t, "2025-03-01", "2025-04-30")
	assert.Equal(t, "2500", booking.TotalAmount.String())
	assert.Equal(t, string(entity.PaymentStatusPending), booking.PaymentStatus)

	approved := env.setStatus(t, booking.ID, env.owner.ID, "approved", "")
	assert.Equal(t, string(entity.BookingStatusApproved), approved.Status)
	assert.False(t, env.reloadProperty(t).IsAvailable)

	partial, err := env.uc.AddPayment(ctx, booking.ID, env.renter.ID, &dto.AddPaymentRequest{
		Amount: decimal.NewFromInt(1500),
		Method: "bank_transfer",
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.PaymentStatusPartial), partial.PaymentStatus)

	paid, err := env.uc.AddPayment(ctx, booking.ID, env.renter.ID, &dto.AddPaymentRequest{
		Amount: decimal.NewFromInt(1000),
		Method: "card",
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.PaymentStatusPaid), paid.PaymentStatus)

	env.now = time.Date(2025, time.March, 1, 14, 0, 0, 0, time.UTC)
	active := env.setStatus(t, booking.ID, env.owner.ID, "active", "")
	assert.Equal(t, string(entity.BookingStatusActive), active.Status)

	env.now = time.Date(2025, time.April, 30, 10, 0, 0, 0, time.UTC)
	completed := env.setStatus(t, booking.ID, env.owner.ID, "completed", "")
	assert.Equal(t, string(entity.BookingStatusCompleted), completed.Status)
	assert.Equal(t, string(entity.PaymentStatusPaid), completed.PaymentStatus)
	assert.False(t, env.reloadProperty(t).IsAvailable)
}

func TestAddPaymentValidation(t *testing.T) {
	env := newBookingTestEnv(t)
	ctx := context.Background()

	booking := env.createBooking(t, "2025-03-01", "2025-04-01")

	_, err := env.uc.AddPayment(ctx, booking.ID, env.renter.ID, &dto.AddPaymentRequest{
		Amount: decimal.Zero,
		Method: "cash",
	})
	assert.ErrorIs(t, err, ErrInvalidPayment)

	_, err = env.uc.AddPayment(ctx, booking.ID, env.renter.ID, &dto.AddPaymentRequest{
		Amount: decimal.NewFromInt(-100),
		Method: "cash",
	})
	assert.ErrorIs(t, err, ErrInvalidPayment)

	_, err = env.uc.AddPayment(ctx, booking.ID, uuid.New(), &dto.AddPaymentRequest{
		Amount: decimal.NewFromInt(100),
		Method: "cash",
	})
	assert.ErrorIs(t, err, ErrNotBookingParty)
}

func TestOverdueOverlayOnRead(t *testing.T) {
	env := newBookingTestEnv(t)
	ctx := context.Background()

	booking := env.createBooking(t, "2025-03-01", "2025-04-01")
	env.setStatus(t, booking.ID, env.owner.ID, "approved", "")

	// Start date arrives without full payment
	env.now = time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC)

	read, err := env.uc.GetBooking(ctx, booking.ID, env.renter.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.PaymentStatusOverdue), read.PaymentStatus)

	// The flip is persisted, not just rendered
	var stored entity.Booking
	require.NoError(t, env.db.First(&stored, "id = ?", booking.ID).Error)
	assert.Equal(t, entity.PaymentStatusOverdue, stored.PaymentStatus)
}

func TestMessagesBetweenParties(t *testing.T) {
	env := newBookingTestEnv(t)
	ctx := context.Background()

	booking := env.createBooking(t, "2025-03-01", "2025-04-01")

	_, err := env.uc.AddMessage(ctx, booking.ID, env.renter.ID, &dto.AddMessageRequest{Body: "Is the flat furnished?"})
	require.NoError(t, err)
	_, err = env.uc.AddMessage(ctx, booking.ID, env.owner.ID, &dto.AddMessageRequest{Body: "Yes, fully."})
	require.NoError(t, err)

	_, err = env.uc.AddMessage(ctx, booking.ID, uuid.New(), &dto.AddMessageRequest{Body: "hi"})
	assert.ErrorIs(t, err, ErrNotBookingParty)

	// Owner reads the thread: only the renter's message flips to read
	require.NoError(t, env.uc.MarkMessagesRead(ctx, booking.ID, env.owner.ID))

	read, err := env.uc.GetBooking(ctx, booking.ID, env.owner.ID)
	require.NoError(t, err)
	require.Len(t, read.Messages, 2)
	for _, m := range read.Messages {
		if m.SenderID == env.renter.ID {
			assert.True(t, m.IsRead)
		} else {
			assert.False(t, m.IsRead)
		}
	}
}

func TestListBookingsForBothParties(t *testing.T) {
	env := newBookingTestEnv(t)
	ctx := context.Background()

	env.createBooking(t, "2025-03-01", "2025-04-01")
	env.createBooking(t, "2025-05-01", "2025-06-01")

	renterList, err := env.uc.ListBookings(ctx, env.renter.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, renterList.Total)

	ownerList, err := env.uc.ListBookings(ctx, env.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, ownerList.Total)

	strangerList, err := env.uc.ListBookings(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, strangerList.Total)
}

func TestGetBookingAccess(t *testing.T) {
	env := newBookingTestEnv(t)
	ctx := context.Background()

	booking := env.createBooking(t, "2025-03-01", "2025-04-01")

	_, err := env.uc.GetBooking(ctx, booking.ID, env.owner.ID)
	assert.NoError(t, err)

	_, err = env.uc.GetBooking(ctx, booking.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotBookingParty)

	_, err = env.uc.GetBooking(ctx, uuid.New(), env.renter.ID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
