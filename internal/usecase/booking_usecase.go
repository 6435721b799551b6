package usecase

import (
	"context"
	"errors"
	"time"

	"go-rental-marketplace/internal/converter"
	"go-rental-marketplace/internal/delivery/dto"
	"go-rental-marketplace/internal/domain/entity"
	"go-rental-marketplace/internal/domain/repository"
	"go-rental-marketplace/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrBookingNotFound     = errors.New("booking not found")
	ErrPropertyUnavailable = errors.New("property is not available for booking")
	ErrInvalidDateRange    = errors.New("start date must be before end date")
	ErrBookingConflict     = errors.New("property already has a booking for these dates")
	ErrNotBookingParty     = errors.New("booking does not belong to you")
	ErrActorNotAllowed     = errors.New("this status change is not permitted for your side of the booking")
	ErrInvalidPayment      = errors.New("payment amount must be greater than zero")
	ErrOwnPropertyBooking  = errors.New("owners cannot book their own property")
	ErrActivationTooEarly  = errors.New("booking cannot become active before its start date")
	ErrCompletionTooEarly  = errors.New("booking cannot be completed before its end date")
)

const bookingDateLayout = "2006-01-02"

type BookingUsecase interface {
	CreateBooking(ctx context.Context, renterID uuid.UUID, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	SetStatus(ctx context.Context, bookingID, actorID uuid.UUID, req *dto.SetBookingStatusRequest) (*dto.BookingResponse, error)
	AddPayment(ctx context.Context, bookingID, actorID uuid.UUID, req *dto.AddPaymentRequest) (*dto.BookingResponse, error)
	AddMessage(ctx context.Context, bookingID, actorID uuid.UUID, req *dto.AddMessageRequest) (*dto.MessageResponse, error)
	MarkMessagesRead(ctx context.Context, bookingID, actorID uuid.UUID) error
	GetBooking(ctx context.Context, bookingID, actorID uuid.UUID) (*dto.BookingResponse, error)
	ListBookings(ctx context.Context, userID uuid.UUID) (*dto.BookingListResponse, error)
}

type bookingUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	bookingRepo  repository.BookingRepository
	propertyRepo repository.PropertyRepository
	paymentRepo  repository.PaymentRepository
	messageRepo  repository.MessageRepository
	locker       service.PropertyLocker
	auditService service.AuditService
	now          func() time.Time
}

func NewBookingUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	bookingRepo repository.BookingRepository,
	propertyRepo repository.PropertyRepository,
	paymentRepo repository.PaymentRepository,
	messageRepo repository.MessageRepository,
	locker service.PropertyLocker,
	auditService service.AuditService,
) BookingUsecase {
	return &bookingUsecase{
		db:           db,
		log:          log,
		bookingRepo:  bookingRepo,
		propertyRepo: propertyRepo,
		paymentRepo:  paymentRepo,
		messageRepo:  messageRepo,
		locker:       locker,
		auditService: auditService,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreateBooking validates the request against the property, then runs
// the conflict check and the insert under the per-property lock so two
// racing requests on overlapping dates cannot both succeed.
func (u *bookingUsecase) CreateBooking(ctx context.Context, renterID uuid.UUID, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	start, err := time.ParseInLocation(bookingDateLayout, req.StartDate, time.UTC)
	if err != nil {
		return nil, ErrInvalidDateRange
	}
	end, err := time.ParseInLocation(bookingDateLayout, req.EndDate, time.UTC)
	if err != nil {
		return nil, ErrInvalidDateRange
	}
	if !start.Before(end) {
		return nil, ErrInvalidDateRange
	}

	property, err := u.propertyRepo.FindByID(u.db.WithContext(ctx), req.PropertyID)
	if err != nil {
		u.log.Warnf("Failed to find property %s: %+v", req.PropertyID, err)
		return nil, err
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}
	if property.OwnerID == renterID {
		return nil, ErrOwnPropertyBooking
	}
	if !property.IsAvailable {
		return nil, ErrPropertyUnavailable
	}

	release, err := u.locker.Acquire(ctx, property.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	// Re-check under the lock: the availability flag and the conflict
	// count may have changed since the reads above.
	current, err := u.propertyRepo.FindByID(tx, property.ID)
	if err != nil {
		u.log.Warnf("Failed to find property %s: %+v", property.ID, err)
		return nil, err
	}
	if current == nil || !current.IsAvailable {
		return nil, ErrPropertyUnavailable
	}

	conflicts, err := u.bookingRepo.CountConflicting(tx, property.ID, start, end, uuid.Nil)
	if err != nil {
		u.log.Warnf("Failed conflict check for property %s: %+v", property.ID, err)
		return nil, err
	}
	if conflicts > 0 {
		return nil, ErrBookingConflict
	}

	booking := &entity.Booking{
		PropertyID:      property.ID,
		RenterID:        renterID,
		OwnerID:         property.OwnerID,
		StartDate:       start,
		EndDate:         end,
		MonthlyRent:     property.MonthlyRent,
		SecurityDeposit: property.SecurityDeposit,
		Status:          entity.BookingStatusPending,
		PaymentStatus:   entity.PaymentStatusPending,
		SpecialRequest:  req.SpecialRequest,
	}
	booking.RecomputeTotal()

	if err := u.bookingRepo.Create(tx, booking); err != nil {
		u.log.Warnf("Failed to create booking: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogAction(ctx, tx, &renterID, entity.AuditActionBookingCreate, "booking", booking.ID.String(), entity.JSON{
		"property_id": property.ID.String(),
		"start_date":  req.StartDate,
		"end_date":    req.EndDate,
		"total":       booking.TotalAmount.String(),
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Booking created: id=%s, property=%s, renter=%s", booking.ID, property.ID, renterID)
	return u.reload(ctx, booking.ID)
}

// SetStatus applies a lifecycle transition and keeps the property's
// availability flag in sync within the same transaction. Every
// transition holds the per-property lock and re-reads the booking
// inside the transaction, so a concurrent transition cannot be
// silently overwritten. Approval additionally re-runs the conflict
// check under the lock.
func (u *bookingUsecase) SetStatus(ctx context.Context, bookingID, actorID uuid.UUID, req *dto.SetBookingStatusRequest) (*dto.BookingResponse, error) {
	newStatus := entity.BookingStatus(req.Status)

	existing, err := u.bookingRepo.FindByID(u.db.WithContext(ctx), bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, err
	}
	if existing == nil {
		return nil, ErrBookingNotFound
	}

	release, err := u.locker.Acquire(ctx, existing.PropertyID)
	if err != nil {
		return nil, err
	}
	defer release()

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	// Re-read under the lock: the status may have moved since the
	// read above, and all validation must run against the fresh row.
	booking, err := u.bookingRepo.FindByID(tx, bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	actor, ok := booking.ActorOf(actorID)
	if !ok {
		return nil, ErrNotBookingParty
	}
	if !booking.CanTransitionTo(newStatus) {
		return nil, &entity.IllegalTransitionError{From: booking.Status, To: newStatus}
	}
	if !booking.ActorAllowed(actor, newStatus) {
		return nil, ErrActorNotAllowed
	}

	now := u.now()
	switch newStatus {
	case entity.BookingStatusActive:
		if now.Before(booking.StartDate) {
			return nil, ErrActivationTooEarly
		}
	case entity.BookingStatusCompleted:
		if now.Before(booking.EndDate) {
			return nil, ErrCompletionTooEarly
		}
	}

	fromStatus := booking.Status

	if newStatus == entity.BookingStatusApproved {
		// Exclude this booking so re-approval never conflicts with itself.
		conflicts, err := u.bookingRepo.CountConflicting(tx, booking.PropertyID, booking.StartDate, booking.EndDate, booking.ID)
		if err != nil {
			u.log.Warnf("Failed conflict check for booking %s: %+v", booking.ID, err)
			return nil, err
		}
		if conflicts > 0 {
			return nil, ErrBookingConflict
		}
	}

	if err := booking.Transition(newStatus, actorID, req.Reason, now); err != nil {
		return nil, err
	}

	if err := u.bookingRepo.Update(tx, booking); err != nil {
		u.log.Warnf("Failed to update booking %s: %+v", booking.ID, err)
		return nil, err
	}

	// Availability sync: approval takes the property off the market;
	// leaving approved without a lease (cancel) puts it back. Completion
	// deliberately leaves the flag off until the owner re-lists.
	if newStatus == entity.BookingStatusApproved {
		if err := u.setAvailability(tx, booking.PropertyID, false); err != nil {
			return nil, err
		}
	}
	if fromStatus == entity.BookingStatusApproved &&
		(newStatus == entity.BookingStatusCancelled || newStatus == entity.BookingStatusRejected) {
		if err := u.setAvailability(tx, booking.PropertyID, true); err != nil {
			return nil, err
		}
	}

	if err := u.auditService.LogStatusChange(ctx, tx, &actorID, auditActionForStatus(newStatus), booking.ID.String(), string(fromStatus), string(newStatus)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Booking %s transitioned: %s -> %s by %s", booking.ID, fromStatus, newStatus, actorID)
	return u.reload(ctx, booking.ID)
}

// AddPayment appends a ledger entry and recomputes the derived payment
// status in one transaction, so no reader observes one without the other.
func (u *bookingUsecase) AddPayment(ctx context.Context, bookingID, actorID uuid.UUID, req *dto.AddPaymentRequest) (*dto.BookingResponse, error) {
	if !req.Amount.GreaterThan(decimal.Zero) {
		return nil, ErrInvalidPayment
	}

	booking, err := u.bookingRepo.FindByID(u.db.WithContext(ctx), bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if !booking.IsParty(actorID) {
		return nil, ErrNotBookingParty
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	payment := &entity.Payment{
		BookingID:     booking.ID,
		PaidBy:        actorID,
		Amount:        req.Amount,
		Method:        entity.PaymentMethod(req.Method),
		TransactionID: req.TransactionID,
		Description:   req.Description,
		PaidAt:        u.now(),
	}
	if err := u.paymentRepo.Create(tx, payment); err != nil {
		u.log.Warnf("Failed to record payment for booking %s: %+v", booking.ID, err)
		return nil, err
	}

	paid, err := u.paymentRepo.SumByBookingID(tx, booking.ID)
	if err != nil {
		u.log.Warnf("Failed to sum payments for booking %s: %+v", booking.ID, err)
		return nil, err
	}

	status := entity.DerivePaymentStatus(paid, booking.TotalAmount)
	if err := u.bookingRepo.UpdatePaymentStatus(tx, booking.ID, status); err != nil {
		u.log.Warnf("Failed to update payment status for booking %s: %+v", booking.ID, err)
		return nil, err
	}

	if err := u.auditService.LogAction(ctx, tx, &actorID, entity.AuditActionPaymentRecord, "booking", booking.ID.String(), entity.JSON{
		"amount":         req.Amount.String(),
		"method":         req.Method,
		"payment_status": string(status),
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Payment recorded: booking=%s, amount=%s, status=%s", booking.ID, req.Amount, status)
	return u.reload(ctx, booking.ID)
}

func (u *bookingUsecase) AddMessage(ctx context.Context, bookingID, actorID uuid.UUID, req *dto.AddMessageRequest) (*dto.MessageResponse, error) {
	booking, err := u.bookingRepo.FindByID(u.db.WithContext(ctx), bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if !booking.IsParty(actorID) {
		return nil, ErrNotBookingParty
	}

	message := &entity.BookingMessage{
		BookingID: booking.ID,
		SenderID:  actorID,
		Body:      req.Body,
	}
	if err := u.messageRepo.Create(u.db.WithContext(ctx), message); err != nil {
		u.log.Warnf("Failed to add message to booking %s: %+v", booking.ID, err)
		return nil, err
	}

	return &dto.MessageResponse{
		ID:        message.ID,
		SenderID:  message.SenderID,
		Body:      message.Body,
		IsRead:    message.IsRead,
		CreatedAt: message.CreatedAt,
	}, nil
}

func (u *bookingUsecase) MarkMessagesRead(ctx context.Context, bookingID, actorID uuid.UUID) error {
	booking, err := u.bookingRepo.FindByID(u.db.WithContext(ctx), bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return err
	}
	if booking == nil {
		return ErrBookingNotFound
	}
	if !booking.IsParty(actorID) {
		return ErrNotBookingParty
	}

	if _, err := u.messageRepo.MarkRead(u.db.WithContext(ctx), booking.ID, actorID); err != nil {
		u.log.Warnf("Failed to mark messages read for booking %s: %+v", booking.ID, err)
		return err
	}
	return nil
}

// GetBooking returns the booking for either party, applying the overdue
// overlay on read.
func (u *bookingUsecase) GetBooking(ctx context.Context, bookingID, actorID uuid.UUID) (*dto.BookingResponse, error) {
	booking, err := u.bookingRepo.FindByID(u.db.WithContext(ctx), bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if !booking.IsParty(actorID) {
		return nil, ErrNotBookingParty
	}

	if booking.MarkOverdueIfPastDue(u.now()) {
		if err := u.bookingRepo.UpdatePaymentStatus(u.db.WithContext(ctx), booking.ID, booking.PaymentStatus); err != nil {
			u.log.Warnf("Failed to persist overdue status for booking %s: %+v", booking.ID, err)
			return nil, err
		}
	}

	return converter.BookingToResponse(booking), nil
}

// ListBookings returns all bookings where the user is renter or owner.
func (u *bookingUsecase) ListBookings(ctx context.Context, userID uuid.UUID) (*dto.BookingListResponse, error) {
	bookings, err := u.bookingRepo.FindByUserID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to list bookings for user %s: %+v", userID, err)
		return nil, err
	}

	now := u.now()
	for i := range bookings {
		if bookings[i].MarkOverdueIfPastDue(now) {
			if err := u.bookingRepo.UpdatePaymentStatus(u.db.WithContext(ctx), bookings[i].ID, bookings[i].PaymentStatus); err != nil {
				u.log.Warnf("Failed to persist overdue status for booking %s: %+v", bookings[i].ID, err)
				return nil, err
			}
		}
	}

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings),
		Total:    len(bookings),
	}, nil
}

func (u *bookingUsecase) setAvailability(tx *gorm.DB, propertyID uuid.UUID, available bool) error {
	rows, err := u.propertyRepo.SetAvailability(tx, propertyID, available)
	if err != nil {
		u.log.Warnf("Failed to set availability for property %s: %+v", propertyID, err)
		return err
	}
	if rows == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

func (u *bookingUsecase) reload(ctx context.Context, bookingID uuid.UUID) (*dto.BookingResponse, error) {
	booking, err := u.bookingRepo.FindByID(u.db.WithContext(ctx), bookingID)
	if err != nil || booking == nil {
		u.log.Warnf("Failed to reload booking %s: %+v", bookingID, err)
		return nil, ErrBookingNotFound
	}
	return converter.BookingToResponse(booking), nil
}

func auditActionForStatus(status entity.BookingStatus) string {
	switch status {
	case entity.BookingStatusApproved:
		return entity.AuditActionBookingApprove
	case entity.BookingStatusRejected:
		return entity.AuditActionBookingReject
	case entity.BookingStatusActive:
		return entity.AuditActionBookingActivate
	case entity.BookingStatusCompleted:
		return entity.AuditActionBookingComplete
	case entity.BookingStatusCancelled:
		return entity.AuditActionBookingCancel
	}
	return "booking.status"
}
