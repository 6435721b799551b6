package entity

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusApproved  BookingStatus = "approved"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// PaymentStatus is derived from the payment ledger against the booking
// total. It is never set directly by callers; see DerivePaymentStatus
// and MarkOverdueIfPastDue.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

// BookingActor identifies which side of the booking is acting.
type BookingActor string

const (
	ActorOwner  BookingActor = "owner"
	ActorRenter BookingActor = "renter"
)

// ErrMissingCancellationReason is returned when a transition into
// cancelled omits the reason.
var ErrMissingCancellationReason = errors.New("cancellation reason is required")

// IllegalTransitionError reports a status transition outside the
// transition table.
type IllegalTransitionError struct {
	From BookingStatus
	To   BookingStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal booking transition from %s to %s", e.From, e.To)
}

type transition struct {
	From BookingStatus
	To   BookingStatus
}

// bookingTransitions maps each legal transition to the booking parties
// allowed to perform it. Preconditions (conflict check on approval,
// move-in/move-out dates) are enforced by the orchestrating usecase.
var bookingTransitions = map[transition][]BookingActor{
	{BookingStatusPending, BookingStatusApproved}:   {ActorOwner},
	{BookingStatusPending, BookingStatusRejected}:   {ActorOwner},
	{BookingStatusApproved, BookingStatusActive}:    {ActorOwner},
	{BookingStatusApproved, BookingStatusCancelled}: {ActorOwner, ActorRenter},
	{BookingStatusActive, BookingStatusCompleted}:   {ActorOwner},
	{BookingStatusActive, BookingStatusCancelled}:   {ActorOwner, ActorRenter},
}

// Booking represents a renter's claim on a property for a date range,
// with the payment ledger and communication log attached. Bookings are
// never physically deleted; payments and messages form the audit trail.
type Booking struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PropertyID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"property_id"`
	RenterID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"renter_id"`
	OwnerID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"owner_id"`
	StartDate       time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate         time.Time       `gorm:"type:date;not null" json:"end_date"`
	MonthlyRent     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"monthly_rent"`
	SecurityDeposit decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"security_deposit"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Status          BookingStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	SpecialRequest  string          `gorm:"type:text" json:"special_request,omitempty"`

	// Cancellation metadata, set only on the transition into cancelled
	CancelledBy        *uuid.UUID `gorm:"type:uuid" json:"cancelled_by,omitempty"`
	CancellationReason string     `gorm:"type:text" json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Property Property         `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Renter   User             `gorm:"foreignKey:RenterID" json:"renter,omitempty"`
	Owner    User             `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Payments []Payment        `gorm:"foreignKey:BookingID" json:"payments,omitempty"`
	Messages []BookingMessage `gorm:"foreignKey:BookingID" json:"messages,omitempty"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (Booking) TableName() string {
	return "bookings"
}

// CanTransitionTo reports whether the transition exists in the table,
// regardless of actor.
func (b *Booking) CanTransitionTo(to BookingStatus) bool {
	_, ok := bookingTransitions[transition{b.Status, to}]
	return ok
}

// ActorAllowed reports whether the given party may perform the
// transition. False when the transition itself is illegal.
func (b *Booking) ActorAllowed(actor BookingActor, to BookingStatus) bool {
	actors, ok := bookingTransitions[transition{b.Status, to}]
	if !ok {
		return false
	}
	for _, a := range actors {
		if a == actor {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further status transitions exist.
func (b *Booking) IsTerminal() bool {
	switch b.Status {
	case BookingStatusRejected, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// ActorOf resolves a user id to its side of the booking. ok is false
// when the user is neither the renter nor the owner.
func (b *Booking) ActorOf(userID uuid.UUID) (BookingActor, bool) {
	switch userID {
	case b.OwnerID:
		return ActorOwner, true
	case b.RenterID:
		return ActorRenter, true
	}
	return "", false
}

// IsParty reports whether the user is the booking's renter or owner.
func (b *Booking) IsParty(userID uuid.UUID) bool {
	_, ok := b.ActorOf(userID)
	return ok
}

// Transition applies a status change after checking the transition
// table. Entering cancelled requires a reason and records who cancelled
// and when. Preconditions tied to the calendar or the conflict checker
// are the caller's responsibility.
func (b *Booking) Transition(to BookingStatus, actorID uuid.UUID, reason string, now time.Time) error {
	if !b.CanTransitionTo(to) {
		return &IllegalTransitionError{From: b.Status, To: to}
	}
	if to == BookingStatusCancelled {
		if reason == "" {
			return ErrMissingCancellationReason
		}
		at := now.UTC()
		b.CancelledBy = &actorID
		b.CancellationReason = reason
		b.CancelledAt = &at
	}
	b.Status = to
	return nil
}

// RecomputeTotal re-derives TotalAmount from rent, deposit and the date
// range. Called before every persist that touches any of its inputs.
func (b *Booking) RecomputeTotal() {
	b.TotalAmount = ComputeTotalAmount(b.MonthlyRent, b.SecurityDeposit, b.StartDate, b.EndDate)
}

// DerivePaymentStatus maps the cumulative ledger amount to a payment
// status. Overdue is a time-based overlay handled separately.
func DerivePaymentStatus(paid, total decimal.Decimal) PaymentStatus {
	switch {
	case total.GreaterThan(decimal.Zero) && paid.GreaterThanOrEqual(total):
		return PaymentStatusPaid
	case paid.GreaterThan(decimal.Zero):
		return PaymentStatusPartial
	default:
		return PaymentStatusPending
	}
}

// MarkOverdueIfPastDue flips pending/partial to overdue once the
// booking start date has passed without full payment. Returns true when
// the status changed so the caller can persist the flip.
func (b *Booking) MarkOverdueIfPastDue(now time.Time) bool {
	if b.PaymentStatus != PaymentStatusPending && b.PaymentStatus != PaymentStatusPartial {
		return false
	}
	switch b.Status {
	case BookingStatusApproved, BookingStatusActive:
	default:
		return false
	}
	if now.Before(b.StartDate) {
		return false
	}
	b.PaymentStatus = PaymentStatusOverdue
	return true
}

// MonthsBetween converts a half-open date range into billable months:
// ceil(days/30), with a minimum of one month for any positive range.
func MonthsBetween(start, end time.Time) int64 {
	days := int64(end.Sub(start) / (24 * time.Hour))
	if days <= 0 {
		return 0
	}
	months := (days + 29) / 30
	if months < 1 {
		months = 1
	}
	return months
}

// ComputeTotalAmount derives the payable total for a stay:
// monthly rent times billable months plus the security deposit.
func ComputeTotalAmount(monthlyRent, securityDeposit decimal.Decimal, start, end time.Time) decimal.Decimal {
	months := MonthsBetween(start, end)
	return monthlyRent.Mul(decimal.NewFromInt(months)).Add(securityDeposit)
}

// RangesOverlap reports whether two half-open date ranges [s1,e1) and
// [s2,e2) intersect. Touching endpoints do not overlap.
func RangesOverlap(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
