package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBookingStatusTransitions(t *testing.T) {
	tests := []struct {
		name        string
		fromStatus  BookingStatus
		toStatus    BookingStatus
		shouldAllow bool
	}{
		// From pending
		{"pending to approved", BookingStatusPending, BookingStatusApproved, true},
		{"pending to rejected", BookingStatusPending, BookingStatusRejected, true},
		{"pending to active", BookingStatusPending, BookingStatusActive, false},
		{"pending to completed", BookingStatusPending, BookingStatusCompleted, false},
		{"pending to cancelled", BookingStatusPending, BookingStatusCancelled, false},

		// From approved
		{"approved to active", BookingStatusApproved, BookingStatusActive, true},
		{"approved to cancelled", BookingStatusApproved, BookingStatusCancelled, true},
		{"approved to completed", BookingStatusApproved, BookingStatusCompleted, false},
		{"approved to rejected", BookingStatusApproved, BookingStatusRejected, false},
		{"approved to pending", BookingStatusApproved, BookingStatusPending, false},

		// From active
		{"active to completed", BookingStatusActive, BookingStatusCompleted, true},
		{"active to cancelled", BookingStatusActive, BookingStatusCancelled, true},
		{"active to approved", BookingStatusActive, BookingStatusApproved, false},

		// Terminal states
		{"rejected to any", BookingStatusRejected, BookingStatusApproved, false},
		{"completed to any", BookingStatusCompleted, BookingStatusActive, false},
		{"cancelled to any", BookingStatusCancelled, BookingStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking := &Booking{Status: tt.fromStatus}
			result := booking.CanTransitionTo(tt.toStatus)
			if result != tt.shouldAllow {
				t.Errorf("Expected CanTransitionTo(%s) = %v, got %v", tt.toStatus, tt.shouldAllow, result)
			}
		})
	}
}

func TestBookingActorAllowed(t *testing.T) {
	tests := []struct {
		name        string
		fromStatus  BookingStatus
		toStatus    BookingStatus
		actor       BookingActor
		shouldAllow bool
	}{
		{"owner approves", BookingStatusPending, BookingStatusApproved, ActorOwner, true},
		{"renter cannot approve", BookingStatusPending, BookingStatusApproved, ActorRenter, false},
		{"owner rejects", BookingStatusPending, BookingStatusRejected, ActorOwner, true},
		{"renter cannot reject", BookingStatusPending, BookingStatusRejected, ActorRenter, false},
		{"owner activates", BookingStatusApproved, BookingStatusActive, ActorOwner, true},
		{"renter cannot activate", BookingStatusApproved, BookingStatusActive, ActorRenter, false},
		{"owner cancels approved", BookingStatusApproved, BookingStatusCancelled, ActorOwner, true},
		{"renter cancels approved", BookingStatusApproved, BookingStatusCancelled, ActorRenter, true},
		{"owner completes", BookingStatusActive, BookingStatusCompleted, ActorOwner, true},
		{"renter cannot complete", BookingStatusActive, BookingStatusCompleted, ActorRenter, false},
		{"renter cancels active", BookingStatusActive, BookingStatusCancelled, ActorRenter, true},
		{"illegal transition never allowed", BookingStatusPending, BookingStatusCompleted, ActorOwner, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking := &Booking{Status: tt.fromStatus}
			result := booking.ActorAllowed(tt.actor, tt.toStatus)
			if result != tt.shouldAllow {
				t.Errorf("Expected ActorAllowed(%s, %s) = %v, got %v", tt.actor, tt.toStatus, tt.shouldAllow, result)
			}
		})
	}
}

func TestBookingIsTerminal(t *testing.T) {
	tests := []struct {
		status   BookingStatus
		terminal bool
	}{
		{BookingStatusPending, false},
		{BookingStatusApproved, false},
		{BookingStatusActive, false},
		{BookingStatusRejected, true},
		{BookingStatusCompleted, true},
		{BookingStatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			booking := &Booking{Status: tt.status}
			if booking.IsTerminal() != tt.terminal {
				t.Errorf("Expected IsTerminal() = %v for %s", tt.terminal, tt.status)
			}
		})
	}
}

func TestBookingTransitionCancellationMetadata(t *testing.T) {
	renterID := uuid.New()
	now := date(2025, time.March, 10)

	booking := &Booking{Status: BookingStatusApproved, RenterID: renterID}
	if err := booking.Transition(BookingStatusCancelled, renterID, "found another place", now); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if booking.Status != BookingStatusCancelled {
		t.Errorf("Expected status cancelled, got %s", booking.Status)
	}
	if booking.CancelledBy == nil || *booking.CancelledBy != renterID {
		t.Errorf("Expected CancelledBy = %s, got %v", renterID, booking.CancelledBy)
	}
	if booking.CancellationReason != "found another place" {
		t.Errorf("Unexpected cancellation reason: %s", booking.CancellationReason)
	}
	if booking.CancelledAt == nil || !booking.CancelledAt.Equal(now) {
		t.Errorf("Expected CancelledAt = %s, got %v", now, booking.CancelledAt)
	}
}

func TestBookingTransitionRequiresCancellationReason(t *testing.T) {
	booking := &Booking{Status: BookingStatusActive}
	err := booking.Transition(BookingStatusCancelled, uuid.New(), "", time.Now())
	if !errors.Is(err, ErrMissingCancellationReason) {
		t.Fatalf("Expected ErrMissingCancellationReason, got %v", err)
	}
	if booking.Status != BookingStatusActive {
		t.Errorf("Status must not change on failed transition, got %s", booking.Status)
	}
}

func TestBookingTransitionIllegal(t *testing.T) {
	booking := &Booking{Status: BookingStatusPending}
	err := booking.Transition(BookingStatusCompleted, uuid.New(), "", time.Now())

	var illegal *IllegalTransitionError
	if !errors.As(err, &illegal) {
		t.Fatalf("Expected IllegalTransitionError, got %v", err)
	}
	if illegal.From != BookingStatusPending || illegal.To != BookingStatusCompleted {
		t.Errorf("Unexpected error detail: %v", illegal)
	}
}

func TestBookingActorOf(t *testing.T) {
	ownerID := uuid.New()
	renterID := uuid.New()
	booking := &Booking{OwnerID: ownerID, RenterID: renterID}

	if actor, ok := booking.ActorOf(ownerID); !ok || actor != ActorOwner {
		t.Errorf("Expected owner actor, got %s (ok=%v)", actor, ok)
	}
	if actor, ok := booking.ActorOf(renterID); !ok || actor != ActorRenter {
		t.Errorf("Expected renter actor, got %s (ok=%v)", actor, ok)
	}
	if _, ok := booking.ActorOf(uuid.New()); ok {
		t.Error("Expected stranger to not resolve to an actor")
	}
	if booking.IsParty(uuid.New()) {
		t.Error("Expected stranger to not be a party")
	}
}

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		end    time.Time
		months int64
	}{
		{"empty range", date(2025, time.January, 1), date(2025, time.January, 1), 0},
		{"inverted range", date(2025, time.February, 1), date(2025, time.January, 1), 0},
		{"single day", date(2025, time.January, 1), date(2025, time.January, 2), 1},
		{"exactly 30 days", date(2025, time.January, 1), date(2025, time.January, 31), 1},
		{"31 days rounds up", date(2025, time.January, 1), date(2025, time.February, 1), 2},
		{"60 days", date(2025, time.January, 1), date(2025, time.March, 2), 2},
		{"61 days rounds up", date(2025, time.January, 1), date(2025, time.March, 3), 3},
		{"half a year", date(2025, time.January, 1), date(2025, time.July, 1), 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthsBetween(tt.start, tt.end); got != tt.months {
				t.Errorf("MonthsBetween(%s, %s) = %d, want %d", tt.start.Format("2006-01-02"), tt.end.Format("2006-01-02"), got, tt.months)
			}
		})
	}
}

func TestComputeTotalAmount(t *testing.T) {
	rent := decimal.NewFromInt(1000)
	deposit := decimal.NewFromInt(500)

	// 60 days -> 2 months: 1000*2 + 500
	total := ComputeTotalAmount(rent, deposit, date(2025, time.January, 1), date(2025, time.March, 2))
	if !total.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("Expected total 2500, got %s", total)
	}

	// Empty range still owes the deposit
	total = ComputeTotalAmount(rent, deposit, date(2025, time.January, 1), date(2025, time.January, 1))
	if !total.Equal(deposit) {
		t.Errorf("Expected total %s for empty range, got %s", deposit, total)
	}
}

func TestDerivePaymentStatus(t *testing.T) {
	total := decimal.NewFromInt(2500)

	tests := []struct {
		name   string
		paid   decimal.Decimal
		status PaymentStatus
	}{
		{"nothing paid", decimal.Zero, PaymentStatusPending},
		{"partial payment", decimal.NewFromInt(1500), PaymentStatusPartial},
		{"exactly paid", decimal.NewFromInt(2500), PaymentStatusPaid},
		{"overpaid", decimal.NewFromInt(3000), PaymentStatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DerivePaymentStatus(tt.paid, total); got != tt.status {
				t.Errorf("DerivePaymentStatus(%s, %s) = %s, want %s", tt.paid, total, got, tt.status)
			}
		})
	}

	// Zero total with no payments stays pending rather than paid
	if got := DerivePaymentStatus(decimal.Zero, decimal.Zero); got != PaymentStatusPending {
		t.Errorf("Expected pending for zero total, got %s", got)
	}
}

func TestMarkOverdueIfPastDue(t *testing.T) {
	start := date(2025, time.March, 1)

	tests := []struct {
		name          string
		status        BookingStatus
		paymentStatus PaymentStatus
		now           time.Time
		changed       bool
	}{
		{"approved unpaid past start", BookingStatusApproved, PaymentStatusPending, date(2025, time.March, 1), true},
		{"active partial past start", BookingStatusActive, PaymentStatusPartial, date(2025, time.March, 5), true},
		{"before start date", BookingStatusApproved, PaymentStatusPending, date(2025, time.February, 28), false},
		{"already paid", BookingStatusActive, PaymentStatusPaid, date(2025, time.March, 5), false},
		{"already overdue", BookingStatusActive, PaymentStatusOverdue, date(2025, time.March, 5), false},
		{"pending booking never overdue", BookingStatusPending, PaymentStatusPending, date(2025, time.March, 5), false},
		{"cancelled booking never overdue", BookingStatusCancelled, PaymentStatusPartial, date(2025, time.March, 5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking := &Booking{Status: tt.status, PaymentStatus: tt.paymentStatus, StartDate: start}
			changed := booking.MarkOverdueIfPastDue(tt.now)
			if changed != tt.changed {
				t.Errorf("Expected changed = %v, got %v", tt.changed, changed)
			}
			if tt.changed && booking.PaymentStatus != PaymentStatusOverdue {
				t.Errorf("Expected payment status overdue, got %s", booking.PaymentStatus)
			}
			if !tt.changed && booking.PaymentStatus != tt.paymentStatus {
				t.Errorf("Payment status must not change, got %s", booking.PaymentStatus)
			}
		})
	}
}

func TestRangesOverlap(t *testing.T) {
	tests := []struct {
		name    string
		s1, e1  time.Time
		s2, e2  time.Time
		overlap bool
	}{
		{
			"back to back stays do not overlap",
			date(2025, time.January, 1), date(2025, time.February, 1),
			date(2025, time.February, 1), date(2025, time.March, 1),
			false,
		},
		{
			"partial overlap",
			date(2025, time.January, 1), date(2025, time.February, 15),
			date(2025, time.February, 1), date(2025, time.March, 1),
			true,
		},
		{
			"contained range",
			date(2025, time.January, 1), date(2025, time.June, 1),
			date(2025, time.February, 1), date(2025, time.March, 1),
			true,
		},
		{
			"identical range",
			date(2025, time.January, 1), date(2025, time.February, 1),
			date(2025, time.January, 1), date(2025, time.February, 1),
			true,
		},
		{
			"disjoint ranges",
			date(2025, time.January, 1), date(2025, time.February, 1),
			date(2025, time.March, 1), date(2025, time.April, 1),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RangesOverlap(tt.s1, tt.e1, tt.s2, tt.e2); got != tt.overlap {
				t.Errorf("RangesOverlap = %v, want %v", got, tt.overlap)
			}
			// Overlap is symmetric
			if got := RangesOverlap(tt.s2, tt.e2, tt.s1, tt.e1); got != tt.overlap {
				t.Errorf("RangesOverlap (swapped) = %v, want %v", got, tt.overlap)
			}
		})
	}
}

func TestRecomputeTotal(t *testing.T) {
	booking := &Booking{
		MonthlyRent:     decimal.NewFromInt(1200),
		SecurityDeposit: decimal.NewFromInt(600),
		StartDate:       date(2025, time.January, 1),
		EndDate:         date(2025, time.March, 2),
	}
	booking.RecomputeTotal()

	if !booking.TotalAmount.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("Expected total 3000, got %s", booking.TotalAmount)
	}
}
