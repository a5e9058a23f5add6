package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in-progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
	BookingStatusNoShow     BookingStatus = "no-show"
)

var bookingTransitions = map[BookingStatus]map[BookingStatus]struct{}{
	BookingStatusPending: {
		BookingStatusConfirmed: {},
		BookingStatusCancelled: {},
	},
	BookingStatusConfirmed: {
		BookingStatusInProgress: {},
		BookingStatusCancelled:  {},
		BookingStatusNoShow:     {},
	},
	BookingStatusInProgress: {
		BookingStatusCompleted: {},
		BookingStatusCancelled: {},
	},
}

// CanTransition reports whether the lifecycle allows from -> to.
// completed, cancelled and no-show are terminal.
func (from BookingStatus) CanTransition(to BookingStatus) bool {
	_, ok := bookingTransitions[from][to]
	return ok
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPartial   PaymentStatus = "partial"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

var paymentTransitions = map[PaymentStatus]map[PaymentStatus]struct{}{
	PaymentStatusPending: {
		PaymentStatusPartial:   {},
		PaymentStatusCompleted: {},
	},
	PaymentStatusPartial: {
		PaymentStatusCompleted: {},
	},
	PaymentStatusCompleted: {
		PaymentStatusRefunded: {},
	},
}

func (from PaymentStatus) CanTransition(to PaymentStatus) bool {
	_, ok := paymentTransitions[from][to]
	return ok
}

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodOnline PaymentMethod = "online"
	PaymentMethodWallet PaymentMethod = "wallet"
)

// Booking is a service request between a customer and a provider.
// IsReviewed is true exactly when ReviewID is set; only review creation
// writes either field.
type Booking struct {
	BaseNoDelete
	CustomerID         uuid.UUID     `db:"customer_id"`
	ProviderID         uuid.UUID     `db:"provider_id"`
	ServiceID          uuid.UUID     `db:"service_id"`
	SubService         *SubService   `db:"sub_service"`
	ScheduledAt        time.Time     `db:"scheduled_at"`
	Address            string        `db:"address"`
	Description        string        `db:"description"`
	Status             BookingStatus `db:"status"`
	PaymentStatus      PaymentStatus `db:"payment_status"`
	PaymentMethod      PaymentMethod `db:"payment_method"`
	EstimatedPrice     float64       `db:"estimated_price"`
	FinalPrice         *float64      `db:"final_price"`
	StartedAt          *time.Time    `db:"started_at"`
	EndedAt            *time.Time    `db:"ended_at"`
	TotalHours         *float64      `db:"total_hours"`
	CancellationReason *string       `db:"cancellation_reason"`
	CancelledBy        *UserRole     `db:"cancelled_by"`
	IsReviewed         bool          `db:"is_reviewed"`
	ReviewID           *uuid.UUID    `db:"review_id"`
}

// HasReview reports whether a review is already linked.
func (b *Booking) HasReview() bool {
	return b.IsReviewed || b.ReviewID != nil
}

// Reviewable reports whether a review may be attached right now.
func (b *Booking) Reviewable() bool {
	return b.Status == BookingStatusCompleted && !b.HasReview()
}
