package entity

import (
	"github.com/google/uuid"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 500
)

// Review is created once per booking and never edited afterwards.
type Review struct {
	BaseNoDelete
	CustomerID uuid.UUID  `db:"customer_id"`
	ProviderID uuid.UUID  `db:"provider_id"`
	BookingID  uuid.UUID  `db:"booking_id"`
	ServiceID  *uuid.UUID `db:"service_id"`
	Rating     int        `db:"rating"`
	Comment    string     `db:"comment"`
}
