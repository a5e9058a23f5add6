package entity

import (
	"github.com/google/uuid"
)

// Provider is a service provider profile carrying the rating aggregate.
// Rating, TotalReviews and ReviewIDs are written only by review creation.
type Provider struct {
	Base
	UserID       uuid.UUID   `db:"user_id"`
	BusinessName string      `db:"business_name"`
	Description  *string     `db:"description"`
	City         *string     `db:"city"`
	Rating       float64     `db:"rating"`
	TotalReviews int         `db:"total_reviews"`
	ReviewIDs    []uuid.UUID `db:"review_ids"`
}
