package request

// CreateReviewRequest is the body of POST /api/reviews. The customer comes
// from the caller identity, never from the body.
type CreateReviewRequest struct {
	ProviderID string  `json:"provider_id" validate:"required,uuid"`
	BookingID  string  `json:"booking_id" validate:"required,uuid"`
	ServiceID  *string `json:"service_id,omitempty" validate:"omitempty,uuid"`
	Rating     int     `json:"rating" validate:"required,min=1,max=5"`
	Comment    string  `json:"comment" validate:"required,min=1,max=500"`
}
