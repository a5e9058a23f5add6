package response

import (
	"time"

	"service-marketplace/internal/data/entity"
)

type ReviewResponse struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	ProviderID string    `json:"provider_id"`
	BookingID  string    `json:"booking_id"`
	ServiceID  *string   `json:"service_id,omitempty"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateReviewResponse carries the provider aggregate as it stood right
// after the review was folded in.
type CreateReviewResponse struct {
	Review              ReviewResponse `json:"review"`
	ProviderRating      float64        `json:"provider_rating"`
	ProviderTotalReview int            `json:"provider_total_reviews"`
}

func ReviewToResponse(review *entity.Review) ReviewResponse {
	resp := ReviewResponse{
		ID:         review.ID.String(),
		CustomerID: review.CustomerID.String(),
		ProviderID: review.ProviderID.String(),
		BookingID:  review.BookingID.String(),
		Rating:     review.Rating,
		Comment:    review.Comment,
		CreatedAt:  review.CreatedAt,
	}

	if review.ServiceID != nil {
		id := review.ServiceID.String()
		resp.ServiceID = &id
	}

	return resp
}

func ReviewsToResponse(reviews []*entity.Review) []ReviewResponse {
	result := make([]ReviewResponse, len(reviews))
	for i, review := range reviews {
		result[i] = ReviewToResponse(review)
	}
	return result
}
