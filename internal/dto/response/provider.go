package response

import (
	"time"

	"service-marketplace/internal/data/entity"
)

type ProviderResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	BusinessName string    `json:"business_name"`
	Description  *string   `json:"description,omitempty"`
	City         *string   `json:"city,omitempty"`
	Rating       float64   `json:"rating"`
	TotalReviews int       `json:"total_reviews"`
	Reviews      []string  `json:"reviews"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RatingAuditResponse compares the stored aggregate with one recomputed
// from the reviews table.
type RatingAuditResponse struct {
	ProviderID           string  `json:"provider_id"`
	StoredRating         float64 `json:"stored_rating"`
	StoredTotalReviews   int     `json:"stored_total_reviews"`
	ComputedRating       float64 `json:"computed_rating"`
	ComputedTotalReviews int64   `json:"computed_total_reviews"`
	RatingSum            int64   `json:"rating_sum"`
	Consistent           bool    `json:"consistent"`
}

func ProviderToResponse(provider *entity.Provider) ProviderResponse {
	reviews := make([]string, len(provider.ReviewIDs))
	for i, id := range provider.ReviewIDs {
		reviews[i] = id.String()
	}

	return ProviderResponse{
		ID:           provider.ID.String(),
		UserID:       provider.UserID.String(),
		BusinessName: provider.BusinessName,
		Description:  provider.Description,
		City:         provider.City,
		Rating:       provider.Rating,
		TotalReviews: provider.TotalReviews,
		Reviews:      reviews,
		CreatedAt:    provider.CreatedAt,
		UpdatedAt:    provider.UpdatedAt,
	}
}

func ProvidersToResponse(providers []*entity.Provider) []ProviderResponse {
	result := make([]ProviderResponse, len(providers))
	for i, provider := range providers {
		result[i] = ProviderToResponse(provider)
	}
	return result
}
