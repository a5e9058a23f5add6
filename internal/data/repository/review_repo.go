package repository

import (
	"context"
	"errors"
	"fmt"

	"service-marketplace/internal/data/entity"
	"service-marketplace/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Review, error)
	FindByProviderID(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*entity.Review, error)
	CountByProviderID(ctx context.Context, providerID uuid.UUID) (int64, error)
	FindByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*entity.Review, error)
	CountByCustomerID(ctx context.Context, customerID uuid.UUID) (int64, error)

	// Business queries
	GetProviderReviewStats(ctx context.Context, providerID uuid.UUID) (int64, int64, error) // sum, count
}

type reviewRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewReviewRepository(db database.Querier, log *zap.Logger) ReviewRepository {
	return &reviewRepository{
		db:  db,
		log: log.With(zap.String("repository", "review")),
	}
}

const reviewColumns = `id, customer_id, provider_id, booking_id, service_id, rating, comment,
		created_at, updated_at`

// Create returns ErrUniqueViolation when the booking already has a review.
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	query := `
		INSERT INTO reviews (id, customer_id, provider_id, booking_id, service_id,
		                     rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		review.ID,
		review.CustomerID,
		review.ProviderID,
		review.BookingID,
		review.ServiceID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
		review.UpdatedAt,
	)

	if err != nil {
		mapped := mapPgError(err)
		if errors.Is(mapped, ErrUniqueViolation) {
			r.log.Warn("Review already exists for booking",
				zap.String("booking_id", review.BookingID.String()),
			)
		} else {
			r.log.Error("Failed to create review",
				zap.Error(err),
				zap.String("customer_id", review.CustomerID.String()),
				zap.String("booking_id", review.BookingID.String()),
			)
		}
		return fmt.Errorf("create review for booking %s: %w", review.BookingID.String(), mapped)
	}

	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	review, err := scanReview(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by ID",
			zap.Error(err),
			zap.String("review_id", id.String()),
		)
		return nil, fmt.Errorf("find review by ID %s: %w", id.String(), err)
	}

	return review, nil
}

func (r *reviewRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE booking_id = $1`

	review, err := scanReview(r.db.QueryRow(ctx, query, bookingID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by booking ID",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find review by booking ID %s: %w", bookingID.String(), err)
	}

	return review, nil
}

func (r *reviewRepository) FindByProviderID(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE provider_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	reviews, err := r.list(ctx, query, providerID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find reviews by provider ID",
			zap.Error(err),
			zap.String("provider_id", providerID.String()),
		)
		return nil, fmt.Errorf("find reviews by provider ID %s: %w", providerID.String(), err)
	}

	return reviews, nil
}

func (r *reviewRepository) CountByProviderID(ctx context.Context, providerID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM reviews WHERE provider_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, providerID).Scan(&count); err != nil {
		r.log.Error("Failed to count reviews by provider ID",
			zap.Error(err),
			zap.String("provider_id", providerID.String()),
		)
		return 0, fmt.Errorf("count reviews by provider ID %s: %w", providerID.String(), err)
	}

	return count, nil
}

func (r *reviewRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	reviews, err := r.list(ctx, query, customerID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find reviews by customer ID",
			zap.Error(err),
			zap.String("customer_id", customerID.String()),
		)
		return nil, fmt.Errorf("find reviews by customer ID %s: %w", customerID.String(), err)
	}

	return reviews, nil
}

func (r *reviewRepository) CountByCustomerID(ctx context.Context, customerID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM reviews WHERE customer_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, customerID).Scan(&count); err != nil {
		r.log.Error("Failed to count reviews by customer ID",
			zap.Error(err),
			zap.String("customer_id", customerID.String()),
		)
		return 0, fmt.Errorf("count reviews by customer ID %s: %w", customerID.String(), err)
	}

	return count, nil
}

// GetProviderReviewStats recomputes the aggregate from the reviews table.
func (r *reviewRepository) GetProviderReviewStats(ctx context.Context, providerID uuid.UUID) (int64, int64, error) {
	query := `
		SELECT COALESCE(SUM(rating), 0), COUNT(*)
		FROM reviews
		WHERE provider_id = $1
	`

	var sum, count int64
	if err := r.db.QueryRow(ctx, query, providerID).Scan(&sum, &count); err != nil {
		r.log.Error("Failed to get provider review stats",
			zap.Error(err),
			zap.String("provider_id", providerID.String()),
		)
		return 0, 0, fmt.Errorf("get review stats for provider %s: %w", providerID.String(), err)
	}

	return sum, count, nil
}

func (r *reviewRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Review, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*entity.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, review)
	}

	return reviews, rows.Err()
}

func scanReview(row pgx.Row) (*entity.Review, error) {
	var review entity.Review
	err := row.Scan(
		&review.ID,
		&review.CustomerID,
		&review.ProviderID,
		&review.BookingID,
		&review.ServiceID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &review, nil
}
