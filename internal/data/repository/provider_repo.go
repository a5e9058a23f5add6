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

type ProviderRepository interface {
	Create(ctx context.Context, provider *entity.Provider) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Provider, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Provider, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Provider, error)
	Count(ctx context.Context) (int64, error)

	// AddReview folds one rating into the provider aggregate atomically and
	// returns the updated provider, or nil when the provider does not exist.
	AddReview(ctx context.Context, providerID, reviewID uuid.UUID, rating int) (*entity.Provider, error)
}

type providerRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewProviderRepository(db database.Querier, log *zap.Logger) ProviderRepository {
	return &providerRepository{
		db:  db,
		log: log.With(zap.String("repository", "provider")),
	}
}

const providerColumns = `id, user_id, business_name, description, city, rating, total_reviews,
		review_ids, created_at, updated_at, deleted_at`

func (r *providerRepository) Create(ctx context.Context, provider *entity.Provider) error {
	query := `
		INSERT INTO providers (id, user_id, business_name, description, city,
		                       rating, total_reviews, review_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, 0, '{}', $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		provider.ID,
		provider.UserID,
		provider.BusinessName,
		provider.Description,
		provider.City,
		provider.CreatedAt,
		provider.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create provider",
			zap.Error(err),
			zap.String("user_id", provider.UserID.String()),
		)
		return fmt.Errorf("create provider for user %s: %w", provider.UserID.String(), mapPgError(err))
	}

	return nil
}

func (r *providerRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers WHERE id = $1 AND deleted_at IS NULL`

	provider, err := scanProvider(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find provider by ID",
			zap.Error(err),
			zap.String("provider_id", id.String()),
		)
		return nil, fmt.Errorf("find provider by ID %s: %w", id.String(), err)
	}

	return provider, nil
}

func (r *providerRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers WHERE user_id = $1 AND deleted_at IS NULL`

	provider, err := scanProvider(r.db.QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find provider by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find provider by user ID %s: %w", userID.String(), err)
	}

	return provider, nil
}

func (r *providerRepository) List(ctx context.Context, limit, offset int) ([]*entity.Provider, error) {
	query := `
		SELECT ` + providerColumns + `
		FROM providers
		WHERE deleted_at IS NULL
		ORDER BY rating DESC, total_reviews DESC, created_at
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to list providers",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("list providers: %w", err)
	}
	defer rows.Close()

	var providers []*entity.Provider
	for rows.Next() {
		provider, err := scanProvider(rows)
		if err != nil {
			r.log.Error("Failed to scan provider row", zap.Error(err))
			return nil, fmt.Errorf("scan provider row: %w", err)
		}
		providers = append(providers, provider)
	}

	return providers, rows.Err()
}

func (r *providerRepository) Count(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM providers WHERE deleted_at IS NULL`

	var count int64
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		r.log.Error("Failed to count providers", zap.Error(err))
		return 0, fmt.Errorf("count providers: %w", err)
	}

	return count, nil
}

// AddReview runs as a single statement: every SET expression reads the
// pre-update row, so concurrent reviews cannot lose an increment.
func (r *providerRepository) AddReview(ctx context.Context, providerID, reviewID uuid.UUID, rating int) (*entity.Provider, error) {
	query := `
		UPDATE providers
		SET rating        = (rating * total_reviews + $2::double precision) / (total_reviews + 1),
		    total_reviews = total_reviews + 1,
		    review_ids    = array_append(review_ids, $3),
		    updated_at    = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + providerColumns

	provider, err := scanProvider(r.db.QueryRow(ctx, query, providerID, rating, reviewID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to add review to provider aggregate",
			zap.Error(err),
			zap.String("provider_id", providerID.String()),
			zap.String("review_id", reviewID.String()),
			zap.Int("rating", rating),
		)
		return nil, fmt.Errorf("add review %s to provider %s: %w", reviewID.String(), providerID.String(), err)
	}

	r.log.Debug("Provider aggregate updated",
		zap.String("provider_id", providerID.String()),
		zap.Float64("rating", provider.Rating),
		zap.Int("total_reviews", provider.TotalReviews),
	)

	return provider, nil
}

func scanProvider(row pgx.Row) (*entity.Provider, error) {
	var provider entity.Provider
	err := row.Scan(
		&provider.ID,
		&provider.UserID,
		&provider.BusinessName,
		&provider.Description,
		&provider.City,
		&provider.Rating,
		&provider.TotalReviews,
		&provider.ReviewIDs,
		&provider.CreatedAt,
		&provider.UpdatedAt,
		&provider.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &provider, nil
}
