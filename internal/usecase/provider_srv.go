package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"service-marketplace/internal/data/entity"
	"service-marketplace/internal/data/repository"
	"service-marketplace/internal/dto/request"
	"service-marketplace/internal/dto/response"
	"service-marketplace/pkg/cache"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ratingTolerance bounds float drift between the running average and a
// fresh SUM/COUNT.
const ratingTolerance = 1e-9

func providerCacheKey(id uuid.UUID) string {
	return "provider:" + id.String()
}

type ProviderService interface {
	CreateProvider(ctx context.Context, userID string, req *request.CreateProviderRequest) (*response.ProviderResponse, error)
	GetProvider(ctx context.Context, providerID string) (*response.ProviderResponse, error)
	ListProviders(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ProviderResponse], error)

	// AuditRating recomputes the aggregate from stored reviews and compares.
	AuditRating(ctx context.Context, providerID string) (*response.RatingAuditResponse, error)
}

type providerService struct {
	repo     *repository.Repository
	cache    cache.Store
	cacheTTL time.Duration
	log      *zap.Logger
}

func NewProviderService(repo *repository.Repository, store cache.Store, cacheTTL time.Duration, log *zap.Logger) ProviderService {
	return &providerService{
		repo:     repo,
		cache:    store,
		cacheTTL: cacheTTL,
		log:      log.With(zap.String("service", "provider")),
	}
}

func (s *providerService) CreateProvider(ctx context.Context, userID string, req *request.CreateProviderRequest) (*response.ProviderResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	userUUID, err := parseID("user_id", userID)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.User.FindByID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Role != entity.RoleProvider {
		return nil, fmt.Errorf("%w: user role is %s", ErrForbidden, user.Role)
	}

	existing, err := s.repo.Provider.FindByUserID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("check existing provider: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: user already has a provider profile", ErrConflict)
	}

	now := time.Now()
	provider := &entity.Provider{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:       userUUID,
		BusinessName: req.BusinessName,
		Description:  req.Description,
		City:         req.City,
		ReviewIDs:    []uuid.UUID{},
	}

	if err := s.repo.Provider.Create(ctx, provider); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, fmt.Errorf("%w: user already has a provider profile", ErrConflict)
		}
		return nil, fmt.Errorf("create provider: %w", err)
	}

	s.log.Info("Provider created",
		zap.String("provider_id", provider.ID.String()),
		zap.String("user_id", userID),
	)

	resp := response.ProviderToResponse(provider)
	return &resp, nil
}

// GetProvider reads through the cache. Cache failures degrade to the
// database and are only logged.
func (s *providerService) GetProvider(ctx context.Context, providerID string) (*response.ProviderResponse, error) {
	id, err := parseID("id", providerID)
	if err != nil {
		return nil, err
	}

	key := providerCacheKey(id)
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	provider, err := s.repo.Provider.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get provider: %w", err)
	}
	if provider == nil {
		return nil, ErrProviderNotFound
	}

	// Fill only when absent: a review committed since the load above has
	// already written a newer copy.
	resp := response.ProviderToResponse(provider)
	if payload, err := json.Marshal(resp); err == nil {
		if _, err := s.cache.SetNX(ctx, key, payload, s.cacheTTL); err != nil {
			s.log.Warn("Failed to cache provider", zap.Error(err), zap.String("key", key))
		}
	}

	return &resp, nil
}

func cacheProvider(ctx context.Context, store cache.Store, key string, provider *entity.Provider, ttl time.Duration) error {
	payload, err := json.Marshal(response.ProviderToResponse(provider))
	if err != nil {
		return fmt.Errorf("encode provider: %w", err)
	}
	return store.Set(ctx, key, payload, ttl)
}

func (s *providerService) fromCache(ctx context.Context, key string) (*response.ProviderResponse, bool) {
	payload, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("Provider cache read failed", zap.Error(err), zap.String("key", key))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var resp response.ProviderResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		s.log.Warn("Discarding corrupt provider cache entry", zap.Error(err), zap.String("key", key))
		return nil, false
	}

	return &resp, true
}

func (s *providerService) ListProviders(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ProviderResponse], error) {
	providers, err := s.repo.Provider.List(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}

	total, err := s.repo.Provider.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count providers: %w", err)
	}

	return response.NewPaginatedResponse(response.ProvidersToResponse(providers), req.Page, req.Limit(), total), nil
}

func (s *providerService) AuditRating(ctx context.Context, providerID string) (*response.RatingAuditResponse, error) {
	id, err := parseID("id", providerID)
	if err != nil {
		return nil, err
	}

	provider, err := s.repo.Provider.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get provider: %w", err)
	}
	if provider == nil {
		return nil, ErrProviderNotFound
	}

	sum, count, err := s.repo.Review.GetProviderReviewStats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review stats: %w", err)
	}

	computed := 0.0
	if count > 0 {
		computed = float64(sum) / float64(count)
	}

	consistent := int64(provider.TotalReviews) == count &&
		int64(len(provider.ReviewIDs)) == count &&
		math.Abs(provider.Rating*float64(provider.TotalReviews)-float64(sum)) <= ratingTolerance*math.Max(1, float64(sum))

	if !consistent {
		s.log.Error("Provider rating aggregate drifted",
			zap.String("provider_id", providerID),
			zap.Float64("stored_rating", provider.Rating),
			zap.Int("stored_total_reviews", provider.TotalReviews),
			zap.Int64("rating_sum", sum),
			zap.Int64("review_count", count),
		)
	}

	return &response.RatingAuditResponse{
		ProviderID:           provider.ID.String(),
		StoredRating:         provider.Rating,
		StoredTotalReviews:   provider.TotalReviews,
		ComputedRating:       computed,
		ComputedTotalReviews: count,
		RatingSum:            sum,
		Consistent:           consistent,
	}, nil
}
