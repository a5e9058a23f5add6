package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"service-marketplace/internal/data/entity"
	"service-marketplace/internal/data/repository"
	"service-marketplace/internal/dto/request"
	"service-marketplace/internal/dto/response"
	"service-marketplace/pkg/cache"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReviewService interface {
	// CreateReview persists the review, folds it into the provider aggregate
	// and links it to the booking as one unit of work.
	CreateReview(ctx context.Context, customerID string, req *request.CreateReviewRequest) (*response.CreateReviewResponse, error)

	GetReview(ctx context.Context, reviewID string) (*response.ReviewResponse, error)
	GetProviderReviews(ctx context.Context, providerID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
	GetCustomerReviews(ctx context.Context, customerID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
}

type reviewService struct {
	repo     *repository.Repository
	cache    cache.Store
	cacheTTL time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func NewReviewService(repo *repository.Repository, store cache.Store, cacheTTL time.Duration, log *zap.Logger) ReviewService {
	return &reviewService{
		repo:     repo,
		cache:    store,
		cacheTTL: cacheTTL,
		log:      log.With(zap.String("service", "review")),
		now:      time.Now,
	}
}

func (s *reviewService) CreateReview(ctx context.Context, customerID string, req *request.CreateReviewRequest) (*response.CreateReviewResponse, error) {
	req.Comment = strings.TrimSpace(req.Comment)
	if err := validate(req); err != nil {
		s.log.Warn("Create review validation failed", zap.Error(err))
		return nil, err
	}

	customerUUID, err := parseID("customer_id", customerID)
	if err != nil {
		return nil, err
	}
	providerID, err := parseID("provider_id", req.ProviderID)
	if err != nil {
		return nil, err
	}
	bookingID, err := parseID("booking_id", req.BookingID)
	if err != nil {
		return nil, err
	}

	var serviceID *uuid.UUID
	if req.ServiceID != nil {
		id, err := parseID("service_id", *req.ServiceID)
		if err != nil {
			return nil, err
		}
		serviceID = &id
	}

	now := s.now()
	review := &entity.Review{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		CustomerID: customerUUID,
		ProviderID: providerID,
		BookingID:  bookingID,
		ServiceID:  serviceID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}

	var provider *entity.Provider
	err = s.repo.Tx.WithinTransaction(ctx, func(tx *repository.Repository) error {
		var err error
		provider, err = s.createReviewTx(ctx, tx, review)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.refreshProviderCache(ctx, provider)

	s.log.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("booking_id", bookingID.String()),
		zap.String("provider_id", providerID.String()),
		zap.Int("rating", review.Rating),
		zap.Float64("provider_rating", provider.Rating),
		zap.Int("provider_total_reviews", provider.TotalReviews),
	)

	return &response.CreateReviewResponse{
		Review:              response.ReviewToResponse(review),
		ProviderRating:      provider.Rating,
		ProviderTotalReview: provider.TotalReviews,
	}, nil
}

// createReviewTx runs inside the transaction; any error rolls back the
// review row, the aggregate update and the booking link together.
func (s *reviewService) createReviewTx(ctx context.Context, tx *repository.Repository, review *entity.Review) (*entity.Provider, error) {
	booking, err := tx.Booking.FindByIDForUpdate(ctx, review.BookingID)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	if booking.ProviderID != review.ProviderID {
		return nil, newValidationError("provider_id", "Does not match the booking's provider")
	}
	if review.ServiceID == nil {
		review.ServiceID = &booking.ServiceID
	} else if *review.ServiceID != booking.ServiceID {
		return nil, newValidationError("service_id", "Does not match the booking's service")
	}
	if booking.CustomerID != review.CustomerID {
		s.log.Warn("Review attempted on another customer's booking",
			zap.String("booking_id", booking.ID.String()),
			zap.String("customer_id", review.CustomerID.String()),
		)
		return nil, ErrForbidden
	}

	if booking.HasReview() {
		return nil, ErrDuplicateReview
	}
	existing, err := tx.Review.FindByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateReview
	}

	if !booking.Reviewable() {
		return nil, fmt.Errorf("%w: status is %s", ErrBookingNotReviewable, booking.Status)
	}

	if err := tx.Review.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, ErrDuplicateReview
		}
		return nil, fmt.Errorf("persist review: %w", err)
	}

	provider, err := tx.Provider.AddReview(ctx, review.ProviderID, review.ID, review.Rating)
	if err != nil {
		return nil, fmt.Errorf("update provider aggregate: %w", err)
	}
	if provider == nil {
		return nil, ErrProviderNotFound
	}

	linked, err := tx.Booking.MarkReviewed(ctx, booking.ID, review.ID)
	if err != nil {
		return nil, fmt.Errorf("link review to booking: %w", err)
	}
	if !linked {
		return nil, ErrBookingNotFound
	}

	return provider, nil
}

// refreshProviderCache overwrites the cached provider with the committed
// aggregate. Readers only fill an absent key, so a read that started before
// the commit cannot put the old copy back. If the write fails the key is
// dropped instead.
func (s *reviewService) refreshProviderCache(ctx context.Context, provider *entity.Provider) {
	key := providerCacheKey(provider.ID)

	err := cacheProvider(ctx, s.cache, key, provider, s.cacheTTL)
	if err == nil {
		return
	}
	s.log.Warn("Failed to refresh provider cache", zap.Error(err), zap.String("key", key))

	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.Warn("Failed to invalidate provider cache", zap.Error(err), zap.String("key", key))
	}
}

func (s *reviewService) GetReview(ctx context.Context, reviewID string) (*response.ReviewResponse, error) {
	id, err := parseID("id", reviewID)
	if err != nil {
		return nil, err
	}

	review, err := s.repo.Review.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	if review == nil {
		return nil, ErrReviewNotFound
	}

	resp := response.ReviewToResponse(review)
	return &resp, nil
}

func (s *reviewService) GetProviderReviews(ctx context.Context, providerID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
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

	reviews, err := s.repo.Review.FindByProviderID(ctx, id, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get provider reviews: %w", err)
	}

	total, err := s.repo.Review.CountByProviderID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count provider reviews: %w", err)
	}

	s.log.Debug("Provider reviews retrieved",
		zap.String("provider_id", providerID),
		zap.Int("count", len(reviews)),
		zap.Int64("total", total),
	)

	return response.NewPaginatedResponse(response.ReviewsToResponse(reviews), req.Page, req.Limit(), total), nil
}

func (s *reviewService) GetCustomerReviews(ctx context.Context, customerID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	id, err := parseID("customer_id", customerID)
	if err != nil {
		return nil, err
	}

	reviews, err := s.repo.Review.FindByCustomerID(ctx, id, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get customer reviews: %w", err)
	}

	total, err := s.repo.Review.CountByCustomerID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count customer reviews: %w", err)
	}

	return response.NewPaginatedResponse(response.ReviewsToResponse(reviews), req.Page, req.Limit(), total), nil
}
