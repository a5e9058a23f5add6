package usecase

import (
	"service-marketplace/internal/data/entity"
	"service-marketplace/internal/data/repository"
	"service-marketplace/pkg/cache"
	"service-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Caller is the identity asserted for the current request.
type Caller struct {
	ID   uuid.UUID
	Role entity.UserRole
}

type Service struct {
	User     UserService
	Provider ProviderService
	Catalog  CatalogService
	Booking  BookingService
	Review   ReviewService
}

func NewService(repo *repository.Repository, store cache.Store, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		User:     NewUserService(repo.User, log),
		Provider: NewProviderService(repo, store, config.Redis.CacheTTL, log),
		Catalog:  NewCatalogService(repo, log),
		Booking:  NewBookingService(repo, log),
		Review:   NewReviewService(repo, store, config.Redis.CacheTTL, log),
	}
}
