package wire

import (
	"service-marketplace/internal/adaptor"
	"service-marketplace/internal/data/entity"
	"service-marketplace/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireProvider(
	r chi.Router,
	providerHandler *adaptor.ProviderHandler,
	reviewHandler *adaptor.ReviewHandler,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/providers", providerHandler.ListProviders)
	// GET /api/providers/{id} - Profile with rating, total_reviews and review ids
	r.Get("/api/providers/{id}", providerHandler.GetProvider)
	r.Get("/api/providers/{id}/reviews", reviewHandler.GetProviderReviews)

	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity(log))
		r.Use(middleware.RequireRole(log, entity.RoleProvider))

		r.Post("/api/providers", providerHandler.CreateProvider)
	})

	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity(log))
		r.Use(middleware.RequireRole(log, entity.RoleAdmin))

		r.Get("/api/admin/providers/{id}/rating-audit", providerHandler.AuditRating)
	})
}
