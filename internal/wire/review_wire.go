package wire

import (
	"service-marketplace/internal/adaptor"
	"service-marketplace/internal/data/entity"
	"service-marketplace/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireReview(r chi.Router, reviewHandler *adaptor.ReviewHandler, log *zap.Logger) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/reviews/{id}", reviewHandler.GetReview)

	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity(log))

		// POST /api/reviews - Review a completed booking (its customer only)
		r.With(middleware.RequireRole(log, entity.RoleCustomer)).Post("/api/reviews", reviewHandler.CreateReview)

		r.Get("/api/user/reviews", reviewHandler.GetUserReviews)
	})
}
