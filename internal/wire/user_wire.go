package wire

import (
	"service-marketplace/internal/adaptor"
	"service-marketplace/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireUser(r chi.Router, userHandler *adaptor.UserHandler, log *zap.Logger) {
	// POST /api/users - Register a marketplace profile for a gateway identity
	r.Post("/api/users", userHandler.CreateUser)

	// GET /api/users/me - Caller's own profile
	r.With(middleware.Identity(log)).Get("/api/users/me", userHandler.GetProfile)
}
