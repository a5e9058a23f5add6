package wire

import (
	"service-marketplace/internal/adaptor"
	"service-marketplace/internal/data/entity"
	"service-marketplace/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCatalog(r chi.Router, catalogHandler *adaptor.CatalogHandler, log *zap.Logger) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/services", catalogHandler.ListServices)
	r.Get("/api/services/{id}", catalogHandler.GetService)

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/services", func(r chi.Router) {
		r.Use(middleware.Identity(log))
		r.Use(middleware.RequireRole(log, entity.RoleAdmin))

		r.Post("/", catalogHandler.CreateService)
		r.Put("/{id}", catalogHandler.UpdateService)
	})
}
