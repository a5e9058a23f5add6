package wire

import (
	"net/http"

	"service-marketplace/internal/adaptor"
	"service-marketplace/internal/data/repository"
	"service-marketplace/internal/usecase"
	"service-marketplace/pkg/cache"
	"service-marketplace/pkg/middleware"
	"service-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the wired HTTP surface.
type App struct {
	Router *chi.Mux
}

// Wiring builds services and handlers and registers every route.
func Wiring(repo *repository.Repository, store cache.Store, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(repo, store, config, logger)
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router: setupRouter(handler, config, logger),
	}
}

func setupRouter(handler *adaptor.Handler, config *utils.Config, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.CORS.AllowedOrigins))

	wireUser(r, handler.User, logger)
	wireCatalog(r, handler.Catalog, logger)
	wireProvider(r, handler.Provider, handler.Review, logger)
	wireBooking(r, handler.Booking, logger)
	wireReview(r, handler.Review, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
