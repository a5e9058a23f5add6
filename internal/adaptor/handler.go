package adaptor

import (
	"errors"
	"net/http"

	"service-marketplace/internal/data/entity"
	"service-marketplace/internal/dto/request"
	"service-marketplace/internal/usecase"
	"service-marketplace/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	User     *UserHandler
	Provider *ProviderHandler
	Catalog  *CatalogHandler
	Booking  *BookingHandler
	Review   *ReviewHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		User:     NewUserHandler(service.User, log),
		Provider: NewProviderHandler(service.Provider, log),
		Catalog:  NewCatalogHandler(service.Catalog, log),
		Booking:  NewBookingHandler(service.Booking, log),
		Review:   NewReviewHandler(service.Review, log),
	}
}

// handleServiceError maps usecase errors onto HTTP statuses. Anything it does
// not recognise is a storage or programming failure and stays opaque.
func handleServiceError(log *zap.Logger, w http.ResponseWriter, err error, operation string) {
	var validationErr *usecase.ValidationError

	switch {
	case errors.As(err, &validationErr):
		log.Warn(operation+" validation failed",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, "Validation failed", validationErr.Fields)

	case errors.Is(err, usecase.ErrBookingNotFound),
		errors.Is(err, usecase.ErrProviderNotFound),
		errors.Is(err, usecase.ErrServiceNotFound),
		errors.Is(err, usecase.ErrUserNotFound),
		errors.Is(err, usecase.ErrReviewNotFound):
		log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrDuplicateReview),
		errors.Is(err, usecase.ErrConflict):
		log.Warn(operation+" failed - conflict",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrBookingNotReviewable),
		errors.Is(err, usecase.ErrInvalidTransition):
		log.Warn(operation+" failed - not allowed in current state",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseUnprocessable(w, err.Error())

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseForbidden(w, err.Error())

	default:
		log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// callerFromRequest reads the identity placed by middleware.Identity.
func callerFromRequest(r *http.Request) (usecase.Caller, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		return usecase.Caller{}, false
	}
	role, ok := utils.GetRoleFromContext(r.Context())
	if !ok {
		return usecase.Caller{}, false
	}
	return usecase.Caller{ID: userID, Role: entity.UserRole(role)}, true
}

func paginationFromRequest(r *http.Request) request.PaginatedRequest {
	query := r.URL.Query()
	return request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), request.DefaultPerPage),
	}
}
