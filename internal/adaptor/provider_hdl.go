package adaptor

import (
	"encoding/json"
	"net/http"

	"service-marketplace/internal/dto/request"
	"service-marketplace/internal/usecase"
	"service-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ProviderHandler struct {
	service usecase.ProviderService
	log     *zap.Logger
}

func NewProviderHandler(service usecase.ProviderService, log *zap.Logger) *ProviderHandler {
	return &ProviderHandler{
		service: service,
		log:     log.With(zap.String("handler", "provider")),
	}
}

// CreateProvider handles POST /api/providers (provider role)
func (h *ProviderHandler) CreateProvider(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	provider, err := h.service.CreateProvider(r.Context(), userID.String(), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "create provider")
		return
	}

	utils.ResponseCreated(w, "success", provider)
}

// GetProvider handles GET /api/providers/{id} (public)
func (h *ProviderHandler) GetProvider(w http.ResponseWriter, r *http.Request) {
	provider, err := h.service.GetProvider(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.log, w, err, "get provider")
		return
	}

	utils.ResponseSuccess(w, "success", provider)
}

// ListProviders handles GET /api/providers (public)
func (h *ProviderHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	req := paginationFromRequest(r)

	providers, err := h.service.ListProviders(r.Context(), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "list providers")
		return
	}

	utils.ResponseSuccess(w, "success", providers)
}

// AuditRating handles GET /api/admin/providers/{id}/rating-audit (admin)
func (h *ProviderHandler) AuditRating(w http.ResponseWriter, r *http.Request) {
	audit, err := h.service.AuditRating(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.log, w, err, "audit provider rating")
		return
	}

	utils.ResponseSuccess(w, "success", audit)
}
