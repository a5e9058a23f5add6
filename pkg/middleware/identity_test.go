package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"service-marketplace/internal/data/entity"
	"service-marketplace/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func echoIdentity(t *testing.T, wantID uuid.UUID, wantRole string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := utils.GetUserIDFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, wantID, id)

		role, ok := utils.GetRoleFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, wantRole, role)

		w.WriteHeader(http.StatusNoContent)
	})
}

func TestIdentity_SetsContext(t *testing.T) {
	userID := uuid.New()
	h := Identity(zap.NewNop())(echoIdentity(t, userID, "customer"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderUserID, userID.String())
	req.Header.Set(HeaderUserRole, "customer")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestIdentity_Rejects(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	})
	h := Identity(zap.NewNop())(next)

	cases := map[string]struct {
		userID string
		role   string
	}{
		"missing id":   {"", "customer"},
		"malformed id": {"not-a-uuid", "customer"},
		"unknown role": {uuid.NewString(), "superuser"},
		"missing role": {uuid.NewString(), ""},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.userID != "" {
				req.Header.Set(HeaderUserID, tc.userID)
			}
			if tc.role != "" {
				req.Header.Set(HeaderUserRole, tc.role)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := RequireRole(zap.NewNop(), entity.RoleAdmin)(ok)

	admin := httptest.NewRequest(http.MethodGet, "/", nil)
	admin = admin.WithContext(utils.SetUserContext(admin.Context(), uuid.New(), "admin"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, admin)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	customer := httptest.NewRequest(http.MethodGet, "/", nil)
	customer = customer.WithContext(utils.SetUserContext(customer.Context(), uuid.New(), "customer"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, customer)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	anonymous := httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, anonymous)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRecover(t *testing.T) {
	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	h := Recover(zap.NewNop())(panicky)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":false,"message":"Internal server error"}`, rec.Body.String())
}
