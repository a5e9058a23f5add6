package adaptor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"service-marketplace/internal/dto/request"
	"service-marketplace/internal/dto/response"
	"service-marketplace/internal/usecase"
	"service-marketplace/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockReviewService struct {
	mock.Mock
}

func (m *mockReviewService) CreateReview(ctx context.Context, customerID string, req *request.CreateReviewRequest) (*response.CreateReviewResponse, error) {
	args := m.Called(ctx, customerID, req)
	resp, _ := args.Get(0).(*response.CreateReviewResponse)
	return resp, args.Error(1)
}

func (m *mockReviewService) GetReview(ctx context.Context, reviewID string) (*response.ReviewResponse, error) {
	args := m.Called(ctx, reviewID)
	resp, _ := args.Get(0).(*response.ReviewResponse)
	return resp, args.Error(1)
}

func (m *mockReviewService) GetProviderReviews(ctx context.Context, providerID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	args := m.Called(ctx, providerID, req)
	resp, _ := args.Get(0).(*response.PaginatedResponse[response.ReviewResponse])
	return resp, args.Error(1)
}

func (m *mockReviewService) GetCustomerReviews(ctx context.Context, customerID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	args := m.Called(ctx, customerID, req)
	resp, _ := args.Get(0).(*response.PaginatedResponse[response.ReviewResponse])
	return resp, args.Error(1)
}

type envelope struct {
	Status  bool              `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func reviewRouter(svc usecase.ReviewService) http.Handler {
	log := zap.NewNop()
	h := NewReviewHandler(svc, log)

	r := chi.NewRouter()
	r.Get("/api/reviews/{id}", h.GetReview)
	r.Get("/api/providers/{id}/reviews", h.GetProviderReviews)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity(log))
		r.Post("/api/reviews", h.CreateReview)
		r.Get("/api/user/reviews", h.GetUserReviews)
	})
	return r
}

func postReview(router http.Handler, userID uuid.UUID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/reviews", strings.NewReader(body))
	req.Header.Set(middleware.HeaderUserID, userID.String())
	req.Header.Set(middleware.HeaderUserRole, "customer")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateReviewHandler_Created(t *testing.T) {
	svc := new(mockReviewService)
	userID := uuid.New()
	bookingID := uuid.NewString()

	svc.On("CreateReview", mock.Anything, userID.String(), mock.MatchedBy(func(req *request.CreateReviewRequest) bool {
		return req.BookingID == bookingID && req.Rating == 5 && req.Comment == "Spotless"
	})).Return(&response.CreateReviewResponse{
		Review:              response.ReviewResponse{ID: "r1", BookingID: bookingID, Rating: 5, Comment: "Spotless"},
		ProviderRating:      5,
		ProviderTotalReview: 1,
	}, nil)

	body := fmt.Sprintf(`{"provider_id":%q,"booking_id":%q,"rating":5,"comment":"Spotless"}`, uuid.NewString(), bookingID)
	rec := postReview(reviewRouter(svc), userID, body)

	assert.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Status)

	var data response.CreateReviewResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "r1", data.Review.ID)
	assert.Equal(t, 1, data.ProviderTotalReview)
	svc.AssertExpectations(t)
}

func TestCreateReviewHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &usecase.ValidationError{Fields: map[string]string{"rating": "Must be at most 5"}}, http.StatusBadRequest},
		{"booking missing", usecase.ErrBookingNotFound, http.StatusNotFound},
		{"provider missing", usecase.ErrProviderNotFound, http.StatusNotFound},
		{"duplicate", usecase.ErrDuplicateReview, http.StatusConflict},
		{"not completed", fmt.Errorf("%w: status is pending", usecase.ErrBookingNotReviewable), http.StatusUnprocessableEntity},
		{"not the customer", usecase.ErrForbidden, http.StatusForbidden},
		{"storage", fmt.Errorf("persist review: %w", errors.New("conn refused")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockReviewService)
			svc.On("CreateReview", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := postReview(reviewRouter(svc), uuid.New(), `{"rating":5,"comment":"x"}`)

			assert.Equal(t, tt.status, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.False(t, env.Status)
		})
	}
}

func TestCreateReviewHandler_ValidationDetail(t *testing.T) {
	svc := new(mockReviewService)
	svc.On("CreateReview", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &usecase.ValidationError{Fields: map[string]string{"comment": "This field is required"}})

	rec := postReview(reviewRouter(svc), uuid.New(), `{"rating":5}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "This field is required", env.Errors["comment"])
}

func TestCreateReviewHandler_StorageErrorIsOpaque(t *testing.T) {
	svc := new(mockReviewService)
	svc.On("CreateReview", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("pq: password authentication failed for user app"))

	rec := postReview(reviewRouter(svc), uuid.New(), `{}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.Equal(t, "Internal server error", decodeEnvelope(t, rec).Message)
}

func TestCreateReviewHandler_BadJSON(t *testing.T) {
	svc := new(mockReviewService)

	rec := postReview(reviewRouter(svc), uuid.New(), `{"rating":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateReviewHandler_RequiresIdentity(t *testing.T) {
	svc := new(mockReviewService)
	req := httptest.NewRequest(http.MethodPost, "/api/reviews", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	reviewRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetProviderReviewsHandler_PassesPagination(t *testing.T) {
	svc := new(mockReviewService)
	providerID := uuid.NewString()
	svc.On("GetProviderReviews", mock.Anything, providerID, &request.PaginatedRequest{Page: 2, PerPage: 5}).
		Return(response.NewPaginatedResponse([]response.ReviewResponse{}, 2, 5, 7), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/providers/"+providerID+"/reviews?page=2&per_page=5", nil)
	rec := httptest.NewRecorder()
	reviewRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestGetReviewHandler_NotFound(t *testing.T) {
	svc := new(mockReviewService)
	svc.On("GetReview", mock.Anything, "abc").Return(nil, usecase.ErrReviewNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/reviews/abc", nil)
	rec := httptest.NewRecorder()
	reviewRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
