package wire

import (
	"service-marketplace/internal/adaptor"
	"service-marketplace/internal/data/entity"
	"service-marketplace/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler, log *zap.Logger) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity(log))

		// POST /api/bookings - Customers request a service
		r.With(middleware.RequireRole(log, entity.RoleCustomer)).Post("/api/bookings", bookingHandler.CreateBooking)

		// GET /api/bookings/{id} - Participants and admins
		r.Get("/api/bookings/{id}", bookingHandler.GetBooking)

		// PATCH /api/bookings/{id}/status - Ownership is checked per role in the service
		r.Patch("/api/bookings/{id}/status", bookingHandler.UpdateStatus)

		r.With(middleware.RequireRole(log, entity.RoleProvider, entity.RoleAdmin)).
			Patch("/api/bookings/{id}/payment", bookingHandler.UpdatePaymentStatus)

		// GET /api/user/bookings - Caller's own booking history
		r.Get("/api/user/bookings", bookingHandler.GetUserBookings)

		r.With(middleware.RequireRole(log, entity.RoleProvider, entity.RoleAdmin)).
			Get("/api/providers/{id}/bookings", bookingHandler.GetProviderBookings)
	})
}
