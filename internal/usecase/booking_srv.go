package usecase

import (
	"context"
	"fmt"
	"time"

	"service-marketplace/internal/data/entity"
	"service-marketplace/internal/data/repository"
	"service-marketplace/internal/dto/request"
	"service-marketplace/internal/dto/response"
	"service-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	CreateBooking(ctx context.Context, customerID string, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetBooking(ctx context.Context, caller Caller, bookingID string) (*response.BookingResponse, error)
	GetCustomerBookings(ctx context.Context, customerID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetProviderBookings(ctx context.Context, caller Caller, providerID string, req *request.ProviderBookingsRequest) (*response.PaginatedResponse[response.BookingResponse], error)

	// UpdateStatus moves the booking along its lifecycle. It never touches
	// the review link.
	UpdateStatus(ctx context.Context, caller Caller, bookingID string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error)
	UpdatePaymentStatus(ctx context.Context, caller Caller, bookingID string, req *request.UpdatePaymentStatusRequest) (*response.BookingResponse, error)
}

type bookingService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewBookingService(repo *repository.Repository, log *zap.Logger) BookingService {
	return &bookingService{
		repo: repo,
		log:  log.With(zap.String("service", "booking")),
		now:  time.Now,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, customerID string, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if err := validate(req); err != nil {
		s.log.Warn("Create booking validation failed", zap.Error(err))
		return nil, err
	}

	customerUUID, err := parseID("customer_id", customerID)
	if err != nil {
		return nil, err
	}
	providerID, err := parseID("provider_id", req.ProviderID)
	if err != nil {
		return nil, err
	}
	serviceID, err := parseID("service_id", req.ServiceID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !req.ScheduledAt.After(now) {
		return nil, newValidationError("scheduled_at", "Must be in the future")
	}

	customer, err := s.repo.User.FindByID(ctx, customerUUID)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if customer == nil {
		return nil, ErrUserNotFound
	}

	service, err := s.repo.Service.FindByID(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	if service == nil {
		return nil, ErrServiceNotFound
	}
	if !service.IsActive {
		return nil, newValidationError("service_id", "Service is not currently offered")
	}

	provider, err := s.repo.Provider.FindByID(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("get provider: %w", err)
	}
	if provider == nil {
		return nil, ErrProviderNotFound
	}

	estimated := service.BasePrice
	var subService *entity.SubService
	if req.SubServiceName != nil {
		sub, ok := service.FindSubService(*req.SubServiceName)
		if !ok {
			return nil, newValidationError("sub_service", fmt.Sprintf("Unknown sub-service %q", *req.SubServiceName))
		}
		subService = &sub
		estimated = sub.Price
	}

	booking := &entity.Booking{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		CustomerID:     customerUUID,
		ProviderID:     providerID,
		ServiceID:      serviceID,
		SubService:     subService,
		ScheduledAt:    req.ScheduledAt,
		Address:        req.Address,
		Description:    req.Description,
		Status:         entity.BookingStatusPending,
		PaymentStatus:  entity.PaymentStatusPending,
		PaymentMethod:  entity.PaymentMethod(req.PaymentMethod),
		EstimatedPrice: estimated,
	}

	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("customer_id", customerID),
		zap.String("provider_id", req.ProviderID),
		zap.Float64("estimated_price", estimated),
	)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) GetBooking(ctx context.Context, caller Caller, bookingID string) (*response.BookingResponse, error) {
	id, err := parseID("id", bookingID)
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	if err := s.authorizeParticipant(ctx, s.repo, caller, booking); err != nil {
		return nil, err
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) GetCustomerBookings(ctx context.Context, customerID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	id, err := parseID("customer_id", customerID)
	if err != nil {
		return nil, err
	}

	bookings, err := s.repo.Booking.FindByCustomerID(ctx, id, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get customer bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByCustomerID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count customer bookings: %w", err)
	}

	return response.NewPaginatedResponse(response.BookingsToResponse(bookings), req.Page, req.Limit(), total), nil
}

func (s *bookingService) GetProviderBookings(ctx context.Context, caller Caller, providerID string, req *request.ProviderBookingsRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	id, err := parseID("id", providerID)
	if err != nil {
		return nil, err
	}

	provider, err := s.repo.Provider.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get provider: %w", err)
	}
	if provider == nil {
		return nil, ErrProviderNotFound
	}
	if caller.Role != entity.RoleAdmin && provider.UserID != caller.ID {
		return nil, ErrForbidden
	}

	status := entity.BookingStatus(req.Status)
	bookings, err := s.repo.Booking.FindByProviderID(ctx, id, status, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get provider bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByProviderID(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("count provider bookings: %w", err)
	}

	return response.NewPaginatedResponse(response.BookingsToResponse(bookings), req.Page, req.Limit(), total), nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, caller Caller, bookingID string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	id, err := parseID("id", bookingID)
	if err != nil {
		return nil, err
	}

	target := entity.BookingStatus(req.Status)
	if target == entity.BookingStatusCancelled && (req.CancellationReason == nil || *req.CancellationReason == "") {
		return nil, newValidationError("cancellation_reason", "Required when cancelling")
	}

	var updated *entity.Booking
	err = s.repo.Tx.WithinTransaction(ctx, func(tx *repository.Repository) error {
		booking, err := tx.Booking.FindByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("load booking: %w", err)
		}
		if booking == nil {
			return ErrBookingNotFound
		}

		if err := s.authorizeStatusChange(ctx, tx, caller, booking, target); err != nil {
			return err
		}

		if !booking.Status.CanTransition(target) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, target)
		}

		if err := s.applyTransition(ctx, tx, caller, booking, target, req); err != nil {
			return err
		}

		if err := tx.Booking.UpdateLifecycle(ctx, booking); err != nil {
			return fmt.Errorf("update booking: %w", err)
		}

		updated = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Booking status updated",
		zap.String("booking_id", bookingID),
		zap.String("status", string(updated.Status)),
		zap.String("caller_id", caller.ID.String()),
		zap.String("caller_role", string(caller.Role)),
	)

	resp := response.BookingToResponse(updated)
	return &resp, nil
}

// applyTransition stamps the side effects of entering target.
func (s *bookingService) applyTransition(ctx context.Context, tx *repository.Repository, caller Caller, booking *entity.Booking, target entity.BookingStatus, req *request.UpdateBookingStatusRequest) error {
	now := s.now()

	switch target {
	case entity.BookingStatusInProgress:
		booking.StartedAt = &now

	case entity.BookingStatusCompleted:
		booking.EndedAt = &now

		hours := 0.0
		if booking.StartedAt != nil {
			hours = utils.RoundTo(now.Sub(*booking.StartedAt).Hours(), 2)
		}
		booking.TotalHours = &hours

		final, err := s.finalPrice(ctx, tx, booking, hours, req.FinalPrice)
		if err != nil {
			return err
		}
		booking.FinalPrice = &final

	case entity.BookingStatusCancelled:
		reason := *req.CancellationReason
		role := caller.Role
		booking.CancellationReason = &reason
		booking.CancelledBy = &role
	}

	booking.Status = target
	booking.UpdatedAt = now
	return nil
}

// finalPrice prefers an explicit amount, then bills hourly units by the
// hour, then falls back to the estimate.
func (s *bookingService) finalPrice(ctx context.Context, tx *repository.Repository, booking *entity.Booking, hours float64, explicit *float64) (float64, error) {
	if explicit != nil {
		return *explicit, nil
	}

	if sub := booking.SubService; sub != nil {
		if sub.PriceUnit == entity.PriceUnitHour {
			return utils.RoundTo(sub.Price*hours, 2), nil
		}
		return booking.EstimatedPrice, nil
	}

	service, err := tx.Service.FindByID(ctx, booking.ServiceID)
	if err != nil {
		return 0, fmt.Errorf("get service: %w", err)
	}
	if service != nil && service.PriceUnit == entity.PriceUnitHour {
		return utils.RoundTo(booking.EstimatedPrice*hours, 2), nil
	}

	return booking.EstimatedPrice, nil
}

func (s *bookingService) UpdatePaymentStatus(ctx context.Context, caller Caller, bookingID string, req *request.UpdatePaymentStatusRequest) (*response.BookingResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	id, err := parseID("id", bookingID)
	if err != nil {
		return nil, err
	}

	target := entity.PaymentStatus(req.PaymentStatus)

	var updated *entity.Booking
	err = s.repo.Tx.WithinTransaction(ctx, func(tx *repository.Repository) error {
		booking, err := tx.Booking.FindByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("load booking: %w", err)
		}
		if booking == nil {
			return ErrBookingNotFound
		}

		if caller.Role != entity.RoleAdmin {
			if caller.Role != entity.RoleProvider {
				return ErrForbidden
			}
			owns, err := s.ownsBooking(ctx, tx, caller, booking)
			if err != nil {
				return err
			}
			if !owns {
				return ErrForbidden
			}
		}

		if !booking.PaymentStatus.CanTransition(target) {
			return fmt.Errorf("%w: payment %s -> %s", ErrInvalidTransition, booking.PaymentStatus, target)
		}

		if err := tx.Booking.UpdatePaymentStatus(ctx, booking.ID, target); err != nil {
			return fmt.Errorf("update payment status: %w", err)
		}

		booking.PaymentStatus = target
		booking.UpdatedAt = s.now()
		updated = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Booking payment status updated",
		zap.String("booking_id", bookingID),
		zap.String("payment_status", string(target)),
		zap.String("caller_id", caller.ID.String()),
	)

	resp := response.BookingToResponse(updated)
	return &resp, nil
}

// authorizeStatusChange: customers may only cancel their own booking,
// providers act on bookings for their own profile, admins act on any.
func (s *bookingService) authorizeStatusChange(ctx context.Context, repo *repository.Repository, caller Caller, booking *entity.Booking, target entity.BookingStatus) error {
	switch caller.Role {
	case entity.RoleAdmin:
		return nil
	case entity.RoleCustomer:
		if booking.CustomerID != caller.ID || target != entity.BookingStatusCancelled {
			return ErrForbidden
		}
		return nil
	case entity.RoleProvider:
		owns, err := s.ownsBooking(ctx, repo, caller, booking)
		if err != nil {
			return err
		}
		if !owns {
			return ErrForbidden
		}
		return nil
	}
	return ErrForbidden
}

func (s *bookingService) authorizeParticipant(ctx context.Context, repo *repository.Repository, caller Caller, booking *entity.Booking) error {
	if caller.Role == entity.RoleAdmin || booking.CustomerID == caller.ID {
		return nil
	}
	if caller.Role == entity.RoleProvider {
		owns, err := s.ownsBooking(ctx, repo, caller, booking)
		if err != nil {
			return err
		}
		if owns {
			return nil
		}
	}
	return ErrForbidden
}

// ownsBooking reports whether the caller's provider profile serves booking.
func (s *bookingService) ownsBooking(ctx context.Context, repo *repository.Repository, caller Caller, booking *entity.Booking) (bool, error) {
	provider, err := repo.Provider.FindByUserID(ctx, caller.ID)
	if err != nil {
		return false, fmt.Errorf("get caller provider profile: %w", err)
	}
	return provider != nil && provider.ID == booking.ProviderID, nil
}
