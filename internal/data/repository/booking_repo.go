package repository

import (
	"context"
	"errors"
	"fmt"

	"service-marketplace/internal/data/entity"
	"service-marketplace/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByCustomerID(ctx context.Context, customerID uuid.UUID) (int64, error)
	FindByProviderID(ctx context.Context, providerID uuid.UUID, status entity.BookingStatus, limit, offset int) ([]*entity.Booking, error)
	CountByProviderID(ctx context.Context, providerID uuid.UUID, status entity.BookingStatus) (int64, error)

	// UpdateLifecycle persists status, timing, pricing and cancellation fields.
	UpdateLifecycle(ctx context.Context, booking *entity.Booking) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status entity.PaymentStatus) error
	// MarkReviewed links reviewID and reports false when the booking is
	// missing or already reviewed.
	MarkReviewed(ctx context.Context, id, reviewID uuid.UUID) (bool, error)
}

type bookingRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewBookingRepository(db database.Querier, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, customer_id, provider_id, service_id, sub_service, scheduled_at,
		address, description, status, payment_status, payment_method, estimated_price,
		final_price, started_at, ended_at, total_hours, cancellation_reason, cancelled_by,
		is_reviewed, review_id, created_at, updated_at`

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, customer_id, provider_id, service_id, sub_service,
		                      scheduled_at, address, description, status, payment_status,
		                      payment_method, estimated_price, is_reviewed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, FALSE, $13, $14)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.CustomerID,
		booking.ProviderID,
		booking.ServiceID,
		booking.SubService,
		booking.ScheduledAt,
		booking.Address,
		booking.Description,
		booking.Status,
		booking.PaymentStatus,
		booking.PaymentMethod,
		booking.EstimatedPrice,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("customer_id", booking.CustomerID.String()),
			zap.String("provider_id", booking.ProviderID.String()),
		)
		return fmt.Errorf("create booking for customer %s: %w", booking.CustomerID.String(), mapPgError(err))
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	return r.findOne(ctx, query, id)
}

func (r *bookingRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	bookings, err := r.list(ctx, query, customerID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by customer ID",
			zap.Error(err),
			zap.String("customer_id", customerID.String()),
		)
		return nil, fmt.Errorf("find bookings by customer ID %s: %w", customerID.String(), err)
	}

	return bookings, nil
}

func (r *bookingRepository) CountByCustomerID(ctx context.Context, customerID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE customer_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, customerID).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings by customer ID",
			zap.Error(err),
			zap.String("customer_id", customerID.String()),
		)
		return 0, fmt.Errorf("count bookings by customer ID %s: %w", customerID.String(), err)
	}

	return count, nil
}

// FindByProviderID filters by status when it is non-empty.
func (r *bookingRepository) FindByProviderID(ctx context.Context, providerID uuid.UUID, status entity.BookingStatus, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE provider_id = $1 AND ($2::text = '' OR status = $2::text)
		ORDER BY scheduled_at DESC
		LIMIT $3 OFFSET $4
	`

	bookings, err := r.list(ctx, query, providerID, string(status), limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by provider ID",
			zap.Error(err),
			zap.String("provider_id", providerID.String()),
			zap.String("status", string(status)),
		)
		return nil, fmt.Errorf("find bookings by provider ID %s: %w", providerID.String(), err)
	}

	return bookings, nil
}

func (r *bookingRepository) CountByProviderID(ctx context.Context, providerID uuid.UUID, status entity.BookingStatus) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE provider_id = $1 AND ($2::text = '' OR status = $2::text)
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, providerID, string(status)).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings by provider ID",
			zap.Error(err),
			zap.String("provider_id", providerID.String()),
		)
		return 0, fmt.Errorf("count bookings by provider ID %s: %w", providerID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) UpdateLifecycle(ctx context.Context, booking *entity.Booking) error {
	query := `
		UPDATE bookings
		SET status = $2, final_price = $3, started_at = $4, ended_at = $5,
		    total_hours = $6, cancellation_reason = $7, cancelled_by = $8, updated_at = $9
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.Status,
		booking.FinalPrice,
		booking.StartedAt,
		booking.EndedAt,
		booking.TotalHours,
		booking.CancellationReason,
		booking.CancelledBy,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update booking lifecycle",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("status", string(booking.Status)),
		)
		return fmt.Errorf("update booking %s: %w", booking.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s: %w", booking.ID.String(), pgx.ErrNoRows)
	}

	return nil
}

func (r *bookingRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status entity.PaymentStatus) error {
	query := `UPDATE bookings SET payment_status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		r.log.Error("Failed to update payment status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("payment_status", string(status)),
		)
		return fmt.Errorf("update payment status of booking %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s: %w", id.String(), pgx.ErrNoRows)
	}

	return nil
}

func (r *bookingRepository) MarkReviewed(ctx context.Context, id, reviewID uuid.UUID) (bool, error) {
	query := `
		UPDATE bookings
		SET is_reviewed = TRUE, review_id = $2, updated_at = NOW()
		WHERE id = $1 AND is_reviewed = FALSE
	`

	result, err := r.db.Exec(ctx, query, id, reviewID)
	if err != nil {
		r.log.Error("Failed to mark booking reviewed",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("review_id", reviewID.String()),
		)
		return false, fmt.Errorf("mark booking %s reviewed: %w", id.String(), err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *bookingRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.CustomerID,
		&booking.ProviderID,
		&booking.ServiceID,
		&booking.SubService,
		&booking.ScheduledAt,
		&booking.Address,
		&booking.Description,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.PaymentMethod,
		&booking.EstimatedPrice,
		&booking.FinalPrice,
		&booking.StartedAt,
		&booking.EndedAt,
		&booking.TotalHours,
		&booking.CancellationReason,
		&booking.CancelledBy,
		&booking.IsReviewed,
		&booking.ReviewID,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
