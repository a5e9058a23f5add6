package request

import "time"

type CreateBookingRequest struct {
	ProviderID     string    `json:"provider_id" validate:"required,uuid"`
	ServiceID      string    `json:"service_id" validate:"required,uuid"`
	SubServiceName *string   `json:"sub_service,omitempty" validate:"omitempty,min=1,max=100"`
	ScheduledAt    time.Time `json:"scheduled_at" validate:"required"`
	Address        string    `json:"address" validate:"required,min=3,max=255"`
	Description    string    `json:"description" validate:"max=1000"`
	PaymentMethod  string    `json:"payment_method" validate:"required,oneof=cash online wallet"`
}

type UpdateBookingStatusRequest struct {
	Status             string   `json:"status" validate:"required,oneof=confirmed in-progress completed cancelled no-show"`
	CancellationReason *string  `json:"cancellation_reason,omitempty" validate:"omitempty,min=1,max=500"`
	FinalPrice         *float64 `json:"final_price,omitempty" validate:"omitempty,gte=0"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=partial completed refunded"`
}

// ProviderBookingsRequest filters a provider's bookings by status when set.
type ProviderBookingsRequest struct {
	PaginatedRequest
	Status string `json:"status" validate:"omitempty,oneof=pending confirmed in-progress completed cancelled no-show"`
}
