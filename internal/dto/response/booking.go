package response

import (
	"time"

	"service-marketplace/internal/data/entity"
)

type SubServiceResponse struct {
	Name      string           `json:"name"`
	Price     float64          `json:"price"`
	PriceUnit entity.PriceUnit `json:"price_unit"`
}

type BookingResponse struct {
	ID                 string               `json:"id"`
	CustomerID         string               `json:"customer_id"`
	ProviderID         string               `json:"provider_id"`
	ServiceID          string               `json:"service_id"`
	SubService         *SubServiceResponse  `json:"sub_service,omitempty"`
	ScheduledAt        time.Time            `json:"scheduled_at"`
	Address            string               `json:"address"`
	Description        string               `json:"description,omitempty"`
	Status             entity.BookingStatus `json:"status"`
	PaymentStatus      entity.PaymentStatus `json:"payment_status"`
	PaymentMethod      entity.PaymentMethod `json:"payment_method"`
	EstimatedPrice     float64              `json:"estimated_price"`
	FinalPrice         *float64             `json:"final_price,omitempty"`
	StartedAt          *time.Time           `json:"started_at,omitempty"`
	EndedAt            *time.Time           `json:"ended_at,omitempty"`
	TotalHours         *float64             `json:"total_hours,omitempty"`
	CancellationReason *string              `json:"cancellation_reason,omitempty"`
	CancelledBy        *entity.UserRole     `json:"cancelled_by,omitempty"`
	IsReviewed         bool                 `json:"is_reviewed"`
	ReviewID           *string              `json:"review_id,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

func BookingToResponse(booking *entity.Booking) BookingResponse {
	resp := BookingResponse{
		ID:                 booking.ID.String(),
		CustomerID:         booking.CustomerID.String(),
		ProviderID:         booking.ProviderID.String(),
		ServiceID:          booking.ServiceID.String(),
		ScheduledAt:        booking.ScheduledAt,
		Address:            booking.Address,
		Description:        booking.Description,
		Status:             booking.Status,
		PaymentStatus:      booking.PaymentStatus,
		PaymentMethod:      booking.PaymentMethod,
		EstimatedPrice:     booking.EstimatedPrice,
		FinalPrice:         booking.FinalPrice,
		StartedAt:          booking.StartedAt,
		EndedAt:            booking.EndedAt,
		TotalHours:         booking.TotalHours,
		CancellationReason: booking.CancellationReason,
		CancelledBy:        booking.CancelledBy,
		IsReviewed:         booking.IsReviewed,
		CreatedAt:          booking.CreatedAt,
		UpdatedAt:          booking.UpdatedAt,
	}

	if booking.SubService != nil {
		sub := SubServiceToResponse(*booking.SubService)
		resp.SubService = &sub
	}
	if booking.ReviewID != nil {
		id := booking.ReviewID.String()
		resp.ReviewID = &id
	}

	return resp
}

func BookingsToResponse(bookings []*entity.Booking) []BookingResponse {
	result := make([]BookingResponse, len(bookings))
	for i, booking := range bookings {
		result[i] = BookingToResponse(booking)
	}
	return result
}

func SubServiceToResponse(sub entity.SubService) SubServiceResponse {
	return SubServiceResponse{
		Name:      sub.Name,
		Price:     sub.Price,
		PriceUnit: sub.PriceUnit,
	}
}
