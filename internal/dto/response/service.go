package response

import (
	"time"

	"service-marketplace/internal/data/entity"
)

type ServiceResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Category    string               `json:"category"`
	Description *string              `json:"description,omitempty"`
	BasePrice   float64              `json:"base_price"`
	PriceUnit   entity.PriceUnit     `json:"price_unit"`
	SubServices []SubServiceResponse `json:"sub_services"`
	IsActive    bool                 `json:"is_active"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

func ServiceToResponse(service *entity.Service) ServiceResponse {
	subs := make([]SubServiceResponse, len(service.SubServices))
	for i, sub := range service.SubServices {
		subs[i] = SubServiceToResponse(sub)
	}

	return ServiceResponse{
		ID:          service.ID.String(),
		Name:        service.Name,
		Category:    service.Category,
		Description: service.Description,
		BasePrice:   service.BasePrice,
		PriceUnit:   service.PriceUnit,
		SubServices: subs,
		IsActive:    service.IsActive,
		CreatedAt:   service.CreatedAt,
		UpdatedAt:   service.UpdatedAt,
	}
}

func ServicesToResponse(services []*entity.Service) []ServiceResponse {
	result := make([]ServiceResponse, len(services))
	for i, service := range services {
		result[i] = ServiceToResponse(service)
	}
	return result
}
