package request

type SubServiceRequest struct {
	Name      string  `json:"name" validate:"required,min=1,max=100"`
	Price     float64 `json:"price" validate:"gte=0"`
	PriceUnit string  `json:"price_unit" validate:"required,oneof=fixed hour"`
}

type CreateServiceRequest struct {
	Name        string              `json:"name" validate:"required,min=2,max=150"`
	Category    string              `json:"category" validate:"required,min=2,max=100"`
	Description *string             `json:"description,omitempty" validate:"omitempty,max=1000"`
	BasePrice   float64             `json:"base_price" validate:"gte=0"`
	PriceUnit   string              `json:"price_unit" validate:"required,oneof=fixed hour"`
	SubServices []SubServiceRequest `json:"sub_services" validate:"omitempty,dive"`
}

// UpdateServiceRequest only changes the fields that are present.
type UpdateServiceRequest struct {
	Name        *string              `json:"name,omitempty" validate:"omitempty,min=2,max=150"`
	Category    *string              `json:"category,omitempty" validate:"omitempty,min=2,max=100"`
	Description *string              `json:"description,omitempty" validate:"omitempty,max=1000"`
	BasePrice   *float64             `json:"base_price,omitempty" validate:"omitempty,gte=0"`
	PriceUnit   *string              `json:"price_unit,omitempty" validate:"omitempty,oneof=fixed hour"`
	SubServices *[]SubServiceRequest `json:"sub_services,omitempty" validate:"omitempty,dive"`
	IsActive    *bool                `json:"is_active,omitempty"`
}

type ListServicesRequest struct {
	PaginatedRequest
	Category string `json:"category" validate:"omitempty,max=100"`
}
