package request

type CreateProviderRequest struct {
	BusinessName string  `json:"business_name" validate:"required,min=2,max=150"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	City         *string `json:"city,omitempty" validate:"omitempty,max=100"`
}
