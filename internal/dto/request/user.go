package request

type CreateUserRequest struct {
	Name  string  `json:"name" validate:"required,min=2,max=100"`
	Email string  `json:"email" validate:"required,email"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,min=6,max=20"`
	Role  string  `json:"role" validate:"required,oneof=customer provider"`
}
