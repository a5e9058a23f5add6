package entity

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleProvider UserRole = "provider"
	RoleAdmin    UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleCustomer, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

// User is a marketplace profile. Credentials are held by the upstream
// identity gateway, never here.
type User struct {
	Base
	Name  string   `db:"name"`
	Email string   `db:"email"`
	Phone *string  `db:"phone"`
	Role  UserRole `db:"role"`
}
