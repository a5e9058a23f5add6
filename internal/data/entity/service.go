package entity

type PriceUnit string

const (
	PriceUnitFixed PriceUnit = "fixed"
	PriceUnitHour  PriceUnit = "hour"
)

// SubService is a priced variant of a catalog service. Bookings keep a copy
// so later catalog edits do not change what was agreed.
type SubService struct {
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	PriceUnit PriceUnit `json:"price_unit"`
}

// Service is an admin-managed catalog entry (plumbing, wiring, ...).
type Service struct {
	BaseNoDelete
	Name        string       `db:"name"`
	Category    string       `db:"category"`
	Description *string      `db:"description"`
	BasePrice   float64      `db:"base_price"`
	PriceUnit   PriceUnit    `db:"price_unit"`
	SubServices []SubService `db:"sub_services"`
	IsActive    bool         `db:"is_active"`
}

func (s *Service) FindSubService(name string) (SubService, bool) {
	for _, sub := range s.SubServices {
		if sub.Name == name {
			return sub, true
		}
	}
	return SubService{}, false
}
