// internal/domain/location/entity.go
package location

// DeliveryDays is the delivery window in business days
type DeliveryDays struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Department is a first-level administrative division of Colombia and the
// granularity of shipping rates.
type Department struct {
	Key          string       `json:"key" yaml:"key"`
	Name         string       `json:"name" yaml:"name"`
	Capital      string       `json:"capital" yaml:"capital"`
	Cities       []string     `json:"cities" yaml:"cities"`
	DeliveryDays DeliveryDays `json:"delivery_days" yaml:"delivery_days"`
	ShippingCost int64        `json:"shipping_cost" yaml:"shipping_cost"` // COP
}

// HasCity reports whether city belongs to the department
func (d *Department) HasCity(city string) bool {
	for _, c := range d.Cities {
		if c == city {
			return true
		}
	}
	return false
}

// SelectedLocation is the shopper's current choice. It is supplied with each
// request and never persisted.
type SelectedLocation struct {
	Department string `json:"department" form:"department"`
	City       string `json:"city" form:"city"`
}

// HasDepartment reports whether a department was chosen
func (l SelectedLocation) HasDepartment() bool {
	return l.Department != ""
}

// IsComplete reports whether both department and city were chosen
func (l SelectedLocation) IsComplete() bool {
	return l.Department != "" && l.City != ""
}
