// internal/domain/location/table.go
package location

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Table is the static shipping table. Department order is insertion order and
// decides which department wins an ambiguous region match.
type Table struct {
	order []string
	byKey map[string]Department
}

// NewTable builds a table from departments in the given order
func NewTable(departments []Department) (*Table, error) {
	t := &Table{byKey: make(map[string]Department, len(departments))}
	for _, d := range departments {
		if d.Key == "" {
			return nil, fmt.Errorf("department %q has no key", d.Name)
		}
		if _, dup := t.byKey[d.Key]; dup {
			return nil, fmt.Errorf("duplicate department key %q", d.Key)
		}
		if d.DeliveryDays.Min < 0 || d.DeliveryDays.Max < d.DeliveryDays.Min {
			return nil, fmt.Errorf("department %q has an invalid delivery window", d.Key)
		}
		t.order = append(t.order, d.Key)
		t.byKey[d.Key] = d
	}
	return t, nil
}

// DefaultTable returns the built-in Colombian shipping table
func DefaultTable() *Table {
	t, err := NewTable([]Department{
		{
			Key:          "antioquia",
			Name:         "Antioquia",
			Capital:      "Medellín",
			Cities:       []string{"Medellín", "Bello", "Itagüí", "Envigado", "Apartadó", "Turbo"},
			DeliveryDays: DeliveryDays{Min: 7, Max: 10},
			ShippingCost: 15000,
		},
		{
			Key:          "bogota",
			Name:         "Bogotá D.C.",
			Capital:      "Bogotá",
			Cities:       []string{"Bogotá"},
			DeliveryDays: DeliveryDays{Min: 6, Max: 9},
			ShippingCost: 12000,
		},
		{
			Key:          "valle",
			Name:         "Valle del Cauca",
			Capital:      "Cali",
			Cities:       []string{"Cali", "Palmira", "Buenaventura", "Tuluá", "Cartago"},
			DeliveryDays: DeliveryDays{Min: 8, Max: 11},
			ShippingCost: 16000,
		},
		{
			Key:          "atlantico",
			Name:         "Atlántico",
			Capital:      "Barranquilla",
			Cities:       []string{"Barranquilla", "Soledad", "Malambo", "Galapa"},
			DeliveryDays: DeliveryDays{Min: 9, Max: 12},
			ShippingCost: 18000,
		},
		{
			Key:          "santander",
			Name:         "Santander",
			Capital:      "Bucaramanga",
			Cities:       []string{"Bucaramanga", "Floridablanca", "Girón", "Piedecuesta"},
			DeliveryDays: DeliveryDays{Min: 8, Max: 11},
			ShippingCost: 17000,
		},
	})
	if err != nil {
		panic(err)
	}
	return t
}

type regionsFile struct {
	Departments []Department `yaml:"departments"`
}

// LoadTableFile reads a YAML shipping table:
//
//	departments:
//	  - key: bogota
//	    name: Bogotá D.C.
//	    cities: [Bogotá]
//	    delivery_days: {min: 6, max: 9}
//	    shipping_cost: 12000
func LoadTableFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read regions file: %w", err)
	}

	var f regionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse regions file: %w", err)
	}
	if len(f.Departments) == 0 {
		return nil, fmt.Errorf("regions file %s defines no departments", path)
	}
	return NewTable(f.Departments)
}

// Lookup resolves a department key
func (t *Table) Lookup(key string) (Department, bool) {
	d, ok := t.byKey[key]
	return d, ok
}

// Departments returns every department in table order
func (t *Table) Departments() []Department {
	out := make([]Department, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.byKey[k])
	}
	return out
}

// Cities returns the cities of a department
func (t *Table) Cities(key string) []string {
	return t.byKey[key].Cities
}

// ShippingCost returns the flat shipping cost of a department
func (t *Table) ShippingCost(key string) (int64, bool) {
	d, ok := t.byKey[key]
	return d.ShippingCost, ok
}

// FindDepartmentByRegion maps free-text region names (from geolocation or
// reverse geocoding) to a department. A match is a case-insensitive substring
// in either direction; the first department in table order wins.
func (t *Table) FindDepartmentByRegion(region string) (Department, bool) {
	r := strings.ToLower(strings.TrimSpace(region))
	if r == "" {
		return Department{}, false
	}
	for _, k := range t.order {
		d := t.byKey[k]
		name := strings.ToLower(d.Name)
		if strings.Contains(name, r) || strings.Contains(r, name) {
			return d, true
		}
	}
	return Department{}, false
}
