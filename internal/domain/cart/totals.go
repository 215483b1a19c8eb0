// internal/domain/cart/totals.go
package cart

import "github.com/premiumdrop/storefront/internal/domain/location"

// ShippingRates resolves the flat shipping cost of a department
type ShippingRates interface {
	ShippingCost(departmentKey string) (int64, bool)
}

// TotalWithShipping returns subtotal when no known department is selected.
// Otherwise it adds the department's shipping cost unless subtotal reaches the
// free-shipping threshold.
func TotalWithShipping(subtotal int64, sel location.SelectedLocation, rates ShippingRates, threshold int64) int64 {
	cost, _ := shippingFor(subtotal, sel, rates, threshold)
	return subtotal + cost
}

// shippingFor returns the shipping charge and whether it was waived
func shippingFor(subtotal int64, sel location.SelectedLocation, rates ShippingRates, threshold int64) (int64, bool) {
	if !sel.HasDepartment() {
		return 0, false
	}
	cost, ok := rates.ShippingCost(sel.Department)
	if !ok {
		return 0, false
	}
	if subtotal >= threshold {
		return 0, true
	}
	return cost, false
}

// CalculateTotals summarizes a cart for the selected location
func CalculateTotals(c *Cart, sel location.SelectedLocation, rates ShippingRates, threshold int64) CartTotals {
	subtotal := c.Subtotal()
	shipping, free := shippingFor(subtotal, sel, rates, threshold)

	totals := CartTotals{
		ItemCount:     len(c.Items),
		TotalQuantity: c.TotalQuantity(),
		SubTotal:      subtotal,
		ShippingCost:  shipping,
		FreeShipping:  free,
		TotalAmount:   subtotal + shipping,
	}
	if _, known := rates.ShippingCost(sel.Department); known {
		totals.Department = sel.Department
		totals.City = sel.City
	}
	return totals
}
