// Package pricing turns a cart into money amounts. Everything here is pure:
// no state, no side effects, identical input gives identical output.
package pricing

import "pos-service/internal/models"

// Totals breaks down what a cart costs
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	GlobalDiscount float64 `json:"globalDiscount"`
	Tax            float64 `json:"tax"`
	Total          float64 `json:"total"`
}

// Calculate computes totals for a cart. Per-line discounts apply first, the
// global percent discount applies to the resulting subtotal, and tax applies
// to what remains. Callers must reject negative quantities and discounts
// before getting here.
func Calculate(items []models.SaleItem, globalDiscountPercent, taxRate float64) Totals {
	var subtotal float64
	for _, item := range items {
		lineTotal := item.Price * float64(item.Quantity)
		lineDiscount := lineTotal * (item.Discount / 100)
		subtotal += lineTotal - lineDiscount
	}

	globalDiscount := subtotal * (globalDiscountPercent / 100)
	discounted := subtotal - globalDiscount
	tax := discounted * taxRate

	return Totals{
		Subtotal:       subtotal,
		GlobalDiscount: globalDiscount,
		Tax:            tax,
		Total:          discounted + tax,
	}
}
