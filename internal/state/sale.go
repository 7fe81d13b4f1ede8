package state

import (
	"time"

	"pos-service/internal/models"
	"pos-service/internal/pricing"
)

// SaleInput is everything a sale commit needs. Item prices are the
// add-to-cart snapshots; the commit does not re-read catalog prices.
type SaleInput struct {
	Items                 []models.SaleItem
	GlobalDiscountPercent float64
	TaxRate               float64
	PaymentMethod         models.PaymentMethod
	CashierID             string
	CustomerID            string
}

// CommitSale validates the cart against live stock and, in the same critical
// section, appends the sale and decrements each referenced product's stock.
// The two effects are inseparable: no caller can observe the sale without the
// decrements or the decrements without the sale. On any validation failure
// nothing is mutated.
func (s *Store) CommitSale(in SaleInput) (models.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(in.Items) == 0 {
		return models.Sale{}, &models.ValidationError{Field: "items", Message: "cart is empty"}
	}
	if in.GlobalDiscountPercent < 0 || in.GlobalDiscountPercent > 100 {
		return models.Sale{}, &models.ValidationError{Field: "globalDiscount", Message: "discount must be between 0 and 100"}
	}
	if !in.PaymentMethod.Valid() {
		return models.Sale{}, &models.ValidationError{Field: "paymentMethod", Message: "unknown payment method"}
	}

	productIdx := make(map[string]int, len(s.state.Products))
	for i, p := range s.state.Products {
		productIdx[p.ID] = i
	}

	// required accumulates quantity per product so that duplicate lines for
	// the same product cannot jointly oversell.
	required := make(map[string]int, len(in.Items))
	for i, item := range in.Items {
		if item.Quantity < 1 {
			return models.Sale{}, &models.CartError{Line: i, ProductID: item.ProductID, Message: "quantity must be at least 1"}
		}
		if item.Discount < 0 || item.Discount > 100 {
			return models.Sale{}, &models.CartError{Line: i, ProductID: item.ProductID, Message: "discount must be between 0 and 100"}
		}
		if item.Price < 0 {
			return models.Sale{}, &models.CartError{Line: i, ProductID: item.ProductID, Message: "price cannot be negative"}
		}
		idx, ok := productIdx[item.ProductID]
		if !ok {
			return models.Sale{}, &models.CartError{Line: i, ProductID: item.ProductID, Message: "unknown product"}
		}
		p := s.state.Products[idx]
		if !p.IsActive {
			return models.Sale{}, &models.CartError{Line: i, ProductID: item.ProductID, Message: "product is inactive"}
		}
		required[item.ProductID] += item.Quantity
		if required[item.ProductID] > p.Stock {
			return models.Sale{}, &models.StockError{
				Line:      i,
				ProductID: p.ID,
				Product:   p.Name,
				Requested: required[item.ProductID],
				Available: p.Stock,
			}
		}
	}

	totals := pricing.Calculate(in.Items, in.GlobalDiscountPercent, in.TaxRate)

	sale := models.Sale{
		ID:            newID(),
		Items:         append([]models.SaleItem(nil), in.Items...),
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Discount:      totals.GlobalDiscount,
		Total:         totals.Total,
		PaymentMethod: in.PaymentMethod,
		CustomerID:    in.CustomerID,
		CashierID:     in.CashierID,
		CreatedAt:     time.Now().UTC(),
	}

	s.state.Sales = append(s.state.Sales, sale)
	for id, qty := range required {
		s.state.Products[productIdx[id]].Stock -= qty
	}
	s.notify()
	return sale, nil
}
