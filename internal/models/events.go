package models

import "time"

// Event types
const (
	EventTypeSaleCommitted = "SALE_COMMITTED"
	EventTypeLowStock      = "LOW_STOCK"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// SaleCommittedEvent published after a sale and its stock decrements are applied
type SaleCommittedEvent struct {
	BaseEvent
	SaleID        string        `json:"sale_id"`
	CashierID     string        `json:"cashier_id"`
	Total         float64       `json:"total"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Items         []SaleItem    `json:"items"`
}

// LowStockEvent published when a commit drives a product below its minimum stock
type LowStockEvent struct {
	BaseEvent
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	MinStock  int    `json:"min_stock"`
}
