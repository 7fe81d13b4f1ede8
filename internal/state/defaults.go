package state

import (
	"encoding/json"
	"time"

	"pos-service/internal/models"

	"go.uber.org/zap"
)

// DefaultState returns the built-in seed dataset used when no snapshot exists
// or the stored one is missing fields.
func DefaultState() models.AppState {
	now := time.Now().UTC()
	return models.AppState{
		Users: []models.User{
			{ID: "1", Name: "Admin User", Email: "admin@pos.com", Role: models.RoleAdmin, IsActive: true, CreatedAt: now},
			{ID: "2", Name: "Store Manager", Email: "manager@pos.com", Role: models.RoleManager, IsActive: true, CreatedAt: now},
			{ID: "3", Name: "Cashier One", Email: "cashier@pos.com", Role: models.RoleCashier, IsActive: true, CreatedAt: now},
		},
		Categories: []models.Category{
			{ID: "1", Name: "Electronics", Description: "Electronic devices and accessories", Color: "#3B82F6"},
			{ID: "2", Name: "Clothing", Description: "Apparel and fashion items", Color: "#10B981"},
			{ID: "3", Name: "Food & Beverages", Description: "Food items and drinks", Color: "#F59E0B"},
			{ID: "4", Name: "Books", Description: "Books and educational materials", Color: "#8B5CF6"},
		},
		Products: []models.Product{
			{
				ID: "1", Name: "Wireless Headphones",
				Description: "Premium wireless headphones with noise cancellation",
				CategoryID:  "1", Price: 199.99, Cost: 120.00,
				Stock: 25, MinStock: 5, SKU: "WH001", IsActive: true, CreatedAt: now,
			},
			{
				ID: "2", Name: "Cotton T-Shirt",
				Description: "Comfortable cotton t-shirt in various colors",
				CategoryID:  "2", Price: 29.99, Cost: 15.00,
				Stock: 50, MinStock: 10, SKU: "CT001", IsActive: true, CreatedAt: now,
			},
			{
				ID: "3", Name: "Coffee Beans",
				Description: "Premium arabica coffee beans - 1kg bag",
				CategoryID:  "3", Price: 24.99, Cost: 12.00,
				Stock: 8, MinStock: 15, SKU: "CB001", IsActive: true, CreatedAt: now,
			},
		},
		Sales:     []models.Sale{},
		Purchases: []models.Purchase{},
		Suppliers: []models.Supplier{
			{ID: "1", Name: "Tech Supplies Inc.", Email: "orders@techsupplies.com", Phone: "+1-555-0101", Address: "123 Tech Street, Silicon Valley, CA", IsActive: true},
			{ID: "2", Name: "Fashion Wholesale", Email: "wholesale@fashion.com", Phone: "+1-555-0202", Address: "456 Fashion Ave, New York, NY", IsActive: true},
		},
	}
}

// storedState mirrors AppState with pointer fields so an absent top-level
// field can be told apart from an empty one.
type storedState struct {
	CurrentUser *models.User       `json:"currentUser"`
	Users       *[]models.User     `json:"users"`
	Categories  *[]models.Category `json:"categories"`
	Products    *[]models.Product  `json:"products"`
	Sales       *[]models.Sale     `json:"sales"`
	Purchases   *[]models.Purchase `json:"purchases"`
	Suppliers   *[]models.Supplier `json:"suppliers"`
}

// DecodeState merges a stored snapshot over the seed defaults. Malformed data
// is logged and discarded, never propagated: startup must not crash on a bad
// blob.
func DecodeState(data []byte, logger *zap.Logger) models.AppState {
	defaults := DefaultState()
	if len(data) == 0 {
		return defaults
	}

	var stored storedState
	if err := json.Unmarshal(data, &stored); err != nil {
		logger.Warn("Discarding malformed state snapshot, using defaults", zap.Error(err))
		return defaults
	}

	defaults.CurrentUser = stored.CurrentUser
	if stored.Users != nil {
		defaults.Users = *stored.Users
	}
	if stored.Categories != nil {
		defaults.Categories = *stored.Categories
	}
	if stored.Products != nil {
		defaults.Products = *stored.Products
	}
	if stored.Sales != nil {
		defaults.Sales = *stored.Sales
	}
	if stored.Purchases != nil {
		defaults.Purchases = *stored.Purchases
	}
	if stored.Suppliers != nil {
		defaults.Suppliers = *stored.Suppliers
	}
	return defaults
}

// EncodeState serializes the full tree for persistence
func EncodeState(st models.AppState) ([]byte, error) {
	return json.Marshal(st)
}
