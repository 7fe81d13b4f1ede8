package models

import "time"

// Role of a user account
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCashier:
		return true
	}
	return false
}

// PaymentMethod accepted at checkout
type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentCard    PaymentMethod = "card"
	PaymentDigital PaymentMethod = "digital"
)

// Valid reports whether m is a known payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentDigital:
		return true
	}
	return false
}

// PurchaseStatus state machine: pending -> received | cancelled
type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseReceived  PurchaseStatus = "received"
	PurchaseCancelled PurchaseStatus = "cancelled"
)

// Valid reports whether s is a known purchase status
func (s PurchaseStatus) Valid() bool {
	switch s {
	case PurchasePending, PurchaseReceived, PurchaseCancelled:
		return true
	}
	return false
}

// User represents an operator account. Accounts are never hard-deleted;
// IsActive=false is the soft-delete marker.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// Category groups products for display. Products hold a weak reference by
// CategoryID; deleting a category never cascades.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// Product in the catalog. Stock is only ever mutated by a sale commit
// (decrement) or a direct inventory edit (absolute set).
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CategoryID  string    `json:"categoryId"`
	Price       float64   `json:"price"`
	Cost        float64   `json:"cost"`
	Stock       int       `json:"stock"`
	MinStock    int       `json:"minStock"`
	SKU         string    `json:"sku"`
	Image       string    `json:"image,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SaleItem is one line of a cart or a completed sale. Price is the snapshot
// taken when the item entered the cart, immutable for that line. Discount is
// a percent in [0,100].
type SaleItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Discount  float64 `json:"discount"`
}

// Sale is a committed transaction. It is a fact: never edited after creation.
// Discount is the global discount expressed as a currency amount.
type Sale struct {
	ID            string        `json:"id"`
	Items         []SaleItem    `json:"items"`
	Subtotal      float64       `json:"subtotal"`
	Tax           float64       `json:"tax"`
	Discount      float64       `json:"discount"`
	Total         float64       `json:"total"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	CustomerID    string        `json:"customerId,omitempty"`
	CashierID     string        `json:"cashierId"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// PurchaseItem is one line of a supplier purchase
type PurchaseItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Cost      float64 `json:"cost"`
}

// Purchase is an order placed with a supplier
type Purchase struct {
	ID         string         `json:"id"`
	SupplierID string         `json:"supplierId"`
	Items      []PurchaseItem `json:"items"`
	Subtotal   float64        `json:"subtotal"`
	Tax        float64        `json:"tax"`
	Total      float64        `json:"total"`
	Status     PurchaseStatus `json:"status"`
	CreatedAt  time.Time      `json:"createdAt"`
	ReceivedAt *time.Time     `json:"receivedAt,omitempty"`
}

// Supplier record
type Supplier struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	IsActive bool   `json:"isActive"`
}

// AppState is the whole state tree. Its JSON form is also the persisted
// snapshot layout.
type AppState struct {
	CurrentUser *User      `json:"currentUser"`
	Users       []User     `json:"users"`
	Categories  []Category `json:"categories"`
	Products    []Product  `json:"products"`
	Sales       []Sale     `json:"sales"`
	Purchases   []Purchase `json:"purchases"`
	Suppliers   []Supplier `json:"suppliers"`
}

// Clone returns a deep copy of the state tree
func (s AppState) Clone() AppState {
	out := AppState{
		Users:      append([]User(nil), s.Users...),
		Categories: append([]Category(nil), s.Categories...),
		Products:   append([]Product(nil), s.Products...),
		Sales:      make([]Sale, len(s.Sales)),
		Purchases:  make([]Purchase, len(s.Purchases)),
		Suppliers:  append([]Supplier(nil), s.Suppliers...),
	}
	if s.CurrentUser != nil {
		u := *s.CurrentUser
		out.CurrentUser = &u
	}
	for i, sale := range s.Sales {
		sale.Items = append([]SaleItem(nil), sale.Items...)
		out.Sales[i] = sale
	}
	for i, p := range s.Purchases {
		p.Items = append([]PurchaseItem(nil), p.Items...)
		if p.ReceivedAt != nil {
			t := *p.ReceivedAt
			p.ReceivedAt = &t
		}
		out.Purchases[i] = p
	}
	return out
}
