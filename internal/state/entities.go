package state

import (
	"strings"
	"time"

	"pos-service/internal/models"
)

// NewUser is the payload for AddUser
type NewUser struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required"`
	Role     models.Role `json:"role" binding:"required"`
	IsActive bool        `json:"isActive"`
}

// UserUpdate is a partial update; nil fields are left untouched
type UserUpdate struct {
	Name     *string      `json:"name"`
	Email    *string      `json:"email"`
	Role     *models.Role `json:"role"`
	IsActive *bool        `json:"isActive"`
}

// AddUser creates a user with a fresh id and creation timestamp
func (s *Store) AddUser(in NewUser) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(in.Name) == "" {
		return models.User{}, &models.ValidationError{Field: "name", Message: "name is required"}
	}
	if strings.TrimSpace(in.Email) == "" {
		return models.User{}, &models.ValidationError{Field: "email", Message: "email is required"}
	}
	if !in.Role.Valid() {
		return models.User{}, &models.ValidationError{Field: "role", Message: "unknown role"}
	}
	if s.emailTaken(in.Email, "") {
		return models.User{}, &models.ValidationError{Field: "email", Message: "email already in use"}
	}

	user := models.User{
		ID:        newID(),
		Name:      in.Name,
		Email:     in.Email,
		Role:      in.Role,
		IsActive:  in.IsActive,
		CreatedAt: time.Now().UTC(),
	}
	s.state.Users = append(s.state.Users, user)
	s.notify()
	return user, nil
}

// UpdateUser applies a partial update to one user. Unknown ids are a no-op.
// The acting session's own record cannot deactivate itself.
func (s *Store) UpdateUser(id string, upd UserUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, u := range s.state.Users {
		if u.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}

	if upd.Email != nil {
		if strings.TrimSpace(*upd.Email) == "" {
			return &models.ValidationError{Field: "email", Message: "email is required"}
		}
		if s.emailTaken(*upd.Email, id) {
			return &models.ValidationError{Field: "email", Message: "email already in use"}
		}
	}
	if upd.Role != nil && !upd.Role.Valid() {
		return &models.ValidationError{Field: "role", Message: "unknown role"}
	}
	if upd.IsActive != nil && !*upd.IsActive &&
		s.state.CurrentUser != nil && s.state.CurrentUser.ID == id {
		return &models.ValidationError{Field: "isActive", Message: "cannot deactivate the active session's own account"}
	}

	u := &s.state.Users[idx]
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.IsActive != nil {
		u.IsActive = *upd.IsActive
	}
	s.notify()
	return nil
}

// emailTaken must be called with the lock held
func (s *Store) emailTaken(email, excludeID string) bool {
	for _, u := range s.state.Users {
		if u.ID != excludeID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

// NewCategory is the payload for AddCategory
type NewCategory struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// CategoryUpdate is a partial update; nil fields are left untouched
type CategoryUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

// AddCategory creates a category with a fresh id
func (s *Store) AddCategory(in NewCategory) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(in.Name) == "" {
		return models.Category{}, &models.ValidationError{Field: "name", Message: "name is required"}
	}

	cat := models.Category{
		ID:          newID(),
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
	}
	s.state.Categories = append(s.state.Categories, cat)
	s.notify()
	return cat, nil
}

// UpdateCategory applies a partial update to one category. Unknown ids are a no-op.
func (s *Store) UpdateCategory(id string, upd CategoryUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Categories {
		if s.state.Categories[i].ID != id {
			continue
		}
		if upd.Name != nil {
			if strings.TrimSpace(*upd.Name) == "" {
				return &models.ValidationError{Field: "name", Message: "name is required"}
			}
			s.state.Categories[i].Name = *upd.Name
		}
		if upd.Description != nil {
			s.state.Categories[i].Description = *upd.Description
		}
		if upd.Color != nil {
			s.state.Categories[i].Color = *upd.Color
		}
		s.notify()
		return nil
	}
	return nil
}

// NewProduct is the payload for AddProduct
type NewProduct struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	CategoryID  string  `json:"categoryId"`
	Price       float64 `json:"price"`
	Cost        float64 `json:"cost"`
	Stock       int     `json:"stock"`
	MinStock    int     `json:"minStock"`
	SKU         string  `json:"sku" binding:"required"`
	Image       string  `json:"image"`
	IsActive    bool    `json:"isActive"`
}

// ProductUpdate is a partial update; nil fields are left untouched. Stock here
// is the direct inventory edit: an absolute set, not a delta.
type ProductUpdate struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	CategoryID  *string  `json:"categoryId"`
	Price       *float64 `json:"price"`
	Cost        *float64 `json:"cost"`
	Stock       *int     `json:"stock"`
	MinStock    *int     `json:"minStock"`
	SKU         *string  `json:"sku"`
	Image       *string  `json:"image"`
	IsActive    *bool    `json:"isActive"`
}

// AddProduct creates a product with a fresh id and creation timestamp
func (s *Store) AddProduct(in NewProduct) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(in.Name) == "" {
		return models.Product{}, &models.ValidationError{Field: "name", Message: "name is required"}
	}
	if strings.TrimSpace(in.SKU) == "" {
		return models.Product{}, &models.ValidationError{Field: "sku", Message: "sku is required"}
	}
	if in.Price < 0 {
		return models.Product{}, &models.ValidationError{Field: "price", Message: "price cannot be negative"}
	}
	if in.Cost < 0 {
		return models.Product{}, &models.ValidationError{Field: "cost", Message: "cost cannot be negative"}
	}
	if in.Stock < 0 {
		return models.Product{}, &models.ValidationError{Field: "stock", Message: "stock cannot be negative"}
	}
	if in.MinStock < 0 {
		return models.Product{}, &models.ValidationError{Field: "minStock", Message: "minStock cannot be negative"}
	}
	if s.skuTaken(in.SKU, "") {
		return models.Product{}, &models.ValidationError{Field: "sku", Message: "sku already in use"}
	}

	product := models.Product{
		ID:          newID(),
		Name:        in.Name,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		Price:       in.Price,
		Cost:        in.Cost,
		Stock:       in.Stock,
		MinStock:    in.MinStock,
		SKU:         in.SKU,
		Image:       in.Image,
		IsActive:    in.IsActive,
		CreatedAt:   time.Now().UTC(),
	}
	s.state.Products = append(s.state.Products, product)
	s.notify()
	return product, nil
}

// UpdateProduct applies a partial update to one product. Unknown ids are a no-op.
func (s *Store) UpdateProduct(id string, upd ProductUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, p := range s.state.Products {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}

	if upd.Price != nil && *upd.Price < 0 {
		return &models.ValidationError{Field: "price", Message: "price cannot be negative"}
	}
	if upd.Cost != nil && *upd.Cost < 0 {
		return &models.ValidationError{Field: "cost", Message: "cost cannot be negative"}
	}
	if upd.Stock != nil && *upd.Stock < 0 {
		return &models.ValidationError{Field: "stock", Message: "stock cannot be negative"}
	}
	if upd.MinStock != nil && *upd.MinStock < 0 {
		return &models.ValidationError{Field: "minStock", Message: "minStock cannot be negative"}
	}
	if upd.SKU != nil {
		if strings.TrimSpace(*upd.SKU) == "" {
			return &models.ValidationError{Field: "sku", Message: "sku is required"}
		}
		if s.skuTaken(*upd.SKU, id) {
			return &models.ValidationError{Field: "sku", Message: "sku already in use"}
		}
	}

	p := &s.state.Products[idx]
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.CategoryID != nil {
		p.CategoryID = *upd.CategoryID
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.Cost != nil {
		p.Cost = *upd.Cost
	}
	if upd.Stock != nil {
		p.Stock = *upd.Stock
	}
	if upd.MinStock != nil {
		p.MinStock = *upd.MinStock
	}
	if upd.SKU != nil {
		p.SKU = *upd.SKU
	}
	if upd.Image != nil {
		p.Image = *upd.Image
	}
	if upd.IsActive != nil {
		p.IsActive = *upd.IsActive
	}
	s.notify()
	return nil
}

// skuTaken must be called with the lock held
func (s *Store) skuTaken(sku, excludeID string) bool {
	for _, p := range s.state.Products {
		if p.ID != excludeID && strings.EqualFold(p.SKU, sku) {
			return true
		}
	}
	return false
}

// NewPurchase is the payload for AddPurchase
type NewPurchase struct {
	SupplierID string                `json:"supplierId" binding:"required"`
	Items      []models.PurchaseItem `json:"items" binding:"required,min=1"`
	Subtotal   float64               `json:"subtotal"`
	Tax        float64               `json:"tax"`
	Total      float64               `json:"total"`
}

// PurchaseUpdate changes a purchase's status
type PurchaseUpdate struct {
	Status *models.PurchaseStatus `json:"status"`
}

// AddPurchase records a new pending purchase
func (s *Store) AddPurchase(in NewPurchase) (models.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(in.Items) == 0 {
		return models.Purchase{}, &models.ValidationError{Field: "items", Message: "purchase needs at least one item"}
	}
	for _, item := range in.Items {
		if item.Quantity < 1 {
			return models.Purchase{}, &models.ValidationError{Field: "items", Message: "quantity must be at least 1"}
		}
		if item.Cost < 0 {
			return models.Purchase{}, &models.ValidationError{Field: "items", Message: "cost cannot be negative"}
		}
	}

	purchase := models.Purchase{
		ID:         newID(),
		SupplierID: in.SupplierID,
		Items:      append([]models.PurchaseItem(nil), in.Items...),
		Subtotal:   in.Subtotal,
		Tax:        in.Tax,
		Total:      in.Total,
		Status:     models.PurchasePending,
		CreatedAt:  time.Now().UTC(),
	}
	s.state.Purchases = append(s.state.Purchases, purchase)
	s.notify()
	return purchase, nil
}

// UpdatePurchase moves a purchase through its status machine. Only
// pending -> received and pending -> cancelled are legal; received and
// cancelled are terminal. Receiving a purchase never touches product stock:
// stock changes go through the sale commit or a direct inventory edit.
func (s *Store) UpdatePurchase(id string, upd PurchaseUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Purchases {
		if s.state.Purchases[i].ID != id {
			continue
		}
		if upd.Status == nil {
			return nil
		}
		if !upd.Status.Valid() {
			return &models.ValidationError{Field: "status", Message: "unknown status"}
		}
		p := &s.state.Purchases[i]
		if p.Status != models.PurchasePending && *upd.Status != p.Status {
			return &models.ValidationError{Field: "status", Message: "purchase is already " + string(p.Status)}
		}
		p.Status = *upd.Status
		if p.Status == models.PurchaseReceived && p.ReceivedAt == nil {
			now := time.Now().UTC()
			p.ReceivedAt = &now
		}
		s.notify()
		return nil
	}
	return nil
}

// NewSupplier is the payload for AddSupplier
type NewSupplier struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	IsActive bool   `json:"isActive"`
}

// SupplierUpdate is a partial update; nil fields are left untouched
type SupplierUpdate struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	IsActive *bool   `json:"isActive"`
}

// AddSupplier creates a supplier with a fresh id
func (s *Store) AddSupplier(in NewSupplier) (models.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(in.Name) == "" {
		return models.Supplier{}, &models.ValidationError{Field: "name", Message: "name is required"}
	}

	supplier := models.Supplier{
		ID:       newID(),
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Address:  in.Address,
		IsActive: in.IsActive,
	}
	s.state.Suppliers = append(s.state.Suppliers, supplier)
	s.notify()
	return supplier, nil
}

// UpdateSupplier applies a partial update to one supplier. Unknown ids are a no-op.
func (s *Store) UpdateSupplier(id string, upd SupplierUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Suppliers {
		if s.state.Suppliers[i].ID != id {
			continue
		}
		sup := &s.state.Suppliers[i]
		if upd.Name != nil {
			if strings.TrimSpace(*upd.Name) == "" {
				return &models.ValidationError{Field: "name", Message: "name is required"}
			}
			sup.Name = *upd.Name
		}
		if upd.Email != nil {
			sup.Email = *upd.Email
		}
		if upd.Phone != nil {
			sup.Phone = *upd.Phone
		}
		if upd.Address != nil {
			sup.Address = *upd.Address
		}
		if upd.IsActive != nil {
			sup.IsActive = *upd.IsActive
		}
		s.notify()
		return nil
	}
	return nil
}
