// Package state owns the application state tree and the closed set of
// transitions that may change it. Every transition runs inside one critical
// section; observers only ever see a tree that is fully before or fully after
// a transition.
package state

import (
	"strings"
	"sync"

	"pos-service/internal/models"

	"github.com/google/uuid"
)

// Store holds the state tree behind a single mutex
type Store struct {
	mu       sync.Mutex
	state    models.AppState
	onChange func(models.AppState)
}

// NewStore creates a store seeded with the given state
func NewStore(initial models.AppState) *Store {
	return &Store{state: initial.Clone()}
}

// OnChange registers the persistence hook. It receives a deep copy of the
// tree after every completed transition.
func (s *Store) OnChange(fn func(models.AppState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// notify must be called with the lock held
func (s *Store) notify() {
	if s.onChange != nil {
		s.onChange(s.state.Clone())
	}
}

func newID() string {
	return uuid.NewString()
}

// Replace swaps in a whole new tree. Used at load time only.
func (s *Store) Replace(st models.AppState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st.Clone()
	s.notify()
}

// Snapshot returns a deep copy of the current tree
func (s *Store) Snapshot() models.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// SetCurrentUser records the session principal
func (s *Store) SetCurrentUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CurrentUser = &u
	s.notify()
}

// ClearCurrentUser ends the session
func (s *Store) ClearCurrentUser() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CurrentUser = nil
	s.notify()
}

// CurrentUser returns a copy of the session principal, or nil
func (s *Store) CurrentUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.CurrentUser == nil {
		return nil
	}
	u := *s.state.CurrentUser
	return &u
}

// FindUserByEmail looks a user up by case-insensitive email match
func (s *Store) FindUserByEmail(email string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.state.Users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return models.User{}, false
}

// User returns a user by id
func (s *Store) User(id string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.state.Users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// Product returns a product by id
func (s *Store) Product(id string) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.state.Products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// Category returns a category by id
func (s *Store) Category(id string) (models.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.state.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return models.Category{}, false
}

// Supplier returns a supplier by id
func (s *Store) Supplier(id string) (models.Supplier, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sup := range s.state.Suppliers {
		if sup.ID == id {
			return sup, true
		}
	}
	return models.Supplier{}, false
}

// Purchase returns a purchase by id
func (s *Store) Purchase(id string) (models.Purchase, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.state.Purchases {
		if p.ID == id {
			p.Items = append([]models.PurchaseItem(nil), p.Items...)
			return p, true
		}
	}
	return models.Purchase{}, false
}

// Users returns a copy of the user collection
func (s *Store) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.User(nil), s.state.Users...)
}

// Categories returns a copy of the category collection
func (s *Store) Categories() []models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Category(nil), s.state.Categories...)
}

// Products returns a copy of the product catalog
func (s *Store) Products() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Product(nil), s.state.Products...)
}

// Sales returns a deep copy of the sales log
func (s *Store) Sales() []models.Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Sale, len(s.state.Sales))
	for i, sale := range s.state.Sales {
		sale.Items = append([]models.SaleItem(nil), sale.Items...)
		out[i] = sale
	}
	return out
}

// Purchases returns a deep copy of the purchase collection
func (s *Store) Purchases() []models.Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Purchase, len(s.state.Purchases))
	for i, p := range s.state.Purchases {
		p.Items = append([]models.PurchaseItem(nil), p.Items...)
		out[i] = p
	}
	return out
}

// Suppliers returns a copy of the supplier collection
func (s *Store) Suppliers() []models.Supplier {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Supplier(nil), s.state.Suppliers...)
}
