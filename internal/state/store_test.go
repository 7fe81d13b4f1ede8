package state

import (
	"testing"
	"time"

	"pos-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedState() models.AppState {
	return models.AppState{
		Users: []models.User{
			{ID: "u1", Name: "Admin", Email: "admin@pos.com", Role: models.RoleAdmin, IsActive: true},
			{ID: "u2", Name: "Cashier", Email: "cashier@pos.com", Role: models.RoleCashier, IsActive: true},
		},
		Categories: []models.Category{
			{ID: "c1", Name: "Electronics"},
		},
		Products: []models.Product{
			{ID: "p1", Name: "Headphones", CategoryID: "c1", SKU: "WH001", Price: 10, Cost: 6, Stock: 5, MinStock: 2, IsActive: true},
			{ID: "p2", Name: "T-Shirt", SKU: "CT001", Price: 4, Cost: 2, Stock: 3, MinStock: 1, IsActive: true},
		},
		Suppliers: []models.Supplier{
			{ID: "s1", Name: "Tech Supplies", IsActive: true},
		},
	}
}

func TestAddUserAssignsIDAndTimestamp(t *testing.T) {
	store := NewStore(seedState())

	user, err := store.AddUser(NewUser{Name: "New", Email: "new@pos.com", Role: models.RoleManager, IsActive: true})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, time.UTC, user.CreatedAt.Location())

	got, ok := store.User(user.ID)
	require.True(t, ok)
	assert.Equal(t, user, got)
}

func TestAddUserRejectsDuplicateEmail(t *testing.T) {
	store := NewStore(seedState())

	_, err := store.AddUser(NewUser{Name: "Dup", Email: "ADMIN@pos.com", Role: models.RoleCashier})

	var vErr *models.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "email", vErr.Field)
	assert.Len(t, store.Users(), 2)
}

func TestAddUserRejectsUnknownRole(t *testing.T) {
	store := NewStore(seedState())

	_, err := store.AddUser(NewUser{Name: "Bad", Email: "bad@pos.com", Role: "superuser"})

	var vErr *models.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "role", vErr.Field)
}

func TestUpdateUserUnknownIDIsNoOp(t *testing.T) {
	store := NewStore(seedState())
	before := store.Snapshot()

	name := "Ghost"
	err := store.UpdateUser("missing", UserUpdate{Name: &name})

	require.NoError(t, err)
	assert.Equal(t, before, store.Snapshot())
}

func TestUpdateUserPartial(t *testing.T) {
	store := NewStore(seedState())

	name := "Renamed"
	require.NoError(t, store.UpdateUser("u2", UserUpdate{Name: &name}))

	user, ok := store.User("u2")
	require.True(t, ok)
	assert.Equal(t, "Renamed", user.Name)
	assert.Equal(t, "cashier@pos.com", user.Email)
	assert.Equal(t, models.RoleCashier, user.Role)
}

func TestUpdateUserCannotDeactivateOwnSession(t *testing.T) {
	store := NewStore(seedState())
	admin, _ := store.User("u1")
	store.SetCurrentUser(admin)

	inactive := false
	err := store.UpdateUser("u1", UserUpdate{IsActive: &inactive})

	var vErr *models.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "isActive", vErr.Field)

	user, _ := store.User("u1")
	assert.True(t, user.IsActive)

	// deactivating someone else is fine
	require.NoError(t, store.UpdateUser("u2", UserUpdate{IsActive: &inactive}))
	other, _ := store.User("u2")
	assert.False(t, other.IsActive)
}

func TestFindUserByEmailCaseInsensitive(t *testing.T) {
	store := NewStore(seedState())

	user, ok := store.FindUserByEmail("Admin@POS.com")
	require.True(t, ok)
	assert.Equal(t, "u1", user.ID)

	_, ok = store.FindUserByEmail("nobody@pos.com")
	assert.False(t, ok)
}

func TestAddProductValidation(t *testing.T) {
	store := NewStore(seedState())

	tests := []struct {
		name  string
		in    NewProduct
		field string
	}{
		{"duplicate sku", NewProduct{Name: "Clone", SKU: "wh001", Price: 1}, "sku"},
		{"negative price", NewProduct{Name: "Cheap", SKU: "NP001", Price: -1}, "price"},
		{"negative stock", NewProduct{Name: "Void", SKU: "NS001", Stock: -5}, "stock"},
		{"missing name", NewProduct{SKU: "NN001"}, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.AddProduct(tt.in)
			var vErr *models.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}

	assert.Len(t, store.Products(), 2)
}

func TestUpdateProductStockIsAbsoluteSet(t *testing.T) {
	store := NewStore(seedState())

	stock := 42
	require.NoError(t, store.UpdateProduct("p1", ProductUpdate{Stock: &stock}))

	product, _ := store.Product("p1")
	assert.Equal(t, 42, product.Stock)
}

func TestUpdateProductRejectsTakenSKU(t *testing.T) {
	store := NewStore(seedState())

	sku := "CT001"
	err := store.UpdateProduct("p1", ProductUpdate{SKU: &sku})

	var vErr *models.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "sku", vErr.Field)

	// keeping your own sku is not a collision
	own := "WH001"
	require.NoError(t, store.UpdateProduct("p1", ProductUpdate{SKU: &own}))
}

func TestPurchaseStatusMachine(t *testing.T) {
	store := NewStore(seedState())

	purchase, err := store.AddPurchase(NewPurchase{
		SupplierID: "s1",
		Items:      []models.PurchaseItem{{ProductID: "p1", Quantity: 10, Cost: 6}},
		Subtotal:   60, Tax: 4.8, Total: 64.8,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PurchasePending, purchase.Status)
	assert.Nil(t, purchase.ReceivedAt)

	received := models.PurchaseReceived
	require.NoError(t, store.UpdatePurchase(purchase.ID, PurchaseUpdate{Status: &received}))

	got, ok := store.Purchase(purchase.ID)
	require.True(t, ok)
	assert.Equal(t, models.PurchaseReceived, got.Status)
	require.NotNil(t, got.ReceivedAt)

	// received is terminal
	cancelled := models.PurchaseCancelled
	err = store.UpdatePurchase(purchase.ID, PurchaseUpdate{Status: &cancelled})
	var vErr *models.ValidationError
	require.ErrorAs(t, err, &vErr)

	got, _ = store.Purchase(purchase.ID)
	assert.Equal(t, models.PurchaseReceived, got.Status)
}

func TestReceivingPurchaseDoesNotChangeStock(t *testing.T) {
	store := NewStore(seedState())

	purchase, err := store.AddPurchase(NewPurchase{
		SupplierID: "s1",
		Items:      []models.PurchaseItem{{ProductID: "p1", Quantity: 100, Cost: 6}},
	})
	require.NoError(t, err)

	received := models.PurchaseReceived
	require.NoError(t, store.UpdatePurchase(purchase.ID, PurchaseUpdate{Status: &received}))

	product, _ := store.Product("p1")
	assert.Equal(t, 5, product.Stock)
}

func TestOnChangeReceivesIsolatedCopy(t *testing.T) {
	store := NewStore(seedState())

	var seen []models.AppState
	store.OnChange(func(st models.AppState) {
		seen = append(seen, st)
	})

	_, err := store.AddCategory(NewCategory{Name: "Books"})
	require.NoError(t, err)
	require.Len(t, seen, 1)

	// mutating the delivered copy must not leak back into the store
	seen[0].Products[0].Stock = -999
	product, _ := store.Product("p1")
	assert.Equal(t, 5, product.Stock)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	store := NewStore(seedState())

	snap := store.Snapshot()
	snap.Products[0].Price = 0
	snap.Users[0].Email = "tampered@pos.com"

	product, _ := store.Product("p1")
	assert.Equal(t, 10.0, product.Price)
	user, _ := store.User("u1")
	assert.Equal(t, "admin@pos.com", user.Email)
}

func TestReplaceSwapsWholeTree(t *testing.T) {
	store := NewStore(seedState())

	var notified int
	store.OnChange(func(models.AppState) { notified++ })

	store.Replace(models.AppState{
		Users: []models.User{{ID: "only", Name: "Only", Email: "only@pos.com", Role: models.RoleAdmin, IsActive: true}},
	})

	assert.Equal(t, 1, notified)
	assert.Len(t, store.Users(), 1)
	assert.Empty(t, store.Products())
}

func TestCurrentUserLifecycle(t *testing.T) {
	store := NewStore(seedState())
	assert.Nil(t, store.CurrentUser())

	admin, _ := store.User("u1")
	store.SetCurrentUser(admin)
	require.NotNil(t, store.CurrentUser())
	assert.Equal(t, "u1", store.CurrentUser().ID)

	store.ClearCurrentUser()
	assert.Nil(t, store.CurrentUser())
}
