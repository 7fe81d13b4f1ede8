package api

import (
	"errors"
	"net/http"
	"time"

	"pos-service/internal/auth"
	"pos-service/internal/models"
	"pos-service/internal/service"
	"pos-service/internal/state"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	authService   *service.AuthService
	saleService   *service.SaleService
	reportService *service.ReportService
	store         *state.Store
	tokens        *auth.TokenIssuer
	discountCap   float64
}

// NewHandler creates a new HTTP handler
func NewHandler(
	authService *service.AuthService,
	saleService *service.SaleService,
	reportService *service.ReportService,
	store *state.Store,
	tokens *auth.TokenIssuer,
	discountCap float64,
) *Handler {
	return &Handler{
		authService:   authService,
		saleService:   saleService,
		reportService: reportService,
		store:         store,
		tokens:        tokens,
		discountCap:   discountCap,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/login", h.login)

	v1 := router.Group("/api/v1")
	v1.Use(AuthRequired(h.tokens))
	{
		v1.POST("/logout", h.logout)

		v1.GET("/products", h.listProducts)
		v1.POST("/products", h.addProduct)
		v1.PUT("/products/:id", h.updateProduct)

		v1.GET("/categories", h.listCategories)
		v1.POST("/categories", h.addCategory)
		v1.PUT("/categories/:id", h.updateCategory)

		v1.GET("/suppliers", h.listSuppliers)
		v1.POST("/suppliers", h.addSupplier)
		v1.PUT("/suppliers/:id", h.updateSupplier)

		v1.GET("/purchases", h.listPurchases)
		v1.POST("/purchases", h.addPurchase)
		v1.PUT("/purchases/:id", h.updatePurchase)

		v1.GET("/sales", h.listSales)
		v1.POST("/sales/checkout", h.checkout)

		v1.GET("/reports/summary", h.reportSummary)
		v1.GET("/reports/top-products", h.reportTopProducts)
		v1.GET("/reports/payment-methods", h.reportPaymentMethods)

		admin := v1.Group("/")
		admin.Use(RequireRole(string(models.RoleAdmin)))
		{
			admin.GET("/users", h.listUsers)
			admin.POST("/users", h.addUser)
			admin.PUT("/users/:id", h.updateUser)
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// LoginRequest carries login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, token, err := h.authService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// always the same body: don't reveal which check failed
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *Handler) logout(c *gin.Context) {
	h.authService.Logout()
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *Handler) checkout(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	// store policy: the register caps the global discount
	if req.GlobalDiscount > h.discountCap {
		req.GlobalDiscount = h.discountCap
	}

	sale, err := h.saleService.Checkout(c.Request.Context(), &req, c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sale)
}

func (h *Handler) listSales(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Sales())
}

func (h *Handler) listProducts(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Products())
}

func (h *Handler) addProduct(c *gin.Context) {
	var in state.NewProduct
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	product, err := h.store.AddProduct(in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.store.Product(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var upd state.ProductUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.store.UpdateProduct(id, upd); err != nil {
		respondError(c, err)
		return
	}
	product, _ := h.store.Product(id)
	c.JSON(http.StatusOK, product)
}

func (h *Handler) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Categories())
}

func (h *Handler) addCategory(c *gin.Context) {
	var in state.NewCategory
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	category, err := h.store.AddCategory(in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *Handler) updateCategory(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.store.Category(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	var upd state.CategoryUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.store.UpdateCategory(id, upd); err != nil {
		respondError(c, err)
		return
	}
	category, _ := h.store.Category(id)
	c.JSON(http.StatusOK, category)
}

func (h *Handler) listSuppliers(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Suppliers())
}

func (h *Handler) addSupplier(c *gin.Context) {
	var in state.NewSupplier
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	supplier, err := h.store.AddSupplier(in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

func (h *Handler) updateSupplier(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.store.Supplier(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
		return
	}

	var upd state.SupplierUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.store.UpdateSupplier(id, upd); err != nil {
		respondError(c, err)
		return
	}
	supplier, _ := h.store.Supplier(id)
	c.JSON(http.StatusOK, supplier)
}

func (h *Handler) listPurchases(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Purchases())
}

func (h *Handler) addPurchase(c *gin.Context) {
	var in state.NewPurchase
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	purchase, err := h.store.AddPurchase(in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

func (h *Handler) updatePurchase(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.store.Purchase(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Purchase not found"})
		return
	}

	var upd state.PurchaseUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.store.UpdatePurchase(id, upd); err != nil {
		respondError(c, err)
		return
	}
	purchase, _ := h.store.Purchase(id)
	c.JSON(http.StatusOK, purchase)
}

func (h *Handler) listUsers(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Users())
}

func (h *Handler) addUser(c *gin.Context) {
	var in state.NewUser
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	user, err := h.store.AddUser(in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) updateUser(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.store.User(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var upd state.UserUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.store.UpdateUser(id, upd); err != nil {
		respondError(c, err)
		return
	}
	user, _ := h.store.User(id)
	c.JSON(http.StatusOK, user)
}

func (h *Handler) reportSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.reportService.Summary(time.Now()))
}

func (h *Handler) reportTopProducts(c *gin.Context) {
	c.JSON(http.StatusOK, h.reportService.TopProducts(10))
}

func (h *Handler) reportPaymentMethods(c *gin.Context) {
	c.JSON(http.StatusOK, h.reportService.RevenueByPaymentMethod())
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	var stockErr *models.StockError
	var cartErr *models.CartError
	var validationErr *models.ValidationError

	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{"error": stockErr.Error(), "productId": stockErr.ProductID, "line": stockErr.Line})
	case errors.As(err, &cartErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": cartErr.Error(), "productId": cartErr.ProductID, "line": cartErr.Line})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error(), "field": validationErr.Field})
	case errors.Is(err, models.ErrAuthFailed):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
