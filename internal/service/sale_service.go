package service

import (
	"context"
	"errors"
	"time"

	"pos-service/internal/broker"
	"pos-service/internal/models"
	"pos-service/internal/state"
	"pos-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaleService is the cart-to-sale pipeline: it validates a cart, prices it,
// and asks the store for the atomic commit.
type SaleService struct {
	store          *state.Store
	eventPublisher *broker.EventPublisher
	taxRate        float64
	logger         *zap.Logger
}

// NewSaleService creates a new sale service
func NewSaleService(store *state.Store, eventPublisher *broker.EventPublisher, taxRate float64) *SaleService {
	return &SaleService{
		store:          store,
		eventPublisher: eventPublisher,
		taxRate:        taxRate,
		logger:         util.GetLogger(),
	}
}

// CheckoutItem is one cart line in a checkout request. Price is the
// add-to-cart snapshot; when omitted, the current catalog price is snapped at
// checkout time.
type CheckoutItem struct {
	ProductID string   `json:"productId" binding:"required"`
	Quantity  int      `json:"quantity" binding:"required,min=1"`
	Price     *float64 `json:"price,omitempty"`
	Discount  float64  `json:"discount"`
}

// CheckoutRequest represents a request to commit a sale
type CheckoutRequest struct {
	Items          []CheckoutItem       `json:"items" binding:"required,min=1"`
	GlobalDiscount float64              `json:"globalDiscount"`
	PaymentMethod  models.PaymentMethod `json:"paymentMethod" binding:"required"`
	CustomerID     string               `json:"customerId,omitempty"`
}

// Checkout commits a sale for the acting cashier. Validation and the
// sale-plus-stock mutation happen in one critical section inside the store;
// on any error the state tree is untouched.
func (s *SaleService) Checkout(ctx context.Context, req *CheckoutRequest, cashierID string) (*models.Sale, error) {
	ctx, span := util.StartSpan(ctx, "SaleService.Checkout")
	defer span.End()

	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
	}()

	items := make([]models.SaleItem, len(req.Items))
	for i, line := range req.Items {
		item := models.SaleItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Discount:  line.Discount,
		}
		if line.Price != nil {
			item.Price = *line.Price
		} else {
			product, ok := s.store.Product(line.ProductID)
			if !ok {
				util.SalesFailedTotal.WithLabelValues("unknown_product").Inc()
				return nil, &models.CartError{Line: i, ProductID: line.ProductID, Message: "unknown product"}
			}
			item.Price = product.Price
		}
		items[i] = item
	}

	sale, err := s.store.CommitSale(state.SaleInput{
		Items:                 items,
		GlobalDiscountPercent: req.GlobalDiscount,
		TaxRate:               s.taxRate,
		PaymentMethod:         req.PaymentMethod,
		CashierID:             cashierID,
		CustomerID:            req.CustomerID,
	})
	if err != nil {
		util.SalesFailedTotal.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}

	util.SalesCommittedTotal.Inc()
	util.SaleAmount.Observe(sale.Total)
	s.logger.Info("Sale committed",
		zap.String("sale_id", sale.ID),
		zap.String("cashier_id", cashierID),
		zap.Float64("total", sale.Total),
		zap.Int("lines", len(sale.Items)))

	s.publishSaleEvents(ctx, &sale)

	return &sale, nil
}

// publishSaleEvents sends best-effort domain events. Publish failures are
// logged and never fail a committed sale.
func (s *SaleService) publishSaleEvents(ctx context.Context, sale *models.Sale) {
	event := &models.SaleCommittedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeSaleCommitted,
			Timestamp: time.Now(),
		},
		SaleID:        sale.ID,
		CashierID:     sale.CashierID,
		Total:         sale.Total,
		PaymentMethod: sale.PaymentMethod,
		Items:         sale.Items,
	}
	if err := s.eventPublisher.PublishSaleCommitted(ctx, event); err != nil {
		s.logger.Error("Failed to publish SaleCommitted event", zap.Error(err))
	}

	seen := make(map[string]bool, len(sale.Items))
	for _, item := range sale.Items {
		if seen[item.ProductID] {
			continue
		}
		seen[item.ProductID] = true

		product, ok := s.store.Product(item.ProductID)
		if !ok || product.Stock > product.MinStock {
			continue
		}

		util.LowStockEventsTotal.Inc()
		s.logger.Warn("Product at or below minimum stock",
			zap.String("product_id", product.ID),
			zap.String("sku", product.SKU),
			zap.Int("stock", product.Stock),
			zap.Int("min_stock", product.MinStock))

		lowStock := &models.LowStockEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeLowStock,
				Timestamp: time.Now(),
			},
			ProductID: product.ID,
			SKU:       product.SKU,
			Name:      product.Name,
			Stock:     product.Stock,
			MinStock:  product.MinStock,
		}
		if err := s.eventPublisher.PublishLowStock(ctx, lowStock); err != nil {
			s.logger.Error("Failed to publish LowStock event", zap.Error(err))
		}
	}
}

// failureReason buckets commit errors for metrics
func failureReason(err error) string {
	var stockErr *models.StockError
	var cartErr *models.CartError
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &stockErr):
		return "insufficient_stock"
	case errors.As(err, &cartErr):
		return "invalid_item"
	case errors.As(err, &validationErr):
		return "invalid_request"
	default:
		return "error"
	}
}
