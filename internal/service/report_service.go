package service

import (
	"sort"
	"time"

	"pos-service/internal/models"
	"pos-service/internal/state"
)

// ReportService derives read-only analytics from a snapshot of the state
// tree. Nothing here mutates anything.
type ReportService struct {
	store *state.Store
}

// NewReportService creates a new report service
func NewReportService(store *state.Store) *ReportService {
	return &ReportService{store: store}
}

// Summary is the dashboard headline view
type Summary struct {
	TodayRevenue      float64          `json:"todayRevenue"`
	TodaySales        int              `json:"todaySales"`
	TotalRevenue      float64          `json:"totalRevenue"`
	TotalSales        int              `json:"totalSales"`
	AverageOrderValue float64          `json:"averageOrderValue"`
	TotalProducts     int              `json:"totalProducts"`
	ActiveProducts    int              `json:"activeProducts"`
	ActiveUsers       int              `json:"activeUsers"`
	LowStock          []models.Product `json:"lowStock"`
}

// Summary computes the dashboard view as of now
func (r *ReportService) Summary(now time.Time) Summary {
	st := r.store.Snapshot()

	var out Summary
	year, month, day := now.UTC().Date()
	for _, sale := range st.Sales {
		out.TotalRevenue += sale.Total
		out.TotalSales++
		sy, sm, sd := sale.CreatedAt.UTC().Date()
		if sy == year && sm == month && sd == day {
			out.TodayRevenue += sale.Total
			out.TodaySales++
		}
	}
	if out.TotalSales > 0 {
		out.AverageOrderValue = out.TotalRevenue / float64(out.TotalSales)
	}

	out.TotalProducts = len(st.Products)
	for _, p := range st.Products {
		if p.IsActive {
			out.ActiveProducts++
		}
		if p.Stock <= p.MinStock {
			out.LowStock = append(out.LowStock, p)
		}
	}
	for _, u := range st.Users {
		if u.IsActive {
			out.ActiveUsers++
		}
	}
	return out
}

// ProductSales is one row of the top-products report. Name degrades to
// "unknown" when the sold product no longer resolves.
type ProductSales struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

// TopProducts ranks products by units sold, net of line discounts
func (r *ReportService) TopProducts(limit int) []ProductSales {
	st := r.store.Snapshot()

	names := make(map[string]string, len(st.Products))
	for _, p := range st.Products {
		names[p.ID] = p.Name
	}

	byProduct := make(map[string]*ProductSales)
	for _, sale := range st.Sales {
		for _, item := range sale.Items {
			row, ok := byProduct[item.ProductID]
			if !ok {
				name, found := names[item.ProductID]
				if !found {
					name = "unknown"
				}
				row = &ProductSales{ProductID: item.ProductID, Name: name}
				byProduct[item.ProductID] = row
			}
			row.Quantity += item.Quantity
			row.Revenue += item.Price * float64(item.Quantity) * (1 - item.Discount/100)
		}
	}

	rows := make([]ProductSales, 0, len(byProduct))
	for _, row := range byProduct {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Quantity != rows[j].Quantity {
			return rows[i].Quantity > rows[j].Quantity
		}
		return rows[i].ProductID < rows[j].ProductID
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// PaymentMethodRevenue is one row of the payment-method breakdown
type PaymentMethodRevenue struct {
	Method  models.PaymentMethod `json:"method"`
	Count   int                  `json:"count"`
	Revenue float64              `json:"revenue"`
}

// RevenueByPaymentMethod breaks total revenue down by payment method
func (r *ReportService) RevenueByPaymentMethod() []PaymentMethodRevenue {
	st := r.store.Snapshot()

	byMethod := make(map[models.PaymentMethod]*PaymentMethodRevenue)
	for _, sale := range st.Sales {
		row, ok := byMethod[sale.PaymentMethod]
		if !ok {
			row = &PaymentMethodRevenue{Method: sale.PaymentMethod}
			byMethod[sale.PaymentMethod] = row
		}
		row.Count++
		row.Revenue += sale.Total
	}

	rows := make([]PaymentMethodRevenue, 0, len(byMethod))
	for _, row := range byMethod {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Revenue > rows[j].Revenue })
	return rows
}

// ProfitEstimate sums (snapshot price - current cost) per sold unit, net of
// line discounts. Items whose product no longer resolves contribute revenue
// with zero cost.
func (r *ReportService) ProfitEstimate() float64 {
	st := r.store.Snapshot()

	costs := make(map[string]float64, len(st.Products))
	for _, p := range st.Products {
		costs[p.ID] = p.Cost
	}

	var profit float64
	for _, sale := range st.Sales {
		for _, item := range sale.Items {
			net := item.Price * float64(item.Quantity) * (1 - item.Discount/100)
			profit += net - costs[item.ProductID]*float64(item.Quantity)
		}
	}
	return profit
}
