package webstore

import (
	"context"
	"time"

	"relational-reports/internal/runner"
)

// ReportOptions parametrizes the reports that take arguments.
type ReportOptions struct {
	TopCustomers     int
	RecentWindowDays int
	// Now anchors the recent-orders window; time.Now is used when nil.
	Now func() time.Time
}

// Reports returns every web-store report under a stable name, in menu order.
func (s *Service) Reports(opts ReportOptions) []runner.Report {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return []runner.Report{
		{Name: "list_customers", Run: rowsOf(s.ListCustomers)},
		{Name: "orders_with_item_count", Run: rowsOf(s.OrdersWithItemCount)},
		{Name: "products_by_price_desc", Run: rowsOf(s.ProductsByPriceDesc)},
		{Name: "pending_orders_with_total", Run: rowsOf(s.PendingOrdersWithTotal)},
		{Name: "order_count_per_customer", Run: rowsOf(s.OrderCountPerCustomer)},
		{Name: "top_customers_by_value", Run: rowsOf(func(ctx context.Context) ([]CustomerValue, error) {
			return s.TopCustomersByValue(ctx, opts.TopCustomers)
		})},
		{Name: "recent_orders", Run: rowsOf(func(ctx context.Context) ([]RecentOrder, error) {
			return s.RecentOrders(ctx, opts.RecentWindowDays, now())
		})},
		{Name: "total_sold_per_product", Run: rowsOf(s.TotalSoldPerProduct)},
		{Name: "discounted_orders", Run: rowsOf(s.DiscountedOrders)},
		{Name: "shipments", Run: rowsOf(s.Shipments)},
	}
}

func rowsOf[T any](query func(context.Context) ([]T, error)) func(context.Context) (int, error) {
	return func(ctx context.Context) (int, error) {
		rows, err := query(ctx)
		return len(rows), err
	}
}
