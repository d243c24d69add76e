package webstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"relational-reports/internal/apperrors"
)

// PendingStatus is matched case-sensitively against order_status.
const PendingStatus = "Pending"

func (s *Service) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT customer_id, first_name, last_name, email FROM customers ORDER BY customer_id")
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := []Customer{}
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email); err != nil {
			return nil, fmt.Errorf("list customers: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

// OrdersWithItemCount lists every order with the summed quantity of its items.
func (s *Service) OrdersWithItemCount(ctx context.Context) ([]OrderItemCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.order_id, c.first_name, c.last_name, o.order_status,
		       COALESCE(SUM(oi.quantity), 0) AS item_count
		  FROM orders o
		  LEFT JOIN customers c ON c.customer_id = o.customer_id
		  LEFT JOIN order_items oi ON oi.order_id = o.order_id
		 GROUP BY o.order_id, c.first_name, c.last_name, o.order_status
		 ORDER BY o.order_id`)
	if err != nil {
		return nil, fmt.Errorf("orders with item count: %w", err)
	}
	defer rows.Close()

	out := []OrderItemCount{}
	for rows.Next() {
		var r OrderItemCount
		var first, last *string
		if err := rows.Scan(&r.OrderID, &first, &last, &r.Status, &r.ItemCount); err != nil {
			return nil, fmt.Errorf("orders with item count: %w", err)
		}
		r.CustomerName = displayName(first, last)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("orders with item count: %w", err)
	}
	return out, nil
}

// ProductsByPriceDesc orders products by price, most expensive first, keeping
// id order among equal prices.
func (s *Service) ProductsByPriceDesc(ctx context.Context) ([]Product, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT product_id, product_name, price, category_id FROM products ORDER BY price DESC, product_id")
	if err != nil {
		return nil, fmt.Errorf("products by price: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.CategoryID); err != nil {
			return nil, fmt.Errorf("products by price: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("products by price: %w", err)
	}
	return products, nil
}

// PendingOrdersWithTotal lists the orders whose status is exactly "Pending"
// with the value of their items.
func (s *Service) PendingOrdersWithTotal(ctx context.Context) ([]PendingOrder, error) {
	q := s.db
	rows, err := q.QueryContext(ctx, `
		SELECT o.order_id, c.first_name, c.last_name, o.order_date,
		       oi.quantity, oi.unit_price, oi.discount
		  FROM orders o
		  LEFT JOIN customers c ON c.customer_id = o.customer_id
		  LEFT JOIN order_items oi ON oi.order_id = o.order_id
		 WHERE `+q.Dialect().ExactMatch("o.order_status")+`
		 ORDER BY o.order_id, oi.product_id`, PendingStatus)
	if err != nil {
		return nil, fmt.Errorf("pending orders: %w", err)
	}
	defer rows.Close()

	out := []PendingOrder{}
	for rows.Next() {
		var (
			id          int64
			first, last *string
			orderDate   *time.Time
			line        itemLine
		)
		if err := rows.Scan(&id, &first, &last, &orderDate, &line.quantity, &line.unitPrice, &line.discount); err != nil {
			return nil, fmt.Errorf("pending orders: %w", err)
		}
		if n := len(out); n == 0 || out[n-1].OrderID != id {
			out = append(out, PendingOrder{
				OrderID:      id,
				CustomerName: displayName(first, last),
				OrderDate:    utc(orderDate),
				Total:        decimal.Zero,
			})
		}
		cur := &out[len(out)-1]
		cur.Total = cur.Total.Add(line.total())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pending orders: %w", err)
	}
	return out, nil
}

// OrderCountPerCustomer counts the orders of every customer, including
// customers who never ordered.
func (s *Service) OrderCountPerCustomer(ctx context.Context) ([]CustomerOrderCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.customer_id, c.first_name, c.last_name, COUNT(o.order_id) AS order_count
		  FROM customers c
		  LEFT JOIN orders o ON o.customer_id = c.customer_id
		 GROUP BY c.customer_id, c.first_name, c.last_name
		 ORDER BY c.customer_id`)
	if err != nil {
		return nil, fmt.Errorf("order count per customer: %w", err)
	}
	defer rows.Close()

	out := []CustomerOrderCount{}
	for rows.Next() {
		var r CustomerOrderCount
		var first, last string
		if err := rows.Scan(&r.CustomerID, &first, &last, &r.OrderCount); err != nil {
			return nil, fmt.Errorf("order count per customer: %w", err)
		}
		r.CustomerName = displayName(&first, &last)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order count per customer: %w", err)
	}
	return out, nil
}

// TopCustomersByValue ranks customers by the value of all their orders,
// highest first, ties broken by customer id. At most n entries are returned.
func (s *Service) TopCustomersByValue(ctx context.Context, n int) ([]CustomerValue, error) {
	if n < 1 {
		return nil, apperrors.Invalid("n", "must be at least 1, got %d", n)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.customer_id, c.first_name, c.last_name,
		       oi.quantity, oi.unit_price, oi.discount
		  FROM customers c
		  LEFT JOIN orders o ON o.customer_id = c.customer_id
		  LEFT JOIN order_items oi ON oi.order_id = o.order_id
		 ORDER BY c.customer_id`)
	if err != nil {
		return nil, fmt.Errorf("top customers: %w", err)
	}
	defer rows.Close()

	ranked := []CustomerValue{}
	for rows.Next() {
		var (
			id          int64
			first, last string
			line        itemLine
		)
		if err := rows.Scan(&id, &first, &last, &line.quantity, &line.unitPrice, &line.discount); err != nil {
			return nil, fmt.Errorf("top customers: %w", err)
		}
		if k := len(ranked); k == 0 || ranked[k-1].CustomerID != id {
			ranked = append(ranked, CustomerValue{CustomerID: id, CustomerName: displayName(&first, &last), TotalValue: decimal.Zero})
		}
		cur := &ranked[len(ranked)-1]
		cur.TotalValue = cur.TotalValue.Add(line.total())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top customers: %w", err)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if c := ranked[i].TotalValue.Cmp(ranked[j].TotalValue); c != 0 {
			return c > 0
		}
		return ranked[i].CustomerID < ranked[j].CustomerID
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// RecentOrders lists the orders placed within windowDays before now, oldest
// first. Orders without a date never match.
func (s *Service) RecentOrders(ctx context.Context, windowDays int, now time.Time) ([]RecentOrder, error) {
	if windowDays < 0 {
		return nil, apperrors.Invalid("window_days", "must not be negative, got %d", windowDays)
	}
	cutoff := now.UTC().AddDate(0, 0, -windowDays)

	rows, err := s.db.QueryContext(ctx, `
		SELECT o.order_id, c.first_name, c.last_name, o.order_status, o.order_date
		  FROM orders o
		  LEFT JOIN customers c ON c.customer_id = o.customer_id
		 WHERE o.order_date >= ?
		 ORDER BY o.order_date, o.order_id`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}
	defer rows.Close()

	out := []RecentOrder{}
	for rows.Next() {
		var r RecentOrder
		var first, last *string
		if err := rows.Scan(&r.OrderID, &first, &last, &r.Status, &r.OrderDate); err != nil {
			return nil, fmt.Errorf("recent orders: %w", err)
		}
		r.CustomerName = displayName(first, last)
		r.OrderDate = r.OrderDate.UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}
	return out, nil
}

// TotalSoldPerProduct sums the sold quantity of every product that appears in
// at least one order item, best sellers first.
func (s *Service) TotalSoldPerProduct(ctx context.Context) ([]ProductSales, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.product_id, p.product_name, SUM(oi.quantity) AS total_quantity
		  FROM order_items oi
		  JOIN products p ON p.product_id = oi.product_id
		 GROUP BY p.product_id, p.product_name
		 ORDER BY total_quantity DESC, p.product_id`)
	if err != nil {
		return nil, fmt.Errorf("total sold per product: %w", err)
	}
	defer rows.Close()

	out := []ProductSales{}
	for rows.Next() {
		var r ProductSales
		if err := rows.Scan(&r.ProductID, &r.ProductName, &r.TotalQuantity); err != nil {
			return nil, fmt.Errorf("total sold per product: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("total sold per product: %w", err)
	}
	return out, nil
}

// DiscountedOrders lists the orders with at least one discounted item, each
// with only its discounted items.
func (s *Service) DiscountedOrders(ctx context.Context) ([]DiscountedOrder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.order_id, c.first_name, c.last_name, p.product_name, oi.discount
		  FROM orders o
		  JOIN order_items oi ON oi.order_id = o.order_id
		  LEFT JOIN customers c ON c.customer_id = o.customer_id
		  LEFT JOIN products p ON p.product_id = oi.product_id
		 WHERE oi.discount > 0
		 ORDER BY o.order_id, oi.product_id`)
	if err != nil {
		return nil, fmt.Errorf("discounted orders: %w", err)
	}
	defer rows.Close()

	out := []DiscountedOrder{}
	for rows.Next() {
		var (
			id          int64
			first, last *string
			product     *string
			item        DiscountedItem
		)
		if err := rows.Scan(&id, &first, &last, &product, &item.Discount); err != nil {
			return nil, fmt.Errorf("discounted orders: %w", err)
		}
		item.ProductName = UnknownProduct
		if product != nil {
			item.ProductName = *product
		}
		if n := len(out); n == 0 || out[n-1].OrderID != id {
			out = append(out, DiscountedOrder{OrderID: id, CustomerName: displayName(first, last)})
		}
		cur := &out[len(out)-1]
		cur.Items = append(cur.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("discounted orders: %w", err)
	}
	return out, nil
}

// Shipments lists shipped orders with their carrier, tracking number and
// shipping address, in shipping order.
func (s *Service) Shipments(ctx context.Context) ([]Shipment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.order_id, c.first_name, c.last_name, o.order_status,
		       ca.carrier_name, o.tracking_number, o.shipped_date, o.delivered_date,
		       a.street, a.city, a.postal_code, a.country
		  FROM orders o
		  LEFT JOIN customers c ON c.customer_id = o.customer_id
		  LEFT JOIN carriers ca ON ca.carrier_id = o.carrier_id
		  LEFT JOIN addresses a ON a.address_id = o.shipping_address_id
		 WHERE o.shipped_date IS NOT NULL
		 ORDER BY o.shipped_date, o.order_id`)
	if err != nil {
		return nil, fmt.Errorf("shipments: %w", err)
	}
	defer rows.Close()

	out := []Shipment{}
	for rows.Next() {
		var (
			r                   Shipment
			first, last         *string
			street, city        *string
			postalCode, country *string
		)
		if err := rows.Scan(&r.OrderID, &first, &last, &r.Status,
			&r.Carrier, &r.TrackingNumber, &r.ShippedDate, &r.DeliveredDate,
			&street, &city, &postalCode, &country); err != nil {
			return nil, fmt.Errorf("shipments: %w", err)
		}
		r.CustomerName = displayName(first, last)
		r.ShippingAddress = formatAddress(street, city, postalCode, country)
		r.ShippedDate = utc(r.ShippedDate)
		r.DeliveredDate = utc(r.DeliveredDate)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("shipments: %w", err)
	}
	return out, nil
}

// itemLine is one order item as read through a LEFT JOIN; all fields are NULL
// for an order without items.
type itemLine struct {
	quantity  *int64
	unitPrice decimal.NullDecimal
	discount  decimal.NullDecimal
}

func (l itemLine) total() decimal.Decimal {
	if l.quantity == nil || !l.unitPrice.Valid {
		return decimal.Zero
	}
	discount := decimal.Zero
	if l.discount.Valid {
		discount = l.discount.Decimal
	}
	return lineTotal(l.unitPrice.Decimal, *l.quantity, discount)
}

func formatAddress(street, city, postalCode, country *string) string {
	var parts []string
	if street != nil {
		parts = append(parts, *street)
	}
	var locality []string
	for _, p := range []*string{postalCode, city} {
		if p != nil && *p != "" {
			locality = append(locality, *p)
		}
	}
	if len(locality) > 0 {
		parts = append(parts, strings.Join(locality, " "))
	}
	if country != nil {
		parts = append(parts, *country)
	}
	return strings.Join(parts, ", ")
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
