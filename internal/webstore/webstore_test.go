package webstore

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relational-reports/internal/apperrors"
	"relational-reports/internal/database"
	"relational-reports/internal/relational"
	"relational-reports/internal/runner"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type shop struct {
	svc *Service
	db  *database.SQLiteDriver

	ada, alan, grace         int64
	adaHome, alanHome, spare int64
	dhl, ups                 int64
	notebook, pen, lamp, mug int64
	pending, shipped, lower  int64
	anonymous                int64
	store                    int64
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func daysAgo(n int) *time.Time {
	t := now.AddDate(0, 0, -n)
	return &t
}

func openShop(t testing.TB) *shop {
	t.Helper()
	ctx := context.Background()

	driver := &database.SQLiteDriver{}
	require.NoError(t, driver.Connect(ctx, filepath.Join(t.TempDir(), "webstore.db")))
	t.Cleanup(func() { _ = driver.Close() })
	require.NoError(t, relational.Provision(ctx, driver, Schema))

	s := &shop{svc: NewService(driver, log.New(io.Discard, "", 0)), db: driver}
	must := func(id int64, err error) int64 {
		t.Helper()
		require.NoError(t, err)
		return id
	}

	s.ada = must(s.svc.CreateCustomer(ctx, CustomerInput{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}))
	s.alan = must(s.svc.CreateCustomer(ctx, CustomerInput{FirstName: "Alan", LastName: "Turing", Email: "alan@example.com"}))
	s.grace = must(s.svc.CreateCustomer(ctx, CustomerInput{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"}))

	s.adaHome = must(s.svc.CreateAddress(ctx, AddressInput{CustomerID: &s.ada, Street: "12 St James's Sq", City: "London", PostalCode: "SW1Y 4JH", Country: "UK"}))
	s.alanHome = must(s.svc.CreateAddress(ctx, AddressInput{CustomerID: &s.alan, Street: "Bletchley Park", City: "Milton Keynes", PostalCode: "MK3 6EB", Country: "UK"}))
	s.spare = must(s.svc.CreateAddress(ctx, AddressInput{Street: "1 Nowhere Rd", City: "Leeds", Country: "UK"}))

	s.dhl = must(s.svc.CreateCarrier(ctx, CarrierInput{Name: "DHL", ContactURL: "https://dhl.example"}))
	s.ups = must(s.svc.CreateCarrier(ctx, CarrierInput{Name: "UPS"}))

	books := must(s.svc.CreateCategory(ctx, "Stationery"))
	s.notebook = must(s.svc.CreateProduct(ctx, ProductInput{Name: "Notebook", Price: dec("10.00"), CategoryID: &books}))
	s.pen = must(s.svc.CreateProduct(ctx, ProductInput{Name: "Pen", Price: dec("2.50"), CategoryID: &books}))
	s.lamp = must(s.svc.CreateProduct(ctx, ProductInput{Name: "Lamp", Price: dec("25.00")}))
	s.mug = must(s.svc.CreateProduct(ctx, ProductInput{Name: "Mug", Price: dec("10.00")}))

	s.store = must(s.svc.CreateStore(ctx, "Main Street"))

	s.pending = must(s.svc.CreateOrder(ctx, OrderInput{
		CustomerID: &s.ada, Status: "Pending", OrderDate: daysAgo(2),
		ShippingAddressID: s.adaHome, BillingAddressID: s.adaHome,
		Items: []OrderItemInput{{ProductID: s.notebook, Quantity: 2, UnitPrice: dec("10"), Discount: dec("1")}},
	}))
	s.shipped = must(s.svc.CreateOrder(ctx, OrderInput{
		CustomerID: &s.alan, Status: "Processing", OrderDate: daysAgo(10),
		ShippingAddressID: s.alanHome, BillingAddressID: s.alanHome,
		Items: []OrderItemInput{
			{ProductID: s.lamp, Quantity: 1, UnitPrice: dec("25.00")},
			{ProductID: s.pen, Quantity: 4, UnitPrice: dec("2.50"), Discount: dec("0.50")},
		},
	}))
	s.lower = must(s.svc.CreateOrder(ctx, OrderInput{
		CustomerID: &s.ada, Status: "pending", OrderDate: daysAgo(40),
		ShippingAddressID: s.adaHome, BillingAddressID: s.adaHome,
		Items: []OrderItemInput{{ProductID: s.pen, Quantity: 2, UnitPrice: dec("2.50")}},
	}))
	s.anonymous = must(s.svc.CreateOrder(ctx, OrderInput{
		Status:            "Pending",
		ShippingAddressID: s.spare, BillingAddressID: s.spare,
		Items: []OrderItemInput{{ProductID: s.mug, Quantity: 1, UnitPrice: dec("10.00")}},
	}))
	require.NoError(t, s.svc.ShipOrder(ctx, s.shipped, s.dhl, "TRK-1", now.AddDate(0, 0, -9)))
	return s
}

func (s *shop) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.QueryRowContext(context.Background(), query, args...).Scan(&n))
	return n
}

func TestListCustomers(t *testing.T) {
	t.Parallel()

	s := openShop(t)
	customers, err := s.svc.ListCustomers(context.Background())
	require.NoError(t, err)
	require.Len(t, customers, 3)
	assert.Equal(t, "Ada Lovelace", customers[0].DisplayName())
	assert.Equal(t, "grace@example.com", customers[2].Email)
}

func TestOrdersWithItemCount(t *testing.T) {
	t.Parallel()

	s := openShop(t)
	rows, err := s.svc.OrdersWithItemCount(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 4)

	got := map[int64]int64{}
	for _, r := range rows {
		got[r.OrderID] = r.ItemCount
	}
	assert.Equal(t, map[int64]int64{s.pending: 2, s.shipped: 5, s.lower: 2, s.anonymous: 1}, got)
	assert.Equal(t, "Ada Lovelace", rows[0].CustomerName)
	assert.Equal(t, UnknownCustomer, rows[3].CustomerName)
	require.NotNil(t, rows[1].Status)
	assert.Equal(t, StatusShipped, *rows[1].Status)
}

func TestProductsByPriceDescKeepsIDOrderOnTies(t *testing.T) {
	t.Parallel()

	s := openShop(t)
	products, err := s.svc.ProductsByPriceDesc(context.Background())
	require.NoError(t, err)

	var ids []int64
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int64{s.lamp, s.notebook, s.mug, s.pen}, ids)
	assert.Equal(t, "2.50", products[3].Price.StringFixed(2))
	assert.Nil(t, products[0].CategoryID)
	assert.NotNil(t, products[1].CategoryID)
}

func TestPendingOrdersWithTotal(t *testing.T) {
	t.Parallel()

	s := openShop(t)
	orders, err := s.svc.PendingOrdersWithTotal(context.Background())
	require.NoError(t, err)

	// "pending" in lower case is not a pending order.
	require.Len(t, orders, 2)
	assert.Equal(t, s.pending, orders[0].OrderID)
	assert.Equal(t, "19.00", orders[0].Total.StringFixed(2))
	assert.Equal(t, "Ada Lovelace", orders[0].CustomerName)
	require.NotNil(t, orders[0].OrderDate)
	assert.True(t, daysAgo(2).Equal(*orders[0].OrderDate))

	assert.Equal(t, s.anonymous, orders[1].OrderID)
	assert.Equal(t, UnknownCustomer, orders[1].CustomerName)
	assert.Nil(t, orders[1].OrderDate)
	assert.True(t, orders[1].Total.Equal(dec("10")))
}

func TestOrderCountPerCustomerIncludesCustomersWithoutOrders(t *testing.T) {
	t.Parallel()

	s := openShop(t)
	counts, err := s.svc.OrderCountPerCustomer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []CustomerOrderCount{
		{CustomerID: s.ada, CustomerName: "Ada Lovelace", OrderCount: 2},
		{CustomerID: s.alan, CustomerName: "Alan Turing", OrderCount: 1},
		{CustomerID: s.grace, CustomerName: "Grace Hopper", OrderCount: 0},
	}, counts)
}

func TestTopCustomersByValue(t *testing.T) {
	t.Parallel()

	s := openShop(t)
	ctx := context.Background()

	top, err := s.svc.TopCustomersByValue(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, s.alan, top[0].CustomerID)
	assert.Equal(t, "34.50", top[0].TotalValue.StringFixed(2))
	assert.Equal(t, s.ada, top[1].CustomerID)
	assert.Equal(t, "24.00", top[1].TotalValue.StringFixed(2))

	_, err = s.svc.TopCustomersByValue(ctx, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestTopCustomersReturnsFewerThanRequested(t *testing.T) {
	t.Parallel()

	s := openShop(t)
	ctx := context.Background()
	require.NoError(t, s.svc.DeleteCustomer(ctx, s.grace))

	top, err := s.svc.TopCustomersByValue(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Alan Turing", top[0].CustomerName)
	assert.Equal(t, "Ada Lovelace", top[1].CustomerName)
	assert.True(t, top[0].TotalValue.GreaterThan(top[1].TotalValue))
}

func TestTopCustomersBreaksTiesByID(t *testing.T) {
	t.Parallel()

	s := openShop(t)
	ctx := context.Background()
	_, err := s.svc.CreateOrder(ctx, OrderInput{
		CustomerID:        &s.grace,
		ShippingAddressID: s.spare, BillingAddressID: s.spare,
		Items: []OrderItemInput{{ProductID: s.lamp, Quantity: 1, UnitPrice: dec("9.50")}},
	})
	require.NoError(t, err)
	_, err = s.svc.CreateOrder(ctx, OrderInput{
		CustomerID:        &s.grace,
		ShippingAddressID: s.spare, BillingAddressID: s.spare,
		Items: []OrderItemInput{{ProductID: s.pen, Quantity: 10, UnitPrice: dec("1.45")}},
	})
	require.NoError(t, err)

	top, err := s.svc.TopCustomersByValue(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, s.ada, top[1].CustomerID)
	assert.Equal(t, s.grace, top[2].CustomerID)
	assert.True(t, top[1].TotalValue.Equal(top[2].TotalValue))
}

func TestRecentOrdersUsesInjectedNow(t *testing.T) {
	t.Parallel()

	s := openShop(t)
	ctx := context.Background()

	recent, err := s.svc.RecentOrders(ctx, 30, now)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, s.shipped, recent[0].OrderID)
	assert.Equal(t, s.pending, recent[1].OrderID)
	assert.True(t, daysAgo(10).Equal(recent[0].OrderDate))

	recent, err = s.svc.RecentOrders(ctx, 5, now)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "Ada Lovelace", recent[0].CustomerName)

	recent, err = s.svc.RecentOrders(ctx, 30, now.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Empty(t, recent)

	_, err = s.svc.RecentOrders(ctx, -1, now)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestTotalSoldPerProductOmitsUnsoldProducts(t *testing.T) {
	t.Parallel()

	s := openShop(t)
	ctx := context.Background()
	unsold, err := s.svc.CreateProduct(ctx, ProductInput{Name: "Stapler", Price: dec("7.99")})
	require.NoError(t, err)

	sales, err := s.svc.TotalSoldPerProduct(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ProductSales{
		{ProductID: s.pen, ProductName: "Pen", TotalQuantity: 6},
		{ProductID: s.notebook, ProductName: "Notebook", TotalQuantity: 2},
		{ProductID: s.lamp, ProductName: "Lamp", TotalQuantity: 1},
		{ProductID: s.mug, ProductName: "Mug", TotalQuantity: 1},
	}, sales)
	for _, p := range sales {
		assert.NotEqual(t, unsold, p.ProductID)
	}
}

func TestDiscountedOrdersListOnlyDiscountedItems(t *testing.T) {
	t.Parallel()

	s := openShop(t)
	orders, err := s.svc.DiscountedOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, s.pending, orders[0].OrderID)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, "Notebook", orders[0].Items[0].ProductName)
	assert.Equal(t, "1.00", orders[0].Items[0].Discount.StringFixed(2))

	assert.Equal(t, s.shipped, orders[1].OrderID)
	assert.Equal(t, "Alan Turing", orders[1].CustomerName)
	require.Len(t, orders[1].Items, 1)
	assert.Equal(t, "Pen", orders[1].Items[0].ProductName)
	assert.Equal(t, "0.50", orders[1].Items[0].Discount.StringFixed(2))
}

func TestShipmentsAndDelivery(t *testing.T) {
	t.Parallel()

	s := openShop(t)
	ctx := context.Background()

	shipments, err := s.svc.Shipments(ctx)
	require.NoError(t, err)
	require.Len(t, shipments, 1)
	sh := shipments[0]
	assert.Equal(t, s.shipped, sh.OrderID)
	require.NotNil(t, sh.Carrier)
	assert.Equal(t, "DHL", *sh.Carrier)
	require.NotNil(t, sh.TrackingNumber)
	assert.Equal(t, "TRK-1", *sh.TrackingNumber)
	assert.Nil(t, sh.DeliveredDate)
	assert.Equal(t, "Bletchley Park, MK3 6EB Milton Keynes, UK", sh.ShippingAddress)

	err = s.svc.MarkDelivered(ctx, s.pending, now)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	err = s.svc.MarkDelivered(ctx, s.shipped, now.AddDate(0, 0, -20))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	err = s.svc.MarkDelivered(ctx, 999, now)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, s.svc.MarkDelivered(ctx, s.shipped, now))
	shipments, err = s.svc.Shipments(ctx)
	require.NoError(t, err)
	require.NotNil(t, shipments[0].DeliveredDate)
	assert.True(t, now.Equal(*shipments[0].DeliveredDate))
	require.NotNil(t, shipments[0].Status)
	assert.Equal(t, StatusDelivered, *shipments[0].Status)

	err = s.svc.ShipOrder(ctx, s.pending, 999, "TRK-2", now)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	err = s.svc.ShipOrder(ctx, s.pending, s.ups, " ", now)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestDeleteReferencedAddressFailsIdentically(t *testing.T) {
	t.Parallel()

	s := openShop(t)
	ctx := context.Background()

	for attempt := 0; attempt < 2; attempt++ {
		err := s.svc.DeleteAddress(ctx, s.adaHome)
		var ri *apperrors.ReferentialIntegrityError
		require.ErrorAs(t, err, &ri)
		assert.Equal(t, EntityAddress, ri.Entity)
		assert.Equal(t, s.adaHome, ri.ID)
		assert.Equal(t, "orders", ri.ReferencedBy)
		assert.EqualValues(t, 2, ri.Count)
	}
	assert.Equal(t, 3, s.count(t, "SELECT COUNT(*) FROM addresses"))
	assert.Equal(t, 2, s.count(t, "SELECT COUNT(*) FROM orders WHERE shipping_address_id = ? AND billing_address_id = ?", s.adaHome, s.adaHome))

	require.NoError(t, s.svc.DeleteOrder(ctx, s.anonymous))
	require.NoError(t, s.svc.DeleteAddress(ctx, s.spare))
	assert.Equal(t, 2, s.count(t, "SELECT COUNT(*) FROM addresses"))
}

func TestDeleteCarrierClearsOrders(t *testing.T) {
	t.Parallel()

	s := openShop(t)
	ctx := context.Background()

	require.NoError(t, s.svc.DeleteCarrier(ctx, s.dhl))
	assert.Equal(t, 0, s.count(t, "SELECT COUNT(*) FROM orders WHERE carrier_id IS NOT NULL"))
	assert.Equal(t, 4, s.count(t, "SELECT COUNT(*) FROM orders"))

	shipments, err := s.svc.Shipments(ctx)
	require.NoError(t, err)
	require.Len(t, shipments, 1)
	assert.Nil(t, shipments[0].Carrier)

	err = s.svc.DeleteCarrier(ctx, s.dhl)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteOrderCascadesItems(t *testing.T) {
	t.Parallel()

	s := openShop(t)
	ctx := context.Background()

	require.NoError(t, s.svc.DeleteOrder(ctx, s.shipped))
	assert.Equal(t, 0, s.count(t, "SELECT COUNT(*) FROM order_items WHERE order_id = ?", s.shipped))
	assert.Equal(t, 4, s.count(t, "SELECT COUNT(*) FROM products"))
}

func TestDeleteCustomerDetachesOrders(t *testing.T) {
	t.Parallel()

	s := openShop(t)
	ctx := context.Background()

	require.NoError(t, s.svc.DeleteCustomer(ctx, s.ada))
	rows, err := s.svc.OrdersWithItemCount(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, UnknownCustomer, rows[0].CustomerName)
	assert.Equal(t, 1, s.count(t, "SELECT COUNT(*) FROM addresses WHERE address_id = ? AND customer_id IS NULL", s.adaHome))

	discounted, err := s.svc.DiscountedOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, UnknownCustomer, discounted[0].CustomerName)
}

func TestCreateOrderIsAtomic(t *testing.T) {
	t.Parallel()

	s := openShop(t)
	ctx := context.Background()

	_, err := s.svc.CreateOrder(ctx, OrderInput{
		ShippingAddressID: s.spare, BillingAddressID: s.spare,
		Items: []OrderItemInput{
			{ProductID: s.pen, Quantity: 1, UnitPrice: dec("2.50")},
			{ProductID: 999, Quantity: 1, UnitPrice: dec("1.00")},
		},
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = s.svc.CreateOrder(ctx, OrderInput{ShippingAddressID: 999, BillingAddressID: s.spare})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	for _, items := range [][]OrderItemInput{
		{{ProductID: s.pen, Quantity: 1, UnitPrice: dec("2.50")}, {ProductID: s.pen, Quantity: 2, UnitPrice: dec("2.50")}},
		{{ProductID: s.pen, Quantity: 0, UnitPrice: dec("2.50")}},
		{{ProductID: s.pen, Quantity: 1, UnitPrice: dec("2.505")}},
		{{ProductID: s.pen, Quantity: 1, UnitPrice: dec("2.50"), Discount: dec("3")}},
		{{ProductID: s.pen, Quantity: 1, UnitPrice: dec("-1")}},
	} {
		_, err = s.svc.CreateOrder(ctx, OrderInput{ShippingAddressID: s.spare, BillingAddressID: s.spare, Items: items})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	}
	assert.Equal(t, 4, s.count(t, "SELECT COUNT(*) FROM orders"))
	assert.Equal(t, 5, s.count(t, "SELECT COUNT(*) FROM order_items"))
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	s := openShop(t)
	ctx := context.Background()

	_, err := s.svc.CreateCustomer(ctx, CustomerInput{FirstName: "Ada", LastName: "King", Email: "ADA@example.com"})
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve.Field)

	_, err = s.svc.CreateCustomer(ctx, CustomerInput{FirstName: "Ada", Email: "x@example.com"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "last_name", ve.Field)

	_, err = s.svc.CreateCarrier(ctx, CarrierInput{Name: "dhl"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = s.svc.CreateAddress(ctx, AddressInput{Street: "x", City: "y"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	missing := int64(999)
	_, err = s.svc.CreateProduct(ctx, ProductInput{Name: "Ghost", Price: dec("1"), CategoryID: &missing})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = s.svc.CreateStaff(ctx, StaffInput{StoreID: missing, FirstName: "a", LastName: "b", Email: "c@example.com"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = s.svc.CreateStaff(ctx, StaffInput{StoreID: s.store, FirstName: "Linus", LastName: "T", Email: "linus@example.com"})
	require.NoError(t, err)
	err = s.svc.DeleteCustomer(ctx, missing)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSetStockUpserts(t *testing.T) {
	t.Parallel()

	s := openShop(t)
	ctx := context.Background()

	require.NoError(t, s.svc.SetStock(ctx, s.store, s.pen, 40, now))
	require.NoError(t, s.svc.SetStock(ctx, s.store, s.pen, 35, now.Add(time.Hour)))
	assert.Equal(t, 1, s.count(t, "SELECT COUNT(*) FROM stocks"))
	assert.Equal(t, 35, s.count(t, "SELECT quantity_in_stock FROM stocks WHERE store_id = ? AND product_id = ?", s.store, s.pen))

	err := s.svc.SetStock(ctx, s.store, s.pen, -1, now)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	err = s.svc.SetStock(ctx, 999, s.pen, 1, now)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// unchangedUpdates reports zero affected rows for every UPDATE, the way MySQL
// counts a row an update left as it was.
type unchangedUpdates struct {
	database.DatabaseDriver
}

func (d unchangedUpdates) ExecuteTx(ctx context.Context, fn func(database.Querier) error) error {
	return d.DatabaseDriver.ExecuteTx(ctx, func(q database.Querier) error {
		return fn(unchangedQuerier{q})
	})
}

type unchangedQuerier struct {
	database.Querier
}

func (q unchangedQuerier) ExecContext(ctx context.Context, query string, args ...any) (int64, error) {
	n, err := q.Querier.ExecContext(ctx, query, args...)
	if strings.HasPrefix(strings.TrimSpace(query), "UPDATE") {
		return 0, err
	}
	return n, err
}

func TestSetStockRepeatsSameValues(t *testing.T) {
	t.Parallel()

	s := openShop(t)
	ctx := context.Background()
	svc := NewService(unchangedUpdates{s.db}, log.New(io.Discard, "", 0))

	require.NoError(t, svc.SetStock(ctx, s.store, s.lamp, 7, now))
	require.NoError(t, svc.SetStock(ctx, s.store, s.lamp, 7, now))
	require.NoError(t, svc.SetStock(ctx, s.store, s.lamp, 9, now.Add(time.Minute)))
	assert.Equal(t, 1, s.count(t, "SELECT COUNT(*) FROM stocks WHERE product_id = ?", s.lamp))
	assert.Equal(t, 9, s.count(t, "SELECT quantity_in_stock FROM stocks WHERE store_id = ? AND product_id = ?", s.store, s.lamp))
}

func TestReportsRunThroughRunner(t *testing.T) {
	t.Parallel()

	s := openShop(t)
	reports := s.svc.Reports(ReportOptions{TopCustomers: 3, RecentWindowDays: 30, Now: func() time.Time { return now }})
	require.Len(t, reports, 10)

	result, err := runner.Run(context.Background(), reports, 1, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	assert.Zero(t, result.Errors)

	rows := map[string]int{}
	for _, r := range result.Reports {
		rows[r.Name] = r.Rows
	}
	assert.Equal(t, map[string]int{
		"list_customers":            3,
		"orders_with_item_count":    4,
		"products_by_price_desc":    4,
		"pending_orders_with_total": 2,
		"order_count_per_customer":  3,
		"top_customers_by_value":    3,
		"recent_orders":             2,
		"total_sold_per_product":    4,
		"discounted_orders":         2,
		"shipments":                 1,
	}, rows)
}

func BenchmarkReports(b *testing.B) {
	s := openShop(b)
	ctx := context.Background()
	reports := s.svc.Reports(ReportOptions{TopCustomers: 3, RecentWindowDays: 30, Now: func() time.Time { return now }})

	for _, r := range reports {
		b.Run(r.Name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := r.Run(ctx); err != nil {
					b.Fatalf("report %s failed: %v", r.Name, err)
				}
			}
		})
	}
}
