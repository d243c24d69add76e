// Package webstore implements the reports and mutations of the web-store
// order system.
package webstore

import (
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"relational-reports/internal/database"
)

// UnknownCustomer is reported in place of a customer that no longer exists.
const UnknownCustomer = "Unknown"

// UnknownProduct is reported in place of a product that no longer exists.
const UnknownProduct = "Unknown"

type Customer struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
}

func (c Customer) DisplayName() string {
	return displayName(&c.FirstName, &c.LastName)
}

type Product struct {
	ID         int64
	Name       string
	Price      decimal.Decimal
	CategoryID *int64
}

type OrderItemCount struct {
	OrderID      int64
	CustomerName string
	Status       *string
	ItemCount    int64
}

type PendingOrder struct {
	OrderID      int64
	CustomerName string
	OrderDate    *time.Time
	Total        decimal.Decimal
}

type CustomerOrderCount struct {
	CustomerID   int64
	CustomerName string
	OrderCount   int64
}

type CustomerValue struct {
	CustomerID   int64
	CustomerName string
	TotalValue   decimal.Decimal
}

type RecentOrder struct {
	OrderID      int64
	CustomerName string
	Status       *string
	OrderDate    time.Time
}

type ProductSales struct {
	ProductID     int64
	ProductName   string
	TotalQuantity int64
}

type DiscountedItem struct {
	ProductName string
	Discount    decimal.Decimal
}

type DiscountedOrder struct {
	OrderID      int64
	CustomerName string
	Items        []DiscountedItem
}

// Shipment is an order together with its carrier and delivery progress.
type Shipment struct {
	OrderID         int64
	CustomerName    string
	Status          *string
	Carrier         *string
	TrackingNumber  *string
	ShippedDate     *time.Time
	DeliveredDate   *time.Time
	ShippingAddress string
}

// lineTotal is the value of one order item: unit_price × quantity − discount.
func lineTotal(unitPrice decimal.Decimal, quantity int64, discount decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity)).Sub(discount)
}

func displayName(first, last *string) string {
	if first == nil && last == nil {
		return UnknownCustomer
	}
	var parts []string
	for _, p := range []*string{first, last} {
		if p != nil && strings.TrimSpace(*p) != "" {
			parts = append(parts, strings.TrimSpace(*p))
		}
	}
	return strings.Join(parts, " ")
}

// Service runs every operation against db; each call acquires and releases
// its own connection or transaction.
type Service struct {
	db     database.DatabaseDriver
	logger *log.Logger
}

func NewService(db database.DatabaseDriver, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{db: db, logger: logger}
}
