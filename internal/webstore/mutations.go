package webstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"relational-reports/internal/apperrors"
	"relational-reports/internal/database"
	"relational-reports/internal/relational"
)

const (
	StatusShipped   = "Shipped"
	StatusDelivered = "Delivered"
)

type CustomerInput struct {
	FirstName string
	LastName  string
	Email     string
}

type AddressInput struct {
	CustomerID *int64
	Street     string
	City       string
	PostalCode string
	Country    string
}

type CarrierInput struct {
	Name         string
	ContactURL   string
	ContactPhone string
}

type ProductInput struct {
	Name       string
	Price      decimal.Decimal
	CategoryID *int64
}

type StaffInput struct {
	StoreID   int64
	FirstName string
	LastName  string
	Email     string
}

type OrderItemInput struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
}

type OrderInput struct {
	CustomerID        *int64
	Status            string
	OrderDate         *time.Time
	ShippingAddressID int64
	BillingAddressID  int64
	Items             []OrderItemInput
}

func (s *Service) CreateCustomer(ctx context.Context, in CustomerInput) (int64, error) {
	first, last, email := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName), strings.TrimSpace(in.Email)
	if err := required(field{"first_name", first}, field{"last_name", last}, field{"email", email}); err != nil {
		return 0, err
	}
	return s.insert(ctx, "create customer", "email", email, func(q database.Querier) (int64, error) {
		if err := relational.EnsureUnique(ctx, q, Schema, EntityCustomer, "email", email, 0); err != nil {
			return 0, err
		}
		return q.InsertContext(ctx,
			"INSERT INTO customers (first_name, last_name, email) VALUES (?, ?, ?)",
			"customer_id", first, last, email)
	})
}

func (s *Service) CreateAddress(ctx context.Context, in AddressInput) (int64, error) {
	street, city, country := strings.TrimSpace(in.Street), strings.TrimSpace(in.City), strings.TrimSpace(in.Country)
	if err := required(field{"street", street}, field{"city", city}, field{"country", country}); err != nil {
		return 0, err
	}
	return s.insert(ctx, "create address", "", "", func(q database.Querier) (int64, error) {
		if in.CustomerID != nil {
			if err := relational.Require(ctx, q, Schema, EntityCustomer, *in.CustomerID); err != nil {
				return 0, err
			}
		}
		return q.InsertContext(ctx,
			"INSERT INTO addresses (customer_id, street, city, postal_code, country) VALUES (?, ?, ?, ?, ?)",
			"address_id", in.CustomerID, street, city, strings.TrimSpace(in.PostalCode), country)
	})
}

func (s *Service) CreateCarrier(ctx context.Context, in CarrierInput) (int64, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return 0, apperrors.Invalid("carrier_name", "is required")
	}
	return s.insert(ctx, "create carrier", "carrier_name", name, func(q database.Querier) (int64, error) {
		if err := relational.EnsureUnique(ctx, q, Schema, EntityCarrier, "carrier_name", name, 0); err != nil {
			return 0, err
		}
		return q.InsertContext(ctx,
			"INSERT INTO carriers (carrier_name, contact_url, contact_phone) VALUES (?, ?, ?)",
			"carrier_id", name, nullable(in.ContactURL), nullable(in.ContactPhone))
	})
}

func (s *Service) CreateCategory(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, apperrors.Invalid("category_name", "is required")
	}
	return s.insert(ctx, "create category", "category_name", name, func(q database.Querier) (int64, error) {
		if err := relational.EnsureUnique(ctx, q, Schema, EntityCategory, "category_name", name, 0); err != nil {
			return 0, err
		}
		return q.InsertContext(ctx, "INSERT INTO categories (category_name) VALUES (?)", "category_id", name)
	})
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (int64, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return 0, apperrors.Invalid("product_name", "is required")
	}
	if err := money("price", in.Price); err != nil {
		return 0, err
	}
	return s.insert(ctx, "create product", "", "", func(q database.Querier) (int64, error) {
		if in.CategoryID != nil {
			if err := relational.Require(ctx, q, Schema, EntityCategory, *in.CategoryID); err != nil {
				return 0, err
			}
		}
		return q.InsertContext(ctx,
			"INSERT INTO products (product_name, price, category_id) VALUES (?, ?, ?)",
			"product_id", name, in.Price, in.CategoryID)
	})
}

func (s *Service) CreateStore(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, apperrors.Invalid("store_name", "is required")
	}
	return s.insert(ctx, "create store", "", "", func(q database.Querier) (int64, error) {
		return q.InsertContext(ctx, "INSERT INTO stores (store_name) VALUES (?)", "store_id", name)
	})
}

func (s *Service) CreateStaff(ctx context.Context, in StaffInput) (int64, error) {
	first, last, email := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName), strings.TrimSpace(in.Email)
	if err := required(field{"first_name", first}, field{"last_name", last}, field{"email", email}); err != nil {
		return 0, err
	}
	return s.insert(ctx, "create staff", "email", email, func(q database.Querier) (int64, error) {
		if err := relational.Require(ctx, q, Schema, EntityStore, in.StoreID); err != nil {
			return 0, err
		}
		if err := relational.EnsureUnique(ctx, q, Schema, EntityStaff, "email", email, 0); err != nil {
			return 0, err
		}
		return q.InsertContext(ctx,
			"INSERT INTO staff (store_id, first_name, last_name, email) VALUES (?, ?, ?, ?)",
			"staff_id", in.StoreID, first, last, email)
	})
}

// CreateOrder stores an order and all of its items in one transaction.
func (s *Service) CreateOrder(ctx context.Context, in OrderInput) (int64, error) {
	seen := make(map[int64]bool, len(in.Items))
	for i, item := range in.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		if seen[item.ProductID] {
			return 0, apperrors.Invalid(prefix, "product #%d listed twice", item.ProductID)
		}
		seen[item.ProductID] = true
		if item.Quantity < 1 {
			return 0, apperrors.Invalid(prefix+".quantity", "must be positive")
		}
		if err := money(prefix+".unit_price", item.UnitPrice); err != nil {
			return 0, err
		}
		if err := money(prefix+".discount", item.Discount); err != nil {
			return 0, err
		}
		if item.Discount.GreaterThan(lineTotal(item.UnitPrice, int64(item.Quantity), decimal.Zero)) {
			return 0, apperrors.Invalid(prefix+".discount", "exceeds the line value")
		}
	}

	return s.insert(ctx, "create order", "", "", func(q database.Querier) (int64, error) {
		if in.CustomerID != nil {
			if err := relational.Require(ctx, q, Schema, EntityCustomer, *in.CustomerID); err != nil {
				return 0, err
			}
		}
		for _, addr := range []int64{in.ShippingAddressID, in.BillingAddressID} {
			if err := relational.Require(ctx, q, Schema, EntityAddress, addr); err != nil {
				return 0, err
			}
		}
		for _, item := range in.Items {
			if err := relational.Require(ctx, q, Schema, EntityProduct, item.ProductID); err != nil {
				return 0, err
			}
		}

		id, err := q.InsertContext(ctx,
			`INSERT INTO orders (customer_id, order_status, order_date, shipping_address_id, billing_address_id)
			 VALUES (?, ?, ?, ?, ?)`,
			"order_id", in.CustomerID, nullable(in.Status), timestamp(in.OrderDate), in.ShippingAddressID, in.BillingAddressID)
		if err != nil {
			return 0, err
		}
		for _, item := range in.Items {
			if _, err := q.ExecContext(ctx,
				"INSERT INTO order_items (order_id, product_id, quantity, unit_price, discount) VALUES (?, ?, ?, ?, ?)",
				id, item.ProductID, item.Quantity, item.UnitPrice, item.Discount); err != nil {
				return 0, err
			}
		}
		return id, nil
	})
}

// ShipOrder hands an order to a carrier.
func (s *Service) ShipOrder(ctx context.Context, orderID, carrierID int64, trackingNumber string, shippedAt time.Time) error {
	tracking := strings.TrimSpace(trackingNumber)
	if tracking == "" {
		return apperrors.Invalid("tracking_number", "is required")
	}
	err := s.db.ExecuteTx(ctx, func(q database.Querier) error {
		if err := relational.Require(ctx, q, Schema, EntityOrder, orderID); err != nil {
			return err
		}
		if err := relational.Require(ctx, q, Schema, EntityCarrier, carrierID); err != nil {
			return err
		}
		_, err := q.ExecContext(ctx,
			`UPDATE orders SET carrier_id = ?, tracking_number = ?, shipped_date = ?, order_status = ?
			 WHERE order_id = ?`,
			carrierID, tracking, timestamp(&shippedAt), StatusShipped, orderID)
		return err
	})
	if err != nil {
		return fmt.Errorf("ship order: %w", err)
	}
	s.logger.Printf("shipped order #%d with carrier #%d (%s)", orderID, carrierID, tracking)
	return nil
}

// MarkDelivered records the delivery of a shipped order.
func (s *Service) MarkDelivered(ctx context.Context, orderID int64, deliveredAt time.Time) error {
	err := s.db.ExecuteTx(ctx, func(q database.Querier) error {
		var shipped *time.Time
		err := q.QueryRowContext(ctx, "SELECT shipped_date FROM orders WHERE order_id = ?", orderID).Scan(&shipped)
		if database.IsNoRows(err) {
			return apperrors.NotFound(EntityOrder, orderID)
		}
		if err != nil {
			return err
		}
		if shipped == nil {
			return apperrors.Invalid("shipped_date", "order #%d has not been shipped", orderID)
		}
		if deliveredAt.Before(*shipped) {
			return apperrors.Invalid("delivered_date", "precedes the shipping date")
		}
		_, err = q.ExecContext(ctx,
			"UPDATE orders SET delivered_date = ?, order_status = ? WHERE order_id = ?",
			timestamp(&deliveredAt), StatusDelivered, orderID)
		return err
	})
	if err != nil {
		return fmt.Errorf("mark delivered: %w", err)
	}
	s.logger.Printf("delivered order #%d", orderID)
	return nil
}

// SetStock records the quantity of a product held by a store.
func (s *Service) SetStock(ctx context.Context, storeID, productID int64, quantity int, at time.Time) error {
	if quantity < 0 {
		return apperrors.Invalid("quantity_in_stock", "must not be negative")
	}
	err := s.db.ExecuteTx(ctx, func(q database.Querier) error {
		if err := relational.Require(ctx, q, Schema, EntityStore, storeID); err != nil {
			return err
		}
		if err := relational.Require(ctx, q, Schema, EntityProduct, productID); err != nil {
			return err
		}
		// Existence decides the branch: MySQL reports an unchanged row as
		// zero rows affected.
		var held int
		if err := q.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM stocks WHERE store_id = ? AND product_id = ?",
			storeID, productID).Scan(&held); err != nil {
			return err
		}
		if held > 0 {
			_, err := q.ExecContext(ctx,
				"UPDATE stocks SET quantity_in_stock = ?, updated_at = ? WHERE store_id = ? AND product_id = ?",
				quantity, timestamp(&at), storeID, productID)
			return err
		}
		_, err := q.ExecContext(ctx,
			"INSERT INTO stocks (store_id, product_id, quantity_in_stock, updated_at) VALUES (?, ?, ?, ?)",
			storeID, productID, quantity, timestamp(&at))
		return err
	})
	if err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	s.logger.Printf("set stock of product #%d in store #%d to %d", productID, storeID, quantity)
	return nil
}

// DeleteOrder removes an order together with its items.
func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	return s.delete(ctx, EntityOrder, id)
}

// DeleteCustomer removes a customer; their orders and addresses are kept
// without an owner.
func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	return s.delete(ctx, EntityCustomer, id)
}

// DeleteAddress fails with a ReferentialIntegrityError while any order ships
// to or bills the address.
func (s *Service) DeleteAddress(ctx context.Context, id int64) error {
	return s.delete(ctx, EntityAddress, id)
}

// DeleteCarrier removes a carrier and clears it from the orders it carried.
func (s *Service) DeleteCarrier(ctx context.Context, id int64) error {
	return s.delete(ctx, EntityCarrier, id)
}

func (s *Service) delete(ctx context.Context, entity string, id int64) error {
	err := s.db.ExecuteTx(ctx, func(q database.Querier) error {
		return relational.Delete(ctx, q, Schema, entity, id)
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", strings.ToLower(entity), err)
	}
	s.logger.Printf("deleted %s #%d", strings.ToLower(entity), id)
	return nil
}

// insert runs fn in a transaction and logs the new id. When uniqueField is set,
// a unique violation raised by the store is reported as a ValidationError on it.
func (s *Service) insert(ctx context.Context, op, uniqueField, value string, fn func(database.Querier) (int64, error)) (int64, error) {
	var id int64
	err := s.db.ExecuteTx(ctx, func(q database.Querier) error {
		var err error
		id, err = fn(q)
		return err
	})
	if err != nil {
		if uniqueField != "" && database.IsUniqueViolation(err) {
			err = apperrors.Invalid(uniqueField, "%q already exists", value)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.logger.Printf("%s: #%d", op, id)
	return id, nil
}

type field struct{ name, value string }

func required(fields ...field) error {
	for _, f := range fields {
		if f.value == "" {
			return apperrors.Invalid(f.name, "is required")
		}
	}
	return nil
}

func money(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return apperrors.Invalid(field, "must not be negative")
	}
	if !v.Equal(v.Truncate(2)) {
		return apperrors.Invalid(field, "allows at most 2 fractional digits")
	}
	return nil
}

// timestamp normalizes t to UTC whole seconds so that stored values compare
// the same way on every engine.
func timestamp(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC().Truncate(time.Second)
}

func nullable(v string) any {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return v
}
