package webstore

import "relational-reports/internal/schema"

const (
	EntityCustomer  = "Customer"
	EntityCategory  = "Category"
	EntityProduct   = "Product"
	EntityAddress   = "Address"
	EntityCarrier   = "Carrier"
	EntityStore     = "Store"
	EntityStaff     = "Staff"
	EntityOrder     = "Order"
	EntityOrderItem = "OrderItem"
	EntityStock     = "Stock"
)

// Schema is the web-store order system. Addresses used by an order cannot be
// deleted, while deleting a customer or carrier only detaches their orders.
var Schema = func() *schema.Schema {
	b := schema.NewBuilder("webstore")
	b.Entity(EntityCustomer, "customers").Columns(
		schema.ID("customer_id"),
		schema.Varchar("first_name", 50),
		schema.Varchar("last_name", 50),
		schema.Varchar("email", 100).WithUnique(),
	)
	b.Entity(EntityCategory, "categories").Columns(
		schema.ID("category_id"),
		schema.Varchar("category_name", 50).WithUnique(),
	)
	b.Entity(EntityProduct, "products").Columns(
		schema.ID("product_id"),
		schema.Varchar("product_name", 100),
		schema.Decimal("price", 10, 2),
		schema.Int("category_id").WithNull(),
	)
	b.Entity(EntityAddress, "addresses").Columns(
		schema.ID("address_id"),
		schema.Int("customer_id").WithNull(),
		schema.Varchar("street", 100),
		schema.Varchar("city", 50),
		schema.Varchar("postal_code", 20),
		schema.Varchar("country", 50),
	)
	b.Entity(EntityCarrier, "carriers").Columns(
		schema.ID("carrier_id"),
		schema.Varchar("carrier_name", 100).WithUnique(),
		schema.Varchar("contact_url", 200).WithNull(),
		schema.Varchar("contact_phone", 30).WithNull(),
	)
	b.Entity(EntityStore, "stores").Columns(
		schema.ID("store_id"),
		schema.Varchar("store_name", 100),
	)
	b.Entity(EntityStaff, "staff").Columns(
		schema.ID("staff_id"),
		schema.Int("store_id"),
		schema.Varchar("first_name", 50),
		schema.Varchar("last_name", 50),
		schema.Varchar("email", 100).WithUnique(),
	)
	b.Entity(EntityOrder, "orders").Columns(
		schema.ID("order_id"),
		schema.Int("customer_id").WithNull(),
		schema.Varchar("order_status", 20).WithNull(),
		schema.Timestamp("order_date").WithNull(),
		schema.Int("shipping_address_id"),
		schema.Int("billing_address_id"),
		schema.Int("carrier_id").WithNull(),
		schema.Varchar("tracking_number", 50).WithNull(),
		schema.Timestamp("shipped_date").WithNull(),
		schema.Timestamp("delivered_date").WithNull(),
	)
	b.Entity(EntityOrderItem, "order_items").Columns(
		schema.Int("order_id"),
		schema.Int("product_id"),
		schema.Int("quantity"),
		schema.Decimal("unit_price", 10, 2),
		schema.Decimal("discount", 10, 2),
	).Key("order_id", "product_id")
	b.Entity(EntityStock, "stocks").Columns(
		schema.Int("store_id"),
		schema.Int("product_id"),
		schema.Int("quantity_in_stock"),
		schema.Timestamp("updated_at").WithNull(),
	).Key("store_id", "product_id")

	b.OneToMany("product_category", EntityCategory, EntityProduct, "category_id", schema.SetNull).
		OneToMany("address_customer", EntityCustomer, EntityAddress, "customer_id", schema.SetNull).
		OneToMany("staff_store", EntityStore, EntityStaff, "store_id", schema.Restrict).
		OneToMany("order_customer", EntityCustomer, EntityOrder, "customer_id", schema.SetNull).
		OneToMany("order_shipping_address", EntityAddress, EntityOrder, "shipping_address_id", schema.Restrict).
		OneToMany("order_billing_address", EntityAddress, EntityOrder, "billing_address_id", schema.Restrict).
		OneToMany("order_carrier", EntityCarrier, EntityOrder, "carrier_id", schema.SetNull).
		OneToMany("order_item_order", EntityOrder, EntityOrderItem, "order_id", schema.Cascade).
		OneToMany("order_item_product", EntityProduct, EntityOrderItem, "product_id", schema.Restrict).
		OneToMany("stock_store", EntityStore, EntityStock, "store_id", schema.Cascade).
		OneToMany("stock_product", EntityProduct, EntityStock, "product_id", schema.Cascade).
		ManyToMany("order_products", EntityOrder, EntityProduct, EntityOrderItem).
		ManyToMany("store_products", EntityStore, EntityProduct, EntityStock)
	return b.MustBuild()
}()
