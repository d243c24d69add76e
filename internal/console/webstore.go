package console

import (
	"context"
	"strconv"
	"time"

	"relational-reports/internal/webstore"
)

// StoreService is the web store as seen by the menu.
type StoreService interface {
	ListCustomers(ctx context.Context) ([]webstore.Customer, error)
	OrdersWithItemCount(ctx context.Context) ([]webstore.OrderItemCount, error)
	ProductsByPriceDesc(ctx context.Context) ([]webstore.Product, error)
	PendingOrdersWithTotal(ctx context.Context) ([]webstore.PendingOrder, error)
	OrderCountPerCustomer(ctx context.Context) ([]webstore.CustomerOrderCount, error)
	TopCustomersByValue(ctx context.Context, n int) ([]webstore.CustomerValue, error)
	RecentOrders(ctx context.Context, windowDays int, now time.Time) ([]webstore.RecentOrder, error)
	TotalSoldPerProduct(ctx context.Context) ([]webstore.ProductSales, error)
	DiscountedOrders(ctx context.Context) ([]webstore.DiscountedOrder, error)
	Shipments(ctx context.Context) ([]webstore.Shipment, error)
	ShipOrder(ctx context.Context, orderID, carrierID int64, trackingNumber string, shippedAt time.Time) error
	MarkDelivered(ctx context.Context, orderID int64, deliveredAt time.Time) error
	DeleteAddress(ctx context.Context, id int64) error
	DeleteCarrier(ctx context.Context, id int64) error
}

// StoreDefaults fills in report parameters left blank at the prompt.
type StoreDefaults struct {
	TopCustomers     int
	RecentWindowDays int
	Now              func() time.Time
}

func StoreMenu(svc StoreService, defaults StoreDefaults) Menu {
	now := defaults.Now
	if now == nil {
		now = time.Now
	}
	// Typed dates are midnight UTC; blank answers must compare the same way.
	today := func() time.Time {
		return now().UTC().Truncate(24 * time.Hour)
	}
	return Menu{
		Title: "Web Store Reports",
		Options: []Option{
			{Label: "List All Customers", Run: func(ctx context.Context, p *Prompter) error {
				customers, err := svc.ListCustomers(ctx)
				if err != nil {
					return err
				}
				p.Printf("=== Customers ===\n")
				for _, c := range customers {
					p.Printf("[%d] %s <%s>\n", c.ID, c.DisplayName(), c.Email)
				}
				return nil
			}},
			{Label: "Orders with Item Count", Run: func(ctx context.Context, p *Prompter) error {
				rows, err := svc.OrdersWithItemCount(ctx)
				if err != nil {
					return err
				}
				p.Printf("=== Orders with Item Count ===\n")
				for _, r := range rows {
					p.Printf("Order %d, Customer: %s, Status: %s, Items: %d\n", r.OrderID, r.CustomerName, str(r.Status), r.ItemCount)
				}
				return nil
			}},
			{Label: "Products by Descending Price", Run: func(ctx context.Context, p *Prompter) error {
				products, err := svc.ProductsByPriceDesc(ctx)
				if err != nil {
					return err
				}
				p.Printf("=== Products by Price ===\n")
				for _, pr := range products {
					p.Printf("[%d] %s: %s\n", pr.ID, pr.Name, pr.Price.StringFixed(2))
				}
				return nil
			}},
			{Label: "Pending Orders with Total", Run: func(ctx context.Context, p *Prompter) error {
				orders, err := svc.PendingOrdersWithTotal(ctx)
				if err != nil {
					return err
				}
				p.Printf("=== Pending Orders ===\n")
				for _, o := range orders {
					p.Printf("Order %d, Customer: %s, Date: %s, Total: %s\n", o.OrderID, o.CustomerName, date(o.OrderDate), o.Total.StringFixed(2))
				}
				return nil
			}},
			{Label: "Order Count per Customer", Run: func(ctx context.Context, p *Prompter) error {
				counts, err := svc.OrderCountPerCustomer(ctx)
				if err != nil {
					return err
				}
				p.Printf("=== Order Count per Customer ===\n")
				for _, c := range counts {
					p.Printf("%s: %d\n", c.CustomerName, c.OrderCount)
				}
				return nil
			}},
			{Label: "Top Customers by Order Value", Run: func(ctx context.Context, p *Prompter) error {
				n, err := p.OptionalInt("How many customers (blank for " + strconv.Itoa(defaults.TopCustomers) + ")")
				if err != nil {
					return err
				}
				limit := defaults.TopCustomers
				if n != nil {
					limit = *n
				}
				top, err := svc.TopCustomersByValue(ctx, limit)
				if err != nil {
					return err
				}
				p.Printf("=== Top %d Customers ===\n", limit)
				for i, c := range top {
					p.Printf("%d. %s: %s\n", i+1, c.CustomerName, c.TotalValue.StringFixed(2))
				}
				return nil
			}},
			{Label: "Recent Orders", Run: func(ctx context.Context, p *Prompter) error {
				days, err := p.OptionalInt("Window in days (blank for " + strconv.Itoa(defaults.RecentWindowDays) + ")")
				if err != nil {
					return err
				}
				window := defaults.RecentWindowDays
				if days != nil {
					window = *days
				}
				orders, err := svc.RecentOrders(ctx, window, now())
				if err != nil {
					return err
				}
				p.Printf("=== Orders of the last %d day(s) ===\n", window)
				for _, o := range orders {
					p.Printf("Order %d, Date: %s, Customer: %s\n", o.OrderID, o.OrderDate.Format(dateLayout), o.CustomerName)
				}
				return nil
			}},
			{Label: "Total Sold per Product", Run: func(ctx context.Context, p *Prompter) error {
				sales, err := svc.TotalSoldPerProduct(ctx)
				if err != nil {
					return err
				}
				p.Printf("=== Total Sold per Product ===\n")
				for _, s := range sales {
					p.Printf("%s: %d\n", s.ProductName, s.TotalQuantity)
				}
				return nil
			}},
			{Label: "Discounted Orders", Run: func(ctx context.Context, p *Prompter) error {
				orders, err := svc.DiscountedOrders(ctx)
				if err != nil {
					return err
				}
				p.Printf("=== Discounted Orders ===\n")
				for _, o := range orders {
					p.Printf("Order %d, Customer: %s\n", o.OrderID, o.CustomerName)
					for _, item := range o.Items {
						p.Printf("  Product: %s, Discount: %s\n", item.ProductName, item.Discount.StringFixed(2))
					}
				}
				return nil
			}},
			{Label: "Shipments", Run: func(ctx context.Context, p *Prompter) error {
				shipments, err := svc.Shipments(ctx)
				if err != nil {
					return err
				}
				p.Printf("=== Shipments ===\n")
				for _, s := range shipments {
					p.Printf("Order %d to %s (%s)\n", s.OrderID, s.CustomerName, s.ShippingAddress)
					p.Printf("  Carrier: %s, Tracking: %s, Shipped: %s, Delivered: %s\n",
						str(s.Carrier), str(s.TrackingNumber), date(s.ShippedDate), date(s.DeliveredDate))
				}
				return nil
			}},
			{Label: "Delete Address", Run: func(ctx context.Context, p *Prompter) error {
				id, err := p.ID("Address ID to delete")
				if err != nil {
					return err
				}
				if err := svc.DeleteAddress(ctx, id); err != nil {
					return err
				}
				p.Printf("Address deleted.\n")
				return nil
			}},
			{Label: "Delete Carrier", Run: func(ctx context.Context, p *Prompter) error {
				id, err := p.ID("Carrier ID to delete")
				if err != nil {
					return err
				}
				if err := svc.DeleteCarrier(ctx, id); err != nil {
					return err
				}
				p.Printf("Carrier deleted; its orders no longer reference it.\n")
				return nil
			}},
			{Label: "Ship Order", Run: func(ctx context.Context, p *Prompter) error {
				orderID, carrierID, err := twoIDs(p, "Order ID", "Carrier ID")
				if err != nil {
					return err
				}
				tracking, err := p.Line("Tracking number")
				if err != nil {
					return err
				}
				shipped, err := p.Date("Shipped on", today())
				if err != nil {
					return err
				}
				if err := svc.ShipOrder(ctx, orderID, carrierID, tracking, shipped); err != nil {
					return err
				}
				p.Printf("Order shipped.\n")
				return nil
			}},
			{Label: "Mark Order Delivered", Run: func(ctx context.Context, p *Prompter) error {
				orderID, err := p.ID("Order ID")
				if err != nil {
					return err
				}
				delivered, err := p.Date("Delivered on", today())
				if err != nil {
					return err
				}
				if err := svc.MarkDelivered(ctx, orderID, delivered); err != nil {
					return err
				}
				p.Printf("Order delivered.\n")
				return nil
			}},
		},
	}
}
