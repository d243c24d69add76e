package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relational-reports/internal/database"
	"relational-reports/internal/recipes"
	"relational-reports/internal/relational"
	"relational-reports/internal/schema"
	"relational-reports/internal/webstore"
)

var quiet = log.New(io.Discard, "", 0)

func run(t *testing.T, menu Menu, input string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), menu, strings.NewReader(input), &out, quiet))
	return out.String()
}

func openSQLite(t *testing.T, s *schema.Schema) *database.SQLiteDriver {
	t.Helper()
	ctx := context.Background()
	driver := &database.SQLiteDriver{}
	require.NoError(t, driver.Connect(ctx, filepath.Join(t.TempDir(), "console.db")))
	t.Cleanup(func() { _ = driver.Close() })
	require.NoError(t, relational.Provision(ctx, driver, s))
	return driver
}

func TestRunExits(t *testing.T) {
	t.Parallel()

	calls := 0
	menu := Menu{Title: "Test", Options: []Option{{Label: "Count", Run: func(context.Context, *Prompter) error {
		calls++
		return nil
	}}}}

	out := run(t, menu, "1\n1\n0\n1\n")
	assert.Equal(t, 2, calls)
	assert.Contains(t, out, "=== Test ===\n1. Count\n0. Exit\n")

	calls = 0
	run(t, menu, "1\n")
	assert.Equal(t, 1, calls)
}

func TestRunRejectsInvalidSelection(t *testing.T) {
	t.Parallel()

	menu := Menu{Title: "Test", Options: []Option{{Label: "Noop", Run: func(context.Context, *Prompter) error { return nil }}}}
	out := run(t, menu, "7\nabc\n-1\n0\n")
	assert.Equal(t, 3, strings.Count(out, "Invalid selection. Try again."))
}

func TestRunReportsErrorsAndContinues(t *testing.T) {
	t.Parallel()

	calls := 0
	menu := Menu{Title: "Test", Options: []Option{{Label: "Fail", Run: func(context.Context, *Prompter) error {
		calls++
		return errors.New("boom")
	}}}}
	out := run(t, menu, "1\n1\n0\n")
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, strings.Count(out, "Error: boom"))
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, Menu{Title: "Test"}, strings.NewReader("0\n"), io.Discard, quiet)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrompterParsesAnswers(t *testing.T) {
	t.Parallel()

	p := NewPrompter(strings.NewReader("42\n\n1.25\n\n2026-01-02\n eggs , ,flour\nx\n"), io.Discard)

	id, err := p.ID("id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	n, err := p.OptionalInt("n")
	require.NoError(t, err)
	assert.Nil(t, n)

	d, err := p.Decimal("qty")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("1.25")))

	fallback := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	day, err := p.Date("day", fallback)
	require.NoError(t, err)
	assert.Equal(t, fallback, day)
	day, err = p.Date("day", fallback)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), day)

	names, err := p.List("names")
	require.NoError(t, err)
	assert.Equal(t, []string{"eggs", "flour"}, names)

	_, err = p.ID("id")
	assert.Error(t, err)

	_, err = p.Line("more")
	assert.ErrorIs(t, err, io.EOF)
}

func TestRecipeMenu(t *testing.T) {
	t.Parallel()

	svc := recipes.NewService(openSQLite(t, recipes.Schema), quiet)
	input := strings.Join([]string{
		"2", "Butter", "g",
		"3", "Toast", "", "Toast the bread.", "2", "", "1",
		"10", "1", "1", "2.5",
		"1",
		"7", "butter",
		"5", "1",
		"1",
		"0",
	}, "\n") + "\n"

	out := run(t, RecipeMenu(svc), input)
	assert.Contains(t, out, "Created Ingredient #1.")
	assert.Contains(t, out, "Created Recipe #1.")
	assert.Contains(t, out, "Ingredient quantity set.")
	assert.Contains(t, out, "[1] Toast\n  Ingredients:\n    - Butter: 2.50 g\n")
	assert.Contains(t, out, "Recipes with [butter]:\n  [1] Toast\n")
	assert.Contains(t, out, "Recipe deleted.")

	list, err := svc.ListRecipes(context.Background(), recipes.IncludeNone)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRecipeMenuPrintsValidationErrors(t *testing.T) {
	t.Parallel()

	svc := recipes.NewService(openSQLite(t, recipes.Schema), quiet)
	out := run(t, RecipeMenu(svc), "3\n\n\n\n\n\n\n4\n99\n0\n")
	assert.Equal(t, 2, strings.Count(out, "Error: "))
	assert.Contains(t, out, "not found")
}

func TestStoreMenu(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := webstore.NewService(openSQLite(t, webstore.Schema), quiet)
	ada, err := svc.CreateCustomer(ctx, webstore.CustomerInput{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"})
	require.NoError(t, err)
	home, err := svc.CreateAddress(ctx, webstore.AddressInput{CustomerID: &ada, Street: "1 Main St", City: "London", Country: "UK"})
	require.NoError(t, err)
	carrier, err := svc.CreateCarrier(ctx, webstore.CarrierInput{Name: "DHL"})
	require.NoError(t, err)
	lamp, err := svc.CreateProduct(ctx, webstore.ProductInput{Name: "Lamp", Price: decimal.NewFromInt(25)})
	require.NoError(t, err)
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	order, err := svc.CreateOrder(ctx, webstore.OrderInput{
		CustomerID: &ada, Status: "Pending", OrderDate: &today,
		ShippingAddressID: home, BillingAddressID: home,
		Items: []webstore.OrderItemInput{{ProductID: lamp, Quantity: 2, UnitPrice: decimal.NewFromInt(25)}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), order)
	require.Equal(t, int64(1), carrier)

	menu := StoreMenu(svc, StoreDefaults{TopCustomers: 3, RecentWindowDays: 30, Now: func() time.Time { return today }})
	input := strings.Join([]string{
		"1",
		"4",
		"6", "",
		"6", "0",
		"13", "1", "1", "TRACK-1", "",
		"10",
		"11", "1",
		"0",
	}, "\n") + "\n"

	out := run(t, menu, input)
	assert.Contains(t, out, "[1] Ada Lovelace <ada@example.com>")
	assert.Contains(t, out, "Order 1, Customer: Ada Lovelace, Date: 2026-03-15, Total: 50.00")
	assert.Contains(t, out, "=== Top 3 Customers ===\n1. Ada Lovelace: 50.00\n")
	assert.Contains(t, out, "Order shipped.")
	assert.Contains(t, out, "Carrier: DHL, Tracking: TRACK-1, Shipped: 2026-03-15, Delivered: -")
	// n = 0 and the in-use address are both rejected without ending the loop.
	assert.Equal(t, 2, strings.Count(out, "Error: "))
}

func TestStoreMenuDeliversOnShippingDay(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := webstore.NewService(openSQLite(t, webstore.Schema), quiet)
	home, err := svc.CreateAddress(ctx, webstore.AddressInput{Street: "1 Main St", City: "London", Country: "UK"})
	require.NoError(t, err)
	_, err = svc.CreateCarrier(ctx, webstore.CarrierInput{Name: "UPS"})
	require.NoError(t, err)
	mug, err := svc.CreateProduct(ctx, webstore.ProductInput{Name: "Mug", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, webstore.OrderInput{
		Status: "Pending", ShippingAddressID: home, BillingAddressID: home,
		Items: []webstore.OrderItemInput{{ProductID: mug, Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)

	afternoon := time.Date(2026, 3, 15, 15, 30, 0, 0, time.UTC)
	menu := StoreMenu(svc, StoreDefaults{Now: func() time.Time { return afternoon }})
	input := strings.Join([]string{
		"13", "1", "1", "TRACK-2", "",
		"14", "1", "2026-03-15",
		"10",
		"0",
	}, "\n") + "\n"

	out := run(t, menu, input)
	assert.Contains(t, out, "Order delivered.")
	assert.Contains(t, out, "Shipped: 2026-03-15, Delivered: 2026-03-15")
	assert.NotContains(t, out, "Error: ")
}
