// Package recipes implements the read and write operations of the recipe catalog.
package recipes

import (
	"log"

	"github.com/shopspring/decimal"

	"relational-reports/internal/database"
)

// Include selects the related collections resolved alongside each recipe.
type Include struct {
	Ingredients bool
	Categories  bool
}

var (
	IncludeNone = Include{}
	IncludeAll  = Include{Ingredients: true, Categories: true}
)

// Recipe is a read model; related collections are nil unless requested.
type Recipe struct {
	ID           int64
	Title        string
	Description  *string
	Instructions string
	PrepMinutes  *int
	CookMinutes  *int
	ServingSize  *int
	Ingredients  []IngredientLine
	Categories   []Category
}

// IngredientLine is one ingredient of a recipe with the quantity on the edge.
type IngredientLine struct {
	IngredientID int64
	Name         string
	Quantity     decimal.Decimal
	Unit         *string
}

type Ingredient struct {
	ID    int64
	Name  string
	Unit  *string
	Notes *string
}

type Category struct {
	ID   int64
	Name string
}

func (r Recipe) CategoryNames() []string {
	names := make([]string, 0, len(r.Categories))
	for _, c := range r.Categories {
		names = append(names, c.Name)
	}
	return names
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
