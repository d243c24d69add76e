package console

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"relational-reports/internal/recipes"
)

// RecipeService is the recipe catalog as seen by the menu.
type RecipeService interface {
	ListRecipes(ctx context.Context, include recipes.Include) ([]recipes.Recipe, error)
	GetRecipe(ctx context.Context, id int64, include recipes.Include) (recipes.Recipe, error)
	RecipesByCategory(ctx context.Context, name string, include recipes.Include) ([]recipes.Recipe, error)
	RecipesByIngredients(ctx context.Context, names []string, include recipes.Include) ([]recipes.Recipe, error)
	CreateIngredient(ctx context.Context, in recipes.IngredientInput) (int64, error)
	CreateRecipe(ctx context.Context, in recipes.RecipeInput) (int64, error)
	UpdateRecipe(ctx context.Context, id int64, patch recipes.RecipePatch) error
	DeleteRecipe(ctx context.Context, id int64) error
	AddCategoryToRecipe(ctx context.Context, recipeID, categoryID int64) error
	RemoveCategoryFromRecipe(ctx context.Context, recipeID, categoryID int64) error
	AddIngredientToRecipe(ctx context.Context, recipeID, ingredientID int64, quantity decimal.Decimal) error
}

func RecipeMenu(svc RecipeService) Menu {
	return Menu{
		Title: "Recipe Database App",
		Options: []Option{
			{Label: "List All Recipes", Run: func(ctx context.Context, p *Prompter) error {
				list, err := svc.ListRecipes(ctx, recipes.IncludeAll)
				if err != nil {
					return err
				}
				p.Printf("=== All Recipes ===\n")
				for _, r := range list {
					printRecipe(p, r)
				}
				return nil
			}},
			{Label: "Add New Ingredient", Run: func(ctx context.Context, p *Prompter) error {
				var in recipes.IngredientInput
				var err error
				if in.Name, err = p.Line("Name"); err != nil {
					return err
				}
				if in.Unit, err = p.Line("Unit (e.g. g, tsp)"); err != nil {
					return err
				}
				id, err := svc.CreateIngredient(ctx, in)
				if err != nil {
					return err
				}
				p.Printf("Created Ingredient #%d.\n", id)
				return nil
			}},
			{Label: "Add New Recipe", Run: func(ctx context.Context, p *Prompter) error {
				var in recipes.RecipeInput
				var err error
				if in.Title, err = p.Line("Title"); err != nil {
					return err
				}
				if in.Description, err = p.Line("Description"); err != nil {
					return err
				}
				if in.Instructions, err = p.Line("Instructions"); err != nil {
					return err
				}
				if in.PrepMinutes, err = p.OptionalInt("Prep time (minutes)"); err != nil {
					return err
				}
				if in.CookMinutes, err = p.OptionalInt("Cook time (minutes)"); err != nil {
					return err
				}
				if in.ServingSize, err = p.OptionalInt("Serving size"); err != nil {
					return err
				}
				id, err := svc.CreateRecipe(ctx, in)
				if err != nil {
					return err
				}
				p.Printf("Created Recipe #%d.\n", id)
				return nil
			}},
			{Label: "Update Recipe", Run: func(ctx context.Context, p *Prompter) error {
				id, err := p.ID("Recipe ID to update")
				if err != nil {
					return err
				}
				current, err := svc.GetRecipe(ctx, id, recipes.IncludeNone)
				if err != nil {
					return err
				}
				var patch recipes.RecipePatch
				if patch.Title, err = p.OptionalText("New title (current: " + current.Title + ")"); err != nil {
					return err
				}
				if patch.Description, err = p.OptionalText("New description (current: " + str(current.Description) + ")"); err != nil {
					return err
				}
				if patch.Instructions, err = p.OptionalText("New instructions (current: " + current.Instructions + ")"); err != nil {
					return err
				}
				if patch.PrepMinutes, err = p.OptionalInt("New prep time (current: " + num(current.PrepMinutes) + ")"); err != nil {
					return err
				}
				if patch.CookMinutes, err = p.OptionalInt("New cook time (current: " + num(current.CookMinutes) + ")"); err != nil {
					return err
				}
				if patch.ServingSize, err = p.OptionalInt("New serving size (current: " + num(current.ServingSize) + ")"); err != nil {
					return err
				}
				if err := svc.UpdateRecipe(ctx, id, patch); err != nil {
					return err
				}
				p.Printf("Recipe updated.\n")
				return nil
			}},
			{Label: "Delete Recipe", Run: func(ctx context.Context, p *Prompter) error {
				id, err := p.ID("Recipe ID to delete")
				if err != nil {
					return err
				}
				if err := svc.DeleteRecipe(ctx, id); err != nil {
					return err
				}
				p.Printf("Recipe deleted.\n")
				return nil
			}},
			{Label: "Fetch Recipes by Category", Run: func(ctx context.Context, p *Prompter) error {
				name, err := p.Line("Category name")
				if err != nil {
					return err
				}
				list, err := svc.RecipesByCategory(ctx, name, recipes.IncludeNone)
				if err != nil {
					return err
				}
				p.Printf("Recipes in '%s':\n", name)
				printTitles(p, list)
				return nil
			}},
			{Label: "Search Recipes by Ingredients", Run: func(ctx context.Context, p *Prompter) error {
				names, err := p.List("Enter ingredient names (comma-separated)")
				if err != nil {
					return err
				}
				list, err := svc.RecipesByIngredients(ctx, names, recipes.IncludeNone)
				if err != nil {
					return err
				}
				p.Printf("Recipes with [%s]:\n", strings.Join(names, ", "))
				printTitles(p, list)
				return nil
			}},
			{Label: "Add Category to Recipe", Run: func(ctx context.Context, p *Prompter) error {
				recipeID, categoryID, err := twoIDs(p, "Recipe ID", "Category ID")
				if err != nil {
					return err
				}
				if err := svc.AddCategoryToRecipe(ctx, recipeID, categoryID); err != nil {
					return err
				}
				p.Printf("Category added to recipe.\n")
				return nil
			}},
			{Label: "Remove Category from Recipe", Run: func(ctx context.Context, p *Prompter) error {
				recipeID, categoryID, err := twoIDs(p, "Recipe ID", "Category ID")
				if err != nil {
					return err
				}
				if err := svc.RemoveCategoryFromRecipe(ctx, recipeID, categoryID); err != nil {
					return err
				}
				p.Printf("Category removed from recipe.\n")
				return nil
			}},
			{Label: "Set Ingredient Quantity", Run: func(ctx context.Context, p *Prompter) error {
				recipeID, ingredientID, err := twoIDs(p, "Recipe ID", "Ingredient ID")
				if err != nil {
					return err
				}
				qty, err := p.Decimal("Quantity")
				if err != nil {
					return err
				}
				if err := svc.AddIngredientToRecipe(ctx, recipeID, ingredientID, qty); err != nil {
					return err
				}
				p.Printf("Ingredient quantity set.\n")
				return nil
			}},
		},
	}
}

func printRecipe(p *Prompter, r recipes.Recipe) {
	p.Printf("[%d] %s\n", r.ID, r.Title)
	p.Printf("  Ingredients:\n")
	for _, l := range r.Ingredients {
		p.Printf("    - %s: %s\n", l.Name, strings.TrimSpace(l.Quantity.StringFixed(2)+" "+str(l.Unit)))
	}
	p.Printf("  Categories: %s\n\n", strings.Join(r.CategoryNames(), ", "))
}

func printTitles(p *Prompter, list []recipes.Recipe) {
	for _, r := range list {
		p.Printf("  [%d] %s\n", r.ID, r.Title)
	}
}

func twoIDs(p *Prompter, first, second string) (int64, int64, error) {
	a, err := p.ID(first)
	if err != nil {
		return 0, 0, err
	}
	b, err := p.ID(second)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
