package recipes

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"relational-reports/internal/apperrors"
	"relational-reports/internal/database"
	"relational-reports/internal/relational"
)

const recipeColumns = `r.recipeid, r.title, r.description, r.instructions,
	       r.preptime, r.cooktime, r.servingsize`

// ListRecipes returns every recipe ordered by id.
func (s *Service) ListRecipes(ctx context.Context, include Include) ([]Recipe, error) {
	recipes, err := selectRecipes(ctx, s.db, "SELECT "+recipeColumns+" FROM recipe r ORDER BY r.recipeid")
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	if err := attach(ctx, s.db, recipes, include); err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

func (s *Service) GetRecipe(ctx context.Context, id int64, include Include) (Recipe, error) {
	recipes, err := selectRecipes(ctx, s.db, "SELECT "+recipeColumns+" FROM recipe r WHERE r.recipeid = ?", id)
	if err != nil {
		return Recipe{}, fmt.Errorf("get recipe: %w", err)
	}
	if len(recipes) == 0 {
		return Recipe{}, apperrors.NotFound(EntityRecipe, id)
	}
	if err := attach(ctx, s.db, recipes, include); err != nil {
		return Recipe{}, fmt.Errorf("get recipe: %w", err)
	}
	return recipes[0], nil
}

// RecipesByCategory matches the category name case-insensitively. An unknown
// category yields no recipes.
func (s *Service) RecipesByCategory(ctx context.Context, name string, include Include) ([]Recipe, error) {
	matched, err := relational.Match(ctx, s.db, Schema, EntityCategory, "name", []string{name})
	if err != nil {
		return nil, fmt.Errorf("recipes by category: %w", err)
	}
	if len(matched) == 0 {
		return []Recipe{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+recipeColumns+`
		  FROM recipe r
		 WHERE r.recipeid IN (
		       SELECT rc.recipeid
		         FROM recipecategory rc
		        WHERE rc.categoryid IN (?))
		 ORDER BY r.recipeid`, keys(matched))
	if err != nil {
		return nil, fmt.Errorf("recipes by category: %w", err)
	}
	recipes, err := selectRecipes(ctx, s.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("recipes by category: %w", err)
	}
	if err := attach(ctx, s.db, recipes, include); err != nil {
		return nil, fmt.Errorf("recipes by category: %w", err)
	}
	return recipes, nil
}

// RecipesByIngredients returns the recipes that contain every listed
// ingredient. Names match case-insensitively, duplicates are ignored and an
// empty list matches every recipe.
func (s *Service) RecipesByIngredients(ctx context.Context, names []string, include Include) ([]Recipe, error) {
	wanted := normalizeNames(names)
	if len(wanted) == 0 {
		return s.ListRecipes(ctx, include)
	}

	matched, err := relational.Match(ctx, s.db, Schema, EntityIngredient, "name", wanted)
	if err != nil {
		return nil, fmt.Errorf("recipes by ingredients: %w", err)
	}
	recipeIDs, err := recipesCovering(ctx, s.db, matched, len(wanted))
	if err != nil {
		return nil, fmt.Errorf("recipes by ingredients: %w", err)
	}
	if len(recipeIDs) == 0 {
		return []Recipe{}, nil
	}

	query, args, err := sqlx.In("SELECT "+recipeColumns+" FROM recipe r WHERE r.recipeid IN (?) ORDER BY r.recipeid", recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("recipes by ingredients: %w", err)
	}
	recipes, err := selectRecipes(ctx, s.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("recipes by ingredients: %w", err)
	}
	if err := attach(ctx, s.db, recipes, include); err != nil {
		return nil, fmt.Errorf("recipes by ingredients: %w", err)
	}
	return recipes, nil
}

// recipesCovering returns the recipes linked to an ingredient for each of the
// n wanted names. matched maps ingredient ids to the index of their name.
func recipesCovering(ctx context.Context, q database.Querier, matched map[int64]int, n int) ([]int64, error) {
	names := make(map[int]bool, n)
	for _, i := range matched {
		names[i] = true
	}
	if len(names) < n {
		return nil, nil
	}

	query, args, err := sqlx.In("SELECT recipeid, ingredientid FROM recipeingredient WHERE ingredientid IN (?)", keys(matched))
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	covered := make(map[int64]map[int]bool)
	for rows.Next() {
		var recipeID, ingredientID int64
		if err := rows.Scan(&recipeID, &ingredientID); err != nil {
			return nil, err
		}
		if covered[recipeID] == nil {
			covered[recipeID] = make(map[int]bool, n)
		}
		covered[recipeID][matched[ingredientID]] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var ids []int64
	for id, seen := range covered {
		if len(seen) == n {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func keys(m map[int64]int) []int64 {
	out := make([]int64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func (s *Service) ListIngredients(ctx context.Context) ([]Ingredient, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT ingredientid, name, unit, notes FROM ingredient ORDER BY ingredientid")
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := []Ingredient{}
	for rows.Next() {
		var i Ingredient
		if err := rows.Scan(&i.ID, &i.Name, &i.Unit, &i.Notes); err != nil {
			return nil, fmt.Errorf("list ingredients: %w", err)
		}
		ingredients = append(ingredients, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	return ingredients, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT categoryid, name FROM category ORDER BY categoryid")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func selectRecipes(ctx context.Context, q database.Querier, query string, args ...any) ([]Recipe, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipes := []Recipe{}
	for rows.Next() {
		var r Recipe
		if err := rows.Scan(
			&r.ID,
			&r.Title,
			&r.Description,
			&r.Instructions,
			&r.PrepMinutes,
			&r.CookMinutes,
			&r.ServingSize,
		); err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

// attach resolves the requested collections for all recipes with one query
// per collection.
func attach(ctx context.Context, q database.Querier, recipes []Recipe, include Include) error {
	if len(recipes) == 0 || include == IncludeNone {
		return nil
	}
	ids := make([]int64, len(recipes))
	byID := make(map[int64]int, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
		byID[r.ID] = i
		if include.Ingredients {
			recipes[i].Ingredients = []IngredientLine{}
		}
		if include.Categories {
			recipes[i].Categories = []Category{}
		}
	}

	if include.Ingredients {
		query, args, err := sqlx.In(`SELECT ri.recipeid, i.ingredientid, i.name, ri.quantity, i.unit
			  FROM recipeingredient ri
			  JOIN ingredient i ON i.ingredientid = ri.ingredientid
			 WHERE ri.recipeid IN (?)
			 ORDER BY ri.recipeid, i.ingredientid`, ids)
		if err != nil {
			return err
		}
		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("load ingredients: %w", err)
		}
		for rows.Next() {
			var recipeID int64
			var line IngredientLine
			if err := rows.Scan(&recipeID, &line.IngredientID, &line.Name, &line.Quantity, &line.Unit); err != nil {
				rows.Close()
				return fmt.Errorf("load ingredients: %w", err)
			}
			i := byID[recipeID]
			recipes[i].Ingredients = append(recipes[i].Ingredients, line)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return fmt.Errorf("load ingredients: %w", err)
		}
	}

	if include.Categories {
		query, args, err := sqlx.In(`SELECT rc.recipeid, c.categoryid, c.name
			  FROM recipecategory rc
			  JOIN category c ON c.categoryid = rc.categoryid
			 WHERE rc.recipeid IN (?)
			 ORDER BY rc.recipeid, c.categoryid`, ids)
		if err != nil {
			return err
		}
		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		for rows.Next() {
			var recipeID int64
			var c Category
			if err := rows.Scan(&recipeID, &c.ID, &c.Name); err != nil {
				rows.Close()
				return fmt.Errorf("load categories: %w", err)
			}
			i := byID[recipeID]
			recipes[i].Categories = append(recipes[i].Categories, c)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
	}
	return nil
}

func normalizeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = relational.Fold(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
