package recipes

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"relational-reports/internal/apperrors"
	"relational-reports/internal/database"
	"relational-reports/internal/relational"
)

type IngredientInput struct {
	Name  string
	Unit  string
	Notes string
}

type RecipeInput struct {
	Title        string
	Description  string
	Instructions string
	PrepMinutes  *int
	CookMinutes  *int
	ServingSize  *int
}

// RecipePatch changes only the fields it carries. Nil pointers and blank
// strings leave the stored value as it is.
type RecipePatch struct {
	Title        *string
	Description  *string
	Instructions *string
	PrepMinutes  *int
	CookMinutes  *int
	ServingSize  *int
}

func (s *Service) CreateIngredient(ctx context.Context, in IngredientInput) (int64, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return 0, apperrors.Invalid("name", "is required")
	}

	var id int64
	err := s.db.ExecuteTx(ctx, func(q database.Querier) error {
		if err := relational.EnsureUnique(ctx, q, Schema, EntityIngredient, "name", name, 0); err != nil {
			return err
		}
		var err error
		id, err = q.InsertContext(ctx,
			"INSERT INTO ingredient (name, unit, notes) VALUES (?, ?, ?)",
			"ingredientid", name, nullable(in.Unit), nullable(in.Notes))
		return err
	})
	if err != nil {
		return 0, wrapUnique(err, "name", name, "create ingredient")
	}
	s.logger.Printf("created ingredient #%d %q", id, name)
	return id, nil
}

func (s *Service) CreateCategory(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, apperrors.Invalid("name", "is required")
	}

	var id int64
	err := s.db.ExecuteTx(ctx, func(q database.Querier) error {
		if err := relational.EnsureUnique(ctx, q, Schema, EntityCategory, "name", name, 0); err != nil {
			return err
		}
		var err error
		id, err = q.InsertContext(ctx, "INSERT INTO category (name) VALUES (?)", "categoryid", name)
		return err
	})
	if err != nil {
		return 0, wrapUnique(err, "name", name, "create category")
	}
	s.logger.Printf("created category #%d %q", id, name)
	return id, nil
}

func (s *Service) CreateRecipe(ctx context.Context, in RecipeInput) (int64, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return 0, apperrors.Invalid("title", "is required")
	}
	if err := validateMinutes(in.PrepMinutes, in.CookMinutes, in.ServingSize); err != nil {
		return 0, err
	}

	var id int64
	err := s.db.ExecuteTx(ctx, func(q database.Querier) error {
		if err := relational.EnsureUnique(ctx, q, Schema, EntityRecipe, "title", title, 0); err != nil {
			return err
		}
		var err error
		id, err = q.InsertContext(ctx,
			`INSERT INTO recipe (title, description, instructions, preptime, cooktime, servingsize)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			"recipeid",
			title,
			nullable(in.Description),
			strings.TrimSpace(in.Instructions),
			in.PrepMinutes,
			in.CookMinutes,
			in.ServingSize,
		)
		return err
	})
	if err != nil {
		return 0, wrapUnique(err, "title", title, "create recipe")
	}
	s.logger.Printf("created recipe #%d %q", id, title)
	return id, nil
}

// UpdateRecipe applies patch to recipe id.
func (s *Service) UpdateRecipe(ctx context.Context, id int64, patch RecipePatch) error {
	if err := validateMinutes(patch.PrepMinutes, patch.CookMinutes, patch.ServingSize); err != nil {
		return err
	}

	var sets []string
	var args []any
	title, hasTitle := present(patch.Title)
	if hasTitle {
		sets, args = append(sets, "title = ?"), append(args, title)
	}
	if v, ok := present(patch.Description); ok {
		sets, args = append(sets, "description = ?"), append(args, v)
	}
	if v, ok := present(patch.Instructions); ok {
		sets, args = append(sets, "instructions = ?"), append(args, v)
	}
	if patch.PrepMinutes != nil {
		sets, args = append(sets, "preptime = ?"), append(args, *patch.PrepMinutes)
	}
	if patch.CookMinutes != nil {
		sets, args = append(sets, "cooktime = ?"), append(args, *patch.CookMinutes)
	}
	if patch.ServingSize != nil {
		sets, args = append(sets, "servingsize = ?"), append(args, *patch.ServingSize)
	}

	err := s.db.ExecuteTx(ctx, func(q database.Querier) error {
		if err := relational.Require(ctx, q, Schema, EntityRecipe, id); err != nil {
			return err
		}
		if len(sets) == 0 {
			return nil
		}
		if hasTitle {
			if err := relational.EnsureUnique(ctx, q, Schema, EntityRecipe, "title", title, id); err != nil {
				return err
			}
		}
		_, err := q.ExecContext(ctx,
			"UPDATE recipe SET "+strings.Join(sets, ", ")+" WHERE recipeid = ?",
			append(args, id)...)
		return err
	})
	if err != nil {
		return wrapUnique(err, "title", title, "update recipe")
	}
	s.logger.Printf("updated recipe #%d (%d field(s))", id, len(sets))
	return nil
}

// DeleteRecipe removes the recipe and its ingredient and category links. The
// ingredients and categories themselves are kept.
func (s *Service) DeleteRecipe(ctx context.Context, id int64) error {
	err := s.db.ExecuteTx(ctx, func(q database.Querier) error {
		return relational.Delete(ctx, q, Schema, EntityRecipe, id)
	})
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	s.logger.Printf("deleted recipe #%d", id)
	return nil
}

// AddCategoryToRecipe links a category to a recipe. Linking twice is a no-op.
func (s *Service) AddCategoryToRecipe(ctx context.Context, recipeID, categoryID int64) error {
	err := s.db.ExecuteTx(ctx, func(q database.Querier) error {
		if err := requireBoth(ctx, q, recipeID, EntityCategory, categoryID); err != nil {
			return err
		}
		var linked int
		if err := q.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM recipecategory WHERE recipeid = ? AND categoryid = ?",
			recipeID, categoryID).Scan(&linked); err != nil {
			return err
		}
		if linked > 0 {
			return nil
		}
		_, err := q.ExecContext(ctx, "INSERT INTO recipecategory (recipeid, categoryid) VALUES (?, ?)", recipeID, categoryID)
		return err
	})
	if err != nil {
		return fmt.Errorf("add category to recipe: %w", err)
	}
	s.logger.Printf("linked category #%d to recipe #%d", categoryID, recipeID)
	return nil
}

// RemoveCategoryFromRecipe unlinks a category. Removing a missing link is a no-op.
func (s *Service) RemoveCategoryFromRecipe(ctx context.Context, recipeID, categoryID int64) error {
	err := s.db.ExecuteTx(ctx, func(q database.Querier) error {
		if err := requireBoth(ctx, q, recipeID, EntityCategory, categoryID); err != nil {
			return err
		}
		_, err := q.ExecContext(ctx, "DELETE FROM recipecategory WHERE recipeid = ? AND categoryid = ?", recipeID, categoryID)
		return err
	})
	if err != nil {
		return fmt.Errorf("remove category from recipe: %w", err)
	}
	s.logger.Printf("unlinked category #%d from recipe #%d", categoryID, recipeID)
	return nil
}

// AddIngredientToRecipe sets the quantity of an ingredient in a recipe,
// creating the link when needed.
func (s *Service) AddIngredientToRecipe(ctx context.Context, recipeID, ingredientID int64, quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return apperrors.Invalid("quantity", "must not be negative")
	}
	if !quantity.Equal(quantity.Truncate(2)) {
		return apperrors.Invalid("quantity", "allows at most 2 fractional digits")
	}

	err := s.db.ExecuteTx(ctx, func(q database.Querier) error {
		if err := requireBoth(ctx, q, recipeID, EntityIngredient, ingredientID); err != nil {
			return err
		}
		var linked int
		if err := q.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM recipeingredient WHERE recipeid = ? AND ingredientid = ?",
			recipeID, ingredientID).Scan(&linked); err != nil {
			return err
		}
		if linked > 0 {
			_, err := q.ExecContext(ctx,
				"UPDATE recipeingredient SET quantity = ? WHERE recipeid = ? AND ingredientid = ?",
				quantity, recipeID, ingredientID)
			return err
		}
		_, err := q.ExecContext(ctx,
			"INSERT INTO recipeingredient (recipeid, ingredientid, quantity) VALUES (?, ?, ?)",
			recipeID, ingredientID, quantity)
		return err
	})
	if err != nil {
		return fmt.Errorf("add ingredient to recipe: %w", err)
	}
	s.logger.Printf("set ingredient #%d of recipe #%d to %s", ingredientID, recipeID, quantity.StringFixed(2))
	return nil
}

func requireBoth(ctx context.Context, q database.Querier, recipeID int64, entity string, id int64) error {
	if err := relational.Require(ctx, q, Schema, EntityRecipe, recipeID); err != nil {
		return err
	}
	return relational.Require(ctx, q, Schema, entity, id)
}

func wrapUnique(err error, field, value, op string) error {
	if database.IsUniqueViolation(err) {
		err = apperrors.Invalid(field, "%q already exists", value)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func validateMinutes(values ...*int) error {
	for _, v := range values {
		if v != nil && *v < 0 {
			return apperrors.Invalid("minutes", "must not be negative")
		}
	}
	return nil
}

func present(v *string) (string, bool) {
	if v == nil {
		return "", false
	}
	trimmed := strings.TrimSpace(*v)
	return trimmed, trimmed != ""
}

func nullable(v string) any {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return v
}
