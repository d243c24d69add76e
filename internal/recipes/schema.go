package recipes

import "relational-reports/internal/schema"

const (
	EntityRecipe           = "Recipe"
	EntityIngredient       = "Ingredient"
	EntityCategory         = "Category"
	EntityRecipeIngredient = "RecipeIngredient"
	EntityRecipeCategory   = "RecipeCategory"
)

// Schema is the recipe catalog: recipes linked to ingredients through an edge
// carrying the quantity, and to categories through a plain join table.
var Schema = func() *schema.Schema {
	b := schema.NewBuilder("recipes")
	b.Entity(EntityRecipe, "recipe").Columns(
		schema.ID("recipeid"),
		schema.Varchar("title", 100).WithUnique(),
		schema.Text("description").WithNull(),
		schema.Text("instructions"),
		schema.Int("preptime").WithNull(),
		schema.Int("cooktime").WithNull(),
		schema.Int("servingsize").WithNull(),
	)
	b.Entity(EntityIngredient, "ingredient").Columns(
		schema.ID("ingredientid"),
		schema.Varchar("name", 100).WithUnique(),
		schema.Varchar("unit", 20).WithNull(),
		schema.Text("notes").WithNull(),
	)
	b.Entity(EntityCategory, "category").Columns(
		schema.ID("categoryid"),
		schema.Varchar("name", 50).WithUnique(),
	)
	b.Entity(EntityRecipeIngredient, "recipeingredient").Columns(
		schema.Int("recipeid"),
		schema.Int("ingredientid"),
		schema.Decimal("quantity", 8, 2),
	).Key("recipeid", "ingredientid")
	b.Entity(EntityRecipeCategory, "recipecategory").Columns(
		schema.Int("recipeid"),
		schema.Int("categoryid"),
	).Key("recipeid", "categoryid")

	b.OneToMany("recipeingredient_recipe", EntityRecipe, EntityRecipeIngredient, "recipeid", schema.Cascade).
		OneToMany("recipeingredient_ingredient", EntityIngredient, EntityRecipeIngredient, "ingredientid", schema.Restrict).
		OneToMany("recipecategory_recipe", EntityRecipe, EntityRecipeCategory, "recipeid", schema.Cascade).
		OneToMany("recipecategory_category", EntityCategory, EntityRecipeCategory, "categoryid", schema.Cascade).
		ManyToMany("recipe_ingredients", EntityRecipe, EntityIngredient, EntityRecipeIngredient).
		ManyToMany("recipe_categories", EntityRecipe, EntityCategory, EntityRecipeCategory)
	return b.MustBuild()
}()
