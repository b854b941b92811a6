package domain

import "github.com/uptrace/bun"

// Recipe is a preparation owned by the user who created it. It references
// products through RecipeIngredient associations and owns its images.
type Recipe struct {
	bun.BaseModel `bun:"table:recipes,alias:r"`

	ID              int64    `bun:"id,pk,autoincrement" json:"id"`
	Name            string   `bun:"name,notnull" json:"name"`
	Instructions    string   `bun:"instructions,notnull" json:"instructions"`
	PrepTimeMinutes *int     `bun:"prep_time_minutes" json:"prep_time_minutes,omitempty"`
	Yield           *string  `bun:"yield" json:"yield,omitempty"`
	Category        *string  `bun:"category" json:"category,omitempty"`
	Difficulty      *string  `bun:"difficulty" json:"difficulty,omitempty"`
	Notes           *string  `bun:"notes" json:"notes,omitempty"`
	Tags            []string `bun:"tags,array" json:"tags,omitempty"`
	Favorite        bool     `bun:"favorite,notnull,default:false" json:"favorite"`

	AuditModel

	Ingredients []*RecipeIngredient `bun:"rel:has-many,join:id=recipe_id" json:"ingredients,omitempty"`
	Images      []*RecipeImage      `bun:"rel:has-many,join:id=recipe_id" json:"images,omitempty"`
}

// RecipeIngredient associates a product with a recipe, carrying the quantity
// and unit used in that recipe. Keyed by the (recipe, product) pair.
type RecipeIngredient struct {
	bun.BaseModel `bun:"table:recipe_ingredients,alias:ri"`

	RecipeID      int64   `bun:"recipe_id,pk" json:"recipe_id"`
	ProductID     int64   `bun:"product_id,pk" json:"product_id"`
	Quantity      float64 `bun:"quantity,notnull" json:"quantity"`
	UnitOfMeasure string  `bun:"unit_of_measure,notnull" json:"unit_of_measure"`

	Product *Product `bun:"rel:belongs-to,join:product_id=id" json:"product,omitempty"`
}
