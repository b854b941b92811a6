package repo

import (
	"context"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/recipebook/internal/domain"
	"github.com/rise-and-shine/recipebook/pkg/pagination"
	"github.com/rise-and-shine/recipebook/pkg/pg"
	"github.com/rise-and-shine/recipebook/pkg/sorter"
	"github.com/uptrace/bun"
)

// RecipeRepo persists recipes and their ingredient associations.
type RecipeRepo struct {
	db bun.IDB
}

// NewRecipeRepo creates a recipe repository.
func NewRecipeRepo(db bun.IDB) *RecipeRepo {
	return &RecipeRepo{db: db}
}

// Create inserts a new recipe, stamping audit fields with the actor login.
func (r *RecipeRepo) Create(ctx context.Context, recipe *domain.Recipe, by string) (*domain.Recipe, error) {
	recipe.SetCreated(by)

	q := r.db.NewInsert().Model(recipe).Returning("*")
	if _, err := q.Exec(ctx); err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}
	return recipe, nil
}

// GetByID fetches a recipe with its ingredients (and their products).
func (r *RecipeRepo) GetByID(ctx context.Context, id int64) (*domain.Recipe, error) {
	recipe := new(domain.Recipe)

	err := r.db.NewSelect().
		Model(recipe).
		Relation("Ingredients").
		Relation("Ingredients.Product").
		Where("r.id = ?", id).
		Scan(ctx)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, recipeNotFound(id)
		}
		return nil, errx.Wrap(err)
	}
	return recipe, nil
}

// Exists reports whether a recipe row exists.
func (r *RecipeRepo) Exists(ctx context.Context, id int64) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*domain.Recipe)(nil)).
		Where("id = ?", id).
		Exists(ctx)
	if err != nil {
		return false, errx.Wrap(err)
	}
	return exists, nil
}

// List returns a page of recipes ordered by the given sort options.
func (r *RecipeRepo) List(
	ctx context.Context,
	page pagination.Request,
	sort sorter.SortOpts,
) ([]*domain.Recipe, int64, error) {
	var recipes []*domain.Recipe

	q := r.db.NewSelect().Model(&recipes)
	for _, opt := range sort {
		q = q.OrderExpr(opt.ToSQL())
	}

	total, err := q.Limit(page.Limit()).Offset(page.Offset()).ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errx.Wrap(err)
	}
	return recipes, int64(total), nil
}

// Update persists recipe changes, stamping the update audit fields.
func (r *RecipeRepo) Update(ctx context.Context, recipe *domain.Recipe, by string) (*domain.Recipe, error) {
	recipe.SetUpdated(by)

	q := r.db.NewUpdate().Model(recipe).WherePK().Returning("*")
	res, err := q.Exec(ctx)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if affected == 0 {
		return nil, recipeNotFound(recipe.ID)
	}
	return recipe, nil
}

// Delete removes a recipe. Ingredient associations and image rows cascade
// at the database level; physical image files are removed by the caller.
func (r *RecipeRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().
		Model((*domain.Recipe)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errx.Wrap(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errx.Wrap(err)
	}
	if affected == 0 {
		return recipeNotFound(id)
	}
	return nil
}

// AddIngredient attaches a product to a recipe with quantity and unit.
func (r *RecipeRepo) AddIngredient(ctx context.Context, ing *domain.RecipeIngredient) error {
	q := r.db.NewInsert().Model(ing)
	if _, err := q.Exec(ctx); err != nil {
		if pg.ConstraintName(err) == constraintRecipeIngredients {
			return errx.New(
				"product is already an ingredient of this recipe",
				errx.WithCode(CodeIngredientAlreadyExists),
				errx.WithType(errx.T_Conflict),
				errx.WithDetails(errx.D{
					"recipe_id":  ing.RecipeID,
					"product_id": ing.ProductID,
				}),
			)
		}
		return errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}
	return nil
}

// UpdateIngredient changes the quantity/unit of an existing association.
func (r *RecipeRepo) UpdateIngredient(ctx context.Context, ing *domain.RecipeIngredient) error {
	res, err := r.db.NewUpdate().Model(ing).WherePK().Exec(ctx)
	if err != nil {
		return errx.Wrap(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errx.Wrap(err)
	}
	if affected == 0 {
		return ingredientNotFound(ing.RecipeID, ing.ProductID)
	}
	return nil
}

// RemoveIngredient detaches a product from a recipe.
func (r *RecipeRepo) RemoveIngredient(ctx context.Context, recipeID, productID int64) error {
	res, err := r.db.NewDelete().
		Model((*domain.RecipeIngredient)(nil)).
		Where("recipe_id = ?", recipeID).
		Where("product_id = ?", productID).
		Exec(ctx)
	if err != nil {
		return errx.Wrap(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errx.Wrap(err)
	}
	if affected == 0 {
		return ingredientNotFound(recipeID, productID)
	}
	return nil
}

// ListIngredients returns all ingredient associations of a recipe with
// their product details.
func (r *RecipeRepo) ListIngredients(ctx context.Context, recipeID int64) ([]*domain.RecipeIngredient, error) {
	var ingredients []*domain.RecipeIngredient

	err := r.db.NewSelect().
		Model(&ingredients).
		Relation("Product").
		Where("ri.recipe_id = ?", recipeID).
		Scan(ctx)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return ingredients, nil
}

func recipeNotFound(id int64) error {
	return errx.New(
		"recipe not found",
		errx.WithCode(CodeRecipeNotFound),
		errx.WithType(errx.T_NotFound),
		errx.WithDetails(errx.D{"recipe_id": id}),
	)
}

func ingredientNotFound(recipeID, productID int64) error {
	return errx.New(
		"ingredient not found in recipe",
		errx.WithCode(CodeIngredientNotFound),
		errx.WithType(errx.T_NotFound),
		errx.WithDetails(errx.D{
			"recipe_id":  recipeID,
			"product_id": productID,
		}),
	)
}
