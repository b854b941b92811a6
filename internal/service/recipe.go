package service

import (
	"context"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/recipebook/internal/domain"
	"github.com/rise-and-shine/recipebook/internal/repo"
	"github.com/rise-and-shine/recipebook/pkg/filestore"
	"github.com/rise-and-shine/recipebook/pkg/logger"
	"github.com/rise-and-shine/recipebook/pkg/pagination"
	"github.com/rise-and-shine/recipebook/pkg/sorter"
	"github.com/uptrace/bun"
)

// recipeSortFields lists the columns clients may sort recipes by.
var recipeSortFields = []string{"name", "category", "difficulty", "prep_time_minutes", "created_at"}

// RecipeService manages recipes and their ingredient associations.
type RecipeService struct {
	recipes  *repo.RecipeRepo
	products *repo.ProductRepo
	images   *repo.ImageRepo
	files    filestore.FileStore
	log      logger.Logger
}

// NewRecipeService creates the recipe catalog service.
func NewRecipeService(db *bun.DB, files filestore.FileStore, log logger.Logger) *RecipeService {
	return &RecipeService{
		recipes:  repo.NewRecipeRepo(db),
		products: repo.NewProductRepo(db),
		images:   repo.NewImageRepo(db),
		files:    files,
		log:      log.Named("service.recipe"),
	}
}

// CreateRecipeInput carries a new recipe.
type CreateRecipeInput struct {
	Name            string   `json:"name"              validate:"required,max=255"`
	Instructions    string   `json:"instructions"      validate:"required"`
	PrepTimeMinutes *int     `json:"prep_time_minutes" validate:"omitempty,gte=0"`
	Yield           *string  `json:"yield"             validate:"omitempty,max=100"`
	Category        *string  `json:"category"          validate:"omitempty,max=100"`
	Difficulty      *string  `json:"difficulty"        validate:"omitempty,max=50"`
	Notes           *string  `json:"notes"`
	Tags            []string `json:"tags"              validate:"omitempty,dive,max=50"`
}

// Create adds a recipe owned by the actor.
func (s *RecipeService) Create(
	ctx context.Context,
	actor domain.Actor,
	in *CreateRecipeInput,
) (*domain.Recipe, error) {
	recipe := &domain.Recipe{
		Name:            in.Name,
		Instructions:    in.Instructions,
		PrepTimeMinutes: in.PrepTimeMinutes,
		Yield:           in.Yield,
		Category:        in.Category,
		Difficulty:      in.Difficulty,
		Notes:           in.Notes,
		Tags:            in.Tags,
	}

	recipe, err := s.recipes.Create(ctx, recipe, actor.Login)
	return recipe, errx.Wrap(err)
}

// Get returns one recipe with its ingredients.
func (s *RecipeService) Get(ctx context.Context, id int64) (*domain.Recipe, error) {
	recipe, err := s.recipes.GetByID(ctx, id)
	return recipe, errx.Wrap(err)
}

// List returns a page of recipes.
func (s *RecipeService) List(
	ctx context.Context,
	page pagination.Request,
	sort string,
) (*pagination.Response[*domain.Recipe], error) {
	page.Normalize()

	sortOpts := sorter.MakeFromStr(sort, recipeSortFields...)
	if len(sortOpts) == 0 {
		sortOpts = sorter.MakeFromStr("created_at:desc", recipeSortFields...)
	}

	recipes, total, err := s.recipes.List(ctx, page, sortOpts)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	resp := pagination.NewResponse(recipes, total, page)
	return &resp, nil
}

// UpdateRecipeInput carries a partial recipe edit.
type UpdateRecipeInput struct {
	Name            *string  `json:"name"              validate:"omitempty,max=255"`
	Instructions    *string  `json:"instructions"`
	PrepTimeMinutes *int     `json:"prep_time_minutes" validate:"omitempty,gte=0"`
	Yield           *string  `json:"yield"             validate:"omitempty,max=100"`
	Category        *string  `json:"category"          validate:"omitempty,max=100"`
	Difficulty      *string  `json:"difficulty"        validate:"omitempty,max=50"`
	Notes           *string  `json:"notes"`
	Tags            []string `json:"tags"              validate:"omitempty,dive,max=50"`
	Favorite        *bool    `json:"favorite"`
}

// Update applies a partial edit. Only the creator or an admin may edit.
func (s *RecipeService) Update(
	ctx context.Context,
	actor domain.Actor,
	id int64,
	in *UpdateRecipeInput,
) (*domain.Recipe, error) {
	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if err := requireOwnership(recipe.CreatedBy, actor); err != nil {
		return nil, err
	}

	if in.Name != nil {
		recipe.Name = *in.Name
	}
	if in.Instructions != nil {
		recipe.Instructions = *in.Instructions
	}
	if in.PrepTimeMinutes != nil {
		recipe.PrepTimeMinutes = in.PrepTimeMinutes
	}
	if in.Yield != nil {
		recipe.Yield = in.Yield
	}
	if in.Category != nil {
		recipe.Category = in.Category
	}
	if in.Difficulty != nil {
		recipe.Difficulty = in.Difficulty
	}
	if in.Notes != nil {
		recipe.Notes = in.Notes
	}
	if in.Tags != nil {
		recipe.Tags = in.Tags
	}
	if in.Favorite != nil {
		recipe.Favorite = *in.Favorite
	}

	// Clear loaded relations so bun does not try to update them.
	recipe.Ingredients = nil
	recipe.Images = nil

	recipe, err = s.recipes.Update(ctx, recipe, actor.Login)
	return recipe, errx.Wrap(err)
}

// Delete removes a recipe, its ingredient associations, its image rows and
// their files. File deletions are best effort after the rows are gone.
func (s *RecipeService) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return errx.Wrap(err)
	}
	if err := requireOwnership(recipe.CreatedBy, actor); err != nil {
		return err
	}

	paths, err := s.images.DeleteByRecipe(ctx, id)
	if err != nil {
		return errx.Wrap(err)
	}

	if err := s.recipes.Delete(ctx, id); err != nil {
		return errx.Wrap(err)
	}

	for _, p := range paths {
		if _, delErr := s.files.Delete(ctx, p); delErr != nil {
			s.log.WithContext(ctx).
				With("relative_path", p).
				With("delete_error", delErr.Error()).
				Warn("failed to delete image file of removed recipe")
		}
	}
	return nil
}

// IngredientInput attaches or updates a product within a recipe.
type IngredientInput struct {
	ProductID     int64   `json:"product_id"      validate:"required"`
	Quantity      float64 `json:"quantity"        validate:"required,gt=0"`
	UnitOfMeasure string  `json:"unit_of_measure" validate:"required,max=50"`
}

// AddIngredient attaches a product to a recipe.
func (s *RecipeService) AddIngredient(
	ctx context.Context,
	actor domain.Actor,
	recipeID int64,
	in *IngredientInput,
) error {
	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return errx.Wrap(err)
	}
	if err := requireOwnership(recipe.CreatedBy, actor); err != nil {
		return err
	}

	// The product must exist; surfaces PRODUCT_NOT_FOUND before insert.
	if _, err := s.products.GetByID(ctx, in.ProductID); err != nil {
		return errx.Wrap(err)
	}

	return errx.Wrap(s.recipes.AddIngredient(ctx, &domain.RecipeIngredient{
		RecipeID:      recipeID,
		ProductID:     in.ProductID,
		Quantity:      in.Quantity,
		UnitOfMeasure: in.UnitOfMeasure,
	}))
}

// UpdateIngredient changes the quantity/unit of an attached product.
func (s *RecipeService) UpdateIngredient(
	ctx context.Context,
	actor domain.Actor,
	recipeID int64,
	in *IngredientInput,
) error {
	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return errx.Wrap(err)
	}
	if err := requireOwnership(recipe.CreatedBy, actor); err != nil {
		return err
	}

	return errx.Wrap(s.recipes.UpdateIngredient(ctx, &domain.RecipeIngredient{
		RecipeID:      recipeID,
		ProductID:     in.ProductID,
		Quantity:      in.Quantity,
		UnitOfMeasure: in.UnitOfMeasure,
	}))
}

// RemoveIngredient detaches a product from a recipe.
func (s *RecipeService) RemoveIngredient(
	ctx context.Context,
	actor domain.Actor,
	recipeID, productID int64,
) error {
	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return errx.Wrap(err)
	}
	if err := requireOwnership(recipe.CreatedBy, actor); err != nil {
		return err
	}

	return errx.Wrap(s.recipes.RemoveIngredient(ctx, recipeID, productID))
}

// ListIngredients returns the recipe's ingredient associations.
func (s *RecipeService) ListIngredients(ctx context.Context, recipeID int64) ([]*domain.RecipeIngredient, error) {
	if _, err := s.recipes.GetByID(ctx, recipeID); err != nil {
		return nil, errx.Wrap(err)
	}

	ingredients, err := s.recipes.ListIngredients(ctx, recipeID)
	return ingredients, errx.Wrap(err)
}
