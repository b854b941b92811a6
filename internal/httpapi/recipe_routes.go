package httpapi

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rise-and-shine/recipebook/internal/domain"
	"github.com/rise-and-shine/recipebook/internal/service"
	"github.com/rise-and-shine/recipebook/pkg/http/server/forward"
	"github.com/rise-and-shine/recipebook/pkg/pagination"
)

func (a *API) registerRecipeRoutes(r fiber.Router) {
	recipes := r.Group("/receitas")

	recipes.Get("/", forward.ToUseCase(a.listRecipes))
	recipes.Get("/:receitaId", forward.ToUseCase(a.getRecipe))
	recipes.Get("/:receitaId/ingredientes", forward.ToUseCase(a.listIngredients))

	recipes.Post("/", a.requireAuth, toActorUseCase(a.recipes.Create))
	recipes.Put("/:receitaId", a.requireAuth, toActorUseCase(a.updateRecipe))
	recipes.Delete("/:receitaId", a.requireAuth, toActorUseCaseNoResp(a.deleteRecipe))

	recipes.Post("/:receitaId/ingredientes", a.requireAuth, toActorUseCaseNoResp(a.addIngredient))
	recipes.Put("/:receitaId/ingredientes", a.requireAuth, toActorUseCaseNoResp(a.updateIngredient))
	recipes.Delete("/:receitaId/ingredientes/:produtoId", a.requireAuth, toActorUseCaseNoResp(a.removeIngredient))
}

type listRecipesRequest struct {
	pagination.Request
	Sort string `query:"sort"`
}

func (a *API) listRecipes(
	ctx context.Context,
	in *listRecipesRequest,
) (*pagination.Response[*domain.Recipe], error) {
	return a.recipes.List(ctx, in.Request, in.Sort)
}

type recipePathRequest struct {
	RecipeID int64 `params:"receitaId" validate:"required"`
}

func (a *API) getRecipe(ctx context.Context, in *recipePathRequest) (*domain.Recipe, error) {
	return a.recipes.Get(ctx, in.RecipeID)
}

type updateRecipeRequest struct {
	RecipeID int64 `params:"receitaId" validate:"required"`
	service.UpdateRecipeInput
}

func (a *API) updateRecipe(
	ctx context.Context,
	actor domain.Actor,
	in *updateRecipeRequest,
) (*domain.Recipe, error) {
	return a.recipes.Update(ctx, actor, in.RecipeID, &in.UpdateRecipeInput)
}

func (a *API) deleteRecipe(ctx context.Context, actor domain.Actor, in *recipePathRequest) error {
	return a.recipes.Delete(ctx, actor, in.RecipeID)
}

func (a *API) listIngredients(
	ctx context.Context,
	in *recipePathRequest,
) ([]*domain.RecipeIngredient, error) {
	return a.recipes.ListIngredients(ctx, in.RecipeID)
}

type ingredientRequest struct {
	RecipeID int64 `params:"receitaId" validate:"required"`
	service.IngredientInput
}

func (a *API) addIngredient(ctx context.Context, actor domain.Actor, in *ingredientRequest) error {
	return a.recipes.AddIngredient(ctx, actor, in.RecipeID, &in.IngredientInput)
}

func (a *API) updateIngredient(ctx context.Context, actor domain.Actor, in *ingredientRequest) error {
	return a.recipes.UpdateIngredient(ctx, actor, in.RecipeID, &in.IngredientInput)
}

type removeIngredientRequest struct {
	RecipeID  int64 `params:"receitaId" validate:"required"`
	ProductID int64 `params:"produtoId" validate:"required"`
}

func (a *API) removeIngredient(
	ctx context.Context,
	actor domain.Actor,
	in *removeIngredientRequest,
) error {
	return a.recipes.RemoveIngredient(ctx, actor, in.RecipeID, in.ProductID)
}
