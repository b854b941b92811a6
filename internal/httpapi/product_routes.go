package httpapi

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rise-and-shine/recipebook/internal/domain"
	"github.com/rise-and-shine/recipebook/internal/service"
	"github.com/rise-and-shine/recipebook/pkg/http/server/forward"
	"github.com/rise-and-shine/recipebook/pkg/pagination"
)

func (a *API) registerProductRoutes(r fiber.Router) {
	products := r.Group("/produtos")

	products.Get("/", forward.ToUseCase(a.listProducts))
	products.Get("/:produtoId", forward.ToUseCase(a.getProduct))

	products.Post("/", a.requireAuth, toActorUseCase(a.products.Create))
	products.Put("/:produtoId", a.requireAuth, toActorUseCase(a.updateProduct))
	products.Delete("/:produtoId", a.requireAuth, toActorUseCaseNoResp(a.deleteProduct))
}

type listProductsRequest struct {
	pagination.Request
	Sort string `query:"sort"`
}

func (a *API) listProducts(
	ctx context.Context,
	in *listProductsRequest,
) (*pagination.Response[*domain.Product], error) {
	return a.products.List(ctx, in.Request, in.Sort)
}

type productPathRequest struct {
	ProductID int64 `params:"produtoId" validate:"required"`
}

func (a *API) getProduct(ctx context.Context, in *productPathRequest) (*domain.Product, error) {
	return a.products.Get(ctx, in.ProductID)
}

type updateProductRequest struct {
	ProductID int64 `params:"produtoId" validate:"required"`
	service.UpdateProductInput
}

func (a *API) updateProduct(
	ctx context.Context,
	actor domain.Actor,
	in *updateProductRequest,
) (*domain.Product, error) {
	return a.products.Update(ctx, actor, in.ProductID, &in.UpdateProductInput)
}

func (a *API) deleteProduct(ctx context.Context, actor domain.Actor, in *productPathRequest) error {
	return a.products.Delete(ctx, actor, in.ProductID)
}
