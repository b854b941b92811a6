// Package httpapi exposes the recipebook service over HTTP.
//
// Routers decode requests, resolve the acting user from the auth middleware
// and forward into the service layer. Response and error shapes follow the
// platform server conventions.
package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rise-and-shine/recipebook/internal/service"
)

// API bundles the service dependencies of the HTTP surface.
type API struct {
	auth     *service.AuthService
	products *service.ProductService
	recipes  *service.RecipeService
	images   *service.ImageService
}

// New creates the HTTP API over the given services.
func New(
	auth *service.AuthService,
	products *service.ProductService,
	recipes *service.RecipeService,
	images *service.ImageService,
) *API {
	return &API{
		auth:     auth,
		products: products,
		recipes:  recipes,
		images:   images,
	}
}

// Register mounts all routes on the router.
func (a *API) Register(r fiber.Router) {
	api := r.Group("/api")

	a.registerAuthRoutes(api)
	a.registerProductRoutes(api)
	a.registerRecipeRoutes(api)
	a.registerImageRoutes(api)
}
