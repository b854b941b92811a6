// Package repo contains the persistence layer of the recipebook service.
//
// Each repository wraps bun queries over one entity. Audit fields are
// stamped here, right before insert and update, by calling the entity's
// SetCreated/SetUpdated methods with the acting user's login.
package repo

// Error codes surfaced by the repositories.
const (
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeProductNotFound    = "PRODUCT_NOT_FOUND"
	CodeRecipeNotFound     = "RECIPE_NOT_FOUND"
	CodeImageNotFound      = "IMAGE_NOT_FOUND"
	CodeIngredientNotFound = "INGREDIENT_NOT_FOUND"
	CodeResetTokenNotFound = "RESET_TOKEN_NOT_FOUND"

	CodeLoginAlreadyExists       = "LOGIN_ALREADY_EXISTS"
	CodeProductNameAlreadyExists = "PRODUCT_NAME_ALREADY_EXISTS"
	CodeIngredientAlreadyExists  = "INGREDIENT_ALREADY_EXISTS"
)

// PostgreSQL constraint names mapped to conflict codes.
const (
	constraintUserLogin         = "users_login_key"
	constraintProductName       = "products_name_key"
	constraintRecipeIngredients = "recipe_ingredients_pkey"
)
