// Package service contains the application use cases of the recipebook
// service: the image pipeline, the product and recipe catalogs and
// authentication.
//
// Every mutating method takes an explicit domain.Actor argument identifying
// the caller. Nothing is read from ambient request-scoped state.
package service

// Error codes surfaced by the services.
const (
	CodeImageLimitExceeded    = "IMAGE_LIMIT_EXCEEDED"
	CodeImageValidationFailed = "IMAGE_VALIDATION_FAILED"
	CodeImageRecipeMismatch   = "IMAGE_RECIPE_MISMATCH"
	CodeEmptyReorderPayload   = "EMPTY_REORDER_PAYLOAD"

	CodeNotResourceOwner   = "NOT_RESOURCE_OWNER"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidResetToken  = "INVALID_RESET_TOKEN"
)
