package httpapi

import (
	"context"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/rise-and-shine/recipebook/internal/domain"
	"github.com/rise-and-shine/recipebook/pkg/val"
)

// Actor-aware counterparts of the platform forward helpers. Mutating use
// cases take the acting user explicitly, so these decode the request the
// same way and pass the actor resolved by the auth middleware alongside it.

const (
	codeInvalidJSONBody    = "INVALID_JSON_BODY"
	codeInvalidQueryParams = "INVALID_QUERY_PARAMS"
	codeInvalidPathParams  = "INVALID_PATH_PARAMS"
)

// actorUseCase is a use case method taking an explicit actor and returning a response.
type actorUseCase[T_Req any, T_Resp any] func(context.Context, domain.Actor, T_Req) (T_Resp, error)

// actorUseCaseNoResp is a use case method taking an explicit actor and returning no response.
type actorUseCaseNoResp[T_Req any] func(context.Context, domain.Actor, T_Req) error

// toActorUseCase decodes the request, validates it and executes the use case
// with the authenticated actor.
func toActorUseCase[T_Req any, T_Resp any](uc actorUseCase[*T_Req, T_Resp]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := decodeRequest[T_Req](c)
		if err != nil {
			return errx.Wrap(err)
		}

		resp, err := uc(c.UserContext(), actorFromCtx(c), req)
		if err != nil {
			return errx.Wrap(err)
		}

		return errx.Wrap(c.JSON(resp))
	}
}

// toActorUseCaseNoResp is like toActorUseCase for use cases without a response body.
func toActorUseCaseNoResp[T_Req any](uc actorUseCaseNoResp[*T_Req]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := decodeRequest[T_Req](c)
		if err != nil {
			return errx.Wrap(err)
		}

		if err := uc(c.UserContext(), actorFromCtx(c), req); err != nil {
			return errx.Wrap(err)
		}

		return c.SendStatus(fiber.StatusOK)
	}
}

// decodeRequest fills a request struct from body, query and path params,
// then validates it.
func decodeRequest[T_Req any](c *fiber.Ctx) (*T_Req, error) {
	req := new(T_Req)

	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return nil, errx.Wrap(err,
				errx.WithType(errx.T_Validation),
				errx.WithCode(codeInvalidJSONBody),
			)
		}
	}

	if len(c.Queries()) > 0 {
		if err := c.QueryParser(req); err != nil {
			return nil, errx.Wrap(err,
				errx.WithType(errx.T_Validation),
				errx.WithCode(codeInvalidQueryParams),
			)
		}
	}

	if len(c.Route().Params) > 0 {
		if err := c.ParamsParser(req); err != nil {
			return nil, errx.Wrap(err,
				errx.WithType(errx.T_Validation),
				errx.WithCode(codeInvalidPathParams),
			)
		}
	}

	if err := val.ValidateSchema(req); err != nil {
		return nil, errx.Wrap(err)
	}
	return req, nil
}
