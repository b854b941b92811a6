package httpapi

import (
	"strings"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/rise-and-shine/recipebook/internal/domain"
	"github.com/rise-and-shine/recipebook/pkg/meta"
)

const codeMissingAuthToken = "MISSING_AUTH_TOKEN"

// requireAuth authenticates the request with a Bearer JWT and stores the
// resolved actor in the request locals and meta context.
func (a *API) requireAuth(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(header, bearerPrefix) {
		return errx.New(
			"missing or malformed authorization header",
			errx.WithCode(codeMissingAuthToken),
			errx.WithType(errx.T_Authentication),
		)
	}

	actor, err := a.auth.VerifyAccessToken(strings.TrimPrefix(header, bearerPrefix))
	if err != nil {
		return errx.Wrap(err)
	}

	c.Locals(meta.RequestUserID, actor.Login)
	c.Locals(meta.RequestUserRole, string(actor.Role))

	ctx := meta.InjectMetaToContext(c.UserContext(), map[meta.ContextKey]string{
		meta.RequestUserID:   actor.Login,
		meta.RequestUserRole: string(actor.Role),
	})
	c.SetUserContext(ctx)

	return c.Next()
}

// actorFromCtx reads back the actor stored by requireAuth.
func actorFromCtx(c *fiber.Ctx) domain.Actor {
	login, _ := c.Locals(meta.RequestUserID).(string)
	role, _ := c.Locals(meta.RequestUserRole).(string)
	return domain.Actor{Login: login, Role: domain.Role(role)}
}
