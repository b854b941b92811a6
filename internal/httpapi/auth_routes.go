package httpapi

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rise-and-shine/recipebook/internal/service"
	"github.com/rise-and-shine/recipebook/pkg/http/server/forward"
)

func (a *API) registerAuthRoutes(r fiber.Router) {
	auth := r.Group("/auth")

	auth.Post("/register", forward.ToUseCase(a.register))
	auth.Post("/login", forward.ToUseCase(a.auth.Login))
	auth.Post("/password-reset/request", forward.ToUseCase(a.requestPasswordReset))
	auth.Post("/password-reset/confirm", forward.ToUseCaseNoResp(a.auth.ConfirmPasswordReset))
}

// userResponse is the public view of an account.
type userResponse struct {
	ID        int64     `json:"id"`
	Login     string    `json:"login"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *API) register(ctx context.Context, in *service.RegisterInput) (*userResponse, error) {
	user, err := a.auth.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	return &userResponse{
		ID:        user.ID,
		Login:     user.Login,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}, nil
}

type passwordResetRequest struct {
	Login string `json:"login" validate:"required"`
}

// passwordResetResponse returns the token directly: email delivery is out
// of scope for this service.
type passwordResetResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (a *API) requestPasswordReset(ctx context.Context, in *passwordResetRequest) (*passwordResetResponse, error) {
	token, err := a.auth.RequestPasswordReset(ctx, in.Login)
	if err != nil {
		return nil, err
	}
	return &passwordResetResponse{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
	}, nil
}
