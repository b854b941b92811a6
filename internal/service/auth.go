package service

import (
	"context"
	"time"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/recipebook/internal/domain"
	"github.com/rise-and-shine/recipebook/internal/repo"
	"github.com/rise-and-shine/recipebook/pkg/hasher"
	"github.com/rise-and-shine/recipebook/pkg/logger"
	"github.com/rise-and-shine/recipebook/pkg/token"
	"github.com/uptrace/bun"
)

// RoleClaim is the custom JWT claim carrying the user's role.
const RoleClaim = "role"

// AuthConfig holds the authentication settings.
type AuthConfig struct {
	// JWTSecret signs access tokens. At least 16 characters.
	JWTSecret string `yaml:"jwt_secret" validate:"required,min=16" mask:"true"`

	// AccessTokenTTL is the lifetime of issued access tokens. Default 24h.
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" default:"24h"`
}

// AuthService handles registration, login and password resets.
type AuthService struct {
	cfg    AuthConfig
	users  *repo.UserRepo
	tokens *repo.TokenRepo
	jwt    *token.JWTMaker
	log    logger.Logger
}

// NewAuthService creates the authentication service.
func NewAuthService(db *bun.DB, cfg AuthConfig, log logger.Logger) (*AuthService, error) {
	jwtMaker, err := token.NewJWTMaker(cfg.JWTSecret)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &AuthService{
		cfg:    cfg,
		users:  repo.NewUserRepo(db),
		tokens: repo.NewTokenRepo(db),
		jwt:    jwtMaker,
		log:    log.Named("service.auth"),
	}, nil
}

// RegisterInput carries a new account request.
type RegisterInput struct {
	Login    string `json:"login"    validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Email    string `json:"email"    validate:"required,email"`
}

// Register creates a new user account with the USER role.
func (s *AuthService) Register(ctx context.Context, in *RegisterInput) (*domain.User, error) {
	hash, err := hasher.Hash(in.Password)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	user, err := s.users.Create(ctx, &domain.User{
		Login:        in.Login,
		PasswordHash: hash,
		Email:        in.Email,
		Role:         domain.RoleUser,
	})
	return user, errx.Wrap(err)
}

// LoginInput carries credentials.
type LoginInput struct {
	Login    string `json:"login"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginOutput carries the issued access token.
type LoginOutput struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *domain.User `json:"user"`
}

// Login verifies credentials and issues a JWT carrying the user's role.
// Wrong login and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, in *LoginInput) (*LoginOutput, error) {
	user, err := s.users.GetByLogin(ctx, in.Login)
	if err != nil {
		if errx.IsCodeIn(err, repo.CodeUserNotFound) {
			return nil, invalidCredentials()
		}
		return nil, errx.Wrap(err)
	}

	if !hasher.Compare(in.Password, user.PasswordHash) {
		return nil, invalidCredentials()
	}

	accessToken, payload, err := s.jwt.CreateToken(user.Login, s.cfg.AccessTokenTTL, map[string]any{
		RoleClaim: string(user.Role),
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &LoginOutput{
		AccessToken: accessToken,
		ExpiresAt:   payload.ExpiresAt.Time,
		User:        user,
	}, nil
}

// VerifyAccessToken validates a JWT and returns the actor it identifies.
func (s *AuthService) VerifyAccessToken(accessToken string) (domain.Actor, error) {
	payload, err := s.jwt.VerifyToken(accessToken)
	if err != nil {
		return domain.Actor{}, errx.Wrap(err)
	}

	role := domain.RoleUser
	if r, ok := payload.CustomClaims[RoleClaim].(string); ok && r != "" {
		role = domain.Role(r)
	}

	return domain.Actor{Login: payload.Subject, Role: role}, nil
}

// RequestPasswordReset issues a single-use opaque token valid for one hour.
// The token would normally reach the user by email; delivery is out of
// scope, so it is returned to the caller.
func (s *AuthService) RequestPasswordReset(ctx context.Context, login string) (*domain.PasswordResetToken, error) {
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	resetToken := &domain.PasswordResetToken{
		Token:     token.NewOpaqueToken(),
		Login:     user.Login,
		ExpiresAt: time.Now().Add(domain.ResetTokenTTL),
	}

	if err := s.tokens.Create(ctx, resetToken); err != nil {
		return nil, errx.Wrap(err)
	}
	return resetToken, nil
}

// ConfirmPasswordResetInput redeems a reset token.
type ConfirmPasswordResetInput struct {
	Token       string `json:"token"        validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// ConfirmPasswordReset validates the token and sets the new password.
// Expired and already-used tokens are rejected the same way.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, in *ConfirmPasswordResetInput) error {
	resetToken, err := s.tokens.Get(ctx, in.Token)
	if err != nil {
		if errx.IsCodeIn(err, repo.CodeResetTokenNotFound) {
			return invalidResetToken()
		}
		return errx.Wrap(err)
	}

	if !resetToken.Usable(time.Now()) {
		return invalidResetToken()
	}

	hash, err := hasher.Hash(in.NewPassword)
	if err != nil {
		return errx.Wrap(err)
	}

	if err := s.users.UpdatePassword(ctx, resetToken.Login, hash, resetToken.Login); err != nil {
		return errx.Wrap(err)
	}

	return errx.Wrap(s.tokens.MarkUsed(ctx, in.Token))
}

func invalidCredentials() error {
	return errx.New(
		"invalid login or password",
		errx.WithCode(CodeInvalidCredentials),
		errx.WithType(errx.T_Authentication),
	)
}

func invalidResetToken() error {
	return errx.New(
		"reset token is invalid, expired or already used",
		errx.WithCode(CodeInvalidResetToken),
		errx.WithType(errx.T_Validation),
	)
}
