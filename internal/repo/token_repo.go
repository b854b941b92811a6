package repo

import (
	"context"
	"time"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/recipebook/internal/domain"
	"github.com/rise-and-shine/recipebook/pkg/pg"
	"github.com/uptrace/bun"
)

// TokenRepo persists password reset tokens.
type TokenRepo struct {
	db bun.IDB
}

// NewTokenRepo creates a password reset token repository.
func NewTokenRepo(db bun.IDB) *TokenRepo {
	return &TokenRepo{db: db}
}

// Create inserts a new reset token.
func (r *TokenRepo) Create(ctx context.Context, token *domain.PasswordResetToken) error {
	token.CreatedAt = time.Now()

	_, err := r.db.NewInsert().Model(token).Exec(ctx)
	return errx.Wrap(err)
}

// Get fetches a reset token by its value.
func (r *TokenRepo) Get(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	t := new(domain.PasswordResetToken)

	err := r.db.NewSelect().Model(t).Where("token = ?", token).Scan(ctx)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, errx.New(
				"reset token not found",
				errx.WithCode(CodeResetTokenNotFound),
				errx.WithType(errx.T_NotFound),
			)
		}
		return nil, errx.Wrap(err)
	}
	return t, nil
}

// MarkUsed flags a token as redeemed so it cannot be reused.
func (r *TokenRepo) MarkUsed(ctx context.Context, token string) error {
	res, err := r.db.NewUpdate().
		Model((*domain.PasswordResetToken)(nil)).
		Set("used = TRUE").
		Where("token = ?", token).
		Exec(ctx)
	if err != nil {
		return errx.Wrap(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errx.Wrap(err)
	}
	if affected == 0 {
		return errx.New(
			"reset token not found",
			errx.WithCode(CodeResetTokenNotFound),
			errx.WithType(errx.T_NotFound),
		)
	}
	return nil
}

// DeleteStale removes tokens that are expired or already used.
// Returns the number of rows removed.
func (r *TokenRepo) DeleteStale(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*domain.PasswordResetToken)(nil)).
		Where("expires_at < ? OR used", now).
		Exec(ctx)
	if err != nil {
		return 0, errx.Wrap(err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, errx.Wrap(err)
	}
	return deleted, nil
}
