package repo

import (
	"context"
	"time"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/recipebook/internal/domain"
	"github.com/rise-and-shine/recipebook/pkg/pg"
	"github.com/uptrace/bun"
)

// UserRepo persists user accounts.
type UserRepo struct {
	db bun.IDB
}

// NewUserRepo creates a user repository.
func NewUserRepo(db bun.IDB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a new user. Login uniqueness conflicts map to
// LOGIN_ALREADY_EXISTS.
func (r *UserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	user.CreatedAt = time.Now()

	q := r.db.NewInsert().Model(user).Returning("*")
	if _, err := q.Exec(ctx); err != nil {
		if pg.ConstraintName(err) == constraintUserLogin {
			return nil, errx.New(
				"login is already taken",
				errx.WithCode(CodeLoginAlreadyExists),
				errx.WithType(errx.T_Conflict),
				errx.WithDetails(errx.D{"login": user.Login}),
			)
		}
		return nil, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}
	return user, nil
}

// GetByLogin fetches a user by login.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	user := new(domain.User)

	err := r.db.NewSelect().Model(user).Where("login = ?", login).Scan(ctx)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, errx.New(
				"user not found",
				errx.WithCode(CodeUserNotFound),
				errx.WithType(errx.T_NotFound),
				errx.WithDetails(errx.D{"login": login}),
			)
		}
		return nil, errx.Wrap(err)
	}
	return user, nil
}

// UpdatePassword replaces the stored password hash and stamps who changed it.
func (r *UserRepo) UpdatePassword(ctx context.Context, login, passwordHash, changedBy string) error {
	now := time.Now()

	q := r.db.NewUpdate().
		Model((*domain.User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("password_changed_at = ?", now).
		Set("password_changed_by = ?", changedBy).
		Where("login = ?", login)

	res, err := q.Exec(ctx)
	if err != nil {
		return errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errx.Wrap(err)
	}
	if affected == 0 {
		return errx.New(
			"user not found",
			errx.WithCode(CodeUserNotFound),
			errx.WithType(errx.T_NotFound),
			errx.WithDetails(errx.D{"login": login}),
		)
	}
	return nil
}
