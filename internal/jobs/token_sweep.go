package jobs

import (
	"context"
	"time"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/recipebook/internal/repo"
	"github.com/rise-and-shine/recipebook/pkg/logger"
	"github.com/uptrace/bun"
)

const tokenSweepInterval = time.Hour

// TokenSweep deletes expired and used password reset tokens.
type TokenSweep struct {
	tokens *repo.TokenRepo
	log    logger.Logger
}

// NewTokenSweep creates the reset token cleanup job.
func NewTokenSweep(db *bun.DB, log logger.Logger) *TokenSweep {
	return &TokenSweep{
		tokens: repo.NewTokenRepo(db),
		log:    log.Named("jobs.token_sweep"),
	}
}

func (j *TokenSweep) Name() string {
	return "password_reset_token_sweep"
}

func (j *TokenSweep) Interval() time.Duration {
	return tokenSweepInterval
}

// Run removes every token that is expired or already used.
func (j *TokenSweep) Run(ctx context.Context) error {
	deleted, err := j.tokens.DeleteStale(ctx, time.Now())
	if err != nil {
		return errx.Wrap(err)
	}

	if deleted > 0 {
		j.log.With("deleted", deleted).Info("removed stale password reset tokens")
	}
	return nil
}
