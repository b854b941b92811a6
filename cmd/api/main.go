package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rise-and-shine/recipebook/internal/httpapi"
	"github.com/rise-and-shine/recipebook/internal/jobs"
	"github.com/rise-and-shine/recipebook/internal/repo"
	"github.com/rise-and-shine/recipebook/internal/service"
	"github.com/rise-and-shine/recipebook/internal/upload"
	"github.com/rise-and-shine/recipebook/pkg/cfgloader"
	"github.com/rise-and-shine/recipebook/pkg/http/server"
	"github.com/rise-and-shine/recipebook/pkg/http/server/middleware"
	"github.com/rise-and-shine/recipebook/pkg/logger"
	"github.com/rise-and-shine/recipebook/pkg/meta"
	"github.com/rise-and-shine/recipebook/pkg/pg"
	"github.com/uptrace/bun"
)

const (
	dbPingAttempts = 10
	dbPingDelay    = time.Second
)

func main() {
	cfg := cfgloader.MustLoad[Config]()

	logger.SetGlobal(cfg.Logger)
	log := logger.Named(cfg.ServiceName)
	defer func() { _ = log.Sync() }()

	meta.SetLanguageMap(languageMap, defaultLanguage)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := pg.NewBunDB(cfg.PG)
	if err != nil {
		log.Fatalx(err)
	}
	defer db.Close()

	if err = waitForDB(ctx, db, log); err != nil {
		log.Fatalx(err)
	}
	if err = repo.Migrate(ctx, db); err != nil {
		log.Fatalx(err)
	}

	files, err := newFileStore(cfg.FileStore)
	if err != nil {
		log.Fatalx(err)
	}

	auth, err := service.NewAuthService(db, cfg.Auth, log)
	if err != nil {
		log.Fatalx(err)
	}

	api := httpapi.New(
		auth,
		service.NewProductService(db),
		service.NewRecipeService(db, files, log),
		service.NewImageService(db, upload.NewValidator(cfg.Upload), files, cfg.Image, log),
	)

	srv := server.NewHTTPServer(cfg.Server, []server.Middleware{
		middleware.NewRecoveryMW(log),
		middleware.NewTimeoutMW(cfg.Server.HandleTimeout),
		middleware.NewMetaInjectMW(cfg.ServiceName, cfg.ServiceVersion),
		middleware.NewLoggerMW(log),
		middleware.NewErrorHandlerMW(cfg.Server.HideErrorDetails),
	})
	srv.RegisterRouter(api.Register)

	runner := jobs.NewRunner(log, jobs.NewTokenSweep(db, log))
	go func() {
		if runErr := runner.Start(ctx); runErr != nil {
			log.Errorx(runErr)
		}
	}()

	srvErrCh := make(chan error, 1)
	go func() {
		log.With("addr", cfg.Server.Address()).Info("http server starting")
		srvErrCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case srvErr := <-srvErrCh:
		if srvErr != nil {
			log.Errorx(srvErr)
		}
	}

	if stopErr := srv.Stop(); stopErr != nil {
		log.Errorx(stopErr)
	}
	if stopErr := runner.Stop(); stopErr != nil {
		log.Errorx(stopErr)
	}

	log.Info("shutdown complete")
}

// waitForDB pings the database until it answers, so the service survives a
// slower-starting database container.
func waitForDB(ctx context.Context, db *bun.DB, log logger.Logger) error {
	return retry.Do(
		func() error { return db.PingContext(ctx) },
		retry.Context(ctx),
		retry.Attempts(dbPingAttempts),
		retry.Delay(dbPingDelay),
		retry.DelayType(retry.FixedDelay),
		retry.OnRetry(func(n uint, err error) {
			log.With("attempt", n+1, "error", err.Error()).Warn("database not ready, retrying")
		}),
	)
}
