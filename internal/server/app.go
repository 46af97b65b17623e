// Package server initializes and runs the tokenkeeper application server.
// It opens the database, runs migrations, wires the auth service, and starts
// the HTTP endpoint with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/osenouci/tokenkeeper/internal/logging"
	"github.com/osenouci/tokenkeeper/internal/server/config"
	"github.com/osenouci/tokenkeeper/internal/server/httpapi"
	"github.com/osenouci/tokenkeeper/internal/server/repositories/repomanager"
	"github.com/osenouci/tokenkeeper/internal/server/services"
	"github.com/osenouci/tokenkeeper/internal/server/social"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	google := social.NewGoogleFetcher()
	google.BaseURL = cfg.GoogleTokenInfoURL
	facebook := social.NewFacebookFetcher()
	facebook.BaseURL = cfg.FacebookGraphURL

	auth := services.NewAuthService(db, rm, cfg, google, facebook, logger)
	srv := httpapi.NewServer(cfg, auth, logger)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
