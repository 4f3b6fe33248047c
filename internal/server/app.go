// Package server wires the application together: configuration, database,
// migrations, mail delivery and the HTTP server, with graceful shutdown on
// OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Ak2k04/Life-Tracker/internal/logging"
	"github.com/Ak2k04/Life-Tracker/internal/server/config"
	"github.com/Ak2k04/Life-Tracker/internal/server/mail"
	"github.com/Ak2k04/Life-Tracker/internal/server/repositories/repomanager"
	"github.com/Ak2k04/Life-Tracker/internal/server/rest"
	"github.com/Ak2k04/Life-Tracker/internal/server/services"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	userService  *services.UserService
	resetService *services.PasswordResetService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	mailer, err := mail.NewSMTPMailer(cfg)
	if err != nil {
		return nil, fmt.Errorf("mailer init error: %w", err)
	}

	us := services.NewUserService(db, rm, cfg)
	rs, err := services.NewPasswordResetService(db, rm, mailer, logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("reset service init error: %w", err)
	}

	return &App{
		config:       cfg,
		logger:       logger,
		db:           db,
		userService:  us,
		resetService: rs,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startRestServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewRestServer(app.config.Address, app.logger, app.userService, app.resetService, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startRestServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
