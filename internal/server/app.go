// Package server initializes and runs the authentication service: it wires
// configuration, storage, sessions, mail, the flow service, and the HTTP
// endpoint, and handles graceful shutdown.
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

	"github.com/redis/go-redis/v9"

	"github.com/quickbyte/quickbyte-auth/internal/logging"
	"github.com/quickbyte/quickbyte-auth/internal/server/config"
	"github.com/quickbyte/quickbyte-auth/internal/server/httpapi"
	"github.com/quickbyte/quickbyte-auth/internal/server/mail"
	"github.com/quickbyte/quickbyte-auth/internal/server/repositories/repomanager"
	"github.com/quickbyte/quickbyte-auth/internal/server/services"
	"github.com/quickbyte/quickbyte-auth/internal/server/sessions"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	authService *services.AuthService
	httpServer  *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, rm, err := OpenDatabase(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	sessionStore := sessions.NewRedisStore(redisClient, cfg.SessionValidityDuration)

	notifier, err := mail.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.EmailFrom)
	if err != nil {
		return nil, fmt.Errorf("notifier init error: %w", err)
	}

	authService := services.NewAuthService(db, rm, sessionStore, notifier, logger, cfg)

	handler := httpapi.NewAuthHandler(authService, logger, int(cfg.SessionValidityDuration.Seconds()))
	router := httpapi.NewRouter(handler)
	httpServer := httpapi.NewServer(cfg.EndpointAddrHTTP, router, logger)

	return &App{config: cfg, logger: logger, authService: authService, httpServer: httpServer}, nil
}

// OpenDatabase opens the pgx connection, builds the repository manager, and
// applies pending migrations. Shared with the createsuperuser command.
func OpenDatabase(dsn string) (*sql.DB, repomanager.RepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()

	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, nil, fmt.Errorf("migration error: %w", err)
	}

	return db, rm, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
