// Package server initializes and runs the versioned storage server: it
// wires configuration, the Postgres-backed Record Store, the Authorizer,
// the Versioning Engine, and the HTTP transport, then runs until signaled
// to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vss-go/server/internal/logging"
	"github.com/vss-go/server/internal/server/auth"
	"github.com/vss-go/server/internal/server/config"
	"github.com/vss-go/server/internal/server/engine"
	"github.com/vss-go/server/internal/server/httpapi"
	"github.com/vss-go/server/internal/server/store"
)

// App holds every long-lived collaborator the running server needs.
type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	http   *httpapi.Server
}

// NewApp wires the application from cfg: opens the database pool, runs
// migrations, builds the Record Store, the Authorizer, the Engine, and
// the HTTP transport on top of it.
func NewApp(c *config.Config) (*App, error) {
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogLogger)

	db, err := sql.Open("pgx", poolDSN(c))
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	db.SetMaxOpenConns(c.MaxPoolSize)
	db.SetMaxIdleConns(c.MinimumIdle)
	db.SetConnMaxIdleTime(c.IdleTimeout)
	db.SetConnMaxLifetime(c.MaxLifetime)

	if err := store.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	records := store.NewPostgresStore(db)
	eng := engine.NewWithPageSizeCap(records, c.ListPageSizeCap)

	authorizer, err := buildAuthorizer(c)
	if err != nil {
		return nil, fmt.Errorf("authorizer init error: %w", err)
	}

	httpServer := httpapi.NewServer(c.HTTPAddr, eng, authorizer, logger)

	return &App{config: c, logger: logger, db: db, http: httpServer}, nil
}

// poolDSN appends the pool knobs pgx only accepts as connection-string
// parameters: connect_timeout (whole seconds) and statement_cache_capacity.
// A knob the operator already spelled out in the DSN is left untouched.
func poolDSN(c *config.Config) string {
	dsn := c.DatabaseDSN

	params := make([]string, 0, 2)
	if c.ConnectionTimeout > 0 && !strings.Contains(dsn, "connect_timeout") {
		secs := int64(c.ConnectionTimeout / time.Second)
		if secs < 1 {
			secs = 1
		}
		params = append(params, fmt.Sprintf("connect_timeout=%d", secs))
	}
	if c.StatementCacheSize > 0 && !strings.Contains(dsn, "statement_cache_capacity") {
		params = append(params, fmt.Sprintf("statement_cache_capacity=%d", c.StatementCacheSize))
	}
	if len(params) == 0 {
		return dsn
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + strings.Join(params, "&")
	}
	// Keyword/value form: "host=... dbname=..."
	return dsn + " " + strings.Join(params, " ")
}

// buildAuthorizer selects the JWT or null Authorizer per config; the null
// variant is the trusted-deployment escape hatch from real bearer-token
// verification.
func buildAuthorizer(c *config.Config) (auth.Authorizer, error) {
	if c.UseNullAuthorizer {
		return auth.NewNullAuthorizer(c.NullAuthorizerUserToken), nil
	}
	pemBytes, err := os.ReadFile(c.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading JWT public key: %w", err)
	}
	return auth.NewJwtAuthorizer(pemBytes)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run starts the HTTP server and blocks until an OS signal requests
// shutdown or the server fails to start.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
	}

	_ = app.db.Close()
}
