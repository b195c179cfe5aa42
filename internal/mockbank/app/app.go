// Package app assembles the mock bank: config, database, services, HTTP.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ledgerlane/comdirect/internal/mockbank/domain"
	httpapi "github.com/ledgerlane/comdirect/internal/mockbank/http"
	"github.com/ledgerlane/comdirect/internal/mockbank/service"
	"github.com/ledgerlane/comdirect/internal/mockbank/store"
	"github.com/ledgerlane/comdirect/internal/mockbank/store/drivers/sqlite"
	"github.com/ledgerlane/comdirect/pkg/cryptox"
	"github.com/ledgerlane/comdirect/pkg/jwtx"
	"github.com/ledgerlane/comdirect/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the mock bank with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	signer *jwtx.HS256

	tokenService     *service.TokenService
	sessionService   *service.SessionService
	challengeService *service.ChallengeService
	bankingService   *service.BankingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "mockbank",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	secret := cfg.JWTSecret
	if secret == "" {
		// Ephemeral secret: fine for a mock, restarts invalidate tokens.
		secret = cryptox.MustGenerateToken(cryptox.TokenSize256)
	}
	signer, err := jwtx.NewHS256([]byte(secret), cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("initializing token signer: %w", err)
	}
	app.signer = signer

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.seedAccounts(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("seeding accounts: %w", err)
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the HTTP surface for in-process tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("mock bank starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully stops the HTTP server and closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down mock bank...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("mock bank stopped")
	return nil
}

// initDatabase opens the sqlite store and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() error {
	passwordHash, err := cryptox.HashPassword(app.cfg.Password)
	if err != nil {
		return fmt.Errorf("hashing configured password: %w", err)
	}

	app.tokenService = &service.TokenService{
		Store:        app.db,
		Signer:       app.signer,
		Issuer:       app.cfg.Issuer,
		AccessTTL:    app.cfg.AccessTTL,
		RefreshTTL:   app.cfg.RefreshTTL,
		ClientID:     app.cfg.ClientID,
		ClientSecret: app.cfg.ClientSecret,
		Username:     app.cfg.Username,
		PasswordHash: passwordHash,
	}
	app.sessionService = &service.SessionService{Store: app.db}
	app.challengeService = &service.ChallengeService{
		Store:        app.db,
		Kind:         app.cfg.TANKind,
		ApproveDelay: app.cfg.TANApproveDelay,
		TTL:          app.cfg.ChallengeTTL,
		TANSecret:    app.cfg.TANSecret,
	}
	app.bankingService = &service.BankingService{Store: app.db}

	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.signer, app.logger)
	router.TokenService = app.tokenService
	router.SessionService = app.sessionService
	router.ChallengeService = app.challengeService
	router.BankingService = app.bankingService
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// seedAccounts loads demo fixtures on first start so the banking
// endpoints have something to serve.
func (app *Application) seedAccounts(ctx context.Context) error {
	empty, err := app.db.Accounts().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	return app.db.WithTx(ctx, func(tx store.Tx) error {
		accounts := []domain.Account{
			{
				ID:             "DE000000001",
				HolderName:     "Test User",
				BalanceValue:   "2543.77",
				BalanceUnit:    "EUR",
				AvailableValue: "2443.77",
			},
			{
				ID:             "DE000000002",
				HolderName:     "Test User",
				BalanceValue:   "15000.00",
				BalanceUnit:    "EUR",
				AvailableValue: "15000.00",
			},
		}
		for _, a := range accounts {
			if err := tx.Accounts().CreateAccount(ctx, a); err != nil {
				return err
			}
		}

		txns := []domain.Transaction{
			{
				ID:              "t-0001",
				AccountID:       "DE000000001",
				Reference:       "REF-2026-0001",
				BookingStatus:   "BOOKED",
				BookingDate:     "2026-08-20",
				AmountValue:     "-42.17",
				AmountUnit:      "EUR",
				Creditor:        "Stadtwerke",
				TransactionType: "DIRECT_DEBIT",
				RemittanceInfo:  "Abschlag Strom August",
			},
			{
				ID:              "t-0002",
				AccountID:       "DE000000001",
				Reference:       "REF-2026-0002",
				BookingStatus:   "BOOKED",
				BookingDate:     "2026-08-18",
				AmountValue:     "1850.00",
				AmountUnit:      "EUR",
				Remitter:        "ACME GmbH",
				TransactionType: "TRANSFER",
				RemittanceInfo:  "Gehalt",
			},
			{
				ID:              "t-0003",
				AccountID:       "DE000000001",
				Reference:       "REF-2026-0003",
				BookingStatus:   "NOTBOOKED",
				BookingDate:     "2026-08-23",
				AmountValue:     "-12.99",
				AmountUnit:      "EUR",
				Creditor:        "Streamflix",
				TransactionType: "DIRECT_DEBIT",
				RemittanceInfo:  "Monatsabo",
			},
		}
		for _, t := range txns {
			if err := tx.Accounts().CreateTransaction(ctx, t); err != nil {
				return err
			}
		}
		return nil
	})
}
