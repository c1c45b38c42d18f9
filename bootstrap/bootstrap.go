// Package bootstrap wires all dependencies and starts the application.
// Configuration comes from a YAML file (optionally hot-reloaded) with
// HOMEKEEP_* environment overrides.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/artpar/homekeep/adapters/clock"
	apihttp "github.com/artpar/homekeep/adapters/http"
	"github.com/artpar/homekeep/adapters/idgen"
	"github.com/artpar/homekeep/adapters/metrics"
	"github.com/artpar/homekeep/adapters/sqlite"
	"github.com/artpar/homekeep/app"
	"github.com/artpar/homekeep/config"
	"github.com/artpar/homekeep/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Config
	DB         *sqlite.DB
	HTTPServer *http.Server
	Metrics    *metrics.Collector
	Accounts   *app.AccountService

	holder  *config.Holder
	version string
}

// Options customizes application initialization.
type Options struct {
	// Version is reported by /version.
	Version string

	// Holder, when set, supplies the configuration and has its reloads
	// applied to the running services.
	Holder *config.Holder

	// Registerer receives the Prometheus metrics.
	// Defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer

	// LogOutput defaults to os.Stdout. CLI commands log to stderr so their
	// own output stays clean.
	LogOutput io.Writer
}

// New creates the application, HTTP server included.
func New(cfg *config.Config, opts Options) (*App, error) {
	a, err := NewCore(cfg, opts)
	if err != nil {
		return nil, err
	}
	a.initHTTPServer()
	return a, nil
}

// NewWithHolder creates the application from a config holder. Billing
// settings and the log level follow the holder's reloads.
func NewWithHolder(holder *config.Holder, opts Options) (*App, error) {
	opts.Holder = holder
	return New(holder.Get(), opts)
}

// NewWithHotReload loads path, watches it and SIGHUP for changes, and creates
// the application from the resulting holder.
func NewWithHotReload(path string, opts Options) (*App, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	holder, err := config.NewHolder(path, setupLogger(cfg.Logging, opts.LogOutput))
	if err != nil {
		return nil, err
	}

	a, err := NewWithHolder(holder, opts)
	if err != nil {
		return nil, err
	}

	if err := holder.WatchFile(); err != nil {
		a.Logger.Warn().Err(err).Msg("config file watch disabled")
	}
	holder.WatchSignals()
	return a, nil
}

// NewCore initializes logging, storage, metrics and the account service
// without an HTTP server.
func NewCore(cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil && opts.Holder != nil {
		cfg = opts.Holder.Get()
	}
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: no configuration")
	}

	logger := setupLogger(cfg.Logging, opts.LogOutput)
	logger.Info().Msg("initializing homekeep")

	a := &App{
		Logger:  logger,
		Config:  cfg,
		holder:  opts.Holder,
		version: opts.Version,
	}

	if err := a.initDatabase(); err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	if cfg.Metrics.Enabled {
		reg := opts.Registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		a.Metrics = metrics.NewWithRegistry(reg)
		logger.Info().Str("path", cfg.Metrics.Path).Msg("prometheus metrics enabled")
	}

	if err := a.initAccounts(); err != nil {
		a.DB.Close()
		return nil, fmt.Errorf("init accounts: %w", err)
	}

	if a.holder != nil {
		a.watchConfig()
	}

	return a, nil
}

func (a *App) initDatabase() error {
	db, err := sqlite.Open(a.Config.Database.DSN)
	if err != nil {
		return err
	}

	applied, err := db.MigrateContext(context.Background())
	if err != nil {
		db.Close()
		return fmt.Errorf("migrate: %w", err)
	}
	for _, v := range applied {
		a.Logger.Info().Str("version", v).Msg("applied migration")
	}

	a.DB = db
	a.Logger.Info().Str("dsn", a.Config.Database.DSN).Msg("database initialized")
	return nil
}

func (a *App) initAccounts() error {
	billingCfg, err := BillingConfig(a.Config.Billing)
	if err != nil {
		return err
	}

	var recorder ports.BillingRecorder
	if a.Metrics != nil {
		recorder = a.Metrics
		a.Metrics.PlatformFee.Set(billingCfg.PlatformFee.InexactFloat64())
	}

	a.Accounts = app.NewAccountService(app.AccountDeps{
		Subscriptions: sqlite.NewSubscriptionStore(a.DB),
		Clock:         clock.Real{Location: billingCfg.Location},
		IDGen:         idgen.UUID{Prefix: idgen.SubscriptionPrefix},
		Recorder:      recorder,
		Logger:        a.Logger,
	}, billingCfg)

	a.Logger.Info().
		Str("platform_fee", billingCfg.PlatformFee.StringFixed(2)).
		Str("currency", billingCfg.Currency).
		Str("timezone", billingCfg.Location.String()).
		Int("trial_days", billingCfg.TrialDays).
		Msg("billing configured")
	return nil
}

func (a *App) initHTTPServer() {
	cfg := a.Config

	router := apihttp.NewRouter(
		apihttp.NewAccountHandler(a.Accounts, a.Logger),
		apihttp.NewHealthHandler(a.DB),
		a.Logger,
		apihttp.RouterConfig{
			Metrics:       a.Metrics,
			MetricsPath:   cfg.Metrics.Path,
			EnableOpenAPI: cfg.OpenAPI.Enabled,
			CORSOrigins:   cfg.Server.CORSOrigins,
			Version:       a.version,
		},
	)

	a.HTTPServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}

// watchConfig applies reloaded billing settings and log level.
func (a *App) watchConfig() {
	if a.Metrics != nil {
		a.holder.ObserveReloads(a.Metrics.RecordReload)
	}
	a.holder.OnChange(a.applyConfig)
}

func (a *App) applyConfig(cfg *config.Config) {
	billingCfg, err := BillingConfig(cfg.Billing)
	if err != nil {
		a.Logger.Error().Err(err).Msg("ignoring invalid billing config")
		return
	}
	a.Accounts.UpdateConfig(billingCfg)
	if a.Metrics != nil {
		a.Metrics.PlatformFee.Set(billingCfg.PlatformFee.InexactFloat64())
	}

	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	a.Logger.Info().
		Str("platform_fee", billingCfg.PlatformFee.StringFixed(2)).
		Str("currency", billingCfg.Currency).
		Msg("billing config applied")
}

// BillingConfig converts file configuration into service configuration.
func BillingConfig(c config.BillingConfig) (app.BillingConfig, error) {
	fee, err := c.Fee()
	if err != nil {
		return app.BillingConfig{}, err
	}
	loc, err := c.Location()
	if err != nil {
		return app.BillingConfig{}, err
	}
	return app.BillingConfig{
		PlatformFee: fee,
		Currency:    c.Currency,
		Location:    loc,
		TrialDays:   c.TrialDays,
	}, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run() error {
	if a.HTTPServer == nil {
		return fmt.Errorf("run: http server not initialized")
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		a.Shutdown()
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.holder != nil {
		a.holder.Stop()
	}

	// Shutdown HTTP server
	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	// Close database
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

func setupLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(out).With().Timestamp().Logger()
}
