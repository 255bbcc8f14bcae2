package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"momentum/internal/config"
	"momentum/internal/engine"
	"momentum/internal/metrics"
	"momentum/internal/repository"
	"momentum/pkg/logger"
	"momentum/strategies/momentum"
	"momentum/types"

	"github.com/spf13/cobra"
)

var (
	cfgFile     string
	logLevel    string
	logFormat   string
	metricsAddr string
)

var rootCmd = &cobra.Command{
	Use:   "backtester",
	Short: "Cross-sectional momentum backtester",
	Long: `Backtester sweeps J/K momentum strategies over a monthly price table.

Each run ranks securities on their trailing J-month return, buys the top decile,
shorts the bottom decile and settles every position K months later. A sweep
draws many (J, K, ratio) combinations at random and runs them in parallel.

Commands:
  sweep    - Run a randomized parameter sweep
  run      - Run a single J/K/ratio simulation
  config   - Generate or validate configuration files
  version  - Print the version`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON, defaults built in)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override log format (console, json)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
}

// store is the data source behind an engine, closed once the command ends.
type store interface {
	GetMonthlyTable(ctx context.Context, start, end time.Time) (*types.MonthlyTable, error)
	GetCurrencies(ctx context.Context) (types.CurrencyMap, error)
	Close()
}

// loadConfig reads the config file and applies the logging flags.
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	return cfg, logger.New(cfg.Log.Level, cfg.Log.Format, os.Stderr), nil
}

func openStore(ctx context.Context, cfg *config.Config) (store, error) {
	switch cfg.Data.Source {
	case config.SourcePostgres:
		db, err := repository.NewDatabase(ctx, cfg.Data.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		return db, nil
	default:
		return repository.NewFileStore(cfg.Data.PricesFile, cfg.Data.CurrencyFile, cfg.Data.DateLayout), nil
	}
}

func newRanker(j int) engine.Ranker {
	return momentum.NewRanker(j)
}

// newEngine wires the configured store, ranker and settings into an engine.
func newEngine(ctx context.Context, cfg *config.Config, log *logger.Logger) (*engine.Engine, store, error) {
	dataRange, err := cfg.DataRange()
	if err != nil {
		return nil, nil, err
	}
	db, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	eng := engine.NewEngine(
		db,
		newRanker,
		cfg.SweepConfig(),
		cfg.SettlementConfig(),
		cfg.ReportingConfig(),
		log,
	)
	eng.SetDataRange(dataRange)
	return eng, db, nil
}

// startMetrics serves /metrics until the returned stop func is called.
func startMetrics(log *logger.Logger) func() {
	if metricsAddr == "" {
		return func() {}
	}
	srv := metrics.NewServer(metricsAddr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("metrics server stopped")
		}
	}()
	log.WithField("addr", metricsAddr).Info("serving metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
