package cmd

import (
	"fmt"

	"momentum/internal/engine"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	runJ     int
	runK     int
	runRatio string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single J/K/ratio simulation",
	Long: `Simulate one momentum strategy with fixed parameters and print its report.

Example:
  backtester run --j 6 --k 3 --ratio 0.5`,
	RunE: runSingle,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().IntVar(&runJ, "j", 0, "formation period in months (required)")
	runCmd.Flags().IntVar(&runK, "k", 0, "holding period in months (required)")
	runCmd.Flags().StringVar(&runRatio, "ratio", "0.5", "fraction of cash committed on each formation")
	runCmd.MarkFlagRequired("j")
	runCmd.MarkFlagRequired("k")
}

func runSingle(cmd *cobra.Command, args []string) error {
	ratio, err := decimal.NewFromString(runRatio)
	if err != nil {
		return fmt.Errorf("parse ratio %q: %w", runRatio, err)
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	stop := startMetrics(log)
	defer stop()

	eng, db, err := newEngine(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	eng.SetOutput(cmd.OutOrStdout())
	params := engine.RunParams{J: runJ, K: runK, Ratio: ratio, StartingCash: cfg.Sweep.StartingCash}
	result, _, err := eng.RunOnce(ctx, params)
	if err != nil {
		return err
	}
	if result.Bankrupt() {
		log.WithField("bankrupt_at", result.BankruptAt).Warn("run went bankrupt")
	}
	return nil
}
