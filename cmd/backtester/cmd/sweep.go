package cmd

import (
	"github.com/spf13/cobra"
)

var sweepRuns int

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a randomized J/K/ratio parameter sweep",
	Long: `Draw runs parameter sets uniformly from the configured search space and
simulate them in parallel against the same price table.

The sweep prints the bankruptcy rate and average final cash, and writes a
summary plus averaged cash and position tallies when output.write_files is set.

Example:
  backtester sweep -c sweep.yaml --runs 5000 --metrics-addr :9090`,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	sweepCmd.Flags().IntVarP(&sweepRuns, "runs", "n", 0, "number of runs (overrides sweep.runs)")
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if sweepRuns > 0 {
		cfg.Sweep.Runs = sweepRuns
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
	report, err := eng.Run(ctx)
	if err != nil {
		return err
	}
	for runID, runErr := range report.Errors() {
		log.WithField("run_id", runID).WithError(runErr).Warn("run failed")
	}
	return nil
}
