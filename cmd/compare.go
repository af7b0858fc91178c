package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gridwarden/app"
	"github.com/kilianp07/gridwarden/infra/logger"
	"github.com/kilianp07/gridwarden/pkg/export"
	"github.com/kilianp07/gridwarden/pkg/plotting"
)

var (
	againstPolicy string
	chartPath     string
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare two charging policies on the same feeder day",
	Long: `Runs the configured policy and the comparison policy on the same base
load, ambient series, fleet and seed, then reports the peak-load reduction.`,
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&againstPolicy, "against", "", "comparison policy (default simulation.compare_policy)")
	compareCmd.Flags().StringVar(&chartPath, "chart", "", "write the mitigation chart PNG to this path")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("against") {
		cfg.Simulation.ComparePolicy = againstPolicy
	}
	if cmd.Flags().Changed("chart") {
		cfg.Report.ChartPath = chartPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer closeService(svc)
	svc.ServeMetrics(ctx)

	sc, err := svc.Scenario()
	if err != nil {
		return fmt.Errorf("scenario: %w", err)
	}
	cmp, err := svc.Compare(ctx, sc)
	if err != nil {
		return err
	}
	if err := writeReport(cmd, cfg, export.FromComparison(cmp)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if cfg.Report.ChartPath != "" {
		opts := plotting.DefaultOptions()
		opts.LimitC = cfg.Report.HotSpotLimitC
		if err := plotting.SaveComparison(cfg.Report.ChartPath, cmp, opts); err != nil {
			return err
		}
		logger.New("main").Infof("mitigation chart written to %s", cfg.Report.ChartPath)
	}
	finish(ctx, cfg)
	return nil
}
