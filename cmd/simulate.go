package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gridwarden/app"
	"github.com/kilianp07/gridwarden/core/model"
	"github.com/kilianp07/gridwarden/pkg/export"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate one day of transformer aging under a charging policy",
	RunE:  runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
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
	run, err := svc.Simulate(sc)
	if err != nil {
		return err
	}
	if err := writeReport(cmd, cfg, export.Report{Runs: []model.SimulationRun{run}}); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	finish(ctx, cfg)
	return nil
}
