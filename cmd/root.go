package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gridwarden/app"
	"github.com/kilianp07/gridwarden/config"
	"github.com/kilianp07/gridwarden/infra/logger"
	"github.com/kilianp07/gridwarden/pkg/export"
)

var (
	cfgPath      string
	forecastPath string
	date         string
	seed         int64
	fleetSize    int
	policy       string
	format       string
	outputPath   string
	logLevel     string
	serveMetrics bool
)

var rootCmd = &cobra.Command{
	Use:           "gridwarden",
	Short:         "Simulate transformer thermal aging under EV charging load",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	pf.StringVar(&forecastPath, "forecast", "", "forecast CSV (timestamp,load_mw,temp_c)")
	pf.StringVar(&date, "date", "", "simulated day, YYYY-MM-DD (default: forecast peak day)")
	pf.Int64Var(&seed, "seed", 0, "random seed of the fleet synthesizer")
	pf.IntVar(&fleetSize, "fleet", 0, "number of electric vehicles")
	pf.StringVar(&policy, "policy", "", "charging policy: uncontrolled, delayed_timer, coordinated_spread")
	pf.StringVar(&format, "format", "", "report format: json or csv")
	pf.StringVarP(&outputPath, "output", "o", "", "report file (default stdout)")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&serveMetrics, "serve", false, "keep serving /metrics after the run until interrupted")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads the configuration and applies the flags set on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("forecast") {
		cfg.Input.ForecastPath = forecastPath
	}
	if flags.Changed("date") {
		cfg.Input.Date = date
	}
	if flags.Changed("seed") {
		cfg.Simulation.Seed = seed
	}
	if flags.Changed("fleet") {
		cfg.Simulation.FleetSize = fleetSize
	}
	if flags.Changed("policy") {
		cfg.Simulation.Policy = policy
	}
	if flags.Changed("format") {
		cfg.Report.Format = format
	}
	if flags.Changed("output") {
		cfg.Report.Output = outputPath
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	return cfg, nil
}

func writeReport(cmd *cobra.Command, cfg *config.Config, r export.Report) error {
	f, err := export.ParseFormat(cfg.Report.Format)
	if err != nil {
		return err
	}
	var w io.Writer = cmd.OutOrStdout()
	if cfg.Report.Output != "" {
		file, err := os.Create(cfg.Report.Output)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer file.Close()
		w = file
	}
	return export.Write(w, f, r)
}

// finish blocks until ctx is done when --serve is set.
func finish(ctx context.Context, cfg *config.Config) {
	if !serveMetrics || cfg.Metrics.PrometheusAddr == "" {
		return
	}
	logger.New("main").Infof("serving metrics on %s, interrupt to exit", cfg.Metrics.PrometheusAddr)
	<-ctx.Done()
}

func closeService(svc *app.Service) {
	if err := svc.Close(); err != nil {
		logger.New("main").Errorf("service close: %v", err)
	}
}
