package main

import (
	"fmt"
	"os"
	"strings"

	"custlens/internal"
	"custlens/internal/config"
	"custlens/internal/container"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Persistent flags also read
// CUSTLENS_<FLAG> environment variables (dashes become underscores).
func newRootCmd(v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "custlens-cli",
		Short:         "custlens CLI for generating customer data and dashboard reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.Int("rows", 0, "Number of synthetic rows (default from NUM_ROWS)")
	flags.Int64("seed", 0, "Generator seed; 0 picks one from the clock")
	flags.String("data-file", "", "Import an xlsx/csv dataset instead of synthesizing")
	flags.String("presets", "", "YAML preset file for sweeps")
	flags.Int("workers", 0, "Concurrent sweep computations")
	flags.String("log-level", "", "ERROR, WARN, INFO, DEBUG or TRACE")

	v.SetEnvPrefix("CUSTLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)

	rootCmd.AddCommand(
		newGenerateCmd(v),
		newSummaryCmd(v),
		newSweepCmd(v),
		newExportCmd(v),
	)
	return rootCmd
}

// loadConfig layers flags and CUSTLENS_* variables over the service config.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if v.IsSet("rows") {
		cfg.Data.NumRows = v.GetInt("rows")
	}
	if v.IsSet("seed") {
		cfg.Data.Seed = v.GetInt64("seed")
	}
	if v.IsSet("data-file") {
		cfg.Data.DataFile = v.GetString("data-file")
	}
	if v.IsSet("presets") {
		cfg.Sweep.PresetsFile = v.GetString("presets")
	}
	if v.IsSet("workers") {
		cfg.Sweep.Workers = v.GetInt("workers")
	}
	if v.IsSet("log-level") {
		cfg.LogLevel = v.GetString("log-level")
	} else if os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = "WARN"
	}

	if cfg.Data.NumRows <= 0 {
		return nil, fmt.Errorf("--rows must be positive")
	}
	if cfg.Sweep.Workers <= 0 {
		return nil, fmt.Errorf("--workers must be positive")
	}
	return cfg, nil
}

func newContainer(v *viper.Viper) (*container.Container, error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}
	return container.New(cfg, internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)))
}
