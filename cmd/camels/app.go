package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/camels-de1h/internal/config"
	"github.com/couchcryptid/camels-de1h/internal/layout"
	"github.com/couchcryptid/camels-de1h/internal/mapping"
	"github.com/couchcryptid/camels-de1h/internal/observability"
	"github.com/couchcryptid/camels-de1h/internal/station"
)

// app holds the services every subcommand works with.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *observability.Metrics
	layout   layout.Layout
	maps     *mapping.Service
	stations *station.Manager
}

type rootFlags struct {
	inputDir  string
	outputDir string
	logLevel  string
}

func newRootCmd(newMetrics func() *observability.Metrics) *cobra.Command {
	var flags rootFlags
	a := &app{}

	root := &cobra.Command{
		Use:          "camels",
		Short:        "Curate the hourly CAMELS-DE station dataset",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd, flags, newMetrics)
		},
	}
	root.PersistentFlags().StringVar(&flags.inputDir, "input-dir", "", "raw provider data directory (overrides INPUT_DIR)")
	root.PersistentFlags().StringVar(&flags.outputDir, "output-dir", "", "dataset directory (overrides OUTPUT_DIR)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")

	root.AddCommand(
		newResolveCmd(a),
		newRegisterCmd(a),
		newMappingCmd(a),
		newImportCmd(a),
		newMetadataCmd(a),
		newChartCmd(a),
		newAuditCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command, flags rootFlags, newMetrics func() *observability.Metrics) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("input-dir") {
		cfg.InputDir = flags.inputDir
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = flags.outputDir
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}

	a.cfg = cfg
	a.logger = observability.NewLogger(cfg)
	a.metrics = newMetrics()
	a.layout = layout.New(cfg.InputDir, cfg.OutputDir)

	a.maps, err = mapping.Open(a.layout, a.logger, a.metrics)
	if err != nil {
		return err
	}
	a.stations = station.NewManager(a.layout, a.maps, a.logger, a.metrics)
	return nil
}
