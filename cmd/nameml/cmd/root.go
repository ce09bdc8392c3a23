// Package cmd implements the nameml command line.
package cmd

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/nameml/config"
	"github.com/YuminosukeSato/nameml/pkg/log"
	"github.com/YuminosukeSato/nameml/predictor"
)

// app carries state shared by the subcommands once the root has loaded
// the configuration.
type app struct {
	envFile string
	cfg     *config.Config
	logger  log.Logger
}

func (a *app) load() error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	if err := log.SetupLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = log.GetLoggerWithName("cli")
	a.logger.Debug("Configuration loaded",
		log.RandomSeedKey, cfg.Seed,
		log.ScalingKey, string(cfg.InferenceScaling),
		log.MetricsModeKey, string(cfg.MetricsMode),
	)
	return nil
}

func (a *app) service() *predictor.Service {
	opts := append(a.cfg.ServiceOptions(), predictor.WithLogger(log.GetLoggerWithName("predictor")))
	return predictor.New(opts...)
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "nameml",
		Short:         "Predict first names from demographic attributes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	cmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	cmd.AddCommand(
		newServeCmd(a),
		newTrainCmd(a),
		newPredictCmd(a),
		newStatsCmd(a),
	)
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
