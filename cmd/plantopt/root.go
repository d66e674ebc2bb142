package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/plantplan/internal/config"
	"github.com/Simplici0/plantplan/internal/logging"
)

type app struct {
	cfg    config.Config
	logger *zap.Logger

	logLevel string
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Load(), logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:           "plantopt",
		Short:         "Cost curves, capacities and profit-maximizing allocations for production plants",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := logging.New(a.logLevel, a.cfg.IsDev())
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", a.cfg.LogLevel, "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newOptimizeCmd(a),
		newCurveCmd(a),
		newCapacityCmd(a),
		newDemoCmd(),
	)
	return cmd
}
