package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/plantplan/internal/optimizer"
	"github.com/Simplici0/plantplan/internal/report"
	"github.com/Simplici0/plantplan/internal/solver"
)

type optimizeOptions struct {
	file     string
	format   string
	out      string
	timeout  time.Duration
	maxNodes int
}

func newOptimizeCmd(a *app) *cobra.Command {
	opts := optimizeOptions{timeout: a.cfg.SolverTimeout, maxNodes: a.cfg.SolverMaxNodes}

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Allocate demand across plants to maximize profit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scenario, err := loadScenario(opts.file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			simplex := solver.NewSimplex()
			if opts.maxNodes > 0 {
				simplex.MaxNodes = opts.maxNodes
			}
			opt := optimizer.New(
				optimizer.WithSolver(simplex),
				optimizer.WithTimeout(opts.timeout),
				optimizer.WithLogger(a.logger),
			)
			res := opt.Optimize(cmd.Context(), scenario.Plants, scenario.Products)
			a.logger.Info("optimization finished", zap.String("status", string(res.Status)))

			switch opts.format {
			case "json":
				return writeJSON(cmd.OutOrStdout(), res)
			case "xlsx":
				if opts.out == "" {
					return report.WriteResult(cmd.OutOrStdout(), scenario.Title, res)
				}
				f, err := os.Create(opts.out)
				if err != nil {
					return fmt.Errorf("create %s: %w", opts.out, err)
				}
				if err := report.WriteResult(f, scenario.Title, res); err != nil {
					f.Close()
					return err
				}
				return f.Close()
			default:
				return fmt.Errorf("unknown output format %q (want json or xlsx)", opts.format)
			}
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "", "scenario file (YAML or JSON, - for stdin)")
	flags.StringVarP(&opts.format, "output", "o", "json", "output format: json or xlsx")
	flags.StringVar(&opts.out, "out", "", "write xlsx output to this file instead of stdout")
	flags.DurationVar(&opts.timeout, "timeout", opts.timeout, "solver time limit (0 disables)")
	flags.IntVar(&opts.maxNodes, "max-nodes", opts.maxNodes, "branch and bound node limit")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
