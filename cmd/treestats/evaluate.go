package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ezoic/docimportance/core/model"
	"github.com/ezoic/docimportance/core/pool"
	diErrors "github.com/ezoic/docimportance/pkg/errors"
	"github.com/ezoic/docimportance/pkg/log"
	"github.com/ezoic/docimportance/report"
	"github.com/ezoic/docimportance/treestats"
)

func newEvaluateCmd() *cobra.Command {
	evaluateCmd := &cobra.Command{
		Use:   "evaluate",
		Short: "replay leaf estimation and write tree statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := log.GetLoggerWithName("cmd.evaluate")
			start := time.Now()

			modelPath, err := cmd.Flags().GetString("model")
			if err != nil {
				return err
			}
			m, err := model.LoadFromFile(modelPath)
			if err != nil {
				return err
			}
			logger.Info("Model loaded",
				log.OperationKey, log.OperationLoad,
				"path", modelPath,
				log.TreesKey, m.TreeCount(),
				log.MethodKey, string(m.Params.LeafEstimationMethod),
				log.LossKey, m.Params.Loss.String(),
			)

			p, err := loadPool(cmd)
			if err != nil {
				return err
			}
			logger.Info("Pool loaded", log.OperationKey, log.OperationLoad, log.DocsKey, p.DocCount())

			opts := []treestats.Option{}
			metricsOut, err := cmd.Flags().GetString("metrics-out")
			if err != nil {
				return err
			}
			registry := prometheus.NewRegistry()
			if metricsOut != "" {
				opts = append(opts, treestats.WithMetrics(treestats.NewMetrics(registry)))
			}

			stats, err := treestats.NewEvaluator(opts...).EvaluateTreeStatistics(ctx, m, p)
			if err != nil {
				return err
			}

			for treeID := range stats {
				if err := stats[treeID].Validate(); err != nil {
					return diErrors.Wrapf(err, "tree %d", treeID)
				}
			}

			if err := writeStats(cmd, stats); err != nil {
				return err
			}

			plotPath, err := cmd.Flags().GetString("plot")
			if err != nil {
				return err
			}
			if plotPath != "" {
				if err := report.PlotLeafValues(stats, plotPath); err != nil {
					return err
				}
				logger.Info("Plot saved", log.OperationKey, log.OperationExport, log.PhaseKey, log.PhaseReport, "path", plotPath)
			}

			if metricsOut != "" {
				if err := prometheus.WriteToTextfile(filepath.Clean(metricsOut), registry); err != nil {
					return diErrors.Wrapf(err, "write metrics %s", metricsOut)
				}
			}

			logger.Info("Done", log.DurationMsKey, time.Since(start).Milliseconds())
			return nil
		},
	}
	evaluateCmd.Flags().String("model", "", "model JSON file")
	evaluateCmd.Flags().String("pool", "", "training pool CSV file")
	evaluateCmd.Flags().Int("target-column", 0, "CSV column holding the target")
	evaluateCmd.Flags().Int("weight-column", -1, "CSV column holding document weights, -1 for none")
	evaluateCmd.Flags().Bool("header", false, "the CSV pool starts with a header row")
	evaluateCmd.Flags().String("features", "", "features .npy file, used instead of --pool")
	evaluateCmd.Flags().String("target", "", "target .npy file, used with --features")
	evaluateCmd.Flags().String("weights", "", "weights .npy file, used with --features")
	evaluateCmd.Flags().String("out", "", "output JSON file, stdout when empty")
	evaluateCmd.Flags().String("plot", "", "save a plot of final leaf values (png, svg or pdf)")
	evaluateCmd.Flags().String("metrics-out", "", "write Prometheus metrics in text format to this file")
	_ = evaluateCmd.MarkFlagRequired("model")
	return evaluateCmd
}

func loadPool(cmd *cobra.Command) (*pool.Pool, error) {
	poolPath, _ := cmd.Flags().GetString("pool")
	featuresPath, _ := cmd.Flags().GetString("features")
	switch {
	case poolPath != "" && featuresPath != "":
		return nil, diErrors.NewValueError("evaluate", "--pool and --features are mutually exclusive")
	case featuresPath != "":
		targetPath, _ := cmd.Flags().GetString("target")
		if targetPath == "" {
			return nil, diErrors.NewValueError("evaluate", "--target is required with --features")
		}
		weightsPath, _ := cmd.Flags().GetString("weights")
		return pool.ReadNpy(featuresPath, targetPath, weightsPath)
	case poolPath != "":
		opts := pool.DefaultCSVOptions()
		var err error
		if opts.TargetColumn, err = cmd.Flags().GetInt("target-column"); err != nil {
			return nil, err
		}
		if opts.WeightColumn, err = cmd.Flags().GetInt("weight-column"); err != nil {
			return nil, err
		}
		if opts.HasHeader, err = cmd.Flags().GetBool("header"); err != nil {
			return nil, err
		}
		return pool.LoadCSVFile(poolPath, opts)
	}
	return nil, diErrors.NewValueError("evaluate", "either --pool or --features is required")
}

func writeStats(cmd *cobra.Command, stats []treestats.TreeStatistics) error {
	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	if out == "" {
		return report.WriteJSON(cmd.OutOrStdout(), stats)
	}

	f, err := os.Create(filepath.Clean(out))
	if err != nil {
		return diErrors.Wrapf(err, "create %s", out)
	}
	if err := report.WriteJSON(f, stats); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
