package main

import (
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var batchHost string

var batchCmd = &cobra.Command{
	Use:   "batch <abundance.tsv>...",
	Short: "Predict symbiont functions for several abundance tables",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPredictEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		zap.L().Info("processing batch",
			zap.Int("inputs", len(args)),
			zap.Int("concurrency", cfg.Batch.MaxConcurrentInputs),
		)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Batch.MaxConcurrentInputs)

		var succeeded, failed atomic.Int64

		for _, input := range args {
			g.Go(func() error {
				log := zap.L().With(zap.String("input", input))

				result, funcPath, err := env.predictFile(gctx, input, batchHost, "")
				if err != nil {
					failed.Add(1)
					log.Error("prediction failed", zap.Error(err))
					return nil // don't abort batch on individual failure
				}

				succeeded.Add(1)
				log.Info("prediction complete",
					zap.Int("functions", result.Stats.Functions),
					zap.String("output", funcPath),
				)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "batch processing")
		}

		zap.L().Info("batch complete",
			zap.Int64("succeeded", succeeded.Load()),
			zap.Int64("failed", failed.Load()),
		)
		if failed.Load() > 0 {
			return eris.Errorf("batch: %d of %d inputs failed", failed.Load(), len(args))
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchHost, "host", "", "host insect species applied to every input")
	rootCmd.AddCommand(batchCmd)
}
