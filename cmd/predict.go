package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/entolab/isympred/internal/tableio"
)

var (
	predictHost  string
	predictOut   string
	predictLimit int
)

var predictCmd = &cobra.Command{
	Use:   "predict <abundance.tsv>",
	Short: "Predict symbiont functions from a 16S abundance table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPredictEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, funcPath, err := env.predictFile(ctx, args[0], predictHost, predictOut)
		if err != nil {
			return err
		}

		zap.L().Info("prediction complete",
			zap.String("input", args[0]),
			zap.Int("matched_rows", result.Stats.MatchedRows),
			zap.Int("unmatched_rows", result.Stats.UnmatchedRows),
			zap.Int("functions", result.Stats.Functions),
			zap.String("output", funcPath),
		)

		limit := predictLimit
		if limit == 0 {
			limit = cfg.Predict.DisplayLimit
		}
		fmt.Fprintln(os.Stdout, tableio.RenderSummaries(result.Summaries, limit))
		return nil
	},
}

func init() {
	predictCmd.Flags().StringVar(&predictHost, "host", "", "host insect species for specificity weighting (e.g. \"Apis mellifera\")")
	predictCmd.Flags().StringVar(&predictOut, "out", "", "output base path (default input name in predict.out_dir)")
	predictCmd.Flags().IntVar(&predictLimit, "limit", 0, "max functions to display (default from config)")
	rootCmd.AddCommand(predictCmd)
}
