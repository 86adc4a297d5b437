// internal/commands/evaluate.go
package cogbench

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cogbench/cogbench/internal/evaluation"
)

var evaluateFlags struct {
	resultsDir   string
	dataDir      string
	model        string
	outputFormat string
	metric       string
}

// evaluateCmd scores result files against gold labels and renders the table.
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score experiment results against gold labels",
	RunE: func(cmd *cobra.Command, args []string) error {
		switch evaluateFlags.metric {
		case evaluation.MetricAccuracy, evaluation.MetricF1:
		default:
			return fmt.Errorf("unknown metric %q", evaluateFlags.metric)
		}

		scores, totalMissing, err := evaluation.EvaluateDirectory(
			evaluateFlags.resultsDir,
			evaluateFlags.dataDir,
			evaluateFlags.model,
		)
		if err != nil {
			return err
		}

		if err := evaluation.Render(os.Stdout, scores, evaluateFlags.outputFormat, evaluateFlags.metric); err != nil {
			return err
		}
		evaluation.RenderMissingFooter(os.Stdout, totalMissing)
		return nil
	},
}

func init() {
	evaluateCmd.Flags().StringVar(&evaluateFlags.resultsDir, "results-dir", "", "directory containing results, organized by model")
	evaluateCmd.Flags().StringVar(&evaluateFlags.dataDir, "data-dir", "", "directory containing gold label files")
	evaluateCmd.Flags().StringVar(&evaluateFlags.model, "model", "", "evaluate a single model (default: all models)")
	evaluateCmd.Flags().StringVar(&evaluateFlags.outputFormat, "output-format", evaluation.FormatTable, "output format: table, json, or latex")
	evaluateCmd.Flags().StringVar(&evaluateFlags.metric, "metric", evaluation.MetricAccuracy, "metric to display: accuracy or f1")

	_ = evaluateCmd.MarkFlagRequired("results-dir")
	_ = evaluateCmd.MarkFlagRequired("data-dir")

	rootCmd.AddCommand(evaluateCmd)
}
