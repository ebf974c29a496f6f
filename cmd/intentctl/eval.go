package main

import (
	"fmt"
	"sort"

	"intent-engine/internal/model"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	evalCorpus string
	evalFormat string
)

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringVar(&evalCorpus, "corpus", model.CorpusTraining, "Labeled corpus to evaluate: training, fuzzy")
	evalCmd.Flags().StringVar(&evalFormat, "format", "table", "Output format: table, json")
}

// evalCmd represents the eval command
var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Measure classifier accuracy on a labeled dataset",
	Long: `Classify every row of the labeled training dataset (or the fuzzy dataset with
--corpus fuzzy) and report accuracy overall and per pipeline stage.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		classifier, store, zlog, err := newClassifier(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = zlog.Sync() }()

		var rows []model.LabeledRow
		switch evalCorpus {
		case model.CorpusTraining:
			rows = store.Dataset
		case model.CorpusFuzzy:
			rows = store.FuzzyDataset
		default:
			return fmt.Errorf("unknown corpus %q: must be %s or %s", evalCorpus, model.CorpusTraining, model.CorpusFuzzy)
		}

		report, err := classifier.Evaluate(cmd.Context(), rows)
		if err != nil {
			return err
		}
		zlog.Info("Evaluation finished",
			zap.String("corpus", evalCorpus),
			zap.Int("rows", report.Total),
			zap.Float64("accuracy", report.Accuracy),
		)

		switch evalFormat {
		case "json":
			return writeJSON(cmd.OutOrStdout(), report)
		case "table":
			printReport(cmd, report)
			return nil
		default:
			return fmt.Errorf("unknown format %q: must be table or json", evalFormat)
		}
	},
}

func printReport(cmd *cobra.Command, report *model.EvalReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "rows:     %d\n", report.Total)
	fmt.Fprintf(out, "correct:  %d\n", report.Correct)
	fmt.Fprintf(out, "accuracy: %.2f%%\n\n", report.Accuracy*100)

	stages := make([]model.Stage, 0, len(report.ByStage))
	for stage := range report.ByStage {
		stages = append(stages, stage)
	}
	sort.Slice(stages, func(i, j int) bool { return stages[i] < stages[j] })

	fmt.Fprintf(out, "%-18s %8s %8s %9s\n", "STAGE", "ROWS", "CORRECT", "ACCURACY")
	for _, stage := range stages {
		s := report.ByStage[stage]
		accuracy := 0.0
		if s.Total > 0 {
			accuracy = float64(s.Correct) / float64(s.Total) * 100
		}
		fmt.Fprintf(out, "%-18s %8d %8d %8.2f%%\n", stage, s.Total, s.Correct, accuracy)
	}
}
