package main

import (
	"bufio"
	"fmt"
	"strings"

	"intent-engine/internal/model"

	"github.com/spf13/cobra"
)

var predictStdin bool

func init() {
	rootCmd.AddCommand(predictCmd)

	predictCmd.Flags().BoolVar(&predictStdin, "stdin", false, "Classify every non-empty line read from stdin")
}

// predictCmd represents the predict command
var predictCmd = &cobra.Command{
	Use:   "predict [text...]",
	Short: "Classify a message and print the result as JSON",
	Long: `Classify a single message built from the arguments, or one message per line
with --stdin.

Examples:
  intentctl predict "I want a callback please"
  intentctl predict --fuzzy subsequence looking for a 2bhk
  cat messages.txt | intentctl predict --stdin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !predictStdin && len(args) == 0 {
			return fmt.Errorf("nothing to classify: pass text or use --stdin")
		}

		classifier, _, zlog, err := newClassifier(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = zlog.Sync() }()

		if !predictStdin {
			result, err := classifier.Predict(strings.Join(args, " "))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		}

		var results []*model.ClassificationResult
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			line := scanner.Text()
			if strings.TrimSpace(line) == "" {
				continue
			}
			result, err := classifier.Predict(line)
			if err != nil {
				return err
			}
			results = append(results, result)
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		return writeJSON(cmd.OutOrStdout(), results)
	},
}
