package service

import (
	"context"
	"fmt"
	"runtime"

	"intent-engine/internal/model"

	"golang.org/x/sync/errgroup"
)

// Evaluate classifies every labeled row and reports accuracy overall and per stage.
// Rows are classified concurrently; the first prediction error aborts the run.
func (c *IntentClassifier) Evaluate(ctx context.Context, rows []model.LabeledRow) (*model.EvalReport, error) {
	results := make([]*model.ClassificationResult, len(rows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, row := range rows {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := c.Predict(row.Text)
			if err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &model.EvalReport{
		Total:   len(rows),
		ByStage: make(map[model.Stage]*model.StageReport),
	}
	for i, result := range results {
		stage, ok := report.ByStage[result.Stage]
		if !ok {
			stage = &model.StageReport{}
			report.ByStage[result.Stage] = stage
		}
		stage.Total++
		if result.PredictedClass == rows[i].Label {
			stage.Correct++
			report.Correct++
		}
	}
	if report.Total > 0 {
		report.Accuracy = float64(report.Correct) / float64(report.Total)
	}
	return report, nil
}
