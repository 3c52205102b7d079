// Package mltest trains small deterministic models for tests.
package mltest

import (
	"context"
	"sync"
	"testing"

	"ayurpredict/dataset"
	"ayurpredict/ml"
)

// Estimators is the forest size used by fixtures.
const Estimators = 40

var (
	once      sync.Once
	artifacts *ml.Artifacts
	result    *ml.TrainingResult
	trainErr  error
)

// Train returns the training result for the generated default dataset. The
// model is trained once per test binary and must not be mutated.
func Train(tb testing.TB) *ml.TrainingResult {
	tb.Helper()
	once.Do(func() {
		config := ml.DefaultTrainingConfig()
		config.NEstimators = Estimators
		rows := dataset.Generate(dataset.DefaultOptions())
		result, trainErr = ml.Train(context.Background(), dataset.Samples(rows), config)
		if trainErr == nil {
			artifacts = result.Artifacts
		}
	})
	if trainErr != nil {
		tb.Fatalf("train fixture model: %v", trainErr)
	}
	return result
}

// Artifacts returns the shared fixture artifacts.
func Artifacts(tb testing.TB) *ml.Artifacts {
	tb.Helper()
	Train(tb)
	return artifacts
}
