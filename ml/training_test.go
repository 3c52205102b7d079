package ml

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStratifiedSplit(t *testing.T) {
	var samples []Sample
	for i := 0; i < 40; i++ {
		samples = append(samples, Sample{Text: fmt.Sprintf("vata %d", i), Label: Vata})
	}
	for i := 0; i < 20; i++ {
		samples = append(samples, Sample{Text: fmt.Sprintf("kapha %d", i), Label: Kapha})
	}

	train, test, err := StratifiedSplit(samples, 0.2, 42)
	require.NoError(t, err)
	assert.Len(t, train, 48)
	assert.Len(t, test, 12)
	assert.Equal(t, map[Label]int{Vata: 8, Kapha: 4}, LabelCounts(test))

	again, _, err := StratifiedSplit(samples, 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, train, again)

	_, _, err = StratifiedSplit(nil, 0.2, 42)
	assert.Error(t, err)
	_, _, err = StratifiedSplit([]Sample{{Text: "x", Label: "bad"}}, 0.2, 42)
	assert.Error(t, err)
}

func TestStratifiedSplitKeepsOneTrainingRow(t *testing.T) {
	train, test, err := StratifiedSplit([]Sample{{Text: "only", Label: Pitta}}, 0.5, 1)
	require.NoError(t, err)
	assert.Len(t, train, 1)
	assert.Empty(t, test)
}

func TestTrain(t *testing.T) {
	artifacts := trainedArtifacts(t)
	assert.Equal(t, ModelTypeRandomForest, artifacts.ModelType)
	assert.NoError(t, artifacts.Validate())
	assert.False(t, artifacts.TrainedAt.IsZero())
}

func TestTrainDecisionTree(t *testing.T) {
	samples := []Sample{
		{Text: "dry skin", Label: Vata},
		{Text: "dry cough", Label: Vata},
		{Text: "acidity", Label: Pitta},
		{Text: "anger acidity", Label: Pitta},
	}
	config := DefaultTrainingConfig()
	config.ModelType = ModelTypeDecisionTree
	config.TestRatio = 0.5

	result, err := Train(context.Background(), samples, config)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TrainSize)
	assert.Equal(t, 2, result.TestSize)
	_, ok := result.Artifacts.Model.(*DecisionTree)
	assert.True(t, ok)
}

func TestTrainErrors(t *testing.T) {
	_, err := Train(context.Background(), nil, DefaultTrainingConfig())
	assert.Error(t, err)

	config := DefaultTrainingConfig()
	config.ModelType = "svm"
	_, err = Train(context.Background(), []Sample{{Text: "dry skin", Label: Vata}}, config)
	assert.Error(t, err)
}

func TestEvaluateReport(t *testing.T) {
	model := fixedModel{Vata: 1}
	features := []FeatureVector{{1}, {1}, {1}, {1}}
	labels := []Label{Vata, Vata, Pitta, Kapha}

	report, err := Evaluate(model, features, labels)
	require.NoError(t, err)
	assert.Equal(t, 0.5, report.Accuracy)
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 0.5, report.PerClass[Vata].Precision)
	assert.Equal(t, 1.0, report.PerClass[Vata].Recall)
	assert.Equal(t, 0.0, report.PerClass[Pitta].Recall)
	assert.True(t, strings.Contains(report.String(), "accuracy"))

	_, err = Evaluate(model, features, labels[:1])
	assert.Error(t, err)
}

// fixedModel always returns the same distribution.
type fixedModel map[Label]float64

func (m fixedModel) PredictProba(FeatureVector) (LabelDistribution, error) {
	var d LabelDistribution
	for label, p := range m {
		d[label.Index()] = p
	}
	return d, nil
}
