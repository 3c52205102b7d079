package ml

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toyData builds separable rows: the first three features each mark one dosha,
// the fourth marks no_match.
func toyData(n int, seed int64) ([]FeatureVector, []Label) {
	rng := rand.New(rand.NewSource(seed))
	features := make([]FeatureVector, 0, n)
	labels := make([]Label, 0, n)
	for i := 0; i < n; i++ {
		class := i % NumLabels
		vec := make(FeatureVector, 6)
		vec[class] = 0.6 + 0.4*rng.Float64()
		vec[4] = 0.2 * rng.Float64()
		vec[5] = 0.2 * rng.Float64()
		features = append(features, vec)
		labels = append(labels, Labels[class])
	}
	return features, labels
}

func TestDecisionTree(t *testing.T) {
	features, labels := toyData(80, 1)

	tree := NewDecisionTree(0, 0)
	require.NoError(t, tree.Train(features, labels, nil))
	assert.NotEmpty(t, tree.Nodes)
	assert.Equal(t, 6, tree.NFeatures)
	assert.LessOrEqual(t, tree.Depth(), 4)

	for i, x := range features {
		got, p, err := tree.Predict(x)
		require.NoError(t, err)
		assert.Equal(t, labels[i], got)
		assert.Equal(t, 1.0, p)
	}
}

func TestDecisionTreeMaxDepth(t *testing.T) {
	features, labels := toyData(80, 2)

	tree := NewDecisionTree(1, 0)
	require.NoError(t, tree.Train(features, labels, nil))
	assert.Equal(t, 1, tree.Depth())

	dist, err := tree.PredictProba(features[0])
	require.NoError(t, err)
	assert.True(t, dist.Valid())
}

func TestDecisionTreeErrors(t *testing.T) {
	tree := NewDecisionTree(0, 0)

	_, err := tree.PredictProba(FeatureVector{1})
	assert.ErrorIs(t, err, ErrModelNotLoaded)

	assert.Error(t, tree.Train(nil, nil, nil))
	assert.Error(t, tree.Train([]FeatureVector{{1}}, []Label{Vata, Pitta}, nil))
	assert.Error(t, tree.Train([]FeatureVector{{1}}, []Label{"tridosha"}, nil))
	assert.Error(t, tree.Train([]FeatureVector{{1}, {1, 2}}, []Label{Vata, Pitta}, nil))
}

func TestRandomForest(t *testing.T) {
	features, labels := toyData(120, 3)

	rf := NewRandomForest(ForestOptions{NEstimators: 15, Seed: 7})
	require.NoError(t, rf.Train(context.Background(), features, labels))
	assert.Len(t, rf.Trees, 15)
	assert.Equal(t, 6, rf.NFeatures)

	testX, testY := toyData(40, 4)
	report, err := Evaluate(rf, testX, testY)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, report.Accuracy, 0.9)

	for _, x := range testX {
		dist, err := rf.PredictProba(x)
		require.NoError(t, err)
		assert.True(t, dist.Valid())
	}
}

func TestRandomForestDeterministic(t *testing.T) {
	features, labels := toyData(60, 5)

	a := NewRandomForest(ForestOptions{NEstimators: 10, Seed: 42, Workers: 1})
	b := NewRandomForest(ForestOptions{NEstimators: 10, Seed: 42, Workers: 8})
	require.NoError(t, a.Train(context.Background(), features, labels))
	require.NoError(t, b.Train(context.Background(), features, labels))

	sample := FeatureVector{0.3, 0.3, 0.1, 0.2, 0.1, 0.05}
	da, err := a.PredictProba(sample)
	require.NoError(t, err)
	db, err := b.PredictProba(sample)
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func TestRandomForestZeroVector(t *testing.T) {
	features, labels := toyData(40, 6)

	rf := NewRandomForest(ForestOptions{NEstimators: 5})
	require.NoError(t, rf.Train(context.Background(), features, labels))

	dist, err := rf.PredictProba(make(FeatureVector, 6))
	require.NoError(t, err)
	assert.Equal(t, UniformDistribution(), dist)

	label, p, err := rf.Predict(make(FeatureVector, 6))
	require.NoError(t, err)
	assert.Equal(t, Vata, label)
	assert.Equal(t, 0.25, p)
}

func TestRandomForestErrors(t *testing.T) {
	rf := NewRandomForest(ForestOptions{NEstimators: 3})

	_, err := rf.PredictProba(FeatureVector{1})
	assert.ErrorIs(t, err, ErrModelNotLoaded)

	assert.Error(t, rf.Train(context.Background(), nil, nil))

	features, labels := toyData(20, 8)
	require.NoError(t, rf.Train(context.Background(), features, labels))
	_, err = rf.PredictProba(FeatureVector{1, 2})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, NewRandomForest(ForestOptions{NEstimators: 3}).Train(ctx, features, labels))
}

func TestLabelDistributionTop(t *testing.T) {
	label, p := LabelDistribution{0.25, 0.25, 0.25, 0.25}.Top()
	assert.Equal(t, Vata, label)
	assert.Equal(t, 0.25, p)

	label, _ = LabelDistribution{0, 0.4, 0.2, 0.4}.Top()
	assert.Equal(t, Pitta, label)

	assert.False(t, LabelDistribution{0.5, 0.6, 0, 0}.Valid())
	assert.False(t, LabelDistribution{-0.1, 1.1, 0, 0}.Valid())
}

func TestParseLabel(t *testing.T) {
	for _, label := range Labels {
		got, err := ParseLabel(" " + string(label) + " ")
		require.NoError(t, err)
		assert.Equal(t, label, got)
	}
	_, err := ParseLabel("tridosha")
	assert.Error(t, err)
	assert.Equal(t, -1, Label("tridosha").Index())
	assert.False(t, NoMatch.IsDosha())
}
