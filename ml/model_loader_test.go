package ml

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trainedArtifacts(t *testing.T) *Artifacts {
	t.Helper()
	samples := []Sample{
		{Text: "dry skin constipation anxiety", Label: Vata},
		{Text: "joint pain dry skin insomnia", Label: Vata},
		{Text: "anxiety insomnia constipation", Label: Vata},
		{Text: "acidity burning sensation anger", Label: Pitta},
		{Text: "anger heartburn acidity", Label: Pitta},
		{Text: "burning sensation fever", Label: Pitta},
		{Text: "congestion weight gain lethargy", Label: Kapha},
		{Text: "lethargy excess mucus congestion", Label: Kapha},
		{Text: "weight gain oversleeping", Label: Kapha},
		{Text: "broken bone car accident", Label: NoMatch},
		{Text: "kidney stones", Label: NoMatch},
		{Text: "sports injury concussion", Label: NoMatch},
	}
	config := DefaultTrainingConfig()
	config.NEstimators = 5
	config.TestRatio = 0.25
	result, err := Train(context.Background(), samples, config)
	require.NoError(t, err)
	return result.Artifacts
}

func TestArtifactsRoundTrip(t *testing.T) {
	artifacts := trainedArtifacts(t)
	dir := t.TempDir()
	vecPath := filepath.Join(dir, "models", "vectorizer.msgpack")
	modelPath := filepath.Join(dir, "models", "forest.msgpack")

	require.NoError(t, SaveArtifacts(vecPath, modelPath, artifacts))

	loaded, err := LoadArtifacts(vecPath, modelPath)
	require.NoError(t, err)
	assert.Equal(t, ModelTypeRandomForest, loaded.ModelType)
	assert.Equal(t, artifacts.Vectorizer.FeatureNames(), loaded.Vectorizer.FeatureNames())
	assert.WithinDuration(t, artifacts.TrainedAt, loaded.TrainedAt, time.Second)

	for _, text := range []string{"dry skin anxiety", "acidity anger", "lethargy", "", "unknown words"} {
		want, err := artifacts.Model.PredictProba(artifacts.Vectorizer.Transform(text))
		require.NoError(t, err)
		got, err := loaded.Model.PredictProba(loaded.Vectorizer.Transform(text))
		require.NoError(t, err)
		assert.InDeltaSlice(t, want[:], got[:], 1e-12, text)
	}

	entries, err := os.ReadDir(filepath.Dir(vecPath))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temporary files left behind")
}

func TestDecisionTreeArtifact(t *testing.T) {
	artifacts := trainedArtifacts(t)
	features := []FeatureVector{
		artifacts.Vectorizer.Transform("dry skin"),
		artifacts.Vectorizer.Transform("acidity"),
	}
	tree := NewDecisionTree(0, 0)
	require.NoError(t, tree.Train(features, []Label{Vata, Pitta}, nil))

	path := filepath.Join(t.TempDir(), "tree.msgpack")
	require.NoError(t, SaveModel(path, tree, time.Now()))

	model, err := LoadModel(path)
	require.NoError(t, err)
	loaded, ok := model.(*DecisionTree)
	require.True(t, ok)
	assert.Equal(t, tree.Nodes, loaded.Nodes)
}

func TestLoadArtifactsMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadArtifacts(filepath.Join(dir, "nope.msgpack"), filepath.Join(dir, "nope2.msgpack"))
	assert.ErrorIs(t, err, ErrArtifactMissing)
}

func TestLoadArtifactsCorrupt(t *testing.T) {
	artifacts := trainedArtifacts(t)
	dir := t.TempDir()
	vecPath := filepath.Join(dir, "vectorizer.msgpack")
	modelPath := filepath.Join(dir, "forest.msgpack")
	require.NoError(t, SaveArtifacts(vecPath, modelPath, artifacts))

	require.NoError(t, os.WriteFile(modelPath, []byte("not msgpack"), 0o644))
	_, err := LoadArtifacts(vecPath, modelPath)
	assert.ErrorIs(t, err, ErrArtifactMissing)

	// A vectorizer blob is not a model.
	_, err = LoadModel(vecPath)
	assert.ErrorIs(t, err, ErrArtifactMissing)
}

func TestLoadArtifactsDimensionMismatch(t *testing.T) {
	artifacts := trainedArtifacts(t)
	dir := t.TempDir()
	vecPath := filepath.Join(dir, "vectorizer.msgpack")
	modelPath := filepath.Join(dir, "forest.msgpack")
	require.NoError(t, SaveArtifacts(vecPath, modelPath, artifacts))

	other := NewTfidfVectorizer(0)
	require.NoError(t, other.Fit([]string{"completely different words"}))
	require.NoError(t, SaveVectorizer(vecPath, other))

	_, err := LoadArtifacts(vecPath, modelPath)
	assert.ErrorIs(t, err, ErrArtifactMissing)
}

func TestSaveUntrained(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, SaveModel(filepath.Join(dir, "m"), NewRandomForest(ForestOptions{}), time.Now()))
	assert.Error(t, SaveVectorizer(filepath.Join(dir, "v"), NewTfidfVectorizer(0)))
	assert.ErrorIs(t, SaveArtifacts(filepath.Join(dir, "v"), filepath.Join(dir, "m"), &Artifacts{}), ErrModelNotLoaded)
}
