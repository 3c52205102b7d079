package ml

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type TrainingConfig struct {
	ModelType   string
	MaxFeatures int
	NEstimators int
	MaxDepth    int
	TestRatio   float64
	Seed        int64
	Workers     int
}

func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		ModelType:   ModelTypeRandomForest,
		MaxFeatures: DefaultMaxFeatures,
		NEstimators: DefaultEstimators,
		TestRatio:   0.2,
		Seed:        DefaultSeed,
	}
}

type TrainingResult struct {
	Artifacts *Artifacts
	Report    *Report
	TrainSize int
	TestSize  int
}

// Train fits the vectorizer on every row, splits the encoded rows, trains the
// configured model on the training part and evaluates it on the rest.
func Train(ctx context.Context, samples []Sample, config TrainingConfig) (*TrainingResult, error) {
	if len(samples) == 0 {
		return nil, errors.New("no training samples")
	}
	if config.ModelType == "" {
		config.ModelType = ModelTypeRandomForest
	}

	docs := make([]string, len(samples))
	for i, s := range samples {
		docs[i] = NormalizePhrase(s.Text)
	}
	vectorizer := NewTfidfVectorizer(config.MaxFeatures)
	if err := vectorizer.Fit(docs); err != nil {
		return nil, fmt.Errorf("fit vectorizer: %w", err)
	}

	trainSet, testSet, err := StratifiedSplit(samples, config.TestRatio, config.Seed)
	if err != nil {
		return nil, err
	}
	trainX, trainY := encode(vectorizer, trainSet)
	testX, testY := encode(vectorizer, testSet)

	var model Classifier
	switch config.ModelType {
	case ModelTypeRandomForest:
		forest := NewRandomForest(ForestOptions{
			NEstimators: config.NEstimators,
			MaxDepth:    config.MaxDepth,
			Seed:        config.Seed,
			Workers:     config.Workers,
		})
		if err := forest.Train(ctx, trainX, trainY); err != nil {
			return nil, fmt.Errorf("train forest: %w", err)
		}
		model = forest
	case ModelTypeDecisionTree:
		tree := NewDecisionTree(config.MaxDepth, 0)
		if err := tree.Train(trainX, trainY, nil); err != nil {
			return nil, fmt.Errorf("train tree: %w", err)
		}
		model = tree
	default:
		return nil, fmt.Errorf("unsupported model type %q", config.ModelType)
	}

	report, err := Evaluate(model, testX, testY)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	return &TrainingResult{
		Artifacts: &Artifacts{
			Vectorizer: vectorizer,
			Model:      model,
			ModelType:  config.ModelType,
			TrainedAt:  time.Now().UTC(),
		},
		Report:    report,
		TrainSize: len(trainSet),
		TestSize:  len(testSet),
	}, nil
}

func encode(vectorizer *TfidfVectorizer, samples []Sample) ([]FeatureVector, []Label) {
	features := make([]FeatureVector, len(samples))
	labels := make([]Label, len(samples))
	for i, s := range samples {
		features[i] = vectorizer.Transform(NormalizePhrase(s.Text))
		labels[i] = s.Label
	}
	return features, labels
}
