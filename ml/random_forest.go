package ml

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultEstimators = 100
	DefaultSeed       = 42
)

type ForestOptions struct {
	NEstimators int   `msgpack:"n_estimators"`
	MaxDepth    int   `msgpack:"max_depth"`
	MaxFeatures int   `msgpack:"max_features"`
	Seed        int64 `msgpack:"seed"`
	Workers     int   `msgpack:"-"`
}

// RandomForest averages the leaf distributions of bootstrap-trained trees.
type RandomForest struct {
	Options   ForestOptions   `msgpack:"options"`
	Trees     []*DecisionTree `msgpack:"trees"`
	NFeatures int             `msgpack:"n_features"`
}

func NewRandomForest(opts ForestOptions) *RandomForest {
	if opts.NEstimators <= 0 {
		opts.NEstimators = DefaultEstimators
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &RandomForest{Options: opts}
}

// Train fits every tree on its own bootstrap sample. Per-tree seeds are drawn
// up front so the result does not depend on goroutine scheduling.
func (rf *RandomForest) Train(ctx context.Context, features []FeatureVector, labels []Label) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return errors.New("features and labels size mismatch")
	}
	classes := make([]int, len(labels))
	for i, label := range labels {
		idx := label.Index()
		if idx < 0 {
			return fmt.Errorf("unknown label %q", label)
		}
		classes[i] = idx
	}

	nFeatures := len(features[0])
	maxFeatures := rf.Options.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Max(1, math.Sqrt(float64(nFeatures))))
	}

	master := rand.New(rand.NewSource(rf.Options.Seed))
	seeds := make([]int64, rf.Options.NEstimators)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	trees := make([]*DecisionTree, rf.Options.NEstimators)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, rf.Options.Workers))
	for i := range trees {
		i := i
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			rng := rand.New(rand.NewSource(seeds[i]))
			samples := make([]int, len(features))
			for j := range samples {
				samples[j] = rng.Intn(len(features))
			}
			tree := NewDecisionTree(rf.Options.MaxDepth, maxFeatures)
			if err := tree.train(features, classes, samples, rng); err != nil {
				return fmt.Errorf("tree %d: %w", i, err)
			}
			trees[i] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	rf.Trees = trees
	rf.NFeatures = nFeatures
	return nil
}

// PredictProba averages the per-tree distributions. An all-zero vector carries
// no evidence and gets the uniform distribution.
func (rf *RandomForest) PredictProba(features FeatureVector) (LabelDistribution, error) {
	if len(rf.Trees) == 0 {
		return LabelDistribution{}, ErrModelNotLoaded
	}
	if len(features) != rf.NFeatures {
		return LabelDistribution{}, fmt.Errorf("feature vector has %d dimensions, model expects %d", len(features), rf.NFeatures)
	}
	if features.IsZero() {
		return UniformDistribution(), nil
	}
	var sum LabelDistribution
	for i, tree := range rf.Trees {
		dist, err := tree.PredictProba(features)
		if err != nil {
			return LabelDistribution{}, fmt.Errorf("tree %d: %w", i, err)
		}
		for j, p := range dist {
			sum[j] += p
		}
	}
	n := float64(len(rf.Trees))
	for j := range sum {
		sum[j] /= n
	}
	return sum, nil
}

// Predict returns the top label and its probability.
func (rf *RandomForest) Predict(features FeatureVector) (Label, float64, error) {
	dist, err := rf.PredictProba(features)
	if err != nil {
		return "", 0, err
	}
	label, p := dist.Top()
	return label, p, nil
}
