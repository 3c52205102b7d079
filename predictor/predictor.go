package predictor

import (
	"context"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"ayurpredict/ml"
	"ayurpredict/recommend"
)

// DefaultCacheSize bounds the number of memoized predictions.
const DefaultCacheSize = 1024

type Options struct {
	Threshold float64
	// CacheSize <= 0 disables the cache.
	CacheSize int
	Catalog   *recommend.Catalog
}

// Info describes the artifacts a Predictor serves from.
type Info struct {
	ModelType      string    `json:"model_type"`
	TrainedAt      time.Time `json:"trained_at"`
	VocabularySize int       `json:"vocabulary_size"`
	Threshold      float64   `json:"threshold"`
	Labels         []string  `json:"labels"`
}

// Predictor runs the encode, classify, decide and recommend steps over one
// immutable artifact bundle. It is safe for concurrent use.
type Predictor struct {
	artifacts *ml.Artifacts
	policy    Policy
	catalog   *recommend.Catalog
	cache     *lru.Cache[string, *PredictionResult]
}

func New(artifacts *ml.Artifacts, opts Options) (*Predictor, error) {
	if err := artifacts.Validate(); err != nil {
		return nil, err
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Catalog == nil {
		opts.Catalog = recommend.DefaultCatalog()
	}
	p := &Predictor{
		artifacts: artifacts,
		policy:    Policy{Threshold: opts.Threshold},
		catalog:   opts.Catalog,
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, *PredictionResult](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create prediction cache: %w", err)
		}
		p.cache = cache
	}
	return p, nil
}

func (p *Predictor) Info() Info {
	labels := make([]string, 0, ml.NumLabels)
	for _, l := range ml.Labels {
		labels = append(labels, string(l))
	}
	return Info{
		ModelType:      p.artifacts.ModelType,
		TrainedAt:      p.artifacts.TrainedAt,
		VocabularySize: p.artifacts.Vectorizer.Dim(),
		Threshold:      p.policy.Threshold,
		Labels:         labels,
	}
}

func (p *Predictor) Policy() Policy {
	return p.policy
}

func (p *Predictor) Catalog() *recommend.Catalog {
	return p.catalog
}

// Predict classifies one symptom set. An empty set is valid and always ends as
// no_match. Malformed phrases fail with ml.ErrInvalidInput.
func (p *Predictor) Predict(ctx context.Context, symptoms []string) (*PredictionResult, error) {
	if p == nil || p.artifacts == nil {
		return nil, ml.ErrModelNotLoaded
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Validated phrases carry no control characters, so the separator cannot
	// occur inside a phrase.
	text, err := ml.NormalizeSymptoms(symptoms)
	if err != nil {
		return nil, err
	}
	key := strings.Join(symptoms, "\x1f")
	if p.cache != nil {
		if cached, ok := p.cache.Get(key); ok {
			return cached.clone(), nil
		}
	}

	features := p.artifacts.Vectorizer.Transform(text)
	dist, err := p.artifacts.Model.PredictProba(features)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	if !dist.Valid() {
		return nil, fmt.Errorf("classify: invalid distribution %v", dist)
	}

	decision := p.policy.Decide(dist)
	result := &PredictionResult{
		PredictedLabel:  decision.Label,
		RawLabel:        decision.RawLabel,
		Confidence:      decision.Confidence,
		LowConfidence:   decision.Overridden,
		Distribution:    percentages(dist),
		Recommendations: p.catalog.Resolve(decision.Label, symptoms),
		Symptoms:        append([]string{}, symptoms...),
	}

	if p.cache != nil {
		p.cache.Add(key, result.clone())
	}
	return result, nil
}

// PredictBatch predicts every set independently. Invalid sets are reported in
// their item; only a sequencing or context error fails the whole batch.
func (p *Predictor) PredictBatch(ctx context.Context, sets [][]string) ([]BatchItem, error) {
	items := make([]BatchItem, len(sets))
	for i, symptoms := range sets {
		result, err := p.Predict(ctx, symptoms)
		items[i].Index = i
		switch {
		case err == nil:
			items[i].Result = result
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case isFatal(err):
			return nil, err
		default:
			items[i].Error = err.Error()
		}
	}
	return items, nil
}
