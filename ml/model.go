package ml

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrModelNotLoaded is returned when a prediction is attempted before the
	// vectorizer and model artifacts are available.
	ErrModelNotLoaded = errors.New("model not loaded")
	// ErrArtifactMissing is returned when an artifact file is absent or cannot be decoded.
	ErrArtifactMissing = errors.New("artifact missing or corrupt")
	// ErrInvalidInput is returned for symptom phrases that are not clean text.
	ErrInvalidInput = errors.New("invalid input")
)

// Label is one of the fixed classifier categories.
type Label string

const (
	Vata    Label = "vata"
	Pitta   Label = "pitta"
	Kapha   Label = "kapha"
	NoMatch Label = "no_match"
)

// NumLabels is the size of the fixed label set.
const NumLabels = 4

// Labels lists every label in tie-break priority order: when two labels share
// the highest probability the one listed first wins.
var Labels = [NumLabels]Label{Vata, Pitta, Kapha, NoMatch}

// Doshas are the three labels that carry a recommendation profile.
var Doshas = []Label{Vata, Pitta, Kapha}

// ParseLabel maps a token such as "vata" or " Kapha " to its Label.
func ParseLabel(s string) (Label, error) {
	switch Label(strings.ToLower(strings.TrimSpace(s))) {
	case Vata:
		return Vata, nil
	case Pitta:
		return Pitta, nil
	case Kapha:
		return Kapha, nil
	case NoMatch:
		return NoMatch, nil
	}
	return "", fmt.Errorf("unknown label %q", s)
}

// Index returns the position of l in Labels, or -1.
func (l Label) Index() int {
	for i, label := range Labels {
		if label == l {
			return i
		}
	}
	return -1
}

// IsDosha reports whether l is one of vata, pitta or kapha.
func (l Label) IsDosha() bool {
	return l == Vata || l == Pitta || l == Kapha
}

// FeatureVector is a dense TF-IDF vector over a fitted vocabulary.
type FeatureVector []float64

// IsZero reports whether no component carries weight.
func (v FeatureVector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// LabelDistribution holds one probability per label, indexed like Labels.
type LabelDistribution [NumLabels]float64

// UniformDistribution spreads the mass evenly; it is the answer for a vector
// that carries no evidence at all.
func UniformDistribution() LabelDistribution {
	var d LabelDistribution
	for i := range d {
		d[i] = 1.0 / NumLabels
	}
	return d
}

// Prob returns the probability assigned to l.
func (d LabelDistribution) Prob(l Label) float64 {
	idx := l.Index()
	if idx < 0 {
		return 0
	}
	return d[idx]
}

// Top returns the most probable label. Ties resolve to the earlier label in Labels.
func (d LabelDistribution) Top() (Label, float64) {
	best := 0
	for i := 1; i < NumLabels; i++ {
		if d[i] > d[best] {
			best = i
		}
	}
	return Labels[best], d[best]
}

// Sum adds all probabilities.
func (d LabelDistribution) Sum() float64 {
	total := 0.0
	for _, p := range d {
		total += p
	}
	return total
}

// Valid reports whether d is a proper probability distribution.
func (d LabelDistribution) Valid() bool {
	for _, p := range d {
		if p < 0 || math.IsNaN(p) {
			return false
		}
	}
	return math.Abs(d.Sum()-1) < 1e-9
}

func distributionFromCounts(counts [NumLabels]int) LabelDistribution {
	total := 0
	for _, c := range counts {
		total += c
	}
	var d LabelDistribution
	if total == 0 {
		return UniformDistribution()
	}
	for i, c := range counts {
		d[i] = float64(c) / float64(total)
	}
	return d
}

// Classifier maps a feature vector to a distribution over Labels.
type Classifier interface {
	PredictProba(features FeatureVector) (LabelDistribution, error)
}

// Encoder turns normalized symptom text into a feature vector.
type Encoder interface {
	Transform(text string) FeatureVector
	Dim() int
}
