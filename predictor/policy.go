// Package predictor turns symptom phrases into a labeled, explained prediction.
package predictor

import (
	"math"

	"ayurpredict/ml"
)

// DefaultThreshold is the confidence percentage below which a prediction is
// reported as no_match.
const DefaultThreshold = 30.0

// Policy decides the final label from a classifier distribution.
type Policy struct {
	Threshold float64
}

func DefaultPolicy() Policy {
	return Policy{Threshold: DefaultThreshold}
}

// Decision is the outcome of applying a Policy.
type Decision struct {
	RawLabel   ml.Label
	Label      ml.Label
	Confidence float64
	Overridden bool
}

// Decide takes the top label and its confidence as a percentage rounded to two
// decimals. A confidence under the threshold forces no_match but keeps the
// confidence of the original top label.
func (p Policy) Decide(dist ml.LabelDistribution) Decision {
	top, prob := dist.Top()
	d := Decision{
		RawLabel:   top,
		Label:      top,
		Confidence: round2(prob * 100),
	}
	if top != ml.NoMatch && d.Confidence < p.Threshold {
		d.Label = ml.NoMatch
		d.Overridden = true
	}
	return d
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
