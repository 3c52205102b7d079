package predictor

import (
	"math"
	"sort"

	"ayurpredict/ml"
	"ayurpredict/recommend"
)

// PredictionResult is what callers receive for one symptom set.
type PredictionResult struct {
	PredictedLabel  ml.Label                  `json:"predicted_label"`
	RawLabel        ml.Label                  `json:"raw_label"`
	Confidence      float64                   `json:"confidence"`
	LowConfidence   bool                      `json:"low_confidence"`
	Distribution    map[ml.Label]float64      `json:"distribution"`
	Recommendations recommend.Recommendations `json:"recommendations"`
	Symptoms        []string                  `json:"symptoms_analyzed"`
}

// BatchItem holds one entry of a batch. Exactly one of Result and Error is set.
type BatchItem struct {
	Index  int               `json:"index"`
	Result *PredictionResult `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

func (r *PredictionResult) clone() *PredictionResult {
	out := *r
	out.Distribution = make(map[ml.Label]float64, len(r.Distribution))
	for k, v := range r.Distribution {
		out.Distribution[k] = v
	}
	out.Recommendations = r.Recommendations.Clone()
	out.Symptoms = append([]string{}, r.Symptoms...)
	return &out
}

// percentages converts a distribution to percentages with two decimals that
// add up to exactly 100. The top label keeps its rounded confidence; the
// hundredths left over go to the other labels with the largest remainders,
// earlier labels first.
func percentages(dist ml.LabelDistribution) map[ml.Label]float64 {
	const scale = 10000

	top := 0
	for i := 1; i < ml.NumLabels; i++ {
		if dist[i] > dist[top] {
			top = i
		}
	}

	var units [ml.NumLabels]int
	remainders := make([]int, 0, ml.NumLabels-1)
	frac := make([]float64, ml.NumLabels)
	total := 0
	for i, p := range dist {
		if i == top {
			units[i] = int(math.Round(round2(p*100) * 100))
		} else {
			exact := p * scale
			units[i] = int(math.Floor(exact))
			frac[i] = exact - float64(units[i])
			remainders = append(remainders, i)
		}
		total += units[i]
	}
	sort.SliceStable(remainders, func(a, b int) bool {
		return frac[remainders[a]] > frac[remainders[b]]
	})
	for i := 0; total < scale && i < len(remainders); i++ {
		units[remainders[i]]++
		total++
	}

	out := make(map[ml.Label]float64, ml.NumLabels)
	for i, label := range ml.Labels {
		out[label] = float64(units[i]) / 100
	}
	return out
}
