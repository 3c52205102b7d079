package ml

import (
	"errors"
	"fmt"
	"strings"
)

type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report summarizes a held-out evaluation.
type Report struct {
	Accuracy       float64                `json:"accuracy"`
	MacroPrecision float64                `json:"macro_precision"`
	MacroRecall    float64                `json:"macro_recall"`
	PerClass       map[Label]ClassMetrics `json:"per_class"`
	Total          int                    `json:"total"`
}

// Evaluate runs model over the encoded test rows and compares against labels.
func Evaluate(model Classifier, features []FeatureVector, labels []Label) (*Report, error) {
	if len(features) != len(labels) {
		return nil, errors.New("features and labels size mismatch")
	}
	report := &Report{PerClass: make(map[Label]ClassMetrics, NumLabels), Total: len(labels)}
	if len(features) == 0 {
		return report, nil
	}

	var truePos, predicted, actual [NumLabels]int
	correct := 0
	for i, x := range features {
		dist, err := model.PredictProba(x)
		if err != nil {
			return nil, err
		}
		got, _ := dist.Top()
		want := labels[i]
		predicted[got.Index()]++
		actual[want.Index()]++
		if got == want {
			correct++
			truePos[got.Index()]++
		}
	}

	report.Accuracy = float64(correct) / float64(len(features))
	present := 0
	for i, label := range Labels {
		if actual[i] == 0 && predicted[i] == 0 {
			continue
		}
		m := ClassMetrics{Support: actual[i]}
		if predicted[i] > 0 {
			m.Precision = float64(truePos[i]) / float64(predicted[i])
		}
		if actual[i] > 0 {
			m.Recall = float64(truePos[i]) / float64(actual[i])
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		report.PerClass[label] = m
		report.MacroPrecision += m.Precision
		report.MacroRecall += m.Recall
		present++
	}
	if present > 0 {
		report.MacroPrecision /= float64(present)
		report.MacroRecall /= float64(present)
	}
	return report, nil
}

// String renders a classification-report style table.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%10s %10s %10s %10s %10s\n", "", "precision", "recall", "f1-score", "support")
	for _, label := range Labels {
		m, ok := r.PerClass[label]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%10s %10.2f %10.2f %10.2f %10d\n", label, m.Precision, m.Recall, m.F1, m.Support)
	}
	fmt.Fprintf(&b, "\n%10s %32.2f %10d\n", "accuracy", r.Accuracy, r.Total)
	return b.String()
}
