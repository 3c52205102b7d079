package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"ayurpredict/ml"
	"ayurpredict/predictor"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	mutedColor   = color.New(color.Faint)

	doshaColors = map[ml.Label]*color.Color{
		ml.Vata:    color.New(color.FgBlue, color.Bold),
		ml.Pitta:   color.New(color.FgRed, color.Bold),
		ml.Kapha:   color.New(color.FgGreen, color.Bold),
		ml.NoMatch: color.New(color.FgWhite, color.Bold),
	}
)

func labelColor(label ml.Label) *color.Color {
	if c, ok := doshaColors[label]; ok {
		return c
	}
	return mutedColor
}

func displayName(label ml.Label) string {
	if label == ml.NoMatch {
		return "NO MATCH"
	}
	return strings.ToUpper(string(label))
}

// renderResult writes a prediction the way the interactive prompt shows it:
// headline, confidence, one bar per label, then the guidance.
func renderResult(out io.Writer, result *predictor.PredictionResult) {
	label := result.PredictedLabel
	fmt.Fprintf(out, "PREDICTION: %s\n", labelColor(label).Sprint(displayName(label)))
	if label == ml.NoMatch {
		fmt.Fprintln(out, mutedColor.Sprint("   (symptoms don't clearly match a known dosha pattern)"))
	}

	fmt.Fprintf(out, "CONFIDENCE: %.2f%%\n", result.Confidence)
	if result.LowConfidence {
		fmt.Fprintln(out, warningColor.Sprintf("   below threshold, model leaned towards %s", displayName(result.RawLabel)))
	}

	fmt.Fprintln(out, "DISTRIBUTION:")
	for _, l := range ml.Labels {
		pct := result.Distribution[l]
		bar := strings.Repeat("█", int(pct/5))
		fmt.Fprintf(out, "   %-8s %6.2f%% %s\n", displayName(l), pct, labelColor(l).Sprint(bar))
	}

	renderRecommendations(out, result)
}

func renderRecommendations(out io.Writer, result *predictor.PredictionResult) {
	rec := result.Recommendations
	fmt.Fprintln(out)
	if result.PredictedLabel == ml.NoMatch {
		fmt.Fprintln(out, headerColor.Sprint("RECOMMENDATION"))
		fmt.Fprintf(out, "   %s\n", rec.General)
		if rec.Advice != "" {
			fmt.Fprintf(out, "   %s\n", rec.Advice)
		}
		if rec.Note != "" {
			fmt.Fprintln(out, mutedColor.Sprintf("   %s", rec.Note))
		}
		return
	}

	if len(rec.SymptomSpecific) > 0 {
		fmt.Fprintln(out, headerColor.Sprint("FOR YOUR SYMPTOMS"))
		for _, s := range rec.SymptomSpecific {
			fmt.Fprintf(out, "   %s: %s\n", s.Symptom, s.Advice)
			if s.Remedy != "" {
				fmt.Fprintf(out, "      remedy: %s\n", s.Remedy)
			}
		}
	}
	renderList(out, "DIET", rec.Diet)
	renderList(out, "LIFESTYLE", rec.Lifestyle)
	renderList(out, "HERBS", rec.Herbs)
	renderList(out, "YOGA", rec.Yoga)
	if rec.Note != "" {
		fmt.Fprintln(out, mutedColor.Sprintf("\n%s", rec.Note))
	}
}

func renderList(out io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(out, headerColor.Sprint(title))
	for _, item := range items {
		fmt.Fprintf(out, "   - %s\n", item)
	}
}
