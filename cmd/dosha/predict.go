package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	predictSymptoms []string
	predictFormat   string
)

func init() {
	predictCmd.Flags().StringArrayVarP(&predictSymptoms, "symptoms", "s", nil, "symptom to analyze (repeatable)")
	predictCmd.Flags().StringVar(&predictFormat, "format", "pretty", "output format (pretty|json)")
}

var predictCmd = &cobra.Command{
	Use:   "predict [symptom...]",
	Short: "Predict the dosha for a list of symptoms",
	RunE:  runPredict,
}

func runPredict(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(predictFormat)
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", predictFormat)
	}

	symptoms := make([]string, 0, len(predictSymptoms)+len(args))
	for _, s := range append(append([]string{}, predictSymptoms...), args...) {
		if s = strings.TrimSpace(s); s != "" {
			symptoms = append(symptoms, s)
		}
	}
	if len(symptoms) == 0 {
		return fmt.Errorf("no symptoms provided")
	}

	p, err := loadPredictor(cmd)
	if err != nil {
		return err
	}
	result, err := p.Predict(cmd.Context(), symptoms)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	fmt.Fprintf(out, "Analyzing: %s\n", strings.Join(symptoms, ", "))
	fmt.Fprintln(out, strings.Repeat("-", 50))
	renderResult(out, result)
	return nil
}
