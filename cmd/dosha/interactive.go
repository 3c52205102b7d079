package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"ayurpredict/predictor"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"i"},
	Short:   "Read symptom lists from stdin and predict each one",
	RunE:    runInteractive,
}

func runInteractive(cmd *cobra.Command, args []string) error {
	p, err := loadPredictor(cmd)
	if err != nil {
		return err
	}
	return interact(cmd, p, cmd.InOrStdin(), cmd.OutOrStdout())
}

// interact runs the prompt loop until quit or end of input.
func interact(cmd *cobra.Command, p *predictor.Predictor, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, headerColor.Sprint("INTERACTIVE MODE"))
	fmt.Fprintln(out, "Enter symptoms separated by commas. Type 'help' for examples,")
	fmt.Fprintln(out, "'info' for dosha information and 'quit' to exit.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nsymptoms> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(line) {
		case "quit", "exit", "q":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		case "help":
			printExamples(out)
			continue
		case "info":
			printDoshaInfo(out)
			continue
		case "":
			fmt.Fprintln(out, "Please enter some symptoms.")
			continue
		}

		symptoms := splitSymptoms(line)
		if len(symptoms) == 0 {
			fmt.Fprintln(out, "Please enter valid symptoms.")
			continue
		}

		result, err := p.Predict(cmd.Context(), symptoms)
		if err != nil {
			fmt.Fprintln(out, errorColor.Sprintf("Error: %v", err))
			continue
		}
		fmt.Fprintf(out, "\nAnalyzing: %s\n", strings.Join(symptoms, ", "))
		fmt.Fprintln(out, strings.Repeat("-", 50))
		renderResult(out, result)
	}
}

func splitSymptoms(line string) []string {
	parts := strings.Split(line, ",")
	symptoms := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			symptoms = append(symptoms, part)
		}
	}
	return symptoms
}

func printExamples(out io.Writer) {
	fmt.Fprintln(out, headerColor.Sprint("EXAMPLE SYMPTOM COMBINATIONS"))
	fmt.Fprintln(out, "Vata:  dry skin, anxiety, constipation, joint pain")
	fmt.Fprintln(out, "Pitta: acidity, anger, burning sensation, yellow urine")
	fmt.Fprintln(out, "Kapha: congestion, weight gain, lethargy, cold limbs")
	fmt.Fprintln(out, "Mixed: headache, fatigue, stress")
	fmt.Fprintln(out, "Non-Ayurvedic: broken bone, car accident, covid symptoms")
}
