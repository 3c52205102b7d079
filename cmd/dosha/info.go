package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"ayurpredict/dataset"
	"ayurpredict/ml"
)

type doshaInfo struct {
	label      ml.Label
	alias      string
	elements   string
	governs    string
	balanced   string
	imbalanced string
}

var doshaInfos = []doshaInfo{
	{
		label:      ml.Vata,
		alias:      "Vatham",
		elements:   "Air & Space",
		governs:    "movement, circulation, breathing, nervous system",
		balanced:   "creativity, flexibility, quick thinking",
		imbalanced: "anxiety, dry skin, constipation, joint pain",
	},
	{
		label:      ml.Pitta,
		alias:      "Pitham",
		elements:   "Fire & Water",
		governs:    "metabolism, digestion, body temperature, intelligence",
		balanced:   "good digestion, sharp intellect, courage",
		imbalanced: "anger, acidity, inflammation, excessive heat",
	},
	{
		label:      ml.Kapha,
		alias:      "Kapham",
		elements:   "Water & Earth",
		governs:    "structure, immunity, lubrication, stability",
		balanced:   "strong immunity, calm mind, stable emotions",
		imbalanced: "weight gain, lethargy, congestion, depression",
	},
}

var infoSamples int

func init() {
	infoCmd.Flags().IntVar(&infoSamples, "samples", 6, "number of common symptoms listed per dosha")
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe the three doshas",
	RunE: func(cmd *cobra.Command, args []string) error {
		printDoshaInfoN(cmd.OutOrStdout(), infoSamples)
		return nil
	},
}

func printDoshaInfo(out io.Writer) {
	printDoshaInfoN(out, 6)
}

func printDoshaInfoN(out io.Writer, samples int) {
	fmt.Fprintln(out, headerColor.Sprint("AYURVEDIC DOSHAS (VPK)"))
	fmt.Fprintln(out, strings.Repeat("=", 50))
	for _, d := range doshaInfos {
		fmt.Fprintf(out, "\n%s (%s) - %s\n", labelColor(d.label).Sprint(displayName(d.label)), d.alias, d.elements)
		fmt.Fprintf(out, "   Governs:    %s\n", d.governs)
		fmt.Fprintf(out, "   Balanced:   %s\n", d.balanced)
		fmt.Fprintf(out, "   Imbalanced: %s\n", d.imbalanced)

		common := dataset.SymptomsFor(d.label)
		if samples >= 0 && samples < len(common) {
			common = common[:samples]
		}
		if len(common) > 0 {
			fmt.Fprintf(out, "   Common symptoms: %s\n", strings.Join(common, ", "))
		}
	}
}
