package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ayurpredict/dataset"
	"ayurpredict/ml"
)

var (
	datasetOut       string
	datasetSeed      int64
	datasetPure      int
	datasetMixed     int
	datasetNoMatch   int
	datasetNoExperts bool
)

func init() {
	defaults := dataset.DefaultOptions()
	datasetCmd.Flags().StringVarP(&datasetOut, "out", "o", "", "output CSV path (default from config)")
	datasetCmd.Flags().Int64Var(&datasetSeed, "seed", defaults.Seed, "random seed")
	datasetCmd.Flags().IntVar(&datasetPure, "pure", defaults.PureCases, "pure cases per dosha")
	datasetCmd.Flags().IntVar(&datasetMixed, "mixed", defaults.MixedCases, "mixed dosha cases")
	datasetCmd.Flags().IntVar(&datasetNoMatch, "no-match", defaults.NoMatchCases, "cases outside the three doshas")
	datasetCmd.Flags().BoolVar(&datasetNoExperts, "no-experts", false, "leave out the curated expert cases")
}

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Generate the synthetic training dataset as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := datasetOut
		if out == "" {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out = cfg.Model.DatasetPath
		}
		if datasetPure < 0 || datasetMixed < 0 || datasetNoMatch < 0 {
			return fmt.Errorf("case counts must not be negative")
		}

		rows := dataset.Generate(dataset.Options{
			PureCases:    datasetPure,
			MixedCases:   datasetMixed,
			NoMatchCases: datasetNoMatch,
			WithExpert:   !datasetNoExperts,
			Seed:         datasetSeed,
		})
		if err := dataset.SaveCSV(out, rows); err != nil {
			return err
		}

		counts := make(map[ml.Label]int, ml.NumLabels)
		for _, r := range rows {
			counts[r.Dosha]++
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "wrote %d rows to %s\n", len(rows), out)
		for _, l := range ml.Labels {
			fmt.Fprintf(w, "   %-8s %d\n", displayName(l), counts[l])
		}
		return nil
	},
}
