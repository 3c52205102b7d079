package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ayurpredict/config"
	"ayurpredict/ml"
	"ayurpredict/predictor"
	"ayurpredict/recommend"
)

var rootCmd = &cobra.Command{
	Use:   "dosha",
	Short: "Ayurvedic dosha predictor",
	Long: `dosha predicts the imbalanced dosha (vata, pitta or kapha) from a list of
symptoms and prints the matching guidance.

Examples:
  dosha predict -s "dry skin" -s anxiety -s "joint pain"
  dosha predict acidity anger "burning sensation"
  dosha interactive
  dosha info`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("color")
		return applyColorMode(mode)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// no subcommand: same as the interactive mode
		return runInteractive(cmd, args)
	},
}

func main() {
	rootCmd.Version = versionString

	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(interactiveCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(datasetCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "config.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func applyColorMode(mode string) error {
	switch strings.ToLower(mode) {
	case "auto", "":
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("unsupported color mode %q (must be auto, on or off)", mode)
	}
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		path = ""
	}
	return config.Load(path)
}

// loadPredictor builds a predictor from the configured artifacts.
func loadPredictor(cmd *cobra.Command) (*predictor.Predictor, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	artifacts, err := ml.LoadArtifacts(cfg.Model.VectorizerPath, cfg.Model.ModelPath)
	if err != nil {
		if errors.Is(err, ml.ErrArtifactMissing) {
			return nil, fmt.Errorf("%w: run train_model first", err)
		}
		return nil, err
	}

	catalog := recommend.DefaultCatalog()
	if cfg.Catalog.Path != "" {
		if catalog, err = recommend.LoadCatalog(cfg.Catalog.Path); err != nil {
			return nil, err
		}
	}
	return predictor.New(artifacts, predictor.Options{
		Threshold: cfg.Predictor.Threshold,
		Catalog:   catalog,
	})
}
