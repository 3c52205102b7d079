package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// Overridden at build time via -ldflags "-X main.version=...".
var (
	version   = "1.0.0"
	gitCommit = ""
	buildDate = ""
)

const versionTagline = "based on traditional principles from the Charaka Samhita"

var versionString = version

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	Tagline   string `json:"tagline"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

var versionFormat string

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		switch strings.ToLower(versionFormat) {
		case "json":
			return renderVersionJSON(cmd.OutOrStdout())
		case "pretty":
			renderVersionPretty(cmd.OutOrStdout())
			return nil
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
		}
	},
}

func renderVersionPretty(out io.Writer) {
	fmt.Fprintf(out, "%s %s\n", headerColor.Sprint("dosha"), version)
	fmt.Fprintln(out, mutedColor.Sprint(versionTagline))
	if gitCommit != "" {
		fmt.Fprintf(out, "commit: %s\n", gitCommit)
	}
	if buildDate != "" {
		fmt.Fprintf(out, "built:  %s\n", buildDate)
	}
}

func renderVersionJSON(out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(versionPayload{
		Tool:      "dosha",
		Version:   version,
		Tagline:   versionTagline,
		GitCommit: gitCommit,
		BuildDate: buildDate,
	})
}
