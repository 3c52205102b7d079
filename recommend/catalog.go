// Package recommend attaches canned Ayurvedic guidance to a predicted label.
package recommend

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"ayurpredict/ml"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Profile is the base guidance for one dosha.
type Profile struct {
	Diet      []string `yaml:"diet" json:"diet"`
	Lifestyle []string `yaml:"lifestyle" json:"lifestyle"`
	Herbs     []string `yaml:"herbs" json:"herbs"`
	Yoga      []string `yaml:"yoga" json:"yoga"`
}

// SymptomEntry is advice for one symptom key. Advice is keyed by dosha name,
// with "all" applying to any dosha.
type SymptomEntry struct {
	Key    string            `yaml:"key"`
	Advice map[string]string `yaml:"advice"`
	Remedy string            `yaml:"remedy"`
}

// NoMatchMessage is returned in place of guidance when no dosha was predicted.
type NoMatchMessage struct {
	General string `yaml:"general"`
	Advice  string `yaml:"advice"`
	Note    string `yaml:"note"`
}

// Catalog is read-only reference data. It is safe for concurrent use once loaded.
type Catalog struct {
	Doshas   map[ml.Label]Profile `yaml:"doshas"`
	Symptoms []SymptomEntry       `yaml:"symptoms"`
	NoMatch  NoMatchMessage       `yaml:"no_match"`
	// Note is a format string taking the dosha name.
	Note string `yaml:"note"`
}

// DefaultCatalog parses the catalog compiled into the binary.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("recommend: embedded catalog: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog file. An empty path yields the embedded catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	for _, dosha := range ml.Doshas {
		if _, ok := c.Doshas[dosha]; !ok {
			return fmt.Errorf("catalog has no profile for %s", dosha)
		}
	}
	for label := range c.Doshas {
		if !label.IsDosha() {
			return fmt.Errorf("catalog profile for unknown dosha %q", label)
		}
	}

	seen := make(map[string]struct{}, len(c.Symptoms))
	for i := range c.Symptoms {
		entry := &c.Symptoms[i]
		entry.Key = ml.NormalizePhrase(entry.Key)
		if entry.Key == "" {
			return fmt.Errorf("catalog symptom %d has an empty key", i)
		}
		if _, dup := seen[entry.Key]; dup {
			return fmt.Errorf("catalog symptom %q listed twice", entry.Key)
		}
		seen[entry.Key] = struct{}{}
		if len(entry.Advice) == 0 {
			return fmt.Errorf("catalog symptom %q has no advice", entry.Key)
		}
	}
	if c.NoMatch.General == "" {
		return errors.New("catalog has no no_match message")
	}
	return nil
}

// Profile returns the base guidance for a dosha.
func (c *Catalog) Profile(label ml.Label) (Profile, bool) {
	p, ok := c.Doshas[label]
	return p, ok
}

// adviceFor picks the dosha-specific advice, falling back to "all". Entries
// written for another dosha give no advice, only their remedy.
func (e SymptomEntry) adviceFor(label ml.Label) string {
	if a, ok := e.Advice[string(label)]; ok {
		return a
	}
	return e.Advice["all"]
}

func (c *Catalog) note(label ml.Label) string {
	if c.Note == "" {
		return ""
	}
	if strings.Contains(c.Note, "%s") {
		return fmt.Sprintf(c.Note, strings.ToUpper(string(label)))
	}
	return c.Note
}
