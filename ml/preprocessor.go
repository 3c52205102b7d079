package ml

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizePhrase applies NFKC, case folding and whitespace collapsing to one phrase.
func NormalizePhrase(phrase string) string {
	normed := norm.NFKC.String(phrase)
	normed = cases.Fold().String(normed)
	return strings.Join(strings.Fields(normed), " ")
}

// ValidatePhrase rejects phrases that are not clean UTF-8 text.
func ValidatePhrase(phrase string) error {
	if !utf8.ValidString(phrase) {
		return fmt.Errorf("%w: phrase is not valid UTF-8", ErrInvalidInput)
	}
	for _, r := range phrase {
		if r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: phrase %q contains control character %U", ErrInvalidInput, phrase, r)
		}
	}
	return nil
}

// NormalizeSymptoms validates each phrase and joins the normalized phrases
// with single spaces. Phrases that normalize to nothing are skipped.
func NormalizeSymptoms(symptoms []string) (string, error) {
	parts := make([]string, 0, len(symptoms))
	for i, symptom := range symptoms {
		if err := ValidatePhrase(symptom); err != nil {
			return "", fmt.Errorf("symptom %d: %w", i, err)
		}
		if normed := NormalizePhrase(symptom); normed != "" {
			parts = append(parts, normed)
		}
	}
	return strings.Join(parts, " "), nil
}

// SymptomList is a list of symptom phrases decoded from JSON. A null entry is
// rejected instead of being decoded as an empty phrase.
type SymptomList []string

func (l *SymptomList) UnmarshalJSON(data []byte) error {
	var raw []*string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*l = nil
		return nil
	}
	out := make(SymptomList, len(raw))
	for i, phrase := range raw {
		if phrase == nil {
			return fmt.Errorf("%w: symptom %d is null", ErrInvalidInput, i)
		}
		out[i] = *phrase
	}
	*l = out
	return nil
}
