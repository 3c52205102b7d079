package recommend

import (
	"strings"

	"ayurpredict/ml"
)

// SymptomAdvice is the guidance attached to one matched symptom key.
type SymptomAdvice struct {
	Symptom string `json:"symptom"`
	Advice  string `json:"advice,omitempty"`
	Remedy  string `json:"remedy,omitempty"`
}

// Recommendations is the structured advice attached to a prediction. For
// no_match only General, Advice and Note are set.
type Recommendations struct {
	Dosha           string          `json:"dosha,omitempty"`
	SymptomSpecific []SymptomAdvice `json:"symptom_specific"`
	Diet            []string        `json:"diet"`
	Lifestyle       []string        `json:"lifestyle"`
	Herbs           []string        `json:"herbs"`
	Yoga            []string        `json:"yoga"`
	General         string          `json:"general,omitempty"`
	Advice          string          `json:"advice,omitempty"`
	Note            string          `json:"note,omitempty"`
}

// Clone returns a deep copy.
func (r Recommendations) Clone() Recommendations {
	out := r
	out.SymptomSpecific = append([]SymptomAdvice{}, r.SymptomSpecific...)
	out.Diet = append([]string{}, r.Diet...)
	out.Lifestyle = append([]string{}, r.Lifestyle...)
	out.Herbs = append([]string{}, r.Herbs...)
	out.Yoga = append([]string{}, r.Yoga...)
	return out
}

// Resolve builds the recommendations for a final label. A symptom key matches
// when a normalized input phrase contains it. Matches follow input order and
// each key appears at most once.
func (c *Catalog) Resolve(label ml.Label, symptoms []string) Recommendations {
	if !label.IsDosha() {
		return Recommendations{
			SymptomSpecific: []SymptomAdvice{},
			Diet:            []string{},
			Lifestyle:       []string{},
			Herbs:           []string{},
			Yoga:            []string{},
			General:         c.NoMatch.General,
			Advice:          c.NoMatch.Advice,
			Note:            c.NoMatch.Note,
		}
	}

	profile := c.Doshas[label]
	recs := Recommendations{
		Dosha:           strings.ToUpper(string(label)),
		SymptomSpecific: c.match(label, symptoms),
		Diet:            append([]string{}, profile.Diet...),
		Lifestyle:       append([]string{}, profile.Lifestyle...),
		Herbs:           append([]string{}, profile.Herbs...),
		Yoga:            append([]string{}, profile.Yoga...),
		Note:            c.note(label),
	}
	return recs
}

func (c *Catalog) match(label ml.Label, symptoms []string) []SymptomAdvice {
	matched := []SymptomAdvice{}
	used := make(map[string]bool)
	for _, phrase := range symptoms {
		phrase = ml.NormalizePhrase(phrase)
		if phrase == "" {
			continue
		}
		for _, entry := range c.Symptoms {
			if used[entry.Key] || !strings.Contains(phrase, entry.Key) {
				continue
			}
			used[entry.Key] = true
			matched = append(matched, SymptomAdvice{
				Symptom: entry.Key,
				Advice:  entry.adviceFor(label),
				Remedy:  entry.Remedy,
			})
		}
	}
	return matched
}
