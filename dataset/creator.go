// Package dataset synthesizes and stores labeled symptom rows for training.
package dataset

import (
	"math/rand"
	"strings"

	"ayurpredict/ml"
)

// Row is one training record.
type Row struct {
	Symptoms    string   `json:"symptoms"`
	Dosha       ml.Label `json:"dosha"`
	NumSymptoms int      `json:"num_symptoms"`
	Mixed       bool     `json:"mixed"`
}

// Sample converts the row to a training sample.
func (r Row) Sample() ml.Sample {
	return ml.Sample{Text: r.Symptoms, Label: r.Dosha}
}

// Samples converts rows to training samples.
func Samples(rows []Row) []ml.Sample {
	samples := make([]ml.Sample, len(rows))
	for i, r := range rows {
		samples[i] = r.Sample()
	}
	return samples
}

// Options sets how many rows of each kind Generate produces.
type Options struct {
	PureCases    int
	MixedCases   int
	NoMatchCases int
	WithExpert   bool
	Seed         int64
}

func DefaultOptions() Options {
	return Options{
		PureCases:    80,
		MixedCases:   60,
		NoMatchCases: 30,
		WithExpert:   true,
		Seed:         ml.DefaultSeed,
	}
}

// Creator generates rows from the symptom vocabularies with a seeded source.
type Creator struct {
	rng *rand.Rand
}

func NewCreator(seed int64) *Creator {
	return &Creator{rng: rand.New(rand.NewSource(seed))}
}

// Generate builds the full dataset: pure cases per dosha, mixed cases, no-match
// cases and optionally the expert rows, shuffled.
func Generate(opts Options) []Row {
	c := NewCreator(opts.Seed)
	rows := make([]Row, 0, 3*opts.PureCases+opts.MixedCases+opts.NoMatchCases+len(ExpertCases))
	for _, dosha := range ml.Doshas {
		rows = append(rows, c.PureCombinations(dosha, opts.PureCases)...)
	}
	rows = append(rows, c.MixedCombinations(opts.MixedCases)...)
	rows = append(rows, c.NoMatchCases(opts.NoMatchCases)...)
	if opts.WithExpert {
		rows = append(rows, ExpertCases...)
	}
	c.rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
	return rows
}

// PureCombinations draws 2 to 8 distinct symptoms of a single dosha per row.
func (c *Creator) PureCombinations(dosha ml.Label, n int) []Row {
	symptoms := SymptomsFor(dosha)
	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		k := 2 + c.rng.Intn(7)
		picked := c.choose(symptoms, k)
		rows = append(rows, Row{
			Symptoms:    strings.Join(picked, " "),
			Dosha:       dosha,
			NumSymptoms: len(picked),
		})
	}
	return rows
}

// MixedCombinations draws 60-80% of each row from a primary dosha and the rest
// from one other dosha. The row is labeled with the primary dosha.
func (c *Creator) MixedCombinations(n int) []Row {
	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		primary := ml.Doshas[c.rng.Intn(len(ml.Doshas))]
		total := 3 + c.rng.Intn(5)
		primaryCount := int(float64(total) * (0.6 + 0.2*c.rng.Float64()))
		secondaryCount := total - primaryCount

		others := make([]ml.Label, 0, 2)
		for _, d := range ml.Doshas {
			if d != primary {
				others = append(others, d)
			}
		}
		secondary := others[c.rng.Intn(len(others))]

		picked := append(c.choose(SymptomsFor(primary), primaryCount), c.choose(SymptomsFor(secondary), secondaryCount)...)
		c.rng.Shuffle(len(picked), func(a, b int) { picked[a], picked[b] = picked[b], picked[a] })

		rows = append(rows, Row{
			Symptoms:    strings.Join(picked, " "),
			Dosha:       primary,
			NumSymptoms: total,
			Mixed:       true,
		})
	}
	return rows
}

// NoMatchCases draws 1 to 3 symptoms that belong to no dosha.
func (c *Creator) NoMatchCases(n int) []Row {
	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		k := 1 + c.rng.Intn(3)
		picked := c.choose(NoMatchSymptoms, k)
		rows = append(rows, Row{
			Symptoms:    strings.Join(picked, " "),
			Dosha:       ml.NoMatch,
			NumSymptoms: len(picked),
		})
	}
	return rows
}

func (c *Creator) choose(pool []string, k int) []string {
	if k > len(pool) {
		k = len(pool)
	}
	perm := c.rng.Perm(len(pool))
	picked := make([]string, k)
	for i := 0; i < k; i++ {
		picked[i] = pool[perm[i]]
	}
	return picked
}
