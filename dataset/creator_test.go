package dataset

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ayurpredict/ml"
)

func TestGenerate(t *testing.T) {
	opts := DefaultOptions()
	rows := Generate(opts)

	want := 3*opts.PureCases + opts.MixedCases + opts.NoMatchCases + len(ExpertCases)
	require.Len(t, rows, want)

	counts := make(map[ml.Label]int)
	mixed := 0
	for _, r := range rows {
		counts[r.Dosha]++
		if r.Mixed {
			mixed++
		}
		assert.NotEmpty(t, r.Symptoms)
		assert.Positive(t, r.NumSymptoms)
	}
	assert.Equal(t, opts.MixedCases, mixed)
	assert.Equal(t, opts.NoMatchCases, counts[ml.NoMatch])
	for _, dosha := range ml.Doshas {
		assert.GreaterOrEqual(t, counts[dosha], opts.PureCases)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	assert.Equal(t, Generate(DefaultOptions()), Generate(DefaultOptions()))

	other := DefaultOptions()
	other.Seed = 7
	assert.NotEqual(t, Generate(DefaultOptions()), Generate(other))
}

func TestPureCombinations(t *testing.T) {
	c := NewCreator(1)
	for _, r := range c.PureCombinations(ml.Kapha, 50) {
		assert.Equal(t, ml.Kapha, r.Dosha)
		assert.False(t, r.Mixed)
		assert.GreaterOrEqual(t, r.NumSymptoms, 2)
		assert.LessOrEqual(t, r.NumSymptoms, 8)
	}
}

func TestNoMatchCases(t *testing.T) {
	c := NewCreator(2)
	for _, r := range c.NoMatchCases(30) {
		assert.Equal(t, ml.NoMatch, r.Dosha)
		assert.GreaterOrEqual(t, r.NumSymptoms, 1)
		assert.LessOrEqual(t, r.NumSymptoms, 3)
	}
}

func TestMixedCombinations(t *testing.T) {
	c := NewCreator(3)
	for _, r := range c.MixedCombinations(30) {
		assert.True(t, r.Mixed)
		assert.True(t, r.Dosha.IsDosha())
		assert.GreaterOrEqual(t, r.NumSymptoms, 3)
		assert.LessOrEqual(t, r.NumSymptoms, 7)
	}
}

func TestSymptomsFor(t *testing.T) {
	assert.Equal(t, VataSymptoms, SymptomsFor(ml.Vata))
	assert.Equal(t, NoMatchSymptoms, SymptomsFor(ml.NoMatch))
	assert.Nil(t, SymptomsFor("tridosha"))
}

func TestCSVRoundTrip(t *testing.T) {
	rows := Generate(Options{PureCases: 3, MixedCases: 2, NoMatchCases: 2, Seed: 9})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))
	assert.True(t, strings.HasPrefix(buf.String(), "symptoms,dosha,num_symptoms,mixed\n"))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	path := filepath.Join(t.TempDir(), "data", "dataset.csv")
	require.NoError(t, SaveCSV(path, rows))
	loaded, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, rows, loaded)
}

func TestReadCSV(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("dosha,symptoms\nPitta,acidity anger\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{Symptoms: "acidity anger", Dosha: ml.Pitta}, rows[0])

	tests := []struct {
		name string
		doc  string
	}{
		{name: "empty", doc: ""},
		{name: "no symptoms column", doc: "text,dosha\nx,vata\n"},
		{name: "no dosha column", doc: "symptoms,label\nx,vata\n"},
		{name: "unknown label", doc: "symptoms,dosha\nx,tridosha\n"},
		{name: "short record", doc: "symptoms,dosha\nx\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}
