package recommend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ayurpredict/ml"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	for _, dosha := range ml.Doshas {
		p, ok := c.Profile(dosha)
		require.True(t, ok, dosha)
		assert.NotEmpty(t, p.Diet)
		assert.NotEmpty(t, p.Lifestyle)
		assert.NotEmpty(t, p.Herbs)
		assert.NotEmpty(t, p.Yoga)
	}
	assert.NotEmpty(t, c.Symptoms)
	assert.NotEmpty(t, c.NoMatch.General)
}

func TestResolveDosha(t *testing.T) {
	c := DefaultCatalog()

	recs := c.Resolve(ml.Vata, []string{"Dry Skin", "severe constipation", "purple unicorn"})

	assert.Equal(t, "VATA", recs.Dosha)
	require.Len(t, recs.SymptomSpecific, 2)
	assert.Equal(t, "dry skin", recs.SymptomSpecific[0].Symptom)
	assert.Equal(t, "constipation", recs.SymptomSpecific[1].Symptom)
	assert.Contains(t, recs.SymptomSpecific[0].Advice, "sesame oil")
	assert.NotEmpty(t, recs.SymptomSpecific[0].Remedy)
	assert.Equal(t, c.Doshas[ml.Vata].Diet, recs.Diet)
	assert.Contains(t, recs.Note, "VATA")
	assert.Empty(t, recs.General)
}

func TestResolveDeduplicatesKeys(t *testing.T) {
	c := DefaultCatalog()

	recs := c.Resolve(ml.Pitta, []string{"acidity", "ACIDITY after meals", "anger"})

	require.Len(t, recs.SymptomSpecific, 2)
	assert.Equal(t, "acidity", recs.SymptomSpecific[0].Symptom)
	assert.Equal(t, "anger", recs.SymptomSpecific[1].Symptom)
}

func TestResolveAdviceFallback(t *testing.T) {
	c := DefaultCatalog()

	recs := c.Resolve(ml.Kapha, []string{"headache", "acidity"})

	require.Len(t, recs.SymptomSpecific, 2)
	// headache carries advice for every dosha.
	assert.NotEmpty(t, recs.SymptomSpecific[0].Advice)
	// acidity is a pitta entry, so kapha only gets the remedy.
	assert.Empty(t, recs.SymptomSpecific[1].Advice)
	assert.NotEmpty(t, recs.SymptomSpecific[1].Remedy)
}

func TestResolveNoMatch(t *testing.T) {
	c := DefaultCatalog()

	recs := c.Resolve(ml.NoMatch, []string{"dry skin", "acidity"})

	assert.Empty(t, recs.SymptomSpecific)
	assert.Empty(t, recs.Diet)
	assert.Empty(t, recs.Dosha)
	assert.Equal(t, c.NoMatch.General, recs.General)
	assert.Equal(t, c.NoMatch.Advice, recs.Advice)
}

func TestResolveDoesNotShareCatalogSlices(t *testing.T) {
	c := DefaultCatalog()

	recs := c.Resolve(ml.Kapha, nil)
	recs.Diet[0] = "changed"

	assert.NotEqual(t, "changed", c.Doshas[ml.Kapha].Diet[0])
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, defaultCatalogYAML, 0o644))
	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Len(t, c.Symptoms, len(DefaultCatalog().Symptoms))

	_, err = LoadCatalog(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestParseCatalogValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "missing dosha", doc: `
doshas:
  vata: {diet: [a]}
  pitta: {diet: [a]}
no_match: {general: x}
`},
		{name: "unknown dosha", doc: `
doshas:
  vata: {}
  pitta: {}
  kapha: {}
  tridosha: {}
no_match: {general: x}
`},
		{name: "duplicate key", doc: `
doshas: {vata: {}, pitta: {}, kapha: {}}
symptoms:
  - {key: Dry Skin, advice: {vata: a}}
  - {key: dry skin, advice: {vata: b}}
no_match: {general: x}
`},
		{name: "no advice", doc: `
doshas: {vata: {}, pitta: {}, kapha: {}}
symptoms:
  - {key: dry skin}
no_match: {general: x}
`},
		{name: "no no_match", doc: `
doshas: {vata: {}, pitta: {}, kapha: {}}
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}
