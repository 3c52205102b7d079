package ml

import (
	"errors"
	"math"
	"sort"
	"strings"
	"unicode"
)

// DefaultMaxFeatures caps the fitted vocabulary size.
const DefaultMaxFeatures = 1000

// TfidfVectorizer turns text into L2-normalized TF-IDF vectors over a fitted vocabulary.
// After Fit it is read-only and safe for concurrent Transform calls.
type TfidfVectorizer struct {
	MaxFeatures int            `msgpack:"max_features"`
	StopWords   bool           `msgpack:"stop_words"`
	Vocabulary  map[string]int `msgpack:"vocabulary"`
	IDF         []float64      `msgpack:"idf"`
}

func NewTfidfVectorizer(maxFeatures int) *TfidfVectorizer {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	return &TfidfVectorizer{
		MaxFeatures: maxFeatures,
		StopWords:   true,
	}
}

// Fit builds the vocabulary and smoothed IDF weights: idf = ln((1+n)/(1+df)) + 1.
func (v *TfidfVectorizer) Fit(docs []string) error {
	if len(docs) == 0 {
		return errors.New("no documents to fit")
	}

	termCounts := make(map[string]int)
	docFreq := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, token := range v.tokenize(doc) {
			termCounts[token]++
			if _, ok := seen[token]; !ok {
				seen[token] = struct{}{}
				docFreq[token]++
			}
		}
	}
	if len(termCounts) == 0 {
		return errors.New("empty vocabulary: documents contain only stop words")
	}

	terms := make([]string, 0, len(termCounts))
	for term := range termCounts {
		terms = append(terms, term)
	}
	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if termCounts[terms[i]] != termCounts[terms[j]] {
				return termCounts[terms[i]] > termCounts[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.MaxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v.Vocabulary = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	for i, term := range terms {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
	return nil
}

// Transform encodes text. Tokens outside the vocabulary are ignored.
func (v *TfidfVectorizer) Transform(text string) FeatureVector {
	vector := make(FeatureVector, len(v.IDF))
	for _, token := range v.tokenize(text) {
		if idx, ok := v.Vocabulary[token]; ok {
			vector[idx]++
		}
	}
	norm := 0.0
	for i, count := range vector {
		if count == 0 {
			continue
		}
		vector[i] = count * v.IDF[i]
		norm += vector[i] * vector[i]
	}
	if norm == 0 {
		return vector
	}
	norm = math.Sqrt(norm)
	for i := range vector {
		vector[i] /= norm
	}
	return vector
}

// FitTransform fits on docs and returns their encodings.
func (v *TfidfVectorizer) FitTransform(docs []string) ([]FeatureVector, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	vectors := make([]FeatureVector, len(docs))
	for i, doc := range docs {
		vectors[i] = v.Transform(doc)
	}
	return vectors, nil
}

// Dim is the vector dimension, equal to the vocabulary size.
func (v *TfidfVectorizer) Dim() int {
	return len(v.IDF)
}

// Fitted reports whether Fit has completed.
func (v *TfidfVectorizer) Fitted() bool {
	return v != nil && len(v.IDF) > 0 && len(v.Vocabulary) == len(v.IDF)
}

// FeatureNames returns the vocabulary ordered by vector index.
func (v *TfidfVectorizer) FeatureNames() []string {
	names := make([]string, len(v.IDF))
	for term, idx := range v.Vocabulary {
		names[idx] = term
	}
	return names
}

func (v *TfidfVectorizer) tokenize(text string) []string {
	tokens := Tokenize(text)
	if !v.StopWords {
		return tokens
	}
	kept := tokens[:0]
	for _, token := range tokens {
		if _, stop := englishStopWords[token]; !stop {
			kept = append(kept, token)
		}
	}
	return kept
}

// Tokenize lowercases text and splits it into runs of two or more word characters.
func Tokenize(text string) []string {
	isWord := func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
	}
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool { return !isWord(r) })
	tokens := fields[:0]
	for _, field := range fields {
		if len([]rune(field)) >= 2 {
			tokens = append(tokens, field)
		}
	}
	return tokens
}

var englishStopWords = func() map[string]struct{} {
	words := strings.Fields(`
		a about above across after afterwards again against all almost alone along already also
		although always am among amongst an and another any anyhow anyone anything anyway anywhere
		are around as at be became because become becomes becoming been before beforehand behind
		being below beside besides between beyond both but by can cannot could did do does doing
		done down due during each eg either else elsewhere enough etc even ever every everyone
		everything everywhere except few for former formerly from further had has have having he
		hence her here hereafter hereby herein hers herself him himself his how however ie if in
		indeed into is it its itself just last latter least less ltd many may me meanwhile might
		more moreover most mostly much must my myself namely neither never nevertheless next no
		nobody none noone nor not nothing now nowhere of off often on once one only onto or other
		others otherwise our ours ourselves out over own per perhaps please rather re same several
		she should since so some somehow someone something sometime sometimes somewhere still such
		than that the their theirs them themselves then thence there thereafter thereby therefore
		therein thereupon these they this those though through throughout thru thus to together
		too toward towards under until up upon us very via was we were what whatever when whence
		whenever where whereafter whereas whereby wherein whereupon wherever whether which while
		whither who whoever whole whom whose why will with within without would yet you your yours
		yourself yourselves`)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()
