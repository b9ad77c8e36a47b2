package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/timmy/themeboard/internal/domain"
)

// Vectorizer builds TF-IDF features: raw term counts weighted by a smoothed
// inverse document frequency, then scaled to unit length.
type Vectorizer struct {
	StopWords wordSet
}

// NewVectorizer returns a Vectorizer using the English stop-word list.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{StopWords: EnglishStopWords}
}

// Model is a fitted vocabulary. Term indices follow lexical order.
type Model struct {
	Terms      []string
	Vocabulary map[string]int
	IDF        []float64

	vectorizer *Vectorizer
}

// Dim returns the dimensionality of the feature space.
func (m *Model) Dim() int {
	return len(m.Terms)
}

// FitTransform learns a vocabulary from texts and returns one vector per text,
// in input order. It fails with domain.ErrEmptyCorpus when no text carries a
// usable term.
func (v *Vectorizer) FitTransform(texts []string) (*Model, []SparseVector, error) {
	blank := true
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			blank = false
			break
		}
	}
	if blank {
		return nil, nil, fmt.Errorf("%w: %d texts, all blank", domain.ErrEmptyCorpus, len(texts))
	}

	docs := make([][]string, len(texts))
	df := make(map[string]int)
	for i, t := range texts {
		docs[i] = v.tokenize(t)
		seen := make(map[string]struct{}, len(docs[i]))
		for _, tok := range docs[i] {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return nil, nil, fmt.Errorf("%w: vocabulary is empty after stop-word removal", domain.ErrEmptyCorpus)
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(texts))
	m := &Model{
		Terms:      terms,
		Vocabulary: make(map[string]int, len(terms)),
		IDF:        make([]float64, len(terms)),
		vectorizer: v,
	}
	for i, term := range terms {
		m.Vocabulary[term] = i
		m.IDF[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	out := make([]SparseVector, len(docs))
	for i, tokens := range docs {
		out[i] = m.weigh(tokens)
	}
	return m, out, nil
}

// Transform maps text into the fitted space. Terms unseen during fitting are
// ignored, so the result may be the zero vector.
func (m *Model) Transform(text string) SparseVector {
	return m.weigh(m.vectorizer.tokenize(text))
}

func (m *Model) weigh(tokens []string) SparseVector {
	counts := make(map[int]float64)
	for _, tok := range tokens {
		if idx, ok := m.Vocabulary[tok]; ok {
			counts[idx]++
		}
	}
	vec := SparseVector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)

	var sum float64
	for _, idx := range vec.Indices {
		w := counts[idx] * m.IDF[idx]
		vec.Values = append(vec.Values, w)
		sum += w * w
	}
	if sum > 0 {
		inv := 1 / math.Sqrt(sum)
		for i := range vec.Values {
			vec.Values[i] *= inv
		}
	}
	return vec
}

// tokenize lowercases text and keeps runs of two or more word characters
// that are not stop words.
func (v *Vectorizer) tokenize(text string) []string {
	var tokens []string
	var cur []rune
	flush := func() {
		if len(cur) >= 2 {
			tok := string(cur)
			if v.StopWords == nil || !v.StopWords.contains(tok) {
				tokens = append(tokens, tok)
			}
		}
		cur = cur[:0]
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			cur = append(cur, r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}
