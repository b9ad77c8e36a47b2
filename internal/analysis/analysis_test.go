package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmy/themeboard/internal/domain"
)

var needs = []string{
	"a need for stability",
	"I feel unheard",
	"housing is unaffordable",
}

func TestVectorizer_FitTransform(t *testing.T) {
	model, vecs, err := NewVectorizer().FitTransform(needs)
	require.NoError(t, err)

	assert.Equal(t, []string{"feel", "housing", "need", "stability", "unaffordable", "unheard"}, model.Terms)
	require.Len(t, vecs, 3)
	for i, v := range vecs {
		assert.InDelta(t, 1.0, v.Norm(), 1e-9, "vector %d is not unit length", i)
		assert.Equal(t, 2, v.Len())
	}
}

func TestVectorizer_Deterministic(t *testing.T) {
	_, a, err := NewVectorizer().FitTransform(needs)
	require.NoError(t, err)
	_, b, err := NewVectorizer().FitTransform(needs)
	require.NoError(t, err)
	for i := range a {
		assert.True(t, a[i].Equal(b[i]))
	}
}

func TestVectorizer_IDFWeighting(t *testing.T) {
	model, vecs, err := NewVectorizer().FitTransform([]string{"housing costs", "housing wages"})
	require.NoError(t, err)

	housing := model.Vocabulary["housing"]
	costs := model.Vocabulary["costs"]
	assert.InDelta(t, 1.0, model.IDF[housing], 1e-12)
	assert.InDelta(t, math.Log(3.0/2.0)+1, model.IDF[costs], 1e-12)

	dense := vecs[0].Dense(model.Dim())
	assert.Greater(t, dense[costs], dense[housing])
}

func TestVectorizer_EmptyCorpus(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
	}{
		{name: "nil", texts: nil},
		{name: "blank", texts: []string{"", "   ", "\t\n"}},
		{name: "stop words only", texts: []string{"the and of", "I a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewVectorizer().FitTransform(tt.texts)
			assert.True(t, errors.Is(err, domain.ErrEmptyCorpus), "got %v", err)
		})
	}
}

func TestModel_Transform(t *testing.T) {
	model, _, err := NewVectorizer().FitTransform(needs)
	require.NoError(t, err)

	v := model.Transform("Housing prices make housing unaffordable")
	assert.Equal(t, 2, v.Len())
	assert.True(t, model.Transform("completely novel words").IsZero())
}

func TestTokenize(t *testing.T) {
	v := NewVectorizer()
	got := v.tokenize("I don’t trust myself — Gen_Z’s 2024 Crisis!")
	assert.Equal(t, []string{"don", "trust", "gen_z", "2024", "crisis"}, got)
}

func TestKMeans_Partition(t *testing.T) {
	model, vecs, err := NewVectorizer().FitTransform(needs)
	require.NoError(t, err)

	km := &KMeans{K: 2, Seed: 16, NInit: 10}
	p, err := km.Fit(vecs, model.Dim())
	require.NoError(t, err)

	require.Len(t, p.Labels, 3)
	sizes := p.Sizes()
	assert.Len(t, sizes, 2)
	for id, size := range sizes {
		assert.Positive(t, size, "cluster %d is empty", id)
	}
	assert.Equal(t, 3, sizes[0]+sizes[1])
}

func TestKMeans_Deterministic(t *testing.T) {
	texts := []string{
		"housing rent costs", "rent housing prices", "loneliness isolation friends",
		"friends community loneliness", "climate ecology crisis", "ecology nature climate",
		"jobs wages work", "work purpose jobs",
	}
	model, vecs, err := NewVectorizer().FitTransform(texts)
	require.NoError(t, err)

	km := &KMeans{K: 4, Seed: 16, NInit: 10}
	a, err := km.Fit(vecs, model.Dim())
	require.NoError(t, err)
	b, err := km.Fit(vecs, model.Dim())
	require.NoError(t, err)

	assert.Equal(t, a.Labels, b.Labels)
	assert.Equal(t, a.Inertia, b.Inertia)

	// Pairs sharing vocabulary land together.
	for i := 0; i < len(texts); i += 2 {
		assert.Equal(t, a.Labels[i], a.Labels[i+1], "pair %d split", i/2)
	}
}

func TestKMeans_Errors(t *testing.T) {
	_, vecs, err := NewVectorizer().FitTransform([]string{"housing", "housing", "wages"})
	require.NoError(t, err)

	tests := []struct {
		name string
		k    int
		vecs []SparseVector
	}{
		{name: "zero k", k: 0, vecs: vecs},
		{name: "more clusters than texts", k: 4, vecs: vecs},
		{name: "more clusters than distinct texts", k: 3, vecs: vecs},
		{name: "all zero", k: 2, vecs: []SparseVector{{}, {}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&KMeans{K: tt.k, Seed: 1}).Fit(tt.vecs, 2)
			assert.True(t, errors.Is(err, domain.ErrClustering), "got %v", err)
		})
	}
}

func TestKMeans_SingleCluster(t *testing.T) {
	model, vecs, err := NewVectorizer().FitTransform([]string{"I have trouble being heard"})
	require.NoError(t, err)

	p, err := (&KMeans{K: 1, Seed: 16}).Fit(vecs, model.Dim())
	require.NoError(t, err)
	assert.Equal(t, []int{0}, p.Labels)
}

func TestPartition_Nearest(t *testing.T) {
	model, vecs, err := NewVectorizer().FitTransform([]string{"housing rent", "rent housing costs", "lonely friends", "friends lonely isolation"})
	require.NoError(t, err)
	p, err := (&KMeans{K: 2, Seed: 16, NInit: 5}).Fit(vecs, model.Dim())
	require.NoError(t, err)

	id, _ := p.Nearest(model.Transform("rent is too high for housing"))
	assert.Equal(t, p.Labels[0], id)
	id, _ = p.Nearest(model.Transform("so lonely"))
	assert.Equal(t, p.Labels[2], id)
}

func TestTSNE_Embed(t *testing.T) {
	texts := []string{
		"housing rent costs", "rent housing prices", "loneliness isolation friends",
		"friends community loneliness", "climate ecology crisis", "ecology nature climate",
	}
	model, vecs, err := NewVectorizer().FitTransform(texts)
	require.NoError(t, err)

	ts := &TSNE{Perplexity: 30, Iterations: 400, Seed: 42}
	a := ts.Embed(vecs, model.Dim())
	b := ts.Embed(vecs, model.Dim())

	require.Len(t, a, len(texts))
	assert.Equal(t, a, b)
	for _, p := range a {
		assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y))
		assert.False(t, math.IsInf(p.X, 0) || math.IsInf(p.Y, 0))
	}
}

func TestTSNE_Degenerate(t *testing.T) {
	ts := &TSNE{Seed: 42}
	assert.Empty(t, ts.Embed(nil, 0))
	assert.Equal(t, []Point{{}}, ts.Embed([]SparseVector{{Indices: []int{0}, Values: []float64{1}}}, 1))
}
