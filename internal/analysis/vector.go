// Package analysis holds the numeric stages of a classification run:
// TF-IDF vectorization, k-means partitioning and t-SNE projection.
package analysis

import "math"

// SparseVector is a feature vector with strictly increasing indices.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Len returns the number of stored (non-zero) entries.
func (v SparseVector) Len() int {
	return len(v.Indices)
}

// IsZero reports whether every component is zero.
func (v SparseVector) IsZero() bool {
	for _, x := range v.Values {
		if x != 0 {
			return false
		}
	}
	return true
}

// Norm returns the Euclidean norm.
func (v SparseVector) Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Dense expands the vector into a slice of length dim.
func (v SparseVector) Dense(dim int) []float64 {
	out := make([]float64, dim)
	for i, idx := range v.Indices {
		if idx < dim {
			out[idx] = v.Values[i]
		}
	}
	return out
}

// Equal reports exact component-wise equality.
func (v SparseVector) Equal(o SparseVector) bool {
	if len(v.Indices) != len(o.Indices) {
		return false
	}
	for i := range v.Indices {
		if v.Indices[i] != o.Indices[i] || v.Values[i] != o.Values[i] {
			return false
		}
	}
	return true
}

func denseMatrix(vecs []SparseVector, dim int) [][]float64 {
	out := make([][]float64, len(vecs))
	for i, v := range vecs {
		out[i] = v.Dense(dim)
	}
	return out
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func meanVector(rows [][]float64, dim int) []float64 {
	out := make([]float64, dim)
	if len(rows) == 0 {
		return out
	}
	for _, r := range rows {
		for i, x := range r {
			out[i] += x
		}
	}
	inv := 1.0 / float64(len(rows))
	for i := range out {
		out[i] *= inv
	}
	return out
}
