package analysis

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/timmy/themeboard/internal/domain"
)

// KMeans partitions vectors into K groups by minimizing within-cluster
// squared distance to K centroids. Seeding is k-means++ driven by Seed, and
// the best of NInit restarts (lowest inertia) wins.
type KMeans struct {
	K       int
	Seed    int64
	NInit   int
	MaxIter int
	Tol     float64
}

// Partition is the result of one KMeans.Fit call.
type Partition struct {
	K          int
	Labels     []int
	Centroids  [][]float64
	Inertia    float64
	Iterations int
}

// Sizes returns the number of members per cluster id.
func (p *Partition) Sizes() []int {
	sizes := make([]int, p.K)
	for _, l := range p.Labels {
		sizes[l]++
	}
	return sizes
}

// Members returns the input indices assigned to cluster id, in input order.
func (p *Partition) Members(id int) []int {
	var out []int
	for i, l := range p.Labels {
		if l == id {
			out = append(out, i)
		}
	}
	return out
}

// Nearest returns the cluster id whose centroid is closest to v and the
// squared distance to it.
func (p *Partition) Nearest(v SparseVector) (int, float64) {
	if len(p.Centroids) == 0 {
		return -1, math.Inf(1)
	}
	x := v.Dense(len(p.Centroids[0]))
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range p.Centroids {
		if d := squaredDistance(x, centroid); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}

// Fit computes a fresh partition of vecs living in a dim-dimensional space.
// It fails with domain.ErrClustering when fewer than K distinct vectors are
// given or every vector is zero.
func (km *KMeans) Fit(vecs []SparseVector, dim int) (*Partition, error) {
	k := km.K
	if k < 1 {
		return nil, fmt.Errorf("%w: cluster count must be positive, got %d", domain.ErrClustering, k)
	}
	if len(vecs) < k {
		return nil, fmt.Errorf("%w: need %d clusters, have %d texts", domain.ErrClustering, k, len(vecs))
	}
	zero := true
	for _, v := range vecs {
		if !v.IsZero() {
			zero = false
			break
		}
	}
	if zero && k > 1 {
		return nil, fmt.Errorf("%w: all %d feature vectors are zero", domain.ErrClustering, len(vecs))
	}
	if distinct := countDistinct(vecs); distinct < k {
		return nil, fmt.Errorf("%w: need %d clusters, have %d distinct texts", domain.ErrClustering, k, distinct)
	}

	x := denseMatrix(vecs, dim)
	nInit := km.NInit
	if nInit < 1 {
		nInit = 1
	}
	maxIter := km.MaxIter
	if maxIter < 1 {
		maxIter = 300
	}
	tol := km.Tol
	if tol <= 0 {
		tol = 1e-4
	}

	rng := rand.New(rand.NewSource(km.Seed))
	var best *Partition
	for run := 0; run < nInit; run++ {
		p := lloyd(x, k, seedCentroids(x, k, rng), maxIter, tol*meanVariance(x))
		if best == nil || p.Inertia < best.Inertia {
			best = p
		}
	}
	return best, nil
}

// seedCentroids picks k initial centroids with k-means++ sampling.
func seedCentroids(x [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(x)
	centroids := make([][]float64, 0, k)
	first := rng.Intn(n)
	centroids = append(centroids, append([]float64(nil), x[first]...))

	dist := make([]float64, n)
	for i := range x {
		dist[i] = squaredDistance(x[i], centroids[0])
	}
	for len(centroids) < k {
		var total float64
		for _, d := range dist {
			total += d
		}
		next := 0
		if total > 0 {
			target := rng.Float64() * total
			for i, d := range dist {
				target -= d
				if target <= 0 && d > 0 {
					next = i
					break
				}
				next = i
			}
		} else {
			next = rng.Intn(n)
		}
		c := append([]float64(nil), x[next]...)
		centroids = append(centroids, c)
		for i := range x {
			if d := squaredDistance(x[i], c); d < dist[i] {
				dist[i] = d
			}
		}
	}
	return centroids
}

func lloyd(x [][]float64, k int, centroids [][]float64, maxIter int, tol float64) *Partition {
	n := len(x)
	dim := len(centroids[0])
	labels := make([]int, n)

	iter := 0
	for iter < maxIter {
		iter++
		assign(x, centroids, labels)
		fillEmptyClusters(x, centroids, labels, k)

		shift := 0.0
		next := recompute(x, labels, k, dim)
		for c := range centroids {
			shift += squaredDistance(centroids[c], next[c])
		}
		centroids = next
		if shift <= tol {
			break
		}
	}
	// Final assignment against the last centroids keeps labels and
	// centroids consistent.
	assign(x, centroids, labels)
	fillEmptyClusters(x, centroids, labels, k)
	centroids = recompute(x, labels, k, dim)

	var inertia float64
	for i := range x {
		inertia += squaredDistance(x[i], centroids[labels[i]])
	}
	return &Partition{K: k, Labels: labels, Centroids: centroids, Inertia: inertia, Iterations: iter}
}

func assign(x [][]float64, centroids [][]float64, labels []int) {
	for i := range x {
		best, bestDist := 0, math.Inf(1)
		for c := range centroids {
			if d := squaredDistance(x[i], centroids[c]); d < bestDist {
				best, bestDist = c, d
			}
		}
		labels[i] = best
	}
}

// fillEmptyClusters moves the point farthest from its centroid, taken from a
// cluster with more than one member, into each empty cluster.
func fillEmptyClusters(x [][]float64, centroids [][]float64, labels []int, k int) {
	sizes := make([]int, k)
	for _, l := range labels {
		sizes[l]++
	}
	for c := 0; c < k; c++ {
		if sizes[c] > 0 {
			continue
		}
		far, farDist := -1, -1.0
		for i := range x {
			if sizes[labels[i]] < 2 {
				continue
			}
			if d := squaredDistance(x[i], centroids[labels[i]]); d > farDist {
				far, farDist = i, d
			}
		}
		if far < 0 {
			return
		}
		sizes[labels[far]]--
		labels[far] = c
		sizes[c]++
		centroids[c] = append([]float64(nil), x[far]...)
	}
}

func recompute(x [][]float64, labels []int, k, dim int) [][]float64 {
	groups := make([][][]float64, k)
	for i, l := range labels {
		groups[l] = append(groups[l], x[i])
	}
	out := make([][]float64, k)
	for c := range groups {
		out[c] = meanVector(groups[c], dim)
	}
	return out
}

func meanVariance(x [][]float64) float64 {
	if len(x) == 0 || len(x[0]) == 0 {
		return 0
	}
	mean := meanVector(x, len(x[0]))
	var total float64
	for _, row := range x {
		total += squaredDistance(row, mean)
	}
	return total / float64(len(x)*len(x[0]))
}

func countDistinct(vecs []SparseVector) int {
	var uniq []SparseVector
outer:
	for _, v := range vecs {
		for _, u := range uniq {
			if u.Equal(v) {
				continue outer
			}
		}
		uniq = append(uniq, v)
	}
	return len(uniq)
}
