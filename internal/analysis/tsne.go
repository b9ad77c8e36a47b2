package analysis

import (
	"math"
	"math/rand"
)

// Point is a 2-D projection coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TSNE projects vectors to two dimensions with exact t-distributed
// stochastic neighbor embedding. Identical input and Seed give identical
// output.
type TSNE struct {
	Perplexity        float64
	Iterations        int
	LearningRate      float64
	EarlyExaggeration float64
	Seed              int64
}

const (
	exaggerationIters = 250
	minGain           = 0.01
	perplexityTol     = 1e-5
	perplexitySteps   = 100
	minProbability    = 1e-12
)

// Embed returns one point per input vector. Fewer than two inputs have no
// neighborhood to preserve and map to the origin.
func (t *TSNE) Embed(vecs []SparseVector, dim int) []Point {
	n := len(vecs)
	out := make([]Point, n)
	if n < 2 {
		return out
	}

	iters := t.Iterations
	if iters < exaggerationIters+50 {
		iters = exaggerationIters + 50
	}
	exaggeration := t.EarlyExaggeration
	if exaggeration <= 0 {
		exaggeration = 12
	}
	lr := t.LearningRate
	if lr <= 0 {
		lr = math.Max(float64(n)/exaggeration/4, 50)
	}

	p := jointProbabilities(denseMatrix(vecs, dim), t.perplexity(n))

	rng := rand.New(rand.NewSource(t.Seed))
	y := make([][2]float64, n)
	for i := range y {
		y[i] = [2]float64{rng.NormFloat64() * 1e-4, rng.NormFloat64() * 1e-4}
	}
	update := make([][2]float64, n)
	gains := make([][2]float64, n)
	for i := range gains {
		gains[i] = [2]float64{1, 1}
	}

	num := make([][]float64, n)
	for i := range num {
		num[i] = make([]float64, n)
	}
	grad := make([][2]float64, n)

	for it := 0; it < iters; it++ {
		exag, momentum := 1.0, 0.8
		if it < exaggerationIters {
			exag, momentum = exaggeration, 0.5
		}

		var sumQ float64
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx, dy := y[i][0]-y[j][0], y[i][1]-y[j][1]
				q := 1 / (1 + dx*dx + dy*dy)
				num[i][j], num[j][i] = q, q
				sumQ += 2 * q
			}
		}
		if sumQ == 0 {
			sumQ = minProbability
		}

		for i := 0; i < n; i++ {
			var gx, gy float64
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				q := math.Max(num[i][j]/sumQ, minProbability)
				w := (exag*p[i][j] - q) * num[i][j]
				gx += w * (y[i][0] - y[j][0])
				gy += w * (y[i][1] - y[j][1])
			}
			grad[i] = [2]float64{4 * gx, 4 * gy}
		}

		for i := 0; i < n; i++ {
			for d := 0; d < 2; d++ {
				if (grad[i][d] > 0) != (update[i][d] > 0) {
					gains[i][d] += 0.2
				} else {
					gains[i][d] *= 0.8
				}
				if gains[i][d] < minGain {
					gains[i][d] = minGain
				}
				update[i][d] = momentum*update[i][d] - lr*gains[i][d]*grad[i][d]
				y[i][d] += update[i][d]
			}
		}
		recenter(y)
	}

	for i := range y {
		out[i] = Point{X: y[i][0], Y: y[i][1]}
	}
	return out
}

// perplexity clamps the configured value so every point keeps enough
// neighbors to calibrate against.
func (t *TSNE) perplexity(n int) float64 {
	perp := t.Perplexity
	if perp <= 0 {
		perp = 30
	}
	limit := float64(n-1) / 3
	if limit < 1 {
		limit = 1
	}
	if perp > limit {
		perp = limit
	}
	return perp
}

// jointProbabilities calibrates per-point Gaussian bandwidths to the target
// perplexity and returns the symmetrized affinity matrix.
func jointProbabilities(x [][]float64, perplexity float64) [][]float64 {
	n := len(x)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := squaredDistance(x[i], x[j])
			dist[i][j], dist[j][i] = d, d
		}
	}

	target := math.Log(perplexity)
	cond := make([][]float64, n)
	for i := 0; i < n; i++ {
		cond[i] = conditionalRow(dist[i], i, target)
	}

	p := make([][]float64, n)
	for i := range p {
		p[i] = make([]float64, n)
	}
	denom := 2 * float64(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			p[i][j] = math.Max((cond[i][j]+cond[j][i])/denom, minProbability)
		}
	}
	return p
}

// conditionalRow binary-searches the precision beta whose row entropy
// matches target.
func conditionalRow(dist []float64, self int, target float64) []float64 {
	row := make([]float64, len(dist))
	beta, lo, hi := 1.0, math.Inf(-1), math.Inf(1)

	for step := 0; step < perplexitySteps; step++ {
		var sum float64
		for j, d := range dist {
			if j == self {
				row[j] = 0
				continue
			}
			row[j] = math.Exp(-d * beta)
			sum += row[j]
		}
		if sum == 0 {
			sum = minProbability
		}
		var weighted float64
		for j, d := range dist {
			row[j] /= sum
			weighted += d * row[j]
		}
		entropy := math.Log(sum) + beta*weighted

		diff := entropy - target
		if math.Abs(diff) <= perplexityTol {
			break
		}
		if diff > 0 {
			lo = beta
			if math.IsInf(hi, 1) {
				beta *= 2
			} else {
				beta = (beta + hi) / 2
			}
		} else {
			hi = beta
			if math.IsInf(lo, -1) {
				beta /= 2
			} else {
				beta = (beta + lo) / 2
			}
		}
	}
	return row
}

func recenter(y [][2]float64) {
	var mx, my float64
	for i := range y {
		mx += y[i][0]
		my += y[i][1]
	}
	mx /= float64(len(y))
	my /= float64(len(y))
	for i := range y {
		y[i][0] -= mx
		y[i][1] -= my
	}
}
