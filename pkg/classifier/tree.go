package classifier

import (
	"math"
	"math/rand"
	"sort"
)

const weightEpsilon = 1e-12

type node struct {
	leaf      bool
	feature   int
	threshold float64
	left      int
	right     int
	// class probabilities, set on leaves only
	value []float64
}

// tree is a CART classifier stored as a flat node slice; node 0 is the root.
type tree struct {
	nodes []node
}

func (t *tree) proba(x []float64) []float64 {
	n := &t.nodes[0]
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = &t.nodes[n.left]
		} else {
			n = &t.nodes[n.right]
		}
	}
	return n.value
}

func (t *tree) depth() int {
	var walk func(i int) int
	walk = func(i int) int {
		n := t.nodes[i]
		if n.leaf {
			return 0
		}
		return 1 + max(walk(n.left), walk(n.right))
	}
	return walk(0)
}

// treeBuilder grows one tree on weighted samples using Gini impurity.
type treeBuilder struct {
	X           [][]float64
	y           []int
	w           []float64
	nClasses    int
	maxFeatures int
	maxDepth    int
	rng         *rand.Rand

	nodes []node
}

func (b *treeBuilder) grow(samples []int) *tree {
	b.nodes = b.nodes[:0]
	b.build(samples, 0)
	return &tree{nodes: b.nodes}
}

func (b *treeBuilder) build(samples []int, depth int) int {
	counts, total := b.classWeights(samples)
	id := len(b.nodes)
	b.nodes = append(b.nodes, node{leaf: true, value: normalize(counts, total)})

	if depth >= b.maxDepth || len(samples) < 2 || isPure(counts) {
		return id
	}
	feature, threshold, ok := b.bestSplit(samples, total)
	if !ok {
		return id
	}

	var left, right []int
	for _, s := range samples {
		if b.X[s][feature] <= threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}
	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.nodes[id] = node{feature: feature, threshold: threshold, left: l, right: r}
	return id
}

func (b *treeBuilder) classWeights(samples []int) ([]float64, float64) {
	counts := make([]float64, b.nClasses)
	var total float64
	for _, s := range samples {
		counts[b.y[s]] += b.w[s]
		total += b.w[s]
	}
	return counts, total
}

// bestSplit draws features in random order and evaluates them until maxFeatures
// non-constant ones have been seen, keeping the split with the lowest weighted child impurity.
func (b *treeBuilder) bestSplit(samples []int, total float64) (int, float64, bool) {
	nFeatures := len(b.X[0])
	order := b.rng.Perm(nFeatures)

	bestImpurity := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0

	sorted := make([]int, len(samples))
	left := make([]float64, b.nClasses)
	right := make([]float64, b.nClasses)

	visited := 0
	for _, f := range order {
		if visited >= b.maxFeatures {
			break
		}
		copy(sorted, samples)
		sort.Slice(sorted, func(i, j int) bool { return b.X[sorted[i]][f] < b.X[sorted[j]][f] })
		lo, hi := b.X[sorted[0]][f], b.X[sorted[len(sorted)-1]][f]
		if lo == hi {
			continue
		}
		visited++

		for c := range left {
			left[c] = 0
		}
		rightCounts, _ := b.classWeights(sorted)
		copy(right, rightCounts)
		var wl float64
		wr := total

		for p := 0; p < len(sorted)-1; p++ {
			s := sorted[p]
			left[b.y[s]] += b.w[s]
			right[b.y[s]] -= b.w[s]
			wl += b.w[s]
			wr -= b.w[s]

			v, next := b.X[s][f], b.X[sorted[p+1]][f]
			if v == next {
				continue
			}
			impurity := wl*gini(left, wl) + wr*gini(right, wr)
			if impurity < bestImpurity-weightEpsilon {
				bestImpurity = impurity
				bestFeature = f
				bestThreshold = v + (next-v)/2
				if bestThreshold >= next {
					bestThreshold = v
				}
			}
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

func gini(counts []float64, total float64) float64 {
	if total <= weightEpsilon {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		p := c / total
		sum += p * p
	}
	return 1 - sum
}

func isPure(counts []float64) bool {
	seen := 0
	for _, c := range counts {
		if c > weightEpsilon {
			seen++
		}
	}
	return seen <= 1
}

func normalize(counts []float64, total float64) []float64 {
	out := make([]float64, len(counts))
	if total <= weightEpsilon {
		return out
	}
	for i, c := range counts {
		out[i] = c / total
	}
	return out
}
