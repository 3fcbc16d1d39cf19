package classifier

import (
	"context"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Forest is a bagged ensemble of CART trees whose prediction is the mean of the
// per-tree leaf distributions.
type Forest struct {
	trees    []*tree
	nClasses int
}

type forestParams struct {
	trees    int
	maxDepth int
	seed     int64
	balanced bool
	workers  int
}

// fitForest trains every tree in parallel. Seeds are drawn up front from the
// master seed, so the result does not depend on scheduling.
func fitForest(ctx context.Context, X [][]float64, y []int, nClasses int, p forestParams) (*Forest, error) {
	n := len(X)
	classWeight := make([]float64, nClasses)
	for c := range classWeight {
		classWeight[c] = 1
	}
	if p.balanced {
		counts := make([]int, nClasses)
		for _, c := range y {
			counts[c]++
		}
		present := 0
		for _, cnt := range counts {
			if cnt > 0 {
				present++
			}
		}
		for c, cnt := range counts {
			if cnt > 0 {
				classWeight[c] = float64(n) / float64(present*cnt)
			}
		}
	}

	maxFeatures := int(math.Sqrt(float64(len(X[0]))))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	master := rand.New(rand.NewSource(p.seed))
	seeds := make([]int64, p.trees)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	workers := p.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	trees := make([]*tree, p.trees)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range trees {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(seeds[i]))

			// bootstrap draw counts become sample weights
			w := make([]float64, n)
			for j := 0; j < n; j++ {
				w[rng.Intn(n)]++
			}
			samples := make([]int, 0, n)
			for j := range w {
				if w[j] > 0 {
					w[j] *= classWeight[y[j]]
					samples = append(samples, j)
				}
			}

			b := &treeBuilder{
				X:           X,
				y:           y,
				w:           w,
				nClasses:    nClasses,
				maxFeatures: maxFeatures,
				maxDepth:    p.maxDepth,
				rng:         rng,
			}
			trees[i] = b.grow(samples)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Forest{trees: trees, nClasses: nClasses}, nil
}

// proba averages the leaf distributions of all trees.
func (f *Forest) proba(x []float64) []float64 {
	out := make([]float64, f.nClasses)
	for _, t := range f.trees {
		for c, p := range t.proba(x) {
			out[c] += p
		}
	}
	for c := range out {
		out[c] /= float64(len(f.trees))
	}
	return out
}

// MaxDepth is the depth of the deepest tree.
func (f *Forest) MaxDepth() int {
	d := 0
	for _, t := range f.trees {
		d = max(d, t.depth())
	}
	return d
}

func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
