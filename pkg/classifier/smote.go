package classifier

import (
	"math"
	"math/rand"
	"sort"
)

// SMOTE oversamples every minority class up to the majority class count by
// interpolating between a sample and one of its nearest same-class neighbours.
type SMOTE struct {
	K    int
	Seed int64
}

// Resample returns the original samples followed by the synthetic ones.
// Classes are processed in index order so the output only depends on the seed.
func (s SMOTE) Resample(X [][]float64, y []int, nClasses int) ([][]float64, []int) {
	byClass := make([][]int, nClasses)
	for i, c := range y {
		byClass[c] = append(byClass[c], i)
	}
	majority := 0
	for _, members := range byClass {
		if len(members) > majority {
			majority = len(members)
		}
	}

	outX := make([][]float64, len(X), len(X)+nClasses*majority)
	copy(outX, X)
	outY := make([]int, len(y), cap(outX))
	copy(outY, y)

	rng := rand.New(rand.NewSource(s.Seed))
	for c, members := range byClass {
		need := majority - len(members)
		if need <= 0 || len(members) == 0 {
			continue
		}

		k := s.K
		if k > len(members)-1 {
			k = len(members) - 1
		}
		if k < 1 {
			// a lone sample has no neighbours to interpolate with
			for j := 0; j < need; j++ {
				outX = append(outX, cloneRow(X[members[0]]))
				outY = append(outY, c)
			}
			continue
		}

		neighbours := make([][]int, len(members))
		for j, m := range members {
			neighbours[j] = nearest(X, m, members, k)
		}
		for j := 0; j < need; j++ {
			pick := rng.Intn(len(members))
			nn := neighbours[pick][rng.Intn(k)]
			gap := rng.Float64()

			base, other := X[members[pick]], X[nn]
			synth := make([]float64, len(base))
			for f := range base {
				synth[f] = base[f] + gap*(other[f]-base[f])
			}
			outX = append(outX, synth)
			outY = append(outY, c)
		}
	}
	return outX, outY
}

// nearest returns the k members closest to X[target], excluding target itself.
// Equal distances keep member order.
func nearest(X [][]float64, target int, members []int, k int) []int {
	type candidate struct {
		idx  int
		dist float64
	}
	cands := make([]candidate, 0, len(members)-1)
	for _, m := range members {
		if m == target {
			continue
		}
		cands = append(cands, candidate{idx: m, dist: euclidean(X[target], X[m])})
	}
	sort.SliceStable(cands, func(a, b int) bool { return cands[a].dist < cands[b].dist })

	out := make([]int, k)
	for i := range out {
		out[i] = cands[i].idx
	}
	return out
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func cloneRow(r []float64) []float64 {
	out := make([]float64, len(r))
	copy(out, r)
	return out
}
