package retrieval

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

// tokenize lowercases text and returns word tokens of two or more characters, minus stop words.
func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, tok := range raw {
		if _, stop := stopWords[tok]; !stop {
			out = append(out, tok)
		}
	}
	return out
}

// Rank scores each sentence against the query by cosine similarity of TF-IDF
// vectors fitted over the sentences plus the query, and returns the indices of
// the top k. Equal scores keep sentence order.
func Rank(query string, sentences []string, k int) []int {
	if k <= 0 || len(sentences) == 0 {
		return nil
	}

	docs := make([][]string, 0, len(sentences)+1)
	for _, s := range sentences {
		docs = append(docs, tokenize(s))
	}
	docs = append(docs, tokenize(query))

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, tok := range doc {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for term, count := range df {
		idf[term] = math.Log((1+n)/(1+float64(count))) + 1
	}

	vectors := make([]map[string]float64, len(docs))
	for i, doc := range docs {
		vectors[i] = weigh(doc, idf)
	}
	q := vectors[len(vectors)-1]

	scores := make([]float64, len(sentences))
	for i := range sentences {
		scores[i] = dot(q, vectors[i])
	}

	order := make([]int, len(sentences))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	if k > len(order) {
		k = len(order)
	}
	return order[:k]
}

// weigh builds an L2-normalized tf-idf vector.
func weigh(doc []string, idf map[string]float64) map[string]float64 {
	vec := make(map[string]float64, len(doc))
	for _, tok := range doc {
		vec[tok] += idf[tok]
	}
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for t := range vec {
		vec[t] /= norm
	}
	return vec
}

func dot(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for t, v := range a {
		sum += v * b[t]
	}
	return sum
}
