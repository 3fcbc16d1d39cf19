package retrieval

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"wildlife-threat-api/pkg/logger"
	"wildlife-threat-api/pkg/metrics"
	"wildlife-threat-api/pkg/wiki"
)

// DefaultTopK is the number of sentences returned when k is not positive.
const DefaultTopK = 5

// ArticleSource returns the plain text of an encyclopedia article.
// A missing article is reported as wiki.ErrNotFound.
type ArticleSource interface {
	Article(ctx context.Context, title string) (string, error)
}

// Evidence is the ranked sentence list retrieved for one species.
type Evidence struct {
	Species   string   `json:"species"`
	Sentences []string `json:"sentences"`
}

// Text joins the sentences one per line.
func (e Evidence) Text() string {
	return strings.Join(e.Sentences, "\n")
}

// Empty reports whether nothing was retrieved.
func (e Evidence) Empty() bool { return len(e.Sentences) == 0 }

// Retriever fetches an article and keeps the sentences closest to the species name.
type Retriever struct {
	source  ArticleSource
	metrics *metrics.Metrics
	topK    int
}

// NewRetriever builds a retriever. m may be nil.
func NewRetriever(source ArticleSource, m *metrics.Metrics, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{source: source, metrics: m, topK: topK}
}

// TopK is the default number of sentences per retrieval.
func (r *Retriever) TopK() int { return r.topK }

// Retrieve returns at most k sentences ranked by similarity to the species
// name. A missing article, an article without qualifying sentences, or a
// failed fetch all give empty evidence rather than an error.
func (r *Retriever) Retrieve(ctx context.Context, species string, k int) Evidence {
	if k <= 0 {
		k = r.topK
	}
	start := time.Now()
	ev := Evidence{Species: species}
	defer func() {
		r.metrics.ObserveRetrieval(time.Since(start), len(ev.Sentences))
	}()

	text, err := r.source.Article(ctx, species)
	if err != nil {
		if errors.Is(err, wiki.ErrNotFound) {
			logger.Debug("No encyclopedia article", zap.String("species", species))
		} else {
			logger.Warn("Evidence fetch failed, continuing without evidence",
				zap.String("species", species),
				zap.Error(err))
		}
		return ev
	}

	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return ev
	}

	for _, i := range Rank(species, sentences, k) {
		ev.Sentences = append(ev.Sentences, sentences[i])
	}
	return ev
}
