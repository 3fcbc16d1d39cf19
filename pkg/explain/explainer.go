// Package explain builds the three explanation facets for a species, asking
// the generation API first and falling back to rules over the evidence.
package explain

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	config "wildlife-threat-api/configs"
	"wildlife-threat-api/pkg/llm"
	"wildlife-threat-api/pkg/logger"
	"wildlife-threat-api/pkg/metrics"
	"wildlife-threat-api/pkg/retrieval"
)

// Facet keys as used in prompts.yaml.
const (
	FacetDefinition    = "definition"
	FacetWhyThreatened = "why_threatened"
	FacetHowToProtect  = "how_to_protect"
)

// Facets lists the facets in generation order.
var Facets = []string{FacetDefinition, FacetWhyThreatened, FacetHowToProtect}

const (
	SourceRemote   = "remote"
	SourceFallback = "fallback"
)

// Generator is the remote text generation call.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) llm.Result
}

// Explanation is the per-species explanation. JSON names match the public API.
type Explanation struct {
	Definition    string `json:"Definition"`
	WhyThreatened string `json:"Why Extinct"`
	HowToProtect  string `json:"How to Protect"`
	Evidence      string `json:"evidence"`
}

// Explainer renders facet prompts and collects their text.
type Explainer struct {
	gen     Generator
	prompts *config.PromptConfig
	metrics *metrics.Metrics
}

// NewExplainer checks that prompts defines every facet. gen and m may be nil;
// a nil generator means every facet uses its fallback.
func NewExplainer(gen Generator, prompts *config.PromptConfig, m *metrics.Metrics) (*Explainer, error) {
	if prompts == nil {
		return nil, fmt.Errorf("prompt config is required")
	}
	for _, key := range Facets {
		if _, ok := prompts.Facet(key); !ok {
			return nil, fmt.Errorf("prompt config is missing facet %q", key)
		}
	}
	return &Explainer{gen: gen, prompts: prompts, metrics: m}, nil
}

// Explain produces all facets sequentially from the same evidence.
func (e *Explainer) Explain(ctx context.Context, species string, ev retrieval.Evidence) Explanation {
	evidence := ev.Text()
	return Explanation{
		Definition:    e.Facet(ctx, FacetDefinition, species, evidence),
		WhyThreatened: e.Facet(ctx, FacetWhyThreatened, species, evidence),
		HowToProtect:  e.Facet(ctx, FacetHowToProtect, species, evidence),
		Evidence:      evidence,
	}
}

// Facet generates one facet. An unavailable generator falls back to Fallback.
func (e *Explainer) Facet(ctx context.Context, facet, species, evidence string) string {
	prompt, ok := e.prompts.Facet(facet)
	if ok && e.gen != nil {
		res := e.gen.Generate(ctx, e.prompts.System, prompt.Render(species, evidence))
		if res.OK() {
			e.metrics.ObserveGeneration(facet, SourceRemote)
			return res.Text()
		}
		logger.Debug("Generation unavailable, using fallback",
			zap.String("facet", facet),
			zap.String("species", species),
			zap.Error(res.Reason()))
	}

	e.metrics.ObserveGeneration(facet, SourceFallback)
	return Fallback(facet, evidence)
}
