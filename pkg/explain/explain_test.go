package explain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "wildlife-threat-api/configs"
	"wildlife-threat-api/pkg/llm"
	"wildlife-threat-api/pkg/metrics"
	"wildlife-threat-api/pkg/retrieval"
)

type stubGenerator struct {
	reply   func(prompt string) llm.Result
	prompts []string
	systems []string
}

func (s *stubGenerator) Generate(_ context.Context, system, prompt string) llm.Result {
	s.systems = append(s.systems, system)
	s.prompts = append(s.prompts, prompt)
	return s.reply(prompt)
}

func defaultPrompts(t *testing.T) *config.PromptConfig {
	t.Helper()
	p, err := config.LoadPrompts("")
	require.NoError(t, err)
	return p
}

var tigerEvidence = retrieval.Evidence{
	Species: "Panthera tigris",
	Sentences: []string{
		"The tiger (Panthera tigris) is a large cat native to Asia.",
		"It is listed as Endangered on the IUCN Red List.",
		"Poaching for skins and body parts remains a major problem.",
		"Tigers are apex predators.",
	},
}

func TestFallbackDefinition(t *testing.T) {
	got := Fallback(FacetDefinition, tigerEvidence.Text())
	assert.Equal(t, "The tiger (Panthera tigris) is a large cat native to Asia. It is listed as Endangered on the IUCN Red List.", got)

	assert.Equal(t, NoInformation, Fallback(FacetDefinition, ""))
	assert.Equal(t, NoInformation, Fallback(FacetDefinition, "Short. Tiny."))
}

func TestFallbackWhyThreatened(t *testing.T) {
	got := Fallback(FacetWhyThreatened, tigerEvidence.Text())
	assert.Equal(t, "It is listed as Endangered on the IUCN Red List. Poaching for skins and body parts remains a major problem.", got)

	assert.Equal(t, GenericThreat, Fallback(FacetWhyThreatened, "Tigers are apex predators."))
	assert.Equal(t, GenericThreat, Fallback(FacetWhyThreatened, ""))
}

func TestFallbackWhyThreatenedIsDeterministic(t *testing.T) {
	evidence := "Climate change shifts its range.\nHabitat loss continues in the lowlands.\nA third threat sentence."
	first := Fallback(FacetWhyThreatened, evidence)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Fallback(FacetWhyThreatened, evidence))
	}
	assert.Equal(t, "Climate change shifts its range. Habitat loss continues in the lowlands.", first)
}

func TestFallbackHowToProtectIgnoresEvidence(t *testing.T) {
	assert.Equal(t, GenericProtection, Fallback(FacetHowToProtect, ""))
	assert.Equal(t, GenericProtection, Fallback(FacetHowToProtect, tigerEvidence.Text()))
}

func TestFallbackUnknownFacet(t *testing.T) {
	assert.Equal(t, Unavailable, Fallback("habitat_map", tigerEvidence.Text()))
}

func TestExplainUsesRemoteText(t *testing.T) {
	gen := &stubGenerator{reply: func(prompt string) llm.Result {
		return llm.Ok("remote: " + strings.SplitN(prompt, "\n", 2)[0])
	}}
	m := metrics.New()
	e, err := NewExplainer(gen, defaultPrompts(t), m)
	require.NoError(t, err)

	got := e.Explain(context.Background(), "Panthera tigris", tigerEvidence)
	assert.Equal(t, "remote: Define Panthera tigris in 2 lines:", got.Definition)
	assert.Equal(t, "remote: Explain why Panthera tigris is threatened or endangered in 2-3 lines:", got.WhyThreatened)
	assert.Equal(t, "remote: Suggest 3 protection steps for Panthera tigris in 2-3 lines:", got.HowToProtect)
	assert.Equal(t, tigerEvidence.Text(), got.Evidence)

	require.Len(t, gen.prompts, 3)
	for i, p := range gen.prompts {
		assert.True(t, strings.HasSuffix(p, tigerEvidence.Text()), "prompt %d carries evidence", i)
		assert.Equal(t, "You are a helpful assistant.", gen.systems[i])
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Generations.WithLabelValues(FacetDefinition, SourceRemote)))
}

func TestExplainFallsBackWhenUnavailable(t *testing.T) {
	gen := &stubGenerator{reply: func(string) llm.Result {
		return llm.Unavailable(errors.New("status 503"))
	}}
	m := metrics.New()
	e, err := NewExplainer(gen, defaultPrompts(t), m)
	require.NoError(t, err)

	got := e.Explain(context.Background(), "Panthera tigris", tigerEvidence)
	assert.Equal(t, Fallback(FacetDefinition, tigerEvidence.Text()), got.Definition)
	assert.Equal(t, Fallback(FacetWhyThreatened, tigerEvidence.Text()), got.WhyThreatened)
	assert.Equal(t, GenericProtection, got.HowToProtect)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Generations.WithLabelValues(FacetHowToProtect, SourceFallback)))
}

func TestExplainWithDisabledClientAndNoEvidence(t *testing.T) {
	client, err := llm.NewClient(llm.Config{})
	require.NoError(t, err)
	e, err := NewExplainer(client, defaultPrompts(t), nil)
	require.NoError(t, err)

	got := e.Explain(context.Background(), "Unicornis", retrieval.Evidence{Species: "Unicornis"})
	assert.Equal(t, NoInformation, got.Definition)
	assert.Equal(t, GenericThreat, got.WhyThreatened)
	assert.Equal(t, GenericProtection, got.HowToProtect)
	assert.Empty(t, got.Evidence)
}

func TestNewExplainerRequiresAllFacets(t *testing.T) {
	_, err := NewExplainer(nil, nil, nil)
	assert.Error(t, err)

	partial, err := config.ParsePrompts([]byte(`
facets:
  - key: definition
    title: Definition
    template: "Define {species}"
`))
	require.NoError(t, err)
	_, err = NewExplainer(nil, partial, nil)
	assert.ErrorContains(t, err, FacetWhyThreatened)
}
