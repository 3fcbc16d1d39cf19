package explain

import "strings"

const (
	NoInformation     = "Information not available."
	GenericThreat     = "This species faces threats from habitat loss, human activities, and environmental changes."
	GenericProtection = "Conservation measures include: 1) Habitat protection and restoration, 2) Anti-poaching enforcement and wildlife corridors, 3) Community education and sustainable development programs."
	Unavailable       = "Detailed explanation unavailable. Please check your API key or try again later."
)

var threatKeywords = []string{"threat", "endangered", "habitat loss", "poaching", "climate", "population decline"}

// Fallback produces a facet's text from the evidence alone. It is a pure
// function of its arguments.
func Fallback(facet, evidence string) string {
	switch facet {
	case FacetDefinition:
		return definitionFallback(evidence)
	case FacetWhyThreatened:
		return whyThreatenedFallback(evidence)
	case FacetHowToProtect:
		return GenericProtection
	default:
		return Unavailable
	}
}

func definitionFallback(evidence string) string {
	var picked []string
	for _, s := range fragments(evidence) {
		if len([]rune(s)) > 20 {
			picked = append(picked, s)
			if len(picked) == 2 {
				break
			}
		}
	}
	if len(picked) == 0 {
		return NoInformation
	}
	return strings.Join(picked, ". ") + "."
}

func whyThreatenedFallback(evidence string) string {
	var picked []string
	for _, s := range fragments(evidence) {
		if s != "" && mentionsThreat(s) {
			picked = append(picked, s)
			if len(picked) == 2 {
				break
			}
		}
	}
	if len(picked) == 0 {
		return GenericThreat
	}
	return strings.Join(picked, ". ") + "."
}

// fragments splits evidence on every period and trims the pieces.
func fragments(evidence string) []string {
	parts := strings.Split(evidence, ".")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func mentionsThreat(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range threatKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
