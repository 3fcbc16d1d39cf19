package dataset

import "strings"

// ThreatLevel is an IUCN-style extinction-risk code.
type ThreatLevel string

const (
	CriticallyEndangered ThreatLevel = "CR"
	Endangered           ThreatLevel = "EN"
	Vulnerable           ThreatLevel = "VU"
	NearThreatened       ThreatLevel = "NT"
	LeastConcern         ThreatLevel = "LC"
)

// Levels lists every valid threat level from most to least severe.
var Levels = []ThreatLevel{CriticallyEndangered, Endangered, Vulnerable, NearThreatened, LeastConcern}

var threatNames = map[string]ThreatLevel{
	"Critically Endangered": CriticallyEndangered,
	"Endangered":            Endangered,
	"Vulnerable":            Vulnerable,
	"Near Threatened":       NearThreatened,
	"Least Concern":         LeastConcern,
	"CR":                    CriticallyEndangered,
	"EN":                    Endangered,
	"VU":                    Vulnerable,
	"NT":                    NearThreatened,
	"LC":                    LeastConcern,
}

// Valid reports whether l is one of the five threat codes.
func (l ThreatLevel) Valid() bool {
	for _, v := range Levels {
		if l == v {
			return true
		}
	}
	return false
}

// NormalizeThreat maps a long IUCN category name or short code to its code.
// Missing or unrecognized values are Least Concern.
func NormalizeThreat(raw string) ThreatLevel {
	if level, ok := threatNames[strings.TrimSpace(raw)]; ok {
		return level
	}
	return LeastConcern
}

var trendValues = map[string]int{
	"Increasing": 1,
	"Stable":     0,
	"Decreasing": -1,
}

// TrendValue maps a population trend to -1, 0 or 1; anything unmapped is 0.
func TrendValue(raw string) int {
	return trendValues[strings.TrimSpace(raw)]
}

// CleanHabitat is the whitespace-free habitat key used for one-hot columns.
func CleanHabitat(habitat string) string {
	return strings.ReplaceAll(habitat, " ", "_")
}

var aquaticKeywords = []string{"ocean", "river", "reef", "sea", "coastal"}

// IsAquatic reports whether the habitat text names a marine or freshwater environment.
func IsAquatic(habitat string) bool {
	return containsAnyFold(habitat, aquaticKeywords...)
}

func IsMammal(class string) bool  { return containsAnyFold(class, "mammalia") }
func IsBird(class string) bool    { return containsAnyFold(class, "aves") }
func IsReptile(class string) bool { return containsAnyFold(class, "reptilia") }

func containsAnyFold(s string, needles ...string) bool {
	lower := strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}
