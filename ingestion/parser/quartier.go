package parser

import "strings"

// knownQuartiers is the list of neighbourhood tokens Format B
// classification checks against, case-insensitively. Seeded with the
// worked examples (Bonapriso, Simbock) and extended with other
// well-known Douala quartiers so the classifier has real coverage.
var knownQuartiers = []string{
	"bonapriso", "bonanjo", "akwa", "deido", "bali", "bonamoussadi",
	"makepe", "ndogbong", "logbaba", "kotto", "bepanda", "new-bell",
	"newbell", "yassa", "simbock", "nyalla", "bonaberi",
}

// knownCarriers is the list of carrier/driver labels a trailing create-body
// line may name; when matched it is removed from items and stored
// separately.
var knownCarriers = []string{
	"moto", "express", "dhl", "ups", "fedex", "colis-express", "rapid",
}

func IsKnownQuartier(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, q := range knownQuartiers {
		if s == q || strings.HasPrefix(s, q) {
			return true
		}
	}
	return false
}

func IsKnownCarrier(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range knownCarriers {
		if s == c {
			return true
		}
	}
	return false
}
