// Package crisis resolves region-specific emergency contact and guidance
// bundles shown to users in distress. Resolution is a static table lookup
// with one fallback entry; nothing here touches the store.
package crisis

import (
	"fmt"
	"strings"
)

// ResourceSet is a region-specific emergency contact/guidance bundle.
// Emergency is empty when no local emergency number is known.
type ResourceSet struct {
	RegionName string   `json:"regionName"`
	Emergency  string   `json:"emergency,omitempty"`
	CrisisLink string   `json:"crisisLink,omitempty"`
	Guidance   []string `json:"guidance"`
}

var baseGuidance = []string{
	"You are not alone. Reaching out is a strong first step.",
	"If you can, tell someone you trust how you are feeling right now.",
	"Try to stay in a safe place and avoid being alone tonight.",
	"If you are in immediate danger, go to your nearest emergency department.",
}

// regions keys are lowercase ISO-style codes.
var regions = map[string]ResourceSet{
	"bd": {
		RegionName: "Bangladesh",
		Emergency:  "999",
		CrisisLink: "https://findahelpline.com/countries/bd",
		Guidance:   baseGuidance,
	},
	"us": {
		RegionName: "United States",
		Emergency:  "988",
		CrisisLink: "https://findahelpline.com/countries/us",
		Guidance:   baseGuidance,
	},
	"uk": {
		RegionName: "United Kingdom",
		Emergency:  "999",
		CrisisLink: "https://findahelpline.com/countries/gb",
		Guidance:   baseGuidance,
	},
	"in": {
		RegionName: "India",
		Emergency:  "112",
		CrisisLink: "https://findahelpline.com/countries/in",
		Guidance:   baseGuidance,
	},
	"au": {
		RegionName: "Australia",
		Emergency:  "000",
		CrisisLink: "https://findahelpline.com/countries/au",
		Guidance:   baseGuidance,
	},
	"ca": {
		RegionName: "Canada",
		Emergency:  "988",
		CrisisLink: "https://findahelpline.com/countries/ca",
		Guidance:   baseGuidance,
	},
}

// fallback is returned for unknown regions. Emergency is deliberately empty:
// it signals "no known local emergency number" to Format.
var fallback = ResourceSet{
	RegionName: "International",
	CrisisLink: "https://findahelpline.com",
	Guidance:   baseGuidance,
}

// Resolver maps region codes to resource sets using a process-wide default
// region for empty input.
type Resolver struct {
	defaultRegion string
}

// NewResolver creates a resolver. defaultRegion is used when Resolve is
// called with an empty region code.
func NewResolver(defaultRegion string) *Resolver {
	return &Resolver{defaultRegion: defaultRegion}
}

// Resolve returns the resource set for the given region code.
// Lookup is case-insensitive; unknown regions get the fallback set.
// Always returns a valid result; the returned set is a copy.
func (r *Resolver) Resolve(region string) ResourceSet {
	code := strings.ToLower(strings.TrimSpace(region))
	if code == "" {
		code = strings.ToLower(r.defaultRegion)
	}
	rs, ok := regions[code]
	if !ok {
		rs = fallback
	}
	out := rs
	out.Guidance = append([]string(nil), rs.Guidance...)
	return out
}

// Format renders a resource set as a newline-joined advisory:
// an emergency-number line, one bullet per guidance line that does not
// repeat the emergency-department wording, and a trailing crisis link.
func Format(rs ResourceSet) string {
	var lines []string

	if rs.RegionName != "" && rs.Emergency != "" {
		lines = append(lines, fmt.Sprintf("If you are in immediate danger, call %s (%s) or go to your nearest emergency department.", rs.Emergency, rs.RegionName))
	} else {
		lines = append(lines, "If you are in immediate danger, call your local emergency number or go to your nearest emergency department.")
	}

	for _, g := range rs.Guidance {
		if strings.Contains(g, "emergency department") {
			continue
		}
		lines = append(lines, "- "+g)
	}

	if rs.CrisisLink != "" {
		lines = append(lines, "Find a crisis centre near you: "+rs.CrisisLink)
	}

	return strings.Join(lines, "\n")
}
