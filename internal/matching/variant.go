package matching

import (
	"regexp"
	"strconv"
	"strings"

	"leasing-catalog-api/internal/model"
)

// ParsedVariant holds the structured attributes found in a variant string
type ParsedVariant struct {
	Horsepower   *int
	CoreVariant  string
	Transmission model.Transmission
	AWD          bool
}

// VariantRule is one ordered parsing step. Pattern locates the marker in the
// text that is left after earlier rules, Apply records what it means.
type VariantRule struct {
	Name    string
	Pattern *regexp.Regexp
	// StripAll removes every occurrence instead of only the first
	StripAll bool
	// Skip disables the rule based on what earlier rules found
	Skip  func(p ParsedVariant) bool
	Apply func(p *ParsedVariant, groups []string)
}

// VariantRules is the rule order used by ParseVariant. Alternatives inside a
// pattern are listed longest first so overlapping markers strip completely.
var VariantRules = []VariantRule{
	{
		Name:    "horsepower",
		Pattern: regexp.MustCompile(`(?i)\b(\d{1,4})\s*hk\b`),
		Apply: func(p *ParsedVariant, groups []string) {
			if hp, err := strconv.Atoi(groups[1]); err == nil {
				p.Horsepower = &hp
			}
		},
	},
	{
		Name:     "automatic",
		Pattern:  regexp.MustCompile(`(?i)\b(?:s[\s-]?tronic|tiptronic|steptronic|automatgear|automatik|automatic|e-?cvt|cvt|dsg\d*|eat\d+)\b`),
		StripAll: true,
		Apply: func(p *ParsedVariant, _ []string) {
			p.Transmission = model.TransmissionAutomatic
		},
	},
	{
		Name:     "manual",
		Pattern:  regexp.MustCompile(`(?i)\b(?:manuelt?\s+gear|manuel|manual|[56]\s?mt)\b`),
		StripAll: true,
		Skip: func(p ParsedVariant) bool {
			return p.Transmission.Known()
		},
		Apply: func(p *ParsedVariant, _ []string) {
			p.Transmission = model.TransmissionManual
		},
	},
	{
		Name:     "awd",
		Pattern:  regexp.MustCompile(`(?i)\b(?:xdrive|4matic(?:\+|\b)|(?:4motion|quattro|all4|awd(?:-i)?|4wd|4x4|e-four)\b)`),
		StripAll: true,
		Apply: func(p *ParsedVariant, _ []string) {
			p.AWD = true
		},
	},
}

var (
	spaceBeforeSeparator = regexp.MustCompile(`\s+([,;])`)
	repeatedSeparators   = regexp.MustCompile(`([,;/|])(?:\s*[,;/|])+`)
	emptyParens          = regexp.MustCompile(`\(\s*\)`)
)

// coreTrimSet is stripped from both ends of the core variant
const coreTrimSet = " ,;:/-|"

// ParseVariant extracts horsepower, transmission, AWD and the core trim name
// from a free-text variant. Transmission stays unknown when no marker is found.
func ParseVariant(variant string) ParsedVariant {
	return parseVariantWith(VariantRules, variant)
}

func parseVariantWith(rules []VariantRule, variant string) ParsedVariant {
	var parsed ParsedVariant
	rest := variant

	for _, rule := range rules {
		if rule.Skip != nil && rule.Skip(parsed) {
			continue
		}
		loc := rule.Pattern.FindStringSubmatchIndex(rest)
		if loc == nil {
			continue
		}

		groups := make([]string, 0, len(loc)/2)
		for i := 0; i+1 < len(loc); i += 2 {
			if loc[i] < 0 {
				groups = append(groups, "")
				continue
			}
			groups = append(groups, rest[loc[i]:loc[i+1]])
		}
		rule.Apply(&parsed, groups)

		if rule.StripAll {
			rest = rule.Pattern.ReplaceAllString(rest, " ")
		} else {
			rest = rest[:loc[0]] + " " + rest[loc[1]:]
		}
	}

	parsed.CoreVariant = cleanCore(rest)
	return parsed
}

// cleanCore tidies what is left after markers were removed, keeping casing
// and internal symbols such as "+" and "."
func cleanCore(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = emptyParens.ReplaceAllString(s, "")
	s = spaceBeforeSeparator.ReplaceAllString(s, "$1")
	s = repeatedSeparators.ReplaceAllString(s, "$1")
	s = strings.Join(strings.Fields(s), " ")
	// a trailing "." is punctuation; inside a token such as "2.0" it is kept
	s = strings.TrimLeft(s, coreTrimSet)
	return strings.TrimRight(s, coreTrimSet+".")
}
