package matching

import (
	"math"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"leasing-catalog-api/internal/model"
)

// MatchPolicy holds the tunable thresholds of the matcher.
//
// HorsepowerTolerance and UnknownTransmissionMatches encode known extraction
// defects: power figures that drift by a couple of HK between price lists, and
// models for which the extractor never reports a gearbox.
type MatchPolicy struct {
	// Horsepower differences up to this many HK count as near-equal
	HorsepowerTolerance int
	// Horsepower term awarded for a near-equal difference
	NearHorsepowerScore float64
	// Beyond the tolerance the horsepower term falls to 0 over this many HK
	HorsepowerFalloff int
	// Minimum composite score for a fuzzy match
	FuzzyAcceptance float64
	// Fuzzy confidence is capped here; 1.0 is reserved for exact matches
	MaxFuzzyConfidence float64
	// An unknown transmission on either side is compatible with anything
	UnknownTransmissionMatches bool

	IdentityWeight     float64
	HorsepowerWeight   float64
	TransmissionWeight float64
	AWDWeight          float64
}

// DefaultMatchPolicy returns the production thresholds
func DefaultMatchPolicy() MatchPolicy {
	return MatchPolicy{
		HorsepowerTolerance:        2,
		NearHorsepowerScore:        0.9,
		HorsepowerFalloff:          50,
		FuzzyAcceptance:            0.70,
		MaxFuzzyConfidence:         0.99,
		UnknownTransmissionMatches: true,
		IdentityWeight:             0.55,
		HorsepowerWeight:           0.25,
		TransmissionWeight:         0.10,
		AWDWeight:                  0.10,
	}
}

// CandidateScore is the per-candidate scoring breakdown
type CandidateScore struct {
	Identity     float64
	Horsepower   float64
	Transmission float64
	AWD          float64
	Total        float64
	Exact        bool
	// Number of compared fields that differ or are missing on one side
	Differences int
}

// vehicleFeatures are the effective attributes used for comparison
type vehicleFeatures struct {
	variant      string
	core         string
	horsepower   int
	transmission model.Transmission
	awd          bool
}

func featuresOf(id model.VehicleIdentity, spec model.VehicleSpec) vehicleFeatures {
	parsed := ParseVariant(id.Variant)

	f := vehicleFeatures{
		variant:      Normalize(id.Variant),
		core:         Normalize(parsed.CoreVariant),
		transmission: parsed.Transmission,
		awd:          parsed.AWD,
	}

	if spec.Horsepower != nil && *spec.Horsepower > 0 {
		f.horsepower = *spec.Horsepower
	} else if parsed.Horsepower != nil {
		f.horsepower = *parsed.Horsepower
	}

	if spec.Transmission.Known() {
		f.transmission = spec.Transmission
	}

	return f
}

// Matcher reconciles extracted cars against existing listings
type Matcher struct {
	policy MatchPolicy
}

// NewMatcher creates a matcher with the given policy
func NewMatcher(policy MatchPolicy) *Matcher {
	return &Matcher{policy: policy}
}

// Policy returns the thresholds the matcher was built with
func (m *Matcher) Policy() MatchPolicy {
	return m.policy
}

// Match finds the listing the extracted car corresponds to. Candidates with a
// different make or model are ignored; no candidate left means a new vehicle.
// Match never fails: missing fields only lower the confidence.
func (m *Matcher) Match(extracted model.ExtractedCar, candidates []model.ExistingListing) model.MatchResult {
	makeKey := Normalize(extracted.Make)
	modelKey := Normalize(extracted.Model)
	if makeKey == "" || modelKey == "" {
		return noMatch()
	}

	want := featuresOf(extracted.VehicleIdentity, extracted.VehicleSpec)

	var (
		best      *model.ExistingListing
		bestScore CandidateScore
	)
	for i := range candidates {
		candidate := &candidates[i]
		if Normalize(candidate.Make) != makeKey || Normalize(candidate.Model) != modelKey {
			continue
		}

		score := m.scoreCandidate(want, featuresOf(candidate.VehicleIdentity, candidate.VehicleSpec))
		if best == nil || outranks(score, bestScore) {
			best = candidate
			bestScore = score
		}
	}

	if best == nil {
		return noMatch()
	}

	var result model.MatchResult
	switch {
	case bestScore.Exact:
		result.Method = model.MatchExact
		result.Confidence = 1.0
	case bestScore.Total >= m.policy.FuzzyAcceptance:
		result.Method = model.MatchFuzzy
		result.Confidence = math.Min(bestScore.Total, m.policy.MaxFuzzyConfidence)
	default:
		return noMatch()
	}

	id := best.ID
	result.MatchedListingID = &id

	diff := DiffOffers(best.Offers, extracted.Offers)
	result.Changed = !diff.Empty()
	if result.Changed {
		result.OfferDiff = &diff
	}

	return result
}

func noMatch() model.MatchResult {
	return model.MatchResult{Method: model.MatchNone}
}

// outranks reports whether a beats b. Exact beats fuzzy, then the higher
// total, then fewer differing fields. Full ties keep b, the earlier candidate.
func outranks(a, b CandidateScore) bool {
	if a.Exact != b.Exact {
		return a.Exact
	}
	if !a.Exact && a.Total != b.Total {
		return a.Total > b.Total
	}
	return a.Differences < b.Differences
}

// scoreCandidate compares the extracted car with one same make/model candidate
func (m *Matcher) scoreCandidate(want, have vehicleFeatures) CandidateScore {
	p := m.policy
	score := CandidateScore{}

	// Identity (dominant weight)
	switch {
	case want.core == "" || have.core == "":
		score.Identity = 0
	case want.core == have.core:
		score.Identity = 1
	default:
		score.Identity = similarity(want.core, have.core)
	}
	if want.variant == "" || want.variant != have.variant {
		score.Differences++
	}

	// Horsepower - tolerance ±HorsepowerTolerance HK
	hpConflict := false
	if want.horsepower > 0 && have.horsepower > 0 {
		diff := want.horsepower - have.horsepower
		if diff < 0 {
			diff = -diff
		}
		switch {
		case diff == 0:
			score.Horsepower = 1
		case diff <= p.HorsepowerTolerance:
			score.Horsepower = p.NearHorsepowerScore
			score.Differences++
		default:
			hpConflict = true
			score.Differences++
			if p.HorsepowerFalloff > 0 {
				decay := 1 - float64(diff-p.HorsepowerTolerance)/float64(p.HorsepowerFalloff)
				score.Horsepower = math.Max(0, p.NearHorsepowerScore*decay)
			}
		}
	} else if want.horsepower > 0 || have.horsepower > 0 {
		score.Differences++
	}

	// Transmission - unknown is compatible unless the policy says otherwise
	transConflict := false
	if want.transmission.Known() && have.transmission.Known() {
		if want.transmission == have.transmission {
			score.Transmission = 1
		} else {
			transConflict = true
			score.Differences++
		}
	} else if p.UnknownTransmissionMatches {
		score.Transmission = 1
	} else {
		score.Differences++
	}

	// AWD
	if want.awd == have.awd {
		score.AWD = 1
	} else {
		score.Differences++
	}

	weights := p.IdentityWeight + p.HorsepowerWeight + p.TransmissionWeight + p.AWDWeight
	if weights > 0 {
		score.Total = (score.Identity*p.IdentityWeight +
			score.Horsepower*p.HorsepowerWeight +
			score.Transmission*p.TransmissionWeight +
			score.AWD*p.AWDWeight) / weights
	}

	score.Exact = want.variant != "" &&
		want.variant == have.variant &&
		want.core == have.core &&
		!hpConflict && !transConflict

	return score
}

// similarity is 1 minus the normalized edit distance of two strings
func similarity(a, b string) float64 {
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 0
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
