package model

// MatchMethod is the tier of a match decision
type MatchMethod string

const (
	MatchExact MatchMethod = "exact"
	MatchFuzzy MatchMethod = "fuzzy"
	MatchNone  MatchMethod = "none"
)

// MatchResult is the outcome of matching one extracted car against the catalog.
// A "none" result has no listing id and zero confidence; it means "new vehicle".
type MatchResult struct {
	MatchedListingID *string     `json:"matched_listing_id"`
	Method           MatchMethod `json:"method"`
	Confidence       float64     `json:"confidence"`
	Changed          bool        `json:"changed"`
	OfferDiff        *OfferDiff  `json:"offer_diff,omitempty"`
}

// IsNew reports whether the extracted car did not match any listing
func (r MatchResult) IsNew() bool {
	return r.Method == MatchNone
}

// OfferDiff lists offers present on only one side of a match
type OfferDiff struct {
	Added   []Offer `json:"added,omitempty"`
	Removed []Offer `json:"removed,omitempty"`
}

// Empty reports whether both sides carry the same offers
func (d OfferDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}
