package matching

import (
	"slices"

	"leasing-catalog-api/internal/model"
)

// OffersEqual reports whether two offer collections hold the same offers,
// ignoring order and counting duplicates
func OffersEqual(a, b []model.Offer) bool {
	if len(a) != len(b) {
		return false
	}
	return DiffOffers(a, b).Empty()
}

// DiffOffers returns the offers of extracted that existing lacks (Added) and
// the offers of existing that extracted lacks (Removed), as multisets.
// Results keep the input order of their side.
func DiffOffers(existing, extracted []model.Offer) model.OfferDiff {
	counts := make(map[model.Offer]int, len(existing))
	for _, o := range existing {
		counts[o]++
	}

	var diff model.OfferDiff
	for _, o := range extracted {
		if counts[o] > 0 {
			counts[o]--
			continue
		}
		diff.Added = append(diff.Added, o)
	}

	for i := len(existing) - 1; i >= 0; i-- {
		o := existing[i]
		if counts[o] > 0 {
			counts[o]--
			diff.Removed = append(diff.Removed, o)
		}
	}
	// collected back to front
	slices.Reverse(diff.Removed)

	return diff
}
