package leasescore

import "leasing-catalog-api/internal/model"

// InputFor builds the score input of one offer
func InputFor(retailPrice float64, o model.Offer) model.LeaseScoreInput {
	return model.LeaseScoreInput{
		RetailPrice:    retailPrice,
		MonthlyPrice:   float64(o.MonthlyPrice),
		MileagePerYear: float64(o.MileagePerYear),
		ContractMonths: float64(o.PeriodMonths),
	}
}

// SelectBest scores every offer and returns the one with the strictly highest
// total. Ties keep the first offer. Invalid offers are reported in the scores
// and skipped; ErrNoValidOffers is returned when none could be scored.
func SelectBest(retailPrice float64, offers []model.Offer) (model.BestOffer, []model.OfferScore, error) {
	scores := make([]model.OfferScore, 0, len(offers))
	best := model.BestOffer{Index: -1}

	for i, o := range offers {
		score := model.OfferScore{Index: i, Offer: o}

		breakdown, err := Calculate(InputFor(retailPrice, o))
		if err != nil {
			score.Error = err.Error()
			scores = append(scores, score)
			continue
		}

		score.Breakdown = &breakdown
		scores = append(scores, score)

		if best.Index < 0 || breakdown.TotalScore > best.Breakdown.TotalScore {
			best = model.BestOffer{Index: i, Offer: o, Breakdown: breakdown}
		}
	}

	if best.Index < 0 {
		return model.BestOffer{}, scores, ErrNoValidOffers
	}
	return best, scores, nil
}
