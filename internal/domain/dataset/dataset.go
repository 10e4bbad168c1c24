// Package dataset holds the fixed reference data of the bidding mission:
// the three competitor records, Korea's non-price attributes, and the
// price-rank score table. Created at process start, never mutated.
package dataset

import "github.com/1970jjh/saudi/internal/domain/model"

// Competitors returns the three fixed competitor records in canonical
// order (USA, Germany, China). Callers receive a fresh slice each time so
// the reference data cannot be mutated.
func Competitors() []model.BidRecord {
	return []model.BidRecord{
		{
			Country:          model.USA,
			CreditRating:     "AAA",
			CreditScore:      10,
			PerformanceRank:  4,
			PerformanceScore: 14,
			TechnicalRank:    3,
			TechnicalScore:   24,
			CostMillion:      620,
			BidPriceMillion:  664,
		},
		{
			Country:          model.Germany,
			CreditRating:     "AAA",
			CreditScore:      10,
			PerformanceRank:  2,
			PerformanceScore: 18,
			TechnicalRank:    1,
			TechnicalScore:   30,
			CostMillion:      640,
			BidPriceMillion:  698,
		},
		{
			Country:          model.China,
			CreditRating:     "B",
			CreditScore:      7,
			PerformanceRank:  1,
			PerformanceScore: 20,
			TechnicalRank:    4,
			TechnicalScore:   21,
			CostMillion:      590,
			BidPriceMillion:  617,
		},
	}
}

// KoreaEntry returns Korea's fixed attributes with the given bid price
// substituted in. Each call supersedes any previous entry wholesale.
func KoreaEntry(bidPriceMillion float64) model.BidRecord {
	return model.BidRecord{
		Country:          model.Korea,
		CreditRating:     "AAA",
		CreditScore:      10,
		PerformanceRank:  3,
		PerformanceScore: 16,
		TechnicalRank:    2,
		TechnicalScore:   27,
		CostMillion:      600,
		BidPriceMillion:  bidPriceMillion,
	}
}

// PriceScores maps a price rank (1 = lowest bid) to its fixed score.
// Lower bids earn more points.
func PriceScores() map[int]int {
	return map[int]int{
		1: 40,
		2: 37,
		3: 34,
		4: 31,
	}
}

// ParticipantCount is the size of one scoring pass: three competitors
// plus the learner's country.
const ParticipantCount = 4
