// Package answerkey holds the instructor-facing correct answers for the
// mission and compares a submission against them. The key is reference
// data only; the scoring engine never sees it.
package answerkey

import (
	"github.com/shopspring/decimal"

	"github.com/1970jjh/saudi/internal/domain/dataset"
	"github.com/1970jjh/saudi/internal/domain/model"
)

// Key is the fixed correct answer set for one mission round.
type Key struct {
	PriceMillion          decimal.Decimal
	ExpectedProfitMillion decimal.Decimal
	TotalScores           map[model.Country]int
}

// Default returns the mission's answer key: bid 663, profit 63, and the
// per-country totals that bid produces.
func Default() Key {
	return Key{
		PriceMillion:          decimal.NewFromInt(663),
		ExpectedProfitMillion: decimal.NewFromInt(63),
		TotalScores: map[model.Country]int{
			model.USA:     82,
			model.Germany: 89,
			model.China:   88,
			model.Korea:   90,
		},
	}
}

// Comparison reports which parts of a submission match the key.
type Comparison struct {
	PriceCorrect  bool                   `json:"price_correct"`
	ProfitCorrect bool                   `json:"profit_correct"`
	ScoresCorrect map[model.Country]bool `json:"scores_correct"`
	Won           bool                   `json:"won"`
	Expected      map[model.Country]int  `json:"expected_scores"`
}

// Compare checks the learner's price, self-declared expected profit, and
// manually entered per-country totals against the key. Won reflects the
// actual computed results: Korea holds rank 1.
func (k Key) Compare(price, profit decimal.Decimal, manualScores map[model.Country]int, results []model.RankedResult) Comparison {
	c := Comparison{
		PriceCorrect:  price.Equal(k.PriceMillion),
		ProfitCorrect: profit.Equal(k.ExpectedProfitMillion),
		ScoresCorrect: make(map[model.Country]bool, len(k.TotalScores)),
		Expected:      make(map[model.Country]int, len(k.TotalScores)),
	}
	for country, want := range k.TotalScores {
		c.ScoresCorrect[country] = manualScores[country] == want
		c.Expected[country] = want
	}
	for _, r := range results {
		if r.Country == model.Korea && r.Rank == 1 {
			c.Won = true
		}
	}
	return c
}

// Profit computes the margin a bid leaves over Korea's fixed cost.
func Profit(bidPriceMillion decimal.Decimal) decimal.Decimal {
	cost := decimal.NewFromFloat(dataset.KoreaEntry(0).CostMillion)
	return bidPriceMillion.Sub(cost)
}
