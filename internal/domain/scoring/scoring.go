// Package scoring computes ranked composite scores for one simulation pass:
// the three fixed competitors plus the learner's bid.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/1970jjh/saudi/internal/domain/dataset"
	"github.com/1970jjh/saudi/internal/domain/model"
	"github.com/1970jjh/saudi/pkg/metrics"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithPriceScores overrides the price-rank score table. Zero or negative
// values are ignored, as is an incomplete table.
func WithPriceScores(table map[int]int) Option {
	return func(e *Engine) {
		if len(table) < dataset.ParticipantCount {
			return
		}
		scores := make(map[int]int, len(table))
		for rank, score := range table {
			if score <= 0 {
				return
			}
			scores[rank] = score
		}
		e.priceScores = scores
	}
}

// Engine performs deterministic ranking passes. It is pure: every call
// recomputes the full result set from the fixed dataset and the given
// price, and the engine itself holds no pass state.
//
// Tie-break policy: both sorts are stable and participants enter in
// canonical dataset order (USA, Germany, China, Korea), so equal bid
// prices and equal total scores rank in that order.
type Engine struct {
	priceScores map[int]int
}

// NewEngine creates an Engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		priceScores: dataset.PriceScores(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score runs one full ranking pass for the given learner bid price in
// millions. A non-finite price returns ErrInvalidPrice and no results;
// callers are expected to keep whatever they computed last.
func (e *Engine) Score(priceMillion float64) ([]model.RankedResult, error) {
	if math.IsNaN(priceMillion) || math.IsInf(priceMillion, 0) {
		metrics.RecordInvalidPrice()
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrice, priceMillion)
	}

	start := time.Now()
	defer func() {
		metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1e3)
	}()

	participants := append(dataset.Competitors(), dataset.KoreaEntry(priceMillion))

	// Price rank 1 goes to the lowest bid. Stable sort keeps canonical
	// order for equal prices.
	byPrice := make([]model.BidRecord, len(participants))
	copy(byPrice, participants)
	sort.SliceStable(byPrice, func(i, j int) bool {
		return byPrice[i].BidPriceMillion < byPrice[j].BidPriceMillion
	})
	priceRanks := make(map[model.Country]int, len(byPrice))
	for idx, p := range byPrice {
		priceRanks[p.Country] = idx + 1
	}

	results := make([]model.RankedResult, 0, len(participants))
	for _, p := range participants {
		priceScore := e.priceScores[priceRanks[p.Country]]
		results = append(results, model.RankedResult{
			Country:          p.Country,
			PriceScore:       priceScore,
			TechnicalScore:   p.TechnicalScore,
			PerformanceScore: p.PerformanceScore,
			CreditScore:      p.CreditScore,
			TotalScore:       priceScore + p.TechnicalScore + p.PerformanceScore + p.CreditScore,
			BidPriceMillion:  p.BidPriceMillion,
		})
	}

	// Final rank 1 goes to the highest total. Stable again, same policy.
	byTotal := make([]model.RankedResult, len(results))
	copy(byTotal, results)
	sort.SliceStable(byTotal, func(i, j int) bool {
		return byTotal[i].TotalScore > byTotal[j].TotalScore
	})
	finalRanks := make(map[model.Country]int, len(byTotal))
	for idx, r := range byTotal {
		finalRanks[r.Country] = idx + 1
	}
	for i := range results {
		results[i].Rank = finalRanks[results[i].Country]
	}

	metrics.RecordScoringPass()
	return results, nil
}

// ScoreString parses raw learner input and runs a pass. Anything that is
// not a number maps to ErrInvalidPrice, mirroring the silent no-op the
// classroom UI performs on incomplete input.
func (e *Engine) ScoreString(raw string) ([]model.RankedResult, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		metrics.RecordInvalidPrice()
		return nil, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	return e.Score(price.InexactFloat64())
}
