// Package feedback defines the contract for the external commentary
// collaborator that turns a finished simulation into one paragraph of
// CEO-style feedback.
//
// The production collaborator is a network-bound language model. The
// in-memory implementation here simulates it, the same way the scoring
// of an external ML service would be simulated: bounded latency, a
// deterministic seed, and rank-aware canned paragraphs.
package feedback

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"github.com/1970jjh/saudi/internal/domain/model"
	"github.com/1970jjh/saudi/pkg/logger"
	"github.com/1970jjh/saudi/pkg/metrics"
)

// Fallback is substituted whenever the collaborator fails. The Result
// screen must always render, so failures never propagate past Generate.
const Fallback = "CEO 피드백을 불러오는 데 실패했습니다. 하지만 결과는 여전합니다. 계속 분석하세요!"

// Default generator configuration constants.
const (
	defaultMinLatency = 80 * time.Millisecond
	defaultMaxLatency = 150 * time.Millisecond
	defaultSeed       = 42
)

// Generator produces one free-text paragraph of commentary for the
// learner's result. The text is opaque to the core.
type Generator interface {
	Feedback(ctx context.Context, results []model.RankedResult, expectedProfit decimal.Decimal) (string, error)
}

// Option applies a configuration option to the InMemoryGenerator.
type Option func(*InMemoryGenerator)

// WithLatencyRange sets the simulated collaborator latency.
func WithLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(g *InMemoryGenerator) {
		if minLatency > 0 && maxLatency > minLatency {
			g.minLatency = minLatency
			g.maxLatency = maxLatency
		}
	}
}

// WithClock injects a clock so tests control the simulated latency.
func WithClock(clock clockwork.Clock) Option {
	return func(g *InMemoryGenerator) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// InMemoryGenerator implements Generator with simulated commentary.
// One instance is shared by every session flow, so it must be safe for
// concurrent Feedback calls.
type InMemoryGenerator struct {
	minLatency time.Duration
	maxLatency time.Duration
	clock      clockwork.Clock

	// rand.Rand is not goroutine-safe; rngMu serializes draws.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewInMemoryGenerator creates a generator with configuration options.
func NewInMemoryGenerator(opts ...Option) *InMemoryGenerator {
	g := &InMemoryGenerator{
		minLatency: defaultMinLatency,
		maxLatency: defaultMaxLatency,
		clock:      clockwork.NewRealClock(),
		rng:        rand.New(rand.NewSource(defaultSeed)), //nolint:gosec // deterministic seed for reproducible commentary
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Feedback renders one paragraph for the learner's result, honoring ctx
// for cancellation while the simulated latency elapses.
func (g *InMemoryGenerator) Feedback(ctx context.Context, results []model.RankedResult, expectedProfit decimal.Decimal) (string, error) {
	metrics.RecordFeedbackRequest()

	var korea *model.RankedResult
	for i := range results {
		if results[i].Country == model.Korea {
			korea = &results[i]
			break
		}
	}
	if korea == nil {
		return "", ErrNoKoreaResult
	}

	g.rngMu.Lock()
	latency := g.minLatency + time.Duration(g.rng.Int63n(int64(g.maxLatency-g.minLatency)))
	g.rngMu.Unlock()
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("feedback cancelled: %w", ctx.Err())
	case <-g.clock.After(latency):
	}

	if korea.Rank == 1 {
		margin := "안전한 승리입니다"
		if expectedProfit.LessThan(decimal.NewFromInt(50)) {
			margin = "수익성을 더 끌어올릴 여지가 있습니다"
		}
		return fmt.Sprintf(
			"수주를 축하합니다. 입찰가 %.0f백만 달러, 총점 %d점으로 1위를 확보했습니다. 예상 이익 %s백만 달러 — %s. 다음 라운드에서도 이 분석력을 유지하십시오.",
			korea.BidPriceMillion, korea.TotalScore, expectedProfit.String(), margin,
		), nil
	}
	return fmt.Sprintf(
		"이번 입찰에서 %d위에 그쳤습니다. 총점 %d점, 입찰가 %.0f백만 달러였습니다. 가격 점수와 기술 점수의 균형을 다시 검토하고, 경쟁국의 입찰가 분포를 분석해 전략을 수정하십시오. 아직 만회할 기회는 있습니다.",
		korea.Rank, korea.TotalScore, korea.BidPriceMillion,
	), nil
}

// Generate runs gen and substitutes Fallback on any failure. This is the
// boundary the rest of the application calls; it never returns an error.
func Generate(ctx context.Context, gen Generator, results []model.RankedResult, expectedProfit decimal.Decimal) string {
	text, err := gen.Feedback(ctx, results, expectedProfit)
	if err != nil {
		logger.Named("feedback").Warn(ctx, "collaborator failed; using fallback", logger.Error(err))
		metrics.RecordFeedbackFailure()
		return Fallback
	}
	return text
}
