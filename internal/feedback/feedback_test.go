package feedback_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/1970jjh/saudi/internal/domain/model"
	"github.com/1970jjh/saudi/internal/domain/scoring"
	"github.com/1970jjh/saudi/internal/feedback"
	"github.com/1970jjh/saudi/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func fastGenerator() *feedback.InMemoryGenerator {
	return feedback.NewInMemoryGenerator(
		feedback.WithLatencyRange(time.Millisecond, 2*time.Millisecond),
	)
}

func winningResults() []model.RankedResult {
	results, err := scoring.NewEngine().Score(663)
	So(err, ShouldBeNil)
	return results
}

func losingResults() []model.RankedResult {
	// Overbidding every competitor drops Korea to the bottom price score.
	results, err := scoring.NewEngine().Score(999)
	So(err, ShouldBeNil)
	return results
}

type failingGenerator struct{}

func (failingGenerator) Feedback(context.Context, []model.RankedResult, decimal.Decimal) (string, error) {
	return "", errors.New("collaborator unreachable")
}

func TestInMemoryGenerator_Feedback(t *testing.T) {
	Convey("Given the in-memory commentary generator", t, func() {
		ctx := context.Background()
		gen := fastGenerator()

		Convey("When the learner won the round", func() {
			text, err := gen.Feedback(ctx, winningResults(), decimal.NewFromInt(63))
			So(err, ShouldBeNil)

			Convey("Then the paragraph congratulates the win", func() {
				So(text, ShouldContainSubstring, "수주를 축하합니다")
				So(text, ShouldContainSubstring, "663")
				So(text, ShouldContainSubstring, "90")
			})

			Convey("And a comfortable expected profit reads as a safe win", func() {
				So(text, ShouldContainSubstring, "안전한 승리")
			})

			Convey("And a thin expected profit earns a margin warning instead", func() {
				thin, err := gen.Feedback(ctx, winningResults(), decimal.NewFromInt(20))
				So(err, ShouldBeNil)
				So(thin, ShouldContainSubstring, "수익성")
				So(thin, ShouldNotContainSubstring, "안전한 승리")
			})
		})

		Convey("When the learner lost the round", func() {
			results := losingResults()
			text, err := gen.Feedback(ctx, results, decimal.NewFromInt(399))
			So(err, ShouldBeNil)

			Convey("Then the paragraph names the actual rank", func() {
				var koreaRank int
				for _, r := range results {
					if r.Country == model.Korea {
						koreaRank = r.Rank
					}
				}
				So(koreaRank, ShouldBeGreaterThan, 1)
				So(strings.Contains(text, "위에 그쳤습니다"), ShouldBeTrue)
			})
		})

		Convey("When the result set has no Korea entry", func() {
			_, err := gen.Feedback(ctx, []model.RankedResult{{Country: model.USA}}, decimal.Zero)

			Convey("Then it reports ErrNoKoreaResult", func() {
				So(errors.Is(err, feedback.ErrNoKoreaResult), ShouldBeTrue)
			})
		})

		Convey("When the context is already cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			_, err := gen.Feedback(cancelled, winningResults(), decimal.NewFromInt(63))

			Convey("Then the call gives up instead of waiting out the latency", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestInMemoryGenerator_ConcurrentFeedback(t *testing.T) {
	Convey("Given one generator shared by many sessions", t, func() {
		ctx := context.Background()
		gen := fastGenerator()
		results := winningResults()

		Convey("When sessions request commentary at the same time", func() {
			const sessions = 8
			const calls = 25

			errs := make(chan error, sessions*calls)
			var wg sync.WaitGroup
			wg.Add(sessions)
			for i := 0; i < sessions; i++ {
				go func() {
					defer wg.Done()
					for j := 0; j < calls; j++ {
						_, err := gen.Feedback(ctx, results, decimal.NewFromInt(63))
						errs <- err
					}
				}()
			}
			wg.Wait()
			close(errs)

			Convey("Then every call succeeds", func() {
				for err := range errs {
					So(err, ShouldBeNil)
				}
			})
		})
	})
}

func TestGenerate_Fallback(t *testing.T) {
	Convey("Given the application-facing Generate boundary", t, func() {
		ctx := context.Background()

		Convey("When the collaborator succeeds", func() {
			text := feedback.Generate(ctx, fastGenerator(), winningResults(), decimal.NewFromInt(63))

			Convey("Then its paragraph passes through", func() {
				So(text, ShouldNotEqual, feedback.Fallback)
				So(text, ShouldNotBeEmpty)
			})
		})

		Convey("When the collaborator fails", func() {
			text := feedback.Generate(ctx, failingGenerator{}, winningResults(), decimal.NewFromInt(63))

			Convey("Then the learner still gets the fallback paragraph", func() {
				So(text, ShouldEqual, feedback.Fallback)
			})
		})

		Convey("When the result set is malformed", func() {
			text := feedback.Generate(ctx, fastGenerator(), nil, decimal.Zero)

			Convey("Then the fallback covers that too", func() {
				So(text, ShouldEqual, feedback.Fallback)
			})
		})
	})
}
