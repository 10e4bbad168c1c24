package answerkey_test

import (
	"testing"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/1970jjh/saudi/internal/domain/answerkey"
	"github.com/1970jjh/saudi/internal/domain/model"
	"github.com/1970jjh/saudi/internal/domain/scoring"
)

func TestDefault(t *testing.T) {
	Convey("Given the mission answer key", t, func() {
		key := answerkey.Default()

		Convey("Then it matches what the scoring engine produces for 663", func() {
			results, err := scoring.NewEngine().Score(663)
			So(err, ShouldBeNil)
			for _, r := range results {
				So(r.TotalScore, ShouldEqual, key.TotalScores[r.Country])
			}
		})

		Convey("And the expected profit is the margin the key price leaves", func() {
			So(answerkey.Profit(key.PriceMillion).Equal(key.ExpectedProfitMillion), ShouldBeTrue)
		})
	})
}

func TestKey_Compare(t *testing.T) {
	Convey("Given the answer key and a scored round", t, func() {
		key := answerkey.Default()
		engine := scoring.NewEngine()

		Convey("When the submission matches the key exactly", func() {
			results, err := engine.Score(663)
			So(err, ShouldBeNil)

			cmp := key.Compare(
				decimal.NewFromInt(663),
				decimal.NewFromInt(63),
				map[model.Country]int{
					model.USA: 82, model.Germany: 89, model.China: 88, model.Korea: 90,
				},
				results,
			)

			Convey("Then every check passes", func() {
				So(cmp.PriceCorrect, ShouldBeTrue)
				So(cmp.ProfitCorrect, ShouldBeTrue)
				So(cmp.Won, ShouldBeTrue)
				for _, ok := range cmp.ScoresCorrect {
					So(ok, ShouldBeTrue)
				}
			})

			Convey("And the expected totals travel with the comparison", func() {
				So(cmp.Expected[model.Korea], ShouldEqual, 90)
				So(cmp.Expected[model.USA], ShouldEqual, 82)
			})
		})

		Convey("When the price and profit are off", func() {
			results, err := engine.Score(700)
			So(err, ShouldBeNil)

			cmp := key.Compare(decimal.NewFromInt(700), decimal.NewFromInt(100), nil, results)

			Convey("Then those checks fail individually", func() {
				So(cmp.PriceCorrect, ShouldBeFalse)
				So(cmp.ProfitCorrect, ShouldBeFalse)
			})

			Convey("And missing manual scores all read as wrong", func() {
				for _, ok := range cmp.ScoresCorrect {
					So(ok, ShouldBeFalse)
				}
			})
		})

		Convey("When one manual score is wrong", func() {
			results, err := engine.Score(663)
			So(err, ShouldBeNil)

			cmp := key.Compare(
				decimal.NewFromInt(663),
				decimal.NewFromInt(63),
				map[model.Country]int{
					model.USA: 82, model.Germany: 89, model.China: 88, model.Korea: 85,
				},
				results,
			)

			Convey("Then only that country's check fails", func() {
				So(cmp.ScoresCorrect[model.Korea], ShouldBeFalse)
				So(cmp.ScoresCorrect[model.USA], ShouldBeTrue)
				So(cmp.ScoresCorrect[model.Germany], ShouldBeTrue)
				So(cmp.ScoresCorrect[model.China], ShouldBeTrue)
			})
		})

		Convey("When the learner's bid loses the round", func() {
			results, err := engine.Score(999)
			So(err, ShouldBeNil)

			cmp := key.Compare(decimal.NewFromInt(999), answerkey.Profit(decimal.NewFromInt(999)), nil, results)

			Convey("Then Won reflects the computed ranks, not the inputs", func() {
				So(cmp.Won, ShouldBeFalse)
			})
		})
	})
}

func TestProfit(t *testing.T) {
	Convey("Given Korea's fixed production cost", t, func() {
		Convey("Then profit is the bid minus that cost", func() {
			So(answerkey.Profit(decimal.NewFromInt(663)).Equal(decimal.NewFromInt(63)), ShouldBeTrue)
			So(answerkey.Profit(decimal.NewFromInt(600)).IsZero(), ShouldBeTrue)
			So(answerkey.Profit(decimal.NewFromInt(550)).IsNegative(), ShouldBeTrue)
		})
	})
}
