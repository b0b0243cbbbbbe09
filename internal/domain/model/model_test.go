package model_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/okian/progol/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func classified(p model.Probs) model.ClassifiedMatch {
	m, err := model.NewMatch("Home", "Away", p, model.Signals{})
	if err != nil {
		panic(err)
	}
	return model.ClassifiedMatch{Match: m, Probs: m.Probs(), Suggested: m.Probs().Best()}
}

func uniformMatches(p model.Probs) []model.ClassifiedMatch {
	out := make([]model.ClassifiedMatch, model.MatchCount)
	for i := range out {
		out[i] = classified(p)
		out[i].Index = i
	}
	return out
}

func TestOutcome(t *testing.T) {
	Convey("Given outcome symbols", t, func() {
		Convey("When parsing every accepted spelling", func() {
			cases := map[string]model.Outcome{
				"H": model.Home, "1": model.Home, "l": model.Home,
				"D": model.Draw, "x": model.Draw, "E": model.Draw,
				"A": model.Away, "2": model.Away, "v": model.Away,
			}
			Convey("Then each maps to the right outcome", func() {
				for in, want := range cases {
					got, err := model.ParseOutcome(in)
					So(err, ShouldBeNil)
					So(got, ShouldEqual, want)
				}
			})
		})

		Convey("When parsing garbage", func() {
			_, err := model.ParseOutcome("Z")
			Convey("Then ErrInvalidOutcome is returned", func() {
				So(errors.Is(err, model.ErrInvalidOutcome), ShouldBeTrue)
			})
		})

		Convey("When round-tripping through text", func() {
			b, err := model.Draw.MarshalText()
			So(err, ShouldBeNil)
			var o model.Outcome
			So(o.UnmarshalText(b), ShouldBeNil)
			So(o, ShouldEqual, model.Draw)
			So(string(b), ShouldEqual, "D")
		})
	})
}

func TestProbs(t *testing.T) {
	Convey("Given a probability triple", t, func() {
		Convey("When it does not sum to one", func() {
			p, err := model.Probs{2, 1, 1}.Normalize()
			Convey("Then Normalize rescales it", func() {
				So(err, ShouldBeNil)
				So(p.Sum(), ShouldAlmostEqual, 1, 1e-12)
				So(p[model.Home], ShouldAlmostEqual, 0.5, 1e-12)
			})
		})

		Convey("When it holds invalid values", func() {
			for _, bad := range []model.Probs{{-0.1, 0.5, 0.6}, {0, 0, 0}, {math.NaN(), 0.5, 0.5}, {math.Inf(1), 0, 0}} {
				_, err := bad.Normalize()
				So(errors.Is(err, model.ErrInvalidProbabilities), ShouldBeTrue)
			}
		})

		Convey("When ranking with ties", func() {
			p := model.Probs{0.35, 0.35, 0.30}
			Convey("Then Home precedes Draw precedes Away", func() {
				So(p.Ranked(), ShouldResemble, [3]model.Outcome{model.Home, model.Draw, model.Away})
				So(p.Best(), ShouldEqual, model.Home)
				So(p.Gap(), ShouldAlmostEqual, 0, 1e-12)
			})
		})

		Convey("When the away side is favored", func() {
			p := model.Probs{0.2, 0.25, 0.55}
			So(p.Best(), ShouldEqual, model.Away)
			So(p.Gap(), ShouldAlmostEqual, 0.30, 1e-12)
		})
	})
}

func TestMatch(t *testing.T) {
	Convey("Given a raw match", t, func() {
		m, err := model.NewMatch(" América ", "Chivas", model.Probs{40, 30, 30}, model.Signals{FormDiff: 0.2, Decisive: true})

		Convey("Then names are trimmed and probabilities normalized", func() {
			So(err, ShouldBeNil)
			So(m.Home(), ShouldEqual, "América")
			So(m.String(), ShouldEqual, "América vs Chivas")
			So(m.Probs().Sum(), ShouldAlmostEqual, 1, 1e-12)
			So(m.Signals().Decisive, ShouldBeTrue)
		})

		Convey("When probabilities are invalid", func() {
			_, err := model.NewMatch("a", "b", model.Probs{-1, 0, 0}, model.Signals{})
			So(errors.Is(err, model.ErrInvalidProbabilities), ShouldBeTrue)
		})
	})

	Convey("Given a classified match", t, func() {
		c := classified(model.Probs{0.30, 0.25, 0.45})

		Convey("Then helper outcomes follow the calibrated probabilities", func() {
			So(c.Second(), ShouldEqual, model.Home)
			So(c.BestNonDraw(), ShouldEqual, model.Away)
			So(c.Alternatives(model.Draw), ShouldResemble, [2]model.Outcome{model.Home, model.Away})
			So(c.Prob(model.Draw), ShouldAlmostEqual, 0.25, 1e-12)
		})

		Convey("And it marshals with a category label", func() {
			c.Category = model.Divisor
			b, err := json.Marshal(c)
			So(err, ShouldBeNil)
			So(string(b), ShouldContainSubstring, `"category":"Divisor"`)
			So(string(b), ShouldContainSubstring, `"suggested":"A"`)
		})
	})
}

func TestTicket(t *testing.T) {
	Convey("Given fourteen coin-flip matches", t, func() {
		matches := uniformMatches(model.Probs{0.5, 0.25, 0.25})
		var picks model.Picks
		for i := range picks {
			picks[i] = model.Home
		}
		picks[0], picks[1] = model.Draw, model.Draw

		tk := model.NewTicket("Core-1", model.KindCore, picks, matches)

		Convey("Then derived metrics match the picks", func() {
			So(tk.DrawCount(), ShouldEqual, 2)
			So(tk.HitProbability(), ShouldBeBetween, 0, 1)
			So(tk.Picks().Key(), ShouldEqual, "DDHHHHHHHHHHHH")
		})

		Convey("When picks are replaced", func() {
			all := picks
			all[0], all[1] = model.Home, model.Home
			next := tk.WithPicks(all, matches)

			Convey("Then metrics are recomputed and the original is untouched", func() {
				So(next.DrawCount(), ShouldEqual, 0)
				So(next.HitProbability(), ShouldAlmostEqual, 470.0/16384.0, 1e-9)
				So(tk.DrawCount(), ShouldEqual, 2)
				So(next.ID(), ShouldEqual, "Core-1")
				So(next.Picks().Hamming(tk.Picks()), ShouldEqual, 2)
			})
		})

		Convey("When relabeled", func() {
			r := tk.Relabel("Sat-1A", model.KindSatellite)
			So(r.ID(), ShouldEqual, "Sat-1A")
			So(r.Kind(), ShouldEqual, model.KindSatellite)
			So(r.Picks(), ShouldResemble, tk.Picks())
		})
	})
}

func TestPortfolio(t *testing.T) {
	Convey("Given a portfolio", t, func() {
		matches := uniformMatches(model.Probs{0.5, 0.25, 0.25})
		var a, b model.Picks
		for i := range b {
			b[i] = model.Away
		}
		p := model.Portfolio{
			model.NewTicket("t1", model.KindCore, a, matches),
			model.NewTicket("t2", model.KindCore, b, matches),
		}

		Convey("Then the objective is 1 - Π(1-p)", func() {
			h := p.HitProbabilities()
			So(p.Objective(), ShouldAlmostEqual, 1-(1-h[0])*(1-h[1]), 1e-12)
			So(p.AverageHamming(), ShouldEqual, 14.0)
		})

		Convey("When replacing a ticket", func() {
			q := p.Replace(1, p[0])
			Convey("Then the original portfolio is unchanged", func() {
				So(q[1].Picks(), ShouldResemble, a)
				So(p[1].Picks(), ShouldResemble, b)
			})
		})

		Convey("When the portfolio has one ticket", func() {
			So(p[:1].AverageHamming(), ShouldEqual, 0.0)
		})
	})
}
