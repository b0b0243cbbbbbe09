package probability_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/okian/progol/internal/domain/probability"
	. "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/gonum/stat/distuv"
)

// bruteForce enumerates every hit/miss combination.
func bruteForce(probs []float64, k int) float64 {
	n := len(probs)
	total := 0.0
	for mask := 0; mask < 1<<n; mask++ {
		hits := 0
		pr := 1.0
		for i := 0; i < n; i++ {
			p := probability.Clamp(probs[i])
			if mask&(1<<i) != 0 {
				hits++
				pr *= p
			} else {
				pr *= 1 - p
			}
		}
		if hits >= k {
			total += pr
		}
	}
	return total
}

func repeat(p float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = p
	}
	return out
}

func TestAtLeast(t *testing.T) {
	Convey("Given the Poisson-binomial model", t, func() {
		Convey("When every match has p=0.5", func() {
			got := probability.TicketHit(repeat(0.5, 14))

			Convey("Then P(>=11) should match the binomial tail 470/16384", func() {
				So(got, ShouldAlmostEqual, 470.0/16384.0, 1e-9)
				So(got, ShouldAlmostEqual, 0.0287, 1e-4)
			})

			Convey("And it should agree with gonum's binomial CDF", func() {
				b := distuv.Binomial{N: 14, P: 0.5}
				So(got, ShouldAlmostEqual, 1-b.CDF(10), 1e-9)
			})
		})

		Convey("When every probability is 0", func() {
			Convey("Then the result should be 0", func() {
				So(probability.TicketHit(repeat(0, 14)), ShouldAlmostEqual, 0, 1e-6)
			})
		})

		Convey("When every probability is 1", func() {
			Convey("Then the result should be 1", func() {
				So(probability.TicketHit(repeat(1, 14)), ShouldAlmostEqual, 1, 1e-6)
			})
		})

		Convey("When probabilities are heterogeneous", func() {
			rng := rand.New(rand.NewSource(7))

			Convey("Then the DP should equal brute-force enumeration", func() {
				for trial := 0; trial < 5; trial++ {
					probs := make([]float64, 14)
					for i := range probs {
						probs[i] = rng.Float64()
					}
					for _, k := range []int{0, 1, 7, 11, 14} {
						So(probability.AtLeast(probs, k), ShouldAlmostEqual, bruteForce(probs, k), 1e-9)
					}
				}
			})

			Convey("And every result should lie in [0, 1]", func() {
				for trial := 0; trial < 50; trial++ {
					probs := make([]float64, 14)
					for i := range probs {
						probs[i] = rng.Float64()
					}
					p := probability.TicketHit(probs)
					So(p, ShouldBeBetweenOrEqual, 0, 1)
				}
			})
		})

		Convey("When k is outside the hit range", func() {
			probs := repeat(0.4, 14)

			Convey("Then k<=0 is certain and k>n is impossible", func() {
				So(probability.AtLeast(probs, 0), ShouldEqual, 1.0)
				So(probability.AtLeast(probs, 15), ShouldEqual, 0.0)
			})
		})
	})
}

func TestDistribution(t *testing.T) {
	Convey("Given a hit-count distribution", t, func() {
		probs := []float64{0.2, 0.5, 0.9, 0.35}
		pmf := probability.Distribution(probs)

		Convey("Then it should have n+1 entries summing to 1", func() {
			So(len(pmf), ShouldEqual, 5)
			sum := 0.0
			for _, v := range pmf {
				sum += v
			}
			So(sum, ShouldAlmostEqual, 1, 1e-12)
		})

		Convey("And its mean should equal ExpectedHits", func() {
			mean := 0.0
			for j, v := range pmf {
				mean += float64(j) * v
			}
			So(mean, ShouldAlmostEqual, probability.ExpectedHits(probs), 1e-9)
		})
	})
}

func TestPortfolio(t *testing.T) {
	Convey("Given per-ticket probabilities", t, func() {
		Convey("When combining them", func() {
			got := probability.Portfolio([]float64{0.1, 0.2, 0.3})

			Convey("Then it should be 1 - Π(1-p)", func() {
				So(got, ShouldAlmostEqual, 1-0.9*0.8*0.7, 1e-12)
			})
		})

		Convey("When the portfolio is empty", func() {
			Convey("Then the objective should be 0", func() {
				So(probability.Portfolio(nil), ShouldEqual, 0.0)
			})
		})

		Convey("When computing a marginal gain", func() {
			current := []float64{0.1, 0.2}
			gain := probability.MarginalGain(current, 0.05)

			Convey("Then it should equal the objective delta", func() {
				delta := probability.Portfolio([]float64{0.1, 0.2, 0.05}) - probability.Portfolio(current)
				So(gain, ShouldAlmostEqual, delta, 1e-12)
			})
		})
	})
}

func TestClamp(t *testing.T) {
	Convey("Given raw probabilities", t, func() {
		Convey("Then values are kept strictly inside (0, 1)", func() {
			So(probability.Clamp(-1), ShouldEqual, probability.Epsilon)
			So(probability.Clamp(0), ShouldEqual, probability.Epsilon)
			So(probability.Clamp(1), ShouldEqual, 1-probability.Epsilon)
			So(probability.Clamp(0.3), ShouldEqual, 0.3)
			So(probability.Clamp(math.NaN()), ShouldEqual, probability.Epsilon)
		})
	})
}
