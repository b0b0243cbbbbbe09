// Package probability computes exact hit-count probabilities for tickets.
//
// A ticket's per-match "correct" probabilities are independent Bernoulli
// trials with different success rates, so the number of hits follows a
// Poisson-binomial distribution. It is evaluated exactly with an O(n²)
// dynamic program rather than by sampling.
package probability

import "math"

// Default model constants.
const (
	// Epsilon keeps every probability strictly inside (0, 1).
	Epsilon = 1e-9

	// PrizeThreshold is the hit count that pays out.
	PrizeThreshold = 11
)

// Clamp bounds p to [Epsilon, 1-Epsilon]. NaN maps to Epsilon.
func Clamp(p float64) float64 {
	switch {
	case math.IsNaN(p), p < Epsilon:
		return Epsilon
	case p > 1-Epsilon:
		return 1 - Epsilon
	default:
		return p
	}
}

// Distribution returns the probability mass function of the hit count:
// result[j] is P(exactly j hits), for j in 0..len(probs).
func Distribution(probs []float64) []float64 {
	n := len(probs)
	dp := make([]float64, n+1)
	dp[0] = 1
	for _, raw := range probs {
		p := Clamp(raw)
		q := 1 - p
		for j := n; j >= 1; j-- {
			dp[j] = dp[j]*q + dp[j-1]*p
		}
		dp[0] *= q
	}
	return dp
}

// AtLeast returns P(hits >= k).
func AtLeast(probs []float64, k int) float64 {
	if k <= 0 {
		return 1
	}
	if k > len(probs) {
		return 0
	}
	dp := Distribution(probs)
	sum := 0.0
	for j := k; j < len(dp); j++ {
		sum += dp[j]
	}
	return clampUnit(sum)
}

// TicketHit returns P(hits >= PrizeThreshold) for one ticket.
func TicketHit(probs []float64) float64 {
	return AtLeast(probs, PrizeThreshold)
}

// ExpectedHits is the mean of the hit-count distribution.
func ExpectedHits(probs []float64) float64 {
	sum := 0.0
	for _, p := range probs {
		sum += Clamp(p)
	}
	return sum
}

// Portfolio returns P(at least one ticket pays), 1 - Π(1 - p_i), treating
// tickets as independent.
func Portfolio(ticketProbs []float64) float64 {
	miss := 1.0
	for _, p := range ticketProbs {
		miss *= 1 - clampUnit(p)
	}
	return clampUnit(1 - miss)
}

// MarginalGain is Portfolio(current ∪ {candidate}) - Portfolio(current).
// With the independence model this reduces to candidate · Π(1 - p_i).
func MarginalGain(current []float64, candidate float64) float64 {
	miss := 1.0
	for _, p := range current {
		miss *= 1 - clampUnit(p)
	}
	return clampUnit(candidate) * miss
}

// clampUnit trims floating noise outside [0, 1].
func clampUnit(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
