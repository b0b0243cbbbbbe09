package model

import (
	"encoding/json"
	"strings"

	"github.com/okian/progol/internal/domain/probability"
)

// MatchCount is the number of matches on every ticket.
const MatchCount = 14

// Picks is one outcome per match. Arrays copy by value, so tickets never
// share pick storage.
type Picks [MatchCount]Outcome

// Key is a compact form such as "HDAHH...", used for dedupe.
func (p Picks) Key() string {
	var b strings.Builder
	b.Grow(MatchCount)
	for _, o := range p {
		b.WriteString(o.String())
	}
	return b.String()
}

// String renders the picks separated by spaces.
func (p Picks) String() string {
	parts := make([]string, MatchCount)
	for i, o := range p {
		parts[i] = o.String()
	}
	return strings.Join(parts, " ")
}

// Count returns how many picks equal o.
func (p Picks) Count(o Outcome) int {
	n := 0
	for _, x := range p {
		if x == o {
			n++
		}
	}
	return n
}

// Hamming is the number of positions where p and q differ.
func (p Picks) Hamming(q Picks) int {
	d := 0
	for i := range p {
		if p[i] != q[i] {
			d++
		}
	}
	return d
}

// TicketKind tells how a ticket was produced.
type TicketKind string

// Ticket kinds.
const (
	KindCore      TicketKind = "Core"
	KindSatellite TicketKind = "Satellite"
	KindCandidate TicketKind = "Candidate"
)

// Ticket is a value type: the derived metrics always match the picks,
// because the only way to change picks is WithPicks, which recomputes them.
type Ticket struct {
	id    string
	kind  TicketKind
	picks Picks
	draws int
	hit   float64
}

// NewTicket builds a ticket and computes its draw count and P(>=11) from
// the calibrated probabilities of matches. matches must hold MatchCount
// entries.
func NewTicket(id string, kind TicketKind, picks Picks, matches []ClassifiedMatch) Ticket {
	probs := make([]float64, MatchCount)
	for i, o := range picks {
		probs[i] = matches[i].Prob(o)
	}
	return Ticket{
		id:    id,
		kind:  kind,
		picks: picks,
		draws: picks.Count(Draw),
		hit:   probability.TicketHit(probs),
	}
}

// WithPicks returns a fresh ticket with the same identity and new picks.
func (t Ticket) WithPicks(picks Picks, matches []ClassifiedMatch) Ticket {
	return NewTicket(t.id, t.kind, picks, matches)
}

// Relabel returns a copy with a new id and kind.
func (t Ticket) Relabel(id string, kind TicketKind) Ticket {
	t.id = id
	t.kind = kind
	return t
}

// ID returns the ticket identifier.
func (t Ticket) ID() string { return t.id }

// Kind returns how the ticket was produced.
func (t Ticket) Kind() TicketKind { return t.kind }

// Picks returns a copy of the picks.
func (t Ticket) Picks() Picks { return t.picks }

// Pick returns the pick for match i.
func (t Ticket) Pick(i int) Outcome { return t.picks[i] }

// DrawCount returns the number of Draw picks.
func (t Ticket) DrawCount() int { return t.draws }

// HitProbability returns P(hits >= 11).
func (t Ticket) HitProbability() float64 { return t.hit }

// MarshalJSON renders the ticket for exports.
func (t Ticket) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          string     `json:"id"`
		Kind        TicketKind `json:"kind"`
		Picks       []Outcome  `json:"picks"`
		DrawCount   int        `json:"draw_count"`
		ProbAtLeast float64    `json:"prob_at_least_11"`
	}{
		ID:          t.id,
		Kind:        t.kind,
		Picks:       t.picks[:],
		DrawCount:   t.draws,
		ProbAtLeast: t.hit,
	})
}

// Portfolio is an ordered set of tickets submitted together.
type Portfolio []Ticket

// Clone returns an independent copy.
func (p Portfolio) Clone() Portfolio {
	out := make(Portfolio, len(p))
	copy(out, p)
	return out
}

// Replace returns a copy of p with ticket i swapped for t.
func (p Portfolio) Replace(i int, t Ticket) Portfolio {
	out := p.Clone()
	out[i] = t
	return out
}

// HitProbabilities lists P(>=11) per ticket.
func (p Portfolio) HitProbabilities() []float64 {
	out := make([]float64, len(p))
	for i, t := range p {
		out[i] = t.hit
	}
	return out
}

// Objective is P(at least one ticket reaches 11 hits).
func (p Portfolio) Objective() float64 {
	return probability.Portfolio(p.HitProbabilities())
}

// AverageHamming is the mean pairwise Hamming distance; 0 for fewer than
// two tickets.
func (p Portfolio) AverageHamming() float64 {
	if len(p) < 2 {
		return 0
	}
	total, pairs := 0, 0
	for i := 0; i < len(p); i++ {
		for j := i + 1; j < len(p); j++ {
			total += p[i].picks.Hamming(p[j].picks)
			pairs++
		}
	}
	return float64(total) / float64(pairs)
}
