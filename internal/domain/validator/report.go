package validator

import (
	"github.com/okian/progol/internal/domain/types"
)

// Check names, also used as metric labels.
const (
	CheckEmpty         = "empty"
	CheckDistribution  = "distribution"
	CheckDraws         = "draws"
	CheckConcentration = "concentration"
)

// Violation is one failed hard constraint.
type Violation struct {
	Check   string `json:"check"`
	Message string `json:"message"`
}

func (v Violation) String() string { return v.Message }

// Metrics are computed for every report, valid or not.
type Metrics struct {
	Tickets               int                `json:"tickets"`
	Distribution          types.Distribution `json:"distribution"`
	PortfolioProbability  float64            `json:"portfolio_probability"`
	MeanTicketProbability float64            `json:"mean_ticket_probability"`
	MinTicketProbability  float64            `json:"min_ticket_probability"`
	MaxTicketProbability  float64            `json:"max_ticket_probability"`
	TotalCost             float64            `json:"total_cost"`
	Efficiency            float64            `json:"efficiency"`
	AverageHamming        float64            `json:"average_hamming"`
}

// Report is the validator's verdict. Violations are data, never errors.
type Report struct {
	Valid   bool        `json:"valid"`
	Errors  []Violation `json:"errors"`
	Metrics Metrics     `json:"metrics"`
}

// Messages lists the violation messages.
func (r Report) Messages() []string {
	out := make([]string, len(r.Errors))
	for i, v := range r.Errors {
		out[i] = v.Message
	}
	return out
}

// Failed reports whether any violation came from check.
func (r Report) Failed(check string) bool {
	for _, v := range r.Errors {
		if v.Check == check {
			return true
		}
	}
	return false
}
