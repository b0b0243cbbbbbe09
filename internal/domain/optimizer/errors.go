package optimizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/progol/internal/domain/validator"
)

// Sentinel errors.
var (
	ErrInvalidConfig = errors.New("invalid optimizer config")
	ErrMatchCount    = errors.New("optimizer needs a full card of classified matches")
	ErrPoolExhausted = errors.New("candidate pool exhausted before target size")
	ErrInfeasible    = errors.New("no valid portfolio found")
)

// InfeasibleError carries the report of the last portfolio examined when
// no portfolio ever passed validation.
type InfeasibleError struct {
	Report validator.Report
}

func (e *InfeasibleError) Error() string {
	msgs := e.Report.Messages()
	const shown = 3
	if len(msgs) > shown {
		msgs = append(msgs[:shown], fmt.Sprintf("and %d more", len(e.Report.Errors)-shown))
	}
	return fmt.Sprintf("%s: %s", ErrInfeasible, strings.Join(msgs, "; "))
}

func (e *InfeasibleError) Unwrap() error { return ErrInfeasible }
