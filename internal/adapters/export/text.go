package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/okian/progol/internal/domain/model"
)

const slipRule = 50

// WriteText writes the betting slip: header, the 14 fixtures, then one
// line per ticket.
func WriteText(w io.Writer, doc Document) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "PROGOL OPTIMIZER - OPTIMIZED PORTFOLIO")
	fmt.Fprintln(bw, strings.Repeat("=", slipRule))
	fmt.Fprintf(bw, "Generated: %s\n", doc.GeneratedAt.Format(time.DateTime))
	if doc.RunID != "" {
		fmt.Fprintf(bw, "Run: %s\n", doc.RunID)
	}
	fmt.Fprintf(bw, "Total tickets: %d\n\n", len(doc.Portfolio))

	fmt.Fprintln(bw, "MATCHES:")
	for i, m := range doc.Matches {
		if i == model.MatchCount {
			break
		}
		fmt.Fprintf(bw, "%2d. %s\n", i+1, m.Match)
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "TICKETS:")
	for _, t := range doc.Portfolio {
		picks := make([]string, 0, model.MatchCount)
		for _, o := range t.Picks() {
			picks = append(picks, o.String())
		}
		fmt.Fprintf(bw, "%-10s: %s | Draws: %d | P[>=11]: %s\n",
			t.ID(), strings.Join(picks, " "), t.DrawCount(), percent(t.HitProbability(), 1))
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: text: %w", ErrWrite, err)
	}
	return nil
}
