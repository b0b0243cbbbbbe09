package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/okian/progol/internal/domain/model"
)

// CSVHeader is the first row of the CSV export.
func CSVHeader() []string {
	h := make([]string, 0, model.MatchCount+4)
	h = append(h, "ID", "Type")
	for i := 1; i <= model.MatchCount; i++ {
		h = append(h, "P"+strconv.Itoa(i))
	}
	return append(h, "DrawCount", "ProbAtLeast11")
}

// WriteCSV writes one row per ticket. The probability is a percentage with
// two decimals.
func WriteCSV(w io.Writer, p model.Portfolio) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader()); err != nil {
		return fmt.Errorf("%w: csv: %w", ErrWrite, err)
	}
	row := make([]string, 0, model.MatchCount+4)
	for _, t := range p {
		row = row[:0]
		row = append(row, t.ID(), string(t.Kind()))
		for _, o := range t.Picks() {
			row = append(row, o.String())
		}
		row = append(row, strconv.Itoa(t.DrawCount()), percent(t.HitProbability(), 2))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("%w: csv: %w", ErrWrite, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%w: csv: %w", ErrWrite, err)
	}
	return nil
}

func percent(p float64, decimals int) string {
	return strconv.FormatFloat(p*100, 'f', decimals, 64) + "%"
}
