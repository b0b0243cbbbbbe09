package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/okian/progol/internal/domain/model"
	"github.com/okian/progol/internal/domain/types"
	"github.com/okian/progol/internal/domain/validator"
)

// Metadata heads the JSON export.
type Metadata struct {
	GeneratedAt            time.Time          `json:"generated_at"`
	RunID                  string             `json:"run_id"`
	TotalTickets           int                `json:"total_tickets"`
	Methodology            string             `json:"methodology"`
	HistoricalDistribution types.Distribution `json:"historical_distribution"`
}

type jsonDocument struct {
	Metadata   Metadata                `json:"metadata"`
	Matches    []model.ClassifiedMatch `json:"classified_matches"`
	Portfolio  model.Portfolio         `json:"portfolio"`
	Validation validator.Report        `json:"validation"`
}

// WriteJSON writes the indented JSON export.
func WriteJSON(w io.Writer, doc Document) error {
	out := jsonDocument{
		Metadata: Metadata{
			GeneratedAt:            doc.GeneratedAt.UTC(),
			RunID:                  doc.RunID,
			TotalTickets:           len(doc.Portfolio),
			Methodology:            Methodology,
			HistoricalDistribution: types.HistoricalDistribution,
		},
		Matches:    doc.Matches,
		Portfolio:  doc.Portfolio,
		Validation: doc.Report,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("%w: json: %w", ErrWrite, err)
	}
	return nil
}
