// Package export renders an optimized portfolio as CSV, JSON or a plain
// text betting slip.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/progol/internal/domain/model"
	"github.com/okian/progol/internal/domain/validator"
)

// Supported formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatText = "txt"
)

// Methodology is recorded in JSON metadata.
const Methodology = "Core + Satellites with GRASP-Annealing"

// FilePrefix names every exported file.
const FilePrefix = "progol_portfolio"

// Document is everything an export can show about one run.
type Document struct {
	RunID       string
	GeneratedAt time.Time
	Matches     []model.ClassifiedMatch
	Portfolio   model.Portfolio
	Report      validator.Report
}

// Write renders doc in format to w.
func Write(w io.Writer, format string, doc Document) error {
	switch strings.ToLower(format) {
	case FormatCSV:
		return WriteCSV(w, doc.Portfolio)
	case FormatJSON:
		return WriteJSON(w, doc)
	case FormatText:
		return WriteText(w, doc)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFiles writes one file per format into dir and returns the paths.
func WriteFiles(ctx context.Context, dir string, formats []string, doc Document) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		path := filepath.Join(dir, FilePrefix+"."+strings.ToLower(format))
		if err := writeFile(path, format, doc); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path, format string, doc Document) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrWrite, cerr)
		}
	}()
	if err := Write(f, format, doc); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}
