// Package matchfile reads the 14-match slate from CSV or YAML files.
//
// CSV rows follow the import layout
//
//	home,away,p_home,p_draw,p_away[,decisive,form,injuries]
//
// with '#' comment lines and an optional header row. YAML files carry the
// same fields under a top-level "matches" list.
package matchfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/progol/internal/domain/model"
)

// Entry is one row of a match file.
type Entry struct {
	Home     string  `koanf:"home"`
	Away     string  `koanf:"away"`
	PHome    float64 `koanf:"p_home"`
	PDraw    float64 `koanf:"p_draw"`
	PAway    float64 `koanf:"p_away"`
	Decisive bool    `koanf:"decisive"`
	Form     float64 `koanf:"form"`
	Injuries float64 `koanf:"injuries"`
}

// Match validates the entry and normalizes its probabilities.
func (e Entry) Match() (model.Match, error) {
	return model.NewMatch(e.Home, e.Away,
		model.Probs{e.PHome, e.PDraw, e.PAway},
		model.Signals{FormDiff: e.Form, InjuryImpact: e.Injuries, Decisive: e.Decisive},
	)
}

const minColumns = 5

// Load reads a slate from path, choosing the format by extension.
func Load(ctx context.Context, path string) ([]model.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		entries []Entry
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		entries, err = readYAML(path)
	case ".csv", ".txt", "":
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoad, err)
		}
		defer func() { _ = f.Close() }()
		entries, err = ReadCSV(f)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", ErrLoad, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return toMatches(entries)
}

// ReadCSV parses match rows. The header row is recognized by a
// non-numeric p_home column.
func ReadCSV(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []Entry
	for first := true; ; first = false {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoad, err)
		}
		line, _ := cr.FieldPos(0)
		if isBlank(rec) {
			continue
		}
		if len(rec) < minColumns {
			return nil, fmt.Errorf("%w: line %d: %d columns, want at least %d", ErrLoad, line, len(rec), minColumns)
		}
		if first && isHeader(rec) {
			continue
		}
		e, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrLoad, line, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func readYAML(path string) ([]Entry, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if !k.Exists("matches") {
		return nil, fmt.Errorf("%w: no matches list", ErrLoad)
	}
	var entries []Entry
	if err := k.UnmarshalWithConf("matches", &entries, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return entries, nil
}

func toMatches(entries []Entry) ([]model.Match, error) {
	if len(entries) != model.MatchCount {
		return nil, fmt.Errorf("%w: want %d matches, got %d", ErrLoad, model.MatchCount, len(entries))
	}
	out := make([]model.Match, len(entries))
	for i, e := range entries {
		m, err := e.Match()
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrLoad, i+1, err)
		}
		out[i] = m
	}
	return out, nil
}

func parseRecord(rec []string) (Entry, error) {
	e := Entry{Home: rec[0], Away: rec[1]}
	probs := [3]*float64{&e.PHome, &e.PDraw, &e.PAway}
	for i, dst := range probs {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[2+i]), 64)
		if err != nil {
			return Entry{}, fmt.Errorf("probability column %d: %w", 3+i, err)
		}
		*dst = v
	}
	if len(rec) > 5 {
		d, err := parseBool(rec[5])
		if err != nil {
			return Entry{}, err
		}
		e.Decisive = d
	}
	for i, dst := range []*float64{&e.Form, &e.Injuries} {
		col := 6 + i
		if len(rec) <= col {
			break
		}
		s := strings.TrimSpace(rec[col])
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Entry{}, fmt.Errorf("column %d: %w", col+1, err)
		}
		*dst = v
	}
	return e, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false", "0", "no", "n":
		return false, nil
	case "true", "1", "yes", "y", "si", "sí":
		return true, nil
	default:
		return false, fmt.Errorf("decisive flag %q is not a boolean", s)
	}
}

func isHeader(rec []string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
	return err != nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
