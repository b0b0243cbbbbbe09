package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/progol/internal/adapters/export"
	"github.com/okian/progol/internal/domain/model"
	"github.com/okian/progol/internal/domain/validator"
)

// fixture builds 14 even matches and two tickets: all-home and a
// four-draw variant.
func fixture(t *testing.T) export.Document {
	t.Helper()
	matches := make([]model.ClassifiedMatch, model.MatchCount)
	for i := range matches {
		m, err := model.NewMatch(fmt.Sprintf("Home %d", i+1), fmt.Sprintf("Away %d", i+1), model.Probs{0.5, 0.3, 0.2}, model.Signals{})
		if err != nil {
			t.Fatalf("match: %v", err)
		}
		matches[i] = model.ClassifiedMatch{
			Index: i, Match: m, Probs: model.Probs{0.5, 0.3, 0.2},
			Category: model.Divisor, Suggested: model.Home, Confidence: 0.2,
		}
	}
	var home, mixed model.Picks
	for i := range mixed {
		if i < 4 {
			mixed[i] = model.Draw
		}
	}
	p := model.Portfolio{
		model.NewTicket("Core-1", model.KindCore, home, matches),
		model.NewTicket("Sat-1A", model.KindSatellite, mixed, matches),
	}
	return export.Document{
		RunID:       "run-1",
		GeneratedAt: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
		Matches:     matches,
		Portfolio:   p,
		Report: validator.Report{
			Valid:   false,
			Errors:  []validator.Violation{{Check: validator.CheckDraws, Message: "ticket Core-1 has 0 draws, want 4-6"}},
			Metrics: validator.Metrics{Tickets: 2},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	Convey("Given a two-ticket portfolio", t, func() {
		doc := fixture(t)
		var buf bytes.Buffer
		err := export.WriteCSV(&buf, doc.Portfolio)

		Convey("Then the CSV should have a header and one row per ticket", func() {
			So(err, ShouldBeNil)
			rows, rerr := csv.NewReader(&buf).ReadAll()
			So(rerr, ShouldBeNil)
			So(len(rows), ShouldEqual, 3)
			So(rows[0], ShouldResemble, export.CSVHeader())
			So(rows[0][2], ShouldEqual, "P1")
			So(rows[0][15], ShouldEqual, "P14")
			So(rows[0][17], ShouldEqual, "ProbAtLeast11")

			So(rows[1][0], ShouldEqual, "Core-1")
			So(rows[1][1], ShouldEqual, "Core")
			So(rows[1][2], ShouldEqual, "H")
			So(rows[1][16], ShouldEqual, "0")
			So(rows[1][17], ShouldEqual, "2.87%")

			So(rows[2][1], ShouldEqual, "Satellite")
			So(rows[2][2], ShouldEqual, "D")
			So(rows[2][16], ShouldEqual, "4")
		})
	})
}

func TestWriteJSON(t *testing.T) {
	Convey("Given a run document", t, func() {
		doc := fixture(t)
		var buf bytes.Buffer
		err := export.WriteJSON(&buf, doc)

		Convey("Then the JSON should carry metadata, matches, portfolio and report", func() {
			So(err, ShouldBeNil)
			var out map[string]any
			So(json.Unmarshal(buf.Bytes(), &out), ShouldBeNil)

			meta := out["metadata"].(map[string]any)
			So(meta["run_id"], ShouldEqual, "run-1")
			So(meta["total_tickets"], ShouldEqual, 2.0)
			So(meta["methodology"], ShouldEqual, export.Methodology)
			So(meta["generated_at"], ShouldEqual, "2026-10-15T12:00:00Z")
			hist := meta["historical_distribution"].(map[string]any)
			So(hist["draw"], ShouldEqual, 0.29)

			So(len(out["classified_matches"].([]any)), ShouldEqual, 14)
			tickets := out["portfolio"].([]any)
			So(len(tickets), ShouldEqual, 2)
			So(tickets[1].(map[string]any)["draw_count"], ShouldEqual, 4.0)

			report := out["validation"].(map[string]any)
			So(report["valid"], ShouldBeFalse)
			So(len(report["errors"].([]any)), ShouldEqual, 1)
		})
	})
}

func TestWriteText(t *testing.T) {
	Convey("Given a run document", t, func() {
		doc := fixture(t)
		var buf bytes.Buffer
		err := export.WriteText(&buf, doc)
		text := buf.String()

		Convey("Then the slip should list fixtures and tickets", func() {
			So(err, ShouldBeNil)
			So(text, ShouldStartWith, "PROGOL OPTIMIZER")
			So(text, ShouldContainSubstring, "Total tickets: 2")
			So(text, ShouldContainSubstring, " 1. Home 1 vs Away 1\n")
			So(text, ShouldContainSubstring, "14. Home 14 vs Away 14\n")
			So(text, ShouldContainSubstring, "Core-1    : H H H H H H H H H H H H H H | Draws: 0 | P[>=11]: 2.9%")
			So(text, ShouldContainSubstring, "Sat-1A    : D D D D H")
		})
	})
}

func TestWriteFiles(t *testing.T) {
	Convey("Given an output directory", t, func() {
		doc := fixture(t)
		dir := filepath.Join(t.TempDir(), "out")

		Convey("When writing every format", func() {
			paths, err := export.WriteFiles(context.Background(), dir, []string{"csv", "JSON", "txt"}, doc)

			Convey("Then one file per format should exist", func() {
				So(err, ShouldBeNil)
				So(len(paths), ShouldEqual, 3)
				for _, p := range paths {
					info, serr := os.Stat(p)
					So(serr, ShouldBeNil)
					So(info.Size(), ShouldBeGreaterThan, 0)
				}
				So(paths[1], ShouldEndWith, export.FilePrefix+".json")
			})
		})

		Convey("When a format is unknown", func() {
			paths, err := export.WriteFiles(context.Background(), dir, []string{"csv", "pdf"}, doc)

			Convey("Then it should stop with ErrUnknownFormat and leave no partial file", func() {
				So(errors.Is(err, export.ErrUnknownFormat), ShouldBeTrue)
				So(len(paths), ShouldEqual, 1)
				_, serr := os.Stat(filepath.Join(dir, export.FilePrefix+".pdf"))
				So(os.IsNotExist(serr), ShouldBeTrue)
			})
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := export.WriteFiles(ctx, dir, []string{"csv"}, doc)

			Convey("Then nothing should be written", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				entries, _ := os.ReadDir(dir)
				So(strings.Join(names(entries), ","), ShouldEqual, "")
			})
		})
	})
}

func names(entries []os.DirEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out
}
