package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/progol/internal/app"
	"github.com/okian/progol/internal/config"
	"github.com/okian/progol/internal/domain/classifier"
	"github.com/okian/progol/internal/domain/model"
	"github.com/okian/progol/internal/domain/optimizer"
	"github.com/okian/progol/internal/domain/types"
	"github.com/okian/progol/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

var slate = []model.Probs{
	{0.45, 0.30, 0.25}, {0.25, 0.30, 0.45},
	{0.44, 0.31, 0.25}, {0.24, 0.31, 0.45},
	{0.46, 0.28, 0.26}, {0.26, 0.28, 0.46},
	{0.38, 0.33, 0.29}, {0.29, 0.33, 0.38},
	{0.50, 0.27, 0.23}, {0.23, 0.27, 0.50},
	{0.40, 0.32, 0.28}, {0.28, 0.32, 0.40},
	{0.42, 0.30, 0.28}, {0.28, 0.30, 0.42},
}

func matches(t *testing.T, n int) []model.Match {
	t.Helper()
	out := make([]model.Match, n)
	for i := range out {
		m, err := model.NewMatch(fmt.Sprintf("Local %d", i+1), fmt.Sprintf("Visita %d", i+1), slate[i%len(slate)], model.Signals{})
		if err != nil {
			t.Fatal(err)
		}
		out[i] = m
	}
	return out
}

func smallConfig() *config.Config {
	cfg := config.New()
	cfg.Optimizer.Iterations = 300
	cfg.Optimizer.CandidatePool = 100
	cfg.Optimizer.TargetSize = 10
	cfg.Optimizer.ProgressEvery = 10
	return cfg
}

func fixedClock() time.Time { return time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC) }

func TestService_New(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new service with default options", t, func() {
		svc, err := service.New(ctx)

		Convey("Then it should be created successfully", func() {
			So(err, ShouldBeNil)
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a config that fails validation", t, func() {
		cfg := config.New()
		cfg.Portfolio.CoreCount = 0
		svc, err := service.New(ctx, service.WithConfig(cfg))

		Convey("Then construction should fail with ErrInvalidConfig", func() {
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			So(svc, ShouldBeNil)
		})
	})
}

func TestService_Run(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with a small search budget", t, func() {
		var snaps []types.Progress
		svc, err := service.New(ctx,
			service.WithConfig(smallConfig()),
			service.WithClock(fixedClock),
			service.WithRunID(func() string { return "run-test" }),
			service.WithProgress(optimizer.ProgressFunc(func(p types.Progress) { snaps = append(snaps, p) })),
		)
		So(err, ShouldBeNil)

		Convey("When running a full slate", func() {
			res, err := svc.Run(ctx, matches(t, model.MatchCount))

			Convey("Then the early stages should have produced their tickets", func() {
				So(res.RunID, ShouldEqual, "run-test")
				So(res.StartedAt.Equal(fixedClock()), ShouldBeTrue)
				So(len(res.Matches), ShouldEqual, model.MatchCount)
				So(len(res.Core), ShouldEqual, 4)
				So(len(res.Satellites), ShouldEqual, 6)
				So(res.Elapsed > 0, ShouldBeTrue)
			})

			Convey("And the outcome should be a valid portfolio or an explicit infeasibility", func() {
				if err == nil {
					So(res.Report.Valid, ShouldBeTrue)
					So(len(res.Portfolio), ShouldEqual, 10)
					So(res.Report.Metrics.PortfolioProbability, ShouldAlmostEqual, res.Portfolio.Objective(), 1e-12)
					return
				}
				var inf *optimizer.InfeasibleError
				So(errors.As(err, &inf), ShouldBeTrue)
				So(res.Report.Valid, ShouldBeFalse)
				So(res.Portfolio, ShouldBeEmpty)
				So(err.Error(), ShouldStartWith, service.StageOptimize+":")
			})

			Convey("And GRASP construction should fill the slots after the core tickets", func() {
				built := 0
				for _, sp := range snaps {
					if sp.Phase == types.PhaseConstruction {
						built++
					}
				}
				So(built, ShouldEqual, 10-len(res.Core))
				So(res.Stats.PoolSize, ShouldBeGreaterThan, 0)
			})

			Convey("And progress should end at 100 percent", func() {
				So(snaps, ShouldNotBeEmpty)
				last := snaps[len(snaps)-1]
				So(last.Phase, ShouldEqual, types.PhaseDone)
				So(last.Percent, ShouldEqual, 100.0)
			})

			Convey("And the export document should mirror the result", func() {
				doc := res.Document()
				So(doc.RunID, ShouldEqual, "run-test")
				So(doc.GeneratedAt.Equal(fixedClock()), ShouldBeTrue)
				So(len(doc.Matches), ShouldEqual, model.MatchCount)
			})
		})

		Convey("When the slate is short", func() {
			_, err := svc.Run(ctx, matches(t, 13))

			Convey("Then classification should reject it", func() {
				So(errors.Is(err, classifier.ErrInput), ShouldBeTrue)
				So(err.Error(), ShouldStartWith, service.StageClassify+":")
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := svc.Run(cctx, matches(t, model.MatchCount))

			Convey("Then no stage should run", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestService_Deterministic(t *testing.T) {
	ctx := context.Background()

	Convey("Given two services with the same seed", t, func() {
		run := func() (service.Result, error) {
			svc, err := service.New(ctx, service.WithConfig(smallConfig()), service.WithSeed(7))
			So(err, ShouldBeNil)
			return svc.Run(ctx, matches(t, model.MatchCount))
		}
		a, errA := run()
		b, errB := run()

		Convey("Then both runs should produce the same tickets", func() {
			So(errors.Is(errA, optimizer.ErrInfeasible), ShouldEqual, errors.Is(errB, optimizer.ErrInfeasible))
			So(keys(a.Core), ShouldResemble, keys(b.Core))
			So(keys(a.Satellites), ShouldResemble, keys(b.Satellites))
			So(keys(a.Portfolio), ShouldResemble, keys(b.Portfolio))
			So(a.RunID, ShouldNotEqual, b.RunID)
		})
	})
}

func keys(ts []model.Ticket) string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Picks().Key()
	}
	return strings.Join(out, "|")
}
