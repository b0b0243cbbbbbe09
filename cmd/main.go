package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/okian/progol/internal/adapters/export"
	"github.com/okian/progol/internal/adapters/matchfile"
	"github.com/okian/progol/internal/adapters/progress/queue"
	"github.com/okian/progol/internal/adapters/progress/reporter"
	app "github.com/okian/progol/internal/app"
	"github.com/okian/progol/internal/config"
	"github.com/okian/progol/internal/domain/optimizer"
	"github.com/okian/progol/pkg/logger"
	"github.com/okian/progol/pkg/metrics"
)

// Exit codes.
const (
	exitOK         = 0
	exitError      = 1
	exitInfeasible = 2
	exitUsage      = 64
)

const reporterDrainTimeout = 5 * time.Second

// flags are the command line overrides on top of the loaded config.
type flags struct {
	matches string
	out     string
	formats string
	metrics string
	seed    int64
	seedSet bool
}

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// Initialize logging
	if err := logger.Init(logger.WithWriter(stderr)); err != nil {
		// Use fmt for initialization errors since logger isn't available yet
		fmt.Fprintln(stderr, "failed to initialize logging:", err)
		return exitError
	}
	defer func() { _ = logger.Sync() }()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "failed to load config:", err)
		return exitError
	}
	if err := logger.Init(logger.WithWriter(stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
		fmt.Fprintln(stderr, "failed to initialize logging:", err)
		return exitError
	}
	log := logger.Named("progol")

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	f, err := parseFlags(args, cfg, stderr)
	if err != nil {
		return exitUsage
	}
	if err := applyFlags(ctx, cfg, f); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	matches, err := matchfile.Load(ctx, f.matches)
	if err != nil {
		log.Error(ctx, "failed to load matches", logger.String("path", f.matches), logger.Error(err))
		return exitError
	}

	q := queue.NewInMemoryQueue(queue.WithCapacity(cfg.Output.ProgressBuffer))
	rep := reporter.New(q, reporter.WithLogger(log))
	go rep.Run(ctx)

	opts := []app.Option{
		app.WithConfig(cfg),
		app.WithLogger(log),
		app.WithProgress(q),
	}
	if f.seedSet {
		opts = append(opts, app.WithSeed(f.seed))
	}
	svc, err := app.New(ctx, opts...)
	if err != nil {
		fmt.Fprintln(stderr, "invalid configuration:", err)
		return exitUsage
	}

	res, runErr := svc.Run(ctx, matches)

	// Close the queue so the reporter drains what is buffered and exits.
	_ = q.Close()
	drainCtx, cancel := context.WithTimeout(context.Background(), reporterDrainTimeout)
	if err := rep.Wait(drainCtx); err != nil {
		_ = rep.Shutdown(drainCtx)
	}
	cancel()
	log.Debug(ctx, "progress delivered",
		logger.Int("received", rep.Received()),
		logger.Int("dropped", int(q.Dropped())),
	)

	code := exitOK
	switch {
	case errors.Is(runErr, optimizer.ErrInfeasible):
		printSummary(stdout, res)
		code = exitInfeasible
	case runErr != nil:
		log.Error(ctx, "run failed",
			logger.Error(runErr),
			logger.Int("pool_size", res.Stats.PoolSize),
			logger.Int("duplicates", res.Stats.Duplicates),
		)
		code = exitError
	default:
		paths, err := export.WriteFiles(ctx, cfg.Output.Dir, cfg.Output.Formats, res.Document())
		if err != nil {
			log.Error(ctx, "export failed", logger.Error(err))
			code = exitError
		}
		for _, p := range paths {
			log.Info(ctx, "export written", logger.String("path", p))
		}
		printSummary(stdout, res)
	}

	if cfg.Output.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.Output.MetricsFile); err != nil {
			log.Error(ctx, "metrics textfile failed", logger.Error(err))
			if code == exitOK {
				code = exitError
			}
		}
	}
	return code
}

func parseFlags(args []string, cfg *config.Config, stderr io.Writer) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("progol", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.matches, "matches", "", "CSV or YAML file with the 14 matches (required)")
	fs.StringVar(&f.out, "out", cfg.Output.Dir, "directory for exported files")
	fs.StringVar(&f.formats, "formats", strings.Join(cfg.Output.Formats, ","), "comma-separated export formats: csv,json,txt")
	fs.StringVar(&f.metrics, "metrics", cfg.Output.MetricsFile, "write Prometheus metrics to this textfile")
	fs.Int64Var(&f.seed, "seed", cfg.Optimizer.Seed, "random seed")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == "seed" {
			f.seedSet = true
		}
	})
	if f.matches == "" {
		fmt.Fprintln(stderr, "missing -matches")
		fs.Usage()
		return f, errors.New("missing -matches")
	}
	return f, nil
}

// applyFlags folds the overrides into cfg and revalidates it.
func applyFlags(ctx context.Context, cfg *config.Config, f flags) error {
	cfg.Output.Dir = f.out
	cfg.Output.MetricsFile = f.metrics
	cfg.Output.Formats = cfg.Output.Formats[:0]
	for _, s := range strings.Split(f.formats, ",") {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			cfg.Output.Formats = append(cfg.Output.Formats, s)
		}
	}
	return cfg.Validate(ctx)
}

func printSummary(w io.Writer, res app.Result) {
	m := res.Report.Metrics
	fmt.Fprintf(w, "run %s: %d tickets in %s\n", res.RunID, m.Tickets, res.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "P(at least one ticket >= 11 hits): %.2f%%\n", m.PortfolioProbability*100)
	fmt.Fprintf(w, "ticket P(>=11): mean %.2f%%  min %.2f%%  max %.2f%%\n",
		m.MeanTicketProbability*100, m.MinTicketProbability*100, m.MaxTicketProbability*100)
	fmt.Fprintf(w, "distribution: H %.1f%%  D %.1f%%  A %.1f%%\n",
		m.Distribution.Home*100, m.Distribution.Draw*100, m.Distribution.Away*100)
	fmt.Fprintf(w, "cost %.0f  efficiency %.4f  average hamming %.2f\n", m.TotalCost, m.Efficiency, m.AverageHamming)
	if res.Report.Valid {
		fmt.Fprintln(w, "validation: OK")
		return
	}
	fmt.Fprintf(w, "validation: %d violation(s)\n", len(res.Report.Errors))
	for _, msg := range res.Report.Messages() {
		fmt.Fprintln(w, "  -", msg)
	}
}
