// Package app wires the loaders, the processor and the writers for a single batch run.
package app

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/usdbars/config"
	"github.com/vadiminshakov/usdbars/internal/domain"
	"github.com/vadiminshakov/usdbars/internal/monitoring"
	"github.com/vadiminshakov/usdbars/internal/report"
	"github.com/vadiminshakov/usdbars/internal/services/pricer"
	"github.com/vadiminshakov/usdbars/internal/services/processor"
	"github.com/vadiminshakov/usdbars/internal/storage/csvstore"
	"github.com/vadiminshakov/usdbars/internal/storage/staging"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Result outcome of a run.
type Result struct {
	Bars  domain.Bars
	Files []string
}

// Runner runs one load, process, write cycle.
type Runner struct {
	Config config.Config
	Out    io.Writer
}

// NewRunner creates a runner writing the summary table to stdout.
func NewRunner(conf config.Config) *Runner {
	return &Runner{
		Config: conf,
		Out:    os.Stdout,
	}
}

// Run executes the whole batch. Output files appear only if every one of them was written.
func (r *Runner) Run(ctx context.Context, logger *zap.Logger) (*Result, error) {
	start := time.Now()
	metrics := monitoring.NewMetrics()

	quotes, events, err := r.load(logger, metrics)
	if err != nil {
		return nil, err
	}

	stageStart := time.Now()
	prices := pricer.NewSeriesPricer(quotes)
	engine := processor.NewPartitioned(prices, r.Config.Windows, r.Config.Workers, logger)

	bars, err := engine.Run(ctx, events)
	if err != nil {
		return nil, errors.Wrap(err, "process events")
	}
	metrics.RecordLoad(prices.Len(), len(events))
	metrics.RecordStage("process", time.Since(stageStart))
	logger.Info("events processed",
		zap.Int("events", len(events)),
		zap.Int("workers", r.Config.Workers),
		zap.Duration("took", time.Since(stageStart)))

	stage := staging.New()
	defer stage.Abort()

	stageStart = time.Now()
	summaries, err := r.write(logger, stage, metrics, bars)
	if err != nil {
		return nil, err
	}
	metrics.RecordStage("write", time.Since(stageStart))
	metrics.RecordStage("total", time.Since(start))

	if r.Config.MetricsFile != "" {
		tmp, err := stage.Reserve(r.Config.MetricsFile)
		if err != nil {
			return nil, errors.Wrap(err, "write metrics")
		}
		if err := metrics.WriteFile(tmp); err != nil {
			return nil, err
		}
	}

	files, err := stage.Commit()
	if err != nil {
		return nil, errors.Wrap(err, "commit output")
	}

	if r.Config.Summary && r.Out != nil {
		report.RenderSummary(r.Out, summaries)
	}

	logger.Info("run finished", zap.Strings("files", files), zap.Duration("took", time.Since(start)))

	return &Result{Bars: bars, Files: files}, nil
}

// load reads both input files concurrently.
func (r *Runner) load(logger *zap.Logger, metrics *monitoring.Metrics) (map[string][]domain.Quote, []domain.LedgerEvent, error) {
	var (
		quotes map[string][]domain.Quote
		events []domain.LedgerEvent
	)

	stageStart := time.Now()
	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		quotes, err = csvstore.ReadQuotes(r.Config.MarketData)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = csvstore.ReadEvents(r.Config.UserData)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, errors.Wrap(err, "load input")
	}

	metrics.RecordStage("load", time.Since(stageStart))
	logger.Info("input loaded",
		zap.String("market_data", r.Config.MarketData),
		zap.Int("symbols", len(quotes)),
		zap.String("user_data", r.Config.UserData),
		zap.Int("events", len(events)),
		zap.Duration("took", time.Since(stageStart)))

	return quotes, events, nil
}

// write stages every output file of the run and records per-window metrics.
func (r *Runner) write(
	logger *zap.Logger,
	stage *staging.Stage,
	metrics *monitoring.Metrics,
	bars domain.Bars,
) ([]report.WindowSummary, error) {
	windows := r.Config.Windows

	if _, err := csvstore.WriteBars(stage, r.Config.OutputDir, windows, bars); err != nil {
		return nil, errors.Wrap(err, "write bars")
	}

	summaries := report.Summarize(windows, bars)
	users := make(map[string]struct{})
	for _, s := range summaries {
		metrics.RecordWindow(s.Window.Name, s.Rows)
		for _, id := range bars.Users(s.Window.Name) {
			users[id] = struct{}{}
		}
		logger.Debug("window aggregated",
			zap.String("window", s.Window.Name),
			zap.Int("buckets", s.Buckets),
			zap.Int("rows", s.Rows))
	}
	metrics.RecordUsers(len(users))

	if r.Config.XLSXReport != "" {
		tmp, err := stage.Reserve(r.Config.XLSXReport)
		if err != nil {
			return nil, errors.Wrap(err, "write xlsx report")
		}
		if err := report.WriteXLSX(tmp, windows, bars); err != nil {
			return nil, errors.Wrap(err, "write xlsx report")
		}
	}

	return summaries, nil
}
