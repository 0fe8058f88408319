// Package processor drives ledger events through the balance ledger and the bar aggregator.
package processor

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/usdbars/internal/domain"
	"github.com/vadiminshakov/usdbars/internal/services/bars"
	"github.com/vadiminshakov/usdbars/internal/services/ledger"
	"github.com/vadiminshakov/usdbars/internal/services/pricer"
	"go.uber.org/zap"
)

const progressEvery = 100_000

// Engine turns ledger events into aggregated bars.
type Engine interface {
	Run(ctx context.Context, events []domain.LedgerEvent) (domain.Bars, error)
}

// Processor applies events strictly in input order on a single goroutine.
type Processor struct {
	pricer  pricer.Pricer
	windows domain.Windows
	logger  *zap.Logger
}

// New creates a sequential processor.
func New(p pricer.Pricer, windows domain.Windows, logger *zap.Logger) *Processor {
	return &Processor{
		pricer:  p,
		windows: windows,
		logger:  logger,
	}
}

// Run processes all events and returns the aggregated bars.
// The first error aborts the run and no bars are returned.
func (p *Processor) Run(ctx context.Context, events []domain.LedgerEvent) (domain.Bars, error) {
	agg, err := p.run(ctx, events, nil)
	if err != nil {
		return nil, err
	}

	return agg.Bars(), nil
}

// run applies events[positions[0]], events[positions[1]], ... or all events when positions is nil.
// Errors name the event by its index in events.
func (p *Processor) run(ctx context.Context, events []domain.LedgerEvent, positions []int) (*bars.Aggregator, error) {
	l := ledger.New(p.pricer)
	agg := bars.New(p.windows)

	total := len(events)
	if positions != nil {
		total = len(positions)
	}

	for n := 0; n < total; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if n > 0 && n%progressEvery == 0 {
			p.logger.Debug("processing events", zap.Int("done", n), zap.Int("total", total))
		}

		i := n
		if positions != nil {
			i = positions[n]
		}
		event := events[i]

		balance, err := l.Apply(event)
		if err != nil {
			return nil, errors.Wrapf(err, "apply event #%d (%s)", i, event.String())
		}
		agg.Record(event.UserID, event.Timestamp, balance)
	}

	return agg, nil
}
