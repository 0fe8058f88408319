package processor

import (
	"context"
	"hash/fnv"

	"github.com/vadiminshakov/usdbars/internal/domain"
	"github.com/vadiminshakov/usdbars/internal/services/bars"
	"github.com/vadiminshakov/usdbars/internal/services/pricer"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Partitioned spreads users across workers. Each user's events stay on one worker
// in input order, so the result equals a sequential run.
type Partitioned struct {
	seq     *Processor
	workers int
}

// NewPartitioned creates a processor running up to workers partitions in parallel.
func NewPartitioned(p pricer.Pricer, windows domain.Windows, workers int, logger *zap.Logger) *Partitioned {
	if workers < 1 {
		workers = 1
	}

	return &Partitioned{
		seq:     New(p, windows, logger),
		workers: workers,
	}
}

// Run processes all events and returns the merged bars.
func (p *Partitioned) Run(ctx context.Context, events []domain.LedgerEvent) (domain.Bars, error) {
	if p.workers == 1 {
		return p.seq.Run(ctx, events)
	}

	partitions := partition(events, p.workers)
	results := make([]*bars.Aggregator, len(partitions))

	g, gctx := errgroup.WithContext(ctx)
	for i, part := range partitions {
		if len(part) == 0 {
			continue
		}
		i, part := i, part
		g.Go(func() error {
			agg, err := p.seq.run(gctx, events, part)
			if err != nil {
				return err
			}
			results[i] = agg
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := bars.New(p.seq.windows)
	for _, agg := range results {
		if agg != nil {
			merged.Merge(agg)
		}
	}

	p.seq.logger.Debug("partitions merged", zap.Int("partitions", len(partitions)))

	return merged.Bars(), nil
}

// partition splits event positions by user hash, keeping input order inside each partition.
func partition(events []domain.LedgerEvent, n int) [][]int {
	parts := make([][]int, n)
	for i, event := range events {
		idx := userPartition(event.UserID, n)
		parts[idx] = append(parts[idx], i)
	}
	return parts
}

func userPartition(user string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(user))
	return int(h.Sum32() % uint32(n))
}
