// Package bars aggregates USD balances into fixed-width, epoch-aligned buckets
// for several windows at once.
package bars

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/usdbars/internal/domain"
)

// Aggregator keeps per-window, per-bucket, per-user balance statistics.
// Not safe for concurrent use.
type Aggregator struct {
	windows domain.Windows
	bars    domain.Bars
}

// New creates an aggregator for the given windows.
func New(windows domain.Windows) *Aggregator {
	bars := make(domain.Bars, len(windows))
	for _, w := range windows {
		bars[w.Name] = make(domain.WindowBars)
	}

	return &Aggregator{windows: windows, bars: bars}
}

// Record adds the user's USD balance at the given time to the matching bucket of every window.
func (a *Aggregator) Record(user string, at time.Time, balance decimal.Decimal) {
	for _, w := range a.windows {
		a.add(w.Name, w.BucketStart(at), user, balance)
	}
}

func (a *Aggregator) add(window string, start int64, user string, balance decimal.Decimal) {
	users := a.bucket(window, start)

	stats, ok := users[user]
	if !ok {
		users[user] = domain.NewBarStats(balance)
		return
	}
	users[user] = stats.Add(balance)
}

func (a *Aggregator) bucket(window string, start int64) domain.UserBars {
	buckets, ok := a.bars[window]
	if !ok {
		buckets = make(domain.WindowBars)
		a.bars[window] = buckets
	}

	users, ok := buckets[start]
	if !ok {
		users = make(domain.UserBars)
		buckets[start] = users
	}

	return users
}

// Merge folds other's statistics into a.
func (a *Aggregator) Merge(other *Aggregator) {
	for window, buckets := range other.bars {
		for start, users := range buckets {
			dst := a.bucket(window, start)
			for user, stats := range users {
				dst[user] = dst[user].Merge(stats)
			}
		}
	}
}

// Bars returns a copy of the accumulated statistics.
func (a *Aggregator) Bars() domain.Bars {
	out := make(domain.Bars, len(a.bars))
	for window, buckets := range a.bars {
		wb := make(domain.WindowBars, len(buckets))
		for start, users := range buckets {
			ub := make(domain.UserBars, len(users))
			for user, stats := range users {
				ub[user] = stats
			}
			wb[start] = ub
		}
		out[window] = wb
	}
	return out
}
