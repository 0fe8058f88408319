package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// BarStats running statistics of a user's USD balance within one bucket.
type BarStats struct {
	Min   decimal.Decimal
	Max   decimal.Decimal
	Sum   decimal.Decimal
	Count int
}

// NewBarStats creates stats from the first contribution to a bucket.
func NewBarStats(balance decimal.Decimal) BarStats {
	return BarStats{
		Min:   balance,
		Max:   balance,
		Sum:   balance,
		Count: 1,
	}
}

// Add records one more balance observation.
func (b BarStats) Add(balance decimal.Decimal) BarStats {
	b.Min = decimal.Min(b.Min, balance)
	b.Max = decimal.Max(b.Max, balance)
	b.Sum = b.Sum.Add(balance)
	b.Count++
	return b
}

// Merge combines two stats of the same bucket.
func (b BarStats) Merge(other BarStats) BarStats {
	if other.Count == 0 {
		return b
	}
	if b.Count == 0 {
		return other
	}

	b.Min = decimal.Min(b.Min, other.Min)
	b.Max = decimal.Max(b.Max, other.Max)
	b.Sum = b.Sum.Add(other.Sum)
	b.Count += other.Count
	return b
}

// Average returns Sum / Count, zero for empty stats.
func (b BarStats) Average() decimal.Decimal {
	if b.Count == 0 {
		return decimal.Zero
	}
	return b.Sum.Div(decimal.NewFromInt(int64(b.Count)))
}

// UserBars stats per user id within one bucket.
type UserBars map[string]BarStats

// WindowBars buckets of one window keyed by bucket start (epoch seconds).
type WindowBars map[int64]UserBars

// Bars aggregated output keyed by window name.
type Bars map[string]WindowBars

// BarRow flattened output row.
type BarRow struct {
	UserID string
	Start  int64
	Stats  BarStats
}

// Rows returns the rows of a window ordered by bucket start, then user id.
func (b Bars) Rows(window string) []BarRow {
	buckets := b[window]
	if len(buckets) == 0 {
		return nil
	}

	starts := make([]int64, 0, len(buckets))
	for start := range buckets {
		starts = append(starts, start)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	var rows []BarRow
	for _, start := range starts {
		users := buckets[start]
		ids := make([]string, 0, len(users))
		for id := range users {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			rows = append(rows, BarRow{UserID: id, Start: start, Stats: users[id]})
		}
	}

	return rows
}

// Users returns the distinct users present in a window, sorted.
func (b Bars) Users(window string) []string {
	seen := make(map[string]struct{})
	for _, users := range b[window] {
		for id := range users {
			seen[id] = struct{}{}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
