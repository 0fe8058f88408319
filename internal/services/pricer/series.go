package pricer

import (
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/usdbars/internal/domain"
)

var _ Pricer = (*SeriesPricer)(nil)

// SeriesPricer answers point-in-time price queries from historical quotes.
// It is read-only after construction and safe for concurrent use.
type SeriesPricer struct {
	series map[string][]domain.Quote
	total  int
}

// NewSeriesPricer copies the quotes and sorts every symbol's series by timestamp.
// Quotes sharing a timestamp keep their input order.
func NewSeriesPricer(series map[string][]domain.Quote) *SeriesPricer {
	p := &SeriesPricer{series: make(map[string][]domain.Quote, len(series))}

	for symbol, quotes := range series {
		if len(quotes) == 0 {
			continue
		}

		sorted := make([]domain.Quote, len(quotes))
		copy(sorted, quotes)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		})

		p.series[symbol] = sorted
		p.total += len(sorted)
	}

	return p
}

// GetPrice returns the price of pair at the given time.
func (p *SeriesPricer) GetPrice(pair domain.Pair, at time.Time) (decimal.Decimal, error) {
	return p.Resolve(pair.Symbol(), at)
}

// Resolve returns the price of the latest quote at or before at.
// Queries before the first quote get the first quote's price.
func (p *SeriesPricer) Resolve(symbol string, at time.Time) (decimal.Decimal, error) {
	quotes, ok := p.series[symbol]
	if !ok {
		return decimal.Decimal{}, errors.Wrapf(domain.ErrSymbolNotFound, "no quotes for %s", symbol)
	}

	// first quote strictly after at
	idx := sort.Search(len(quotes), func(i int) bool {
		return quotes[i].Timestamp.After(at)
	})
	if idx == 0 {
		return quotes[0].Price, nil
	}

	return quotes[idx-1].Price, nil
}

// Symbols returns known symbols, sorted.
func (p *SeriesPricer) Symbols() []string {
	symbols := make([]string, 0, len(p.series))
	for symbol := range p.series {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// Len returns the total number of quotes held.
func (p *SeriesPricer) Len() int {
	return p.total
}
