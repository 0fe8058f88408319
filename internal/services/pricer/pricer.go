package pricer

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/usdbars/internal/domain"
)

// Pricer resolves the price of a pair at a point in time.
type Pricer interface {
	GetPrice(pair domain.Pair, at time.Time) (decimal.Decimal, error)
}
