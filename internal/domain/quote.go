package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote single exchange-rate observation of a symbol.
type Quote struct {
	Timestamp time.Time
	Price     decimal.Decimal
}

// NewQuote creates a Quote.
func NewQuote(timestamp time.Time, price decimal.Decimal) Quote {
	return Quote{Timestamp: timestamp, Price: price}
}
