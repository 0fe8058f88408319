package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEvent change of Delta units of Currency applied to UserID at Timestamp.
type LedgerEvent struct {
	UserID    string
	Currency  string
	Timestamp time.Time
	Delta     decimal.Decimal
}

// IsUSD reports whether the event moves USD directly.
func (e LedgerEvent) IsUSD() bool {
	return e.Currency == USD
}

// String returns a human-readable string representation.
func (e LedgerEvent) String() string {
	return fmt.Sprintf("user: %s currency: %s ts: %d delta: %s",
		e.UserID, e.Currency, e.Timestamp.Unix(), e.Delta.String())
}
