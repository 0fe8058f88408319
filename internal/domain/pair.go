// Package domain defines core data structures used throughout the bar builder.
package domain

import "fmt"

// USD is the valuation currency. Balances in USD are never converted.
const USD = "USD"

// Pair currency pair quoted in the market data.
type Pair struct {
	// From base currency symbol.
	From string
	// To quote currency symbol.
	To string
}

// NewUSDPair returns the pair used to value currency in USD.
func NewUSDPair(currency string) Pair {
	return Pair{From: currency, To: USD}
}

// String returns the string representation.
func (p *Pair) String() string {
	return fmt.Sprintf("%s_%s", p.From, p.To)
}

// Symbol returns the concatenated symbol representation, as it appears in market data.
func (p *Pair) Symbol() string {
	return fmt.Sprintf("%s%s", p.From, p.To)
}
