// Package ledger keeps per-user currency balances and their running USD valuation.
package ledger

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/usdbars/internal/domain"
	"github.com/vadiminshakov/usdbars/internal/services/pricer"
)

// Ledger holds raw balances per user and currency and the USD total per user.
// Not safe for concurrent use.
type Ledger struct {
	pricer pricer.Pricer
	raw    map[string]map[string]decimal.Decimal
	usd    map[string]decimal.Decimal
}

// New creates an empty ledger that values non-USD currencies with pricer.
func New(p pricer.Pricer) *Ledger {
	return &Ledger{
		pricer: p,
		raw:    make(map[string]map[string]decimal.Decimal),
		usd:    make(map[string]decimal.Decimal),
	}
}

// Apply adds the event delta to the user's balance and returns the user's new USD total.
//
// Only the touched currency is revalued: the rate at the event time is applied to both
// the old and the new raw balance, and the difference is added to the USD total.
// Positions in other currencies keep their last valuation.
func (l *Ledger) Apply(event domain.LedgerEvent) (decimal.Decimal, error) {
	balances, ok := l.raw[event.UserID]
	if !ok {
		balances = make(map[string]decimal.Decimal)
		l.raw[event.UserID] = balances
	}

	oldRaw := balances[event.Currency]
	newRaw := oldRaw.Add(event.Delta)

	oldUSD, newUSD := oldRaw, newRaw
	if !event.IsUSD() {
		pair := domain.NewUSDPair(event.Currency)
		rate, err := l.pricer.GetPrice(pair, event.Timestamp)
		if err != nil {
			return decimal.Decimal{}, errors.Wrapf(err, "value %s balance of user %s", pair.String(), event.UserID)
		}
		oldUSD = oldRaw.Mul(rate)
		newUSD = newRaw.Mul(rate)
	}

	balances[event.Currency] = newRaw
	total := l.usd[event.UserID].Add(newUSD.Sub(oldUSD))
	l.usd[event.UserID] = total

	return total, nil
}

// Raw returns the cumulative balance of currency held by user.
func (l *Ledger) Raw(user, currency string) decimal.Decimal {
	return l.raw[user][currency]
}

// USD returns the user's running USD total.
func (l *Ledger) USD(user string) decimal.Decimal {
	return l.usd[user]
}

// Users returns the users seen so far, sorted.
func (l *Ledger) Users() []string {
	users := make([]string, 0, len(l.usd))
	for user := range l.usd {
		users = append(users, user)
	}
	sort.Strings(users)
	return users
}
