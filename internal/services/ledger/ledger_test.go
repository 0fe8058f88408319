package ledger

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/usdbars/internal/domain"
	"github.com/vadiminshakov/usdbars/internal/services/pricer"
)

type countingPricer struct {
	price decimal.Decimal
	calls int
}

func (p *countingPricer) GetPrice(domain.Pair, time.Time) (decimal.Decimal, error) {
	p.calls++
	return p.price, nil
}

type failingPricer struct{}

func (failingPricer) GetPrice(pair domain.Pair, _ time.Time) (decimal.Decimal, error) {
	return decimal.Decimal{}, errors.Wrap(domain.ErrSymbolNotFound, pair.Symbol())
}

func event(user, currency string, ts int64, delta string) domain.LedgerEvent {
	return domain.LedgerEvent{
		UserID:    user,
		Currency:  currency,
		Timestamp: time.Unix(ts, 0),
		Delta:     decimal.RequireFromString(delta),
	}
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(decimal.RequireFromString(want)), "got %s, want %s", got, want)
}

func TestApply_CarryForwardScenario(t *testing.T) {
	p := pricer.NewSeriesPricer(map[string][]domain.Quote{
		"ABCUSD": {
			domain.NewQuote(time.Unix(1000, 0), decimal.RequireFromString("2.0")),
			domain.NewQuote(time.Unix(2000, 0), decimal.RequireFromString("3.0")),
		},
	})
	l := New(p)

	total, err := l.Apply(event("u1", "ABC", 1500, "10"))
	require.NoError(t, err)
	requireDecimal(t, "20", total)

	// old 10 ABC and new 15 ABC are both valued at 3.0: 20 + (45 - 30)
	total, err = l.Apply(event("u1", "ABC", 2500, "5"))
	require.NoError(t, err)
	requireDecimal(t, "35", total)

	requireDecimal(t, "15", l.Raw("u1", "ABC"))
	requireDecimal(t, "35", l.USD("u1"))
}

func TestApply_USDIsIdentity(t *testing.T) {
	p := &countingPricer{price: decimal.NewFromInt(100)}
	l := New(p)

	total, err := l.Apply(event("u1", "USD", 10, "12.5"))
	require.NoError(t, err)
	requireDecimal(t, "12.5", total)

	total, err = l.Apply(event("u1", "USD", 20, "-2.5"))
	require.NoError(t, err)
	requireDecimal(t, "10", total)
	require.Zero(t, p.calls)
}

func TestApply_PriceQueriedOncePerEvent(t *testing.T) {
	p := &countingPricer{price: decimal.NewFromInt(2)}
	l := New(p)

	_, err := l.Apply(event("u1", "ABC", 10, "1"))
	require.NoError(t, err)
	_, err = l.Apply(event("u1", "ABC", 20, "1"))
	require.NoError(t, err)

	require.Equal(t, 2, p.calls)
}

func TestApply_ConstantPriceSum(t *testing.T) {
	p := &countingPricer{price: decimal.RequireFromString("1.5")}
	l := New(p)

	deltas := []string{"4", "-1", "2.5", "0.5"}
	var total decimal.Decimal
	for i, d := range deltas {
		var err error
		total, err = l.Apply(event("u1", "ABC", int64(i), d))
		require.NoError(t, err)
	}

	requireDecimal(t, "6", l.Raw("u1", "ABC"))
	requireDecimal(t, "9", total)
}

func TestApply_OtherCurrenciesNotRevalued(t *testing.T) {
	p := pricer.NewSeriesPricer(map[string][]domain.Quote{
		"ABCUSD": {
			domain.NewQuote(time.Unix(0, 0), decimal.NewFromInt(2)),
			domain.NewQuote(time.Unix(100, 0), decimal.NewFromInt(10)),
		},
		"XYZUSD": {domain.NewQuote(time.Unix(0, 0), decimal.NewFromInt(1))},
	})
	l := New(p)

	_, err := l.Apply(event("u1", "ABC", 50, "1"))
	require.NoError(t, err)

	// ABC price moved to 10 but the ABC position keeps its valuation of 2
	total, err := l.Apply(event("u1", "XYZ", 150, "3"))
	require.NoError(t, err)
	requireDecimal(t, "5", total)
}

func TestApply_UsersAreIndependent(t *testing.T) {
	l := New(&countingPricer{price: decimal.NewFromInt(1)})

	_, err := l.Apply(event("u1", "USD", 1, "10"))
	require.NoError(t, err)
	_, err = l.Apply(event("u2", "USD", 2, "-4"))
	require.NoError(t, err)

	requireDecimal(t, "10", l.USD("u1"))
	requireDecimal(t, "-4", l.USD("u2"))
	require.Equal(t, []string{"u1", "u2"}, l.Users())
	require.True(t, l.USD("nobody").IsZero())
}

func TestApply_PricerErrorLeavesStateUntouched(t *testing.T) {
	l := New(failingPricer{})

	_, err := l.Apply(event("u1", "ABC", 1, "10"))
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrSymbolNotFound))
	require.Contains(t, err.Error(), "value ABC_USD balance of user u1")
	require.True(t, l.Raw("u1", "ABC").IsZero())
	require.True(t, l.USD("u1").IsZero())
}
