package csvstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/usdbars/internal/domain"
)

func TestDecodeQuotes(t *testing.T) {
	input := "symbol,timestamp,price\n" +
		"ABCUSD,1000,2.0\n" +
		"XYZUSD, 1500 , 0.25\n" +
		"ABCUSD,2000,3.0\n"

	series, err := DecodeQuotes(strings.NewReader(input), "market_data.csv")
	require.NoError(t, err)
	require.Len(t, series, 2)
	require.Len(t, series["ABCUSD"], 2)

	first := series["ABCUSD"][0]
	require.Equal(t, int64(1000), first.Timestamp.Unix())
	require.True(t, first.Price.Equal(decimal.NewFromInt(2)))
	require.True(t, series["XYZUSD"][0].Price.Equal(decimal.RequireFromString("0.25")))
}

func TestDecodeEvents_KeepsOrder(t *testing.T) {
	input := "user_id,currency,timestamp,delta\n" +
		"u2,USD,20,5\n" +
		"u1,ABC,10,-1.5\n" +
		"\n" +
		"u1,USD,30,100\n"

	events, err := DecodeEvents(strings.NewReader(input), "user_data.csv")
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, "u2", events[0].UserID)
	require.Equal(t, "ABC", events[1].Currency)
	require.True(t, events[1].Delta.Equal(decimal.RequireFromString("-1.5")))
	require.Equal(t, int64(30), events[2].Timestamp.Unix())
}

func TestDecode_HeaderOnly(t *testing.T) {
	events, err := DecodeEvents(strings.NewReader("user_id,currency,timestamp,delta\n"), "user_data.csv")
	require.NoError(t, err)
	require.Empty(t, events)

	series, err := DecodeQuotes(strings.NewReader(""), "market_data.csv")
	require.NoError(t, err)
	require.Empty(t, series)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"bad timestamp", "h1,h2,h3,h4\nu1,USD,abc,1\n", "user_data.csv:2: invalid timestamp"},
		{"bad delta", "h1,h2,h3,h4\nu1,USD,1,1\nu1,USD,2,x\n", "user_data.csv:3: invalid delta"},
		{"missing column", "h1,h2,h3,h4\nu1,USD,1\n", "expected 4 columns, got 3"},
		{"float timestamp", "h1,h2,h3,h4\nu1,USD,1.5,1\n", "invalid timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEvents(strings.NewReader(tt.input), "user_data.csv")
			require.Error(t, err)
			require.True(t, errors.Is(err, domain.ErrMalformedInput))
			require.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestDecodeQuotes_BadPrice(t *testing.T) {
	_, err := DecodeQuotes(strings.NewReader("symbol,timestamp,price\nABCUSD,1,two\n"), "market_data.csv")
	require.True(t, errors.Is(err, domain.ErrMalformedInput))
	require.Contains(t, err.Error(), "invalid price")
}

func TestReadFiles(t *testing.T) {
	dir := t.TempDir()
	market := filepath.Join(dir, "market_data.csv")
	users := filepath.Join(dir, "user_data.csv")
	require.NoError(t, os.WriteFile(market, []byte("symbol,timestamp,price\nABCUSD,1,2\n"), 0o644))
	require.NoError(t, os.WriteFile(users, []byte("user_id,currency,timestamp,delta\nu1,ABC,1,1\n"), 0o644))

	series, err := ReadQuotes(market)
	require.NoError(t, err)
	require.Len(t, series["ABCUSD"], 1)

	events, err := ReadEvents(users)
	require.NoError(t, err)
	require.Len(t, events, 1)

	_, err = ReadEvents(filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
}
