package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestBarStats_Add(t *testing.T) {
	stats := NewBarStats(decimal.NewFromInt(20))
	stats = stats.Add(decimal.NewFromInt(35))
	stats = stats.Add(decimal.NewFromInt(5))

	require.True(t, stats.Min.Equal(decimal.NewFromInt(5)))
	require.True(t, stats.Max.Equal(decimal.NewFromInt(35)))
	require.True(t, stats.Sum.Equal(decimal.NewFromInt(60)))
	require.Equal(t, 3, stats.Count)
	require.True(t, stats.Average().Equal(decimal.NewFromInt(20)))
}

func TestBarStats_Merge(t *testing.T) {
	a := NewBarStats(decimal.NewFromInt(10)).Add(decimal.NewFromInt(30))
	b := NewBarStats(decimal.NewFromInt(-5))

	merged := a.Merge(b)
	require.True(t, merged.Min.Equal(decimal.NewFromInt(-5)))
	require.True(t, merged.Max.Equal(decimal.NewFromInt(30)))
	require.True(t, merged.Sum.Equal(decimal.NewFromInt(35)))
	require.Equal(t, 3, merged.Count)

	require.Equal(t, a, a.Merge(BarStats{}))
	require.Equal(t, b, BarStats{}.Merge(b))
}

func TestBarStats_AverageEmpty(t *testing.T) {
	require.True(t, BarStats{}.Average().IsZero())
}

func TestBars_RowsOrdered(t *testing.T) {
	one := NewBarStats(decimal.NewFromInt(1))
	bars := Bars{
		"1h": WindowBars{
			3600: UserBars{"u2": one, "u1": one},
			0:    UserBars{"u3": one},
		},
	}

	rows := bars.Rows("1h")
	require.Len(t, rows, 3)
	require.Equal(t, BarRow{UserID: "u3", Start: 0, Stats: one}, rows[0])
	require.Equal(t, BarRow{UserID: "u1", Start: 3600, Stats: one}, rows[1])
	require.Equal(t, BarRow{UserID: "u2", Start: 3600, Stats: one}, rows[2])

	require.Nil(t, bars.Rows("1d"))
	require.Equal(t, []string{"u1", "u2", "u3"}, bars.Users("1h"))
}
