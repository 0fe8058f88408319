package report

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/vadiminshakov/usdbars/internal/domain"
)

// WindowSummary headline numbers of one window.
type WindowSummary struct {
	Window  domain.Window
	Buckets int
	Users   int
	Rows    int
}

// Summarize computes per-window summaries in window order.
func Summarize(windows domain.Windows, bars domain.Bars) []WindowSummary {
	summaries := make([]WindowSummary, 0, len(windows))
	for _, w := range windows {
		summaries = append(summaries, WindowSummary{
			Window:  w,
			Buckets: len(bars[w.Name]),
			Users:   len(bars.Users(w.Name)),
			Rows:    len(bars.Rows(w.Name)),
		})
	}
	return summaries
}

// RenderSummary prints the per-window summary table to out.
func RenderSummary(out io.Writer, summaries []WindowSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle("USD BALANCE BARS")
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Window", "Seconds", "Buckets", "Users", "Rows"})
	for _, s := range summaries {
		t.AppendRow(table.Row{s.Window.Name, s.Window.Length, s.Buckets, s.Users, s.Rows})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	t.Render()
}
