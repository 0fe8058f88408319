package csvstore

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/usdbars/internal/domain"
	"github.com/vadiminshakov/usdbars/internal/storage/staging"
)

// AveragePlaces number of decimal places written for average balances.
const AveragePlaces = 4

var barHeader = []string{"user_id", "minimum_balance", "maximum_balance", "average_balance", "start_timestamp"}

// BarFileName returns the output file name for a window.
func BarFileName(window string) string {
	return fmt.Sprintf("bars-%s.csv", window)
}

// WriteBars stages one bars-<window>.csv per window that has rows and returns the final paths.
// Files appear under dir only when the stage is committed.
func WriteBars(stage *staging.Stage, dir string, windows domain.Windows, bars domain.Bars) ([]string, error) {
	if dir == "" {
		dir = "."
	}

	var paths []string
	for _, w := range windows {
		rows := bars.Rows(w.Name)
		if len(rows) == 0 {
			continue
		}

		path := filepath.Join(dir, BarFileName(w.Name))
		tmp, err := stage.Reserve(path)
		if err != nil {
			return nil, err
		}
		if err := writeBarFile(tmp, rows); err != nil {
			return nil, errors.Wrapf(err, "write %s", path)
		}
		paths = append(paths, path)
	}

	return paths, nil
}

func writeBarFile(path string, rows []domain.BarRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(barHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(FormatRow(row)); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	return f.Close()
}

// FormatRow renders a bar row as output columns.
func FormatRow(row domain.BarRow) []string {
	return []string{
		row.UserID,
		row.Stats.Min.String(),
		row.Stats.Max.String(),
		row.Stats.Average().StringFixed(AveragePlaces),
		strconv.FormatInt(row.Start, 10),
	}
}
