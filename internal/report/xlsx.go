// Package report renders aggregated bars as an xlsx workbook and a console summary.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/usdbars/internal/domain"
	"github.com/xuri/excelize/v2"
)

var sheetHeader = []interface{}{"user_id", "minimum_balance", "maximum_balance", "average_balance", "start_timestamp"}

// WriteXLSX writes one sheet per window with rows, in window order.
func WriteXLSX(path string, windows domain.Windows, bars domain.Bars) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create directory %s", dir)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#000000", Style: 1},
		},
	})
	if err != nil {
		return errors.Wrap(err, "create header style")
	}

	averageFormat := "0.0000"
	averageStyle, err := fx.NewStyle(&excelize.Style{CustomNumFmt: &averageFormat})
	if err != nil {
		return errors.Wrap(err, "create average style")
	}

	defaultSheet := fx.GetSheetName(0)
	written := 0
	for _, w := range windows {
		rows := bars.Rows(w.Name)
		if len(rows) == 0 {
			continue
		}

		if written == 0 {
			if err := fx.SetSheetName(defaultSheet, w.Name); err != nil {
				return errors.Wrapf(err, "rename sheet for %s", w.Name)
			}
		} else if _, err := fx.NewSheet(w.Name); err != nil {
			return errors.Wrapf(err, "create sheet for %s", w.Name)
		}

		if err := writeSheet(fx, w.Name, rows, headerStyle, averageStyle); err != nil {
			return errors.Wrapf(err, "write sheet %s", w.Name)
		}
		written++
	}

	if err := fx.SaveAs(path); err != nil {
		return errors.Wrap(err, "save workbook")
	}
	return nil
}

func writeSheet(fx *excelize.File, sheet string, rows []domain.BarRow, headerStyle, averageStyle int) error {
	if err := fx.SetSheetRow(sheet, "A1", &sheetHeader); err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheet, "A1", "E1", headerStyle); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		values := []interface{}{
			row.UserID,
			row.Stats.Min.InexactFloat64(),
			row.Stats.Max.InexactFloat64(),
			row.Stats.Average().Round(4).InexactFloat64(),
			row.Start,
		}
		if err := fx.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	last := fmt.Sprintf("D%d", len(rows)+1)
	if err := fx.SetCellStyle(sheet, "D2", last, averageStyle); err != nil {
		return err
	}

	return fx.SetColWidth(sheet, "A", "E", 18)
}
