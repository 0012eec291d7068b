package export

import (
	"bytes"
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"partyroom-backend/internal/game"
)

const statsSheet = "Daily Stats"

var statsHeaders = []interface{}{"Day", "Revenue", "Expenses", "Profit", "Avg Satisfaction", "Bookings Completed"}

// StatsWorkbook renders the settlement history as an .xlsx workbook with a
// totals row at the bottom.
func StatsWorkbook(history []game.DailyStats) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(statsSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(statsSheet, "A1", &statsHeaders); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(statsSheet, "A1", "F1", headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}
	if err := f.SetColWidth(statsSheet, "A", "F", 18); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	var revenue, expenses, profit, completed int
	for i, s := range history {
		row := []interface{}{
			s.Day, s.Revenue, s.Expenses, s.Profit,
			math.Round(s.AvgSatisfaction*10) / 10, s.BookingsCompleted,
		}
		if err := setRow(f, i+2, row); err != nil {
			f.Close()
			return nil, err
		}
		revenue += s.Revenue
		expenses += s.Expenses
		profit += s.Profit
		completed += s.BookingsCompleted
	}

	totals := []interface{}{"Total", revenue, expenses, profit, "", completed}
	if err := setRow(f, len(history)+2, totals); err != nil {
		f.Close()
		return nil, err
	}

	if err := f.SetPanes(statsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(statsSheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
