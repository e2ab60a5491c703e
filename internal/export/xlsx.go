package export

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/pfrederiksen/spielplan/internal/match"
)

// SheetName is the worksheet holding the schedule.
const SheetName = "Spielplan"

const (
	headerFill  = "1F4E78"
	stripeFill  = "DDEBF7"
	maxColWidth = 50.0
)

// WriteXLSX writes records as a single-sheet workbook.
func WriteXLSX(w io.Writer, records []match.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerFill}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	stripeStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{stripeFill}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("creating stripe style: %w", err)
	}

	widths := make([]int, len(match.Columns))
	track := func(row []string) {
		for i, v := range row {
			if n := utf8.RuneCountInString(v); n > widths[i] {
				widths[i] = n
			}
		}
	}

	header := match.Columns
	track(header)
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(match.Columns))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, rec := range records {
		rowNum := i + 2
		row := rec.Row()
		track(row)

		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", rowNum, err)
		}

		// shade every second data row
		if i%2 == 1 {
			end := fmt.Sprintf("%s%d", lastCol, rowNum)
			if err := f.SetCellStyle(SheetName, cell, end, stripeStyle); err != nil {
				return fmt.Errorf("styling row %d: %w", rowNum, err)
			}
		}
	}

	for i, n := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := float64(n) + 2
		if width > maxColWidth {
			width = maxColWidth
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("setting column width: %w", err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	if len(records) > 0 {
		ref := fmt.Sprintf("A1:%s%d", lastCol, len(records)+1)
		if err := f.AutoFilter(SheetName, ref, nil); err != nil {
			return fmt.Errorf("adding autofilter: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
