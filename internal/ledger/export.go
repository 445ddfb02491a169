package ledger

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

var exportColumns = []string{"ID", "Tx Hash", "Action", "Listing ID", "From", "To", "Timestamp", "Amount (tCO2e)"}

// WriteXLSX writes the given entries to w as an Excel workbook, one row per
// entry in the order given.
func WriteXLSX(w io.Writer, entries []Entry) error {
	file := excelize.NewFile()
	defer file.Close()

	const sheetName = "Ledger"
	if err := file.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := file.SetCellValue(sheetName, cell, col); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for rowIdx, entry := range entries {
		values := []interface{}{
			entry.ID.String(),
			entry.TxHash,
			string(entry.Action),
			entry.ListingID,
			entry.From,
			entry.To,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.AmountTons,
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := file.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("failed to write row %d: %w", rowIdx+1, err)
			}
		}
	}

	// Wide columns for hashes and timestamps
	if err := file.SetColWidth(sheetName, "A", "B", 40); err != nil {
		return err
	}
	if err := file.SetColWidth(sheetName, "C", "H", 20); err != nil {
		return err
	}

	return file.Write(w)
}
