package backup

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/antiXlive/Expense/internal/models"

	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{"Date", "Category", "Subcategory", "Amount", "Note"}

func exportRecord(tx models.Transaction) []string {
	catName := ""
	if tx.CatName != nil {
		catName = *tx.CatName
	}
	subName := ""
	if tx.SubName != nil {
		subName = *tx.SubName
	}
	return []string{tx.Date, catName, subName, tx.Amount.StringFixed(2), tx.Note}
}

// ExportCSV writes the rows as CSV.
func ExportCSV(w io.Writer, rows []models.Transaction) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, tx := range rows {
		if err := writer.Write(exportRecord(tx)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// ExportXLSX writes the rows as a single-sheet workbook.
func ExportXLSX(w io.Writer, rows []models.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Transactions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, h := range exportHeader {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, h)
	}
	for idx, tx := range rows {
		row := idx + 2
		for col, v := range exportRecord(tx) {
			cell := fmt.Sprintf("%c%d", 'A'+col, row)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "C", 18)
	f.SetColWidth(sheetName, "D", "D", 12)
	f.SetColWidth(sheetName, "E", "E", 30)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
