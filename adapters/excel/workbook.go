package excel

import (
	"fmt"
	"io"

	"custlens/domain/customer"
	"custlens/domain/stats"

	"github.com/xuri/excelize/v2"
)

// SummarySheet is the first sheet of every exported workbook.
const SummarySheet = "Summary"

// maxSheetName is Excel's sheet name length limit.
const maxSheetName = 31

// WriteWorkbook writes the dashboard as an .xlsx workbook: a Summary sheet
// with the criteria and metrics, followed by one sheet per table. Undefined
// cells are left blank.
func WriteWorkbook(d *stats.Dashboard, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}
	if err := writeSummary(f, d); err != nil {
		return err
	}

	for _, t := range d.Tables {
		if err := writeTable(f, t); err != nil {
			return fmt.Errorf("failed to write sheet %s: %w", t.Name, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteDataset writes raw records to a single-sheet workbook that
// DataReader can import again.
func WriteDataset(records []customer.Record, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(customer.Fields))
	for i, field := range customer.Fields {
		header[i] = string(field)
	}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		return err
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.CustomerID, r.Age, r.Income, r.PurchaseAmount, r.City, r.ProductCategory}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, d *stats.Dashboard) error {
	m := d.Metrics
	rows := [][]interface{}{
		{"Filters", d.Summary},
		{"Rows", d.RowCount},
		{"Generated", d.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Average Age", m.AverageAge.Value()},
		{"Average Income", m.AverageIncome.Value()},
		{"Average Purchase", m.AveragePurchase.Value()},
		{"Total Purchases", m.TotalPurchases.Value()},
		{"Max Purchase", m.MaxPurchase.Value()},
		{"Most Common City", m.MostCommonCity},
	}
	for i, row := range rows {
		if err := setRow(f, SummarySheet, i+1, row); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	return nil
}

func writeTable(f *excelize.File, t *stats.Table) error {
	name := t.Name
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	if _, err := f.NewSheet(name); err != nil {
		return err
	}

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Label
	}
	if err := setRow(f, name, 1, header); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := setRow(f, name, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

// setRow writes cells left to right, skipping nil so undefined values stay blank.
func setRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	for col, v := range cells {
		if v == nil {
			continue
		}
		name, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, name, v); err != nil {
			return err
		}
	}
	return nil
}
