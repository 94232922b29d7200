package excel

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"custlens/domain/core"
	"custlens/domain/customer"
	"custlens/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRecords() []customer.Record {
	return []customer.Record{
		{CustomerID: 1, Age: 25, Income: 50000.5, PurchaseAmount: 120.25, City: "Paris", ProductCategory: "Books"},
		{CustomerID: 2, Age: 40, Income: 61000, PurchaseAmount: 75.5, City: "Tokyo", ProductCategory: "Food"},
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDataReader_CSVWithDisplayHeaders(t *testing.T) {
	path := writeFile(t, "customers.csv",
		"CustomerID,Age,Income,PurchaseAmount,City,ProductCategory\n"+
			"1,25,50000.5,120.25,Paris,Books\n"+
			",,,,,\n"+
			"2,40,61000,75.5,Tokyo,Food\n")

	ds, err := NewDataReader(path).ReadDataset()
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), ds.Records())
	assert.Equal(t, path, ds.Params().Source)
	assert.Equal(t, 2, ds.Params().NumRows)
}

func TestDataReader_ColumnOrderIsFree(t *testing.T) {
	path := writeFile(t, "customers.csv",
		"city,product_category,purchase_amount,income,age,customer_id\n"+
			"Paris,Books,120.25,50000.5,25,1\n")

	ds, err := NewDataReader(path).ReadDataset()
	require.NoError(t, err)
	assert.Equal(t, sampleRecords()[0], ds.At(0))
}

func TestDataReader_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		content string
		target  error
	}{
		{"header only", "customer_id,age,income,purchase_amount,city,product_category\n", core.ErrInvalidRowCount},
		{"missing column", "customer_id,age,income,purchase_amount,city\n1,25,1,20,Paris\n", core.ErrInvalidInput},
		{"bad number", "customer_id,age,income,purchase_amount,city,product_category\n1,old,1,20,Paris,Books\n", core.ErrInvalidInput},
		{"unknown city", "customer_id,age,income,purchase_amount,city,product_category\n1,30,1,20,Berlin,Books\n", core.ErrInvalidRecord},
		{"purchase out of range", "customer_id,age,income,purchase_amount,city,product_category\n1,30,1,500,Paris,Books\n", core.ErrInvalidRecord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "bad.csv", tt.content)
			_, err := NewDataReader(path).ReadDataset()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestDataReader_MissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "nope.xlsx")).ReadDataset()
	assert.Error(t, err)
}

func TestWriteDataset_RoundTripsThroughReader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDataset(sampleRecords(), &buf))

	path := filepath.Join(t.TempDir(), "customers.xlsx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	src := NewFileSource(path)
	ds, err := src.Dataset()
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	for i, want := range sampleRecords() {
		got := ds.At(i)
		assert.Equal(t, want.CustomerID, got.CustomerID)
		assert.Equal(t, want.Age, got.Age)
		assert.InDelta(t, want.Income, got.Income, 1e-9)
		assert.InDelta(t, want.PurchaseAmount, got.PurchaseAmount, 1e-9)
		assert.Equal(t, want.City, got.City)
		assert.Equal(t, want.ProductCategory, got.ProductCategory)
	}

	again, err := src.Dataset()
	require.NoError(t, err)
	assert.Same(t, ds, again)
}

func TestWriteWorkbook(t *testing.T) {
	tbl := stats.NewTable(stats.TableDescriptive, "Descriptive Statistics",
		stats.TextColumn("field", "Field"),
		stats.NumberColumn("mean", "Mean"),
		stats.NumberColumn("std", "Std"),
		stats.NumberColumn("count", "Count"),
	)
	tbl.AddRow("Age", stats.Number(30.5), stats.Undefined(), 1)

	d := &stats.Dashboard{
		Summary:     "Showing data for ages 20-60, City: All, Product Category: All",
		RowCount:    1,
		Metrics:     stats.Metrics{AverageAge: 30.5, AverageIncome: stats.Undefined(), MostCommonCity: "Paris"},
		Tables:      []*stats.Table{tbl},
		GeneratedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(d, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet, stats.TableDescriptive}, f.GetSheetList())

	filters, err := f.GetCellValue(SummarySheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, d.Summary, filters)
	income, err := f.GetCellValue(SummarySheet, "B5")
	require.NoError(t, err)
	assert.Empty(t, income, "undefined metric stays blank")

	rows, err := f.GetRows(stats.TableDescriptive)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Field", "Mean", "Std", "Count"}, rows[0])
	assert.Equal(t, "Age", rows[1][0])
	mean, err := strconv.ParseFloat(rows[1][1], 64)
	require.NoError(t, err)
	assert.Equal(t, 30.5, mean)
	assert.Equal(t, "", rows[1][2])
	assert.Equal(t, "1", rows[1][3])
}
