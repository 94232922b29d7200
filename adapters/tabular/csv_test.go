package tabular

import (
	"bytes"
	"encoding/csv"
	"testing"

	"custlens/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *stats.Table {
	t := stats.NewTable(stats.TableCategoryStats, "Purchase Amount by Product Category",
		stats.TextColumn("product_category", "Product Category"),
		stats.NumberColumn("count", "Count"),
		stats.NumberColumn("mean", "Mean"),
	)
	t.AddRow("Books", 2, stats.Number(12.5))
	t.AddRow("Food", 0, stats.Undefined())
	return t
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(sampleTable(), &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Product Category", "Count", "Mean"},
		{"Books", "2", "12.5"},
		{"Food", "0", ""},
	}, rows)
}

func TestWriteCSV_EmptyTableWritesHeader(t *testing.T) {
	tbl := stats.NewTable("x", "X", stats.TextColumn("field", ""), stats.NumberColumn("n", "N"))
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(tbl, &buf))
	assert.Equal(t, "field,N\n", buf.String())
}

func TestWriteCSV_NilTable(t *testing.T) {
	assert.Error(t, WriteCSV(nil, &bytes.Buffer{}))
}

func TestFrame(t *testing.T) {
	df := Frame(sampleTable())
	require.NoError(t, df.Err)
	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, []string{"Product Category", "Count", "Mean"}, df.Names())
	assert.Equal(t, []string{"Books", "Food"}, df.Col("Product Category").Records())
}

func TestCell(t *testing.T) {
	assert.Equal(t, "", Cell(nil))
	assert.Equal(t, "3", Cell(3))
	assert.Equal(t, "0.25", Cell(0.25))
	assert.Equal(t, "", Cell(stats.Undefined()))
	assert.Equal(t, "Paris", Cell("Paris"))
}
