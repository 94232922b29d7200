// Package tabular exports dashboard tables as CSV through a gota DataFrame.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"custlens/domain/stats"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Frame converts a table to a string-typed DataFrame. Undefined cells become
// empty strings.
func Frame(t *stats.Table) dataframe.DataFrame {
	records := make([][]string, 0, t.Len()+1)
	records = append(records, header(t))
	for _, row := range t.Rows {
		out := make([]string, len(row))
		for i, v := range row {
			out[i] = Cell(v)
		}
		records = append(records, out)
	}
	return dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
}

// WriteCSV writes t with a header row of column labels.
func WriteCSV(t *stats.Table, w io.Writer) error {
	if t == nil {
		return fmt.Errorf("no table to export")
	}
	if t.Len() == 0 {
		cw := csv.NewWriter(w)
		if err := cw.Write(header(t)); err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	}

	df := Frame(t)
	if df.Err != nil {
		return fmt.Errorf("failed to build frame for %s: %w", t.Name, df.Err)
	}
	return df.WriteCSV(w)
}

func header(t *stats.Table) []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Label
		if names[i] == "" {
			names[i] = c.Key
		}
	}
	return names
}

// Cell formats one table cell.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case stats.Number:
		if !x.IsDefined() {
			return ""
		}
		return strconv.FormatFloat(x.Float(), 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
