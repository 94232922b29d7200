package stats

// ColumnType hints how a column should be rendered.
type ColumnType string

const (
	ColumnText   ColumnType = "text"
	ColumnNumber ColumnType = "number"
)

// Column describes one table column.
type Column struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Type  ColumnType `json:"type"`
}

// Table is the plain row/column grid handed to every presentation surface.
// Cells are string, int, float64 or nil (undefined).
type Table struct {
	Name    string   `json:"name"`
	Title   string   `json:"title"`
	Columns []Column `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// NewTable creates an empty table with the given columns.
func NewTable(name, title string, columns ...Column) *Table {
	return &Table{Name: name, Title: title, Columns: columns, Rows: [][]any{}}
}

// AddRow appends a row; Number cells are converted to float64 or nil.
func (t *Table) AddRow(cells ...any) {
	row := make([]any, len(cells))
	for i, c := range cells {
		if n, ok := c.(Number); ok {
			row[i] = n.Value()
			continue
		}
		row[i] = c
	}
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// ColumnKeys returns the column keys in order.
func (t *Table) ColumnKeys() []string {
	keys := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		keys[i] = c.Key
	}
	return keys
}

// TextColumn and NumberColumn are shorthand column constructors.
func TextColumn(key, label string) Column   { return Column{Key: key, Label: label, Type: ColumnText} }
func NumberColumn(key, label string) Column { return Column{Key: key, Label: label, Type: ColumnNumber} }
