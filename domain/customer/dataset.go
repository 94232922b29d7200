package customer

import (
	"fmt"

	"custlens/domain/core"
)

// DefaultRows is the dataset size used when none is configured.
const DefaultRows = 1000

// SourceSynthetic marks a generated dataset.
const SourceSynthetic = "synthetic"

// Params records how a dataset was produced.
type Params struct {
	NumRows int    `json:"num_rows"`
	Seed    int64  `json:"seed"`
	Source  string `json:"source"` // "synthetic" or the imported file path
}

// Dataset is an immutable, ordered customer table.
type Dataset struct {
	params  Params
	records []Record
}

// NewDataset copies records into a new Dataset. An empty table is rejected.
func NewDataset(params Params, records []Record) (*Dataset, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: got %d", core.ErrInvalidRowCount, len(records))
	}
	owned := make([]Record, len(records))
	copy(owned, records)
	params.NumRows = len(owned)
	return &Dataset{params: params, records: owned}, nil
}

// Params returns the generation parameters.
func (d *Dataset) Params() Params { return d.params }

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.records) }

// At returns the i-th record by value.
func (d *Dataset) At(i int) Record { return d.records[i] }

// Records returns a copy of all rows.
func (d *Dataset) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// View returns a view covering every row.
func (d *Dataset) View() View {
	idx := make([]int, len(d.records))
	for i := range idx {
		idx[i] = i
	}
	return View{dataset: d, indices: idx}
}

// ============================================================================
// VIEW
// ============================================================================

// View is a read-only, order-preserving subsequence of a Dataset.
// It holds row indices only; the records stay in the Dataset.
type View struct {
	dataset *Dataset
	indices []int
}

// Len returns the number of rows in the view.
func (v View) Len() int { return len(v.indices) }

// IsEmpty reports whether the view has no rows.
func (v View) IsEmpty() bool { return len(v.indices) == 0 }

// At returns the i-th record of the view.
func (v View) At(i int) Record { return v.dataset.records[v.indices[i]] }

// SourceIndex returns the dataset row index of the view's i-th record.
func (v View) SourceIndex(i int) int { return v.indices[i] }

// Dataset returns the dataset the view reads from.
func (v View) Dataset() *Dataset { return v.dataset }

// Records returns a copy of the rows in view order.
func (v View) Records() []Record {
	out := make([]Record, len(v.indices))
	for i, idx := range v.indices {
		out[i] = v.dataset.records[idx]
	}
	return out
}

// Where returns the sub-view of rows matching keep, preserving order.
func (v View) Where(keep func(Record) bool) View {
	idx := make([]int, 0, len(v.indices))
	for _, i := range v.indices {
		if keep(v.dataset.records[i]) {
			idx = append(idx, i)
		}
	}
	return View{dataset: v.dataset, indices: idx}
}

// Numbers extracts a numeric column in view order.
func (v View) Numbers(f Field) ([]float64, error) {
	if !f.IsNumeric() {
		if f.IsCategorical() {
			return nil, fmt.Errorf("%w: %s", core.ErrNotNumeric, f)
		}
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownField, f)
	}
	out := make([]float64, len(v.indices))
	for i, idx := range v.indices {
		out[i], _ = v.dataset.records[idx].Number(f)
	}
	return out, nil
}

// Labels extracts a categorical column in view order.
func (v View) Labels(f Field) ([]string, error) {
	if !f.IsCategorical() {
		if f.IsNumeric() {
			return nil, fmt.Errorf("%w: %s", core.ErrNotCategorical, f)
		}
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownField, f)
	}
	out := make([]string, len(v.indices))
	for i, idx := range v.indices {
		out[i], _ = v.dataset.records[idx].Label(f)
	}
	return out, nil
}
