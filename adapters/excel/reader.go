package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"custlens/domain/core"
	"custlens/domain/customer"

	"github.com/xuri/excelize/v2"
)

// DataReader imports a customer table from an Excel or CSV file
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadDataset reads the file and validates every row.
func (r *DataReader) ReadDataset() (*customer.Dataset, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}

	records, err := parseRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.filePath, err)
	}
	return customer.NewDataset(customer.Params{Source: r.filePath}, records)
}

// readExcelRows reads the first sheet of the workbook
func (r *DataReader) readExcelRows() ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheets[0], err)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", sheets[0], float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

// readCSVRows reads CSV data
func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// headerKey folds "PurchaseAmount", "purchase_amount" and "Purchase Amount"
// to the same key.
func headerKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseRows maps a header row plus data rows onto customer records.
func parseRows(rows [][]string) ([]customer.Record, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: file must have a header row and at least one data row", core.ErrInvalidRowCount)
	}

	columns := make(map[customer.Field]int, len(customer.Fields))
	for i, h := range rows[0] {
		for _, f := range customer.Fields {
			if headerKey(h) == headerKey(string(f)) {
				columns[f] = i
			}
		}
	}
	for _, f := range customer.Fields {
		if _, ok := columns[f]; !ok {
			return nil, core.NewValidationError(string(f), "column missing")
		}
	}

	records := make([]customer.Record, 0, len(rows)-1)
	for line, row := range rows[1:] {
		cell := func(f customer.Field) string {
			if i := columns[f]; i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		if isBlank(row) {
			continue
		}

		rec, err := parseRecord(cell)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line+2, err)
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", line+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRecord(cell func(customer.Field) string) (customer.Record, error) {
	var rec customer.Record
	var err error
	if rec.CustomerID, err = strconv.Atoi(cell(customer.FieldCustomerID)); err != nil {
		return rec, core.NewValidationError(string(customer.FieldCustomerID), err.Error())
	}
	if rec.Age, err = strconv.Atoi(cell(customer.FieldAge)); err != nil {
		return rec, core.NewValidationError(string(customer.FieldAge), err.Error())
	}
	if rec.Income, err = strconv.ParseFloat(cell(customer.FieldIncome), 64); err != nil {
		return rec, core.NewValidationError(string(customer.FieldIncome), err.Error())
	}
	if rec.PurchaseAmount, err = strconv.ParseFloat(cell(customer.FieldPurchaseAmount), 64); err != nil {
		return rec, core.NewValidationError(string(customer.FieldPurchaseAmount), err.Error())
	}
	rec.City = cell(customer.FieldCity)
	rec.ProductCategory = cell(customer.FieldProductCategory)
	return rec, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// FileSource serves a dataset imported from a file. The first call to
// Dataset reads the file; Reload replaces the dataset only when the new
// import succeeds, so readers never see a half-written file.
type FileSource struct {
	reader *DataReader
	mu     sync.RWMutex
	loaded bool
	ds     *customer.Dataset
	err    error
}

// NewFileSource creates a lazily loading file-backed dataset source.
func NewFileSource(path string) *FileSource {
	return &FileSource{reader: NewDataReader(path)}
}

// Path returns the imported file.
func (s *FileSource) Path() string { return s.reader.filePath }

// Dataset implements ports.DatasetSource.
func (s *FileSource) Dataset() (*customer.Dataset, error) {
	s.mu.RLock()
	if s.loaded {
		defer s.mu.RUnlock()
		return s.ds, s.err
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		s.ds, s.err = s.reader.ReadDataset()
		s.loaded = true
	}
	return s.ds, s.err
}

// Reload re-imports the file. On failure the previously loaded dataset
// stays in place and the error is returned.
func (s *FileSource) Reload() error {
	ds, err := s.reader.ReadDataset()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if !s.loaded || s.ds == nil {
			s.err = err
			s.loaded = true
		}
		return err
	}
	s.ds, s.err, s.loaded = ds, nil, true
	return nil
}
