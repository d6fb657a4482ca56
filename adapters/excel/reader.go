package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"skipcorr/domain/stats"
	"skipcorr/internal/errors"
)

// DataReader loads a numeric sample matrix from an Excel or CSV file. The
// first row is treated as a header when any of its cells is non-numeric;
// every remaining cell must parse as a float (missing values are rejected,
// not imputed).
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader for the given file, inferring the format
// from the extension.
func NewDataReader(filePath string) *DataReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// Read loads the file into a sample matrix.
func (r *DataReader) Read() (*stats.Matrix, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("input file %s", r.filePath))
	}

	var records [][]string
	var err error
	switch r.fileType {
	case "csv":
		records, err = r.readCSV()
	case "xlsx":
		records, err = r.readExcel()
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported file type %q", r.fileType))
	}
	if err != nil {
		return nil, err
	}
	return parseMatrix(records)
}

func (r *DataReader) readCSV() ([][]string, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open CSV file %s", r.filePath)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse CSV file %s", r.filePath)
	}
	return records, nil
}

func (r *DataReader) readExcel() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open Excel file %s", r.filePath)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.InvalidInput("workbook contains no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %s", sheets[0])
	}
	return rows, nil
}

// parseMatrix converts raw string records into a numeric matrix, detecting an
// optional header row.
func parseMatrix(records [][]string) (*stats.Matrix, error) {
	if len(records) == 0 {
		return nil, errors.InvalidInput("input file is empty")
	}

	start := 0
	var names []string
	if !numericRow(records[0]) {
		names = append([]string(nil), records[0]...)
		start = 1
	}
	if start >= len(records) {
		return nil, errors.InvalidInput("input file contains a header but no data rows")
	}

	cols := len(records[start])
	rows := make([][]float64, 0, len(records)-start)
	for i := start; i < len(records); i++ {
		record := records[i]
		if len(record) != cols {
			return nil, errors.InvalidInput(fmt.Sprintf("row %d has %d cells, want %d", i+1, len(record), cols))
		}
		row := make([]float64, cols)
		for j, cell := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, errors.InvalidInput(fmt.Sprintf("row %d column %d: %q is not numeric", i+1, j+1, cell))
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	return &stats.Matrix{Names: names, Rows: rows}, nil
}

func numericRow(record []string) bool {
	for _, cell := range record {
		if _, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err != nil {
			return false
		}
	}
	return len(record) > 0
}
