package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"skipcorr/internal/errors"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestRead_CSVWithHeader(t *testing.T) {
	path := writeCSV(t, "x,y\n1.5,2.5\n3.0,4.0\n")

	m, err := NewDataReader(path).Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if m.N() != 2 || m.Cols() != 2 {
		t.Fatalf("shape %dx%d, want 2x2", m.N(), m.Cols())
	}
	if m.Names[0] != "x" || m.Names[1] != "y" {
		t.Fatalf("names = %v, want [x y]", m.Names)
	}
	if m.Rows[0][0] != 1.5 || m.Rows[1][1] != 4.0 {
		t.Fatalf("values not parsed: %v", m.Rows)
	}
}

func TestRead_CSVWithoutHeader(t *testing.T) {
	path := writeCSV(t, "1,2\n3,4\n")

	m, err := NewDataReader(path).Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(m.Names) != 0 {
		t.Fatalf("all-numeric first row must be data, got names %v", m.Names)
	}
	if m.N() != 2 {
		t.Fatalf("got %d rows, want 2", m.N())
	}
}

func TestRead_RejectsNonNumericCell(t *testing.T) {
	path := writeCSV(t, "x,y\n1,2\n3,oops\n")

	_, err := NewDataReader(path).Read()
	if err == nil {
		t.Fatal("expected error for non-numeric cell")
	}
	if errors.GetCode(err) != errors.CodeInvalidInput {
		t.Fatalf("error code %v, want %v", errors.GetCode(err), errors.CodeInvalidInput)
	}
}

func TestRead_RejectsHeaderOnlyFile(t *testing.T) {
	path := writeCSV(t, "x,y\n")
	if _, err := NewDataReader(path).Read(); err == nil {
		t.Fatal("expected error for header-only file")
	}
}

func TestRead_MissingFileIsNotFound(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "nope.csv")).Read()
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if errors.GetCode(err) != errors.CodeNotFound {
		t.Fatalf("error code %v, want %v", errors.GetCode(err), errors.CodeNotFound)
	}
}

func TestRead_Excel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range [][]interface{}{
		{"x", "y"},
		{1.0, 2.0},
		{3.0, 4.5},
	} {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}

	m, err := NewDataReader(path).Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if m.N() != 2 || m.Cols() != 2 {
		t.Fatalf("shape %dx%d, want 2x2", m.N(), m.Cols())
	}
	if m.Names[1] != "y" || m.Rows[1][1] != 4.5 {
		t.Fatalf("workbook not parsed: names=%v rows=%v", m.Names, m.Rows)
	}
}
