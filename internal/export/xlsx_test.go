package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestNewXLSXExporter_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "artifacts")
	e, err := NewXLSXExporter(dir)
	if err != nil {
		t.Fatalf("NewXLSXExporter: %v", err)
	}
	if e.Dir != dir {
		t.Fatalf("unexpected dir: %q", e.Dir)
	}
}

func TestRender_WritesTitleAndContentCells(t *testing.T) {
	e, err := NewXLSXExporter(t.TempDir())
	if err != nil {
		t.Fatalf("NewXLSXExporter: %v", err)
	}
	e.now = func() time.Time { return time.Date(2025, 6, 2, 15, 4, 5, 0, time.UTC) }

	path, err := e.Render("Sum Macro", "Sub Sum() ... End Sub")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if filepath.Base(path) != "macro_20250602_150405.xlsx" {
		t.Fatalf("unexpected filename: %q", filepath.Base(path))
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	a1, err := f.GetCellValue(sheet, "A1")
	if err != nil {
		t.Fatalf("A1: %v", err)
	}
	a2, err := f.GetCellValue(sheet, "A2")
	if err != nil {
		t.Fatalf("A2: %v", err)
	}
	if a1 != "Sum Macro" || a2 != "Sub Sum() ... End Sub" {
		t.Fatalf("unexpected cells: A1=%q A2=%q", a1, a2)
	}
}
