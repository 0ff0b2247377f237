// Package export renders generated macro content into downloadable
// spreadsheet artifacts. Export is a presentation concern: it runs after
// persistence has succeeded, and its failures are reported separately from
// persistence failures.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type for the produced workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Exporter writes a (title, content) pair into a binary artifact and returns
// the filesystem path of the result.
type Exporter interface {
	Render(title, content string) (string, error)
}

// XLSXExporter writes .xlsx workbooks into Dir. The title lands in A1 and
// the macro body in A2 of the active sheet.
type XLSXExporter struct {
	Dir string

	// now is swappable in tests to pin the filename timestamp.
	now func() time.Time
}

// NewXLSXExporter builds an exporter rooted at dir, creating it when absent.
func NewXLSXExporter(dir string) (*XLSXExporter, error) {
	if dir == "" {
		dir = "temp"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &XLSXExporter{Dir: dir, now: time.Now}, nil
}

// Render writes a new workbook and returns its path. Filenames carry a
// second-resolution timestamp (macro_YYYYMMDD_HHMMSS.xlsx); collisions within
// the same second are acceptable for a download artifact.
func (e *XLSXExporter) Render(title, content string) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return "", err
	}
	if err := f.SetCellValue(sheet, "A2", content); err != nil {
		return "", err
	}

	nowFn := e.now
	if nowFn == nil {
		nowFn = time.Now
	}
	name := fmt.Sprintf("macro_%s.xlsx", nowFn().Format("20060102_150405"))
	path := filepath.Join(e.Dir, name)
	if err := f.SaveAs(path); err != nil {
		return "", err
	}
	return path, nil
}
