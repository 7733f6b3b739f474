package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"docworker/internal/domain"
)

const sheetName = "Documents"

// XLSXWriter builds a single-sheet workbook and writes it on Close.
type XLSXWriter struct {
	out  io.Writer
	file *excelize.File
	row  int
}

// NewXLSXWriter creates an XLSXWriter that writes the workbook to out.
func NewXLSXWriter(out io.Writer) (*XLSXWriter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}
	return &XLSXWriter{out: out, file: f, row: 1}, nil
}

func (w *XLSXWriter) WriteHeader() error {
	if err := w.writeRow(columns); err != nil {
		return err
	}

	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := w.file.SetRowStyle(sheetName, 1, 1, style); err != nil {
		return err
	}
	return w.file.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (w *XLSXWriter) WriteDocuments(docs []domain.Document) error {
	for i := range docs {
		if err := w.writeRow(documentToRow(&docs[i])); err != nil {
			return err
		}
	}
	return nil
}

func (w *XLSXWriter) writeRow(values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("writing row %d: %w", w.row, err)
	}
	w.row++
	return nil
}

// Close writes the workbook to the output and releases it.
func (w *XLSXWriter) Close() error {
	defer func() { _ = w.file.Close() }()
	if err := w.file.Write(w.out); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
