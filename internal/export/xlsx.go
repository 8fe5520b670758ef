package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/MikeSquared-Agency/annotator/internal/dataset"
)

const sheetName = "labels"

var header = []any{"row", "input", "labeled", "aspect", "polarity", "emotion"}

// WriteWorkbook writes records as a single-sheet XLSX workbook with one
// spreadsheet row per label. Unlabeled records get a single row with empty
// label columns.
func WriteWorkbook(w io.Writer, records []dataset.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	line := 1
	if err := writeRow(sw, line, header); err != nil {
		return err
	}
	for i, rec := range records {
		input := rec.InputText()
		if len(rec.Output) == 0 {
			line++
			if err := writeRow(sw, line, []any{i, input, rec.Labeled(), "", "", ""}); err != nil {
				return err
			}
			continue
		}
		for _, l := range rec.Output {
			line++
			if err := writeRow(sw, line, []any{i, input, true, l.Aspect, l.Polarity, l.Emotion}); err != nil {
				return err
			}
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(sw *excelize.StreamWriter, line int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, line)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := sw.SetRow(cell, values); err != nil {
		return fmt.Errorf("write row %d: %w", line, err)
	}
	return nil
}
