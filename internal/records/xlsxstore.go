package records

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/JaimeStill/hearth/pkg/filestore"
)

const sheetName = "records"

type xlsxTable struct {
	path string
}

// NewXLSXStore returns a Store backed by the first sheet of an Excel workbook.
func NewXLSXStore(path string, logger *slog.Logger) Store {
	return newFileStore(&xlsxTable{path: path}, logger.With("backend", BackendXLSX))
}

func (t *xlsxTable) read() ([][]string, bool, error) {
	if _, err := os.Stat(t.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("stat %s: %w", t.path, err)
	}

	f, err := excelize.OpenFile(t.path)
	if err != nil {
		return nil, false, fmt.Errorf("open %s: %w", t.path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", t.path, err)
	}
	return rows, true, nil
}

func (t *xlsxTable) write(rows [][]string) error {
	f, err := newWorkbook(rows)
	if err != nil {
		return err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("encode workbook: %w", err)
	}
	return filestore.WriteAtomic(t.path, buf.Bytes())
}

// newWorkbook lays rows out on a single sheet as text cells.
func newWorkbook(rows [][]string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			f.Close()
			return nil, err
		}

		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	return f, nil
}
