package records

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/JaimeStill/hearth/pkg/filestore"
)

type csvTable struct {
	path string
}

// NewCSVStore returns a Store backed by a header-driven CSV file.
func NewCSVStore(path string, logger *slog.Logger) Store {
	return newFileStore(&csvTable{path: path}, logger.With("backend", BackendCSV))
}

func (t *csvTable) read() ([][]string, bool, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", t.path, err)
	}

	rows, err := readCSV(data)
	if err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", t.path, err)
	}
	return rows, true, nil
}

func (t *csvTable) write(rows [][]string) error {
	data, err := writeCSV(rows, false)
	if err != nil {
		return err
	}
	return filestore.WriteAtomic(t.path, data)
}

func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte(bom))))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// writeCSV encodes rows, optionally prefixed with a UTF-8 byte order mark
// so spreadsheet applications detect the encoding.
func writeCSV(rows [][]string, withBOM bool) ([]byte, error) {
	var buf bytes.Buffer
	if withBOM {
		buf.WriteString(bom)
	}

	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return buf.Bytes(), nil
}
