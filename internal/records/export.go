package records

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Export writes the whole record set as a spreadsheet. The csv form carries a
// byte order mark so spreadsheet applications detect UTF-8.
func (r *repo) Export(ctx context.Context, format string, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rows := encodeRows(r.Snapshot())

	switch strings.ToLower(format) {
	case "csv":
		data, err := writeCSV(rows, true)
		if err != nil {
			return fmt.Errorf("encode csv: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "xlsx":
		f, err := newWorkbook(rows)
		if err != nil {
			return fmt.Errorf("build workbook: %w", err)
		}
		defer f.Close()
		return f.Write(w)
	}

	return fmt.Errorf("%w: %q", ErrBadFormat, format)
}
