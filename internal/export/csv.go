package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes the rows as comma-separated values with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	return writeDelimited(w, rows, ',')
}

// WriteTXT writes the rows as semicolon-delimited text, the conventional
// Brazilian spreadsheet-import flavor.
func WriteTXT(w io.Writer, rows []Row) error {
	return writeDelimited(w, rows, ';')
}

func writeDelimited(w io.Writer, rows []Row, sep rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = sep

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		if err := cw.Write(r.fields()); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
