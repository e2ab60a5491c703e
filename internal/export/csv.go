package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/pfrederiksen/spielplan/internal/match"
)

// CSVOptions configures WriteCSV.
type CSVOptions struct {
	Delimiter rune // defaults to ';'
}

// WriteCSV writes a header row and one row per record.
func WriteCSV(w io.Writer, records []match.Record, opts CSVOptions) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rec.Row())
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = ';'
	}
	return writeBOMCSV(w, delim, match.Columns, rows)
}

// writeBOMCSV writes headers and rows as UTF-8 with a leading byte-order mark.
func writeBOMCSV(w io.Writer, delim rune, headers []string, rows [][]string) error {
	enc := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())

	cw := csv.NewWriter(enc)
	cw.Comma = delim
	cw.UseCRLF = true

	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding csv: %w", err)
	}
	return nil
}
