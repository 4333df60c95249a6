package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes t as RFC 4180 CSV: a header record of column names, then
// one record per row. Cells use the shortest round-trip float form; cells a
// row never carried render as "NaN".
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.cols); err != nil {
		return fmt.Errorf("table: write csv header: %w", err)
	}
	rec := make([]string, len(t.cols))
	for i := 0; i < t.rows; i++ {
		for j, col := range t.cols {
			rec[j] = strconv.FormatFloat(t.data[col][i], 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("table: write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("table: flush csv: %w", err)
	}
	return nil
}
