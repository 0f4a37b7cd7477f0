package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/seonho/docvault/internal/classify"
)

// extractCSV parses row/column structure and rejoins rows with commas and
// lines with newlines, in original row order. Any row-level parse error
// fails the whole extraction; partial rows are not accepted.
func extractCSV(data []byte) (string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // ragged rows are structural, not errors

	records, err := reader.ReadAll()
	if err != nil {
		return "", &Error{Strategy: classify.StrategyDelimited, Err: fmt.Errorf("csv parsing errors occurred: %w", err)}
	}

	return joinRows(records), nil
}

// joinRows is the shared lossy re-serialization for CSV and spreadsheet
// extraction: cells joined by commas, rows by newlines.
func joinRows(rows [][]string) string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = strings.Join(row, ",")
	}
	return strings.Join(lines, "\n")
}
