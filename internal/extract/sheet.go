package extract

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/seonho/docvault/internal/classify"
)

// extractSheet reads the first sheet of a workbook (index 0 in sheet
// order), row-major with no header inference, rejoined like CSV.
func extractSheet(data []byte) (string, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", &Error{Strategy: classify.StrategySpreadsheet, Err: err}
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return "", &Error{Strategy: classify.StrategySpreadsheet, Err: fmt.Errorf("workbook has no sheets")}
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return "", &Error{Strategy: classify.StrategySpreadsheet, Err: err}
	}

	return joinRows(rows), nil
}
