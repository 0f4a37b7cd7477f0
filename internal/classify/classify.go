// Package classify maps a declared media type to an extraction strategy.
package classify

// Strategy is the format-specific handler chosen for a declared media type.
type Strategy string

const (
	StrategyPDF         Strategy = "pdf"
	StrategyImage       Strategy = "image"
	StrategyDelimited   Strategy = "delimited-text"
	StrategySpreadsheet Strategy = "spreadsheet"
	StrategyUnsupported Strategy = "unsupported"
)

// Classify returns the extraction strategy for a declared media type.
// Matching is exact and case-sensitive on the canonical media-type string.
func Classify(mediaType string) Strategy {
	switch mediaType {
	case "application/pdf":
		return StrategyPDF
	case "image/jpeg", "image/png":
		return StrategyImage
	case "text/csv":
		return StrategyDelimited
	case "application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return StrategySpreadsheet
	default:
		return StrategyUnsupported
	}
}
