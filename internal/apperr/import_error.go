package apperr

import "fmt"

// GeneralColumn is the sentinel column for failures not tied to a single field.
const GeneralColumn = "general"

// ImportError is a row/column-addressed validation or import failure.
// Row is the 0-based index of the offending input row, or -1 when the
// failure cannot be traced to a row.
type ImportError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

func (e ImportError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("row %d, %s: %s", e.Row+1, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Column, e.Message)
}

// ToImportError projects any failure into a row-addressed ImportError.
//
// If the value already is an ImportError it passes through unchanged,
// preferring its own addressing over the supplied one. Otherwise the value is
// normalized first; row defaults to -1 and column to "unknown" when not
// supplied.
func ToImportError(v any, row int, column string) ImportError {
	if ie, ok := v.(ImportError); ok {
		return ie
	}
	if ie, ok := v.(*ImportError); ok && ie != nil {
		return *ie
	}

	if row < 0 {
		row = -1
	}
	if column == "" {
		column = "unknown"
	}

	app := Normalize(v)
	return ImportError{
		Row:     row,
		Column:  column,
		Message: app.Message,
	}
}
