// Package parse turns raw pasted text or spreadsheet-derived grids into
// ordered sequences of raw rows with fixed, named fields.
//
// Two entry points exist: ParseText for multi-line tab/comma-delimited blocks
// (the paste path) and ParseGrid for a 2-D array with a header row (the
// spreadsheet path). Both produce the same RawRow shape, so everything
// downstream is source-agnostic.
package parse

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Canonical field names for the transaction import schema.
const (
	FieldCustomerName = "customer_name"
	FieldAccountRef   = "account_reference"
	FieldKind         = "kind"
	FieldAmount       = "amount"
	FieldDate         = "date"
	FieldDescription  = "description"
	FieldReference    = "reference"
)

// TransactionFields lists the schema's fields in positional order. The first
// MinColumns are mandatory; description and reference are optional trailing
// columns.
var TransactionFields = []string{
	FieldCustomerName,
	FieldAccountRef,
	FieldKind,
	FieldAmount,
	FieldDate,
	FieldDescription,
	FieldReference,
}

// MinColumns is the minimum number of columns a row must yield.
const MinColumns = 5

// RawRow is one parsed input record prior to cleaning and validation.
type RawRow struct {
	// Line is the 0-based index of the row within the parsed input
	// (blank lines excluded).
	Line int

	// Fields maps canonical field names to untrimmed-of-meaning, but
	// whitespace-trimmed, string values.
	Fields map[string]string
}

// Get returns the value for a field, or the empty string if absent.
func (r RawRow) Get(field string) string {
	return r.Fields[field]
}

// ErrEmptyInput is returned when the input contains no data rows.
var ErrEmptyInput = errors.New("input is empty")

// InsufficientColumnsError reports a row that yielded fewer than MinColumns
// columns. Line is 0-based; the message shows the 1-based row number users
// see in their paste.
type InsufficientColumnsError struct {
	Line int
	Got  int
}

func (e *InsufficientColumnsError) Error() string {
	return fmt.Sprintf("row %d has %d columns, expected at least %d (name, account, kind, amount, date)",
		e.Line+1, e.Got, MinColumns)
}

// MissingColumnsError reports required columns absent from a grid header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// ParseText parses a pasted block of tab- or comma-delimited text into rows.
//
// Delimiter choice is per line: a tab anywhere on the line wins, so embedded
// commas are treated as literal content; otherwise a comma triggers the
// CSV-aware splitter; otherwise the whole line is a single column. Columns
// map positionally onto TransactionFields.
func ParseText(text string) ([]RawRow, error) {
	text = sanitizeText(text)
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	var rows []RawRow
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		cols := splitLine(line)
		if len(cols) < MinColumns {
			return nil, &InsufficientColumnsError{Line: len(rows), Got: len(cols)}
		}

		fields := make(map[string]string, len(TransactionFields))
		for i, name := range TransactionFields {
			if i < len(cols) {
				fields[name] = strings.TrimSpace(cols[i])
			} else {
				fields[name] = ""
			}
		}

		rows = append(rows, RawRow{Line: len(rows), Fields: fields})
	}

	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}
	return rows, nil
}

// splitLine chooses the delimiter for a single line.
func splitLine(line string) []string {
	if strings.Contains(line, "\t") {
		return strings.Split(line, "\t")
	}
	if strings.Contains(line, ",") {
		return splitCSVLine(line)
	}
	return []string{line}
}

// splitCSVLine splits a comma-delimited line, honoring double quotes.
// A doubled quote inside a quoted field emits a literal quote; a lone pair
// of quotes yields an empty field.
func splitCSVLine(line string) []string {
	var (
		fields  []string
		current strings.Builder
		quoted  bool
	)

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		switch c := runes[i]; {
		case c == '"':
			if quoted && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
			} else {
				quoted = !quoted
			}
		case c == ',' && !quoted:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(c)
		}
	}
	fields = append(fields, current.String())
	return fields
}

// sanitizeText strips a UTF-8 BOM, normalizes line endings, and replaces
// invalid UTF-8 sequences with the replacement rune.
func sanitizeText(text string) string {
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	if utf8.ValidString(text) {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == utf8.RuneError {
			b.WriteRune('�')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
