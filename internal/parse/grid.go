package parse

// grid.go handles the spreadsheet path: a 2-D array whose first row is a
// header. Header cells are mapped case-insensitively onto canonical field
// names through a fixed synonym table, so "Full Name", "customer_name" and
// "name" all land on customer_name.

import "strings"

// headerSynonyms maps lowercased header spellings to canonical field names.
var headerSynonyms = map[string]string{
	"name":              FieldCustomerName,
	"customer":          FieldCustomerName,
	"customer name":     FieldCustomerName,
	"customer_name":     FieldCustomerName,
	"full name":         FieldCustomerName,
	"full_name":         FieldCustomerName,
	"account":           FieldAccountRef,
	"account ref":       FieldAccountRef,
	"account_ref":       FieldAccountRef,
	"account reference": FieldAccountRef,
	"account_reference": FieldAccountRef,
	"bank":              FieldAccountRef,
	"bank account":      FieldAccountRef,
	"bank_account":      FieldAccountRef,
	"kind":              FieldKind,
	"type":              FieldKind,
	"transaction type":  FieldKind,
	"transaction_type":  FieldKind,
	"amount":            FieldAmount,
	"value":             FieldAmount,
	"sum":               FieldAmount,
	"date":              FieldDate,
	"transaction date":  FieldDate,
	"transaction_date":  FieldDate,
	"description":       FieldDescription,
	"desc":              FieldDescription,
	"memo":              FieldDescription,
	"notes":             FieldDescription,
	"reference":         FieldReference,
	"ref":               FieldReference,
	"reference number":  FieldReference,
	"reference_number":  FieldReference,
}

// requiredFields are the fields a grid header must resolve.
var requiredFields = []string{
	FieldCustomerName, FieldAccountRef, FieldKind, FieldAmount, FieldDate,
}

// ParseGrid parses a 2-D array with a header row into raw rows.
//
// Header cells are matched against the synonym table; unrecognized columns
// are ignored. Rows that are entirely empty are skipped. Returns
// ErrEmptyInput for an empty grid and MissingColumnsError when the header
// does not resolve every required field.
func ParseGrid(grid [][]string) ([]RawRow, error) {
	if len(grid) == 0 {
		return nil, ErrEmptyInput
	}

	// Resolve header positions. First match wins for each canonical field.
	positions := make(map[string]int, len(TransactionFields))
	for i, cell := range grid[0] {
		key := strings.ToLower(strings.TrimSpace(sanitizeText(cell)))
		canonical, ok := headerSynonyms[key]
		if !ok {
			continue
		}
		if _, seen := positions[canonical]; !seen {
			positions[canonical] = i
		}
	}

	var missing []string
	for _, field := range requiredFields {
		if _, ok := positions[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	var rows []RawRow
	for _, record := range grid[1:] {
		if isEmptyRecord(record) {
			continue
		}

		fields := make(map[string]string, len(TransactionFields))
		for _, name := range TransactionFields {
			pos, ok := positions[name]
			if ok && pos < len(record) {
				fields[name] = strings.TrimSpace(sanitizeText(record[pos]))
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

func isEmptyRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
