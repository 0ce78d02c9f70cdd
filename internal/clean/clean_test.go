package clean

import (
	"regexp"
	"testing"

	"github.com/finvolo/ledger/internal/parse"
)

// ----------------------------------------------------------------------------
// Value
// ----------------------------------------------------------------------------

func TestValue_ThousandsSeparators(t *testing.T) {
	res := Value("1,234.56", DefaultOptions())
	if res.Cleaned != "1234.56" {
		t.Errorf("Cleaned = %q, want %q", res.Cleaned, "1234.56")
	}
	found := false
	for _, c := range res.Changes {
		if c == "removed thousands separators" {
			found = true
		}
	}
	if !found {
		t.Errorf("Changes = %v, want a thousands-separator entry", res.Changes)
	}
}

func TestValue_CommasInFreeTextSurvive(t *testing.T) {
	res := Value("Doe, John and Sons", DefaultOptions())
	if res.Cleaned != "Doe, John and Sons" {
		t.Errorf("Cleaned = %q, comma stripped from free text", res.Cleaned)
	}
}

func TestValue_WhitespaceAndTrim(t *testing.T) {
	res := Value("Hello   World  ", DefaultOptions())
	if res.Cleaned != "Hello World" {
		t.Errorf("Cleaned = %q, want %q", res.Cleaned, "Hello World")
	}
}

func TestValue_Quotes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"quoted"`, "quoted"},
		{`""`, ""},
		{`say "hi" there`, "say hi there"},
		{`'single'`, "single"},
	}
	for _, tt := range tests {
		if got := Value(tt.input, DefaultOptions()).Cleaned; got != tt.want {
			t.Errorf("Value(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValue_NoChangeMeansNoChanges(t *testing.T) {
	res := Value("already clean", DefaultOptions())
	if len(res.Changes) != 0 {
		t.Errorf("Changes = %v, want empty", res.Changes)
	}
	if res.Cleaned != res.Original {
		t.Errorf("Cleaned = %q, want original %q", res.Cleaned, res.Original)
	}
}

func TestValue_CaseAndSpecialChars(t *testing.T) {
	opts := DefaultOptions()
	opts.NormalizeCase = true
	opts.RemoveSpecialChars = true

	res := Value("Hello! World@#", opts)
	if res.Cleaned != "hello world" {
		t.Errorf("Cleaned = %q, want %q", res.Cleaned, "hello world")
	}
}

func TestValue_CustomReplacements(t *testing.T) {
	opts := DefaultOptions()
	opts.Replacements = []Replacement{
		{Pattern: regexp.MustCompile(`(?i)ltd\.?`), With: "Limited"},
	}

	res := Value("Acme Ltd.", opts)
	if res.Cleaned != "Acme Limited" {
		t.Errorf("Cleaned = %q, want %q", res.Cleaned, "Acme Limited")
	}
}

func TestValue_DateAutoFormat(t *testing.T) {
	res := Value("01/15/2024", DefaultOptions())
	if res.Cleaned != "2024-01-15" {
		t.Errorf("Cleaned = %q, want %q", res.Cleaned, "2024-01-15")
	}
}

// ----------------------------------------------------------------------------
// Dataset
// ----------------------------------------------------------------------------

func row(line int, fields map[string]string) parse.RawRow {
	return parse.RawRow{Line: line, Fields: fields}
}

func TestDataset_ReportCountsByColumn(t *testing.T) {
	rows := []parse.RawRow{
		row(0, map[string]string{"amount": "1,000", "customer_name": "John  Doe"}),
		row(1, map[string]string{"amount": "2,500", "customer_name": "Jane"}),
	}

	cleaned, report := Dataset(rows, DefaultOptions(), nil)

	if cleaned[0].Get("amount") != "1000" {
		t.Errorf("amount = %q, want %q", cleaned[0].Get("amount"), "1000")
	}
	if report.ChangesByColumn["amount"] != 2 {
		t.Errorf("amount changes = %d, want 2", report.ChangesByColumn["amount"])
	}
	if report.ChangesByColumn["customer_name"] != 1 {
		t.Errorf("customer_name changes = %d, want 1", report.ChangesByColumn["customer_name"])
	}
}

func TestDataset_Idempotent(t *testing.T) {
	rows := []parse.RawRow{
		row(0, map[string]string{"amount": "  1,234.56 ", "date": "15/01/2024", "customer_name": `"Doe,  John"`}),
	}

	once, _ := Dataset(rows, DefaultOptions(), nil)
	twice, report := Dataset(once, DefaultOptions(), nil)

	if report.TotalChanges != 0 {
		t.Errorf("second pass TotalChanges = %d, want 0", report.TotalChanges)
	}
	for field, value := range once[0].Fields {
		if twice[0].Get(field) != value {
			t.Errorf("field %q changed on second pass: %q -> %q", field, value, twice[0].Get(field))
		}
	}
}

func TestDataset_PerColumnOverride(t *testing.T) {
	rows := []parse.RawRow{
		row(0, map[string]string{"customer_name": "JOHN", "description": "KEEP CASE"}),
	}

	lower := DefaultOptions()
	lower.NormalizeCase = true
	perColumn := map[string]Options{"customer_name": lower}

	cleaned, _ := Dataset(rows, DefaultOptions(), perColumn)
	if cleaned[0].Get("customer_name") != "john" {
		t.Errorf("customer_name = %q, want lowercased", cleaned[0].Get("customer_name"))
	}
	if cleaned[0].Get("description") != "KEEP CASE" {
		t.Errorf("description = %q, want unchanged", cleaned[0].Get("description"))
	}
}

func TestDataset_DoesNotMutateInput(t *testing.T) {
	rows := []parse.RawRow{
		row(0, map[string]string{"amount": "1,000"}),
	}

	_, _ = Dataset(rows, DefaultOptions(), nil)
	if rows[0].Get("amount") != "1,000" {
		t.Errorf("input mutated: amount = %q", rows[0].Get("amount"))
	}
}
