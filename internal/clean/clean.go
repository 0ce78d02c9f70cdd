// Package clean applies deterministic normalization to raw import values.
//
// The generic pipeline (Value, Dataset) runs a fixed sequence of
// transformations controlled by Options; the order is part of the contract
// and must not change, since re-cleaning already-clean data has to be a
// no-op. Domain-specific cleaners for amounts, transaction kinds, phone
// numbers, emails and names live in domain.go and are invoked explicitly by
// callers, never by the generic pipeline.
package clean

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/finvolo/ledger/internal/parse"
)

// Replacement is a caller-supplied regex substitution, applied after all
// built-in transformations in slice order.
type Replacement struct {
	Pattern *regexp.Regexp
	With    string
}

// Options controls which transformations the generic pipeline runs.
type Options struct {
	RemoveQuotes        bool
	RemoveCommas        bool
	NormalizeWhitespace bool
	TrimValues          bool
	AutoFormatDates     bool
	NormalizeCase       bool
	RemoveSpecialChars  bool

	// DayFirst selects the DD/MM interpretation for ambiguous two-digit
	// day/month dates. The default (false) reads them month-first.
	DayFirst bool

	Replacements []Replacement
}

// DefaultOptions enables quote stripping, digit-group comma removal,
// whitespace normalization, trimming, and date auto-formatting.
func DefaultOptions() Options {
	return Options{
		RemoveQuotes:        true,
		RemoveCommas:        true,
		NormalizeWhitespace: true,
		TrimValues:          true,
		AutoFormatDates:     true,
	}
}

// Result describes the cleaning of a single value. Changes lists a
// human-readable description for each transformation that altered the value;
// a value needing no change yields an empty list.
type Result struct {
	Original string   `json:"original"`
	Cleaned  string   `json:"cleaned"`
	Changes  []string `json:"changes,omitempty"`
}

// thousandsRegex matches comma-grouped digit runs like 1,234 or 12,345,678.
// Commas are stripped only inside these groups, never from free text.
var thousandsRegex = regexp.MustCompile(`\b\d{1,3}(?:,\d{3})+\b`)

var (
	whitespaceRegex  = regexp.MustCompile(`\s+`)
	specialCharRegex = regexp.MustCompile(`[^\w\s\-.,]`)
)

// Value runs the generic cleaning pipeline on a single string.
func Value(s string, opts Options) Result {
	res := Result{Original: s, Cleaned: s}

	apply := func(next, change string) {
		if next != res.Cleaned {
			res.Cleaned = next
			res.Changes = append(res.Changes, change)
		}
	}

	if opts.RemoveQuotes {
		next := strings.Trim(res.Cleaned, `"'`)
		next = strings.ReplaceAll(next, `"`, "")
		next = strings.ReplaceAll(next, "'", "")
		apply(next, "removed quote characters")
	}

	if opts.RemoveCommas {
		next := thousandsRegex.ReplaceAllStringFunc(res.Cleaned, func(m string) string {
			return strings.ReplaceAll(m, ",", "")
		})
		apply(next, "removed thousands separators")
	}

	if opts.NormalizeWhitespace {
		apply(whitespaceRegex.ReplaceAllString(res.Cleaned, " "), "normalized whitespace")
	}

	if opts.TrimValues {
		apply(strings.TrimSpace(res.Cleaned), "trimmed whitespace")
	}

	if opts.AutoFormatDates {
		apply(AutoFormatDate(res.Cleaned, opts.DayFirst), "reformatted date to ISO")
	}

	if opts.NormalizeCase {
		apply(strings.ToLower(res.Cleaned), "lowercased")
	}

	if opts.RemoveSpecialChars {
		apply(specialCharRegex.ReplaceAllString(res.Cleaned, ""), "removed special characters")
	}

	for _, r := range opts.Replacements {
		if r.Pattern == nil {
			continue
		}
		apply(r.Pattern.ReplaceAllString(res.Cleaned, r.With),
			fmt.Sprintf("applied replacement %s", r.Pattern.String()))
	}

	return res
}

// Report aggregates a dataset-level cleaning pass.
type Report struct {
	TotalChanges    int            `json:"totalChanges"`
	ChangesByColumn map[string]int `json:"changesByColumn"`
}

// Dataset cleans every field of every row, returning new rows with the same
// shape. perColumn overrides the global options for individual fields.
// Input rows are never mutated.
func Dataset(rows []parse.RawRow, opts Options, perColumn map[string]Options) ([]parse.RawRow, Report) {
	report := Report{ChangesByColumn: make(map[string]int)}

	cleaned := make([]parse.RawRow, len(rows))
	for i, row := range rows {
		fields := make(map[string]string, len(row.Fields))
		for name, value := range row.Fields {
			colOpts := opts
			if o, ok := perColumn[name]; ok {
				colOpts = o
			}

			res := Value(value, colOpts)
			fields[name] = res.Cleaned
			if n := len(res.Changes); n > 0 {
				report.TotalChanges += n
				report.ChangesByColumn[name] += n
			}
		}
		cleaned[i] = parse.RawRow{Line: row.Line, Fields: fields}
	}

	return cleaned, report
}
