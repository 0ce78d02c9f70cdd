// Package validate evaluates declarative rule sets against parsed rows.
//
// Rules are plain data: each targets one field and carries whatever checks it
// needs (required, type, bounds, pattern, allowed values, custom code). A
// single evaluator iterates rules against rows, so new record types mean new
// rule sets, not new validators. Multiple rules may target the same field and
// are evaluated independently; within one rule the first failing check wins.
//
// Severity is structural: failures of rules carrying Required or a Type block
// the import (errors), everything else is surfaced but does not block
// (warnings).
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/finvolo/ledger/internal/apperr"
	"github.com/finvolo/ledger/internal/clean"
	"github.com/finvolo/ledger/internal/parse"
)

// Type identifies a recognized value type for type checking.
type Type string

const (
	TypeString Type = "string"
	TypeNumber Type = "number"
	TypeDate   Type = "date"
	TypeEmail  Type = "email"
	TypePhone  Type = "phone"
	TypeKind   Type = "transaction_type"
	TypeAmount Type = "amount"
)

// Rule is one declarative validation rule for a single field. Zero values
// mean "check not configured". Rules are order-independent within a set.
type Rule struct {
	Field    string
	Required bool
	Type     Type

	MinLength int
	MaxLength int

	MinValue *float64
	MaxValue *float64

	Pattern       *regexp.Regexp
	AllowedValues []string

	// Unique fails when the value already exists in Context.Existing.
	Unique bool

	// DependsOn skips the rule unless the named field is non-empty on the row.
	DependsOn string

	// Conditional skips the rule when it returns false for the row.
	Conditional func(parse.RawRow) bool

	// Custom runs after the built-in checks; a non-nil error fails the rule
	// with the error's message.
	Custom func(value string, row parse.RawRow) error
}

// Context supplies data the rules cannot carry themselves: existing values
// for uniqueness checks and caller-registered per-field validators.
type Context struct {
	// Existing maps field name to the set of values already present in the
	// backing store.
	Existing map[string]map[string]bool

	// FieldValidators maps field name to an extra validator applied after a
	// rule's own checks.
	FieldValidators map[string]func(value string, row parse.RawRow) error

	// DayFirst is forwarded to date parsing.
	DayFirst bool
}

// Summary aggregates counts so the caller can render badges without
// re-scanning the error lists.
type Summary struct {
	TotalErrors   int            `json:"totalErrors"`
	TotalWarnings int            `json:"totalWarnings"`
	ErrorsByField map[string]int `json:"errorsByField"`
	ErrorsByRow   map[int]int    `json:"errorsByRow"`
}

// Result is the outcome of validating a dataset. Valid is true iff Errors is
// empty; warnings never block an import.
type Result struct {
	Valid    bool                 `json:"isValid"`
	Errors   []apperr.ImportError `json:"errors"`
	Warnings []apperr.ImportError `json:"warnings"`
	Summary  Summary              `json:"summary"`
}

// Dataset validates every row against every applicable rule.
func Dataset(rows []parse.RawRow, rules []Rule, vctx *Context) Result {
	result := Result{
		Errors:   []apperr.ImportError{},
		Warnings: []apperr.ImportError{},
		Summary: Summary{
			ErrorsByField: make(map[string]int),
			ErrorsByRow:   make(map[int]int),
		},
	}

	for _, row := range rows {
		for _, rule := range rules {
			if rule.Conditional != nil && !rule.Conditional(row) {
				continue
			}
			if rule.DependsOn != "" && row.Get(rule.DependsOn) == "" {
				continue
			}

			msg := evaluate(row, rule, vctx)
			if msg == "" {
				continue
			}

			ie := apperr.ImportError{
				Row:     row.Line,
				Column:  rule.Field,
				Message: msg,
				Value:   row.Get(rule.Field),
			}

			// Structurally necessary checks fail hard; the rest are soft.
			if rule.Required || rule.Type != "" {
				result.Errors = append(result.Errors, ie)
				result.Summary.ErrorsByField[rule.Field]++
				result.Summary.ErrorsByRow[row.Line]++
			} else {
				result.Warnings = append(result.Warnings, ie)
			}
		}
	}

	result.Summary.TotalErrors = len(result.Errors)
	result.Summary.TotalWarnings = len(result.Warnings)
	result.Valid = len(result.Errors) == 0
	return result
}

// evaluate runs one rule against one row and returns the failure message, or
// "" when the rule passes. Checks run in a fixed order and the first failure
// short-circuits this rule only.
func evaluate(row parse.RawRow, rule Rule, vctx *Context) string {
	value := row.Get(rule.Field)

	if value == "" {
		if rule.Required {
			return fmt.Sprintf("%s is required", rule.Field)
		}
		return ""
	}

	if rule.Type != "" {
		if msg := checkType(value, rule.Type, vctx); msg != "" {
			return msg
		}
	}

	if rule.MinLength > 0 && len(value) < rule.MinLength {
		return fmt.Sprintf("%s must be at least %d characters", rule.Field, rule.MinLength)
	}
	if rule.MaxLength > 0 && len(value) > rule.MaxLength {
		return fmt.Sprintf("%s must be at most %d characters", rule.Field, rule.MaxLength)
	}

	if rule.MinValue != nil || rule.MaxValue != nil {
		n, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
		if err != nil {
			return fmt.Sprintf("%s must be numeric", rule.Field)
		}
		if rule.MinValue != nil && n < *rule.MinValue {
			return fmt.Sprintf("%s must be at least %v", rule.Field, *rule.MinValue)
		}
		if rule.MaxValue != nil && n > *rule.MaxValue {
			return fmt.Sprintf("%s must be at most %v", rule.Field, *rule.MaxValue)
		}
	}

	if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
		return fmt.Sprintf("%s has an invalid format", rule.Field)
	}

	if len(rule.AllowedValues) > 0 {
		found := false
		for _, allowed := range rule.AllowedValues {
			if strings.EqualFold(allowed, value) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Sprintf("%s must be one of: %s", rule.Field, strings.Join(rule.AllowedValues, ", "))
		}
	}

	if rule.Custom != nil {
		if err := rule.Custom(value, row); err != nil {
			return err.Error()
		}
	}

	if vctx != nil {
		if fv, ok := vctx.FieldValidators[rule.Field]; ok && fv != nil {
			if err := fv(value, row); err != nil {
				return err.Error()
			}
		}

		if rule.Unique {
			if existing, ok := vctx.Existing[rule.Field]; ok && existing[value] {
				return fmt.Sprintf("%s %q already exists", rule.Field, value)
			}
		}
	}

	return ""
}

// emailRegex is applied after email cleaning.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// checkType validates a non-empty value against a recognized type.
func checkType(value string, t Type, vctx *Context) string {
	switch t {
	case TypeString:
		return ""

	case TypeNumber:
		if _, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64); err != nil {
			return "must be a number"
		}

	case TypeDate:
		dayFirst := vctx != nil && vctx.DayFirst
		iso := clean.AutoFormatDate(value, dayFirst)
		t, err := time.Parse("2006-01-02", iso)
		if err != nil {
			return "must be a valid date"
		}
		if t.After(time.Now()) {
			return "date must not be in the future"
		}

	case TypeEmail:
		if !emailRegex.MatchString(clean.Email(value)) {
			return "must be a valid email address"
		}

	case TypePhone:
		digits := clean.Phone(value)
		if len(digits) < 10 || len(digits) > 15 {
			return "must be a phone number with 10 to 15 digits"
		}

	case TypeKind:
		if _, ok := clean.NormalizeKind(value); !ok {
			return fmt.Sprintf("must be one of: %s", strings.Join(clean.Kinds, ", "))
		}

	case TypeAmount:
		amount, ok := clean.Amount(value)
		if !ok {
			return "must be a valid amount"
		}
		if !amount.IsPositive() {
			return "amount must be greater than zero"
		}
	}

	return ""
}
