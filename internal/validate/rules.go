package validate

import "github.com/finvolo/ledger/internal/parse"

// TransactionRules returns the rule set for the transaction import schema.
// Structural fields (name, account, kind, amount, date) fail hard; the
// optional description and reference only warn.
func TransactionRules() []Rule {
	return []Rule{
		{Field: parse.FieldCustomerName, Required: true, Type: TypeString, MaxLength: 255},
		{Field: parse.FieldAccountRef, Required: true, Type: TypeString, MaxLength: 255},
		{Field: parse.FieldKind, Required: true, Type: TypeKind},
		{Field: parse.FieldAmount, Required: true, Type: TypeAmount},
		{Field: parse.FieldDate, Required: true, Type: TypeDate},
		{Field: parse.FieldDescription, MaxLength: 500},
		{Field: parse.FieldReference, MaxLength: 100},
	}
}
