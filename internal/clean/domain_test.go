package clean

import "testing"

// ----------------------------------------------------------------------------
// NormalizeKind
// ----------------------------------------------------------------------------

func TestNormalizeKind(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"payment", KindPayment, true},
		{"Payment", KindPayment, true},
		{"  PAYMENT  ", KindPayment, true},
		{"pmt", KindPayment, true},
		{"chg", KindCharge, true},
		{"debit", KindCharge, true},
		{"adj", KindAdjustment, true},
		{"Refund", KindRefund, true},
		{"return", KindRefund, true},
		{"wire", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := NormalizeKind(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("NormalizeKind(%q) = (%q, %v), want (%q, %v)",
					tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Amount
// ----------------------------------------------------------------------------

func TestAmount(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"$1,234.56", "1234.56", true},
		{"(1,234.56)", "-1234.56", true},
		{"-500", "-500", true},
		{"1000", "1000", true},
		{"€99.99", "99.99", true},
		{"£ 45", "45", true},
		{"0", "0", true},
		{"abc", "", false},
		{"", "", false},
		{"$", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Amount(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Amount(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got.String() != tt.want {
				t.Errorf("Amount(%q) = %s, want %s", tt.input, got.String(), tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Phone, Email, Name
// ----------------------------------------------------------------------------

func TestPhone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"(555) 123-4567", "5551234567"},
		{"+1 555 123 4567", "5551234567"},
		{"1-555-123-4567", "5551234567"},
		{"555.123.4567", "5551234567"},
		{"+44 20 7946 0958", "442079460958"},
	}

	for _, tt := range tests {
		if got := Phone(tt.input); got != tt.want {
			t.Errorf("Phone(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestEmail(t *testing.T) {
	if got := Email("  John.Doe@Example.COM "); got != "john.doe@example.com" {
		t.Errorf("Email() = %q", got)
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"john doe", "John Doe"},
		{"  jane   van  dyke ", "Jane Van Dyke"},
		{"MARY", "Mary"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Name(tt.input); got != tt.want {
			t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// ----------------------------------------------------------------------------
// AutoFormatDate
// ----------------------------------------------------------------------------

func TestAutoFormatDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		dayFirst bool
		want     string
	}{
		{"US slash", "01/15/2024", false, "2024-01-15"},
		{"US dash", "01-15-2024", false, "2024-01-15"},
		{"US dot", "01.15.2024", false, "2024-01-15"},
		{"already ISO", "2024-01-15", false, "2024-01-15"},
		{"ISO with slashes", "2024/01/15", false, "2024-01-15"},
		{"day first", "15/01/2024", true, "2024-01-15"},
		{"ambiguous month first", "02/03/2024", false, "2024-02-03"},
		{"ambiguous day first", "02/03/2024", true, "2024-03-02"},
		{"impossible month falls back", "25/12/2024", false, "2024-12-25"},
		{"long form", "Jan 2, 2006", false, "2006-01-02"},
		{"compact", "20240115", false, "2024-01-15"},
		{"unparsable unchanged", "not a date", false, "not a date"},
		{"empty unchanged", "", false, ""},
		{"impossible date unchanged", "13/32/2024", false, "13/32/2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AutoFormatDate(tt.input, tt.dayFirst); got != tt.want {
				t.Errorf("AutoFormatDate(%q, %v) = %q, want %q", tt.input, tt.dayFirst, got, tt.want)
			}
		})
	}
}
