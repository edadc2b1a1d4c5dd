package amount

import (
	"math/big"
	"testing"
)

func TestParseDecimalExact(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"1", "1000000000000000000"},
		{"0.1", "100000000000000000"},
		{"1.5", "1500000000000000000"},
		{"0.000000000000000001", "1"},
		{"123.456", "123456000000000000000"},
	}
	for _, tc := range cases {
		got, err := ParseDecimal(tc.in)
		if err != nil {
			t.Fatalf("ParseDecimal(%q): %v", tc.in, err)
		}
		if got.String() != tc.want {
			t.Fatalf("ParseDecimal(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseDecimalRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "-1", "1.2.3", "abc", "1e18", "0.0000000000000000001"} {
		if _, err := ParseDecimal(in); err == nil {
			t.Fatalf("ParseDecimal(%q): expected error", in)
		}
	}
}

func TestFormatUnitsRoundTrip(t *testing.T) {
	for _, in := range []string{"0", "1", "0.1", "1.5", "0.000000000000000001", "42.000001"} {
		units, err := ParseDecimal(in)
		if err != nil {
			t.Fatalf("ParseDecimal(%q): %v", in, err)
		}
		if got := FormatUnits(units); got != in {
			t.Fatalf("round trip of %q produced %q", in, got)
		}
	}
}

func TestFormatFixedTruncates(t *testing.T) {
	v, _ := new(big.Int).SetString("1234567890000000000", 10) // 1.23456789
	if got := FormatFixed(v, 4); got != "1.2345" {
		t.Fatalf("FormatFixed = %q, want 1.2345", got)
	}
	if got := FormatFixed(v, 2); got != "1.23" {
		t.Fatalf("FormatFixed = %q, want 1.23", got)
	}
	if got := FormatFixed(big.NewInt(0), 2); got != "0.00" {
		t.Fatalf("FormatFixed zero = %q, want 0.00", got)
	}
}

func TestProportionalSharesFloorSemantics(t *testing.T) {
	shares, _ := new(big.Int).SetString("1000000000000000000", 10)
	requested, _ := new(big.Int).SetString("100000000000000000", 10) // 0.1

	got := ProportionalShares(shares, requested)
	want := "100000000000000000"
	if got.String() != want {
		t.Fatalf("ProportionalShares = %s, want %s", got, want)
	}
}

func TestProportionalSharesTruncates(t *testing.T) {
	// 3 wei of shares, withdrawing one third: floors to 0 at the final step.
	shares := big.NewInt(3)
	requested := big.NewInt(333333333333333333)
	got := ProportionalShares(shares, requested)
	if got.String() != "0" {
		t.Fatalf("ProportionalShares = %s, want 0", got)
	}
}

func TestSumStrings(t *testing.T) {
	got := SumStrings([]string{"1000", "2000", "junk", "-5", "3000"})
	if got.String() != "6000" {
		t.Fatalf("SumStrings = %s, want 6000", got)
	}
}
