package extract

import (
	"strconv"
	"testing"
)

func TestNormalizeNumber(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		maxArticle int
		want       string
	}{
		{"below max", "5", 100, "5"},
		{"equal to max", "130", 130, "130"},
		{"same length overflow", "139", 130, "130(9)"},
		{"one extra digit prefix within max", "1301", 130, "130(1)"},
		{"one extra digit small prefix", "261", 99, "26(1)"},
		{"one extra digit prefix above max", "12001", 1199, "1199(01)"},
		{"two extra digits", "13012", 130, "130(12)"},
		{"max disabled", "99999", 0, "99999"},
		{"non numeric", "12a", 100, "12a"},
		{"empty", "", 100, ""},
		{"leading zero prefix", "0999", 100, "099(9)"},
		{"leading zeros within max", "000130", 130, "000130"},
		{"beyond int64", "1301234567890123456789012", 130, "130(1234567890123456789012)"},
		{"beyond int64 same prefix length", "99999999999999999999", 130, "130(99999999999999999)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeNumber(tt.raw, tt.maxArticle); got != tt.want {
				t.Errorf("NormalizeNumber(%q, %d) = %q, want %q", tt.raw, tt.maxArticle, got, tt.want)
			}
		})
	}
}

func TestNormalizeNumber_IdentityUpToMax(t *testing.T) {
	const maxArticle = 348
	for n := 1; n <= maxArticle; n++ {
		raw := strconv.Itoa(n)
		if got := NormalizeNumber(raw, maxArticle); got != raw {
			t.Fatalf("NormalizeNumber(%q) = %q, want unchanged", raw, got)
		}
	}
}

func TestNormalizeNumber_SameLengthOverflow(t *testing.T) {
	const maxArticle = 348
	for n := maxArticle + 1; n <= 999; n++ {
		raw := strconv.Itoa(n)
		want := "348(" + raw[len(raw)-1:] + ")"
		if got := NormalizeNumber(raw, maxArticle); got != want {
			t.Fatalf("NormalizeNumber(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestCompareDigits(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"130", "130", 0},
		{"0130", "130", 0},
		{"129", "130", -1},
		{"1000", "999", 1},
		{"99999999999999999999", "130", 1},
		{"", "0", 0},
	}
	for _, tt := range tests {
		if got := compareDigits(tt.a, tt.b); got != tt.want {
			t.Errorf("compareDigits(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTranslateSuperscript(t *testing.T) {
	if got := TranslateSuperscript("¹²³⁴⁵⁶⁷⁸⁹⁰"); got != "1234567890" {
		t.Errorf("TranslateSuperscript() = %q", got)
	}
	if got := TranslateSuperscript("26"); got != "26" {
		t.Errorf("TranslateSuperscript() changed ASCII digits: %q", got)
	}
}

func TestCanonicalNumber(t *testing.T) {
	tests := []struct {
		prefix  string
		subPart string
		max     int
		want    string
	}{
		{"26", "¹.", 0, "26(1)"},
		{"26", "¹", 300, "26(1)"},
		{"5", ".", 100, "5"},
		{"5", ".1.", 100, "5(1)"},
		{"130", "²", 130, "130(2)"},
		{"1301", "", 130, "130(1)"},
		{"7", "", 100, "7"},
	}

	for _, tt := range tests {
		if got := CanonicalNumber(tt.prefix, tt.subPart, tt.max); got != tt.want {
			t.Errorf("CanonicalNumber(%q, %q, %d) = %q, want %q", tt.prefix, tt.subPart, tt.max, got, tt.want)
		}
	}
}
