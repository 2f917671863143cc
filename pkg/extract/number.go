package extract

import (
	"strconv"
	"strings"
)

// superscriptDigits maps the superscript digits lex.uz uses for inserted
// articles (26¹, 130²) to their ASCII forms.
var superscriptDigits = strings.NewReplacer(
	"⁰", "0", "¹", "1", "²", "2", "³", "3", "⁴", "4",
	"⁵", "5", "⁶", "6", "⁷", "7", "⁸", "8", "⁹", "9",
)

// TranslateSuperscript replaces superscript digits with ASCII digits.
func TranslateSuperscript(s string) string {
	return superscriptDigits.Replace(s)
}

// NormalizeNumber canonicalizes a raw article number against the highest
// article number of a code.
//
// Numbers up to maxArticle are returned unchanged. Larger numbers are read as
// an original article number with an inserted sub-article digit glued onto
// it, the way converted documents flatten "130¹" into "1301":
//
//	NormalizeNumber("1301", 130)   // "130(1)"
//	NormalizeNumber("12001", 1199) // "1199(01)"
//
// Digit runs of any length are handled; values are compared as strings.
// A non-numeric raw value or a non-positive maxArticle disables the rule.
func NormalizeNumber(raw string, maxArticle int) string {
	if maxArticle <= 0 || !isASCIIDigits(raw) {
		return raw
	}
	maxStr := strconv.Itoa(maxArticle)
	if compareDigits(raw, maxStr) <= 0 {
		return raw
	}
	maxLen := len(maxStr)

	switch {
	case len(raw) == maxLen:
		return subArticle(maxStr, raw[len(raw)-1:])
	case len(raw) == maxLen+1:
		prefix, last := raw[:len(raw)-1], raw[len(raw)-1:]
		if compareDigits(prefix, maxStr) <= 0 {
			return subArticle(prefix, last)
		}
		return subArticle(maxStr, raw[len(raw)-2:])
	case len(raw) > maxLen+1:
		return subArticle(maxStr, raw[maxLen:])
	}

	// Fewer digits than maxArticle with a larger value only happens with
	// leading zeros; there is no sub-article to recover.
	return raw
}

// CanonicalNumber combines a digit run and an optional sub-part marker taken
// from the article header into the canonical display number.
func CanonicalNumber(prefix, subPart string, maxArticle int) string {
	number := NormalizeNumber(prefix, maxArticle)
	if part := cleanSubPart(subPart); part != "" {
		return subArticle(number, part)
	}
	return number
}

// cleanSubPart translates superscripts and strips surrounding periods.
func cleanSubPart(subPart string) string {
	return strings.Trim(TranslateSuperscript(subPart), ".")
}

func subArticle(base, part string) string {
	return base + "(" + part + ")"
}

// compareDigits compares two ASCII digit strings by numeric value.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func isASCIIDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
