// Package normalize converts raw field values into clean, comparable forms.
// Every function is total: malformed input yields the absent value, never an error.
package normalize

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nullLiterals are string renderings of a missing cell produced by common exporters.
var nullLiterals = map[string]bool{
	"nan":  true,
	"none": true,
	"null": true,
	"n/a":  true,
}

var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Text returns s lowercased and trimmed. Null-like literals ("nan", "None") become "".
func Text(s string) string {
	t := strings.ToLower(strings.TrimSpace(s))
	if nullLiterals[t] {
		return ""
	}
	return t
}

// Key returns Text(s) with every non-alphanumeric character removed.
// Used for exact address comparison.
func Key(s string) string {
	t := Text(s)
	var b strings.Builder
	b.Grow(len(t))
	for _, r := range t {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Digits returns only the ASCII digits of s.
func Digits(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// Zip renders a raw ZIP value as "12345" or "12345-6789".
// Leading zeros lost by numeric exports ("2139", "2139.0") are restored by padding.
// Values that cannot be a ZIP return "".
func Zip(s string) string {
	t := strings.TrimSpace(s)
	if nullLiterals[strings.ToLower(t)] {
		return ""
	}
	// "2139.0" from a float column: drop an all-zero fraction before extracting digits.
	if i := strings.IndexByte(t, '.'); i >= 0 && strings.Trim(t[i+1:], "0") == "" {
		t = t[:i]
	}
	d := Digits(t)
	switch {
	case d == "":
		return ""
	case len(d) <= 5:
		return strings.Repeat("0", 5-len(d)) + d
	case len(d) <= 9:
		d = strings.Repeat("0", 9-len(d)) + d
		return d[:5] + "-" + d[5:]
	default:
		return ""
	}
}

// Numeric strips every character outside [0-9.-] and parses the remainder.
// "70%" -> 70, "$1,200" -> 1200. Non-finite and unparsable values report ok=false.
func Numeric(raw string) (float64, bool) {
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if (c >= '0' && c <= '9') || c == '.' || c == '-' {
			b.WriteByte(c)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || !Finite(v) {
		return 0, false
	}
	return v, true
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Float returns the parsed value or nil when absent.
func Float(raw string) *float64 {
	v, ok := Numeric(raw)
	if !ok {
		return nil
	}
	return &v
}

// NonZero is Float with an exact zero treated as absent.
func NonZero(raw string) *float64 {
	v, ok := Numeric(raw)
	if !ok || v == 0 {
		return nil
	}
	return &v
}

// Percent parses a fraction stored either as 0-1 or as a percentage.
// Values above 1, or written with a "%" sign, are divided by 100 (93 -> 0.93).
func Percent(raw string) *float64 {
	v, ok := Numeric(raw)
	if !ok {
		return nil
	}
	if v > 1 || strings.Contains(raw, "%") {
		v /= 100
	}
	return &v
}

// Rate is Percent with zero treated as absent. Used for graduation, proficiency
// and matriculation fields where 0 means "not reported".
func Rate(raw string) *float64 {
	v := Percent(raw)
	if v == nil || *v == 0 {
		return nil
	}
	return v
}

// Count parses a positive integer count; zero and negatives are absent.
func Count(raw string) *int {
	v, ok := Numeric(raw)
	if !ok || v <= 0 {
		return nil
	}
	n := int(math.Round(v))
	return &n
}

// Bool reports whether raw spells a true flag.
func Bool(raw string) bool {
	switch Text(raw) {
	case "1", "1.0", "true", "t", "yes", "y":
		return true
	}
	return false
}

// Slug uppercases s, folds accents and collapses runs of non-alphanumerics into "-".
// "St. Mary's Academy" -> "ST-MARY-S-ACADEMY".
func Slug(s string) string {
	folded, _, err := transform.String(foldAccents, strings.TrimSpace(s))
	if err != nil {
		folded = s
	}
	if nullLiterals[strings.ToLower(folded)] {
		return ""
	}
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToUpper(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
