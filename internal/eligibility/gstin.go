package eligibility

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// gstinPattern: 2-digit state code, PAN, entity number, 'Z', checksum character.
var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

// GSTIN is a GST identification number as supplied by the applicant. Being
// present does not make it structurally valid; see Valid.
type GSTIN string

// ParseGSTIN reports whether raw carries a GSTIN at all. A blank value means
// none was supplied. Anything else is kept as given and never rejected.
func ParseGSTIN(raw string) (GSTIN, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", false
	}
	return GSTIN(raw), true
}

// Qualifies reports whether the GSTIN earns the scoring bonus: at least 10
// characters, with no structural check.
func (g GSTIN) Qualifies() bool {
	return utf8.RuneCountInString(string(g)) >= 10
}

// Normalized returns the trimmed, uppercased form used for display.
func (g GSTIN) Normalized() string {
	return strings.ToUpper(strings.TrimSpace(string(g)))
}

// Valid reports whether the normalized GSTIN has the 15-character GST layout.
func (g GSTIN) Valid() bool {
	return gstinPattern.MatchString(g.Normalized())
}
