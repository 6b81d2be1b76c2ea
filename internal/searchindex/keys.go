package searchindex

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// EscapeKey converts a human search term into key form.
// Leading and trailing spaces are dropped, the term is lower-cased and every
// ASCII character other than [a-z0-9] becomes "_" followed by two hex digits.
// Example: "Step 1: Import" -> "step_201_3a_20import"
func EscapeKey(term string) string {
	term = strings.Trim(term, " ")
	// Casers keep state, so one per call
	term = cases.Lower(language.Und).String(norm.NFC.String(term))

	var b strings.Builder
	for _, r := range term {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r >= 0x80:
			b.WriteRune(r)
		default:
			fmt.Fprintf(&b, "_%02x", r)
		}
	}
	return b.String()
}

// UnescapeKey reverses EscapeKey for display.
// Sequences that are not a valid escape are kept verbatim.
func UnescapeKey(key string) string {
	if !strings.Contains(key, "_") {
		return key
	}
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		if key[i] == '_' && i+2 < len(key) {
			if n, err := strconv.ParseUint(key[i+1:i+3], 16, 8); err == nil && n < 0x80 {
				b.WriteByte(byte(n))
				i += 2
				continue
			}
		}
		b.WriteByte(key[i])
	}
	return b.String()
}
