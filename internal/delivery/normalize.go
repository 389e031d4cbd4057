package delivery

import (
	"regexp"
	"strings"
)

var fullWidthDigits = strings.NewReplacer(
	"０", "0", "１", "1", "２", "2", "３", "3", "４", "4",
	"５", "5", "６", "6", "７", "7", "８", "8", "９", "9",
)

// houseNumber keeps everything up to the first 號 that follows a street
// token and a run of digits, e.g. "民生東路三段100號".
var houseNumber = regexp.MustCompile(`^(.*?(?:路|街|大道|巷|弄).*?[0-9]+號)`)

// Normalize cleans a user-entered Taiwanese address for lookup. It is pure and
// idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	s := fullWidthDigits.Replace(raw)
	s = strings.ReplaceAll(s, "台", "臺")
	s = strings.TrimSpace(s)
	s = stripPostalCode(s)

	if m := houseNumber.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// stripPostalCode drops leading runs of 3 to 5 ASCII digits until none is left.
func stripPostalCode(s string) string {
	for {
		n := 0
		for n < len(s) && s[n] >= '0' && s[n] <= '9' {
			n++
		}
		if n < 3 || n > 5 {
			return s
		}
		s = strings.TrimSpace(s[n:])
	}
}
