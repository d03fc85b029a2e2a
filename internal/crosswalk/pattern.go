package crosswalk

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	socDashRe   = regexp.MustCompile(`^\d{2}-\d{4}$`)
	socDigitsRe = regexp.MustCompile(`^\d{6}$`)
	nonNumeric  = regexp.MustCompile(`[^\d.]`)
)

// IsOccLike reports whether a value looks like an OCC code: digits with an
// optional decimal fraction (Excel renders numeric cells as e.g. "6130.0")
// parsing to an integer in [0, 9999].
func IsOccLike(value string) bool {
	s := strings.TrimSpace(value)
	if s == "" || nonNumeric.MatchString(s) {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	n := int(f)
	return n >= 0 && n <= 9999
}

// NormalizeOcc converts a value to a canonical 4-digit zero-padded OCC
// code. The second return is false when the value is not OCC-like.
func NormalizeOcc(value string) (string, bool) {
	if !IsOccLike(value) {
		return "", false
	}
	f, _ := strconv.ParseFloat(strings.TrimSpace(value), 64)
	return fmt.Sprintf("%04d", int(f)), true
}

// IsSocToken reports whether a token looks like a SOC code: NN-NNNN or
// exactly six digits, ignoring interior spaces.
func IsSocToken(token string) bool {
	s := strings.ReplaceAll(token, " ", "")
	return socDashRe.MatchString(s) || socDigitsRe.MatchString(s)
}

// NormalizeSocToken converts a single token to canonical NN-NNNN form,
// inserting the hyphen when the token is six bare digits. The second
// return is false when the token is not SOC-like.
func NormalizeSocToken(token string) (string, bool) {
	s := strings.ReplaceAll(token, " ", "")
	switch {
	case socDashRe.MatchString(s):
		return s, true
	case socDigitsRe.MatchString(s):
		return s[:2] + "-" + s[2:], true
	default:
		return "", false
	}
}

// IsMajorGroup reports whether a canonical SOC code is a bare major-group
// code (minor suffix 0000) rather than a specific occupation.
func IsMajorGroup(soc string) bool {
	return strings.HasSuffix(soc, "0000")
}
