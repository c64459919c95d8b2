// Package validate implements the permissive input parsing used by every
// configuration field: the first run of decimal digits found anywhere in the
// raw text is the value, so stray letters never block typing.
package validate

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Result is the outcome of validating one field.
type Result struct {
	OK    bool
	Value int
	Min   int
	Max   int
}

// Message returns the inline hint for a failed result, or "" when OK.
func (r Result) Message() string {
	if r.OK {
		return ""
	}
	return fmt.Sprintf("use a number between %d and %d", r.Min, r.Max)
}

// ParseNumeric extracts the first maximal run of ASCII digits in raw.
// It returns false when raw contains no digits or the run overflows int.
func ParseNumeric(raw string) (int, bool) {
	start := strings.IndexFunc(raw, isDigit)
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(raw) && isDigit(rune(raw[end])) {
		end++
	}
	v, err := strconv.Atoi(raw[start:end])
	if err != nil {
		return 0, false
	}
	return v, true
}

// Validate parses raw permissively and checks it against [min, max].
func Validate(raw string, min, max int) Result {
	res := Result{Min: min, Max: max}
	v, ok := ParseNumeric(raw)
	if !ok || v < min || v > max {
		return res
	}
	res.OK = true
	res.Value = v
	return res
}

// MinUsernameLen is the minimum number of non-space characters in a username.
const MinUsernameLen = 3

// Username reports whether name has at least MinUsernameLen non-whitespace
// characters once surrounding whitespace is trimmed.
func Username(name string) bool {
	trimmed := strings.TrimSpace(name)
	if utf8.RuneCountInString(trimmed) < MinUsernameLen {
		return false
	}
	n := 0
	for _, r := range trimmed {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n >= MinUsernameLen
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
