package telemetry

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// The scanner below extracts known scalar fields from flat, single-line JSON
// objects. It does not validate JSON: a field is found by locating the literal
// `"key":` anywhere in the line, so key order and unknown keys do not matter.

// ParseFloat returns the number stored under key, or 0 when the key is absent,
// its value does not start with a decimal literal or the literal overflows
// float64. Trailing characters after the literal are ignored.
func ParseFloat(line, key string) float64 {
	rest, ok := valueAfterKey(line, key)
	if !ok {
		return 0
	}

	literal := floatPrefix(rest)
	if literal == "" {
		return 0
	}

	v, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		// Underflow rounds to a finite value; overflow is treated as unparseable.
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange && !math.IsInf(v, 0) {
			return v
		}
		return 0
	}
	return v
}

// ParseString returns the quoted value stored under key, truncated to at most
// maxLen bytes. The value ends at the next double quote; escapes are not
// interpreted. ok is false when the key is absent, the value is not a string or
// the closing quote is missing.
func ParseString(line, key string, maxLen int) (value string, ok bool) {
	rest, found := valueAfterKey(line, key)
	if !found || !strings.HasPrefix(rest, `"`) {
		return "", false
	}
	rest = rest[1:]

	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", false
	}

	return Truncate(rest[:end], maxLen), true
}

// Truncate cuts s to at most maxLen bytes without splitting a UTF-8 sequence.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}

	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func valueAfterKey(line, key string) (string, bool) {
	pattern := `"` + key + `":`
	idx := strings.Index(line, pattern)
	if idx < 0 {
		return "", false
	}

	rest := line[idx+len(pattern):]
	return strings.TrimLeft(rest, " \t"), true
}

// floatPrefix returns the longest prefix of s that is a decimal floating-point
// literal: [sign] digits [. digits] [(e|E) [sign] digits].
func floatPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return ""
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}

	return s[:i]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
