package telemetry_test

import (
	"math"
	"strings"
	"testing"

	"codeberg.org/mutker/batlab/internal/telemetry"
	"github.com/stretchr/testify/assert"
)

func TestParseFloat(t *testing.T) {
	tests := []struct {
		name string
		line string
		key  string
		want float64
	}{
		{"plain", `{"watts": 12.345}`, "watts", 12.345},
		{"no space", `{"watts":7}`, "watts", 7},
		{"tabs", "{\"watts\":\t\t 3.5}", "watts", 3.5},
		{"negative", `{"temp_c": -4.25, "x": 1}`, "temp_c", -4.25},
		{"exponent", `{"watts": 1.5e1}`, "watts", 15},
		{"dangling exponent", `{"watts": 2e}`, "watts", 2},
		{"leading dot", `{"watts": .5}`, "watts", 0.5},
		{"trailing garbage", `{"watts": 9.75abc}`, "watts", 9.75},
		{"missing key", `{"pct": 50}`, "watts", 0},
		{"string value", `{"watts": "high"}`, "watts", 0},
		{"null value", `{"watts": null}`, "watts", 0},
		{"empty value", `{"watts":`, "watts", 0},
		{"reordered keys", `{"src": "sysfs", "unknown": [1,2], "pct": 88.0, "t": "x"}`, "pct", 88},
		{"ram_pct not pct", `{"ram_pct": 40.0}`, "pct", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, telemetry.ParseFloat(tt.line, tt.key), 1e-12)
		})
	}
}

func TestParseFloatOverflowIsZero(t *testing.T) {
	assert.Zero(t, telemetry.ParseFloat(`{"temp_c": 1e999}`, "temp_c"))
	assert.Zero(t, telemetry.ParseFloat(`{"temp_c": -1e999}`, "temp_c"))

	v := telemetry.ParseFloat(`{"temp_c": 1e-400}`, "temp_c")
	assert.False(t, math.IsInf(v, 0))
	assert.False(t, math.IsNaN(v))
}

func TestParseString(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		key    string
		max    int
		want   string
		wantOK bool
	}{
		{"plain", `{"src": "upower"}`, "src", 31, "upower", true},
		{"spaces before quote", `{"src":   "sysctl"}`, "src", 31, "sysctl", true},
		{"empty", `{"src": ""}`, "src", 31, "", true},
		{"missing key", `{"pct": 1}`, "src", 31, "", false},
		{"number value", `{"src": 5}`, "src", 31, "", false},
		{"unterminated", `{"src": "sys`, "src", 31, "", false},
		{"truncated", `{"src": "abcdefgh"}`, "src", 4, "abcd", true},
		{"no escapes", `{"src": "a\"b"}`, "src", 31, `a\`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := telemetry.ParseString(tt.line, tt.key, tt.max)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", telemetry.Truncate("abc", 10))
	assert.Equal(t, "ab", telemetry.Truncate("abc", 2))
	assert.Equal(t, "", telemetry.Truncate("abc", 0))
	// "é" is two bytes; a cut inside it backs off to the rune start.
	assert.Equal(t, "a", telemetry.Truncate("aé", 2))
	assert.Len(t, telemetry.Truncate(strings.Repeat("x", 500), 127), 127)
}
