package schema

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layouts used by the temporal converters and by writers that format values
// back to text.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05.999999999"
)

var (
	datePattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}(\.\d{1,9})?(Z|[+-]\d{2}:\d{2})?$`)
)

// ParseBoolean accepts true/false, t/f, yes/no and y/n in any case.
func ParseBoolean(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "t", "yes", "y":
		return true, true
	case "false", "f", "no", "n":
		return false, true
	}
	return false, false
}

// ParseInteger accepts a base-10 int64 with an optional sign. Whitespace,
// fractions and exponents are rejected.
func ParseInteger(s string) (int64, bool) {
	v, err := strconv.ParseInt(s, 10, 64)
	return v, err == nil
}

// ParseFloat accepts decimal floats with an optional exponent, plus inf and
// nan. Hexadecimal floats and digit separators are rejected.
func ParseFloat(s string) (float64, bool) {
	if s == "" || strings.ContainsAny(s, "_xXpP") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseDate accepts YYYY-MM-DD calendar dates.
func ParseDate(s string) (time.Time, bool) {
	if !datePattern.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	return t, err == nil
}

// ParseTimestamp accepts "YYYY-MM-DD HH:MM:SS" with an optional fraction,
// a space or T separator and an optional Z or ±HH:MM offset. Timestamps
// without an offset are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	if !timestampPattern.MatchString(s) {
		return time.Time{}, false
	}
	norm := []byte(s)
	norm[10] = 'T'
	layout := "2006-01-02T15:04:05.999999999"
	if strings.HasSuffix(s, "Z") || strings.LastIndexAny(s[19:], "+-") >= 0 {
		layout += "Z07:00"
	}
	t, err := time.Parse(layout, string(norm))
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// Convert parses s as type t. The returned value is bool, int64, float64,
// time.Time or string. Conversion to String always succeeds.
func Convert(t ColumnType, s string) (any, bool) {
	switch t {
	case Boolean:
		v, ok := ParseBoolean(s)
		return v, ok
	case Integer:
		v, ok := ParseInteger(s)
		return v, ok
	case Float:
		v, ok := ParseFloat(s)
		return v, ok
	case Date:
		v, ok := ParseDate(s)
		return v, ok
	case Timestamp:
		v, ok := ParseTimestamp(s)
		return v, ok
	case String:
		return s, true
	}
	return nil, false
}

// Accepts reports whether s converts to t.
func Accepts(t ColumnType, s string) bool {
	_, ok := Convert(t, s)
	return ok
}
