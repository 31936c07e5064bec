// Package schema assigns column types to NSV data.
//
// The sniffer tries a fixed list of candidate types against a window of
// rows and picks the first candidate every non-empty sampled cell converts
// to. The strict converters used for sniffing are the same ones the scan
// driver uses to materialize values, so a column typed Integer only holds
// cells ParseInteger accepts.
package schema

import (
	"strings"

	"github.com/ajitpratap0/nsv/pkg/errors"
)

// ColumnType is the logical type assigned to a column.
type ColumnType int

// Candidate types in sniffing order. String accepts everything and is the
// fallback.
const (
	Boolean ColumnType = iota
	Integer
	Float
	Date
	Timestamp
	String
)

// Candidates lists every type in the order the sniffer tries them.
var Candidates = []ColumnType{Boolean, Integer, Float, Date, Timestamp, String}

var typeNames = map[ColumnType]string{
	Boolean:   "boolean",
	Integer:   "integer",
	Float:     "float",
	Date:      "date",
	Timestamp: "timestamp",
	String:    "string",
}

// aliases accepted by ParseColumnType in addition to the canonical names
var typeAliases = map[string]ColumnType{
	"bool":    Boolean,
	"bigint":  Integer,
	"int":     Integer,
	"int64":   Integer,
	"double":  Float,
	"float64": Float,
	"varchar": String,
	"text":    String,
}

// String implements fmt.Stringer
func (t ColumnType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether t is one of the defined types.
func (t ColumnType) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// ParseColumnType maps a type name, case-insensitively, to a ColumnType.
func ParseColumnType(s string) (ColumnType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	if t, ok := typeAliases[name]; ok {
		return t, nil
	}
	return String, errors.Newf(errors.ErrorTypeInvalidInput, "unknown column type %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (t ColumnType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, errors.Newf(errors.ErrorTypeInvalidInput, "invalid column type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *ColumnType) UnmarshalText(text []byte) error {
	parsed, err := ParseColumnType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
