// Package strings provides zero-copy conversions and string interning used on
// the decode and scan hot paths.
package strings

import (
	"unsafe"
)

// BytesToString converts byte slice to string without allocation
// WARNING: The returned string shares memory with the byte slice.
// Do not modify the byte slice after calling this function.
func BytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// StringToBytes converts string to byte slice without allocation
// WARNING: The returned byte slice shares memory with the string.
// Do not modify the returned slice.
func StringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// Intern deduplicates strings copied out of decoded cells. Low-cardinality
// text columns then share one allocation per distinct value. Once the table
// holds maxEntries values, new values are copied but no longer remembered.
type Intern struct {
	strings    map[string]string
	maxEntries int
}

// NewIntern creates a new string interner. maxEntries <= 0 means unbounded.
func NewIntern(maxEntries int) *Intern {
	return &Intern{
		strings:    make(map[string]string),
		maxEntries: maxEntries,
	}
}

// Bytes returns an owned string equal to b, reusing a previous copy when one
// exists.
func (intern *Intern) Bytes(b []byte) string {
	// the map lookup with a converted key does not allocate
	if interned, exists := intern.strings[string(b)]; exists {
		return interned
	}

	owned := string(b)
	if intern.maxEntries <= 0 || len(intern.strings) < intern.maxEntries {
		intern.strings[owned] = owned
	}
	return owned
}

// Size returns the number of interned strings
func (intern *Intern) Size() int {
	return len(intern.strings)
}

// Clear removes all interned strings
func (intern *Intern) Clear() {
	intern.strings = make(map[string]string)
}
