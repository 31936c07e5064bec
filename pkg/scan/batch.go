package scan

import (
	"time"

	"github.com/ajitpratap0/nsv/pkg/schema"
)

// Vector holds one column of a batch. Only the slice matching Type is
// populated; Valid[i] is false for NULL rows, whose value slot holds the
// zero value.
type Vector struct {
	Name  string
	Type  schema.ColumnType
	Valid []bool

	Bools   []bool
	Ints    []int64
	Floats  []float64
	Times   []time.Time // Date and Timestamp
	Strings []string
}

func newVector(name string, t schema.ColumnType, n int) *Vector {
	v := &Vector{Name: name, Type: t, Valid: make([]bool, n)}
	switch t {
	case schema.Boolean:
		v.Bools = make([]bool, n)
	case schema.Integer:
		v.Ints = make([]int64, n)
	case schema.Float:
		v.Floats = make([]float64, n)
	case schema.Date, schema.Timestamp:
		v.Times = make([]time.Time, n)
	default:
		v.Strings = make([]string, n)
	}
	return v
}

// Len returns the number of rows in the vector.
func (v *Vector) Len() int {
	return len(v.Valid)
}

// IsNull reports whether row i is NULL.
func (v *Vector) IsNull(i int) bool {
	return !v.Valid[i]
}

// Value returns row i as bool, int64, float64, time.Time or string, or nil
// when the row is NULL.
func (v *Vector) Value(i int) any {
	if !v.Valid[i] {
		return nil
	}
	switch v.Type {
	case schema.Boolean:
		return v.Bools[i]
	case schema.Integer:
		return v.Ints[i]
	case schema.Float:
		return v.Floats[i]
	case schema.Date, schema.Timestamp:
		return v.Times[i]
	default:
		return v.Strings[i]
	}
}

// Batch is a chunk of rows in columnar form. A batch with Len 0 marks the
// end of the scan.
type Batch struct {
	Len     int
	Columns []*Vector
}

// Row returns the values of row i across all columns.
func (b *Batch) Row(i int) []any {
	out := make([]any, len(b.Columns))
	for c, v := range b.Columns {
		out[c] = v.Value(i)
	}
	return out
}
