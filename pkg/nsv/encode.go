package nsv

import (
	"github.com/ajitpratap0/nsv/pkg/errors"
	nsvstrings "github.com/ajitpratap0/nsv/pkg/strings"
)

// Encoder builds NSV output row by row. It is meant for a single writer and
// is consumed by Finish.
type Encoder struct {
	buf      []byte
	cells    int // cells in the pending row
	rows     int
	finished bool
}

// NewEncoder returns an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// NewEncoderSize returns an encoder whose buffer starts with capacity n.
func NewEncoderSize(n int) *Encoder {
	if n < 0 {
		n = 0
	}
	return &Encoder{buf: make([]byte, 0, n)}
}

// PushCell appends a cell to the pending row. An empty value is written as
// the empty-cell marker.
func (e *Encoder) PushCell(value []byte) {
	if e.finished {
		return
	}
	e.buf = appendEscaped(e.buf, value)
	e.buf = append(e.buf, newline)
	e.cells++
}

// PushString is PushCell for string values.
func (e *Encoder) PushString(value string) {
	e.PushCell(nsvstrings.StringToBytes(value))
}

// PushNull appends an empty cell. NSV cannot tell NULL from empty.
func (e *Encoder) PushNull() {
	e.PushCell(nil)
}

// EndRow terminates the pending row. Ending a row with no cells writes an
// empty row.
func (e *Encoder) EndRow() {
	if e.finished {
		return
	}
	e.buf = append(e.buf, newline)
	e.cells = 0
	e.rows++
}

// Rows returns the number of completed rows.
func (e *Encoder) Rows() int {
	return e.rows
}

// Len returns the number of bytes buffered so far.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// Finish closes a pending non-empty row and hands the buffer to the caller.
// The encoder is unusable afterwards; calling Finish again returns
// ErrEncoderFinished.
func (e *Encoder) Finish() ([]byte, error) {
	if e.finished {
		return nil, errors.New(errors.ErrorTypeInvalidInput, errors.ErrEncoderFinished.Message)
	}
	if e.cells > 0 {
		e.EndRow()
	}
	out := e.buf
	if out == nil {
		out = []byte{}
	}
	e.buf = nil
	e.finished = true
	return out, nil
}

// Encode serializes rows of byte cells.
func Encode(rows [][][]byte) []byte {
	size := 0
	for _, row := range rows {
		for _, c := range row {
			size += len(c) + 2
		}
		size++
	}
	e := NewEncoderSize(size)
	for _, row := range rows {
		for _, c := range row {
			e.PushCell(c)
		}
		e.EndRow()
	}
	out, _ := e.Finish()
	return out
}

// EncodeStrings serializes rows of string cells.
func EncodeStrings(rows [][]string) []byte {
	e := NewEncoder()
	for _, row := range rows {
		for _, c := range row {
			e.PushString(c)
		}
		e.EndRow()
	}
	out, _ := e.Finish()
	return out
}

// EncodeDocument serializes a decoded document back to NSV.
func EncodeDocument(doc *Document) []byte {
	if doc == nil {
		return []byte{}
	}
	e := NewEncoderSize(doc.Size() + 2*len(doc.cells) + doc.RowCount())
	for r := 0; r < doc.RowCount(); r++ {
		for c := 0; c < doc.ColCount(r); c++ {
			b, _ := doc.Cell(r, c)
			e.PushCell(b)
		}
		e.EndRow()
	}
	out, _ := e.Finish()
	return out
}
