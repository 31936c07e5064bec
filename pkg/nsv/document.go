package nsv

import (
	"fmt"
)

// Position locates a cell in the decoded output and in the input buffer.
type Position struct {
	Row    int // 0-based row in the document
	Col    int // 0-based column within the row
	Line   int // 1-based input line holding the cell
	Offset int // byte offset in the input of the offending backslash
}

// String implements fmt.Stringer
func (p Position) String() string {
	return fmt.Sprintf("row %d, col %d (line %d, offset %d)", p.Row, p.Col, p.Line, p.Offset)
}

// span addresses one cell inside a document arena. n < 0 marks a cell that
// is absent because its row is too short.
type span struct {
	off int
	n   int
}

func (s span) bytes(arena []byte) ([]byte, bool) {
	if s.n < 0 {
		return nil, false
	}
	end := s.off + s.n
	return arena[s.off:end:end], true
}

// Document is the result of decoding an NSV buffer: rows of cells in input
// order. All cell bytes live in one arena owned by the document; slices
// returned by the accessors alias it and must not be modified.
//
// A Document makes no distinction between header and data rows.
type Document struct {
	arena     []byte
	cells     []span
	rows      []int // start index into cells per row, plus a trailing sentinel
	malformed []Position
}

// RowCount returns the number of rows.
func (d *Document) RowCount() int {
	if d == nil || len(d.rows) == 0 {
		return 0
	}
	return len(d.rows) - 1
}

// ColCount returns the number of cells in row, or 0 when row is out of range.
func (d *Document) ColCount(row int) int {
	if row < 0 || row >= d.RowCount() {
		return 0
	}
	return d.rows[row+1] - d.rows[row]
}

// Cell returns the decoded bytes at (row, col). ok is false when the position
// lies outside the document, including past the end of a short row. An empty
// cell yields a zero-length slice with ok set.
func (d *Document) Cell(row, col int) ([]byte, bool) {
	if col < 0 || col >= d.ColCount(row) {
		return nil, false
	}
	return d.cells[d.rows[row]+col].bytes(d.arena)
}

// Value returns the cell at (row, col), or nil when it is absent or empty.
// This is the single "no value" representation NSV can carry.
func (d *Document) Value(row, col int) []byte {
	b, ok := d.Cell(row, col)
	if !ok || len(b) == 0 {
		return nil
	}
	return b
}

// Row returns the cells of row, or nil when row is out of range.
func (d *Document) Row(row int) [][]byte {
	n := d.ColCount(row)
	if row < 0 || row >= d.RowCount() {
		return nil
	}
	out := make([][]byte, n)
	for i := range out {
		out[i], _ = d.Cell(row, i)
	}
	return out
}

// Strings copies the document into a slice of string rows.
func (d *Document) Strings() [][]string {
	out := make([][]string, d.RowCount())
	for r := range out {
		row := make([]string, d.ColCount(r))
		for c := range row {
			b, _ := d.Cell(r, c)
			row[c] = string(b)
		}
		out[r] = row
	}
	return out
}

// Malformed lists the cells that held malformed escapes and were decoded
// with the lenient policy. It is always empty for strict decodes.
func (d *Document) Malformed() []Position {
	if d == nil {
		return nil
	}
	return d.malformed
}

// Size reports the number of cell bytes held by the document.
func (d *Document) Size() int {
	if d == nil {
		return 0
	}
	return len(d.arena)
}

// ProjectedDocument holds a subset of columns, in the order requested by the
// caller. Column j of the projection is source column Columns()[j]. Every row
// has exactly len(Columns()) positions; positions past the end of a short
// source row are absent.
type ProjectedDocument struct {
	arena     []byte
	cells     []span // rowCount * width
	width     int
	rowCount  int
	columns   []int
	malformed []Position
}

// RowCount returns the number of rows.
func (p *ProjectedDocument) RowCount() int {
	if p == nil {
		return 0
	}
	return p.rowCount
}

// ColCount returns the projection width for rows in range, 0 otherwise.
func (p *ProjectedDocument) ColCount(row int) int {
	if row < 0 || row >= p.RowCount() {
		return 0
	}
	return p.width
}

// Columns returns the source column index for each projected column.
func (p *ProjectedDocument) Columns() []int {
	out := make([]int, len(p.columns))
	copy(out, p.columns)
	return out
}

// Cell returns the bytes of projected column col at row. ok is false when the
// position is out of range or the source row was too short to hold the column.
func (p *ProjectedDocument) Cell(row, col int) ([]byte, bool) {
	if col < 0 || col >= p.ColCount(row) {
		return nil, false
	}
	return p.cells[row*p.width+col].bytes(p.arena)
}

// Value returns the cell at (row, col), or nil when it is absent or empty.
func (p *ProjectedDocument) Value(row, col int) []byte {
	b, ok := p.Cell(row, col)
	if !ok || len(b) == 0 {
		return nil
	}
	return b
}

// Strings copies the projection into string rows; absent cells become "".
func (p *ProjectedDocument) Strings() [][]string {
	out := make([][]string, p.RowCount())
	for r := range out {
		row := make([]string, p.width)
		for c := range row {
			b, _ := p.Cell(r, c)
			row[c] = string(b)
		}
		out[r] = row
	}
	return out
}

// Malformed lists projected cells decoded with the lenient policy.
func (p *ProjectedDocument) Malformed() []Position {
	if p == nil {
		return nil
	}
	return p.malformed
}

// Size reports the number of cell bytes held by the projection.
func (p *ProjectedDocument) Size() int {
	if p == nil {
		return 0
	}
	return len(p.arena)
}
