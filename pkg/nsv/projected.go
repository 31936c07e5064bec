package nsv

import (
	"github.com/ajitpratap0/nsv/pkg/errors"
)

// projectedBuilder is the rowSink behind DecodeProjected. want maps a source
// column to the output positions it fills; a column requested twice is
// unescaped once and both positions share the span.
type projectedBuilder struct {
	doc     *ProjectedDocument
	want    map[int][]int
	lenient bool
	absent  []span
}

func (b *projectedBuilder) beginRow() {
	b.doc.cells = append(b.doc.cells, b.absent...)
}

func (b *projectedBuilder) cell(col int, line []byte, pos Position) error {
	outs, ok := b.want[col]
	if !ok {
		return nil
	}
	off := len(b.doc.arena)
	arena, bad := appendUnescaped(b.doc.arena, line, b.lenient)
	if bad >= 0 {
		pos.Offset += bad
		if !b.lenient {
			return MalformedError(pos)
		}
		b.doc.malformed = append(b.doc.malformed, pos)
	}
	b.doc.arena = arena
	s := span{off: off, n: len(arena) - off}
	base := b.doc.rowCount * b.doc.width
	for _, out := range outs {
		b.doc.cells[base+out] = s
	}
	return nil
}

func (b *projectedBuilder) endRow() {
	b.doc.rowCount++
}

// DecodeProjected decodes only the given source columns, in the order given.
// Duplicates are allowed. Cell-lines of unrequested columns are skipped
// without being unescaped or copied, and malformed escapes are only detected
// in requested columns. An index past a row's width reads as absent. A
// negative column index is an invalid_input error.
func DecodeProjected(data []byte, columns []int, opts ...DecodeOption) (*ProjectedDocument, error) {
	want := make(map[int][]int, len(columns))
	for out, c := range columns {
		if c < 0 {
			return nil, errors.Newf(errors.ErrorTypeInvalidInput, "negative column index %d", c).
				WithDetail("position", out)
		}
		want[c] = append(want[c], out)
	}

	absent := make([]span, len(columns))
	for i := range absent {
		absent[i] = span{n: -1}
	}

	cols := make([]int, len(columns))
	copy(cols, columns)

	cfg := newDecodeConfig(opts)
	doc := &ProjectedDocument{width: len(columns), columns: cols}
	b := &projectedBuilder{doc: doc, want: want, lenient: cfg.lenient, absent: absent}
	if err := tokenize(data, b); err != nil {
		return nil, err
	}
	return doc, nil
}
