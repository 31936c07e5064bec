package nsv

import (
	"io"

	"github.com/ajitpratap0/nsv/pkg/errors"
)

// DecodeOption configures Decode and DecodeProjected.
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	lenient bool
}

// WithLenientEscapes keeps malformed backslashes as literal bytes instead of
// failing. Affected cells are reported by Malformed on the result.
func WithLenientEscapes() DecodeOption {
	return func(c *decodeConfig) {
		c.lenient = true
	}
}

func newDecodeConfig(opts []DecodeOption) decodeConfig {
	var cfg decodeConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// MalformedError builds the malformed_escape error reported for pos.
func MalformedError(pos Position) *errors.Error {
	return errors.Newf(errors.ErrorTypeMalformedEscape, "malformed escape at %s", pos).
		WithDetail("row", pos.Row).
		WithDetail("col", pos.Col).
		WithDetail("line", pos.Line).
		WithDetail("offset", pos.Offset)
}

// MalformedPosition extracts the location from a malformed_escape error.
func MalformedPosition(err error) (Position, bool) {
	var e *errors.Error
	if !errors.As(err, &e) || e.Type != errors.ErrorTypeMalformedEscape {
		return Position{}, false
	}
	var pos Position
	fields := []struct {
		key string
		dst *int
	}{
		{"row", &pos.Row}, {"col", &pos.Col}, {"line", &pos.Line}, {"offset", &pos.Offset},
	}
	for _, f := range fields {
		v, ok := e.Detail(f.key)
		if !ok {
			return Position{}, false
		}
		n, ok := v.(int)
		if !ok {
			return Position{}, false
		}
		*f.dst = n
	}
	return pos, true
}

// documentBuilder is the rowSink behind Decode.
type documentBuilder struct {
	doc     *Document
	lenient bool
}

func (b *documentBuilder) beginRow() {
	b.doc.rows = append(b.doc.rows, len(b.doc.cells))
}

func (b *documentBuilder) cell(_ int, line []byte, pos Position) error {
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
	b.doc.cells = append(b.doc.cells, span{off: off, n: len(arena) - off})
	return nil
}

func (b *documentBuilder) endRow() {}

// Decode parses an NSV buffer into a Document.
//
// Nil and empty input decode to a document with zero rows. With the default
// strict policy a malformed escape fails the whole decode with a
// malformed_escape error whose details carry the row, col, line and byte
// offset; no partial document is returned.
func Decode(data []byte, opts ...DecodeOption) (*Document, error) {
	cfg := newDecodeConfig(opts)
	doc := &Document{
		// Unescaping never grows a cell, so the input length bounds the arena.
		arena: make([]byte, 0, len(data)),
	}
	b := &documentBuilder{doc: doc, lenient: cfg.lenient}
	if err := tokenize(data, b); err != nil {
		return nil, err
	}
	doc.rows = append(doc.rows, len(doc.cells))
	return doc, nil
}

// DecodeReader reads r to EOF and decodes the result.
func DecodeReader(r io.Reader, opts ...DecodeOption) (*Document, error) {
	if r == nil {
		return nil, errors.New(errors.ErrorTypeInvalidInput, "nil reader")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read input")
	}
	return Decode(data, opts...)
}
