// Package export writes typed rows back out as NSV.
package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ajitpratap0/nsv/pkg/errors"
	"github.com/ajitpratap0/nsv/pkg/metrics"
	"github.com/ajitpratap0/nsv/pkg/nsv"
	"github.com/ajitpratap0/nsv/pkg/scan"
	"github.com/ajitpratap0/nsv/pkg/schema"
)

// WriterOptions control the output layout.
type WriterOptions struct {
	// Header writes the column names as the first row
	Header bool
}

// DefaultWriterOptions writes a header row.
func DefaultWriterOptions() WriterOptions {
	return WriterOptions{Header: true}
}

// Writer accumulates rows into an NSV buffer. It is consumed by Finish.
type Writer struct {
	names         []string
	opts          WriterOptions
	enc           *nsv.Encoder
	headerWritten bool
	scratch       []byte
}

// NewWriter creates a writer for the given column names.
func NewWriter(names []string, opts WriterOptions) *Writer {
	return &Writer{
		names: append([]string(nil), names...),
		opts:  opts,
		enc:   nsv.NewEncoder(),
	}
}

func (w *Writer) writeHeader() {
	if w.headerWritten {
		return
	}
	w.headerWritten = true
	if !w.opts.Header {
		return
	}
	for _, name := range w.names {
		w.enc.PushString(name)
	}
	w.enc.EndRow()
}

// WriteRow writes one row. nil values are written as empty cells.
func (w *Writer) WriteRow(values []any) error {
	if len(values) != len(w.names) {
		return errors.Newf(errors.ErrorTypeInvalidInput,
			"row has %d values, expected %d", len(values), len(w.names))
	}
	w.writeHeader()
	for _, v := range values {
		if v == nil {
			w.enc.PushNull()
			continue
		}
		w.scratch = AppendValue(w.scratch[:0], v)
		w.enc.PushCell(w.scratch)
	}
	w.enc.EndRow()
	return nil
}

// WriteBatch writes every row of a scan batch.
func (w *Writer) WriteBatch(b *scan.Batch) error {
	if len(b.Columns) != len(w.names) {
		return errors.Newf(errors.ErrorTypeInvalidInput,
			"batch has %d columns, expected %d", len(b.Columns), len(w.names))
	}
	w.writeHeader()
	for i := 0; i < b.Len; i++ {
		for _, v := range b.Columns {
			if v.IsNull(i) {
				w.enc.PushNull()
				continue
			}
			w.scratch = AppendVectorValue(w.scratch[:0], v, i)
			w.enc.PushCell(w.scratch)
		}
		w.enc.EndRow()
	}
	return nil
}

// Finish writes the header if no rows were written and returns the output.
func (w *Writer) Finish() ([]byte, error) {
	w.writeHeader()
	out, err := w.enc.Finish()
	if err != nil {
		return nil, err
	}
	metrics.EncodedBytes.Add(float64(len(out)))
	return out, nil
}

// AppendVectorValue appends the NSV text form of row i of v. The row must
// not be NULL.
func AppendVectorValue(dst []byte, v *scan.Vector, i int) []byte {
	switch v.Type {
	case schema.Boolean:
		return strconv.AppendBool(dst, v.Bools[i])
	case schema.Integer:
		return strconv.AppendInt(dst, v.Ints[i], 10)
	case schema.Float:
		return strconv.AppendFloat(dst, v.Floats[i], 'g', -1, 64)
	case schema.Date:
		return v.Times[i].AppendFormat(dst, schema.DateLayout)
	case schema.Timestamp:
		return AppendTimestamp(dst, v.Times[i])
	default:
		return append(dst, v.Strings[i]...)
	}
}

// AppendTimestamp formats t in UTC as "2006-01-02 15:04:05" with up to
// microsecond fraction, dropping trailing zeros.
func AppendTimestamp(dst []byte, t time.Time) []byte {
	return t.UTC().AppendFormat(dst, "2006-01-02 15:04:05.999999")
}

// AppendValue appends the text form of a Go value. A time.Time at UTC
// midnight is written as a date.
func AppendValue(dst []byte, v any) []byte {
	switch x := v.(type) {
	case string:
		return append(dst, x...)
	case []byte:
		return append(dst, x...)
	case bool:
		return strconv.AppendBool(dst, x)
	case int:
		return strconv.AppendInt(dst, int64(x), 10)
	case int32:
		return strconv.AppendInt(dst, int64(x), 10)
	case int64:
		return strconv.AppendInt(dst, x, 10)
	case uint64:
		return strconv.AppendUint(dst, x, 10)
	case float32:
		return strconv.AppendFloat(dst, float64(x), 'g', -1, 32)
	case float64:
		return strconv.AppendFloat(dst, x, 'g', -1, 64)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 && x.Location() == time.UTC {
			return x.AppendFormat(dst, schema.DateLayout)
		}
		return AppendTimestamp(dst, x)
	case fmt.Stringer:
		return append(dst, x.String()...)
	default:
		return fmt.Append(dst, x)
	}
}
