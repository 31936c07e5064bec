package formats

import (
	"bufio"
	"encoding/csv"
	"io"

	gojson "github.com/goccy/go-json"

	"github.com/ajitpratap0/nsv/pkg/errors"
	"github.com/ajitpratap0/nsv/pkg/export"
	"github.com/ajitpratap0/nsv/pkg/scan"
	"github.com/ajitpratap0/nsv/pkg/schema"
)

// jsonlWriter writes one object per row with keys in column order. Date
// and Timestamp values are rendered in their NSV text form.
type jsonlWriter struct {
	w       *bufio.Writer
	keys    [][]byte
	scratch []byte
	text    []byte
}

func newJSONLWriter(w io.Writer, names []string) *jsonlWriter {
	keys := make([][]byte, len(names))
	for i, name := range names {
		// Marshalling a string cannot fail.
		keys[i], _ = gojson.Marshal(name)
	}
	return &jsonlWriter{w: bufio.NewWriter(w), keys: keys}
}

func (jw *jsonlWriter) WriteBatch(b *scan.Batch) error {
	if err := checkWidth(b, len(jw.keys)); err != nil {
		return err
	}

	for i := 0; i < b.Len; i++ {
		line := append(jw.scratch[:0], '{')
		for c, v := range b.Columns {
			if c > 0 {
				line = append(line, ',')
			}
			line = append(line, jw.keys[c]...)
			line = append(line, ':')

			val, err := jw.value(v, i)
			if err != nil {
				return errors.Wrap(err, errors.ErrorTypeInternal, "failed to marshal value").
					WithDetail("column", v.Name)
			}
			line = append(line, val...)
		}
		line = append(line, '}', '\n')
		jw.scratch = line

		if _, err := jw.w.Write(line); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to write jsonl row")
		}
	}
	return nil
}

func (jw *jsonlWriter) value(v *scan.Vector, i int) ([]byte, error) {
	if v.IsNull(i) {
		return []byte("null"), nil
	}
	switch v.Type {
	case schema.Date, schema.Timestamp:
		jw.text = export.AppendVectorValue(jw.text[:0], v, i)
		return gojson.Marshal(string(jw.text))
	default:
		return gojson.Marshal(v.Value(i))
	}
}

func (jw *jsonlWriter) Close() error {
	if err := jw.w.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to flush jsonl output")
	}
	return nil
}

// csvWriter writes a header row followed by one record per row. NULL is
// written as an empty field.
type csvWriter struct {
	w      *csv.Writer
	width  int
	record []string
	text   []byte
}

func newCSVWriter(w io.Writer, names []string) (*csvWriter, error) {
	cw := &csvWriter{w: csv.NewWriter(w), width: len(names), record: make([]string, len(names))}
	if err := cw.w.Write(names); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to write csv header")
	}
	return cw, nil
}

func (cw *csvWriter) WriteBatch(b *scan.Batch) error {
	if err := checkWidth(b, cw.width); err != nil {
		return err
	}
	for i := 0; i < b.Len; i++ {
		for c, v := range b.Columns {
			if v.IsNull(i) {
				cw.record[c] = ""
				continue
			}
			cw.text = export.AppendVectorValue(cw.text[:0], v, i)
			cw.record[c] = string(cw.text)
		}
		if err := cw.w.Write(cw.record); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to write csv row")
		}
	}
	return nil
}

func (cw *csvWriter) Close() error {
	cw.w.Flush()
	if err := cw.w.Error(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to flush csv output")
	}
	return nil
}

// nsvWriter buffers the whole document and writes it on Close.
type nsvWriter struct {
	w   io.Writer
	enc *export.Writer
}

func newNSVWriter(w io.Writer, names []string) *nsvWriter {
	return &nsvWriter{w: w, enc: export.NewWriter(names, export.DefaultWriterOptions())}
}

func (nw *nsvWriter) WriteBatch(b *scan.Batch) error {
	return nw.enc.WriteBatch(b)
}

func (nw *nsvWriter) Close() error {
	out, err := nw.enc.Finish()
	if err != nil {
		return err
	}
	if _, err := nw.w.Write(out); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write nsv output")
	}
	return nil
}
