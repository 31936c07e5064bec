package formats

import (
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"
	"github.com/linkedin/goavro/v2"

	"github.com/ajitpratap0/nsv/pkg/errors"
	"github.com/ajitpratap0/nsv/pkg/scan"
	"github.com/ajitpratap0/nsv/pkg/schema"
)

// AvroRecordName is the record name used in generated schemas.
const AvroRecordName = "nsv_row"

type avroField struct {
	Name string        `json:"name"`
	Type []interface{} `json:"type"`
}

type avroRecord struct {
	Type   string      `json:"type"`
	Name   string      `json:"name"`
	Fields []avroField `json:"fields"`
}

// avroType returns the schema type and the union branch name goavro uses
// for it.
func avroType(t schema.ColumnType) (interface{}, string) {
	switch t {
	case schema.Boolean:
		return "boolean", "boolean"
	case schema.Integer:
		return "long", "long"
	case schema.Float:
		return "double", "double"
	case schema.Date:
		return map[string]string{"type": "int", "logicalType": "date"}, "int.date"
	case schema.Timestamp:
		return map[string]string{"type": "long", "logicalType": "timestamp-micros"}, "long.timestamp-micros"
	default:
		return "string", "string"
	}
}

// AvroFieldNames turns column names into valid, unique Avro field names.
func AvroFieldNames(names []string) []string {
	out := make([]string, len(names))
	seen := make(map[string]int, len(names))
	for i, name := range names {
		b := []byte(name)
		for j, c := range b {
			letter := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
			if !letter && (j == 0 || c < '0' || c > '9') {
				b[j] = '_'
			}
		}
		field := string(b)
		if field == "" {
			field = fmt.Sprintf("col%d", i)
		}
		if n := seen[field]; n > 0 {
			field = fmt.Sprintf("%s_%d", field, n)
		}
		seen[field]++
		out[i] = field
	}
	return out
}

// AvroSchema returns the JSON schema of a record with one nullable field per
// column.
func AvroSchema(names []string, types []schema.ColumnType) (string, error) {
	fields := AvroFieldNames(names)
	rec := avroRecord{Type: "record", Name: AvroRecordName, Fields: make([]avroField, len(fields))}
	for i, name := range fields {
		t, _ := avroType(types[i])
		rec.Fields[i] = avroField{Name: name, Type: []interface{}{"null", t}}
	}

	b, err := gojson.Marshal(rec)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeInternal, "failed to marshal avro schema")
	}
	return string(b), nil
}

type avroWriter struct {
	fields   []string
	branches []string
	ocf      *goavro.OCFWriter
	rows     []interface{}
}

func newAvroWriter(w io.Writer, names []string, types []schema.ColumnType) (*avroWriter, error) {
	avroSchema, err := AvroSchema(names, types)
	if err != nil {
		return nil, err
	}

	codec, err := goavro.NewCodec(avroSchema)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to create avro codec")
	}

	ocf, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               w,
		Codec:           codec,
		CompressionName: goavro.CompressionSnappyLabel,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create avro writer")
	}

	branches := make([]string, len(types))
	for i, t := range types {
		_, branches[i] = avroType(t)
	}
	return &avroWriter{fields: AvroFieldNames(names), branches: branches, ocf: ocf}, nil
}

// WriteBatch appends one OCF block per batch.
func (aw *avroWriter) WriteBatch(b *scan.Batch) error {
	if err := checkWidth(b, len(aw.fields)); err != nil {
		return err
	}
	if b.Len == 0 {
		return nil
	}

	aw.rows = aw.rows[:0]
	for i := 0; i < b.Len; i++ {
		rec := make(map[string]interface{}, len(aw.fields))
		for c, v := range b.Columns {
			if v.IsNull(i) {
				rec[aw.fields[c]] = nil
				continue
			}
			rec[aw.fields[c]] = goavro.Union(aw.branches[c], v.Value(i))
		}
		aw.rows = append(aw.rows, rec)
	}

	if err := aw.ocf.Append(aw.rows); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to append avro block")
	}
	return nil
}

// Close is a no-op; each block is flushed by WriteBatch.
func (aw *avroWriter) Close() error {
	return nil
}
