package formats

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/nsv/pkg/errors"
	"github.com/ajitpratap0/nsv/pkg/scan"
	"github.com/ajitpratap0/nsv/pkg/schema"
)

// TimestampType is the Arrow type used for Timestamp columns.
var TimestampType = &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}

// ArrowType maps a column type to its Arrow data type.
func ArrowType(t schema.ColumnType) arrow.DataType {
	switch t {
	case schema.Boolean:
		return arrow.FixedWidthTypes.Boolean
	case schema.Integer:
		return arrow.PrimitiveTypes.Int64
	case schema.Float:
		return arrow.PrimitiveTypes.Float64
	case schema.Date:
		return arrow.FixedWidthTypes.Date32
	case schema.Timestamp:
		return TimestampType
	default:
		return arrow.BinaryTypes.String
	}
}

// ToArrowSchema builds an Arrow schema with one nullable field per column.
func ToArrowSchema(names []string, types []schema.ColumnType) *arrow.Schema {
	fields := make([]arrow.Field, len(names))
	for i, name := range names {
		fields[i] = arrow.Field{Name: name, Type: ArrowType(types[i]), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// BatchToRecord converts b into an Arrow record with schema s. The caller
// must Release the record.
func BatchToRecord(alloc memory.Allocator, s *arrow.Schema, b *scan.Batch) (arrow.Record, error) {
	if err := checkWidth(b, s.NumFields()); err != nil {
		return nil, err
	}

	rb := array.NewRecordBuilder(alloc, s)
	defer rb.Release()
	rb.Reserve(b.Len)

	for c, v := range b.Columns {
		if err := appendVector(rb.Field(c), v, b.Len); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to build arrow column").
				WithDetail("column", v.Name)
		}
	}
	return rb.NewRecord(), nil
}

func appendVector(builder array.Builder, v *scan.Vector, n int) error {
	switch bld := builder.(type) {
	case *array.BooleanBuilder:
		bld.AppendValues(v.Bools[:n], v.Valid[:n])
	case *array.Int64Builder:
		bld.AppendValues(v.Ints[:n], v.Valid[:n])
	case *array.Float64Builder:
		bld.AppendValues(v.Floats[:n], v.Valid[:n])
	case *array.StringBuilder:
		bld.AppendValues(v.Strings[:n], v.Valid[:n])
	case *array.Date32Builder:
		for i := 0; i < n; i++ {
			if !v.Valid[i] {
				bld.AppendNull()
				continue
			}
			bld.Append(arrow.Date32FromTime(v.Times[i]))
		}
	case *array.TimestampBuilder:
		for i := 0; i < n; i++ {
			if !v.Valid[i] {
				bld.AppendNull()
				continue
			}
			bld.Append(arrow.Timestamp(v.Times[i].UnixMicro()))
		}
	default:
		return errors.Newf(errors.ErrorTypeUnsupported, "unsupported builder type: %T", builder)
	}
	return nil
}

// arrowWriter writes one IPC record batch per scan batch.
type arrowWriter struct {
	alloc  memory.Allocator
	schema *arrow.Schema
	fw     *ipc.FileWriter
}

func newArrowWriter(w io.Writer, names []string, types []schema.ColumnType) (*arrowWriter, error) {
	alloc := memory.NewGoAllocator()
	s := ToArrowSchema(names, types)

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(s), ipc.WithAllocator(alloc))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create arrow writer")
	}
	return &arrowWriter{alloc: alloc, schema: s, fw: fw}, nil
}

func (aw *arrowWriter) WriteBatch(b *scan.Batch) error {
	if b.Len == 0 {
		return nil
	}
	rec, err := BatchToRecord(aw.alloc, aw.schema, b)
	if err != nil {
		return err
	}
	defer rec.Release()

	if err := aw.fw.Write(rec); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write arrow record")
	}
	return nil
}

func (aw *arrowWriter) Close() error {
	if err := aw.fw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close arrow writer")
	}
	return nil
}
