package formats

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/ajitpratap0/nsv/pkg/errors"
	"github.com/ajitpratap0/nsv/pkg/scan"
	"github.com/ajitpratap0/nsv/pkg/schema"
)

type parquetWriter struct {
	alloc  memory.Allocator
	schema *arrow.Schema
	fw     *pqarrow.FileWriter
}

func newParquetWriter(w io.Writer, names []string, types []schema.ColumnType) (*parquetWriter, error) {
	alloc := memory.NewGoAllocator()
	s := ToArrowSchema(names, types)

	props := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithDictionaryDefault(true),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithAllocator(alloc),
		pqarrow.WithStoreSchema(),
	)

	fw, err := pqarrow.NewFileWriter(s, w, props, arrowProps)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create parquet writer")
	}
	return &parquetWriter{alloc: alloc, schema: s, fw: fw}, nil
}

// WriteBatch buffers b into the current row group.
func (pw *parquetWriter) WriteBatch(b *scan.Batch) error {
	if b.Len == 0 {
		return nil
	}
	rec, err := BatchToRecord(pw.alloc, pw.schema, b)
	if err != nil {
		return err
	}
	defer rec.Release()

	if err := pw.fw.WriteBuffered(rec); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write parquet record batch")
	}
	return nil
}

func (pw *parquetWriter) Close() error {
	if err := pw.fw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close parquet writer")
	}
	return nil
}
