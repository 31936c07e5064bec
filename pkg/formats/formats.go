// Package formats converts scan batches into other batch and file formats:
// Arrow IPC, Parquet, Avro OCF, JSON lines, CSV and NSV.
//
// Every writer takes the column names and types produced by scan.Bind and
// consumes batches in order:
//
//	w, err := formats.NewWriter(formats.Parquet, out, bind.Names(), bind.Types())
//	for {
//	    b, err := scanner.Next(ctx)
//	    if b.Len == 0 {
//	        break
//	    }
//	    w.WriteBatch(b)
//	}
//	w.Close()
//
// Close flushes buffered output but never closes the underlying io.Writer.
package formats

import (
	"io"
	"strings"

	"github.com/ajitpratap0/nsv/pkg/errors"
	"github.com/ajitpratap0/nsv/pkg/scan"
	"github.com/ajitpratap0/nsv/pkg/schema"
)

// Format names an output format.
type Format string

const (
	// Arrow is the Arrow IPC file format
	Arrow Format = "arrow"
	// Parquet is Apache Parquet
	Parquet Format = "parquet"
	// Avro is the Avro object container format
	Avro Format = "avro"
	// JSONL writes one JSON object per row
	JSONL Format = "jsonl"
	// CSV writes RFC 4180 CSV with a header row
	CSV Format = "csv"
	// NSV re-encodes the rows as NSV with a header row
	NSV Format = "nsv"
)

// Formats lists every supported format.
var Formats = []Format{Arrow, Parquet, Avro, JSONL, CSV, NSV}

// ParseFormat maps a name such as "parquet" or "json" to a Format.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case Arrow, Parquet, Avro, JSONL, CSV, NSV:
		return f, nil
	case "ipc", "feather":
		return Arrow, nil
	case "json", "ndjson":
		return JSONL, nil
	}
	return "", errors.Newf(errors.ErrorTypeUnsupported, "unsupported output format: %s", name)
}

// Writer consumes scan batches and writes them in one format.
type Writer interface {
	// WriteBatch writes every row of b.
	WriteBatch(b *scan.Batch) error
	// Close flushes buffered data and writes any trailer.
	Close() error
}

// NewWriter creates a writer for format f over w.
func NewWriter(f Format, w io.Writer, names []string, types []schema.ColumnType) (Writer, error) {
	if len(names) != len(types) {
		return nil, errors.Newf(errors.ErrorTypeInvalidInput,
			"%d column names but %d types", len(names), len(types))
	}

	// Parquet closes its sink when it implements io.Closer.
	w = struct{ io.Writer }{w}

	switch f {
	case Arrow:
		return newArrowWriter(w, names, types)
	case Parquet:
		return newParquetWriter(w, names, types)
	case Avro:
		return newAvroWriter(w, names, types)
	case JSONL:
		return newJSONLWriter(w, names), nil
	case CSV:
		return newCSVWriter(w, names)
	case NSV:
		return newNSVWriter(w, names), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeUnsupported, "unsupported output format: %s", f)
	}
}

func checkWidth(b *scan.Batch, n int) error {
	if len(b.Columns) != n {
		return errors.Newf(errors.ErrorTypeInvalidInput,
			"batch has %d columns, expected %d", len(b.Columns), n)
	}
	return nil
}
