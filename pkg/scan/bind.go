// Package scan turns NSV bytes into typed, columnar batches.
//
// Scanning runs in three phases. Bind decodes the input, takes column names
// from the first row and sniffs column types. Init picks the output columns
// and, with projection enabled, re-decodes only those. Next then hands out
// batches until it returns one with Len 0.
//
// Cells that are empty, missing from a short row or fail conversion to the
// column type become NULL; the scan itself never fails on cell content.
package scan

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ajitpratap0/nsv/pkg/errors"
	"github.com/ajitpratap0/nsv/pkg/logger"
	"github.com/ajitpratap0/nsv/pkg/metrics"
	"github.com/ajitpratap0/nsv/pkg/nsv"
	"github.com/ajitpratap0/nsv/pkg/observability"
	"github.com/ajitpratap0/nsv/pkg/schema"
)

// BindData is the outcome of Bind: the decoded input plus column metadata.
// It is read-only after Bind returns and may back several scanners.
type BindData struct {
	data    []byte
	doc     *nsv.Document
	names   []string
	types   []schema.ColumnType
	lenient bool
	opts    Options
	logger  *zap.Logger
}

// Bind decodes data, names the columns from row 0 and assigns column types.
//
// A malformed escape in the header row fails the bind. A malformed escape in
// a data row switches to lenient decoding and logs a warning. Input without
// rows is an empty_document error.
func Bind(ctx context.Context, data []byte, opts Options) (bd *BindData, err error) {
	if opts.BatchSize == 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, "bind", attribute.Int("bytes", len(data)))
	defer func() { span.End(err) }()

	log := logger.OrGlobal(opts.Logger)

	doc, lenient, err := decodeForBind(ctx, data, opts.Lenient, log)
	if err != nil {
		return nil, err
	}
	if doc.RowCount() == 0 {
		metrics.ObserveDecodeError(string(errors.ErrorTypeEmptyDocument))
		return nil, errors.New(errors.ErrorTypeEmptyDocument, errors.ErrEmptyDocument.Message)
	}
	if lenient && len(doc.Malformed()) > 0 {
		span.AddEvent("lenient_decode", attribute.Int("malformed", len(doc.Malformed())))
	}

	names := headerNames(doc)
	types := make([]schema.ColumnType, len(names))
	if opts.AllVarchar {
		for i := range types {
			types[i] = schema.String
		}
	} else {
		sniffer := schema.NewSniffer(log)
		sniffer.SampleStart = opts.SampleStart
		sniffer.SampleSize = opts.SampleSize
		types = sniffer.Sniff(doc, len(names))
	}

	applied := 0
	for i, name := range names {
		if t, ok := opts.Types[name]; ok {
			types[i] = t
			applied++
		}
	}
	if applied < len(opts.Types) {
		log.Warn("type overrides name unknown columns",
			zap.Int("overrides", len(opts.Types)),
			zap.Int("applied", applied))
	}

	span.SetAttribute("columns", len(names))
	span.SetAttribute("rows", doc.RowCount()-1)
	log.Debug("bound nsv input",
		zap.Int("columns", len(names)),
		zap.Int("rows", doc.RowCount()-1),
		zap.Bool("lenient", lenient))

	return &BindData{
		data:    data,
		doc:     doc,
		names:   names,
		types:   types,
		lenient: lenient,
		opts:    opts,
		logger:  log,
	}, nil
}

// decodeForBind runs the strict decode and the lenient retry. A malformed
// header fails under either policy.
func decodeForBind(_ context.Context, data []byte, lenient bool, log *zap.Logger) (*nsv.Document, bool, error) {
	if lenient {
		doc, err := timedDecode(data, metrics.ModeLenient, nsv.WithLenientEscapes())
		if err != nil {
			return nil, true, err
		}
		for _, pos := range doc.Malformed() {
			if pos.Row == 0 {
				metrics.ObserveDecodeError(string(errors.ErrorTypeMalformedEscape))
				return nil, true, nsv.MalformedError(pos).WithDetail("region", "header")
			}
		}
		return doc, true, nil
	}

	doc, err := timedDecode(data, metrics.ModeEager)
	if err == nil {
		return doc, false, nil
	}

	pos, ok := nsv.MalformedPosition(err)
	if !ok || pos.Row == 0 {
		return nil, false, err
	}

	doc, err = timedDecode(data, metrics.ModeLenient, nsv.WithLenientEscapes())
	if err != nil {
		return nil, true, err
	}
	log.Warn("malformed escapes in data rows, decoded leniently",
		zap.Int("malformed", len(doc.Malformed())),
		zap.Stringer("first", pos))
	return doc, true, nil
}

func timedDecode(data []byte, mode string, opts ...nsv.DecodeOption) (*nsv.Document, error) {
	timer := metrics.NewTimer()
	doc, err := nsv.Decode(data, opts...)
	if err != nil {
		metrics.ObserveDecode(mode, 0, len(data), timer.Stop(), err)
		metrics.ObserveDecodeError(string(errors.TypeOf(err)))
		return nil, err
	}
	metrics.ObserveDecode(mode, doc.RowCount(), len(data), timer.Stop(), nil)
	return doc, nil
}

// headerNames derives unique column names from row 0. Empty names become
// col{i}; repeated names get a _{n} suffix.
func headerNames(doc *nsv.Document) []string {
	n := doc.ColCount(0)
	names := make([]string, n)
	used := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		name := string(doc.Value(0, i))
		if name == "" {
			name = fmt.Sprintf("col%d", i)
		}
		if used[name] {
			base := name
			for k := 1; used[name]; k++ {
				name = base + "_" + strconv.Itoa(k)
			}
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// Names returns the column names.
func (b *BindData) Names() []string {
	out := make([]string, len(b.names))
	copy(out, b.names)
	return out
}

// Types returns the column types.
func (b *BindData) Types() []schema.ColumnType {
	out := make([]schema.ColumnType, len(b.types))
	copy(out, b.types)
	return out
}

// ColumnCount returns the number of columns named by the header row.
func (b *BindData) ColumnCount() int {
	return len(b.names)
}

// RowCount returns the number of data rows, excluding the header.
func (b *BindData) RowCount() int {
	return b.doc.RowCount() - 1
}

// Lenient reports whether the input was decoded with the lenient policy.
func (b *BindData) Lenient() bool {
	return b.lenient
}

// Document returns the eagerly decoded input, header row included.
func (b *BindData) Document() *nsv.Document {
	return b.doc
}

// Profiles sniffs every column again and reports sample and null counts.
func (b *BindData) Profiles() []schema.ColumnProfile {
	out := make([]schema.ColumnProfile, len(b.names))
	for i := range out {
		out[i] = schema.Profile(b.doc, i, b.opts.SampleStart, b.opts.SampleSize)
		out[i].Type = b.types[i]
	}
	return out
}
