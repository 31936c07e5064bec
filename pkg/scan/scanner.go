package scan

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ajitpratap0/nsv/pkg/errors"
	"github.com/ajitpratap0/nsv/pkg/metrics"
	"github.com/ajitpratap0/nsv/pkg/nsv"
	"github.com/ajitpratap0/nsv/pkg/observability"
	"github.com/ajitpratap0/nsv/pkg/schema"
	nsvstrings "github.com/ajitpratap0/nsv/pkg/strings"
)

// internLimit bounds the per-scanner table of distinct string values.
const internLimit = 4096

// Stats summarizes a scan so far.
type Stats struct {
	Rows           int
	Batches        int
	NullDowngrades int // non-empty cells that failed conversion
}

// Scanner emits batches for a fixed set of columns. It is not safe for
// concurrent use; create one scanner per goroutine from the same BindData.
type Scanner struct {
	bind    *BindData
	src     schema.CellSource
	srcCols []int // column to read from src, per output column
	names   []string
	types   []schema.ColumnType
	cursor  int
	end     int
	stats   Stats
	done    bool
	intern  *nsvstrings.Intern
	rate    *metrics.ThroughputTracker
	logger  *zap.Logger
}

// Init prepares a scanner over the given source column ids, in order. Nil or
// empty ids select every column. An id outside the header's columns is an
// invalid_input error.
func (b *BindData) Init(ctx context.Context, columnIDs []int) (s *Scanner, err error) {
	_, span := observability.StartSpan(ctx, "init", attribute.Int("columns", len(columnIDs)))
	defer func() { span.End(err) }()

	ids := columnIDs
	if len(ids) == 0 {
		ids = make([]int, len(b.names))
		for i := range ids {
			ids[i] = i
		}
	}
	for _, id := range ids {
		if id < 0 || id >= len(b.names) {
			return nil, errors.Newf(errors.ErrorTypeInvalidInput,
				"column id %d out of range [0, %d)", id, len(b.names)).WithDetail("column", id)
		}
	}

	s = &Scanner{
		bind:   b,
		cursor: 1,
		end:    b.doc.RowCount(),
		names:  make([]string, len(ids)),
		types:  make([]schema.ColumnType, len(ids)),
		intern: nsvstrings.NewIntern(internLimit),
		rate:   metrics.NewThroughputTracker(),
		logger: b.logger,
	}
	for j, id := range ids {
		s.names[j] = b.names[id]
		s.types[j] = b.types[id]
	}

	if b.opts.Projection {
		var opts []nsv.DecodeOption
		mode := metrics.ModeProjected
		if b.lenient {
			opts = append(opts, nsv.WithLenientEscapes())
			mode = metrics.ModeLenient
		}
		timer := metrics.NewTimer()
		proj, err := nsv.DecodeProjected(b.data, ids, opts...)
		metrics.ObserveDecode(mode, proj.RowCount(), len(b.data), timer.Stop(), err)
		if err != nil {
			return nil, err
		}
		s.src = proj
		s.srcCols = make([]int, len(ids))
		for j := range s.srcCols {
			s.srcCols[j] = j
		}
		span.SetAttribute("projected", true)
	} else {
		s.src = b.doc
		s.srcCols = append([]int(nil), ids...)
	}

	s.logger.Debug("scanner initialized",
		zap.Strings("columns", s.names),
		zap.Bool("projected", b.opts.Projection))
	return s, nil
}

// Names returns the output column names.
func (s *Scanner) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Types returns the output column types.
func (s *Scanner) Types() []schema.ColumnType {
	out := make([]schema.ColumnType, len(s.types))
	copy(out, s.types)
	return out
}

// Stats returns counters for the rows emitted so far.
func (s *Scanner) Stats() Stats {
	return s.stats
}

// Next returns the next batch of at most BatchSize rows. A batch with Len 0
// means the scan is complete; further calls keep returning empty batches.
func (s *Scanner) Next(_ context.Context) (*Batch, error) {
	n := s.end - s.cursor
	if n > s.bind.opts.BatchSize {
		n = s.bind.opts.BatchSize
	}
	if n < 0 {
		n = 0
	}

	batch := &Batch{Len: n, Columns: make([]*Vector, len(s.names))}
	for j := range batch.Columns {
		batch.Columns[j] = newVector(s.names[j], s.types[j], n)
	}
	if n == 0 {
		if !s.done {
			s.finish()
		}
		return batch, nil
	}

	for i := 0; i < n; i++ {
		row := s.cursor + i
		for j, v := range batch.Columns {
			s.fill(v, i, row, s.srcCols[j])
		}
	}

	s.cursor += n
	s.stats.Rows += n
	s.stats.Batches++
	s.rate.Increment(int64(n))
	metrics.ObserveBatch(n)
	return batch, nil
}

// fill converts one cell into slot i of v, leaving it NULL when the cell is
// absent, empty or not convertible.
func (s *Scanner) fill(v *Vector, i, row, col int) {
	b, ok := s.src.Cell(row, col)
	if !ok || len(b) == 0 {
		return
	}

	if v.Type == schema.String {
		v.Strings[i] = s.intern.Bytes(b)
		v.Valid[i] = true
		return
	}

	text := nsvstrings.BytesToString(b)
	switch v.Type {
	case schema.Boolean:
		v.Bools[i], ok = schema.ParseBoolean(text)
	case schema.Integer:
		v.Ints[i], ok = schema.ParseInteger(text)
	case schema.Float:
		v.Floats[i], ok = schema.ParseFloat(text)
	case schema.Date:
		v.Times[i], ok = schema.ParseDate(text)
	case schema.Timestamp:
		v.Times[i], ok = schema.ParseTimestamp(text)
	default:
		ok = false
	}
	if !ok {
		s.stats.NullDowngrades++
		metrics.NullDowngrades.WithLabelValues(v.Type.String()).Inc()
		return
	}
	v.Valid[i] = true
}

// finish logs the end of the scan once.
func (s *Scanner) finish() {
	s.done = true
	s.logger.Debug("scan complete",
		zap.Int("rows", s.stats.Rows),
		zap.Int("batches", s.stats.Batches),
		zap.Int("null_downgrades", s.stats.NullDowngrades),
		zap.Float64("rows_per_second", s.rate.GetAndReset()))
}
