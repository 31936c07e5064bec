package schema

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/nsv/pkg/logger"
	"github.com/ajitpratap0/nsv/pkg/metrics"
	nsvstrings "github.com/ajitpratap0/nsv/pkg/strings"
)

// Sampling defaults. Row 0 is usually the header, so sampling starts at 1.
const (
	DefaultSampleStart = 1
	DefaultSampleSize  = 1000
)

// CellSource is the read-only view the sniffer needs. Both nsv.Document and
// nsv.ProjectedDocument satisfy it.
type CellSource interface {
	RowCount() int
	Cell(row, col int) ([]byte, bool)
}

// ColumnProfile is the result of sniffing one column.
type ColumnProfile struct {
	Type    ColumnType `json:"type" yaml:"type"`
	Sampled int        `json:"sampled" yaml:"sampled"` // rows in the window
	Nulls   int        `json:"nulls" yaml:"nulls"`     // empty or absent cells in the window
}

// DetectType returns the first candidate type every non-empty cell of col in
// rows [start, start+size) converts to. Empty and absent cells are skipped.
// A window without any non-empty cell yields String.
func DetectType(src CellSource, col, start, size int) ColumnType {
	return Profile(src, col, start, size).Type
}

// Profile sniffs col like DetectType and also reports how many rows were
// sampled and how many of them held no value.
func Profile(src CellSource, col, start, size int) ColumnProfile {
	if start < 0 {
		start = 0
	}
	end := start + size
	if size < 0 || end > src.RowCount() {
		end = src.RowCount()
	}

	prof := ColumnProfile{Type: String}
	if start >= end {
		return prof
	}
	prof.Sampled = end - start

	// alive[i] tracks whether Candidates[i] still accepts every value seen.
	alive := make([]bool, len(Candidates))
	for i := range alive {
		alive[i] = true
	}
	seen := false
	for row := start; row < end; row++ {
		b, ok := src.Cell(row, col)
		if !ok || len(b) == 0 {
			prof.Nulls++
			continue
		}
		seen = true
		s := nsvstrings.BytesToString(b)
		for i, t := range Candidates {
			if alive[i] && t != String && !Accepts(t, s) {
				alive[i] = false
			}
		}
	}
	if !seen {
		return prof
	}
	for i, t := range Candidates {
		if alive[i] {
			prof.Type = t
			break
		}
	}
	return prof
}

// Sniffer types every column of a source. It holds configuration only and
// may be shared between goroutines.
type Sniffer struct {
	SampleStart int
	SampleSize  int
	logger      *zap.Logger
}

// NewSniffer returns a sniffer using the default window. A nil logger uses
// the global one.
func NewSniffer(log *zap.Logger) *Sniffer {
	return &Sniffer{
		SampleStart: DefaultSampleStart,
		SampleSize:  DefaultSampleSize,
		logger:      logger.OrGlobal(log),
	}
}

// Sniff returns one type per column for columns [0, ncols).
func (s *Sniffer) Sniff(src CellSource, ncols int) []ColumnType {
	types := make([]ColumnType, ncols)
	for col := range types {
		types[col] = s.SniffColumn(src, col).Type
	}
	return types
}

// SniffColumn profiles a single column and records the decision.
func (s *Sniffer) SniffColumn(src CellSource, col int) ColumnProfile {
	prof := Profile(src, col, s.SampleStart, s.SampleSize)
	metrics.SniffedColumns.WithLabelValues(prof.Type.String()).Inc()
	s.log().Debug("sniffed column",
		zap.Int("column", col),
		zap.Stringer("type", prof.Type),
		zap.Int("sampled", prof.Sampled),
		zap.Int("nulls", prof.Nulls))
	return prof
}

func (s *Sniffer) log() *zap.Logger {
	if s.logger == nil {
		return logger.Get()
	}
	return s.logger
}
