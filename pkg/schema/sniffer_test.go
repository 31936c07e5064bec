package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajitpratap0/nsv/pkg/nsv"
)

// column builds a single-column source with a header row.
func column(t *testing.T, cells ...string) CellSource {
	t.Helper()
	rows := [][]string{{"h"}}
	for _, c := range cells {
		rows = append(rows, []string{c})
	}
	doc, err := nsv.Decode(nsv.EncodeStrings(rows))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return doc
}

func TestDetectType(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
		want  ColumnType
	}{
		{"integers with empty", []string{"42", "-7", ""}, Integer},
		{"float and text", []string{"3.14", "x"}, String},
		{"floats", []string{"1", "2.5", "1e3"}, Float},
		{"booleans", []string{"true", "F", "yes"}, Boolean},
		{"digits are not booleans", []string{"1", "0", "1"}, Integer},
		{"dates", []string{"2024-01-01", "2023-12-31"}, Date},
		{"timestamps", []string{"2024-01-01 10:00:00", "2024-01-01T11:00:00Z"}, Timestamp},
		{"date and timestamp", []string{"2024-01-01", "2024-01-01 10:00:00"}, String},
		{"all empty", []string{"", "", ""}, String},
		{"no rows", nil, String},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := column(t, tt.cells...)
			assert.Equal(t, tt.want, DetectType(src, 0, 1, DefaultSampleSize))
		})
	}
}

func TestDetectTypeWindow(t *testing.T) {
	src := column(t, "1", "2", "oops")

	assert.Equal(t, Integer, DetectType(src, 0, 1, 2), "row outside window is ignored")
	assert.Equal(t, String, DetectType(src, 0, 1, 3))
	assert.Equal(t, String, DetectType(src, 0, 10, 5), "window past the end")
}

func TestDetectTypeRagged(t *testing.T) {
	doc, err := nsv.Decode([]byte("a\nb\n\n1\n\n2\ntrue\n\n"))
	assert.NoError(t, err)

	assert.Equal(t, Integer, DetectType(doc, 0, 1, 10))
	assert.Equal(t, Boolean, DetectType(doc, 1, 1, 10), "absent cell in row 1 is skipped")
}

func TestProfile(t *testing.T) {
	src := column(t, "1", "", "3", "")
	prof := Profile(src, 0, 1, 100)
	assert.Equal(t, ColumnProfile{Type: Integer, Sampled: 4, Nulls: 2}, prof)
}

func TestSnifferProjectedSource(t *testing.T) {
	input := nsv.EncodeStrings([][]string{
		{"id", "name", "score"},
		{"1", "alice", "9.5"},
		{"2", "bob", "7"},
	})
	proj, err := nsv.DecodeProjected(input, []int{2, 0})
	assert.NoError(t, err)

	s := NewSniffer(zap.NewNop())
	assert.Equal(t, []ColumnType{Float, Integer}, s.Sniff(proj, 2))
}

func TestSnifferLogsDecisions(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	s := NewSniffer(zap.New(core))
	s.SampleSize = 2

	src := column(t, "1", "2", "x")
	types := s.Sniff(src, 1)

	assert.Equal(t, []ColumnType{Integer}, types)
	entries := logs.FilterMessage("sniffed column").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "integer", entries[0].ContextMap()["type"])
		assert.Equal(t, int64(2), entries[0].ContextMap()["sampled"])
	}
}

func TestZeroSnifferUsesGlobalLogger(t *testing.T) {
	var s Sniffer
	s.SampleStart = 1
	s.SampleSize = 10
	assert.Equal(t, []ColumnType{Integer}, s.Sniff(column(t, "5"), 1))
}
