package scan

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ajitpratap0/nsv/pkg/config"
	"github.com/ajitpratap0/nsv/pkg/errors"
	"github.com/ajitpratap0/nsv/pkg/nsv"
	"github.com/ajitpratap0/nsv/pkg/schema"
	"github.com/ajitpratap0/nsv/pkg/testutil"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.Logger = zap.NewNop()
	return opts
}

func peopleNSV() []byte {
	return testutil.PeopleNSV()
}

func TestBind(t *testing.T) {
	bd, err := Bind(context.Background(), peopleNSV(), testOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "score", "active", "born", "seen"}, bd.Names())
	assert.Equal(t, []schema.ColumnType{
		schema.Integer, schema.String, schema.Float, schema.Boolean, schema.Date, schema.Timestamp,
	}, bd.Types())
	assert.Equal(t, 6, bd.ColumnCount())
	assert.Equal(t, 3, bd.RowCount())
	assert.False(t, bd.Lenient())
	assert.Equal(t, 4, bd.Document().RowCount())
}

func TestBindAllVarcharAndOverrides(t *testing.T) {
	opts := testOptions()
	opts.AllVarchar = true
	opts.Types = map[string]schema.ColumnType{"id": schema.Integer, "missing": schema.Float}

	bd, err := Bind(context.Background(), peopleNSV(), opts)
	require.NoError(t, err)
	assert.Equal(t, []schema.ColumnType{
		schema.Integer, schema.String, schema.String, schema.String, schema.String, schema.String,
	}, bd.Types())
}

func TestBindHeaderNames(t *testing.T) {
	data := nsv.EncodeStrings([][]string{{"a", "", "a", "b", "a"}, {"1", "2", "3", "4", "5"}})
	bd, err := Bind(context.Background(), data, testOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "col1", "a_1", "b", "a_2"}, bd.Names())
}

func TestBindEmptyDocument(t *testing.T) {
	for _, input := range [][]byte{nil, {}, []byte("\n\n\n")} {
		_, err := Bind(context.Background(), input, testOptions())
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrEmptyDocument))
		assert.True(t, errors.IsType(err, errors.ErrorTypeEmptyDocument))
	}
}

func TestBindInvalidOptions(t *testing.T) {
	opts := testOptions()
	opts.SampleSize = -1
	_, err := Bind(context.Background(), peopleNSV(), opts)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidInput))
}

func TestBindMalformedHeaderFails(t *testing.T) {
	_, err := Bind(context.Background(), []byte("bad\\q\n\n1\n\n"), testOptions())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeMalformedEscape))
}

func TestBindMalformedDataRetriesLeniently(t *testing.T) {
	log, logs := testutil.ObservedLogger(zap.WarnLevel)
	opts := testOptions()
	opts.Logger = log

	bd, err := Bind(context.Background(), []byte("path\n\nC:\\temp\n\n/usr\n\n"), opts)
	require.NoError(t, err)
	assert.True(t, bd.Lenient())
	assert.Len(t, bd.Document().Malformed(), 1)

	entries := logs.FilterMessage("malformed escapes in data rows, decoded leniently").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].ContextMap()["malformed"])

	res, err := ReadAll(context.Background(), []byte("path\n\nC:\\temp\n\n/usr\n\n"), opts, nil)
	require.NoError(t, err)
	assert.Equal(t, `C:\temp`, res.Batches[0].Columns[0].Value(0))
}

func TestInitColumns(t *testing.T) {
	bd, err := Bind(context.Background(), peopleNSV(), testOptions())
	require.NoError(t, err)

	s, err := bd.Init(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, bd.Names(), s.Names())

	s, err = bd.Init(context.Background(), []int{}) // empty means all
	require.NoError(t, err)
	assert.Len(t, s.Names(), 6)

	s, err = bd.Init(context.Background(), []int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, []string{"score", "id"}, s.Names())
	assert.Equal(t, []schema.ColumnType{schema.Float, schema.Integer}, s.Types())

	for _, ids := range [][]int{{6}, {-1}, {0, 99}} {
		_, err = bd.Init(context.Background(), ids)
		require.Error(t, err, "%v", ids)
		assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidInput))
	}
}

func TestScanValues(t *testing.T) {
	for _, projection := range []bool{true, false} {
		t.Run(fmt.Sprintf("projection=%v", projection), func(t *testing.T) {
			opts := testOptions()
			opts.Projection = projection

			res, err := ReadAll(context.Background(), peopleNSV(), opts, []int{5, 0, 2, 1, 3, 4})
			require.NoError(t, err)
			require.Len(t, res.Batches, 1)
			b := res.Batches[0]
			require.Equal(t, 3, b.Len)

			assert.Equal(t, []string{"seen", "id", "score", "name", "active", "born"}, res.Names)
			assert.Equal(t, []any{
				time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
				int64(1), 9.5, "alice", true,
				time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC),
			}, b.Row(0))

			assert.True(t, b.Columns[2].IsNull(1), "empty float is NULL")
			assert.True(t, b.Columns[3].IsNull(2), "empty string is NULL")
			assert.Nil(t, b.Columns[3].Value(2))
			assert.Equal(t, 7.0, b.Columns[2].Value(2))
			assert.Equal(t, 0, res.Stats.NullDowngrades)
		})
	}
}

func TestScanBatching(t *testing.T) {
	tests := []struct {
		rows, batch int
	}{
		{5000, 2048},
		{4096, 2048},
		{1, 2048},
		{10, 3},
		{0, 4},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.rows, tt.batch), func(t *testing.T) {
			rows := [][]string{{"n"}}
			for i := 0; i < tt.rows; i++ {
				rows = append(rows, []string{fmt.Sprint(i)})
			}
			opts := testOptions()
			opts.BatchSize = tt.batch

			bd, err := Bind(context.Background(), nsv.EncodeStrings(rows), opts)
			require.NoError(t, err)
			s, err := bd.Init(context.Background(), nil)
			require.NoError(t, err)

			want := (tt.rows + tt.batch - 1) / tt.batch
			total := 0
			next := int64(0)
			for i := 0; i < want; i++ {
				b, err := s.Next(context.Background())
				require.NoError(t, err)
				require.Greater(t, b.Len, 0)
				require.LessOrEqual(t, b.Len, tt.batch)
				for r := 0; r < b.Len; r++ {
					assert.Equal(t, next, b.Columns[0].Ints[r])
					next++
				}
				total += b.Len
			}
			assert.Equal(t, tt.rows, total)

			for i := 0; i < 2; i++ {
				b, err := s.Next(context.Background())
				require.NoError(t, err)
				assert.Equal(t, 0, b.Len, "end of stream is repeatable")
			}
			assert.Equal(t, Stats{Rows: tt.rows, Batches: want}, s.Stats())
		})
	}
}

func TestScanRaggedAndDowngrades(t *testing.T) {
	data := []byte("a\nb\nc\n\n1\nx\n\n2\n\n3\n4\n5\n6\n\n")
	opts := testOptions()
	opts.Types = map[string]schema.ColumnType{"b": schema.Integer}

	res, err := ReadAll(context.Background(), data, opts, nil)
	require.NoError(t, err)
	b := res.Batches[0]
	require.Equal(t, 3, b.Len)

	assert.Equal(t, []any{int64(1), nil, nil}, b.Row(0), "x fails Integer, c is absent")
	assert.Equal(t, []any{int64(2), nil, nil}, b.Row(1))
	assert.Equal(t, []any{int64(3), int64(4), int64(5)}, b.Row(2), "cells past the header width are ignored")
	assert.Equal(t, 1, res.Stats.NullDowngrades)
	assert.Equal(t, 3, res.Rows())
}

func TestScanHeaderOnly(t *testing.T) {
	res, err := ReadAll(context.Background(), []byte("a\nb\n\n"), testOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, res.Names)
	assert.Empty(t, res.Batches)
	assert.Equal(t, 0, res.Rows())
}

func TestSnifferWindowExcludesHeader(t *testing.T) {
	opts := testOptions()
	opts.SampleSize = 2
	data := nsv.EncodeStrings([][]string{{"v"}, {"1"}, {"2"}, {"three"}})

	bd, err := Bind(context.Background(), data, opts)
	require.NoError(t, err)
	assert.Equal(t, []schema.ColumnType{schema.Integer}, bd.Types())

	profiles := bd.Profiles()
	require.Len(t, profiles, 1)
	assert.Equal(t, 2, profiles[0].Sampled)

	res, err := ReadAll(context.Background(), data, opts, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.NullDowngrades, "rows past the window still downgrade")
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.NewConfig().Reader
	cfg.BatchSize = 10
	cfg.Lenient = true
	cfg.Types = map[string]schema.ColumnType{"a": schema.Date}

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, 10, opts.BatchSize)
	assert.True(t, opts.Lenient)
	assert.True(t, opts.Projection)
	assert.Equal(t, schema.Date, opts.Types["a"])
	require.NoError(t, opts.Validate())

	cfg.Types["b"] = schema.Float
	assert.NotContains(t, opts.Types, "b", "options own their override map")
}

func TestLenientOption(t *testing.T) {
	opts := testOptions()
	opts.Lenient = true

	bd, err := Bind(context.Background(), []byte("h\n\nv\\x\n\n"), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"h"}, bd.Names())
	assert.True(t, bd.Lenient())

	_, err = Bind(context.Background(), []byte("h\\x\n\nv\n\n"), opts)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeMalformedEscape))
	pos, ok := nsv.MalformedPosition(err)
	require.True(t, ok)
	assert.Equal(t, 0, pos.Row)
}
