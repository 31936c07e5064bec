package export

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ajitpratap0/nsv/pkg/errors"
	"github.com/ajitpratap0/nsv/pkg/nsv"
	"github.com/ajitpratap0/nsv/pkg/scan"
)

func TestWriteRow(t *testing.T) {
	w := NewWriter([]string{"name", "age", "note"}, DefaultWriterOptions())
	require.NoError(t, w.WriteRow([]any{"Alice", 30, nil}))
	require.NoError(t, w.WriteRow([]any{"Bob", int64(-1), "two\nlines"}))

	out, err := w.Finish()
	require.NoError(t, err)
	assert.Equal(t, "name\nage\nnote\n\nAlice\n30\n\\\n\nBob\n-1\ntwo\\nlines\n\n", string(out))
}

func TestWriteRowArity(t *testing.T) {
	w := NewWriter([]string{"a"}, DefaultWriterOptions())
	err := w.WriteRow([]any{1, 2})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidInput))
}

func TestHeaderOnly(t *testing.T) {
	w := NewWriter([]string{"a", "b"}, DefaultWriterOptions())
	out, err := w.Finish()
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n\n", string(out))

	_, err = w.Finish()
	assert.True(t, errors.Is(err, errors.ErrEncoderFinished))
}

func TestNoHeader(t *testing.T) {
	w := NewWriter([]string{"a"}, WriterOptions{Header: false})
	require.NoError(t, w.WriteRow([]any{true}))
	out, err := w.Finish()
	require.NoError(t, err)
	assert.Equal(t, "true\n\n", string(out))

	w = NewWriter([]string{"a"}, WriterOptions{})
	out, err = w.Finish()
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestAppendValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"x", "x"},
		{[]byte("raw"), "raw"},
		{false, "false"},
		{int32(7), "7"},
		{uint64(9), "9"},
		{1.5, "1.5"},
		{float32(0.25), "0.25"},
		{1e21, "1e+21"},
		{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "2024-03-01"},
		{time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC), "2024-03-01 10:20:30"},
		{time.Date(2024, 3, 1, 10, 20, 30, 500000000, time.UTC), "2024-03-01 10:20:30.5"},
		{5 * time.Second, "5s"},
		{struct{ A int }{1}, "{1}"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, string(AppendValue(nil, tt.in)))
	}
}

func TestWriteBatchRoundTrip(t *testing.T) {
	input := nsv.EncodeStrings([][]string{
		{"id", "flag", "score", "day", "at", "text"},
		{"1", "yes", "2.5", "2024-01-02", "2024-01-02 03:04:05.25", "C:\\dir"},
		{"2", "", "x", "", "", "multi\nline"},
	})

	opts := scan.DefaultOptions()
	opts.Logger = zap.NewNop()
	res, err := scan.ReadAll(context.Background(), input, opts, nil)
	require.NoError(t, err)

	w := NewWriter(res.Names, DefaultWriterOptions())
	for _, b := range res.Batches {
		require.NoError(t, w.WriteBatch(b))
	}
	out, err := w.Finish()
	require.NoError(t, err)

	doc, err := nsv.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"id", "flag", "score", "day", "at", "text"},
		{"1", "true", "2.5", "2024-01-02", "2024-01-02 03:04:05.25", "C:\\dir"},
		{"2", "", "x", "", "", "multi\nline"},
	}, doc.Strings())
}

func TestWriteBatchWidth(t *testing.T) {
	w := NewWriter([]string{"a", "b"}, DefaultWriterOptions())
	err := w.WriteBatch(&scan.Batch{})
	require.Error(t, err)
}
