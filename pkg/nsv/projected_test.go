package nsv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/nsv/pkg/errors"
)

func TestDecodeProjected(t *testing.T) {
	input := []byte("a\nb\nc\n\n1\n2\n3\n\n")

	doc, err := DecodeProjected(input, []int{2, 0})
	require.NoError(t, err)

	assert.Equal(t, 2, doc.RowCount())
	assert.Equal(t, 2, doc.ColCount(0))
	assert.Equal(t, []int{2, 0}, doc.Columns())
	assert.Equal(t, [][]string{{"c", "a"}, {"3", "1"}}, doc.Strings())
	assert.Equal(t, 4, doc.Size(), "unrequested column is never copied")
}

func TestDecodeProjectedDuplicates(t *testing.T) {
	doc, err := DecodeProjected([]byte("x\ny\n\n"), []int{1, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"y", "y", "x"}}, doc.Strings())
	assert.Equal(t, 2, doc.Size())
}

func TestDecodeProjectedRagged(t *testing.T) {
	doc, err := DecodeProjected([]byte("a\nb\nc\n\nd\n\n"), []int{0, 2})
	require.NoError(t, err)

	b, ok := doc.Cell(1, 0)
	assert.True(t, ok)
	assert.Equal(t, []byte("d"), b)

	_, ok = doc.Cell(1, 1)
	assert.False(t, ok, "column past a short row is absent")
	assert.Nil(t, doc.Value(1, 1))

	_, ok = doc.Cell(0, 2)
	assert.False(t, ok)
	_, ok = doc.Cell(2, 0)
	assert.False(t, ok)
}

func TestDecodeProjectedHugeColumnIndex(t *testing.T) {
	doc, err := DecodeProjected([]byte("a\nb\nc\n\n1\n2\n3\n\n"), []int{2, 1 << 34, math.MaxInt})
	require.NoError(t, err)
	require.Equal(t, 2, doc.RowCount())
	assert.Equal(t, 2, doc.Size(), "only column 2 is stored")

	for r := 0; r < doc.RowCount(); r++ {
		_, ok := doc.Cell(r, 0)
		assert.True(t, ok, "row %d", r)
		for _, c := range []int{1, 2} {
			_, ok := doc.Cell(r, c)
			assert.False(t, ok, "row %d col %d is past every row", r, c)
		}
	}
	assert.Equal(t, []byte("3"), doc.Value(1, 0))
}

func TestDecodeProjectedMatchesEager(t *testing.T) {
	input := []byte("h1\nh2\nh3\n\n\\\nx\\\\y\nmulti\\nline\n\n\nlast\n")
	full, err := Decode(input)
	require.NoError(t, err)

	cols := []int{1, 2, 0}
	proj, err := DecodeProjected(input, cols)
	require.NoError(t, err)
	require.Equal(t, full.RowCount(), proj.RowCount())

	for r := 0; r < full.RowCount(); r++ {
		for j, c := range cols {
			want, wantOK := full.Cell(r, c)
			got, gotOK := proj.Cell(r, j)
			assert.Equal(t, wantOK, gotOK, "row %d col %d", r, c)
			assert.Equal(t, string(want), string(got), "row %d col %d", r, c)
		}
	}
}

func TestDecodeProjectedNegativeColumn(t *testing.T) {
	_, err := DecodeProjected([]byte("a\n\n"), []int{0, -1})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidInput))
}

func TestDecodeProjectedNoColumns(t *testing.T) {
	doc, err := DecodeProjected([]byte("a\n\nb\n\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.RowCount())
	assert.Equal(t, 0, doc.ColCount(0))
	assert.Equal(t, [][]string{{}, {}}, doc.Strings())
}

func TestDecodeProjectedMalformed(t *testing.T) {
	input := []byte("ok\nbad\\x\n\n")

	// The malformed cell is in an unrequested column.
	doc, err := DecodeProjected(input, []int{0})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"ok"}}, doc.Strings())

	_, err = DecodeProjected(input, []int{1})
	require.Error(t, err)
	pos, ok := MalformedPosition(err)
	require.True(t, ok)
	assert.Equal(t, Position{Row: 0, Col: 1, Line: 2, Offset: 6}, pos)

	doc, err = DecodeProjected(input, []int{1}, WithLenientEscapes())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{`bad\x`}}, doc.Strings())
	assert.Len(t, doc.Malformed(), 1)
}

func TestDecodeProjectedEmpty(t *testing.T) {
	doc, err := DecodeProjected(nil, []int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 0, doc.RowCount())
}
