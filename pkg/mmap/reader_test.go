package mmap

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/nsv/pkg/errors"
	"github.com/ajitpratap0/nsv/pkg/testutil"
)

func TestOpen(t *testing.T) {
	path := testutil.WriteTempFile(t, "a.nsv", []byte("a\nb\n\n"))

	r, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("a\nb\n\n"), r.Bytes())
	assert.Equal(t, 5, r.Len())

	require.NoError(t, r.Close())
	assert.Nil(t, r.Bytes())
	assert.NoError(t, r.Close(), "close is idempotent")
}

func TestOpenEmpty(t *testing.T) {
	r, err := Open(testutil.WriteTempFile(t, "empty.nsv", nil))
	require.NoError(t, err)
	assert.Empty(t, r.Bytes())
	assert.NoError(t, r.Close())
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}
