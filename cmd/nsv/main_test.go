package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/nsv/pkg/compression"
	"github.com/ajitpratap0/nsv/pkg/errors"
	"github.com/ajitpratap0/nsv/pkg/nsv"
	"github.com/ajitpratap0/nsv/pkg/storage"
	"github.com/ajitpratap0/nsv/pkg/testutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.ExecuteContext(testutil.TestContext(t))
	return stdout.String(), err
}

func peopleFile(t *testing.T) string {
	return testutil.WriteTempFile(t, "people.nsv", nsv.EncodeStrings([][]string{
		{"id", "name", "score"},
		{"1", "alice", "9.5"},
		{"2", "bob\nsmith", ""},
	}))
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "nsv v"+version)
}

func TestSchema(t *testing.T) {
	out, err := run(t, "schema", peopleFile(t))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"COLUMN", "TYPE", "SAMPLED", "NULLS"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"id", "integer", "2", "0"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"name", "string", "2", "0"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"score", "float", "2", "1"}, strings.Fields(lines[3]))
}

func TestSchemaJSONAndEnv(t *testing.T) {
	t.Setenv("NSV_READER_ALL_VARCHAR", "true")

	out, err := run(t, "schema", "--json", peopleFile(t))
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "id"`)
	assert.NotContains(t, out, `"integer"`)
	assert.Contains(t, out, `"type": "string"`)
}

func TestReadCSV(t *testing.T) {
	out, err := run(t, "read", "--format", "csv", peopleFile(t))
	require.NoError(t, err)
	assert.Equal(t, "id,name,score\n1,alice,9.5\n2,\"bob\nsmith\",\n", out)
}

func TestReadColumns(t *testing.T) {
	out, err := run(t, "read", "--columns", "score,id", "--projection=false", peopleFile(t))
	require.NoError(t, err)
	assert.Equal(t, "{\"score\":9.5,\"id\":1}\n{\"score\":null,\"id\":2}\n", out)

	_, err = run(t, "read", "--columns", "nope", peopleFile(t))
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidInput))
}

func TestReadToCompressedOutput(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := run(t, "read", "--compression", "zstd", "--output", dst, peopleFile(t))
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = os.Stat(dst)
	assert.True(t, os.IsNotExist(err), "output gets the compression suffix")

	data, err := storage.New(storage.Options{}).Open(context.Background(), dst+".zst")
	require.NoError(t, err)
	assert.Equal(t, "{\"id\":1,\"name\":\"alice\",\"score\":9.5}\n{\"id\":2,\"name\":\"bob\\nsmith\",\"score\":null}\n", string(data))
}

func TestConvert(t *testing.T) {
	src := testutil.WriteTempFile(t, "in.csv", []byte("a,b\n1,\"x\ny\"\n2,\n"))
	dst := filepath.Join(t.TempDir(), "out.nsv.gz")

	_, err := run(t, "convert", src, dst)
	require.NoError(t, err)

	data, err := storage.New(storage.Options{}).Open(context.Background(), dst)
	require.NoError(t, err)
	doc, err := nsv.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "x\ny"}, {"2", ""}}, doc.Strings())

	_, err = run(t, "convert", "--header=false", src, dst)
	require.NoError(t, err)
	data, err = storage.New(storage.Options{}).Open(context.Background(), dst)
	require.NoError(t, err)
	doc, err = nsv.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.RowCount())
}

func TestConvertCompressionLevel(t *testing.T) {
	src := testutil.WriteTempFile(t, "in.csv", []byte("a,b\n1,2\n"))
	dst := filepath.Join(t.TempDir(), "out.nsv")

	_, err := run(t, "convert", "--compression", "gzip", "--compression-level", "best", src, dst)
	require.NoError(t, err)

	raw, err := os.ReadFile(dst + ".gz")
	require.NoError(t, err)
	c, err := compression.NewCompressor(&compression.Config{Algorithm: compression.Gzip, Level: compression.Best})
	require.NoError(t, err)
	want, err := c.Compress([]byte("a\nb\n\n1\n2\n\n"))
	require.NoError(t, err)
	assert.Equal(t, want, raw)

	_, err = run(t, "convert", "--compression-level", "max", src, dst)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestValidate(t *testing.T) {
	out, err := run(t, "validate", peopleFile(t))
	require.NoError(t, err)
	assert.Equal(t, "3 rows, 0 malformed escapes\n", out)

	bad := testutil.WriteTempFile(t, "bad.nsv", []byte("a\nb\\x\n\n"))
	out, err = run(t, "validate", bad)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeMalformedEscape))
	assert.Equal(t, "row 0, col 1 (line 2, offset 3): malformed escape\n1 rows, 1 malformed escapes\n", out)
}

func TestConfigFile(t *testing.T) {
	cfg := testutil.WriteTempFile(t, "nsv.yaml", []byte("reader:\n  batch_size: 1\n  all_varchar: true\nlogging:\n  level: error\n"))

	out, err := run(t, "--config", cfg, "read", "--format", "csv", peopleFile(t))
	require.NoError(t, err)
	assert.Equal(t, "id,name,score\n1,alice,9.5\n2,\"bob\nsmith\",\n", out)

	bad := testutil.WriteTempFile(t, "bad.yaml", []byte("reader:\n  batch_size: -1\n"))
	_, err = run(t, "--config", bad, "version")
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}
