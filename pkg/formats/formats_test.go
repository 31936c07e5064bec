package formats

import (
	"bytes"
	"context"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/linkedin/goavro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ajitpratap0/nsv/pkg/errors"
	"github.com/ajitpratap0/nsv/pkg/nsv"
	"github.com/ajitpratap0/nsv/pkg/scan"
	"github.com/ajitpratap0/nsv/pkg/schema"
)

var (
	testNames = []string{"id", "name", "score", "active", "born", "seen"}
	testTypes = []schema.ColumnType{
		schema.Integer, schema.String, schema.Float, schema.Boolean, schema.Date, schema.Timestamp,
	}
)

func readTestData(t *testing.T) *scan.Result {
	t.Helper()
	data := nsv.EncodeStrings([][]string{
		testNames,
		{"1", "alice", "9.5", "yes", "1990-01-02", "2024-01-01 10:00:00"},
		{"2", "", "", "no", "1985-07-30", "2024-01-02 11:30:00.5"},
	})
	opts := scan.DefaultOptions()
	opts.Logger = zap.NewNop()

	res, err := scan.ReadAll(context.Background(), data, opts, nil)
	require.NoError(t, err)
	require.Len(t, res.Batches, 1)
	require.Equal(t, testTypes, []schema.ColumnType{
		res.Batches[0].Columns[0].Type, res.Batches[0].Columns[1].Type, res.Batches[0].Columns[2].Type,
		res.Batches[0].Columns[3].Type, res.Batches[0].Columns[4].Type, res.Batches[0].Columns[5].Type,
	})
	return res
}

func write(t *testing.T, f Format, res *scan.Result) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewWriter(f, &buf, res.Names, testTypes)
	require.NoError(t, err)
	for _, b := range res.Batches {
		require.NoError(t, w.WriteBatch(b))
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestJSONL(t *testing.T) {
	out := write(t, JSONL, readTestData(t))
	want := `{"id":1,"name":"alice","score":9.5,"active":true,"born":"1990-01-02","seen":"2024-01-01 10:00:00"}
{"id":2,"name":null,"score":null,"active":false,"born":"1985-07-30","seen":"2024-01-02 11:30:00.5"}
`
	assert.Equal(t, want, string(out))
}

func TestCSV(t *testing.T) {
	out := write(t, CSV, readTestData(t))
	want := "id,name,score,active,born,seen\n" +
		"1,alice,9.5,true,1990-01-02,2024-01-01 10:00:00\n" +
		"2,,,false,1985-07-30,2024-01-02 11:30:00.5\n"
	assert.Equal(t, want, string(out))
}

func TestNSV(t *testing.T) {
	out := write(t, NSV, readTestData(t))
	doc, err := nsv.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		testNames,
		{"1", "alice", "9.5", "true", "1990-01-02", "2024-01-01 10:00:00"},
		{"2", "", "", "false", "1985-07-30", "2024-01-02 11:30:00.5"},
	}, doc.Strings())
}

func TestArrow(t *testing.T) {
	out := write(t, Arrow, readTestData(t))

	r, err := ipc.NewFileReader(bytes.NewReader(out), ipc.WithAllocator(memory.NewGoAllocator()))
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, ToArrowSchema(testNames, testTypes).String(), r.Schema().String())
	require.Equal(t, 1, r.NumRecords())

	rec, err := r.Record(0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.NumRows())

	ids := rec.Column(0).(*array.Int64)
	assert.Equal(t, []int64{1, 2}, ids.Int64Values())

	names := rec.Column(1).(*array.String)
	assert.Equal(t, "alice", names.Value(0))
	assert.True(t, names.IsNull(1))

	born := rec.Column(4).(*array.Date32)
	assert.Equal(t, "1990-01-02", born.Value(0).ToTime().Format(schema.DateLayout))
}

func TestParquet(t *testing.T) {
	out := write(t, Parquet, readTestData(t))

	pf, err := file.NewParquetReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer pf.Close()

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	require.NoError(t, err)

	tbl, err := fr.ReadTable(context.Background())
	require.NoError(t, err)
	defer tbl.Release()

	assert.Equal(t, int64(2), tbl.NumRows())
	assert.Equal(t, int64(len(testNames)), tbl.NumCols())
	assert.Equal(t, "name", tbl.Schema().Field(1).Name)
}

func TestAvro(t *testing.T) {
	out := write(t, Avro, readTestData(t))

	r, err := goavro.NewOCFReader(bytes.NewReader(out))
	require.NoError(t, err)

	var rows []map[string]interface{}
	for r.Scan() {
		datum, err := r.Read()
		require.NoError(t, err)
		rows = append(rows, datum.(map[string]interface{}))
	}
	require.NoError(t, r.Err())
	require.Len(t, rows, 2)

	assert.Equal(t, map[string]interface{}{"long": int64(1)}, rows[0]["id"])
	assert.Equal(t, map[string]interface{}{"string": "alice"}, rows[0]["name"])
	assert.Nil(t, rows[1]["name"])
	assert.Equal(t, map[string]interface{}{"boolean": false}, rows[1]["active"])
}

func TestAvroFieldNames(t *testing.T) {
	got := AvroFieldNames([]string{"id", "1st", "a b", "", "a b"})
	assert.Equal(t, []string{"id", "_st", "a_b", "col3", "a_b_1"}, got)
}

func TestAvroSchema(t *testing.T) {
	s, err := AvroSchema([]string{"n"}, []schema.ColumnType{schema.Integer})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"record","name":"nsv_row","fields":[{"name":"n","type":["null","long"]}]}`, s)
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"arrow": Arrow, "IPC": Arrow, "parquet": Parquet, "avro": Avro,
		"jsonl": JSONL, "json": JSONL, "csv": CSV, "nsv": NSV,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("orc")
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupported))
}

func TestNewWriterErrors(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewWriter(CSV, &buf, []string{"a", "b"}, []schema.ColumnType{schema.String})
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidInput))

	_, err = NewWriter("orc", &buf, nil, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupported))
}

func TestWriteBatchWidthMismatch(t *testing.T) {
	res := readTestData(t)
	for _, f := range []Format{Arrow, Parquet, Avro, JSONL, CSV, NSV} {
		var buf bytes.Buffer
		w, err := NewWriter(f, &buf, []string{"only"}, []schema.ColumnType{schema.String})
		require.NoError(t, err, f)
		err = w.WriteBatch(res.Batches[0])
		assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidInput), "%s: %v", f, err)
	}
}
