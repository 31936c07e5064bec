// Package nsv is the root of the NSV toolkit: a codec, type sniffer and batch
// scanner for newline separated values.
//
// NSV stores one cell per line and ends each row with a blank line. A line
// holding a single backslash is an empty cell, "\\" encodes a backslash and
// "\n" encodes a newline inside a cell:
//
//	name        <- row 0, cell 0
//	age         <- row 0, cell 1
//	            <- end of row 0
//	Alice
//	30
//
// # Packages
//
//   - pkg/nsv: Decode, DecodeProjected and Encoder, the core codec
//   - pkg/schema: column types, text converters and the type sniffer
//   - pkg/scan: Bind, Init and Next, a pull-based typed batch reader
//   - pkg/export: writes typed rows back out as NSV
//   - pkg/formats: Arrow, Parquet, Avro, JSON lines and CSV writers for batches
//   - pkg/storage: local, http(s), S3 and GCS byte sources and sinks
//   - pkg/compression: gzip, zstd, lz4, snappy and s2 selected by extension
//   - pkg/config, pkg/logger, pkg/metrics, pkg/observability: ambient stack
//
// # Quick Start
//
//	data, err := storage.Open(ctx, "s3://bucket/people.nsv.zst")
//	if err != nil {
//	    return err
//	}
//	res, err := scan.ReadAll(ctx, data, scan.DefaultOptions(), nil)
//	if err != nil {
//	    return err
//	}
//	for _, b := range res.Batches {
//	    for i := 0; i < b.Len; i++ {
//	        fmt.Println(b.Row(i))
//	    }
//	}
//
// The cmd/nsv binary wraps the same flow: nsv schema, nsv read, nsv convert
// and nsv validate.
package nsv
