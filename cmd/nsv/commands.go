package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/nsv/pkg/compression"
	"github.com/ajitpratap0/nsv/pkg/errors"
	"github.com/ajitpratap0/nsv/pkg/export"
	"github.com/ajitpratap0/nsv/pkg/formats"
	"github.com/ajitpratap0/nsv/pkg/nsv"
	"github.com/ajitpratap0/nsv/pkg/scan"
	"github.com/ajitpratap0/nsv/pkg/schema"
)

func newSchemaCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "schema <uri>",
		Short: "Print the inferred column types of an NSV document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.store.View(ctx, args[0], func(data []byte) error {
				bd, err := scan.Bind(ctx, data, a.scanOptions())
				if err != nil {
					return err
				}
				return a.printSchema(bd, asJSON)
			})
		},
	}

	f := cmd.Flags()
	f.BoolVar(&asJSON, "json", false, "Print the schema as JSON")
	f.Bool("all-varchar", false, "Type every column as string")
	f.Int("sample-start", schema.DefaultSampleStart, "First row used for type sniffing")
	f.Int("sample-size", schema.DefaultSampleSize, "Number of rows used for type sniffing")
	return cmd
}

func (a *app) printSchema(bd *scan.BindData, asJSON bool) error {
	names, profiles := bd.Names(), bd.Profiles()
	if asJSON {
		type column struct {
			Name string `json:"name"`
			schema.ColumnProfile
		}
		cols := make([]column, len(names))
		for i := range names {
			cols[i] = column{Name: names[i], ColumnProfile: profiles[i]}
		}
		enc := gojson.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cols)
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tTYPE\tSAMPLED\tNULLS")
	for i, name := range names {
		p := profiles[i]
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", name, p.Type, p.Sampled, p.Nulls)
	}
	return tw.Flush()
}

func newReadCmd(a *app) *cobra.Command {
	var (
		columns []string
		format  string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "read <uri>",
		Short: "Scan an NSV document and write it in another format",
		Long: `Scan an NSV document with type inference and write the rows as JSON lines,
CSV, Arrow IPC, Parquet, Avro or NSV.

Example:
  nsv read s3://bucket/people.nsv.zst --columns name,age --format parquet --output people.parquet`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := formats.ParseFormat(format)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			var buf bytes.Buffer
			out := a.stdout
			if output != "" {
				out = &buf
			}
			err = a.store.View(ctx, args[0], func(data []byte) error {
				return a.scanTo(ctx, data, columns, f, out)
			})
			if err != nil {
				return err
			}
			a.log.Info("read complete", zap.String("input", args[0]), zap.String("format", string(f)))

			if output == "" {
				return nil
			}
			dst, err := a.outputURI(output)
			if err != nil {
				return err
			}
			return a.store.Write(ctx, dst, buf.Bytes())
		},
	}

	fl := cmd.Flags()
	fl.StringSliceVar(&columns, "columns", nil, "Columns to read, by header name (default all)")
	fl.StringVar(&format, "format", string(formats.JSONL), "Output format: jsonl, csv, arrow, parquet, avro or nsv")
	fl.StringVarP(&output, "output", "o", "", "Output URI (default stdout)")
	fl.Bool("all-varchar", false, "Type every column as string")
	fl.Bool("lenient", false, "Keep malformed escapes as literal text")
	fl.Bool("projection", true, "Re-decode only the selected columns")
	fl.Int("batch-size", scan.DefaultBatchSize, "Maximum rows per batch")
	fl.Int("sample-start", schema.DefaultSampleStart, "First row used for type sniffing")
	fl.Int("sample-size", schema.DefaultSampleSize, "Number of rows used for type sniffing")
	fl.String("compression", "", "Compression for --output when its name has no compression suffix")
	fl.String("compression-level", "", "Compression level: fastest, default, better or best")
	return cmd
}

// scanTo binds data, scans the selected columns and writes every batch to
// out in format f.
func (a *app) scanTo(ctx context.Context, data []byte, columns []string, f formats.Format, out io.Writer) error {
	bd, err := scan.Bind(ctx, data, a.scanOptions())
	if err != nil {
		return err
	}
	ids, err := resolveColumns(bd.Names(), columns)
	if err != nil {
		return err
	}
	sc, err := bd.Init(ctx, ids)
	if err != nil {
		return err
	}

	w, err := formats.NewWriter(f, out, sc.Names(), sc.Types())
	if err != nil {
		return err
	}
	for {
		b, err := sc.Next(ctx)
		if err != nil {
			return err
		}
		if b.Len == 0 {
			break
		}
		if err := w.WriteBatch(b); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}

	stats := sc.Stats()
	a.log.Debug("scan finished",
		zap.Int("rows", stats.Rows),
		zap.Int("batches", stats.Batches),
		zap.Int("null_downgrades", stats.NullDowngrades))
	return nil
}

func newConvertCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <csv-uri> <nsv-uri>",
		Short: "Convert a CSV file to NSV",
		Long: `Convert a CSV file to NSV. The first CSV record is the header. With
--header=false it is dropped from the output.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := a.store.Open(ctx, args[0])
			if err != nil {
				return err
			}
			out, rows, err := csvToNSV(data, a.cfg.Writer.Header)
			if err != nil {
				return err
			}
			dst, err := a.outputURI(args[1])
			if err != nil {
				return err
			}
			if err := a.store.Write(ctx, dst, out); err != nil {
				return err
			}
			a.log.Info("convert complete",
				zap.String("input", args[0]),
				zap.String("output", dst),
				zap.Int("rows", rows))
			return nil
		},
	}

	f := cmd.Flags()
	f.Bool("header", true, "Write the CSV header as the first NSV row")
	f.String("compression", "", "Compression when the output name has no compression suffix")
	f.String("compression-level", "", "Compression level: fastest, default, better or best")
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <uri>",
		Short: "Report malformed escapes in an NSV document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var doc *nsv.Document
			err := a.store.View(cmd.Context(), args[0], func(data []byte) error {
				var err error
				doc, err = nsv.Decode(data, nsv.WithLenientEscapes())
				return err
			})
			if err != nil {
				return err
			}

			bad := doc.Malformed()
			for _, pos := range bad {
				fmt.Fprintf(a.stdout, "%s: malformed escape\n", pos)
			}
			fmt.Fprintf(a.stdout, "%d rows, %d malformed escapes\n", doc.RowCount(), len(bad))
			if len(bad) > 0 {
				return errors.Newf(errors.ErrorTypeMalformedEscape, "%s: %d malformed escapes", args[0], len(bad)).
					WithDetail("first", bad[0].String())
			}
			return nil
		},
	}
}

func (a *app) scanOptions() scan.Options {
	opts := scan.OptionsFromConfig(a.cfg.Reader)
	opts.Logger = a.log
	return opts
}

// outputURI appends the configured compression suffix when uri has none.
func (a *app) outputURI(uri string) (string, error) {
	alg, err := compression.ParseAlgorithm(a.cfg.Writer.Compression)
	if err != nil {
		return "", err
	}
	if existing, _ := compression.FromPath(uri); existing != compression.None || alg == compression.None {
		return uri, nil
	}
	return uri + compression.Extension(alg), nil
}

// resolveColumns maps header names to column indices. No names selects
// every column.
func resolveColumns(names, selected []string) ([]int, error) {
	if len(selected) == 0 {
		return nil, nil
	}
	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}

	ids := make([]int, 0, len(selected))
	for _, name := range selected {
		id, ok := index[strings.TrimSpace(name)]
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeInvalidInput, "unknown column %q", name).
				WithDetail("columns", strings.Join(names, ","))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// csvToNSV converts CSV records to NSV rows. Every record must have as many
// fields as the header.
func csvToNSV(data []byte, header bool) ([]byte, int, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.ReuseRecord = true

	names, err := r.Read()
	if err == io.EOF {
		return nil, 0, errors.New(errors.ErrorTypeEmptyDocument, errors.ErrEmptyDocument.Message)
	}
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrorTypeInvalidInput, "failed to read csv header")
	}

	w := export.NewWriter(names, export.WriterOptions{Header: header})
	row := make([]any, len(names))
	rows := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, errors.Wrap(err, errors.ErrorTypeInvalidInput, "failed to read csv record").
				WithDetail("record", rows+1)
		}
		for i, field := range rec {
			row[i] = field
		}
		if err := w.WriteRow(row); err != nil {
			return nil, 0, err
		}
		rows++
	}

	out, err := w.Finish()
	if err != nil {
		return nil, 0, err
	}
	return out, rows, nil
}
