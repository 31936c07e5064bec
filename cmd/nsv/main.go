package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/nsv/pkg/compression"
	"github.com/ajitpratap0/nsv/pkg/config"
	"github.com/ajitpratap0/nsv/pkg/logger"
	"github.com/ajitpratap0/nsv/pkg/observability"
	"github.com/ajitpratap0/nsv/pkg/storage"
)

var version = "0.1.0"

// app carries the state shared by every command of one invocation.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	store  *storage.Store
	log    *zap.Logger
	stdout io.Writer
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: viper.New(), stdout: stdout}

	root := &cobra.Command{
		Use:   "nsv",
		Short: "nsv - read, type and convert newline separated values",
		Long: `nsv reads NSV documents (one cell per line, blank line between rows),
infers column types and converts them to columnar and text formats.

Inputs and outputs may be local paths, file://, http(s)://, s3:// or gs://
URIs. A .gz, .zst, .lz4, .sz or .s2 suffix selects compression.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			_ = logger.Sync()
			return observability.Shutdown(cmd.Context())
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.String("config", "", "Path to a YAML configuration file")
	pf.String("log-level", "", "Log level (debug, info, warn, error)")
	pf.Bool("trace", false, "Export OpenTelemetry spans to stderr")

	a.v.SetEnvPrefix("NSV")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		newVersionCmd(a),
		newSchemaCmd(a),
		newReadCmd(a),
		newConvertCmd(a),
		newValidateCmd(a),
	)
	return root
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "nsv v%s\n", version)
			fmt.Fprintf(a.stdout, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(a.stdout, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// setup loads the configuration file, layers NSV_* environment variables and
// changed flags over it, then initializes logging, tracing and storage.
func (a *app) setup(cmd *cobra.Command) error {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	cfg := config.NewConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	a.overlay(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	if err := logger.Init(cfg.Logging); err != nil {
		return err
	}
	a.log = logger.With(zap.String("command", cmd.Name()))

	if cfg.Tracing.Enabled {
		if err := observability.InitTracing(cfg.Tracing); err != nil {
			return err
		}
	}

	level, err := compression.ParseLevel(cfg.Writer.CompressionLevel)
	if err != nil {
		return err
	}
	a.store = storage.New(storage.Options{CompressionLevel: level, Logger: a.log})
	return nil
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"log-level":         "logging.level",
	"trace":             "tracing.enabled",
	"batch-size":        "reader.batch_size",
	"sample-start":      "reader.sample_start",
	"sample-size":       "reader.sample_size",
	"all-varchar":       "reader.all_varchar",
	"lenient":           "reader.lenient",
	"projection":        "reader.projection",
	"header":            "writer.header",
	"compression":       "writer.compression",
	"compression-level": "writer.compression_level",
}

// overlay copies every key viper has a value for into cfg.
func (a *app) overlay(cfg *config.Config) {
	v := a.v
	if v.IsSet("logging.level") {
		cfg.Logging.Level = v.GetString("logging.level")
	}
	if v.IsSet("logging.encoding") {
		cfg.Logging.Encoding = v.GetString("logging.encoding")
	}
	if v.IsSet("tracing.enabled") {
		cfg.Tracing.Enabled = v.GetBool("tracing.enabled")
	}
	if v.IsSet("reader.batch_size") {
		cfg.Reader.BatchSize = v.GetInt("reader.batch_size")
	}
	if v.IsSet("reader.sample_start") {
		cfg.Reader.SampleStart = v.GetInt("reader.sample_start")
	}
	if v.IsSet("reader.sample_size") {
		cfg.Reader.SampleSize = v.GetInt("reader.sample_size")
	}
	if v.IsSet("reader.all_varchar") {
		cfg.Reader.AllVarchar = v.GetBool("reader.all_varchar")
	}
	if v.IsSet("reader.lenient") {
		cfg.Reader.Lenient = v.GetBool("reader.lenient")
	}
	if v.IsSet("reader.projection") {
		cfg.Reader.Projection = v.GetBool("reader.projection")
	}
	if v.IsSet("writer.header") {
		cfg.Writer.Header = v.GetBool("writer.header")
	}
	if v.IsSet("writer.compression") {
		cfg.Writer.Compression = v.GetString("writer.compression")
	}
	if v.IsSet("writer.compression_level") {
		cfg.Writer.CompressionLevel = v.GetString("writer.compression_level")
	}
}
