// Package config provides the configuration system for nsv.
//
// The configuration is organized into logical sections:
//   - Reader: batching, sampling and type overrides for the scan driver
//   - Writer: NSV export settings
//   - Logging: zap logger settings
//   - Tracing: OpenTelemetry settings
//
// Example usage:
//
//	cfg := config.NewConfig()
//	cfg.Reader.BatchSize = 4096
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"github.com/ajitpratap0/nsv/pkg/compression"
	"github.com/ajitpratap0/nsv/pkg/errors"
	"github.com/ajitpratap0/nsv/pkg/logger"
	"github.com/ajitpratap0/nsv/pkg/observability"
	"github.com/ajitpratap0/nsv/pkg/schema"
)

// Config is the top-level configuration structure.
type Config struct {
	// Reader settings control how NSV input is decoded and typed
	Reader ReaderConfig `yaml:"reader" json:"reader"`

	// Writer settings control NSV output
	Writer WriterConfig `yaml:"writer" json:"writer"`

	// Logging configures the global zap logger
	Logging logger.Config `yaml:"logging" json:"logging"`

	// Tracing configures OpenTelemetry
	Tracing observability.TracingConfig `yaml:"tracing" json:"tracing"`
}

// ReaderConfig contains settings for binding and scanning NSV input.
type ReaderConfig struct {
	// BatchSize is the maximum number of rows per scan batch
	BatchSize int `yaml:"batch_size" json:"batch_size"`
	// SampleStart is the first row used for type sniffing
	SampleStart int `yaml:"sample_start" json:"sample_start"`
	// SampleSize is the number of rows used for type sniffing
	SampleSize int `yaml:"sample_size" json:"sample_size"`
	// AllVarchar disables sniffing and types every column as string
	AllVarchar bool `yaml:"all_varchar" json:"all_varchar"`
	// Lenient keeps malformed escapes as literal data instead of failing
	Lenient bool `yaml:"lenient" json:"lenient"`
	// Projection re-decodes only the selected columns when scanning
	Projection bool `yaml:"projection" json:"projection"`
	// Types overrides sniffed types by column name
	Types map[string]schema.ColumnType `yaml:"types,omitempty" json:"types,omitempty"`
}

// WriterConfig contains settings for writing NSV output.
type WriterConfig struct {
	// Header writes column names as the first row
	Header bool `yaml:"header" json:"header"`
	// Compression overrides extension-based compression (gzip, zstd, lz4, snappy, s2, none)
	Compression string `yaml:"compression,omitempty" json:"compression,omitempty"`
	// CompressionLevel is fastest, default, better or best
	CompressionLevel string `yaml:"compression_level,omitempty" json:"compression_level,omitempty"`
}

// NewConfig creates a Config with defaults suitable for most inputs.
func NewConfig() *Config {
	return &Config{
		Reader: ReaderConfig{
			BatchSize:   2048,
			SampleStart: schema.DefaultSampleStart,
			SampleSize:  schema.DefaultSampleSize,
			Projection:  true,
		},
		Writer: WriterConfig{
			Header: true,
		},
		Logging: logger.DefaultConfig(),
		Tracing: observability.DefaultTracingConfig(),
	}
}

// Validate checks that values are within acceptable ranges.
func (c *Config) Validate() error {
	if c.Reader.BatchSize <= 0 {
		return errors.New(errors.ErrorTypeConfig, "reader.batch_size must be positive")
	}
	if c.Reader.SampleStart < 0 {
		return errors.New(errors.ErrorTypeConfig, "reader.sample_start cannot be negative")
	}
	if c.Reader.SampleSize < 0 {
		return errors.New(errors.ErrorTypeConfig, "reader.sample_size cannot be negative")
	}
	for name, t := range c.Reader.Types {
		if !t.Valid() {
			return errors.Newf(errors.ErrorTypeConfig, "reader.types[%s] is not a valid type", name)
		}
	}
	if _, err := compression.ParseAlgorithm(c.Writer.Compression); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "writer.compression is invalid")
	}
	if _, err := compression.ParseLevel(c.Writer.CompressionLevel); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "writer.compression_level is invalid")
	}
	if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
		return errors.New(errors.ErrorTypeConfig, "tracing.sampling_rate must be between 0 and 1")
	}
	return nil
}
