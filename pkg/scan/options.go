package scan

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/nsv/pkg/config"
	"github.com/ajitpratap0/nsv/pkg/errors"
	"github.com/ajitpratap0/nsv/pkg/schema"
)

// DefaultBatchSize is the number of rows per batch when none is configured.
const DefaultBatchSize = 2048

// Options control binding and scanning.
type Options struct {
	// BatchSize is the maximum number of rows per batch
	BatchSize int
	// SampleStart and SampleSize select the rows used for type sniffing
	SampleStart int
	SampleSize  int
	// AllVarchar types every column as String without sniffing
	AllVarchar bool
	// Lenient decodes malformed escapes literally from the start
	Lenient bool
	// Projection re-decodes only the requested columns at Init
	Projection bool
	// Types overrides sniffed types by column name
	Types map[string]schema.ColumnType
	// Logger receives bind and scan diagnostics; nil uses the global logger
	Logger *zap.Logger
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		BatchSize:   DefaultBatchSize,
		SampleStart: schema.DefaultSampleStart,
		SampleSize:  schema.DefaultSampleSize,
		Projection:  true,
	}
}

// OptionsFromConfig builds Options from the reader section of a config file.
func OptionsFromConfig(cfg config.ReaderConfig) Options {
	opts := Options{
		BatchSize:   cfg.BatchSize,
		SampleStart: cfg.SampleStart,
		SampleSize:  cfg.SampleSize,
		AllVarchar:  cfg.AllVarchar,
		Lenient:     cfg.Lenient,
		Projection:  cfg.Projection,
	}
	if len(cfg.Types) > 0 {
		opts.Types = make(map[string]schema.ColumnType, len(cfg.Types))
		for name, t := range cfg.Types {
			opts.Types[name] = t
		}
	}
	return opts
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.BatchSize <= 0 {
		return errors.Newf(errors.ErrorTypeInvalidInput, "batch size must be positive, got %d", o.BatchSize)
	}
	if o.SampleStart < 0 {
		return errors.Newf(errors.ErrorTypeInvalidInput, "sample start cannot be negative, got %d", o.SampleStart)
	}
	if o.SampleSize < 0 {
		return errors.Newf(errors.ErrorTypeInvalidInput, "sample size cannot be negative, got %d", o.SampleSize)
	}
	for name, t := range o.Types {
		if !t.Valid() {
			return errors.Newf(errors.ErrorTypeInvalidInput, "invalid type override for column %q", name)
		}
	}
	return nil
}
