// Package storage reads and writes whole objects for the nsv tools.
//
// The codec never performs I/O itself. Callers fetch bytes with Open, hand
// them to nsv.Decode or scan.Bind, and persist encoder output with Write.
// Local paths, file://, http(s):// (read only), s3:// and gs:// URIs are
// supported. A compression extension such as ".zst" or ".gz" is applied
// transparently in both directions.
package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ajitpratap0/nsv/pkg/compression"
	"github.com/ajitpratap0/nsv/pkg/errors"
	"github.com/ajitpratap0/nsv/pkg/logger"
	"github.com/ajitpratap0/nsv/pkg/mmap"
	"github.com/ajitpratap0/nsv/pkg/observability"
	"github.com/ajitpratap0/nsv/pkg/pool"
)

// backend moves raw (still compressed) bytes for one scheme.
type backend interface {
	read(ctx context.Context, loc Location) ([]byte, error)
	write(ctx context.Context, loc Location, data []byte) error
}

// Options configures a Store.
type Options struct {
	// HTTPClient is used for http(s) reads. Defaults to http.DefaultClient.
	HTTPClient *http.Client
	// S3Region overrides the region resolved by the AWS default chain.
	S3Region string
	// S3Endpoint points the S3 client at a compatible service such as MinIO.
	S3Endpoint string
	// GCSCredentialsFile is a service account key file for gs:// access.
	GCSCredentialsFile string
	// CompressionLevel applies to compressed writes. Zero means Default.
	CompressionLevel compression.Level
	// Logger defaults to the global logger.
	Logger *zap.Logger
}

// Store dispatches reads and writes to a backend chosen by URI scheme.
// Cloud clients are created on first use.
type Store struct {
	opts   Options
	logger *zap.Logger

	mu          sync.Mutex
	backends    map[Scheme]backend
	compressors map[compression.Algorithm]compression.Compressor
}

// New creates a Store.
func New(opts Options) *Store {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	return &Store{
		opts:        opts,
		logger:      logger.OrGlobal(opts.Logger).With(zap.String("component", "storage")),
		backends:    make(map[Scheme]backend),
		compressors: make(map[compression.Algorithm]compression.Compressor),
	}
}

var (
	defaultStore     *Store
	defaultStoreOnce sync.Once
)

// Default returns the process-wide Store with default options.
func Default() *Store {
	defaultStoreOnce.Do(func() {
		defaultStore = New(Options{})
	})
	return defaultStore
}

// Open reads the object at uri using the default Store.
func Open(ctx context.Context, uri string) ([]byte, error) {
	return Default().Open(ctx, uri)
}

// Write stores data at uri using the default Store.
func Write(ctx context.Context, uri string, data []byte) error {
	return Default().Write(ctx, uri, data)
}

// Open reads the object at uri and decompresses it when its extension names
// a compression algorithm.
func (s *Store) Open(ctx context.Context, uri string) (data []byte, err error) {
	loc, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, "storage.open",
		attribute.String("storage.scheme", string(loc.Scheme)),
		attribute.String("storage.uri", uri),
	)
	defer func() { span.End(err) }()

	b, err := s.backend(ctx, loc.Scheme)
	if err != nil {
		return nil, err
	}
	raw, err := b.read(ctx, loc)
	if err != nil {
		return nil, err
	}
	span.SetAttribute("storage.bytes", len(raw))

	data, err = s.decompress(loc.Compression, raw)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to decompress object").
			WithDetail("uri", uri).
			WithDetail("compression", string(loc.Compression))
	}

	s.logger.Debug("object read",
		zap.String("uri", uri),
		zap.Int("bytes", len(raw)),
		zap.Int("decompressed", len(data)),
	)
	return data, nil
}

// Write compresses data according to the uri's extension and stores it.
func (s *Store) Write(ctx context.Context, uri string, data []byte) (err error) {
	loc, err := ParseURI(uri)
	if err != nil {
		return err
	}

	ctx, span := observability.StartSpan(ctx, "storage.write",
		attribute.String("storage.scheme", string(loc.Scheme)),
		attribute.String("storage.uri", uri),
	)
	defer func() { span.End(err) }()

	b, err := s.backend(ctx, loc.Scheme)
	if err != nil {
		return err
	}

	raw, err := s.compress(loc.Compression, data)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to compress object").
			WithDetail("uri", uri).
			WithDetail("compression", string(loc.Compression))
	}
	if err = b.write(ctx, loc, raw); err != nil {
		return err
	}

	s.logger.Info("object written",
		zap.String("uri", uri),
		zap.Int("bytes", len(raw)),
		zap.String("compression", string(loc.Compression)),
	)
	return nil
}

// View calls fn with the decompressed content of uri. Uncompressed local
// files are memory mapped, so data is only valid until fn returns and must
// not be modified.
func (s *Store) View(ctx context.Context, uri string, fn func(data []byte) error) error {
	loc, err := ParseURI(uri)
	if err != nil {
		return err
	}
	if loc.Scheme != SchemeFile || loc.Compression != compression.None {
		data, err := s.Open(ctx, uri)
		if err != nil {
			return err
		}
		return fn(data)
	}

	r, err := mmap.Open(loc.Key)
	if err != nil {
		return err
	}
	defer r.Close()

	s.logger.Debug("file mapped", zap.String("uri", uri), zap.Int("bytes", r.Len()))
	return fn(r.Bytes())
}

// OpenReader reads the object at uri and returns a reader over the
// decompressed content.
func (s *Store) OpenReader(ctx context.Context, uri string) (io.Reader, error) {
	data, err := s.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

func (s *Store) backend(ctx context.Context, scheme Scheme) (backend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.backends[scheme]; ok {
		return b, nil
	}

	var (
		b   backend
		err error
	)
	switch scheme {
	case SchemeFile:
		b = localBackend{}
	case SchemeHTTP, SchemeHTTPS:
		b = &httpBackend{client: s.opts.HTTPClient}
	case SchemeS3:
		b, err = newS3Backend(ctx, s.opts)
	case SchemeGCS:
		b, err = newGCSBackend(ctx, s.opts)
	default:
		return nil, errors.Newf(errors.ErrorTypeUnsupported, "unsupported storage scheme: %s", scheme)
	}
	if err != nil {
		return nil, err
	}
	s.backends[scheme] = b
	return b, nil
}

// compressor returns the Store's compressor for alg, creating it on first
// use so its pooled encoders and decoders are reused across calls.
func (s *Store) compressor(alg compression.Algorithm) (compression.Compressor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.compressors[alg]; ok {
		return c, nil
	}
	c, err := compression.NewCompressor(&compression.Config{Algorithm: alg, Level: s.opts.CompressionLevel})
	if err != nil {
		return nil, err
	}
	s.compressors[alg] = c
	return c, nil
}

func (s *Store) decompress(alg compression.Algorithm, raw []byte) ([]byte, error) {
	if alg == compression.None {
		return raw, nil
	}
	c, err := s.compressor(alg)
	if err != nil {
		return nil, err
	}
	return c.Decompress(raw)
}

func (s *Store) compress(alg compression.Algorithm, data []byte) ([]byte, error) {
	if alg == compression.None {
		return data, nil
	}
	c, err := s.compressor(alg)
	if err != nil {
		return nil, err
	}
	return c.Compress(data)
}

// readAll drains r into an owned slice using a pooled buffer.
func readAll(r io.Reader) ([]byte, error) {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}
