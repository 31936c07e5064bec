package storage

import (
	"context"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/ajitpratap0/nsv/pkg/compression"
	"github.com/ajitpratap0/nsv/pkg/errors"
)

type gcsBackend struct {
	client *gcs.Client
}

func newGCSBackend(ctx context.Context, opts Options) (*gcsBackend, error) {
	var clientOpts []option.ClientOption
	if opts.GCSCredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.GCSCredentialsFile))
	}

	client, err := gcs.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create GCS client")
	}
	return &gcsBackend{client: client}, nil
}

func (b *gcsBackend) read(ctx context.Context, loc Location) ([]byte, error) {
	r, err := b.client.Bucket(loc.Bucket).Object(loc.Key).NewReader(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open GCS object").
			WithDetail("bucket", loc.Bucket).
			WithDetail("object", loc.Key)
	}
	defer r.Close()

	data, err := readAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read GCS object").
			WithDetail("bucket", loc.Bucket).
			WithDetail("object", loc.Key)
	}
	return data, nil
}

func (b *gcsBackend) write(ctx context.Context, loc Location, data []byte) error {
	w := b.client.Bucket(loc.Bucket).Object(loc.Key).NewWriter(ctx)
	w.ContentType = contentType(loc)

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write GCS object").
			WithDetail("bucket", loc.Bucket).
			WithDetail("object", loc.Key)
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close GCS writer").
			WithDetail("bucket", loc.Bucket).
			WithDetail("object", loc.Key)
	}
	return nil
}

// contentType labels uploaded objects; compressed objects are opaque.
func contentType(loc Location) string {
	if loc.Compression != compression.None {
		return "application/octet-stream"
	}
	return "text/plain; charset=utf-8"
}
