package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/ajitpratap0/nsv/pkg/errors"
)

type localBackend struct{}

func (localBackend) read(_ context.Context, loc Location) ([]byte, error) {
	data, err := os.ReadFile(loc.Key)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read file").WithDetail("path", loc.Key)
	}
	return data, nil
}

// write replaces the file atomically via a temp file in the same directory.
func (localBackend) write(_ context.Context, loc Location, data []byte) error {
	dir := filepath.Dir(loc.Key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create directory").WithDetail("path", dir)
	}

	tmp, err := os.CreateTemp(dir, ".nsv-*")
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create temp file").WithDetail("path", dir)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write file").WithDetail("path", loc.Key)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close file").WithDetail("path", loc.Key)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to set file mode").WithDetail("path", loc.Key)
	}
	if err := os.Rename(tmp.Name(), loc.Key); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to rename file").WithDetail("path", loc.Key)
	}
	return nil
}
