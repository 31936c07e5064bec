// Package mmap maps local files read-only so large NSV inputs can be decoded
// without first copying them onto the heap.
package mmap

import (
	"os"
	"sync"

	"github.com/ajitpratap0/nsv/pkg/errors"
)

// Reader holds a read-only mapping of a whole file.
type Reader struct {
	file *os.File
	data []byte

	mu sync.RWMutex
}

// Open maps filename into memory. An empty file yields a Reader with no
// data and no mapping.
func Open(filename string) (*Reader, error) {
	file, err := os.Open(filename) //nolint:gosec // G304: path chosen by the caller
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open file").WithDetail("path", filename)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to stat file").WithDetail("path", filename)
	}

	size := stat.Size()
	if size == 0 {
		return &Reader{file: file}, nil
	}
	if int64(int(size)) != size {
		_ = file.Close()
		return nil, errors.New(errors.ErrorTypeFile, "file too large to map").WithDetail("path", filename)
	}

	data, err := mmap(file, int(size))
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to mmap file").WithDetail("path", filename)
	}

	// Decoding walks the file front to back; the hint is best effort.
	_ = adviseSequential(data)

	return &Reader{file: file, data: data}, nil
}

// Bytes returns the mapped content. The slice is read-only and becomes
// invalid after Close.
func (r *Reader) Bytes() []byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data
}

// Len returns the mapped size in bytes.
func (r *Reader) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

// Close unmaps the file and closes it
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.data != nil {
		err = munmap(r.data)
		r.data = nil
	}
	if r.file != nil {
		if closeErr := r.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		r.file = nil
	}
	return err
}
