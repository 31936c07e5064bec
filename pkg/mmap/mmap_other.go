//go:build !linux && !darwin

package mmap

import (
	"io"
	"os"
)

// mmap falls back to reading the file where mapping is not wired up.
func mmap(f *os.File, length int) ([]byte, error) {
	b := make([]byte, length)
	if _, err := io.ReadFull(f, b); err != nil {
		return nil, err
	}
	return b, nil
}

func munmap([]byte) error { return nil }

func adviseSequential([]byte) error { return nil }
