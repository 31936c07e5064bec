//go:build darwin

package mmap

import (
	"syscall"
	"unsafe"
)

// madvSequential is MADV_SEQUENTIAL from <sys/mman.h>.
const madvSequential = 2

func adviseSequential(b []byte) error {
	_, _, errno := syscall.Syscall(syscall.SYS_MADVISE, uintptr(unsafe.Pointer(&b[0])), uintptr(len(b)), madvSequential)
	if errno != 0 {
		return errno
	}
	return nil
}
