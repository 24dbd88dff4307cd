//go:build linux
// +build linux

// Package storage supplies the WritableFile sink the TableBuilder
// writes through. Spec.md §1 treats the sink as an external
// collaborator ("append-only byte stream + flush"); this package
// supplies the teacher's own sink — an mmap-backed growable file,
// consolidated from the near-duplicate file/ and utils/file/
// packages in the teacher tree (file/file.go, file/linux.go,
// file/mmap.go, file/mmap_linux.go) into one.
package storage

import (
	"os"
	"reflect"
	"unsafe"

	"golang.org/x/sys/unix"
)

func mmap(fd *os.File, writable bool, size int64) ([]byte, error) {
	prot := unix.PROT_READ
	if writable {
		prot |= unix.PROT_WRITE
	}
	return unix.Mmap(int(fd.Fd()), 0, int(size), prot, unix.MAP_SHARED)
}

func munmap(data []byte) error {
	if len(data) == 0 || len(data) != cap(data) {
		return unix.EINVAL
	}
	_, _, errno := unix.Syscall(
		unix.SYS_MUNMAP,
		uintptr(unsafe.Pointer(&data[0])),
		uintptr(len(data)),
		0,
	)
	if errno != 0 {
		return errno
	}
	return nil
}

func msync(b []byte) error {
	return unix.Msync(b, unix.MS_SYNC)
}

// mremap unmaps-and-remaps data to a new size without closing the
// underlying file descriptor, the same trick the teacher's
// file/mmap_linux.go uses for growth.
func mremap(data []byte, size int) ([]byte, error) {
	const mremapMayMove = 0x1

	header := (*reflect.SliceHeader)(unsafe.Pointer(&data))
	addr, _, errno := unix.Syscall6(
		unix.SYS_MREMAP,
		header.Data,
		uintptr(header.Len),
		uintptr(size),
		uintptr(mremapMayMove),
		0,
		0,
	)
	if errno != 0 {
		return nil, errno
	}

	header.Data = addr
	header.Cap = size
	header.Len = size
	return data, nil
}
