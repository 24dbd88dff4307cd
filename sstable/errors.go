package sstable

import "github.com/pkg/errors"

// errUnsupportedCompression is returned by the test-only decode
// helpers when asked to decode a compression tag this build cannot
// reverse (currently BZip2, which the builder itself never emits —
// see compress.go).
var errUnsupportedCompression = errors.New("sstable: unsupported compression type")

// ErrChangingComparator is returned by ChangeOptions when the new
// options carry a different comparator than the one the build
// started with (spec.md §4.2, §7).
var ErrChangingComparator = errors.New("sstable: changing comparator while building table")

// ErrCorruptBlock is returned by readBlock for a block whose stored
// checksum does not match its contents.
var ErrCorruptBlock = errors.New("sstable: block checksum mismatch")

// errShortBlock is returned by decodeBlock when a block body is too
// short to even hold a restart-point trailer.
var errShortBlock = errors.New("sstable: block too short to contain a valid restart trailer")
