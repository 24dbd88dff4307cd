package sstable

import (
	"ckv/bloom"
	"ckv/cmp"
)

// CompressionType tags which codec produced a block's stored bytes.
// Values match the on-disk trailer tag in spec.md §6.
type CompressionType uint8

const (
	NoCompression     CompressionType = 0
	SnappyCompression CompressionType = 1
	ZlibCompression   CompressionType = 2
	BZip2Compression  CompressionType = 3
)

// Options controls how a TableBuilder lays out a table. Grounded on
// the teacher's utils.Options (a plain struct referenced live by block
// builders so that changes propagate without re-parameterizing them —
// spec.md §9 "Options change after construction"), trimmed to the
// fields the builder itself consults and extended with the
// compression and filter-policy knobs spec.md §4.2 requires.
type Options struct {
	Comparator cmp.Comparator

	// BlockSize is the target size, in bytes, of an uncompressed data
	// block before a flush is considered.
	BlockSize int

	// BlockSizeDeviation is the percentage (0-100) of slack the flush
	// heuristic in spec.md §4.2 tolerates before forcing a flush
	// early to avoid leaving the next block badly under-full. 0
	// disables the deviation check.
	BlockSizeDeviation int

	// BlockRestartInterval is how many entries a data block emits
	// between restart points (spec.md §4.1).
	BlockRestartInterval int

	// Compression is the codec used when CompressionPerLevel is empty.
	Compression CompressionType

	// CompressionPerLevel, if non-empty, picks the codec by level
	// (clamped to the last entry for any level >= len(CompressionPerLevel),
	// resolving spec.md §9's open question).
	CompressionPerLevel []CompressionType

	// FilterPolicy builds the optional filter block. nil disables it.
	FilterPolicy bloom.FilterPolicy
}

// indexBlockOptions derives the options the index block's BlockBuilder
// uses: identical to Options except block_restart_interval is pinned
// to 1, per spec.md §4.1 ("The index block uses restart_interval = 1
// so all index keys are stored uncompressed").
func (o *Options) indexBlockOptions() *Options {
	cp := *o
	cp.BlockRestartInterval = 1
	return &cp
}

// DefaultOptions returns sensible defaults: 4KiB blocks, 10% block
// size deviation, no compression, no filter.
func DefaultOptions() *Options {
	return &Options{
		Comparator:           cmp.BytewiseComparator(),
		BlockSize:            4096,
		BlockSizeDeviation:   10,
		BlockRestartInterval: 16,
		Compression:          NoCompression,
	}
}
