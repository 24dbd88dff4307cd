package sstable

import "ckv/codec"

// filterBaseLg controls how many data blocks share one filter
// segment's granularity: every 2^filterBaseLg bytes of data gets its
// own filter. 11 (2KiB) is the standard LevelDB-family choice.
const filterBaseLg = 11
const filterBase = 1 << filterBaseLg

// FilterBlockBuilder accumulates per-data-block filters keyed by file
// offset (spec.md §4.3). StartBlock(0) must be called before any
// AddKey, and StartBlock(offset) after every data-block write, which
// TableBuilder.Flush does.
type FilterBlockBuilder struct {
	policy        FilterPolicyHolder
	keys          [][]byte
	filterOffsets []uint32 // starting offset of filter i within result
	result        []byte
}

// FilterPolicyHolder is the narrow slice of bloom.FilterPolicy this
// builder needs, expressed locally to keep this package's only
// dependency on the bloom package at the Options boundary.
type FilterPolicyHolder interface {
	CreateFilter(keys [][]byte) []byte
}

// NewFilterBlockBuilder returns a builder driven by policy.
func NewFilterBlockBuilder(policy FilterPolicyHolder) *FilterBlockBuilder {
	return &FilterBlockBuilder{policy: policy}
}

// StartBlock begins a new filter segment covering every key added
// until the next StartBlock or Finish.
func (f *FilterBlockBuilder) StartBlock(blockOffset uint64) {
	index := blockOffset / filterBase
	for uint64(len(f.filterOffsets)) < index {
		f.generateFilter()
	}
}

// AddKey accumulates a key into the current filter segment.
func (f *FilterBlockBuilder) AddKey(key []byte) {
	f.keys = append(f.keys, append([]byte(nil), key...))
}

// Finish flushes any pending segment and returns the filter block's
// bytes: the concatenated per-segment filters, followed by a
// fixed32-per-entry array of each filter's starting offset, a
// trailing fixed32 giving that array's own offset, and a 1-byte
// filterBaseLg so a reader can recover the offset->filter mapping.
func (f *FilterBlockBuilder) Finish() []byte {
	if len(f.keys) > 0 {
		f.generateFilter()
	}
	arrayOffset := uint32(len(f.result))
	for _, off := range f.filterOffsets {
		f.result = codec.PutFixed32(f.result, off)
	}
	f.result = codec.PutFixed32(f.result, arrayOffset)
	f.result = append(f.result, filterBaseLg)
	return f.result
}

func (f *FilterBlockBuilder) generateFilter() {
	f.filterOffsets = append(f.filterOffsets, uint32(len(f.result)))
	if len(f.keys) == 0 {
		return
	}
	filter := f.policy.CreateFilter(f.keys)
	f.result = append(f.result, filter...)
	f.keys = f.keys[:0]
}
