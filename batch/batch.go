// Package batch implements the WriteBatch wire codec and its replay
// into a memtable: spec.md §4.4. Grounded on
// _examples/original_source/db/write_batch.cc for the exact header
// layout and record tags, and on the teacher's lsm/memtable.go for
// how a Go-idiomatic insert interface over varint-framed records
// should look, since the teacher itself has no WriteBatch equivalent
// (it writes straight to its WAL one KV at a time).
package batch

import (
	"ckv/codec"
	"ckv/ikey"
)

// headerLen is the fixed 8-byte sequence + 4-byte count prefix every
// WriteBatch payload starts with.
const headerLen = 12

// WriteBatch accumulates a sequence of Put/Delete/Merge/LogData
// records into one contiguous buffer that can be handed to a
// write-ahead log as a single atomic unit and later replayed.
type WriteBatch struct {
	rep []byte
}

// New returns an empty WriteBatch: sequence 0, count 0.
func New() *WriteBatch {
	return &WriteBatch{rep: make([]byte, headerLen)}
}

// Rep returns the batch's raw wire representation. Callers must treat
// it as read-only; mutate the batch through its methods instead.
func (b *WriteBatch) Rep() []byte { return b.rep }

// SetContents replaces the batch's wire representation wholesale,
// e.g. to load a batch read back from a write-ahead log, or to feed
// replay a deliberately truncated payload in tests.
func (b *WriteBatch) SetContents(data []byte) {
	b.rep = append(b.rep[:0], data...)
}

// Count returns the number of counted records (Put/Delete/Merge;
// LogData records are excluded) currently in the batch.
func (b *WriteBatch) Count() uint32 {
	if len(b.rep) < headerLen {
		return 0
	}
	return codec.DecodeFixed32(b.rep[8:12])
}

func (b *WriteBatch) setCount(n uint32) {
	codec.EncodeFixed32(b.rep[8:12], n)
}

// Sequence returns the batch's header sequence base.
func (b *WriteBatch) Sequence() uint64 {
	if len(b.rep) < headerLen {
		return 0
	}
	return codec.DecodeFixed64(b.rep[0:8])
}

// SetSequence overwrites the header sequence base.
func (b *WriteBatch) SetSequence(seq uint64) {
	codec.EncodeFixed64(b.rep[0:8], seq)
}

// Clear resets the batch to an empty header with no payload.
func (b *WriteBatch) Clear() {
	b.rep = b.rep[:headerLen]
	for i := range b.rep {
		b.rep[i] = 0
	}
}

// Put appends a Value record and increments the count.
func (b *WriteBatch) Put(key, value []byte) {
	b.setCount(b.Count() + 1)
	b.rep = append(b.rep, byte(ikey.TypeValue))
	b.rep = codec.PutLengthPrefixedBytes(b.rep, key)
	b.rep = codec.PutLengthPrefixedBytes(b.rep, value)
}

// Delete appends a Deletion record and increments the count.
func (b *WriteBatch) Delete(key []byte) {
	b.setCount(b.Count() + 1)
	b.rep = append(b.rep, byte(ikey.TypeDeletion))
	b.rep = codec.PutLengthPrefixedBytes(b.rep, key)
}

// Merge appends a Merge record and increments the count.
func (b *WriteBatch) Merge(key, value []byte) {
	b.setCount(b.Count() + 1)
	b.rep = append(b.rep, byte(ikey.TypeMerge))
	b.rep = codec.PutLengthPrefixedBytes(b.rep, key)
	b.rep = codec.PutLengthPrefixedBytes(b.rep, value)
}

// PutLogData appends an opaque LogData record. It does not consume a
// sequence number and does not increment Count.
func (b *WriteBatch) PutLogData(blob []byte) {
	b.rep = append(b.rep, byte(ikey.TypeLogData))
	b.rep = codec.PutLengthPrefixedBytes(b.rep, blob)
}

// Append concatenates src's payload onto b, adding src.Count() to
// b's count. b's own sequence base is left untouched, and src is not
// modified or cleared (spec.md §4.4, §8 scenario 4).
func (b *WriteBatch) Append(src *WriteBatch) {
	if len(src.rep) <= headerLen {
		return
	}
	b.rep = append(b.rep, src.rep[headerLen:]...)
	b.setCount(b.Count() + src.Count())
}

// HasPut, HasDelete and HasMerge report whether the batch's payload
// contains at least one record of that kind. They exist to let a
// write-ahead-log writer decide whether a batch needs a particular
// downstream side effect without fully replaying it; grounded on the
// equivalent scan in _examples/original_source/db/write_batch.cc
// (WriteBatchInternal::Contents plus the per-tag helpers there).
func (b *WriteBatch) HasPut() bool    { return b.hasTag(ikey.TypeValue) }
func (b *WriteBatch) HasDelete() bool { return b.hasTag(ikey.TypeDeletion) }
func (b *WriteBatch) HasMerge() bool  { return b.hasTag(ikey.TypeMerge) }

func (b *WriteBatch) hasTag(want ikey.ValueType) bool {
	found := false
	_ = walk(b.rep, func(tag ikey.ValueType, key, value []byte) error {
		if tag == want {
			found = true
		}
		return nil
	})
	return found
}
