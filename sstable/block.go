package sstable

import "ckv/codec"

// BlockBuilder assembles a single sorted data or index block with
// restart-point prefix compression (spec.md §4.1). Rebuilt from
// scratch against that section: the teacher's own Block (sstable's
// former block.go) diffs every key against a single whole-block base
// key with no restart points at all, so it cannot express "every
// restart_interval entries, store the key uncompressed" — this keeps
// the teacher's overall shape (a buffer plus a running "last key" and
// counters, grown with an append helper) but rebuilds the entry
// encoding and restart bookkeeping to match.
type BlockBuilder struct {
	opt      *Options
	buf      []byte
	restarts []uint32
	counter  int // entries since the last restart
	lastKey  []byte
	finished bool
}

// NewBlockBuilder returns an empty block builder using opt's
// comparator and restart interval.
func NewBlockBuilder(opt *Options) *BlockBuilder {
	b := &BlockBuilder{opt: opt}
	b.Reset()
	return b
}

// Reset clears the block so it can be reused for the next block.
func (b *BlockBuilder) Reset() {
	b.buf = b.buf[:0]
	b.restarts = append(b.restarts[:0], 0) // first restart is always at offset 0
	b.counter = 0
	b.lastKey = b.lastKey[:0]
	b.finished = false
}

// Empty reports whether Add has been called since construction or Reset.
func (b *BlockBuilder) Empty() bool {
	return len(b.buf) == 0
}

// CurrentSizeEstimate returns the size the block would have right now
// if Finish were called: buffered entries, plus the not-yet-written
// restart array and its count.
func (b *BlockBuilder) CurrentSizeEstimate() int {
	return len(b.buf) + len(b.restarts)*4 + 4
}

// EstimateSizeAfterKV estimates the block size if (key, value) were
// appended next, used by the flush-deviation heuristic in spec.md §4.2.
func (b *BlockBuilder) EstimateSizeAfterKV(key, value []byte) int {
	size := b.CurrentSizeEstimate() + len(value) + 3*codec.MaxVarint32Len
	if b.counter < b.opt.BlockRestartInterval {
		size += sharedPrefixLen(b.lastKey, key)
		size += len(key) // worst case: no sharing at all beyond shared prefix
	} else {
		size += len(key)
	}
	return size
}

// Add appends (key, value) to the block. The caller must ensure keys
// are added in strictly increasing order (spec.md §4.1); BlockBuilder
// itself does not re-validate this, matching the teacher's pattern of
// leaving ordering assertions to the caller (TableBuilder.Add).
func (b *BlockBuilder) Add(key, value []byte) {
	var shared int
	if b.counter < b.opt.BlockRestartInterval {
		shared = sharedPrefixLen(b.lastKey, key)
	} else {
		// Restart point: store the key with no shared prefix so the
		// block can be binary-searched from here without replaying
		// earlier diffs.
		b.restarts = append(b.restarts, uint32(len(b.buf)))
		b.counter = 0
	}
	nonShared := len(key) - shared

	var tmp [codec.MaxVarint32Len]byte
	n := codec.EncodeVarint32(tmp[:], uint32(shared))
	b.buf = append(b.buf, tmp[:n]...)
	n = codec.EncodeVarint32(tmp[:], uint32(nonShared))
	b.buf = append(b.buf, tmp[:n]...)
	n = codec.EncodeVarint32(tmp[:], uint32(len(value)))
	b.buf = append(b.buf, tmp[:n]...)

	b.buf = append(b.buf, key[shared:]...)
	b.buf = append(b.buf, value...)

	b.lastKey = append(b.lastKey[:0], key...)
	b.counter++
}

// Finish appends the restart-point array and its count and returns
// the finished block body (not including the 5-byte trailer). The
// builder must not be reused after Finish without an intervening Reset.
func (b *BlockBuilder) Finish() []byte {
	for _, r := range b.restarts {
		b.buf = codec.PutFixed32(b.buf, r)
	}
	b.buf = codec.PutFixed32(b.buf, uint32(len(b.restarts)))
	b.finished = true
	return b.buf
}

func sharedPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// blockEntry is one decoded (key, value) pair, used by the test-only
// block reader in decode.go.
type blockEntry struct {
	key   []byte
	value []byte
}

// decodeBlock parses a finished (uncompressed) block body into its
// entries and returns the restart offsets alongside them; it does not
// check that those offsets fall on entry boundaries. It is not a
// general-purpose reader: no seeking, no binary search — spec.md §1
// excludes block readers from this module's scope, and this exists
// solely so decode.go's round-trip tests can assert on block contents.
func decodeBlock(body []byte) ([]blockEntry, []uint32, error) {
	if len(body) < 4 {
		return nil, nil, errShortBlock
	}
	numRestarts := codec.DecodeFixed32(body[len(body)-4:])
	restartsStart := len(body) - 4 - int(numRestarts)*4
	if restartsStart < 0 {
		return nil, nil, errShortBlock
	}
	restarts := make([]uint32, numRestarts)
	for i := range restarts {
		restarts[i] = codec.DecodeFixed32(body[restartsStart+i*4:])
	}

	data := body[:restartsStart]
	var entries []blockEntry
	var lastKey []byte
	off := 0
	for off < len(data) {
		shared, n := codec.DecodeVarint32(data[off:])
		off += n
		nonShared, n := codec.DecodeVarint32(data[off:])
		off += n
		valueLen, n := codec.DecodeVarint32(data[off:])
		off += n

		key := make([]byte, shared+nonShared)
		copy(key, lastKey[:shared])
		copy(key[shared:], data[off:off+int(nonShared)])
		off += int(nonShared)

		value := data[off : off+int(valueLen)]
		off += int(valueLen)

		entries = append(entries, blockEntry{key: key, value: value})
		lastKey = key
	}
	return entries, restarts, nil
}
