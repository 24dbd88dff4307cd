package sstable

import (
	"ckv/codec"
	"ckv/crc"
	"ckv/storage"

	"github.com/pkg/errors"
)

// statRawKeySize etc. are the six canonical stats-block keys
// spec.md §4.2 names, stored bytewise-sorted.
const (
	statRawKeySize    = "rocksdb.raw.key.size"
	statRawValueSize  = "rocksdb.raw.value.size"
	statDataSize      = "rocksdb.data.size"
	statIndexSize     = "rocksdb.index.size"
	statNumEntries    = "rocksdb.num.entries"
	statNumDataBlocks = "rocksdb.num.data.blocks"
)

const statsBlockMetaKey = "rocksdb.stats"
const filterMetaKeyPrefix = "filter."

// TableBuilder streams an in-order sequence of (key, value) records
// into a single immutable SST file. It is single-threaded,
// non-reentrant and append-only (spec.md §5).
//
// Grounded on the teacher's sstable.tableBuilder (same overall shape:
// a struct driving a "current block" and running counters) and on
// _examples/original_source/table/table_builder.cc's Rep for the
// exact state-machine fields and transitions, since the teacher's own
// block format (whole-block base-key diffing, no restart points, no
// compression, no pending-index-entry optimization) does not carry
// those semantics.
type TableBuilder struct {
	opt   *Options
	level int
	sink  storage.WritableFile

	offset uint64
	status error
	closed bool

	dataBlock  *BlockBuilder
	indexBlock *BlockBuilder

	lastKey []byte

	numEntries    uint64
	numDataBlocks uint64
	rawKeySize    uint64
	rawValueSize  uint64
	dataSize      uint64

	filterBlock *FilterBlockBuilder

	// pendingIndexEntry is true only if dataBlock is empty: see
	// spec.md §4.2, "the pending index entry".
	pendingIndexEntry bool
	pendingHandle     BlockHandle
}

// NewTableBuilder returns a builder that will write through sink at
// the given compaction level (used to pick compression_per_level).
func NewTableBuilder(opt *Options, sink storage.WritableFile, level int) *TableBuilder {
	tb := &TableBuilder{
		opt:        opt,
		level:      level,
		sink:       sink,
		dataBlock:  NewBlockBuilder(opt),
		indexBlock: NewBlockBuilder(opt.indexBlockOptions()),
	}
	if opt.FilterPolicy != nil {
		tb.filterBlock = NewFilterBlockBuilder(opt.FilterPolicy)
		tb.filterBlock.StartBlock(0)
	}
	return tb
}

func (tb *TableBuilder) ok() bool { return tb.status == nil }

// Status returns the latched I/O error, if any (spec.md §7).
func (tb *TableBuilder) Status() error { return tb.status }

// NumEntries returns the number of entries added so far.
func (tb *TableBuilder) NumEntries() uint64 { return tb.numEntries }

// FileSize returns the number of bytes appended to the sink so far.
func (tb *TableBuilder) FileSize() uint64 { return tb.offset }

// ChangeOptions swaps in new options. Only legal if the comparator is
// unchanged (spec.md §4.2, §7); other fields take effect immediately
// because the live block builders hold a pointer to opt.
func (tb *TableBuilder) ChangeOptions(opt *Options) error {
	if opt.Comparator.Name() != tb.opt.Comparator.Name() {
		return ErrChangingComparator
	}
	*tb.opt = *opt
	tb.dataBlock.opt = tb.opt
	tb.indexBlock.opt = tb.opt.indexBlockOptions()
	return nil
}

// Add appends (key, value) to the table. key must compare strictly
// greater than the previous key added (spec.md §4.2); violating that
// is a programmer-contract error, not a recoverable one.
func (tb *TableBuilder) Add(key, value []byte) {
	condPanic(tb.closed, errors.New("sstable: Add called on a closed TableBuilder"))
	if !tb.ok() {
		return
	}
	if tb.numEntries > 0 {
		condPanic(tb.opt.Comparator.Compare(key, tb.lastKey) <= 0,
			errors.New("sstable: keys added out of order"))
	}

	currSize := tb.dataBlock.CurrentSizeEstimate()
	afterSize := tb.dataBlock.EstimateSizeAfterKV(key, value)
	dev := tb.opt.BlockSizeDeviation
	if currSize >= tb.opt.BlockSize ||
		(afterSize > tb.opt.BlockSize && dev > 0 &&
			currSize*100 > tb.opt.BlockSize*(100-dev)) {
		tb.Flush()
	}

	if tb.pendingIndexEntry {
		condPanic(!tb.dataBlock.Empty(), errors.New("sstable: pending index entry with non-empty data block"))
		sep := tb.opt.Comparator.FindShortestSeparator(tb.lastKey, key)
		handle := tb.pendingHandle.EncodeTo(nil)
		tb.indexBlock.Add(sep, handle)
		tb.pendingIndexEntry = false
	}

	if tb.filterBlock != nil {
		tb.filterBlock.AddKey(key)
	}

	tb.lastKey = append(tb.lastKey[:0], key...)
	tb.dataBlock.Add(key, value)
	tb.numEntries++
	tb.rawKeySize += uint64(len(key))
	tb.rawValueSize += uint64(len(value))
}

// Flush forces the current data block to be written out. A no-op if
// the data block is empty.
func (tb *TableBuilder) Flush() {
	condPanic(tb.closed, errors.New("sstable: Flush called on a closed TableBuilder"))
	if !tb.ok() || tb.dataBlock.Empty() {
		return
	}
	condPanic(tb.pendingIndexEntry, errors.New("sstable: Flush called with a pending index entry"))

	handle, err := tb.writeBlock(tb.dataBlock, tb.compressionFor(tb.level))
	if err != nil {
		tb.status = err
		return
	}
	tb.pendingHandle = handle
	tb.pendingIndexEntry = true
	if err := tb.sink.Flush(); err != nil {
		tb.status = err
		return
	}
	if tb.filterBlock != nil {
		tb.filterBlock.StartBlock(tb.offset)
	}
	tb.dataSize = tb.offset
	tb.numDataBlocks++
}

// compressionFor resolves compression_per_level[clamp(level, 0, n-1)],
// following the n-1 ceiling spec.md §9 says the source should have
// used instead of its off-by-one max(0, min(level, n)).
func (tb *TableBuilder) compressionFor(level int) CompressionType {
	levels := tb.opt.CompressionPerLevel
	if len(levels) == 0 {
		return tb.opt.Compression
	}
	idx := level
	if idx < 0 {
		idx = 0
	}
	if idx > len(levels)-1 {
		idx = len(levels) - 1
	}
	return levels[idx]
}

// writeBlock finishes block, compresses it per typ, and writes it out
// as a raw block, resetting block for reuse afterward.
func (tb *TableBuilder) writeBlock(block *BlockBuilder, typ CompressionType) (BlockHandle, error) {
	raw := block.Finish()
	contents, actualType := compressBlock(raw, typ)
	handle, err := tb.writeRawBlock(contents, actualType)
	block.Reset()
	return handle, err
}

// writeRawBlock appends blockContents then the 5-byte trailer
// (compression tag + masked CRC32C over contents∥tag), per spec.md §6.
func (tb *TableBuilder) writeRawBlock(blockContents []byte, typ CompressionType) (BlockHandle, error) {
	handle := BlockHandle{Offset: tb.offset, Size: uint64(len(blockContents))}
	if err := tb.sink.Append(blockContents); err != nil {
		return handle, err
	}
	trailer := make([]byte, BlockTrailerSize)
	trailer[0] = byte(typ)
	c := crc.Value(blockContents)
	c = crc.Extend(c, trailer[:1])
	codec.EncodeFixed32(trailer[1:], crc.Mask(c))
	if err := tb.sink.Append(trailer); err != nil {
		return handle, err
	}
	tb.offset += uint64(len(blockContents)) + BlockTrailerSize
	return handle, nil
}

// Finish flushes any residual data and writes the filter, stats,
// metaindex, index blocks and footer, in that order (spec.md §4.2).
func (tb *TableBuilder) Finish() error {
	tb.Flush()
	condPanic(tb.closed, errors.New("sstable: Finish called on a closed TableBuilder"))
	tb.closed = true

	var filterHandle, metaindexHandle, indexHandle BlockHandle

	if tb.ok() && tb.filterBlock != nil {
		h, err := tb.writeRawBlock(tb.filterBlock.Finish(), NoCompression)
		if err != nil {
			tb.status = err
		}
		filterHandle = h
	}

	if tb.ok() && tb.pendingIndexEntry {
		succ := tb.opt.Comparator.FindShortSuccessor(tb.lastKey)
		handle := tb.pendingHandle.EncodeTo(nil)
		tb.indexBlock.Add(succ, handle)
		tb.pendingIndexEntry = false
	}

	if tb.ok() {
		metaEntries := newSortedMetaEntries()
		if tb.filterBlock != nil {
			key := filterMetaKeyPrefix + tb.opt.FilterPolicy.Name()
			metaEntries.put(key, filterHandle.EncodeTo(nil))
		}

		statsBlock := NewBlockBuilder(tb.opt)
		stats := newSortedMetaEntries()
		stats.putVarint(statRawKeySize, tb.rawKeySize)
		stats.putVarint(statRawValueSize, tb.rawValueSize)
		stats.putVarint(statDataSize, tb.dataSize)
		stats.putVarint(statIndexSize, uint64(tb.indexBlock.CurrentSizeEstimate()+BlockTrailerSize))
		stats.putVarint(statNumEntries, tb.numEntries)
		stats.putVarint(statNumDataBlocks, tb.numDataBlocks)
		for _, e := range stats.entries {
			statsBlock.Add([]byte(e.key), e.value)
		}
		statsHandle, err := tb.writeBlock(statsBlock, tb.compressionFor(tb.level))
		if err != nil {
			tb.status = err
		}
		metaEntries.put(statsBlockMetaKey, statsHandle.EncodeTo(nil))

		metaBlock := NewBlockBuilder(tb.opt)
		for _, e := range metaEntries.entries {
			metaBlock.Add([]byte(e.key), e.value)
		}
		metaindexHandle, err = tb.writeBlock(metaBlock, NoCompression)
		if err != nil {
			tb.status = err
		}
	}

	if tb.ok() {
		var err error
		indexHandle, err = tb.writeBlock(tb.indexBlock, tb.compressionFor(tb.level))
		if err != nil {
			tb.status = err
		}
	}

	if tb.ok() {
		footer := Footer{MetaindexHandle: metaindexHandle, IndexHandle: indexHandle}
		encoded := footer.EncodeTo()
		if err := tb.sink.Append(encoded); err != nil {
			tb.status = err
		} else {
			tb.offset += uint64(len(encoded))
		}
	}

	return tb.status
}

// Abandon marks the builder closed without writing a footer. The
// partially written file is no longer a valid SST.
func (tb *TableBuilder) Abandon() {
	condPanic(tb.closed, errors.New("sstable: Abandon called on a closed TableBuilder"))
	tb.closed = true
}

// sortedMetaEntries accumulates name->value pairs and keeps them
// sorted bytewise by name, the ordering spec.md §4.2 requires for the
// metaindex (and the equivalent stats keys) block. Grounded on the
// BytewiseSortedMap in table_builder.cc, expressed as a slice kept
// sorted on insert rather than an ordered map, since Go has none built in.
type sortedMetaEntries struct {
	entries []metaEntry
}

type metaEntry struct {
	key   string
	value []byte
}

func newSortedMetaEntries() *sortedMetaEntries {
	return &sortedMetaEntries{}
}

func (m *sortedMetaEntries) put(key string, value []byte) {
	i := 0
	for i < len(m.entries) && m.entries[i].key < key {
		i++
	}
	m.entries = append(m.entries, metaEntry{})
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = metaEntry{key: key, value: value}
}

func (m *sortedMetaEntries) putVarint(key string, v uint64) {
	m.put(key, codec.PutVarint64(nil, v))
}
