package sstable

import (
	"fmt"
	"testing"

	"ckv/bloom"
	"ckv/storage"

	"github.com/stretchr/testify/require"
)

func buildTable(t *testing.T, opt *Options, n int) ([]byte, [][2]string) {
	sink := storage.NewMemFile()
	tb := NewTableBuilder(opt, sink, 0)

	var kvs [][2]string
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("key-%06d", i)
		value := fmt.Sprintf("value-%d-%s", i, key)
		tb.Add([]byte(key), []byte(value))
		kvs = append(kvs, [2]string{key, value})
	}
	require.NoError(t, tb.Finish())
	require.NoError(t, sink.Close())
	return sink.Bytes(), kvs
}

func TestTableBuilderRoundTripNoCompression(t *testing.T) {
	opt := DefaultOptions()
	opt.BlockSize = 256
	opt.FilterPolicy = bloom.NewBloomFilterPolicy(10)

	contents, kvs := buildTable(t, opt, 10000)

	table, err := decodeTable(contents)
	require.NoError(t, err)

	var got [][2]string
	for _, db := range table.dataBlocks {
		for _, e := range db.entries {
			got = append(got, [2]string{string(e.key), string(e.value)})
		}
	}
	require.Equal(t, len(kvs), len(got))
	for i := range kvs {
		require.Equal(t, kvs[i], got[i])
	}

	require.EqualValues(t, len(kvs), table.stats[statNumEntries])
	require.True(t, table.stats[statNumDataBlocks] > 1)
	require.True(t, len(table.filter) > 0)
}

func TestTableBuilderRoundTripSnappy(t *testing.T) {
	opt := DefaultOptions()
	opt.BlockSize = 512
	opt.Compression = SnappyCompression

	contents, kvs := buildTable(t, opt, 5000)

	table, err := decodeTable(contents)
	require.NoError(t, err)
	var got [][2]string
	for _, db := range table.dataBlocks {
		for _, e := range db.entries {
			got = append(got, [2]string{string(e.key), string(e.value)})
		}
	}
	require.Equal(t, kvs, got)
}

func TestTableBuilderRoundTripZlib(t *testing.T) {
	opt := DefaultOptions()
	opt.BlockSize = 512
	opt.Compression = ZlibCompression

	contents, kvs := buildTable(t, opt, 5000)

	table, err := decodeTable(contents)
	require.NoError(t, err)
	var got [][2]string
	for _, db := range table.dataBlocks {
		for _, e := range db.entries {
			got = append(got, [2]string{string(e.key), string(e.value)})
		}
	}
	require.Equal(t, kvs, got)
}

func TestTableBuilderCompressionPerLevelClampsToLast(t *testing.T) {
	opt := DefaultOptions()
	opt.CompressionPerLevel = []CompressionType{NoCompression, SnappyCompression}

	sink := storage.NewMemFile()
	tb := NewTableBuilder(opt, sink, 5) // level way past len(levels)-1
	require.Equal(t, SnappyCompression, tb.compressionFor(5))
	require.Equal(t, NoCompression, tb.compressionFor(0))
}

func TestTableBuilderOutOfOrderAddPanics(t *testing.T) {
	opt := DefaultOptions()
	sink := storage.NewMemFile()
	tb := NewTableBuilder(opt, sink, 0)
	tb.Add([]byte("b"), []byte("1"))
	require.Panics(t, func() {
		tb.Add([]byte("a"), []byte("2"))
	})
}

func TestTableBuilderAbandonThenAddPanics(t *testing.T) {
	opt := DefaultOptions()
	sink := storage.NewMemFile()
	tb := NewTableBuilder(opt, sink, 0)
	tb.Add([]byte("a"), []byte("1"))
	tb.Abandon()
	require.Panics(t, func() {
		tb.Add([]byte("b"), []byte("2"))
	})
}

func TestTableBuilderChangeOptionsRejectsComparatorChange(t *testing.T) {
	opt := DefaultOptions()
	sink := storage.NewMemFile()
	tb := NewTableBuilder(opt, sink, 0)

	other := DefaultOptions()
	other.Comparator = reversedComparator{}
	err := tb.ChangeOptions(other)
	require.ErrorIs(t, err, ErrChangingComparator)
}

// reversedComparator only needs a distinct Name: ChangeOptions rejects
// on name mismatch before it would ever call Compare.
type reversedComparator struct{}

func (reversedComparator) Name() string                                    { return "test.reversed" }
func (reversedComparator) Compare(a, b []byte) int                         { return 0 }
func (reversedComparator) FindShortestSeparator(start, limit []byte) []byte { return start }
func (reversedComparator) FindShortSuccessor(key []byte) []byte            { return key }
