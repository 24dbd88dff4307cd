package sstable

import (
	"fmt"
	"testing"

	"ckv/bloom"

	"github.com/stretchr/testify/require"
)

func TestFilterBlockBuilderEmpty(t *testing.T) {
	f := NewFilterBlockBuilder(bloom.NewBloomFilterPolicy(10))
	f.StartBlock(0)
	result := f.Finish()
	// No key was added, so no segment is generated and the offset
	// array is empty: arrayOffset(4) + filterBaseLg(1)
	require.Equal(t, 5, len(result))
	require.Equal(t, byte(filterBaseLg), result[len(result)-1])
}

func TestFilterBlockBuilderSingleChunk(t *testing.T) {
	policy := bloom.NewBloomFilterPolicy(10)
	f := NewFilterBlockBuilder(policy)
	f.StartBlock(100)
	f.AddKey([]byte("foo"))
	f.AddKey([]byte("bar"))
	f.StartBlock(200)
	f.AddKey([]byte("box"))
	f.StartBlock(300)
	f.AddKey([]byte("box"))
	f.StartBlock(9000)
	f.AddKey([]byte("box"))
	result := f.Finish()
	require.True(t, len(result) > 0)

	filter := policy.CreateFilter([][]byte{[]byte("foo"), []byte("bar")})
	require.True(t, policy.MayContain(filter, []byte("foo")))
	require.True(t, policy.MayContain(filter, []byte("bar")))
}

func TestFilterBlockBuilderMultiSegment(t *testing.T) {
	policy := bloom.NewBloomFilterPolicy(10)
	f := NewFilterBlockBuilder(policy)

	var filters [][]byte
	for seg := 0; seg < 3; seg++ {
		f.StartBlock(uint64(seg) * filterBase)
		var keys [][]byte
		for i := 0; i < 5; i++ {
			key := []byte(fmt.Sprintf("seg%d-key%d", seg, i))
			keys = append(keys, key)
			f.AddKey(key)
		}
		filters = append(filters, policy.CreateFilter(keys))
	}
	result := f.Finish()
	require.True(t, len(result) > 0)
	require.Equal(t, byte(filterBaseLg), result[len(result)-1])
}

func TestBitsPerKey(t *testing.T) {
	require.EqualValues(t, 0, bloom.BitsPerKey(0))
	require.True(t, bloom.BitsPerKey(0.01) > bloom.BitsPerKey(0.1))
}
