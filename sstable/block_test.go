package sstable

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockBuilderRoundTrip(t *testing.T) {
	opt := DefaultOptions()
	opt.BlockRestartInterval = 3
	b := NewBlockBuilder(opt)
	require.True(t, b.Empty())

	var want []blockEntry
	for i := 0; i < 20; i++ {
		key := []byte(fmt.Sprintf("key%04d", i))
		value := []byte(fmt.Sprintf("value-%d", i))
		b.Add(key, value)
		want = append(want, blockEntry{key: key, value: value})
	}
	require.False(t, b.Empty())

	body := b.Finish()
	entries, restarts, err := decodeBlock(body)
	require.NoError(t, err)
	require.Equal(t, len(want), len(entries))
	for i := range want {
		require.Equal(t, string(want[i].key), string(entries[i].key))
		require.Equal(t, string(want[i].value), string(entries[i].value))
	}

	// Every restart_interval entries gets a fresh restart point: 20
	// entries at interval 3 is restarts at indices 0,3,6,9,12,15,18.
	require.Equal(t, 7, len(restarts))
	require.EqualValues(t, 0, restarts[0])
}

func TestBlockBuilderReset(t *testing.T) {
	opt := DefaultOptions()
	b := NewBlockBuilder(opt)
	b.Add([]byte("a"), []byte("1"))
	b.Add([]byte("b"), []byte("2"))
	require.False(t, b.Empty())

	b.Reset()
	require.True(t, b.Empty())
	b.Add([]byte("c"), []byte("3"))
	entries, _, err := decodeBlock(b.Finish())
	require.NoError(t, err)
	require.Equal(t, 1, len(entries))
	require.Equal(t, "c", string(entries[0].key))
}

func TestSharedPrefixLen(t *testing.T) {
	require.Equal(t, 5, sharedPrefixLen([]byte("foobar"), []byte("foobaz")))
	require.Equal(t, 0, sharedPrefixLen([]byte("abc"), []byte("xyz")))
	require.Equal(t, 3, sharedPrefixLen([]byte("abc"), []byte("abc")))
	require.Equal(t, 0, sharedPrefixLen(nil, []byte("abc")))
}
