package sstable

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompressBlockNoCompression(t *testing.T) {
	raw := []byte("hello world")
	got, typ := compressBlock(raw, NoCompression)
	require.Equal(t, NoCompression, typ)
	require.Equal(t, raw, got)
}

func TestCompressBlockSnappyCompressible(t *testing.T) {
	raw := bytes.Repeat([]byte("abcdefgh"), 4096)
	got, typ := compressBlock(raw, SnappyCompression)
	require.Equal(t, SnappyCompression, typ)
	require.True(t, len(got) < len(raw))

	back, err := decompressBlock(got, typ)
	require.NoError(t, err)
	require.Equal(t, raw, back)
}

func TestCompressBlockSnappyIncompressibleFallsBack(t *testing.T) {
	// Tiny input: snappy's own framing overhead means it can never hit
	// the 12.5% savings gate, so this must fall back to NoCompression.
	raw := []byte("x")
	got, typ := compressBlock(raw, SnappyCompression)
	require.Equal(t, NoCompression, typ)
	require.Equal(t, raw, got)
}

func TestCompressBlockZlib(t *testing.T) {
	raw := bytes.Repeat([]byte("zlib-friendly-payload-"), 2048)
	got, typ := compressBlock(raw, ZlibCompression)
	require.Equal(t, ZlibCompression, typ)
	require.True(t, len(got) < len(raw))

	back, err := decompressBlock(got, typ)
	require.NoError(t, err)
	require.Equal(t, raw, back)
}

func TestCompressBlockBZip2AlwaysFallsBack(t *testing.T) {
	raw := bytes.Repeat([]byte("x"), 4096)
	got, typ := compressBlock(raw, BZip2Compression)
	require.Equal(t, NoCompression, typ)
	require.Equal(t, raw, got)
}

func TestGoodCompressionRatio(t *testing.T) {
	require.True(t, goodCompressionRatio(80, 100))
	require.False(t, goodCompressionRatio(90, 100))
	require.False(t, goodCompressionRatio(100, 100))
}
