package sstable

import (
	"bytes"
	"compress/zlib"
	"io"

	"github.com/golang/snappy"
)

// compressBlock attempts to compress raw with typ, returning the
// chosen bytes and the tag that was actually used. It mirrors
// TableBuilder::WriteBlock in
// _examples/original_source/table/table_builder.cc: compression is
// only kept if GoodCompressionRatio holds (strictly under 87.5% of
// the raw size, i.e. at least 12.5% smaller) and the codec is
// actually available; otherwise it falls back to the raw bytes with
// NoCompression.
func compressBlock(raw []byte, typ CompressionType) ([]byte, CompressionType) {
	switch typ {
	case NoCompression:
		return raw, NoCompression
	case SnappyCompression:
		compressed := snappy.Encode(nil, raw)
		if goodCompressionRatio(len(compressed), len(raw)) {
			return compressed, SnappyCompression
		}
		return raw, NoCompression
	case ZlibCompression:
		compressed, ok := zlibCompress(raw)
		if ok && goodCompressionRatio(len(compressed), len(raw)) {
			return compressed, ZlibCompression
		}
		return raw, NoCompression
	case BZip2Compression:
		// The standard library's compress/bzip2 is decode-only and no
		// pack example ships a bzip2 encoder (see SPEC_FULL.md §3), so
		// this codec is always "unavailable at build time" --- the
		// fallback spec.md §4.2 explicitly allows.
		return raw, NoCompression
	default:
		return raw, NoCompression
	}
}

// goodCompressionRatio reports whether compressed is under 87.5% of
// raw, the same threshold GoodCompressionRatio uses in the original
// source.
func goodCompressionRatio(compressedSize, rawSize int) bool {
	return compressedSize < rawSize-rawSize/8
}

func zlibCompress(raw []byte) ([]byte, bool) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		return nil, false
	}
	if err := w.Close(); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}

// decompressBlock reverses compressBlock, used only by the test-only
// decode helpers in decode.go.
func decompressBlock(data []byte, typ CompressionType) ([]byte, error) {
	switch typ {
	case NoCompression:
		return data, nil
	case SnappyCompression:
		return snappy.Decode(nil, data)
	case ZlibCompression:
		r, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	default:
		return nil, errUnsupportedCompression
	}
}
