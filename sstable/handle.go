package sstable

import (
	"ckv/codec"

	"github.com/pkg/errors"
)

// BlockHandle locates a block's body within the file. Size excludes
// the 5-byte trailer (spec.md §3).
type BlockHandle struct {
	Offset uint64
	Size   uint64
}

// EncodeTo appends the varint64(offset) ∥ varint64(size) encoding to dst.
func (h BlockHandle) EncodeTo(dst []byte) []byte {
	dst = codec.PutVarint64(dst, h.Offset)
	dst = codec.PutVarint64(dst, h.Size)
	return dst
}

// DecodeBlockHandle reads a BlockHandle from the front of buf, returning the
// remaining bytes.
func DecodeBlockHandle(buf []byte) (BlockHandle, []byte, error) {
	offset, n := codec.DecodeVarint64(buf)
	if n == 0 {
		return BlockHandle{}, buf, errors.New("bad block handle: truncated offset")
	}
	buf = buf[n:]
	size, n := codec.DecodeVarint64(buf)
	if n == 0 {
		return BlockHandle{}, buf, errors.New("bad block handle: truncated size")
	}
	buf = buf[n:]
	return BlockHandle{Offset: offset, Size: size}, buf, nil
}

// Footer is the fixed-length trailer every table ends with (spec.md §3/§6).
type Footer struct {
	MetaindexHandle BlockHandle
	IndexHandle     BlockHandle
}

// EncodeTo returns the FooterEncodedLength-byte encoding: both handles
// zero-padded to 2*MaxBlockHandleEncodedLength bytes, followed by the
// 8-byte little-endian magic number.
func (f Footer) EncodeTo() []byte {
	out := make([]byte, 0, FooterEncodedLength)
	out = f.MetaindexHandle.EncodeTo(out)
	out = f.IndexHandle.EncodeTo(out)
	padded := make([]byte, 2*MaxBlockHandleEncodedLength)
	copy(padded, out)
	padded = codec.PutFixed64(padded, TableMagicNumber)
	return padded
}

// DecodeFooter parses the fixed-length footer.
func DecodeFooter(buf []byte) (Footer, error) {
	if len(buf) != FooterEncodedLength {
		return Footer{}, errors.Errorf("bad footer length: %d", len(buf))
	}
	magic := codec.DecodeFixed64(buf[2*MaxBlockHandleEncodedLength:])
	if magic != TableMagicNumber {
		return Footer{}, errors.Errorf("not an sstable (bad magic number %x)", magic)
	}
	rest := buf[:2*MaxBlockHandleEncodedLength]
	mh, rest, err := DecodeBlockHandle(rest)
	if err != nil {
		return Footer{}, errors.Wrap(err, "bad footer: metaindex handle")
	}
	ih, _, err := DecodeBlockHandle(rest)
	if err != nil {
		return Footer{}, errors.Wrap(err, "bad footer: index handle")
	}
	return Footer{MetaindexHandle: mh, IndexHandle: ih}, nil
}
