// Package codec implements the little-endian fixed-int and unsigned
// varint encodings shared by every on-disk format in this module.
package codec

import "encoding/binary"

// MaxVarint32Len is the longest a varint32 can be.
const MaxVarint32Len = 5

// MaxVarint64Len is the longest a varint64 can be.
const MaxVarint64Len = 10

// EncodeFixed32 writes v to buf as 4 little-endian bytes.
func EncodeFixed32(buf []byte, v uint32) {
	binary.LittleEndian.PutUint32(buf, v)
}

// DecodeFixed32 reads 4 little-endian bytes from buf.
func DecodeFixed32(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf)
}

// EncodeFixed64 writes v to buf as 8 little-endian bytes.
func EncodeFixed64(buf []byte, v uint64) {
	binary.LittleEndian.PutUint64(buf, v)
}

// DecodeFixed64 reads 8 little-endian bytes from buf.
func DecodeFixed64(buf []byte) uint64 {
	return binary.LittleEndian.Uint64(buf)
}

// VarintLength returns the number of bytes EncodeVarint64 would need for v.
func VarintLength(v uint64) int {
	n := 1
	for v >= 128 {
		v >>= 7
		n++
	}
	return n
}

// EncodeVarint32 writes v to buf as a base-128 varint and returns the
// number of bytes written. buf must have at least MaxVarint32Len bytes.
func EncodeVarint32(buf []byte, v uint32) int {
	return EncodeVarint64(buf, uint64(v))
}

// DecodeVarint32 decodes a varint32 from the front of buf and returns
// the value and the number of bytes consumed. It returns (0, 0) if buf
// does not hold a complete varint.
func DecodeVarint32(buf []byte) (uint32, int) {
	v, n := DecodeVarint64(buf)
	return uint32(v), n
}

// EncodeVarint64 writes v to buf as a base-128 varint and returns the
// number of bytes written. buf must have at least MaxVarint64Len bytes.
func EncodeVarint64(buf []byte, v uint64) int {
	return binary.PutUvarint(buf, v)
}

// DecodeVarint64 decodes a varint64 from the front of buf and returns
// the value and the number of bytes consumed. It returns (0, 0) if buf
// does not hold a complete varint.
func DecodeVarint64(buf []byte) (uint64, int) {
	v, n := binary.Uvarint(buf)
	if n <= 0 {
		return 0, 0
	}
	return v, n
}

// PutVarint32 appends v to dst as a varint32.
func PutVarint32(dst []byte, v uint32) []byte {
	var tmp [MaxVarint32Len]byte
	n := EncodeVarint32(tmp[:], v)
	return append(dst, tmp[:n]...)
}

// PutVarint64 appends v to dst as a varint64.
func PutVarint64(dst []byte, v uint64) []byte {
	var tmp [MaxVarint64Len]byte
	n := EncodeVarint64(tmp[:], v)
	return append(dst, tmp[:n]...)
}

// PutFixed32 appends v to dst as 4 little-endian bytes.
func PutFixed32(dst []byte, v uint32) []byte {
	var tmp [4]byte
	EncodeFixed32(tmp[:], v)
	return append(dst, tmp[:]...)
}

// PutFixed64 appends v to dst as 8 little-endian bytes.
func PutFixed64(dst []byte, v uint64) []byte {
	var tmp [8]byte
	EncodeFixed64(tmp[:], v)
	return append(dst, tmp[:]...)
}

// PutLengthPrefixedBytes appends the varint32 length of s followed by
// s itself, the framing used by every length-prefixed field in the
// WriteBatch wire format.
func PutLengthPrefixedBytes(dst []byte, s []byte) []byte {
	dst = PutVarint32(dst, uint32(len(s)))
	return append(dst, s...)
}

// GetLengthPrefixedBytes reads a length-prefixed field from the front
// of buf, returning the field and the remaining bytes. ok is false if
// buf is truncated.
func GetLengthPrefixedBytes(buf []byte) (value, rest []byte, ok bool) {
	length, n := DecodeVarint32(buf)
	if n == 0 || uint32(len(buf)-n) < length {
		return nil, buf, false
	}
	return buf[n : n+int(length)], buf[n+int(length):], true
}
