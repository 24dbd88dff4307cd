// Package crc computes the masked CRC32C checksums stored in every
// block trailer. Grounded on the teacher's utils/coding.go, which
// already builds its block checksums over the Castagnoli polynomial;
// this package adds the rotate-and-add masking spec.md §4.2 and §9
// require so the stored checksum bytes never collide with the CRC of
// another block's CRC.
package crc

import "hash/crc32"

// Table is the Castagnoli CRC32C polynomial table used throughout.
var Table = crc32.MakeTable(crc32.Castagnoli)

const maskDelta = 0xa282ead8

// Value returns the unmasked CRC32C of data.
func Value(data []byte) uint32 {
	return crc32.Checksum(data, Table)
}

// Extend extends a CRC32C computed over some prefix to also cover data.
func Extend(crc uint32, data []byte) uint32 {
	return crc32.Update(crc, Table, data)
}

// Mask returns a masked representation of crc. Rotating before adding
// the delta decorrelates the stored checksum's byte pattern from the
// data it protects, so a block that happens to embed another block's
// checksum does not produce a matching CRC.
func Mask(crc uint32) uint32 {
	return ((crc >> 15) | (crc << 17)) + maskDelta
}

// Unmask reverses Mask.
func Unmask(masked uint32) uint32 {
	rot := masked - maskDelta
	return (rot >> 17) | (rot << 15)
}
