package sstable

// TableMagicNumber identifies the footer format on disk (spec.md §6).
// Picking a number with no common small-integer collision is the same
// defensive choice the teacher's own MagicText made for its format.
const TableMagicNumber uint64 = 0xdb4775248b80fb57

// BlockTrailerSize is the 1-byte compression tag plus the 4-byte
// masked CRC32C that follows every stored block (spec.md §6).
const BlockTrailerSize = 5

// MaxBlockHandleEncodedLength is the longest a single BlockHandle can
// encode to: two varint64s.
const MaxBlockHandleEncodedLength = 20

// FooterEncodedLength is the fixed length of the trailing footer:
// two BlockHandles zero-padded to 2*MaxBlockHandleEncodedLength bytes,
// followed by the 8-byte magic number (spec.md §6).
const FooterEncodedLength = 2*MaxBlockHandleEncodedLength + 8
