package sstable

import (
	"ckv/codec"
	"ckv/crc"
)

// This file holds test-only helpers that decode a finished table back
// into Go values. None of it is a reader API: spec.md §1 scopes this
// module to building tables, not serving reads, so there is no
// seeking, no caching, and no index-guided block lookup here — just
// enough linear decoding for builder_test.go to assert a round trip.

// decodedTable is everything decodeTable recovers from a finished file.
type decodedTable struct {
	footer   Footer
	index    []blockEntry
	meta     map[string]BlockHandle
	stats    map[string]uint64
	filter   []byte
	filterLg uint8
	dataBlocks []decodedDataBlock
}

type decodedDataBlock struct {
	handle  BlockHandle
	entries []blockEntry
}

// decodeTable parses the full contents of a table file written by
// TableBuilder, validating every block's checksum along the way.
func decodeTable(contents []byte) (*decodedTable, error) {
	if len(contents) < footerLen() {
		return nil, errShortBlock
	}
	footer, err := DecodeFooter(contents[len(contents)-footerLen():])
	if err != nil {
		return nil, err
	}

	metaBody, err := readBlock(contents, footer.MetaindexHandle)
	if err != nil {
		return nil, err
	}
	metaEntries, _, err := decodeBlock(metaBody)
	if err != nil {
		return nil, err
	}
	meta := make(map[string]BlockHandle, len(metaEntries))
	for _, e := range metaEntries {
		h, _, err := DecodeBlockHandle(e.value)
		if err != nil {
			return nil, err
		}
		meta[string(e.key)] = h
	}

	out := &decodedTable{footer: footer, meta: meta}

	if statsHandle, ok := meta[statsBlockMetaKey]; ok {
		statsBody, err := readBlock(contents, statsHandle)
		if err != nil {
			return nil, err
		}
		statEntries, _, err := decodeBlock(statsBody)
		if err != nil {
			return nil, err
		}
		out.stats = make(map[string]uint64, len(statEntries))
		for _, e := range statEntries {
			v, _ := codec.DecodeVarint64(e.value)
			out.stats[string(e.key)] = v
		}
	}

	for key, handle := range meta {
		if len(key) > len(filterMetaKeyPrefix) && key[:len(filterMetaKeyPrefix)] == filterMetaKeyPrefix {
			filterBody, err := readBlock(contents, handle)
			if err != nil {
				return nil, err
			}
			out.filter = filterBody
			if len(filterBody) > 0 {
				out.filterLg = filterBody[len(filterBody)-1]
			}
		}
	}

	indexBody, err := readBlock(contents, footer.IndexHandle)
	if err != nil {
		return nil, err
	}
	indexEntries, _, err := decodeBlock(indexBody)
	if err != nil {
		return nil, err
	}
	out.index = indexEntries

	for _, e := range indexEntries {
		handle, _, err := DecodeBlockHandle(e.value)
		if err != nil {
			return nil, err
		}
		body, err := readBlock(contents, handle)
		if err != nil {
			return nil, err
		}
		entries, _, err := decodeBlock(body)
		if err != nil {
			return nil, err
		}
		out.dataBlocks = append(out.dataBlocks, decodedDataBlock{handle: handle, entries: entries})
	}

	return out, nil
}

// readBlock reads the block at handle, verifies its trailer checksum,
// and decompresses it per the trailer's compression tag.
func readBlock(contents []byte, handle BlockHandle) ([]byte, error) {
	start := handle.Offset
	end := start + handle.Size + BlockTrailerSize
	if end > uint64(len(contents)) {
		return nil, errShortBlock
	}
	block := contents[start : start+handle.Size]
	trailer := contents[start+handle.Size : end]

	typ := CompressionType(trailer[0])
	stored := crc.Unmask(codec.DecodeFixed32(trailer[1:]))
	got := crc.Value(block)
	got = crc.Extend(got, trailer[:1])
	if got != stored {
		return nil, ErrCorruptBlock
	}
	return decompressBlock(block, typ)
}

func footerLen() int {
	f := Footer{}
	return len(f.EncodeTo())
}
