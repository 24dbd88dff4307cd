package storage

import "os"

// WritableFile is the append-only byte-stream sink spec.md §1 and §5
// describe: the builder observes it as an in-order byte stream and
// never seeks backwards on it.
type WritableFile interface {
	Append(data []byte) error
	Flush() error
	Close() error
}

// MmapWritableFile is the default WritableFile, backed by a growable
// mmap region. Grounded on the teacher's sstable.SSTable, which wraps
// the same MmapFile to hand out writable byte ranges (sstable.go's
// Bytes method) during a build.
type MmapWritableFile struct {
	f       *MmapFile
	writeAt int
}

// Create opens filename for writing, truncating any existing content.
func Create(filename string) (*MmapWritableFile, error) {
	f, err := OpenMmapFile(filename, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 1<<20)
	if err != nil {
		return nil, err
	}
	return &MmapWritableFile{f: f}, nil
}

// Append copies data to the sink's current write position and
// advances it, growing the backing mapping on demand.
func (w *MmapWritableFile) Append(data []byte) error {
	dst, err := w.f.Bytes(w.writeAt, len(data))
	if err != nil {
		return err
	}
	copy(dst, data)
	w.writeAt += len(data)
	return nil
}

// Flush syncs written bytes to disk.
func (w *MmapWritableFile) Flush() error {
	return w.f.Sync()
}

// Close truncates the mapping down to exactly what was written, then
// unmaps and closes the file.
func (w *MmapWritableFile) Close() error {
	if err := w.f.Truncate(int64(w.writeAt)); err != nil {
		return err
	}
	return w.f.Close()
}

// Size reports the number of bytes appended so far.
func (w *MmapWritableFile) Size() int64 {
	return int64(w.writeAt)
}
