package storage

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// Options mirrors the teacher's file.Options, trimmed to the fields a
// bare append-only sink needs.
type Options struct {
	FileName string
	Flag     int
	MaxSz    int
}

// MmapFile is an mmap-backed file, grounded on the teacher's
// file.MmapFile (Data []byte, Fd *os.File).
type MmapFile struct {
	Data []byte
	Fd   *os.File
}

// OpenMmapFile opens (creating if needed) filename and maps maxSz
// bytes of it. The teacher referenced this constructor from
// sstable.OpenSStable and lsm.OpenWalFile without shipping its body in
// this retrieval snapshot; this is a reconstruction matching the
// referenced signature and the MmapFile shape above.
func OpenMmapFile(filename string, flag int, maxSz int) (*MmapFile, error) {
	fd, err := os.OpenFile(filename, flag, 0666)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open: %s", filename)
	}
	fi, err := fd.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "cannot stat file: %s", filename)
	}
	fileSize := fi.Size()
	if fileSize == 0 && maxSz > 0 {
		if err := fd.Truncate(int64(maxSz)); err != nil {
			return nil, errors.Wrapf(err, "error while truncation: %s", filename)
		}
		fileSize = int64(maxSz)
	}
	data, err := mmap(fd, true, fileSize)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to mmap: %s", filename)
	}
	return &MmapFile{Data: data, Fd: fd}, nil
}

// Bytes returns the region [off, off+sz), growing the mapping first
// if the file is not yet large enough.
func (m *MmapFile) Bytes(off, sz int) ([]byte, error) {
	if off+sz > len(m.Data) {
		if err := m.grow(off + sz); err != nil {
			return nil, err
		}
	}
	return m.Data[off : off+sz], nil
}

func (m *MmapFile) grow(minSz int) error {
	newSz := 2 * len(m.Data)
	if newSz < minSz {
		newSz = minSz
	}
	if err := m.Fd.Truncate(int64(newSz)); err != nil {
		return errors.Wrapf(err, "while truncate file: %s", m.Fd.Name())
	}
	data, err := mremap(m.Data, newSz)
	if err != nil {
		return errors.Wrapf(err, "while mremap file: %s", m.Fd.Name())
	}
	m.Data = data
	return nil
}

// Sync flushes the mapped region to disk.
func (m *MmapFile) Sync() error {
	if m == nil {
		return nil
	}
	return msync(m.Data)
}

// Truncate shrinks the backing file and mapping to maxSz, discarding
// whatever padding Bytes' doubling growth left behind. Grounded on
// the teacher's file/mmap.go Truncature.
func (m *MmapFile) Truncate(maxSz int64) error {
	if err := m.Sync(); err != nil {
		return errors.Wrapf(err, "while sync file: %s", m.Fd.Name())
	}
	if err := m.Fd.Truncate(maxSz); err != nil {
		return errors.Wrapf(err, "while truncate file: %s", m.Fd.Name())
	}
	data, err := mremap(m.Data, int(maxSz))
	if err != nil {
		return err
	}
	m.Data = data
	return nil
}

// NewReader returns a reader over the mapped bytes starting at offset.
func (m *MmapFile) NewReader(offset int) io.Reader {
	return &mmapReader{data: m.Data, offset: offset}
}

// Close unmaps and closes the underlying file.
func (m *MmapFile) Close() error {
	if m == nil || m.Fd == nil {
		return nil
	}
	if err := munmap(m.Data); err != nil {
		return errors.Wrapf(err, "while munmap file: %s", m.Fd.Name())
	}
	return m.Fd.Close()
}

type mmapReader struct {
	data   []byte
	offset int
}

func (r *mmapReader) Read(buf []byte) (int, error) {
	if r.offset >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(buf, r.data[r.offset:])
	r.offset += n
	if n < len(buf) {
		return n, io.EOF
	}
	return n, nil
}
