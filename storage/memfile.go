package storage

import "bytes"

// MemFile is an in-memory WritableFile, used by tests that want to
// exercise the builder without touching a real filesystem. It carries
// no teacher lineage of its own — it is the minimal fake the
// WritableFile interface demands, analogous to the in-memory
// environments most LSM test suites reach for.
type MemFile struct {
	buf    bytes.Buffer
	closed bool
}

// NewMemFile returns an empty in-memory sink.
func NewMemFile() *MemFile { return &MemFile{} }

func (m *MemFile) Append(data []byte) error {
	_, err := m.buf.Write(data)
	return err
}

func (m *MemFile) Flush() error { return nil }

func (m *MemFile) Close() error {
	m.closed = true
	return nil
}

// Bytes returns everything written so far.
func (m *MemFile) Bytes() []byte { return m.buf.Bytes() }

// Len returns the number of bytes written so far.
func (m *MemFile) Len() int { return m.buf.Len() }
