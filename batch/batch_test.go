package batch_test

import (
	"fmt"
	"testing"

	"ckv/batch"
	"ckv/cmp"
	"ckv/ikey"
	"ckv/memtable"

	"github.com/stretchr/testify/require"
)

func newMemTable() *memtable.MemTable {
	return memtable.New(cmp.BytewiseComparator(), 1)
}

func formatEntries(entries []memtable.Entry) []string {
	var out []string
	for _, e := range entries {
		switch e.Type {
		case ikey.TypeDeletion:
			out = append(out, fmt.Sprintf("Delete(%s)@%d", e.UserKey, e.Sequence))
		case ikey.TypeMerge:
			out = append(out, fmt.Sprintf("Merge(%s,%s)@%d", e.UserKey, e.Value, e.Sequence))
		default:
			out = append(out, fmt.Sprintf("Put(%s,%s)@%d", e.UserKey, e.Value, e.Sequence))
		}
	}
	return out
}

func TestEmptyBatch(t *testing.T) {
	b := batch.New()
	require.EqualValues(t, 0, b.Count())

	mt := newMemTable()
	require.NoError(t, b.InsertInto(mt))
	require.Equal(t, 0, mt.Len())
}

func TestMultipleWithSequence100(t *testing.T) {
	b := batch.New()
	b.Put([]byte("foo"), []byte("bar"))
	b.Delete([]byte("box"))
	b.Put([]byte("baz"), []byte("boo"))
	b.SetSequence(100)
	require.EqualValues(t, 3, b.Count())

	mt := newMemTable()
	require.NoError(t, b.InsertInto(mt))

	got := formatEntries(mt.All())
	require.Equal(t, []string{
		"Put(baz,boo)@102",
		"Delete(box)@101",
		"Put(foo,bar)@100",
	}, got)
}

func TestCorruptionStopsAfterFirstGoodRecord(t *testing.T) {
	b := batch.New()
	b.Put([]byte("foo"), []byte("bar"))
	b.Delete([]byte("box"))
	b.SetSequence(200)

	truncated := b.Rep()
	truncated = truncated[:len(truncated)-1]
	corrupt := batch.New()
	corrupt.SetContents(truncated)

	mt := newMemTable()
	err := corrupt.InsertInto(mt)
	require.Error(t, err)
	require.Equal(t, "Corruption: bad WriteBatch Delete", err.Error())

	got := formatEntries(mt.All())
	require.Equal(t, []string{"Put(foo,bar)@200"}, got)
}

func TestAppendChain(t *testing.T) {
	b1 := batch.New()
	b1.SetSequence(200)
	b2 := batch.New()
	b2.SetSequence(300)

	b1.Append(b2)
	require.EqualValues(t, 0, b1.Count())

	b2.Put([]byte("a"), []byte("va"))
	b1.Append(b2)
	mt1 := newMemTable()
	require.NoError(t, b1.InsertInto(mt1))
	require.Equal(t, []string{"Put(a,va)@200"}, formatEntries(mt1.All()))

	b2.Clear()
	b2.Put([]byte("b"), []byte("vb"))
	b1.Append(b2)
	require.EqualValues(t, 2, b1.Count())
	mt2 := newMemTable()
	require.NoError(t, b1.InsertInto(mt2))
	require.Equal(t, []string{
		"Put(a,va)@200",
		"Put(b,vb)@201",
	}, formatEntries(mt2.All()))

	b2.Delete([]byte("foo"))
	b1.Append(b2)
	require.EqualValues(t, 4, b1.Count())
	mt3 := newMemTable()
	require.NoError(t, b1.InsertInto(mt3))
	require.Equal(t, []string{
		"Put(a,va)@200",
		"Put(b,vb)@202",
		"Put(b,vb)@201",
		"Delete(foo)@203",
	}, formatEntries(mt3.All()))
}

type recordingHandler struct {
	events []string
}

func (h *recordingHandler) Put(key, value []byte) error {
	h.events = append(h.events, fmt.Sprintf("Put(%s,%s)", key, value))
	return nil
}
func (h *recordingHandler) Delete(key []byte) error {
	h.events = append(h.events, fmt.Sprintf("Delete(%s)", key))
	return nil
}
func (h *recordingHandler) Merge(key, value []byte) error {
	h.events = append(h.events, fmt.Sprintf("Merge(%s,%s)", key, value))
	return nil
}
func (h *recordingHandler) LogData(blob []byte) error {
	h.events = append(h.events, fmt.Sprintf("LogData(%s)", blob))
	return nil
}

func TestBlobAndIterate(t *testing.T) {
	b := batch.New()
	b.Put([]byte("k1"), []byte("v1"))
	b.Put([]byte("k2"), []byte("v2"))
	b.Put([]byte("k3"), []byte("v3"))
	b.PutLogData([]byte("blob1"))
	b.Delete([]byte("k2"))
	b.PutLogData([]byte("blob2"))
	b.Merge([]byte("foo"), []byte("bar"))

	require.EqualValues(t, 5, b.Count())

	mt := newMemTable()
	require.NoError(t, b.InsertInto(mt))
	require.Equal(t, []string{
		"Merge(foo,bar)@4",
		"Put(k1,v1)@0",
		"Delete(k2)@3",
		"Put(k2,v2)@1",
		"Put(k3,v3)@2",
	}, formatEntries(mt.All()))

	h := &recordingHandler{}
	require.NoError(t, b.Iterate(h))
	require.Equal(t, []string{
		"Put(k1,v1)",
		"Put(k2,v2)",
		"Put(k3,v3)",
		"LogData(blob1)",
		"Delete(k2)",
		"LogData(blob2)",
		"Merge(foo,bar)",
	}, h.events)
}

func TestHasPutDeleteMerge(t *testing.T) {
	b := batch.New()
	require.False(t, b.HasPut())
	require.False(t, b.HasDelete())
	require.False(t, b.HasMerge())

	b.Put([]byte("k"), []byte("v"))
	require.True(t, b.HasPut())
	require.False(t, b.HasDelete())

	b.Delete([]byte("k2"))
	require.True(t, b.HasDelete())

	b.Merge([]byte("k3"), []byte("v3"))
	require.True(t, b.HasMerge())
}
