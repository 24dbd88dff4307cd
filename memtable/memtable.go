package memtable

import (
	"ckv/cmp"
	"ckv/ikey"
)

// MemTable is the ordered, in-memory store batch.InsertInto replays a
// WriteBatch into. It implements batch.Inserter structurally (Go
// interfaces need no import back to the batch package for that).
type MemTable struct {
	cmp ikey.Comparator
	skl *skipList
}

// New returns an empty MemTable ordered by the given user-key
// comparator, wrapped in the (user_key asc, sequence desc, type desc)
// internal-key order spec.md §9 requires.
func New(userCmp cmp.Comparator, seed int64) *MemTable {
	ic := ikey.NewComparator(userCmp)
	return &MemTable{cmp: ic, skl: newSkipList(ic, seed)}
}

// Insert satisfies batch.Inserter: it packs (userKey, seq, typ) into
// an internal key and stores value under it.
func (m *MemTable) Insert(seq uint64, typ ikey.ValueType, userKey, value []byte) error {
	m.skl.insert(ikey.Pack(userKey, seq, typ), value)
	return nil
}

// Entry is one decoded internal-key/value pair, as returned by All.
type Entry struct {
	UserKey  []byte
	Sequence uint64
	Type     ikey.ValueType
	Value    []byte
}

// All returns every entry in memtable iteration order: user_key
// ascending, then sequence descending, then type descending.
func (m *MemTable) All() []Entry {
	var out []Entry
	it := m.skl.newIterator()
	for it.seekToFirst(); it.valid(); it.next() {
		parsed, ok := ikey.Parse(it.key())
		if !ok {
			continue
		}
		out = append(out, Entry{
			UserKey:  parsed.UserKey,
			Sequence: parsed.Sequence,
			Type:     parsed.Type,
			Value:    it.value(),
		})
	}
	return out
}

// Len returns the number of entries stored.
func (m *MemTable) Len() int { return m.skl.count }
