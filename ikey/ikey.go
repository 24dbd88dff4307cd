// Package ikey packs and unpacks the internal keys the memtable
// stores: a user key followed by a packed (sequence, type) suffix.
// Grounded on spec.md §6 ("Memtable key encoding consumed by
// replay") and on the value-encoding idiom in the teacher's
// lsm/memtable.go, which already prefixes every memtable value with
// an 8-byte sequence number using the same fixed64 helpers.
package ikey

import (
	"ckv/cmp"
	"ckv/codec"
)

// ValueType tags what kind of record an internal key represents. The
// numeric values match the WriteBatch wire tags in spec.md §4.4 so a
// record's tag can be carried straight through into the type byte.
type ValueType uint8

const (
	TypeDeletion ValueType = 0x00
	TypeValue    ValueType = 0x01
	TypeLogData  ValueType = 0x02
	TypeMerge    ValueType = 0x03
)

// MaxSequenceNumber is the largest sequence number the 56-bit field
// can hold.
const MaxSequenceNumber = (uint64(1) << 56) - 1

// Pack returns userKey ∥ packed_u64_le((sequence<<8)|type), the exact
// layout spec.md §6 mandates.
func Pack(userKey []byte, sequence uint64, typ ValueType) []byte {
	out := make([]byte, len(userKey)+8)
	copy(out, userKey)
	codec.EncodeFixed64(out[len(userKey):], (sequence<<8)|uint64(typ))
	return out
}

// Parsed is the unpacked form of an internal key.
type Parsed struct {
	UserKey  []byte
	Sequence uint64
	Type     ValueType
}

// Parse splits an internal key into its user key, sequence and type.
// It returns ok=false if ikey is shorter than the 8-byte suffix.
func Parse(ikeyBytes []byte) (p Parsed, ok bool) {
	if len(ikeyBytes) < 8 {
		return Parsed{}, false
	}
	n := len(ikeyBytes) - 8
	packed := codec.DecodeFixed64(ikeyBytes[n:])
	return Parsed{
		UserKey:  ikeyBytes[:n],
		Sequence: packed >> 8,
		Type:     ValueType(packed & 0xff),
	}, true
}

// Comparator orders internal keys by (user_key asc, sequence desc,
// type desc): entries for the same user key sort newest-first, and
// within the same sequence the higher type tag sorts first (a Value,
// 0x01, ahead of a Deletion, 0x00). Spec.md §9 calls this out explicitly: "iteration
// order in the memtable is driven by (user_key asc, seq desc, type
// desc), not by record kind."
type Comparator struct {
	User cmp.Comparator
}

// NewComparator wraps a user-key comparator as an internal-key one.
func NewComparator(user cmp.Comparator) Comparator {
	return Comparator{User: user}
}

func (c Comparator) Name() string { return "ckv.InternalKeyComparator" }

func (c Comparator) Compare(a, b []byte) int {
	pa, _ := Parse(a)
	pb, _ := Parse(b)
	if r := c.User.Compare(pa.UserKey, pb.UserKey); r != 0 {
		return r
	}
	if pa.Sequence != pb.Sequence {
		if pa.Sequence > pb.Sequence {
			return -1
		}
		return 1
	}
	if pa.Type != pb.Type {
		if pa.Type > pb.Type {
			return -1
		}
		return 1
	}
	return 0
}
