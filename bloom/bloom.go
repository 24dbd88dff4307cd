// Package bloom supplies the default FilterPolicy the table builder
// drives. Spec.md §1 treats the filter policy as an external trait
// ("key → bit positions"); this is the concrete production policy
// that trait is expected to have, grounded on the teacher's hash
// choice (cache/tinylfu.go uses github.com/dgryski/go-metro for every
// hash it needs) and on the bit-packing idiom in cache/cm_sketch.go.
package bloom

import (
	"math"

	"github.com/dgryski/go-metro"
)

// FilterPolicy is the trait spec.md §1 and §4.3 describe: something
// that can turn a set of keys into a compact membership summary and
// later answer "might this key be in that summary".
type FilterPolicy interface {
	// Name identifies the policy on disk, e.g. for the metaindex key
	// "filter." + Name().
	Name() string

	// CreateFilter builds a single filter over every key in keys.
	CreateFilter(keys [][]byte) []byte

	// MayContain reports whether key could have been in the set
	// CreateFilter was built from. False positives are allowed; false
	// negatives are not.
	MayContain(filter, key []byte) bool
}

// BitsPerKey chooses a bits-per-key value close to the classic
// bloom-filter optimum for the given false-positive rate.
func BitsPerKey(falsePositiveRate float64) uint32 {
	if falsePositiveRate <= 0 {
		return 0
	}
	// bits/key ~= -log2(p), the standard bloom-filter sizing formula.
	bits := -math.Log2(falsePositiveRate)
	if bits < 1 {
		bits = 1
	}
	return uint32(bits + 0.9999999)
}

const ln2 = 0.6931471805599453

type policy struct {
	bitsPerKey uint32
	k          uint32 // number of hash probes per key
}

// NewBloomFilterPolicy returns a FilterPolicy targeting bitsPerKey
// bits of filter per added key, with the number of hash probes picked
// the same way LevelDB-family policies do: k = bitsPerKey * ln(2),
// clamped to [1, 30].
func NewBloomFilterPolicy(bitsPerKey uint32) FilterPolicy {
	k := uint32(float64(bitsPerKey) * ln2)
	if k < 1 {
		k = 1
	}
	if k > 30 {
		k = 30
	}
	return &policy{bitsPerKey: bitsPerKey, k: k}
}

func (p *policy) Name() string { return "ckv.BuiltinBloomFilter" }

func (p *policy) CreateFilter(keys [][]byte) []byte {
	bits := uint32(len(keys)) * p.bitsPerKey
	if bits < 64 {
		bits = 64
	}
	bytes := (bits + 7) / 8
	bits = bytes * 8

	out := make([]byte, bytes+1)
	out[bytes] = byte(p.k)

	for _, key := range keys {
		h := metro.Hash64(key, 0)
		delta := (h >> 17) | (h << 47) // rotate, the double-hashing trick
		for i := uint32(0); i < p.k; i++ {
			bitpos := h % uint64(bits)
			out[bitpos/8] |= 1 << (bitpos % 8)
			h += delta
		}
	}
	return out
}

func (p *policy) MayContain(filter, key []byte) bool {
	n := len(filter)
	if n < 2 {
		return false
	}
	bits := uint32(n-1) * 8
	k := uint32(filter[n-1])
	if k > 30 {
		// Reserved for potentially new filter encodings this policy
		// does not understand; treat conservatively as "might match".
		return true
	}

	h := metro.Hash64(key, 0)
	delta := (h >> 17) | (h << 47)
	for i := uint32(0); i < k; i++ {
		bitpos := h % uint64(bits)
		if filter[bitpos/8]&(1<<(bitpos%8)) == 0 {
			return false
		}
		h += delta
	}
	return true
}
