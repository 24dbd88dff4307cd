// Package cmp defines the total-order contract the builder and the
// memtable depend on. Grounded on the teacher's utils/cmp package,
// which already shapes a comparator as a struct with a Compare
// method (see int_comparator.go); this package adds the Name and the
// two key-shortening operations spec.md §4.2 and §9 require and that
// the teacher's comparator never needed.
package cmp

// Comparator is a total order over keys, plus the two shortening
// operations the index block needs to keep its entries short.
type Comparator interface {
	// Compare returns <0, 0, >0 as a is less than, equal to, or
	// greater than b.
	Compare(a, b []byte) int

	// Name identifies the comparator on disk (e.g. in a metaindex
	// entry); changing the comparator underneath an existing table
	// would silently corrupt lookups, so readers check this.
	Name() string

	// FindShortestSeparator returns a key k with start <= k < limit,
	// possibly shorter than start; start itself is not modified. It
	// returns start if no shorter separator exists.
	FindShortestSeparator(start, limit []byte) []byte

	// FindShortSuccessor returns a value >= key that is a short as
	// possible to serve as the final index entry's key.
	FindShortSuccessor(key []byte) []byte
}

// bytewise is the default comparator: plain lexicographic order over
// the raw bytes.
type bytewise struct{}

// BytewiseComparator returns the default byte-lexicographic Comparator.
func BytewiseComparator() Comparator { return bytewise{} }

func (bytewise) Name() string { return "ckv.BytewiseComparator" }

func (bytewise) Compare(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// FindShortestSeparator finds the shortest byte string that is >= start
// and < limit by truncating start after the first byte at which it
// diverges from limit and bumping that byte, provided doing so still
// keeps the result < limit. This is the standard bytewise-comparator
// technique: it shortens the common case (ASCII-ish, diverging keys)
// while always falling back to the unmodified start when no shorter
// separator is safe.
func (c bytewise) FindShortestSeparator(start, limit []byte) []byte {
	minLen := len(start)
	if len(limit) < minLen {
		minLen = len(limit)
	}
	diffIndex := 0
	for diffIndex < minLen && start[diffIndex] == limit[diffIndex] {
		diffIndex++
	}

	if diffIndex >= minLen {
		// One is a prefix of the other; no shorter separator exists.
		return start
	}

	startByte := start[diffIndex]
	limitByte := limit[diffIndex]
	if startByte >= limitByte {
		return start
	}
	if startByte+1 < limitByte {
		out := make([]byte, diffIndex+1)
		copy(out, start[:diffIndex])
		out[diffIndex] = startByte + 1
		return out
	}
	return start
}

// FindShortSuccessor returns the shortest string >= key by truncating
// after the first byte that can be incremented without overflow.
func (c bytewise) FindShortSuccessor(key []byte) []byte {
	for i := 0; i < len(key); i++ {
		if key[i] != 0xff {
			out := make([]byte, i+1)
			copy(out, key[:i])
			out[i] = key[i] + 1
			return out
		}
	}
	// All bytes are 0xff; key has no short successor, keep it as is.
	return key
}
