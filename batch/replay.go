package batch

import (
	"ckv/codec"
	"ckv/ikey"
)

// Handler receives one callback per record, in the order they were
// added to the batch, independent of the sequence numbers InsertInto
// would assign (spec.md §4.4, "Iterate").
type Handler interface {
	Put(key, value []byte) error
	Delete(key []byte) error
	Merge(key, value []byte) error
	LogData(blob []byte) error
}

// Inserter is the narrow slice of a memtable's insert interface
// InsertInto drives: spec.md §1 treats the memtable itself as an
// external collaborator and only consumes this.
type Inserter interface {
	Insert(seq uint64, typ ikey.ValueType, userKey, value []byte) error
}

// Iterate walks b's payload and dispatches each record to handler's
// matching method, in insertion order.
func (b *WriteBatch) Iterate(handler Handler) error {
	return walk(b.rep, func(tag ikey.ValueType, key, value []byte) error {
		switch tag {
		case ikey.TypeValue:
			return handler.Put(key, value)
		case ikey.TypeDeletion:
			return handler.Delete(key)
		case ikey.TypeMerge:
			return handler.Merge(key, value)
		case ikey.TypeLogData:
			return handler.LogData(value)
		}
		return corrupt("tag")
	})
}

// InsertInto replays b into inserter, assigning sequence numbers
// header.sequence, header.sequence+1, … to counted records in order.
// LogData records are skipped: they consume no sequence number and
// are not inserted. Records successfully inserted before a corrupt
// or truncated record remain applied; InsertInto returns the first
// error encountered (spec.md §4.4, §8 "partial application is
// visible at this layer").
func (b *WriteBatch) InsertInto(inserter Inserter) error {
	seq := b.Sequence()
	var i uint64
	return walk(b.rep, func(tag ikey.ValueType, key, value []byte) error {
		if tag == ikey.TypeLogData {
			return nil
		}
		if err := inserter.Insert(seq+i, tag, key, value); err != nil {
			return err
		}
		i++
		return nil
	})
}

// walk decodes rep's payload record by record, calling fn for each.
// fn's value argument carries the blob for LogData records and nil
// for Deletion. walk stops at the first decode error or the first
// error fn returns, leaving every record processed up to that point
// already delivered to fn.
func walk(rep []byte, fn func(tag ikey.ValueType, key, value []byte) error) error {
	if len(rep) < headerLen {
		return ErrEmpty
	}
	body := rep[headerLen:]
	for len(body) > 0 {
		tag := ikey.ValueType(body[0])
		body = body[1:]

		switch tag {
		case ikey.TypeValue, ikey.TypeMerge:
			key, rest, ok := codec.GetLengthPrefixedBytes(body)
			if !ok {
				return corrupt(nameFor(tag))
			}
			body = rest
			value, rest, ok := codec.GetLengthPrefixedBytes(body)
			if !ok {
				return corrupt(nameFor(tag))
			}
			body = rest
			if err := fn(tag, key, value); err != nil {
				return err
			}
		case ikey.TypeDeletion:
			key, rest, ok := codec.GetLengthPrefixedBytes(body)
			if !ok {
				return corrupt(nameFor(tag))
			}
			body = rest
			if err := fn(tag, key, nil); err != nil {
				return err
			}
		case ikey.TypeLogData:
			blob, rest, ok := codec.GetLengthPrefixedBytes(body)
			if !ok {
				return corrupt(nameFor(tag))
			}
			body = rest
			if err := fn(tag, nil, blob); err != nil {
				return err
			}
		default:
			return corrupt("tag")
		}
	}
	return nil
}

func nameFor(tag ikey.ValueType) string {
	switch tag {
	case ikey.TypeValue:
		return "Put"
	case ikey.TypeDeletion:
		return "Delete"
	case ikey.TypeMerge:
		return "Merge"
	case ikey.TypeLogData:
		return "LogData"
	default:
		return "tag"
	}
}
