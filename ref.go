package recdb

import (
	"reflect"
	"sync/atomic"

	"github.com/google/uuid"
)

// RecordRef is a non-owning handle to a record inside a Storage. Any number
// of refs may target the same record and observe each other's writes. A ref
// carries a weak copy of the record's validity flag; once the record is
// erased, every operation on the ref degrades to a no-op returning false.
//
// Refs are only handed out by Storage (CreateRecord, FindByField, scans).
type RecordRef struct {
	rec   *Record
	store *Storage
	alive *atomic.Bool
}

// IsValid reports whether the target record still exists.
func (ref RecordRef) IsValid() bool {
	return ref.alive != nil && ref.alive.Load()
}

// Unlink detaches this ref from its target. The record and any other refs
// are unaffected.
func (ref *RecordRef) Unlink() {
	ref.rec = nil
	ref.store = nil
	ref.alive = nil
}

// UniqueID returns an identifier stable for the record's lifetime: equal
// for any two refs targeting the same record, distinct across records, and
// independent of field contents. Returns uuid.Nil for an unbound ref.
func (ref RecordRef) UniqueID() uuid.UUID {
	if ref.rec == nil {
		return uuid.Nil
	}
	return ref.rec.id
}

// SameRecord reports whether two refs target the same record.
func (ref RecordRef) SameRecord(other RecordRef) bool {
	return ref.rec != nil && ref.rec == other.rec
}

// GetField reads the current value of a field. It fails if the ref is
// invalid, the field is absent, or T differs from the field's type.
func GetField[T any](ref RecordRef, field string) (T, bool) {
	if !ref.IsValid() {
		var zero T
		return zero, false
	}
	return MapValue[T](ref.rec.cells, field)
}

// SetField writes a field's value and relocates the record in both of the
// field's indices. It fails without any state change if the ref is invalid,
// the field is undeclared, or T differs from the field's declared type.
//
// The payload write and the two index relocations form one logical unit;
// callers running concurrently must hold the external lock in exclusive
// mode around the whole call.
func SetField[T any](ref RecordRef, field string, value T) bool {
	if !ref.IsValid() {
		return false
	}
	s := ref.store
	fs, ok := s.fieldState(field)
	if !ok {
		return false
	}
	if rt := reflect.TypeOf(value); rt != fs.typ {
		s.diag(typeMismatchErrf(field, rt, fs.typ))
		return false
	}

	cell, ok := ref.rec.cells.Get(field)
	if !ok {
		return false
	}
	oldKey := appendFieldKey(nil, cell.rawValue())
	newKey := appendFieldKey(nil, reflect.ValueOf(value))

	fs.index.remove(oldKey, ref.rec)
	fs.index.insert(newKey, ref.rec)
	SetCell(cell, value)

	if s.verbose {
		s.logf("recdb: SET %s[%s] = %v", field, ref.rec.id, value)
	}
	return true
}
