package recdb

import (
	"log"
	"reflect"
)

// RWLocker is the externally supplied shared/exclusive lock the engine is
// designed to be used under. *sync.RWMutex satisfies it.
type RWLocker interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

type Options struct {
	Logf    func(format string, args ...any)
	Verbose bool

	// Lock, when set, is acquired by the Read and Write helpers. The engine
	// itself never locks.
	Lock RWLocker
}

// fieldState holds everything Storage tracks per declared field: the fixed
// runtime type, the encoded default value that seeds the indices of every
// new record, and the equality/ordering index pair.
type fieldState struct {
	name   string
	typ    reflect.Type
	defKey []byte
	index  *fieldIndex
}

// Storage owns the field schema, the live-record set, and per declared
// field an equality/ordering index pair kept in lockstep with record
// contents. The schema and the index tables both live in cell maps; the
// index cells carry release callbacks that tear the index structures down,
// invoked on Close.
type Storage struct {
	logf    func(format string, args ...any)
	verbose bool
	lock    RWLocker

	schema  *CellMap // field name -> default value cell
	indexes *CellMap // field name -> *fieldState cell, release = index teardown
	order   []string // fields in declaration order
	records map[*Record]struct{}
}

func NewStorage(opt Options) *Storage {
	logf := opt.Logf
	if logf == nil {
		logf = log.Printf
	}
	return &Storage{
		logf:    logf,
		verbose: opt.Verbose,
		lock:    opt.Lock,
		schema:  NewCellMap(),
		indexes: NewCellMap(),
		records: make(map[*Record]struct{}),
	}
}

// Read runs f under the external lock's shared mode, if a lock was supplied.
func (s *Storage) Read(f func()) {
	if s.lock != nil {
		s.lock.RLock()
		defer s.lock.RUnlock()
	}
	f()
}

// Write runs f under the external lock's exclusive mode, if a lock was
// supplied.
func (s *Storage) Write(f func()) {
	if s.lock != nil {
		s.lock.Lock()
		defer s.lock.Unlock()
	}
	f()
}

// DeclareField registers a field with its default value, fixing the field's
// type for the Storage's lifetime, and allocates its index pair. Every
// future CreateRecord seeds both indices with the default. Declaring an
// already-declared name fails and changes nothing.
func DeclareField[T any](s *Storage, name string, def T) bool {
	typ := reflect.TypeOf(def)
	if typ == nil {
		s.diag(fieldErrf(name, nil, "default value has no runtime type"))
		return false
	}
	if s.indexes.Has(name) {
		s.diag(fieldErrf(name, nil, "already declared"))
		return false
	}

	fs := &fieldState{
		name:   name,
		typ:    typ,
		defKey: appendFieldKey(nil, reflect.ValueOf(def)),
		index:  newFieldIndex(),
	}
	MapAdd(s.schema, name, def)
	MapAddRelease(s.indexes, name, fs, fs.index.clear)
	s.order = append(s.order, name)

	if s.verbose {
		s.logf("recdb: DECLARE %s %v default=%v", name, typ, def)
	}
	return true
}

// CreateRecord clones the schema into a new record, inserts it into every
// field's index pair under that field's default value, and returns a bound
// ref.
func (s *Storage) CreateRecord() RecordRef {
	rec := newRecord(s.schema)
	s.records[rec] = struct{}{}
	s.eachField(func(fs *fieldState) {
		fs.index.insert(fs.defKey, rec)
	})
	if s.verbose {
		s.logf("recdb: CREATE %s", rec.id)
	}
	return s.refTo(rec)
}

// FindByField resolves a record by the current value of any declared field
// via that field's equality index. It fails on an undeclared field, a type
// other than the field's declared type, or a value no live record holds.
func FindByField[T any](s *Storage, name string, value T) (RecordRef, bool) {
	fs, ok := s.fieldState(name)
	if !ok {
		return RecordRef{}, false
	}
	if rt := reflect.TypeOf(value); rt != fs.typ {
		s.diag(typeMismatchErrf(name, rt, fs.typ))
		return RecordRef{}, false
	}
	rec := fs.index.eq.first(appendFieldKey(nil, reflect.ValueOf(value)))
	if rec == nil {
		if s.verbose {
			s.logf("recdb: LOOKUP.NOTFOUND %s/%v", name, value)
		}
		return RecordRef{}, false
	}
	if s.verbose {
		s.logf("recdb: LOOKUP %s/%v => %s", name, value, rec.id)
	}
	return s.refTo(rec), true
}

// FindAllByField returns a ref for every record currently holding the given
// value, in unspecified order.
func FindAllByField[T any](s *Storage, name string, value T) []RecordRef {
	fs, ok := s.fieldState(name)
	if !ok {
		return nil
	}
	if rt := reflect.TypeOf(value); rt != fs.typ {
		s.diag(typeMismatchErrf(name, rt, fs.typ))
		return nil
	}
	recs := fs.index.eq.all(appendFieldKey(nil, reflect.ValueOf(value)))
	if len(recs) == 0 {
		return nil
	}
	out := make([]RecordRef, len(recs))
	for i, rec := range recs {
		out[i] = s.refTo(rec)
	}
	return out
}

// EraseRecord destroys the record a ref points at: the validity flag is
// cleared first, then the record's entry is purged from both indices of
// every field, then the record leaves the live set. Every outstanding ref
// to the record degrades to no-ops.
func (s *Storage) EraseRecord(ref RecordRef) bool {
	if ref.store != s || !ref.IsValid() {
		return false
	}
	rec := ref.rec
	rec.invalidate()
	s.eachField(func(fs *fieldState) {
		if cell, ok := rec.cells.Get(fs.name); ok {
			fs.index.remove(appendFieldKey(nil, cell.rawValue()), rec)
		}
	})
	delete(s.records, rec)
	if s.verbose {
		s.logf("recdb: ERASE %s", rec.id)
	}
	return true
}

// Close tears the storage down: every live record is invalidated, then each
// per-field index cell is erased, which fires its release callback and
// frees the index structures, then the live set is dropped. Outstanding
// refs all report IsValid() == false afterwards.
func (s *Storage) Close() {
	for rec := range s.records {
		rec.invalidate()
	}
	for _, name := range s.order {
		s.indexes.Erase(name)
	}
	s.schema.Clear()
	s.order = nil
	s.records = make(map[*Record]struct{})
}

func (s *Storage) RecordCount() int {
	return len(s.records)
}

// Fields returns the declared field names in declaration order.
func (s *Storage) Fields() []string {
	return append([]string(nil), s.order...)
}

func (s *Storage) HasField(name string) bool {
	return s.indexes.Has(name)
}

// FieldType returns the declared type of a field, or nil if undeclared.
func (s *Storage) FieldType(name string) reflect.Type {
	fs, ok := s.fieldState(name)
	if !ok {
		return nil
	}
	return fs.typ
}

func (s *Storage) fieldState(name string) (*fieldState, bool) {
	return MapValue[*fieldState](s.indexes, name)
}

func (s *Storage) eachField(f func(fs *fieldState)) {
	for _, name := range s.order {
		if fs, ok := s.fieldState(name); ok {
			f(fs)
		}
	}
}

func (s *Storage) refTo(rec *Record) RecordRef {
	return RecordRef{rec: rec, store: s, alive: rec.alive}
}

func (s *Storage) diag(err error) {
	s.logf("recdb: %v", err)
}
