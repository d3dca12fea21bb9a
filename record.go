package recdb

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Record is one stored row: a cell per declared field plus a shared
// validity flag. Records are owned exclusively by their Storage; clients
// only ever hold RecordRefs. The flag has one strong holder (the record)
// and a weak copy in every ref; it is cleared strictly before the record
// leaves the live set, so a ref can never observe a half-dead record.
type Record struct {
	id    uuid.UUID
	cells *CellMap
	alive *atomic.Bool
}

func newRecord(template *CellMap) *Record {
	alive := new(atomic.Bool)
	alive.Store(true)
	return &Record{
		id:    uuid.New(),
		cells: template.Clone(),
		alive: alive,
	}
}

func (rec *Record) invalidate() {
	rec.alive.Store(false)
}
