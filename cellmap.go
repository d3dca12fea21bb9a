package recdb

// cellTable is the shared core of the keyed cell containers. The bucket
// type parameter picks the duplicate policy: one cell per key (CellMap) or
// many (CellMultiMap).
type cellTable[B any] struct {
	cells map[string]B
}

func (t *cellTable[B]) Has(name string) bool {
	_, ok := t.cells[name]
	return ok
}

func (t *cellTable[B]) Len() int {
	return len(t.cells)
}

// Clear drops every entry without invoking release callbacks; cells holding
// external resources must be erased (or released) explicitly first.
func (t *cellTable[B]) Clear() {
	clear(t.cells)
}

// CellMap is a string-keyed container with one cell per key.
type CellMap struct {
	cellTable[*Cell]
}

func NewCellMap() *CellMap {
	return &CellMap{cellTable[*Cell]{cells: make(map[string]*Cell)}}
}

// Add inserts the cell if the key is absent and reports whether it did.
func (m *CellMap) Add(name string, c *Cell) bool {
	if _, ok := m.cells[name]; ok {
		return false
	}
	m.cells[name] = c
	return true
}

// Set adds the cell under an absent key, or updates the existing cell in
// place, keeping its release callback unless the new cell carries one.
func (m *CellMap) Set(name string, c *Cell) {
	if prev, ok := m.cells[name]; ok {
		prev.setFrom(c)
	} else {
		m.cells[name] = c
	}
}

func (m *CellMap) Get(name string) (*Cell, bool) {
	c, ok := m.cells[name]
	return c, ok
}

// Erase invokes the cell's release callback, then removes the entry.
func (m *CellMap) Erase(name string) bool {
	c, ok := m.cells[name]
	if !ok {
		return false
	}
	c.Release()
	delete(m.cells, name)
	return true
}

func (m *CellMap) All(yield func(name string, c *Cell) bool) {
	for name, c := range m.cells {
		if !yield(name, c) {
			return
		}
	}
}

// Clone deep-copies every cell. Release callbacks are not carried over.
func (m *CellMap) Clone() *CellMap {
	out := NewCellMap()
	for name, c := range m.cells {
		out.cells[name] = c.Clone()
	}
	return out
}

func MapAdd[T any](m *CellMap, name string, v T) bool {
	if m.Has(name) {
		return false
	}
	m.cells[name] = NewCell(v)
	return true
}

func MapAddRelease[T any](m *CellMap, name string, v T, release func()) bool {
	if m.Has(name) {
		return false
	}
	m.cells[name] = NewCellRelease(v, release)
	return true
}

func MapSet[T any](m *CellMap, name string, v T) {
	if c, ok := m.cells[name]; ok {
		SetCell(c, v)
	} else {
		m.cells[name] = NewCell(v)
	}
}

func MapSetRelease[T any](m *CellMap, name string, v T, release func()) {
	if c, ok := m.cells[name]; ok {
		SetCellRelease(c, v, release)
	} else {
		m.cells[name] = NewCellRelease(v, release)
	}
}

func MapValue[T any](m *CellMap, name string) (T, bool) {
	c, ok := m.cells[name]
	if !ok {
		var zero T
		return zero, false
	}
	return CellValue[T](c)
}

// CellMultiMap is a string-keyed container allowing many cells per key.
// Used for index buckets, where one value maps to several records.
type CellMultiMap struct {
	cellTable[[]*Cell]
}

func NewCellMultiMap() *CellMultiMap {
	return &CellMultiMap{cellTable[[]*Cell]{cells: make(map[string][]*Cell)}}
}

// Add always inserts; duplicates under one key are kept.
func (m *CellMultiMap) Add(name string, c *Cell) {
	m.cells[name] = append(m.cells[name], c)
}

// GetAll returns the live bucket for a key; callers must not retain it
// across mutations.
func (m *CellMultiMap) GetAll(name string) []*Cell {
	return m.cells[name]
}

// Erase releases every cell under the key, then removes the whole bucket.
func (m *CellMultiMap) Erase(name string) bool {
	bucket, ok := m.cells[name]
	if !ok {
		return false
	}
	for _, c := range bucket {
		c.Release()
	}
	delete(m.cells, name)
	return true
}

func (m *CellMultiMap) All(yield func(name string, c *Cell) bool) {
	for name, bucket := range m.cells {
		for _, c := range bucket {
			if !yield(name, c) {
				return
			}
		}
	}
}

func MultiAdd[T any](m *CellMultiMap, name string, v T) {
	m.cells[name] = append(m.cells[name], NewCell(v))
}

func MultiValues[T any](m *CellMultiMap, name string) []T {
	bucket := m.cells[name]
	if len(bucket) == 0 {
		return nil
	}
	out := make([]T, 0, len(bucket))
	for _, c := range bucket {
		if v, ok := CellValue[T](c); ok {
			out = append(out, v)
		}
	}
	return out
}
