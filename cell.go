package recdb

import (
	"log/slog"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
)

// Cell holds one value of any type behind a uniform handle. It records the
// value's runtime type at set time and only hands the value back to a caller
// requesting that exact type. A cell may carry a release callback for values
// that own an external resource; the callback runs only on an explicit
// Release (or a container erase), never on plain abandonment or overwrite.
//
// Invariant: a type is recorded if and only if a value is present.
type Cell struct {
	typ     reflect.Type
	value   any
	clone   func(any) any
	release func()
}

func NewCell[T any](v T) *Cell {
	c := &Cell{}
	SetCell(c, v)
	return c
}

func NewCellRelease[T any](v T, release func()) *Cell {
	c := &Cell{}
	SetCellRelease(c, v, release)
	return c
}

// SetCell stores a fresh copy of v and records T's runtime identity. An
// existing release callback is preserved; the callback is not invoked.
func SetCell[T any](c *Cell, v T) {
	c.typ = reflect.TypeOf(v)
	c.value = cloneValue(v)
	c.clone = func(src any) any { return cloneValue(src.(T)) }
}

// SetCellRelease is SetCell plus a replacement release callback.
func SetCellRelease[T any](c *Cell, v T, release func()) {
	SetCell(c, v)
	c.release = release
}

// CellValue returns a copy of the stored value if a value is present and T
// is identical to the stored type. On a type mismatch it emits a diagnostic
// and returns the zero value; the cell is never touched.
func CellValue[T any](c *Cell) (T, bool) {
	var zero T
	if c == nil || c.typ == nil {
		return zero, false
	}
	if rt := reflect.TypeOf(zero); rt != c.typ {
		slog.Warn("recdb: cell read failed", "err", typeMismatchErrf("", rt, c.typ))
		return zero, false
	}
	return c.clone(c.value).(T), true
}

func (c *Cell) HasValue() bool {
	return c != nil && c.typ != nil
}

func (c *Cell) Type() reflect.Type {
	if c == nil {
		return nil
	}
	return c.typ
}

// Clone returns a deep copy of the cell. The copy does not inherit the
// release callback: an external resource has exactly one owner.
func (c *Cell) Clone() *Cell {
	out := &Cell{typ: c.typ, clone: c.clone}
	if c.typ != nil {
		out.value = c.clone(c.value)
	}
	return out
}

// Release invokes the release callback, at most once over the cell's
// lifetime. The stored value itself stays in place.
func (c *Cell) Release() {
	if c.release != nil {
		f := c.release
		c.release = nil
		f()
	}
}

// setFrom adopts another cell's payload in place, keeping this cell's
// release callback unless the source carries one of its own.
func (c *Cell) setFrom(src *Cell) {
	c.typ = src.typ
	c.value = src.value
	c.clone = src.clone
	if src.release != nil {
		c.release = src.release
	}
}

func (c *Cell) rawValue() reflect.Value {
	return reflect.ValueOf(c.value)
}

// cloneValue produces an independent copy of v. Scalars, strings and
// reference-like values copy by assignment (a stored pointer stays a
// pointer, which is why release callbacks exist); container and struct
// values round-trip through msgpack so no backing storage is shared.
func cloneValue[T any](v T) T {
	rt := reflect.TypeOf(v)
	if rt == nil {
		return v
	}
	switch rt.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.Struct:
		raw, err := msgpack.Marshal(v)
		if err != nil {
			return v
		}
		var out T
		if err := msgpack.Unmarshal(raw, &out); err != nil {
			return v
		}
		return out
	default:
		return v
	}
}
