package recdb

import "reflect"

// Range defines a range of field values for ordered scans. The constructors
// use mnemonics: O means open, I means inclusive, E means exclusive; the
// first letter is for the lower bound, the second for the upper bound.
type Range[T any] struct {
	Lower    T
	Upper    T
	HasLower bool
	HasUpper bool
	LowerInc bool
	UpperInc bool
	Reverse  bool
}

func RangeOO[T any]() Range[T] { return Range[T]{} }
func RangeIO[T any](l T) Range[T] {
	return Range[T]{Lower: l, HasLower: true, LowerInc: true}
}
func RangeEO[T any](l T) Range[T] {
	return Range[T]{Lower: l, HasLower: true}
}
func RangeOI[T any](u T) Range[T] {
	return Range[T]{Upper: u, HasUpper: true, UpperInc: true}
}
func RangeOE[T any](u T) Range[T] {
	return Range[T]{Upper: u, HasUpper: true}
}
func RangeII[T any](l, u T) Range[T] {
	return Range[T]{Lower: l, Upper: u, HasLower: true, HasUpper: true, LowerInc: true, UpperInc: true}
}
func RangeIE[T any](l, u T) Range[T] {
	return Range[T]{Lower: l, Upper: u, HasLower: true, HasUpper: true, LowerInc: true}
}
func RangeEI[T any](l, u T) Range[T] {
	return Range[T]{Lower: l, Upper: u, HasLower: true, HasUpper: true, UpperInc: true}
}
func RangeEE[T any](l, u T) Range[T] {
	return Range[T]{Lower: l, Upper: u, HasLower: true, HasUpper: true}
}

func (r Range[T]) Reversed() Range[T] { r.Reverse = true; return r }

// EachByField walks the field's ordering index over the given range,
// yielding a ref per matching record in field order (reverse order for a
// reversed range). Fails silently on an undeclared field; a bound type
// other than the field's declared type emits a diagnostic.
func EachByField[T any](s *Storage, name string, rang Range[T], yield func(ref RecordRef) bool) {
	fs, ok := s.fieldState(name)
	if !ok {
		return
	}
	if rt := reflect.TypeOf((*T)(nil)).Elem(); rt != fs.typ {
		s.diag(typeMismatchErrf(name, rt, fs.typ))
		return
	}

	ord := &fs.index.ord
	start, end := 0, len(ord.items)
	if rang.HasLower {
		i, exact := ord.find(appendFieldKey(nil, reflect.ValueOf(rang.Lower)))
		if exact && !rang.LowerInc {
			i++
		}
		start = i
	}
	if rang.HasUpper {
		i, exact := ord.find(appendFieldKey(nil, reflect.ValueOf(rang.Upper)))
		if exact && rang.UpperInc {
			i++
		}
		end = i
	}
	if start >= end {
		return
	}

	if rang.Reverse {
		for i := end - 1; i >= start; i-- {
			for j := len(ord.items[i].recs) - 1; j >= 0; j-- {
				if !yield(s.refTo(ord.items[i].recs[j])) {
					return
				}
			}
		}
	} else {
		for i := start; i < end; i++ {
			for _, rec := range ord.items[i].recs {
				if !yield(s.refTo(rec)) {
					return
				}
			}
		}
	}
}

// ScanByField collects the refs EachByField would yield.
func ScanByField[T any](s *Storage, name string, rang Range[T]) []RecordRef {
	var out []RecordRef
	EachByField(s, name, rang, func(ref RecordRef) bool {
		out = append(out, ref)
		return true
	})
	return out
}

// MinByField returns a ref to a record holding the smallest current value
// of the field, false if no records exist.
func MinByField(s *Storage, name string) (RecordRef, bool) {
	fs, ok := s.fieldState(name)
	if !ok || len(fs.index.ord.items) == 0 {
		return RecordRef{}, false
	}
	return s.refTo(fs.index.ord.items[0].recs[0]), true
}

// MaxByField returns a ref to a record holding the largest current value of
// the field, false if no records exist.
func MaxByField(s *Storage, name string) (RecordRef, bool) {
	fs, ok := s.fieldState(name)
	if !ok || len(fs.index.ord.items) == 0 {
		return RecordRef{}, false
	}
	last := fs.index.ord.items[len(fs.index.ord.items)-1]
	return s.refTo(last.recs[len(last.recs)-1]), true
}
