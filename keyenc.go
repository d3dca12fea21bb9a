package recdb

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"sort"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Index keys are order-preserving byte strings: for any two values a, b of
// a field's type, bytes.Compare(key(a), key(b)) matches the natural order
// of a and b. Types without a native encoding use a canonical composite
// encoding, which keeps equality exact; ordering then follows byte order.

var timeType = reflect.TypeOf((*time.Time)(nil)).Elem()
var binaryMarshalerType = reflect.TypeOf((*encoding.BinaryMarshaler)(nil)).Elem()
var textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()

const signBit = 1 << 63

func appendKeyUint64(buf []byte, v uint64) []byte {
	return append(buf,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// orderedFloatBits maps a float64 onto a uint64 whose unsigned order
// matches the float order: positive values get the sign bit set, negative
// values are bit-flipped entirely.
func orderedFloatBits(f float64) uint64 {
	bits := math.Float64bits(f)
	if bits&signBit != 0 {
		return ^bits
	}
	return bits | signBit
}

func appendFieldKey(buf []byte, val reflect.Value) []byte {
	switch val.Kind() {
	case reflect.Bool:
		if val.Bool() {
			return append(buf, 1)
		}
		return append(buf, 0)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return appendKeyUint64(buf, uint64(val.Int())^signBit)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return appendKeyUint64(buf, val.Uint())
	case reflect.Float32, reflect.Float64:
		return appendKeyUint64(buf, orderedFloatBits(val.Float()))
	case reflect.String:
		return append(buf, val.String()...)
	case reflect.Slice:
		if val.Type().Elem().Kind() == reflect.Uint8 {
			return append(buf, val.Bytes()...)
		}
	}
	return appendCompositeKey(buf, val)
}

// appendCompositeKey canonically encodes values that have no native
// order-preserving encoding. Every component is tagged and length-prefixed,
// and map entries sort by their encoded key bytes, so equal values always
// produce equal keys regardless of map iteration order. (msgpack's
// SetSortMapKeys covers only map[string]string and map[string]any, so maps
// are framed by hand.)
func appendCompositeKey(buf []byte, val reflect.Value) []byte {
	switch val.Kind() {
	case reflect.Pointer, reflect.Interface:
		if val.IsNil() {
			return append(buf, 'N')
		}
		return appendCompositeKey(buf, val.Elem())
	case reflect.Map:
		if val.IsNil() {
			return append(buf, 'N')
		}
		type mapPair struct{ k, v []byte }
		pairs := make([]mapPair, 0, val.Len())
		iter := val.MapRange()
		for iter.Next() {
			pairs = append(pairs, mapPair{
				k: appendCompositeKey(nil, iter.Key()),
				v: appendCompositeKey(nil, iter.Value()),
			})
		}
		sort.Slice(pairs, func(i, j int) bool {
			return bytes.Compare(pairs[i].k, pairs[j].k) < 0
		})
		buf = append(buf, 'M')
		buf = binary.AppendUvarint(buf, uint64(len(pairs)))
		for _, p := range pairs {
			buf = appendLenPrefixed(buf, p.k)
			buf = appendLenPrefixed(buf, p.v)
		}
		return buf
	case reflect.Struct:
		typ := val.Type()
		if typ == timeType || typ.Implements(binaryMarshalerType) || typ.Implements(textMarshalerType) {
			return appendLeafKey(buf, val)
		}
		buf = append(buf, 'S')
		for i, n := 0, val.NumField(); i < n; i++ {
			if !typ.Field(i).IsExported() {
				continue
			}
			buf = appendLenPrefixed(buf, appendCompositeKey(nil, val.Field(i)))
		}
		return buf
	case reflect.Slice, reflect.Array:
		if val.Kind() == reflect.Slice && val.IsNil() {
			return append(buf, 'N')
		}
		buf = append(buf, 'A')
		buf = binary.AppendUvarint(buf, uint64(val.Len()))
		for i, n := 0, val.Len(); i < n; i++ {
			buf = appendLenPrefixed(buf, appendCompositeKey(nil, val.Index(i)))
		}
		return buf
	default:
		return appendLeafKey(buf, val)
	}
}

func appendLenPrefixed(buf, b []byte) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(b)))
	return append(buf, b...)
}

// appendLeafKey encodes a leaf component as msgpack bytes.
func appendLeafKey(buf []byte, val reflect.Value) []byte {
	var bb bytes.Buffer
	enc := msgpack.GetEncoder()
	enc.Reset(&bb)
	enc.SetSortMapKeys(true)
	err := enc.EncodeValue(val)
	msgpack.PutEncoder(enc)
	if err != nil {
		panic(fmt.Errorf("recdb: cannot encode index key of type %v: %w", val.Type(), err))
	}
	buf = append(buf, 'L')
	return append(buf, bb.Bytes()...)
}
