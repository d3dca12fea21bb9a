package recdb

import (
	"bytes"
	"math"
	"reflect"
	"testing"
)

func key(v any) []byte {
	return appendFieldKey(nil, reflect.ValueOf(v))
}

func TestKeyEncOrderInts(t *testing.T) {
	vals := []int{math.MinInt, -100, -1, 0, 1, 42, math.MaxInt}
	for i := 1; i < len(vals); i++ {
		if bytes.Compare(key(vals[i-1]), key(vals[i])) >= 0 {
			t.Errorf("** key(%d) should sort before key(%d)", vals[i-1], vals[i])
		}
	}
}

func TestKeyEncOrderUints(t *testing.T) {
	vals := []uint32{0, 1, 255, 256, math.MaxUint32}
	for i := 1; i < len(vals); i++ {
		if bytes.Compare(key(vals[i-1]), key(vals[i])) >= 0 {
			t.Errorf("** key(%d) should sort before key(%d)", vals[i-1], vals[i])
		}
	}
}

func TestKeyEncOrderFloats(t *testing.T) {
	vals := []float64{math.Inf(-1), -1e9, -1.5, -0.0, 1e-9, 1.5, 1e9, math.Inf(1)}
	for i := 1; i < len(vals); i++ {
		if bytes.Compare(key(vals[i-1]), key(vals[i])) >= 0 {
			t.Errorf("** key(%v) should sort before key(%v)", vals[i-1], vals[i])
		}
	}
}

func TestKeyEncOrderStrings(t *testing.T) {
	vals := []string{"", "a", "ab", "b", "ba"}
	for i := 1; i < len(vals); i++ {
		if bytes.Compare(key(vals[i-1]), key(vals[i])) >= 0 {
			t.Errorf("** key(%q) should sort before key(%q)", vals[i-1], vals[i])
		}
	}
}

func TestKeyEncBool(t *testing.T) {
	if bytes.Compare(key(false), key(true)) >= 0 {
		t.Errorf("** key(false) should sort before key(true)")
	}
}

func TestKeyEncEquality(t *testing.T) {
	if !bytes.Equal(key(42), key(42)) {
		t.Errorf("** equal ints should produce equal keys")
	}
	if bytes.Equal(key(42), key(43)) {
		t.Errorf("** distinct ints should produce distinct keys")
	}
	if !bytes.Equal(key("x"), key("x")) {
		t.Errorf("** equal strings should produce equal keys")
	}
}

func TestKeyEncCompositeDeterministic(t *testing.T) {
	type point struct{ X, Y int }
	if !bytes.Equal(key(point{1, 2}), key(point{1, 2})) {
		t.Errorf("** equal structs should produce equal keys")
	}
	if bytes.Equal(key(point{1, 2}), key(point{2, 1})) {
		t.Errorf("** distinct structs should produce distinct keys")
	}

	// map encoding sorts keys, so iteration order never leaks into the key
	a := map[string]int{"a": 1, "b": 2, "c": 3, "d": 4}
	for i := 0; i < 16; i++ {
		if !bytes.Equal(key(a), key(a)) {
			t.Fatalf("** map key encoding is not deterministic")
		}
	}
}

func TestKeyEncMapDeterministic(t *testing.T) {
	// maps beyond map[string]string / map[string]any, where msgpack's
	// SetSortMapKeys does not help
	a := map[int]string{1: "a", 2: "b", 3: "c", 4: "d", 5: "e", 6: "f", 7: "g", 8: "h"}
	for i := 0; i < 32; i++ {
		if !bytes.Equal(key(a), key(a)) {
			t.Fatalf("** map key encoding is not deterministic")
		}
	}

	b := map[int]string{8: "h", 7: "g", 6: "f", 5: "e", 4: "d", 3: "c", 2: "b", 1: "a"}
	if !bytes.Equal(key(a), key(b)) {
		t.Errorf("** equal maps should produce equal keys")
	}
	c := map[int]string{1: "x", 2: "b", 3: "c", 4: "d", 5: "e", 6: "f", 7: "g", 8: "h"}
	if bytes.Equal(key(a), key(c)) {
		t.Errorf("** distinct maps should produce distinct keys")
	}
	if bytes.Equal(key(map[int]string{}), key(map[int]string(nil))) {
		t.Errorf("** empty and nil maps should produce distinct keys")
	}
}

func TestKeyEncMapInStructDeterministic(t *testing.T) {
	type tagged struct {
		Name string
		Tags map[string]int
	}
	a := tagged{Name: "n", Tags: map[string]int{"a": 1, "b": 2, "c": 3, "d": 4, "e": 5}}
	for i := 0; i < 32; i++ {
		if !bytes.Equal(key(a), key(a)) {
			t.Fatalf("** nested map key encoding is not deterministic")
		}
	}
	if bytes.Equal(key(a), key(tagged{Name: "n", Tags: map[string]int{"a": 1}})) {
		t.Errorf("** distinct structs should produce distinct keys")
	}
}

func TestKeyEncNestedComposites(t *testing.T) {
	a := []map[string]int{{"a": 1, "b": 2, "c": 3}, {"d": 4}}
	for i := 0; i < 32; i++ {
		if !bytes.Equal(key(a), key(a)) {
			t.Fatalf("** nested composite key encoding is not deterministic")
		}
	}
	if bytes.Equal(key(a), key([]map[string]int{{"d": 4}, {"a": 1, "b": 2, "c": 3}})) {
		t.Errorf("** element order should stay significant")
	}
}

func TestKeyEncByteSlice(t *testing.T) {
	if !bytes.Equal(key([]byte{1, 2}), []byte{1, 2}) {
		t.Errorf("** byte slices should encode raw")
	}
}
