package recdb

import "testing"

func TestEqualityIndex(t *testing.T) {
	fi := newFieldIndex()
	r1, r2 := newRecord(NewCellMap()), newRecord(NewCellMap())

	fi.insert([]byte("a"), r1)
	fi.insert([]byte("a"), r2)
	fi.insert([]byte("b"), r2)

	if fi.eq.first([]byte("a")) == nil {
		t.Fatalf("** lookup a should hit")
	}
	deepEqual(t, len(fi.eq.all([]byte("a"))), 2)
	deepEqual(t, len(fi.eq.all([]byte("b"))), 1)
	if fi.eq.first([]byte("c")) != nil {
		t.Fatalf("** lookup c should miss")
	}

	// removal is per (key, record) pair
	istrue(t, fi.remove([]byte("a"), r1))
	deepEqual(t, len(fi.eq.all([]byte("a"))), 1)
	if fi.eq.all([]byte("a"))[0] != r2 {
		t.Fatalf("** wrong record removed")
	}
	isfalse(t, fi.remove([]byte("a"), r1)) // already gone
	istrue(t, fi.remove([]byte("a"), r2))
	isfalse(t, fi.remove([]byte("missing"), r1))
}

func TestOrderedIndex(t *testing.T) {
	var ix orderedIndex
	r1, r2, r3 := newRecord(NewCellMap()), newRecord(NewCellMap()), newRecord(NewCellMap())

	ix.insert([]byte("m"), r2)
	ix.insert([]byte("a"), r1)
	ix.insert([]byte("z"), r3)
	ix.insert([]byte("m"), r3) // second record under one key

	deepEqual(t, len(ix.items), 3)
	deepEqual(t, string(ix.items[0].key), "a")
	deepEqual(t, string(ix.items[1].key), "m")
	deepEqual(t, string(ix.items[2].key), "z")
	deepEqual(t, len(ix.items[1].recs), 2)

	deepEqual(t, ix.seek([]byte("b")), 1) // first key >= b
	deepEqual(t, ix.seek([]byte("zz")), 3)

	istrue(t, ix.remove([]byte("m"), r2))
	deepEqual(t, len(ix.items), 3) // r3 still holds m
	istrue(t, ix.remove([]byte("m"), r3))
	deepEqual(t, len(ix.items), 2) // empty key item dropped
	isfalse(t, ix.remove([]byte("m"), r3))
}

func TestFieldIndexLockstep(t *testing.T) {
	fi := newFieldIndex()
	rec := newRecord(NewCellMap())

	fi.insert([]byte("old"), rec)
	istrue(t, fi.remove([]byte("old"), rec))
	fi.insert([]byte("new"), rec)

	// both sides moved together
	if fi.eq.first([]byte("old")) != nil {
		t.Fatalf("** equality index kept stale entry")
	}
	if fi.eq.first([]byte("new")) != rec {
		t.Fatalf("** equality index missing new entry")
	}
	deepEqual(t, len(fi.ord.items), 1)
	deepEqual(t, string(fi.ord.items[0].key), "new")
}
