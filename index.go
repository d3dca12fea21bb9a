package recdb

import (
	"bytes"
	"slices"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// fieldIndex is the pair of structures maintained per declared field: a
// hash index for exact lookup and a sorted index for ordered traversal.
// For every live record both sides hold exactly one entry under the
// record's current encoded value; any relocation updates both together.
type fieldIndex struct {
	eq  equalityIndex
	ord orderedIndex
}

func newFieldIndex() *fieldIndex {
	return &fieldIndex{eq: equalityIndex{buckets: make(map[uint64][]eqEntry)}}
}

func (fi *fieldIndex) insert(key []byte, rec *Record) {
	fi.eq.insert(key, rec)
	fi.ord.insert(key, rec)
}

func (fi *fieldIndex) remove(key []byte, rec *Record) bool {
	ok1 := fi.eq.remove(key, rec)
	ok2 := fi.ord.remove(key, rec)
	return ok1 && ok2
}

func (fi *fieldIndex) clear() {
	fi.eq.buckets = nil
	fi.ord.items = nil
}

// equalityIndex maps xxhash of an encoded key to the records holding that
// key. Entries keep the full key, so hash collisions cannot alias lookups.
type equalityIndex struct {
	buckets map[uint64][]eqEntry
}

type eqEntry struct {
	key []byte
	rec *Record
}

func (ix *equalityIndex) insert(key []byte, rec *Record) {
	h := xxhash.Sum64(key)
	ix.buckets[h] = append(ix.buckets[h], eqEntry{key, rec})
}

func (ix *equalityIndex) remove(key []byte, rec *Record) bool {
	h := xxhash.Sum64(key)
	bucket := ix.buckets[h]
	for i, e := range bucket {
		if e.rec == rec && bytes.Equal(e.key, key) {
			bucket = slices.Delete(bucket, i, i+1)
			if len(bucket) == 0 {
				delete(ix.buckets, h)
			} else {
				ix.buckets[h] = bucket
			}
			return true
		}
	}
	return false
}

func (ix *equalityIndex) first(key []byte) *Record {
	for _, e := range ix.buckets[xxhash.Sum64(key)] {
		if bytes.Equal(e.key, key) {
			return e.rec
		}
	}
	return nil
}

func (ix *equalityIndex) all(key []byte) []*Record {
	var out []*Record
	for _, e := range ix.buckets[xxhash.Sum64(key)] {
		if bytes.Equal(e.key, key) {
			out = append(out, e.rec)
		}
	}
	return out
}

// orderedIndex keeps records sorted by encoded key: one item per distinct
// key, each holding the records currently at that key.
type orderedIndex struct {
	items []ordItem // sorted by key
}

type ordItem struct {
	key  []byte
	recs []*Record
}

// seek returns the position of the first item with key >= the given key.
func (ix *orderedIndex) seek(key []byte) int {
	return sort.Search(len(ix.items), func(i int) bool {
		return bytes.Compare(ix.items[i].key, key) >= 0
	})
}

func (ix *orderedIndex) find(key []byte) (int, bool) {
	i := ix.seek(key)
	if i < len(ix.items) && bytes.Equal(ix.items[i].key, key) {
		return i, true
	}
	return i, false
}

func (ix *orderedIndex) insert(key []byte, rec *Record) {
	i, ok := ix.find(key)
	if ok {
		ix.items[i].recs = append(ix.items[i].recs, rec)
		return
	}
	ix.items = slices.Insert(ix.items, i, ordItem{key: key, recs: []*Record{rec}})
}

func (ix *orderedIndex) remove(key []byte, rec *Record) bool {
	i, ok := ix.find(key)
	if !ok {
		return false
	}
	recs := ix.items[i].recs
	for j, r := range recs {
		if r == rec {
			recs = slices.Delete(recs, j, j+1)
			if len(recs) == 0 {
				ix.items = slices.Delete(ix.items, i, i+1)
			} else {
				ix.items[i].recs = recs
			}
			return true
		}
	}
	return false
}
