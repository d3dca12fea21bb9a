/*
Package recdb implements an embeddable, in-process, strongly-indexed record
store: heterogeneous records with a fixed named set of typed fields, plus
fast lookup of a record by the current value of any declared field.

We implement:

1. Cells, type-erased value holders with runtime type checking and an
optional custom release callback.

2. Cell maps, string-keyed containers of cells with unique-key and multi-key
variants.

3. Records, one cell map per stored row plus a shared validity flag that
lets outstanding references detect deletion.

4. Storage, the multi-index engine: per declared field it maintains an
equality index (hash, O(1)-average exact lookup) and an ordering index
(sorted, range traversal), both kept in lockstep with live record contents.

# Technical Details

**Type identity.**
A cell records the reflect.Type of its value at set time. Reads succeed only
when the requested type is identical to the stored one; mismatches are soft
failures with a diagnostic, never unsafe access.

**Key encoding.**
Index keys are order-preserving byte strings: integers are big-endian with
the sign bit flipped, floats use a sign-magnitude transform, strings are raw
bytes. Types without a native encoding use a canonical composite encoding
(tagged, length-prefixed, with map entries sorted by encoded key), which
keeps equality exact (ordering then follows byte order).

**Equality index.**
A hash map keyed by xxhash of the encoded key. Buckets store the full key
alongside the record, so hash collisions cannot alias lookups.

**Ordering index.**
A sorted key array searched with binary search, one entry per distinct key,
each holding the records currently at that key.

**Validity flag.**
Each record shares an atomic boolean with every RecordRef pointing at it.
Erasing a record clears the flag strictly before the record leaves the live
set, so a ref can never observe a half-dead record.

# Concurrency

The engine takes no locks of its own. Concurrent use requires an external
shared/exclusive lock (say, a sync.RWMutex passed via Options.Lock): shared
mode around reads (GetField, FindByField, scans), exclusive mode around
mutations (SetField, CreateRecord, DeclareField, EraseRecord). The
Storage.Read and Storage.Write helpers scope the acquisition for you.
*/
package recdb
