// Package lattice implements the Singularity symbol table and the
// deterministic Symbol -> RootId assignment onto the 240-point E8 root
// alphabet (§3, §4.3).
//
// The hashing strategy mirrors the teacher's internal/hash package
// (xxHash64 with a fixed seed used to fold a Symbol into a small integer
// space), generalized here from "metric ID" to "RootId".
package lattice

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/arloliu/e8z/errs"
	"github.com/arloliu/e8z/format"
	"github.com/arloliu/e8z/internal/hash"
)

// DefaultMaxSymbols bounds the size of a word/char SymbolTable. V itself may
// be up to 2^20 per §3; this implementation caps at 2^16, which is an
// implementation choice recorded in DESIGN.md.
const DefaultMaxSymbols = 1 << 16

// hashSalt is part of the on-wire format contract (§6, §9 Open Questions):
// any implementation wanting byte-compatible containers must use the same
// seed. xxHash64 takes no explicit seed argument in the pinned API, so the
// "seed" is the fixed string prefix mixed into every hashed symbol.
const hashSalt = "e8z-lattice-v1:"

// hashRoot computes the stable 64-bit hash of sym folded onto [0, NumRoots).
func hashRoot(sym string) uint8 {
	h := hash.ID(hashSalt + sym)
	return uint8(h % format.NumRoots) //nolint:gosec
}

// ByteRoot returns the RootId for a raw byte in byte mode (§4.3): bytes
// 240..255 share roots 0..15 with bytes 0..15.
func ByteRoot(b byte) uint8 {
	return b % format.NumRoots
}

// ByteOffset returns the bucket offset for a raw byte in byte mode: bytes
// 240..255 are the only bytes assigned a non-zero offset within their root.
func ByteOffset(b byte) int {
	if b >= format.NumRoots {
		return 1
	}

	return 0
}

// ByteAt inverts (ByteRoot, ByteOffset) back to the original byte value.
func ByteAt(root uint8, offset int) (byte, bool) {
	switch offset {
	case 0:
		return root, true
	case 1:
		if root < 16 {
			return root + format.NumRoots, true
		}

		return 0, false
	default:
		return 0, false
	}
}

// SymbolTable is the Singularity: an insertion-ordered Symbol <-> index
// mapping shared read-only across all frames of a stream once frozen (§3,
// §5).
type SymbolTable struct {
	mode       format.Mode
	strToIndex map[string]int
	indexToStr []string
	maxSymbols int
	frozen     bool
}

// NewSymbolTable creates an empty table for the given tokenizer mode,
// pre-sized to expectedSize entries (§5 Allocation discipline).
func NewSymbolTable(mode format.Mode, expectedSize, maxSymbols int) *SymbolTable {
	if maxSymbols <= 0 {
		maxSymbols = DefaultMaxSymbols
	}
	if expectedSize < 0 {
		expectedSize = 0
	}

	return &SymbolTable{
		mode:       mode,
		strToIndex: make(map[string]int, expectedSize),
		indexToStr: make([]string, 0, expectedSize),
		maxSymbols: maxSymbols,
	}
}

// Mode reports the tokenizer mode this table was built for.
func (t *SymbolTable) Mode() format.Mode { return t.mode }

// Len reports the number of distinct symbols currently registered.
func (t *SymbolTable) Len() int { return len(t.indexToStr) }

// Frozen reports whether the table accepts new insertions.
func (t *SymbolTable) Frozen() bool { return t.frozen }

// Freeze prevents further insertions; once a frame has referenced the
// table, it is frozen for the remainder of the stream (§3 invariant 3).
func (t *SymbolTable) Freeze() { t.frozen = true }

// Lookup returns the index of sym if already registered.
func (t *SymbolTable) Lookup(sym string) (int, bool) {
	idx, ok := t.strToIndex[sym]
	return idx, ok
}

// Insert registers sym if not already present and the table is not frozen
// or at capacity, returning its index. If the table is frozen (or at
// capacity) and sym is unknown, ok is false: the caller must treat sym as
// out-of-vocabulary (OOV).
func (t *SymbolTable) Insert(sym string) (idx int, ok bool) {
	if idx, found := t.strToIndex[sym]; found {
		return idx, true
	}

	if t.frozen || len(t.indexToStr) >= t.maxSymbols {
		return 0, false
	}

	idx = len(t.indexToStr)
	t.indexToStr = append(t.indexToStr, sym)
	t.strToIndex[sym] = idx

	return idx, true
}

// Symbol returns the symbol registered at idx.
func (t *SymbolTable) Symbol(idx int) (string, bool) {
	if idx < 0 || idx >= len(t.indexToStr) {
		return "", false
	}

	return t.indexToStr[idx], true
}

// Checksum computes a deterministic fingerprint of the table's contents,
// used as the container's shared_table_id (§4.8) so a decoder can detect a
// stale or mismatched symbol table.
func (t *SymbolTable) Checksum() uint32 {
	h := xxhash.New()
	for _, s := range t.indexToStr {
		_, _ = h.WriteString(s)
		_, _ = h.Write([]byte{0})
	}

	return uint32(h.Sum64()) //nolint:gosec
}

// Assignment is the reverse map from (RootId, offset_in_root) back to a
// SymbolTable index, built once a word/char-mode table is frozen (§4.3).
type Assignment struct {
	buckets [][]int // buckets[root] = ordered list of symbol-table indices
	root    []uint8 // root[idx] = RootId of symbol idx
}

// BuildAssignment computes the RootId of every registered symbol and groups
// them into per-root buckets in insertion order.
func BuildAssignment(table *SymbolTable) *Assignment {
	a := &Assignment{
		buckets: make([][]int, format.NumRoots),
		root:    make([]uint8, table.Len()),
	}

	for idx, sym := range table.indexToStr {
		r := hashRoot(sym)
		a.root[idx] = r
		a.buckets[r] = append(a.buckets[r], idx)
	}

	return a
}

// RootOf returns the RootId of the symbol at table index idx.
func (a *Assignment) RootOf(idx int) uint8 {
	return a.root[idx]
}

// OffsetOf returns the bucket offset of the symbol at table index idx
// within its root's bucket.
func (a *Assignment) OffsetOf(idx int) int {
	root := a.root[idx]
	for i, bidx := range a.buckets[root] {
		if bidx == idx {
			return i
		}
	}

	return -1
}

// BucketLen reports how many symbols share the given root.
func (a *Assignment) BucketLen(root uint8) int {
	return len(a.buckets[root])
}

// At inverts (root, offset) to a SymbolTable index.
func (a *Assignment) At(root uint8, offset int) (int, error) {
	bucket := a.buckets[root]
	if offset < 0 || offset >= len(bucket) {
		return 0, fmt.Errorf("%w: root %d has no symbol at offset %d", errs.ErrSymbolTableCorrupt, root, offset)
	}

	return bucket[offset], nil
}

// RootForSymbol computes the RootId for sym directly, without a table:
// ByteRoot of its first byte in byte mode, the salted hash otherwise (the
// same hash BuildAssignment applies to table entries).
func RootForSymbol(mode format.Mode, sym string) uint8 {
	if mode == format.ModeByte {
		return ByteRoot(sym[0])
	}

	return hashRoot(sym)
}
