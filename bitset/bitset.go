// Package bitset implements packed multi-dimensional bitsets backed by a
// single []uint32 buffer. Noodle uses these for NFA epsilon-closure sets,
// per-word transition tables (word x fuzz x state), and equivalency-class
// powerstates — all of which are naturally expressed as a 1D, 2D, or 3D
// grid of bits sharing one flat allocation.
package bitset

import "math/bits"

// BlockBits is the width of one packed word.
const BlockBits = 32

func blockIndex(bit int) (word, offset int) {
	return bit / BlockBits, bit % BlockBits
}

// wordsFor returns how many uint32 blocks are needed to hold n bits.
func wordsFor(n int) int {
	return (n + BlockBits - 1) / BlockBits
}

// Set1D is a flat bitset of a fixed length, usually representing a set of
// NFA StateIDs (e.g. an epsilon-closure or a DFA powerstate).
type Set1D struct {
	len    int
	blocks []uint32
}

// NewSet1D allocates a Set1D able to hold n bits, all initially clear.
func NewSet1D(n int) Set1D {
	return Set1D{len: n, blocks: make([]uint32, wordsFor(n))}
}

// Len returns the number of addressable bits.
func (b *Set1D) Len() int { return b.len }

// Insert sets bit i. It takes a value receiver so it can be called
// directly on a view returned by Row, which shares b's backing storage.
func (b Set1D) Insert(i int) {
	w, o := blockIndex(i)
	b.blocks[w] |= 1 << uint(o)
}

// Remove clears bit i.
func (b *Set1D) Remove(i int) {
	w, o := blockIndex(i)
	b.blocks[w] &^= 1 << uint(o)
}

// Contains reports whether bit i is set.
func (b Set1D) Contains(i int) bool {
	w, o := blockIndex(i)
	return b.blocks[w]&(1<<uint(o)) != 0
}

// Clear resets every bit to 0.
func (b *Set1D) Clear() {
	for i := range b.blocks {
		b.blocks[i] = 0
	}
}

// IsEmpty reports whether no bit is set.
func (b Set1D) IsEmpty() bool {
	for _, w := range b.blocks {
		if w != 0 {
			return false
		}
	}
	return true
}

// IsSubset reports whether every bit set in b is also set in other.
func (b *Set1D) IsSubset(other *Set1D) bool {
	for i, w := range b.blocks {
		if w&^other.blocks[i] != 0 {
			return false
		}
	}
	return true
}

// UnionWith sets b |= other.
func (b *Set1D) UnionWith(other *Set1D) {
	for i := range b.blocks {
		b.blocks[i] |= other.blocks[i]
	}
}

// IntersectWith sets b &= other.
func (b *Set1D) IntersectWith(other *Set1D) {
	for i := range b.blocks {
		b.blocks[i] &= other.blocks[i]
	}
}

// DifferenceWith sets b &^= other (removes other's members from b).
func (b *Set1D) DifferenceWith(other *Set1D) {
	for i := range b.blocks {
		b.blocks[i] &^= other.blocks[i]
	}
}

// CopyFrom overwrites b's contents with other's. Both must have equal Len.
func (b *Set1D) CopyFrom(other *Set1D) {
	copy(b.blocks, other.blocks)
}

// Equal reports whether b and other have identical membership.
func (b *Set1D) Equal(other *Set1D) bool {
	if b.len != other.len {
		return false
	}
	for i := range b.blocks {
		if b.blocks[i] != other.blocks[i] {
			return false
		}
	}
	return true
}

// Ones iterates over the set bits of b in ascending order.
type Ones struct {
	blocks []uint32
	word   int
	cur    uint32
	base   int
}

// Ones returns an iterator over the indices of b's set bits.
func (b *Set1D) Ones() *Ones {
	it := &Ones{blocks: b.blocks}
	if len(it.blocks) > 0 {
		it.cur = it.blocks[0]
	}
	return it
}

// Next returns the next set bit index and true, or (0, false) when done.
func (o *Ones) Next() (int, bool) {
	for {
		if o.cur == 0 {
			o.word++
			if o.word >= len(o.blocks) {
				return 0, false
			}
			o.cur = o.blocks[o.word]
			o.base = o.word * BlockBits
			continue
		}
		tz := bits.TrailingZeros32(o.cur)
		o.cur &^= 1 << uint(tz)
		return o.base + tz, true
	}
}

// Set2D is a dense [rows][cols] bit grid flattened into one backing
// buffer, used for fuzz x state transition rows.
type Set2D struct {
	rows, cols int
	blocks     []uint32
}

// NewSet2D allocates a Set2D of the given shape, all bits clear.
func NewSet2D(rows, cols int) Set2D {
	return Set2D{rows: rows, cols: cols, blocks: make([]uint32, rows*wordsFor(cols))}
}

func (b *Set2D) wordsPerRow() int { return wordsFor(b.cols) }

// Rows returns the number of rows.
func (b *Set2D) Rows() int { return b.rows }

// Cols returns the number of columns.
func (b *Set2D) Cols() int { return b.cols }

// Row returns a Set1D view over row r, sharing backing storage with b.
func (b *Set2D) Row(r int) Set1D {
	wpr := b.wordsPerRow()
	return Set1D{len: b.cols, blocks: b.blocks[r*wpr : (r+1)*wpr]}
}

// Insert sets bit (r, c).
func (b *Set2D) Insert(r, c int) {
	row := b.Row(r)
	row.Insert(c)
}

// Contains reports whether bit (r, c) is set.
func (b *Set2D) Contains(r, c int) bool {
	row := b.Row(r)
	return row.Contains(c)
}

// Clear resets every bit to 0.
func (b *Set2D) Clear() {
	for i := range b.blocks {
		b.blocks[i] = 0
	}
}

// CopyFrom overwrites b's contents with other's. Shapes must match.
func (b *Set2D) CopyFrom(other *Set2D) {
	copy(b.blocks, other.blocks)
}

// Set3D is a dense [depth][rows][cols] bit cube, used for the per-word
// transition table: [char index][from state x fuzz][to state].
type Set3D struct {
	depth, rows, cols int
	blocks            []uint32
}

// NewSet3D allocates a Set3D of the given shape, all bits clear.
func NewSet3D(depth, rows, cols int) Set3D {
	wpr := wordsFor(cols)
	return Set3D{depth: depth, rows: rows, cols: cols, blocks: make([]uint32, depth*rows*wpr)}
}

// Depth, Rows, Cols return the cube's dimensions.
func (b *Set3D) Depth() int { return b.depth }
func (b *Set3D) Rows() int  { return b.rows }
func (b *Set3D) Cols() int  { return b.cols }

// Plane returns a Set2D view over plane d, sharing backing storage with b.
func (b *Set3D) Plane(d int) Set2D {
	wpr := wordsFor(b.cols)
	sz := b.rows * wpr
	return Set2D{rows: b.rows, cols: b.cols, blocks: b.blocks[d*sz : (d+1)*sz]}
}

// Row returns a Set1D view over (d, r), sharing backing storage with b.
func (b *Set3D) Row(d, r int) Set1D {
	p := b.Plane(d)
	return p.Row(r)
}

// Clear resets every bit to 0.
func (b *Set3D) Clear() {
	for i := range b.blocks {
		b.blocks[i] = 0
	}
}

// IsEmpty reports whether no bit anywhere in the cube is set.
func (b *Set3D) IsEmpty() bool {
	for _, w := range b.blocks {
		if w != 0 {
			return false
		}
	}
	return true
}

// CopyFrom overwrites b's contents with other's. Shapes must match.
func (b *Set3D) CopyFrom(other *Set3D) {
	copy(b.blocks, other.blocks)
}

// CompactDistance enforces fuzz-minimality over a contiguous run of count
// rows starting at offset base within plane d: in ascending offset order,
// it subtracts each row from every later row in the run, so a state
// reachable at a lower offset never also survives at a higher one. This
// keeps each NFA state reachable at only its lowest edit-distance cost,
// matching the original bitset.rs compact_distance_set operation used by
// the word transition engine, which calls this once per NFA state across
// that state's fuzz-level rows.
func (b *Set3D) CompactDistance(d, base, count int) {
	for index := 0; index < count-1; index++ {
		low := b.Row(d, base+index)
		for y := index + 1; y < count; y++ {
			row := b.Row(d, base+y)
			row.DifferenceWith(&low)
		}
	}
}
