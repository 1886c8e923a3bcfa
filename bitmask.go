package tempo

import (
	"math/bits"
)

// Bitmask is a 256-bit bitmask over TypeKey values. It backs access
// declarations and lock planning, which only need set membership,
// intersection and ordered iteration.
type Bitmask [4]uint64

// Set sets the bit for the given key.
func (m *Bitmask) Set(key TypeKey) {
	m[key/64] |= 1 << (key % 64)
}

// Clear clears the bit for the given key.
func (m *Bitmask) Clear(key TypeKey) {
	m[key/64] &^= 1 << (key % 64)
}

// Has returns true if the bit for the given key is set.
func (m *Bitmask) Has(key TypeKey) bool {
	return m[key/64]&(1<<(key%64)) != 0
}

// Intersects returns true if any bit is set in both m and other.
// This is the core of the access conflict test.
func (m *Bitmask) Intersects(other Bitmask) bool {
	return (m[0]&other[0] != 0) ||
		(m[1]&other[1] != 0) ||
		(m[2]&other[2] != 0) ||
		(m[3]&other[3] != 0)
}

// IsZero returns true if no bits are set.
func (m *Bitmask) IsZero() bool {
	return m[0] == 0 && m[1] == 0 && m[2] == 0 && m[3] == 0
}

// Or returns a new bitmask with bits set from both m and other.
func (m Bitmask) Or(other Bitmask) Bitmask {
	return Bitmask{
		m[0] | other[0],
		m[1] | other[1],
		m[2] | other[2],
		m[3] | other[3],
	}
}

// AndNot returns a new bitmask with bits set in m but not in other.
func (m Bitmask) AndNot(other Bitmask) Bitmask {
	return Bitmask{
		m[0] &^ other[0],
		m[1] &^ other[1],
		m[2] &^ other[2],
		m[3] &^ other[3],
	}
}

// Count returns the number of bits set.
func (m *Bitmask) Count() int {
	return bits.OnesCount64(m[0]) +
		bits.OnesCount64(m[1]) +
		bits.OnesCount64(m[2]) +
		bits.OnesCount64(m[3])
}

// Keys returns the set keys in ascending order. Ascending key order is the
// lock acquisition order, so this must stay sorted.
func (m *Bitmask) Keys() []TypeKey {
	keys := make([]TypeKey, 0, m.Count())
	for w := 0; w < 4; w++ {
		word := m[w]
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			keys = append(keys, TypeKey(w*64+bit))
			word &= word - 1
		}
	}
	return keys
}
