// Package bitset provides a fixed-capacity bitset used for vertex marking
// during index construction and cluster traversal.
package bitset

import (
	"math/bits"
	"sync/atomic"
)

const wordBits = 64

// Bitset is a dense bitset over [0, capacity).
//
// Set/Test are single-writer operations. SetAtomic may be called concurrently
// with other SetAtomic calls, which is what the fingerprint eligibility pass
// needs: many vertices flag the same neighbor at once. Do not mix SetAtomic
// with plain Set on the same bitset within a pass.
type Bitset struct {
	words []uint64
}

// New creates a bitset with the given capacity in bits.
func New(capacity int) *Bitset {
	return &Bitset{words: make([]uint64, (capacity+wordBits-1)/wordBits)}
}

// Set marks bit i.
func (b *Bitset) Set(i uint32) {
	b.words[i>>6] |= 1 << (i & 63)
}

// SetAtomic marks bit i and is safe to call from concurrent writers.
func (b *Bitset) SetAtomic(i uint32) {
	// atomic.OrUint64 requires Go 1.23; emulate the atomic OR with a CAS loop.
	addr := &b.words[i>>6]
	mask := uint64(1) << (i & 63)
	for {
		old := atomic.LoadUint64(addr)
		if old&mask != 0 || atomic.CompareAndSwapUint64(addr, old, old|mask) {
			return
		}
	}
}

// Test reports whether bit i is set.
func (b *Bitset) Test(i uint32) bool {
	return b.words[i>>6]&(1<<(i&63)) != 0
}

// Count returns the number of set bits.
func (b *Bitset) Count() int {
	total := 0
	for _, w := range b.words {
		total += bits.OnesCount64(w)
	}
	return total
}

// Clear resets all bits.
func (b *Bitset) Clear() {
	clear(b.words)
}
