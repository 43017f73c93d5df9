// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package idpool hands out stable handles with a generation counter, so a
// reused slot can be told apart from the handle a caller is still holding
// after the object at that slot was destroyed. Grounded on gazed/vu's
// dense-array-plus-swap-delete convention (simulation.go's bids/bodies/eids
// trio), generalized into one reusable pool instead of being rewritten per
// entity kind.
package idpool

// ID is a stable external handle: an index into the dense slice plus a
// generation counter that increments every time the slot is reused.
type ID struct {
	Index int32
	Gen   uint32
}

// Valid reports whether id could plausibly have been issued (zero value
// is never issued).
func (id ID) Valid() bool { return id.Gen != 0 }

type slot struct {
	gen  uint32
	used bool
}

// Pool hands out and reclaims IDs without ever reusing a (index, gen)
// pair. Acquire reports ok=false rather than wrapping once maxCount is
// reached.
type Pool struct {
	slots    []slot
	free     []int32
	maxCount int32
}

// New returns a pool that rejects Acquire once maxCount live ids are
// outstanding.
func New(maxCount int32) *Pool {
	return &Pool{maxCount: maxCount}
}

// Count returns the number of currently live ids.
func (p *Pool) Count() int32 { return int32(len(p.slots)) - int32(len(p.free)) }

// Acquire returns a fresh id, or ok=false if maxCount live ids are
// already outstanding.
func (p *Pool) Acquire() (ID, bool) {
	if p.Count() >= p.maxCount {
		return ID{}, false
	}
	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		p.slots[idx].used = true
		return ID{Index: idx, Gen: p.slots[idx].gen}, true
	}
	idx := int32(len(p.slots))
	p.slots = append(p.slots, slot{gen: 1, used: true})
	return ID{Index: idx, Gen: 1}, true
}

// Release frees id, bumping its generation so stale handles are
// detectable by IsLive.
func (p *Pool) Release(id ID) {
	if !p.IsLive(id) {
		return
	}
	p.slots[id.Index].used = false
	p.slots[id.Index].gen++
	if p.slots[id.Index].gen == 0 {
		p.slots[id.Index].gen = 1
	}
	p.free = append(p.free, id.Index)
}

// IsLive reports whether id refers to a still-live slot at its
// generation.
func (p *Pool) IsLive(id ID) bool {
	if id.Index < 0 || int(id.Index) >= len(p.slots) {
		return false
	}
	s := p.slots[id.Index]
	return s.used && s.gen == id.Gen
}
