// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package broadphase

import (
	"sort"

	"github.com/gazed/phys2d/shape"
)

// ProxyID identifies one broad-phase proxy: a (fixture, childIndex) pair
// keyed to a dynamic-tree node id.
type ProxyID = NodeID

// Pair is an unordered pair of proxies reported as newly overlapping.
type Pair struct {
	ProxyA, ProxyB ProxyID
}

// BroadPhase owns the dynamic tree plus the move buffer and pair buffer
// used to report new overlaps once per step, following Box2D's
// b2BroadPhase (original_source/Box2D/Collision/...), reimplemented
// rather than transliterated.
type BroadPhase struct {
	tree         *Tree
	moveBuffer   []ProxyID
	moveSet      map[ProxyID]bool
	pairBuffer   []Pair
	queryProxyID ProxyID
}

// NewBroadPhase returns an empty broad phase.
func NewBroadPhase() *BroadPhase {
	return &BroadPhase{
		tree:    NewTree(),
		moveSet: map[ProxyID]bool{},
	}
}

// CreateProxy inserts a new proxy with the given fat AABB and opaque
// leaf data (the owning fixture + child index, supplied by dynamics),
// and enqueues it to be checked for pairs on the next UpdatePairs.
func (bp *BroadPhase) CreateProxy(aabb shape.AABB, data interface{}) ProxyID {
	id := bp.tree.CreateProxy(aabb, data)
	bp.bufferMove(id)
	return id
}

// DestroyProxy removes a proxy and un-enqueues any pending move for it.
func (bp *BroadPhase) DestroyProxy(id ProxyID) {
	bp.unbufferMove(id)
	bp.tree.DestroyProxy(id)
}

// MoveProxy updates a proxy's AABB (fat-AABB padding is the caller's
// responsibility: fixture.go computes it so that this package stays
// shape/body agnostic) and enqueues it if the tree actually had to move
// it.
func (bp *BroadPhase) MoveProxy(id ProxyID, tightAABB, fatAABB shape.AABB) {
	if bp.tree.MoveProxy(id, tightAABB, fatAABB) {
		bp.bufferMove(id)
	}
}

// TouchProxy force-enqueues a proxy for pair re-evaluation without
// moving it, used when a fixture's filter data changes.
func (bp *BroadPhase) TouchProxy(id ProxyID) { bp.bufferMove(id) }

func (bp *BroadPhase) bufferMove(id ProxyID) {
	if bp.moveSet[id] {
		return
	}
	bp.moveSet[id] = true
	bp.moveBuffer = append(bp.moveBuffer, id)
}

func (bp *BroadPhase) unbufferMove(id ProxyID) {
	if !bp.moveSet[id] {
		return
	}
	delete(bp.moveSet, id)
	for i, m := range bp.moveBuffer {
		if m == id {
			bp.moveBuffer = append(bp.moveBuffer[:i], bp.moveBuffer[i+1:]...)
			break
		}
	}
}

// AABB returns the proxy's stored fat AABB.
func (bp *BroadPhase) AABB(id ProxyID) shape.AABB { return bp.tree.AABB(id) }

// Data returns the proxy's opaque leaf data.
func (bp *BroadPhase) Data(id ProxyID) interface{} { return bp.tree.Data(id) }

// Query reports every proxy whose fat AABB overlaps aabb.
func (bp *BroadPhase) Query(aabb shape.AABB, cb func(ProxyID) bool) { bp.tree.Query(aabb, cb) }

// RayCast delegates to the tree.
func (bp *BroadPhase) RayCast(input shape.RayCastInput, cb func(ProxyID, shape.RayCastInput) R) {
	bp.tree.RayCast(input, cb)
}

// TestOverlap reports whether two proxies' stored AABBs currently
// overlap, used by the contact manager to decide whether a cached
// contact should be destroyed once the broad-phase AABBs separate.
func (bp *BroadPhase) TestOverlap(a, b ProxyID) bool {
	return bp.tree.AABB(a).Overlaps(bp.tree.AABB(b))
}

// UpdatePairs re-queries the tree around every proxy enqueued since the
// last call and returns the deduplicated set of new candidate pairs,
// clearing the move buffer. Grounded on Box2D's b2BroadPhase::UpdatePairs:
// for each moved proxy, query its fat AABB against the tree and record
// (movedProxy, other) for every other != movedProxy, skipping a pair
// twice by only reporting it when other > movedProxy or other is itself
// not queued this round (prevents (a,b) and (b,a) duplicate reports when
// both moved in the same step).
func (bp *BroadPhase) UpdatePairs() []Pair {
	pairs := bp.pairBuffer[:0]
	moved := append([]ProxyID(nil), bp.moveBuffer...)

	for _, queryID := range moved {
		fatAABB := bp.tree.AABB(queryID)
		bp.queryProxyID = queryID
		bp.tree.Query(fatAABB, func(other ProxyID) bool {
			if other == queryID {
				return true
			}
			if bp.moveSet[other] && other < queryID {
				// the (other, queryID) ordering already emitted this
				// pair when other was the query proxy.
				return true
			}
			pairs = append(pairs, Pair{ProxyA: minID(queryID, other), ProxyB: maxID(queryID, other)})
			return true
		})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].ProxyA != pairs[j].ProxyA {
			return pairs[i].ProxyA < pairs[j].ProxyA
		}
		return pairs[i].ProxyB < pairs[j].ProxyB
	})
	pairs = dedupePairs(pairs)

	bp.moveBuffer = bp.moveBuffer[:0]
	bp.moveSet = map[ProxyID]bool{}
	bp.pairBuffer = pairs
	return pairs
}

func dedupePairs(pairs []Pair) []Pair {
	out := pairs[:0]
	for i, p := range pairs {
		if i > 0 && p == pairs[i-1] {
			continue
		}
		out = append(out, p)
	}
	return out
}

func minID(a, b ProxyID) ProxyID {
	if a < b {
		return a
	}
	return b
}

func maxID(a, b ProxyID) ProxyID {
	if a > b {
		return a
	}
	return b
}

// TreeHeight exposes the underlying tree's height for diagnostics/tests.
func (bp *BroadPhase) TreeHeight() int32 { return bp.tree.Height() }

// TreeBalance exposes the underlying tree's max balance for tests.
func (bp *BroadPhase) TreeBalance() int32 { return bp.tree.MaxBalance() }

// ValidateTree exposes the underlying tree's structural validation.
func (bp *BroadPhase) ValidateTree() bool { return bp.tree.ValidateStructure() }

// NodeCount/Capacity expose pool stats for the invariant that
// nodeCount + freeCount always equals capacity.
func (bp *BroadPhase) NodeCount() int32 { return bp.tree.NodeCount() }
func (bp *BroadPhase) Capacity() int32  { return bp.tree.Capacity() }

// ShiftOrigin re-centers every stored AABB under a world origin shift.
func (bp *BroadPhase) ShiftOrigin(origin pV2) { bp.tree.ShiftOrigin(origin) }
