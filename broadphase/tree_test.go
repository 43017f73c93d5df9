// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package broadphase

import (
	"testing"

	"github.com/gazed/phys2d/shape"
	"github.com/stretchr/testify/assert"
)

func leafAABB(cx, cy, half R) shape.AABB {
	return shape.AABB{
		Lower: pV2{X: cx - half, Y: cy - half},
		Upper: pV2{X: cx + half, Y: cy + half},
	}
}

// TestTreeStructureInvariantsHoldAfterManyInsertsAndRemoves drives many
// creates/moves/destroys through the tree and checks the tree's structural
// invariants (parent pointers, heights, AABB containment, max balance <= 1)
// after every single mutation.
func TestTreeStructureInvariantsHoldAfterManyInsertsAndRemoves(t *testing.T) {
	tr := NewTree()
	var ids []NodeID

	for i := 0; i < 200; i++ {
		x := R(i%17) * 1.3
		y := R(i%11) * 0.7
		id := tr.CreateProxy(leafAABB(x, y, 0.5), i)
		ids = append(ids, id)
		assert.True(t, tr.ValidateStructure())
		assert.LessOrEqual(t, tr.MaxBalance(), int32(1))
	}

	for i, id := range ids {
		if i%3 != 0 {
			continue
		}
		x := R(i%17)*1.3 + 0.1
		y := R(i%11)*0.7 - 0.1
		fat := leafAABB(x, y, 0.6)
		tr.MoveProxy(id, leafAABB(x, y, 0.5), fat)
		assert.True(t, tr.ValidateStructure())
		assert.LessOrEqual(t, tr.MaxBalance(), int32(1))
	}

	for i, id := range ids {
		if i%2 != 0 {
			continue
		}
		tr.DestroyProxy(id)
		assert.True(t, tr.ValidateStructure())
		assert.LessOrEqual(t, tr.MaxBalance(), int32(1))
	}
}

func TestTreeMoveProxyNoopWhenFatAABBStillContainsTight(t *testing.T) {
	tr := NewTree()
	fat := leafAABB(0, 0, 1)
	id := tr.CreateProxy(fat, "leaf")
	tight := leafAABB(0.05, 0, 0.5)
	moved := tr.MoveProxy(id, tight, fat)
	assert.False(t, moved, "a tight AABB still contained by the stored fat AABB must not reinsert")
}

func TestTreeQueryFindsOverlappingLeaves(t *testing.T) {
	tr := NewTree()
	tr.CreateProxy(leafAABB(0, 0, 0.5), "a")
	tr.CreateProxy(leafAABB(10, 10, 0.5), "b")

	var hits []interface{}
	tr.Query(leafAABB(0, 0, 1), func(id NodeID) bool {
		hits = append(hits, tr.Data(id))
		return true
	})
	assert.Equal(t, []interface{}{"a"}, hits)
}

func TestTreeQueryCanStopEarly(t *testing.T) {
	tr := NewTree()
	tr.CreateProxy(leafAABB(0, 0, 5), "a")
	tr.CreateProxy(leafAABB(1, 1, 5), "b")

	count := 0
	tr.Query(leafAABB(0, 0, 10), func(id NodeID) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count)
}

func TestTreeRayCastFindsLeafAlongSegment(t *testing.T) {
	tr := NewTree()
	tr.CreateProxy(leafAABB(5, 0, 0.5), "target")
	tr.CreateProxy(leafAABB(-5, 5, 0.5), "miss")

	in := shape.RayCastInput{P1: pV2{X: -20, Y: 0}, P2: pV2{X: 20, Y: 0}, MaxFraction: 1}
	var found []interface{}
	tr.RayCast(in, func(id NodeID, _ shape.RayCastInput) R {
		found = append(found, tr.Data(id))
		return 1
	})
	assert.Equal(t, []interface{}{"target"}, found)
}

func TestTreeShiftOriginMovesEveryStoredAABB(t *testing.T) {
	tr := NewTree()
	id := tr.CreateProxy(leafAABB(10, 10, 1), "a")
	before := tr.AABB(id)
	tr.ShiftOrigin(pV2{X: 3, Y: 4})
	after := tr.AABB(id)
	assert.InDelta(t, before.Lower.X-3, after.Lower.X, 1e-9)
	assert.InDelta(t, before.Lower.Y-4, after.Lower.Y, 1e-9)
}

func TestTreeGrowsPoolWhenFull(t *testing.T) {
	tr := NewTree()
	before := tr.Capacity()
	for i := 0; i < int(before)+5; i++ {
		tr.CreateProxy(leafAABB(R(i), 0, 0.5), i)
	}
	assert.Greater(t, tr.Capacity(), before)
	assert.True(t, tr.ValidateStructure())
}
