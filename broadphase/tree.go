// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package broadphase implements a dynamic AABB tree and the broad-phase
// pair buffer built around it. No file in the retrieval pack implements a
// real dynamic tree (undefinedopcode-cp/space.go uses a generic
// *SpatialIndex without showing its internals, and gazed/vu/physics/broad.go
// is a brute-force O(n^2) sweep), so this package is authored fresh. The
// node-pool / free-list layout and the SAH insertion cost function follow
// Box2D's b2DynamicTree (original_source/Box2D/Collision/DynamicTree.cpp),
// reimplemented in the teacher's flat-index-over-pointer idiom (gazed/vu's
// dense-array entity pattern in simulation.go: indices into a slice, not
// *Node pointers).
package broadphase

import (
	"log/slog"

	"github.com/gazed/phys2d/shape"
)

// NodeID indexes a tree node. NullNode marks "no node"/end of free list.
type NodeID int32

const NullNode NodeID = -1

type node struct {
	aabb   shape.AABB
	data   interface{} // leaf data; nil for branches/unused
	parent NodeID      // also doubles as the free-list "next" pointer
	child1 NodeID
	child2 NodeID
	height int32 // -1: free, 0: leaf, >0: branch
}

func (n *node) isLeaf() bool { return n.child1 == NullNode }

// Tree is a dynamic AABB tree: a binary tree of fixed-size nodes held in
// a flat, growable pool.
type Tree struct {
	nodes      []node
	root       NodeID
	freeList   NodeID
	nodeCount  int32
	nodeCap    int32
}

// NewTree returns an empty tree with an initial node pool.
func NewTree() *Tree {
	t := &Tree{root: NullNode}
	t.growTo(16)
	return t
}

func (t *Tree) growTo(cap int32) {
	old := t.nodes
	t.nodes = make([]node, cap)
	copy(t.nodes, old)
	for i := int32(len(old)); i < cap-1; i++ {
		t.nodes[i] = node{parent: NodeID(i + 1), height: -1}
	}
	t.nodes[cap-1] = node{parent: NullNode, height: -1}
	t.freeList = NodeID(len(old))
	t.nodeCap = cap
}

// allocateNode pops a node off the free list, doubling the pool if necessary.
func (t *Tree) allocateNode() NodeID {
	if t.freeList == NullNode {
		t.growTo(t.nodeCap * 2)
	}
	id := t.freeList
	t.freeList = t.nodes[id].parent
	t.nodes[id] = node{parent: NullNode, child1: NullNode, child2: NullNode, height: 0}
	t.nodeCount++
	return id
}

// freeNode returns a node to the free list.
func (t *Tree) freeNode(id NodeID) {
	t.nodes[id] = node{parent: t.freeList, height: -1}
	t.freeList = id
	t.nodeCount--
}

// NodeCount returns the number of nodes currently in use (leaves + branches).
func (t *Tree) NodeCount() int32 { return t.nodeCount }

// Capacity returns the pool's current node capacity.
func (t *Tree) Capacity() int32 { return t.nodeCap }

// AABB returns the stored (fat) AABB for a node.
func (t *Tree) AABB(id NodeID) shape.AABB { return t.nodes[id].aabb }

// Data returns the leaf data stored at a node.
func (t *Tree) Data(id NodeID) interface{} { return t.nodes[id].data }

// CreateProxy inserts a new leaf with the given (already fattened) AABB
// and opaque leaf data, returning its node id.
func (t *Tree) CreateProxy(aabb shape.AABB, data interface{}) NodeID {
	id := t.allocateNode()
	t.nodes[id].aabb = aabb
	t.nodes[id].data = data
	t.nodes[id].height = 0
	t.insertLeaf(id)
	return id
}

// DestroyProxy removes a leaf from the tree and frees its node.
func (t *Tree) DestroyProxy(id NodeID) {
	t.removeLeaf(id)
	t.freeNode(id)
}

// MoveProxy re-inserts a leaf with a new fat AABB. Returns false (a
// no-op) when the existing fat AABB already contains the tight AABB;
// callers pass the already-computed fat AABB and the tight AABB used for
// the containment test.
func (t *Tree) MoveProxy(id NodeID, tightAABB, fatAABB shape.AABB) bool {
	if t.nodes[id].aabb.Contains(tightAABB) {
		return false
	}
	t.removeLeaf(id)
	t.nodes[id].aabb = fatAABB
	t.insertLeaf(id)
	return true
}

// insertLeaf performs SAH-guided insertion: descend from the root to the
// sibling of least cost, then create a new branch.
func (t *Tree) insertLeaf(leaf NodeID) {
	if t.root == NullNode {
		t.root = leaf
		t.nodes[leaf].parent = NullNode
		return
	}

	leafAABB := t.nodes[leaf].aabb
	idx := t.root
	for !t.nodes[idx].isLeaf() {
		child1 := t.nodes[idx].child1
		child2 := t.nodes[idx].child2

		area := t.nodes[idx].aabb.Perimeter()
		combined := shape.Combine(t.nodes[idx].aabb, leafAABB)
		combinedArea := combined.Perimeter()

		cost := 2 * combinedArea
		inheritance := 2 * (combinedArea - area)

		cost1 := t.childDescendCost(child1, leafAABB) + inheritance
		cost2 := t.childDescendCost(child2, leafAABB) + inheritance

		if cost < cost1 && cost < cost2 {
			break
		}
		if cost1 < cost2 {
			idx = child1
		} else {
			idx = child2
		}
	}
	sibling := idx

	oldParent := t.nodes[sibling].parent
	newParent := t.allocateNode()
	t.nodes[newParent].parent = oldParent
	t.nodes[newParent].aabb = shape.Combine(leafAABB, t.nodes[sibling].aabb)
	t.nodes[newParent].height = t.nodes[sibling].height + 1

	if oldParent != NullNode {
		if t.nodes[oldParent].child1 == sibling {
			t.nodes[oldParent].child1 = newParent
		} else {
			t.nodes[oldParent].child2 = newParent
		}
		t.nodes[newParent].child1 = sibling
		t.nodes[newParent].child2 = leaf
		t.nodes[sibling].parent = newParent
		t.nodes[leaf].parent = newParent
	} else {
		t.nodes[newParent].child1 = sibling
		t.nodes[newParent].child2 = leaf
		t.nodes[sibling].parent = newParent
		t.nodes[leaf].parent = newParent
		t.root = newParent
	}

	// walk back up, fixing heights and AABBs, rebalancing as we go.
	idx = t.nodes[leaf].parent
	for idx != NullNode {
		idx = t.balance(idx)
		child1 := t.nodes[idx].child1
		child2 := t.nodes[idx].child2
		t.nodes[idx].height = 1 + max32(t.nodes[child1].height, t.nodes[child2].height)
		t.nodes[idx].aabb = shape.Combine(t.nodes[child1].aabb, t.nodes[child2].aabb)
		idx = t.nodes[idx].parent
	}
}

// childDescendCost is the per-child term of the SAH cost function: the
// cost of enclosing the leaf under this child, minus the child's own
// perimeter when it is itself a branch (since that perimeter is already
// paid for by existing nodes).
func (t *Tree) childDescendCost(child NodeID, leafAABB shape.AABB) R {
	combined := shape.Combine(leafAABB, t.nodes[child].aabb)
	cost := combined.Perimeter()
	if !t.nodes[child].isLeaf() {
		cost -= t.nodes[child].aabb.Perimeter()
	}
	return cost
}

func (t *Tree) removeLeaf(leaf NodeID) {
	if leaf == t.root {
		t.root = NullNode
		return
	}
	parent := t.nodes[leaf].parent
	grandParent := t.nodes[parent].parent
	var sibling NodeID
	if t.nodes[parent].child1 == leaf {
		sibling = t.nodes[parent].child2
	} else {
		sibling = t.nodes[parent].child1
	}

	if grandParent != NullNode {
		if t.nodes[grandParent].child1 == parent {
			t.nodes[grandParent].child1 = sibling
		} else {
			t.nodes[grandParent].child2 = sibling
		}
		t.nodes[sibling].parent = grandParent
		t.freeNode(parent)

		idx := grandParent
		for idx != NullNode {
			idx = t.balance(idx)
			child1 := t.nodes[idx].child1
			child2 := t.nodes[idx].child2
			t.nodes[idx].aabb = shape.Combine(t.nodes[child1].aabb, t.nodes[child2].aabb)
			t.nodes[idx].height = 1 + max32(t.nodes[child1].height, t.nodes[child2].height)
			idx = t.nodes[idx].parent
		}
	} else {
		t.root = sibling
		t.nodes[sibling].parent = NullNode
		t.freeNode(parent)
	}
}

// balance performs a single-rotation rebalance at node a when its
// children's heights differ by more than 1, returning the id of whatever
// node now occupies a's former position (a itself, or the promoted
// child). Grounded on Box2D's b2DynamicTree::Balance.
func (t *Tree) balance(a NodeID) NodeID {
	if t.nodes[a].isLeaf() || t.nodes[a].height < 2 {
		return a
	}
	b := t.nodes[a].child1
	c := t.nodes[a].child2
	balance := t.nodes[c].height - t.nodes[b].height

	if balance > 1 {
		return t.rotate(a, c, b)
	}
	if balance < -1 {
		return t.rotate(a, b, c)
	}
	return a
}

// rotate promotes f (the taller child of a) to a's position, making a a
// child of f. Of f's two children, the one with the larger subtree height
// stays under f and the other becomes a's child beside other.
func (t *Tree) rotate(a, f, other NodeID) NodeID {
	g := t.nodes[f].child1
	h := t.nodes[f].child2

	t.nodes[f].child1 = a
	t.nodes[f].parent = t.nodes[a].parent
	t.nodes[a].parent = f

	oldParent := t.nodes[f].parent
	if oldParent != NullNode {
		if t.nodes[oldParent].child1 == a {
			t.nodes[oldParent].child1 = f
		} else {
			t.nodes[oldParent].child2 = f
		}
	} else {
		t.root = f
	}

	if t.nodes[g].height > t.nodes[h].height {
		t.nodes[f].child2 = g
		t.nodes[a].child1, t.nodes[a].child2 = other, h
		t.nodes[g].parent = f
		t.nodes[h].parent = a
	} else {
		t.nodes[f].child2 = h
		t.nodes[a].child1, t.nodes[a].child2 = other, g
		t.nodes[h].parent = f
		t.nodes[g].parent = a
	}

	t.nodes[a].aabb = shape.Combine(t.nodes[t.nodes[a].child1].aabb, t.nodes[t.nodes[a].child2].aabb)
	t.nodes[a].height = 1 + max32(t.nodes[t.nodes[a].child1].height, t.nodes[t.nodes[a].child2].height)
	t.nodes[f].aabb = shape.Combine(t.nodes[a].aabb, t.nodes[t.nodes[f].child2].aabb)
	t.nodes[f].height = 1 + max32(t.nodes[a].height, t.nodes[t.nodes[f].child2].height)
	return f
}

// Query visits every leaf whose fat AABB overlaps aabb. cb returns false
// to stop the traversal early.
func (t *Tree) Query(aabb shape.AABB, cb func(NodeID) bool) {
	if t.root == NullNode {
		return
	}
	stack := []NodeID{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == NullNode {
			continue
		}
		n := &t.nodes[id]
		if !n.aabb.Overlaps(aabb) {
			continue
		}
		if n.isLeaf() {
			if !cb(id) {
				return
			}
		} else {
			stack = append(stack, n.child1, n.child2)
		}
	}
}

// RayCast visits every leaf whose fat AABB the segment in input may
// intersect, narrowing the query as the callback returns smaller
// fractions. Grounded on Box2D's b2DynamicTree::RayCast: the query AABB
// shrinks to the currently best fraction as the traversal proceeds.
func (t *Tree) RayCast(input shape.RayCastInput, cb func(NodeID, shape.RayCastInput) R) {
	if t.root == NullNode {
		return
	}
	p1, p2 := input.P1, input.P2
	d := pV2{X: p2.X - p1.X, Y: p2.Y - p1.Y}
	maxFraction := input.MaxFraction

	segBounds := func(maxFrac R) shape.AABB {
		t2 := pV2{X: p1.X + maxFrac*d.X, Y: p1.Y + maxFrac*d.Y}
		lower := pV2{X: min(p1.X, t2.X), Y: min(p1.Y, t2.Y)}
		upper := pV2{X: max(p1.X, t2.X), Y: max(p1.Y, t2.Y)}
		return shape.AABB{Lower: lower, Upper: upper}
	}

	segAABB := segBounds(maxFraction)
	stack := []NodeID{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == NullNode {
			continue
		}
		n := &t.nodes[id]
		if !n.aabb.Overlaps(segAABB) {
			continue
		}
		_, ok := n.aabb.RayCast(shape.RayCastInput{P1: p1, P2: p2, MaxFraction: maxFraction})
		if !ok {
			continue
		}
		if n.isLeaf() {
			frac := cb(id, shape.RayCastInput{P1: p1, P2: p2, MaxFraction: maxFraction})
			if frac == 0 {
				return
			}
			if frac < maxFraction {
				maxFraction = frac
				segAABB = segBounds(maxFraction)
			}
		} else {
			stack = append(stack, n.child1, n.child2)
		}
	}
}

// Height returns the height of the tree's root, 0 if empty/single-leaf.
func (t *Tree) Height() int32 {
	if t.root == NullNode {
		return 0
	}
	return t.nodes[t.root].height
}

// MaxBalance returns the largest |height(child2)-height(child1)| found
// at any branch. A correctly rebalanced tree never exceeds 1; checked
// against this in tree_test.go.
func (t *Tree) MaxBalance() int32 {
	var worst int32
	for i := int32(0); i < int32(len(t.nodes)); i++ {
		n := &t.nodes[i]
		if n.height <= 1 {
			continue
		}
		b := n.child2
		a := n.child1
		d := t.nodes[b].height - t.nodes[a].height
		if d < 0 {
			d = -d
		}
		if d > worst {
			worst = d
		}
	}
	return worst
}

// ValidateStructure checks the tree's structural invariants (parent
// pointers, heights, AABB enclosure); used only by tests, the way the
// teacher's vu package keeps validation helpers close to the structures
// they check rather than in a separate fuzz harness.
func (t *Tree) ValidateStructure() bool {
	if t.root == NullNode {
		return true
	}
	return t.validateNode(t.root)
}

func (t *Tree) validateNode(id NodeID) bool {
	n := &t.nodes[id]
	if n.isLeaf() {
		return n.height == 0
	}
	c1, c2 := n.child1, n.child2
	if t.nodes[c1].parent != id || t.nodes[c2].parent != id {
		slog.Error("dynamic tree parent pointer mismatch", "node", id)
		return false
	}
	expectHeight := 1 + max32(t.nodes[c1].height, t.nodes[c2].height)
	if n.height != expectHeight {
		slog.Error("dynamic tree height mismatch", "node", id, "have", n.height, "want", expectHeight)
		return false
	}
	enclosed := shape.Combine(t.nodes[c1].aabb, t.nodes[c2].aabb)
	if !n.aabb.Contains(enclosed) {
		slog.Error("dynamic tree aabb does not enclose children", "node", id)
		return false
	}
	return t.validateNode(c1) && t.validateNode(c2)
}

// ShiftOrigin subtracts origin from every stored node AABB, used to
// re-center long-running simulations without losing floating point
// precision far from the old origin.
func (t *Tree) ShiftOrigin(origin pV2) {
	for i := range t.nodes {
		t.nodes[i].aabb.Lower.X -= origin.X
		t.nodes[i].aabb.Lower.Y -= origin.Y
		t.nodes[i].aabb.Upper.X -= origin.X
		t.nodes[i].aabb.Upper.Y -= origin.Y
	}
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
