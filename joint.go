// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package phys2d

import pmath "github.com/gazed/phys2d/math"

// JointID is a stable handle to a Joint.
type JointID = BodyID

// SolverStep carries the per-step quantities a Joint needs to build its
// Jacobian and effective mass: the timestep, its ratio to the previous
// step (for impulse rescaling on warm start), and whether this is a
// warm-starting step at all.
type SolverStep struct {
	Dt         pmath.R
	DtRatio    pmath.R
	WarmStart  bool
	Velocity   int // velocity iteration index, 0-based
	Positional int // position iteration index, 0-based
}

// Joint is the solver's plugin contract: the solver core treats any
// concrete joint type (revolute, prismatic, distance, ...) as this black
// box. Concrete joint types are out of scope here; this repo ships the
// contract plus the bookkeeping (JointEdge, body wake-on-destroy) every
// concrete joint would plug into.
type Joint interface {
	// BodyA/BodyB return the two connected bodies.
	BodyA() *Body
	BodyB() *Body
	// CollideConnected reports whether the two connected bodies should
	// still generate contacts with each other.
	CollideConnected() bool

	// InitVelocityConstraints builds the joint's Jacobian/effective mass
	// for this step and, if step.WarmStart, applies its cached impulse
	// scaled by step.DtRatio.
	InitVelocityConstraints(step SolverStep)
	// SolveVelocityConstraints applies corrective impulses; returns true
	// iff the joint was already satisfied (no change was applied).
	SolveVelocityConstraints(step SolverStep) bool
	// SolvePositionConstraints applies positional correction directly to
	// the connected bodies' sweeps; returns true iff within tolerance.
	SolvePositionConstraints(conf *Config) bool

	// ShiftOrigin adjusts any world-space anchors under a world origin
	// shift.
	ShiftOrigin(newOrigin pmath.V2)
}

// JointEdge links a Joint into its two incident bodies' adjacency lists,
// mirroring ContactEdge.
type JointEdge struct {
	other *Body
	joint Joint
	prev  *JointEdge
	next  *JointEdge
}

// Other returns the body on the far end of this edge.
func (e *JointEdge) Other() *Body { return e.other }

// Joint returns the joint this edge belongs to.
func (e *JointEdge) Joint() Joint { return e.joint }

// Next returns the next edge in this body's joint adjacency list.
func (e *JointEdge) Next() *JointEdge { return e.next }

func linkJointEdge(b *Body, e *JointEdge) {
	e.next = b.jointList
	if b.jointList != nil {
		b.jointList.prev = e
	}
	b.jointList = e
}

func unlinkJointEdge(b *Body, e *JointEdge) {
	if e.prev != nil {
		e.prev.next = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	}
	if b.jointList == e {
		b.jointList = e.next
	}
	e.prev, e.next = nil, nil
}

// jointRegistration is the bookkeeping the World keeps per Joint: the
// two JointEdges plus whatever's needed to mark an existing contact
// between the connected bodies for re-filtering when collideConnected is
// false.
type jointRegistration struct {
	id         JointID
	joint      Joint
	edgeA      *JointEdge
	edgeB      *JointEdge
	islandFlag bool
}

func newJointRegistration(id JointID, j Joint) *jointRegistration {
	r := &jointRegistration{id: id, joint: j}
	r.edgeA = &JointEdge{other: j.BodyB(), joint: j}
	r.edgeB = &JointEdge{other: j.BodyA(), joint: j}
	linkJointEdge(j.BodyA(), r.edgeA)
	linkJointEdge(j.BodyB(), r.edgeB)
	return r
}

func (r *jointRegistration) destroy() {
	unlinkJointEdge(r.joint.BodyA(), r.edgeA)
	unlinkJointEdge(r.joint.BodyB(), r.edgeB)
}
