// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package phys2d

import (
	"github.com/gazed/phys2d/collide"
	pmath "github.com/gazed/phys2d/math"
)

// velocityConstraintPoint is one contact point's precomputed solver data.
type velocityConstraintPoint struct {
	rA, rB                   pmath.V2
	normalMass, tangentMass  pmath.R
	velocityBias             pmath.R
	normalImpulse            pmath.R
	tangentImpulse           pmath.R
}

// contactVelocityConstraint is the per-contact working set the velocity
// solver iterates over, rebuilt once per step from the contact's current
// world manifold. Grounded on Box2D's b2ContactVelocityConstraint.
type contactVelocityConstraint struct {
	points       [2]velocityConstraintPoint
	pointCount   int
	normal       pmath.V2
	k            pmath.Mat22 // raw 2x2 system for the block solve
	friction     pmath.R
	restitution  pmath.R
	invMassA     pmath.R
	invMassB     pmath.R
	invIA        pmath.R
	invIB        pmath.R
	bodyA, bodyB *Body
	contact      *Contact
	useBlock     bool
}

// maxConditionNumber is the condition-number check threshold
// (k11^2 < 1000*(k11*k22 - k12^2)), taken from b2ContactSolver.cpp's
// k_maxConditionNumber.
const maxConditionNumber = 1000.0

// buildVelocityConstraints constructs one contactVelocityConstraint per
// island contact from its current manifold and the bodies' positions at
// the start of the step, and warm-starts velocities from each point's
// carried-over impulse when doWarmStart is set.
func buildVelocityConstraints(isl *island, doWarmStart bool, velocityThreshold pmath.R) []*contactVelocityConstraint {
	vcs := make([]*contactVelocityConstraint, 0, len(isl.contacts))
	for _, c := range isl.contacts {
		fA, fB := c.fixtureA, c.fixtureB
		bodyA, bodyB := fA.body, fB.body
		radiusA := fA.shape.Proxy(c.childA).Radius
		radiusB := fB.shape.Proxy(c.childB).Radius

		wm := collide.ComputeWorldManifold(&c.manifold, &bodyA.xf, radiusA, &bodyB.xf, radiusB)

		vc := &contactVelocityConstraint{
			normal:      wm.Normal,
			friction:    c.friction,
			restitution: c.restitution,
			invMassA:    bodyA.invMass,
			invMassB:    bodyB.invMass,
			invIA:       bodyA.invI,
			invIB:       bodyB.invI,
			bodyA:       bodyA,
			bodyB:       bodyB,
			contact:     c,
			pointCount:  len(wm.Points),
		}

		var tangent pmath.V2
		tangent.RPerp(&vc.normal)

		for i, wp := range wm.Points {
			p := &vc.points[i]
			p.rA = pmath.V2{X: wp.Point.X - bodyA.sweep.C.X, Y: wp.Point.Y - bodyA.sweep.C.Y}
			p.rB = pmath.V2{X: wp.Point.X - bodyB.sweep.C.X, Y: wp.Point.Y - bodyB.sweep.C.Y}

			rnA := p.rA.Cross2(&vc.normal)
			rnB := p.rB.Cross2(&vc.normal)
			kNormal := vc.invMassA + vc.invMassB + vc.invIA*rnA*rnA + vc.invIB*rnB*rnB
			if kNormal > 0 {
				p.normalMass = 1 / kNormal
			}

			rtA := p.rA.Cross2(&tangent)
			rtB := p.rB.Cross2(&tangent)
			kTangent := vc.invMassA + vc.invMassB + vc.invIA*rtA*rtA + vc.invIB*rtB*rtB
			if kTangent > 0 {
				p.tangentMass = 1 / kTangent
			}

			var dv, crossA, crossB pmath.V2
			crossA.CrossSV(bodyA.velocity.W, &p.rA)
			crossB.CrossSV(bodyB.velocity.W, &p.rB)
			dv.X = bodyB.velocity.V.X + crossB.X - bodyA.velocity.V.X - crossA.X
			dv.Y = bodyB.velocity.V.Y + crossB.Y - bodyA.velocity.V.Y - crossA.Y
			vn := dv.Dot(&vc.normal)
			if vn < -velocityThreshold {
				p.velocityBias = -vc.restitution * vn
			}

			mp := &c.manifold.Points[i]
			p.normalImpulse = mp.NormalImpulse
			p.tangentImpulse = mp.TangentImpulse

			if doWarmStart {
				impulse := pmath.V2{
					X: p.normalImpulse*vc.normal.X + p.tangentImpulse*tangent.X,
					Y: p.normalImpulse*vc.normal.Y + p.tangentImpulse*tangent.Y,
				}
				applyImpulseAt(bodyA, -1, impulse, p.rA)
				applyImpulseAt(bodyB, 1, impulse, p.rB)
			}
		}

		if vc.pointCount == 2 {
			rn1A := vc.points[0].rA.Cross2(&vc.normal)
			rn1B := vc.points[0].rB.Cross2(&vc.normal)
			rn2A := vc.points[1].rA.Cross2(&vc.normal)
			rn2B := vc.points[1].rB.Cross2(&vc.normal)

			k11 := vc.invMassA + vc.invMassB + vc.invIA*rn1A*rn1A + vc.invIB*rn1B*rn1B
			k22 := vc.invMassA + vc.invMassB + vc.invIA*rn2A*rn2A + vc.invIB*rn2B*rn2B
			k12 := vc.invMassA + vc.invMassB + vc.invIA*rn1A*rn2A + vc.invIB*rn1B*rn2B

			if k11*k11 < maxConditionNumber*(k11*k22-k12*k12) {
				vc.k = pmath.Mat22{Col1: pmath.V2{X: k11, Y: k12}, Col2: pmath.V2{X: k12, Y: k22}}
				vc.useBlock = true
			}
		}

		vcs = append(vcs, vc)
	}
	return vcs
}

// applyImpulseAt applies impulse (scaled by sign, +-1) at r on b's
// velocity and angular velocity.
func applyImpulseAt(b *Body, sign pmath.R, impulse, r pmath.V2) {
	b.velocity.V.X += sign * b.invMass * impulse.X
	b.velocity.V.Y += sign * b.invMass * impulse.Y
	b.velocity.W += sign * b.invI * r.Cross2(&impulse)
}

// solveVelocityConstraints runs one velocity-iteration pass over every
// contact constraint: normal impulses via the 2-point block solve when
// useBlock, else sequential per-point; friction afterward, bounded by
// friction*normalImpulse.
func solveVelocityConstraints(vcs []*contactVelocityConstraint) {
	for _, vc := range vcs {
		bodyA, bodyB := vc.bodyA, vc.bodyB

		if vc.pointCount == 2 && vc.useBlock {
			solveBlock(vc)
		} else {
			for i := 0; i < vc.pointCount; i++ {
				solveSequentialPoint(vc, &vc.points[i])
			}
		}

		for i := 0; i < vc.pointCount; i++ {
			p := &vc.points[i]
			var tangent pmath.V2
			tangent.RPerp(&vc.normal)

			var dv, crossA, crossB pmath.V2
			crossA.CrossSV(bodyA.velocity.W, &p.rA)
			crossB.CrossSV(bodyB.velocity.W, &p.rB)
			dv.X = bodyB.velocity.V.X + crossB.X - bodyA.velocity.V.X - crossA.X
			dv.Y = bodyB.velocity.V.Y + crossB.Y - bodyA.velocity.V.Y - crossA.Y
			vt := dv.Dot(&tangent)

			lambda := p.tangentMass * -vt
			maxFriction := vc.friction * p.normalImpulse
			newImpulse := pmath.Clamp(p.tangentImpulse+lambda, -maxFriction, maxFriction)
			lambda = newImpulse - p.tangentImpulse
			p.tangentImpulse = newImpulse

			impulse := pmath.V2{X: lambda * tangent.X, Y: lambda * tangent.Y}
			applyImpulseAt(bodyA, -1, impulse, p.rA)
			applyImpulseAt(bodyB, 1, impulse, p.rB)
		}

		vc.contact.manifold.Points[0].NormalImpulse = vc.points[0].normalImpulse
		vc.contact.manifold.Points[0].TangentImpulse = vc.points[0].tangentImpulse
		if vc.pointCount == 2 {
			vc.contact.manifold.Points[1].NormalImpulse = vc.points[1].normalImpulse
			vc.contact.manifold.Points[1].TangentImpulse = vc.points[1].tangentImpulse
		}
	}
}

func relativeNormalVelocity(bodyA, bodyB *Body, p *velocityConstraintPoint, normal pmath.V2) pmath.R {
	var dv, crossA, crossB pmath.V2
	crossA.CrossSV(bodyA.velocity.W, &p.rA)
	crossB.CrossSV(bodyB.velocity.W, &p.rB)
	dv.X = bodyB.velocity.V.X + crossB.X - bodyA.velocity.V.X - crossA.X
	dv.Y = bodyB.velocity.V.Y + crossB.Y - bodyA.velocity.V.Y - crossA.Y
	return dv.Dot(&normal)
}

func solveSequentialPoint(vc *contactVelocityConstraint, p *velocityConstraintPoint) {
	vn := relativeNormalVelocity(vc.bodyA, vc.bodyB, p, vc.normal)
	lambda := -p.normalMass * (vn - p.velocityBias)
	newImpulse := pmath.Max(p.normalImpulse+lambda, 0)
	lambda = newImpulse - p.normalImpulse
	p.normalImpulse = newImpulse

	impulse := pmath.V2{X: lambda * vc.normal.X, Y: lambda * vc.normal.Y}
	applyImpulseAt(vc.bodyA, -1, impulse, p.rA)
	applyImpulseAt(vc.bodyB, 1, impulse, p.rB)
}

// solveBlock implements b2ContactSolver.cpp's 4-case 2-point block LCP
// enumeration: try the unconstrained solve first, then each
// single-active-point case, falling back to leaving both impulses
// unchanged if none of the four admissible cases holds (a rare
// numerical edge case Box2D itself documents as "don't do anything,
// the impulses are probably not very valid").
func solveBlock(vc *contactVelocityConstraint) {
	cp1, cp2 := &vc.points[0], &vc.points[1]
	a := pmath.V2{X: cp1.normalImpulse, Y: cp2.normalImpulse}

	vn1 := relativeNormalVelocity(vc.bodyA, vc.bodyB, cp1, vc.normal)
	vn2 := relativeNormalVelocity(vc.bodyA, vc.bodyB, cp2, vc.normal)

	b := pmath.V2{X: vn1 - cp1.velocityBias, Y: vn2 - cp2.velocityBias}
	var kA pmath.V2
	kA.X = vc.k.Col1.X*a.X + vc.k.Col2.X*a.Y
	kA.Y = vc.k.Col1.Y*a.X + vc.k.Col2.Y*a.Y
	b.X -= kA.X
	b.Y -= kA.Y

	// case 1: both impulses active.
	negB := pmath.V2{X: -b.X, Y: -b.Y}
	x := vc.k.Solve(&negB)
	if x.X >= 0 && x.Y >= 0 {
		applyBlockResult(vc, cp1, cp2, x, a)
		return
	}

	// case 2: x2 = 0.
	x.X = -cp1.normalMass * b.X
	x.Y = 0
	if x.X >= 0 {
		vn2b := vc.k.Col1.Y*x.X + b.Y
		if vn2b >= 0 {
			applyBlockResult(vc, cp1, cp2, x, a)
			return
		}
	}

	// case 3: x1 = 0.
	x.X = 0
	x.Y = -cp2.normalMass * b.Y
	if x.Y >= 0 {
		vn1b := vc.k.Col2.X*x.Y + b.X
		if vn1b >= 0 {
			applyBlockResult(vc, cp1, cp2, x, a)
			return
		}
	}

	// case 4: both clamped to zero.
	if b.X >= 0 && b.Y >= 0 {
		x = pmath.V2{}
		applyBlockResult(vc, cp1, cp2, x, a)
		return
	}
	// no admissible case: leave impulses as-is this iteration.
}

func applyBlockResult(vc *contactVelocityConstraint, cp1, cp2 *velocityConstraintPoint, x, a pmath.V2) {
	d := pmath.V2{X: x.X - a.X, Y: x.Y - a.Y}
	p1 := pmath.V2{X: d.X * vc.normal.X, Y: d.X * vc.normal.Y}
	p2 := pmath.V2{X: d.Y * vc.normal.X, Y: d.Y * vc.normal.Y}
	sum := pmath.V2{X: p1.X + p2.X, Y: p1.Y + p2.Y}

	vc.bodyA.velocity.V.X -= vc.invMassA * sum.X
	vc.bodyA.velocity.V.Y -= vc.invMassA * sum.Y
	vc.bodyA.velocity.W -= vc.invIA * (cp1.rA.Cross2(&p1) + cp2.rA.Cross2(&p2))

	vc.bodyB.velocity.V.X += vc.invMassB * sum.X
	vc.bodyB.velocity.V.Y += vc.invMassB * sum.Y
	vc.bodyB.velocity.W += vc.invIB * (cp1.rB.Cross2(&p1) + cp2.rB.Cross2(&p2))

	cp1.normalImpulse = x.X
	cp2.normalImpulse = x.Y
}

// integrateVelocities applies gravity and implicit damping to every
// dynamic body in the island. Kinematic/Static bodies have invMass == 0
// so the force term vanishes
// and they pass through unchanged, carrying whatever velocity was
// prescribed.
func integrateVelocities(isl *island, gravity pmath.V2, dt pmath.R) {
	for _, b := range isl.bodies {
		if b.bodyType != Dynamic {
			continue
		}
		b.velocity.V.X = (b.velocity.V.X + dt*(gravity.X*b.gravityScale+b.invMass*b.force.X)) / (1 + dt*b.linearDamping)
		b.velocity.V.Y = (b.velocity.V.Y + dt*(gravity.Y*b.gravityScale+b.invMass*b.force.Y)) / (1 + dt*b.linearDamping)
		b.velocity.W = (b.velocity.W + dt*b.invI*b.torque) / (1 + dt*b.angularDamping)
	}
}

// integratePositions advances each body's sweep by its velocity,
// clamping per-step translation/rotation against the configured maximum.
func integratePositions(isl *island, conf *Config, dt pmath.R) {
	for _, b := range isl.bodies {
		if b.bodyType == Static {
			continue
		}
		v, w := b.velocity.V, b.velocity.W

		translation := pmath.V2{X: dt * v.X, Y: dt * v.Y}
		if transLenSq := translation.Dot(&translation); transLenSq > conf.MaxTranslation*conf.MaxTranslation {
			ratio := conf.MaxTranslation / pmath.Sqrt(transLenSq)
			v.X *= ratio
			v.Y *= ratio
		}
		rotation := dt * w
		if rotation*rotation > conf.MaxRotation*conf.MaxRotation {
			ratio := conf.MaxRotation / pmath.Abs(rotation)
			w *= ratio
		}

		b.sweep.C.X += dt * v.X
		b.sweep.C.Y += dt * v.Y
		b.sweep.A += dt * w
		b.velocity.V, b.velocity.W = v, w
	}
}

// solvePositionConstraints runs one Baumgarte position-correction pass
// over every island contact, returning the minimum separation observed.
// Contacts re-derive their world manifold from the bodies' *current*
// positions each call, since the
// position solver mutates sweep.C/A directly without syncing xf until
// Finalize.
func solvePositionConstraints(isl *island, conf *Config) pmath.R {
	minSeparation := pmath.R(0)
	for _, c := range isl.contacts {
		fA, fB := c.fixtureA, c.fixtureB
		bodyA, bodyB := fA.body, fB.body
		radiusA := fA.shape.Proxy(c.childA).Radius
		radiusB := fB.shape.Proxy(c.childB).Radius

		xfA := sweepTransform(bodyA)
		xfB := sweepTransform(bodyB)
		wm := collide.ComputeWorldManifold(&c.manifold, &xfA, radiusA, &xfB, radiusB)

		for _, wp := range wm.Points {
			if wp.Separation < minSeparation {
				minSeparation = wp.Separation
			}

			rA := pmath.V2{X: wp.Point.X - bodyA.sweep.C.X, Y: wp.Point.Y - bodyA.sweep.C.Y}
			rB := pmath.V2{X: wp.Point.X - bodyB.sweep.C.X, Y: wp.Point.Y - bodyB.sweep.C.Y}

			rnA := rA.Cross2(&wm.Normal)
			rnB := rB.Cross2(&wm.Normal)
			k := bodyA.invMass + bodyB.invMass + bodyA.invI*rnA*rnA + bodyB.invI*rnB*rnB
			normalMass := pmath.R(0)
			if k > 0 {
				normalMass = 1 / k
			}

			cCorr := pmath.Clamp(conf.Baumgarte*(wp.Separation+conf.LinearSlop), -conf.MaxLinearCorrection, 0)
			impulseMag := -normalMass * cCorr
			impulse := pmath.V2{X: impulseMag * wm.Normal.X, Y: impulseMag * wm.Normal.Y}

			bodyA.sweep.C.X -= bodyA.invMass * impulse.X
			bodyA.sweep.C.Y -= bodyA.invMass * impulse.Y
			bodyA.sweep.A -= bodyA.invI * rA.Cross2(&impulse)

			bodyB.sweep.C.X += bodyB.invMass * impulse.X
			bodyB.sweep.C.Y += bodyB.invMass * impulse.Y
			bodyB.sweep.A += bodyB.invI * rB.Cross2(&impulse)
		}
	}
	return minSeparation
}

// sweepTransform derives a body's current world transform from its
// sweep without mutating b.xf (the position solver only commits to xf
// at Finalize, matching Box2D's b2Position working copy).
func sweepTransform(b *Body) pmath.Transform {
	var xf pmath.Transform
	xf.Q.SetAngle(b.sweep.A)
	var rotatedCenter pmath.V2
	xf.Q.Rotate(&rotatedCenter, &b.sweep.LocalCenter)
	xf.P.X = b.sweep.C.X - rotatedCenter.X
	xf.P.Y = b.sweep.C.Y - rotatedCenter.Y
	return xf
}

// solveIsland runs the full per-island pipeline: integrate
// velocities, build+warm-start contact constraints, run velocity
// iterations (plus joint velocity constraints), integrate positions,
// run position iterations (plus joint position constraints) with early
// exit once both contact and joint tolerances are met, then finalize
// transforms and synchronize fixtures.
func solveIsland(isl *island, w *World, dt, dtRatio pmath.R) {
	conf := &w.config
	step := SolverStep{Dt: dt, DtRatio: dtRatio, WarmStart: conf.DoWarmStart}

	integrateVelocities(isl, w.gravity, dt)

	vcs := buildVelocityConstraints(isl, conf.DoWarmStart, conf.VelocityThreshold)
	for _, reg := range isl.joints {
		reg.joint.InitVelocityConstraints(step)
	}

	for i := 0; i < conf.VelocityIterations; i++ {
		step.Velocity = i
		for _, reg := range isl.joints {
			reg.joint.SolveVelocityConstraints(step)
		}
		solveVelocityConstraints(vcs)
	}

	integratePositions(isl, conf, dt)

	for i := 0; i < conf.PositionIterations; i++ {
		step.Positional = i
		contactsOK := solvePositionConstraints(isl, conf) >= -3*conf.LinearSlop
		jointsOK := true
		for _, reg := range isl.joints {
			if !reg.joint.SolvePositionConstraints(conf) {
				jointsOK = false
			}
		}
		if contactsOK && jointsOK {
			break
		}
	}

	for _, b := range isl.bodies {
		if b.bodyType == Static {
			continue
		}
		oldXf := b.xf
		b.synchronizeTransform()
		for _, f := range b.fixtures {
			f.synchronize(w.broadPhase, &oldXf, &b.xf, conf.AABBExtension)
		}
	}

	reportPostSolve(vcs, w.contactManager.listener)

	isl.updateSleep(conf, dt)
}

// reportPostSolve fires listener.PostSolve once per contact after the
// full velocity+position solve, with the final per-point impulses.
// Grounded on Box2D's b2Island::Report, called once at the very end of
// the island solve, after position iterations, not right after velocity
// iterations.
func reportPostSolve(vcs []*contactVelocityConstraint, listener ContactListener) {
	if listener == nil {
		return
	}
	for _, vc := range vcs {
		impulse := ContactImpulse{
			NormalImpulses:  make([]float64, vc.pointCount),
			TangentImpulses: make([]float64, vc.pointCount),
		}
		for i := 0; i < vc.pointCount; i++ {
			impulse.NormalImpulses[i] = float64(vc.points[i].normalImpulse)
			impulse.TangentImpulses[i] = float64(vc.points[i].tangentImpulse)
		}
		listener.PostSolve(vc.contact, &impulse)
	}
}
