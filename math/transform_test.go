// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransformPointRoundTrip(t *testing.T) {
	var xf Transform
	xf.Set(&V2{X: 5, Y: -3}, Pi/4)

	local := V2Of(2, 1)
	var world, back V2
	xf.Point(&world, &local)
	xf.InvPoint(&back, &world)

	assert.True(t, back.Aeq(&local))
}

func TestTransformMulMatchesSequentialApplication(t *testing.T) {
	var a, b, ab Transform
	a.Set(&V2{X: 1, Y: 2}, Pi/6)
	b.Set(&V2{X: -3, Y: 4}, Pi/3)
	ab.Mul(&a, &b)

	p := V2Of(1, 1)
	var viaB, viaAB V2
	b.Point(&viaB, &p)
	a.Point(&viaAB, &viaB)

	var direct V2
	ab.Point(&direct, &p)

	assert.True(t, direct.Aeq(&viaAB))
}

func TestTransformMulTExpressesBInAFrame(t *testing.T) {
	var a, b, rel Transform
	a.Set(&V2{X: 2, Y: 0}, Pi/2)
	b.Set(&V2{X: 2, Y: 3}, Pi)
	rel.MulT(&a, &b)

	var ab, viaRel V2
	b.Point(&ab, &V2{})
	var local V2
	a.InvPoint(&local, &ab)
	rel.Point(&viaRel, &V2{})

	assert.True(t, viaRel.Aeq(&local))
}

func TestSweepGetTransformInterpolates(t *testing.T) {
	s := Sweep{
		C0: V2Of(0, 0), C: V2Of(10, 0),
		A0: 0, A: 0,
	}
	var xf Transform
	s.GetTransform(&xf, 0.5)
	assert.InDelta(t, R(5), xf.P.X, 1e-9)
}

func TestSweepAdvanceLeavesTargetUnchanged(t *testing.T) {
	s := Sweep{C0: V2Of(0, 0), C: V2Of(10, 0), A0: 0, A: 0}
	s.Advance(0.5)
	assert.InDelta(t, R(0.5), s.Alpha0, 1e-9)
	assert.InDelta(t, R(5), s.C0.X, 1e-9)
	assert.InDelta(t, R(10), s.C.X, 1e-9, "Advance must not move the step's target position")
}

func TestSweepAdvanceNoopWhenAlreadyPast(t *testing.T) {
	s := Sweep{C0: V2Of(3, 0), C: V2Of(10, 0), A0: 0.6, A: 0}
	s.Advance(0.3)
	assert.InDelta(t, R(0.6), s.Alpha0, 1e-9)
	assert.InDelta(t, R(3), s.C0.X, 1e-9)
}
