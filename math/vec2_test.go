// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestV2Add(t *testing.T) {
	var v V2
	a, b := V2Of(1, 2), V2Of(3, 4)
	v.Add(&a, &b)
	assert.Equal(t, V2Of(4, 6), v)
}

func TestV2AddScaled(t *testing.T) {
	var v V2
	a, b := V2Of(1, 1), V2Of(2, 2)
	v.AddScaled(&a, &b, 3)
	assert.Equal(t, V2Of(7, 7), v)
}

func TestV2DotCross(t *testing.T) {
	a, b := V2Of(1, 0), V2Of(0, 1)
	assert.Equal(t, R(0), a.Dot(&b))
	assert.Equal(t, R(1), a.Cross2(&b))
	assert.Equal(t, R(-1), b.Cross2(&a))
}

func TestV2CrossSV(t *testing.T) {
	var v V2
	a := V2Of(1, 0)
	v.CrossSV(1, &a)
	assert.True(t, v.Aeq(&V2{X: 0, Y: 1}))
}

func TestV2LenDist(t *testing.T) {
	a, b := V2Of(0, 0), V2Of(3, 4)
	assert.Equal(t, R(5), a.Dist(&b))
	assert.Equal(t, R(25), a.DistSqr(&b))
}

func TestV2UnitZero(t *testing.T) {
	v := V2Of(0, 0)
	v.Unit()
	assert.Equal(t, V2Of(0, 0), v, "Unit of the zero vector must stay zero, not NaN")
}

func TestV2UnitNormalizes(t *testing.T) {
	v := V2Of(3, 4)
	v.Unit()
	assert.InDelta(t, R(1), v.Len(), 1e-9)
}

func TestV2IsValid(t *testing.T) {
	ok := V2Of(1, 2)
	assert.True(t, ok.IsValid())
	bad := V2Of(math_NaN(), 0)
	assert.False(t, bad.IsValid())
}

// math_NaN avoids importing the stdlib math package a second time under a
// different name just for one test value.
func math_NaN() R { var zero R; return zero / zero }

func TestUnitV2RotateRoundTrip(t *testing.T) {
	var u UnitV2
	u.SetAngle(Pi / 6)
	v := V2Of(1, 0)
	var rotated, back V2
	u.Rotate(&rotated, &v)
	u.RotateT(&back, &rotated)
	assert.True(t, back.Aeq(&v))
}

func TestUnitV2MulComposesAngles(t *testing.T) {
	var a, b, u UnitV2
	a.SetAngle(Pi / 4)
	b.SetAngle(Pi / 4)
	u.Mul(&a, &b)
	assert.InDelta(t, Pi/2, u.Angle(), 1e-9)
}

func TestUnitV2MulTIsInverseCompose(t *testing.T) {
	var a, b, u UnitV2
	a.SetAngle(Pi / 3)
	b.SetAngle(Pi / 2)
	u.MulT(&a, &b)
	assert.InDelta(t, Pi/6, u.Angle(), 1e-9)
}

func TestMat22SolveRecoversInput(t *testing.T) {
	var m Mat22
	m.SetAngle(Pi / 5)
	x := V2Of(2, -3)
	var b V2
	m.MulV(&b, &x)
	got := m.Solve(&b)
	assert.True(t, got.Aeq(&x))
}

func TestMat22SolveSingularReturnsZero(t *testing.T) {
	m := Mat22{Col1: V2Of(1, 1), Col2: V2Of(1, 1)}
	got := m.Solve(&V2{X: 1, Y: 1})
	assert.Equal(t, V2Of(0, 0), got)
}
