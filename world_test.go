// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package phys2d

import (
	"testing"

	pmath "github.com/gazed/phys2d/math"
	"github.com/gazed/phys2d/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boxFixtureDef() FixtureDef {
	def := NewFixtureDef(shape.NewBox(0.5, 0.5))
	def.Density = 1
	return def
}

func TestCreateBodyThenCreateFixtureSetsMassFromDensity(t *testing.T) {
	w := NewWorld(pmath.V2{Y: -10})
	b, err := w.CreateBody(BodyDef{Type: Dynamic, Position: pmath.V2{X: 1, Y: 2}})
	require.NoError(t, err)

	_, err = w.CreateFixture(b, boxFixtureDef())
	require.NoError(t, err)
	assert.Greater(t, b.InvMass(), pmath.R(0))
}

func TestCreateBodyRejectedWhileWorldLocked(t *testing.T) {
	w := NewWorld(pmath.V2{})
	w.locked = true
	_, err := w.CreateBody(NewBodyDef())
	require.Error(t, err)
	var perr *Error
	assert.ErrorAs(t, err, &perr)
	assert.Equal(t, WrongState, perr.Kind)
}

func TestDestroyBodyCascadesToFixturesAndContacts(t *testing.T) {
	w := NewWorld(pmath.V2{})
	a, _ := w.CreateBody(BodyDef{Type: Dynamic, Position: pmath.V2{}, Enabled: true})
	b, _ := w.CreateBody(BodyDef{Type: Dynamic, Position: pmath.V2{X: 0.9}, Enabled: true})
	w.CreateFixture(a, boxFixtureDef())
	fb, _ := w.CreateFixture(b, boxFixtureDef())
	w.Step(1.0 / 60)
	require.NotEmpty(t, w.Contacts())

	require.NoError(t, w.DestroyBody(a))
	assert.Empty(t, a.Fixtures())
	for _, c := range w.Contacts() {
		assert.NotEqual(t, fb, c.FixtureA())
		assert.NotEqual(t, fb, c.FixtureB())
	}
}

func TestNoContactWhenFixturesNeverTouch(t *testing.T) {
	w := NewWorld(pmath.V2{})
	a, _ := w.CreateBody(BodyDef{Type: Dynamic, Position: pmath.V2{}, LinearVelocity: pmath.V2{X: 0, Y: 0}, Enabled: true})
	b, _ := w.CreateBody(BodyDef{Type: Dynamic, Position: pmath.V2{X: 100}, Enabled: true})
	w.CreateFixture(a, boxFixtureDef())
	w.CreateFixture(b, boxFixtureDef())

	for i := 0; i < 10; i++ {
		w.Step(1.0 / 60)
	}
	assert.Empty(t, w.Contacts(), "bodies that never touch must never produce a manifold")
}

func TestShiftOriginMovesEveryBodyAndTreeEntry(t *testing.T) {
	w := NewWorld(pmath.V2{})
	b, _ := w.CreateBody(BodyDef{Type: Static, Position: pmath.V2{X: 10, Y: 20}})
	w.CreateFixture(b, boxFixtureDef())

	require.NoError(t, w.ShiftOrigin(pmath.V2{X: 3, Y: 4}))
	assert.InDelta(t, pmath.R(7), b.Position().X, 1e-9)
	assert.InDelta(t, pmath.R(16), b.Position().Y, 1e-9)

	var hits int
	w.QueryAABB(shape.AABB{Lower: pmath.V2{X: 6.9, Y: 15.9}, Upper: pmath.V2{X: 7.1, Y: 16.1}}, func(f *Fixture, childIndex int) bool {
		hits++
		return true
	})
	assert.Equal(t, 1, hits)
}

func TestShiftOriginRejectedWhileLocked(t *testing.T) {
	w := NewWorld(pmath.V2{})
	w.locked = true
	err := w.ShiftOrigin(pmath.V2{X: 1})
	require.Error(t, err)
}

func TestQueryAABBFindsOverlappingFixture(t *testing.T) {
	w := NewWorld(pmath.V2{})
	b, _ := w.CreateBody(BodyDef{Type: Static, Position: pmath.V2{}})
	w.CreateFixture(b, boxFixtureDef())

	var hits int
	w.QueryAABB(shape.AABB{Lower: pmath.V2{X: -1, Y: -1}, Upper: pmath.V2{X: 1, Y: 1}}, func(f *Fixture, childIndex int) bool {
		hits++
		return true
	})
	assert.Equal(t, 1, hits)
}

func TestRayCastHitsFixtureAlongSegment(t *testing.T) {
	w := NewWorld(pmath.V2{})
	b, _ := w.CreateBody(BodyDef{Type: Static, Position: pmath.V2{X: 5}})
	w.CreateFixture(b, boxFixtureDef())

	var hitFixture *Fixture
	w.RayCast(pmath.V2{X: -10}, pmath.V2{X: 10}, func(f *Fixture, childIndex int, point, normal pmath.V2, fraction pmath.R) pmath.R {
		hitFixture = f
		return fraction
	})
	assert.NotNil(t, hitFixture)
}
