// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package phys2d

import (
	"testing"

	pmath "github.com/gazed/phys2d/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingListener struct {
	NopContactListener
	begins, ends int
}

func (r *recordingListener) BeginContact(c *Contact) { r.begins++ }
func (r *recordingListener) EndContact(c *Contact)   { r.ends++ }

func TestContactListenerFiresBeginThenEndAsBodiesSeparate(t *testing.T) {
	w := NewWorld(pmath.V2{})
	rec := &recordingListener{}
	w.SetContactListener(rec)

	a, _ := w.CreateBody(BodyDef{Type: Dynamic, Position: pmath.V2{}, Enabled: true})
	b, _ := w.CreateBody(BodyDef{Type: Dynamic, Position: pmath.V2{X: 0.9}, Enabled: true})
	w.CreateFixture(a, boxFixtureDef())
	w.CreateFixture(b, boxFixtureDef())

	w.Step(1.0 / 60)
	assert.Equal(t, 1, rec.begins)
	assert.Equal(t, 0, rec.ends)

	b.SetTransform(pmath.V2{X: 100}, 0)
	w.Step(1.0 / 60)
	assert.Equal(t, 1, rec.ends)
}

func TestDefaultContactFilterRejectsTwoStaticBodies(t *testing.T) {
	w := NewWorld(pmath.V2{})
	a, _ := w.CreateBody(BodyDef{Type: Static, Position: pmath.V2{}, Enabled: true})
	b, _ := w.CreateBody(BodyDef{Type: Static, Position: pmath.V2{X: 0.1}, Enabled: true})
	fa, _ := w.CreateFixture(a, boxFixtureDef())
	fb, _ := w.CreateFixture(b, boxFixtureDef())

	assert.False(t, (DefaultContactFilter{}).ShouldCollide(fa, fb), "two non-dynamic bodies never need a solved contact")
}

func TestFilterGroupIndexOverridesCategoryMask(t *testing.T) {
	f1 := Filter{CategoryBits: 1, MaskBits: 0, GroupIndex: 5}
	f2 := Filter{CategoryBits: 2, MaskBits: 0, GroupIndex: 5}
	assert.True(t, f1.shouldCollide(f2), "a shared positive group index forces collision regardless of bits")

	f3 := Filter{CategoryBits: 1, MaskBits: 0, GroupIndex: -5}
	f4 := Filter{CategoryBits: 2, MaskBits: 0, GroupIndex: -5}
	assert.False(t, f3.shouldCollide(f4), "a shared negative group index forces no collision")
}

func TestSensorFixtureReportsOverlapWithoutManifold(t *testing.T) {
	w := NewWorld(pmath.V2{})
	a, _ := w.CreateBody(BodyDef{Type: Dynamic, Position: pmath.V2{}, Enabled: true})
	b, _ := w.CreateBody(BodyDef{Type: Dynamic, Position: pmath.V2{X: 0.5}, Enabled: true})
	sensorDef := boxFixtureDef()
	sensorDef.IsSensor = true
	w.CreateFixture(a, sensorDef)
	w.CreateFixture(b, boxFixtureDef())

	w.Step(1.0 / 60)
	require.Len(t, w.Contacts(), 1)
	c := w.Contacts()[0]
	assert.True(t, c.IsTouching())
	assert.Empty(t, c.Manifold().Points, "a sensor contact reports overlap but never a solved manifold")
}
