// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package phys2d

import (
	"testing"

	pmath "github.com/gazed/phys2d/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestPointReflectsBodyTransform(t *testing.T) {
	w := NewWorld(pmath.V2{})
	b, _ := w.CreateBody(BodyDef{Type: Static, Position: pmath.V2{X: 5}})
	f, _ := w.CreateFixture(b, boxFixtureDef())

	assert.True(t, f.TestPoint(pmath.V2{X: 5, Y: 0}))
	assert.False(t, f.TestPoint(pmath.V2{X: 0, Y: 0}))
}

func TestSetFilterFlagsIncidentContactsForRefiltering(t *testing.T) {
	w := NewWorld(pmath.V2{})
	a, _ := w.CreateBody(BodyDef{Type: Dynamic, Position: pmath.V2{}, Enabled: true})
	b, _ := w.CreateBody(BodyDef{Type: Dynamic, Position: pmath.V2{X: 0.9}, Enabled: true})
	fa, _ := w.CreateFixture(a, boxFixtureDef())
	w.CreateFixture(b, boxFixtureDef())
	w.Step(1.0 / 60)
	require.NotEmpty(t, w.Contacts())

	noCollide := Filter{CategoryBits: 1, MaskBits: 0, GroupIndex: 0}
	fa.SetFilter(noCollide)
	w.Step(1.0 / 60)
	assert.Empty(t, w.Contacts(), "refiltering must drop a contact whose fixtures no longer pass the filter")
}

func TestDestroyFixtureRemovesItFromBodyAndResetsMass(t *testing.T) {
	w := NewWorld(pmath.V2{})
	b, _ := w.CreateBody(BodyDef{Type: Dynamic, Position: pmath.V2{}})
	f, _ := w.CreateFixture(b, boxFixtureDef())
	require.Len(t, b.Fixtures(), 1)

	require.NoError(t, w.DestroyFixture(f))
	assert.Empty(t, b.Fixtures())
	assert.Equal(t, pmath.R(1), b.InvMass(), "a dynamic body with no fixtures left falls back to unit mass")
}
