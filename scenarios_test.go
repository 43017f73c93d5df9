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

func circleFixtureDef(radius pmath.R) FixtureDef {
	c, _ := shape.NewCircle(pmath.V2{}, radius, 0.005, 10)
	def := NewFixtureDef(c)
	def.Density = 1
	return def
}

// TestScenarioTwoTouchingDisksProduceOneManifoldPoint (S1): two unit
// disks placed to just overlap must produce exactly one touching,
// non-empty-manifold contact after the first step.
func TestScenarioTwoTouchingDisksProduceOneManifoldPoint(t *testing.T) {
	w := NewWorld(pmath.V2{})
	a, _ := w.CreateBody(BodyDef{Type: Dynamic, Position: pmath.V2{}, Enabled: true})
	b, _ := w.CreateBody(BodyDef{Type: Dynamic, Position: pmath.V2{X: 1.9}, Enabled: true})
	w.CreateFixture(a, circleFixtureDef(1))
	w.CreateFixture(b, circleFixtureDef(1))

	w.Step(1.0 / 60)

	require.Len(t, w.Contacts(), 1)
	c := w.Contacts()[0]
	assert.True(t, c.IsTouching())
	assert.Len(t, c.Manifold().Points, 1)
}

// TestScenarioBoxSettlesOnGroundThenSleeps (S2): a box dropped onto a
// static ground eventually comes to rest and is put to sleep.
func TestScenarioBoxSettlesOnGroundThenSleeps(t *testing.T) {
	w := NewWorld(pmath.V2{Y: -10})
	ground, _ := w.CreateBody(BodyDef{Type: Static, Position: pmath.V2{Y: -5}, Enabled: true})
	w.CreateFixture(ground, boxFixtureDefSized(50, 0.5))

	box, _ := w.CreateBody(BodyDef{Type: Dynamic, Position: pmath.V2{Y: 1}, AllowSleep: true, Awake: true, Enabled: true})
	w.CreateFixture(box, boxFixtureDefSized(0.5, 0.5))

	asleep := false
	for i := 0; i < 600; i++ {
		w.Step(1.0 / 60)
		if !box.IsAwake() {
			asleep = true
			break
		}
	}
	assert.True(t, asleep, "a box resting on the ground must eventually fall asleep")
	assert.InDelta(t, pmath.R(0), box.Velocity().V.Y, 0.5)
}

// TestScenarioBulletDoesNotTunnelThroughThinWall (S3): a fast bullet body
// is stopped by a thin static wall instead of passing straight through it.
func TestScenarioBulletDoesNotTunnelThroughThinWall(t *testing.T) {
	w := NewWorld(pmath.V2{})
	wall, _ := w.CreateBody(BodyDef{Type: Static, Position: pmath.V2{}, Enabled: true})
	w.CreateFixture(wall, boxFixtureDefSized(0.05, 5))

	bullet, _ := w.CreateBody(BodyDef{
		Type: Dynamic, Position: pmath.V2{X: -10}, Bullet: true,
		LinearVelocity: pmath.V2{X: 1200}, AllowSleep: true, Awake: true, Enabled: true,
	})
	w.CreateFixture(bullet, boxFixtureDefSized(0.1, 0.1))

	for i := 0; i < 5; i++ {
		w.Step(1.0 / 60)
	}
	assert.Less(t, bullet.Position().X, pmath.R(5), "the bullet must not tunnel past the wall it was aimed at")
}

// TestScenarioStackedBoxesSettleDeterministically (S4): running the same
// three-box stack through an identical number of steps from an identical
// starting configuration twice must produce bit-identical final
// positions, since the block solver's sequential-impulse iteration has
// no hidden randomness (map iteration order never feeds numerical state).
func TestScenarioStackedBoxesSettleDeterministically(t *testing.T) {
	run := func() []pmath.V2 {
		w := NewWorld(pmath.V2{Y: -10})
		ground, _ := w.CreateBody(BodyDef{Type: Static, Position: pmath.V2{Y: -0.5}, Enabled: true})
		w.CreateFixture(ground, boxFixtureDefSized(50, 0.5))

		var boxes []*Body
		for i := 0; i < 3; i++ {
			b, _ := w.CreateBody(BodyDef{
				Type: Dynamic, Position: pmath.V2{Y: pmath.R(i) * 1.01},
				AllowSleep: true, Awake: true, Enabled: true,
			})
			w.CreateFixture(b, boxFixtureDefSized(0.5, 0.5))
			boxes = append(boxes, b)
		}

		for i := 0; i < 120; i++ {
			w.Step(1.0 / 60)
		}
		positions := make([]pmath.V2, len(boxes))
		for i, b := range boxes {
			positions[i] = b.Position()
		}
		return positions
	}

	first := run()
	second := run()
	assert.Equal(t, first, second, "identical initial conditions must settle to identical final positions")
}

// TestScenarioDestroyingJointWakesBothConnectedBodies (S5): putting a
// two-body system to sleep, then destroying the joint connecting them,
// must wake both bodies back up.
func TestScenarioDestroyingJointWakesBothConnectedBodies(t *testing.T) {
	w := NewWorld(pmath.V2{})
	a, _ := w.CreateBody(BodyDef{Type: Dynamic, Position: pmath.V2{}})
	b, _ := w.CreateBody(BodyDef{Type: Dynamic, Position: pmath.V2{X: 5}})
	w.CreateFixture(a, boxFixtureDef())
	w.CreateFixture(b, boxFixtureDef())

	j := &stubJoint{a: a, b: b}
	id, err := w.CreateJoint(j)
	require.NoError(t, err)

	a.SetAwake(false)
	b.SetAwake(false)
	require.False(t, a.IsAwake())
	require.False(t, b.IsAwake())

	require.NoError(t, w.DestroyJoint(id))
	assert.True(t, a.IsAwake())
	assert.True(t, b.IsAwake())
}

// TestScenarioShiftOriginRoundTripRestoresPositions (S6): shifting the
// origin by a vector and then by its negation must restore every body to
// its original position (bit-for-bit, since both operations are plain
// subtraction).
func TestScenarioShiftOriginRoundTripRestoresPositions(t *testing.T) {
	w := NewWorld(pmath.V2{})
	b, _ := w.CreateBody(BodyDef{Type: Dynamic, Position: pmath.V2{X: 12.5, Y: -3.25}})
	w.CreateFixture(b, boxFixtureDef())
	before := b.Position()

	shift := pmath.V2{X: 100, Y: -40}
	require.NoError(t, w.ShiftOrigin(shift))
	require.NoError(t, w.ShiftOrigin(pmath.V2{X: -shift.X, Y: -shift.Y}))

	assert.Equal(t, before, b.Position())
}

func boxFixtureDefSized(hx, hy pmath.R) FixtureDef {
	def := NewFixtureDef(shape.NewBox(hx, hy))
	def.Density = 1
	return def
}

// stubJoint is a minimal Joint used only to exercise joint-creation and
// wake-on-destroy bookkeeping; it applies no constraint forces.
type stubJoint struct {
	a, b *Body
}

func (j *stubJoint) BodyA() *Body            { return j.a }
func (j *stubJoint) BodyB() *Body            { return j.b }
func (j *stubJoint) CollideConnected() bool  { return true }
func (j *stubJoint) InitVelocityConstraints(step SolverStep) {}
func (j *stubJoint) SolveVelocityConstraints(step SolverStep) bool { return true }
func (j *stubJoint) SolvePositionConstraints(conf *Config) bool    { return true }
func (j *stubJoint) ShiftOrigin(newOrigin pmath.V2)                {}
