// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package phys2d

import (
	"github.com/gazed/phys2d/broadphase"
	pmath "github.com/gazed/phys2d/math"
	"github.com/gazed/phys2d/shape"
)

// FixtureID is a stable handle to a Fixture.
type FixtureID = BodyID

// Filter is the default collision filter. Two fixtures that share the
// same non-zero GroupIndex always collide when it is positive and never
// when it is negative; otherwise they collide only when each one's
// CategoryBits intersects the other's MaskBits. Matches Box2D's b2Filter.
type Filter struct {
	CategoryBits uint16
	MaskBits     uint16
	GroupIndex   int16
}

// DefaultFilter collides with everything (Box2D's b2Filter defaults).
func DefaultFilter() Filter {
	return Filter{CategoryBits: 0x0001, MaskBits: 0xFFFF, GroupIndex: 0}
}

// shouldCollide applies the default filter rule.
func (f Filter) shouldCollide(o Filter) bool {
	if f.GroupIndex == o.GroupIndex && f.GroupIndex != 0 {
		return f.GroupIndex > 0
	}
	return f.CategoryBits&o.MaskBits != 0 && o.CategoryBits&f.MaskBits != 0
}

// FixtureDef is the set of values used to attach a shape to a body.
type FixtureDef struct {
	Shape       shape.Shape
	Density     pmath.R
	Friction    pmath.R
	Restitution pmath.R
	IsSensor    bool
	Filter      Filter
}

// NewFixtureDef returns Box2D-matching defaults: friction 0.2,
// restitution 0, density 0 (static-like, zero mass contribution), the
// default filter.
func NewFixtureDef(s shape.Shape) FixtureDef {
	return FixtureDef{Shape: s, Friction: 0.2, Filter: DefaultFilter()}
}

// fixtureProxy binds one shape child to a broad-phase proxy and the
// tight AABB it was last synchronized against.
type fixtureProxy struct {
	proxyID  broadphase.ProxyID
	aabb     shape.AABB
	childIdx int
}

// Fixture glues a Shape to a Body with material/filter data, and owns
// one broad-phase proxy per shape child. Grounded on
// gazed/vu/physics/shape.go's per-body shape list, split out into its
// own type the way Box2D's b2Fixture is, since fixture-level
// filtering/sensor/material data is orthogonal to the body it's
// attached to.
type Fixture struct {
	id   FixtureID
	body *Body

	shape       shape.Shape
	density     pmath.R
	friction    pmath.R
	restitution pmath.R
	isSensor    bool
	filter      Filter

	proxies []fixtureProxy

	userData any
}

func newFixture(id FixtureID, b *Body, def FixtureDef) *Fixture {
	return &Fixture{
		id:          id,
		body:        b,
		shape:       def.Shape,
		density:     def.Density,
		friction:    def.Friction,
		restitution: def.Restitution,
		isSensor:    def.IsSensor,
		filter:      def.Filter,
	}
}

// ID returns the fixture's stable handle.
func (f *Fixture) ID() FixtureID { return f.id }

// Body returns the owning body.
func (f *Fixture) Body() *Body { return f.body }

// Shape returns the underlying shape.
func (f *Fixture) Shape() shape.Shape { return f.shape }

// Density returns the fixture's density.
func (f *Fixture) Density() pmath.R { return f.density }

// SetDensity sets the fixture's density. Callers must call
// Body.ResetMassData to apply the change to the owning body's mass.
func (f *Fixture) SetDensity(d pmath.R) { f.density = d }

// Friction returns the fixture's Coulomb friction coefficient.
func (f *Fixture) Friction() pmath.R { return f.friction }

// SetFriction sets the fixture's friction coefficient.
func (f *Fixture) SetFriction(v pmath.R) { f.friction = v }

// Restitution returns the fixture's coefficient of restitution.
func (f *Fixture) Restitution() pmath.R { return f.restitution }

// SetRestitution sets the fixture's coefficient of restitution.
func (f *Fixture) SetRestitution(v pmath.R) { f.restitution = v }

// IsSensor reports whether the fixture only reports overlap, never
// generating a solved contact.
func (f *Fixture) IsSensor() bool { return f.isSensor }

// Filter returns the fixture's current collision filter.
func (f *Fixture) Filter() Filter { return f.filter }

// SetFilter updates the fixture's collision filter and forces every
// contact incident to this fixture to be re-filtered on the next step.
func (f *Fixture) SetFilter(filter Filter) {
	f.filter = filter
	if f.body == nil || f.body.world == nil {
		return
	}
	for ce := f.body.contactList; ce != nil; ce = ce.next {
		c := ce.contact
		if c.fixtureA == f || c.fixtureB == f {
			c.filterNeeded = true
		}
	}
}

// UserData returns the opaque user payload.
func (f *Fixture) UserData() any { return f.userData }

// SetUserData sets the opaque user payload.
func (f *Fixture) SetUserData(v any) { f.userData = v }

// TestPoint reports whether p (world space) lies inside the shape.
func (f *Fixture) TestPoint(p pmath.V2) bool {
	xf := f.body.xf
	return f.shape.TestPoint(&xf, &p)
}

// createProxies inserts one broad-phase proxy per shape child, fattened
// by aabbExtension.
func (f *Fixture) createProxies(bp *broadphase.BroadPhase, xf *pmath.Transform, aabbExtension pmath.R) {
	n := f.shape.ChildCount()
	f.proxies = make([]fixtureProxy, n)
	for i := 0; i < n; i++ {
		tight := f.shape.ComputeAABB(xf, i)
		fat := tight.Extend(aabbExtension)
		id := bp.CreateProxy(fat, leafData{fixture: f, childIndex: i})
		f.proxies[i] = fixtureProxy{proxyID: id, aabb: fat, childIdx: i}
	}
}

// destroyProxies removes every broad-phase proxy this fixture owns.
func (f *Fixture) destroyProxies(bp *broadphase.BroadPhase) {
	for _, p := range f.proxies {
		bp.DestroyProxy(p.proxyID)
	}
	f.proxies = nil
}

// synchronize recomputes each child's tight AABB at xf2, predicts
// displacement from xf1, and re-inserts into the broad phase only if
// the new tight AABB escapes the proxy's stored fat AABB. Grounded on
// Box2D's b2Fixture::Synchronize.
func (f *Fixture) synchronize(bp *broadphase.BroadPhase, xf1, xf2 *pmath.Transform, aabbExtension pmath.R) {
	for idx := range f.proxies {
		p := &f.proxies[idx]
		aabb1 := f.shape.ComputeAABB(xf1, p.childIdx)
		aabb2 := f.shape.ComputeAABB(xf2, p.childIdx)
		tight := shape.Combine(aabb1, aabb2)

		if p.aabb.Contains(tight) {
			continue
		}

		fat := tight.Extend(aabbExtension)
		d := pmath.V2{X: xf2.P.X - xf1.P.X, Y: xf2.P.Y - xf1.P.Y}
		if d.X > 0 {
			fat.Upper.X += d.X
		} else {
			fat.Lower.X += d.X
		}
		if d.Y > 0 {
			fat.Upper.Y += d.Y
		} else {
			fat.Lower.Y += d.Y
		}
		p.aabb = fat
		bp.MoveProxy(p.proxyID, tight, fat)
	}
}

// leafData is the opaque payload stored at each broad-phase leaf,
// identifying exactly which fixture child a proxy belongs to.
type leafData struct {
	fixture    *Fixture
	childIndex int
}
