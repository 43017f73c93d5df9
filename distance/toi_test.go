// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package distance

import (
	"testing"

	pmath "github.com/gazed/phys2d/math"
	"github.com/stretchr/testify/assert"
)

func stillSweep(x, y pmath.R) pmath.Sweep {
	c := pmath.V2{X: x, Y: y}
	return pmath.Sweep{C0: c, C: c, Alpha0: 0}
}

func movingSweep(x0, y0, x1, y1 pmath.R) pmath.Sweep {
	return pmath.Sweep{
		C0: pmath.V2{X: x0, Y: y0},
		C:  pmath.V2{X: x1, Y: y1},
		Alpha0: 0,
	}
}

// TestTimeOfImpactBulletStopsBeforeTunnelingThroughWall checks the
// no-tunneling invariant: a fast mover swept clean through a stationary
// wall must report a touching time strictly before it reaches the far
// side, not TOISeparated at t=1.
func TestTimeOfImpactBulletStopsBeforeTunnelingThroughWall(t *testing.T) {
	wall := unitBox()
	bullet := unitBox()

	in := TOIInput{
		ProxyA: wall,
		SweepA: stillSweep(0, 0),
		ProxyB: bullet,
		SweepB: movingSweep(-10, 0, 10, 0),
		TMax:   1,
	}

	out := TimeOfImpact(in, 20, 50, 20)
	assert.Equal(t, TOITouching, out.State)
	assert.Greater(t, out.T, pmath.R(0))
	assert.Less(t, out.T, pmath.R(1))
}

func TestTimeOfImpactAlreadyOverlappingReportsOverlappedAtZero(t *testing.T) {
	a, b := unitBox(), unitBox()
	in := TOIInput{
		ProxyA: a,
		SweepA: stillSweep(0, 0),
		ProxyB: b,
		SweepB: stillSweep(0.1, 0),
		TMax:   1,
	}

	out := TimeOfImpact(in, 20, 50, 20)
	assert.Equal(t, TOIOverlapped, out.State)
	assert.Equal(t, pmath.R(0), out.T)
}

func TestTimeOfImpactNeverApproachingReportsSeparatedAtTMax(t *testing.T) {
	a, b := unitBox(), unitBox()
	in := TOIInput{
		ProxyA: a,
		SweepA: stillSweep(0, 0),
		ProxyB: b,
		SweepB: movingSweep(20, 0, 21, 0),
		TMax:   1,
	}

	out := TimeOfImpact(in, 20, 50, 20)
	assert.Equal(t, TOISeparated, out.State)
	assert.Equal(t, pmath.R(1), out.T)
}

func TestTimeOfImpactGrazingPathAtSeparationStaysSeparated(t *testing.T) {
	a, b := unitBox(), unitBox()
	in := TOIInput{
		ProxyA: a,
		SweepA: stillSweep(0, 0),
		ProxyB: b,
		SweepB: movingSweep(-10, 5, 10, 5),
		TMax:   1,
	}

	out := TimeOfImpact(in, 20, 50, 20)
	assert.Equal(t, TOISeparated, out.State)
}
