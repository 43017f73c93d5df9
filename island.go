// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package phys2d

import pmath "github.com/gazed/phys2d/math"

// island is one connected component of the body/contact/joint graph,
// built by depth-first traversal and solved as a unit.
// Bodies/contacts/joints are indexed within the island; these indices
// are the handles the velocity/position constraints use. Grounded on
// Box2D's b2Island, restructured around Go slices instead of
// the original's preallocated C arrays, and on
// undefinedopcode-cp/space.go's ProcessComponents for the sleep
// bookkeeping shape (per-body idle timer, whole-component sleep gate).
type island struct {
	bodies   []*Body
	contacts []*Contact
	joints   []*jointRegistration
}

// buildIslands partitions every awake, non-static body reachable through
// touching non-sensor contacts or enabled joints into islands. Static
// bodies are never added to an island's body list and never propagate
// the island outward; their touching contacts and joints with island
// bodies are still gathered into the island's contacts and joints.
func buildIslands(w *World) []*island {
	inIsland := map[BodyID]bool{}
	var islands []*island

	for _, seed := range w.bodies {
		if seed.bodyType == Static {
			continue
		}
		if !seed.IsEnabled() || !seed.IsAwake() || inIsland[seed.id] {
			continue
		}

		isl := &island{}
		stack := []*Body{seed}
		inIsland[seed.id] = true

		for len(stack) > 0 {
			n := len(stack) - 1
			b := stack[n]
			stack = stack[:n]

			b.SetAwake(true)
			isl.bodies = append(isl.bodies, b)

			if b.bodyType == Static {
				continue
			}

			for ce := b.contactList; ce != nil; ce = ce.next {
				c := ce.contact
				if c.islandFlag {
					continue
				}
				if !c.IsEnabled() || !c.touching || c.isSensor {
					continue
				}
				c.islandFlag = true
				other := ce.other
				if other.bodyType == Static {
					continue
				}
				if inIsland[other.id] {
					continue
				}
				inIsland[other.id] = true
				stack = append(stack, other)
			}

			for je := b.jointList; je != nil; je = je.next {
				reg := w.jointByJoint[je.joint]
				if reg != nil && reg.islandFlag {
					continue
				}
				other := je.other
				if !other.IsEnabled() {
					continue
				}
				if reg != nil {
					reg.islandFlag = true
					isl.joints = append(isl.joints, reg)
				}
				if other.bodyType == Static || inIsland[other.id] {
					continue
				}
				inIsland[other.id] = true
				stack = append(stack, other)
			}
		}

		for _, c := range collectTouchingContacts(isl.bodies) {
			isl.contacts = append(isl.contacts, c)
		}
		islands = append(islands, isl)
	}

	for _, c := range w.contactManager.contacts {
		c.islandFlag = false
	}
	for _, r := range w.joints {
		r.islandFlag = false
	}

	return islands
}

// collectTouchingContacts gathers each island body's touching,
// non-sensor, enabled contacts exactly once (a contact between two
// island bodies is reachable from either endpoint).
func collectTouchingContacts(bodies []*Body) []*Contact {
	seen := map[*Contact]bool{}
	var out []*Contact
	for _, b := range bodies {
		for ce := b.contactList; ce != nil; ce = ce.next {
			c := ce.contact
			if !c.IsEnabled() || !c.touching || c.isSensor || seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// updateSleep advances or resets each body's sleepTime, then, if the
// whole island qualifies, puts every body to sleep. Static bodies are
// excluded from the vote (they're never asleep/awake in the speedable
// sense).
func (isl *island) updateSleep(conf *Config, dt pmath.R) {
	if !conf.AllowSleep {
		return
	}

	minSleepTime := pmath.R(1e300)
	for _, b := range isl.bodies {
		if b.bodyType == Static {
			continue
		}
		if !b.AllowSleep() {
			minSleepTime = 0
			continue
		}
		linSq := b.velocity.V.Dot(&b.velocity.V)
		angSq := b.velocity.W * b.velocity.W
		if linSq > conf.LinearSleepTolerance*conf.LinearSleepTolerance ||
			angSq > conf.AngularSleepTolerance*conf.AngularSleepTolerance {
			b.sleepTime = 0
		} else {
			b.sleepTime += dt
		}
		if b.sleepTime < minSleepTime {
			minSleepTime = b.sleepTime
		}
	}

	if minSleepTime >= conf.MinStillTimeToSleep {
		for _, b := range isl.bodies {
			if b.bodyType != Static {
				b.SetAwake(false)
			}
		}
	}
}
