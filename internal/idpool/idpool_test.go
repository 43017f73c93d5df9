// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package idpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcquireReturnsDistinctLiveIDs(t *testing.T) {
	p := New(10)
	a, ok := p.Acquire()
	assert.True(t, ok)
	b, ok := p.Acquire()
	assert.True(t, ok)

	assert.NotEqual(t, a, b)
	assert.True(t, p.IsLive(a))
	assert.True(t, p.IsLive(b))
	assert.Equal(t, int32(2), p.Count())
}

func TestReleaseThenAcquireReusesIndexWithBumpedGeneration(t *testing.T) {
	p := New(10)
	a, _ := p.Acquire()
	p.Release(a)
	assert.False(t, p.IsLive(a), "a released id must no longer be live")

	b, _ := p.Acquire()
	assert.Equal(t, a.Index, b.Index, "the freed slot is reused")
	assert.NotEqual(t, a.Gen, b.Gen, "the generation must change so the old handle is distinguishable")
}

func TestAcquireRejectsPastMaxCount(t *testing.T) {
	p := New(2)
	_, ok1 := p.Acquire()
	_, ok2 := p.Acquire()
	_, ok3 := p.Acquire()
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.False(t, ok3, "a third id must be rejected once maxCount live ids are outstanding")
}

func TestReleaseUnknownOrStaleIDIsANoop(t *testing.T) {
	p := New(10)
	p.Release(ID{Index: 5, Gen: 1})
	assert.Equal(t, int32(0), p.Count())

	a, _ := p.Acquire()
	p.Release(a)
	p.Release(a)
	assert.Equal(t, int32(0), p.Count(), "releasing the same id twice must not double-free")
}

func TestZeroValueIDIsNeverValid(t *testing.T) {
	assert.False(t, ID{}.Valid())
}

func TestIsLiveRejectsOutOfRangeIndex(t *testing.T) {
	p := New(10)
	assert.False(t, p.IsLive(ID{Index: 100, Gen: 1}))
	assert.False(t, p.IsLive(ID{Index: -1, Gen: 1}))
}
