// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root

package roaring

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyOnWriteSharing(t *testing.T) {
	rb := FromRange(0, 200000, 1)
	rb.SetCopyOnWrite(true)

	cl := rb.Clone()
	for i := range rb.highlow.containers {
		s, ok := rb.highlow.containers[i].(*sharedContainer)
		require.True(t, ok, "source slot %d not shared", i)
		assert.Same(t, s, cl.highlow.containers[i])
		assert.Equal(t, int32(2), s.refs)
	}

	// a second clone raises the counts, not the copies
	cl2 := rb.Clone()
	for i := range rb.highlow.containers {
		assert.Equal(t, int32(3), rb.highlow.containers[i].(*sharedContainer).refs)
	}

	// mutating one holder unshares only its slot
	cl.Add(1)
	s := rb.highlow.containers[0].(*sharedContainer)
	assert.Equal(t, int32(2), s.refs)
	_, stillShared := cl.highlow.containers[0].(*sharedContainer)
	assert.False(t, stillShared)

	assert.True(t, rb.Equals(cl))
	assert.True(t, rb.Equals(cl2))
	checkInvariants(t, rb)
	checkInvariants(t, cl)
}

func TestCopyOnWriteUnshareOnLastHolder(t *testing.T) {
	rb := Of(1, 2, 3)
	rb.SetCopyOnWrite(true)
	cl := rb.Clone()

	// both holders mutate; the second one extracts without cloning
	rb.Add(4)
	cl.Add(5)
	assert.Equal(t, []uint32{1, 2, 3, 4}, rb.ToArray())
	assert.Equal(t, []uint32{1, 2, 3, 5}, cl.ToArray())
}

// TestCopyOnWriteTransparency runs every combinator under all four flag
// combinations; the value results must be identical.
func TestCopyOnWriteTransparency(t *testing.T) {
	rnd := rand.New(rand.NewSource(91))
	baseX := Of(randomValues(rnd, 4000, 1<<19)...)
	baseY := FromRange(100000, 400000, 2)

	type result struct{ and, or, xor, andnot, flip, many *Bitmap }
	var want *result
	for _, cowX := range []bool{false, true} {
		for _, cowY := range []bool{false, true} {
			x, y := baseX.Clone(), baseY.Clone()
			x.SetCopyOnWrite(cowX)
			y.SetCopyOnWrite(cowY)
			got := &result{
				and:    And(x, y),
				or:     Or(x, y),
				xor:    Xor(x, y),
				andnot: AndNot(x, y),
				flip:   Flip(x, 50000, 300000),
				many:   OrManyHeap(x, y, baseX),
			}
			if want == nil {
				want = got
				continue
			}
			assert.True(t, want.and.Equals(got.and), "and cow=%v,%v", cowX, cowY)
			assert.True(t, want.or.Equals(got.or), "or cow=%v,%v", cowX, cowY)
			assert.True(t, want.xor.Equals(got.xor), "xor cow=%v,%v", cowX, cowY)
			assert.True(t, want.andnot.Equals(got.andnot), "andnot cow=%v,%v", cowX, cowY)
			assert.True(t, want.flip.Equals(got.flip), "flip cow=%v,%v", cowX, cowY)
			assert.True(t, want.many.Equals(got.many), "many cow=%v,%v", cowX, cowY)
		}
	}
}

func TestCopyOnWriteSerialization(t *testing.T) {
	rb := FromRange(0, 150000, 1)
	rb.RunOptimize()
	rb.SetCopyOnWrite(true)
	cl := rb.Clone()

	// shared wrappers serialize exactly like their owned counterparts
	assert.Equal(t, rb.ToBytes(), cl.ToBytes())
	assert.Equal(t, rb.Serialize(), cl.Serialize())

	back, err := FromBytes(cl.ToBytes())
	require.NoError(t, err)
	assert.True(t, back.Equals(rb))
}
