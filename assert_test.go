// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root

package roaring

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

// newArr, newBmp and newRunC build a container of a specific representation
// from the given values.
func newArr(values ...uint16) container {
	c := newArrayContainer()
	for _, v := range values {
		c.add(v)
	}
	return c
}

func newBmp(values ...uint16) container {
	c := newBitmapContainer()
	for _, v := range values {
		c.add(v)
	}
	return c
}

func newRunC(values ...uint16) container {
	c := &runContainer{}
	for _, v := range values {
		c.add(v)
	}
	return c
}

// withContainer builds a single-bucket bitmap around a prebuilt container.
func withContainer(key uint16, c container) *Bitmap {
	rb := New()
	rb.highlow.appendContainer(key, c)
	return rb
}

// collect expands a container into its sorted values.
func collect(c container) []uint16 {
	out := make([]uint16, 0, c.getCardinality())
	c.iterate(0, func(x uint32) bool {
		out = append(out, uint16(x))
		return true
	})
	return out
}

// checkInvariants asserts the structural invariants: ascending unique keys,
// no empty containers, sorted array content, disjoint non-adjacent runs, and
// a consistent tracked cardinality.
func checkInvariants(t *testing.T, rb *Bitmap) {
	t.Helper()
	prev := -1
	for i, key := range rb.highlow.keys {
		assert.Greater(t, int(key), prev)
		prev = int(key)

		c := unwrap(rb.highlow.getContainerAtIndex(i))
		assert.Positive(t, c.getCardinality())
		switch c := c.(type) {
		case *arrayContainer:
			assert.LessOrEqual(t, len(c.content), arrayMaxSize)
			for j := 1; j < len(c.content); j++ {
				assert.Less(t, c.content[j-1], c.content[j])
			}
		case *runContainer:
			for _, iv := range c.runs {
				assert.LessOrEqual(t, iv.start, iv.last)
			}
			for j := 1; j < len(c.runs); j++ {
				assert.Less(t, int(c.runs[j-1].last)+1, int(c.runs[j].start))
			}
		case *bitmapContainer:
			if c.card != cardinalityUnknown {
				assert.Equal(t, c.bits.Count(), int(c.card))
			}
		}
	}

	arr := rb.ToArray()
	assert.Equal(t, uint64(len(arr)), rb.GetCardinality())
	for j := 1; j < len(arr); j++ {
		assert.Less(t, arr[j-1], arr[j])
	}
}

// randomValues draws n distinct values below max.
func randomValues(rnd *rand.Rand, n int, max uint32) []uint32 {
	seen := make(map[uint32]struct{}, n)
	out := make([]uint32, 0, n)
	for len(out) < n {
		v := rnd.Uint32() % max
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// testShapes builds bitmaps of varied density and representation for the
// algebraic law tests.
func testShapes(rnd *rand.Rand) []*Bitmap {
	runny := FromRange(0, 131072, 1)
	runny.RunOptimize()

	mixed := Of(randomValues(rnd, 3000, 1<<17)...)
	mixed.Or(FromRange(200000, 210000, 1))

	return []*Bitmap{
		New(),
		Of(1, 2, 3, 1000, 70000),
		Of(randomValues(rnd, 500, 1<<20)...),
		FromRange(0, 100000, 1),
		FromRange(50000, 300000, 3),
		FromRange(1<<20, 1<<20+65536, 2),
		runny,
		mixed,
	}
}
