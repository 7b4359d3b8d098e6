// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root

package roaring

const (
	arrayMaxSize      = 4096  // largest cardinality stored as a sorted array
	bitmapWords       = 1024  // 64Ki bits as uint64 words
	bitmapSizeInBytes = 8192
	maxContainerSize  = 65536 // values per bucket
)

type ctype byte

const (
	typeArray ctype = iota
	typeBitmap
	typeRun
	typeShared
)

// container is the common read surface of the three representations plus the
// copy-on-write wrapper. Mutating and combining operations are typed dispatch
// functions living in container_ops.go and the math_*.go files.
type container interface {
	typecode() ctype
	getCardinality() int
	contains(x uint16) bool
	clone() container
	numRuns() int
	iterate(base uint32, fn func(x uint32) bool) bool
}

// unwrap peels a shared wrapper off for read-only access.
func unwrap(c container) container {
	if s, ok := c.(*sharedContainer); ok {
		return s.inner
	}
	return c
}

func arrayBytes(card int) int { return 2 * card }
func runBytes(nRuns int) int  { return 2 + 4*nRuns }

// bestContainerType picks the cheapest representation for the given
// cardinality and run count. Ties go to the array for small sets and to the
// bitmap otherwise, since both are cheaper to probe than runs.
func bestContainerType(card, nRuns int) ctype {
	sizeArr, sizeRun := arrayBytes(card), runBytes(nRuns)
	switch {
	case card <= arrayMaxSize && sizeArr <= sizeRun:
		return typeArray
	case sizeRun < bitmapSizeInBytes && (card > arrayMaxSize || sizeRun < sizeArr):
		return typeRun
	default:
		return typeBitmap
	}
}

// toEfficientContainer normalizes a freshly computed container to the
// representation chosen by the cost model. The caller must own c.
func toEfficientContainer(c container) container {
	want := bestContainerType(c.getCardinality(), c.numRuns())
	if want == c.typecode() {
		return c
	}
	switch c := c.(type) {
	case *arrayContainer:
		if want == typeRun {
			return c.toRunContainer()
		}
		return c.toBitmapContainer()
	case *bitmapContainer:
		if want == typeRun {
			return c.toRunContainer()
		}
		return c.toArrayContainer()
	case *runContainer:
		if want == typeArray {
			return c.toArrayContainer()
		}
		return c.toBitmapContainer()
	}
	return c
}

// containerNonzero reports whether a container may hold values; a deferred
// cardinality counts as non-empty until repaired.
func containerNonzero(c container) bool {
	if b, ok := c.(*bitmapContainer); ok && b.card == cardinalityUnknown {
		return true
	}
	return c.getCardinality() > 0
}

// containerEquals compares two containers as value sets, regardless of their
// representations.
func containerEquals(c1, c2 container) bool {
	c1, c2 = unwrap(c1), unwrap(c2)
	if c1.getCardinality() != c2.getCardinality() {
		return false
	}
	equal := true
	c1.iterate(0, func(x uint32) bool {
		equal = c2.contains(uint16(x))
		return equal
	})
	return equal
}
