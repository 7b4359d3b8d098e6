// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root

package roaring

// sharedContainer is the read-only, reference-counted wrapper installed by
// copy-on-write cloning. Wrappers never nest; the count tracks how many
// directory slots hold this wrapper. Mutators go through getWritableCopy.
type sharedContainer struct {
	inner container
	refs  int32
}

func (c *sharedContainer) typecode() ctype     { return typeShared }
func (c *sharedContainer) getCardinality() int { return c.inner.getCardinality() }

func (c *sharedContainer) contains(x uint16) bool { return c.inner.contains(x) }
func (c *sharedContainer) numRuns() int           { return c.inner.numRuns() }

func (c *sharedContainer) iterate(base uint32, fn func(x uint32) bool) bool {
	return c.inner.iterate(base, fn)
}

// clone produces an exclusively owned deep copy of the wrapped container.
func (c *sharedContainer) clone() container { return c.inner.clone() }

// makeShared wraps c for one additional holder.
func makeShared(c container) *sharedContainer {
	if s, ok := c.(*sharedContainer); ok {
		s.refs++
		return s
	}
	return &sharedContainer{inner: c, refs: 1}
}

// getWritableCopy is the single unsharing point: it releases the calling
// slot's reference and returns a container safe to mutate. The last holder
// gets the inner container back without a copy.
func getWritableCopy(c container) container {
	s, ok := c.(*sharedContainer)
	if !ok {
		return c
	}
	s.refs--
	if s.refs == 0 {
		return s.inner
	}
	return s.inner.clone()
}
