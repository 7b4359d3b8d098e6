package roaring

// containerAdd inserts a value into an owned container, converting an array
// that would overflow its threshold into a bitmap.
func containerAdd(c container, x uint16) container {
	switch c := c.(type) {
	case *arrayContainer:
		if c.add(x) && len(c.content) > arrayMaxSize {
			return c.toBitmapContainer()
		}
	case *bitmapContainer:
		c.add(x)
	case *runContainer:
		c.add(x)
	}
	return c
}

// containerRemove deletes a value from an owned container, converting a
// bitmap that thins down to the array threshold.
func containerRemove(c container, x uint16) container {
	switch c := c.(type) {
	case *arrayContainer:
		c.remove(x)
	case *bitmapContainer:
		if c.remove(x) && int(c.card) == arrayMaxSize {
			return c.toArrayContainer()
		}
	case *runContainer:
		c.remove(x)
	}
	return c
}

// materializeBitmap produces an owned dense copy of any container.
func materializeBitmap(c container) *bitmapContainer {
	switch c := unwrap(c).(type) {
	case *arrayContainer:
		return c.toBitmapContainer()
	case *bitmapContainer:
		return c.cloneBitmap()
	case *runContainer:
		return c.toBitmapContainer()
	}
	return newBitmapContainer()
}

// containerNot complements c over the full bucket.
func containerNot(c container) container {
	return containerNotRange(c, 0, maxContainerSize)
}

// containerNotRange complements c over [start, end) without mutating it.
func containerNotRange(c container, start, end uint32) container {
	out := materializeBitmap(c)
	inRange := out.rangeCardinality(start, end)
	out.flipRange(start, end)
	if out.card == cardinalityUnknown {
		out.card = int32(out.bits.Count())
	} else {
		out.card += int32(end-start) - 2*int32(inRange)
	}
	return toEfficientContainer(out)
}

// finishBitmap settles a freshly computed dense result: lazy results keep a
// deferred cardinality, eager results are counted and normalized.
func finishBitmap(out *bitmapContainer, lazy bool) container {
	if lazy {
		out.card = cardinalityUnknown
		return out
	}
	out.card = int32(out.bits.Count())
	return toEfficientContainer(out)
}
