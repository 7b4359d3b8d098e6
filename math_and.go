// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root

package roaring

import "math/bits"

// And computes the intersection of two bitmaps.
func And(x1, x2 *Bitmap) *Bitmap {
	length1, length2 := x1.highlow.size(), x2.highlow.size()
	answer := NewWithCapacity(min(length1, length2))
	answer.copyOnWrite = x1.copyOnWrite && x2.copyOnWrite

	pos1, pos2 := 0, 0
	for pos1 < length1 && pos2 < length2 {
		s1 := x1.highlow.getKeyAtIndex(pos1)
		s2 := x2.highlow.getKeyAtIndex(pos2)
		switch {
		case s1 == s2:
			c := containerAnd(x1.highlow.getContainerAtIndex(pos1), x2.highlow.getContainerAtIndex(pos2))
			if c.getCardinality() > 0 {
				answer.highlow.appendContainer(s1, c)
			}
			pos1++
			pos2++
		case s1 < s2:
			pos1 = x1.highlow.advanceUntil(s2, pos1)
		default:
			pos2 = x2.highlow.advanceUntil(s1, pos2)
		}
	}
	return answer
}

// And intersects rb with other in place. Surviving entries are compacted to
// the front of the directory and the remainder is dropped.
func (rb *Bitmap) And(other *Bitmap) {
	pos1, pos2, intersection := 0, 0, 0
	length1, length2 := rb.highlow.size(), other.highlow.size()

	for pos1 < length1 && pos2 < length2 {
		s1 := rb.highlow.getKeyAtIndex(pos1)
		s2 := other.highlow.getKeyAtIndex(pos2)
		switch {
		case s1 == s2:
			c1 := rb.highlow.getWritableContainerAtIndex(pos1)
			c := containerIand(c1, other.highlow.getContainerAtIndex(pos2))
			if c.getCardinality() > 0 {
				rb.highlow.replaceKeyAndContainerAtIndex(intersection, s1, c)
				intersection++
			}
			pos1++
			pos2++
		case s1 < s2:
			pos1 = rb.highlow.advanceUntil(s2, pos1)
		default:
			pos2 = other.highlow.advanceUntil(s1, pos2)
		}
	}
	rb.highlow.downsize(intersection)
}

// containerAnd intersects two containers into a fresh, normalized container.
func containerAnd(c1, c2 container) container {
	c1, c2 = unwrap(c1), unwrap(c2)
	switch a := c1.(type) {
	case *arrayContainer:
		switch b := c2.(type) {
		case *arrayContainer:
			return andArrayArray(a, b)
		case *bitmapContainer:
			return andArrayBitmap(a, b)
		case *runContainer:
			return andArrayRun(a, b)
		}
	case *bitmapContainer:
		switch b := c2.(type) {
		case *arrayContainer:
			return andArrayBitmap(b, a)
		case *bitmapContainer:
			return andBitmapBitmap(a, b)
		case *runContainer:
			return andBitmapRun(a, b)
		}
	case *runContainer:
		switch b := c2.(type) {
		case *arrayContainer:
			return andArrayRun(b, a)
		case *bitmapContainer:
			return andBitmapRun(b, a)
		case *runContainer:
			return andRunRun(a, b)
		}
	}
	return newArrayContainer()
}

// containerIand intersects c2 into an owned c1, reusing its storage where
// the representations allow.
func containerIand(c1, c2 container) container {
	c2 = unwrap(c2)
	switch a := c1.(type) {
	case *arrayContainer:
		switch b := c2.(type) {
		case *arrayContainer:
			i, j, k := 0, 0, 0
			for i < len(a.content) && j < len(b.content) {
				av, bv := a.content[i], b.content[j]
				switch {
				case av == bv:
					a.content[k] = av
					k++
					i++
					j++
				case av < bv:
					i++
				default:
					j++
				}
			}
			a.content = a.content[:k]
			return toEfficientContainer(a)
		case *bitmapContainer:
			k := 0
			for _, v := range a.content {
				if b.contains(v) {
					a.content[k] = v
					k++
				}
			}
			a.content = a.content[:k]
			return toEfficientContainer(a)
		}
	case *bitmapContainer:
		if b, ok := c2.(*bitmapContainer); ok {
			a.bits.And(b.bits)
			a.card = int32(a.bits.Count())
			return toEfficientContainer(a)
		}
	}
	return containerAnd(c1, c2)
}

// andArrayArray merges two sorted arrays keeping common values.
func andArrayArray(a, b *arrayContainer) container {
	out := make([]uint16, 0, min(len(a.content), len(b.content)))
	i, j := 0, 0
	for i < len(a.content) && j < len(b.content) {
		av, bv := a.content[i], b.content[j]
		switch {
		case av == bv:
			out = append(out, av)
			i++
			j++
		case av < bv:
			i++
		default:
			j++
		}
	}
	return toEfficientContainer(&arrayContainer{content: out})
}

func andArrayBitmap(a *arrayContainer, b *bitmapContainer) container {
	out := make([]uint16, 0, len(a.content))
	for _, v := range a.content {
		if b.contains(v) {
			out = append(out, v)
		}
	}
	return toEfficientContainer(&arrayContainer{content: out})
}

func andArrayRun(a *arrayContainer, r *runContainer) container {
	out := make([]uint16, 0, len(a.content))
	i, j := 0, 0
	for i < len(a.content) && j < len(r.runs) {
		v, iv := a.content[i], r.runs[j]
		switch {
		case v < iv.start:
			i++
		case v > iv.last:
			j++
		default:
			out = append(out, v)
			i++
		}
	}
	return toEfficientContainer(&arrayContainer{content: out})
}

func andBitmapBitmap(a, b *bitmapContainer) container {
	out := a.cloneBitmap()
	out.bits.And(b.bits)
	out.card = int32(out.bits.Count())
	return toEfficientContainer(out)
}

// andBitmapRun keeps the dense bits covered by the runs, word by word.
func andBitmapRun(b *bitmapContainer, r *runContainer) container {
	out := newBitmapContainer()
	card := 0
	for _, iv := range r.runs {
		forWordRange(uint32(iv.start), uint32(iv.last)+1, func(i int, mask uint64) {
			w := b.bits[i] & mask
			out.bits[i] |= w
			card += bits.OnesCount64(w)
		})
	}
	out.card = int32(card)
	return toEfficientContainer(out)
}

// andRunRun intersects two run sequences pairwise.
func andRunRun(a, b *runContainer) container {
	out := make([]interval16, 0, min(len(a.runs), len(b.runs)))
	i, j := 0, 0
	for i < len(a.runs) && j < len(b.runs) {
		r1, r2 := a.runs[i], b.runs[j]
		start := max(r1.start, r2.start)
		last := min(r1.last, r2.last)
		if start <= last {
			out = append(out, interval16{start: start, last: last})
		}
		switch {
		case r1.last < r2.last:
			i++
		case r2.last < r1.last:
			j++
		default:
			i++
			j++
		}
	}
	return toEfficientContainer(&runContainer{runs: out})
}
