// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root

package roaring

// Or computes the union of two bitmaps.
func Or(x1, x2 *Bitmap) *Bitmap { return orCore(x1, x2, false) }

// LazyOr computes the union while deferring cardinality maintenance on dense
// result containers; call RepairAfterLazy on the result before reading it.
func LazyOr(x1, x2 *Bitmap) *Bitmap { return orCore(x1, x2, true) }

func orCore(x1, x2 *Bitmap, lazy bool) *Bitmap {
	length1, length2 := x1.highlow.size(), x2.highlow.size()
	if length1 == 0 {
		return x2.Clone()
	}
	if length2 == 0 {
		return x1.Clone()
	}
	answer := NewWithCapacity(length1 + length2)
	answer.copyOnWrite = x1.copyOnWrite && x2.copyOnWrite

	pos1, pos2 := 0, 0
	for pos1 < length1 && pos2 < length2 {
		s1 := x1.highlow.getKeyAtIndex(pos1)
		s2 := x2.highlow.getKeyAtIndex(pos2)
		switch {
		case s1 == s2:
			// inputs are never empty, so neither is the union
			c := containerOr(x1.highlow.getContainerAtIndex(pos1), x2.highlow.getContainerAtIndex(pos2), lazy)
			answer.highlow.appendContainer(s1, c)
			pos1++
			pos2++
		case s1 < s2:
			answer.highlow.appendCopy(&x1.highlow, pos1, x1.copyOnWrite)
			pos1++
		default:
			answer.highlow.appendCopy(&x2.highlow, pos2, x2.copyOnWrite)
			pos2++
		}
	}
	answer.highlow.appendCopyRange(&x1.highlow, pos1, length1, x1.copyOnWrite)
	answer.highlow.appendCopyRange(&x2.highlow, pos2, length2, x2.copyOnWrite)
	return answer
}

// Or merges other into rb in place.
func (rb *Bitmap) Or(other *Bitmap) { rb.iorCore(other, false) }

// LazyOr merges other into rb in place, deferring cardinality maintenance;
// call RepairAfterLazy before reading rb.
func (rb *Bitmap) LazyOr(other *Bitmap) { rb.iorCore(other, true) }

func (rb *Bitmap) iorCore(other *Bitmap, lazy bool) {
	length1, length2 := rb.highlow.size(), other.highlow.size()
	if length2 == 0 {
		return
	}
	if length1 == 0 {
		rb.highlow = other.highlow.clone(other.copyOnWrite)
		return
	}

	pos1, pos2 := 0, 0
	for pos1 < length1 && pos2 < length2 {
		s1 := rb.highlow.getKeyAtIndex(pos1)
		s2 := other.highlow.getKeyAtIndex(pos2)
		switch {
		case s1 == s2:
			c1 := rb.highlow.getWritableContainerAtIndex(pos1)
			rb.highlow.setContainerAtIndex(pos1, containerIor(c1, other.highlow.getContainerAtIndex(pos2), lazy))
			pos1++
			pos2++
		case s1 < s2:
			pos1++
		default:
			rb.highlow.insertNewKeyValueAt(pos1, s2, other.highlow.copyContainerAt(pos2, other.copyOnWrite))
			pos1++
			length1++
			pos2++
		}
	}
	if pos2 < length2 {
		rb.highlow.appendCopyRange(&other.highlow, pos2, length2, other.copyOnWrite)
	}
}

// containerOr unions two containers into a fresh container; when lazy, dense
// results are left with a deferred cardinality.
func containerOr(c1, c2 container, lazy bool) container {
	c1, c2 = unwrap(c1), unwrap(c2)
	switch a := c1.(type) {
	case *arrayContainer:
		switch b := c2.(type) {
		case *arrayContainer:
			return orArrayArray(a, b, lazy)
		case *bitmapContainer:
			return orBitmapArray(b, a, lazy)
		case *runContainer:
			return orRunArray(b, a)
		}
	case *bitmapContainer:
		switch b := c2.(type) {
		case *arrayContainer:
			return orBitmapArray(a, b, lazy)
		case *bitmapContainer:
			return orBitmapBitmap(a, b, lazy)
		case *runContainer:
			return orBitmapRun(a, b, lazy)
		}
	case *runContainer:
		switch b := c2.(type) {
		case *arrayContainer:
			return orRunArray(a, b)
		case *bitmapContainer:
			return orBitmapRun(b, a, lazy)
		case *runContainer:
			return orRunRun(a, b)
		}
	}
	return newArrayContainer()
}

// containerIor unions c2 into an owned c1, reusing dense storage in place.
func containerIor(c1, c2 container, lazy bool) container {
	c2 = unwrap(c2)
	if a, ok := c1.(*bitmapContainer); ok {
		switch b := c2.(type) {
		case *arrayContainer:
			for _, v := range b.content {
				a.bits[v>>6] |= uint64(1) << (v & 63)
			}
		case *bitmapContainer:
			a.bits.Or(b.bits)
		case *runContainer:
			for _, iv := range b.runs {
				a.setRange(uint32(iv.start), uint32(iv.last)+1)
			}
		}
		return finishBitmap(a, lazy)
	}
	return containerOr(c1, c2, lazy)
}

// orArrayArray merges two sorted arrays, spilling to a dense container when
// the combined size may exceed the array threshold.
func orArrayArray(a, b *arrayContainer, lazy bool) container {
	la, lb := len(a.content), len(b.content)
	if la+lb > arrayMaxSize {
		out := a.toBitmapContainer()
		for _, v := range b.content {
			out.bits[v>>6] |= uint64(1) << (v & 63)
		}
		return finishBitmap(out, lazy)
	}
	out := make([]uint16, 0, la+lb)
	i, j := 0, 0
	for i < la && j < lb {
		av, bv := a.content[i], b.content[j]
		switch {
		case av == bv:
			out = append(out, av)
			i++
			j++
		case av < bv:
			out = append(out, av)
			i++
		default:
			out = append(out, bv)
			j++
		}
	}
	out = append(out, a.content[i:]...)
	out = append(out, b.content[j:]...)
	return toEfficientContainer(&arrayContainer{content: out})
}

func orBitmapArray(b *bitmapContainer, a *arrayContainer, lazy bool) container {
	out := b.cloneBitmap()
	for _, v := range a.content {
		out.bits[v>>6] |= uint64(1) << (v & 63)
	}
	return finishBitmap(out, lazy)
}

func orBitmapBitmap(a, b *bitmapContainer, lazy bool) container {
	out := a.cloneBitmap()
	out.bits.Or(b.bits)
	return finishBitmap(out, lazy)
}

func orBitmapRun(b *bitmapContainer, r *runContainer, lazy bool) container {
	if r.isFull() {
		return r.cloneRun()
	}
	out := b.cloneBitmap()
	for _, iv := range r.runs {
		out.setRange(uint32(iv.start), uint32(iv.last)+1)
	}
	return finishBitmap(out, lazy)
}

func orRunArray(r *runContainer, a *arrayContainer) container {
	out := r.cloneRun()
	for _, v := range a.content {
		out.add(v)
	}
	return toEfficientContainer(out)
}

// orRunRun merges two run sequences, coalescing overlapping and adjacent
// runs.
func orRunRun(a, b *runContainer) container {
	out := make([]interval16, 0, len(a.runs)+len(b.runs))
	push := func(iv interval16) {
		if n := len(out); n > 0 && uint32(iv.start) <= uint32(out[n-1].last)+1 {
			if iv.last > out[n-1].last {
				out[n-1].last = iv.last
			}
			return
		}
		out = append(out, iv)
	}
	i, j := 0, 0
	for i < len(a.runs) || j < len(b.runs) {
		if j == len(b.runs) || (i < len(a.runs) && a.runs[i].start <= b.runs[j].start) {
			push(a.runs[i])
			i++
		} else {
			push(b.runs[j])
			j++
		}
	}
	return toEfficientContainer(&runContainer{runs: out})
}
