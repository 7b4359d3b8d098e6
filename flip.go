// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root

package roaring

// maxFlipRange is the exclusive upper bound of the 32-bit universe; flip
// ranges are clipped to it.
const maxFlipRange = uint64(1) << 32

// Flip returns x complemented over [rangeStart, rangeEnd).
func Flip(x *Bitmap, rangeStart, rangeEnd uint64) *Bitmap {
	if rangeEnd > maxFlipRange {
		rangeEnd = maxFlipRange
	}
	if rangeStart >= rangeEnd {
		return x.Clone()
	}
	answer := New()
	answer.copyOnWrite = x.copyOnWrite

	hbStart, lbStart := int(rangeStart>>16), uint32(uint16(rangeStart))
	hbLast, lbLast := int((rangeEnd-1)>>16), uint32(uint16(rangeEnd-1))

	answer.highlow.appendCopiesUntil(&x.highlow, uint16(hbStart), x.copyOnWrite)
	if hbStart == hbLast {
		appendFlippedContainer(&answer.highlow, &x.highlow, uint16(hbStart), lbStart, lbLast+1)
	} else {
		if lbStart > 0 {
			appendFlippedContainer(&answer.highlow, &x.highlow, uint16(hbStart), lbStart, maxContainerSize)
			hbStart++
		}
		if lbLast != 0xFFFF {
			hbLast--
		}
		for hb := hbStart; hb <= hbLast; hb++ {
			appendFlippedContainer(&answer.highlow, &x.highlow, uint16(hb), 0, maxContainerSize)
		}
		if lbLast != 0xFFFF {
			hbLast++
			appendFlippedContainer(&answer.highlow, &x.highlow, uint16(hbLast), 0, lbLast+1)
		}
	}
	answer.highlow.appendCopiesAfter(&x.highlow, uint16(hbLast), x.copyOnWrite)
	return answer
}

// appendFlippedContainer appends the complement of x's hb bucket over
// [start, end), synthesizing a full range when the bucket is absent. The
// answer directory is built in ascending key order.
func appendFlippedContainer(ans, x *roaringArray, hb uint16, start, end uint32) {
	i := x.getIndex(hb)
	if i < 0 {
		ans.appendContainer(hb, rangeOfOnes(start, end))
		return
	}
	c := containerNotRange(x.getContainerAtIndex(i), start, end)
	if c.getCardinality() > 0 {
		ans.appendContainer(hb, c)
	}
}

// Flip complements rb over [rangeStart, rangeEnd) in place.
func (rb *Bitmap) Flip(rangeStart, rangeEnd uint64) {
	if rangeEnd > maxFlipRange {
		rangeEnd = maxFlipRange
	}
	if rangeStart >= rangeEnd {
		return
	}
	hbStart, lbStart := int(rangeStart>>16), uint32(uint16(rangeStart))
	hbLast, lbLast := int((rangeEnd-1)>>16), uint32(uint16(rangeEnd-1))

	if hbStart == hbLast {
		rb.flipContainer(uint16(hbStart), lbStart, lbLast+1)
		return
	}
	if lbStart > 0 {
		rb.flipContainer(uint16(hbStart), lbStart, maxContainerSize)
		hbStart++
	}
	if lbLast != 0xFFFF {
		hbLast--
	}
	for hb := hbStart; hb <= hbLast; hb++ {
		rb.flipContainer(uint16(hb), 0, maxContainerSize)
	}
	if lbLast != 0xFFFF {
		rb.flipContainer(uint16(hbLast+1), 0, lbLast+1)
	}
}

// flipContainer complements one bucket of rb over [start, end).
func (rb *Bitmap) flipContainer(hb uint16, start, end uint32) {
	i := rb.highlow.getIndex(hb)
	if i < 0 {
		rb.highlow.insertNewKeyValueAt(-i-1, hb, rangeOfOnes(start, end))
		return
	}
	c := containerNotRange(rb.highlow.releaseContainerAtIndex(i), start, end)
	if c.getCardinality() == 0 {
		rb.highlow.removeAtIndex(i)
		return
	}
	rb.highlow.setContainerAtIndex(i, c)
}
