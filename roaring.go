// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root

package roaring

import "math/bits"

// Bitmap is a compressed set of uint32 values. The high 16 bits of a value
// select a container in a sorted directory; the low 16 bits are stored in an
// array, bitmap or run representation chosen for space and time efficiency.
//
// A Bitmap is not safe for concurrent mutation. With copy-on-write enabled,
// Clone and the combinators share containers between bitmaps through
// reference-counted wrappers instead of deep copies.
type Bitmap struct {
	highlow     roaringArray
	copyOnWrite bool
}

// New creates a new empty bitmap.
func New() *Bitmap {
	return &Bitmap{}
}

// NewWithCapacity creates an empty bitmap with room for n containers.
func NewWithCapacity(n int) *Bitmap {
	return &Bitmap{highlow: roaringArray{
		keys:       make([]uint16, 0, n),
		containers: make([]container, 0, n),
	}}
}

// Of creates a bitmap holding the given values.
func Of(values ...uint32) *Bitmap {
	rb := New()
	for _, x := range values {
		rb.Add(x)
	}
	return rb
}

// FromRange creates a bitmap of every step-th value in [min, max). A zero
// step is an argument violation and yields nil; an empty range yields an
// empty bitmap.
func FromRange(min, max, step uint32) *Bitmap {
	if step == 0 {
		return nil
	}
	rb := New()
	if max <= min {
		return rb
	}
	if step >= 1<<16 {
		for v := uint64(min); v < uint64(max); v += uint64(step) {
			rb.Add(uint32(v))
		}
		return rb
	}
	for lo := uint64(min); lo < uint64(max); {
		key := uint32(lo >> 16)
		cmin := uint32(lo & 0xFFFF)
		cmax := uint32(1 << 16)
		if left := max - key<<16; left < cmax {
			cmax = left
		}
		rb.highlow.appendContainer(uint16(key), containerFromRange(cmin, cmax, step))
		gap := uint64(cmax-cmin) + uint64(step) - 1
		lo += gap - gap%uint64(step)
	}
	return rb
}

// containerFromRange builds a container holding cmin, cmin+step, … below
// cmax.
func containerFromRange(cmin, cmax, step uint32) container {
	if step == 1 {
		return rangeOfOnes(cmin, cmax)
	}
	out := make([]uint16, 0, (cmax-cmin+step-1)/step)
	for v := cmin; v < cmax; v += step {
		out = append(out, uint16(v))
	}
	ac := &arrayContainer{content: out}
	if len(out) > arrayMaxSize {
		return ac.toBitmapContainer()
	}
	return ac
}

// Clone copies the bitmap, sharing containers when copy-on-write is enabled.
func (rb *Bitmap) Clone() *Bitmap {
	return &Bitmap{
		highlow:     rb.highlow.clone(rb.copyOnWrite),
		copyOnWrite: rb.copyOnWrite,
	}
}

// SetCopyOnWrite selects whether cloning and the combinators share
// containers (cheap) or deep-copy them (mutation-free).
func (rb *Bitmap) SetCopyOnWrite(cow bool) { rb.copyOnWrite = cow }

// GetCopyOnWrite returns the copy-on-write setting.
func (rb *Bitmap) GetCopyOnWrite() bool { return rb.copyOnWrite }

// Add inserts x into the bitmap.
func (rb *Bitmap) Add(x uint32) {
	hb, lb := uint16(x>>16), uint16(x)
	i := rb.highlow.getIndex(hb)
	if i < 0 {
		ac := newArrayContainer()
		ac.add(lb)
		rb.highlow.insertNewKeyValueAt(-i-1, hb, ac)
		return
	}
	c := rb.highlow.getWritableContainerAtIndex(i)
	rb.highlow.setContainerAtIndex(i, containerAdd(c, lb))
}

// Remove deletes x from the bitmap.
func (rb *Bitmap) Remove(x uint32) {
	hb, lb := uint16(x>>16), uint16(x)
	i := rb.highlow.getIndex(hb)
	if i < 0 {
		return
	}
	c := containerRemove(rb.highlow.getWritableContainerAtIndex(i), lb)
	if c.getCardinality() == 0 {
		rb.highlow.removeAtIndex(i)
		return
	}
	rb.highlow.setContainerAtIndex(i, c)
}

// Contains checks whether x is in the bitmap.
func (rb *Bitmap) Contains(x uint32) bool {
	i := rb.highlow.getIndex(uint16(x >> 16))
	return i >= 0 && rb.highlow.getContainerAtIndex(i).contains(uint16(x))
}

// GetCardinality returns the number of values in the bitmap.
func (rb *Bitmap) GetCardinality() uint64 {
	card := uint64(0)
	for _, c := range rb.highlow.containers {
		card += uint64(c.getCardinality())
	}
	return card
}

// IsEmpty reports whether the bitmap holds no values.
func (rb *Bitmap) IsEmpty() bool { return rb.highlow.size() == 0 }

// Clear removes every value.
func (rb *Bitmap) Clear() { rb.highlow.clear() }

// ToArray returns every value in ascending order.
func (rb *Bitmap) ToArray() []uint32 {
	out := make([]uint32, 0, rb.GetCardinality())
	rb.Range(func(x uint32) bool {
		out = append(out, x)
		return true
	})
	return out
}

// Range calls fn for each value in ascending order until fn returns false.
func (rb *Bitmap) Range(fn func(x uint32) bool) {
	for i, c := range rb.highlow.containers {
		if !c.iterate(uint32(rb.highlow.keys[i])<<16, fn) {
			return
		}
	}
}

// Min returns the smallest value, if any.
func (rb *Bitmap) Min() (uint32, bool) {
	var out uint32
	found := false
	rb.Range(func(x uint32) bool {
		out, found = x, true
		return false
	})
	return out, found
}

// Max returns the largest value, if any.
func (rb *Bitmap) Max() (uint32, bool) {
	n := rb.highlow.size()
	if n == 0 {
		return 0, false
	}
	base := uint32(rb.highlow.keys[n-1]) << 16
	return base | uint32(containerMax(rb.highlow.getContainerAtIndex(n-1))), true
}

func containerMax(c container) uint16 {
	switch c := unwrap(c).(type) {
	case *arrayContainer:
		return c.content[len(c.content)-1]
	case *runContainer:
		return c.runs[len(c.runs)-1].last
	case *bitmapContainer:
		for i := bitmapWords - 1; i >= 0; i-- {
			if w := c.bits[i]; w != 0 {
				return uint16(i<<6 + 63 - bits.LeadingZeros64(w))
			}
		}
	}
	return 0
}

// Equals reports whether both bitmaps hold exactly the same values,
// regardless of container representations.
func (rb *Bitmap) Equals(other *Bitmap) bool {
	if rb == nil || other == nil {
		return rb == other
	}
	if rb.highlow.size() != other.highlow.size() {
		return false
	}
	for i := range rb.highlow.keys {
		if rb.highlow.keys[i] != other.highlow.keys[i] {
			return false
		}
	}
	for i := range rb.highlow.containers {
		if !containerEquals(rb.highlow.containers[i], other.highlow.containers[i]) {
			return false
		}
	}
	return true
}

// RunOptimize converts every container to its cheapest representation,
// including run-length encoding; reports whether any run container resulted.
func (rb *Bitmap) RunOptimize() bool {
	hasRun := false
	for i := range rb.highlow.containers {
		c := toEfficientContainer(rb.highlow.getWritableContainerAtIndex(i))
		if c.typecode() == typeRun {
			hasRun = true
		}
		rb.highlow.setContainerAtIndex(i, c)
	}
	return hasRun
}

// RemoveRunCompression converts run containers back to array or bitmap form,
// even when runs are more space-efficient; reports whether anything changed.
func (rb *Bitmap) RemoveRunCompression() bool {
	changed := false
	for i := range rb.highlow.containers {
		rc, ok := unwrap(rb.highlow.getContainerAtIndex(i)).(*runContainer)
		if !ok {
			continue
		}
		changed = true
		rb.highlow.releaseContainerAtIndex(i)
		if rc.getCardinality() <= arrayMaxSize {
			rb.highlow.setContainerAtIndex(i, rc.toArrayContainer())
		} else {
			rb.highlow.setContainerAtIndex(i, rc.toBitmapContainer())
		}
	}
	return changed
}
