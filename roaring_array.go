// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root

package roaring

// roaringArray is the sorted directory mapping 16-bit keys to containers.
// Keys are strictly ascending and unique, and no slot ever holds an empty
// container.
type roaringArray struct {
	keys       []uint16
	containers []container
}

func (ra *roaringArray) size() int { return len(ra.keys) }

// getIndex returns the position of key, or the negated insertion point
// -(pos+1) when the key is absent.
func (ra *roaringArray) getIndex(key uint16) int {
	idx, found := find16(ra.keys, key)
	if found {
		return idx
	}
	return -idx - 1
}

func (ra *roaringArray) getKeyAtIndex(i int) uint16 { return ra.keys[i] }

func (ra *roaringArray) getContainerAtIndex(i int) container { return ra.containers[i] }

func (ra *roaringArray) setContainerAtIndex(i int, c container) { ra.containers[i] = c }

// getWritableContainerAtIndex unshares the slot ahead of in-place mutation.
func (ra *roaringArray) getWritableContainerAtIndex(i int) container {
	c := getWritableCopy(ra.containers[i])
	ra.containers[i] = c
	return c
}

// releaseContainerAtIndex drops this slot's hold on a shared wrapper and
// returns the inner container. The slot must be overwritten or removed
// afterwards; the returned container may still be shared with other holders
// and must not be mutated.
func (ra *roaringArray) releaseContainerAtIndex(i int) container {
	if s, ok := ra.containers[i].(*sharedContainer); ok {
		s.refs--
		return s.inner
	}
	return ra.containers[i]
}

func (ra *roaringArray) replaceKeyAndContainerAtIndex(i int, key uint16, c container) {
	ra.keys[i] = key
	ra.containers[i] = c
}

func (ra *roaringArray) insertNewKeyValueAt(i int, key uint16, c container) {
	ra.keys = append(ra.keys, 0)
	copy(ra.keys[i+1:], ra.keys[i:])
	ra.keys[i] = key
	ra.containers = append(ra.containers, nil)
	copy(ra.containers[i+1:], ra.containers[i:])
	ra.containers[i] = c
}

func (ra *roaringArray) removeAtIndex(i int) {
	copy(ra.keys[i:], ra.keys[i+1:])
	ra.keys = ra.keys[:len(ra.keys)-1]
	copy(ra.containers[i:], ra.containers[i+1:])
	ra.containers[len(ra.containers)-1] = nil
	ra.containers = ra.containers[:len(ra.containers)-1]
}

// appendContainer appends an entry; key must exceed every existing key.
func (ra *roaringArray) appendContainer(key uint16, c container) {
	ra.keys = append(ra.keys, key)
	ra.containers = append(ra.containers, c)
}

// advanceUntil returns the first index past pos whose key is ≥ min, crossing
// large gaps with a galloping search before the binary refinement.
func (ra *roaringArray) advanceUntil(min uint16, pos int) int {
	length := len(ra.keys)
	lower := pos + 1
	if lower >= length || ra.keys[lower] >= min {
		return lower
	}

	span := 1
	for lower+span < length && ra.keys[lower+span] < min {
		span <<= 1
	}
	upper := length - 1
	if lower+span < length {
		upper = lower + span
	}
	if ra.keys[upper] < min {
		return length
	}
	lower += span >> 1

	for lower+1 != upper {
		mid := (lower + upper) >> 1
		if ra.keys[mid] < min {
			lower = mid
		} else {
			upper = mid
		}
	}
	return upper
}

// copyContainerAt hands out slot i for a new holder: a shared wrapper under
// copy-on-write (upgrading the slot in place), a deep clone otherwise.
func (ra *roaringArray) copyContainerAt(i int, cow bool) container {
	c := ra.containers[i]
	if !cow {
		return unwrap(c).clone()
	}
	if s, ok := c.(*sharedContainer); ok {
		s.refs++
		return s
	}
	s := &sharedContainer{inner: c, refs: 2}
	ra.containers[i] = s
	return s
}

func (ra *roaringArray) appendCopy(src *roaringArray, i int, cow bool) {
	ra.appendContainer(src.keys[i], src.copyContainerAt(i, cow))
}

func (ra *roaringArray) appendCopyRange(src *roaringArray, start, end int, cow bool) {
	for i := start; i < end; i++ {
		ra.appendCopy(src, i, cow)
	}
}

// appendCopiesUntil copies src entries with keys strictly below stop.
func (ra *roaringArray) appendCopiesUntil(src *roaringArray, stop uint16, cow bool) {
	for i := 0; i < src.size() && src.keys[i] < stop; i++ {
		ra.appendCopy(src, i, cow)
	}
}

// appendCopiesAfter copies src entries with keys strictly above after.
func (ra *roaringArray) appendCopiesAfter(src *roaringArray, after uint16, cow bool) {
	start := src.getIndex(after)
	if start >= 0 {
		start++
	} else {
		start = -start - 1
	}
	ra.appendCopyRange(src, start, src.size(), cow)
}

// clone copies the whole directory, sharing containers under copy-on-write
// and deep-cloning otherwise.
func (ra *roaringArray) clone(cow bool) roaringArray {
	out := roaringArray{
		keys:       make([]uint16, len(ra.keys)),
		containers: make([]container, len(ra.containers)),
	}
	copy(out.keys, ra.keys)
	for i := range ra.containers {
		out.containers[i] = ra.copyContainerAt(i, cow)
	}
	return out
}

// downsize drops every entry at or beyond n.
func (ra *roaringArray) downsize(n int) {
	for i := n; i < len(ra.containers); i++ {
		ra.containers[i] = nil
	}
	ra.keys = ra.keys[:n]
	ra.containers = ra.containers[:n]
}

func (ra *roaringArray) clear() { ra.downsize(0) }
