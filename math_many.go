// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root

package roaring

import "container/heap"

// OrMany computes the union of any number of bitmaps as a linear chain of
// lazy unions followed by a single repair pass.
func OrMany(bitmaps ...*Bitmap) *Bitmap {
	switch len(bitmaps) {
	case 0:
		return New()
	case 1:
		return bitmaps[0].Clone()
	}
	answer := LazyOr(bitmaps[0], bitmaps[1])
	for _, bm := range bitmaps[2:] {
		answer.LazyOr(bm)
	}
	answer.RepairAfterLazy()
	return answer
}

// OrManyHeap unions bitmaps smallest-first with a priority queue keyed by a
// cardinality estimate, which keeps intermediate results small. The result
// equals OrMany.
func OrManyHeap(bitmaps ...*Bitmap) *Bitmap {
	switch len(bitmaps) {
	case 0:
		return New()
	case 1:
		return bitmaps[0].Clone()
	}

	h := make(orHeap, 0, len(bitmaps))
	for i, bm := range bitmaps {
		h = append(h, &orCandidate{bm: bm, est: bm.GetCardinality(), order: i})
	}
	heap.Init(&h)

	order := len(bitmaps)
	for h.Len() > 1 {
		x1 := heap.Pop(&h).(*orCandidate)
		x2 := heap.Pop(&h).(*orCandidate)
		merged := x1
		switch {
		case x1.owned:
			if x2.owned {
				// x2 is dropped after this merge: clone its dirty containers
				// into x1 instead of sharing them
				x2.bm.copyOnWrite = false
			}
			x1.bm.LazyOr(x2.bm)
		case x2.owned:
			x2.bm.LazyOr(x1.bm)
			merged = x2
		default:
			merged = &orCandidate{bm: LazyOr(x1.bm, x2.bm)}
		}
		merged.est = x1.est + x2.est
		merged.order = order
		merged.owned = true
		order++
		heap.Push(&h, merged)
	}

	final := heap.Pop(&h).(*orCandidate)
	if !final.owned {
		return final.bm.Clone()
	}
	final.bm.RepairAfterLazy()
	return final.bm
}

// orCandidate is a pending union operand: est is an upper bound on its
// cardinality (intermediates defer counting) and order breaks ties
// deterministically by insertion.
type orCandidate struct {
	bm    *Bitmap
	est   uint64
	order int
	owned bool
}

type orHeap []*orCandidate

func (h orHeap) Len() int { return len(h) }

func (h orHeap) Less(i, j int) bool {
	if h[i].est != h[j].est {
		return h[i].est < h[j].est
	}
	return h[i].order < h[j].order
}

func (h orHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *orHeap) Push(x any) { *h = append(*h, x.(*orCandidate)) }

func (h *orHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
