// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root

package roaring

import (
	"math/rand"
	"testing"

	ref "github.com/RoaringBitmap/roaring"
)

func benchValues(n int, max uint32) []uint32 {
	rnd := rand.New(rand.NewSource(99))
	return randomValues(rnd, n, max)
}

func BenchmarkAdd(b *testing.B) {
	values := benchValues(100000, 1<<24)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rb := New()
		for _, v := range values {
			rb.Add(v)
		}
	}
}

func BenchmarkContains(b *testing.B) {
	values := benchValues(100000, 1<<24)
	rb := Of(values...)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rb.Contains(values[i%len(values)])
	}
}

func BenchmarkOr(b *testing.B) {
	x := Of(benchValues(100000, 1<<24)...)
	y := FromRange(1<<22, 1<<23, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Or(x, y)
	}
}

func BenchmarkOrManyHeap(b *testing.B) {
	var inputs []*Bitmap
	for k := 0; k < 16; k++ {
		inputs = append(inputs, Of(benchValues(5000, 1<<22)...))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		OrManyHeap(inputs...)
	}
}

func BenchmarkPortableSerialize(b *testing.B) {
	rb := Or(FromRange(0, 1<<21, 2), Of(benchValues(50000, 1<<24)...))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rb.ToBytes()
	}
}

// BenchmarkOrVsReference pits the union against the reference implementation
// on the same workload.
func BenchmarkOrVsReference(b *testing.B) {
	valsA := benchValues(100000, 1<<24)
	valsB := benchValues(80000, 1<<23)

	b.Run("this", func(b *testing.B) {
		x, y := Of(valsA...), Of(valsB...)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			Or(x, y)
		}
	})
	b.Run("reference", func(b *testing.B) {
		x, y := ref.BitmapOf(valsA...), ref.BitmapOf(valsB...)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			ref.Or(x, y)
		}
	})
}
