// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root

package roaring

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/mschoch/smat"
	"github.com/stretchr/testify/require"
)

// smatContext drives a bitmap and a map model through the same mutations so
// that any divergence surfaces immediately.
type smatContext struct {
	rnd   *rand.Rand
	bm    *Bitmap
	model map[uint32]struct{}
}

const smatUniverse = 1 << 20

const (
	smatSetup smat.ActionID = iota
	smatTeardown
	smatAdd
	smatRemove
	smatMergeRange
	smatFlip
	smatRoundTrip
	smatOptimize
	smatVerify
)

var smatActionMap = smat.ActionMap{
	smatSetup:      smatSetupFunc,
	smatTeardown:   smatTeardownFunc,
	smatAdd:        smatAddFunc,
	smatRemove:     smatRemoveFunc,
	smatMergeRange: smatMergeRangeFunc,
	smatFlip:       smatFlipFunc,
	smatRoundTrip:  smatRoundTripFunc,
	smatOptimize:   smatOptimizeFunc,
	smatVerify:     smatVerifyFunc,
}

func smatRunning(next byte) smat.ActionID {
	return smat.PercentExecute(next,
		smat.PercentAction{Percent: 35, Action: smatAdd},
		smat.PercentAction{Percent: 15, Action: smatRemove},
		smat.PercentAction{Percent: 15, Action: smatMergeRange},
		smat.PercentAction{Percent: 10, Action: smatFlip},
		smat.PercentAction{Percent: 10, Action: smatRoundTrip},
		smat.PercentAction{Percent: 5, Action: smatOptimize},
		smat.PercentAction{Percent: 10, Action: smatVerify},
	)
}

func smatSetupFunc(ctx smat.Context) (smat.State, error) {
	c := ctx.(*smatContext)
	c.bm = New()
	c.model = make(map[uint32]struct{})
	return smatRunning, nil
}

func smatTeardownFunc(ctx smat.Context) (smat.State, error) {
	return smatVerifyFunc(ctx)
}

func smatAddFunc(ctx smat.Context) (smat.State, error) {
	c := ctx.(*smatContext)
	for i := 0; i < 16; i++ {
		v := c.rnd.Uint32() % smatUniverse
		c.bm.Add(v)
		c.model[v] = struct{}{}
	}
	return smatRunning, nil
}

func smatRemoveFunc(ctx smat.Context) (smat.State, error) {
	c := ctx.(*smatContext)
	for i := 0; i < 16; i++ {
		v := c.rnd.Uint32() % smatUniverse
		c.bm.Remove(v)
		delete(c.model, v)
	}
	return smatRunning, nil
}

func smatMergeRangeFunc(ctx smat.Context) (smat.State, error) {
	c := ctx.(*smatContext)
	lo := c.rnd.Uint32() % (smatUniverse - 3000)
	c.bm.Or(FromRange(lo, lo+3000, 1))
	for v := lo; v < lo+3000; v++ {
		c.model[v] = struct{}{}
	}
	return smatRunning, nil
}

func smatFlipFunc(ctx smat.Context) (smat.State, error) {
	c := ctx.(*smatContext)
	lo := uint64(c.rnd.Uint32() % (smatUniverse - 5000))
	hi := lo + 1 + uint64(c.rnd.Uint32()%5000)
	c.bm.Flip(lo, hi)
	for v := uint32(lo); v < uint32(hi); v++ {
		if _, ok := c.model[v]; ok {
			delete(c.model, v)
		} else {
			c.model[v] = struct{}{}
		}
	}
	return smatRunning, nil
}

func smatRoundTripFunc(ctx smat.Context) (smat.State, error) {
	c := ctx.(*smatContext)
	portable, err := FromBytes(c.bm.ToBytes())
	if err != nil {
		return nil, err
	}
	if !portable.Equals(c.bm) {
		return nil, fmt.Errorf("portable round trip diverged")
	}
	native, err := Deserialize(c.bm.Serialize())
	if err != nil {
		return nil, err
	}
	if !native.Equals(c.bm) {
		return nil, fmt.Errorf("native round trip diverged")
	}
	c.bm = portable
	return smatRunning, nil
}

func smatOptimizeFunc(ctx smat.Context) (smat.State, error) {
	c := ctx.(*smatContext)
	c.bm.RunOptimize()
	return smatRunning, nil
}

func smatVerifyFunc(ctx smat.Context) (smat.State, error) {
	c := ctx.(*smatContext)
	if got, want := c.bm.GetCardinality(), uint64(len(c.model)); got != want {
		return nil, fmt.Errorf("cardinality diverged: bitmap %d, model %d", got, want)
	}
	for _, v := range c.bm.ToArray() {
		if _, ok := c.model[v]; !ok {
			return nil, fmt.Errorf("bitmap holds %d, model does not", v)
		}
	}
	for i := 0; i < 64; i++ {
		v := c.rnd.Uint32() % smatUniverse
		_, want := c.model[v]
		if c.bm.Contains(v) != want {
			return nil, fmt.Errorf("membership of %d diverged", v)
		}
	}
	return smatRunning, nil
}

func TestSmat(t *testing.T) {
	for seed := int64(0); seed < 4; seed++ {
		rnd := rand.New(rand.NewSource(seed))
		data := make([]byte, 2048)
		_, err := rnd.Read(data)
		require.NoError(t, err)

		ctx := &smatContext{rnd: rand.New(rand.NewSource(seed + 100))}
		require.NotPanics(t, func() {
			smat.Fuzz(ctx, smatSetup, smatTeardown, smatActionMap, data)
		}, "seed %d", seed)
	}
}
