/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package kll

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSketch_KLimits(t *testing.T) {
	_, err := NewWithK[float64](_MIN_K)
	assert.NoError(t, err)
	_, err = NewWithK[float64](_MAX_K)
	assert.NoError(t, err)
	_, err = NewWithK[float64](_MIN_K - 1)
	assert.ErrorIs(t, err, ErrInvalidK)
}

func TestSketch_Empty(t *testing.T) {
	sketch, err := New[float64]()
	require.NoError(t, err)
	assert.True(t, sketch.IsEmpty())
	assert.False(t, sketch.IsEstimationMode())
	assert.Equal(t, DefaultK, sketch.GetK())
	assert.Equal(t, uint64(0), sketch.GetN())
	assert.Equal(t, uint32(0), sketch.GetNumRetained())
	_, err = sketch.GetMinItem()
	assert.ErrorIs(t, err, ErrEmptySketch)
	_, err = sketch.GetMaxItem()
	assert.ErrorIs(t, err, ErrEmptySketch)
	_, err = sketch.GetRank(0, true)
	assert.ErrorIs(t, err, ErrEmptySketch)
	_, err = sketch.GetQuantile(0.5, true)
	assert.ErrorIs(t, err, ErrEmptySketch)
	_, err = sketch.GetQuantiles([]float64{0.5}, true)
	assert.ErrorIs(t, err, ErrEmptySketch)
	_, err = sketch.GetQuantilesEvenlySpaced(5, true)
	assert.ErrorIs(t, err, ErrEmptySketch)
	_, err = sketch.GetPMF([]float64{0}, true)
	assert.ErrorIs(t, err, ErrEmptySketch)
	_, err = sketch.GetCDF([]float64{0}, true)
	assert.ErrorIs(t, err, ErrEmptySketch)
}

func TestSketch_BadRankArguments(t *testing.T) {
	sketch, err := New[float64]()
	require.NoError(t, err)
	sketch.Update(1) // has to be non-empty to reach the range checks
	_, err = sketch.GetQuantile(-1, true)
	assert.ErrorIs(t, err, ErrInvalidRank)
	_, err = sketch.GetQuantile(1.5, true)
	assert.ErrorIs(t, err, ErrInvalidRank)
	_, err = sketch.GetQuantile(math.NaN(), true)
	assert.ErrorIs(t, err, ErrInvalidRank)
	_, err = sketch.GetQuantiles([]float64{0.5, 2}, true)
	assert.ErrorIs(t, err, ErrInvalidRank)
	_, err = sketch.GetQuantilesEvenlySpaced(0, true)
	assert.ErrorIs(t, err, ErrInvalidRank)
	_, err = sketch.GetQuantilesEvenlySpaced(1, true)
	assert.ErrorIs(t, err, ErrInvalidRank)
}

func TestSketch_NaNUpdateIgnored(t *testing.T) {
	sketch, err := New[float64]()
	require.NoError(t, err)
	sketch.Update(math.NaN())
	assert.True(t, sketch.IsEmpty())
	sketch.Update(1)
	sketch.Update(math.NaN())
	assert.Equal(t, uint64(1), sketch.GetN())
}

func TestSketch_OneValue(t *testing.T) {
	sketch, err := New[float32]()
	require.NoError(t, err)
	sketch.Update(1)
	assert.False(t, sketch.IsEmpty())
	assert.False(t, sketch.IsEstimationMode())
	assert.Equal(t, uint64(1), sketch.GetN())
	assert.Equal(t, uint32(1), sketch.GetNumRetained())

	rank, err := sketch.GetRank(1, false)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, rank)
	rank, err = sketch.GetRank(1, true)
	assert.NoError(t, err)
	assert.Equal(t, 1.0, rank)
	rank, err = sketch.GetRank(2, false)
	assert.NoError(t, err)
	assert.Equal(t, 1.0, rank)

	minV, err := sketch.GetMinItem()
	assert.NoError(t, err)
	assert.Equal(t, float32(1), minV)
	maxV, err := sketch.GetMaxItem()
	assert.NoError(t, err)
	assert.Equal(t, float32(1), maxV)

	q, err := sketch.GetQuantile(0.5, true)
	assert.NoError(t, err)
	assert.Equal(t, float32(1), q)
	q, err = sketch.GetQuantile(0.5, false)
	assert.NoError(t, err)
	assert.Equal(t, float32(1), q)
}

func TestSketch_ExactMode(t *testing.T) {
	sketch, err := New[float64]()
	require.NoError(t, err)
	for i := 1; i <= 100; i++ {
		sketch.Update(float64(i))
	}
	assert.False(t, sketch.IsEstimationMode())
	assert.Equal(t, uint64(100), sketch.GetN())
	assert.Equal(t, uint32(100), sketch.GetNumRetained())

	// all queries are exact before the first compaction
	q, err := sketch.GetQuantile(0.5, true)
	assert.NoError(t, err)
	assert.Equal(t, 50.0, q)
	q, err = sketch.GetQuantile(0, true)
	assert.NoError(t, err)
	assert.Equal(t, 1.0, q)
	q, err = sketch.GetQuantile(1, true)
	assert.NoError(t, err)
	assert.Equal(t, 100.0, q)

	rank, err := sketch.GetRank(50, true)
	assert.NoError(t, err)
	assert.Equal(t, 0.5, rank)
	rank, err = sketch.GetRank(1, false)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, rank)
	rank, err = sketch.GetRank(100, true)
	assert.NoError(t, err)
	assert.Equal(t, 1.0, rank)
	rank, err = sketch.GetRank(1000, false)
	assert.NoError(t, err)
	assert.Equal(t, 1.0, rank)
	rank, err = sketch.GetRank(0.5, true)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, rank)
}

func TestSketch_QuantileBounds(t *testing.T) {
	sketch, err := NewWithK[float64](200)
	require.NoError(t, err)
	sketch.SetRandom(rand.New(rand.NewSource(1)))
	for i := 1; i <= 100000; i++ {
		sketch.Update(float64(i))
	}
	assert.True(t, sketch.IsEstimationMode())

	minV, err := sketch.GetMinItem()
	require.NoError(t, err)
	maxV, err := sketch.GetMaxItem()
	require.NoError(t, err)

	q, err := sketch.GetQuantile(0, true)
	assert.NoError(t, err)
	assert.Equal(t, minV, q)
	q, err = sketch.GetQuantile(1, true)
	assert.NoError(t, err)
	assert.Equal(t, maxV, q)

	rank, err := sketch.GetRank(minV, false)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, rank)
	rank, err = sketch.GetRank(maxV, true)
	assert.NoError(t, err)
	assert.Equal(t, 1.0, rank)
}

func TestSketch_MedianScenario(t *testing.T) {
	// the median of 1..1000 at k=200 stays within the rank error bound
	sketch, err := NewWithK[float64](200)
	require.NoError(t, err)
	sketch.SetRandom(rand.New(rand.NewSource(7)))
	for i := 1; i <= 1000; i++ {
		sketch.Update(float64(i))
	}
	median, err := sketch.GetQuantile(0.5, true)
	assert.NoError(t, err)
	// the true rank of the estimate stays within a small multiple of the
	// normalized rank error of the true median's rank
	eps := sketch.GetNormalizedRankError(false)
	assert.InDelta(t, 500, median, 3*eps*1000)
}

func TestSketch_RankMonotonic(t *testing.T) {
	sketch, err := NewWithK[float64](50)
	require.NoError(t, err)
	sketch.SetRandom(rand.New(rand.NewSource(2)))
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 50000; i++ {
		sketch.Update(rng.Float64())
	}
	for _, inclusive := range []bool{false, true} {
		prev := 0.0
		for p := 0.0; p <= 1.0; p += 0.01 {
			rank, err := sketch.GetRank(p, inclusive)
			assert.NoError(t, err)
			assert.GreaterOrEqual(t, rank, prev)
			prev = rank
		}
	}
}

func TestSketch_SpaceBoundAndWeightInvariant(t *testing.T) {
	for _, k := range []uint16{8, 64, 200} {
		sketch, err := NewWithK[float64](k)
		require.NoError(t, err)
		sketch.SetRandom(rand.New(rand.NewSource(int64(k))))
		rng := rand.New(rand.NewSource(int64(k) + 1))
		n := 200000
		for i := 0; i < n; i++ {
			sketch.Update(rng.NormFloat64())
		}

		bound := 2 * float64(k) * math.Log2(math.Max(float64(n)/float64(k), 2))
		assert.LessOrEqual(t, float64(sketch.GetNumRetained()), bound, "k=%d", k)

		// total weight of retained items accounts for every observation
		weight := int64(0)
		it := sketch.GetIterator()
		for it.Next() {
			weight += it.GetWeight()
		}
		assert.Equal(t, int64(n), weight, "k=%d", k)
	}
}

func TestSketch_Reproducible(t *testing.T) {
	build := func(seed int64) *Sketch[float64] {
		sketch, err := NewWithK[float64](100)
		require.NoError(t, err)
		sketch.SetRandom(rand.New(rand.NewSource(seed)))
		for i := 1; i <= 20000; i++ {
			sketch.Update(float64(i % 997))
		}
		return sketch
	}
	a := build(11)
	b := build(11)
	assert.Equal(t, a.ToSlice(), b.ToSlice())

	c := build(12)
	assert.Equal(t, a.GetN(), c.GetN())
}

func TestSketch_PmfCdf(t *testing.T) {
	sketch, err := New[float64]()
	require.NoError(t, err)
	for i := 1; i <= 100; i++ {
		sketch.Update(float64(i))
	}
	cdf, err := sketch.GetCDF([]float64{50}, true)
	assert.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1.0}, cdf)

	pmf, err := sketch.GetPMF([]float64{25, 75}, true)
	assert.NoError(t, err)
	require.Len(t, pmf, 3)
	assert.InDelta(t, 0.25, pmf[0], 1e-12)
	assert.InDelta(t, 0.5, pmf[1], 1e-12)
	assert.InDelta(t, 0.25, pmf[2], 1e-12)

	_, err = sketch.GetCDF([]float64{75, 25}, true)
	assert.ErrorIs(t, err, ErrInvalidRank)
	_, err = sketch.GetCDF([]float64{math.NaN()}, true)
	assert.ErrorIs(t, err, ErrInvalidRank)
}

func TestSketch_EvenlySpaced(t *testing.T) {
	sketch, err := New[float64]()
	require.NoError(t, err)
	for i := 1; i <= 100; i++ {
		sketch.Update(float64(i))
	}
	values, err := sketch.GetQuantilesEvenlySpaced(3, true)
	assert.NoError(t, err)
	assert.Equal(t, []float64{1, 50, 100}, values)

	values, err = sketch.GetQuantilesEvenlySpaced(2, true)
	assert.NoError(t, err)
	assert.Equal(t, []float64{1, 100}, values)
}

func TestSketch_GetRanksAndQuantiles(t *testing.T) {
	sketch, err := New[float64]()
	require.NoError(t, err)
	for i := 1; i <= 100; i++ {
		sketch.Update(float64(i))
	}
	ranks, err := sketch.GetRanks([]float64{25, 50, 75}, true)
	assert.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.5, 0.75}, ranks)

	quantiles, err := sketch.GetQuantiles([]float64{0.25, 0.5, 0.75}, true)
	assert.NoError(t, err)
	assert.Equal(t, []float64{25, 50, 75}, quantiles)
}

func TestSketch_Reset(t *testing.T) {
	sketch, err := NewWithK[float64](20)
	require.NoError(t, err)
	for i := 1; i <= 1000; i++ {
		sketch.Update(float64(i))
	}
	assert.True(t, sketch.IsEstimationMode())
	sketch.Reset()
	assert.True(t, sketch.IsEmpty())
	assert.False(t, sketch.IsEstimationMode())
	assert.Equal(t, uint16(20), sketch.GetK())
	assert.Equal(t, uint16(20), sketch.GetMinK())
	assert.Equal(t, uint32(0), sketch.GetNumRetained())

	sketch.Update(42)
	q, err := sketch.GetQuantile(0.5, true)
	assert.NoError(t, err)
	assert.Equal(t, 42.0, q)
}

func TestSketch_CloneIndependence(t *testing.T) {
	original, err := NewWithK[float64](50)
	require.NoError(t, err)
	original.SetRandom(rand.New(rand.NewSource(5)))
	for i := 1; i <= 1000; i++ {
		original.Update(float64(i))
	}
	cloned := original.Clone()
	assert.Equal(t, original.GetN(), cloned.GetN())
	assert.Equal(t, original.GetK(), cloned.GetK())
	assert.Equal(t, original.GetNumRetained(), cloned.GetNumRetained())
	assert.Equal(t, original.ToSlice(), cloned.ToSlice())

	nBefore := cloned.GetN()
	original.Update(999999)
	assert.Equal(t, nBefore, cloned.GetN())
	assert.Equal(t, nBefore+1, original.GetN())
}

func TestSketch_InfinitiesAreLegal(t *testing.T) {
	sketch, err := New[float64]()
	require.NoError(t, err)
	sketch.Update(math.Inf(1))
	sketch.Update(0)
	sketch.Update(math.Inf(-1))
	minV, err := sketch.GetMinItem()
	assert.NoError(t, err)
	assert.True(t, math.IsInf(minV, -1))
	maxV, err := sketch.GetMaxItem()
	assert.NoError(t, err)
	assert.True(t, math.IsInf(maxV, 1))
}
