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

package handle

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandle_NilSafety(t *testing.T) {
	var h *Double
	h.Update(1.0)
	h.Merge(New[float64]())
	assert.True(t, h.IsEmpty())
	assert.Equal(t, uint16(0), h.K())
	assert.Equal(t, uint64(0), h.N())
	assert.Equal(t, uint32(0), h.NumRetained())
	assert.False(t, h.IsEstimationMode())
	assert.True(t, math.IsNaN(h.MinValue()))
	assert.True(t, math.IsNaN(h.MaxValue()))
	assert.True(t, math.IsNaN(h.Quantile(0.5)))
	assert.True(t, math.IsNaN(h.Rank(1.0)))
	assert.Empty(t, h.Quantiles([]float64{0.5}))
	assert.Empty(t, h.QuantilesEvenlySpaced(3))
	assert.Nil(t, h.Serialize())
}

func TestHandle_InvalidConstruction(t *testing.T) {
	assert.Nil(t, NewWithK[float64](4))
	assert.Nil(t, Deserialize[float64]([]byte("garbage")))
	assert.Nil(t, Deserialize[float32](nil))
}

func TestHandle_FloatLifecycle(t *testing.T) {
	h := New[float32]()
	require.NotNil(t, h)
	assert.True(t, h.IsEmpty())
	assert.Equal(t, uint16(200), h.K())

	// empty-sketch queries degrade to NaN instead of failing
	assert.True(t, math.IsNaN(float64(h.Quantile(0.5))))
	assert.True(t, math.IsNaN(h.Rank(1)))

	for i := 1; i <= 100; i++ {
		h.Update(float32(i))
	}
	assert.False(t, h.IsEmpty())
	assert.Equal(t, uint64(100), h.N())
	assert.Equal(t, float32(1), h.MinValue())
	assert.Equal(t, float32(100), h.MaxValue())
	assert.Equal(t, float32(50), h.Quantile(0.5))
	assert.Equal(t, 0.5, h.Rank(50))

	// out-of-range fraction degrades to NaN
	assert.True(t, math.IsNaN(float64(h.Quantile(1.5))))
	assert.True(t, math.IsNaN(float64(h.Quantile(-0.1))))
}

func TestHandle_QuantilesBatches(t *testing.T) {
	h := NewWithK[float64](200)
	require.NotNil(t, h)
	for i := 1; i <= 100; i++ {
		h.Update(float64(i))
	}

	qs := h.Quantiles([]float64{0, 0.5, 1})
	require.Len(t, qs, 3)
	assert.Equal(t, 1.0, qs[0])
	assert.Equal(t, 50.0, qs[1])
	assert.Equal(t, 100.0, qs[2])

	evenly := h.QuantilesEvenlySpaced(5)
	require.Len(t, evenly, 5)
	assert.Equal(t, 1.0, evenly[0])
	assert.Equal(t, 100.0, evenly[4])

	// degenerate point counts degrade to an empty slice
	assert.Empty(t, h.QuantilesEvenlySpaced(1))
	assert.Empty(t, h.QuantilesEvenlySpaced(0))
	assert.Empty(t, h.Quantiles(nil))
	assert.Empty(t, h.Quantiles([]float64{0.5, 2.0}))
}

func TestHandle_MergeAndSerialize(t *testing.T) {
	a := New[float64]()
	b := New[float64]()
	require.NotNil(t, a)
	require.NotNil(t, b)
	for i := 1; i <= 500; i++ {
		a.Update(float64(i))
		b.Update(float64(500 + i))
	}

	a.Merge(b)
	assert.Equal(t, uint64(1000), a.N())
	assert.Equal(t, 1.0, a.MinValue())
	assert.Equal(t, 1000.0, a.MaxValue())

	raw := a.Serialize()
	require.NotNil(t, raw)
	back := Deserialize[float64](raw)
	require.NotNil(t, back)
	assert.Equal(t, a.N(), back.N())
	assert.Equal(t, a.Quantile(0.5), back.Quantile(0.5))
}
