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

// Package handle is the degraded-but-safe call surface intended for a
// foreign-function shim. Unlike package kll, whose queries fail fast,
// every operation here tolerates a nil or invalid handle and a failed
// query: introspection returns zero values, single-value queries return
// NaN, batch queries return empty results, and Serialize returns nil.
// Constructors return a nil handle instead of an error.
package handle

import (
	"math"

	"github.com/streamquantiles/kll/common"
	"github.com/streamquantiles/kll/kll"
)

// Sketch is an opaque handle around a kll.Sketch.
type Sketch[T common.Item] struct {
	sk *kll.Sketch[T]
}

// Float is the 32-bit floating point instantiation.
type Float = Sketch[float32]

// Double is the 64-bit floating point instantiation.
type Double = Sketch[float64]

// New returns a handle to an empty sketch with the default k.
func New[T common.Item]() *Sketch[T] {
	sk, err := kll.New[T]()
	if err != nil {
		return nil
	}
	return &Sketch[T]{sk: sk}
}

// NewWithK returns a handle to an empty sketch with the given k, or nil
// when k is out of range.
func NewWithK[T common.Item](k uint16) *Sketch[T] {
	sk, err := kll.NewWithK[T](k)
	if err != nil {
		return nil
	}
	return &Sketch[T]{sk: sk}
}

// Deserialize reconstructs a handle from serialized bytes, or returns nil
// when the bytes do not decode.
func Deserialize[T common.Item](raw []byte) *Sketch[T] {
	sk, err := kll.FromSlice[T](raw)
	if err != nil {
		return nil
	}
	return &Sketch[T]{sk: sk}
}

func (h *Sketch[T]) valid() bool {
	return h != nil && h.sk != nil
}

// Update offers one value to the sketch. A nil handle is a no-op.
func (h *Sketch[T]) Update(value T) {
	if h.valid() {
		h.sk.Update(value)
	}
}

// Merge folds the other handle's sketch into this one. Either side being
// nil makes it a no-op.
func (h *Sketch[T]) Merge(other *Sketch[T]) {
	if h.valid() && other.valid() {
		h.sk.Merge(other.sk)
	}
}

// IsEmpty reports whether the sketch has seen no values. A nil handle is
// empty.
func (h *Sketch[T]) IsEmpty() bool {
	return !h.valid() || h.sk.IsEmpty()
}

// K returns the sketch's accuracy parameter, or 0 for a nil handle.
func (h *Sketch[T]) K() uint16 {
	if !h.valid() {
		return 0
	}
	return h.sk.GetK()
}

// N returns the stream length, or 0 for a nil handle.
func (h *Sketch[T]) N() uint64 {
	if !h.valid() {
		return 0
	}
	return h.sk.GetN()
}

// NumRetained returns the retained item count, or 0 for a nil handle.
func (h *Sketch[T]) NumRetained() uint32 {
	if !h.valid() {
		return 0
	}
	return h.sk.GetNumRetained()
}

// IsEstimationMode reports whether any compaction has occurred.
func (h *Sketch[T]) IsEstimationMode() bool {
	return h.valid() && h.sk.IsEstimationMode()
}

// MinValue returns the minimum value seen, or NaN when empty or nil.
func (h *Sketch[T]) MinValue() T {
	if !h.valid() {
		return nan[T]()
	}
	v, err := h.sk.GetMinItem()
	if err != nil {
		return nan[T]()
	}
	return v
}

// MaxValue returns the maximum value seen, or NaN when empty or nil.
func (h *Sketch[T]) MaxValue() T {
	if !h.valid() {
		return nan[T]()
	}
	v, err := h.sk.GetMaxItem()
	if err != nil {
		return nan[T]()
	}
	return v
}

// Quantile returns the approximate value at the given fraction of the
// stream, or NaN when the handle is nil, the sketch is empty, or the
// fraction is outside [0, 1].
func (h *Sketch[T]) Quantile(fraction float64) T {
	if !h.valid() {
		return nan[T]()
	}
	v, err := h.sk.GetQuantile(fraction, true)
	if err != nil {
		return nan[T]()
	}
	return v
}

// Rank returns the fraction of the stream less than or equal to the given
// value, or NaN when the handle is nil or the sketch is empty.
func (h *Sketch[T]) Rank(value T) float64 {
	if !h.valid() {
		return math.NaN()
	}
	r, err := h.sk.GetRank(value, true)
	if err != nil {
		return math.NaN()
	}
	return r
}

// Quantiles returns one value per fraction, or an empty slice when the
// handle is nil, the sketch is empty, or any fraction is out of range.
func (h *Sketch[T]) Quantiles(fractions []float64) []T {
	if !h.valid() || len(fractions) == 0 {
		return []T{}
	}
	values, err := h.sk.GetQuantiles(fractions, true)
	if err != nil {
		return []T{}
	}
	return values
}

// QuantilesEvenlySpaced returns num values at evenly spaced fractions, or
// an empty slice when the handle is nil, the sketch is empty, or num < 2.
func (h *Sketch[T]) QuantilesEvenlySpaced(num uint32) []T {
	if !h.valid() {
		return []T{}
	}
	values, err := h.sk.GetQuantilesEvenlySpaced(int(num), true)
	if err != nil {
		return []T{}
	}
	return values
}

// Serialize returns the sketch's compact binary form, or nil for a nil
// handle.
func (h *Sketch[T]) Serialize() []byte {
	if !h.valid() {
		return nil
	}
	return h.sk.ToSlice()
}

func nan[T common.Item]() T {
	return T(math.NaN())
}
