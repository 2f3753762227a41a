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

// Package kll implements a very compact streaming quantile sketch over
// IEEE-754 floating point items, with a lazy randomized compaction scheme
// and nearly optimal accuracy per retained quantile.
//
// Reference: https://arxiv.org/abs/1603.05346v2 "Optimal Quantile
// Approximation in Streams".
//
// The default k of 200 yields a "single-sided" epsilon of about 1.33% and a
// "double-sided" (PMF) epsilon of about 1.65%, with a confidence of 99%.
//
// A Sketch is a plain single-threaded value: concurrent use of one instance
// requires external locking.
package kll

import (
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/streamquantiles/kll/common"
)

const (
	// DefaultK yields a normalized rank error of about 1.65%.
	DefaultK = uint16(200)

	_MIN_K = uint16(8)
	_MAX_K = uint16((1 << 16) - 1)

	// m is the minimum capacity of any level.
	_DEFAULT_M = uint8(8)
	_MIN_M     = uint8(2)
	_MAX_M     = uint8(8)
)

// Sketch is a mergeable, bounded-memory summary of one stream of numeric
// items that answers approximate rank and quantile queries.
//
// Items live in a sequence of levels. Level 0 receives raw updates and is
// kept unsorted for update speed; an item retained at level i stands in for
// 2^i original observations. Every level at index 1 and above is always
// sorted.
//
// NaN updates are ignored; they have no place in a total order. Infinities
// are legal items.
type Sketch[T common.Item] struct {
	// k controls the accuracy of the sketch and its memory space usage.
	k uint16
	// m is the minimum level capacity.
	m uint8
	// minK is the smallest k that ever influenced the retained data; it
	// drives the reported rank error after merging with a less accurate
	// sketch.
	minK              uint16
	n                 uint64
	levels            [][]T
	minItem           T
	maxItem           T
	isLevelZeroSorted bool

	// rng supplies the compaction coin flip. It is injected so compaction
	// sequences can be reproduced under a fixed seed.
	rng *rand.Rand

	sortedView *sortedView[T]
	serde      common.SerDe[T]
}

// New creates an empty sketch with the default k.
func New[T common.Item]() (*Sketch[T], error) {
	return NewWithK[T](DefaultK)
}

// NewWithK creates an empty sketch with the given k. Smaller k means a
// smaller sketch and larger error; k must be in [8, 65535].
func NewWithK[T common.Item](k uint16) (*Sketch[T], error) {
	return newSketch[T](k, _DEFAULT_M)
}

func newSketch[T common.Item](k uint16, m uint8) (*Sketch[T], error) {
	if err := checkM(m); err != nil {
		return nil, err
	}
	if err := checkK(k, m); err != nil {
		return nil, err
	}
	s := &Sketch[T]{
		k:     k,
		m:     m,
		minK:  k,
		rng:   rand.New(rand.NewSource(rand.Int63())),
		serde: common.SerDeOf[T](),
	}
	s.levels = [][]T{make([]T, 0, k)}
	return s, nil
}

// SetRandom replaces the pseudo-random source behind the compaction coin
// flip. A *rand.Rand built from a fixed seed makes compaction, and therefore
// every query result, reproducible. Intended for tests.
func (s *Sketch[T]) SetRandom(r *rand.Rand) {
	if r != nil {
		s.rng = r
	}
}

// IsEmpty returns true if the sketch has seen no items.
func (s *Sketch[T]) IsEmpty() bool {
	return s.n == 0
}

// GetN returns the length of the input stream offered to the sketch.
func (s *Sketch[T]) GetN() uint64 {
	return s.n
}

// GetK returns the accuracy/size parameter the sketch was built with.
func (s *Sketch[T]) GetK() uint16 {
	return s.k
}

// GetMinK returns the smallest k that ever influenced the retained data.
// It equals GetK until the sketch is merged with a lower-k sketch.
func (s *Sketch[T]) GetMinK() uint16 {
	return s.minK
}

// GetNumRetained returns the number of items currently buffered across all
// levels. This is not GetN.
func (s *Sketch[T]) GetNumRetained() uint32 {
	var total uint32
	for _, lvl := range s.levels {
		total += uint32(len(lvl))
	}
	return total
}

// IsEstimationMode returns true once any compaction has occurred. Before
// that point all queries are exact.
func (s *Sketch[T]) IsEstimationMode() bool {
	return s.numLevels() > 1
}

// IsLevelZeroSorted returns true if level 0 is currently sorted.
func (s *Sketch[T]) IsLevelZeroSorted() bool {
	return s.isLevelZeroSorted
}

// GetMinItem returns the minimum item of the stream. This may be distinct
// from the smallest item retained by the sketch.
func (s *Sketch[T]) GetMinItem() (T, error) {
	if s.IsEmpty() {
		return *new(T), ErrEmptySketch
	}
	return s.minItem, nil
}

// GetMaxItem returns the maximum item of the stream. This may be distinct
// from the largest item retained by the sketch.
func (s *Sketch[T]) GetMaxItem() (T, error) {
	if s.IsEmpty() {
		return *new(T), ErrEmptySketch
	}
	return s.maxItem, nil
}

// GetNormalizedRankError returns the approximate rank error of this sketch
// as a fraction of one, a best fit to the 99 percent confidence empirically
// measured max error. If pmf is true it is the "double-sided" error for
// GetPMF; otherwise the "single-sided" error for all other queries.
func (s *Sketch[T]) GetNormalizedRankError(pmf bool) float64 {
	return getNormalizedRankError(s.minK, pmf)
}

// Update offers one item to the sketch. NaN is ignored.
func (s *Sketch[T]) Update(item T) {
	if math.IsNaN(float64(item)) {
		return
	}
	if s.IsEmpty() {
		s.minItem = item
		s.maxItem = item
	} else {
		if item < s.minItem {
			s.minItem = item
		}
		if item > s.maxItem {
			s.maxItem = item
		}
	}
	s.levels[0] = append(s.levels[0], item)
	s.n++
	s.isLevelZeroSorted = false
	s.sortedView = nil
	if uint32(len(s.levels[0])) > s.levelCapacity(0) {
		s.compactLevel(0)
	}
}

// Reset returns the sketch to the empty state, keeping k.
func (s *Sketch[T]) Reset() {
	s.n = 0
	s.minK = s.k
	s.isLevelZeroSorted = false
	s.levels = [][]T{make([]T, 0, s.k)}
	var zero T
	s.minItem = zero
	s.maxItem = zero
	s.sortedView = nil
}

// Clone returns an independent deep copy of the sketch. The copy gets its
// own pseudo-random stream so the two sketches do not share coin flips.
func (s *Sketch[T]) Clone() *Sketch[T] {
	c := *s
	c.levels = make([][]T, len(s.levels))
	for i, lvl := range s.levels {
		c.levels[i] = slices.Clone(lvl)
	}
	c.rng = rand.New(rand.NewSource(s.rng.Int63()))
	c.sortedView = nil
	return &c
}

// GetIterator returns an iterator over the retained items and their
// weights, in no particular item order.
func (s *Sketch[T]) GetIterator() *Iterator[T] {
	levels := make([][]T, len(s.levels))
	for i, lvl := range s.levels {
		levels[i] = slices.Clone(lvl)
	}
	return newIterator(levels)
}

// GetRank returns the normalized rank of the given item: the weighted
// fraction of the stream below it, including the item itself when inclusive
// is true.
func (s *Sketch[T]) GetRank(item T, inclusive bool) (float64, error) {
	if s.IsEmpty() {
		return 0, ErrEmptySketch
	}
	s.setupSortedView()
	return s.sortedView.getRank(item, inclusive), nil
}

// GetRanks returns the normalized ranks of the given items under the given
// search criterion.
func (s *Sketch[T]) GetRanks(items []T, inclusive bool) ([]float64, error) {
	if s.IsEmpty() {
		return nil, ErrEmptySketch
	}
	s.setupSortedView()
	ranks := make([]float64, len(items))
	for i, item := range items {
		ranks[i] = s.sortedView.getRank(item, inclusive)
	}
	return ranks, nil
}

// GetQuantile returns the approximate quantile of the given normalized
// rank: the smallest retained item whose weighted cumulative rank reaches
// the requested fraction of the stream. rank must be in [0.0, 1.0].
func (s *Sketch[T]) GetQuantile(rank float64, inclusive bool) (T, error) {
	if s.IsEmpty() {
		return *new(T), ErrEmptySketch
	}
	if err := checkNormalizedRankBounds(rank); err != nil {
		return *new(T), err
	}
	return s.quantile(rank, inclusive), nil
}

// quantile assumes a validated rank and a non-empty sketch. The extreme
// ranks answer from the tracked extrema, which compaction may have dropped
// from the retained set.
func (s *Sketch[T]) quantile(rank float64, inclusive bool) T {
	if rank == 0.0 {
		return s.minItem
	}
	if rank == 1.0 {
		return s.maxItem
	}
	s.setupSortedView()
	return s.sortedView.getQuantile(rank, inclusive)
}

// GetQuantiles returns one quantile per given normalized rank.
func (s *Sketch[T]) GetQuantiles(ranks []float64, inclusive bool) ([]T, error) {
	if s.IsEmpty() {
		return nil, ErrEmptySketch
	}
	for _, rank := range ranks {
		if err := checkNormalizedRankBounds(rank); err != nil {
			return nil, err
		}
	}
	quantiles := make([]T, len(ranks))
	for i, rank := range ranks {
		quantiles[i] = s.quantile(rank, inclusive)
	}
	return quantiles, nil
}

// GetQuantilesEvenlySpaced returns num quantiles at the evenly spaced
// normalized ranks i/(num-1) for i in [0, num-1]. num must be at least 2;
// the degenerate 0 and 1 point counts are rejected.
func (s *Sketch[T]) GetQuantilesEvenlySpaced(num int, inclusive bool) ([]T, error) {
	if s.IsEmpty() {
		return nil, ErrEmptySketch
	}
	ranks, err := evenlySpacedRanks(num)
	if err != nil {
		return nil, err
	}
	return s.GetQuantiles(ranks, inclusive)
}

// GetPMF returns an approximation to the probability mass function of the
// input stream as probability masses over the m+1 consecutive intervals
// defined by m unique, monotonically increasing split points.
func (s *Sketch[T]) GetPMF(splitPoints []T, inclusive bool) ([]float64, error) {
	buckets, err := s.GetCDF(splitPoints, inclusive)
	if err != nil {
		return nil, err
	}
	for i := len(buckets) - 1; i > 0; i-- {
		buckets[i] -= buckets[i-1]
	}
	return buckets, nil
}

// GetCDF returns an approximation to the cumulative distribution function
// of the input stream: one cumulative rank per split point plus a final 1.0.
// Split points must be unique, monotonically increasing and not NaN.
func (s *Sketch[T]) GetCDF(splitPoints []T, inclusive bool) ([]float64, error) {
	if s.IsEmpty() {
		return nil, ErrEmptySketch
	}
	if err := checkSplitPoints(splitPoints); err != nil {
		return nil, err
	}
	s.setupSortedView()
	buckets := make([]float64, len(splitPoints)+1)
	for i, sp := range splitPoints {
		buckets[i] = s.sortedView.getRank(sp, inclusive)
	}
	buckets[len(splitPoints)] = 1.0
	return buckets, nil
}

// Merge folds the other sketch into this one. The result is statistically
// equivalent to a sketch that observed the union of both input streams; the
// error bound reported afterwards adopts the weaker of the two guarantees.
// The other sketch is read-only during the merge and is not modified.
func (s *Sketch[T]) Merge(other *Sketch[T]) {
	if other == nil || other.IsEmpty() || s == other {
		return
	}
	s.mergeSketch(other)
	s.sortedView = nil
}

func (s *Sketch[T]) numLevels() int {
	return len(s.levels)
}

func (s *Sketch[T]) setupSortedView() {
	if s.sortedView == nil {
		s.sortedView = newSortedView(s)
	}
}

func (s *Sketch[T]) String() string {
	return fmt.Sprintf("kll.Sketch{k: %d, n: %d, levels: %d, retained: %d}",
		s.k, s.n, s.numLevels(), s.GetNumRetained())
}
