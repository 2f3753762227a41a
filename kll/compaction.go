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
	"slices"

	"github.com/streamquantiles/kll/common"
)

// Level capacities shrink geometrically by 2/3 per level of depth below the
// top level, floored at m. The exact rational arithmetic below guarantees
// the same integer capacities for a given (k, depth) on every platform.
var powersOfThree = []uint64{1, 3, 9, 27, 81, 243, 729, 2187, 6561, 19683, 59049, 177147, 531441,
	1594323, 4782969, 14348907, 43046721, 129140163, 387420489, 1162261467,
	3486784401, 10460353203, 31381059609, 94143178827, 282429536481,
	847288609443, 2541865828329, 7625597484987, 22876792454961, 68630377364883,
	205891132094649}

func levelCapacity(k uint16, numLevels uint8, level uint8, m uint8) uint32 {
	depth := numLevels - level - 1
	return max(uint32(m), intCapAux(k, depth))
}

func intCapAux(k uint16, depth uint8) uint32 {
	if depth <= 30 {
		return intCapAuxAux(k, depth)
	}
	half := depth / 2
	rest := depth - half
	tmp := intCapAuxAux(k, half)
	return intCapAuxAux(uint16(tmp), rest)
}

func intCapAuxAux(k uint16, depth uint8) uint32 {
	twok := uint64(k) << 1                        // pre-multiply by 2 here, divide by 2 during rounding
	tmp := (twok << depth) / powersOfThree[depth] // 2k * (2/3)^depth; 2k also keeps the fraction larger
	result := (tmp + 1) >> 1                      // (tmp + 1)/2: if odd, round up
	if result <= uint64(k) {
		return uint32(result)
	}
	return uint32(k)
}

func (s *Sketch[T]) levelCapacity(level int) uint32 {
	return levelCapacity(s.k, uint8(s.numLevels()), uint8(level), s.m)
}

// compactLevel restores the capacity invariant at the given level: it sorts
// the over-full buffer, keeps a coin-flip-chosen half, and promotes the
// survivors into the next level, recursing upward if the promotion overflows
// that level in turn. Invoked only when the level is over capacity.
//
// When the level holds an odd number of items, exactly one item, the
// smallest, stays behind uncompacted; the tie-break is deterministic so that
// a fixed seed reproduces the whole compaction sequence.
func (s *Sketch[T]) compactLevel(level int) {
	if level == s.numLevels()-1 {
		// Compacting the top level adds a new empty level above it, which
		// deepens every existing level and shrinks its capacity.
		s.levels = append(s.levels, make([]T, 0, s.m))
	}
	buf := s.levels[level]
	if level == 0 && !s.isLevelZeroSorted {
		slices.Sort(buf)
	}
	keep := 0
	if len(buf)%2 == 1 {
		keep = 1
	}
	promoted := s.randomlyHalve(buf[keep:])
	s.levels[level] = buf[:keep]
	if level == 0 {
		s.isLevelZeroSorted = true
	}
	s.levels[level+1] = mergeSorted(s.levels[level+1], promoted)
	if uint32(len(s.levels[level+1])) > s.levelCapacity(level+1) {
		s.compactLevel(level + 1)
	}
}

// compactAll re-checks every level bottom-up until the whole store satisfies
// its capacity invariant. Growing the store shrinks the capacities of the
// levels below the new top, so the sweep repeats until a clean pass.
func (s *Sketch[T]) compactAll() {
	for again := true; again; {
		again = false
		for level := 0; level < s.numLevels(); level++ {
			if uint32(len(s.levels[level])) > s.levelCapacity(level) {
				s.compactLevel(level)
				again = true
			}
		}
	}
}

// randomlyHalve returns either the even- or odd-indexed items of the sorted
// even-length buffer, chosen by a fair coin flip. The survivors carry twice
// their previous weight, so total weight is preserved.
func (s *Sketch[T]) randomlyHalve(buf []T) []T {
	offset := s.rng.Intn(2)
	out := make([]T, len(buf)/2)
	for i := range out {
		out[i] = buf[offset+2*i]
	}
	return out
}

// mergeSorted merges two sorted item slices into one sorted slice. It may
// reuse a's backing array but never b's.
func mergeSorted[T common.Item](a, b []T) []T {
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 {
		return append(a, b...)
	}
	out := make([]T, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if b[j] < a[i] {
			out = append(out, b[j])
			j++
		} else {
			out = append(out, a[i])
			i++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
