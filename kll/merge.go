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

// mergeSketch concatenates the other sketch's levels into this one at
// matching weights, combines n, min and max, then re-runs compaction
// wherever a level ended up over capacity.
//
// The structural capacities stay derived from this sketch's own k; a larger
// k only retains more items. The weaker accuracy guarantee of a lower-k
// input is adopted through minK, which GetNormalizedRankError reports.
func (s *Sketch[T]) mergeSketch(other *Sketch[T]) {
	if s.IsEmpty() {
		s.minItem = other.minItem
		s.maxItem = other.maxItem
	} else {
		if other.minItem < s.minItem {
			s.minItem = other.minItem
		}
		if other.maxItem > s.maxItem {
			s.maxItem = other.maxItem
		}
	}
	s.n += other.n
	if other.IsEstimationMode() {
		// otherwise the merge brings over exact items
		s.minK = min(s.minK, other.minK)
	}

	for s.numLevels() < other.numLevels() {
		s.levels = append(s.levels, nil)
	}

	// Level 0 carries unweighted raw items on both sides; a plain append
	// keeps update semantics and defers sorting until it is needed.
	if len(other.levels[0]) > 0 {
		s.levels[0] = append(s.levels[0], other.levels[0]...)
		s.isLevelZeroSorted = false
	}
	for level := 1; level < other.numLevels(); level++ {
		s.levels[level] = mergeSorted(s.levels[level], other.levels[level])
	}

	s.compactAll()
}
