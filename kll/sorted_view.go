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
	"github.com/streamquantiles/kll/internal"
)

// sortedView is the merged, weighted, sorted rendering of all levels that
// the query engine answers from. It is cached on the sketch and rebuilt
// lazily after any mutation.
type sortedView[T common.Item] struct {
	quantiles  []T
	cumWeights []int64
	totalN     uint64
}

func newSortedView[T common.Item](s *Sketch[T]) *sortedView[T] {
	if !s.isLevelZeroSorted {
		slices.Sort(s.levels[0])
		s.isLevelZeroSorted = true
	}
	var quantiles []T
	var weights []int64
	for level, lvl := range s.levels {
		quantiles, weights = tandemMerge(quantiles, weights, lvl, int64(1)<<level)
	}
	convertToCumulative(weights)
	return &sortedView[T]{
		quantiles:  quantiles,
		cumWeights: weights,
		totalN:     s.n,
	}
}

// tandemMerge merges a sorted weighted sequence with one sorted level whose
// items all carry the given weight, keeping items and weights in lockstep.
func tandemMerge[T common.Item](items []T, weights []int64, level []T, weight int64) ([]T, []int64) {
	if len(level) == 0 {
		return items, weights
	}
	outItems := make([]T, 0, len(items)+len(level))
	outWeights := make([]int64, 0, len(items)+len(level))
	i, j := 0, 0
	for i < len(items) && j < len(level) {
		if level[j] < items[i] {
			outItems = append(outItems, level[j])
			outWeights = append(outWeights, weight)
			j++
		} else {
			outItems = append(outItems, items[i])
			outWeights = append(outWeights, weights[i])
			i++
		}
	}
	for ; i < len(items); i++ {
		outItems = append(outItems, items[i])
		outWeights = append(outWeights, weights[i])
	}
	for ; j < len(level); j++ {
		outItems = append(outItems, level[j])
		outWeights = append(outWeights, weight)
	}
	return outItems, outWeights
}

func (v *sortedView[T]) getRank(item T, inclusive bool) float64 {
	crit := internal.InequalityLT
	if inclusive {
		crit = internal.InequalityLE
	}
	index := internal.FindWithInequality(v.quantiles, 0, len(v.quantiles)-1, item, crit)
	if index == -1 {
		return 0
	}
	return float64(v.cumWeights[index]) / float64(v.totalN)
}

func (v *sortedView[T]) getQuantile(rank float64, inclusive bool) T {
	naturalRank := getNaturalRank(rank, v.totalN, inclusive)
	crit := internal.InequalityGT
	if inclusive {
		crit = internal.InequalityGE
	}
	index := internal.FindWithInequality(v.cumWeights, 0, len(v.cumWeights)-1, naturalRank, crit)
	if index == -1 {
		// past the last cumulative weight, which can only mean the top
		return v.quantiles[len(v.quantiles)-1]
	}
	return v.quantiles[index]
}
