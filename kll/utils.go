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
	"fmt"
	"math"

	"github.com/streamquantiles/kll/common"
)

const (
	tailRoundingFactor = 1e7

	_PMF_COEF = 2.446
	_PMF_EXP  = 0.9433
	_CDF_COEF = 2.296
	_CDF_EXP  = 0.9723
)

// checkK validates k; the upper bound is enforced by the uint16 type itself.
func checkK(k uint16, m uint8) error {
	if k < uint16(m) || k < _MIN_K {
		return fmt.Errorf("%w: k must be >= %d and <= %d: %d", ErrInvalidK, _MIN_K, _MAX_K, k)
	}
	return nil
}

func checkM(m uint8) error {
	if m < _MIN_M || m > _MAX_M || ((m & 1) == 1) {
		return fmt.Errorf("%w: m must be >= %d, <= %d and even: %d", ErrInvalidK, _MIN_M, _MAX_M, m)
	}
	return nil
}

func checkNormalizedRankBounds(rank float64) error {
	if math.IsNaN(rank) || rank < 0 || rank > 1 {
		return fmt.Errorf("%w: rank must be between 0 and 1 inclusive: %f", ErrInvalidRank, rank)
	}
	return nil
}

func checkSplitPoints[T common.Item](splitPoints []T) error {
	for i, sp := range splitPoints {
		if math.IsNaN(float64(sp)) {
			return fmt.Errorf("%w: split points must not be NaN", ErrInvalidRank)
		}
		if i > 0 && !(splitPoints[i-1] < sp) {
			return fmt.Errorf("%w: split points must be unique and monotonically increasing", ErrInvalidRank)
		}
	}
	return nil
}

// convertToCumulative turns individual weights into cumulative weights in
// place and returns the total.
func convertToCumulative(weights []int64) int64 {
	subtotal := int64(0)
	for i := range weights {
		subtotal += weights[i]
		weights[i] = subtotal
	}
	return subtotal
}

// getNaturalRank scales a normalized rank to the stream length, rounding
// away float noise near the tails for small streams.
func getNaturalRank(normalizedRank float64, totalN uint64, inclusive bool) int64 {
	naturalRank := normalizedRank * float64(totalN)
	if totalN <= tailRoundingFactor {
		naturalRank = math.Round(naturalRank*tailRoundingFactor) / tailRoundingFactor
	}
	if inclusive {
		return int64(math.Ceil(naturalRank))
	}
	return int64(math.Floor(naturalRank))
}

// getNormalizedRankError is the best fit to the 99 percent confidence
// empirically measured max error in thousands of trials.
func getNormalizedRankError(k uint16, pmf bool) float64 {
	if pmf {
		return _PMF_COEF / math.Pow(float64(k), _PMF_EXP)
	}
	return _CDF_COEF / math.Pow(float64(k), _CDF_EXP)
}

// evenlySpacedRanks returns the num normalized ranks i/(num-1) for i in
// [0, num-1]. num must be at least 2.
func evenlySpacedRanks(num int) ([]float64, error) {
	if num < 2 {
		return nil, fmt.Errorf("%w: evenly spaced num must be >= 2: %d", ErrInvalidRank, num)
	}
	out := make([]float64, num)
	out[num-1] = 1.0
	delta := 1.0 / float64(num-1)
	for i := 1; i < num-1; i++ {
		out[i] = float64(i) * delta
	}
	return out, nil
}
