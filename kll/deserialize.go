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
	"encoding/binary"
	"fmt"
	"math"

	"github.com/streamquantiles/kll/common"
)

// FromSlice reconstructs a sketch from its serialized form. It fails with
// an error wrapping ErrDeserialize on truncated input, an unsupported
// version or family, invalid parameters, or level counts inconsistent with
// n or the payload length. It never reads past the end of mem.
func FromSlice[T common.Item](mem []byte) (*Sketch[T], error) {
	if len(mem) < _DATA_START_ADR_SINGLE_ITEM {
		return nil, fmt.Errorf("%w: buffer too small: %d bytes", ErrDeserialize, len(mem))
	}
	structure, err := getSketchStructure(getPreInts(mem), getSerVer(mem))
	if err != nil {
		return nil, err
	}
	if getFamilyID(mem) != _FAMILY_ID {
		return nil, fmt.Errorf("%w: source not KLL: family %d", ErrDeserialize, getFamilyID(mem))
	}
	k := getK(mem)
	m := getM(mem)
	if err := checkM(m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialize, err)
	}
	if err := checkK(k, m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialize, err)
	}
	if getEmptyFlag(mem) != (structure == _COMPACT_EMPTY) {
		return nil, fmt.Errorf("%w: empty flag does not match encoding structure", ErrDeserialize)
	}
	if getSingleItemFlag(mem) != (structure == _COMPACT_SINGLE) {
		return nil, fmt.Errorf("%w: single-item flag does not match encoding structure", ErrDeserialize)
	}

	s, err := newSketch[T](k, m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialize, err)
	}

	switch structure {
	case _COMPACT_EMPTY:
		return s, nil

	case _COMPACT_SINGLE:
		items, err := s.serde.DeserializeManyFromSlice(mem, _DATA_START_ADR_SINGLE_ITEM, 1)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDeserialize, err)
		}
		item := items[0]
		if math.IsNaN(float64(item)) {
			return nil, fmt.Errorf("%w: NaN item", ErrDeserialize)
		}
		s.n = 1
		s.minItem = item
		s.maxItem = item
		s.levels[0] = append(s.levels[0], item)
		s.isLevelZeroSorted = true
		return s, nil

	default:
		return decodeFull(s, mem)
	}
}

func decodeFull[T common.Item](s *Sketch[T], mem []byte) (*Sketch[T], error) {
	if len(mem) < _DATA_START_ADR {
		return nil, fmt.Errorf("%w: buffer too small for full preamble: %d bytes", ErrDeserialize, len(mem))
	}
	n := getN(mem)
	minK := getMinK(mem)
	numLevels := int(getNumLevels(mem))
	if n < 2 {
		return nil, fmt.Errorf("%w: full encoding with n = %d", ErrDeserialize, n)
	}
	if minK < _MIN_K || minK > s.k {
		return nil, fmt.Errorf("%w: minK %d out of range for k %d", ErrDeserialize, minK, s.k)
	}
	// 2^61 already exceeds any representable n
	if numLevels < 1 || numLevels > 61 {
		return nil, fmt.Errorf("%w: invalid number of levels: %d", ErrDeserialize, numLevels)
	}

	countsEnd := _DATA_START_ADR + numLevels*4
	if len(mem) < countsEnd {
		return nil, fmt.Errorf("%w: buffer too small for %d level counts", ErrDeserialize, numLevels)
	}
	counts := make([]uint32, numLevels)
	totalItems := 0
	weightedCount := uint64(0)
	for i := range counts {
		counts[i] = binary.LittleEndian.Uint32(mem[_DATA_START_ADR+i*4:])
		totalItems += int(counts[i])
		weightedCount += uint64(counts[i]) << uint(i)
	}
	// every retained item at level i stands in for 2^i observations, and
	// compaction preserves total weight exactly
	if weightedCount != n {
		return nil, fmt.Errorf("%w: level counts weigh %d, preamble says n = %d", ErrDeserialize, weightedCount, n)
	}

	itemBytes := s.serde.SizeOf()
	needed := countsEnd + (2+totalItems)*itemBytes
	if len(mem) < needed {
		return nil, fmt.Errorf("%w: declared %d items need %d bytes, have %d", ErrDeserialize, totalItems, needed, len(mem))
	}

	minMax, err := s.serde.DeserializeManyFromSlice(mem, countsEnd, 2)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialize, err)
	}
	minItem, maxItem := minMax[0], minMax[1]
	if math.IsNaN(float64(minItem)) || math.IsNaN(float64(maxItem)) || minItem > maxItem {
		return nil, fmt.Errorf("%w: invalid min/max pair", ErrDeserialize)
	}

	items, err := s.serde.DeserializeManyFromSlice(mem, countsEnd+2*itemBytes, totalItems)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialize, err)
	}

	level0Sorted := getLevelZeroSortedFlag(mem)
	levels := make([][]T, numLevels)
	offset := 0
	for level := range levels {
		lvl := items[offset : offset+int(counts[level]) : offset+int(counts[level])]
		offset += int(counts[level])
		for i, item := range lvl {
			if math.IsNaN(float64(item)) {
				return nil, fmt.Errorf("%w: NaN item at level %d", ErrDeserialize, level)
			}
			if i > 0 && (level > 0 || level0Sorted) && lvl[i-1] > item {
				return nil, fmt.Errorf("%w: level %d is not sorted", ErrDeserialize, level)
			}
		}
		levels[level] = lvl
	}

	s.n = n
	s.minK = minK
	s.minItem = minItem
	s.maxItem = maxItem
	s.levels = levels
	s.isLevelZeroSorted = level0Sorted
	return s, nil
}
