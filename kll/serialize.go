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
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// ToSlice returns the compact serialized form of the sketch. The encoding
// is self-describing; FromSlice is the exact inverse.
func (s *Sketch[T]) ToSlice() []byte {
	structure := s.structure()
	bytesOut := make([]byte, s.GetSerializedSizeBytes())

	bytesOut[_PREAMBLE_INTS_BYTE_ADR] = byte(structure.getPreInts())
	bytesOut[_SER_VER_BYTE_ADR] = byte(structure.getSerVer())
	bytesOut[_FAMILY_BYTE_ADR] = _FAMILY_ID
	flags := byte(0)
	if s.IsEmpty() {
		flags |= _EMPTY_BIT_MASK
	}
	// a level 0 of at most one item is trivially sorted; folding that into
	// the flag keeps the encoding canonical, so re-encoding a decoded sketch
	// is byte-stable
	if s.isLevelZeroSorted || len(s.levels[0]) <= 1 {
		flags |= _LEVEL_ZERO_SORTED_BIT_MASK
	}
	if s.n == 1 {
		flags |= _SINGLE_ITEM_BIT_MASK
	}
	bytesOut[_FLAGS_BYTE_ADR] = flags
	binary.LittleEndian.PutUint16(bytesOut[_K_SHORT_ADR:], s.k)
	bytesOut[_M_BYTE_ADR] = s.m

	switch structure {
	case _COMPACT_EMPTY:
		return bytesOut

	case _COMPACT_SINGLE:
		copy(bytesOut[_DATA_START_ADR_SINGLE_ITEM:], s.serde.SerializeOneToSlice(s.levels[0][0]))
		return bytesOut

	default:
		binary.LittleEndian.PutUint64(bytesOut[_N_LONG_ADR:], s.n)
		binary.LittleEndian.PutUint16(bytesOut[_MIN_K_SHORT_ADR:], s.minK)
		bytesOut[_NUM_LEVELS_BYTE_ADR] = uint8(s.numLevels())
		offset := _DATA_START_ADR
		for _, lvl := range s.levels {
			binary.LittleEndian.PutUint32(bytesOut[offset:], uint32(len(lvl)))
			offset += 4
		}
		offset += copy(bytesOut[offset:], s.serde.SerializeOneToSlice(s.minItem))
		offset += copy(bytesOut[offset:], s.serde.SerializeOneToSlice(s.maxItem))
		for _, lvl := range s.levels {
			offset += copy(bytesOut[offset:], s.serde.SerializeManyToSlice(lvl))
		}
		return bytesOut
	}
}

// GetSerializedSizeBytes returns the number of bytes ToSlice would produce.
func (s *Sketch[T]) GetSerializedSizeBytes() int {
	switch s.structure() {
	case _COMPACT_EMPTY:
		return _DATA_START_ADR_SINGLE_ITEM
	case _COMPACT_SINGLE:
		return _DATA_START_ADR_SINGLE_ITEM + s.serde.SizeOf()
	default:
		return _DATA_START_ADR + s.numLevels()*4 + (2+int(s.GetNumRetained()))*s.serde.SizeOf()
	}
}

func (s *Sketch[T]) structure() sketchStructure {
	if s.n == 0 {
		return _COMPACT_EMPTY
	}
	if s.n == 1 {
		return _COMPACT_SINGLE
	}
	return _COMPACT_FULL
}

// MarshalJSON encodes the sketch as a base64 JSON string wrapping the
// binary serialization.
func (s *Sketch[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(base64.StdEncoding.EncodeToString(s.ToSlice()))
}

// UnmarshalJSON is the inverse of MarshalJSON and replaces the receiver's
// state with the decoded sketch.
func (s *Sketch[T]) UnmarshalJSON(data []byte) error {
	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return fmt.Errorf("%w: %v", ErrDeserialize, err)
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeserialize, err)
	}
	decoded, err := FromSlice[T](raw)
	if err != nil {
		return err
	}
	*s = *decoded
	return nil
}
