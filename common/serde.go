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

// Package common holds the numeric item types shared by the sketch engine
// and its serialization codec.
package common

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Item is the set of numeric types the sketch engine is instantiated for:
// IEEE-754 single and double precision floating point.
type Item interface {
	float32 | float64
}

// SerDe encodes and decodes fixed-width sketch items in little-endian byte
// order.
type SerDe[T Item] interface {
	// SizeOf returns the encoded size of one item in bytes.
	SizeOf() int
	SerializeOneToSlice(item T) []byte
	SerializeManyToSlice(items []T) []byte
	DeserializeManyFromSlice(mem []byte, offsetBytes int, numItems int) ([]T, error)
}

// SerDeOf returns the SerDe for the given item type.
func SerDeOf[T Item]() SerDe[T] {
	var item T
	switch any(item).(type) {
	case float32:
		return any(FloatSerDe{}).(SerDe[T])
	default:
		return any(DoubleSerDe{}).(SerDe[T])
	}
}

// FloatSerDe handles serialization and deserialization of float32 sketch items.
type FloatSerDe struct{}

func (FloatSerDe) SizeOf() int {
	return 4
}

func (FloatSerDe) SerializeOneToSlice(item float32) []byte {
	bytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(bytes, math.Float32bits(item))
	return bytes
}

func (FloatSerDe) SerializeManyToSlice(items []float32) []byte {
	if len(items) == 0 {
		return []byte{}
	}
	bytes := make([]byte, 4*len(items))
	offset := 0
	for _, item := range items {
		binary.LittleEndian.PutUint32(bytes[offset:], math.Float32bits(item))
		offset += 4
	}
	return bytes
}

func (FloatSerDe) DeserializeManyFromSlice(mem []byte, offsetBytes int, numItems int) ([]float32, error) {
	if err := checkBounds(len(mem), offsetBytes, numItems, 4); err != nil {
		return nil, err
	}
	array := make([]float32, 0, numItems)
	for i := 0; i < numItems; i++ {
		array = append(array, math.Float32frombits(binary.LittleEndian.Uint32(mem[offsetBytes:])))
		offsetBytes += 4
	}
	return array, nil
}

// DoubleSerDe handles serialization and deserialization of float64 sketch items.
type DoubleSerDe struct{}

func (DoubleSerDe) SizeOf() int {
	return 8
}

func (DoubleSerDe) SerializeOneToSlice(item float64) []byte {
	bytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(bytes, math.Float64bits(item))
	return bytes
}

func (DoubleSerDe) SerializeManyToSlice(items []float64) []byte {
	if len(items) == 0 {
		return []byte{}
	}
	bytes := make([]byte, 8*len(items))
	offset := 0
	for _, item := range items {
		binary.LittleEndian.PutUint64(bytes[offset:], math.Float64bits(item))
		offset += 8
	}
	return bytes
}

func (DoubleSerDe) DeserializeManyFromSlice(mem []byte, offsetBytes int, numItems int) ([]float64, error) {
	if err := checkBounds(len(mem), offsetBytes, numItems, 8); err != nil {
		return nil, err
	}
	array := make([]float64, 0, numItems)
	for i := 0; i < numItems; i++ {
		array = append(array, math.Float64frombits(binary.LittleEndian.Uint64(mem[offsetBytes:])))
		offsetBytes += 8
	}
	return array, nil
}

func checkBounds(memLen, offsetBytes, numItems, itemBytes int) error {
	if offsetBytes < 0 || numItems < 0 {
		return fmt.Errorf("negative offset or count: %d, %d", offsetBytes, numItems)
	}
	need := offsetBytes + numItems*itemBytes
	if memLen < need {
		return fmt.Errorf("buffer too small: need %d bytes, have %d", need, memLen)
	}
	return nil
}
