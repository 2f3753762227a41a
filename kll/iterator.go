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

import "github.com/streamquantiles/kll/common"

// Iterator walks the retained items of a sketch together with their
// weights, level by level. Item order within the walk is unspecified.
type Iterator[T common.Item] struct {
	levels        [][]T
	level         int
	index         int
	weight        int64
	isInitialized bool
}

func newIterator[T common.Item](levels [][]T) *Iterator[T] {
	return &Iterator[T]{levels: levels}
}

func (it *Iterator[T]) Next() bool {
	if !it.isInitialized {
		it.level = 0
		it.index = -1
		it.weight = 1
		it.isInitialized = true
	}
	it.index++
	if it.index < len(it.levels[it.level]) {
		return true
	}
	// go to the next non-empty level
	for {
		it.level++
		if it.level == len(it.levels) {
			return false
		}
		it.weight *= 2
		if len(it.levels[it.level]) > 0 {
			break
		}
	}
	it.index = 0
	return true
}

// GetQuantile returns the item at the current position.
//
// Don't call this before calling Next for the first time or after getting
// false from Next.
func (it *Iterator[T]) GetQuantile() T {
	return it.levels[it.level][it.index]
}

// GetWeight returns the number of original observations the current item
// stands in for: 2^level.
func (it *Iterator[T]) GetWeight() int64 {
	return it.weight
}
