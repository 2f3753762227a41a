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

package internal

import "golang.org/x/exp/constraints"

type Inequality int

const (
	InequalityLT Inequality = iota
	InequalityLE
	InequalityGE
	InequalityGT
)

// FindWithInequality searches the sorted slice arr within the closed index
// range [low, high] and returns:
//
//	LT: the largest index with arr[i] <  v
//	LE: the largest index with arr[i] <= v
//	GE: the smallest index with arr[i] >= v
//	GT: the smallest index with arr[i] >  v
//
// It returns -1 when no element satisfies the criterion.
func FindWithInequality[T constraints.Ordered](arr []T, low, high int, v T, crit Inequality) int {
	if len(arr) == 0 || low > high {
		return -1
	}
	lo, hi, found := low, high, -1
	switch crit {
	case InequalityLT, InequalityLE:
		// keep the rightmost index that satisfies the criterion
		for lo <= hi {
			mid := lo + (hi-lo)/2
			if arr[mid] < v || (crit == InequalityLE && arr[mid] == v) {
				found = mid
				lo = mid + 1
			} else {
				hi = mid - 1
			}
		}
	case InequalityGE, InequalityGT:
		// keep the leftmost index that satisfies the criterion
		for lo <= hi {
			mid := lo + (hi-lo)/2
			if arr[mid] > v || (crit == InequalityGE && arr[mid] == v) {
				found = mid
				hi = mid - 1
			} else {
				lo = mid + 1
			}
		}
	}
	return found
}
