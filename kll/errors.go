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

import "errors"

var (
	// ErrInvalidK is returned when a sketch is constructed with a k outside
	// the supported bounds.
	ErrInvalidK = errors.New("invalid k")

	// ErrEmptySketch is returned by queries that are undefined for an empty
	// sketch (min, max, rank, quantile).
	ErrEmptySketch = errors.New("operation is undefined for an empty sketch")

	// ErrInvalidRank is returned when a normalized rank argument lies
	// outside [0.0, 1.0] or a batch query is given a malformed point count.
	ErrInvalidRank = errors.New("invalid normalized rank")

	// ErrDeserialize is returned when a byte slice does not decode to a
	// valid sketch: truncated input, an unsupported serialization version,
	// or internally inconsistent level counts.
	ErrDeserialize = errors.New("malformed sketch encoding")
)
