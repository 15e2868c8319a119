// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package elastic

import "github.com/cespare/xxhash/v2"

// Hash returns the default hash of key. The hash is computed over the code
// points of key as
//
//	h = h*31 + r (mod 2^32)
//
// and the result is the absolute value of h interpreted as a signed 32-bit
// integer, so Hash is always in [0, 2^31].
func Hash(key string) uint32 {
	var h uint32
	for _, r := range key {
		h = h*31 + uint32(r)
	}
	if s := int32(h); s < 0 {
		// -MinInt32 does not fit in an int32, so negate in 64 bits.
		return uint32(-int64(s))
	}
	return h
}

// XXHash returns the low 32 bits of the xxHash64 digest of key. It mixes far
// better than Hash and can be selected with WithHash(XXHash).
func XXHash(key string) uint32 {
	return uint32(xxhash.Sum64String(key))
}
