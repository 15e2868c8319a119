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

// Option provides an interface to do work on Table while it is being created.
type Option interface {
	apply(t *Table)
}

type hashOption struct {
	hash func(key string) uint32
}

func (op hashOption) apply(t *Table) {
	if op.hash != nil {
		t.hash = op.hash
	}
}

// WithHash is an option to specify the hash function to use for a Table. The
// function must be pure: search retraces the probe path taken by insert only
// if hash(key) is the same on every call. A nil hash leaves the default
// (Hash) in place.
func WithHash(hash func(key string) uint32) Option {
	return hashOption{hash}
}

// Allocator specifies an interface for allocating and releasing the slots
// used by a Table. The default allocator utilizes Go's builtin make() and
// allows the GC to reclaim memory.
//
// If the allocator is manually managing memory and requires that slots be
// freed then Table.Close must be called in order to ensure FreeSlots is
// called.
type Allocator interface {
	// AllocSlots should return a slice equivalent to make([]Slot, n).
	AllocSlots(n int) []Slot

	// FreeSlots can optional release the memory associated with the supplied
	// slice that is guaranteed to have been allocated by AllocSlots.
	FreeSlots(v []Slot)
}

type defaultAllocator struct{}

func (defaultAllocator) AllocSlots(n int) []Slot {
	return make([]Slot, n)
}

func (defaultAllocator) FreeSlots(v []Slot) {
}

type allocatorOption struct {
	allocator Allocator
}

func (op allocatorOption) apply(t *Table) {
	if op.allocator != nil {
		t.allocator = op.allocator
	}
}

// WithAllocator is an option for specify the Allocator to use for a Table.
func WithAllocator(allocator Allocator) Option {
	return allocatorOption{allocator}
}
