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

// package elastic is a fixed-capacity string table using a tiered
// open-addressing scheme that approximates elastic hashing as described in
// https://arxiv.org/abs/2501.02305.
//
// # Elastic Hashing
//
// Elastic hashing partitions a table of N slots into a sequence of
// progressively smaller sub-arrays (tiers) and tries each tier in turn when
// inserting a key, with the goal of keeping the worst-case probe count low as
// the table fills. A key is placed in the first empty slot found; a lookup
// retraces exactly the same sequence of probes.
//
// # Implementation
//
// The tier partition is computed once at construction: the first tier is
// N/2 slots, each subsequent tier is half of what remains (never less than
// 1), and there are at most ceil(log2(N)) tiers:
//
//	N=64: [32 16 8 4 2 1]
//	N=5:  [2 1 1]
//	N=1:  [1]
//
// Tiers are conceptual. They do not divide the index space of the table;
// only the number of tiers is consumed by probing. For tier i, a key with
// hash h visits the probeLimit slots
//
//	(h + i + j) mod N    for j in [0, probeLimit)
//
// which is a contiguous run of slots wrapping at N. Every tier receives the
// same probe budget regardless of its size, so the tier sizes themselves are
// informational (see Tiers). The load factor parameter delta is accepted and
// stored but not consulted.
//
// Insertion fails when every probe of every tier hits an occupied slot. This
// is a heuristic "full" signal: other slots outside of the key's probe runs
// may still be empty. There is no deletion and no resizing.
//
// Duplicate insertions are rejected with an O(1) check against a membership
// set that is kept alongside the slots. The set holds keys only and is never
// used to locate a key.
package elastic

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

const (
	debug = false

	// probeLimit is the number of slots probed per tier.
	probeLimit = 10

	// NotFound is returned by Search when a key is not present in the table.
	NotFound = -1

	// emptySlot is the rendering of an empty slot used by String.
	emptySlot = "-"
)

var (
	// ErrDuplicateKey is returned by TryInsert when the key has already been
	// inserted.
	ErrDuplicateKey = errors.New("elastic: duplicate key")
	// ErrTableExhausted is returned by TryInsert when no empty slot was found
	// along any of the key's probe sequences.
	ErrTableExhausted = errors.New("elastic: probe budget exhausted")
)

// Slot holds a key.
type Slot struct {
	key  string
	full bool
}

// Table is a fixed-capacity table of string keys with Insert, Search and
// String operations. By default a Table uses Hash as its hash function,
// though a different hash function can be specified using the WithHash
// option.
//
// A Table is NOT goroutine-safe. Insert mutates both the slots and the
// membership set, so callers sharing a Table must serialize Insert and Search
// with a single lock.
type Table struct {
	// The hash function applied to each key.
	hash func(key string) uint32
	// The allocator to use for the slots slice.
	allocator Allocator
	// slots is capacity in length.
	slots []Slot
	// tiers holds the size of each tier. Only len(tiers) is used by probing.
	tiers []int
	// members is the set of inserted keys, used to reject duplicates.
	members map[string]struct{}
	// delta is the load factor parameter. It is stored but unused.
	delta float64
	// The number of filled slots (i.e. the number of keys in the table).
	used int
}

// New constructs a new Table with n slots and load factor parameter delta.
// If n is less than or equal to 0 the table is degenerate: Insert always
// fails and Search always returns NotFound. Delta is retained for Delta but
// has no effect on the behavior of the table.
func New(n int, delta float64, options ...Option) *Table {
	if n < 0 {
		n = 0
	}
	t := &Table{
		hash:      Hash,
		allocator: defaultAllocator{},
		delta:     delta,
	}

	for _, op := range options {
		op.apply(t)
	}

	if n > 0 {
		t.slots = t.allocator.AllocSlots(n)
		t.tiers = makeTiers(n)
		t.members = make(map[string]struct{}, n)
	}

	t.checkInvariants()
	return t
}

// makeTiers partitions n slots into tiers of decreasing size. Each tier is
// half of the remaining slots (but at least 1), and there are at most
// ceil(log2(n)) tiers, or 1 tier when n is 1.
func makeTiers(n int) []int {
	if n <= 0 {
		return nil
	}
	// bits.Len(n-1) is ceil(log2(n)) for n >= 1.
	maxTiers := bits.Len(uint(n - 1))
	if maxTiers == 0 {
		maxTiers = 1
	}

	tiers := make([]int, 0, maxTiers)
	for remaining := n; remaining > 0 && len(tiers) < maxTiers; {
		size := max(1, remaining/2)
		tiers = append(tiers, size)
		remaining -= size
	}
	return tiers
}

// Close closes the table, releasing its slots back to the configured
// allocator. It is unnecessary to close a table using the default allocator.
// A closed table behaves like a table constructed with zero slots. Close is
// idempotent.
func (t *Table) Close() {
	if t.slots != nil {
		t.allocator.FreeSlots(t.slots)
	}
	t.slots = nil
	t.tiers = nil
	t.members = nil
	t.used = 0
}

// Insert inserts key into the table, returning true if the key was placed
// in a slot. Insert returns false if the key is already present or if no
// empty slot was found along its probe sequences.
func (t *Table) Insert(key string) bool {
	_, err := t.TryInsert(key)
	return err == nil
}

// TryInsert inserts key into the table and returns the index of the slot it
// was placed in. If key has already been inserted ErrDuplicateKey is
// returned. If every probe of every tier found an occupied slot
// ErrTableExhausted is returned. On error the table is not modified and the
// returned slot is NotFound.
func (t *Table) TryInsert(key string) (slot int, err error) {
	if _, ok := t.members[key]; ok {
		if debug {
			fmt.Printf("insert(%s): duplicate\n", key)
		}
		return NotFound, ErrDuplicateKey
	}
	if len(t.slots) == 0 {
		return NotFound, ErrTableExhausted
	}

	h := t.hash(key)
	for tier := range t.tiers {
		seq := makeProbeSeq(h, tier, len(t.slots))
		if debug {
			fmt.Printf("insert(%s): %s\n", key, seq)
		}

		for ; !seq.done(); seq = seq.next() {
			s := &t.slots[seq.offset]
			if s.full {
				if debug {
					fmt.Printf("insert(skipping): tier=%d offset=%d key=%s\n", tier, seq.offset, s.key)
				}
				continue
			}
			s.key = key
			s.full = true
			t.members[key] = struct{}{}
			t.used++
			if debug {
				fmt.Printf("insert(inserting): tier=%d index=%d used=%d\n", tier, seq.offset, t.used)
			}
			t.checkInvariants()
			return int(seq.offset), nil
		}
	}

	if debug {
		fmt.Printf("insert(%s): exhausted after %d tiers\n", key, len(t.tiers))
	}
	return NotFound, ErrTableExhausted
}

// Search returns the index of the slot holding key, or NotFound if key is
// not present along any of its probe sequences.
func (t *Table) Search(key string) int {
	if len(t.slots) == 0 {
		return NotFound
	}

	h := t.hash(key)
	for tier := range t.tiers {
		seq := makeProbeSeq(h, tier, len(t.slots))
		if debug {
			fmt.Printf("search(%s): %s\n", key, seq)
		}

		for ; !seq.done(); seq = seq.next() {
			s := &t.slots[seq.offset]
			if s.full && s.key == key {
				return int(seq.offset)
			}
		}
	}

	if debug {
		fmt.Printf("search(%s): not-found\n", key)
	}
	return NotFound
}

// Get retrieves the index of the slot holding key, returning ok=false if the
// key is not present.
func (t *Table) Get(key string) (slot int, ok bool) {
	slot = t.Search(key)
	return slot, slot != NotFound
}

// Probes returns the slot indexes probed for key in the specified tier, in
// probe order. It returns nil if tier is out of range.
func (t *Table) Probes(key string, tier int) []int {
	if tier < 0 || tier >= len(t.tiers) || len(t.slots) == 0 {
		return nil
	}
	probes := make([]int, 0, probeLimit)
	for seq := makeProbeSeq(t.hash(key), tier, len(t.slots)); !seq.done(); seq = seq.next() {
		probes = append(probes, int(seq.offset))
	}
	return probes
}

// All calls yield sequentially for each occupied slot in index order,
// passing the slot index and the key it holds. If yield returns false, All
// stops the iteration.
func (t *Table) All(yield func(slot int, key string) bool) {
	for i := range t.slots {
		s := &t.slots[i]
		if !s.full {
			continue
		}
		if !yield(i, s.key) {
			return
		}
	}
}

// String returns the contents of every slot in index order, separated by
// ", ". Empty slots are rendered as "-".
func (t *Table) String() string {
	var buf strings.Builder
	for i := range t.slots {
		if i > 0 {
			buf.WriteString(", ")
		}
		if s := &t.slots[i]; s.full {
			buf.WriteString(s.key)
		} else {
			buf.WriteString(emptySlot)
		}
	}
	return buf.String()
}

// Len returns the number of keys in the table.
func (t *Table) Len() int {
	return t.used
}

// Cap returns the number of slots in the table.
func (t *Table) Cap() int {
	return len(t.slots)
}

// Delta returns the load factor parameter the table was constructed with.
func (t *Table) Delta() float64 {
	return t.delta
}

// Tiers returns the size of each tier.
func (t *Table) Tiers() []int {
	return append([]int(nil), t.tiers...)
}

func (t *Table) checkInvariants() {
	if invariants {
		var total int
		for _, size := range t.tiers {
			if size < 1 {
				panic(fmt.Sprintf("invariant failed: tier size %d < 1\n%s", size, t.debugString()))
			}
			total += size
		}
		if total > len(t.slots) {
			panic(fmt.Sprintf("invariant failed: tiers hold %d slots, but capacity is %d\n%s",
				total, len(t.slots), t.debugString()))
		}

		// For every full slot, verify the key is a member and that we can
		// retrieve the slot using Search.
		var used int
		for i := range t.slots {
			s := &t.slots[i]
			if !s.full {
				continue
			}
			if _, ok := t.members[s.key]; !ok {
				panic(fmt.Sprintf("invariant failed: slot(%d): %s is not a member\n%s",
					i, s.key, t.debugString()))
			}
			if j := t.Search(s.key); j != i {
				panic(fmt.Sprintf("invariant failed: slot(%d): %s found at %d\n%s",
					i, s.key, j, t.debugString()))
			}
			used++
		}

		if used != t.used {
			panic(fmt.Sprintf("invariant failed: found %d used slots, but used count is %d\n%s",
				used, t.used, t.debugString()))
		}
		if len(t.members) != t.used {
			panic(fmt.Sprintf("invariant failed: found %d members, but used count is %d\n%s",
				len(t.members), t.used, t.debugString()))
		}
	}
}

func (t *Table) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "capacity=%d  used=%d  tiers=%v\n", len(t.slots), t.used, t.tiers)
	for i := range t.slots {
		s := &t.slots[i]
		if !s.full {
			fmt.Fprintf(&buf, "  %4d: empty\n", i)
			continue
		}
		fmt.Fprintf(&buf, "  %4d: %s [h=%08x]\n", i, s.key, t.hash(s.key))
	}
	return buf.String()
}

// probeSeq maintains the state for a probe sequence. The sequence is a
// linear run of probeLimit slots starting at the key's hash offset by the
// tier:
//
//	p(j) := (hash + tier + j) mod n
//
// The sequence is a pure function of (hash, tier, n) so that Search visits
// exactly the slots Insert visited. The arithmetic is carried out in 64 bits
// so that hash+tier+j cannot overflow.
type probeSeq struct {
	n      uint64
	seed   uint64
	offset uint64
	index  int
}

func makeProbeSeq(hash uint32, tier int, n int) probeSeq {
	seed := uint64(hash) + uint64(tier)
	return probeSeq{
		n:      uint64(n),
		seed:   seed,
		offset: seed % uint64(n),
		index:  0,
	}
}

func (s probeSeq) next() probeSeq {
	s.index++
	s.offset = (s.seed + uint64(s.index)) % s.n
	return s
}

func (s probeSeq) done() bool {
	return s.index >= probeLimit
}

func (s probeSeq) String() string {
	return fmt.Sprintf("n=%d seed=%d offset=%d index=%d", s.n, s.seed, s.offset, s.index)
}
