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

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/elastic"
	"github.com/olekukonko/tablewriter"
)

type demoFlags struct {
	_       struct{} `help:"Insert keys into an elastic table and print its contents"`
	Slots   int      `flag:"-n,--slots" help:"Number of slots in the table" default:"64"`
	Delta   float64  `flag:"-d,--delta" help:"Load factor parameter (currently unused)" default:"0.1"`
	Keys    string   `flag:"-k,--keys" help:"Comma separated list of keys to insert" default:"key1,key2,key3,key4,key5"`
	Search  string   `flag:"-s,--search" help:"Key to search for after inserting" default:"key2"`
	Hash    string   `flag:"--hash" help:"Hash function: default or xxhash" default:"default"`
	Verbose bool     `flag:"-v,--verbose" help:"Print the tiers and the placement of every key" default:"false"`
}

type placement struct {
	key  string
	slot int
	err  error
}

// run builds the table described by flags and writes the results to w.
// Insertion failures are reported through warnf and do not stop the run.
func run(w io.Writer, flags demoFlags, warnf func(format string, args ...interface{})) error {
	var options []elastic.Option
	switch flags.Hash {
	case "", "default":
	case "xxhash":
		options = append(options, elastic.WithHash(elastic.XXHash))
	default:
		return fmt.Errorf("unknown hash function %q", flags.Hash)
	}

	m := elastic.New(flags.Slots, flags.Delta, options...)
	defer m.Close()

	var placements []placement
	for _, key := range splitKeys(flags.Keys) {
		slot, err := m.TryInsert(key)
		if err != nil {
			warnf("insert %s: %s", key, err)
		}
		placements = append(placements, placement{key: key, slot: slot, err: err})
	}

	if flags.Verbose {
		writeTiers(w, m)
		writePlacements(w, m, placements)
	}

	if flags.Search != "" {
		fmt.Fprintf(w, "Search %s: %d\n", flags.Search, m.Search(flags.Search))
	}
	fmt.Fprintln(w, m)
	return nil
}

func splitKeys(s string) []string {
	var keys []string
	for _, key := range strings.Split(s, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

func writeTiers(w io.Writer, m *elastic.Table) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"tier", "size"})
	for i, size := range m.Tiers() {
		table.Append([]string{strconv.Itoa(i), strconv.Itoa(size)})
	}
	table.Render()
}

func writePlacements(w io.Writer, m *elastic.Table, placements []placement) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"key", "slot", "first probes"})
	for _, p := range placements {
		slot := strconv.Itoa(p.slot)
		if p.err != nil {
			slot = p.err.Error()
		}
		table.Append([]string{p.key, slot, fmt.Sprint(m.Probes(p.key, 0))})
	}
	table.Render()
}
