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
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func defaultFlags() demoFlags {
	return demoFlags{
		Slots:  64,
		Delta:  0.1,
		Keys:   "key1,key2,key3,key4,key5",
		Search: "key2",
		Hash:   "default",
	}
}

func TestRun(t *testing.T) {
	var buf bytes.Buffer
	var warnings []string
	warnf := func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	require.NoError(t, run(&buf, defaultFlags(), warnf))
	require.Empty(t, warnings)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "Search key2: 51", lines[0])

	tokens := strings.Split(lines[1], ", ")
	require.Len(t, tokens, 64)
	require.Equal(t, []string{"key1", "key2", "key3", "key4", "key5"}, tokens[50:55])
}

func TestRunWarnings(t *testing.T) {
	flags := defaultFlags()
	flags.Slots = 2
	flags.Keys = "a, b ,a,c,,"
	flags.Search = "c"

	var buf bytes.Buffer
	var warnings []string
	warnf := func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}
	require.NoError(t, run(&buf, flags, warnf))
	require.Equal(t, []string{
		"insert a: elastic: duplicate key",
		"insert c: elastic: probe budget exhausted",
	}, warnings)
	require.Contains(t, buf.String(), "Search c: -1\n")
}

func TestRunVerbose(t *testing.T) {
	flags := defaultFlags()
	flags.Verbose = true
	flags.Hash = "xxhash"

	var buf bytes.Buffer
	require.NoError(t, run(&buf, flags, func(string, ...interface{}) {}))
	out := strings.ToUpper(buf.String())
	require.Contains(t, out, "TIER")
	require.Contains(t, out, "FIRST PROBES")
	require.Contains(t, buf.String(), "key5")
}

func TestRunUnknownHash(t *testing.T) {
	flags := defaultFlags()
	flags.Hash = "md5"
	require.Error(t, run(&bytes.Buffer{}, flags, func(string, ...interface{}) {}))
}

func TestSplitKeys(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, splitKeys(" a ,, b,"))
	require.Nil(t, splitKeys(""))
}
