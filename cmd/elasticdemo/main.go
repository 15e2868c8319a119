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

// Command elasticdemo builds an elastic table, inserts a list of keys into
// it and prints where one of them landed along with the table contents.
package main

import (
	"fmt"
	"os"
	"strings"

	color "github.com/logrusorgru/aurora/v3"
	"github.com/segmentio/cli"
)

func main() {
	cli.Exec(cli.Command(func(flags demoFlags) {
		if err := run(os.Stdout, flags, perrorf); err != nil {
			perrorf("error: %s", err)
			os.Exit(1)
		}
	}))
}

func perrorf(format string, args ...interface{}) {
	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}
	_, _ = fmt.Fprintf(os.Stderr, color.Red(format).String(), args...)
}
