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

package elastic_test

import (
	"fmt"

	"github.com/cockroachdb/elastic"
)

func Example() {
	m := elastic.New(64, 0.1)
	for _, key := range []string{"key1", "key2", "key3", "key4", "key5"} {
		m.Insert(key)
	}

	fmt.Println("Search key2:", m.Search("key2"))
	fmt.Println(m)
	// Output:
	// Search key2: 51
	// -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, -, key1, key2, key3, key4, key5, -, -, -, -, -, -, -, -, -
}

func ExampleTable_TryInsert() {
	m := elastic.New(8, 0.1)
	slot, err := m.TryInsert("a")
	fmt.Println(slot, err)
	_, err = m.TryInsert("a")
	fmt.Println(err)
	// Output:
	// 1 <nil>
	// elastic: duplicate key
}
