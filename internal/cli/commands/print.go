// Copyright 2025 SpanFS Authors
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

package commands

import (
	"fmt"

	"spanfs/internal/vfs"
)

func printNodes(nodes []vfs.Node) {
	for _, n := range nodes {
		printNode(n)
	}
}

func printNode(n vfs.Node) {
	kind := "file"
	if n.IsFolder() {
		kind = "dir"
	}
	fmt.Printf("%-4s  %10d  %s  %s\n",
		kind, n.Size(), n.MTime().Format("2006-01-02 15:04:05"), n.Path)
}
