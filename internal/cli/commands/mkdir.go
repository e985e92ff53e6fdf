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

	"github.com/spf13/cobra"

	"spanfs/internal/common"
)

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Create a folder on the backend owning the path",
	Long: `Create a folder at a virtual path. The mount owning the path performs
the I/O; the index picks the folder up on the next scan.

Examples:
  spanfs mkdir /docs/incoming`,
	Args: cobra.ExactArgs(1),
	RunE: runMkdir,
}

func init() {
	rootCmd.AddCommand(mkdirCmd)
}

func runMkdir(cmd *cobra.Command, args []string) error {
	env, err := openEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	target := common.NormalizeVirtual(args[0])
	if target == "/" {
		return fmt.Errorf("mkdir %s: %w", args[0], common.ErrInvalidPath)
	}
	parent := common.NormalizeVirtual(common.ParentPath(target))
	node, err := env.root.FolderAt(parent).NewFolder(common.BaseName(target))
	if err != nil {
		return err
	}
	fmt.Printf("created %s on %s\n", node.Path, node.Storage.ID())
	return nil
}
