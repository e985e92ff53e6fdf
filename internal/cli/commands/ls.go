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
	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List the children of a virtual folder",
	Long: `List a folder's indexed children. Mount points sitting directly below
the folder appear as folder entries backed by their own storage.

Examples:
  spanfs ls
  spanfs ls /docs`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLs,
}

func init() {
	rootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	path := "/"
	if len(args) > 0 {
		path = args[0]
	}

	env, err := openEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	nodes, err := env.root.FolderAt(path).List(cmd.Context())
	if err != nil {
		return err
	}
	printNodes(nodes)
	return nil
}
