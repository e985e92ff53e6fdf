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
)

var statCmd = &cobra.Command{
	Use:   "stat <path>",
	Short: "Show the indexed metadata of one virtual path",
	Args:  cobra.ExactArgs(1),
	RunE:  runStat,
}

func init() {
	rootCmd.AddCommand(statCmd)
}

func runStat(cmd *cobra.Command, args []string) error {
	env, err := openEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	node, err := env.root.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Path:     %s\n", node.Path)
	fmt.Printf("Storage:  %s (id %d)\n", node.Storage.ID(), node.Storage.NumericID())
	fmt.Printf("Internal: %s\n", node.Internal)
	fmt.Printf("File id:  %d\n", node.Record.FileID)
	fmt.Printf("Mimetype: %s\n", node.Record.Mimetype)
	fmt.Printf("Size:     %d\n", node.Size())
	fmt.Printf("Mtime:    %s\n", node.MTime().Format("2006-01-02 15:04:05"))
	fmt.Printf("Etag:     %s\n", node.Etag())
	return nil
}
