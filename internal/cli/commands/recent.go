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
	"time"

	"github.com/spf13/cobra"
)

var (
	recentFolder string
	recentWithin time.Duration
	recentLimit  int
)

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently modified nodes below a virtual folder",
	Long: `List nodes below a folder ordered by modification time, newest first.
Folders surface through their most recently modified descendant file,
so activity deep in a tree bubbles up to the folder entry.

Examples:
  spanfs recent
  spanfs recent --path /docs --limit 10
  spanfs recent --within 24h`,
	Args: cobra.NoArgs,
	RunE: runRecent,
}

func init() {
	rootCmd.AddCommand(recentCmd)
	recentCmd.Flags().StringVar(&recentFolder, "path", "/", "virtual folder to list below")
	recentCmd.Flags().DurationVar(&recentWithin, "within", 0, "only activity within this window (0 = everything)")
	recentCmd.Flags().IntVar(&recentLimit, "limit", 25, "maximum number of entries")
}

func runRecent(cmd *cobra.Command, args []string) error {
	env, err := openEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	var since int64
	if recentWithin > 0 {
		since = time.Now().Add(-recentWithin).Unix()
	}

	nodes, err := env.root.FolderAt(recentFolder).GetRecent(cmd.Context(), since, recentLimit)
	if err != nil {
		return err
	}
	printNodes(nodes)
	return nil
}
