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

	"spanfs/internal/vfs"
)

var (
	searchFolder   string
	searchMime     string
	searchTag      string
	searchTagOwner string
)

var searchCmd = &cobra.Command{
	Use:   "search [pattern]",
	Short: "Search nodes below a virtual folder across all its mounts",
	Long: `Search aggregates matches from the owning mount and every mount nested
below the folder. Exactly one query form applies per invocation: a name
substring pattern, --mime, or --tag.

Examples:
  spanfs search report
  spanfs search --path /docs report
  spanfs search --mime image/png
  spanfs search --mime image
  spanfs search --tag starred --tag-owner alice`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchFolder, "path", "/", "virtual folder to search below")
	searchCmd.Flags().StringVar(&searchMime, "mime", "", "match a mimetype, or every subtype of a bare part")
	searchCmd.Flags().StringVar(&searchTag, "tag", "", "match a tag")
	searchCmd.Flags().StringVar(&searchTagOwner, "tag-owner", "", "owner of the tag (with --tag)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	env, err := openEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	folder := env.root.FolderAt(searchFolder)
	ctx := cmd.Context()

	var nodes []vfs.Node
	switch {
	case searchMime != "":
		nodes, err = folder.SearchByMime(ctx, searchMime)
	case searchTag != "":
		nodes, err = folder.SearchByTag(ctx, searchTag, searchTagOwner)
	case len(args) == 1:
		nodes, err = folder.Search(ctx, args[0])
	default:
		return fmt.Errorf("a pattern, --mime or --tag is required")
	}
	if err != nil {
		return err
	}

	printNodes(nodes)
	fmt.Printf("%d results\n", len(nodes))
	return nil
}
