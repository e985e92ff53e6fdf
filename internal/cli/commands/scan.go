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

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"spanfs/internal/index"
)

var scanExcludes []string

var scanCmd = &cobra.Command{
	Use:   "scan [storage-id]",
	Short: "Rebuild metadata indexes from the storage backends",
	Long: `Walk each direct storage's backing directory and refresh its index:
new and changed nodes are upserted, vanished nodes are pruned. Jailed
storages share their parent's index and are never scanned directly.

Examples:
  spanfs scan
  spanfs scan local --exclude '*.tmp' --exclude '.cache/'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringSliceVar(&scanExcludes, "exclude", nil, "gitignore-style patterns to skip")
}

func runScan(cmd *cobra.Command, args []string) error {
	env, err := openEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	found := false
	for _, sc := range env.cfg.Storages {
		if sc.IsJail() {
			continue
		}
		if len(args) > 0 && sc.ID != args[0] {
			continue
		}
		found = true

		scanner := index.NewScanner(env.indexes[sc.ID], osfs.New(sc.Dir), sc.NumericID)
		if len(scanExcludes) > 0 {
			scanner.SetIgnoreLines(scanExcludes...)
		}
		scanner.SetLockFile(sc.Index + ".lock")

		stats, err := scanner.Scan(cmd.Context())
		if err != nil {
			return fmt.Errorf("scan %q: %w", sc.ID, err)
		}
		fmt.Printf("%s: %d indexed, %d pruned\n", sc.ID, stats.Indexed, stats.Pruned)
	}
	if !found && len(args) > 0 {
		return fmt.Errorf("no direct storage matches %q", args[0])
	}
	return nil
}
