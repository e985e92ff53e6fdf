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

var mountsCmd = &cobra.Command{
	Use:   "mounts",
	Short: "Show the configured mount table",
	Args:  cobra.NoArgs,
	RunE:  runMounts,
}

func init() {
	rootCmd.AddCommand(mountsCmd)
}

func runMounts(cmd *cobra.Command, args []string) error {
	env, err := openEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	for _, m := range env.root.Table().Mounts() {
		st := m.Storage()
		line := fmt.Sprintf("%-20s  %s (id %d)", m.MountPoint(), st.ID(), st.NumericID())
		if st.IsJailed() {
			line += fmt.Sprintf("  jail:%s", st.JailRoot())
		}
		if m.Root() != "" {
			line += fmt.Sprintf("  root:%s", m.Root())
		}
		fmt.Println(line)
	}
	return nil
}
