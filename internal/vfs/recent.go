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

package vfs

import (
	"context"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"spanfs/internal/common"
	"spanfs/internal/mount"
	"spanfs/internal/storage"
)

// GetRecent lists nodes below the folder modified after since, newest
// first, at most limit entries. A folder's recency is derived from its
// most recently modified non-empty descendant file, so a deep write
// surfaces the folder without its own timestamp changing.
//
// Two participating mounts claiming the same numeric storage id cannot
// be attributed unambiguously and fail the whole call with
// common.ErrStorageConflict.
func (f *Folder) GetRecent(ctx context.Context, since int64, limit int) ([]Node, error) {
	byStorage := make(map[int64]*mount.Mount)
	add := func(m *mount.Mount) error {
		st := m.Storage()
		if st == nil || st.Index() == nil {
			return nil
		}
		id := st.NumericID()
		if _, dup := byStorage[id]; dup {
			return fmt.Errorf("storage id %d claimed by two mounts below %s: %w",
				id, f.path, common.ErrStorageConflict)
		}
		byStorage[id] = m
		return nil
	}
	if m := f.root.table.MountOf(f.path); m != nil {
		if err := add(m); err != nil {
			return nil, err
		}
	}
	for _, nm := range f.root.table.MountsIn(f.path) {
		if err := add(nm); err != nil {
			return nil, err
		}
	}

	var nodes []Node
	for _, m := range byStorage {
		recs, err := recentOn(ctx, m.Storage(), since)
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			virtual, ok := m.AbsolutePath(rec.Path)
			if !ok {
				log.Debugf("[VFS] dropping unaddressable recent row %s on %s", rec.Path, m.Storage().ID())
				continue
			}
			if !common.IsDescendant(f.path, virtual) {
				continue
			}
			translated, _ := m.Storage().TranslateInternal(rec.Path)
			nodes = append(nodes, newNode(virtual, translated, m.Storage(), rec))
		}
	}

	// Newest first; a folder beats a file on equal mtime, path order
	// breaks the remaining ties so output does not depend on map order.
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.Record.Mtime != b.Record.Mtime {
			return a.Record.Mtime > b.Record.Mtime
		}
		if a.IsFolder() != b.IsFolder() {
			return a.IsFolder()
		}
		return a.Path < b.Path
	})
	if limit > 0 && len(nodes) > limit {
		nodes = nodes[:limit]
	}
	return nodes, nil
}

// recentOn merges one storage's two recency queries: the bubbled
// per-folder representatives first, deduplicated by file id since the
// join may fan out, then the plain file rows.
func recentOn(ctx context.Context, st *storage.Storage, since int64) ([]storage.Record, error) {
	folders, err := st.Index().RecentFolders(ctx, since)
	if err != nil {
		return nil, err
	}
	files, err := st.Index().RecentFiles(ctx, since)
	if err != nil {
		return nil, err
	}
	merged := make([]storage.Record, 0, len(folders)+len(files))
	seen := make(map[int64]struct{}, len(folders))
	for _, rec := range folders {
		if _, dup := seen[rec.FileID]; dup {
			continue
		}
		seen[rec.FileID] = struct{}{}
		merged = append(merged, rec)
	}
	return append(merged, files...), nil
}
