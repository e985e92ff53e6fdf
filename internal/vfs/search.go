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
	"sync"

	log "github.com/sirupsen/logrus"

	"spanfs/internal/common"
	"spanfs/internal/mount"
	"spanfs/internal/storage"
)

// Search returns every node below the folder whose name contains
// pattern, aggregated across the owning mount and all nested mounts.
func (f *Folder) Search(ctx context.Context, pattern string) ([]Node, error) {
	return f.search(ctx, storage.Query{Kind: storage.QuerySubstring, Pattern: pattern})
}

// SearchByMime returns every node below the folder matching mime. A
// bare part such as "image" matches every subtype.
func (f *Folder) SearchByMime(ctx context.Context, mime string) ([]Node, error) {
	return f.search(ctx, storage.Query{Kind: storage.QueryMime, Mime: mime})
}

// SearchByTag returns every node below the folder tagged with tag by
// owner.
func (f *Folder) SearchByTag(ctx context.Context, tag, owner string) ([]Node, error) {
	return f.search(ctx, storage.Query{Kind: storage.QueryTag, Tag: tag, TagOwner: owner})
}

// search fans the query out over the owning mount and every nested
// mount. The per-mount queries are independent reads, so they run
// concurrently; indexed result slots restore mount-iteration order.
func (f *Folder) search(ctx context.Context, q storage.Query) ([]Node, error) {
	var mounts []*mount.Mount
	if m := f.root.table.MountOf(f.path); m != nil {
		mounts = append(mounts, m)
	}
	mounts = append(mounts, f.root.table.MountsIn(f.path)...)

	results := make([][]Node, len(mounts))
	errs := make([]error, len(mounts))
	var wg sync.WaitGroup
	for i, m := range mounts {
		wg.Add(1)
		go func(i int, m *mount.Mount) {
			defer wg.Done()
			results[i], errs[i] = f.searchMount(ctx, m, q)
		}(i, m)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	seen := make(map[dedupKey]struct{})
	var nodes []Node
	for _, batch := range results {
		for _, n := range batch {
			key := dedupKey{n.Record.StorageID, n.Record.Path}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

// searchMount runs one query against one mount's index and rewrites the
// matches into the virtual namespace. Rows that fail jail translation
// or fall outside the folder's subtree are dropped.
func (f *Folder) searchMount(ctx context.Context, m *mount.Mount, q storage.Query) ([]Node, error) {
	st := m.Storage()
	recs, err := st.Index().Search(ctx, q)
	if err != nil {
		return nil, err
	}
	var nodes []Node
	for _, rec := range recs {
		virtual, ok := m.AbsolutePath(rec.Path)
		if !ok {
			log.Debugf("[VFS] dropping unaddressable match %s on %s", rec.Path, st.ID())
			continue
		}
		if !common.IsDescendant(f.path, virtual) {
			continue
		}
		translated, _ := st.TranslateInternal(rec.Path)
		nodes = append(nodes, newNode(virtual, translated, st, rec))
	}
	return nodes, nil
}
