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
	"errors"

	log "github.com/sirupsen/logrus"

	"spanfs/internal/common"
)

// dedupKey identifies a record across aggregated result sets. Jailed
// views share the parent's numeric id, so the same physical row never
// surfaces twice.
type dedupKey struct {
	storageID int64
	path      string
}

// List returns the folder's direct children from the owning mount's
// index, plus one folder entry per mount point sitting directly below
// the folder.
func (f *Folder) List(ctx context.Context) ([]Node, error) {
	m, err := f.owning()
	if err != nil {
		return nil, err
	}
	st := m.Storage()
	internal, _ := m.InternalPath(f.path)

	seen := make(map[dedupKey]struct{})
	var nodes []Node

	children, err := st.Index().ChildrenOf(ctx, st.IndexPath(internal))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	for _, rec := range children {
		virtual, ok := m.AbsolutePath(rec.Path)
		if !ok {
			log.Debugf("[VFS] dropping unaddressable child %s of %s", rec.Path, f.path)
			continue
		}
		key := dedupKey{rec.StorageID, rec.Path}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		translated, _ := st.TranslateInternal(rec.Path)
		nodes = append(nodes, newNode(virtual, translated, st, rec))
	}

	for _, nm := range f.root.table.MountsIn(f.path) {
		point := nm.MountPoint()
		if common.NormalizeVirtual(common.ParentPath(point)) != f.path {
			continue
		}
		nst := nm.Storage()
		indexPath := nst.IndexPath(nm.Root())
		key := dedupKey{nst.NumericID(), indexPath}
		if _, dup := seen[key]; dup {
			continue
		}
		rec, err := nst.Index().RecordByPath(ctx, indexPath)
		if err != nil {
			log.Debugf("[VFS] no index row for mount point %s: %v", point, err)
			continue
		}
		seen[key] = struct{}{}
		nodes = append(nodes, newNode(point, nm.Root(), nst, *rec))
	}

	return nodes, nil
}
