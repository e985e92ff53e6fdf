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
	"fmt"

	log "github.com/sirupsen/logrus"

	"spanfs/internal/common"
	"spanfs/internal/mount"
)

// GetByID resolves a file id to a node below the folder. Mounts are
// probed most deeply nested first, so an id indexed by several storages
// resolves through the most specific one.
func (f *Folder) GetByID(ctx context.Context, fileID int64) (*Node, error) {
	var mounts []*mount.Mount
	if m := f.root.table.MountOf(f.path); m != nil {
		mounts = append(mounts, m)
	}
	mounts = append(mounts, f.root.table.MountsIn(f.path)...)

	for _, m := range mount.ByDepth(mounts) {
		st := m.Storage()
		if st == nil || st.Index() == nil {
			continue
		}
		path, err := st.Index().PathByID(ctx, fileID)
		if errors.Is(err, common.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		virtual, ok := m.AbsolutePath(path)
		if !ok {
			log.Debugf("[VFS] id %d resolves outside mount %s, skipping", fileID, m.MountPoint())
			continue
		}
		if virtual != f.path && !common.IsDescendant(f.path, virtual) {
			continue
		}
		rec, err := st.Index().RecordByPath(ctx, path)
		if err != nil {
			log.Debugf("[VFS] id %d has path %s but no record: %v", fileID, path, err)
			continue
		}
		translated, _ := st.TranslateInternal(path)
		node := newNode(virtual, translated, st, *rec)
		return &node, nil
	}
	return nil, fmt.Errorf("file id %d below %s: %w", fileID, f.path, common.ErrNotFound)
}
