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

// Package vfs lets one logical folder span several independently
// mounted storage backends: it translates between canonical virtual
// paths and per-storage internal paths, and aggregates metadata pulled
// from each backend's index into one consistent result set.
package vfs

import (
	"context"
	"fmt"

	"spanfs/internal/common"
	"spanfs/internal/events"
	"spanfs/internal/mount"
)

// PermissionCheck reports whether the requested permission bitmask is
// granted. The policy itself lives outside this package.
type PermissionCheck func(perm int32) bool

// Root fronts the mount table for folder construction and path
// resolution. Mounts are owned by the table provider; Root only reads
// them.
type Root struct {
	table *mount.Table
	pub   events.Publisher
	perms PermissionCheck
}

// NewRoot creates a Root over a mount table. pub may be nil for no
// notifications; perms may be nil to grant everything.
func NewRoot(table *mount.Table, pub events.Publisher, perms PermissionCheck) *Root {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	if perms == nil {
		perms = func(int32) bool { return true }
	}
	return &Root{table: table, pub: pub, perms: perms}
}

// Table returns the underlying mount table.
func (r *Root) Table() *mount.Table { return r.table }

// FolderAt returns a folder handle for a virtual path. The path is not
// checked for existence; Resolve does that.
func (r *Root) FolderAt(path string) *Folder {
	return &Folder{root: r, path: common.NormalizeVirtual(path)}
}

// Resolve looks up the node at a virtual path through the owning
// mount's index. Returns common.ErrNotFound if no mount owns the path
// or the index has no row for it.
func (r *Root) Resolve(ctx context.Context, path string) (*Node, error) {
	path = common.NormalizeVirtual(path)
	m := r.table.MountOf(path)
	if m == nil {
		return nil, fmt.Errorf("resolve %s: %w", path, common.ErrNotFound)
	}
	internal, _ := m.InternalPath(path)
	st := m.Storage()
	rec, err := st.Index().RecordByPath(ctx, st.IndexPath(internal))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	node := newNode(path, internal, st, *rec)
	return &node, nil
}

// Publish forwards an event to the injected publisher.
func (r *Root) Publish(namespace, name string, args map[string]any) {
	r.pub.Publish(namespace, name, args)
}
