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

// Package mount binds virtual path prefixes to storages and resolves
// which mount owns a given virtual path.
package mount

import (
	"sort"
	"strings"

	"spanfs/internal/common"
	"spanfs/internal/storage"
)

// Mount binds a virtual path prefix to a storage plus an internal root
// offset into that storage.
type Mount struct {
	point   string // normalized virtual path
	storage *storage.Storage
	root    string // internal root offset, storage-root relative
}

// New creates a mount of st at point. root is the internal root offset;
// "" mounts the storage's own root.
func New(point string, st *storage.Storage, root string) *Mount {
	return &Mount{
		point:   common.NormalizeVirtual(point),
		storage: st,
		root:    common.NormalizePath(root),
	}
}

// MountPoint returns the normalized virtual path the mount is bound to.
func (m *Mount) MountPoint() string { return m.point }

// Storage returns the backend bound to this mount.
func (m *Mount) Storage() *storage.Storage { return m.storage }

// Root returns the mount's internal root offset.
func (m *Mount) Root() string { return m.root }

// InternalPath converts a virtual path at or below the mount point into
// the mount's addressable internal path. The second return is false when
// the virtual path does not belong to this mount.
func (m *Mount) InternalPath(virtual string) (string, bool) {
	virtual = common.NormalizeVirtual(virtual)
	if virtual == m.point {
		return m.root, true
	}
	if !common.IsDescendant(m.point, virtual) {
		return "", false
	}
	rel := strings.TrimPrefix(virtual, m.point)
	return common.JoinPath(m.root, rel), true
}

// AbsolutePath reverses an index row's internal path into the canonical
// virtual namespace: jail translation first, then the mount's own root
// offset, then the mount point. The second return is false when the row
// lies outside the addressable subtree and must be dropped.
func (m *Mount) AbsolutePath(internal string) (string, bool) {
	translated, ok := m.storage.TranslateInternal(internal)
	if !ok {
		return "", false
	}
	if m.root != "" {
		switch {
		case translated == m.root:
			translated = ""
		case strings.HasPrefix(translated, m.root+"/"):
			translated = translated[len(m.root)+1:]
		default:
			return "", false
		}
	}
	if translated == "" {
		return m.point, true
	}
	if m.point == "/" {
		return "/" + translated, true
	}
	return m.point + "/" + translated, true
}

// Table is the root mount table. Mounts are owned and enumerated by the
// caller; the table only resolves them.
type Table struct {
	mounts []*Mount
}

// NewTable creates a table over the given mounts.
func NewTable(mounts ...*Mount) *Table {
	return &Table{mounts: mounts}
}

// Add appends a mount to the table.
func (t *Table) Add(m *Mount) {
	t.mounts = append(t.mounts, m)
}

// Mounts returns the mounts in registration order.
func (t *Table) Mounts() []*Mount {
	return t.mounts
}

// MountOf returns the mount owning path: the one with the longest mount
// point that equals path or contains it. Returns nil if no mount owns
// the path.
func (t *Table) MountOf(path string) *Mount {
	path = common.NormalizeVirtual(path)
	var best *Mount
	for _, m := range t.mounts {
		if m.point != path && !common.IsDescendant(m.point, path) {
			continue
		}
		if best == nil || len(m.point) > len(best.point) {
			best = m
		}
	}
	return best
}

// MountsIn returns every mount whose point is a strict descendant of
// path, in registration order. A mount point equal to path itself is
// never included.
func (t *Table) MountsIn(path string) []*Mount {
	path = common.NormalizeVirtual(path)
	var nested []*Mount
	for _, m := range t.mounts {
		if common.IsDescendant(path, m.point) {
			nested = append(nested, m)
		}
	}
	return nested
}

// ByDepth returns a copy of mounts ordered most deeply nested first.
// Id lookups probe in this order: a requested id is most likely found
// in the most specific storage.
func ByDepth(mounts []*Mount) []*Mount {
	ordered := make([]*Mount, len(mounts))
	copy(ordered, mounts)
	sort.SliceStable(ordered, func(i, j int) bool {
		di := strings.Count(ordered[i].point, "/")
		dj := strings.Count(ordered[j].point, "/")
		if di != dj {
			return di > dj
		}
		return len(ordered[i].point) > len(ordered[j].point)
	})
	return ordered
}
