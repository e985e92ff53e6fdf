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
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"spanfs/internal/common"
	"spanfs/internal/mount"
	"spanfs/internal/storage"
)

const eventNamespace = "node"

// Folder is a handle on one virtual folder. All queries and mutations
// are request-scoped; the folder spawns no background work.
type Folder struct {
	root *Root
	path string
}

// Path returns the folder's canonical virtual path.
func (f *Folder) Path() string { return f.path }

// FullPath resolves a relative path against the folder. Traversal that
// escapes the folder and absolute re-entry are rejected with
// common.ErrNotPermitted.
func (f *Folder) FullPath(relative string) (string, error) {
	if strings.HasPrefix(relative, "/") {
		return "", fmt.Errorf("path %q re-enters the root: %w", relative, common.ErrNotPermitted)
	}
	rel := common.NormalizePath(relative)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("path %q escapes %s: %w", relative, f.path, common.ErrNotPermitted)
	}
	if rel == "" {
		return f.path, nil
	}
	if f.path == "/" {
		return "/" + rel, nil
	}
	return f.path + "/" + rel, nil
}

// RelativePath strips the folder's own path off an absolute virtual
// path. Returns "/" when absolute equals the folder path and
// common.ErrNotFound when absolute is not a descendant.
func (f *Folder) RelativePath(absolute string) (string, error) {
	absolute = common.NormalizeVirtual(absolute)
	if absolute == f.path {
		return "/", nil
	}
	if !common.IsDescendant(f.path, absolute) {
		return "", fmt.Errorf("%s is not below %s: %w", absolute, f.path, common.ErrNotFound)
	}
	if f.path == "/" {
		return absolute, nil
	}
	return absolute[len(f.path):], nil
}

func (f *Folder) owning() (*mount.Mount, error) {
	m := f.root.table.MountOf(f.path)
	if m == nil {
		return nil, fmt.Errorf("folder %s has no mount: %w", f.path, common.ErrNotFound)
	}
	return m, nil
}

func (f *Folder) requirePermission(perm int32) error {
	if !f.root.perms(perm) {
		return fmt.Errorf("folder %s: %w", f.path, common.ErrNotPermitted)
	}
	return nil
}

func newEtag() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// syntheticNode describes a freshly created entry before any index scan
// has picked it up. FileID -1 marks it as not yet indexed.
func (f *Folder) syntheticNode(m *mount.Mount, path, internal, mimetype, mimepart string) Node {
	st := m.Storage()
	now := time.Now().Unix()
	rec := storage.Record{
		Path:         st.IndexPath(internal),
		StorageID:    st.NumericID(),
		FileID:       -1,
		Name:         common.BaseName(path),
		Mimetype:     mimetype,
		Mimepart:     mimepart,
		Mtime:        now,
		StorageMtime: now,
		Permissions:  storage.PermissionAll,
		Etag:         newEtag(),
	}
	return newNode(path, internal, st, rec)
}

// NewFolder creates a subfolder at a relative path. The permission
// check runs first, then the pre event, then the I/O call; the post
// event fires only on success.
func (f *Folder) NewFolder(relative string) (*Node, error) {
	target, err := f.FullPath(relative)
	if err != nil {
		return nil, err
	}
	if err := f.requirePermission(storage.PermissionCreate); err != nil {
		return nil, err
	}
	m := f.root.table.MountOf(target)
	if m == nil {
		return nil, fmt.Errorf("create %s: %w", target, common.ErrNotFound)
	}
	internal, _ := m.InternalPath(target)
	args := map[string]any{"path": target}
	f.root.Publish(eventNamespace, "preCreate", args)
	if err := m.Storage().Exec().Mkdir(m.Storage().IndexPath(internal)); err != nil {
		return nil, err
	}
	f.root.Publish(eventNamespace, "postCreate", args)
	node := f.syntheticNode(m, target, internal, storage.FolderMimeType, storage.FolderMimePart)
	return &node, nil
}

// NewFile creates an empty file at a relative path.
func (f *Folder) NewFile(relative string) (*Node, error) {
	target, err := f.FullPath(relative)
	if err != nil {
		return nil, err
	}
	if err := f.requirePermission(storage.PermissionCreate); err != nil {
		return nil, err
	}
	m := f.root.table.MountOf(target)
	if m == nil {
		return nil, fmt.Errorf("create %s: %w", target, common.ErrNotFound)
	}
	internal, _ := m.InternalPath(target)
	args := map[string]any{"path": target}
	f.root.Publish(eventNamespace, "preCreate", args)
	if err := m.Storage().Exec().Touch(m.Storage().IndexPath(internal)); err != nil {
		return nil, err
	}
	f.root.Publish(eventNamespace, "postCreate", args)
	node := f.syntheticNode(m, target, internal, "application/octet-stream", "application")
	return &node, nil
}

// Delete removes the folder and its contents. I/O failures propagate
// unchanged and suppress the post event.
func (f *Folder) Delete() error {
	if err := f.requirePermission(storage.PermissionDelete); err != nil {
		return err
	}
	m, err := f.owning()
	if err != nil {
		return err
	}
	internal, _ := m.InternalPath(f.path)
	args := map[string]any{"path": f.path}
	f.root.Publish(eventNamespace, "preDelete", args)
	if err := m.Storage().Exec().Remove(m.Storage().IndexPath(internal)); err != nil {
		return err
	}
	f.root.Publish(eventNamespace, "postDelete", args)
	return nil
}

// Move renames the folder to another virtual path on the same mount.
// An unowned target, a cross-mount target or a missing target parent is
// NotPermitted.
func (f *Folder) Move(target string) error {
	target = common.NormalizeVirtual(target)
	if err := f.requirePermission(storage.PermissionUpdate | storage.PermissionCreate); err != nil {
		return err
	}
	sm, err := f.owning()
	if err != nil {
		return err
	}
	tm := f.root.table.MountOf(target)
	if tm == nil || tm != sm {
		return fmt.Errorf("move %s to %s: %w", f.path, target, common.ErrNotPermitted)
	}
	st := sm.Storage()
	srcInternal, _ := sm.InternalPath(f.path)
	dstInternal, _ := tm.InternalPath(target)
	if parent := common.ParentPath(dstInternal); parent != "" && !st.Exec().Exists(st.IndexPath(parent)) {
		return fmt.Errorf("move %s to %s: parent missing: %w", f.path, target, common.ErrNotPermitted)
	}
	args := map[string]any{"source": f.path, "target": target}
	f.root.Publish(eventNamespace, "preRename", args)
	if err := st.Exec().Rename(st.IndexPath(srcInternal), st.IndexPath(dstInternal)); err != nil {
		return err
	}
	f.root.Publish(eventNamespace, "postRename", args)
	f.path = target
	return nil
}

// Copy copies the folder to another virtual path on the same mount.
func (f *Folder) Copy(target string) error {
	target = common.NormalizeVirtual(target)
	if err := f.requirePermission(storage.PermissionCreate); err != nil {
		return err
	}
	sm, err := f.owning()
	if err != nil {
		return err
	}
	tm := f.root.table.MountOf(target)
	if tm == nil || tm != sm {
		return fmt.Errorf("copy %s to %s: %w", f.path, target, common.ErrNotPermitted)
	}
	st := sm.Storage()
	srcInternal, _ := sm.InternalPath(f.path)
	dstInternal, _ := tm.InternalPath(target)
	if parent := common.ParentPath(dstInternal); parent != "" && !st.Exec().Exists(st.IndexPath(parent)) {
		return fmt.Errorf("copy %s to %s: parent missing: %w", f.path, target, common.ErrNotPermitted)
	}
	args := map[string]any{"source": f.path, "target": target}
	f.root.Publish(eventNamespace, "preCopy", args)
	if err := st.Exec().Copy(st.IndexPath(srcInternal), st.IndexPath(dstInternal)); err != nil {
		return err
	}
	f.root.Publish(eventNamespace, "postCopy", args)
	return nil
}

// Exists checks a relative path against the owning backend.
func (f *Folder) Exists(relative string) bool {
	target, err := f.FullPath(relative)
	if err != nil {
		return false
	}
	m := f.root.table.MountOf(target)
	if m == nil {
		return false
	}
	internal, _ := m.InternalPath(target)
	return m.Storage().Exec().Exists(m.Storage().IndexPath(internal))
}

// Free reports the available space on the folder's backend, or
// storage.FreeSpaceUnknown.
func (f *Folder) Free() (int64, error) {
	m, err := f.owning()
	if err != nil {
		return 0, err
	}
	internal, _ := m.InternalPath(f.path)
	return m.Storage().Exec().Free(m.Storage().IndexPath(internal))
}
