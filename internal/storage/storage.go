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

// Package storage models a single backend: its metadata index handle,
// its I/O executor, and an optional jail wrapper that exposes only a
// subtree of a parent storage.
package storage

import (
	"context"
	"strings"

	"spanfs/internal/common"
)

// Folder records are keyed by this mimetype marker; everything else is
// a file.
const (
	FolderMimeType = "httpd/unix-directory"
	FolderMimePart = "httpd"
)

// Permission bits carried by index rows and checked before mutations.
const (
	PermissionRead   int32 = 1
	PermissionUpdate int32 = 2
	PermissionCreate int32 = 4
	PermissionDelete int32 = 8
	PermissionShare  int32 = 16
	PermissionAll    int32 = 31
)

// Record is one row returned by a per-storage metadata index query.
// Path is internal: relative to the storage's own root, no leading slash.
// Timestamps are unix seconds.
type Record struct {
	Path         string
	StorageID    int64
	FileID       int64
	Name         string
	Mimetype     string
	Mimepart     string
	Size         int64
	Mtime        int64
	StorageMtime int64
	Permissions  int32
	Etag         string
	ParentID     int64
}

// QueryKind selects the search family variant.
type QueryKind int

const (
	// QuerySubstring matches records whose name contains a substring.
	QuerySubstring QueryKind = iota
	// QueryMime matches an exact mimetype, or every subtype of a bare part
	// such as "image".
	QueryMime
	// QueryTag matches records tagged with (tag, owner).
	QueryTag
)

// Query carries the arguments of one search-family invocation.
type Query struct {
	Kind     QueryKind
	Pattern  string // QuerySubstring
	Mime     string // QueryMime
	Tag      string // QueryTag
	TagOwner string // QueryTag
}

// MetadataIndex is the per-storage metadata catalog consumed by the
// cross-mount aggregation layer. Implementations are read-mostly; rows
// may be stale, callers treat anomalies as advisory.
type MetadataIndex interface {
	// Search runs one query of the search family.
	Search(ctx context.Context, q Query) ([]Record, error)
	// PathByID resolves a file id to its internal path, or
	// common.ErrNotFound if the index has no such id.
	PathByID(ctx context.Context, fileID int64) (string, error)
	// RecordByPath returns the record at an internal path, or
	// common.ErrNotFound.
	RecordByPath(ctx context.Context, path string) (*Record, error)
	// ChildrenOf lists the direct children of an internal folder path.
	ChildrenOf(ctx context.Context, parent string) ([]Record, error)
	// RecentFiles returns records with storage_mtime > since, excluding
	// zero-size folder rows, ordered by mtime descending.
	RecentFiles(ctx context.Context, since int64) ([]Record, error)
	// RecentFolders returns one representative record per folder with
	// recent activity: the folder's identity joined with the timestamps
	// of its most recently modified non-empty child.
	RecentFolders(ctx context.Context, since int64) ([]Record, error)
}

// Storage is one backend. A jailed storage shares its parent's index,
// numeric id and executor but only addresses the subtree below the
// jail root.
type Storage struct {
	id        string
	numericID int64
	index     MetadataIndex
	exec      IOExecutor
	jail      *jail
}

// jail is the tagged part of the storage variant: nil means direct.
type jail struct {
	parent *Storage
	root   string // internal root offset into the parent's namespace
}

// New creates a direct storage.
func New(id string, numericID int64, index MetadataIndex, exec IOExecutor) *Storage {
	return &Storage{id: id, numericID: numericID, index: index, exec: exec}
}

// NewJail creates a jailed view of parent rooted at root. The jail
// shares the parent's index and numeric id: index rows keep parent
// internal paths and are translated (or dropped) at addressing time.
func NewJail(id string, parent *Storage, root string) *Storage {
	return &Storage{
		id:        id,
		numericID: parent.numericID,
		index:     parent.index,
		exec:      parent.exec,
		jail:      &jail{parent: parent, root: common.NormalizePath(root)},
	}
}

// ID returns the storage's string identifier.
func (s *Storage) ID() string { return s.id }

// NumericID returns the numeric id carried by this storage's index rows.
func (s *Storage) NumericID() int64 { return s.numericID }

// Index returns the storage's metadata index handle.
func (s *Storage) Index() MetadataIndex { return s.index }

// Exec returns the storage's I/O executor.
func (s *Storage) Exec() IOExecutor { return s.exec }

// IsJailed reports whether this storage is a jailed view.
func (s *Storage) IsJailed() bool { return s.jail != nil }

// JailRoot resolves the accumulated jail root in the base storage's
// namespace. Jails nest, so the walk accumulates offsets up the parent
// chain; a direct storage returns "".
func (s *Storage) JailRoot() string {
	root := ""
	for cur := s; cur.jail != nil; cur = cur.jail.parent {
		if root == "" {
			root = cur.jail.root
		} else {
			root = common.JoinPath(cur.jail.root, root)
		}
	}
	return root
}

// IndexPath maps an addressable internal path into the base storage's
// namespace: jailed storages prefix the jail root. The shared index and
// the shared I/O executor both address this namespace.
func (s *Storage) IndexPath(internal string) string {
	return common.JoinPath(s.JailRoot(), internal)
}

// TranslateInternal maps an index row's internal path into this
// storage's addressable namespace. For a jailed storage, rows outside
// the jail root are not addressable and must be dropped by the caller.
func (s *Storage) TranslateInternal(internal string) (string, bool) {
	jailRoot := s.JailRoot()
	if jailRoot == "" {
		return internal, true
	}
	if internal == jailRoot {
		return "", true
	}
	if strings.HasPrefix(internal, jailRoot+"/") {
		return internal[len(jailRoot)+1:], true
	}
	return "", false
}
