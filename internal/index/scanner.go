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

package index

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	ignore "github.com/sabhiram/go-gitignore"
	log "github.com/sirupsen/logrus"

	"spanfs/internal/common"
	"spanfs/internal/storage"
)

// ScanStats summarizes one scan run.
type ScanStats struct {
	Indexed int // rows inserted or refreshed
	Pruned  int // rows removed because the backend no longer has them
}

// Scanner walks a storage backend and refreshes its index. One scan
// runs at a time per index file; concurrent runs are rejected through
// the optional lock file.
type Scanner struct {
	index     *Index
	fs        billy.Filesystem
	storageID int64
	matcher   *ignore.GitIgnore
	lock      *flock.Flock
}

// NewScanner creates a scanner feeding ix from fs. storageID is stamped
// on every produced row.
func NewScanner(ix *Index, fs billy.Filesystem, storageID int64) *Scanner {
	return &Scanner{index: ix, fs: fs, storageID: storageID}
}

// SetIgnoreLines installs gitignore-style exclude patterns; matching
// paths are skipped together with their subtrees.
func (s *Scanner) SetIgnoreLines(lines ...string) {
	s.matcher = ignore.CompileIgnoreLines(lines...)
}

// SetLockFile guards the scan with an advisory file lock.
func (s *Scanner) SetLockFile(path string) {
	s.lock = flock.New(path)
}

// Scan walks the backend and refreshes the index: every visited node is
// upserted, then rows whose path was not visited are pruned.
func (s *Scanner) Scan(ctx context.Context) (*ScanStats, error) {
	if s.lock != nil {
		locked, err := s.lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire scan lock: %w", err)
		}
		if !locked {
			return nil, fmt.Errorf("scan already running for %s", s.index.Path())
		}
		defer s.lock.Unlock()
	}

	stats := &ScanStats{}
	seen := make(map[string]struct{})

	rootInfo, err := s.fs.Stat(".")
	if err != nil {
		return nil, fmt.Errorf("failed to stat storage root: %w", err)
	}
	rootID, err := s.putEntry(ctx, "", rootInfo, -1, stats, seen)
	if err != nil {
		return nil, err
	}
	if err := s.walk(ctx, "", rootID, stats, seen); err != nil {
		return nil, err
	}

	if err := s.prune(ctx, seen, stats); err != nil {
		return nil, err
	}

	log.Debugf("[Scanner] storage %d: %d indexed, %d pruned", s.storageID, stats.Indexed, stats.Pruned)
	return stats, nil
}

func (s *Scanner) walk(ctx context.Context, dir string, parentID int64, stats *ScanStats, seen map[string]struct{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := s.fs.ReadDir(dirOrDot(dir))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}
	for _, entry := range entries {
		rel := common.JoinPath(dir, entry.Name())
		if s.matcher != nil && s.matcher.MatchesPath(rel) {
			log.Debugf("[Scanner] skipping excluded path %s", rel)
			continue
		}
		id, err := s.putEntry(ctx, rel, entry, parentID, stats, seen)
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if err := s.walk(ctx, rel, id, stats, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Scanner) putEntry(ctx context.Context, rel string, info os.FileInfo, parentID int64, stats *ScanStats, seen map[string]struct{}) (int64, error) {
	mtime := info.ModTime().Unix()
	size := info.Size()
	if info.IsDir() {
		size = 0
	}

	// An unchanged node keeps its etag so consumers can skip it.
	etag := ""
	if prev, err := s.index.RecordByPath(ctx, rel); err == nil {
		if prev.Mtime == mtime && prev.Size == size {
			etag = prev.Etag
		}
	} else if !errors.Is(err, common.ErrNotFound) {
		return 0, err
	}
	if etag == "" {
		etag = strings.ReplaceAll(uuid.NewString(), "-", "")
	}

	mimetype, mimepart := detectMime(info)
	rec := storage.Record{
		Path:         rel,
		StorageID:    s.storageID,
		Name:         common.BaseName(rel),
		Mimetype:     mimetype,
		Mimepart:     mimepart,
		Size:         size,
		Mtime:        mtime,
		StorageMtime: mtime,
		Permissions:  storage.PermissionAll,
		Etag:         etag,
		ParentID:     parentID,
	}
	id, err := s.index.PutRecord(ctx, &rec)
	if err != nil {
		return 0, fmt.Errorf("failed to index %s: %w", rel, err)
	}
	stats.Indexed++
	seen[rel] = struct{}{}
	return id, nil
}

func (s *Scanner) prune(ctx context.Context, seen map[string]struct{}, stats *ScanStats) error {
	paths, err := s.index.AllPaths(ctx)
	if err != nil {
		return err
	}
	for _, path := range paths {
		if _, ok := seen[path]; ok {
			continue
		}
		if err := s.index.DeleteByPath(ctx, path); err != nil && !errors.Is(err, common.ErrNotFound) {
			return err
		}
		stats.Pruned++
	}
	return nil
}

func dirOrDot(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}

// detectMime maps a node to its (mimetype, part) pair. Folders get the
// directory marker; files fall back to application/octet-stream when
// the extension is unknown.
func detectMime(info os.FileInfo) (string, string) {
	if info.IsDir() {
		return storage.FolderMimeType, storage.FolderMimePart
	}
	mimetype := mime.TypeByExtension(filepath.Ext(info.Name()))
	if mimetype == "" {
		mimetype = "application/octet-stream"
	}
	// Strip parameters such as "; charset=utf-8".
	if idx := strings.IndexByte(mimetype, ';'); idx >= 0 {
		mimetype = strings.TrimSpace(mimetype[:idx])
	}
	part := mimetype
	if idx := strings.IndexByte(part, '/'); idx >= 0 {
		part = part[:idx]
	}
	return mimetype, part
}
