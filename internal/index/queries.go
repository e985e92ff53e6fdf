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
	"database/sql"
	"fmt"
	"strings"

	"spanfs/internal/common"
	"spanfs/internal/storage"
	"spanfs/internal/util"
)

// Search runs one query of the search family.
func (ix *Index) Search(ctx context.Context, q storage.Query) ([]storage.Record, error) {
	var models []FileRecordModel

	switch q.Kind {
	case storage.QuerySubstring:
		err := ix.bun.NewSelect().
			Model(&models).
			Where("name LIKE ?", "%"+q.Pattern+"%").
			Order("path ASC").
			Scan(ctx)
		if err != nil {
			return nil, err
		}

	case storage.QueryMime:
		query := ix.bun.NewSelect().Model(&models)
		// A bare part such as "image" matches every subtype.
		if strings.Contains(q.Mime, "/") {
			query = query.Where("mimetype = ?", q.Mime)
		} else {
			query = query.Where("mimepart = ?", q.Mime)
		}
		if err := query.Order("path ASC").Scan(ctx); err != nil {
			return nil, err
		}

	case storage.QueryTag:
		err := ix.bun.NewSelect().
			Model(&models).
			Join("JOIN file_tags AS ft ON ft.fileid = fi.fileid").
			Where("ft.tag = ?", q.Tag).
			Where("ft.owner = ?", q.TagOwner).
			Order("fi.path ASC").
			Scan(ctx)
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown query kind %d", q.Kind)
	}

	return toRecords(models), nil
}

// PathByID resolves a file id to its internal path.
func (ix *Index) PathByID(ctx context.Context, fileID int64) (string, error) {
	var model FileRecordModel
	err := ix.bun.NewSelect().
		Model(&model).
		Column("path").
		Where("fileid = ?", fileID).
		Scan(ctx)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("file id %d: %w", fileID, common.ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return model.Path, nil
}

// RecordByPath returns the record at an internal path.
func (ix *Index) RecordByPath(ctx context.Context, path string) (*storage.Record, error) {
	var model FileRecordModel
	err := ix.bun.NewSelect().
		Model(&model).
		Where("path = ?", path).
		Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("path %s: %w", path, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	rec := model.ToRecord()
	return &rec, nil
}

// ChildrenOf lists the direct children of an internal folder path.
// Returns common.ErrNotFound if the folder itself is not indexed.
func (ix *Index) ChildrenOf(ctx context.Context, parent string) ([]storage.Record, error) {
	folder, err := ix.RecordByPath(ctx, parent)
	if err != nil {
		return nil, err
	}
	if folder.Mimetype != storage.FolderMimeType {
		return nil, fmt.Errorf("path %s: %w", parent, common.ErrNotFolder)
	}
	var models []FileRecordModel
	err = ix.bun.NewSelect().
		Model(&models).
		Where("parent = ?", folder.FileID).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return toRecords(models), nil
}

// RecentFiles returns records with storage_mtime > since, newest first.
// Zero-size folder rows are excluded; folders surface through
// RecentFolders instead.
func (ix *Index) RecentFiles(ctx context.Context, since int64) ([]storage.Record, error) {
	var models []FileRecordModel
	err := ix.bun.NewSelect().
		Model(&models).
		Where("storage_mtime > ?", since).
		Where("NOT (mimetype = ? AND size = 0)", storage.FolderMimeType).
		Order("mtime DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return toRecords(models), nil
}

// RecentFolders returns one representative row per folder with recent
// activity: the folder's identity carrying the timestamps of its most
// recently modified non-empty child. Children tying on storage_mtime
// fan the folder out into multiple rows; callers deduplicate by file id.
func (ix *Index) RecentFolders(ctx context.Context, since int64) ([]storage.Record, error) {
	var models []FileRecordModel
	err := ix.bun.NewRaw(`
		SELECT f.fileid, f.storage, f.path, f.name, f.parent,
		       f.mimetype, f.mimepart, f.size,
		       c.mtime AS mtime, c.storage_mtime AS storage_mtime,
		       f.permissions, f.etag
		FROM file_index f
		JOIN file_index c ON c.parent = f.fileid AND c.size > 0
		LEFT JOIN file_index s
		       ON s.parent = f.fileid AND s.size > 0
		      AND s.storage_mtime > c.storage_mtime
		WHERE f.mimetype = ?
		  AND c.storage_mtime > ?
		  AND s.fileid IS NULL
		ORDER BY c.mtime DESC`,
		storage.FolderMimeType, since).
		Scan(ctx, &models)
	if err != nil {
		return nil, err
	}
	return toRecords(models), nil
}

// PutRecord inserts or refreshes one row keyed by (storage, path) and
// returns its file id. Retried on transient lock errors since a scan
// and queries may hold the same file open.
func (ix *Index) PutRecord(ctx context.Context, rec *storage.Record) (int64, error) {
	return util.RetryWithResult(ctx,
		func() (int64, error) {
			return ix.putRecordInternal(ctx, rec)
		},
		util.DatabaseRetryOptions(ctx)...)
}

func (ix *Index) putRecordInternal(ctx context.Context, rec *storage.Record) (int64, error) {
	model := ModelFromRecord(rec)
	model.FileID = 0
	// Use RETURNING clause to get the file id (libsql doesn't support LastInsertId)
	_, err := ix.bun.NewInsert().
		Model(model).
		On("CONFLICT (storage, path) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("parent = EXCLUDED.parent").
		Set("mimetype = EXCLUDED.mimetype").
		Set("mimepart = EXCLUDED.mimepart").
		Set("size = EXCLUDED.size").
		Set("mtime = EXCLUDED.mtime").
		Set("storage_mtime = EXCLUDED.storage_mtime").
		Set("permissions = EXCLUDED.permissions").
		Set("etag = EXCLUDED.etag").
		Returning("fileid").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return model.FileID, nil
}

// DeleteByPath removes the row at an internal path together with its tags.
func (ix *Index) DeleteByPath(ctx context.Context, path string) error {
	return util.Retry(ctx,
		func() error {
			rec, err := ix.RecordByPath(ctx, path)
			if err != nil {
				return err
			}
			if _, err := ix.bun.NewDelete().
				Model((*FileTagModel)(nil)).
				Where("fileid = ?", rec.FileID).
				Exec(ctx); err != nil {
				return err
			}
			_, err = ix.bun.NewDelete().
				Model((*FileRecordModel)(nil)).
				Where("fileid = ?", rec.FileID).
				Exec(ctx)
			return err
		},
		util.DatabaseRetryOptions(ctx)...)
}

// AllPaths returns every indexed internal path.
func (ix *Index) AllPaths(ctx context.Context) ([]string, error) {
	var paths []string
	err := ix.bun.NewSelect().
		Model((*FileRecordModel)(nil)).
		Column("path").
		Order("path ASC").
		Scan(ctx, &paths)
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// TagFile attaches (tag, owner) to a file id. Idempotent.
func (ix *Index) TagFile(ctx context.Context, fileID int64, tag, owner string) error {
	return util.Retry(ctx,
		func() error {
			_, err := ix.bun.NewInsert().
				Model(&FileTagModel{FileID: fileID, Tag: tag, Owner: owner}).
				On("CONFLICT (fileid, tag, owner) DO NOTHING").
				Exec(ctx)
			return err
		},
		util.DatabaseRetryOptions(ctx)...)
}

// UntagFile removes (tag, owner) from a file id.
func (ix *Index) UntagFile(ctx context.Context, fileID int64, tag, owner string) error {
	_, err := ix.bun.NewDelete().
		Model((*FileTagModel)(nil)).
		Where("fileid = ?", fileID).
		Where("tag = ?", tag).
		Where("owner = ?", owner).
		Exec(ctx)
	return err
}
