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
	"github.com/uptrace/bun"

	"spanfs/internal/storage"
)

// FileRecordModel represents the file_index table
type FileRecordModel struct {
	bun.BaseModel `bun:"table:file_index,alias:fi"`

	FileID       int64  `bun:"fileid,pk,autoincrement"`
	Storage      int64  `bun:"storage,notnull"`
	Path         string `bun:"path,notnull"`
	Name         string `bun:"name,notnull"`
	Parent       int64  `bun:"parent,notnull"`
	Mimetype     string `bun:"mimetype,notnull"`
	Mimepart     string `bun:"mimepart,notnull"`
	Size         int64  `bun:"size,notnull"`
	Mtime        int64  `bun:"mtime,notnull"`         // Unix timestamp
	StorageMtime int64  `bun:"storage_mtime,notnull"` // Unix timestamp
	Permissions  int32  `bun:"permissions,notnull"`
	Etag         string `bun:"etag,notnull"`
}

// ToRecord converts a FileRecordModel to the storage.Record consumed by
// the aggregation layer.
func (m *FileRecordModel) ToRecord() storage.Record {
	return storage.Record{
		Path:         m.Path,
		StorageID:    m.Storage,
		FileID:       m.FileID,
		Name:         m.Name,
		Mimetype:     m.Mimetype,
		Mimepart:     m.Mimepart,
		Size:         m.Size,
		Mtime:        m.Mtime,
		StorageMtime: m.StorageMtime,
		Permissions:  m.Permissions,
		Etag:         m.Etag,
		ParentID:     m.Parent,
	}
}

// ModelFromRecord converts a storage.Record to a FileRecordModel
func ModelFromRecord(rec *storage.Record) *FileRecordModel {
	return &FileRecordModel{
		FileID:       rec.FileID,
		Storage:      rec.StorageID,
		Path:         rec.Path,
		Name:         rec.Name,
		Parent:       rec.ParentID,
		Mimetype:     rec.Mimetype,
		Mimepart:     rec.Mimepart,
		Size:         rec.Size,
		Mtime:        rec.Mtime,
		StorageMtime: rec.StorageMtime,
		Permissions:  rec.Permissions,
		Etag:         rec.Etag,
	}
}

func toRecords(models []FileRecordModel) []storage.Record {
	records := make([]storage.Record, len(models))
	for i := range models {
		records[i] = models[i].ToRecord()
	}
	return records
}

// FileTagModel represents the file_tags table
type FileTagModel struct {
	bun.BaseModel `bun:"table:file_tags,alias:ft"`

	FileID int64  `bun:"fileid,pk"`
	Tag    string `bun:"tag,pk"`
	Owner  string `bun:"owner,pk"`
}
