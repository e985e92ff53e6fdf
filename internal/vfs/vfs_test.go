package vfs

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"spanfs/internal/common"
	"spanfs/internal/storage"
)

// fakeIndex is an in-memory MetadataIndex. Records hold internal paths
// exactly as a real index would store them; bubbles holds the rows the
// per-folder recency query would produce, join fan-out duplicates
// included.
type fakeIndex struct {
	records []storage.Record
	bubbles []storage.Record
	tags    map[string][]string // "tag\x00owner" -> internal paths
}

func (f *fakeIndex) Search(_ context.Context, q storage.Query) ([]storage.Record, error) {
	var out []storage.Record
	switch q.Kind {
	case storage.QuerySubstring:
		for _, rec := range f.records {
			if strings.Contains(rec.Name, q.Pattern) {
				out = append(out, rec)
			}
		}
	case storage.QueryMime:
		for _, rec := range f.records {
			if rec.Mimetype == q.Mime || rec.Mimepart == q.Mime {
				out = append(out, rec)
			}
		}
	case storage.QueryTag:
		tagged := f.tags[q.Tag+"\x00"+q.TagOwner]
		for _, rec := range f.records {
			for _, path := range tagged {
				if rec.Path == path {
					out = append(out, rec)
					break
				}
			}
		}
	}
	return out, nil
}

func (f *fakeIndex) PathByID(_ context.Context, fileID int64) (string, error) {
	for _, rec := range f.records {
		if rec.FileID == fileID {
			return rec.Path, nil
		}
	}
	return "", fmt.Errorf("id %d: %w", fileID, common.ErrNotFound)
}

func (f *fakeIndex) RecordByPath(_ context.Context, path string) (*storage.Record, error) {
	for _, rec := range f.records {
		if rec.Path == path {
			out := rec
			return &out, nil
		}
	}
	return nil, fmt.Errorf("path %s: %w", path, common.ErrNotFound)
}

func (f *fakeIndex) ChildrenOf(_ context.Context, parent string) ([]storage.Record, error) {
	var out []storage.Record
	for _, rec := range f.records {
		if rec.Path != parent && common.ParentPath(rec.Path) == parent {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeIndex) RecentFiles(_ context.Context, since int64) ([]storage.Record, error) {
	var out []storage.Record
	for _, rec := range f.records {
		if rec.StorageMtime <= since {
			continue
		}
		if rec.Mimetype == storage.FolderMimeType && rec.Size == 0 {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Mtime > out[j].Mtime })
	return out, nil
}

func (f *fakeIndex) RecentFolders(_ context.Context, since int64) ([]storage.Record, error) {
	var out []storage.Record
	for _, rec := range f.bubbles {
		if rec.StorageMtime > since {
			out = append(out, rec)
		}
	}
	return out, nil
}

func fileRec(path string, fileID, storageID, mtime int64) storage.Record {
	return storage.Record{
		Path:         path,
		StorageID:    storageID,
		FileID:       fileID,
		Name:         common.BaseName(path),
		Mimetype:     "text/plain",
		Mimepart:     "text",
		Size:         4,
		Mtime:        mtime,
		StorageMtime: mtime,
		Permissions:  storage.PermissionAll,
		Etag:         fmt.Sprintf("etag%d", fileID),
	}
}

func folderRec(path string, fileID, storageID, mtime int64) storage.Record {
	return storage.Record{
		Path:         path,
		StorageID:    storageID,
		FileID:       fileID,
		Name:         common.BaseName(path),
		Mimetype:     storage.FolderMimeType,
		Mimepart:     storage.FolderMimePart,
		Mtime:        mtime,
		StorageMtime: mtime,
		Permissions:  storage.PermissionAll,
		Etag:         fmt.Sprintf("etag%d", fileID),
	}
}

func nodePaths(nodes []Node) []string {
	paths := make([]string, len(nodes))
	for i, n := range nodes {
		paths[i] = n.Path
	}
	return paths
}

// recorder captures published events as "namespace.name" strings.
type recorder struct {
	events []string
}

func (r *recorder) Publish(namespace, name string, _ map[string]any) {
	r.events = append(r.events, namespace+"."+name)
}
