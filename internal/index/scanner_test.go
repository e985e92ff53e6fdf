package index

import (
	"context"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spanfs/internal/common"
	"spanfs/internal/storage"
)

func writeFile(t *testing.T, fs billy.Filesystem, path, content string) {
	t.Helper()
	f, err := fs.Create(path)
	require.NoError(t, err)
	_, err = f.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestScanIndexesTree(t *testing.T) {
	ix := newTestIndex(t)
	fs := memfs.New()
	require.NoError(t, fs.MkdirAll("sub", 0755))
	writeFile(t, fs, "a.txt", "hello")
	writeFile(t, fs, "sub/b.txt", "world")

	scanner := NewScanner(ix, fs, 1)
	stats, err := scanner.Scan(context.Background())
	require.NoError(t, err)

	// Root folder, sub folder, two files.
	assert.Equal(t, 4, stats.Indexed)
	assert.Equal(t, 0, stats.Pruned)

	ctx := context.Background()
	root, err := ix.RecordByPath(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, storage.FolderMimeType, root.Mimetype)

	a, err := ix.RecordByPath(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", a.Mimetype)
	assert.Equal(t, "text", a.Mimepart)
	assert.Equal(t, int64(5), a.Size)
	assert.Equal(t, root.FileID, a.ParentID)
	assert.Equal(t, int64(1), a.StorageID)

	b, err := ix.RecordByPath(ctx, "sub/b.txt")
	require.NoError(t, err)
	sub, err := ix.RecordByPath(ctx, "sub")
	require.NoError(t, err)
	assert.Equal(t, sub.FileID, b.ParentID)
}

func TestRescanKeepsEtagOfUnchangedFiles(t *testing.T) {
	ix := newTestIndex(t)
	fs := memfs.New()
	writeFile(t, fs, "a.txt", "hello")

	scanner := NewScanner(ix, fs, 1)
	ctx := context.Background()

	_, err := scanner.Scan(ctx)
	require.NoError(t, err)
	before, err := ix.RecordByPath(ctx, "a.txt")
	require.NoError(t, err)

	_, err = scanner.Scan(ctx)
	require.NoError(t, err)
	after, err := ix.RecordByPath(ctx, "a.txt")
	require.NoError(t, err)

	assert.Equal(t, before.Etag, after.Etag)
	assert.Equal(t, before.FileID, after.FileID)
}

func TestRescanPrunesDeletedFiles(t *testing.T) {
	ix := newTestIndex(t)
	fs := memfs.New()
	writeFile(t, fs, "a.txt", "hello")
	writeFile(t, fs, "b.txt", "world")

	scanner := NewScanner(ix, fs, 1)
	ctx := context.Background()

	_, err := scanner.Scan(ctx)
	require.NoError(t, err)

	require.NoError(t, fs.Remove("b.txt"))

	stats, err := scanner.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pruned)

	_, err = ix.RecordByPath(ctx, "b.txt")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestScanHonorsIgnorePatterns(t *testing.T) {
	ix := newTestIndex(t)
	fs := memfs.New()
	writeFile(t, fs, "keep.txt", "x")
	writeFile(t, fs, "skip.tmp", "x")
	require.NoError(t, fs.MkdirAll(".cache", 0755))
	writeFile(t, fs, ".cache/blob", "x")

	scanner := NewScanner(ix, fs, 1)
	scanner.SetIgnoreLines("*.tmp", ".cache/")

	_, err := scanner.Scan(context.Background())
	require.NoError(t, err)

	ctx := context.Background()
	_, err = ix.RecordByPath(ctx, "keep.txt")
	require.NoError(t, err)

	_, err = ix.RecordByPath(ctx, "skip.tmp")
	require.ErrorIs(t, err, common.ErrNotFound)
	_, err = ix.RecordByPath(ctx, ".cache/blob")
	require.ErrorIs(t, err, common.ErrNotFound)
}
