package vfs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spanfs/internal/common"
	"spanfs/internal/mount"
	"spanfs/internal/storage"
)

func TestGetRecentAcrossMounts(t *testing.T) {
	t.Parallel()

	idx0 := &fakeIndex{records: []storage.Record{fileRec("a.txt", 10, 1, 100)}}
	idx1 := &fakeIndex{records: []storage.Record{fileRec("b.txt", 20, 2, 200)}}
	s0 := storage.New("s0", 1, idx0, nil)
	s1 := storage.New("s1", 2, idx1, nil)
	table := mount.NewTable(
		mount.New("/docs", s0, ""),
		mount.New("/docs/shared", s1, ""),
	)
	root := NewRoot(table, nil, nil)

	nodes, err := root.FolderAt("/docs").GetRecent(context.Background(), 0, 50)
	require.NoError(t, err)

	assert.Equal(t, []string{"/docs/shared/b.txt", "/docs/a.txt"}, nodePaths(nodes))
}

func TestGetRecentSinceThreshold(t *testing.T) {
	t.Parallel()

	idx := &fakeIndex{records: []storage.Record{
		fileRec("old.txt", 10, 1, 100),
		fileRec("new.txt", 11, 1, 300),
	}}
	st := storage.New("s0", 1, idx, nil)
	root := NewRoot(mount.NewTable(mount.New("/docs", st, "")), nil, nil)

	nodes, err := root.FolderAt("/docs").GetRecent(context.Background(), 150, 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"/docs/new.txt"}, nodePaths(nodes))
}

func TestGetRecentLimit(t *testing.T) {
	t.Parallel()

	idx := &fakeIndex{records: []storage.Record{
		fileRec("a.txt", 10, 1, 100),
		fileRec("b.txt", 11, 1, 200),
		fileRec("c.txt", 12, 1, 300),
	}}
	st := storage.New("s0", 1, idx, nil)
	root := NewRoot(mount.NewTable(mount.New("/docs", st, "")), nil, nil)

	nodes, err := root.FolderAt("/docs").GetRecent(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"/docs/c.txt", "/docs/b.txt"}, nodePaths(nodes))
}

// A folder surfaces through the recency of its newest non-empty child,
// sorting before a file with the same mtime.
func TestGetRecentBubblesFolders(t *testing.T) {
	t.Parallel()

	bubble := folderRec("sub", 11, 1, 0)
	bubble.Mtime = 200
	bubble.StorageMtime = 200

	idx := &fakeIndex{
		records: []storage.Record{
			fileRec("a.txt", 10, 1, 200),
			fileRec("sub/deep.txt", 12, 1, 200),
			folderRec("sub", 11, 1, 50),
		},
		// The join emits the folder once per qualifying child.
		bubbles: []storage.Record{bubble, bubble},
	}
	st := storage.New("s0", 1, idx, nil)
	root := NewRoot(mount.NewTable(mount.New("/docs", st, "")), nil, nil)

	nodes, err := root.FolderAt("/docs").GetRecent(context.Background(), 0, 50)
	require.NoError(t, err)

	// Deduplicated by file id; folder first on the mtime tie.
	assert.Equal(t,
		[]string{"/docs/sub", "/docs/a.txt", "/docs/sub/deep.txt"},
		nodePaths(nodes))
	assert.True(t, nodes[0].IsFolder())
	assert.Equal(t, int64(200), nodes[0].Record.Mtime)
}

func TestGetRecentDropsRowsOutsideJail(t *testing.T) {
	t.Parallel()

	idx := &fakeIndex{records: []storage.Record{
		fileRec("files/shared/b.txt", 30, 1, 100),
		fileRec("files/private/c.txt", 31, 1, 200),
	}}
	base := storage.New("base", 1, idx, nil)
	view := storage.NewJail("view", base, "files/shared")
	root := NewRoot(mount.NewTable(mount.New("/share", view, "")), nil, nil)

	nodes, err := root.FolderAt("/share").GetRecent(context.Background(), 0, 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"/share/b.txt"}, nodePaths(nodes))
}

func TestGetRecentStorageIDConflict(t *testing.T) {
	t.Parallel()

	idx := &fakeIndex{}
	base := storage.New("base", 1, idx, nil)
	view := storage.NewJail("view", base, "files/shared")

	// Parent and jail share a numeric id; mounting both below the same
	// folder makes row attribution ambiguous.
	table := mount.NewTable(
		mount.New("/docs", base, ""),
		mount.New("/docs/shared", view, ""),
	)
	root := NewRoot(table, nil, nil)

	_, err := root.FolderAt("/docs").GetRecent(context.Background(), 0, 50)
	require.ErrorIs(t, err, common.ErrStorageConflict)
}

func TestGetRecentExcludesFolderOwnTimestamps(t *testing.T) {
	t.Parallel()

	// A zero-size folder row only surfaces through the bubbled query,
	// never through the plain file query.
	idx := &fakeIndex{records: []storage.Record{
		folderRec("quiet", 11, 1, 500),
		fileRec("a.txt", 10, 1, 100),
	}}
	st := storage.New("s0", 1, idx, nil)
	root := NewRoot(mount.NewTable(mount.New("/docs", st, "")), nil, nil)

	nodes, err := root.FolderAt("/docs").GetRecent(context.Background(), 0, 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"/docs/a.txt"}, nodePaths(nodes))
}
