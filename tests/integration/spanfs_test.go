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

package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/require"

	"spanfs/internal/index"
	"spanfs/internal/mount"
	"spanfs/internal/storage"
	"spanfs/internal/vfs"
)

// testEnv assembles two real storages on disk: a base storage mounted
// at /docs, a second storage mounted at /docs/shared, plus a jailed
// view of the base storage's "public" subtree mounted at /pub.
type testEnv struct {
	root    *vfs.Root
	base    *storage.Storage
	second  *storage.Storage
	baseIx  *index.Index
	baseDir string
}

func writeFileAt(t *testing.T, dir, rel, content string, mtime time.Time) {
	t.Helper()
	full := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	require.NoError(t, os.Chtimes(full, mtime, mtime))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tmp := t.TempDir()
	baseDir := filepath.Join(tmp, "base")
	secondDir := filepath.Join(tmp, "second")
	require.NoError(t, os.MkdirAll(baseDir, 0755))
	require.NoError(t, os.MkdirAll(secondDir, 0755))

	old := time.Now().Add(-2 * time.Hour)
	recent := time.Now().Add(-10 * time.Minute)

	writeFileAt(t, baseDir, "a.txt", "alpha", old)
	writeFileAt(t, baseDir, "public/p.txt", "public", old)
	writeFileAt(t, baseDir, "private/s.txt", "secret", old)
	writeFileAt(t, secondDir, "b.txt", "bravo", recent)

	baseIx, err := index.Create(filepath.Join(tmp, "base.db"))
	require.NoError(t, err)
	t.Cleanup(func() { baseIx.Close() })
	secondIx, err := index.Create(filepath.Join(tmp, "second.db"))
	require.NoError(t, err)
	t.Cleanup(func() { secondIx.Close() })

	ctx := context.Background()
	_, err = index.NewScanner(baseIx, osfs.New(baseDir), 1).Scan(ctx)
	require.NoError(t, err)
	_, err = index.NewScanner(secondIx, osfs.New(secondDir), 2).Scan(ctx)
	require.NoError(t, err)

	base := storage.New("base", 1, baseIx, storage.NewBillyExecutor(osfs.New(baseDir)))
	second := storage.New("second", 2, secondIx, storage.NewBillyExecutor(osfs.New(secondDir)))
	pub := storage.NewJail("pub", base, "public")

	table := mount.NewTable(
		mount.New("/docs", base, ""),
		mount.New("/docs/shared", second, ""),
		mount.New("/pub", pub, ""),
	)
	return &testEnv{
		root:    vfs.NewRoot(table, nil, nil),
		base:    base,
		second:  second,
		baseIx:  baseIx,
		baseDir: baseDir,
	}
}

func paths(nodes []vfs.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Path
	}
	return out
}

func TestEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("SearchSpansMounts", func(t *testing.T) {
		g := NewWithT(t)

		nodes, err := env.root.FolderAt("/docs").Search(ctx, "txt")
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(paths(nodes)).To(ConsistOf(
			"/docs/a.txt",
			"/docs/public/p.txt",
			"/docs/private/s.txt",
			"/docs/shared/b.txt",
		))
	})

	t.Run("JailHidesSiblings", func(t *testing.T) {
		g := NewWithT(t)

		nodes, err := env.root.FolderAt("/pub").Search(ctx, "txt")
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(paths(nodes)).To(ConsistOf("/pub/p.txt"))

		node, err := env.root.Resolve(ctx, "/pub/p.txt")
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(node.Internal).To(Equal("p.txt"))
		g.Expect(node.Storage.NumericID()).To(Equal(int64(1)))
	})

	t.Run("RecentOrdersNewestFirstAcrossStorages", func(t *testing.T) {
		g := NewWithT(t)

		nodes, err := env.root.FolderAt("/docs").GetRecent(ctx, 0, 50)
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(len(nodes)).To(BeNumerically(">=", 2))
		// The second storage's file is the newest entry.
		g.Expect(nodes[0].Path).To(Equal("/docs/shared/b.txt"))
		for i := 1; i < len(nodes); i++ {
			g.Expect(nodes[i-1].Record.Mtime).To(BeNumerically(">=", nodes[i].Record.Mtime))
		}
	})

	t.Run("RecentBubblesActiveFolders", func(t *testing.T) {
		g := NewWithT(t)

		// A fresh write deep in the base storage surfaces its folder.
		writeFileAt(t, env.baseDir, "public/fresh.txt", "new", time.Now())
		_, err := index.NewScanner(env.baseIx, osfs.New(env.baseDir), 1).Scan(ctx)
		g.Expect(err).NotTo(HaveOccurred())

		nodes, err := env.root.FolderAt("/docs").GetRecent(ctx, 0, 50)
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(paths(nodes)).To(ContainElements("/docs/public", "/docs/public/fresh.txt"))
	})

	t.Run("ListShowsNestedMountPoint", func(t *testing.T) {
		g := NewWithT(t)

		nodes, err := env.root.FolderAt("/docs").List(ctx)
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(paths(nodes)).To(ContainElements(
			"/docs/a.txt", "/docs/public", "/docs/private", "/docs/shared"))

		for _, n := range nodes {
			if n.Path == "/docs/shared" {
				g.Expect(n.IsFolder()).To(BeTrue())
				g.Expect(n.Storage.NumericID()).To(Equal(int64(2)))
			}
		}
	})

	t.Run("GetByIDRoundTrip", func(t *testing.T) {
		g := NewWithT(t)

		resolved, err := env.root.Resolve(ctx, "/docs/shared/b.txt")
		g.Expect(err).NotTo(HaveOccurred())

		node, err := env.root.FolderAt("/docs").GetByID(ctx, resolved.Record.FileID)
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(node.Path).To(Equal("/docs/shared/b.txt"))
	})

	t.Run("MutationsHitTheBackend", func(t *testing.T) {
		g := NewWithT(t)

		folder := env.root.FolderAt("/docs")
		_, err := folder.NewFolder("incoming")
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(filepath.Join(env.baseDir, "incoming")).To(BeADirectory())

		_, err = folder.NewFile("incoming/todo.txt")
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(filepath.Join(env.baseDir, "incoming", "todo.txt")).To(BeARegularFile())

		g.Expect(env.root.FolderAt("/docs/incoming").Delete()).To(Succeed())
		g.Expect(filepath.Join(env.baseDir, "incoming")).NotTo(BeAnExistingFile())
	})
}
