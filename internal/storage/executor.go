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

package storage

import (
	"io"
	"os"

	"github.com/go-git/go-billy/v5"
)

// FreeSpaceUnknown is returned by Free when the backend cannot report
// available space.
const FreeSpaceUnknown int64 = -2

// IOExecutor performs the byte-level operations mutating node code
// delegates to. Paths are internal (storage-root relative). Failures
// propagate unchanged; nothing here is retried.
type IOExecutor interface {
	ReadDir(path string) ([]os.FileInfo, error)
	Mkdir(path string) error
	Touch(path string) error
	Remove(path string) error
	Rename(oldpath, newpath string) error
	Copy(src, dst string) error
	Exists(path string) bool
	Free(path string) (int64, error)
}

// billyExecutor adapts a billy filesystem to IOExecutor. osfs backs the
// CLI; memfs backs tests.
type billyExecutor struct {
	fs billy.Filesystem
}

// NewBillyExecutor wraps a billy filesystem as an IOExecutor.
func NewBillyExecutor(fs billy.Filesystem) IOExecutor {
	return &billyExecutor{fs: fs}
}

// internal root "" maps to the filesystem's current directory
func billyPath(path string) string {
	if path == "" {
		return "."
	}
	return path
}

func (e *billyExecutor) ReadDir(path string) ([]os.FileInfo, error) {
	return e.fs.ReadDir(billyPath(path))
}

func (e *billyExecutor) Mkdir(path string) error {
	return e.fs.MkdirAll(billyPath(path), 0755)
}

func (e *billyExecutor) Touch(path string) error {
	if _, err := e.fs.Stat(billyPath(path)); err == nil {
		return nil
	}
	f, err := e.fs.Create(billyPath(path))
	if err != nil {
		return err
	}
	return f.Close()
}

func (e *billyExecutor) Remove(path string) error {
	info, err := e.fs.Stat(billyPath(path))
	if err != nil {
		return err
	}
	if info.IsDir() {
		entries, err := e.fs.ReadDir(billyPath(path))
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if err := e.Remove(e.fs.Join(path, entry.Name())); err != nil {
				return err
			}
		}
	}
	return e.fs.Remove(billyPath(path))
}

func (e *billyExecutor) Rename(oldpath, newpath string) error {
	return e.fs.Rename(billyPath(oldpath), billyPath(newpath))
}

func (e *billyExecutor) Copy(src, dst string) error {
	info, err := e.fs.Stat(billyPath(src))
	if err != nil {
		return err
	}
	if info.IsDir() {
		if err := e.fs.MkdirAll(billyPath(dst), info.Mode().Perm()); err != nil {
			return err
		}
		entries, err := e.fs.ReadDir(billyPath(src))
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if err := e.Copy(e.fs.Join(src, entry.Name()), e.fs.Join(dst, entry.Name())); err != nil {
				return err
			}
		}
		return nil
	}
	return e.copyFile(src, dst)
}

func (e *billyExecutor) copyFile(src, dst string) error {
	in, err := e.fs.Open(billyPath(src))
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := e.fs.Create(billyPath(dst))
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func (e *billyExecutor) Exists(path string) bool {
	_, err := e.fs.Stat(billyPath(path))
	return err == nil
}

func (e *billyExecutor) Free(string) (int64, error) {
	// billy has no free-space query
	return FreeSpaceUnknown, nil
}
