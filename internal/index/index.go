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

// Package index implements the per-storage metadata catalog as a
// SQLite-backed file. One index file serves one direct storage; jailed
// views query their parent's index through path translation.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	_ "github.com/tursodatabase/go-libsql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"spanfs/internal/common"
)

// Index is a handle on one SQLite index file. It implements
// storage.MetadataIndex plus the write side used by the scanner.
type Index struct {
	path string
	db   *sql.DB
	bun  *bun.DB
}

// Create creates a new index file. Fails if the file already exists.
func Create(path string) (*Index, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("file %s: %w", path, common.ErrExists)
	}

	db, err := sql.Open("libsql", BuildDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	// Must be explicit — libsql ignores DSN-based _pragma=value parameters.
	if err := applyPragmas(db); err != nil {
		db.Close()
		os.Remove(path)
		return nil, err
	}

	// Create schema (execute statements individually for libsql compatibility)
	if err := execStatements(db, indexSchema); err != nil {
		db.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if err := execStatements(db, initIndexFile, SchemaVersion); err != nil {
		db.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to initialize index: %w", err)
	}

	log.Debugf("[Index] created %s", path)
	return &Index{
		path: path,
		db:   db,
		bun:  bun.NewDB(db, sqlitedialect.New()),
	}, nil
}

// Open opens an existing index file and verifies its type marker.
func Open(path string) (*Index, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}

	db, err := sql.Open("libsql", BuildDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}

	ix := &Index{
		path: path,
		db:   db,
		bun:  bun.NewDB(db, sqlitedialect.New()),
	}

	fileType, err := ix.schemaInfo(context.Background(), "type")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read schema info: %w", err)
	}
	if fileType != "index" {
		db.Close()
		return nil, fmt.Errorf("not an index file (type=%s)", fileType)
	}

	return ix, nil
}

// OpenOrCreate opens path, bootstrapping a fresh index file when it
// does not exist yet.
func OpenOrCreate(path string) (*Index, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Create(path)
	}
	return Open(path)
}

// Path returns the index file path.
func (ix *Index) Path() string { return ix.path }

// Close checkpoints the WAL and closes the database connection.
func (ix *Index) Close() error {
	if ix.db == nil {
		return nil
	}
	if err := execPragma(ix.db, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		log.Debugf("[Index] checkpoint on close failed: %v", err)
	}
	err := ix.db.Close()
	ix.db = nil
	ix.bun = nil
	return err
}

func (ix *Index) schemaInfo(ctx context.Context, key string) (string, error) {
	var value string
	err := ix.bun.NewRaw(`SELECT value FROM schema_info WHERE key = ?`, key).Scan(ctx, &value)
	if err != nil {
		return "", err
	}
	return value, nil
}
