package vfs

import (
	"time"

	"spanfs/internal/storage"
)

// NodeKind is the two-variant tag of a node: folder or file, keyed by
// the record's mimetype marker.
type NodeKind int

const (
	// KindFile is a regular file
	KindFile NodeKind = iota
	// KindFolder is a folder
	KindFolder
)

// Node is a canonical-path-addressed view of one metadata record plus
// its owning storage. Every node guarantees a canonical virtual path,
// an owning storage, an addressable internal path and its kind.
type Node struct {
	Kind     NodeKind
	Path     string // canonical virtual path
	Internal string // addressable internal path within Storage
	Storage  *storage.Storage
	Record   storage.Record
}

// IsFolder reports whether the node is the folder variant.
func (n Node) IsFolder() bool { return n.Kind == KindFolder }

// Name returns the node's base name.
func (n Node) Name() string { return n.Record.Name }

// Size returns the node's size in bytes.
func (n Node) Size() int64 { return n.Record.Size }

// MTime returns the node's modification time.
func (n Node) MTime() time.Time { return time.Unix(n.Record.Mtime, 0) }

// Etag returns the node's etag.
func (n Node) Etag() string { return n.Record.Etag }

// kindOf reads the node variant off a record's mimetype marker; the
// record is never re-queried.
func kindOf(rec storage.Record) NodeKind {
	if rec.Mimetype == storage.FolderMimeType {
		return KindFolder
	}
	return KindFile
}

// newNode builds a node from a record and the mount-resolved addressing
// information.
func newNode(path, internal string, st *storage.Storage, rec storage.Record) Node {
	return Node{
		Kind:     kindOf(rec),
		Path:     path,
		Internal: internal,
		Storage:  st,
		Record:   rec,
	}
}
