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

package commands

import (
	"fmt"

	"github.com/go-git/go-billy/v5/osfs"
	log "github.com/sirupsen/logrus"

	"spanfs/internal/events"
	"spanfs/internal/index"
	"spanfs/internal/mount"
	"spanfs/internal/storage"
	"spanfs/internal/vfs"
)

// environment is the live assembly of a mount-table config: open index
// handles, constructed storages, and the mount table fronted by a Root.
type environment struct {
	cfg      *mount.Config
	root     *vfs.Root
	storages map[string]*storage.Storage
	indexes  map[string]*index.Index // keyed by direct storage id
}

func openEnvironment() (*environment, error) {
	cfg, err := mount.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	env := &environment{
		cfg:      cfg,
		storages: make(map[string]*storage.Storage),
		indexes:  make(map[string]*index.Index),
	}

	// Direct storages own an index file and a backing directory.
	for _, sc := range cfg.Storages {
		if sc.IsJail() {
			continue
		}
		ix, err := index.OpenOrCreate(sc.Index)
		if err != nil {
			env.Close()
			return nil, fmt.Errorf("storage %q: %w", sc.ID, err)
		}
		env.indexes[sc.ID] = ix
		exec := storage.NewBillyExecutor(osfs.New(sc.Dir))
		env.storages[sc.ID] = storage.New(sc.ID, sc.NumericID, ix, exec)
	}

	// Jails resolve against already-built parents; chains of jails may
	// need several passes.
	remaining := jailConfigs(cfg)
	for len(remaining) > 0 {
		var next []mount.StorageConfig
		for _, sc := range remaining {
			parent, ok := env.storages[sc.Parent]
			if !ok {
				next = append(next, sc)
				continue
			}
			env.storages[sc.ID] = storage.NewJail(sc.ID, parent, sc.JailRoot)
		}
		if len(next) == len(remaining) {
			env.Close()
			return nil, fmt.Errorf("unresolvable jail chain: %d storages left", len(next))
		}
		remaining = next
	}

	table := mount.NewTable()
	for _, mc := range cfg.Mounts {
		table.Add(mount.New(mc.MountPoint, env.storages[mc.Storage], mc.Root))
	}
	env.root = vfs.NewRoot(table, newEventHub(), nil)
	return env, nil
}

// newEventHub builds the hub behind mutating commands. Post events are
// traced at debug level; listeners with real side effects subscribe
// the same way.
func newEventHub() *events.Hub {
	hub := events.NewHub()
	for _, name := range []string{"postCreate", "postDelete", "postRename", "postCopy"} {
		hub.Subscribe("node", name, func(ev events.Event) {
			log.Debugf("[CLI] %s.%s %v", ev.Namespace, ev.Name, ev.Args)
		})
	}
	return hub
}

func jailConfigs(cfg *mount.Config) []mount.StorageConfig {
	var jails []mount.StorageConfig
	for _, sc := range cfg.Storages {
		if sc.IsJail() {
			jails = append(jails, sc)
		}
	}
	return jails
}

// Close releases every index handle the environment holds open.
func (e *environment) Close() {
	for _, ix := range e.indexes {
		ix.Close()
	}
	e.indexes = nil
}
