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

package mount

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StorageConfig describes one storage backend in the mount-table file.
// A direct storage names an index database and a backing directory; a
// jailed storage names a parent and a jail root instead.
type StorageConfig struct {
	ID        string `yaml:"id"`
	NumericID int64  `yaml:"numeric_id"`
	Index     string `yaml:"index"`     // path to the index database
	Dir       string `yaml:"dir"`       // backing directory for I/O
	Parent    string `yaml:"parent"`    // jail: parent storage id
	JailRoot  string `yaml:"jail_root"` // jail: internal root offset
}

// IsJail reports whether the entry declares a jailed view.
func (c *StorageConfig) IsJail() bool { return c.Parent != "" }

// MountConfig binds a mount point to a configured storage.
type MountConfig struct {
	MountPoint string `yaml:"mountpoint"`
	Storage    string `yaml:"storage"`
	Root       string `yaml:"root"` // internal root offset, optional
}

// Config is the parsed mount-table file.
type Config struct {
	Storages []StorageConfig `yaml:"storages"`
	Mounts   []MountConfig   `yaml:"mounts"`
}

// LoadConfig reads and validates a mount-table YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// ApplyDefaults fills zero-value fields with their defaults. A direct
// storage without a numeric id gets the lowest unclaimed one; a jailed
// storage always inherits its parent's and needs none.
func (c *Config) ApplyDefaults() {
	taken := make(map[int64]bool, len(c.Storages))
	for _, s := range c.Storages {
		taken[s.NumericID] = true
	}
	next := int64(1)
	for i := range c.Storages {
		s := &c.Storages[i]
		if s.IsJail() || s.NumericID != 0 {
			continue
		}
		for taken[next] {
			next++
		}
		s.NumericID = next
		taken[next] = true
	}
	for i := range c.Storages {
		if s := &c.Storages[i]; !s.IsJail() && s.Dir == "" {
			s.Dir = "."
		}
	}
}

// Validate checks referential integrity of the config.
func (c *Config) Validate() error {
	byID := make(map[string]*StorageConfig, len(c.Storages))
	for i := range c.Storages {
		s := &c.Storages[i]
		if s.ID == "" {
			return fmt.Errorf("storage %d: missing id", i)
		}
		if _, dup := byID[s.ID]; dup {
			return fmt.Errorf("storage %q: duplicate id", s.ID)
		}
		byID[s.ID] = s
	}
	for _, s := range c.Storages {
		if s.IsJail() {
			parent, ok := byID[s.Parent]
			if !ok {
				return fmt.Errorf("storage %q: unknown parent %q", s.ID, s.Parent)
			}
			if parent.ID == s.ID {
				return fmt.Errorf("storage %q: cannot be its own parent", s.ID)
			}
			if s.JailRoot == "" {
				return fmt.Errorf("storage %q: jail_root is required for a jailed storage", s.ID)
			}
		} else if s.Index == "" {
			return fmt.Errorf("storage %q: index is required for a direct storage", s.ID)
		}
	}
	seen := make(map[string]bool, len(c.Mounts))
	for i, m := range c.Mounts {
		if m.MountPoint == "" {
			return fmt.Errorf("mount %d: missing mountpoint", i)
		}
		if _, ok := byID[m.Storage]; !ok {
			return fmt.Errorf("mount %q: unknown storage %q", m.MountPoint, m.Storage)
		}
		if seen[m.MountPoint] {
			return fmt.Errorf("mount %q: duplicate mountpoint", m.MountPoint)
		}
		seen[m.MountPoint] = true
	}
	return nil
}
