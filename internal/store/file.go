// Copyright 2026 The Rolesmith Authors
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

// Package store persists role definitions as JSON documents in a local
// directory, one file per role.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rolesmith/rolesmith/internal/role"
)

// Domain errors
var (
	ErrNotFound = errors.New("role file not found")
	ErrExists   = errors.New("role file already exists")
)

// DefaultDir is the roles directory used when none is configured.
const DefaultDir = "./roles"

// FileStore reads and writes role definition files under a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir (DefaultDir when empty). The
// directory is created lazily on first write.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = DefaultDir
	}
	return &FileStore{dir: dir}
}

// Dir returns the store's root directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Load reads a role definition from an explicit file path.
func (s *FileStore) Load(path string) (*role.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read role file: %w", err)
	}

	var d role.Definition
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("invalid JSON in role file %s: %w", path, err)
	}
	return &d, nil
}

// LoadByName reads a role by name from the store directory. The name may
// carry the .json extension or not.
func (s *FileStore) LoadByName(name string) (*role.Definition, error) {
	return s.Load(s.PathFor(name))
}

// Save writes the role to path, refusing to clobber an existing file unless
// overwrite is set. The modification timestamp is bumped on every save.
func (s *FileStore) Save(d *role.Definition, path string, overwrite bool) (string, error) {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%w: %s", ErrExists, path)
		}
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	d.Touch()
	data, err := d.MarshalIndent()
	if err != nil {
		return "", fmt.Errorf("failed to encode role: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write role file: %w", err)
	}
	return path, nil
}

// SaveByName writes the role into the store directory under its slugified
// name.
func (s *FileStore) SaveByName(d *role.Definition, overwrite bool) (string, error) {
	return s.Save(d, s.PathFor(d.Name), overwrite)
}

// List returns the sorted role names (file stems) present in the directory.
// A missing directory is an empty store, not an error.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read roles directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a role file by name. It reports whether a file was deleted.
func (s *FileStore) Delete(name string) (bool, error) {
	path := s.PathFor(name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat role file: %w", err)
	}
	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("failed to delete role file: %w", err)
	}
	return true, nil
}

// PathFor resolves a role name to its file path inside the store. The name
// is slugified first, so the display name and the file stem both resolve to
// the same file.
func (s *FileStore) PathFor(name string) string {
	name = strings.TrimSuffix(name, ".json")
	return filepath.Join(s.dir, Slug(name)+".json")
}

// Slug converts a role name to its file stem: lower case, spaces to dashes.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}
