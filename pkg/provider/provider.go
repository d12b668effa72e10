// Copyright 2025 walteh LLC
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

package provider

import (
	"context"
	"path/filepath"
	"strings"
	"time"
)

// 📄 DiscoveredFile is a snapshot of one directory entry taken at discovery.
// A later discovery produces new, unrelated values.
type DiscoveredFile struct {
	Name    string    // base name
	Path    string    // absolute path
	Size    int64     // size in bytes at discovery
	Suffix  string    // last extension, without the dot
	ModTime time.Time // modification time at discovery
}

// 🔌 Provider lists the files of one folder that match a set of masks
type Provider interface {
	// 📂 ListFiles returns the matching regular files directly inside dir
	ListFiles(ctx context.Context, dir string, masks []string) ([]DiscoveredFile, error)
}

// Suffix returns the text after the last dot of name, or "" when there is none
func Suffix(name string) string {
	return strings.TrimPrefix(filepath.Ext(name), ".")
}

// CompleteBaseName returns name without its last extension
func CompleteBaseName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

const tempMarker = ".xorbatch-"

// 🧹 TempPattern is the os.CreateTemp pattern for a sibling temp file of name.
// Files created with it are never reported by ListFiles.
func TempPattern(name string) string {
	return "." + name + tempMarker + "*.tmp"
}

// IsTemp reports whether name was produced from TempPattern
func IsTemp(name string) bool {
	return strings.HasPrefix(name, ".") && strings.Contains(name, tempMarker) && strings.HasSuffix(name, ".tmp")
}
