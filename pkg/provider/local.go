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
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📁 Local lists files of a local folder, non-recursively
type Local struct{}

// 🏭 NewLocal creates a local folder provider
func NewLocal() *Local {
	return &Local{}
}

var _ Provider = (*Local)(nil)

// 📂 ListFiles returns matching regular files in the order the directory
// yields them. The order is not sorted and may differ between calls.
func (l *Local) ListFiles(ctx context.Context, dir string, masks []string) ([]DiscoveredFile, error) {
	logger := zerolog.Ctx(ctx)

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Errorf("resolving folder %s: %w", dir, err)
	}

	d, err := os.Open(absDir)
	if err != nil {
		return nil, errors.Errorf("opening folder: %w", err)
	}
	defer d.Close()

	entries, err := d.ReadDir(-1)
	if err != nil {
		return nil, errors.Errorf("reading folder: %w", err)
	}

	files := make([]DiscoveredFile, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("listing files: %w", err)
		}

		name := e.Name()
		if IsTemp(name) || !MatchAny(masks, name) {
			continue
		}

		path := filepath.Join(absDir, name)
		// Stat follows symlinks, so a link to a regular file is listed like one
		info, err := os.Stat(path)
		if err != nil {
			logger.Debug().Str("path", path).Err(err).Msg("skipping unreadable entry")
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		files = append(files, DiscoveredFile{
			Name:    name,
			Path:    path,
			Size:    info.Size(),
			Suffix:  Suffix(name),
			ModTime: info.ModTime(),
		})
	}

	logger.Debug().Str("folder", absDir).Int("matched", len(files)).Int("entries", len(entries)).Msg("listed folder")
	return files, nil
}

// 🎯 MatchAny reports whether name matches at least one mask
func MatchAny(masks []string, name string) bool {
	for _, m := range masks {
		if Match(m, name) {
			return true
		}
	}
	return false
}

// GlobPrefix marks a mask that is matched as a doublestar pattern
const GlobPrefix = "glob:"

// 🔍 Match compares one mask against a file name, case-sensitively. A mask
// matches when it equals the name, or when it equals the name's suffix after
// dropping a leading "*." (or "."). Only masks written as "glob:<pattern>",
// such as "glob:log-??.txt", are matched as doublestar patterns.
func Match(mask, name string) bool {
	if mask == "" {
		return false
	}
	if pattern, ok := strings.CutPrefix(mask, GlobPrefix); ok {
		if pattern == "" {
			return false
		}
		matched, err := doublestar.Match(pattern, name)
		return err == nil && matched
	}
	if mask == name {
		return true
	}

	ext := strings.TrimPrefix(mask, "*.")
	if ext == mask {
		ext = strings.TrimPrefix(mask, ".")
	}
	return ext != "" && ext == Suffix(name)
}
