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

package transform

import (
	"fmt"
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/xorbatch/pkg/config"
	"github.com/walteh/xorbatch/pkg/provider"
	"github.com/walteh/xorbatch/pkg/status"
)

// maxCounter bounds the AddCounter search so a broken folder cannot spin forever
const maxCounter = 1 << 20

// output is an opened destination. For Overwrite, path is a temp sibling of
// target, the source with symlinks resolved, and replaces it on success.
type output struct {
	file   *os.File
	path   string
	temp   bool
	target string
}

func (w *Worker) openOutput(in *os.File) (*output, error) {
	file := w.item.File

	if w.opts.Conflict == config.Overwrite {
		// a linked source is replaced at its target so the link keeps working
		target, err := filepath.EvalSymlinks(file.Path)
		if err != nil {
			return nil, errors.Errorf("resolving %s: %w", file.Path, err)
		}

		f, err := os.CreateTemp(filepath.Dir(target), provider.TempPattern(filepath.Base(target)))
		if err != nil {
			return nil, errors.Errorf("creating temp file: %w", err)
		}
		if info, err := in.Stat(); err == nil {
			// keep the source's permission bits once renamed over it
			if err := f.Chmod(info.Mode().Perm()); err != nil {
				w.logger.Debug().Err(err).Str("temp", f.Name()).Msg("could not copy permissions to temp file")
			}
		}
		return &output{file: f, path: f.Name(), temp: true, target: target}, nil
	}

	f, err := ClaimName(w.opts.OutputFolder, file.Name)
	if err != nil {
		return nil, err
	}
	return &output{file: f, path: f.Name()}, nil
}

// 🏷️ ClaimName creates a new file in dir named after name, adding a counter
// before the extension while the name is taken: a.txt, a_1.txt, a_2.txt...
// The create is exclusive so two workers never receive the same name.
func ClaimName(dir, name string) (*os.File, error) {
	base := provider.CompleteBaseName(name)
	suffix := provider.Suffix(name)

	candidate := name
	for n := 1; n <= maxCounter; n++ {
		path := filepath.Join(dir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, errors.Errorf("creating %s: %w", path, err)
		}
		candidate = CounterName(base, suffix, n)
	}
	return nil, errors.Errorf("no free name for %s in %s", name, dir)
}

// CounterName builds the n-th alternative name for a file
func CounterName(base, suffix string, n int) string {
	if suffix == "" {
		return fmt.Sprintf("%s_%d", base, n)
	}
	return fmt.Sprintf("%s_%d.%s", base, n, suffix)
}

// place finishes a successful transform: the temp file replaces the source,
// or the source is removed when asked to. Failures here are logged and do not
// undo the written output.
func (w *Worker) place(out *output) {
	src := w.item.File.Path

	if out.temp {
		if err := os.Rename(out.path, out.target); err != nil {
			w.log(status.LevelError, err, "Failed to replace %s, output kept at: %s", out.target, out.path)
			return
		}
		w.logger.Debug().Str("target", out.target).Msg("replaced source in place")
		return
	}

	if !w.opts.DeleteSource {
		return
	}
	if err := os.Remove(src); err != nil {
		w.log(status.LevelWarn, err, "Failed to delete input file: %s", src)
		return
	}
	w.logger.Debug().Msg("deleted source")
}
