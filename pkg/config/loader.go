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

package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for run file parsers
type Parser interface {
	// 📝 Parse parses the run file from bytes
	Parse(ctx context.Context, data []byte) (*File, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📄 File is the on-disk form of a run. Field values mirror the CLI flags.
type File struct {
	Key             string `json:"key" yaml:"key" hcl:"key,optional"`
	DeleteSource    bool   `json:"delete_source,omitempty" yaml:"delete_source,omitempty" hcl:"delete_source,optional"`
	Conflict        string `json:"conflict,omitempty" yaml:"conflict,omitempty" hcl:"conflict,optional"`
	Mode            string `json:"mode,omitempty" yaml:"mode,omitempty" hcl:"mode,optional"`
	IntervalSeconds uint   `json:"interval_seconds,omitempty" yaml:"interval_seconds,omitempty" hcl:"interval_seconds,optional"`
	InputFolder     string `json:"input_folder" yaml:"input_folder" hcl:"input_folder,optional"`
	OutputFolder    string `json:"output_folder" yaml:"output_folder" hcl:"output_folder,optional"`
	Mask            string `json:"mask" yaml:"mask" hcl:"mask,optional"`

	location string
}

// Location returns the path the file was loaded from
func (f *File) Location() string {
	return f.location
}

// 🎯 Load reads a run file, picking the parser by extension. Folder paths
// relative to the file are resolved against the file's directory.
func Load(ctx context.Context, path string) (*File, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading run file")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading run file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	f, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing run file: %w", err)
	}

	f.location = path
	dir := filepath.Dir(path)
	if f.InputFolder != "" && !filepath.IsAbs(f.InputFolder) {
		f.InputFolder = filepath.Join(dir, f.InputFolder)
	}
	if f.OutputFolder != "" && !filepath.IsAbs(f.OutputFolder) {
		f.OutputFolder = filepath.Join(dir, f.OutputFolder)
	}

	return f, nil
}

// 🔧 Parameters converts the file into run parameters. Only the mode names are
// checked here; everything else is left to RunParameters.Validate.
func (f *File) Parameters() (RunParameters, error) {
	conflict, err := ParseConflictMode(f.Conflict)
	if err != nil {
		return RunParameters{}, err
	}
	mode, err := ParseTreatmentMode(f.Mode)
	if err != nil {
		return RunParameters{}, err
	}

	return NewRunParameters(
		f.Key,
		f.DeleteSource,
		conflict,
		Treatment{Mode: mode, IntervalSeconds: f.IntervalSeconds},
		f.OutputFolder,
		f.InputFolder,
		f.Mask,
	), nil
}
