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
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
)

// 🔑 KeyLength is the required length of a key, in characters.
const KeyLength = 18

// ⚔️ ConflictMode decides where transformed output is placed
type ConflictMode int

const (
	Overwrite  ConflictMode = iota // replace the original file in place
	AddCounter                     // write <base>_<n><.ext> into the output folder
)

// String returns a string representation of ConflictMode
func (m ConflictMode) String() string {
	switch m {
	case Overwrite:
		return "overwrite"
	case AddCounter:
		return "add_counter"
	default:
		return "unknown"
	}
}

// ParseConflictMode parses the names produced by ConflictMode.String
func ParseConflictMode(s string) (ConflictMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "overwrite":
		return Overwrite, nil
	case "add_counter", "add-counter", "counter":
		return AddCounter, nil
	default:
		return Overwrite, errors.Errorf("unknown conflict mode %q", s)
	}
}

// ⏱️ TreatmentMode decides whether discovery runs once or on a timer
type TreatmentMode int

const (
	OneTime TreatmentMode = iota
	Timer
)

// String returns a string representation of TreatmentMode
func (m TreatmentMode) String() string {
	switch m {
	case OneTime:
		return "one_time"
	case Timer:
		return "timer"
	default:
		return "unknown"
	}
}

// ParseTreatmentMode parses the names produced by TreatmentMode.String
func ParseTreatmentMode(s string) (TreatmentMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "one_time", "one-time", "once":
		return OneTime, nil
	case "timer":
		return Timer, nil
	default:
		return OneTime, errors.Errorf("unknown treatment mode %q", s)
	}
}

// Treatment pairs a mode with its timer interval
type Treatment struct {
	Mode            TreatmentMode
	IntervalSeconds uint
}

// ❌ IncorrectInput names a parameter that failed validation
type IncorrectInput int

const (
	InvalidKey IncorrectInput = iota
	InvalidMask
	InvalidInputFolder
	InvalidOutputFolder
)

// String returns a string representation of IncorrectInput
func (i IncorrectInput) String() string {
	switch i {
	case InvalidKey:
		return "key"
	case InvalidMask:
		return "mask"
	case InvalidInputFolder:
		return "input_folder"
	case InvalidOutputFolder:
		return "output_folder"
	default:
		return "unknown"
	}
}

// 📋 ValidationResult is the ordered set of violated parameters. Empty means valid.
type ValidationResult []IncorrectInput

// OK reports whether no parameter was rejected
func (r ValidationResult) OK() bool {
	return len(r) == 0
}

// Contains reports whether in was rejected
func (r ValidationResult) Contains(in IncorrectInput) bool {
	for _, v := range r {
		if v == in {
			return true
		}
	}
	return false
}

func (r ValidationResult) String() string {
	names := make([]string, len(r))
	for i, v := range r {
		names[i] = v.String()
	}
	return strings.Join(names, ", ")
}

// Err returns nil for a valid result, otherwise an error listing the fields
func (r ValidationResult) Err() error {
	if r.OK() {
		return nil
	}
	return errors.Errorf("invalid parameters: %s", r.String())
}

// 📚 RunParameters is the immutable parameter bundle of one run
type RunParameters struct {
	Key          string
	DeleteSource bool
	Conflict     ConflictMode
	Treatment    Treatment
	OutputFolder string
	InputFolder  string
	Masks        []string
}

// 🏭 NewRunParameters builds parameters from raw form values, splitting mask
// into tokens with ParseMasks.
func NewRunParameters(key string, deleteSource bool, conflict ConflictMode, treatment Treatment, outputFolder, inputFolder, mask string) RunParameters {
	return RunParameters{
		Key:          key,
		DeleteSource: deleteSource,
		Conflict:     conflict,
		Treatment:    treatment,
		OutputFolder: outputFolder,
		InputFolder:  inputFolder,
		Masks:        ParseMasks(mask),
	}
}

// 🔍 Validate checks every field and returns the violations in check order:
// output folder, input folder, key, mask.
func (p RunParameters) Validate() ValidationResult {
	var res ValidationResult

	if !isDir(p.OutputFolder) {
		res = append(res, InvalidOutputFolder)
	}
	if !isDir(p.InputFolder) {
		res = append(res, InvalidInputFolder)
	}
	if utf8.RuneCountInString(p.Key) != KeyLength {
		res = append(res, InvalidKey)
	}
	if len(p.Masks) == 0 {
		res = append(res, InvalidMask)
	}

	return res
}

// Interval returns the timer period, never less than one second
func (t Treatment) Interval() uint {
	if t.IntervalSeconds == 0 {
		return 1
	}
	return t.IntervalSeconds
}

// 📝 String returns a string representation of the parameters, with the key hidden
func (p RunParameters) String() string {
	mode := p.Treatment.Mode.String()
	if p.Treatment.Mode == Timer {
		mode = fmt.Sprintf("%s/%ds", mode, p.Treatment.Interval())
	}
	return fmt.Sprintf("%s [%s] -> %s (%s, %s, delete=%t)",
		p.InputFolder, strings.Join(p.Masks, ","), p.OutputFolder, p.Conflict, mode, p.DeleteSource)
}

func isDir(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fi.IsDir()
}
