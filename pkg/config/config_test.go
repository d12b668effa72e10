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
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validKey = "0x0123456789ABCDEF"

func TestParseMasks(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "single", in: "*.txt", want: []string{"*.txt"}},
		{name: "comma", in: "txt,bin", want: []string{"txt", "bin"}},
		{name: "mixed_delimiters", in: " txt ;bin,, dat\tlog\n", want: []string{"txt", "bin", "dat", "log"}},
		{name: "duplicates_keep_first", in: "txt bin txt", want: []string{"txt", "bin"}},
		{name: "empty", in: "", want: []string{}},
		{name: "only_delimiters", in: " ,;; ", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseMasks(tt.in))
		})
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing")

	tests := []struct {
		name   string
		params RunParameters
		want   ValidationResult
	}{
		{
			name:   "valid",
			params: NewRunParameters(validKey, false, Overwrite, Treatment{}, dir, dir, "*.txt"),
			want:   nil,
		},
		{
			name:   "short_key",
			params: NewRunParameters("0x01", false, Overwrite, Treatment{}, dir, dir, "*.txt"),
			want:   ValidationResult{InvalidKey},
		},
		{
			name:   "long_key",
			params: NewRunParameters(validKey+"0", false, Overwrite, Treatment{}, dir, dir, "*.txt"),
			want:   ValidationResult{InvalidKey},
		},
		{
			name:   "key_length_counts_characters",
			params: NewRunParameters(strings.Repeat("é", KeyLength), false, Overwrite, Treatment{}, dir, dir, "*.txt"),
			want:   nil,
		},
		{
			name:   "empty_mask",
			params: NewRunParameters(validKey, false, Overwrite, Treatment{}, dir, dir, " ;, "),
			want:   ValidationResult{InvalidMask},
		},
		{
			name:   "everything_wrong_in_check_order",
			params: NewRunParameters("", false, Overwrite, Treatment{}, missing, "", ""),
			want:   ValidationResult{InvalidOutputFolder, InvalidInputFolder, InvalidKey, InvalidMask},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.params.Validate()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want) == 0, got.OK())
		})
	}
}

func TestValidateRejectsFileAsFolder(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	writeFile(t, file, "x")

	res := NewRunParameters(validKey, false, Overwrite, Treatment{}, file, dir, "txt").Validate()
	assert.Equal(t, ValidationResult{InvalidOutputFolder}, res)
	assert.True(t, res.Contains(InvalidOutputFolder))
	assert.False(t, res.Contains(InvalidKey))
	require.Error(t, res.Err())
	assert.Contains(t, res.Err().Error(), "output_folder")
}

func TestModes(t *testing.T) {
	c, err := ParseConflictMode("add_counter")
	require.NoError(t, err)
	assert.Equal(t, AddCounter, c)
	assert.Equal(t, "add_counter", c.String())

	c, err = ParseConflictMode("")
	require.NoError(t, err)
	assert.Equal(t, Overwrite, c)

	_, err = ParseConflictMode("merge")
	require.Error(t, err)

	m, err := ParseTreatmentMode("timer")
	require.NoError(t, err)
	assert.Equal(t, Timer, m)

	_, err = ParseTreatmentMode("hourly")
	require.Error(t, err)

	assert.Equal(t, uint(1), Treatment{Mode: Timer}.Interval())
	assert.Equal(t, uint(30), Treatment{Mode: Timer, IntervalSeconds: 30}.Interval())
}

func TestRunParametersStringHidesKey(t *testing.T) {
	p := NewRunParameters(validKey, true, AddCounter, Treatment{Mode: Timer, IntervalSeconds: 5}, "/out", "/in", "txt;bin")
	s := p.String()
	assert.NotContains(t, s, validKey)
	assert.Equal(t, "/in [txt,bin] -> /out (add_counter, timer/5s, delete=true)", s)
}
