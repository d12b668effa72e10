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

// Package xorblock implements the fixed-period keyed XOR transform applied to
// file contents. It is an obfuscation format kept for compatibility with
// existing output, not a cipher: do not use it to protect secrets.
package xorblock

import (
	"io"

	"gitlab.com/tozd/go/errors"
)

// 🔑 Period is the number of key bytes cycled over the data.
const Period = 8

// 📦 DefaultBlockSize is the read/write chunk used when streaming files.
const DefaultBlockSize = 4 * 1024 * 1024

// 🔑 KeyBytes returns the first Period bytes of the UTF-8 encoding of key.
// The remaining characters of a key take no part in the transform.
func KeyBytes(key string) ([Period]byte, error) {
	var kb [Period]byte
	if len(key) < Period {
		return kb, errors.Errorf("key encodes to %d bytes, need at least %d", len(key), Period)
	}
	copy(kb[:], key[:Period])
	return kb, nil
}

// 🔐 Cipher applies the XOR stream for one key.
type Cipher struct {
	key [Period]byte
}

// 🏭 New creates a cipher from a key string
func New(key string) (*Cipher, error) {
	kb, err := KeyBytes(key)
	if err != nil {
		return nil, err
	}
	return &Cipher{key: kb}, nil
}

// 🔄 Apply transforms block in place. offset is the absolute position of
// block[0] in the stream, so blocks of any size line up with the key period.
func (c *Cipher) Apply(block []byte, offset int64) {
	phase := int(offset % Period)
	for i := range block {
		block[i] ^= c.key[(phase+i)%Period]
	}
}

// 🌊 Reader wraps r and transforms everything read through it.
type Reader struct {
	c      *Cipher
	r      io.Reader
	offset int64
}

// NewReader returns a Reader transforming r from offset zero.
func (c *Cipher) NewReader(r io.Reader) *Reader {
	return &Reader{c: c, r: r}
}

func (x *Reader) Read(p []byte) (int, error) {
	n, err := x.r.Read(p)
	if n > 0 {
		x.c.Apply(p[:n], x.offset)
		x.offset += int64(n)
	}
	return n, err
}

// Offset reports how many bytes have been transformed so far.
func (x *Reader) Offset() int64 {
	return x.offset
}
