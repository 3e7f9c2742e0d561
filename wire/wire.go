// Copyright (C) 2024 Coldeck, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package wire is the concrete metadata serializer this writer core
// drives: a minimal, self-contained uvarint/TLV encoder over a growable
// backing array, trimmed down to exactly what skip nodes and footers
// need — a handful of scalar fields and byte strings, not a general
// self-describing object model.
package wire

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// Buffer accumulates an encoded record. The zero value is ready to use.
type Buffer struct {
	buf []byte
}

// Bytes returns the buffer's current contents.
func (b *Buffer) Bytes() []byte { return b.buf }

// Reset empties the buffer for reuse.
func (b *Buffer) Reset() { b.buf = b.buf[:0] }

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int { return len(b.buf) }

// uvsize returns the number of bytes needed to uvarint-encode v.
func uvsize(v uint64) int {
	return (bits.Len64(v|1) + 6) / 7
}

func (b *Buffer) grow(n int) []byte {
	off := len(b.buf)
	if cap(b.buf)-off >= n {
		b.buf = b.buf[:off+n]
	} else {
		nb := make([]byte, off+n, n+2*off)
		copy(nb, b.buf)
		b.buf = nb
	}
	return b.buf[off:]
}

// PutUvarint appends v as a little-endian base-128 varint.
func (b *Buffer) PutUvarint(v uint64) {
	dst := b.grow(uvsize(v))
	n := binary.PutUvarint(dst, v)
	b.buf = b.buf[:len(b.buf)-len(dst)+n]
}

// PutInt64 appends a zig-zag encoded varint, so negative values (none
// are expected for the file offsets this writer encodes with it)
// round-trip exactly.
func (b *Buffer) PutInt64(v int64) {
	b.PutUvarint(zigzag(v))
}

func zigzag(v int64) uint64   { return uint64(v<<1) ^ uint64(v>>63) }
func unzigzag(v uint64) int64 { return int64(v>>1) ^ -int64(v&1) }

// PutBool appends a single byte, 1 or 0.
func (b *Buffer) PutBool(v bool) {
	if v {
		b.buf = append(b.buf, 1)
	} else {
		b.buf = append(b.buf, 0)
	}
}

// PutBytes appends a length-prefixed byte string.
func (b *Buffer) PutBytes(p []byte) {
	b.PutUvarint(uint64(len(p)))
	copy(b.grow(len(p)), p)
}

// PutString appends a length-prefixed string.
func (b *Buffer) PutString(s string) { b.PutBytes([]byte(s)) }

// Reader decodes a Buffer's output in the order it was written.
type Reader struct {
	buf []byte
	off int
}

// NewReader constructs a Reader over buf starting at offset 0.
func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

// Remaining returns how many bytes are left to decode.
func (r *Reader) Remaining() int { return len(r.buf) - r.off }

func (r *Reader) Uvarint() (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.off:])
	if n <= 0 {
		return 0, fmt.Errorf("wire: truncated varint at offset %d", r.off)
	}
	r.off += n
	return v, nil
}

func (r *Reader) Int64() (int64, error) {
	v, err := r.Uvarint()
	if err != nil {
		return 0, err
	}
	return unzigzag(v), nil
}

func (r *Reader) Bool() (bool, error) {
	if r.off >= len(r.buf) {
		return false, fmt.Errorf("wire: truncated bool at offset %d", r.off)
	}
	v := r.buf[r.off] != 0
	r.off++
	return v, nil
}

func (r *Reader) Bytes() ([]byte, error) {
	n, err := r.Uvarint()
	if err != nil {
		return nil, err
	}
	if uint64(r.off)+n > uint64(len(r.buf)) {
		return nil, fmt.Errorf("wire: truncated byte string at offset %d (want %d bytes)", r.off, n)
	}
	out := r.buf[r.off : r.off+int(n)]
	r.off += int(n)
	return out, nil
}

func (r *Reader) String() (string, error) {
	b, err := r.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
