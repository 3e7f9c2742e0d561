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

// Package datum serializes one typed value into a growable byte buffer
// with correct alignment, and packs a row's presence flags into a
// bitmap.
//
// The growable buffer appends into the backing array's spare capacity,
// reallocating with headroom when it runs out, rather than repeated
// single-byte appends.
package datum

import (
	"encoding/binary"
	"fmt"

	"github.com/coldeck-io/coldeck/schema"
)

// grow returns n fresh zero-filled bytes appended to *buf, reusing spare
// capacity where possible.
func grow(buf *[]byte, n int) []byte {
	off := len(*buf)
	if cap(*buf)-off >= n {
		*buf = (*buf)[:off+n]
	} else {
		nb := make([]byte, off+n, n+2*off)
		copy(nb, *buf)
		*buf = nb
	}
	for i := off; i < off+n; i++ {
		(*buf)[i] = 0
	}
	return (*buf)[off:]
}

// Serialize appends one non-null value of column c to *buf. It returns
// the number of bytes appended (including alignment padding), or an
// error if v is malformed for c.
func Serialize(buf *[]byte, c *schema.Column, v schema.Value) (int, error) {
	switch {
	case c.Length > 0:
		return serializeFixed(buf, c, v)
	case c.Length == schema.Variable:
		return serializeVariable(buf, c, v)
	case c.Length == schema.CString:
		return serializeCString(buf, c, v)
	default:
		return 0, fmt.Errorf("datum: column %q has invalid length %d", c.Name, c.Length)
	}
}

func serializeFixed(buf *[]byte, c *schema.Column, v schema.Value) (int, error) {
	aligned := schema.AlignUp(c.Length, c.Align)
	dst := grow(buf, aligned)
	if c.ByValue {
		if len(v.Inline) > c.Length {
			return 0, fmt.Errorf("datum: column %q: inline value longer than column length", c.Name)
		}
		copy(dst, v.Inline)
	} else {
		if len(v.Bytes) != c.Length {
			return 0, fmt.Errorf("datum: column %q: expected %d bytes, got %d", c.Name, c.Length, len(v.Bytes))
		}
		copy(dst, v.Bytes)
	}
	// remaining bytes in dst (padding) are already zero from grow.
	return aligned, nil
}

// serializeVariable handles Length == schema.Variable: v.Bytes begins
// with a little-endian uint32 total-length header, the header itself
// included in that count.
func serializeVariable(buf *[]byte, c *schema.Column, v schema.Value) (int, error) {
	if len(v.Bytes) < 4 {
		return 0, fmt.Errorf("datum: column %q: variable datum missing length header", c.Name)
	}
	total := int(binary.LittleEndian.Uint32(v.Bytes[:4]))
	if total > len(v.Bytes) {
		return 0, fmt.Errorf("datum: column %q: length header %d exceeds datum size %d", c.Name, total, len(v.Bytes))
	}
	aligned := schema.AlignUp(total, c.Align)
	dst := grow(buf, aligned)
	copy(dst, v.Bytes[:total])
	return aligned, nil
}

// serializeCString handles Length == schema.CString: v.Bytes is copied
// through (and including) its first NUL byte.
func serializeCString(buf *[]byte, c *schema.Column, v schema.Value) (int, error) {
	n := -1
	for i, b := range v.Bytes {
		if b == 0 {
			n = i + 1
			break
		}
	}
	if n < 0 {
		return 0, fmt.Errorf("datum: column %q: cstring datum missing NUL terminator", c.Name)
	}
	aligned := schema.AlignUp(n, c.Align)
	dst := grow(buf, aligned)
	copy(dst, v.Bytes[:n])
	return aligned, nil
}

// PackBits packs presence flags into ceil(n/8) bytes, LSB-first within a
// byte (bit i of byte i/8 holds exists[i]).
func PackBits(exists []bool) []byte {
	n := len(exists)
	out := make([]byte, (n+7)/8)
	for i, e := range exists {
		if e {
			out[i/8] |= 1 << (uint(i) % 8)
		}
	}
	return out
}

// UnpackBits is the inverse of PackBits, decoding exactly n presence
// flags from a packed bitmap. It is used by this module's own tests
// since the symmetric reader is out of scope for the writer core.
func UnpackBits(packed []byte, n int) ([]bool, error) {
	if len(packed) < (n+7)/8 {
		return nil, fmt.Errorf("datum: bitmap too short for %d bits", n)
	}
	out := make([]bool, n)
	for i := range out {
		out[i] = packed[i/8]&(1<<(uint(i)%8)) != 0
	}
	return out, nil
}
