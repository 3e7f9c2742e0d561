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

package datum

import (
	"encoding/binary"
	"testing"

	"github.com/coldeck-io/coldeck/schema"
)

func TestSerializeFixedByValue(t *testing.T) {
	c := &schema.Column{Name: "i32", Length: 4, ByValue: true, Align: schema.Align4}
	var buf []byte
	v := schema.Value{Inline: []byte{42, 0, 0, 0}}
	n, err := Serialize(&buf, c, v)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 || len(buf) != 4 {
		t.Fatalf("got n=%d len=%d", n, len(buf))
	}
	if buf[0] != 42 {
		t.Fatalf("bad payload: %v", buf)
	}
}

func TestSerializeFixedPadding(t *testing.T) {
	// length 3 aligned to 8 should zero-pad the remaining 5 bytes.
	c := &schema.Column{Name: "odd", Length: 3, ByValue: false, Align: schema.Align8}
	var buf []byte
	v := schema.Value{Bytes: []byte{1, 2, 3}}
	n, err := Serialize(&buf, c, v)
	if err != nil {
		t.Fatal(err)
	}
	if n != 8 {
		t.Fatalf("expected aligned size 8, got %d", n)
	}
	for i := 3; i < 8; i++ {
		if buf[i] != 0 {
			t.Fatalf("padding byte %d not zero: %v", i, buf)
		}
	}
}

func TestSerializeVariable(t *testing.T) {
	c := &schema.Column{Name: "text", Length: schema.Variable, Align: schema.Align1}
	payload := []byte("hello")
	header := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(header, uint32(len(header)))
	copy(header[4:], payload)

	var buf []byte
	n, err := Serialize(&buf, c, schema.Value{Bytes: header})
	if err != nil {
		t.Fatal(err)
	}
	if n != len(header) {
		t.Fatalf("expected %d bytes, got %d", len(header), n)
	}
	if string(buf[4:]) != "hello" {
		t.Fatalf("payload mismatch: %q", buf[4:])
	}
}

func TestSerializeCString(t *testing.T) {
	c := &schema.Column{Name: "s", Length: schema.CString, Align: schema.Align2}
	var buf []byte
	n, err := Serialize(&buf, c, schema.Value{Bytes: []byte("hi\x00trailing-garbage")})
	if err != nil {
		t.Fatal(err)
	}
	// "hi\0" is 3 bytes, aligned to 2 -> 4.
	if n != 4 {
		t.Fatalf("expected 4, got %d", n)
	}
	if string(buf[:3]) != "hi\x00" {
		t.Fatalf("bad copy: %q", buf[:3])
	}
}

func TestPackUnpackBits(t *testing.T) {
	exists := []bool{true, false, true, false, false, true, false, true, true}
	packed := PackBits(exists)
	if len(packed) != 2 {
		t.Fatalf("expected 2 bytes for 9 bits, got %d", len(packed))
	}
	// 0b1010 0101 = bits 0,2,5,7 set -> byte0 = 1+4+32+128 = 165
	if packed[0] != 0b10100101 {
		t.Fatalf("packed[0] = %08b, want %08b", packed[0], 0b10100101)
	}
	got, err := UnpackBits(packed, len(exists))
	if err != nil {
		t.Fatal(err)
	}
	for i := range exists {
		if got[i] != exists[i] {
			t.Fatalf("bit %d: got %v want %v", i, got[i], exists[i])
		}
	}
}
