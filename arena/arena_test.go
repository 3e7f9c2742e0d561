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

package arena

import "testing"

func TestAllocZeroed(t *testing.T) {
	a := New(64)
	b := a.Alloc(16)
	for i, c := range b {
		if c != 0 {
			t.Fatalf("byte %d not zero", i)
		}
	}
}

func TestCopyIsIndependent(t *testing.T) {
	a := New(64)
	src := []byte("hello")
	dup := a.Copy(src)
	src[0] = 'X'
	if string(dup) != "hello" {
		t.Fatalf("copy was aliased: %q", dup)
	}
}

func TestResetReclaimsChunks(t *testing.T) {
	a := New(16)
	for i := 0; i < 10; i++ {
		a.Alloc(16)
	}
	if a.Chunks() == 0 {
		t.Fatal("expected chunks to be allocated")
	}
	a.Reset()
	if a.Chunks() != 0 {
		t.Fatalf("expected 0 chunks after reset, got %d", a.Chunks())
	}
	// arena remains usable after reset.
	b := a.Alloc(8)
	if len(b) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(b))
	}
}

func TestAllocLargerThanChunk(t *testing.T) {
	a := New(16)
	b := a.Alloc(100)
	if len(b) != 100 {
		t.Fatalf("expected 100 bytes, got %d", len(b))
	}
}
