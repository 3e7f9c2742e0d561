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

package stats

import (
	"bytes"
	"testing"
)

func byteCmp(_ []byte, a, b []byte) int { return bytes.Compare(a, b) }

func dup(p []byte) []byte {
	c := make([]byte, len(p))
	copy(c, p)
	return c
}

func TestUpdateTracksMinMax(t *testing.T) {
	var m MinMax
	vals := [][]byte{[]byte("b"), []byte("a"), []byte("c"), []byte("a")}
	for _, v := range vals {
		m.Update(byteCmp, nil, v, dup)
	}
	if !m.Has || string(m.Min) != "a" || string(m.Max) != "c" {
		t.Fatalf("got min=%q max=%q has=%v", m.Min, m.Max, m.Has)
	}
}

func TestUpdateNilComparator(t *testing.T) {
	var m MinMax
	m.Update(nil, nil, []byte("x"), dup)
	if m.Has {
		t.Fatal("expected Has=false when comparator is nil")
	}
}

func TestUpdateDeepCopyOutlivesSource(t *testing.T) {
	var m MinMax
	src := []byte("a")
	m.Update(byteCmp, nil, src, dup)
	src[0] = 'z' // simulate caller recycling its buffer
	if string(m.Min) != "a" {
		t.Fatalf("min was not deep-copied: %q", m.Min)
	}
}

func TestCovers(t *testing.T) {
	var m MinMax
	for _, v := range [][]byte{[]byte("b"), []byte("d")} {
		m.Update(byteCmp, nil, v, dup)
	}
	if !m.Covers(byteCmp, nil, []byte("c")) {
		t.Fatal("expected c to be covered by [b,d]")
	}
	if m.Covers(byteCmp, nil, []byte("z")) {
		t.Fatal("expected z to not be covered by [b,d]")
	}
}
