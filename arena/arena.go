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

// Package arena implements a per-stripe bump allocator: a memory context
// whose Reset frees all stripe-local allocations (block buffers, skip
// nodes, min/max deep copies) in one shot, rather than relying on
// per-object garbage collection.
package arena

// Arena is a bump allocator made of fixed-size chunks. It is not safe
// for concurrent use; callers are expected to drive it from a single
// writer goroutine.
type Arena struct {
	chunkSize int
	chunks    [][]byte
	cur       []byte
}

// New creates an Arena that allocates in chunks of at least chunkSize
// bytes.
func New(chunkSize int) *Arena {
	if chunkSize < 4096 {
		chunkSize = 4096
	}
	return &Arena{chunkSize: chunkSize}
}

// Alloc returns n zeroed bytes backed by the arena. The returned slice is
// valid only until the next call to Reset.
func (a *Arena) Alloc(n int) []byte {
	if n == 0 {
		return nil
	}
	if len(a.cur) < n {
		size := a.chunkSize
		if n > size {
			size = n
		}
		a.cur = make([]byte, size)
		a.chunks = append(a.chunks, a.cur)
	}
	out := a.cur[:n:n]
	a.cur = a.cur[n:]
	return out
}

// Copy returns an arena-backed duplicate of p, so the result outlives
// whatever buffer p came from.
func (a *Arena) Copy(p []byte) []byte {
	if p == nil {
		return nil
	}
	dst := a.Alloc(len(p))
	copy(dst, p)
	return dst
}

// Reset releases every allocation made since the arena was created or
// last reset. Previously returned slices must not be used afterward.
func (a *Arena) Reset() {
	a.chunks = a.chunks[:0]
	a.cur = nil
}

// Chunks reports how many backing chunks are currently allocated; it
// exists for tests that want to observe the arena's batching behavior.
func (a *Arena) Chunks() int { return len(a.chunks) }
