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

// Package pagefile implements the paged fork writer: an append-mostly
// data fork and an overwrite-safe, ping-pong footer fork, both built on
// top of a page-granular PageManager collaborator — the host's buffer
// manager, modeled here only as an interface rather than reimplemented.
package pagefile

import "encoding/binary"

// PageSize is the fixed size of a page.
const PageSize = 8192

// headerSize is the fixed per-page header: a single uint32 low-water-mark
// recording how many payload bytes are in use.
const headerSize = 4

// PayloadCapacity is D = P - H, the usable bytes per page.
const PayloadCapacity = PageSize - headerSize

// Page is one fixed-size page: a header (the low-water-mark) plus a
// payload region. The zero value is an empty page, the same one NewPage
// returns.
type Page struct {
	buf [PageSize]byte
}

// NewPage returns a freshly initialized (empty) page.
func NewPage() Page {
	return Page{}
}

// Lower returns the page's low-water-mark: the number of payload bytes
// currently in use.
func (p *Page) Lower() int {
	return int(binary.LittleEndian.Uint32(p.buf[:headerSize]))
}

// setLower updates the low-water-mark.
func (p *Page) setLower(n int) {
	binary.LittleEndian.PutUint32(p.buf[:headerSize], uint32(n))
}

// Payload returns the in-use portion of the page's payload region.
func (p *Page) Payload() []byte {
	return p.buf[headerSize : headerSize+p.Lower()]
}

// Remaining returns how many more payload bytes the page can hold.
func (p *Page) Remaining() int {
	return PayloadCapacity - p.Lower()
}

// Append copies as many bytes of data as fit into the page's remaining
// capacity, advances the low-water-mark, and returns the number of bytes
// copied.
func (p *Page) Append(data []byte) int {
	n := len(data)
	if r := p.Remaining(); n > r {
		n = r
	}
	lower := p.Lower()
	copy(p.buf[headerSize+lower:headerSize+lower+n], data[:n])
	p.setLower(lower + n)
	return n
}

// Bytes returns the full fixed-size on-disk representation of the page.
func (p *Page) Bytes() []byte { return p.buf[:] }

// PageFrom reconstructs a Page from its on-disk bytes (exactly PageSize
// of them).
func PageFrom(b []byte) Page {
	var p Page
	copy(p.buf[:], b)
	return p
}
