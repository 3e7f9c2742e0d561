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

package pagefile

import (
	"fmt"

	"github.com/coldeck-io/coldeck/wire"
)

// FooterHeader is the locator stored at block 0 of the footer fork: the
// starting block and length (in blocks) of the currently-valid
// serialized footer.
type FooterHeader struct {
	StartingBlock int
	BlockCount    int
}

func encodeHeader(h FooterHeader) []byte {
	var b wire.Buffer
	b.PutUvarint(uint64(h.StartingBlock))
	b.PutUvarint(uint64(h.BlockCount))
	return b.Bytes()
}

func decodeHeader(payload []byte) (FooterHeader, error) {
	r := wire.NewReader(payload)
	start, err := r.Uvarint()
	if err != nil {
		return FooterHeader{}, err
	}
	count, err := r.Uvarint()
	if err != nil {
		return FooterHeader{}, err
	}
	return FooterHeader{StartingBlock: int(start), BlockCount: int(count)}, nil
}

// FooterForkWriter implements the footer fork: a two-location ping-pong
// region where the header page at block 0 is the single atomic commit
// point, and the previous footer bytes remain intact until the header
// swap is durable.
type FooterForkWriter struct {
	mgr     PageManager
	logging bool
}

// NewFooterForkWriter wraps mgr as a footer fork writer. logging gates
// WAL emission for the footer *body* pages; the header page is always
// logged regardless — the two policies are kept deliberately separate.
func NewFooterForkWriter(mgr PageManager, logging bool) *FooterForkWriter {
	return &FooterForkWriter{mgr: mgr, logging: logging}
}

// ReadHeader reads and decodes the current footer locator. ok is false
// if the fork is empty, or the header page fails to parse, or it parses
// to a zero starting block — all three are treated identically and
// silently make way for a fresh footer to be written.
func (w *FooterForkWriter) ReadHeader() (hdr FooterHeader, ok bool, err error) {
	if !w.mgr.Exists() {
		return FooterHeader{}, false, nil
	}
	n, err := w.mgr.BlockCount()
	if err != nil {
		return FooterHeader{}, false, fmt.Errorf("pagefile: %w", err)
	}
	if n == 0 {
		return FooterHeader{}, false, nil
	}
	p, err := w.mgr.ReadPage(0)
	if err != nil {
		return FooterHeader{}, false, fmt.Errorf("pagefile: %w", err)
	}
	hdr, perr := decodeHeader(p.Payload())
	if perr != nil || hdr.StartingBlock == 0 {
		return FooterHeader{}, false, nil
	}
	return hdr, true, nil
}

// selectStartBlock picks where the next footer write should land: reclaim
// the head (block 1) if the new footer fits strictly before the current
// range, otherwise append immediately past it.
func (w *FooterForkWriter) selectStartBlock(newBlockCount int) (int, error) {
	hdr, ok, err := w.ReadHeader()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 1, nil // cases 1 & 2: empty, unparseable, or zero starting block
	}
	if newBlockCount < hdr.StartingBlock {
		return 1, nil // reclaim the head
	}
	return hdr.StartingBlock + hdr.BlockCount, nil // append after current range
}

// ensureHeaderBlock guarantees the fork exists and block 0 is allocated,
// for a session writing its very first footer.
func (w *FooterForkWriter) ensureHeaderBlock() error {
	if !w.mgr.Exists() {
		if err := w.mgr.Create(true); err != nil {
			return fmt.Errorf("pagefile: create footer fork: %w", err)
		}
	}
	n, err := w.mgr.BlockCount()
	if err != nil {
		return fmt.Errorf("pagefile: %w", err)
	}
	if n == 0 {
		if _, err := w.mgr.Extend(true); err != nil {
			return fmt.Errorf("pagefile: allocate header block: %w", err)
		}
	}
	return nil
}

// writePageAt writes p at blockno, extending the fork if blockno doesn't
// exist yet, or overwriting in place if it does (both cases are legal:
// the ping-pong design always either reclaims an existing range or
// appends immediately past it, per selectStartBlock).
func (w *FooterForkWriter) writePageAt(blockno int, p Page, wal bool) error {
	n, err := w.mgr.BlockCount()
	if err != nil {
		return err
	}
	for n <= blockno {
		got, err := w.mgr.Extend(wal)
		if err != nil {
			return err
		}
		n = got + 1
	}
	return w.mgr.WritePage(blockno, p, wal)
}

// WriteFooter writes data as the new footer content and then, as the
// very last step, rewrites the header page to point to it. The header
// write must be last: doing it first would let a reader observe a
// half-written footer.
func (w *FooterForkWriter) WriteFooter(data []byte) error {
	if err := w.ensureHeaderBlock(); err != nil {
		return err
	}
	pages := pageCount(len(data))
	start, err := w.selectStartBlock(pages)
	if err != nil {
		return err
	}
	if start == 0 {
		return fmt.Errorf("pagefile: computed footer start block 0 collides with header")
	}
	for i := 0; i < pages; i++ {
		var p Page
		lo := i * PayloadCapacity
		hi := lo + PayloadCapacity
		if hi > len(data) {
			hi = len(data)
		}
		p.Append(data[lo:hi])
		if err := w.writePageAt(start+i, p, w.logging); err != nil {
			return fmt.Errorf("pagefile: write footer page %d: %w", start+i, err)
		}
	}
	// header write last: the linearization point.
	var hp Page
	hp.Append(encodeHeader(FooterHeader{StartingBlock: start, BlockCount: pages}))
	if err := w.writePageAt(0, hp, true); err != nil {
		return fmt.Errorf("pagefile: write footer header: %w", err)
	}
	return nil
}

// ReadFooter reads back the currently-valid footer byte stream, per the
// locator in the header page. footer.BeginWrite uses it on the resume
// path, and this package's own tests use it to exercise crash-safety
// behavior without a symmetric reader package.
func (w *FooterForkWriter) ReadFooter() ([]byte, error) {
	hdr, ok, err := w.ReadHeader()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	n, err := w.mgr.BlockCount()
	if err != nil {
		return nil, err
	}
	var out []byte
	for i := 0; i < hdr.BlockCount; i++ {
		blockno := hdr.StartingBlock + i
		if blockno >= n {
			return nil, fmt.Errorf("pagefile: footer range extends past end of fork (block %d, have %d)", blockno, n)
		}
		p, err := w.mgr.ReadPage(blockno)
		if err != nil {
			return nil, err
		}
		out = append(out, p.Payload()...)
	}
	return out, nil
}

func pageCount(n int) int {
	if n == 0 {
		return 1 // an empty footer stream still occupies one page
	}
	return (n + PayloadCapacity - 1) / PayloadCapacity
}
