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

package footer

import (
	"fmt"

	"github.com/coldeck-io/coldeck/pagefile"
	"github.com/coldeck-io/coldeck/stripe"
)

// Manager owns the table footer in memory for the session's lifetime
// and is the only component that touches the footer fork.
type Manager struct {
	fork   *pagefile.FooterForkWriter
	footer TableFooter
	offset int64
}

// BeginWrite reads the footer fork's header page, if any, and
// reconstructs currentFileOffset from the last recorded stripe. If the
// fork is empty or unparseable, it starts a fresh footer with
// blockRowCount and offset 0 — the first-write case.
//
// logging gates WAL emission for footer body pages; the header page is
// always logged regardless.
func BeginWrite(mgr pagefile.PageManager, logging bool, blockRowCount int) (*Manager, error) {
	fork := pagefile.NewFooterForkWriter(mgr, logging)
	hdr, ok, err := fork.ReadHeader()
	if err != nil {
		return nil, fmt.Errorf("footer: begin_write: %w", err)
	}
	if !ok {
		return &Manager{fork: fork, footer: TableFooter{BlockRowCount: blockRowCount}}, nil
	}
	_ = hdr
	raw, err := fork.ReadFooter()
	if err != nil {
		return nil, fmt.Errorf("footer: begin_write: %w", err)
	}
	tf, err := DecodeStream(raw)
	if err != nil {
		return nil, fmt.Errorf("footer: begin_write: %w", err)
	}
	m := &Manager{fork: fork, footer: tf}
	if n := len(tf.Stripes); n > 0 {
		last := tf.Stripes[n-1]
		m.offset = last.FileOffset + last.SkipListLength + last.DataLength + last.FooterLength
	}
	return m, nil
}

// CurrentFileOffset is the data-fork position the next stripe will
// start at.
func (m *Manager) CurrentFileOffset() int64 { return m.offset }

// BlockRowCount is the block row count persisted in and recovered from
// the footer; the per-stripe row budget is advisory and not persisted.
func (m *Manager) BlockRowCount() int { return m.footer.BlockRowCount }

// Stripes returns the table footer's stripe metadata list, ordered by
// file offset.
func (m *Manager) Stripes() []stripe.Metadata { return m.footer.Stripes }

// AppendStripe records a flushed stripe's metadata and advances
// currentFileOffset past it.
func (m *Manager) AppendStripe(meta stripe.Metadata) {
	m.footer.Stripes = append(m.footer.Stripes, meta)
	m.offset += meta.SkipListLength + meta.DataLength + meta.FooterLength
}

// EndWrite serializes the accumulated footer in full — always a
// complete rewrite, never a patch — and commits it via the footer
// fork's atomic header swap.
func (m *Manager) EndWrite() error {
	stream, err := EncodeStream(m.footer)
	if err != nil {
		return fmt.Errorf("footer: end_write: %w", err)
	}
	if err := m.fork.WriteFooter(stream); err != nil {
		return fmt.Errorf("footer: end_write: %w", err)
	}
	return nil
}
