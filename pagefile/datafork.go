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

import "fmt"

// DataForkWriter appends byte streams to the data fork: an append-only
// page stream. Exactly one page is pinned (held as the active cursor)
// at any moment, matching the single-threaded, one-page-at-a-time model
// the rest of this writer core follows.
type DataForkWriter struct {
	mgr     PageManager
	logging bool

	active     int  // active block number; -1 means none yet
	activeInit bool // whether active has been loaded from mgr
	page       Page
}

// NewDataForkWriter wraps mgr as a data fork writer. logging gates
// per-page WAL emission.
func NewDataForkWriter(mgr PageManager, logging bool) *DataForkWriter {
	return &DataForkWriter{mgr: mgr, logging: logging, active: -1}
}

// Resume repositions the writer's cursor at the end of the fork's
// existing pages, for a session that reopens a fork with data already in
// it.
func (w *DataForkWriter) Resume() error {
	n, err := w.mgr.BlockCount()
	if err != nil {
		return fmt.Errorf("pagefile: resume: %w", err)
	}
	if n == 0 {
		w.active = -1
		w.activeInit = false
		return nil
	}
	p, err := w.mgr.ReadPage(n - 1)
	if err != nil {
		return fmt.Errorf("pagefile: resume: %w", err)
	}
	w.active = n - 1
	w.page = p
	w.activeInit = true
	return nil
}

// Append writes all of data to the fork, spanning as many pages as
// necessary. It returns only after every byte has been placed and the
// affected pages have been durably written through mgr.
func (w *DataForkWriter) Append(data []byte) error {
	if !w.mgr.Exists() {
		if err := w.mgr.Create(w.logging); err != nil {
			return fmt.Errorf("pagefile: create data fork: %w", err)
		}
	}
	for len(data) > 0 {
		if !w.activeInit || w.page.Remaining() == 0 {
			if err := w.allocatePage(); err != nil {
				return err
			}
		}
		n := w.page.Append(data)
		if err := w.mgr.WritePage(w.active, w.page, w.logging); err != nil {
			return fmt.Errorf("pagefile: write page %d: %w", w.active, err)
		}
		data = data[n:]
	}
	return nil
}

// allocatePage allocates a new page and makes it the active page.
func (w *DataForkWriter) allocatePage() error {
	blockno, err := w.mgr.Extend(w.logging)
	if err != nil {
		return fmt.Errorf("pagefile: extend data fork: %w", err)
	}
	w.active = blockno
	w.page = NewPage()
	w.activeInit = true
	return nil
}
