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

// PageManager is the host's buffer manager, as far as one fork of one
// relation is concerned. It supplies page-granular read/write with
// exclusive locking, dirty tracking, and WAL emission; none of that
// policy lives in this package, only the call shape does.
//
// A real host provides this over a shared page cache; MemPageManager
// below is the in-memory stand-in this module's own tests drive.
type PageManager interface {
	// Exists reports whether the fork has been created in storage yet.
	Exists() bool
	// Create creates the fork. wal indicates whether a create record
	// should be emitted, gated on the session's logging flag.
	Create(wal bool) error
	// BlockCount returns the number of pages currently in the fork.
	BlockCount() (int, error)
	// ReadPage reads one page. blockno must be < BlockCount().
	ReadPage(blockno int) (Page, error)
	// WritePage overwrites an existing page in place (marks it dirty,
	// optionally emits a WAL new-page record per wal).
	WritePage(blockno int, p Page, wal bool) error
	// Extend appends a fresh, zero-initialized page to the fork and
	// returns its block number. wal gates the WAL new-page record.
	Extend(wal bool) (blockno int, err error)
}

// MemPageManager is an in-memory PageManager: enough to exercise the
// writer core's logic and tests without a real host database behind it.
type MemPageManager struct {
	created bool
	pages   []Page
	// WALRecords counts emitted WAL records, for tests asserting on the
	// logging-gate behavior.
	WALRecords int
}

func (m *MemPageManager) Exists() bool { return m.created }

func (m *MemPageManager) Create(wal bool) error {
	m.created = true
	if wal {
		m.WALRecords++
	}
	return nil
}

func (m *MemPageManager) BlockCount() (int, error) {
	return len(m.pages), nil
}

func (m *MemPageManager) ReadPage(blockno int) (Page, error) {
	if blockno < 0 || blockno >= len(m.pages) {
		return Page{}, fmt.Errorf("pagefile: block %d out of range (have %d)", blockno, len(m.pages))
	}
	return m.pages[blockno], nil
}

func (m *MemPageManager) WritePage(blockno int, p Page, wal bool) error {
	if blockno < 0 || blockno >= len(m.pages) {
		return fmt.Errorf("pagefile: block %d out of range (have %d)", blockno, len(m.pages))
	}
	m.pages[blockno] = p
	if wal {
		m.WALRecords++
	}
	return nil
}

func (m *MemPageManager) Extend(wal bool) (int, error) {
	m.pages = append(m.pages, NewPage())
	if wal {
		m.WALRecords++
	}
	return len(m.pages) - 1, nil
}
