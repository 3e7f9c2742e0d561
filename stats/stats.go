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

// Package stats tracks per-block, per-column min/max under a column's
// comparator.
//
// A MinMax pair is kept alongside a column, updated incrementally as
// values are observed, with ties leaving the incumbent untouched. It is
// fully generic over any column with a registered comparator, since the
// writer core has no notion of which columns are "special".
package stats

import "github.com/coldeck-io/coldeck/schema"

// MinMax holds one column block's running min/max, deep-copied so they
// outlive the caller's row buffer. Copies live in the stripe arena and
// are valid until the arena is reset at flush.
type MinMax struct {
	Has bool
	Min []byte
	Max []byte
}

// Update folds one non-null value into m. copy must return a durable
// copy of its argument (callers pass the stripe arena's allocator); cmp
// and collation come from the owning schema.Column.
//
// If cmp is nil (column has no registered comparator), Update is a no-op
// and m.Has remains false — this is not an error.
func (m *MinMax) Update(cmp schema.Comparator, collation []byte, value []byte, copy func([]byte) []byte) {
	if cmp == nil {
		return
	}
	if !m.Has {
		m.Min = copy(value)
		m.Max = copy(value)
		m.Has = true
		return
	}
	if cmp(collation, value, m.Min) < 0 {
		m.Min = copy(value)
	}
	if cmp(collation, value, m.Max) > 0 {
		m.Max = copy(value)
	}
}

// Covers reports whether value falls within [m.Min, m.Max] under cmp. It
// is used by this package's own tests; the symmetric reader is out of
// scope here.
func (m *MinMax) Covers(cmp schema.Comparator, collation []byte, value []byte) bool {
	if !m.Has {
		return true
	}
	return cmp(collation, m.Min, value) <= 0 && cmp(collation, m.Max, value) >= 0
}
