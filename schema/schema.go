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

// Package schema describes the shape of the rows a writer accepts.
//
// The host's type system lives elsewhere; this package only declares the
// metadata a column carries (length class, by-value-ness, alignment, an
// optional comparator) and a Value union that models a generic
// machine-word datum as a tagged Go type.
package schema

import "fmt"

// Length classes for a column.
const (
	// Variable indicates a variable-length column whose serialized form
	// begins with an embedded length header.
	Variable = -1
	// CString indicates a variable-length, NUL-terminated column.
	CString = -2
)

// Align is an alignment code: the serialized datum is padded to a multiple
// of one of these.
type Align int

const (
	Align1 Align = 1
	Align2 Align = 2
	Align4 Align = 4
	Align8 Align = 8
)

// AlignUp rounds n up to the nearest multiple of a, the same bit-trick
// used throughout this package's offset math.
func AlignUp(n int, a Align) int {
	m := int(a)
	if m <= 1 {
		return n
	}
	return (n + m - 1) &^ (m - 1)
}

// Comparator orders two non-null values of the same column under a
// collation. Collation is treated as opaque bytes passed through to the
// comparator unexamined.
//
// Columns with no registered comparator leave Comparator nil; the caller
// (schema construction) must not synthesize one, since "no ordering" is a
// legitimate, common column state, not an error.
type Comparator func(collation []byte, a, b []byte) int

// Column describes one column of the row schema given to BeginWrite.
type Column struct {
	// Name is used only for diagnostics; on-disk layout is positional.
	Name string
	// Length is the fixed byte length (>=1), or Variable, or CString.
	Length int
	// ByValue indicates the column's fixed-width values are passed
	// by value (i.e. the bytes below Length are the value itself, not
	// a pointer to it). Only meaningful when Length > 0.
	ByValue bool
	// Align is the alignment of serialized values of this column.
	Align Align
	// Cmp orders values of this column for min/max tracking. Nil means
	// the column has no registered comparator: min/max is never computed.
	Cmp Comparator
	// Collation is opaque collation state forwarded to Cmp.
	Collation []byte
	// Dropped marks the column inert: present in the schema, but rows
	// never carry live values for it.
	Dropped bool
}

// Fixed reports whether the column has a statically known serialized
// width before alignment padding.
func (c *Column) Fixed() bool { return c.Length > 0 }

// Schema is the ordered list of columns a writer accepts.
type Schema struct {
	Columns []Column
}

// Validate checks internal consistency of the schema itself (not of any
// particular row). It is cheap and idempotent; BeginWrite calls it once.
func (s *Schema) Validate() error {
	for i := range s.Columns {
		c := &s.Columns[i]
		switch {
		case c.Length == 0:
			return fmt.Errorf("column %d (%s): length must be >=1, %d, or %d", i, c.Name, Variable, CString)
		case c.Align != Align1 && c.Align != Align2 && c.Align != Align4 && c.Align != Align8:
			return fmt.Errorf("column %d (%s): invalid alignment %d", i, c.Name, c.Align)
		case c.ByValue && c.Length <= 0:
			return fmt.Errorf("column %d (%s): by-value column must have fixed length", i, c.Name)
		}
	}
	return nil
}

// Value is a tagged union standing in for a generic datum (machine word
// plus by-value/length/align metadata). Exactly one of the
// fields below is meaningful, selected by the owning Column's ByValue
// flag: Inline for by-value columns, Bytes for all others.
type Value struct {
	// Inline holds a by-value fixed-width datum's raw register bytes,
	// already truncated/extended to Column.Length bytes.
	Inline []byte
	// Bytes holds a by-reference fixed-width datum's bytes (Length of
	// them), or, for Variable/CString columns, the full memcpy-source
	// bytes (embedded length header or NUL terminator included).
	Bytes []byte
}
