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

// Package stripe implements the stripe assembler and stripe flusher: the
// row-to-column-to-block pipeline that holds one stripe's in-flight
// buffers and skip nodes, and the flush routine that turns them into the
// skip-list/data/footer byte regions a reader expects.
package stripe

import "github.com/coldeck-io/coldeck/blockcompress"

// SkipNode is the per-(column, block) record: enough for a reader to
// locate or skip a block without scanning.
type SkipNode struct {
	RowCount         int
	HasMinMax        bool
	MinValue         []byte
	MaxValue         []byte
	ExistsOffset     int64
	ExistsLength     int64
	ValueOffset      int64
	ValueLength      int64
	ValueCompression blockcompress.Kind
}

// Metadata is what the Flusher hands back to the footer manager to
// append to the table footer.
type Metadata struct {
	FileOffset     int64
	SkipListLength int64
	DataLength     int64
	FooterLength   int64
}
