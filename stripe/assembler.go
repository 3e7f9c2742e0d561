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

package stripe

import (
	"fmt"

	"github.com/coldeck-io/coldeck/arena"
	"github.com/coldeck-io/coldeck/blockcompress"
	"github.com/coldeck-io/coldeck/colerr"
	"github.com/coldeck-io/coldeck/datum"
	"github.com/coldeck-io/coldeck/schema"
	"github.com/coldeck-io/coldeck/stats"
)

// frozenBlock is one column's completed row block: its presence bitmap
// and its (possibly compressed) value bytes, both arena-backed.
type frozenBlock struct {
	exists []byte
	value  []byte
}

// columnState is the per-column working set the Assembler keeps across
// a stripe's lifetime: one in-progress block buffer, the already-frozen
// blocks, and one skip node per block so far (the in-progress one
// included).
type columnState struct {
	curExists []bool // length blockRows; nil between blocks
	curValue  []byte
	curStats  stats.MinMax

	blocks []frozenBlock
	skip   []SkipNode
}

// Assembler folds rows into per-column blocks, freezing (bitmap-packing,
// compressing, recording min/max) each block as soon as it fills, and
// reports when the stripe itself has filled so the caller can flush.
type Assembler struct {
	sch        *schema.Schema
	blockRows  int
	stripeRows int
	compressor blockcompress.Compressor
	arena      *arena.Arena

	columns  []columnState
	rowCount int
}

// NewAssembler starts a fresh stripe's worth of assembly state.
// blockRows is the number of rows per block and stripeRows is the number
// of rows per stripe; both are assumed already validated by the caller
// (blockRows must be at least 1).
func NewAssembler(sch *schema.Schema, blockRows, stripeRows int, compressor blockcompress.Compressor, ar *arena.Arena) *Assembler {
	return &Assembler{
		sch:        sch,
		blockRows:  blockRows,
		stripeRows: stripeRows,
		compressor: compressor,
		arena:      ar,
		columns:    make([]columnState, len(sch.Columns)),
	}
}

// RowCount reports how many rows have been folded into this stripe so far.
func (a *Assembler) RowCount() int { return a.rowCount }

// WriteRow folds one row into the stripe's in-flight column blocks.
// values and nulls must each have one entry per schema column. full
// reports whether the stripe has now reached its configured row budget;
// the caller (the top-level writer) is responsible for flushing in that
// case, since flushing needs the page-fork and footer collaborators this
// package does not hold.
func (a *Assembler) WriteRow(values []schema.Value, nulls []bool) (full bool, err error) {
	if len(values) != len(a.sch.Columns) || len(nulls) != len(a.sch.Columns) {
		return false, fmt.Errorf("%w: schema has %d columns, got %d values and %d null flags",
			colerr.ErrSchemaMismatch, len(a.sch.Columns), len(values), len(nulls))
	}
	blockIndex := a.rowCount / a.blockRows
	blockRow := a.rowCount % a.blockRows

	for c := range a.columns {
		cs := &a.columns[c]
		col := &a.sch.Columns[c]
		if cs.curExists == nil {
			cs.curExists = make([]bool, a.blockRows)
		}
		for len(cs.skip) <= blockIndex {
			cs.skip = append(cs.skip, SkipNode{})
		}
		if col.Dropped || nulls[c] {
			// cs.curExists[blockRow] is already false.
		} else {
			cs.curExists[blockRow] = true
			if _, serr := datum.Serialize(&cs.curValue, col, values[c]); serr != nil {
				return false, fmt.Errorf("%w: column %q: %v", colerr.ErrSchemaMismatch, col.Name, serr)
			}
			if col.Cmp != nil {
				raw := values[c].Bytes
				if col.ByValue {
					raw = values[c].Inline
				}
				cs.curStats.Update(col.Cmp, col.Collation, raw, a.arena.Copy)
			}
		}
		cs.skip[blockIndex].RowCount++
	}

	if blockRow == a.blockRows-1 {
		if err := a.freezeBlock(blockIndex, a.blockRows); err != nil {
			return false, err
		}
	}
	a.rowCount++
	return a.rowCount >= a.stripeRows, nil
}

// FreezeTrailingBlock finalizes the current stripe's partially-filled
// last block, if one exists. The Flusher calls this before reading out
// column blocks, since WriteRow only freezes a block once it is full.
func (a *Assembler) FreezeTrailingBlock() error {
	if a.rowCount == 0 {
		return nil
	}
	blockIndex := a.rowCount / a.blockRows
	size := a.rowCount % a.blockRows
	if size == 0 {
		return nil // last block was already frozen by WriteRow
	}
	return a.freezeBlock(blockIndex, size)
}

// freezeBlock packs, compresses, and archives each column's in-progress
// block of the given size, then clears the working state so the next
// row starts a fresh block.
func (a *Assembler) freezeBlock(blockIndex, size int) error {
	for c := range a.columns {
		cs := &a.columns[c]
		packed := datum.PackBits(cs.curExists[:size])
		var compressed []byte
		var kind blockcompress.Kind
		if a.compressor == nil {
			// Compression configured as NONE: never invoke the codec.
			compressed, kind = cs.curValue, blockcompress.KindNone
		} else {
			var cerr error
			compressed, kind, cerr = blockcompress.Attempt(a.compressor, cs.curValue)
			if cerr != nil {
				return fmt.Errorf("%w: %v", colerr.ErrCodec, cerr)
			}
		}
		cs.blocks = append(cs.blocks, frozenBlock{
			exists: a.arena.Copy(packed),
			value:  a.arena.Copy(compressed),
		})
		sk := &cs.skip[blockIndex]
		sk.ValueCompression = kind
		sk.HasMinMax = cs.curStats.Has
		sk.MinValue = cs.curStats.Min
		sk.MaxValue = cs.curStats.Max

		cs.curExists = nil
		cs.curValue = nil
		cs.curStats = stats.MinMax{}
	}
	return nil
}
