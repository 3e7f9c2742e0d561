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

	"github.com/coldeck-io/coldeck/pagefile"
	"github.com/coldeck-io/coldeck/wire"
)

// dataForkAppender is the slice of pagefile.DataForkWriter the Flusher
// needs; declared narrowly so tests can stand in a fake.
type dataForkAppender interface {
	Append(data []byte) error
}

var _ dataForkAppender = (*pagefile.DataForkWriter)(nil)

func encodeSkipList(nodes []SkipNode) []byte {
	var b wire.Buffer
	b.PutUvarint(uint64(len(nodes)))
	for _, n := range nodes {
		b.PutUvarint(uint64(n.RowCount))
		b.PutBool(n.HasMinMax)
		if n.HasMinMax {
			b.PutBytes(n.MinValue)
			b.PutBytes(n.MaxValue)
		}
		b.PutUvarint(uint64(n.ExistsOffset))
		b.PutUvarint(uint64(n.ExistsLength))
		b.PutUvarint(uint64(n.ValueOffset))
		b.PutUvarint(uint64(n.ValueLength))
		b.PutString(string(n.ValueCompression))
	}
	return b.Bytes()
}

// encodeStripeFooter records, per column, the byte size of its skip
// list, exists subregion, and value subregion: exactly what a reader
// needs to carve the stripe's single byte stream back into regions.
func encodeStripeFooter(skipSizes, existsSizes, valueSizes []int64) []byte {
	var b wire.Buffer
	b.PutUvarint(uint64(len(skipSizes)))
	for i := range skipSizes {
		b.PutUvarint(uint64(skipSizes[i]))
		b.PutUvarint(uint64(existsSizes[i]))
		b.PutUvarint(uint64(valueSizes[i]))
	}
	return b.Bytes()
}

// Flush finalizes the stripe's trailing block, computes per-block
// offsets within each column's own exists/value subregions, and appends
// the stripe's byte stream — skip lists, then each column's exists bytes
// followed by its value bytes, then the stripe footer — to out in that
// order.
//
// fileOffset is the stripe's starting position in the data fork, passed
// through to the returned Metadata for the footer manager to record;
// this package does not track file offsets itself — that ledger belongs
// to the caller composing stripes into a table.
func Flush(a *Assembler, out dataForkAppender, fileOffset int64) (Metadata, error) {
	if err := a.FreezeTrailingBlock(); err != nil {
		return Metadata{}, err
	}

	n := len(a.columns)
	skipBytes := make([][]byte, n)
	existsSizes := make([]int64, n)
	valueSizes := make([]int64, n)

	for c := range a.columns {
		cs := &a.columns[c]
		var existsCursor, valueCursor int64
		for i := range cs.blocks {
			blk := &cs.blocks[i]
			sk := &cs.skip[i]
			sk.ExistsOffset = existsCursor
			sk.ExistsLength = int64(len(blk.exists))
			existsCursor += sk.ExistsLength
			sk.ValueOffset = valueCursor
			sk.ValueLength = int64(len(blk.value))
			valueCursor += sk.ValueLength
		}
		existsSizes[c] = existsCursor
		valueSizes[c] = valueCursor
		skipBytes[c] = encodeSkipList(cs.skip)
	}

	footer := encodeStripeFooter(sizesOf(skipBytes), existsSizes, valueSizes)

	var skipTotal, dataTotal int64
	for c := range a.columns {
		if err := out.Append(skipBytes[c]); err != nil {
			return Metadata{}, fmt.Errorf("stripe: write skip list for column %d: %w", c, err)
		}
		skipTotal += int64(len(skipBytes[c]))
	}
	for c := range a.columns {
		cs := &a.columns[c]
		for i := range cs.blocks {
			if err := out.Append(cs.blocks[i].exists); err != nil {
				return Metadata{}, fmt.Errorf("stripe: write exists bitmap for column %d block %d: %w", c, i, err)
			}
			dataTotal += int64(len(cs.blocks[i].exists))
		}
		for i := range cs.blocks {
			if err := out.Append(cs.blocks[i].value); err != nil {
				return Metadata{}, fmt.Errorf("stripe: write values for column %d block %d: %w", c, i, err)
			}
			dataTotal += int64(len(cs.blocks[i].value))
		}
	}
	if err := out.Append(footer); err != nil {
		return Metadata{}, fmt.Errorf("stripe: write stripe footer: %w", err)
	}

	return Metadata{
		FileOffset:     fileOffset,
		SkipListLength: skipTotal,
		DataLength:     dataTotal,
		FooterLength:   int64(len(footer)),
	}, nil
}

func sizesOf(bs [][]byte) []int64 {
	out := make([]int64, len(bs))
	for i, b := range bs {
		out[i] = int64(len(b))
	}
	return out
}

// SkipLists exposes the per-column skip node lists after a Flush, for
// a caller (or test) that wants to inspect them directly rather than
// re-parsing the appended byte stream.
func (a *Assembler) SkipLists() [][]SkipNode {
	out := make([][]SkipNode, len(a.columns))
	for c := range a.columns {
		out[c] = a.columns[c].skip
	}
	return out
}
