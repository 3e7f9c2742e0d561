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

// Package footer implements the table footer's byte-stream encoding, and
// begin/end-of-write bookkeeping over the footer fork (package pagefile).
//
// The byte-stream shape — a length header, the footer, a postscript, and
// a trailing postscript-size byte — lays out a length-prefixed record
// with a reverse-parseable tail: a reader can start at the last byte and
// walk backward to find everything else.
package footer

import (
	"encoding/binary"
	"fmt"

	"github.com/coldeck-io/coldeck/colerr"
	"github.com/coldeck-io/coldeck/stripe"
	"github.com/coldeck-io/coldeck/wire"
)

// TableFooter is the table footer: the configured block row count
// (persisted so it outlives any single session) and the ordered list of
// every stripe written so far.
type TableFooter struct {
	BlockRowCount int
	Stripes       []stripe.Metadata
}

func encodeFooter(f TableFooter) []byte {
	var b wire.Buffer
	b.PutUvarint(uint64(f.BlockRowCount))
	b.PutUvarint(uint64(len(f.Stripes)))
	for _, s := range f.Stripes {
		b.PutInt64(s.FileOffset)
		b.PutUvarint(uint64(s.SkipListLength))
		b.PutUvarint(uint64(s.DataLength))
		b.PutUvarint(uint64(s.FooterLength))
	}
	return b.Bytes()
}

func decodeFooter(buf []byte) (TableFooter, error) {
	r := wire.NewReader(buf)
	blockRowCount, err := r.Uvarint()
	if err != nil {
		return TableFooter{}, fmt.Errorf("footer: %w: %v", colerr.ErrIO, err)
	}
	n, err := r.Uvarint()
	if err != nil {
		return TableFooter{}, fmt.Errorf("footer: %w: %v", colerr.ErrIO, err)
	}
	out := TableFooter{BlockRowCount: int(blockRowCount), Stripes: make([]stripe.Metadata, n)}
	for i := range out.Stripes {
		off, err := r.Int64()
		if err != nil {
			return TableFooter{}, fmt.Errorf("footer: %w: %v", colerr.ErrIO, err)
		}
		skip, err := r.Uvarint()
		if err != nil {
			return TableFooter{}, fmt.Errorf("footer: %w: %v", colerr.ErrIO, err)
		}
		data, err := r.Uvarint()
		if err != nil {
			return TableFooter{}, fmt.Errorf("footer: %w: %v", colerr.ErrIO, err)
		}
		ftr, err := r.Uvarint()
		if err != nil {
			return TableFooter{}, fmt.Errorf("footer: %w: %v", colerr.ErrIO, err)
		}
		out.Stripes[i] = stripe.Metadata{
			FileOffset:     off,
			SkipListLength: int64(skip),
			DataLength:     int64(data),
			FooterLength:   int64(ftr),
		}
	}
	return out, nil
}

// maxPostscriptSize holds: the trailing byte encodes the postscript's
// length, so it must fit in a uint8.
const maxPostscriptSize = 256

// EncodeStream lays out the footer byte stream:
//
//	int32 length ‖ serialized_footer ‖ serialized_postscript ‖ uint8 postscript_size
//
// The leading length is patched in after the rest of the stream is
// known, since it covers the whole four-part stream including itself.
func EncodeStream(f TableFooter) ([]byte, error) {
	footerBytes := encodeFooter(f)

	var ps wire.Buffer
	ps.PutUvarint(uint64(len(footerBytes)))
	psBytes := ps.Bytes()
	if len(psBytes) >= maxPostscriptSize {
		return nil, fmt.Errorf("footer: postscript size %d: %w", len(psBytes), colerr.ErrOverflow)
	}

	total := 4 + len(footerBytes) + len(psBytes) + 1
	stream := make([]byte, total)
	binary.LittleEndian.PutUint32(stream[:4], uint32(total))
	copy(stream[4:], footerBytes)
	copy(stream[4+len(footerBytes):], psBytes)
	stream[total-1] = byte(len(psBytes))
	return stream, nil
}

// DecodeStream parses a footer byte stream back to a TableFooter,
// working backward from the trailing postscript-size byte. It exists
// for this package's own tests and for BeginWrite's resume path; the
// full symmetric reader is out of scope.
func DecodeStream(stream []byte) (TableFooter, error) {
	if len(stream) < 5 {
		return TableFooter{}, fmt.Errorf("footer: stream too short (%d bytes): %w", len(stream), colerr.ErrIO)
	}
	total := binary.LittleEndian.Uint32(stream[:4])
	if int(total) != len(stream) {
		return TableFooter{}, fmt.Errorf("footer: length header %d disagrees with stream size %d: %w", total, len(stream), colerr.ErrIO)
	}
	psSize := int(stream[len(stream)-1])
	if 4+psSize+1 > len(stream) {
		return TableFooter{}, fmt.Errorf("footer: postscript size %d overruns stream: %w", psSize, colerr.ErrIO)
	}
	psBytes := stream[len(stream)-1-psSize : len(stream)-1]
	r := wire.NewReader(psBytes)
	footerLen, err := r.Uvarint()
	if err != nil {
		return TableFooter{}, fmt.Errorf("footer: postscript: %w: %v", colerr.ErrIO, err)
	}
	if 4+int(footerLen) > len(stream) {
		return TableFooter{}, fmt.Errorf("footer: footer length %d overruns stream: %w", footerLen, colerr.ErrIO)
	}
	return decodeFooter(stream[4 : 4+int(footerLen)])
}
