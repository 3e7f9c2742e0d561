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

// Package blockcompress implements a single pluggable
// attempt-compress-buffer function, wrapping two klauspost/compress
// codecs behind a narrow Compressor interface.
//
// The writer's API surface names exactly two kinds: NONE and a single
// codec identifier, LZ. This package keeps that two-kind surface but
// lets LZ be backed by either of two algorithms (zstd for ratio, s2 for
// speed), selected once at BeginWrite time.
package blockcompress

import (
	"fmt"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

// Kind is the compression outcome recorded on a skip node.
type Kind string

const (
	KindNone Kind = "NONE"
	KindLZ   Kind = "LZ"
)

// Compressor is the codec interface the block compressor drives: append
// the compressed form of src to dst and return the result.
type Compressor interface {
	// Algo names the concrete algorithm backing the LZ kind (e.g.
	// "zstd" or "s2"), recorded for diagnostics only; the on-disk skip
	// node only ever stores the Kind, not the algorithm name.
	Algo() string
	Compress(src, dst []byte) ([]byte, error)
}

type zstdCompressor struct{ enc *zstd.Encoder }

func (z zstdCompressor) Algo() string { return "zstd" }

func (z zstdCompressor) Compress(src, dst []byte) ([]byte, error) {
	return z.enc.EncodeAll(src, dst), nil
}

type s2Compressor struct{}

func (s2Compressor) Algo() string { return "s2" }

func (s2Compressor) Compress(src, dst []byte) ([]byte, error) {
	return append(dst, s2.Encode(nil, src)...), nil
}

// ByAlgo selects the concrete Compressor backing the LZ kind. Valid
// values are "zstd" and "s2"; any other value returns an error.
func ByAlgo(name string) (Compressor, error) {
	switch name {
	case "zstd", "":
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("blockcompress: %w", err)
		}
		return zstdCompressor{enc}, nil
	case "s2":
		return s2Compressor{}, nil
	default:
		return nil, fmt.Errorf("blockcompress: unknown algorithm %q", name)
	}
}

// Attempt runs the codec against input and reports whether the
// compressed form should be used: "worthwhile" here means strictly
// smaller than the input.
//
// On success it returns (compressed, KindLZ). On failure to shrink the
// buffer it returns (input, KindNone) — not compressible is not an
// error. A hard codec error is returned as err and is the one case that
// propagates as colerr.ErrCodec to the caller.
func Attempt(c Compressor, input []byte) (out []byte, kind Kind, err error) {
	if len(input) == 0 {
		return input, KindNone, nil
	}
	compressed, err := c.Compress(input, nil)
	if err != nil {
		return nil, KindNone, fmt.Errorf("blockcompress: codec %s: %w", c.Algo(), err)
	}
	if len(compressed) < len(input) {
		return compressed, KindLZ, nil
	}
	return input, KindNone, nil
}
