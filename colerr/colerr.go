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

// Package colerr holds the sentinel errors that make up the writer's
// error taxonomy. Callers should compare against these with errors.Is.
// Not every error returned by this module wraps one of them: failures
// reported by the page-manager collaborator, schema.Validate errors and
// an unknown compression algorithm are wrapped with context only and
// carry no sentinel.
package colerr

import "errors"

var (
	// ErrSchemaMismatch indicates the row values presented to WriteRow
	// disagree with the schema supplied to BeginWrite (column count,
	// or a column's length/by-value/alignment). BeginWrite also returns
	// it for a configured block row count below 1.
	ErrSchemaMismatch = errors.New("colstore: schema mismatch")

	// ErrIO marks a footer byte stream read back from the footer fork
	// that cannot be decoded. Failures reported by the page-manager
	// collaborator itself are not marked with it.
	ErrIO = errors.New("colstore: page I/O failure")

	// ErrOverflow indicates a value could not be encoded within the
	// limits of the on-disk format. The one check that returns it is a
	// postscript size >= 256; the footer's size is not checked against
	// the footer fork's addressable range.
	ErrOverflow = errors.New("colstore: serialization overflow")

	// ErrCodec indicates the compression codec itself reported failure.
	// A codec declining to compress a buffer is not an error; that is
	// reported by blockcompress.Attempt returning KindNone, not ErrCodec.
	ErrCodec = errors.New("colstore: codec failure")
)
