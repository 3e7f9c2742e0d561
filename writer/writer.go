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

// Package writer is the caller-facing API: BeginWrite, WriteRow,
// EndWrite, composed from every lower-level package in this module. It
// holds no on-disk logic of its own beyond orchestration — that lives
// in pagefile, stripe, and footer.
package writer

import (
	"fmt"

	"github.com/coldeck-io/coldeck/arena"
	"github.com/coldeck-io/coldeck/blockcompress"
	"github.com/coldeck-io/coldeck/colerr"
	"github.com/coldeck-io/coldeck/footer"
	"github.com/coldeck-io/coldeck/pagefile"
	"github.com/coldeck-io/coldeck/schema"
	"github.com/coldeck-io/coldeck/stripe"
)

// stripeArenaChunk is the chunk size handed to each stripe's arena; large
// enough that most stripes need only one or two underlying allocations.
const stripeArenaChunk = 64 * 1024

// Config gathers the tunables BeginWrite needs into one struct.
type Config struct {
	// BlockRowCount is the number of rows per block. Only honored on a
	// fresh table; a resumed table recovers its value from the
	// persisted footer. Must be at least 1.
	BlockRowCount int
	// StripeMaxRows is the number of rows per stripe, advisory across
	// sessions.
	StripeMaxRows int
	// Compression selects NONE or LZ.
	Compression blockcompress.Kind
	// CompressionAlgo selects the concrete codec backing LZ ("zstd" or
	// "s2", default zstd). Ignored when Compression is NONE.
	CompressionAlgo string
	// Logging gates WAL emission for data-fork and footer-body pages;
	// the footer-header page is always logged regardless.
	Logging bool
}

// Writer is one session's write state: one caller, no internal
// parallelism.
type Writer struct {
	sch *schema.Schema
	cfg Config

	compressor blockcompress.Compressor
	dataFork   *pagefile.DataForkWriter
	footerMgr  *footer.Manager

	ar  *arena.Arena
	asm *stripe.Assembler
}

// BeginWrite opens a write session. dataMgr and footerMgr are the
// host's page managers for this relation's two forks — distinct
// collaborators, since they are distinct on-disk forks.
//
// It returns the writer and the data-fork byte offset writing will
// resume at: 0 for a fresh table, or the position just past the last
// previously-flushed stripe for a reopened one.
func BeginWrite(dataMgr, footerMgr pagefile.PageManager, sch *schema.Schema, cfg Config) (*Writer, int64, error) {
	if err := sch.Validate(); err != nil {
		return nil, 0, fmt.Errorf("writer: begin_write: %w", err)
	}
	if cfg.BlockRowCount < 1 {
		return nil, 0, fmt.Errorf("writer: begin_write: %w: block row count must be >=1, got %d",
			colerr.ErrSchemaMismatch, cfg.BlockRowCount)
	}

	var compressor blockcompress.Compressor
	if cfg.Compression == blockcompress.KindLZ {
		c, err := blockcompress.ByAlgo(cfg.CompressionAlgo)
		if err != nil {
			return nil, 0, fmt.Errorf("writer: begin_write: %w", err)
		}
		compressor = c
	}

	fm, err := footer.BeginWrite(footerMgr, cfg.Logging, cfg.BlockRowCount)
	if err != nil {
		return nil, 0, fmt.Errorf("writer: begin_write: %w", err)
	}

	if !dataMgr.Exists() {
		if err := dataMgr.Create(cfg.Logging); err != nil {
			return nil, 0, fmt.Errorf("writer: begin_write: create data fork: %w", err)
		}
	}
	df := pagefile.NewDataForkWriter(dataMgr, cfg.Logging)
	if err := df.Resume(); err != nil {
		return nil, 0, fmt.Errorf("writer: begin_write: %w", err)
	}

	w := &Writer{
		sch:        sch,
		cfg:        cfg,
		compressor: compressor,
		dataFork:   df,
		footerMgr:  fm,
	}
	return w, fm.CurrentFileOffset(), nil
}

// WriteRow writes one row. values and nulls must each have one entry per
// schema column, in column order.
func (w *Writer) WriteRow(values []schema.Value, nulls []bool) error {
	if w.asm == nil {
		w.ar = arena.New(stripeArenaChunk)
		w.asm = stripe.NewAssembler(w.sch, w.footerMgr.BlockRowCount(), w.cfg.StripeMaxRows, w.compressor, w.ar)
	}
	full, err := w.asm.WriteRow(values, nulls)
	if err != nil {
		return fmt.Errorf("writer: write_row: %w", err)
	}
	if full {
		return w.flushStripe()
	}
	return nil
}

// flushStripe runs the stripe flusher against the open stripe, records
// its metadata in the footer, and resets the stripe arena in one shot.
func (w *Writer) flushStripe() error {
	meta, err := stripe.Flush(w.asm, w.dataFork, w.footerMgr.CurrentFileOffset())
	if err != nil {
		return fmt.Errorf("writer: flush_stripe: %w", err)
	}
	w.footerMgr.AppendStripe(meta)
	w.ar.Reset()
	w.asm = nil
	w.ar = nil
	return nil
}

// EndWrite flushes any partial stripe, persists the footer, and releases
// the arena. Calling EndWrite on a writer that has not seen a single row
// still produces a valid footer with an empty stripe list.
func (w *Writer) EndWrite() error {
	if w.asm != nil {
		if err := w.flushStripe(); err != nil {
			return err
		}
	}
	if err := w.footerMgr.EndWrite(); err != nil {
		return fmt.Errorf("writer: end_write: %w", err)
	}
	return nil
}
