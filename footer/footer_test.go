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

package footer

import (
	"reflect"
	"testing"

	"github.com/coldeck-io/coldeck/pagefile"
	"github.com/coldeck-io/coldeck/stripe"
)

func TestEncodeDecodeStreamRoundTrip(t *testing.T) {
	tf := TableFooter{
		BlockRowCount: 1000,
		Stripes: []stripe.Metadata{
			{FileOffset: 0, SkipListLength: 10, DataLength: 200, FooterLength: 5},
			{FileOffset: 215, SkipListLength: 12, DataLength: 180, FooterLength: 5},
		},
	}
	stream, err := EncodeStream(tf)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeStream(stream)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, tf) {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got, tf)
	}
}

func TestEncodeDecodeEmptyFooter(t *testing.T) {
	tf := TableFooter{BlockRowCount: 4096}
	stream, err := EncodeStream(tf)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeStream(stream)
	if err != nil {
		t.Fatal(err)
	}
	if got.BlockRowCount != 4096 || len(got.Stripes) != 0 {
		t.Fatalf("unexpected empty-footer decode: %+v", got)
	}
}

func TestBeginWriteFreshTable(t *testing.T) {
	mgr := &pagefile.MemPageManager{}
	m, err := BeginWrite(mgr, false, 2048)
	if err != nil {
		t.Fatal(err)
	}
	if m.CurrentFileOffset() != 0 {
		t.Fatalf("expected offset 0 for a fresh table, got %d", m.CurrentFileOffset())
	}
	if m.BlockRowCount() != 2048 {
		t.Fatalf("expected configured block row count, got %d", m.BlockRowCount())
	}
}

func TestEndWriteThenBeginWriteResumes(t *testing.T) {
	mgr := &pagefile.MemPageManager{}
	m, err := BeginWrite(mgr, false, 4)
	if err != nil {
		t.Fatal(err)
	}
	m.AppendStripe(stripe.Metadata{FileOffset: 0, SkipListLength: 8, DataLength: 32, FooterLength: 4})
	m.AppendStripe(stripe.Metadata{FileOffset: 44, SkipListLength: 8, DataLength: 16, FooterLength: 4})
	if err := m.EndWrite(); err != nil {
		t.Fatal(err)
	}

	resumed, err := BeginWrite(mgr, false, 4)
	if err != nil {
		t.Fatal(err)
	}
	if resumed.BlockRowCount() != 4 {
		t.Fatalf("expected persisted R to survive resume, got %d", resumed.BlockRowCount())
	}
	wantOffset := int64(44 + 8 + 16 + 4)
	if resumed.CurrentFileOffset() != wantOffset {
		t.Fatalf("expected resumed offset %d, got %d", wantOffset, resumed.CurrentFileOffset())
	}
	if len(resumed.footer.Stripes) != 2 {
		t.Fatalf("expected 2 stripes to survive resume, got %d", len(resumed.footer.Stripes))
	}
}

func TestEndWriteWithNoRowsProducesEmptyStripeList(t *testing.T) {
	mgr := &pagefile.MemPageManager{}
	m, err := BeginWrite(mgr, false, 1024)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.EndWrite(); err != nil {
		t.Fatal(err)
	}
	resumed, err := BeginWrite(mgr, false, 1024)
	if err != nil {
		t.Fatal(err)
	}
	if len(resumed.footer.Stripes) != 0 {
		t.Fatalf("expected empty stripe list, got %d", len(resumed.footer.Stripes))
	}
	if resumed.CurrentFileOffset() != 0 {
		t.Fatalf("expected offset 0 for a header pointing to an empty footer, got %d", resumed.CurrentFileOffset())
	}
}
