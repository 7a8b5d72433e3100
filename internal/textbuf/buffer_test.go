/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textbuf

import "testing"

func TestOffsetsRoundTrip(t *testing.T) {
	b := New("S R G M\nP D N S")
	if b.NumLines() != 2 {
		t.Fatalf("expected 2 lines, got %d", b.NumLines())
	}
	if b.Len() != 15 {
		t.Fatalf("Len = %d, want 15", b.Len())
	}
	for off := 0; off <= b.Len(); off++ {
		p, err := b.PosAt(off)
		if err != nil {
			t.Fatalf("PosAt(%d): %v", off, err)
		}
		back, err := b.Offset(p)
		if err != nil {
			t.Fatalf("Offset(%v): %v", p, err)
		}
		if back != off {
			t.Fatalf("offset %d -> %v -> %d", off, p, back)
		}
	}
	if _, err := b.PosAt(b.Len() + 1); err == nil {
		t.Fatalf("expected range error past end")
	}
	if _, err := b.Offset(Pos{Row: 5, Col: 0}); err == nil {
		t.Fatalf("expected range error for bad row")
	}
}

func TestInsertDeleteReplace(t *testing.T) {
	b := New("S R G M")

	ed, err := b.Insert(Pos{Row: 0, Col: 7}, " P")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if b.String() != "S R G M P" {
		t.Fatalf("after insert: %q", b.String())
	}
	if ed.Off != 7 || ed.OldLen != 0 || ed.NewLen != 2 {
		t.Fatalf("insert edit = %+v", ed)
	}

	ed, err = b.Delete(Range{Start: Pos{0, 1}, End: Pos{0, 3}})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if b.String() != "S G M P" {
		t.Fatalf("after delete: %q", b.String())
	}
	if ed.Off != 1 || ed.OldLen != 2 || ed.NewLen != 0 {
		t.Fatalf("delete edit = %+v", ed)
	}

	ed, err = b.Replace(Range{Start: Pos{0, 2}, End: Pos{0, 3}}, "R")
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if b.String() != "S R M P" {
		t.Fatalf("after replace: %q", b.String())
	}
	if ed.Delta() != 0 {
		t.Fatalf("replace delta = %d", ed.Delta())
	}
}

func TestInsertNewline(t *testing.T) {
	b := New("SRGM")
	if _, err := b.Insert(Pos{Row: 0, Col: 2}, "\n"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if b.NumLines() != 2 {
		t.Fatalf("expected 2 lines, got %d", b.NumLines())
	}
	l0, _ := b.Line(0)
	l1, _ := b.Line(1)
	if l0 != "SR" || l1 != "GM" {
		t.Fatalf("lines = %q, %q", l0, l1)
	}
}

func TestRangeNormalize(t *testing.T) {
	r := Range{Start: Pos{0, 5}, End: Pos{0, 2}}.Normalize()
	if r.Start.Col != 2 || r.End.Col != 5 {
		t.Fatalf("normalize = %v", r)
	}
	if !r.Contains(Pos{0, 4}) || r.Contains(Pos{0, 5}) {
		t.Fatalf("half-open containment broken: %v", r)
	}
}

func TestSlice(t *testing.T) {
	b := New("S R G M")
	got, err := b.Slice(Range{Start: Pos{0, 2}, End: Pos{0, 5}})
	if err != nil {
		t.Fatalf("slice: %v", err)
	}
	if got != "R G" {
		t.Fatalf("slice = %q, want \"R G\"", got)
	}
}
