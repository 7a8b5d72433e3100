/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package annot

import (
	"errors"
	"testing"

	"swaralipi/internal/textbuf"
)

func rng(start, end int) textbuf.OffsetRange {
	return textbuf.OffsetRange{Start: start, End: end}
}

func TestAddDuplicateConflicts(t *testing.T) {
	l := NewLayer()
	if _, err := l.Add(rng(2, 5), KindSlur, ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := l.Add(rng(2, 5), KindSlur, ""); !errors.Is(err, ErrOverlapConflict) {
		t.Fatalf("expected ErrOverlapConflict, got %v", err)
	}
	// Same range, different kind is fine.
	if _, err := l.Add(rng(2, 5), KindOrnament, "mordent"); err != nil {
		t.Fatalf("different kind: %v", err)
	}
}

func TestRemoveAndQuery(t *testing.T) {
	l := NewLayer()
	id, _ := l.Add(rng(0, 3), KindSlur, "")
	l.Add(rng(4, 7), KindOctaveUpper, "")

	got := l.Query(rng(2, 5))
	if len(got) != 2 {
		t.Fatalf("query hit %d spans, want 2", len(got))
	}
	if err := l.Remove(id); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := l.Remove(id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got := l.Query(rng(0, 10)); len(got) != 1 || got[0].Kind != KindOctaveUpper {
		t.Fatalf("after remove query = %+v", got)
	}
}

func TestApplyEditInsertBefore(t *testing.T) {
	l := NewLayer()
	l.Add(rng(4, 8), KindSlur, "")
	l.ApplyEdit(textbuf.Edit{Off: 1, OldLen: 0, NewLen: 3})
	if s := l.All()[0]; s.Range != rng(7, 11) {
		t.Fatalf("insert before: span = %v, want [7,11)", s.Range)
	}
}

func TestApplyEditInsertInside(t *testing.T) {
	l := NewLayer()
	l.Add(rng(4, 8), KindSlur, "")
	l.ApplyEdit(textbuf.Edit{Off: 6, OldLen: 0, NewLen: 2})
	if s := l.All()[0]; s.Range != rng(4, 10) {
		t.Fatalf("insert inside: span = %v, want [4,10)", s.Range)
	}
}

func TestApplyEditDeleteOverlapStart(t *testing.T) {
	l := NewLayer()
	l.Add(rng(4, 8), KindSlur, "")
	l.ApplyEdit(textbuf.Edit{Off: 2, OldLen: 4, NewLen: 0})
	if s := l.All()[0]; s.Range != rng(2, 4) {
		t.Fatalf("delete over start: span = %v, want [2,4)", s.Range)
	}
}

func TestApplyEditDeleteOverlapEnd(t *testing.T) {
	l := NewLayer()
	l.Add(rng(4, 8), KindSlur, "")
	l.ApplyEdit(textbuf.Edit{Off: 6, OldLen: 4, NewLen: 0})
	if s := l.All()[0]; s.Range != rng(4, 6) {
		t.Fatalf("delete over end: span = %v, want [4,6)", s.Range)
	}
}

func TestApplyEditDeleteWholeSpanDrops(t *testing.T) {
	l := NewLayer()
	l.Add(rng(4, 8), KindSlur, "")
	l.ApplyEdit(textbuf.Edit{Off: 3, OldLen: 6, NewLen: 0})
	if n := len(l.All()); n != 0 {
		t.Fatalf("span should be dropped, have %d", n)
	}
}

func TestApplyEditDeleteInsideShrinks(t *testing.T) {
	// Slur over "R G" (offsets 2..5 of "S R G M"), delete the boundary
	// space at offset 3: one slur survives, covering the remaining text.
	l := NewLayer()
	l.Add(rng(2, 5), KindSlur, "")
	l.ApplyEdit(textbuf.Edit{Off: 3, OldLen: 1, NewLen: 0})
	spans := l.All()
	if len(spans) != 1 {
		t.Fatalf("want 1 surviving slur, have %d", len(spans))
	}
	if spans[0].Range != rng(2, 4) {
		t.Fatalf("surviving slur = %v, want [2,4)", spans[0].Range)
	}
}

func TestApplyEditZeroLengthSpan(t *testing.T) {
	l := NewLayer()
	l.Add(rng(5, 5), KindOrnament, "kan")
	// Delete strictly around the anchor drops it.
	l.ApplyEdit(textbuf.Edit{Off: 4, OldLen: 3, NewLen: 0})
	if n := len(l.All()); n != 0 {
		t.Fatalf("anchor inside deletion should drop, have %d", n)
	}

	l = NewLayer()
	l.Add(rng(5, 5), KindOrnament, "kan")
	// Delete entirely after leaves it alone; insert before shifts it.
	l.ApplyEdit(textbuf.Edit{Off: 6, OldLen: 2, NewLen: 0})
	l.ApplyEdit(textbuf.Edit{Off: 0, OldLen: 0, NewLen: 2})
	if s := l.All()[0]; s.Range != rng(7, 7) {
		t.Fatalf("anchor = %v, want [7,7)", s.Range)
	}
}

func TestApplyEditNoopIdempotent(t *testing.T) {
	l := NewLayer()
	l.Add(rng(2, 5), KindSlur, "")
	l.Add(rng(7, 7), KindOrnament, "")
	before := l.All()
	for off := 0; off < 10; off++ {
		l.ApplyEdit(textbuf.Edit{Off: off})
	}
	after := l.All()
	for i := range before {
		if before[i].Range != after[i].Range {
			t.Fatalf("noop edit moved span %d: %v -> %v", i, before[i].Range, after[i].Range)
		}
	}
}

func TestSlurAPI(t *testing.T) {
	l := NewLayer()
	if l.HasSlurInSelection(rng(0, 10)) {
		t.Fatalf("empty layer reports slur")
	}
	id, err := l.ApplySlur(rng(2, 5))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !l.HasSlurInSelection(rng(4, 6)) {
		t.Fatalf("slur not visible in overlapping selection")
	}
	if l.HasSlurInSelection(rng(5, 9)) {
		t.Fatalf("slur visible past its end")
	}
	if _, ok := l.Get(id); !ok {
		t.Fatalf("Get(%s) missed", id)
	}
	if n := l.RemoveSlur(rng(0, 10)); n != 1 {
		t.Fatalf("removed %d slurs, want 1", n)
	}
}

func TestLegacySlurAliases(t *testing.T) {
	l := NewLayer()
	if _, err := l.ApplySlurLegacy(rng(1, 4)); err != nil {
		t.Fatalf("legacy apply: %v", err)
	}
	if !l.HasSlurLegacy(rng(1, 2)) || !l.HasSlurInSelection(rng(1, 2)) {
		t.Fatalf("legacy and current view disagree")
	}
	if n := l.RemoveSlurLegacy(rng(0, 5)); n != 1 {
		t.Fatalf("legacy remove = %d, want 1", n)
	}
}
