/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package annot stores musical annotations as an overlay on the text
// buffer: slurs, octave markers, ornaments and beat-grouping arcs. Spans
// are kept in linear-offset space, ordered by start, and are rewritten on
// every buffer edit so they keep pointing at the text that survives.
package annot

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"swaralipi/internal/textbuf"
)

// Kind classifies what a span means musically.
type Kind string

const (
	KindSlur        Kind = "slur"
	KindOctaveUpper Kind = "octave-upper"
	KindOctaveLower Kind = "octave-lower"
	KindOrnament    Kind = "ornament"
	KindBeatGroup   Kind = "beat-group"
)

// ErrOverlapConflict is returned when a span of the same kind already
// covers the identical range.
var ErrOverlapConflict = errors.New("annot: span of same kind already covers range")

// ErrNotFound is returned when a span id does not exist.
var ErrNotFound = errors.New("annot: span not found")

// SpanID identifies one stored span.
type SpanID string

// Span is one annotation record. Range is half-open in linear offsets.
type Span struct {
	ID      SpanID              `json:"id"`
	Range   textbuf.OffsetRange `json:"range"`
	Kind    Kind                `json:"kind"`
	Payload string              `json:"payload,omitempty"`
}

// Layer is the overlay store. Mutated only through Add/Remove/ApplyEdit;
// the owning session serializes access.
type Layer struct {
	spans []Span
}

// NewLayer returns an empty overlay.
func NewLayer() *Layer { return &Layer{} }

// Add stores a span. Fails with ErrOverlapConflict when a span of the
// same kind with the identical range already exists.
func (l *Layer) Add(rng textbuf.OffsetRange, kind Kind, payload string) (SpanID, error) {
	if rng.End < rng.Start {
		return "", fmt.Errorf("annot: inverted range [%d,%d)", rng.Start, rng.End)
	}
	for _, s := range l.spans {
		if s.Kind == kind && s.Range == rng {
			return "", fmt.Errorf("%w: %s over [%d,%d)", ErrOverlapConflict, kind, rng.Start, rng.End)
		}
	}
	id := SpanID(uuid.NewString())
	l.spans = append(l.spans, Span{ID: id, Range: rng, Kind: kind, Payload: payload})
	l.sortSpans()
	return id, nil
}

// Remove deletes a span by id.
func (l *Layer) Remove(id SpanID) error {
	for i, s := range l.spans {
		if s.ID == id {
			l.spans = append(l.spans[:i], l.spans[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Get returns a span by id.
func (l *Layer) Get(id SpanID) (Span, bool) {
	for _, s := range l.spans {
		if s.ID == id {
			return s, true
		}
	}
	return Span{}, false
}

// All returns every span in start order. The slice is a copy.
func (l *Layer) All() []Span {
	out := make([]Span, len(l.spans))
	copy(out, l.spans)
	return out
}

// Restore replaces the overlay contents wholesale, keeping span IDs.
// Used when reverting to a previously captured state.
func (l *Layer) Restore(spans []Span) {
	l.spans = append([]Span(nil), spans...)
	l.sortSpans()
}

// Query returns the spans intersecting the given range, in start order.
// Zero-length spans match when their anchor falls inside the range.
func (l *Layer) Query(rng textbuf.OffsetRange) []Span {
	var out []Span
	for _, s := range l.spans {
		if s.Range.IsEmpty() {
			if rng.ContainsOffset(s.Range.Start) {
				out = append(out, s)
			}
			continue
		}
		if s.Range.Overlaps(rng) {
			out = append(out, s)
		}
	}
	return out
}

// ApplyEdit rewrites every span for one buffer edit. The edit is treated
// as a deletion of OldLen characters at Off followed by an insertion of
// NewLen characters at the same offset:
//   - spans entirely left of the edit are untouched
//   - spans entirely right of the edit shift by the length delta
//   - spans partially covered by the deletion truncate to the surviving text
//   - spans fully inside the deletion are dropped, as are zero-length
//     spans whose anchor was deleted
//   - an insertion at or before a span start shifts the span; one strictly
//     inside grows it
func (l *Layer) ApplyEdit(e textbuf.Edit) {
	if e.IsNoop() {
		return
	}
	kept := l.spans[:0]
	for _, s := range l.spans {
		if ns, ok := transformSpan(s, e); ok {
			kept = append(kept, ns)
		}
	}
	l.spans = kept
	l.sortSpans()
}

func transformSpan(s Span, e textbuf.Edit) (Span, bool) {
	start, end := s.Range.Start, s.Range.End
	wasEmpty := s.Range.IsEmpty()
	delEnd := e.Off + e.OldLen

	// Deletion pass.
	if e.OldLen > 0 {
		if wasEmpty {
			// An anchor strictly inside the deleted run has no surviving
			// character to point at.
			if start > e.Off && start < delEnd {
				return Span{}, false
			}
			if start >= delEnd {
				start -= e.OldLen
			} else if start > e.Off {
				start = e.Off
			}
			end = start
		} else {
			start = collapseOffset(start, e.Off, delEnd)
			end = collapseOffset(end, e.Off, delEnd)
			if start >= end {
				return Span{}, false
			}
		}
	}

	// Insertion pass.
	if e.NewLen > 0 {
		if wasEmpty {
			if start >= e.Off {
				start += e.NewLen
			}
			end = start
		} else {
			if start >= e.Off {
				start += e.NewLen
			}
			if end > e.Off {
				end += e.NewLen
			}
		}
	}

	s.Range = textbuf.OffsetRange{Start: start, End: end}
	return s, true
}

// collapseOffset maps an offset across a deletion of [delStart, delEnd).
func collapseOffset(x, delStart, delEnd int) int {
	switch {
	case x <= delStart:
		return x
	case x >= delEnd:
		return x - (delEnd - delStart)
	default:
		return delStart
	}
}

func (l *Layer) sortSpans() {
	sort.SliceStable(l.spans, func(i, j int) bool {
		if l.spans[i].Range.Start != l.spans[j].Range.Start {
			return l.spans[i].Range.Start < l.spans[j].Range.Start
		}
		return l.spans[i].Range.End < l.spans[j].Range.End
	})
}
