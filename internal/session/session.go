/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package session owns one open notation document: the text buffer, the
// annotation overlay, and the undo history. Every mutation routes
// through here, so the overlay is re-anchored on each edit and each
// state is captured before it changes. All musical structure is derived
// on demand; the session never caches a derivation across edits.
package session

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"swaralipi/internal/annot"
	"swaralipi/internal/ir"
	"swaralipi/internal/log"
	"swaralipi/internal/structure"
	"swaralipi/internal/textbuf"
	"swaralipi/internal/undo"
)

// Session is safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	buf     *textbuf.Buffer
	layer   *annot.Layer
	history *undo.Manager
	opts    structure.Options
}

// New opens a session over the given notation text with default undo
// behavior.
func New(text string, opts structure.Options) *Session {
	return NewWithHistory(text, opts, undo.Config{})
}

// NewWithHistory opens a session with explicit undo caps and coalescing.
func NewWithHistory(text string, opts structure.Options, hist undo.Config) *Session {
	return &Session{
		buf:     textbuf.New(text),
		layer:   annot.NewLayer(),
		history: undo.NewManager(hist),
		opts:    opts,
	}
}

// Text returns the current buffer content.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// Annotations returns the current overlay spans.
func (s *Session) Annotations() []annot.Span {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layer.All()
}

// state is the serialized buffer+overlay pair captured for undo.
type state struct {
	Text  string       `json:"text"`
	Spans []annot.Span `json:"spans"`
}

func (s *Session) captureLocked() []byte {
	b, err := json.Marshal(state{Text: s.buf.String(), Spans: s.layer.All()})
	if err != nil {
		// Only reachable if Span gains an unmarshalable field.
		log.WithComponent("session").Error("state capture failed", "err", err)
		return nil
	}
	return b
}

func (s *Session) restoreLocked(blob []byte) bool {
	var st state
	if err := json.Unmarshal(blob, &st); err != nil {
		log.WithComponent("session").Error("state restore failed", "err", err)
		return false
	}
	s.buf = textbuf.New(st.Text)
	s.layer.Restore(st.Spans)
	return true
}

func (s *Session) checkpointLocked() {
	s.history.PushSnapshot(undo.Snapshot{Blob: s.captureLocked(), TS: time.Now()})
}

// Insert inserts text at a position, re-anchoring annotations.
func (s *Session) Insert(p textbuf.Pos, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpointLocked()
	e, err := s.buf.Insert(p, text)
	if err != nil {
		return err
	}
	s.layer.ApplyEdit(e)
	return nil
}

// Delete removes a range, re-anchoring annotations.
func (s *Session) Delete(r textbuf.Range) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpointLocked()
	e, err := s.buf.Delete(r)
	if err != nil {
		return err
	}
	s.layer.ApplyEdit(e)
	return nil
}

// Replace substitutes a range with new text, re-anchoring annotations.
func (s *Session) Replace(r textbuf.Range, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpointLocked()
	e, err := s.buf.Replace(r, text)
	if err != nil {
		return err
	}
	s.layer.ApplyEdit(e)
	return nil
}

// AddAnnotation adds an overlay span.
func (s *Session) AddAnnotation(rng textbuf.OffsetRange, kind annot.Kind, payload string) (annot.SpanID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpointLocked()
	return s.layer.Add(rng, kind, payload)
}

// RemoveAnnotation removes an overlay span by ID.
func (s *Session) RemoveAnnotation(id annot.SpanID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpointLocked()
	return s.layer.Remove(id)
}

// ApplySlur adds a slur over the selection.
func (s *Session) ApplySlur(rng textbuf.OffsetRange) (annot.SpanID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpointLocked()
	return s.layer.ApplySlur(rng)
}

// RemoveSlur removes slurs intersecting the selection, returning the count.
func (s *Session) RemoveSlur(rng textbuf.OffsetRange) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpointLocked()
	return s.layer.RemoveSlur(rng)
}

// HasSlur reports whether any slur touches the selection.
func (s *Session) HasSlur(rng textbuf.OffsetRange) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layer.HasSlurInSelection(rng)
}

// Undo reverts to the previous captured state.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.history.Undo(s.captureLocked())
	if !ok {
		return false
	}
	return s.restoreLocked(snap.Blob)
}

// Redo re-applies the most recently undone state.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.history.Redo(s.captureLocked())
	if !ok {
		return false
	}
	return s.restoreLocked(snap.Blob)
}

// Analyze derives the structure of every line from the current text and
// overlay. Spans are rebased into line-local offsets before analysis.
func (s *Session) Analyze() []structure.LineStructure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzeLocked()
}

func (s *Session) analyzeLocked() []structure.LineStructure {
	out := make([]structure.LineStructure, 0, s.buf.NumLines())
	for row := 0; row < s.buf.NumLines(); row++ {
		text, err := s.buf.Line(row)
		if err != nil {
			continue
		}
		start, err := s.buf.Offset(textbuf.Pos{Row: row, Col: 0})
		if err != nil {
			continue
		}
		lineRange := textbuf.OffsetRange{Start: start, End: start + len(text)}
		var local []annot.Span
		for _, sp := range s.layer.Query(lineRange) {
			sp.Range.Start -= start
			sp.Range.End -= start
			local = append(local, sp)
		}
		out = append(out, structure.AnalyzeLine(text, local, s.opts))
	}
	return out
}

// IRDocument derives the IR for the whole document and pads short
// measures, returning the diagnostics alongside.
func (s *Session) IRDocument() (ir.Document, []ir.Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ir.PadMeasures(ir.FromLineStructures(s.analyzeLocked()))
}

// Transpose rewrites the pitches of one line's column range by the given
// number of semitones, as a buffer edit.
func (s *Session) Transpose(row, startCol, endCol, semitones int) error {
	return s.rewriteLine(row, func(ls structure.LineStructure) ([]structure.Rewrite, error) {
		return structure.Transpose(ls, startCol, endCol, semitones)
	})
}

// ShiftOctave rewrites the pitches of one line's column range up or down
// by whole octaves, as a buffer edit.
func (s *Session) ShiftOctave(row, startCol, endCol, octaves int) error {
	return s.rewriteLine(row, func(ls structure.LineStructure) ([]structure.Rewrite, error) {
		return structure.ShiftOctave(ls, startCol, endCol, octaves)
	})
}

func (s *Session) rewriteLine(row int, f func(structure.LineStructure) ([]structure.Rewrite, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lss := s.analyzeLocked()
	if row < 0 || row >= len(lss) {
		return fmt.Errorf("session: row %d out of range [0,%d)", row, len(lss))
	}
	rewrites, err := f(lss[row])
	if err != nil {
		return err
	}
	if len(rewrites) == 0 {
		return nil
	}
	s.checkpointLocked()
	// Right-to-left so earlier column positions stay valid.
	for i := len(rewrites) - 1; i >= 0; i-- {
		rw := rewrites[i]
		r := textbuf.Range{
			Start: textbuf.Pos{Row: row, Col: rw.Range.Start},
			End:   textbuf.Pos{Row: row, Col: rw.Range.End},
		}
		e, err := s.buf.Replace(r, rw.NewText)
		if err != nil {
			return err
		}
		s.layer.ApplyEdit(e)
	}
	return nil
}
