/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package ir defines the format-neutral intermediate representation every
// converter pivots through: an ordered sequence of musical events per
// line, lines ordered into a document. The IR is transient — built fresh
// from derived structure or an imported file, consumed, and discarded.
package ir

import (
	"swaralipi/internal/pitch"
	"swaralipi/internal/rational"
)

// EventKind tags the active variant of an Event.
type EventKind string

const (
	KindNote       EventKind = "note"
	KindRest       EventKind = "rest"
	KindAttributes EventKind = "attributes"
	KindBarline    EventKind = "barline"
	KindDirection  EventKind = "direction"
)

// Note is a sounding event.
type Note struct {
	Pitch    pitch.Pitch       `json:"pitch"`
	Duration rational.Rational `json:"duration"`
	Tie      bool              `json:"tie,omitempty"`
	Voice    int               `json:"voice,omitempty"`
}

// Rest is a silent event. It occupies time on its voice's cursor exactly
// as a note of the same duration would.
type Rest struct {
	Duration rational.Rational `json:"duration"`
	Voice    int               `json:"voice,omitempty"`
}

// Attributes establishes key, time and clef context for the events that
// follow, plus the divisions resolution carried from MusicXML.
type Attributes struct {
	Fifths    int    `json:"fifths"`
	Beats     int    `json:"beats,omitempty"`
	BeatType  int    `json:"beatType,omitempty"`
	Clef      string `json:"clef,omitempty"`
	Divisions int64  `json:"divisions,omitempty"`
}

// Barline separates measures.
type Barline struct {
	Style string `json:"style,omitempty"`
}

// Direction is free-text performance guidance.
type Direction struct {
	Text string `json:"text"`
}

// Event is the tagged union. Exactly one variant pointer is non-nil,
// matching Kind.
type Event struct {
	Kind       EventKind   `json:"kind"`
	Note       *Note       `json:"note,omitempty"`
	Rest       *Rest       `json:"rest,omitempty"`
	Attributes *Attributes `json:"attributes,omitempty"`
	Barline    *Barline    `json:"barline,omitempty"`
	Direction  *Direction  `json:"direction,omitempty"`
}

// NoteEvent wraps a Note into an Event.
func NoteEvent(n Note) Event { return Event{Kind: KindNote, Note: &n} }

// RestEvent wraps a Rest into an Event.
func RestEvent(r Rest) Event { return Event{Kind: KindRest, Rest: &r} }

// AttributesEvent wraps Attributes into an Event.
func AttributesEvent(a Attributes) Event { return Event{Kind: KindAttributes, Attributes: &a} }

// BarlineEvent wraps a Barline into an Event.
func BarlineEvent(b Barline) Event { return Event{Kind: KindBarline, Barline: &b} }

// DirectionEvent wraps a Direction into an Event.
func DirectionEvent(d Direction) Event { return Event{Kind: KindDirection, Direction: &d} }

// Duration returns the event's duration, zero for non-durational events.
func (e Event) Duration() rational.Rational {
	switch e.Kind {
	case KindNote:
		return e.Note.Duration
	case KindRest:
		return e.Rest.Duration
	}
	return rational.Zero()
}

// Line is an ordered event sequence for one part or staff line.
type Line struct {
	Events []Event `json:"events"`
}

// Document is the ordered sequence of lines.
type Document struct {
	Lines []Line `json:"lines"`
}

// MeasureLen is the whole-note length a time signature declares.
func (a Attributes) MeasureLen() rational.Rational {
	if a.Beats <= 0 || a.BeatType <= 0 {
		return rational.Zero()
	}
	return rational.New(int64(a.Beats), int64(a.BeatType))
}

// Durations collects every note and rest duration in the document, in
// order. The MusicXML exporter feeds this to rational.LCD to choose its
// divisions value.
func (d Document) Durations() []rational.Rational {
	var out []rational.Rational
	for _, line := range d.Lines {
		for _, e := range line.Events {
			if dur := e.Duration(); !dur.IsZero() {
				out = append(out, dur)
			}
		}
	}
	return out
}
