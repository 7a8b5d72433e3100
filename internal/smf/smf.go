/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package smf turns MusicXML into Standard MIDI Files. The conversion
// goes through a flat Score model of absolute-tick note events; tick
// positions are computed from exact rational note positions so rounding
// error never accumulates across a measure.
package smf

import "fmt"

// ErrorKind classifies conversion failures.
type ErrorKind string

const (
	// ErrXML is malformed input that could not be parsed at all.
	ErrXML ErrorKind = "xml"
	// ErrInvalid is well-formed input that is musically inconsistent,
	// such as an unmatched tie or a non-positive duration.
	ErrInvalid ErrorKind = "invalid"
	// ErrMidi is an internal encoding failure while writing the file.
	ErrMidi ErrorKind = "midi"
)

// Error is the package's failure type. All conversion paths return it;
// nothing in this package panics on bad input.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("smf: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("smf: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func errf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NoteEvent is one sounding note at absolute tick positions.
type NoteEvent struct {
	OnTick   int64
	OffTick  int64
	Key      uint8
	Velocity uint8
	Channel  uint8
}

// Track is the note list for one part.
type Track struct {
	Events []NoteEvent
}

// Score is the MIDI-facing model: per-track absolute-time events plus
// the tick resolution they are expressed in. TPQ here is always the
// resolved value that goes into the file header, never the zero
// sentinel.
type Score struct {
	TPQ      uint16
	Tempo    float64
	Beats    int
	BeatType int
	Tracks   []Track
}

// Options configures the conversion.
type Options struct {
	// TPQ is the tick-per-quarter-note resolution of the output file.
	// Zero is a sentinel for "keep the document's native divisions
	// value"; the resolved resolution is never zero.
	TPQ uint16
	// Tempo in beats per minute for the tempo meta event.
	Tempo float64
	// Velocity for every note-on.
	Velocity uint8
	// Channel for every note event.
	Channel uint8
}

// DefaultOptions keeps the document's native resolution at 120 bpm.
func DefaultOptions() Options {
	return Options{TPQ: 0, Tempo: 120, Velocity: 96, Channel: 0}
}

// fallbackTPQ is used when the sentinel asks for the native resolution
// but the document never declares divisions.
const fallbackTPQ = 480
