/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package smf

import (
	"bytes"
	"math/bits"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	gsmf "gitlab.com/gomidi/midi/v2/smf"
)

// Bytes serializes the score as a format-1 Standard MIDI File: header
// chunk, then one MTrk per track with delta-encoded events and an
// end-of-track meta event.
func (sc *Score) Bytes() ([]byte, error) {
	if sc.TPQ == 0 {
		return nil, errf(ErrMidi, "zero tick resolution reached the header")
	}

	s := gsmf.New()
	s.TimeFormat = gsmf.MetricTicks(sc.TPQ)

	for i, tr := range sc.Tracks {
		var track gsmf.Track
		if i == 0 {
			track.Add(0, tempoMessage(sc.Tempo))
			if sc.Beats > 0 && sc.BeatType > 0 {
				track.Add(0, timeSignatureMessage(sc.Beats, sc.BeatType))
			}
		}
		addNotes(&track, tr.Events)
		track.Close(0)
		if err := s.Add(track); err != nil {
			return nil, &Error{Kind: ErrMidi, Message: "adding track", Err: err}
		}
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, &Error{Kind: ErrMidi, Message: "writing file", Err: err}
	}
	return buf.Bytes(), nil
}

// wireEvent is a note boundary flattened for delta encoding.
type wireEvent struct {
	tick int64
	on   bool
	note NoteEvent
}

func addNotes(track *gsmf.Track, events []NoteEvent) {
	wire := make([]wireEvent, 0, len(events)*2)
	for _, e := range events {
		wire = append(wire,
			wireEvent{tick: e.OnTick, on: true, note: e},
			wireEvent{tick: e.OffTick, on: false, note: e},
		)
	}
	// Offs sort before ons at the same tick so back-to-back repeats of
	// one key release before they retrigger.
	sort.SliceStable(wire, func(i, j int) bool {
		if wire[i].tick != wire[j].tick {
			return wire[i].tick < wire[j].tick
		}
		return !wire[i].on && wire[j].on
	})

	var cursor int64
	for _, w := range wire {
		delta := uint32(w.tick - cursor)
		cursor = w.tick
		if w.on {
			track.Add(delta, midi.NoteOn(w.note.Channel, w.note.Key, w.note.Velocity))
		} else {
			track.Add(delta, midi.NoteOff(w.note.Channel, w.note.Key))
		}
	}
}

func tempoMessage(bpm float64) gsmf.Message {
	usPerBeat := uint32(60000000.0 / bpm)
	return gsmf.Message([]byte{
		0xFF, 0x51, 0x03,
		byte(usPerBeat >> 16),
		byte(usPerBeat >> 8),
		byte(usPerBeat),
	})
}

func timeSignatureMessage(beats, beatType int) gsmf.Message {
	// The denominator is stored as its base-2 logarithm.
	denomPow := byte(bits.Len(uint(beatType)) - 1)
	return gsmf.Message([]byte{0xFF, 0x58, 0x04, byte(beats), denomPow, 0x18, 0x08})
}

// Convert is the one-call path from MusicXML bytes to SMF bytes.
func Convert(data []byte, opts Options) ([]byte, error) {
	sc, err := FromMusicXML(data, opts)
	if err != nil {
		return nil, err
	}
	return sc.Bytes()
}
