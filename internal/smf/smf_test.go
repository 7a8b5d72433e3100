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
	"errors"
	"testing"

	"swaralipi/internal/ir"
	"swaralipi/internal/pitch"
	"swaralipi/internal/rational"
)

const quarterC4 = `<?xml version="1.0"?>
<score-partwise version="3.1">
  <part-list>
    <score-part id="P1"><part-name>Line 1</part-name></score-part>
  </part-list>
  <part id="P1">
    <measure number="1">
      <attributes>
        <divisions>96</divisions>
        <key><fifths>0</fifths></key>
        <time><beats>4</beats><beat-type>4</beat-type></time>
      </attributes>
      <note>
        <pitch><step>C</step><octave>4</octave></pitch>
        <duration>96</duration>
      </note>
    </measure>
  </part>
</score-partwise>`

func TestQuarterNoteC4(t *testing.T) {
	opts := DefaultOptions()
	opts.TPQ = 480
	sc, err := FromMusicXML([]byte(quarterC4), opts)
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	if sc.TPQ != 480 {
		t.Fatalf("expected tpq 480, got %d", sc.TPQ)
	}
	if len(sc.Tracks) != 1 || len(sc.Tracks[0].Events) != 1 {
		t.Fatalf("expected 1 track with 1 event, got %+v", sc.Tracks)
	}
	e := sc.Tracks[0].Events[0]
	if e.OnTick != 0 || e.OffTick != 480 {
		t.Fatalf("expected ticks 0..480, got %d..%d", e.OnTick, e.OffTick)
	}
	if e.Key != 60 {
		t.Fatalf("expected key 60 for C4, got %d", e.Key)
	}
}

func TestNativeResolutionSentinel(t *testing.T) {
	sc, err := FromMusicXML([]byte(quarterC4), DefaultOptions())
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	if sc.TPQ != 96 {
		t.Fatalf("sentinel should adopt document divisions 96, got %d", sc.TPQ)
	}
	e := sc.Tracks[0].Events[0]
	if e.OffTick != 96 {
		t.Fatalf("expected quarter = 96 ticks at native resolution, got %d", e.OffTick)
	}
}

func TestZeroResolutionNeverReachesHeader(t *testing.T) {
	sc := &Score{TPQ: 0, Tempo: 120, Tracks: []Track{{}}}
	_, err := sc.Bytes()
	var serr *Error
	if !errors.As(err, &serr) || serr.Kind != ErrMidi {
		t.Fatalf("expected ErrMidi for zero resolution, got %v", err)
	}
}

func tripletMeasure() []ir.Event {
	events := []ir.Event{
		ir.AttributesEvent(ir.Attributes{Beats: 4, BeatType: 4, Clef: "G"}),
	}
	for i := 0; i < 12; i++ {
		events = append(events, ir.NoteEvent(ir.Note{
			Pitch:    pitch.New(pitch.StepC, 0, 4),
			Duration: rational.New(1, 12),
		}))
	}
	return events
}

func TestNoDriftAtMeasureBoundary(t *testing.T) {
	// Triplet eighths at tpq=100 round unevenly (100*4/12 = 33.33...),
	// but the cursor is derived from exact positions, so the note after
	// the barline lands on the exact measure-start tick.
	events := tripletMeasure()
	events = append(events, ir.BarlineEvent(ir.Barline{}))
	events = append(events, ir.NoteEvent(ir.Note{
		Pitch:    pitch.New(pitch.StepD, 0, 4),
		Duration: rational.New(1, 4),
	}))
	doc := ir.Document{Lines: []ir.Line{{Events: events}}}

	sc, err := fromDocument(doc, Options{TPQ: 100, Tempo: 120, Velocity: 96})
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	evs := sc.Tracks[0].Events
	if len(evs) != 13 {
		t.Fatalf("expected 13 events, got %d", len(evs))
	}
	// One whole measure of 4/4 at tpq=100 is 400 ticks exactly.
	if evs[12].OnTick != 400 {
		t.Fatalf("note after barline at tick %d, want 400", evs[12].OnTick)
	}
	// Individual triplet boundaries may round either way but stay
	// within one tick of the exact position.
	for i, e := range evs[:12] {
		exact := float64(i) * 400.0 / 12.0
		if diff := float64(e.OnTick) - exact; diff > 1 || diff < -1 {
			t.Fatalf("triplet %d on-tick %d drifts from %.2f", i, e.OnTick, exact)
		}
	}
}

func TestRestDelaysFollowingNote(t *testing.T) {
	// Notes derived from notation text carry voice 1; the rest between
	// them must advance the same cursor, not a separate silent one.
	doc := ir.Document{Lines: []ir.Line{{Events: []ir.Event{
		ir.AttributesEvent(ir.Attributes{Beats: 4, BeatType: 4}),
		ir.NoteEvent(ir.Note{Pitch: pitch.New(pitch.StepC, 0, 4), Duration: rational.New(1, 4), Voice: 1}),
		ir.RestEvent(ir.Rest{Duration: rational.New(1, 4), Voice: 1}),
		ir.NoteEvent(ir.Note{Pitch: pitch.New(pitch.StepD, 0, 4), Duration: rational.New(1, 4), Voice: 1}),
	}}}}
	sc, err := fromDocument(doc, Options{TPQ: 480, Tempo: 120, Velocity: 96})
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	evs := sc.Tracks[0].Events
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
	if evs[1].OnTick != 960 {
		t.Fatalf("note after rest starts at tick %d, want 960", evs[1].OnTick)
	}
	if evs[1].OffTick != 1440 {
		t.Fatalf("note after rest ends at tick %d, want 1440", evs[1].OffTick)
	}
}

func TestTieMergesIntoOneEvent(t *testing.T) {
	doc := ir.Document{Lines: []ir.Line{{Events: []ir.Event{
		ir.AttributesEvent(ir.Attributes{Beats: 4, BeatType: 4}),
		ir.NoteEvent(ir.Note{Pitch: pitch.New(pitch.StepG, 0, 4), Duration: rational.New(1, 4), Tie: true}),
		ir.NoteEvent(ir.Note{Pitch: pitch.New(pitch.StepG, 0, 4), Duration: rational.New(1, 4)}),
	}}}}
	sc, err := fromDocument(doc, Options{TPQ: 480, Tempo: 120, Velocity: 96})
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	evs := sc.Tracks[0].Events
	if len(evs) != 1 {
		t.Fatalf("tied pair should merge into 1 event, got %d", len(evs))
	}
	if evs[0].OnTick != 0 || evs[0].OffTick != 960 {
		t.Fatalf("merged event should span 0..960, got %d..%d", evs[0].OnTick, evs[0].OffTick)
	}
}

func TestInvalidInput(t *testing.T) {
	cases := []struct {
		name   string
		events []ir.Event
	}{
		{"unmatched tie", []ir.Event{
			ir.AttributesEvent(ir.Attributes{Beats: 4, BeatType: 4}),
			ir.NoteEvent(ir.Note{Pitch: pitch.New(pitch.StepC, 0, 4), Duration: rational.New(1, 4), Tie: true}),
		}},
		{"tie into different pitch", []ir.Event{
			ir.AttributesEvent(ir.Attributes{Beats: 4, BeatType: 4}),
			ir.NoteEvent(ir.Note{Pitch: pitch.New(pitch.StepC, 0, 4), Duration: rational.New(1, 4), Tie: true}),
			ir.NoteEvent(ir.Note{Pitch: pitch.New(pitch.StepD, 0, 4), Duration: rational.New(1, 4)}),
		}},
		{"note before attributes", []ir.Event{
			ir.NoteEvent(ir.Note{Pitch: pitch.New(pitch.StepC, 0, 4), Duration: rational.New(1, 4)}),
		}},
		{"non-positive duration", []ir.Event{
			ir.AttributesEvent(ir.Attributes{Beats: 4, BeatType: 4}),
			ir.NoteEvent(ir.Note{Pitch: pitch.New(pitch.StepC, 0, 4), Duration: rational.Zero()}),
		}},
	}
	for _, c := range cases {
		doc := ir.Document{Lines: []ir.Line{{Events: c.events}}}
		_, err := fromDocument(doc, DefaultOptions())
		var serr *Error
		if !errors.As(err, &serr) || serr.Kind != ErrInvalid {
			t.Errorf("%s: expected ErrInvalid, got %v", c.name, err)
		}
	}
}

func TestConvertProducesStandardFile(t *testing.T) {
	opts := DefaultOptions()
	opts.TPQ = 480
	data, err := Convert([]byte(quarterC4), opts)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("MThd")) {
		t.Fatalf("output missing MThd header: % x", data[:8])
	}
	if !bytes.Contains(data, []byte("MTrk")) {
		t.Fatal("output missing MTrk chunk")
	}
	// Header division field carries the configured resolution.
	if got := int(data[12])<<8 | int(data[13]); got != 480 {
		t.Fatalf("header division = %d, want 480", got)
	}
}

func TestConvertRejectsMalformedXML(t *testing.T) {
	_, err := Convert([]byte("<score-partwise><oops"), DefaultOptions())
	var serr *Error
	if !errors.As(err, &serr) || serr.Kind != ErrXML {
		t.Fatalf("expected ErrXML, got %v", err)
	}
}
