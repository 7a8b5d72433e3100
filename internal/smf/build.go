/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package smf

import (
	"swaralipi/internal/ir"
	"swaralipi/internal/musicxml"
	"swaralipi/internal/rational"
)

// phase tracks where a part's conversion stands. Each part walks
// unparsed -> attributesSeen -> trackBuilding -> finalized; a note
// arriving before any attributes is musically inconsistent.
type phase int

const (
	phaseUnparsed phase = iota
	phaseAttributesSeen
	phaseTrackBuilding
	phaseFinalized
)

// FromMusicXML parses MusicXML and builds the Score model. Parse
// failures surface as ErrXML; musically inconsistent content (notes
// before attributes, unmatched ties, degenerate durations) as
// ErrInvalid.
func FromMusicXML(data []byte, opts Options) (*Score, error) {
	res, err := musicxml.Import(data)
	if err != nil {
		return nil, &Error{Kind: ErrXML, Message: "parsing input", Err: err}
	}
	return fromDocument(res.Doc, opts)
}

func fromDocument(doc ir.Document, opts Options) (*Score, error) {
	if opts.Tempo <= 0 {
		opts.Tempo = 120
	}
	if opts.Velocity == 0 {
		opts.Velocity = 96
	}

	sc := &Score{TPQ: opts.TPQ, Tempo: opts.Tempo}
	if sc.TPQ == 0 {
		sc.TPQ = nativeTPQ(doc)
	}

	for li, line := range doc.Lines {
		tb := newTrackBuilder(sc.TPQ, opts)
		for _, e := range line.Events {
			if err := tb.event(e); err != nil {
				return nil, err
			}
		}
		track, err := tb.finish()
		if err != nil {
			return nil, err
		}
		sc.Tracks = append(sc.Tracks, track)
		if li == 0 {
			sc.Beats, sc.BeatType = tb.beats, tb.beatType
		}
	}
	return sc, nil
}

// nativeTPQ resolves the zero sentinel to the document's own divisions
// declaration, so the header never carries a zero resolution.
func nativeTPQ(doc ir.Document) uint16 {
	for _, line := range doc.Lines {
		for _, e := range line.Events {
			if e.Kind == ir.KindAttributes && e.Attributes.Divisions > 0 {
				return uint16(e.Attributes.Divisions)
			}
		}
	}
	return fallbackTPQ
}

// pendingNote is a note whose off position may still be extended by tie
// continuations.
type pendingNote struct {
	key   uint8
	start rational.Rational
	end   rational.Rational
	open  bool
}

// trackBuilder walks one part's events, keeping an exact rational
// cursor per voice. Ticks are always derived from the absolute rational
// position, and every barline snaps all cursors to the measure start,
// so rounding differences on individual notes never drift.
type trackBuilder struct {
	tpq   uint16
	opts  Options
	state phase

	measureStart rational.Rational
	measureLen   rational.Rational
	cursors      map[int]rational.Rational
	pending      map[int]*pendingNote

	beats, beatType int
	events          []NoteEvent
}

func newTrackBuilder(tpq uint16, opts Options) *trackBuilder {
	return &trackBuilder{
		tpq:     tpq,
		opts:    opts,
		cursors: map[int]rational.Rational{},
		pending: map[int]*pendingNote{},
	}
}

func (tb *trackBuilder) cursor(voice int) rational.Rational {
	if c, ok := tb.cursors[voice]; ok {
		return c
	}
	return tb.measureStart
}

func (tb *trackBuilder) event(e ir.Event) error {
	switch e.Kind {
	case ir.KindAttributes:
		a := *e.Attributes
		if a.Beats > 0 && a.BeatType > 0 {
			tb.beats, tb.beatType = a.Beats, a.BeatType
			tb.measureLen = a.MeasureLen()
		}
		if tb.state == phaseUnparsed {
			tb.state = phaseAttributesSeen
		}
	case ir.KindNote:
		return tb.note(*e.Note)
	case ir.KindRest:
		if e.Rest.Duration.Sign() <= 0 {
			return errf(ErrInvalid, "rest with non-positive duration %v", e.Rest.Duration)
		}
		voice := e.Rest.Voice
		tb.cursors[voice] = tb.cursor(voice).Add(e.Rest.Duration)
	case ir.KindBarline:
		tb.barline()
	case ir.KindDirection:
		// No timing or pitch content.
	}
	return nil
}

func (tb *trackBuilder) note(n ir.Note) error {
	if tb.state == phaseUnparsed {
		return errf(ErrInvalid, "note before any attributes declaration")
	}
	tb.state = phaseTrackBuilding
	if n.Duration.Sign() <= 0 {
		return errf(ErrInvalid, "note with non-positive duration %v", n.Duration)
	}

	voice := n.Voice
	key := n.Pitch.MIDIKey()
	at := tb.cursor(voice)
	end := at.Add(n.Duration)
	tb.cursors[voice] = end

	if p := tb.pending[voice]; p != nil {
		if p.key != key {
			return errf(ErrInvalid, "tie into different pitch (key %d then %d)", p.key, key)
		}
		p.end = end
		p.open = n.Tie
		if !p.open {
			tb.flush(voice)
		}
		return nil
	}

	p := &pendingNote{key: key, start: at, end: end, open: n.Tie}
	tb.pending[voice] = p
	if !p.open {
		tb.flush(voice)
	}
	return nil
}

// flush converts a completed pending note into tick events.
func (tb *trackBuilder) flush(voice int) {
	p := tb.pending[voice]
	delete(tb.pending, voice)
	tb.events = append(tb.events, NoteEvent{
		OnTick:   p.start.Ticks(tb.tpq),
		OffTick:  p.end.Ticks(tb.tpq),
		Key:      p.key,
		Velocity: tb.opts.Velocity,
		Channel:  tb.opts.Channel,
	})
}

// barline advances the measure origin by the declared measure length
// and snaps every voice cursor to it. Ties stay pending across the
// barline.
func (tb *trackBuilder) barline() {
	if tb.measureLen.IsPositive() {
		tb.measureStart = tb.measureStart.Add(tb.measureLen)
	} else {
		// No time signature declared: fall back to the furthest cursor.
		max := tb.measureStart
		for _, c := range tb.cursors {
			if c.Cmp(max) > 0 {
				max = c
			}
		}
		tb.measureStart = max
	}
	for voice := range tb.cursors {
		tb.cursors[voice] = tb.measureStart
	}
}

func (tb *trackBuilder) finish() (Track, error) {
	for _, p := range tb.pending {
		if p.open {
			return Track{}, errf(ErrInvalid, "unmatched tie on key %d", p.key)
		}
	}
	tb.state = phaseFinalized
	return Track{Events: tb.events}, nil
}
