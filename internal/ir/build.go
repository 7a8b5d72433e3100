/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ir

import (
	"fmt"

	"swaralipi/internal/rational"
	"swaralipi/internal/structure"
)

// FromLineStructures converts derived line structures into an IR document.
// Total and deterministic: every line maps to a Line, and a line with no
// musical content maps to an empty-but-present Line so positional
// correspondence with the text is preserved. Lines with content open with
// an Attributes event carrying the analysis time signature.
func FromLineStructures(lss []structure.LineStructure) Document {
	doc := Document{Lines: make([]Line, 0, len(lss))}
	for _, ls := range lss {
		doc.Lines = append(doc.Lines, lineFromStructure(ls))
	}
	return doc
}

func lineFromStructure(ls structure.LineStructure) Line {
	hasContent := false
	for _, t := range ls.Tokens {
		if t.Kind == structure.TokenPitch || t.Kind == structure.TokenRest || t.Kind == structure.TokenBarline {
			hasContent = true
			break
		}
	}
	if !hasContent {
		return Line{}
	}

	opts := ls.Options
	line := Line{Events: []Event{AttributesEvent(Attributes{
		Beats:    opts.Beats,
		BeatType: opts.BeatType,
		Clef:     "G",
	})}}

	// A slur between two tokens of the same written pitch is a tie; an
	// unequal-pitch slur has no IR equivalent and is dropped.
	for i, t := range ls.Tokens {
		switch t.Kind {
		case structure.TokenPitch:
			tie := false
			if t.Slurred {
				if j := nextPitchToken(ls.Tokens, i); j >= 0 && ls.Tokens[j].Pitch.Equal(t.Pitch) {
					tie = true
				}
			}
			line.Events = append(line.Events, NoteEvent(Note{
				Pitch:    t.Pitch,
				Duration: t.Duration,
				Tie:      tie,
				Voice:    1,
			}))
		case structure.TokenRest:
			line.Events = append(line.Events, RestEvent(Rest{Duration: t.Duration, Voice: 1}))
		case structure.TokenBarline:
			line.Events = append(line.Events, BarlineEvent(Barline{Style: "regular"}))
		}
	}
	return line
}

func nextPitchToken(toks []structure.Token, i int) int {
	for j := i + 1; j < len(toks); j++ {
		if toks[j].Kind == structure.TokenPitch {
			return j
		}
	}
	return -1
}

// Diagnostic flags a measure whose event durations do not match the
// declared time signature.
type Diagnostic struct {
	Line    int
	Measure int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d measure %d: %s", d.Line, d.Measure, d.Message)
}

// PadMeasures enforces the measure-duration invariant: between two
// barlines the summed durations must equal the declared measure length.
// Short measures are padded with a trailing rest, overfull ones flagged;
// nothing is ever silently truncated. Measures are delimited by Barline
// events; the trailing partial measure of a line is left alone (lines
// need not end on a barline).
func PadMeasures(doc Document) (Document, []Diagnostic) {
	var diags []Diagnostic
	out := Document{Lines: make([]Line, len(doc.Lines))}
	for li, line := range doc.Lines {
		var events []Event
		measureLen := rational.Zero()
		sum := rational.Zero()
		sawDur := false
		measure := 1
		for _, e := range line.Events {
			switch e.Kind {
			case KindAttributes:
				if ml := e.Attributes.MeasureLen(); !ml.IsZero() {
					measureLen = ml
				}
				events = append(events, e)
			case KindBarline:
				if sawDur && !measureLen.IsZero() {
					switch sum.Cmp(measureLen) {
					case -1:
						pad := measureLen.Sub(sum)
						events = append(events, RestEvent(Rest{Duration: pad, Voice: 1}))
						diags = append(diags, Diagnostic{Line: li, Measure: measure,
							Message: fmt.Sprintf("short by %s, padded with rest", pad)})
					case 1:
						diags = append(diags, Diagnostic{Line: li, Measure: measure,
							Message: fmt.Sprintf("overfull: %s exceeds %s", sum, measureLen)})
					}
				}
				events = append(events, e)
				sum = rational.Zero()
				sawDur = false
				measure++
			default:
				if d := e.Duration(); !d.IsZero() {
					sum = sum.Add(d)
					sawDur = true
				}
				events = append(events, e)
			}
		}
		out.Lines[li] = Line{Events: events}
	}
	return out, diags
}
