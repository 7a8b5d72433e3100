/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package musicxml

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"swaralipi/internal/ir"
	"swaralipi/internal/pitch"
	"swaralipi/internal/rational"
)

// ImportResult is the best-effort outcome of an import. Doc holds
// everything that converted cleanly; Skipped records what did not, with
// enough context to locate each element in the source.
type ImportResult struct {
	Doc     ir.Document
	Skipped []SkippedElement
}

// Import reads score-partwise MusicXML into an IR document. Each <part>
// becomes one line. Malformed or unsupported sub-elements (chords,
// backup/forward, notes with bad pitch or duration) are skipped and
// recorded; only a top-level failure is fatal: a syntax error yields a
// ParseError, a well-formed document with no score-partwise root a
// ConversionError.
func Import(data []byte) (*ImportResult, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	score := xmlquery.FindOne(root, "//score-partwise")
	if score == nil {
		return nil, &ConversionError{Message: "no score-partwise root element"}
	}

	res := &ImportResult{}
	for pi, part := range xmlquery.Find(score, "part") {
		line := importPart(part, pi, res)
		res.Doc.Lines = append(res.Doc.Lines, line)
	}
	return res, nil
}

// partState carries the running context one part needs while its
// measures are walked.
type partState struct {
	divisions int64
}

func importPart(part *xmlquery.Node, pi int, res *ImportResult) ir.Line {
	var line ir.Line
	st := &partState{}

	measures := xmlquery.Find(part, "measure")
	for mi, measure := range measures {
		for _, child := range xmlquery.Find(measure, "*") {
			path := fmt.Sprintf("part[%d]/measure[%d]/%s", pi+1, mi+1, child.Data)
			switch child.Data {
			case "attributes":
				line.Events = append(line.Events, ir.AttributesEvent(importAttributes(child, st)))
			case "note":
				ev, skip := importNote(child, st, path)
				if skip != nil {
					res.Skipped = append(res.Skipped, *skip)
					continue
				}
				line.Events = append(line.Events, ev)
			case "backup", "forward":
				res.Skipped = append(res.Skipped, SkippedElement{
					Path:   path,
					Reason: "multi-voice cursor movement is not supported",
				})
			case "direction":
				if words := xmlquery.FindOne(child, "direction-type/words"); words != nil {
					line.Events = append(line.Events, ir.DirectionEvent(ir.Direction{Text: strings.TrimSpace(words.InnerText())}))
				}
			case "barline", "print", "sound":
				// Mid-measure barlines carry style only; measure
				// boundaries are reconstructed below. Layout and
				// playback hints carry no pitch or duration.
			default:
				res.Skipped = append(res.Skipped, SkippedElement{
					Path:   path,
					Reason: fmt.Sprintf("unsupported element <%s>", child.Data),
				})
			}
		}
		if mi < len(measures)-1 {
			line.Events = append(line.Events, ir.BarlineEvent(ir.Barline{}))
		}
	}
	return line
}

func importAttributes(node *xmlquery.Node, st *partState) ir.Attributes {
	var a ir.Attributes
	if d := childInt(node, "divisions"); d > 0 {
		st.divisions = d
		a.Divisions = d
	}
	a.Fifths = int(childInt(node, "key/fifths"))
	a.Beats = int(childInt(node, "time/beats"))
	a.BeatType = int(childInt(node, "time/beat-type"))
	if sign := xmlquery.FindOne(node, "clef/sign"); sign != nil {
		a.Clef = strings.TrimSpace(sign.InnerText())
	}
	return a
}

// importNote converts one <note> to a note or rest event. A non-nil
// SkippedElement means the note was unusable and must be recorded, not
// converted.
func importNote(node *xmlquery.Node, st *partState, path string) (ir.Event, *SkippedElement) {
	if xmlquery.FindOne(node, "chord") != nil {
		return ir.Event{}, &SkippedElement{Path: path, Reason: "chord notes are not supported"}
	}
	if st.divisions <= 0 {
		return ir.Event{}, &SkippedElement{Path: path, Reason: "note precedes any divisions declaration"}
	}
	durNode := xmlquery.FindOne(node, "duration")
	if durNode == nil {
		return ir.Event{}, &SkippedElement{Path: path, Reason: "missing duration"}
	}
	durTicks, err := strconv.ParseInt(strings.TrimSpace(durNode.InnerText()), 10, 64)
	if err != nil || durTicks <= 0 {
		return ir.Event{}, &SkippedElement{Path: path, Reason: fmt.Sprintf("bad duration %q", durNode.InnerText())}
	}
	// divisions counts ticks per quarter; durations are whole-note
	// fractions, hence the 4.
	dur := rational.New(durTicks, st.divisions*4)

	if xmlquery.FindOne(node, "rest") != nil {
		r := ir.Rest{Duration: dur}
		if v := childInt(node, "voice"); v > 0 {
			r.Voice = int(v)
		}
		return ir.RestEvent(r), nil
	}

	pitchNode := xmlquery.FindOne(node, "pitch")
	if pitchNode == nil {
		return ir.Event{}, &SkippedElement{Path: path, Reason: "note has neither pitch nor rest"}
	}
	step, err := pitch.StepFromLetter(childText(pitchNode, "step"))
	if err != nil {
		return ir.Event{}, &SkippedElement{Path: path, Reason: err.Error()}
	}
	octave, err := strconv.Atoi(childText(pitchNode, "octave"))
	if err != nil {
		return ir.Event{}, &SkippedElement{Path: path, Reason: fmt.Sprintf("bad octave %q", childText(pitchNode, "octave"))}
	}
	alter := rational.Zero()
	if s := childText(pitchNode, "alter"); s != "" {
		alter, err = parseDecimal(s)
		if err != nil {
			return ir.Event{}, &SkippedElement{Path: path, Reason: fmt.Sprintf("bad alter %q", s)}
		}
	}

	n := ir.Note{
		Pitch:    pitch.Pitch{Step: step, Alter: alter, Octave: octave},
		Duration: dur,
	}
	for _, tie := range xmlquery.Find(node, "tie") {
		if tie.SelectAttr("type") == "start" {
			n.Tie = true
		}
	}
	if v := childInt(node, "voice"); v > 0 {
		n.Voice = int(v)
	}
	return ir.NoteEvent(n), nil
}

func childText(node *xmlquery.Node, expr string) string {
	if c := xmlquery.FindOne(node, expr); c != nil {
		return strings.TrimSpace(c.InnerText())
	}
	return ""
}

func childInt(node *xmlquery.Node, expr string) int64 {
	v, err := strconv.ParseInt(childText(node, expr), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
