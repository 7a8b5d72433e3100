/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package musicxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"swaralipi/internal/ir"
	"swaralipi/internal/rational"
	"swaralipi/internal/structure"
)

// Export writes an IR document as score-partwise MusicXML 3.1. Every IR
// line becomes one part. The divisions value is derived from the least
// common denominator of all durations in the document, so each emitted
// <duration> is an exact integer; nothing is approximated.
func Export(w io.Writer, doc ir.Document, cfg ExportConfig) error {
	if cfg.Software == "" {
		cfg.Software = "swaralipi"
	}
	divisions := divisionsFor(doc)

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	wr := &xmlWriter{w: w}
	closeScore := wr.tag("score-partwise", "version", "3.1")

	writeIdentification(wr, cfg)

	closeList := wr.tag("part-list")
	for i := range doc.Lines {
		id := partID(i)
		closePart := wr.tag("score-part", "id", id)
		wr.contentTag("part-name", fmt.Sprintf("Line %d", i+1))
		closePart()
	}
	closeList()

	for i, line := range doc.Lines {
		writePart(wr, partID(i), line, divisions, cfg)
	}
	closeScore()
	return wr.err
}

func partID(i int) string { return fmt.Sprintf("P%d", i+1) }

func writeIdentification(wr *xmlWriter, cfg ExportConfig) {
	closeIdent := wr.tag("identification")
	closeEnc := wr.tag("encoding")
	wr.contentTag("software", cfg.Software)
	wr.contentTag("encoding-date", time.Now().Format("2006-01-02"))
	closeEnc()
	closeIdent()
}

// divisionsFor picks the smallest divisions that keeps every duration an
// integer count of divisions-of-a-quarter ticks.
func divisionsFor(doc ir.Document) int64 {
	lcd := rational.LCD(doc.Durations())
	if lcd%4 == 0 {
		return lcd / 4
	}
	return lcd
}

func writePart(wr *xmlWriter, id string, line ir.Line, divisions int64, cfg ExportConfig) {
	closePart := wr.tag("part", "id", id)
	defer closePart()

	for mi, events := range splitMeasures(line.Events) {
		closeMeasure := wr.tag("measure", "number", mi+1)
		// seen tracks accidentals already written this measure, keyed
		// by step and spelled alteration, for the elision knob.
		seen := map[string]bool{}
		for _, e := range events {
			switch e.Kind {
			case ir.KindAttributes:
				writeAttributes(wr, *e.Attributes, divisions)
			case ir.KindNote:
				writeNote(wr, *e.Note, divisions, cfg, seen)
			case ir.KindRest:
				closeNote := wr.tag("note")
				wr.emptyTag("rest")
				wr.contentTag("duration", ticks(e.Rest.Duration, divisions))
				if e.Rest.Voice > 0 {
					wr.contentTag("voice", e.Rest.Voice)
				}
				closeNote()
			case ir.KindDirection:
				closeDir := wr.tag("direction")
				closeDirType := wr.tag("direction-type")
				wr.contentTag("words", e.Direction.Text)
				closeDirType()
				closeDir()
			}
		}
		closeMeasure()
	}
}

// splitMeasures cuts an event sequence at its barlines. A trailing
// barline does not open an empty final measure.
func splitMeasures(events []ir.Event) [][]ir.Event {
	var out [][]ir.Event
	var cur []ir.Event
	for _, e := range events {
		if e.Kind == ir.KindBarline {
			out = append(out, cur)
			cur = nil
			continue
		}
		cur = append(cur, e)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	if len(out) == 0 {
		out = append(out, nil)
	}
	return out
}

func writeAttributes(wr *xmlWriter, a ir.Attributes, divisions int64) {
	closeAttr := wr.tag("attributes")
	defer closeAttr()
	wr.contentTag("divisions", divisions)
	closeKey := wr.tag("key")
	wr.contentTag("fifths", a.Fifths)
	closeKey()
	if a.Beats > 0 && a.BeatType > 0 {
		closeTime := wr.tag("time")
		wr.contentTag("beats", a.Beats)
		wr.contentTag("beat-type", a.BeatType)
		closeTime()
	}
	if a.Clef != "" {
		closeClef := wr.tag("clef")
		wr.contentTag("sign", a.Clef)
		wr.contentTag("line", clefLine(a.Clef))
		closeClef()
	}
}

func clefLine(sign string) int {
	switch sign {
	case "F":
		return 4
	case "C":
		return 3
	default:
		return 2
	}
}

func writeNote(wr *xmlWriter, n ir.Note, divisions int64, cfg ExportConfig, seen map[string]bool) {
	closeNote := wr.tag("note")
	defer closeNote()

	closePitch := wr.tag("pitch")
	wr.contentTag("step", n.Pitch.Step.String())
	if !n.Pitch.Alter.IsZero() {
		wr.contentTag("alter", formatDecimal(n.Pitch.Alter))
	}
	wr.contentTag("octave", n.Pitch.Octave)
	closePitch()

	wr.contentTag("duration", ticks(n.Duration, divisions))
	if n.Tie {
		wr.fmt(`<tie type="start"/>`)
	}
	if n.Voice > 0 {
		wr.contentTag("voice", n.Voice)
	}
	if name, dot, ok := noteTypeName(n.Duration); ok {
		wr.contentTag("type", name)
		if dot {
			wr.emptyTag("dot")
		}
	}
	writeAccidental(wr, n, cfg, seen)
	if n.Tie {
		closeNotations := wr.tag("notations")
		wr.fmt(`<tied type="start"/>`)
		closeNotations()
	}
	if cfg.PitchLanguage != "" {
		if sym, err := structure.RenderPitch(n.Pitch, cfg.PitchLanguage); err == nil {
			closeLyric := wr.tag("lyric")
			wr.contentTag("text", sym)
			closeLyric()
		}
	}
}

// writeAccidental emits the smart-accidental element. Fractional alters
// always get their accidental so quarter-tones are never reduced to a
// bare number; integral ones honour the elision knob.
func writeAccidental(wr *xmlWriter, n ir.Note, cfg ExportConfig, seen map[string]bool) {
	if n.Pitch.Alter.IsZero() {
		return
	}
	name, ok := accidentalName(n.Pitch.Alter)
	if !ok {
		return
	}
	key := fmt.Sprintf("%s:%s", n.Pitch.Step, n.Pitch.Alter)
	if cfg.ElideRedundantAccidentals && n.Pitch.Alter.Den() == 1 && seen[key] {
		return
	}
	seen[key] = true
	wr.contentTag("accidental", name)
}

// ticks converts a whole-note duration to integer divisions-of-a-quarter
// ticks. divisionsFor guarantees the division is exact.
func ticks(d rational.Rational, divisions int64) int64 {
	q := d.Mul(rational.FromInt(4 * divisions))
	return q.Num() / q.Den()
}
