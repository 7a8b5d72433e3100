/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package celldoc holds the spatial document model the renderer consumes:
// a grid of addressable cells, one per glyph-bearing event, with
// horizontal spacing derived from durations. The grid is produced from IR
// and read by the layout collaborator; converters never mutate it in
// place.
package celldoc

import (
	"fmt"

	"swaralipi/internal/ir"
	"swaralipi/internal/pitch"
	"swaralipi/internal/rational"
	"swaralipi/internal/structure"
)

// Role says what a cell renders as.
type Role string

const (
	RoleNote    Role = "note"
	RoleRest    Role = "rest"
	RoleBarline Role = "barline"
)

// Cell is one addressable glyph position. Pitch and Duration carry enough
// of the source event that the grid converts back to IR without loss.
type Cell struct {
	Row      int               `json:"row"`
	Col      int               `json:"col"`
	Width    int               `json:"width"`
	Glyph    string            `json:"glyph"`
	Role     Role              `json:"role"`
	Pitch    pitch.Pitch       `json:"pitch,omitempty"`
	Duration rational.Rational `json:"duration"`
	Tie      bool              `json:"tie,omitempty"`
	Voice    int               `json:"voice,omitempty"`
}

// GridLine is one row of the document with its attribute context.
type GridLine struct {
	Attrs *ir.Attributes `json:"attrs,omitempty"`
	Cells []Cell         `json:"cells"`
}

// Grid is the whole spatial document.
type Grid struct {
	Language pitch.Language `json:"language"`
	Lines    []GridLine     `json:"lines"`
}

// LayoutError reports an IR document that cannot be laid out.
type LayoutError struct {
	Line    int
	Message string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("celldoc: line %d: %s", e.Line, e.Message)
}

// FromIR lays out an IR document into a grid. Each glyph-bearing event
// gets one cell; cell width is the event duration measured in multiples
// of the line's shortest duration, so relative spacing mirrors rhythm.
// Fails with LayoutError when an event has a non-positive duration or a
// note appears before any Attributes.
func FromIR(doc ir.Document, lang pitch.Language) (*Grid, error) {
	if lang == "" {
		lang = pitch.LangSargam
	}
	g := &Grid{Language: lang, Lines: make([]GridLine, 0, len(doc.Lines))}
	for li, line := range doc.Lines {
		gl, err := layoutLine(li, line, lang)
		if err != nil {
			return nil, err
		}
		g.Lines = append(g.Lines, gl)
	}
	return g, nil
}

func layoutLine(row int, line ir.Line, lang pitch.Language) (GridLine, error) {
	var gl GridLine
	minDur := rational.Zero()
	for _, e := range line.Events {
		d := e.Duration()
		if e.Kind == ir.KindNote || e.Kind == ir.KindRest {
			if !d.IsPositive() {
				return GridLine{}, &LayoutError{Line: row, Message: fmt.Sprintf("non-positive duration %s", d)}
			}
			if minDur.IsZero() || d.Cmp(minDur) < 0 {
				minDur = d
			}
		}
	}

	col := 0
	for _, e := range line.Events {
		switch e.Kind {
		case ir.KindAttributes:
			a := *e.Attributes
			gl.Attrs = &a
		case ir.KindNote:
			if gl.Attrs == nil {
				return GridLine{}, &LayoutError{Line: row, Message: "note before attributes: key/time context undefined"}
			}
			glyph, err := structure.RenderPitch(e.Note.Pitch, lang)
			if err != nil {
				// Quarter-tone pitches have no text glyph; show the
				// neutral letter and keep the exact pitch in the cell.
				glyph = pitch.Symbol(e.Note.Pitch.Step, lang)
			}
			w := widthFor(e.Note.Duration, minDur)
			gl.Cells = append(gl.Cells, Cell{
				Row: row, Col: col, Width: w,
				Glyph: glyph, Role: RoleNote,
				Pitch: e.Note.Pitch, Duration: e.Note.Duration,
				Tie: e.Note.Tie, Voice: e.Note.Voice,
			})
			col += w
		case ir.KindRest:
			w := widthFor(e.Rest.Duration, minDur)
			gl.Cells = append(gl.Cells, Cell{
				Row: row, Col: col, Width: w,
				Glyph: "-", Role: RoleRest,
				Duration: e.Rest.Duration, Voice: e.Rest.Voice,
			})
			col += w
		case ir.KindBarline:
			gl.Cells = append(gl.Cells, Cell{
				Row: row, Col: col, Width: 1,
				Glyph: "|", Role: RoleBarline,
			})
			col++
		}
	}
	return gl, nil
}

// widthFor sizes a cell as ceil(duration / minDur).
func widthFor(d, minDur rational.Rational) int {
	if minDur.IsZero() {
		return 1
	}
	q := d.Div(minDur)
	w := q.Num() / q.Den()
	if q.Num()%q.Den() != 0 {
		w++
	}
	if w < 1 {
		w = 1
	}
	return int(w)
}

// ToIR converts a grid back into IR. Every valid grid maps to a document;
// an empty grid line maps to an empty-but-present IR line.
func ToIR(g *Grid) ir.Document {
	doc := ir.Document{Lines: make([]ir.Line, 0, len(g.Lines))}
	for _, gl := range g.Lines {
		var line ir.Line
		if gl.Attrs != nil {
			a := *gl.Attrs
			line.Events = append(line.Events, ir.AttributesEvent(a))
		}
		for _, c := range gl.Cells {
			switch c.Role {
			case RoleNote:
				line.Events = append(line.Events, ir.NoteEvent(ir.Note{
					Pitch: c.Pitch, Duration: c.Duration, Tie: c.Tie, Voice: c.Voice,
				}))
			case RoleRest:
				line.Events = append(line.Events, ir.RestEvent(ir.Rest{Duration: c.Duration, Voice: c.Voice}))
			case RoleBarline:
				line.Events = append(line.Events, ir.BarlineEvent(ir.Barline{Style: "regular"}))
			}
		}
		doc.Lines = append(doc.Lines, line)
	}
	return doc
}
