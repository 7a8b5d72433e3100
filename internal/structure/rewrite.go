/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package structure

import (
	"fmt"
	"strings"

	"swaralipi/internal/pitch"
)

// Rewrite names one text substitution the caller must apply to the buffer.
// Structure operations never mutate text themselves; the text stays the
// single source of truth and the editor applies rewrites as ordinary
// edits.
type Rewrite struct {
	Range   struct{ Start, End int } `json:"range"` // column offsets
	NewText string                   `json:"newText"`
}

// Transpose computes the rewrites that move every pitch token overlapping
// the given column span by the given number of semitones. The line
// structure itself is left untouched.
func Transpose(ls LineStructure, startCol, endCol, semitones int) ([]Rewrite, error) {
	return rewritePitches(ls, startCol, endCol, func(p pitch.Pitch) pitch.Pitch {
		return p.Transposed(semitones)
	})
}

// ShiftOctave computes the rewrites that move every pitch token
// overlapping the given column span by whole octaves.
func ShiftOctave(ls LineStructure, startCol, endCol, octaves int) ([]Rewrite, error) {
	return rewritePitches(ls, startCol, endCol, func(p pitch.Pitch) pitch.Pitch {
		return p.ShiftOctave(octaves)
	})
}

func rewritePitches(ls LineStructure, startCol, endCol int, f func(pitch.Pitch) pitch.Pitch) ([]Rewrite, error) {
	if endCol < startCol {
		startCol, endCol = endCol, startCol
	}
	var out []Rewrite
	for _, t := range ls.Tokens {
		if t.Kind != TokenPitch {
			continue
		}
		if t.Range.End <= startCol || t.Range.Start >= endCol {
			continue
		}
		text, err := RenderPitch(f(t.Pitch), ls.Options.Language)
		if err != nil {
			return nil, fmt.Errorf("structure: token at col %d: %w", t.Range.Start, err)
		}
		if text == t.Text {
			continue
		}
		rw := Rewrite{NewText: text}
		rw.Range.Start = t.Range.Start
		rw.Range.End = t.Range.End
		out = append(out, rw)
	}
	return out, nil
}

// RenderPitch writes a pitch back into notation text: symbol, chromatic
// modifiers, then octave marks relative to the middle octave. Fractional
// alterations cannot be written in text and are rejected.
func RenderPitch(p pitch.Pitch, lang pitch.Language) (string, error) {
	if p.Alter.Den() != 1 {
		return "", fmt.Errorf("fractional alteration %s has no text form", p.Alter)
	}
	alter := p.Alter.Num()
	var b strings.Builder

	sym, absorbed := baseSymbol(p.Step, alter, lang)
	b.WriteString(sym)
	alter -= absorbed
	for ; alter > 0; alter-- {
		b.WriteByte('#')
	}
	for ; alter < 0; alter++ {
		b.WriteByte('b')
	}

	for o := p.Octave; o > defaultOctave; o-- {
		b.WriteByte('\'')
	}
	for o := p.Octave; o < defaultOctave; o++ {
		b.WriteByte('.')
	}
	return b.String(), nil
}

// baseSymbol picks the letter for a step and reports how much alteration
// the letter itself absorbs (sargam komal/tivra forms carry one semitone).
func baseSymbol(s pitch.Step, alter int64, lang pitch.Language) (string, int64) {
	if lang != pitch.LangSargam {
		return pitch.Symbol(s, lang), 0
	}
	switch s {
	case pitch.StepD:
		if alter < 0 {
			return "r", -1
		}
		return "R", 0
	case pitch.StepE:
		if alter < 0 {
			return "g", -1
		}
		return "G", 0
	case pitch.StepF:
		if alter > 0 {
			return "M", 1
		}
		return "m", 0
	case pitch.StepA:
		if alter < 0 {
			return "d", -1
		}
		return "D", 0
	case pitch.StepB:
		if alter < 0 {
			return "n", -1
		}
		return "N", 0
	case pitch.StepG:
		return "P", 0
	default:
		return "S", 0
	}
}
