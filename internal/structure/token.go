/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package structure derives musical structure from notation text. Analysis
// is stateless: the same line text and annotation overlay always produce
// the same tokens and beats, and nothing here is cached between calls.
//
// Notation syntax (sargam shown; western letters and numbered degrees work
// the same way):
//   - S R G m P D N      pitch symbols; lowercase r g d n are komal
//     (flatted), M is tivra Ma (raised fourth)
//   - # b                chromatic modifiers attached to the previous pitch
//   - ' .                octave up / octave down marks on the previous pitch
//   - -                  extends the previous pitch inside a beat, or is a
//     rest when it opens a beat
//   - ,                  rest
//   - |                  barline
//   - whitespace         beat separator (unless bridged by a beat-group arc)
package structure

import (
	"swaralipi/internal/pitch"
	"swaralipi/internal/rational"
	"swaralipi/internal/textbuf"
)

// TokenKind classifies one scanned symbol.
type TokenKind string

const (
	TokenPitch   TokenKind = "pitch"
	TokenRest    TokenKind = "rest"
	TokenDash    TokenKind = "dash" // duration extension of the previous pitch
	TokenBarline TokenKind = "barline"
	TokenUnknown TokenKind = "unknown"
)

// Token is one derived musical symbol with its originating column range.
// Tokens are ephemeral: recomputed on every analysis, never stored.
type Token struct {
	Range    textbuf.OffsetRange `json:"range"` // column offsets within the line
	Kind     TokenKind           `json:"kind"`
	Text     string              `json:"text"`
	Pitch    pitch.Pitch         `json:"pitch,omitempty"`
	Duration rational.Rational   `json:"duration"`
	// Slurred is set when a slur annotation covers this token and extends
	// to at least one following token.
	Slurred bool `json:"slurred,omitempty"`
}

// sargam symbol table: letter -> step and inherent alteration. Lowercase
// r g d n are komal; M (capital) is tivra Ma. S and P have no altered
// written form.
var sargamTable = map[byte]struct {
	step  pitch.Step
	alter int64
}{
	'S': {pitch.StepC, 0}, 's': {pitch.StepC, 0},
	'R': {pitch.StepD, 0}, 'r': {pitch.StepD, -1},
	'G': {pitch.StepE, 0}, 'g': {pitch.StepE, -1},
	'm': {pitch.StepF, 0}, 'M': {pitch.StepF, 1},
	'P': {pitch.StepG, 0}, 'p': {pitch.StepG, 0},
	'D': {pitch.StepA, 0}, 'd': {pitch.StepA, -1},
	'N': {pitch.StepB, 0}, 'n': {pitch.StepB, -1},
}

// pitchSymbol resolves one character under the active language, returning
// the written step and its inherent alteration.
func pitchSymbol(ch byte, lang pitch.Language) (pitch.Step, int64, bool) {
	switch lang {
	case pitch.LangSargam:
		e, ok := sargamTable[ch]
		return e.step, e.alter, ok
	default:
		s, ok := pitch.StepFromSymbol(ch, lang)
		return s, 0, ok
	}
}

// defaultOctave is the written middle octave; 'S' with no octave marks is
// the tonic at C4.
const defaultOctave = 4

// tokenize scans a line left to right. Modifier characters fold into the
// preceding pitch token; everything else becomes its own token.
func tokenize(text string, lang pitch.Language) []Token {
	var toks []Token
	lastPitch := -1 // index into toks of the pitch a modifier attaches to
	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case ch == ' ' || ch == '\t':
			lastPitch = -1
		case ch == '|':
			toks = append(toks, Token{
				Range: textbuf.OffsetRange{Start: i, End: i + 1},
				Kind:  TokenBarline, Text: "|",
			})
			lastPitch = -1
		case ch == ',':
			toks = append(toks, Token{
				Range: textbuf.OffsetRange{Start: i, End: i + 1},
				Kind:  TokenRest, Text: ",",
			})
			lastPitch = -1
		case ch == '-':
			toks = append(toks, Token{
				Range: textbuf.OffsetRange{Start: i, End: i + 1},
				Kind:  TokenDash, Text: "-",
			})
		case ch == '#' && lastPitch >= 0:
			t := &toks[lastPitch]
			t.Pitch.Alter = t.Pitch.Alter.Add(rational.FromInt(1))
			t.Range.End = i + 1
			t.Text = text[t.Range.Start : i+1]
		case ch == 'b' && lastPitch >= 0 && lang != pitch.LangWestern:
			// In western spelling 'b' is the pitch letter B; flats are
			// written only in sargam/number text.
			t := &toks[lastPitch]
			t.Pitch.Alter = t.Pitch.Alter.Sub(rational.FromInt(1))
			t.Range.End = i + 1
			t.Text = text[t.Range.Start : i+1]
		case ch == '\'' && lastPitch >= 0:
			t := &toks[lastPitch]
			t.Pitch.Octave++
			t.Range.End = i + 1
			t.Text = text[t.Range.Start : i+1]
		case ch == '.' && lastPitch >= 0:
			t := &toks[lastPitch]
			t.Pitch.Octave--
			t.Range.End = i + 1
			t.Text = text[t.Range.Start : i+1]
		default:
			if step, alter, ok := pitchSymbol(ch, lang); ok {
				toks = append(toks, Token{
					Range: textbuf.OffsetRange{Start: i, End: i + 1},
					Kind:  TokenPitch, Text: string(ch),
					Pitch: pitch.New(step, alter, defaultOctave),
				})
				lastPitch = len(toks) - 1
			} else {
				toks = append(toks, Token{
					Range: textbuf.OffsetRange{Start: i, End: i + 1},
					Kind:  TokenUnknown, Text: string(ch),
				})
				lastPitch = -1
			}
		}
	}
	return toks
}
