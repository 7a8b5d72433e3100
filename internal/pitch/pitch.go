/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pitch models written pitch: a diatonic step, a chromatic
// alteration and an octave. The alteration is a rational number of
// semitones so quarter-tone accidentals (alter = ±1/2, ±3/2) survive every
// conversion; only the MIDI key mapping rounds.
package pitch

import (
	"fmt"
	"strings"

	"swaralipi/internal/rational"
)

// Step is a diatonic letter step, C through B.
type Step int

const (
	StepC Step = iota
	StepD
	StepE
	StepF
	StepG
	StepA
	StepB
)

var stepLetters = [7]string{"C", "D", "E", "F", "G", "A", "B"}

// semitone offset of each step from C within one octave
var stepSemis = [7]int{0, 2, 4, 5, 7, 9, 11}

func (s Step) String() string {
	if s < StepC || s > StepB {
		return "?"
	}
	return stepLetters[s]
}

// StepFromLetter parses a western letter name (case-insensitive).
func StepFromLetter(letter string) (Step, error) {
	switch strings.ToUpper(strings.TrimSpace(letter)) {
	case "C":
		return StepC, nil
	case "D":
		return StepD, nil
	case "E":
		return StepE, nil
	case "F":
		return StepF, nil
	case "G":
		return StepG, nil
	case "A":
		return StepA, nil
	case "B":
		return StepB, nil
	}
	return 0, fmt.Errorf("pitch: unknown step letter %q", letter)
}

// Language selects the spelling used for notation symbols: sargam letters
// (S R G M P D N), western letters, or numbered scale degrees.
type Language string

const (
	LangSargam  Language = "sargam"
	LangWestern Language = "western"
	LangNumber  Language = "number"
)

// sargam degrees relative to the tonic; the tonic maps to C by convention
// so converters agree on an absolute reference.
var sargamSteps = map[byte]Step{
	'S': StepC, 'R': StepD, 'G': StepE, 'M': StepF,
	'P': StepG, 'D': StepA, 'N': StepB,
}

var numberSteps = map[byte]Step{
	'1': StepC, '2': StepD, '3': StepE, '4': StepF,
	'5': StepG, '6': StepA, '7': StepB,
}

// StepFromSymbol resolves a single notation character under the given
// language. Western letters are accepted in either case; lower case in
// sargam conventionally flattens, which the caller handles via alteration.
func StepFromSymbol(ch byte, lang Language) (Step, bool) {
	switch lang {
	case LangSargam:
		s, ok := sargamSteps[upperByte(ch)]
		return s, ok
	case LangNumber:
		s, ok := numberSteps[ch]
		return s, ok
	default:
		switch upperByte(ch) {
		case 'C':
			return StepC, true
		case 'D':
			return StepD, true
		case 'E':
			return StepE, true
		case 'F':
			return StepF, true
		case 'G':
			return StepG, true
		case 'A':
			return StepA, true
		case 'B':
			return StepB, true
		}
		return 0, false
	}
}

// Symbol renders a step in the given language ("S", "C" or "1").
func Symbol(s Step, lang Language) string {
	switch lang {
	case LangSargam:
		return [7]string{"S", "R", "G", "M", "P", "D", "N"}[s]
	case LangNumber:
		return [7]string{"1", "2", "3", "4", "5", "6", "7"}[s]
	default:
		return s.String()
	}
}

func upperByte(ch byte) byte {
	if ch >= 'a' && ch <= 'z' {
		return ch - 'a' + 'A'
	}
	return ch
}

// Pitch is a written pitch. Octave follows scientific pitch notation
// (C4 = middle C). Alter is in semitones and may be half-integral.
type Pitch struct {
	Step   Step              `json:"step"`
	Alter  rational.Rational `json:"alter"`
	Octave int               `json:"octave"`
}

// Equal reports whether two pitches name the same written note.
func (p Pitch) Equal(q Pitch) bool {
	return p.Step == q.Step && p.Octave == q.Octave && p.Alter.Equal(q.Alter)
}

// New returns a pitch with an integral alteration.
func New(step Step, alter int64, octave int) Pitch {
	return Pitch{Step: step, Alter: rational.FromInt(alter), Octave: octave}
}

// MIDIKey maps the pitch onto the 12-tone keyboard, rounding fractional
// alterations to the nearest semitone (an exact half rounds away from
// zero, so quarter-flat rounds up). Values are clamped to the 0..127 key
// range.
func (p Pitch) MIDIKey() uint8 {
	semis := float64(stepSemis[p.Step]) + p.Alter.Float64()
	key := float64((p.Octave+1)*12) + semis
	k := int(key + 0.5)
	if key < 0 {
		k = int(key - 0.5)
	}
	if k < 0 {
		k = 0
	}
	if k > 127 {
		k = 127
	}
	return uint8(k)
}

// Transposed returns the pitch moved by the given number of semitones,
// respelled to the nearest natural step with the residue carried in Alter.
// Fractional alterations are preserved through the move.
func (p Pitch) Transposed(semitones int) Pitch {
	total := rational.FromInt(int64((p.Octave+1)*12 + stepSemis[p.Step] + semitones)).Add(p.Alter)
	// Integer part chooses the chromatic slot; fraction stays in Alter.
	whole := total.Num() / total.Den()
	frac := total.Sub(rational.FromInt(whole))
	if frac.Sign() < 0 {
		whole--
		frac = frac.Add(rational.FromInt(1))
	}
	octave := int(whole)/12 - 1
	chroma := int(whole) % 12
	step, alter := respell(chroma)
	return Pitch{
		Step:   step,
		Alter:  rational.FromInt(int64(alter)).Add(frac),
		Octave: octave,
	}
}

// ShiftOctave moves the pitch by whole octaves.
func (p Pitch) ShiftOctave(delta int) Pitch {
	out := p
	out.Octave += delta
	return out
}

// respell picks a step/alter spelling for a chromatic degree, preferring
// naturals and otherwise flatting the next step up (sargam convention).
func respell(chroma int) (Step, int) {
	for i, s := range stepSemis {
		if s == chroma {
			return Step(i), 0
		}
	}
	for i, s := range stepSemis {
		if s == chroma+1 {
			return Step(i), -1
		}
	}
	// chroma 11 only reaches here via wraparound; spell as B.
	return StepB, 0
}

// String renders as e.g. "C4", "Db4", "D-1/2:4" for fractional alters.
func (p Pitch) String() string {
	base := p.Step.String()
	switch {
	case p.Alter.IsZero():
		return fmt.Sprintf("%s%d", base, p.Octave)
	case p.Alter.Den() == 1:
		n := p.Alter.Num()
		acc := strings.Repeat("#", int(max64(n, 0))) + strings.Repeat("b", int(max64(-n, 0)))
		return fmt.Sprintf("%s%s%d", base, acc, p.Octave)
	default:
		return fmt.Sprintf("%s%s:%d", base, p.Alter, p.Octave)
	}
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
