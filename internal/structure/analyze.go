/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package structure

import (
	"sort"

	"swaralipi/internal/annot"
	"swaralipi/internal/pitch"
	"swaralipi/internal/rational"
	"swaralipi/internal/textbuf"
)

// Options configures the analysis of one line.
type Options struct {
	Language pitch.Language
	// Time signature; a beat spans 1/BeatType whole notes.
	Beats    int
	BeatType int
}

// DefaultOptions is sargam in 4/4.
func DefaultOptions() Options {
	return Options{Language: pitch.LangSargam, Beats: 4, BeatType: 4}
}

func (o Options) normalized() Options {
	if o.Language == "" {
		o.Language = pitch.LangSargam
	}
	if o.Beats <= 0 {
		o.Beats = 4
	}
	if o.BeatType <= 0 {
		o.BeatType = 4
	}
	return o
}

// BeatLen is the whole-note duration of one beat under the options' time
// signature.
func (o Options) BeatLen() rational.Rational {
	return rational.New(1, int64(o.normalized().BeatType))
}

// Beat is an ordered group of tokens sharing one rhythmic grouping
// boundary. Token holds indexes into LineStructure.Tokens.
type Beat struct {
	Tokens []int               `json:"tokens"`
	Range  textbuf.OffsetRange `json:"range"`
	Total  rational.Rational   `json:"total"`
}

// LineStructure is the full derived decomposition of one text line. It is
// a pure function of (line text, overlapping annotations) and is never
// kept as authoritative state.
type LineStructure struct {
	Text    string  `json:"text"`
	Tokens  []Token `json:"tokens"`
	Beats   []Beat  `json:"beats"`
	Options Options `json:"-"`
}

// AnalyzeLine tokenizes a line and groups the tokens into beats. Spans are
// interpreted in line-local column offsets. Deterministic and total: any
// input yields a LineStructure, possibly with zero beats.
func AnalyzeLine(text string, spans []annot.Span, opts Options) LineStructure {
	opts = opts.normalized()
	toks := tokenize(text, opts.Language)
	applyOctaveSpans(toks, spans)
	markSlurs(toks, spans)
	beats := groupBeats(toks, spans)
	assignDurations(toks, beats, opts.BeatLen())
	return LineStructure{Text: text, Tokens: toks, Beats: beats, Options: opts}
}

// applyOctaveSpans raises or lowers tokens covered by octave-marker
// annotations (the overlay equivalent of dots above or below the line).
func applyOctaveSpans(toks []Token, spans []annot.Span) {
	for _, s := range spans {
		var delta int
		switch s.Kind {
		case annot.KindOctaveUpper:
			delta = 1
		case annot.KindOctaveLower:
			delta = -1
		default:
			continue
		}
		for i := range toks {
			if toks[i].Kind == TokenPitch && toks[i].Range.Overlaps(s.Range) {
				toks[i].Pitch = toks[i].Pitch.ShiftOctave(delta)
			}
		}
	}
}

// markSlurs flags pitch tokens that a slur connects to a successor.
func markSlurs(toks []Token, spans []annot.Span) {
	for _, s := range spans {
		if s.Kind != annot.KindSlur {
			continue
		}
		last := -1
		for i := range toks {
			if toks[i].Kind == TokenPitch && toks[i].Range.Overlaps(s.Range) {
				if last >= 0 {
					toks[last].Slurred = true
				}
				last = i
			}
		}
	}
}

// groupBeats joins consecutive non-separator tokens into beats. A
// whitespace gap between tokens ends the current beat unless a beat-group
// annotation bridges it. Barlines always end a beat and belong to none.
// Empty beats are dropped, never emitted as zero-duration.
func groupBeats(toks []Token, spans []annot.Span) []Beat {
	var groups []textbuf.OffsetRange
	for _, s := range spans {
		if s.Kind == annot.KindBeatGroup {
			groups = append(groups, s.Range)
		}
	}
	bridged := func(a, b textbuf.OffsetRange) bool {
		for _, g := range groups {
			if g.Overlaps(a) && g.Overlaps(b) {
				return true
			}
		}
		return false
	}

	var beats []Beat
	var cur *Beat
	flush := func() {
		if cur != nil && len(cur.Tokens) > 0 {
			beats = append(beats, *cur)
		}
		cur = nil
	}
	for i, t := range toks {
		if t.Kind == TokenBarline || t.Kind == TokenUnknown {
			flush()
			continue
		}
		if cur != nil {
			prev := toks[cur.Tokens[len(cur.Tokens)-1]]
			adjacent := prev.Range.End == t.Range.Start
			if !adjacent && !bridged(prev.Range, t.Range) {
				flush()
			}
		}
		if cur == nil {
			cur = &Beat{Range: t.Range}
		}
		cur.Tokens = append(cur.Tokens, i)
		cur.Range.End = t.Range.End
	}
	flush()
	return beats
}

// assignDurations splits each beat's length evenly over its rhythmic
// units. A dash extends the previous pitch; a dash opening a beat is a
// rest. Beat totals always sum to exactly beatLen.
func assignDurations(toks []Token, beats []Beat, beatLen rational.Rational) {
	for bi := range beats {
		b := &beats[bi]
		units := int64(len(b.Tokens))
		if units == 0 {
			continue
		}
		unit := beatLen.Div(rational.FromInt(units))
		carrier := -1 // token index currently absorbing dash extensions
		for _, ti := range b.Tokens {
			t := &toks[ti]
			switch t.Kind {
			case TokenPitch:
				t.Duration = unit
				carrier = ti
			case TokenRest:
				t.Duration = unit
				carrier = ti
			case TokenDash:
				if carrier >= 0 {
					toks[carrier].Duration = toks[carrier].Duration.Add(unit)
				} else {
					// Beat opens with a dash: it is a rest.
					t.Kind = TokenRest
					t.Duration = unit
					carrier = ti
				}
			}
		}
		b.Total = beatLen
	}
}

// FindBeatAt returns the beat whose text range contains the given column,
// using binary search over the ordered beat ranges. Columns falling in
// inter-beat whitespace report no beat.
func FindBeatAt(ls LineStructure, col int) (Beat, bool) {
	i := sort.Search(len(ls.Beats), func(i int) bool {
		return ls.Beats[i].Range.End > col
	})
	if i < len(ls.Beats) && ls.Beats[i].Range.ContainsOffset(col) {
		return ls.Beats[i], true
	}
	return Beat{}, false
}
