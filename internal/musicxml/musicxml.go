/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package musicxml converts between the IR and MusicXML 3.1 documents.
// Import is tolerant: malformed or unsupported sub-elements are skipped
// and reported, never fatal, so a single bad element cannot abort a whole
// score. Export always produces well-formed XML with a divisions value
// that makes every duration an exact integer tick count.
package musicxml

import (
	"fmt"
	"strings"

	"swaralipi/internal/pitch"
	"swaralipi/internal/rational"
)

// ParseError reports XML that could not be parsed at all. Anything less
// than a top-level syntax failure is recovered and recorded instead.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("musicxml: parse: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// ConversionError reports structurally valid input that cannot be mapped
// into target semantics.
type ConversionError struct {
	Message string
}

func (e *ConversionError) Error() string { return "musicxml: " + e.Message }

// SkippedElement records one element the importer could not use.
type SkippedElement struct {
	Path   string `json:"path"` // e.g. "part[1]/measure[3]/note[2]"
	Reason string `json:"reason"`
}

// ExportConfig holds the exporter's knobs. Each knob's effect is
// independently testable.
type ExportConfig struct {
	// PitchLanguage controls the notation symbols written as note lyrics
	// so the score reads back in the source spelling system.
	PitchLanguage pitch.Language
	// ElideRedundantAccidentals drops an <accidental> when the same
	// alteration already appeared for that step earlier in the measure.
	ElideRedundantAccidentals bool
	// Software names the encoder in the identification block.
	Software string
}

// DefaultExportConfig exports sargam symbols and writes every accidental.
func DefaultExportConfig() ExportConfig {
	return ExportConfig{PitchLanguage: pitch.LangSargam, Software: "swaralipi"}
}

// accidentalName maps an exact alteration to the MusicXML accidental
// element text. The mapping is canonical in both directions so
// quarter-tone accidentals survive a round trip without storing the text.
func accidentalName(alter rational.Rational) (string, bool) {
	switch alter.String() {
	case "0":
		return "natural", true
	case "1":
		return "sharp", true
	case "-1":
		return "flat", true
	case "2":
		return "double-sharp", true
	case "-2":
		return "flat-flat", true
	case "1/2":
		return "quarter-sharp", true
	case "-1/2":
		return "quarter-flat", true
	case "3/2":
		return "three-quarters-sharp", true
	case "-3/2":
		return "three-quarters-flat", true
	}
	return "", false
}

// noteTypeName maps a whole-note duration to the MusicXML <type> name and
// dot flag, for the plain cases. Unmapped durations (tuplet slices and
// other irregular values) omit <type>; <duration> alone is authoritative.
func noteTypeName(d rational.Rational) (name string, dot bool, ok bool) {
	switch d.String() {
	case "1/64":
		return "64th", false, true
	case "1/32":
		return "32nd", false, true
	case "1/16":
		return "16th", false, true
	case "1/8":
		return "eighth", false, true
	case "3/16":
		return "eighth", true, true
	case "1/4":
		return "quarter", false, true
	case "3/8":
		return "quarter", true, true
	case "1/2":
		return "half", false, true
	case "3/4":
		return "half", true, true
	case "1":
		return "whole", false, true
	}
	return "", false, false
}

// parseDecimal reads a MusicXML decimal (as used by <alter>) into an
// exact rational, so -0.5 becomes -1/2 instead of a float.
func parseDecimal(s string) (rational.Rational, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return rational.Rational{}, fmt.Errorf("empty decimal")
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	num := int64(0)
	for _, c := range intPart {
		if c < '0' || c > '9' {
			return rational.Rational{}, fmt.Errorf("bad decimal %q", s)
		}
		num = num*10 + int64(c-'0')
	}
	den := int64(1)
	for _, c := range fracPart {
		if c < '0' || c > '9' {
			return rational.Rational{}, fmt.Errorf("bad decimal %q", s)
		}
		num = num*10 + int64(c-'0')
		den *= 10
	}
	if neg {
		num = -num
	}
	return rational.New(num, den), nil
}

// formatDecimal writes a rational as a MusicXML decimal. Only
// denominators whose reduced form divides a power of ten terminate; the
// alterations we emit (halves, quarters via 0.5 steps) all do.
func formatDecimal(r rational.Rational) string {
	num, den := r.Num(), r.Den()
	if den == 1 {
		return fmt.Sprintf("%d", num)
	}
	// Scale to a power of ten.
	scale := int64(1)
	d := den
	for d%2 == 0 {
		d /= 2
		scale *= 5
	}
	for d%5 == 0 {
		d /= 5
		scale *= 2
	}
	if d != 1 {
		// Non-terminating; fall back to a close decimal.
		return fmt.Sprintf("%g", r.Float64())
	}
	scaled := num * scale
	width := 0
	for p := den * scale / 1; p > 1; p /= 10 {
		width++
	}
	sign := ""
	if scaled < 0 {
		sign = "-"
		scaled = -scaled
	}
	intPart := scaled
	for i := 0; i < width; i++ {
		intPart /= 10
	}
	frac := fmt.Sprintf("%0*d", width, scaled-intPart*pow10(width))
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		return fmt.Sprintf("%s%d", sign, intPart)
	}
	return fmt.Sprintf("%s%d.%s", sign, intPart, frac)
}

func pow10(n int) int64 {
	out := int64(1)
	for i := 0; i < n; i++ {
		out *= 10
	}
	return out
}
