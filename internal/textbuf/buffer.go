/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textbuf holds the character-grid text buffer that is the single
// source of truth for a score. The buffer knows nothing about music; all
// musical meaning is derived from it by the structure package. Every
// mutation returns an Edit description so overlay layers can follow along.
package textbuf

import (
	"fmt"
	"strings"
)

// Buffer is a line-oriented mutable text store. The newline between rows
// counts as one character in linear offsets. Not safe for concurrent
// mutation; the owning session serializes edits.
type Buffer struct {
	lines []string
}

// New creates a buffer from initial text. An empty string yields a single
// empty line.
func New(text string) *Buffer {
	return &Buffer{lines: strings.Split(text, "\n")}
}

// String reassembles the full buffer contents.
func (b *Buffer) String() string { return strings.Join(b.lines, "\n") }

// NumLines reports the number of rows.
func (b *Buffer) NumLines() int { return len(b.lines) }

// Line returns the text of one row.
func (b *Buffer) Line(row int) (string, error) {
	if row < 0 || row >= len(b.lines) {
		return "", fmt.Errorf("textbuf: row %d out of range [0,%d)", row, len(b.lines))
	}
	return b.lines[row], nil
}

// Len is the total character count including inter-line newlines.
func (b *Buffer) Len() int {
	n := 0
	for _, l := range b.lines {
		n += len(l)
	}
	return n + len(b.lines) - 1
}

// Offset converts a row/column position into a linear offset.
func (b *Buffer) Offset(p Pos) (int, error) {
	if p.Row < 0 || p.Row >= len(b.lines) {
		return 0, fmt.Errorf("textbuf: position row %d out of range", p.Row)
	}
	if p.Col < 0 || p.Col > len(b.lines[p.Row]) {
		return 0, fmt.Errorf("textbuf: position col %d out of range on row %d", p.Col, p.Row)
	}
	off := 0
	for r := 0; r < p.Row; r++ {
		off += len(b.lines[r]) + 1
	}
	return off + p.Col, nil
}

// PosAt converts a linear offset back to row/column. Offsets addressing a
// newline resolve to the end of the preceding row.
func (b *Buffer) PosAt(offset int) (Pos, error) {
	if offset < 0 || offset > b.Len() {
		return Pos{}, fmt.Errorf("textbuf: offset %d out of range [0,%d]", offset, b.Len())
	}
	for r, l := range b.lines {
		if offset <= len(l) {
			return Pos{Row: r, Col: offset}, nil
		}
		offset -= len(l) + 1
	}
	last := len(b.lines) - 1
	return Pos{Row: last, Col: len(b.lines[last])}, nil
}

// Slice returns the text covered by a range.
func (b *Buffer) Slice(r Range) (string, error) {
	r = r.Normalize()
	start, err := b.Offset(r.Start)
	if err != nil {
		return "", err
	}
	end, err := b.Offset(r.End)
	if err != nil {
		return "", err
	}
	return b.String()[start:end], nil
}

// Insert places text at a position and returns the resulting edit.
// The text may contain newlines.
func (b *Buffer) Insert(p Pos, text string) (Edit, error) {
	off, err := b.Offset(p)
	if err != nil {
		return Edit{}, err
	}
	whole := b.String()
	b.lines = strings.Split(whole[:off]+text+whole[off:], "\n")
	return Edit{Off: off, OldLen: 0, NewLen: len(text)}, nil
}

// Delete removes the text covered by a range and returns the edit.
func (b *Buffer) Delete(r Range) (Edit, error) {
	r = r.Normalize()
	start, err := b.Offset(r.Start)
	if err != nil {
		return Edit{}, err
	}
	end, err := b.Offset(r.End)
	if err != nil {
		return Edit{}, err
	}
	whole := b.String()
	b.lines = strings.Split(whole[:start]+whole[end:], "\n")
	return Edit{Off: start, OldLen: end - start, NewLen: 0}, nil
}

// Replace substitutes the text in a range and returns the edit.
func (b *Buffer) Replace(r Range, text string) (Edit, error) {
	r = r.Normalize()
	start, err := b.Offset(r.Start)
	if err != nil {
		return Edit{}, err
	}
	end, err := b.Offset(r.End)
	if err != nil {
		return Edit{}, err
	}
	whole := b.String()
	b.lines = strings.Split(whole[:start]+text+whole[end:], "\n")
	return Edit{Off: start, OldLen: end - start, NewLen: len(text)}, nil
}
