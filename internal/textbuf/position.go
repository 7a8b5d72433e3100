/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textbuf

import "fmt"

// Pos addresses one character cell by row and column. Immutable value type.
// A Pos is only guaranteed valid against the buffer state it was taken
// from; callers re-validate after edits.
type Pos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Row, p.Col) }

// Before reports whether p comes before q in reading order.
func (p Pos) Before(q Pos) bool {
	if p.Row != q.Row {
		return p.Row < q.Row
	}
	return p.Col < q.Col
}

// Range is a half-open [Start, End) span of buffer positions.
type Range struct {
	Start Pos `json:"start"`
	End   Pos `json:"end"`
}

// Normalize returns the range with Start ≤ End.
func (r Range) Normalize() Range {
	if r.End.Before(r.Start) {
		return Range{Start: r.End, End: r.Start}
	}
	return r
}

// IsEmpty reports whether the range covers no characters.
func (r Range) IsEmpty() bool { return r.Start == r.End }

// Contains reports whether the position lies inside the range.
func (r Range) Contains(p Pos) bool {
	r = r.Normalize()
	return !p.Before(r.Start) && p.Before(r.End)
}

func (r Range) String() string { return fmt.Sprintf("[%s,%s)", r.Start, r.End) }

// OffsetRange is a range in linear-offset space, the coordinate system the
// annotation layer stores spans in.
type OffsetRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r OffsetRange) Len() int { return r.End - r.Start }

func (r OffsetRange) IsEmpty() bool { return r.Start >= r.End }

// Overlaps reports whether two offset ranges share at least one character.
func (r OffsetRange) Overlaps(o OffsetRange) bool {
	return r.Start < o.End && o.Start < r.End
}

// ContainsOffset reports whether off lies inside the half-open range.
func (r OffsetRange) ContainsOffset(off int) bool {
	return off >= r.Start && off < r.End
}

// Edit describes one buffer mutation in linear-offset space: OldLen
// characters at Off were replaced by NewLen characters. Inserts have
// OldLen 0, deletes NewLen 0.
type Edit struct {
	Off    int
	OldLen int
	NewLen int
}

// Delta is the signed length change of the edit.
func (e Edit) Delta() int { return e.NewLen - e.OldLen }

// IsNoop reports whether the edit changes nothing.
func (e Edit) IsNoop() bool { return e.OldLen == 0 && e.NewLen == 0 }
