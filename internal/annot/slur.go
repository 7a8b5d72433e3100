/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package annot

import "swaralipi/internal/textbuf"

// Slur operations are the editor-facing annotation API. They work purely
// on (layer, range) and never touch buffer content.

// ApplySlur records a slur over the selection.
func (l *Layer) ApplySlur(rng textbuf.OffsetRange) (SpanID, error) {
	return l.Add(rng, KindSlur, "")
}

// RemoveSlur drops every slur intersecting the selection and reports how
// many were removed.
func (l *Layer) RemoveSlur(rng textbuf.OffsetRange) int {
	removed := 0
	for _, s := range l.Query(rng) {
		if s.Kind != KindSlur {
			continue
		}
		if l.Remove(s.ID) == nil {
			removed++
		}
	}
	return removed
}

// HasSlurInSelection reports whether any slur intersects the selection.
func (l *Layer) HasSlurInSelection(rng textbuf.OffsetRange) bool {
	for _, s := range l.Query(rng) {
		if s.Kind == KindSlur {
			return true
		}
	}
	return false
}

// Legacy slur entry points. An earlier notation format stored slurs as
// paired begin/end markers in the text itself; these shims keep that call
// surface alive but delegate to the span store, so observable slur
// placement is identical on both paths.

// ApplySlurLegacy is the compatibility alias for ApplySlur.
func (l *Layer) ApplySlurLegacy(rng textbuf.OffsetRange) (SpanID, error) {
	return l.ApplySlur(rng)
}

// RemoveSlurLegacy is the compatibility alias for RemoveSlur.
func (l *Layer) RemoveSlurLegacy(rng textbuf.OffsetRange) int {
	return l.RemoveSlur(rng)
}

// HasSlurLegacy is the compatibility alias for HasSlurInSelection.
func (l *Layer) HasSlurLegacy(rng textbuf.OffsetRange) bool {
	return l.HasSlurInSelection(rng)
}
