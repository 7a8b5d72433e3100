/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package celldoc

// DisplayList is the rendering boundary. The layout engine (HTML/SVG/
// LilyPond, out of tree) consumes it and never writes back into text,
// annotation or IR state.

// DisplayItem is one positioned glyph with its CSS-ish class.
type DisplayItem struct {
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Width int    `json:"width"`
	Class string `json:"class"`
	Glyph string `json:"glyph"`
	Tie   bool   `json:"tie,omitempty"`
}

// DisplayList is an ordered flat list of display items.
type DisplayList struct {
	Items []DisplayItem `json:"items"`
}

// BuildDisplayList flattens a grid for the renderer.
func BuildDisplayList(g *Grid) DisplayList {
	var dl DisplayList
	for _, line := range g.Lines {
		for _, c := range line.Cells {
			dl.Items = append(dl.Items, DisplayItem{
				Row:   c.Row,
				Col:   c.Col,
				Width: c.Width,
				Class: "cell-" + string(c.Role),
				Glyph: c.Glyph,
				Tie:   c.Tie,
			})
		}
	}
	return dl
}
