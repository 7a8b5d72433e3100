/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package rational

import (
	"encoding/json"
	"testing"
)

func TestAddReduces(t *testing.T) {
	got := New(1, 4).Add(New(1, 4))
	if got.Num() != 1 || got.Den() != 2 {
		t.Fatalf("1/4+1/4 = %s, want 1/2", got)
	}
}

func TestMeasureSum(t *testing.T) {
	// Four quarters add to a whole without drift.
	sum := Zero()
	for i := 0; i < 4; i++ {
		sum = sum.Add(New(1, 4))
	}
	if !sum.Equal(FromInt(1)) {
		t.Fatalf("4 quarters = %s, want 1", sum)
	}
	// Triplet eighths: 3 * 1/12 = 1/4.
	trip := Zero()
	for i := 0; i < 3; i++ {
		trip = trip.Add(New(1, 12))
	}
	if !trip.Equal(New(1, 4)) {
		t.Fatalf("triplet sum = %s, want 1/4", trip)
	}
}

func TestParseAndString(t *testing.T) {
	cases := []struct {
		in   string
		want Rational
	}{
		{"1/4", New(1, 4)},
		{"3", FromInt(3)},
		{"-1/2", New(-1, 2)},
		{"2/4", New(1, 2)},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.in, err)
		}
		if !got.Equal(c.want) {
			t.Fatalf("Parse(%q) = %s, want %s", c.in, got, c.want)
		}
	}
	if _, err := Parse("1/0"); err == nil {
		t.Fatalf("expected error for zero denominator")
	}
	if _, err := Parse(""); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	in := New(3, 8)
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"3/8"` {
		t.Fatalf("marshal = %s, want \"3/8\"", data)
	}
	var out Rational
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.Equal(in) {
		t.Fatalf("round trip = %s, want %s", out, in)
	}
}

func TestLCD(t *testing.T) {
	vals := []Rational{New(1, 4), New(1, 6), New(1, 8)}
	if lcd := LCD(vals); lcd != 24 {
		t.Fatalf("LCD = %d, want 24", lcd)
	}
	if lcd := LCD(nil); lcd != 1 {
		t.Fatalf("LCD(nil) = %d, want 1", lcd)
	}
}

func TestTicksExact(t *testing.T) {
	if got := New(1, 4).Ticks(480); got != 480 {
		t.Fatalf("quarter at 480 = %d ticks, want 480", got)
	}
	if got := FromInt(1).Ticks(480); got != 1920 {
		t.Fatalf("whole at 480 = %d ticks, want 1920", got)
	}
}

func TestTicksRoundHalfEven(t *testing.T) {
	// 1/7 whole at tpq=1: scaled = 4/7 -> 0.571 -> 1.
	if got := New(1, 7).Ticks(1); got != 1 {
		t.Fatalf("1/7 at tpq=1 = %d, want 1", got)
	}
	// scaled exactly n+1/2 rounds to even: 1/8 whole at tpq=1 -> 0.5 -> 0.
	if got := New(1, 8).Ticks(1); got != 0 {
		t.Fatalf("1/8 at tpq=1 = %d, want 0 (half to even)", got)
	}
	// 3/8 whole at tpq=1 -> 1.5 -> 2.
	if got := New(3, 8).Ticks(1); got != 2 {
		t.Fatalf("3/8 at tpq=1 = %d, want 2 (half to even)", got)
	}
	// Negative: -1/8 -> -0.5 -> 0.
	if got := New(-1, 8).Ticks(1); got != 0 {
		t.Fatalf("-1/8 at tpq=1 = %d, want 0", got)
	}
}
