/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"testing"
	"time"
)

func TestClearAndStats(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024, MaxDepth: 10, MinInterval: time.Millisecond})
	m.PushSnapshot(Snapshot{Blob: []byte("abcdef"), TS: time.Now()})
	tb, depth := m.Stats()
	if tb == 0 || depth != 1 {
		t.Fatalf("unexpected stats before clear: tb=%d depth=%d", tb, depth)
	}
	m.Clear()
	tb2, depth2 := m.Stats()
	if tb2 != 0 || depth2 != 0 {
		t.Fatalf("expected cleared stats to be zero, got tb=%d depth=%d", tb2, depth2)
	}
}

func TestMemoryPrune(t *testing.T) {
	// Very small MaxBytes so pruning triggers
	m := NewManager(Config{MaxBytes: 8, MaxDepth: 0, MinInterval: time.Millisecond})
	t0 := time.Now()
	m.PushSnapshot(Snapshot{Blob: []byte("xxxx"), TS: t0})
	m.PushSnapshot(Snapshot{Blob: []byte("yyyy"), TS: t0.Add(time.Second)})

	// Exceed the cap and force prune of the oldest snapshot
	m.PushSnapshot(Snapshot{Blob: []byte("zzzz"), TS: t0.Add(2 * time.Second)})

	tb, depth := m.Stats()
	if depth != 2 || tb != 8 {
		t.Fatalf("expected oldest snapshot pruned, got tb=%d depth=%d", tb, depth)
	}
	// The oldest blob is gone; the two newest remain in order.
	s, ok := m.Undo([]byte("wwww"))
	if !ok || string(s.Blob) != "zzzz" {
		t.Fatalf("unexpected top snapshot: ok=%v blob=%q", ok, string(s.Blob))
	}
	s, ok = m.Undo(s.Blob)
	if !ok || string(s.Blob) != "yyyy" {
		t.Fatalf("unexpected second snapshot: ok=%v blob=%q", ok, string(s.Blob))
	}
	if _, ok := m.Undo(s.Blob); ok {
		t.Fatalf("expected empty stack after two undos")
	}
}
