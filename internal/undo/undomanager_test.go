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

func TestUndoRedoBasic(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024 * 1024, MaxDepth: 10, MinInterval: 10 * time.Millisecond})
	m.PushSnapshot(Snapshot{Blob: []byte("a"), TS: time.Now()})
	m.PushSnapshot(Snapshot{Blob: []byte("b"), TS: time.Now().Add(20 * time.Millisecond)})
	if _, depth := m.Stats(); depth != 2 {
		t.Fatalf("expected 2 snapshots, got depth=%d", depth)
	}
	// Current state "c" swaps for the latest snapshot "b".
	s, ok := m.Undo([]byte("c"))
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("undo expected 'b', got ok=%v blob=%q", ok, string(s.Blob))
	}
	s, ok = m.Redo([]byte("b"))
	if !ok || string(s.Blob) != "c" {
		t.Fatalf("redo expected 'c', got ok=%v blob=%q", ok, string(s.Blob))
	}
}

func TestCoalesce(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024 * 1024, MaxDepth: 10, MinInterval: 50 * time.Millisecond})
	t0 := time.Now()
	m.PushSnapshot(Snapshot{Blob: []byte("1"), TS: t0})
	m.PushSnapshot(Snapshot{Blob: []byte("2"), TS: t0.Add(10 * time.Millisecond)}) // coalesce
	if _, depth := m.Stats(); depth != 1 {
		t.Fatalf("expected coalesced to 1 snapshot, got %d", depth)
	}
	s, ok := m.Undo([]byte("3"))
	if !ok || string(s.Blob) != "2" {
		t.Fatalf("expected coalesced snapshot '2', got ok=%v blob=%q", ok, string(s.Blob))
	}
}

func TestCaps(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024, MaxDepth: 2, MinInterval: 1 * time.Millisecond})
	for i := 0; i < 10; i++ {
		m.PushSnapshot(Snapshot{Blob: []byte("xxxxx"), TS: time.Now().Add(time.Duration(i) * time.Millisecond)})
	}
	if _, depth := m.Stats(); depth > 2 {
		t.Fatalf("expected MaxDepth cap to limit to 2, got %d", depth)
	}
}
