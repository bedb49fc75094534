// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package crashring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedpig/overseer/internal/bus"
)

func intPtr(v int) *int { return &v }

func TestRing_IgnoresCleanExit(t *testing.T) {
	r := New()
	r.Record("a1", "claude", "proj", intPtr(0), "")
	assert.Empty(t, r.List(0))
}

func TestRing_RecordsAbnormalExit(t *testing.T) {
	r := New()
	r.Record("a1", "claude", "proj", intPtr(1), "")
	got := r.List(0)
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].ID)
	assert.Equal(t, 1, *got[0].ExitCode)
}

func TestRing_RecordsNilExitCodeAsAbnormal(t *testing.T) {
	r := New()
	r.Record("pty1", "pty", "", nil, "")
	got := r.List(0)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].ExitCode)
}

func TestRing_NewestFirst(t *testing.T) {
	r := New()
	r.Record("a1", "claude", "p", intPtr(1), "")
	r.Record("a2", "codex", "p", intPtr(2), "")
	got := r.List(0)
	require.Len(t, got, 2)
	assert.Equal(t, "a2", got[0].ID)
	assert.Equal(t, "a1", got[1].ID)
}

func TestRing_EvictsOldestBeyondCapacity(t *testing.T) {
	r := New()
	for i := 0; i < MaxEntries+10; i++ {
		r.Record("id", "claude", "p", intPtr(1), "")
	}
	assert.Len(t, r.List(0), MaxEntries)
}

func TestRing_ListRespectsLimit(t *testing.T) {
	r := New()
	r.Record("a1", "claude", "p", intPtr(1), "")
	r.Record("a2", "claude", "p", intPtr(1), "")
	r.Record("a3", "claude", "p", intPtr(1), "")
	assert.Len(t, r.List(2), 2)
}

func TestSubscribe_RecordsFromBusCloseEvent(t *testing.T) {
	b := bus.New()
	defer b.Close()

	ring := New()
	require.NoError(t, Subscribe(b, ring))

	b.Emit("claude:close:agent-9", struct {
		Code   int
		Signal int
	}{Code: 1, Signal: 0})

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && len(ring.List(0)) == 0 {
		time.Sleep(5 * time.Millisecond)
	}

	got := ring.List(0)
	require.Len(t, got, 1)
	assert.Equal(t, "agent-9", got[0].ID)
	assert.Equal(t, "claude", got[0].Kind)
}

func TestSubscribe_RecordsFromPTYSignalKill(t *testing.T) {
	b := bus.New()
	defer b.Close()

	ring := New()
	require.NoError(t, Subscribe(b, ring))

	code := 0
	b.Emit("pty:exit:term-1", struct {
		Code   *int `json:"Code"`
		Signal int  `json:"Signal"`
	}{Code: &code, Signal: 9})

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && len(ring.List(0)) == 0 {
		time.Sleep(5 * time.Millisecond)
	}

	got := ring.List(0)
	require.Len(t, got, 1)
	assert.Equal(t, "term-1", got[0].ID)
	assert.Equal(t, "pty", got[0].Kind)
	assert.Equal(t, "9", got[0].Signal)
}

// TestSubscribe_IgnoresCleanPTYExit grounds the §4.15 fix: a PTY shell
// that exits on its own (code 0, no signal) never enters the ring,
// unlike the pre-fix behavior of always reporting a nil code.
func TestSubscribe_IgnoresCleanPTYExit(t *testing.T) {
	b := bus.New()
	defer b.Close()

	ring := New()
	require.NoError(t, Subscribe(b, ring))

	code := 0
	b.Emit("pty:exit:term-2", struct {
		Code   *int `json:"Code"`
		Signal int  `json:"Signal"`
	}{Code: &code, Signal: 0})

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, ring.List(0))
}
