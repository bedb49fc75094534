// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedpig/overseer/internal/bus"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestWatch_EmitsOnBinaryWrite(t *testing.T) {
	b := bus.New()
	defer b.Close()

	w, err := New(b)
	require.NoError(t, err)
	defer w.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "myservice")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0755))

	var received []byte
	sub, err := b.Subscribe([]string{"project:binary-changed:proj-1"}, func(e bus.BroadcastEvent) {
		received = e.Payload
	})
	require.NoError(t, err)
	defer b.Unsubscribe(sub)

	require.NoError(t, w.Watch("proj-1", path))
	require.NoError(t, os.WriteFile(path, []byte("v2 longer binary content"), 0755))

	waitFor(t, 2*time.Second, func() bool { return received != nil })

	var payload map[string]any
	require.NoError(t, json.Unmarshal(received, &payload))
	assert.Equal(t, "proj-1", payload["project_id"])
	assert.Equal(t, path, payload["path"])
}

func TestWatch_UnwatchStopsNotifications(t *testing.T) {
	b := bus.New()
	defer b.Close()

	w, err := New(b)
	require.NoError(t, err)
	defer w.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "myservice")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0755))

	count := 0
	sub, err := b.Subscribe([]string{"project:binary-changed:proj-2"}, func(e bus.BroadcastEvent) {
		count++
	})
	require.NoError(t, err)
	defer b.Unsubscribe(sub)

	require.NoError(t, w.Watch("proj-2", path))
	w.Unwatch(path)

	require.NoError(t, os.WriteFile(path, []byte("v2 after unwatch"), 0755))
	time.Sleep(500 * time.Millisecond)
	assert.Equal(t, 0, count)
}

func TestWatch_RefCountsSharedPath(t *testing.T) {
	b := bus.New()
	defer b.Close()

	w, err := New(b)
	require.NoError(t, err)
	defer w.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "shared")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0755))

	require.NoError(t, w.Watch("proj-a", path))
	require.NoError(t, w.Watch("proj-b", path))

	w.Unwatch(path)
	w.mu.Lock()
	_, stillTracked := w.refs[path]
	w.mu.Unlock()
	assert.True(t, stillTracked, "path should still be watched while one ref remains")

	w.Unwatch(path)
	w.mu.Lock()
	_, stillTracked = w.refs[path]
	w.mu.Unlock()
	assert.False(t, stillTracked)
}
