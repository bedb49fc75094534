// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_SyncSubscribeReceivesMatchingEvents(t *testing.T) {
	b := New()
	var received []BroadcastEvent

	_, err := b.Subscribe([]string{"agent:event:*"}, func(e BroadcastEvent) {
		received = append(received, e)
	})
	require.NoError(t, err)

	n := b.Emit("agent:event:c1", map[string]string{"k": "text", "text": "hi"})
	assert.Equal(t, 1, n)
	require.Len(t, received, 1)
	assert.Equal(t, "agent:event:c1", received[0].EventType)

	n = b.Emit("other:type", "ignored")
	assert.Equal(t, 0, n)
	assert.Len(t, received, 1)
}

func TestBus_ZeroPatternsReceivesEverything(t *testing.T) {
	b := New()
	var count int
	_, err := b.Subscribe(nil, func(e BroadcastEvent) { count++ })
	require.NoError(t, err)

	b.Emit("a:b:c", 1)
	b.Emit("x:y:z", 2)
	assert.Equal(t, 2, count)
}

func TestBus_FanOut(t *testing.T) {
	b := New()

	var s1Events []string
	_, err := b.Subscribe([]string{"agent:event:*"}, func(e BroadcastEvent) {
		s1Events = append(s1Events, e.EventType)
	})
	require.NoError(t, err)

	b.Emit("agent:event:c1", map[string]string{"k": "text", "text": "hi"})

	var s2Events []string
	_, err = b.Subscribe([]string{"agent:event:*"}, func(e BroadcastEvent) {
		s2Events = append(s2Events, e.EventType)
	})
	require.NoError(t, err)

	b.Emit("agent:event:c2", map[string]string{"k": "text", "text": "yo"})

	assert.Equal(t, []string{"agent:event:c1", "agent:event:c2"}, s1Events)
	assert.Equal(t, []string{"agent:event:c2"}, s2Events)
}

func TestBus_AsyncSubscribeDropsOldestOnOverflow(t *testing.T) {
	b := New()
	id, ch, err := b.SubscribeAsync([]string{"x:*"}, 2)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		b.Emit("x:y", i)
	}

	time.Sleep(50 * time.Millisecond)
	assert.Greater(t, b.Lagged(id), uint64(0))

	// Drain whatever made it through; should not block or panic.
	drained := 0
	timeout := time.After(500 * time.Millisecond)
loop:
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				break loop
			}
			drained++
			if drained >= 2 {
				break loop
			}
		case <-timeout:
			break loop
		}
	}
	assert.LessOrEqual(t, drained, 2)
}

func TestBus_Unsubscribe(t *testing.T) {
	b := New()
	var count int
	id, err := b.Subscribe(nil, func(e BroadcastEvent) { count++ })
	require.NoError(t, err)

	b.Emit("a", 1)
	require.NoError(t, b.Unsubscribe(id))
	b.Emit("a", 2)

	assert.Equal(t, 1, count)
	assert.ErrorIs(t, b.Unsubscribe(id), ErrSubscriptionNotFound)
}

func TestBus_CloseStopsEmitAndSubscribe(t *testing.T) {
	b := New()
	b.Close()

	_, err := b.Subscribe(nil, func(BroadcastEvent) {})
	assert.ErrorIs(t, err, ErrBusClosed)

	n := b.Emit("a", 1)
	assert.Equal(t, 0, n)
}

func TestBus_MarshalFailureDropsAndLogs(t *testing.T) {
	b := New()
	n := b.Emit("a", make(chan int)) // unmarshalable
	assert.Equal(t, 0, n)
}
