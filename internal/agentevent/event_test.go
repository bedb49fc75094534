// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package agentevent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_Roundtrip(t *testing.T) {
	tests := []struct {
		name  string
		event Event
	}{
		{name: "text", event: NewText("hello")},
		{name: "bash output", event: NewBashOutput("$ ls\nfile.txt")},
		{name: "message minimal", event: NewMessage("hi there", MessageOpts{})},
		{name: "tool result", event: NewToolResult("tool-1", "ok", false)},
		{name: "session id", event: NewSessionID("sess-1")},
		{name: "turn complete", event: NewTurnComplete()},
		{name: "done", event: NewDone()},
		{name: "error", event: NewError("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.event)
			require.NoError(t, err)

			var parsed Event
			require.NoError(t, json.Unmarshal(data, &parsed))
			assert.Equal(t, tt.event, parsed)
		})
	}
}

func TestEvent_OmitsNoneFields(t *testing.T) {
	event := NewMessage("hi", MessageOpts{})
	data, err := json.Marshal(event)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "tool_meta")
	assert.NotContains(t, string(data), "parent_tool_use_id")
}

func TestEvent_ToolApprovalWithPrefixes(t *testing.T) {
	event := NewToolApproval("req-1", "Bash", json.RawMessage(`{"command":"git status"}`), "git status", ToolApprovalOpts{
		Prefixes:     []string{"git status"},
		AutoApproved: true,
	})

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var parsed Event
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, "req-1", parsed.RequestID)
	assert.Equal(t, []string{"git status"}, parsed.Prefixes)
	assert.True(t, parsed.AutoApproved)
}

func TestEvent_MarkProcessed(t *testing.T) {
	tests := []struct {
		name          string
		event         Event
		wantProcessed bool
	}{
		{name: "tool approval", event: NewToolApproval("r1", "Bash", nil, "", ToolApprovalOpts{}), wantProcessed: true},
		{name: "question", event: NewQuestion("r2", nil, nil), wantProcessed: true},
		{name: "plan approval", event: NewPlanApproval("r3", "plan"), wantProcessed: true},
		{name: "text is not prompt-bearing", event: NewText("hi"), wantProcessed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantProcessed, tt.event.IsPromptBearing())

			processed := tt.event.MarkProcessed()
			if tt.wantProcessed {
				require.NotNil(t, processed.IsProcessed)
				assert.True(t, *processed.IsProcessed)
			} else {
				assert.Nil(t, processed.IsProcessed)
			}
		})
	}
}

func TestEvent_KindTagIsLowerCamelCase(t *testing.T) {
	data, err := json.Marshal(NewToolApproval("r", "Bash", nil, "", ToolApprovalOpts{}))
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "toolApproval", raw["kind"])
}
