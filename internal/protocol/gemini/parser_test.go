// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedpig/overseer/internal/agentevent"
)

func TestParser_Init(t *testing.T) {
	p := New()
	events := p.Feed(`{"type":"init","session_id":"s1"}` + "\n")
	require.Len(t, events, 1)
	assert.Equal(t, agentevent.KindSessionID, events[0].Kind)
	assert.Equal(t, "s1", p.SessionID())
}

func TestParser_MessageCompleteAndDelta(t *testing.T) {
	p := New()
	events := p.Feed(`{"type":"message","role":"assistant","content":"hello"}` + "\n")
	require.Len(t, events, 1)
	assert.Equal(t, agentevent.KindMessage, events[0].Kind)
	assert.Equal(t, "hello", events[0].Content)

	events = p.Feed(`{"type":"message","role":"assistant","content":"hi","delta":true}` + "\n")
	require.Len(t, events, 1)
	assert.Equal(t, agentevent.KindText, events[0].Kind)
	assert.Equal(t, "hi", events[0].Text)
}

func TestParser_MessageNonAssistantIgnored(t *testing.T) {
	p := New()
	events := p.Feed(`{"type":"message","role":"user","content":"hi"}` + "\n")
	assert.Empty(t, events)
}

func TestParser_ToolUseNormalizesName(t *testing.T) {
	p := New()
	events := p.Feed(`{"type":"tool_use","tool_name":"run_shell_command","parameters":{"command":"ls"}}` + "\n")
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Content, "[Bash]")
}

func TestParser_ToolUseEditComputesLineCounts(t *testing.T) {
	p := New()
	events := p.Feed(`{"type":"tool_use","tool_name":"edit_file","parameters":{"old_string":"a\nb","new_string":"c"}}` + "\n")
	require.Len(t, events, 1)
	require.NotNil(t, events[0].ToolMetaField)
	assert.Equal(t, 2, *events[0].ToolMetaField.LinesRemoved)
	assert.Equal(t, 1, *events[0].ToolMetaField.LinesAdded)
}

func TestParser_ToolResultReadSuppressed(t *testing.T) {
	p := New()
	p.Feed(`{"type":"tool_use","tool_name":"read_file","parameters":{"path":"a.go"}}` + "\n")
	events := p.Feed(`{"type":"tool_result","status":"success","output":"package main"}` + "\n")
	assert.Empty(t, events)
}

func TestParser_ToolResultSuccessEmitsBashOutput(t *testing.T) {
	p := New()
	p.Feed(`{"type":"tool_use","tool_name":"shell","parameters":{"command":"ls"}}` + "\n")
	events := p.Feed(`{"type":"tool_result","status":"success","output":"file1"}` + "\n")
	require.Len(t, events, 1)
	assert.Equal(t, agentevent.KindBashOutput, events[0].Kind)
	assert.Equal(t, "file1", events[0].Text)
}

func TestParser_ToolResultErrorEmitsMessage(t *testing.T) {
	p := New()
	p.Feed(`{"type":"tool_use","tool_name":"shell","parameters":{"command":"ls"}}` + "\n")
	events := p.Feed(`{"type":"tool_result","status":"error","error":"not found"}` + "\n")
	require.Len(t, events, 1)
	assert.Equal(t, "Error: not found", events[0].Content)
}

func TestParser_ErrorEvent(t *testing.T) {
	p := New()
	events := p.Feed(`{"type":"error","message":"boom"}` + "\n")
	require.Len(t, events, 1)
	assert.Equal(t, "Error: boom", events[0].Content)
}

func TestParser_ResultEventYieldsNothing(t *testing.T) {
	p := New()
	events := p.Feed(`{"type":"result","success":true}` + "\n")
	assert.Empty(t, events)
}

func TestParser_MarkInfoMessageAndClear(t *testing.T) {
	p := New()
	p.MarkInfoMessage()
	assert.True(t, p.LastWasInfo())

	p.Feed(`{"type":"message","role":"assistant","content":"hi"}` + "\n")
	assert.False(t, p.LastWasInfo())

	p.MarkInfoMessage()
	p.ClearLastWasInfo()
	assert.False(t, p.LastWasInfo())
}

func TestParser_PartialLineBuffered(t *testing.T) {
	p := New()
	events := p.Feed(`{"type":"init"`)
	assert.Empty(t, events)

	events = p.Feed(`,"session_id":"s2"}` + "\n")
	require.Len(t, events, 1)
	assert.Equal(t, "s2", p.SessionID())
}

func TestParser_MalformedLineDropped(t *testing.T) {
	p := New()
	events := p.Feed("not json\n")
	assert.Empty(t, events)
}
