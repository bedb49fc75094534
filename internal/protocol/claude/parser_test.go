// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package claude

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedpig/overseer/internal/agentevent"
)

func TestParser_SessionIDEmittedOnce(t *testing.T) {
	p := New()
	events := p.Feed("{\"type\":\"system\",\"session_id\":\"s1\"}\n")
	require.Len(t, events, 1)
	assert.Equal(t, agentevent.KindSessionID, events[0].Kind)
	assert.Equal(t, "s1", events[0].SessionID)

	events = p.Feed("{\"type\":\"system\",\"session_id\":\"s1\"}\n")
	assert.Empty(t, events)
}

func TestParser_AssistantText(t *testing.T) {
	p := New()
	line := `{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"hello"}]}}` + "\n"
	events := p.Feed(line)
	require.Len(t, events, 1)
	assert.Equal(t, agentevent.KindMessage, events[0].Kind)
	assert.Equal(t, "hello", events[0].Content)
}

func TestParser_AssistantTextEmptyAfterTrimSuppressed(t *testing.T) {
	p := New()
	line := `{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"   "}]}}` + "\n"
	events := p.Feed(line)
	assert.Empty(t, events)
}

func TestParser_ToolUseBash(t *testing.T) {
	p := New()
	line := `{"type":"assistant","message":{"role":"assistant","content":[{"type":"tool_use","name":"Bash","input":{"command":"ls"}}]}}` + "\n"
	events := p.Feed(line)
	require.Len(t, events, 1)
	assert.Equal(t, agentevent.KindMessage, events[0].Kind)
	assert.Contains(t, events[0].Content, "[Bash]")
}

func TestParser_ToolUseEditComputesLineCounts(t *testing.T) {
	p := New()
	line := `{"type":"assistant","message":{"role":"assistant","content":[{"type":"tool_use","name":"Edit","input":{"old_string":"a\nb","new_string":"c"}}]}}` + "\n"
	events := p.Feed(line)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].ToolMetaField)
	assert.Equal(t, 2, *events[0].ToolMetaField.LinesRemoved)
	assert.Equal(t, 1, *events[0].ToolMetaField.LinesAdded)
}

func TestParser_ToolUseTaskCarriesToolUseID(t *testing.T) {
	p := New()
	line := `{"type":"assistant","message":{"role":"assistant","content":[{"type":"tool_use","id":"tu1","name":"Task","input":{}}]}}` + "\n"
	events := p.Feed(line)
	require.Len(t, events, 1)
	assert.Equal(t, "tu1", events[0].ToolUseID)
}

func TestParser_ToolUseAskUserQuestionSuppressed(t *testing.T) {
	p := New()
	line := `{"type":"assistant","message":{"role":"assistant","content":[{"type":"tool_use","name":"AskUserQuestion","input":{}}]}}` + "\n"
	events := p.Feed(line)
	assert.Empty(t, events)
}

func TestParser_ContentBlockDelta(t *testing.T) {
	p := New()
	line := `{"type":"content_block_delta","delta":{"type":"text_delta","text":"hi"}}` + "\n"
	events := p.Feed(line)
	require.Len(t, events, 1)
	assert.Equal(t, agentevent.KindText, events[0].Kind)
	assert.Equal(t, "hi", events[0].Text)
}

func TestParser_Result(t *testing.T) {
	p := New()
	events := p.Feed(`{"type":"result"}` + "\n")
	require.Len(t, events, 1)
	assert.Equal(t, agentevent.KindTurnComplete, events[0].Kind)
}

func TestParser_ControlRequestBashAutoApprovalCandidate(t *testing.T) {
	p := New()
	line := `{"type":"control_request","request_id":"r1","request":{"subtype":"can_use_tool","tool_name":"Bash","input":{"command":"git status"}}}` + "\n"
	events := p.Feed(line)
	require.Len(t, events, 1)
	e := events[0]
	assert.Equal(t, agentevent.KindToolApproval, e.Kind)
	assert.Equal(t, "r1", e.RequestID)
	assert.Equal(t, "Bash", e.Name)
	assert.Equal(t, []string{"git status"}, e.Prefixes)
	assert.False(t, e.AutoApproved)
}

func TestParser_ControlRequestAskUserQuestion(t *testing.T) {
	p := New()
	line := `{"type":"control_request","request_id":"r2","request":{"subtype":"can_use_tool","tool_name":"AskUserQuestion","input":{"questions":[{"question":"Which?","header":"DB","options":[{"label":"A","description":"a"}]}]}}}` + "\n"
	events := p.Feed(line)
	require.Len(t, events, 1)
	assert.Equal(t, agentevent.KindQuestion, events[0].Kind)
	require.Len(t, events[0].Questions, 1)
	assert.Equal(t, "Which?", events[0].Questions[0].Question)
}

func TestParser_ControlRequestExitPlanMode(t *testing.T) {
	p := New()
	line := `{"type":"control_request","request_id":"r3","request":{"subtype":"can_use_tool","tool_name":"ExitPlanMode","input":{"plan":"do things"}}}` + "\n"
	events := p.Feed(line)
	require.Len(t, events, 1)
	assert.Equal(t, agentevent.KindPlanApproval, events[0].Kind)
	assert.Equal(t, "do things", events[0].Content)
}

func TestParser_PartialLineBuffered(t *testing.T) {
	p := New()
	events := p.Feed(`{"type":"result"`)
	assert.Empty(t, events)

	events = p.Feed("}\n")
	require.Len(t, events, 1)
	assert.Equal(t, agentevent.KindTurnComplete, events[0].Kind)
}

func TestParser_FlushProcessesTrailingPartial(t *testing.T) {
	p := New()
	p.Feed(`{"type":"result"}`)
	events := p.Flush()
	require.Len(t, events, 1)
	assert.Equal(t, agentevent.KindTurnComplete, events[0].Kind)
}

func TestParser_MalformedLineDropped(t *testing.T) {
	p := New()
	events := p.Feed("not json\n")
	assert.Empty(t, events)
}
