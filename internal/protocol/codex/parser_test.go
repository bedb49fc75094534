// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package codex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedpig/overseer/internal/agentevent"
)

func TestParser_ServerRequestCommandExecutionApproval(t *testing.T) {
	p := New()
	line := `{"method":"item/commandExecution/requestApproval","id":7,"params":{"command":"git status && rm -rf /tmp"}}` + "\n"
	events, pending := p.Feed(line)

	require.Len(t, events, 1)
	e := events[0]
	assert.Equal(t, agentevent.KindToolApproval, e.Kind)
	assert.Equal(t, "Bash", e.Name)
	assert.Equal(t, []string{"git status", "rm"}, e.Prefixes)
	assert.False(t, e.AutoApproved)

	require.Len(t, pending, 1)
	assert.Equal(t, "item/commandExecution/requestApproval", pending[0].Method)
	assert.Equal(t, "7", string(pending[0].ID))
}

func TestParser_ServerRequestFileChangeApproval(t *testing.T) {
	p := New()
	line := `{"method":"item/fileChange/requestApproval","id":1,"params":{"path":"a.go"}}` + "\n"
	events, pending := p.Feed(line)
	require.Len(t, events, 1)
	assert.Equal(t, "Edit", events[0].Name)
	require.Len(t, pending, 1)
}

func TestParser_ServerRequestUnknownMethodStillPending(t *testing.T) {
	p := New()
	line := `{"method":"item/weird/requestApproval","id":2,"params":{}}` + "\n"
	events, pending := p.Feed(line)
	assert.Empty(t, events)
	require.Len(t, pending, 1)
	assert.Equal(t, "2", string(pending[0].ID))
}

func TestParser_ResponseYieldsNothing(t *testing.T) {
	p := New()
	line := `{"id":1,"result":{"thread":{"id":"t1"}}}` + "\n"
	events, pending := p.Feed(line)
	assert.Empty(t, events)
	assert.Empty(t, pending)
}

func TestParser_NotificationAgentMessageDelta(t *testing.T) {
	p := New()
	line := `{"method":"item/agentMessage/delta","params":{"delta":"Hello"}}` + "\n"
	events, pending := p.Feed(line)
	require.Len(t, events, 1)
	assert.Equal(t, agentevent.KindText, events[0].Kind)
	assert.Equal(t, "Hello", events[0].Text)
	assert.Empty(t, pending)
}

func TestParser_ItemStartedCommandExecution(t *testing.T) {
	p := New()
	line := `{"method":"item/started","params":{"item":{"type":"commandExecution","command":"ls"}}}` + "\n"
	events, _ := p.Feed(line)
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Content, "[Bash]")
	assert.True(t, p.InCommandExecution())
}

func TestParser_ItemCompletedCommandExecutionClearsState(t *testing.T) {
	p := New()
	p.Feed(`{"method":"item/started","params":{"item":{"type":"commandExecution","command":"ls"}}}` + "\n")
	require.True(t, p.InCommandExecution())

	events, _ := p.Feed(`{"method":"item/completed","params":{"item":{"type":"commandExecution"}}}` + "\n")
	assert.Empty(t, events)
	assert.False(t, p.InCommandExecution())
}

func TestParser_ItemCompletedAgentMessage(t *testing.T) {
	p := New()
	events, _ := p.Feed(`{"method":"item/completed","params":{"item":{"type":"agentMessage","text":"done"}}}` + "\n")
	require.Len(t, events, 1)
	assert.Equal(t, "done", events[0].Content)
}

func TestParser_TurnCompleted(t *testing.T) {
	p := New()
	events, _ := p.Feed(`{"method":"turn/completed","params":{}}` + "\n")
	require.Len(t, events, 1)
	assert.Equal(t, agentevent.KindTurnComplete, events[0].Kind)
}

func TestParser_CommandExecutionOutputDelta(t *testing.T) {
	p := New()
	events, _ := p.Feed(`{"method":"item/commandExecution/outputDelta","params":{"delta":"line1\n"}}` + "\n")
	require.Len(t, events, 1)
	assert.Equal(t, agentevent.KindBashOutput, events[0].Kind)
}

func TestParser_ErrorNotification(t *testing.T) {
	p := New()
	events, _ := p.Feed(`{"method":"error","params":{"message":"boom"}}` + "\n")
	require.Len(t, events, 1)
	assert.Equal(t, "Error: boom", events[0].Content)
}

func TestParser_NoiseNotificationsDropped(t *testing.T) {
	p := New()
	events, _ := p.Feed(`{"method":"thread/name/updated","params":{}}` + "\n")
	assert.Empty(t, events)
}
