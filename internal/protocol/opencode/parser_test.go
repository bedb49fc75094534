// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package opencode

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedpig/overseer/internal/agentevent"
)

func TestParser_TextPart(t *testing.T) {
	p := New()
	parts := []Part{{Type: "text", Text: strPtr("hello")}}
	events := p.ParseParts(parts)
	require.Len(t, events, 1)
	assert.Equal(t, agentevent.KindText, events[0].Kind)
	assert.Equal(t, "hello", events[0].Text)
}

func TestParser_EmptyTextPartSuppressed(t *testing.T) {
	p := New()
	parts := []Part{{Type: "text", Text: strPtr("")}}
	events := p.ParseParts(parts)
	assert.Empty(t, events)
}

func TestParser_ToolInvocationBashEmitsMessageAndOutput(t *testing.T) {
	p := New()
	parts := []Part{{
		Type: "tool-invocation",
		Tool: &toolInfo{
			Name:   "bash",
			Input:  json.RawMessage(`{"command":"ls"}`),
			Output: json.RawMessage(`"file1\nfile2"`),
		},
	}}
	events := p.ParseParts(parts)
	require.Len(t, events, 2)
	assert.Equal(t, agentevent.KindMessage, events[0].Kind)
	assert.Contains(t, events[0].Content, "Bash")
	assert.Equal(t, agentevent.KindBashOutput, events[1].Kind)
	assert.Equal(t, "file1\nfile2", events[1].Text)
}

func TestParser_ToolInvocationNonBashNoOutputEvent(t *testing.T) {
	p := New()
	parts := []Part{{
		Type: "tool-invocation",
		Tool: &toolInfo{
			Name:   "read",
			Input:  json.RawMessage(`{"path":"a.go"}`),
			Output: json.RawMessage(`"package main"`),
		},
	}}
	events := p.ParseParts(parts)
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Content, "Read")
}

func TestParser_StepLifecycleIgnored(t *testing.T) {
	p := New()
	parts := []Part{{Type: "step-start"}, {Type: "step-finish"}}
	events := p.ParseParts(parts)
	assert.Empty(t, events)
}

func TestParser_UnknownPartTypeIgnored(t *testing.T) {
	p := New()
	parts := []Part{{Type: "mystery"}}
	events := p.ParseParts(parts)
	assert.Empty(t, events)
}

func TestParser_MultiplePartsConcatenate(t *testing.T) {
	p := New()
	parts := []Part{
		{Type: "text", Text: strPtr("a")},
		{Type: "text", Text: strPtr("b")},
	}
	events := p.ParseParts(parts)
	require.Len(t, events, 2)
}

func strPtr(s string) *string { return &s }
