// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package claude parses Claude Code's stream-json NDJSON output into
// agentevent.Events.
package claude

import "encoding/json"

// streamEvent is the top-level shape of one line of Claude's stream-json
// output. Different event types populate different optional fields.
type streamEvent struct {
	Type            string          `json:"type"`
	Subtype         string          `json:"subtype"`
	SessionID       string          `json:"session_id"`
	RequestID       string          `json:"request_id"`
	ParentToolUseID string          `json:"parent_tool_use_id"`
	Request         *controlRequest `json:"request"`
	Message         *assistantMsg   `json:"message"`
	ContentBlock    *contentBlock   `json:"content_block"`
	Delta           *delta          `json:"delta"`
	Result          *string         `json:"result"`
}

type controlRequest struct {
	Subtype   string          `json:"subtype"`
	ToolName  string          `json:"tool_name"`
	Input     json.RawMessage `json:"input"`
	ToolUseID string          `json:"tool_use_id"`
}

type assistantMsg struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type     string          `json:"type"`
	Text     string          `json:"text"`
	Thinking string          `json:"thinking"`
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Input    json.RawMessage `json:"input"`
}

type delta struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type askUserQuestionInput struct {
	Questions []questionItemWire `json:"questions"`
}

type questionItemWire struct {
	Question    string               `json:"question"`
	Header      string               `json:"header"`
	Options     []questionOptionWire `json:"options"`
	MultiSelect bool                 `json:"multi_select"`
}

type questionOptionWire struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

type exitPlanModeInput struct {
	Plan string `json:"plan"`
}
