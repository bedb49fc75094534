// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package copilot parses GitHub Copilot's ACP (Agent Communication
// Protocol) JSON-RPC 2.0 NDJSON output into agentevent.Events.
package copilot

import "encoding/json"

// rpcMessage flattens the three JSON-RPC shapes Copilot can send on a
// single line, mirroring internal/protocol/codex's classify-by-presence
// approach rather than Rust's untagged-enum variant trial.
type rpcMessage struct {
	ID     json.RawMessage `json:"id"`
	Method *string         `json:"method"`
	Params json.RawMessage `json:"params"`
}

// PendingRequest is a server-initiated request awaiting a response from
// the supervisor, carrying the exact id to echo back.
type PendingRequest struct {
	ID     json.RawMessage
	Method string
}

// sessionUpdate is the nested payload of a session/update notification.
// The update type is carried redundantly under two field names; Copilot
// emits one or the other depending on version.
type sessionUpdate struct {
	SessionUpdate *string         `json:"sessionUpdate"`
	Type          *string         `json:"type"`
	Content       *contentItem    `json:"content"`
	ToolCallID    *string         `json:"toolCallId"`
	Title         *string         `json:"title"`
	Kind          *string         `json:"kind"`
	Status        *string         `json:"status"`
	RawInput      json.RawMessage `json:"rawInput"`
	Input         json.RawMessage `json:"input"`
	RawOutput     json.RawMessage `json:"rawOutput"`
	Output        json.RawMessage `json:"output"`
	Steps         []planStep      `json:"steps"`
}

func (u *sessionUpdate) updateType() string {
	if u.SessionUpdate != nil {
		return *u.SessionUpdate
	}
	if u.Type != nil {
		return *u.Type
	}
	return ""
}

func (u *sessionUpdate) input() json.RawMessage {
	if len(u.RawInput) > 0 && string(u.RawInput) != "null" {
		return u.RawInput
	}
	return u.Input
}

func (u *sessionUpdate) output() json.RawMessage {
	if len(u.RawOutput) > 0 && string(u.RawOutput) != "null" {
		return u.RawOutput
	}
	return u.Output
}

// contentItem is one entry of a tool call's content/output array.
type contentItem struct {
	Type   string  `json:"type"`
	Text   *string `json:"text"`
	Output *string `json:"output"`
	Path   *string `json:"path"`
	Diff   *string `json:"diff"`
}

// planStep is one line of a plan update.
type planStep struct {
	Description string `json:"description"`
	Status      string `json:"status"`
}

// permissionToolCall is the nested toolCall object of a
// session/request_permission server request.
type permissionToolCall struct {
	ToolCallID *string         `json:"toolCallId"`
	Title      *string         `json:"title"`
	Kind       *string         `json:"kind"`
	RawInput   json.RawMessage `json:"rawInput"`
}
