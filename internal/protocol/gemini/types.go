// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package gemini parses Gemini CLI's NDJSON stream output into
// agentevent.Events. Gemini is a one-shot, non-JSON-RPC protocol with no
// interactive tool approvals.
package gemini

import "encoding/json"

// streamEvent is the flat shape of one line of Gemini's NDJSON output.
// Different event types populate different optional fields.
type streamEvent struct {
	Type       string          `json:"type"`
	SessionID  *string         `json:"session_id"`
	Role       *string         `json:"role"`
	Content    *string         `json:"content"`
	Delta      *bool           `json:"delta"`
	ToolName   *string         `json:"tool_name"`
	Parameters json.RawMessage `json:"parameters"`
	Status     *string         `json:"status"`
	Output     *string         `json:"output"`
	Error      *string         `json:"error"`
	Message    *string         `json:"message"`
}
