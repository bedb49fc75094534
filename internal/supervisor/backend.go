// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package supervisor owns the per-backend child-process lifecycle: one
// Supervisor per running agent id, sharing the idle → running → reaped
// state machine and forwarding-worker loop described for every backend.
// Protocol differences (JSON-RPC vs stream-json vs one-shot NDJSON) are
// captured behind the Backend interface rather than five near-duplicate
// engines, since Go interface dispatch is the idiomatic way to share one
// state machine across variant wire formats.
package supervisor

import (
	"encoding/json"

	"github.com/wingedpig/overseer/internal/agentevent"
	"github.com/wingedpig/overseer/internal/protocol/claude"
	"github.com/wingedpig/overseer/internal/protocol/codex"
	"github.com/wingedpig/overseer/internal/protocol/copilot"
	"github.com/wingedpig/overseer/internal/protocol/gemini"
)

// PendingAck is a server-initiated request awaiting a response from this
// supervisor, normalized across protocols.
type PendingAck struct {
	ID     json.RawMessage
	Method string
}

// Backend adapts one protocol parser to the shape the forwarding worker
// needs: feed a line, get events plus any requests this supervisor must
// acknowledge on the child's stdin.
type Backend interface {
	// Name identifies the backend for log lines and bus topics
	// ("claude", "codex", "copilot", "gemini").
	Name() string

	// Feed parses one line of child stdout.
	Feed(line string) ([]agentevent.Event, []PendingAck)

	// Flush parses any trailing partial line once the child's stdout
	// closes.
	Flush() ([]agentevent.Event, []PendingAck)

	// BuildApprovalAck returns the stdin payload that grants requestID
	// for a ToolApproval the approval engine auto-approved, or false if
	// this backend has no server-initiated approval protocol (gemini
	// is the one current backend in that case).
	BuildApprovalAck(requestID string, input json.RawMessage) (json.RawMessage, bool)

	// BuildUnknownAck returns the stdin payload for a server-initiated
	// request that isn't tied to a ToolApproval event at all.
	BuildUnknownAck(pending PendingAck) (json.RawMessage, bool)
}

// claudeBackend adapts internal/protocol/claude.Parser.
type claudeBackend struct{ p *claude.Parser }

func newClaudeBackend() *claudeBackend { return &claudeBackend{p: claude.New()} }

func (b *claudeBackend) Name() string { return "claude" }

func (b *claudeBackend) Feed(line string) ([]agentevent.Event, []PendingAck) {
	return b.p.Feed(line), nil
}

func (b *claudeBackend) Flush() ([]agentevent.Event, []PendingAck) {
	return b.p.Flush(), nil
}

func (b *claudeBackend) BuildApprovalAck(requestID string, input json.RawMessage) (json.RawMessage, bool) {
	return buildClaudeAck(requestID, input), true
}

func (b *claudeBackend) BuildUnknownAck(PendingAck) (json.RawMessage, bool) {
	return nil, false
}

// codexBackend adapts internal/protocol/codex.Parser.
type codexBackend struct{ p *codex.Parser }

func newCodexBackend() *codexBackend { return &codexBackend{p: codex.New()} }

func (b *codexBackend) Name() string { return "codex" }

func (b *codexBackend) Feed(line string) ([]agentevent.Event, []PendingAck) {
	events, pending := b.p.Feed(line)
	return events, convertCodexPending(pending)
}

func (b *codexBackend) Flush() ([]agentevent.Event, []PendingAck) {
	events, pending := b.p.Flush()
	return events, convertCodexPending(pending)
}

func convertCodexPending(pending []codex.PendingRequest) []PendingAck {
	if len(pending) == 0 {
		return nil
	}
	out := make([]PendingAck, len(pending))
	for i, p := range pending {
		out[i] = PendingAck{ID: p.ID, Method: p.Method}
	}
	return out
}

func (b *codexBackend) BuildApprovalAck(requestID string, _ json.RawMessage) (json.RawMessage, bool) {
	return buildJSONRPCAcceptAck(json.RawMessage(requestID)), true
}

func (b *codexBackend) BuildUnknownAck(pending PendingAck) (json.RawMessage, bool) {
	return buildJSONRPCAcceptAck(pending.ID), true
}

// copilotBackend adapts internal/protocol/copilot.Parser.
type copilotBackend struct{ p *copilot.Parser }

func newCopilotBackend() *copilotBackend { return &copilotBackend{p: copilot.New()} }

func (b *copilotBackend) Name() string { return "copilot" }

func (b *copilotBackend) Feed(line string) ([]agentevent.Event, []PendingAck) {
	events, pending := b.p.Feed(line)
	return events, convertCopilotPending(pending)
}

func (b *copilotBackend) Flush() ([]agentevent.Event, []PendingAck) {
	events, pending := b.p.Flush()
	return events, convertCopilotPending(pending)
}

func convertCopilotPending(pending []copilot.PendingRequest) []PendingAck {
	if len(pending) == 0 {
		return nil
	}
	out := make([]PendingAck, len(pending))
	for i, p := range pending {
		out[i] = PendingAck{ID: p.ID, Method: p.Method}
	}
	return out
}

func (b *copilotBackend) BuildApprovalAck(requestID string, _ json.RawMessage) (json.RawMessage, bool) {
	return buildCopilotSelectedAck(json.RawMessage(requestID)), true
}

func (b *copilotBackend) BuildUnknownAck(pending PendingAck) (json.RawMessage, bool) {
	return buildCopilotMethodNotSupportedAck(pending.ID), true
}

// geminiBackend adapts internal/protocol/gemini.Parser. Gemini has no
// server-initiated requests (it runs with --approval-mode yolo), so
// BuildApprovalAck/BuildUnknownAck are never actually called for it, but
// a backend still implements them to satisfy the shared engine.
type geminiBackend struct{ p *gemini.Parser }

func newGeminiBackend() *geminiBackend { return &geminiBackend{p: gemini.New()} }

func (b *geminiBackend) Name() string { return "gemini" }

func (b *geminiBackend) Feed(line string) ([]agentevent.Event, []PendingAck) {
	return b.p.Feed(line), nil
}

func (b *geminiBackend) Flush() ([]agentevent.Event, []PendingAck) {
	return b.p.Flush(), nil
}

func (b *geminiBackend) BuildApprovalAck(string, json.RawMessage) (json.RawMessage, bool) {
	return nil, false
}

func (b *geminiBackend) BuildUnknownAck(PendingAck) (json.RawMessage, bool) {
	return nil, false
}

// NewBackend constructs the Backend for a named agent kind.
func NewBackend(kind string) (Backend, bool) {
	switch kind {
	case "claude":
		return newClaudeBackend(), true
	case "codex":
		return newCodexBackend(), true
	case "copilot":
		return newCopilotBackend(), true
	case "gemini":
		return newGeminiBackend(), true
	default:
		return nil, false
	}
}
