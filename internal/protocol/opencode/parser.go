// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package opencode

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/wingedpig/overseer/internal/agentevent"
)

// Parser translates a complete OpenCode response parts array into
// agentevent.Events. There is no Feed/Flush pair and no internal buffer:
// OpenCode's HTTP API always returns the full response in one call.
type Parser struct {
	sessionID string
}

// New returns an empty Parser.
func New() *Parser { return &Parser{} }

// SessionID returns the session id set via SetSessionID, or "".
func (p *Parser) SessionID() string { return p.sessionID }

// SetSessionID records the session id for this conversation.
func (p *Parser) SetSessionID(id string) { p.sessionID = id }

// ParseParts translates every part in order and concatenates the
// resulting events.
func (p *Parser) ParseParts(parts []Part) []agentevent.Event {
	var events []agentevent.Event
	for _, part := range parts {
		events = append(events, translatePart(&part)...)
	}
	return events
}

func translatePart(part *Part) []agentevent.Event {
	switch part.Type {
	case "text":
		if part.Text != nil && *part.Text != "" {
			return []agentevent.Event{agentevent.NewText(*part.Text)}
		}
		return nil

	case "tool-invocation":
		return translateToolInvocation(part)

	case "step-start", "step-finish":
		return nil

	default:
		return nil
	}
}

func translateToolInvocation(part *Part) []agentevent.Event {
	if part.Tool == nil {
		return nil
	}

	toolName := normalizeToolName(part.Tool.Name)
	input := part.Tool.Input
	if len(input) == 0 {
		input = json.RawMessage("{}")
	}
	inputStr := prettyJSON(input)

	content := toolName + "\n" + inputStr
	events := []agentevent.Event{agentevent.NewMessage(content, agentevent.MessageOpts{
		ToolMeta: &agentevent.ToolMeta{ToolName: toolName},
	})}

	if toolName == "Bash" && len(part.Tool.Output) > 0 {
		if outputStr := rawToString(part.Tool.Output); outputStr != "" {
			events = append(events, agentevent.NewBashOutput(outputStr))
		}
	}

	return events
}

// normalizeToolName maps OpenCode's tool names to the standard names
// used across every agent's events.
func normalizeToolName(name string) string {
	switch strings.ToLower(name) {
	case "bash", "shell":
		return "Bash"
	case "write":
		return "Write"
	case "edit":
		return "Edit"
	case "read":
		return "Read"
	case "grep", "search":
		return "Grep"
	case "glob":
		return "Glob"
	case "webfetch", "fetch":
		return "WebFetch"
	default:
		return capitalize(name)
	}
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// rawToString renders a tool output value as a string: a JSON string
// value is unwrapped to its raw text, anything else is compacted back
// to JSON text.
func rawToString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var compact strings.Builder
	if err := json.Compact(&compact, raw); err != nil {
		return ""
	}
	return compact.String()
}

func prettyJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return "{}"
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(out)
}
