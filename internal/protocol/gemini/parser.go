// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package gemini

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/wingedpig/overseer/internal/agentevent"
)

// Parser accumulates Gemini CLI's NDJSON output line by line. Gemini is
// spawned one-shot per message (no persistent server, no tool
// approvals), so the parser is simpler than the JSON-RPC protocols: no
// pending-request tracking, just session id and a last-tool-name used to
// filter Read tool output.
type Parser struct {
	sessionID    string
	buffer       string
	lastToolName string
	lastWasInfo  bool
}

// New returns an empty Parser.
func New() *Parser { return &Parser{} }

// SessionID returns the session id received so far, or "".
func (p *Parser) SessionID() string { return p.sessionID }

// SetSessionID seeds the session id, for session resumption.
func (p *Parser) SetSessionID(id string) { p.sessionID = id }

// LastWasInfo reports whether the most recently translated event was an
// info message (e.g. a rate-limit warning marked via MarkInfoMessage),
// letting the supervisor decide whether to append to the existing
// message or start a new one once rate limiting clears.
func (p *Parser) LastWasInfo() bool { return p.lastWasInfo }

// ClearLastWasInfo resets the info flag after the caller has handled it.
func (p *Parser) ClearLastWasInfo() { p.lastWasInfo = false }

// MarkInfoMessage records that the caller emitted an info message from
// stderr handling, independent of the NDJSON stream.
func (p *Parser) MarkInfoMessage() { p.lastWasInfo = true }

// Feed appends data to the line buffer and parses every complete line.
// Gemini has no server-initiated requests, so unlike the JSON-RPC
// parsers this returns only events.
func (p *Parser) Feed(data string) []agentevent.Event {
	p.buffer += data

	lines := strings.Split(p.buffer, "\n")
	p.buffer = lines[len(lines)-1]
	lines = lines[:len(lines)-1]

	var events []agentevent.Event
	for _, line := range lines {
		events = append(events, p.parseLine(line)...)
	}
	return events
}

// Flush parses any residual buffered partial line.
func (p *Parser) Flush() []agentevent.Event {
	remaining := p.buffer
	p.buffer = ""
	return p.parseLine(remaining)
}

func (p *Parser) parseLine(line string) []agentevent.Event {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	var event streamEvent
	if err := json.Unmarshal([]byte(trimmed), &event); err != nil {
		return nil
	}

	return p.translate(&event)
}

func (p *Parser) translate(event *streamEvent) []agentevent.Event {
	p.lastWasInfo = false

	switch event.Type {
	case "init":
		if event.SessionID != nil {
			p.sessionID = *event.SessionID
			return []agentevent.Event{agentevent.NewSessionID(*event.SessionID)}
		}
		return nil

	case "message":
		if event.Role == nil || *event.Role != "assistant" {
			return nil
		}
		if event.Content == nil {
			return nil
		}
		if event.Delta != nil && *event.Delta {
			return []agentevent.Event{agentevent.NewText(*event.Content)}
		}
		return []agentevent.Event{agentevent.NewMessage(*event.Content, agentevent.MessageOpts{})}

	case "tool_use":
		return p.translateToolUse(event)

	case "tool_result":
		return p.translateToolResult(event)

	case "error":
		if event.Message != nil {
			return []agentevent.Event{agentevent.NewMessage("Error: "+*event.Message, agentevent.MessageOpts{})}
		}
		return nil

	case "result":
		// TurnComplete is emitted by the supervisor on process exit, not
		// here, matching the reference CLI's close-handler behavior.
		return nil

	default:
		return nil
	}
}

func (p *Parser) translateToolUse(event *streamEvent) []agentevent.Event {
	if event.ToolName == nil {
		return nil
	}

	normalized := normalizeToolName(*event.ToolName)
	p.lastToolName = normalized

	params := event.Parameters
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}
	inputStr := prettyJSON(params)

	var toolMeta *agentevent.ToolMeta
	if normalized == "Edit" || normalized == "Write" {
		oldStr, newStr := editStrings(params)
		toolMeta = &agentevent.ToolMeta{
			ToolName:     normalized,
			LinesAdded:   intPtr(lineCount(newStr)),
			LinesRemoved: intPtr(lineCount(oldStr)),
		}
	} else {
		toolMeta = &agentevent.ToolMeta{ToolName: normalized}
	}

	content := "[" + normalized + "]"
	if inputStr != "" && inputStr != "{}" {
		content += "\n" + inputStr
	}

	return []agentevent.Event{agentevent.NewMessage(content, agentevent.MessageOpts{ToolMeta: toolMeta})}
}

func (p *Parser) translateToolResult(event *streamEvent) []agentevent.Event {
	if p.lastToolName == "Read" {
		p.lastToolName = ""
		return nil
	}
	p.lastToolName = ""

	if event.Status != nil && *event.Status == "success" {
		if event.Output != nil {
			return []agentevent.Event{agentevent.NewBashOutput(*event.Output)}
		}
	} else if event.Status != nil && *event.Status == "error" {
		if event.Error != nil {
			return []agentevent.Event{agentevent.NewMessage("Error: "+*event.Error, agentevent.MessageOpts{})}
		}
	}
	return nil
}

// normalizeToolName maps Gemini CLI's tool names to the standard names
// used across every agent's events.
func normalizeToolName(name string) string {
	switch strings.ToLower(name) {
	case "shell", "run_shell_command":
		return "Bash"
	case "write_file":
		return "Write"
	case "edit_file":
		return "Edit"
	case "read_file":
		return "Read"
	case "search", "grep":
		return "Grep"
	case "fetch", "web_fetch":
		return "WebFetch"
	case "list_directory":
		return "ListDir"
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

func intPtr(i int) *int { return &i }

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

func editStrings(params json.RawMessage) (oldStr, newStr string) {
	var fields struct {
		OldString string `json:"old_string"`
		NewString string `json:"new_string"`
		Content   string `json:"content"`
	}
	_ = json.Unmarshal(params, &fields)
	newStr = fields.NewString
	if newStr == "" {
		newStr = fields.Content
	}
	return fields.OldString, newStr
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
