// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package codex

import (
	"encoding/json"
	"strings"

	"github.com/wingedpig/overseer/internal/agentevent"
	"github.com/wingedpig/overseer/internal/approval"
)

// Parser accumulates Codex's JSON-RPC NDJSON output line by line. Unlike
// the Claude parser, two of its notification methods (item/started and
// item/completed) track in_command_execution, and server requests also yield a PendingRequest
// the supervisor must answer.
type Parser struct {
	threadID           string
	buffer             string
	inCommandExecution bool
}

// New returns an empty Parser.
func New() *Parser { return &Parser{} }

// ThreadID returns the thread (session) id extracted so far, or "".
func (p *Parser) ThreadID() string { return p.threadID }

// SetThreadID seeds the thread id, for session resumption.
func (p *Parser) SetThreadID(id string) { p.threadID = id }

// InCommandExecution reports whether a commandExecution item is currently
// open (started but not yet completed).
func (p *Parser) InCommandExecution() bool { return p.inCommandExecution }

// Feed appends data to the line buffer and parses every complete line,
// returning the events produced and any server requests awaiting a
// response.
func (p *Parser) Feed(data string) ([]agentevent.Event, []PendingRequest) {
	p.buffer += data

	lines := strings.Split(p.buffer, "\n")
	p.buffer = lines[len(lines)-1]
	lines = lines[:len(lines)-1]

	var events []agentevent.Event
	var pending []PendingRequest
	for _, line := range lines {
		e, pr := p.parseLine(line)
		events = append(events, e...)
		pending = append(pending, pr...)
	}
	return events, pending
}

// Flush parses any residual buffered partial line.
func (p *Parser) Flush() ([]agentevent.Event, []PendingRequest) {
	remaining := p.buffer
	p.buffer = ""
	return p.parseLine(remaining)
}

func (p *Parser) parseLine(line string) ([]agentevent.Event, []PendingRequest) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, nil
	}

	var msg rpcMessage
	if err := json.Unmarshal([]byte(trimmed), &msg); err != nil {
		return nil, nil
	}

	hasID := len(msg.ID) > 0 && string(msg.ID) != "null"
	hasMethod := msg.Method != nil

	switch {
	case hasID && hasMethod:
		return p.handleServerRequest(msg)
	case hasID:
		return nil, nil
	case hasMethod:
		return p.handleNotification(msg), nil
	default:
		return nil, nil
	}
}

func (p *Parser) handleServerRequest(msg rpcMessage) ([]agentevent.Event, []PendingRequest) {
	pending := []PendingRequest{{ID: msg.ID, Method: *msg.Method}}
	requestID := string(msg.ID)

	params := msg.Params
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}

	switch *msg.Method {
	case "item/commandExecution/requestApproval":
		command := stringField(params, "command")
		prefixes := approval.ParseCommandPrefixes(command)
		event := agentevent.NewToolApproval(requestID, "Bash", params, command, agentevent.ToolApprovalOpts{
			Prefixes: prefixes,
		})
		return []agentevent.Event{event}, pending

	case "item/fileChange/requestApproval":
		event := agentevent.NewToolApproval(requestID, "Edit", params, prettyJSON(params), agentevent.ToolApprovalOpts{})
		return []agentevent.Event{event}, pending

	case "item/tool/requestUserInput":
		event := agentevent.NewToolApproval(requestID, "UserInput", params, prettyJSON(params), agentevent.ToolApprovalOpts{})
		return []agentevent.Event{event}, pending

	default:
		return nil, pending
	}
}

func (p *Parser) handleNotification(msg rpcMessage) []agentevent.Event {
	params := msg.Params
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}

	switch *msg.Method {
	case "item/agentMessage/delta", "item/reasoning/summaryTextDelta":
		if delta := stringField(params, "delta"); delta != "" {
			return []agentevent.Event{agentevent.NewText(delta)}
		}
		return nil

	case "item/commandExecution/outputDelta":
		if delta := stringField(params, "delta"); delta != "" {
			return []agentevent.Event{agentevent.NewBashOutput(delta)}
		}
		return nil

	case "item/started":
		return p.handleItemStarted(params)

	case "item/completed":
		return p.handleItemCompleted(params)

	case "turn/completed":
		return []agentevent.Event{agentevent.NewTurnComplete()}

	case "error":
		message := stringField(params, "message")
		if message == "" {
			message = "Unknown error"
		}
		return []agentevent.Event{agentevent.NewMessage("Error: "+message, agentevent.MessageOpts{})}

	case "thread/name/updated", "thread/tokenUsage/updated", "thread/compacted",
		"account/updated", "account/rateLimits/updated", "deprecationNotice":
		return nil

	default:
		return nil
	}
}

func (p *Parser) handleItemStarted(params json.RawMessage) []agentevent.Event {
	item, ok := rawItem(params)
	if !ok {
		return nil
	}

	switch item.Type {
	case "commandExecution":
		p.inCommandExecution = true
		input := map[string]string{"command": item.Command}
		return []agentevent.Event{agentevent.NewMessage("[Bash]\n"+prettyMap(input), agentevent.MessageOpts{
			ToolMeta: &agentevent.ToolMeta{ToolName: "Bash"},
		})}

	case "fileChange":
		input := map[string]string{
			"file_path":  item.FilePath,
			"old_string": "",
			"new_string": item.Diff,
		}
		return []agentevent.Event{agentevent.NewMessage("[Edit]\n"+prettyMap(input), agentevent.MessageOpts{
			ToolMeta: &agentevent.ToolMeta{ToolName: "Edit"},
		})}

	case "mcpToolCall":
		toolName := item.ToolName
		if toolName == "" {
			toolName = "Tool"
		}
		argsStr := ""
		if len(item.Arguments) > 0 {
			argsStr = prettyJSON(item.Arguments)
		}
		content := "[" + toolName + "]"
		if argsStr != "" {
			content += "\n" + argsStr
		}
		return []agentevent.Event{agentevent.NewMessage(content, agentevent.MessageOpts{})}

	default:
		return nil
	}
}

func (p *Parser) handleItemCompleted(params json.RawMessage) []agentevent.Event {
	item, ok := rawItem(params)
	if !ok {
		return nil
	}

	switch item.Type {
	case "commandExecution":
		p.inCommandExecution = false
		return nil

	case "agentMessage":
		if item.Text == "" {
			return nil
		}
		return []agentevent.Event{agentevent.NewMessage(item.Text, agentevent.MessageOpts{})}

	default:
		return nil
	}
}

func rawItem(params json.RawMessage) (codexItem, bool) {
	var wrapper struct {
		Item json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(params, &wrapper); err != nil || len(wrapper.Item) == 0 {
		return codexItem{}, false
	}
	var item codexItem
	if err := json.Unmarshal(wrapper.Item, &item); err != nil {
		return codexItem{}, false
	}
	return item, true
}

func stringField(raw json.RawMessage, key string) string {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return ""
	}
	v, ok := m[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return s
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

func prettyMap(m map[string]string) string {
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(out)
}
