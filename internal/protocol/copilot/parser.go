// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package copilot

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/wingedpig/overseer/internal/agentevent"
	"github.com/wingedpig/overseer/internal/approval"
)

type toolCallInfo struct {
	title string
	kind  string
}

// Parser accumulates Copilot's ACP JSON-RPC NDJSON output line by line.
// Copilot spawns subagents (Tasks): a tool_call whose input carries
// agent_type is tracked as activeTask so child tool calls can be grouped
// under it via ParentToolUseID.
type Parser struct {
	sessionID string
	buffer    string

	activeTask     string
	activeToolCall map[string]toolCallInfo
}

// New returns an empty Parser.
func New() *Parser {
	return &Parser{activeToolCall: make(map[string]toolCallInfo)}
}

// SessionID returns the session id extracted so far, or "".
func (p *Parser) SessionID() string { return p.sessionID }

// SetSessionID seeds the session id, for session resumption.
func (p *Parser) SetSessionID(id string) { p.sessionID = id }

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

	if *msg.Method != "session/request_permission" {
		return nil, pending
	}

	toolCall := extractToolCall(params)

	title := "Permission"
	if toolCall.Title != nil {
		title = *toolCall.Title
	}
	kind := "other"
	if toolCall.Kind != nil {
		kind = *toolCall.Kind
	}
	rawInput := toolCall.RawInput
	if len(rawInput) == 0 {
		rawInput = json.RawMessage("{}")
	}

	toolName := kindToToolName(kind, title)

	var prefixes []string
	if toolName == "Bash" {
		if cmd, ok := stringField(rawInput, "command"); ok {
			prefixes = approval.ParseCommandPrefixes(cmd)
		}
	}

	displayInput := ""
	switch {
	case toolName == "Bash":
		cmd, _ := stringField(rawInput, "command")
		displayInput = cmd
	default:
		if url, ok := stringField(rawInput, "url"); ok && url != "" {
			displayInput = url
		} else if path, ok := stringField(rawInput, "path"); ok && path != "" {
			displayInput = path
		} else {
			displayInput = prettyJSON(rawInput)
		}
	}

	event := agentevent.NewToolApproval(requestID, toolName, rawInput, displayInput, agentevent.ToolApprovalOpts{
		Prefixes:     prefixes,
		AutoApproved: false,
	})
	return []agentevent.Event{event}, pending
}

func (p *Parser) handleNotification(msg rpcMessage) []agentevent.Event {
	params := msg.Params
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}

	switch *msg.Method {
	case "session/update":
		updateRaw := params
		var wrapper struct {
			Update json.RawMessage `json:"update"`
		}
		if err := json.Unmarshal(params, &wrapper); err == nil && len(wrapper.Update) > 0 {
			updateRaw = wrapper.Update
		}

		var update sessionUpdate
		if err := json.Unmarshal(updateRaw, &update); err != nil {
			return nil
		}
		return p.handleSessionUpdate(&update)

	case "$/progress", "$/cancelRequest":
		return nil

	default:
		return nil
	}
}

func (p *Parser) handleSessionUpdate(update *sessionUpdate) []agentevent.Event {
	switch update.updateType() {
	case "agent_message_chunk", "agent_thought_chunk":
		if update.Content != nil && update.Content.Type == "text" && update.Content.Text != nil {
			return []agentevent.Event{agentevent.NewText(*update.Content.Text)}
		}
		return nil

	case "tool_call":
		return p.handleToolCall(update)

	case "tool_call_update":
		return p.handleToolCallUpdate(update)

	case "plan":
		if len(update.Steps) == 0 {
			return nil
		}
		lines := make([]string, 0, len(update.Steps))
		for i, s := range update.Steps {
			lines = append(lines, strconv.Itoa(i+1)+". ["+s.Status+"] "+s.Description)
		}
		return []agentevent.Event{agentevent.NewMessage("Plan:\n"+strings.Join(lines, "\n"), agentevent.MessageOpts{})}

	case "user_message_chunk", "available_commands_update", "current_mode_update":
		return nil

	default:
		return nil
	}
}

func (p *Parser) handleToolCall(update *sessionUpdate) []agentevent.Event {
	if update.ToolCallID == nil {
		return nil
	}
	toolCallID := *update.ToolCallID

	title := "Tool"
	if update.Title != nil {
		title = *update.Title
	}
	kind := "other"
	if update.Kind != nil {
		kind = *update.Kind
	}
	status := ""
	if update.Status != nil {
		status = *update.Status
	}

	p.activeToolCall[toolCallID] = toolCallInfo{title: title, kind: kind}

	if status != "pending" && status != "in_progress" {
		return nil
	}

	input := update.input()

	if agentType, ok := stringField(input, "agent_type"); ok && agentType != "" {
		p.activeTask = toolCallID

		transformed := renameField(input, "agent_type", "subagent_type")
		return []agentevent.Event{agentevent.NewMessage("[Task]\n"+prettyJSON(transformed), agentevent.MessageOpts{
			ToolMeta:  &agentevent.ToolMeta{ToolName: "Task"},
			ToolUseID: toolCallID,
		})}
	}

	toolName := kindToToolName(kind, title)
	inputStr := ""
	if len(input) > 0 {
		inputStr = prettyJSON(input)
	}
	content := "[" + toolName + "]"
	if inputStr != "" {
		content += "\n" + inputStr
	}

	return []agentevent.Event{agentevent.NewMessage(content, agentevent.MessageOpts{
		ToolMeta:        &agentevent.ToolMeta{ToolName: toolName},
		ParentToolUseID: p.activeTask,
	})}
}

func (p *Parser) handleToolCallUpdate(update *sessionUpdate) []agentevent.Event {
	if update.ToolCallID == nil {
		return nil
	}
	toolCallID := *update.ToolCallID

	status := ""
	if update.Status != nil {
		status = *update.Status
	}

	info, hasInfo := p.activeToolCall[toolCallID]

	var events []agentevent.Event
	if status == "completed" {
		isReadTool := hasInfo && info.kind == "read"

		if !isReadTool {
			if update.Content != nil {
				events = append(events, processContentItem(update.Content)...)
			}
			if len(events) == 0 {
				if output := update.output(); len(output) > 0 {
					clean := removeField(output, "detailedContent")
					outputStr := prettyJSON(clean)
					if outputStr != "" && outputStr != "{}" {
						events = append(events, agentevent.NewBashOutput(outputStr))
					}
				}
			}
		}

		delete(p.activeToolCall, toolCallID)
		if p.activeTask == toolCallID {
			p.activeTask = ""
		}
	}

	return events
}

func processContentItem(content *contentItem) []agentevent.Event {
	switch content.Type {
	case "text":
		if content.Text != nil {
			return []agentevent.Event{agentevent.NewBashOutput(*content.Text)}
		}
	case "terminal_output":
		if content.Output != nil {
			return []agentevent.Event{agentevent.NewBashOutput(*content.Output)}
		}
	case "diff":
		path := ""
		if content.Path != nil {
			path = *content.Path
		}
		diff := ""
		if content.Diff != nil {
			diff = *content.Diff
		}
		input := map[string]string{"file_path": path, "diff": diff}
		out, err := json.MarshalIndent(input, "", "  ")
		if err != nil {
			return nil
		}
		return []agentevent.Event{agentevent.NewMessage("[Edit]\n"+string(out), agentevent.MessageOpts{
			ToolMeta: &agentevent.ToolMeta{ToolName: "Edit"},
		})}
	}
	return nil
}

// kindToToolName converts a Copilot tool "kind" into a canonical tool name.
func kindToToolName(kind, title string) string {
	switch kind {
	case "execute":
		return "Bash"
	case "edit":
		return "Edit"
	case "read":
		return "Read"
	case "search":
		return "Grep"
	case "fetch":
		return "WebFetch"
	case "think":
		return "Think"
	default:
		return title
	}
}

func extractToolCall(params json.RawMessage) permissionToolCall {
	var wrapper struct {
		ToolCall json.RawMessage `json:"toolCall"`
	}
	if err := json.Unmarshal(params, &wrapper); err != nil || len(wrapper.ToolCall) == 0 {
		return permissionToolCall{}
	}
	var tc permissionToolCall
	_ = json.Unmarshal(wrapper.ToolCall, &tc)
	return tc
}

func stringField(raw json.RawMessage, key string) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", false
	}
	v, ok := m[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

func renameField(raw json.RawMessage, from, to string) json.RawMessage {
	if len(raw) == 0 {
		return raw
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return raw
	}
	if v, ok := m[from]; ok {
		delete(m, from)
		m[to] = v
	}
	out, err := json.Marshal(m)
	if err != nil {
		return raw
	}
	return out
}

func removeField(raw json.RawMessage, key string) json.RawMessage {
	if len(raw) == 0 {
		return raw
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return raw
	}
	delete(m, key)
	out, err := json.Marshal(m)
	if err != nil {
		return raw
	}
	return out
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
