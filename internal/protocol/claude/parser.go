// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package claude

import (
	"encoding/json"
	"strings"

	"github.com/wingedpig/overseer/internal/agentevent"
	"github.com/wingedpig/overseer/internal/approval"
)

// Parser accumulates Claude's stream-json NDJSON output line by line and
// translates each complete line into zero or more agentevent.Events. It is
// single-threaded and never blocks.
type Parser struct {
	sessionID string
	buffer    string
}

// New returns an empty Parser.
func New() *Parser { return &Parser{} }

// SessionID returns the session id extracted so far, or "" if none has
// arrived yet.
func (p *Parser) SessionID() string { return p.sessionID }

// Feed appends data to the line buffer, parses every complete line, and
// returns the events produced. The trailing partial line (if any) is
// retained for the next Feed or Flush.
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

// Flush parses any residual buffered partial line. Call this when the
// underlying stream ends.
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

	var events []agentevent.Event
	if event.SessionID != "" && p.sessionID == "" {
		p.sessionID = event.SessionID
		events = append(events, agentevent.NewSessionID(event.SessionID))
	}

	events = append(events, p.translate(&event)...)
	return events
}

func (p *Parser) translate(event *streamEvent) []agentevent.Event {
	switch event.Type {
	case "assistant":
		return translateAssistant(event)
	case "content_block_start":
		if event.ContentBlock != nil && event.ContentBlock.Type == "tool_use" && event.ContentBlock.Name != "" {
			return []agentevent.Event{agentevent.NewText("\n[" + event.ContentBlock.Name + "] ...")}
		}
		return nil
	case "content_block_delta":
		if event.Delta != nil && event.Delta.Text != "" {
			return []agentevent.Event{agentevent.NewText(event.Delta.Text)}
		}
		return nil
	case "result":
		return []agentevent.Event{agentevent.NewTurnComplete()}
	case "control_request":
		return translateControlRequest(event)
	default:
		return nil
	}
}

func translateAssistant(event *streamEvent) []agentevent.Event {
	if event.Message == nil {
		return nil
	}

	var events []agentevent.Event
	for _, block := range event.Message.Content {
		switch block.Type {
		case "thinking":
			if block.Thinking == "" {
				continue
			}
			events = append(events, agentevent.NewMessage(block.Thinking, agentevent.MessageOpts{
				ToolMeta:        &agentevent.ToolMeta{ToolName: "Thinking", LinesAdded: intPtr(0), LinesRemoved: intPtr(0)},
				ParentToolUseID: event.ParentToolUseID,
			}))

		case "text":
			trimmed := strings.TrimSpace(block.Text)
			if trimmed == "" {
				continue
			}
			events = append(events, agentevent.NewMessage(trimmed, agentevent.MessageOpts{
				ParentToolUseID: event.ParentToolUseID,
			}))

		case "tool_use":
			if ev, ok := translateToolUse(block, event.ParentToolUseID); ok {
				events = append(events, ev)
			}
		}
	}
	return events
}

func translateToolUse(block contentBlock, parentToolUseID string) (agentevent.Event, bool) {
	toolName := block.Name
	if toolName == "" {
		toolName = "Unknown"
	}
	if toolName == "AskUserQuestion" || toolName == "ExitPlanMode" {
		return agentevent.Event{}, false
	}

	inputStr := prettyJSON(block.Input)

	var toolMeta *agentevent.ToolMeta
	if toolName == "Edit" {
		oldStr, newStr := editStrings(block.Input)
		toolMeta = &agentevent.ToolMeta{
			ToolName:     toolName,
			LinesAdded:   intPtr(lineCount(newStr)),
			LinesRemoved: intPtr(lineCount(oldStr)),
		}
	}

	var toolUseID string
	if toolName == "Task" {
		toolUseID = block.ID
	}

	content := "[" + toolName + "]"
	if inputStr != "" {
		content += "\n" + inputStr
	}

	return agentevent.NewMessage(content, agentevent.MessageOpts{
		ToolMeta:        toolMeta,
		ParentToolUseID: parentToolUseID,
		ToolUseID:       toolUseID,
	}), true
}

func translateControlRequest(event *streamEvent) []agentevent.Event {
	if event.RequestID == "" || event.Request == nil || event.Request.Subtype != "can_use_tool" {
		return nil
	}

	requestID := event.RequestID
	toolName := event.Request.ToolName

	if toolName == "AskUserQuestion" {
		var parsed askUserQuestionInput
		if err := json.Unmarshal(event.Request.Input, &parsed); err != nil {
			return nil
		}
		questions := make([]agentevent.QuestionItem, 0, len(parsed.Questions))
		for _, q := range parsed.Questions {
			opts := make([]agentevent.QuestionOption, 0, len(q.Options))
			for _, o := range q.Options {
				opts = append(opts, agentevent.QuestionOption{Label: o.Label, Description: o.Description})
			}
			questions = append(questions, agentevent.QuestionItem{
				Question:    q.Question,
				Header:      q.Header,
				Options:     opts,
				MultiSelect: q.MultiSelect,
			})
		}
		return []agentevent.Event{agentevent.NewQuestion(requestID, questions, event.Request.Input)}
	}

	if toolName == "ExitPlanMode" {
		var parsed exitPlanModeInput
		_ = json.Unmarshal(event.Request.Input, &parsed)
		return []agentevent.Event{agentevent.NewPlanApproval(requestID, parsed.Plan)}
	}

	input := event.Request.Input
	if len(input) == 0 {
		input = json.RawMessage("{}")
	}

	displayInput := ""
	if isNonEmptyObject(input) {
		displayInput = prettyJSON(input)
	}

	var prefixes []string
	if toolName == "Bash" {
		if cmd, ok := extractCommand(input); ok {
			prefixes = approval.ParseCommandPrefixes(cmd)
		}
	}

	return []agentevent.Event{agentevent.NewToolApproval(requestID, toolName, input, displayInput, agentevent.ToolApprovalOpts{
		Prefixes:     prefixes,
		AutoApproved: false,
	})}
}

func intPtr(i int) *int { return &i }

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

func editStrings(input json.RawMessage) (oldStr, newStr string) {
	var fields struct {
		OldString string `json:"old_string"`
		NewString string `json:"new_string"`
	}
	_ = json.Unmarshal(input, &fields)
	return fields.OldString, fields.NewString
}

func extractCommand(input json.RawMessage) (string, bool) {
	var fields struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal(input, &fields); err != nil {
		return "", false
	}
	return fields.Command, true
}

func isNonEmptyObject(raw json.RawMessage) bool {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return false
	}
	return len(m) > 0
}

func prettyJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(out)
}
