// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package agentevent defines the single cross-agent event type produced by
// every protocol parser and persisted in every chat log.
package agentevent

import "encoding/json"

// Kind tags the variant stored in Event.Kind. Serialized as "kind" in
// lowerCamelCase.
type Kind string

const (
	KindText           Kind = "text"
	KindBashOutput     Kind = "bashOutput"
	KindMessage        Kind = "message"
	KindToolResult     Kind = "toolResult"
	KindToolApproval   Kind = "toolApproval"
	KindQuestion       Kind = "question"
	KindPlanApproval   Kind = "planApproval"
	KindSessionID      Kind = "sessionId"
	KindTurnComplete   Kind = "turnComplete"
	KindDone           Kind = "done"
	KindError          Kind = "error"
	KindUserMessage    Kind = "userMessage"
	KindOverseerAction Kind = "overseerAction"
)

// ToolMeta carries extra metadata about a tool invocation surfaced on a
// Message event.
type ToolMeta struct {
	ToolName     string `json:"tool_name"`
	LinesAdded   *int   `json:"lines_added,omitempty"`
	LinesRemoved *int   `json:"lines_removed,omitempty"`
}

// QuestionOption is one selectable choice for a QuestionItem.
type QuestionOption struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// QuestionItem is a single question in a Question event's questions list.
type QuestionItem struct {
	Question    string           `json:"question"`
	Header      string           `json:"header"`
	Options     []QuestionOption `json:"options"`
	MultiSelect bool             `json:"multi_select,omitempty"`
}

// UserMessageMeta carries optional system labeling for a synthesized
// UserMessage event.
type UserMessageMeta struct {
	SystemLabel string `json:"system_label,omitempty"`
}

// Event is the tagged union produced by every parser and stored in every
// chat log. Only the fields relevant to Kind are populated; the rest are
// zero-valued and omitted from JSON via omitempty.
//
// Field groups below exist so that a single struct can represent every
// variant without reflection or interface dispatch — the kind-to-field
// mapping is documented per constructor function.
type Event struct {
	Kind Kind `json:"kind"`

	// Text, BashOutput
	Text string `json:"text,omitempty"`

	// Message
	Content         string    `json:"content,omitempty"`
	ToolMetaField   *ToolMeta `json:"tool_meta,omitempty"`
	ParentToolUseID string    `json:"parent_tool_use_id,omitempty"`
	ToolUseID       string    `json:"tool_use_id,omitempty"`
	IsInfo          *bool     `json:"is_info,omitempty"`

	// ToolResult (shares ToolUseID above for its "tool_use_id" field)
	IsError bool `json:"is_error,omitempty"`

	// ToolApproval
	RequestID    string          `json:"request_id,omitempty"`
	Name         string          `json:"name,omitempty"`
	Input        json.RawMessage `json:"input,omitempty"`
	DisplayInput string          `json:"display_input,omitempty"`
	Prefixes     []string        `json:"prefixes,omitempty"`
	AutoApproved bool            `json:"auto_approved,omitempty"`
	IsProcessed  *bool           `json:"is_processed,omitempty"`

	// Question
	Questions []QuestionItem  `json:"questions,omitempty"`
	RawInput  json.RawMessage `json:"raw_input,omitempty"`

	// PlanApproval uses Content above for its "content" field and RequestID above.

	// SessionId
	SessionID string `json:"session_id,omitempty"`

	// Error
	Message string `json:"message,omitempty"`

	// UserMessage (shares Content above for its "content" field)
	UserMessageID string           `json:"id,omitempty"`
	Timestamp     string           `json:"timestamp,omitempty"`
	UserMeta      *UserMessageMeta `json:"meta,omitempty"`

	// OverseerAction
	Action json.RawMessage `json:"action,omitempty"`
}

// NewText builds a Text{text} event.
func NewText(text string) Event { return Event{Kind: KindText, Text: text} }

// NewBashOutput builds a BashOutput{text} event.
func NewBashOutput(text string) Event { return Event{Kind: KindBashOutput, Text: text} }

// MessageOpts configures a Message event.
type MessageOpts struct {
	ToolMeta        *ToolMeta
	ParentToolUseID string
	ToolUseID       string
	IsInfo          *bool
}

// NewMessage builds a Message event.
func NewMessage(content string, opts MessageOpts) Event {
	return Event{
		Kind:            KindMessage,
		Content:         content,
		ToolMetaField:   opts.ToolMeta,
		ParentToolUseID: opts.ParentToolUseID,
		ToolUseID:       opts.ToolUseID,
		IsInfo:          opts.IsInfo,
	}
}

// NewToolResult builds a ToolResult event.
func NewToolResult(toolUseID, content string, isError bool) Event {
	return Event{
		Kind:      KindToolResult,
		ToolUseID: toolUseID,
		Content:   content,
		IsError:   isError,
	}
}

// ToolApprovalOpts configures a ToolApproval event.
type ToolApprovalOpts struct {
	Prefixes     []string
	AutoApproved bool
}

// NewToolApproval builds a ToolApproval event.
func NewToolApproval(requestID, name string, input json.RawMessage, displayInput string, opts ToolApprovalOpts) Event {
	return Event{
		Kind:         KindToolApproval,
		RequestID:    requestID,
		Name:         name,
		Input:        input,
		DisplayInput: displayInput,
		Prefixes:     opts.Prefixes,
		AutoApproved: opts.AutoApproved,
	}
}

// NewQuestion builds a Question event.
func NewQuestion(requestID string, questions []QuestionItem, rawInput json.RawMessage) Event {
	return Event{Kind: KindQuestion, RequestID: requestID, Questions: questions, RawInput: rawInput}
}

// NewPlanApproval builds a PlanApproval event.
func NewPlanApproval(requestID, content string) Event {
	return Event{Kind: KindPlanApproval, RequestID: requestID, Content: content}
}

// NewSessionID builds a SessionId event.
func NewSessionID(sessionID string) Event { return Event{Kind: KindSessionID, SessionID: sessionID} }

// NewTurnComplete builds a TurnComplete event.
func NewTurnComplete() Event { return Event{Kind: KindTurnComplete} }

// NewDone builds a Done event.
func NewDone() Event { return Event{Kind: KindDone} }

// NewError builds an Error{message} event.
func NewError(message string) Event { return Event{Kind: KindError, Message: message} }

// NewUserMessage builds a UserMessage event.
func NewUserMessage(id, content, timestamp string, meta *UserMessageMeta) Event {
	return Event{
		Kind:          KindUserMessage,
		UserMessageID: id,
		Content:       content,
		Timestamp:     timestamp,
		UserMeta:      meta,
	}
}

// NewOverseerAction builds an OverseerAction event carrying the raw
// serialized action.
func NewOverseerAction(action json.RawMessage) Event {
	return Event{Kind: KindOverseerAction, Action: action}
}

// MarkProcessed returns a copy of the event with is_processed=true set,
// for prompt-bearing kinds (ToolApproval, Question, PlanApproval). Used
// when persisting so replayed history does not re-prompt the user.
func (e Event) MarkProcessed() Event {
	switch e.Kind {
	case KindToolApproval, KindQuestion, KindPlanApproval:
		t := true
		e.IsProcessed = &t
	}
	return e
}

// IsPromptBearing reports whether e is one of the kinds that requires
// IsProcessed bookkeeping on persist.
func (e Event) IsPromptBearing() bool {
	switch e.Kind {
	case KindToolApproval, KindQuestion, KindPlanApproval:
		return true
	default:
		return false
	}
}

// SeqEvent is the storage/stream envelope: an Event with its assigned
// monotonic per-chat sequence number.
type SeqEvent struct {
	Seq   uint64 `json:"seq"`
	Event Event  `json:"event"`
}
