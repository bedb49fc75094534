// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package chatstore is the append-only per-chat JSONL event log:
// Manager owns one ChatSession per registered chat, each with
// its own buffered writer flushed on a count/time threshold.
package chatstore

import (
	"encoding/json"
	"time"
)

// Metadata is the persisted {chat_id}.meta.json document.
type Metadata struct {
	ID             string    `json:"id"`
	WorkspaceID    string    `json:"workspace_id"`
	Label          string    `json:"label"`
	AgentType      string    `json:"agent_type"`
	AgentSessionID string    `json:"agent_session_id,omitempty"`
	ModelVersion   string    `json:"model_version,omitempty"`
	PermissionMode string    `json:"permission_mode,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// legacyChatFile is the pre-JSONL {chat_id}.json shape: metadata plus an
// inline message array, migrated on first access.
type legacyChatFile struct {
	Metadata
	Messages []legacyMessage `json:"messages"`
}

type legacyMessage struct {
	ID              string          `json:"id"`
	Role            string          `json:"role"`
	Content         string          `json:"content"`
	Timestamp       string          `json:"timestamp"`
	Meta            *legacyMeta     `json:"meta,omitempty"`
	IsBashOutput    *bool           `json:"is_bash_output,omitempty"`
	ToolMeta        json.RawMessage `json:"tool_meta,omitempty"`
	ParentToolUseID string          `json:"parent_tool_use_id,omitempty"`
	ToolUseID       string          `json:"tool_use_id,omitempty"`
	IsInfo          *bool           `json:"is_info,omitempty"`
}

type legacyMeta struct {
	SystemLabel string `json:"system_label,omitempty"`
}
