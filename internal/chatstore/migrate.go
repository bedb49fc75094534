// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package chatstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wingedpig/overseer/internal/agentevent"
)

// migrateIfNeeded converts a legacy {chat_id}.json chat file (metadata +
// inline message array) into a fresh meta file plus a replayed JSONL log,
// if no {chat_id}.jsonl exists yet but the legacy file does. Returns
// whether migration occurred.
func migrateIfNeeded(dir, chatID string) (bool, error) {
	jsonlPath := filepath.Join(dir, chatID+".jsonl")
	if _, err := os.Stat(jsonlPath); err == nil {
		return false, nil
	}

	legacyPath := filepath.Join(dir, chatID+".json")
	data, err := os.ReadFile(legacyPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read legacy chat file: %w", err)
	}

	var legacy legacyChatFile
	if err := json.Unmarshal(data, &legacy); err != nil {
		return false, fmt.Errorf("parse legacy chat file: %w", err)
	}

	if err := writeMetaAtomic(dir, chatID, legacy.Metadata); err != nil {
		return false, fmt.Errorf("write migrated meta: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("create chat dir: %w", err)
	}

	f, err := os.OpenFile(jsonlPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return false, fmt.Errorf("open migrated chat log: %w", err)
	}
	defer f.Close()

	for _, msg := range legacy.Messages {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}

		event, ok := legacyMessageToEvent(msg)
		if !ok {
			continue
		}

		line, err := serializeForStorage(event)
		if err != nil {
			return false, fmt.Errorf("serialize migrated event: %w", err)
		}
		if _, err := f.Write(append(line, '\n')); err != nil {
			return false, fmt.Errorf("write migrated event: %w", err)
		}
	}

	return true, nil
}

func legacyMessageToEvent(msg legacyMessage) (agentevent.Event, bool) {
	switch msg.Role {
	case "user":
		var meta *agentevent.UserMessageMeta
		if msg.Meta != nil {
			meta = &agentevent.UserMessageMeta{SystemLabel: msg.Meta.SystemLabel}
		}
		return agentevent.NewUserMessage(msg.ID, msg.Content, msg.Timestamp, meta), true

	case "assistant":
		isBashOutput := msg.IsBashOutput != nil && *msg.IsBashOutput
		if isBashOutput {
			hasToolMeta := len(msg.ToolMeta) > 0
			isInfo := msg.IsInfo != nil && *msg.IsInfo
			if hasToolMeta || isInfo {
				return agentevent.Event{}, false
			}
			return agentevent.NewBashOutput(msg.Content), true
		}

		var toolMeta *agentevent.ToolMeta
		if len(msg.ToolMeta) > 0 {
			var tm agentevent.ToolMeta
			if err := json.Unmarshal(msg.ToolMeta, &tm); err == nil {
				toolMeta = &tm
			}
		}
		return agentevent.NewMessage(msg.Content, agentevent.MessageOpts{
			ToolMeta:        toolMeta,
			ParentToolUseID: msg.ParentToolUseID,
			ToolUseID:       msg.ToolUseID,
			IsInfo:          msg.IsInfo,
		}), true

	default:
		return agentevent.Event{}, false
	}
}
