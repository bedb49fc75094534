// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package chatstore

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wingedpig/overseer/internal/agentevent"
)

// LoadEvents returns every event persisted for chatID under
// <rootDir>/<project>/<workspace>, migrating a legacy {chat_id}.json chat
// file first if no JSONL log exists yet. A chat with no log at all yields
// an empty slice, not an error.
func (m *Manager) LoadEvents(project, workspace, chatID string) ([]agentevent.Event, error) {
	dir, err := m.chatDir(project, workspace)
	if err != nil {
		return nil, err
	}

	if _, err := migrateIfNeeded(dir, chatID); err != nil {
		return nil, fmt.Errorf("migrate legacy chat: %w", err)
	}

	seqEvents, err := readJSONL(filepath.Join(dir, chatID+".jsonl"))
	if err != nil {
		return nil, err
	}

	events := make([]agentevent.Event, 0, len(seqEvents))
	for _, se := range seqEvents {
		events = append(events, se.Event)
	}
	return events, nil
}

// LoadChatEventsSinceSeq returns every SeqEvent in chatID's log with
// Seq > sinceSeq, for reconnect catch-up. chatID must already be
// registered.
func (m *Manager) LoadChatEventsSinceSeq(chatID string, sinceSeq uint64) ([]agentevent.SeqEvent, error) {
	session, err := m.get(chatID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	if session.writer != nil {
		if err := session.flushLocked(); err != nil {
			session.mu.Unlock()
			return nil, err
		}
	}
	path := session.jsonlPath()
	session.mu.Unlock()

	all, err := readJSONL(path)
	if err != nil {
		return nil, err
	}

	out := all[:0:0]
	for _, se := range all {
		if se.Seq > sinceSeq {
			out = append(out, se)
		}
	}
	return out, nil
}

// readJSONL reads every line of path as a SeqEvent. Lines with no "seq"
// field (legacy bare-event appends, or a store written before
// sequence-number support) are assigned seq 0.
func readJSONL(path string) ([]agentevent.SeqEvent, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open chat log: %w", err)
	}
	defer f.Close()

	var events []agentevent.SeqEvent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var withSeq struct {
			Seq   *uint64         `json:"seq"`
			Event json.RawMessage `json:"event"`
		}
		if err := json.Unmarshal([]byte(line), &withSeq); err != nil {
			return nil, fmt.Errorf("parse chat log line: %w", err)
		}

		if withSeq.Seq != nil && withSeq.Event != nil {
			var event agentevent.Event
			if err := json.Unmarshal(withSeq.Event, &event); err != nil {
				return nil, fmt.Errorf("parse chat event: %w", err)
			}
			events = append(events, agentevent.SeqEvent{Seq: *withSeq.Seq, Event: event})
			continue
		}

		var event agentevent.Event
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			return nil, fmt.Errorf("parse chat event: %w", err)
		}
		events = append(events, agentevent.SeqEvent{Seq: 0, Event: event})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan chat log: %w", err)
	}
	return events, nil
}
