// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/wingedpig/overseer/internal/agentevent"
	"github.com/wingedpig/overseer/internal/bus"
	"github.com/wingedpig/overseer/internal/chatstore"
	"github.com/wingedpig/overseer/internal/protocol/opencode"
)

// OpenCodeManager drives the OpenCode backend, which is a synchronous
// HTTP request/response call rather than a stdout-streaming child
// process: one POST per prompt, with the complete parts[] array decoded
// and translated in a single shot. It shares the bus/chatstore sinks
// with Manager but has no idle/running/reaped process lifecycle to
// track, since there is no long-lived child to supervise between
// prompts.
type OpenCodeManager struct {
	bus    *bus.Bus
	chats  *chatstore.Manager
	client *http.Client
}

// NewOpenCodeManager returns an OpenCodeManager using client for the
// session/prompt HTTP calls, or http.DefaultClient's settings with a
// 5-minute timeout if client is nil.
func NewOpenCodeManager(b *bus.Bus, chats *chatstore.Manager, client *http.Client) *OpenCodeManager {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	return &OpenCodeManager{bus: b, chats: chats, client: client}
}

type promptRequest struct {
	Parts []promptPart `json:"parts"`
}

type promptPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type promptResponse struct {
	Parts []opencode.Part `json:"parts"`
}

// SendPrompt POSTs prompt as a user message part to baseURL's
// session/prompt endpoint for sessionID, translates the returned parts
// into events, and drives them through the same persist+broadcast
// pipeline the streaming backends use. id is the chat/entry id used for
// bus topics and the chat log.
func (m *OpenCodeManager) SendPrompt(ctx context.Context, id, baseURL, sessionID, prompt string) error {
	body, err := json.Marshal(promptRequest{Parts: []promptPart{{Type: "text", Text: prompt}}})
	if err != nil {
		return fmt.Errorf("marshal opencode prompt: %w", err)
	}

	url := fmt.Sprintf("%s/session/%s/prompt", baseURL, sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build opencode request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		m.bus.Emit("opencode:close:"+id, unknownExit())
		return fmt.Errorf("opencode prompt request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		m.bus.Emit("opencode:close:"+id, unknownExit())
		return fmt.Errorf("opencode prompt request: status %d", resp.StatusCode)
	}

	var decoded promptResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		m.bus.Emit("opencode:close:"+id, unknownExit())
		return fmt.Errorf("decode opencode response: %w", err)
	}

	p := opencode.New()
	p.SetSessionID(sessionID)
	events := p.ParseParts(decoded.Parts)

	for _, ev := range events {
		seq, err := m.chats.AppendEventWithSeq(id, ev)
		if err != nil {
			log.Printf("supervisor[opencode/%s]: persist event: %v", id, err)
			m.bus.Emit("opencode:event:"+id, ev)
			continue
		}
		m.bus.Emit("opencode:event:"+id, agentevent.SeqEvent{Seq: seq, Event: ev})
	}

	m.bus.Emit("opencode:close:"+id, struct {
		Code int `json:"code"`
	}{Code: 0})

	return nil
}

// unknownExit is the synthesized exit status for an OpenCode prompt call
// that never produced a usable response (transport error, bad status,
// undecodable body): -1 denotes "unknown exit" per spec, mirroring the
// streaming backends' channel-closure-without-Exit fallback.
func unknownExit() struct {
	Code int `json:"code"`
} {
	return struct {
		Code int `json:"code"`
	}{Code: -1}
}
