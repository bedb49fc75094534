// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package crashring

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/wingedpig/overseer/internal/bus"
)

// exitPayload covers both shapes the bus carries on a termination event:
// internal/supervisor and internal/ptysup both emit {Code *int, Signal
// int}, Code nil only when the exit status itself couldn't be read.
type exitPayload struct {
	Code   *int `json:"Code"`
	Signal int  `json:"Signal"`
}

// Subscribe attaches ring to b, recording every "<kind>:close:<id>" (agent
// supervisors) and "pty:exit:<id>" (terminal PTYs) event as a Record.
func Subscribe(b *bus.Bus, ring *Ring) error {
	_, err := b.Subscribe([]string{"*:close:*", "pty:exit:*"}, func(e bus.BroadcastEvent) {
		kind, id, ok := splitTermination(e.EventType)
		if !ok {
			return
		}

		var payload exitPayload
		if err := json.Unmarshal(e.Payload, &payload); err != nil {
			return
		}

		var signal string
		if payload.Signal != 0 {
			signal = strconv.Itoa(payload.Signal)
		}
		ring.Record(id, kind, "", payload.Code, signal)
	})
	return err
}

// splitTermination extracts the kind and id from a "<kind>:close:<id>" or
// "pty:exit:<id>" event type.
func splitTermination(eventType string) (kind, id string, ok bool) {
	parts := strings.Split(eventType, ":")
	if len(parts) != 3 {
		return "", "", false
	}
	return parts[0], parts[2], true
}
