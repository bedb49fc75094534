// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package httpapi is the HTTP/WebSocket bridge spec.md §4.11 requires:
// POST /api/invoke/{command} dispatches to the same operations the
// desktop IPC transport exposes, and GET /ws/events streams the bus to
// any client able to speak WebSocket (the only path open to a browser).
// Routing is github.com/gorilla/mux and the WS upgrade is
// github.com/gorilla/websocket, exactly as the teacher's internal/api
// package does both.
package httpapi

import (
	"net/http"

	"github.com/wingedpig/overseer/internal/approval"
	"github.com/wingedpig/overseer/internal/bus"
	"github.com/wingedpig/overseer/internal/chatstore"
	"github.com/wingedpig/overseer/internal/crashring"
	"github.com/wingedpig/overseer/internal/project"
	"github.com/wingedpig/overseer/internal/ptysup"
	"github.com/wingedpig/overseer/internal/supervisor"
)

// Dependencies wires every manager an invoke command or the health
// endpoint may need to reach, mirroring the teacher's Dependencies
// dependency-injection shape.
type Dependencies struct {
	Bus        *bus.Bus
	Supervisor *supervisor.Manager
	OpenCode   *supervisor.OpenCodeManager
	PTY        *ptysup.Manager
	Projects   *project.Manager
	Approvals  *approval.Manager
	Chats      *chatstore.Manager
	Crashes    *crashring.Ring

	// OpenCodeClient is the shared http.Client OpenCode prompt calls use;
	// exposed here only so cmd/overseerd can set a request timeout once.
	OpenCodeClient *http.Client
}
