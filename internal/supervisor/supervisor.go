// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wingedpig/overseer/internal/agentevent"
	"github.com/wingedpig/overseer/internal/approval"
	"github.com/wingedpig/overseer/internal/bus"
	"github.com/wingedpig/overseer/internal/chatstore"
	"github.com/wingedpig/overseer/internal/process"
)

// entry is one running (or just-started) agent child, keyed by id in
// Manager.entries. It only exists for the running phase of the state
// machine: idle has no entry, reaped removes it.
type entry struct {
	kind      string
	projectID string
	backend   Backend
	proc      *process.AgentProcess
	logFile   *os.File
}

// Manager owns every running agent supervisor entry and the shared
// infrastructure (bus, approvals, chat log) the forwarding worker writes
// through. One Manager per overseerd process.
type Manager struct {
	bus       *bus.Bus
	approvals *approval.Manager
	chats     *chatstore.Manager
	logDir    string

	mu      sync.Mutex
	entries map[string]*entry
}

// NewManager returns a Manager that logs child output under logDir.
func NewManager(b *bus.Bus, approvals *approval.Manager, chats *chatstore.Manager, logDir string) *Manager {
	return &Manager{
		bus:       b,
		approvals: approvals,
		chats:     chats,
		logDir:    logDir,
		entries:   make(map[string]*entry),
	}
}

// Start spawns kind's process for id, tearing down any existing entry
// first (start() when already running: kill previous, re-enter
// running). projectID scopes the auto-approval cache.
func (m *Manager) Start(id, kind, projectID string, cfg process.SpawnConfig) error {
	backend, ok := NewBackend(kind)
	if !ok {
		return fmt.Errorf("supervisor: unknown agent kind %q", kind)
	}

	m.teardown(id)

	logFile, err := m.openLogFile(kind, id)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	proc, err := process.Spawn(cfg)
	if err != nil {
		logFile.Close()
		return fmt.Errorf("spawn %s: %w", kind, err)
	}

	// Pre-warm the approval cache for the project so the first
	// ToolApproval in the forwarding loop doesn't pay a cold load.
	if _, err := m.approvals.GetOrLoad(projectID); err != nil {
		log.Printf("supervisor[%s/%s]: preload approvals: %v", kind, id, err)
	}

	e := &entry{kind: kind, projectID: projectID, backend: backend, proc: proc, logFile: logFile}

	m.mu.Lock()
	m.entries[id] = e
	m.mu.Unlock()

	go m.forward(id, e)

	return nil
}

// Stop requests graceful shutdown of id's child. The entry is removed by
// the forwarding worker once the Exit event arrives.
func (m *Manager) Stop(id string) {
	m.mu.Lock()
	e, ok := m.entries[id]
	m.mu.Unlock()
	if !ok {
		return
	}
	e.proc.Stop()
}

// stdinEnvelope is the JSON shape a running Claude child expects a
// follow-up user turn to arrive in on stdin.
type stdinEnvelope struct {
	Type    string `json:"type"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
}

// SendMessage is the single entry point for adding a user turn (Claude
// only, per §4.6.2): it synthesizes and persists a UserMessage event
// labeled as system-originated (the caller already shows the literal
// user text itself), then — under the entries lock, so exactly one
// outcome occurs per call — either forwards the prompt to an already
// running child's stdin, or starts a new one with cfg.
func (m *Manager) SendMessage(id, kind, projectID, prompt string, cfg process.SpawnConfig) error {
	userEvent := agentevent.NewUserMessage(
		uuid.New().String(),
		prompt,
		time.Now().UTC().Format(time.RFC3339Nano),
		&agentevent.UserMessageMeta{SystemLabel: "System"},
	)

	if seq, err := m.chats.AppendEventWithSeq(id, userEvent); err != nil {
		log.Printf("supervisor[%s]: persist user message: %v", id, err)
		m.bus.Emit(kind+":event:"+id, userEvent)
	} else {
		m.bus.Emit(kind+":event:"+id, agentevent.SeqEvent{Seq: seq, Event: userEvent})
	}

	m.mu.Lock()
	e, running := m.entries[id]
	m.mu.Unlock()

	if !running {
		return m.Start(id, kind, projectID, cfg)
	}

	envelope := stdinEnvelope{Type: "user"}
	envelope.Message.Role = "user"
	envelope.Message.Content = prompt
	encoded, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("supervisor: encode stdin envelope: %w", err)
	}
	return e.proc.WriteStdin(string(encoded))
}

// teardown kills and removes any existing entry for id without waiting
// for its forwarding worker to observe the exit; used only when Start
// is about to replace it.
func (m *Manager) teardown(id string) {
	m.mu.Lock()
	e, ok := m.entries[id]
	if ok {
		delete(m.entries, id)
	}
	m.mu.Unlock()
	if ok {
		e.proc.Kill()
		e.logFile.Close()
	}
}

// Running reports whether id currently has a live entry.
func (m *Manager) Running(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[id]
	return ok
}

// PIDs returns the OS process ID of every currently running entry, keyed
// by entry id, for the health endpoint's OS-process cross-check.
func (m *Manager) PIDs() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	pids := make(map[string]int, len(m.entries))
	for id, e := range m.entries {
		pids[id] = e.proc.PID()
	}
	return pids
}

// WriteStdin forwards raw input to id's child, used for UI-driven manual
// approvals and answers the auto-approval path does not cover.
func (m *Manager) WriteStdin(id, data string) error {
	m.mu.Lock()
	e, ok := m.entries[id]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("supervisor: no running entry for %q", id)
	}
	return e.proc.WriteStdin(data)
}

func (m *Manager) openLogFile(kind, id string) (*os.File, error) {
	dir := filepath.Join(m.logDir, kind)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%s-%s.log", id, time.Now().UTC().Format("20060102T150405"))
	return os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// forward is the per-entry worker: it blocks on the process's event
// channel and drives every stdout line through parse → auto-approval →
// persist → broadcast.
func (m *Manager) forward(id string, e *entry) {
	defer e.logFile.Close()

	name := e.backend.Name()
	exit := process.Exit{} // a channel closed without an Exit event counts as a clean exit

loop:
	for ev := range e.proc.Events() {
		switch ev.Kind {
		case process.EventStdout:
			m.logLine(e.logFile, "stdout", ev.Line)
			m.bus.Emit(name+":stdout:"+id, ev.Line)

			events, pending := e.backend.Feed(ev.Line)
			m.pipeline(id, name, e, events, pending)

		case process.EventStderr:
			m.logLine(e.logFile, "stderr", ev.Line)
			m.bus.Emit(name+":stderr:"+id, ev.Line)

		case process.EventExit:
			exit = ev.Exit
			break loop
		}
	}

	events, pending := e.backend.Flush()
	if name == "gemini" {
		// Gemini's result line yields no event; its turn ends with the process.
		events = append(events, agentevent.NewTurnComplete())
	}
	m.pipeline(id, name, e, events, pending)

	m.bus.Emit(name+":close:"+id, exit)

	m.mu.Lock()
	if m.entries[id] == e {
		delete(m.entries, id)
	}
	m.mu.Unlock()
}

func (m *Manager) logLine(f *os.File, stream, line string) {
	if f == nil {
		return
	}
	fmt.Fprintf(f, "[%s] %s: %s\n", time.Now().UTC().Format("2006-01-02T15:04:05.000Z"), stream, line)
}

// pipeline applies §4.6.1 auto-approval interposition to events, persists
// each one (assigning seq), and broadcasts the result.
func (m *Manager) pipeline(id, name string, e *entry, events []agentevent.Event, pending []PendingAck) {
	matched := make(map[string]bool, len(events))

	for _, ev := range events {
		if ev.Kind == agentevent.KindToolApproval {
			ev = m.maybeAutoApprove(e, ev)
			matched[ev.RequestID] = true
		}

		seq, err := m.chats.AppendEventWithSeq(id, ev)
		if err != nil {
			log.Printf("supervisor[%s/%s]: persist event: %v", name, id, err)
			m.bus.Emit(name+":event:"+id, ev)
			continue
		}
		m.bus.Emit(name+":event:"+id, agentevent.SeqEvent{Seq: seq, Event: ev})
	}

	for _, p := range pending {
		if matched[string(p.ID)] {
			continue
		}
		if ack, ok := e.backend.BuildUnknownAck(p); ok && len(ack) > 0 {
			if err := e.proc.WriteStdin(string(ack)); err != nil {
				log.Printf("supervisor[%s/%s]: write unknown-request ack: %v", name, id, err)
			}
		}
	}
}

func (m *Manager) maybeAutoApprove(e *entry, ev agentevent.Event) agentevent.Event {
	auto, err := m.approvals.ShouldAutoApprove(e.projectID, ev.Name, ev.Prefixes)
	if err != nil {
		log.Printf("supervisor: ShouldAutoApprove(%s): %v", e.projectID, err)
		return ev
	}
	if !auto {
		return ev
	}

	if ack, ok := e.backend.BuildApprovalAck(ev.RequestID, ev.Input); ok && len(ack) > 0 {
		if err := e.proc.WriteStdin(string(ack)); err != nil {
			log.Printf("supervisor: write approval ack: %v", err)
			return ev
		}
	}

	ev.AutoApproved = true
	return ev
}
