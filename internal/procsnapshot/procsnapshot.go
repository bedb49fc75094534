// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package procsnapshot cross-checks the PIDs Overseer's supervisors believe
// they own against the OS process table, so the health endpoint can surface
// a child that died and was reaped by something other than Overseer itself
// (an out-of-band kill, an OOM reap, a crashed init) before the supervisor's
// own exit-event plumbing would otherwise notice.
package procsnapshot

import (
	ps "github.com/mitchellh/go-ps"
)

// Entry reports one tracked id's liveness as observed directly from the OS
// process table, independent of whatever the owning supervisor believes.
type Entry struct {
	ID    string `json:"id"`
	PID   int    `json:"pid"`
	Alive bool   `json:"alive"`
}

// Source supplies the set of ids this process tracks along with their
// OS PIDs; internal/supervisor.Manager.PIDs and internal/ptysup.Manager.PIDs
// both satisfy this shape already.
type Source func() map[string]int

// Snapshot cross-checks every (id, pid) pair reported by sources against
// the live OS process table and returns one Entry per tracked id.
func Snapshot(sources ...Source) ([]Entry, error) {
	table, err := ps.Processes()
	if err != nil {
		return nil, err
	}
	live := make(map[int]bool, len(table))
	for _, proc := range table {
		live[proc.Pid()] = true
	}

	var entries []Entry
	for _, source := range sources {
		for id, pid := range source() {
			entries = append(entries, Entry{ID: id, PID: pid, Alive: live[pid]})
		}
	}
	return entries, nil
}
