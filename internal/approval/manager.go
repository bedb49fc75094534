// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package approval

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrInvalidProjectID is returned when a project ID is not a single normal
// path segment (no separators, no "." or "..").
var ErrInvalidProjectID = errors.New("approval: invalid project id")

// Manager caches one Context per project and persists each to
// <configDir>/<projectID>/approvals.json on mutation. It is safe for
// concurrent use.
type Manager struct {
	configDir string

	mu    sync.Mutex
	cache map[string]*Context
}

// NewManager returns a Manager rooted at configDir.
func NewManager(configDir string) *Manager {
	return &Manager{
		configDir: configDir,
		cache:     make(map[string]*Context),
	}
}

func validProjectID(projectID string) bool {
	if projectID == "" || projectID == "." || projectID == ".." {
		return false
	}
	return filepath.Base(projectID) == projectID
}

func (m *Manager) approvalsPath(projectID string) string {
	return filepath.Join(m.configDir, projectID, "approvals.json")
}

// GetOrLoad returns the cached Context for projectID, loading it from disk
// on first access. A missing file yields an empty Context, not an error.
func (m *Manager) GetOrLoad(projectID string) (*Context, error) {
	if !validProjectID(projectID) {
		return nil, ErrInvalidProjectID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if ctx, ok := m.cache[projectID]; ok {
		return ctx, nil
	}

	ctx, err := loadContext(m.approvalsPath(projectID))
	if err != nil {
		return nil, fmt.Errorf("load approvals for %s: %w", projectID, err)
	}
	m.cache[projectID] = ctx
	return ctx, nil
}

func loadContext(path string) (*Context, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewContext(), nil
	}
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse approvals file: %w", err)
	}
	return FromSnapshot(snap), nil
}

func (m *Manager) persist(projectID string, ctx *Context) error {
	data, err := json.MarshalIndent(ctx.ToSnapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal approvals: %w", err)
	}

	path := m.approvalsPath(projectID)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create approvals dir: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temp approvals file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename approvals file: %w", err)
	}
	return nil
}

// ShouldAutoApprove loads (or reuses the cached) Context for projectID and
// evaluates it against toolName/prefixes.
func (m *Manager) ShouldAutoApprove(projectID, toolName string, prefixes []string) (bool, error) {
	ctx, err := m.GetOrLoad(projectID)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return ctx.ShouldAutoApprove(toolName, prefixes), nil
}

// AddToolApproval grants blanket approval for toolName within projectID and
// persists the change.
func (m *Manager) AddToolApproval(projectID, toolName string) error {
	ctx, err := m.GetOrLoad(projectID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	ctx.ApproveTool(toolName)
	m.mu.Unlock()

	return m.persist(projectID, ctx)
}

// AddPrefixApproval grants approval for prefix within projectID and
// persists the change.
func (m *Manager) AddPrefixApproval(projectID, prefix string) error {
	ctx, err := m.GetOrLoad(projectID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	ctx.ApprovePrefix(prefix)
	m.mu.Unlock()

	return m.persist(projectID, ctx)
}

// ClearApprovals removes all approvals for projectID and persists the
// change.
func (m *Manager) ClearApprovals(projectID string) error {
	ctx, err := m.GetOrLoad(projectID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	ctx.Clear()
	m.mu.Unlock()

	return m.persist(projectID, ctx)
}
