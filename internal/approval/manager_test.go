// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package approval

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_GetOrLoad_MissingFileYieldsEmptyContext(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	ctx, err := m.GetOrLoad("proj1")
	require.NoError(t, err)
	assert.False(t, ctx.ShouldAutoApprove("Bash", []string{"rm -rf /tmp"}))
}

func TestManager_InvalidProjectID(t *testing.T) {
	m := NewManager(t.TempDir())

	_, err := m.GetOrLoad("../escape")
	assert.ErrorIs(t, err, ErrInvalidProjectID)

	_, err = m.GetOrLoad("")
	assert.ErrorIs(t, err, ErrInvalidProjectID)

	_, err = m.GetOrLoad(".")
	assert.ErrorIs(t, err, ErrInvalidProjectID)
}

func TestManager_AddToolApproval_PersistsAndReloads(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	require.NoError(t, m.AddToolApproval("proj1", "Read"))

	approved, err := m.ShouldAutoApprove("proj1", "Read", nil)
	require.NoError(t, err)
	assert.True(t, approved)

	path := filepath.Join(dir, "proj1", "approvals.json")
	_, err = os.Stat(path)
	require.NoError(t, err)

	m2 := NewManager(dir)
	approved, err = m2.ShouldAutoApprove("proj1", "Read", nil)
	require.NoError(t, err)
	assert.True(t, approved)
}

func TestManager_AddPrefixApproval(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	require.NoError(t, m.AddPrefixApproval("proj1", "npm install"))

	approved, err := m.ShouldAutoApprove("proj1", "Bash", []string{"npm install"})
	require.NoError(t, err)
	assert.True(t, approved)

	approved, err = m.ShouldAutoApprove("proj1", "Bash", []string{"npm install", "rm -rf /"})
	require.NoError(t, err)
	assert.False(t, approved)
}

func TestManager_SafeCommandsAlwaysApprove(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	approved, err := m.ShouldAutoApprove("proj1", "Bash", []string{"git status"})
	require.NoError(t, err)
	assert.True(t, approved)
}

func TestManager_ClearApprovals(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	require.NoError(t, m.AddToolApproval("proj1", "Read"))
	require.NoError(t, m.AddPrefixApproval("proj1", "npm install"))
	require.NoError(t, m.ClearApprovals("proj1"))

	approved, err := m.ShouldAutoApprove("proj1", "Read", nil)
	require.NoError(t, err)
	assert.False(t, approved)

	approved, err = m.ShouldAutoApprove("proj1", "Bash", []string{"npm install"})
	require.NoError(t, err)
	assert.False(t, approved)
}

// TestManager_PersistsWireFormatFieldNames grounds the on-disk contract
// spec.md §6 mandates for <config>/chats/{project}/approvals.json: the
// persisted JSON uses the camelCase toolNames/commandPrefixes field
// names, not a Go-style snake_case rendering of the struct fields.
func TestManager_PersistsWireFormatFieldNames(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	require.NoError(t, m.AddToolApproval("proj1", "Read"))
	require.NoError(t, m.AddPrefixApproval("proj1", "npm install"))

	data, err := os.ReadFile(filepath.Join(dir, "proj1", "approvals.json"))
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))

	_, hasToolNames := raw["toolNames"]
	_, hasCommandPrefixes := raw["commandPrefixes"]
	assert.True(t, hasToolNames, "expected toolNames key, got: %s", data)
	assert.True(t, hasCommandPrefixes, "expected commandPrefixes key, got: %s", data)

	_, hasOldTools := raw["approved_tools"]
	_, hasOldPrefixes := raw["approved_prefixes"]
	assert.False(t, hasOldTools)
	assert.False(t, hasOldPrefixes)

	assert.Contains(t, string(data), `"toolNames": [`)
	assert.Contains(t, string(data), `"Read"`)
	assert.Contains(t, string(data), `"commandPrefixes": [`)
	assert.Contains(t, string(data), `"npm install"`)
}

func TestManager_ProjectsAreIsolated(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	require.NoError(t, m.AddToolApproval("proj1", "Read"))

	approved, err := m.ShouldAutoApprove("proj2", "Read", nil)
	require.NoError(t, err)
	assert.False(t, approved)
}
