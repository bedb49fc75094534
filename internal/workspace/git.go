// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// runGit runs git with args in dir and returns its stdout, or an error
// carrying stderr when the command fails.
func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
	}
	return stdout.String(), nil
}

// ListWorkspaces parses `git worktree list --porcelain` run in repoPath.
func ListWorkspaces(ctx context.Context, repoPath string) ([]WorktreeInfo, error) {
	out, err := runGit(ctx, repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parseWorktreeListPorcelain(out), nil
}

// parseWorktreeListPorcelain parses blocks separated by blank lines:
//
//	worktree /path/to/worktree
//	HEAD abc1234...
//	branch refs/heads/main
func parseWorktreeListPorcelain(output string) []WorktreeInfo {
	var result []WorktreeInfo

	var cur WorktreeInfo
	flush := func() {
		if cur.Path == "" {
			return
		}
		if cur.Branch == "" {
			cur.Branch = "HEAD (detached)"
			cur.Detached = true
		}
		result = append(result, cur)
		cur = WorktreeInfo{}
	}

	for _, line := range strings.Split(output, "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			flush()
			cur.Path = strings.TrimPrefix(line, "worktree ")
		case strings.HasPrefix(line, "HEAD "):
			cur.Commit = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch "):
			cur.Branch = strings.TrimPrefix(strings.TrimPrefix(line, "branch "), "refs/heads/")
		case line == "":
			flush()
		}
	}
	flush()

	return result
}

// GetDefaultBranch checks, in order, main, master, origin/main,
// origin/master; the first ref that resolves wins. Falls back to "main".
func GetDefaultBranch(ctx context.Context, workspacePath string) string {
	for _, candidate := range []string{"main", "master", "origin/main", "origin/master"} {
		cmd := exec.CommandContext(ctx, "git", "rev-parse", "--verify", candidate)
		cmd.Dir = workspacePath
		if cmd.Run() == nil {
			return candidate
		}
	}
	return "main"
}

// currentBranch returns the branch checked out at path ("HEAD" if detached).
func currentBranch(ctx context.Context, path string) (string, error) {
	out, err := runGit(ctx, path, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
