// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
)

// AddWorkspace creates a new git worktree for branch under repoPath,
// picking a collision-free directory name from the animal pool. If the
// branch already exists, it retries without -b and checks that branch out.
// Returns the canonicalized absolute path.
func AddWorkspace(ctx context.Context, repoPath, branch string) (string, error) {
	dir, err := pickWorkspaceDir(repoPath)
	if err != nil {
		return "", fmt.Errorf("pick workspace dir: %w", err)
	}

	if _, err := runGit(ctx, repoPath, "worktree", "add", dir, "-b", branch); err != nil {
		if _, err2 := runGit(ctx, repoPath, "worktree", "add", dir, branch); err2 != nil {
			return "", err2
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve workspace path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs, nil
	}
	return resolved, nil
}

// ArchiveWorkspace removes workspacePath's worktree, retrying with --force
// on failure (e.g. because of uncommitted changes).
func ArchiveWorkspace(ctx context.Context, repoPath, workspacePath string) error {
	if _, err := runGit(ctx, repoPath, "worktree", "remove", workspacePath); err != nil {
		if _, err2 := runGit(ctx, repoPath, "worktree", "remove", "--force", workspacePath); err2 != nil {
			return err2
		}
	}
	return nil
}

// RenameBranch renames the branch checked out at workspacePath, refusing
// to rename main/master.
func RenameBranch(ctx context.Context, workspacePath, newName string) error {
	branch, err := currentBranch(ctx, workspacePath)
	if err != nil {
		return err
	}
	if branch == "main" || branch == "master" {
		return fmt.Errorf("cannot rename the %s branch", branch)
	}
	_, err = runGit(ctx, workspacePath, "branch", "-m", newName)
	return err
}

// DeleteBranch safely deletes branchName (git branch -d; fails on unmerged
// work rather than discarding it).
func DeleteBranch(ctx context.Context, repoPath, branchName string) error {
	_, err := runGit(ctx, repoPath, "branch", "-d", branchName)
	return err
}

// IsGitRepo reports whether path is (the root of) a git repository.
func IsGitRepo(path string) bool {
	cmd := exec.Command("git", "-C", path, "rev-parse", "--is-inside-work-tree")
	return cmd.Run() == nil
}
