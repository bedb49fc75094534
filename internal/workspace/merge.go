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

// CheckMerge previews merging workspacePath's current branch into the
// default branch without touching either: a fast-forward is reported
// success directly, otherwise `git merge-tree --write-tree` decides.
func CheckMerge(ctx context.Context, workspacePath string) (MergeResult, error) {
	feature, err := currentBranch(ctx, workspacePath)
	if err != nil {
		return MergeResult{}, err
	}
	if feature == "main" || feature == "master" {
		return MergeResult{Message: "Already on the default branch, nothing to merge."}, nil
	}

	defaultBranch := strings.TrimPrefix(GetDefaultBranch(ctx, workspacePath), "origin/")

	isAncestor := exec.CommandContext(ctx, "git", "merge-base", "--is-ancestor", defaultBranch, feature)
	isAncestor.Dir = workspacePath
	if isAncestor.Run() == nil {
		return MergeResult{
			Success: true,
			Message: fmt.Sprintf("Clean fast-forward merge of %q into %q.", feature, defaultBranch),
		}, nil
	}

	mergeTree := exec.CommandContext(ctx, "git", "merge-tree", "--write-tree", defaultBranch, feature)
	mergeTree.Dir = workspacePath
	out, err := mergeTree.Output()
	if err == nil {
		return MergeResult{
			Success: true,
			Message: fmt.Sprintf("Clean merge of %q into %q.", feature, defaultBranch),
		}, nil
	}

	var conflicts []string
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.Contains(line, "\t") {
			continue
		}
		parts := strings.Split(line, "\t")
		conflicts = append(conflicts, parts[len(parts)-1])
	}

	return MergeResult{
		Success:   false,
		Conflicts: conflicts,
		Message:   fmt.Sprintf("Merge of %q into %q has conflicts that need resolution.", feature, defaultBranch),
	}, nil
}

// MergeIntoMain locates the worktree checked out on the default branch and
// runs `git merge` there, aborting on any failure so the default-branch
// worktree is never left dirty.
func MergeIntoMain(ctx context.Context, workspacePath string) (MergeResult, error) {
	feature, err := currentBranch(ctx, workspacePath)
	if err != nil {
		return MergeResult{}, err
	}
	if feature == "main" || feature == "master" {
		return MergeResult{Message: "Already on the default branch, nothing to merge."}, nil
	}

	defaultBranch := strings.TrimPrefix(GetDefaultBranch(ctx, workspacePath), "origin/")

	worktrees, err := ListWorkspaces(ctx, workspacePath)
	if err != nil {
		return MergeResult{}, fmt.Errorf("list workspaces: %w", err)
	}
	var mainPath string
	for _, w := range worktrees {
		if w.Branch == defaultBranch {
			mainPath = w.Path
			break
		}
	}
	if mainPath == "" {
		return MergeResult{}, fmt.Errorf("could not find a workspace checked out on %q; make sure the default branch has a workspace", defaultBranch)
	}

	merge := exec.CommandContext(ctx, "git", "merge", feature, "--no-edit", "-m", fmt.Sprintf("Merge branch '%s'", feature))
	merge.Dir = mainPath
	var mergeStdout, mergeStderr bytes.Buffer
	merge.Stdout = &mergeStdout
	merge.Stderr = &mergeStderr
	mergeErr := merge.Run()
	if mergeErr == nil {
		return MergeResult{
			Success: true,
			Message: fmt.Sprintf("Successfully merged %q into %q.", feature, defaultBranch),
		}, nil
	}

	var conflicts []string
	for _, line := range strings.Split(mergeStdout.String(), "\n") {
		if strings.HasPrefix(line, "CONFLICT") {
			conflicts = append(conflicts, line)
		}
	}

	abort := exec.CommandContext(ctx, "git", "merge", "--abort")
	abort.Dir = mainPath
	_ = abort.Run()

	if len(conflicts) > 0 {
		return MergeResult{
			Success:   false,
			Conflicts: conflicts,
			Message:   fmt.Sprintf("Merge of %q into %q has conflicts that need resolution.", feature, defaultBranch),
		}, nil
	}

	return MergeResult{
		Success: false,
		Message: fmt.Sprintf("Merge failed: %s %s", mergeStderr.String(), mergeStdout.String()),
	}, nil
}
