// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"context"
	"sort"
	"strings"
)

// parseDiffNameStatus parses `git diff --name-status` output: each line is
// "<status>\t<path>"; the status column is reduced to its first rune.
func parseDiffNameStatus(output string) []ChangedFile {
	var files []ChangedFile
	for _, line := range strings.Split(output, "\n") {
		status, path, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		if status == "" {
			continue
		}
		files = append(files, ChangedFile{Status: status[:1], Path: path})
	}
	return files
}

// ListChangedFiles reports both committed branch changes (vs the
// merge-base with the default branch) and uncommitted working-tree changes
// (staged, unstaged, and untracked) for workspacePath.
func ListChangedFiles(ctx context.Context, workspacePath string) (ChangedFilesResult, error) {
	branch, err := currentBranch(ctx, workspacePath)
	if err != nil {
		return ChangedFilesResult{}, err
	}
	isDefault := branch == "main" || branch == "master" || branch == "HEAD"

	var uncommitted []ChangedFile

	uncommittedOut, err := runGit(ctx, workspacePath, "diff", "--name-status", "HEAD")
	if err != nil {
		return ChangedFilesResult{}, err
	}
	uncommitted = append(uncommitted, parseDiffNameStatus(uncommittedOut)...)

	untrackedOut, err := runGit(ctx, workspacePath, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return ChangedFilesResult{}, err
	}
	for _, line := range strings.Split(untrackedOut, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		uncommitted = append(uncommitted, ChangedFile{Status: "?", Path: trimmed})
	}

	sort.SliceStable(uncommitted, func(i, j int) bool {
		iUntracked, jUntracked := uncommitted[i].Status == "?", uncommitted[j].Status == "?"
		if iUntracked != jUntracked {
			return !iUntracked
		}
		return uncommitted[i].Path < uncommitted[j].Path
	})

	var files []ChangedFile
	if !isDefault {
		defaultBranch := GetDefaultBranch(ctx, workspacePath)
		mergeBase, err := runGit(ctx, workspacePath, "merge-base", "HEAD", defaultBranch)
		if err == nil {
			base := strings.TrimSpace(mergeBase)
			diffOut, err := runGit(ctx, workspacePath, "diff", "--name-status", base, "HEAD")
			if err == nil {
				files = parseDiffNameStatus(diffOut)
				sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
			}
		}
	}

	return ChangedFilesResult{Files: files, Uncommitted: uncommitted, IsDefaultBranch: isDefault}, nil
}

// GetFileDiff returns the diff for filePath, comparing against /dev/null
// for untracked/newly-added files (to show full content as additions) and
// against the merge-base with the default branch otherwise.
func GetFileDiff(ctx context.Context, workspacePath, filePath, fileStatus string) (string, error) {
	if fileStatus == "?" || fileStatus == "A" {
		out, _ := runGit(ctx, workspacePath, "diff", "--no-index", "/dev/null", filePath)
		return out, nil
	}

	baseRef := "HEAD"
	branch, err := currentBranch(ctx, workspacePath)
	if err != nil {
		return "", err
	}
	if branch != "main" && branch != "master" && branch != "HEAD" {
		defaultBranch := GetDefaultBranch(ctx, workspacePath)
		if mergeBase, err := runGit(ctx, workspacePath, "merge-base", "HEAD", defaultBranch); err == nil {
			baseRef = strings.TrimSpace(mergeBase)
		}
	}

	return runGit(ctx, workspacePath, "diff", baseRef, "--", filePath)
}

// GetUncommittedDiff returns the diff for filePath against HEAD (staged
// plus unstaged changes), or against /dev/null for untracked files.
func GetUncommittedDiff(ctx context.Context, workspacePath, filePath, fileStatus string) (string, error) {
	if fileStatus == "?" {
		out, _ := runGit(ctx, workspacePath, "diff", "--no-index", "/dev/null", filePath)
		return out, nil
	}
	return runGit(ctx, workspacePath, "diff", "HEAD", "--", filePath)
}
