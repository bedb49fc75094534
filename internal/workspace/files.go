// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	gitignore "github.com/sabhiram/go-gitignore"
)

// ListFiles walks workspacePath and returns every non-ignored file's path
// relative to the root, sorted, honoring the root .gitignore plus the
// repo's global and local excludes. .gitignore files in subdirectories
// are not read.
func ListFiles(workspacePath string) ([]string, error) {
	matcher := loadIgnoreMatchers(workspacePath)

	var files []string
	err := filepath.WalkDir(workspacePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(workspacePath, path)
		if relErr != nil {
			return nil
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			if matcher.matchDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher.matchFile(rel) {
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// ignoreSet layers .git/info/exclude, the user's global gitignore, and
// workspacePath's own .gitignore, the same three sources the original
// Rust `ignore` crate consults by default.
type ignoreSet struct {
	compiled []*gitignore.GitIgnore
}

func (s *ignoreSet) matchFile(rel string) bool {
	for _, m := range s.compiled {
		if m.MatchesPath(rel) {
			return true
		}
	}
	return false
}

func (s *ignoreSet) matchDir(rel string) bool {
	for _, m := range s.compiled {
		if m.MatchesPath(rel + "/") {
			return true
		}
	}
	return false
}

func loadIgnoreMatchers(workspacePath string) *ignoreSet {
	s := &ignoreSet{}

	if m, err := gitignore.CompileIgnoreFile(filepath.Join(workspacePath, ".gitignore")); err == nil {
		s.compiled = append(s.compiled, m)
	}
	if m, err := gitignore.CompileIgnoreFile(filepath.Join(workspacePath, ".git", "info", "exclude")); err == nil {
		s.compiled = append(s.compiled, m)
	}
	if global := globalGitignorePath(); global != "" {
		if m, err := gitignore.CompileIgnoreFile(global); err == nil {
			s.compiled = append(s.compiled, m)
		}
	}

	return s
}

// globalGitignorePath returns ~/.config/git/ignore if that file exists,
// else "". A core.excludesFile setting in git config is not consulted.
func globalGitignorePath() string {
	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, ".config", "git", "ignore")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
