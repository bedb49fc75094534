// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package project persists the project/workspace registry — the set of
// git repositories Overseer knows about and the worktree-backed
// workspaces carved out of each — to projects.json, with a legacy
// repos.json mirror kept in sync for backward compatibility.
package project

import "time"

// Workspace is a single git worktree carved out of a Project: a branch
// checked out at its own path, optionally associated with a GitHub pull
// request.
type Workspace struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"projectId"`
	Branch     string    `json:"branch"`
	Path       string    `json:"path"`
	IsArchived bool      `json:"isArchived"`
	CreatedAt  time.Time `json:"createdAt"`
	PRNumber   *int      `json:"prNumber,omitempty"`
	PRURL      string    `json:"prUrl,omitempty"`
	PRState    string    `json:"prState,omitempty"`
}

// Project is one registered git repository and its workspaces.
type Project struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Path             string      `json:"path"`
	IsGitRepo        bool        `json:"isGitRepo"`
	Workspaces       []Workspace `json:"workspaces"`
	InitPrompt       string      `json:"initPrompt,omitempty"`
	PRPrompt         string      `json:"prPrompt,omitempty"`
	PostCreate       string      `json:"postCreate,omitempty"`
	WorkspaceFilter  string      `json:"workspaceFilter,omitempty"`
	UseGithub        bool        `json:"useGithub,omitempty"`
	AllowMergeToMain bool        `json:"allowMergeToMain,omitempty"`
}

// Registry is the top-level shape of projects.json.
type Registry struct {
	Projects []Project `json:"projects"`
}

// legacyWorkspace is repos.json's pre-rename workspace shape
// (worktrees entries), used only at load/save time for translation.
type legacyWorkspace struct {
	ID         string    `json:"id"`
	RepoID     string    `json:"repoId"`
	Branch     string    `json:"branch"`
	Path       string    `json:"path"`
	IsArchived bool      `json:"isArchived"`
	CreatedAt  time.Time `json:"createdAt"`
	PRNumber   *int      `json:"prNumber,omitempty"`
	PRURL      string    `json:"prUrl,omitempty"`
	PRState    string    `json:"prState,omitempty"`
}

// legacyProject is repos.json's pre-rename project shape.
type legacyProject struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Path             string            `json:"path"`
	IsGitRepo        bool              `json:"isGitRepo"`
	Worktrees        []legacyWorkspace `json:"worktrees"`
	InitPrompt       string            `json:"initPrompt,omitempty"`
	PRPrompt         string            `json:"prPrompt,omitempty"`
	PostCreate       string            `json:"postCreate,omitempty"`
	WorktreeFilter   string            `json:"worktreeFilter,omitempty"`
	UseGithub        bool              `json:"useGithub,omitempty"`
	AllowMergeToMain bool              `json:"allowMergeToMain,omitempty"`
}

// legacyRegistry is repos.json's top-level shape.
type legacyRegistry struct {
	Projects []legacyProject `json:"projects"`
}

func fromLegacyWorkspace(w legacyWorkspace) Workspace {
	return Workspace{
		ID:         w.ID,
		ProjectID:  w.RepoID,
		Branch:     w.Branch,
		Path:       w.Path,
		IsArchived: w.IsArchived,
		CreatedAt:  w.CreatedAt,
		PRNumber:   w.PRNumber,
		PRURL:      w.PRURL,
		PRState:    w.PRState,
	}
}

func toLegacyWorkspace(w Workspace) legacyWorkspace {
	return legacyWorkspace{
		ID:         w.ID,
		RepoID:     w.ProjectID,
		Branch:     w.Branch,
		Path:       w.Path,
		IsArchived: w.IsArchived,
		CreatedAt:  w.CreatedAt,
		PRNumber:   w.PRNumber,
		PRURL:      w.PRURL,
		PRState:    w.PRState,
	}
}

func fromLegacyProject(p legacyProject) Project {
	workspaces := make([]Workspace, len(p.Worktrees))
	for i, w := range p.Worktrees {
		workspaces[i] = fromLegacyWorkspace(w)
	}
	return Project{
		ID:               p.ID,
		Name:             p.Name,
		Path:             p.Path,
		IsGitRepo:        p.IsGitRepo,
		Workspaces:       workspaces,
		InitPrompt:       p.InitPrompt,
		PRPrompt:         p.PRPrompt,
		PostCreate:       p.PostCreate,
		WorkspaceFilter:  p.WorktreeFilter,
		UseGithub:        p.UseGithub,
		AllowMergeToMain: p.AllowMergeToMain,
	}
}

func toLegacyProject(p Project) legacyProject {
	worktrees := make([]legacyWorkspace, len(p.Workspaces))
	for i, w := range p.Workspaces {
		worktrees[i] = toLegacyWorkspace(w)
	}
	return legacyProject{
		ID:               p.ID,
		Name:             p.Name,
		Path:             p.Path,
		IsGitRepo:        p.IsGitRepo,
		Worktrees:        worktrees,
		InitPrompt:       p.InitPrompt,
		PRPrompt:         p.PRPrompt,
		PostCreate:       p.PostCreate,
		WorktreeFilter:   p.WorkspaceFilter,
		UseGithub:        p.UseGithub,
		AllowMergeToMain: p.AllowMergeToMain,
	}
}

func fromLegacyRegistry(l legacyRegistry) Registry {
	projects := make([]Project, len(l.Projects))
	for i, p := range l.Projects {
		projects[i] = fromLegacyProject(p)
	}
	return Registry{Projects: projects}
}

func toLegacyRegistry(r Registry) legacyRegistry {
	projects := make([]legacyProject, len(r.Projects))
	for i, p := range r.Projects {
		projects[i] = toLegacyProject(p)
	}
	return legacyRegistry{Projects: projects}
}
