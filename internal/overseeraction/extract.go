// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package overseeraction extracts ```overseer fenced JSON blocks from agent
// output and converts them into structured actions Overseer itself performs
// (renaming a chat, opening a PR, merging a branch).
package overseeraction

import (
	"encoding/json"
	"regexp"
	"strings"
)

var overseerBlockRE = regexp.MustCompile("(?s)```overseer\\s*\\n(.*?)\\n```")

// OpenPrParams are the parameters for an OpenPr action.
type OpenPrParams struct {
	Title string  `json:"title"`
	Body  *string `json:"body,omitempty"`
}

// MergeBranchParams are the parameters for a MergeBranch action.
type MergeBranchParams struct {
	Into string `json:"into"`
}

// RenameChatParams are the parameters for a RenameChat action.
type RenameChatParams struct {
	Title string `json:"title"`
}

// Action is the tagged union an agent emits via a ```overseer block:
// {"action": "<name>", "params": {...}}.
type Action struct {
	Kind        string `json:"action"`
	OpenPr      *OpenPrParams
	MergeBranch *MergeBranchParams
	RenameChat  *RenameChatParams
}

// wireAction is the raw shape used to decode a single block before
// dispatching params into the right typed field of Action.
type wireAction struct {
	Action string          `json:"action"`
	Params json.RawMessage `json:"params"`
}

func parseAction(raw string) (Action, bool) {
	var w wireAction
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return Action{}, false
	}

	switch w.Action {
	case "open_pr":
		var p OpenPrParams
		if err := json.Unmarshal(w.Params, &p); err != nil {
			return Action{}, false
		}
		return Action{Kind: w.Action, OpenPr: &p}, true
	case "merge_branch":
		var p MergeBranchParams
		if err := json.Unmarshal(w.Params, &p); err != nil {
			return Action{}, false
		}
		return Action{Kind: w.Action, MergeBranch: &p}, true
	case "rename_chat":
		var p RenameChatParams
		if err := json.Unmarshal(w.Params, &p); err != nil {
			return Action{}, false
		}
		return Action{Kind: w.Action, RenameChat: &p}, true
	default:
		return Action{}, false
	}
}

// Extract finds every ```overseer block in content, parses each into an
// Action (silently dropping malformed JSON or unknown action names), and
// returns the content with all blocks removed (whitespace-trimmed, runs of
// blank lines collapsed) alongside the actions in their original order.
func Extract(content string) (string, []Action) {
	matches := overseerBlockRE.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content, nil
	}

	actions := make([]Action, 0, len(matches))
	var b strings.Builder
	last := 0
	for _, m := range matches {
		blockStart, blockEnd := m[0], m[1]
		capStart, capEnd := m[2], m[3]

		if action, ok := parseAction(strings.TrimSpace(content[capStart:capEnd])); ok {
			actions = append(actions, action)
		}

		b.WriteString(content[last:blockStart])
		last = blockEnd
	}
	b.WriteString(content[last:])

	clean := strings.TrimSpace(b.String())
	for strings.Contains(clean, "\n\n\n") {
		clean = strings.ReplaceAll(clean, "\n\n\n", "\n\n")
	}

	return clean, actions
}
