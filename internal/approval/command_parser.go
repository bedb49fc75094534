// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package approval

import (
	"regexp"
	"strings"
)

var singleLetterFlag = regexp.MustCompile(`^-[A-Za-z]$`)

// ParseCommandPrefixes splits a shell command string on &&, ||, ;, and |
// (byte-level, no quoting awareness) and extracts a canonical prefix from
// each non-empty part, in input order.
//
// For a single-word-table command, the prefix is just the first word. For
// everything else it walks the remaining tokens skipping flags (and a
// single-letter flag's value token) and returns "<first> <first-non-flag>",
// or just "<first>" if no non-flag token follows.
func ParseCommandPrefixes(command string) []string {
	parts := splitOnSeparators(command)

	prefixes := make([]string, 0, len(parts))
	for _, part := range parts {
		if prefix, ok := extractPrefix(strings.TrimSpace(part)); ok {
			prefixes = append(prefixes, prefix)
		}
	}
	return prefixes
}

// splitOnSeparators splits command on &&, ||, ;, and | at the byte level.
// && and || consume two bytes; ; and a single | consume one.
func splitOnSeparators(command string) []string {
	var parts []string
	start := 0
	i := 0
	n := len(command)

	for i < n {
		c := command[i]

		if i+1 < n {
			next := command[i+1]
			if (c == '&' && next == '&') || (c == '|' && next == '|') {
				if start < i {
					parts = append(parts, command[start:i])
				}
				start = i + 2
				i += 2
				continue
			}
		}

		if c == ';' || c == '|' {
			if start < i {
				parts = append(parts, command[start:i])
			}
			start = i + 1
		}

		i++
	}

	if start < n {
		parts = append(parts, command[start:])
	}

	return parts
}

// extractPrefix returns the canonical prefix for a single (already-split)
// command part, and whether one could be extracted at all.
func extractPrefix(command string) (string, bool) {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return "", false
	}

	words := strings.Fields(trimmed)
	if len(words) == 0 {
		return "", false
	}

	first := words[0]

	if IsSingleWordCommand(first) {
		return first, true
	}

	i := 1
	for i < len(words) {
		word := words[i]

		if strings.HasPrefix(word, "-") {
			if singleLetterFlag.MatchString(word) && i+1 < len(words) {
				next := words[i+1]
				if !strings.HasPrefix(next, "-") {
					i++ // skip the flag's value
				}
			}
			i++
			continue
		}

		return first + " " + word, true
	}

	return first, true
}
