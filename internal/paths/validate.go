// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package paths validates user-supplied path components before they are
// joined onto a filesystem path, to prevent traversal outside the
// intended directory.
package paths

import (
	"errors"
	"path/filepath"
)

// ErrNotNormalComponent is returned when a string does not parse to
// exactly one filesystem-normal path component.
var ErrNotNormalComponent = errors.New("paths: not a single normal path component")

// ValidateComponent reports an error unless s is exactly one "normal"
// path component: non-empty, containing no path separator, and not "."
// or "..".
func ValidateComponent(s string) error {
	if s == "" || s == "." || s == ".." {
		return ErrNotNormalComponent
	}
	if filepath.Base(s) != s {
		return ErrNotNormalComponent
	}
	return nil
}
