// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package paths

import "testing"

func TestValidateComponent(t *testing.T) {
	valid := []string{"proj1", "my-workspace", "a.b.c", "c1"}
	for _, s := range valid {
		if err := ValidateComponent(s); err != nil {
			t.Errorf("ValidateComponent(%q) = %v, want nil", s, err)
		}
	}

	invalid := []string{"", ".", "..", "../escape", "a/b", "/abs", "a/../b"}
	for _, s := range invalid {
		if err := ValidateComponent(s); err == nil {
			t.Errorf("ValidateComponent(%q) = nil, want error", s)
		}
	}
}
