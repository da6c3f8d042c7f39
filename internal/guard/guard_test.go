// Copyright (c) 2026 Solara. All rights reserved.
// Author: dev@solara.app

package guard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solara-app/solara/internal/guard"
)

/*
TestDecide covers the full (class, authenticated) decision table.
*/
func TestDecide(t *testing.T) {
	tests := []struct {
		name          string
		class         guard.RouteClass
		authenticated bool
		want          guard.Decision
	}{
		{"public_anonymous", guard.Public, false, guard.Allow},
		{"public_authenticated", guard.Public, true, guard.Allow},
		{"auth_only_anonymous", guard.AuthOnly, false, guard.Allow},
		{"auth_only_authenticated", guard.AuthOnly, true, guard.RedirectToApp},
		{"protected_anonymous", guard.Protected, false, guard.RedirectToLogin},
		{"protected_authenticated", guard.Protected, true, guard.Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, guard.Decide(tt.class, tt.authenticated))
		})
	}
}

/*
TestClassify verifies the page registry and the public default.
*/
func TestClassify(t *testing.T) {
	assert.Equal(t, guard.AuthOnly, guard.Classify("/login"))
	assert.Equal(t, guard.AuthOnly, guard.Classify("/signup"))
	assert.Equal(t, guard.AuthOnly, guard.Classify("/reset-password"))
	assert.Equal(t, guard.Public, guard.Classify("/email-verification"))
	assert.Equal(t, guard.Protected, guard.Classify("/dashboard"))

	// Unknown paths default to public.
	assert.Equal(t, guard.Public, guard.Classify("/about"))
}
