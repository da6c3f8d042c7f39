// Copyright (c) 2026 Solara. All rights reserved.
// Author: dev@solara.app

package ctxutil_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solara-app/solara/internal/platform/ctxutil"
	"github.com/solara-app/solara/internal/platform/sec"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	requestID := "test-request-id"

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithRequestID(ctx, requestID)
	assert.Equal(t, requestID, ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies logger injection and the default fallback.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()

	// 1. Fallback to the default logger
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	// 2. Inject and retrieve a specific logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestContext_AuthUser verifies claims injection and the anonymous nil case.
*/
func TestContext_AuthUser(t *testing.T) {
	ctx := context.Background()

	// 1. Anonymous context carries no claims
	assert.Nil(t, ctxutil.GetAuthUser(ctx))

	// 2. Inject and retrieve claims
	claims := &sec.AuthClaims{UserID: "user-1", Role: string(sec.RoleMember)}
	ctx = ctxutil.WithAuthUser(ctx, claims)
	assert.Equal(t, claims, ctxutil.GetAuthUser(ctx))
}

/*
TestContext_AuthScope verifies that claims attached deeper in the chain are
visible through a holder seeded upstream. The logging middleware depends on
this to emit user_id, since authentication runs after it.
*/
func TestContext_AuthScope(t *testing.T) {
	scoped := ctxutil.WithAuthScope(context.Background())

	// The seeded holder is still anonymous
	assert.Nil(t, ctxutil.GetAuthUser(scoped))

	// A downstream frame attaches claims to a derived context
	claims := &sec.AuthClaims{UserID: "user-1", Role: string(sec.RoleMember)}
	derived := ctxutil.WithAuthUser(scoped, claims)

	// Both the derived and the original scoped context observe them
	assert.Equal(t, claims, ctxutil.GetAuthUser(derived))
	assert.Equal(t, claims, ctxutil.GetAuthUser(scoped))
}
