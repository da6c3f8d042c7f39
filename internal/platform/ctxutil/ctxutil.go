// Copyright (c) 2026 Solara. All rights reserved.
// Author: dev@solara.app

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/solara-app/solara/internal/platform/ctxkey"
	"github.com/solara-app/solara/internal/platform/sec"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// authUserHolder carries the resolved claims for a request. Claims are
// resolved by the authentication middleware, which runs after the logging
// middleware; the holder lets the earlier frame read them once the request
// has finished.
type authUserHolder struct {
	claims *sec.AuthClaims
}

// WithAuthScope seeds an empty claims holder into the context. Call it in
// middleware mounted before authentication when that middleware needs to
// observe the claims after the inner handlers return.
func WithAuthScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxkey.KeyUser, &authUserHolder{})
}

// WithAuthUser attaches the provided auth claims to the context. When an
// upstream middleware already seeded the holder via [WithAuthScope], the
// claims are written through it so earlier frames observe them too.
func WithAuthUser(ctx context.Context, user *sec.AuthClaims) context.Context {
	if holder, ok := ctx.Value(ctxkey.KeyUser).(*authUserHolder); ok {
		holder.claims = user
		return ctx
	}
	return context.WithValue(ctx, ctxkey.KeyUser, &authUserHolder{claims: user})
}

// GetAuthUser retrieves the [*sec.AuthClaims] from the [context.Context].
// Returns nil for anonymous requests.
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	holder, ok := ctx.Value(ctxkey.KeyUser).(*authUserHolder)
	if !ok {
		return nil
	}
	return holder.claims
}
