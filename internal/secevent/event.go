// Copyright (c) 2026 Solara. All rights reserved.
// Author: dev@solara.app

/*
Package secevent implements the process-wide security event log.

Security-relevant outcomes (failed logins, rate-limit breaches, suspicious
uploads) are appended to a bounded in-memory log and, when critical, pushed
synchronously to an alert hook (e.g., a paging system).

Architecture:

  - Log: An explicit service object constructed once at startup and injected
    into every call site. Tests build a fresh instance each, so there is no
    cross-test pollution.
  - Retention: FIFO, capped at the most recent 1000 entries. Events are lost
    on process restart. That is an accepted property of this layer.
*/
package secevent

import "time"

// # Event Taxonomy

// EventType enumerates the kinds of security events the platform records.
type EventType string

const (
	TypeLoginSuccess           EventType = "login_success"
	TypeLoginFailed            EventType = "login_failed"
	TypeSignup                 EventType = "signup"
	TypeSignupConflict         EventType = "signup_conflict"
	TypeLogout                 EventType = "logout"
	TypePasswordResetRequested EventType = "password_reset_requested"
	TypePasswordChanged        EventType = "password_changed"
	TypeEmailVerified          EventType = "email_verified"
	TypeTokenRevoked           EventType = "token_revoked"
	TypeInvalidToken           EventType = "invalid_token"
	TypeRateLimitExceeded      EventType = "rate_limit_exceeded"
	TypeSuspiciousUpload       EventType = "suspicious_upload"
	TypePathTraversalAttempt   EventType = "path_traversal_attempt"
	TypePanicRecovered         EventType = "panic_recovered"
)

// # Severity

// Severity is the ordinal classification of a security event. Critical
// events additionally fire the synchronous alert hook.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// # Entry

// Entry is an immutable record of a single security event.
//
// The timestamp is stamped by [Log.Record] at append time; callers never set
// it themselves.
type Entry struct {
	Type      EventType `json:"type"`
	Severity  Severity  `json:"severity"`
	UserID    string    `json:"user_id,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
