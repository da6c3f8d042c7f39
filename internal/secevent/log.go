// Copyright (c) 2026 Solara. All rights reserved.
// Author: dev@solara.app

package secevent

import (
	"log/slog"
	"sync"

	"time"

	"github.com/solara-app/solara/internal/platform/metrics"
)

// AlertFunc is invoked synchronously for every critical entry.
//
// The hook is an external collaborator (paging, incident tooling). A hook
// failure or panic must never prevent the entry from being recorded, so the
// entry is appended first and the hook runs behind a recover.
type AlertFunc func(Entry)

// Log is the bounded, append-only, in-memory security event log.
//
// # Concurrency
//
// Concurrent requests append simultaneously; append-and-trim runs as a
// single step under the mutex so the log can neither lose entries nor
// overshoot its capacity. Reads copy under the same mutex and tolerate
// in-flight appends from other requests.
type Log struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
	alert    AlertFunc
	logger   *slog.Logger
}

// NewLog constructs a security event log retaining at most capacity entries.
//
// alert may be nil when no pager is wired (tests, local development).
func NewLog(capacity int, alert AlertFunc, logger *slog.Logger) *Log {
	if capacity <= 0 {
		capacity = 1000
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
		alert:    alert,
		logger:   logger,
	}
}

// Record stamps the entry with the current time, appends it, and evicts the
// oldest entry when the stored count would exceed the capacity.
//
// Critical entries synchronously invoke the alert hook before Record
// returns.
func (l *Log) Record(entry Entry) {
	entry.Timestamp = time.Now()

	l.mu.Lock()
	if len(l.entries) >= l.capacity {
		// FIFO eviction, oldest first.
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:l.capacity-1]
	}
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	metrics.SecurityEventsTotal.WithLabelValues(string(entry.Type), string(entry.Severity)).Inc()

	l.logger.Info("security_event",
		slog.String("type", string(entry.Type)),
		slog.String("severity", string(entry.Severity)),
		slog.String("user_id", entry.UserID),
	)

	if entry.Severity == SeverityCritical && l.alert != nil {
		l.fireAlert(entry)
	}
}

// fireAlert runs the hook with panic isolation. The entry is already stored
// by the time this runs.
func (l *Log) fireAlert(entry Entry) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("security_alert_hook_panicked",
				slog.Any("panic", r),
				slog.String("type", string(entry.Type)),
			)
		}
	}()
	l.alert(entry)
}

// Recent returns up to limit of the most recent entries, newest-last.
//
// The returned slice is a copy; mutating it does not affect the log.
func (l *Log) Recent(limit int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 || limit > len(l.entries) {
		limit = len(l.entries)
	}

	out := make([]Entry, limit)
	copy(out, l.entries[len(l.entries)-limit:])
	return out
}

// ByUser returns up to limit of the most recent entries for a specific
// user, newest-last.
func (l *Log) ByUser(userID string, limit int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 {
		limit = len(l.entries)
	}

	// Walk backwards collecting matches, then reverse to newest-last.
	matched := make([]Entry, 0, limit)
	for i := len(l.entries) - 1; i >= 0 && len(matched) < limit; i-- {
		if l.entries[i].UserID == userID {
			matched = append(matched, l.entries[i])
		}
	}

	for left, right := 0, len(matched)-1; left < right; left, right = left+1, right-1 {
		matched[left], matched[right] = matched[right], matched[left]
	}
	return matched
}

// Len returns the current number of stored entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
