// Copyright (c) 2026 Solara. All rights reserved.
// Author: dev@solara.app

package secevent_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/solara-app/solara/internal/secevent"
)

/*
TestLog_Eviction verifies FIFO eviction: after 1001 events on a 1000-entry
log, the very first event is gone and the 1001st is present.
*/
func TestLog_Eviction(t *testing.T) {
	log := secevent.NewLog(1000, nil, nil)

	for i := 0; i < 1001; i++ {
		log.Record(secevent.Entry{
			Type:     secevent.TypeLoginFailed,
			Severity: secevent.SeverityMedium,
			Details:  fmt.Sprintf("event-%d", i),
		})
	}

	recent := log.Recent(1000)
	require.Len(t, recent, 1000)

	// Oldest-first eviction: event-0 is gone, event-1 survives.
	assert.Equal(t, "event-1", recent[0].Details)
	// Newest-last ordering: the 1001st event closes the slice.
	assert.Equal(t, "event-1000", recent[999].Details)
	assert.Equal(t, 1000, log.Len())
}

/*
TestLog_RecordStampsTimestamp verifies that Record sets the timestamp.
*/
func TestLog_RecordStampsTimestamp(t *testing.T) {
	log := secevent.NewLog(10, nil, nil)

	log.Record(secevent.Entry{Type: secevent.TypeSignup, Severity: secevent.SeverityLow})

	recent := log.Recent(1)
	require.Len(t, recent, 1)
	assert.False(t, recent[0].Timestamp.IsZero())
}

/*
TestLog_CriticalAlert verifies the alert hook fires synchronously for
critical entries only.
*/
func TestLog_CriticalAlert(t *testing.T) {
	var alerted []secevent.Entry
	log := secevent.NewLog(10, func(entry secevent.Entry) {
		alerted = append(alerted, entry)
	}, nil)

	log.Record(secevent.Entry{Type: secevent.TypeRateLimitExceeded, Severity: secevent.SeverityHigh})
	assert.Empty(t, alerted)

	log.Record(secevent.Entry{Type: secevent.TypePanicRecovered, Severity: secevent.SeverityCritical})
	require.Len(t, alerted, 1)
	assert.Equal(t, secevent.TypePanicRecovered, alerted[0].Type)
}

/*
TestLog_AlertHookPanicDoesNotLoseEntry verifies hook failure isolation: the
entry must be recorded even when the pager blows up.
*/
func TestLog_AlertHookPanicDoesNotLoseEntry(t *testing.T) {
	log := secevent.NewLog(10, func(secevent.Entry) {
		panic("pager unreachable")
	}, nil)

	assert.NotPanics(t, func() {
		log.Record(secevent.Entry{Type: secevent.TypePanicRecovered, Severity: secevent.SeverityCritical})
	})

	require.Equal(t, 1, log.Len())
	assert.Equal(t, secevent.TypePanicRecovered, log.Recent(1)[0].Type)
}

/*
TestLog_ByUser verifies per-user filtering, limit, and newest-last order.
*/
func TestLog_ByUser(t *testing.T) {
	log := secevent.NewLog(100, nil, nil)

	for i := 0; i < 5; i++ {
		log.Record(secevent.Entry{
			Type:     secevent.TypeLoginFailed,
			Severity: secevent.SeverityMedium,
			UserID:   "alice",
			Details:  fmt.Sprintf("alice-%d", i),
		})
		log.Record(secevent.Entry{
			Type:     secevent.TypeLoginSuccess,
			Severity: secevent.SeverityLow,
			UserID:   "bob",
		})
	}

	events := log.ByUser("alice", 3)
	require.Len(t, events, 3)
	assert.Equal(t, "alice-2", events[0].Details)
	assert.Equal(t, "alice-4", events[2].Details)

	assert.Empty(t, log.ByUser("carol", 10))
}

/*
TestLog_ConcurrentRecord verifies that concurrent appends never overshoot
the capacity and never lose updates below it.
*/
func TestLog_ConcurrentRecord(t *testing.T) {
	log := secevent.NewLog(50, nil, nil)

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				log.Record(secevent.Entry{Type: secevent.TypeLoginFailed, Severity: secevent.SeverityMedium})
			}
		}()
	}
	wg.Wait()

	// 800 appends through a 50-entry window: exactly full, never over.
	assert.Equal(t, 50, log.Len())
}

/*
TestLog_RetentionProperty exercises the retention invariant with arbitrary
append counts and capacities: size == min(appends, capacity) and Recent
returns the suffix of what was appended.
*/
func TestLog_RetentionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 200).Draw(t, "capacity")
		appends := rapid.IntRange(0, 500).Draw(t, "appends")

		log := secevent.NewLog(capacity, nil, nil)
		for i := 0; i < appends; i++ {
			log.Record(secevent.Entry{
				Type:    secevent.TypeLoginFailed,
				Details: fmt.Sprintf("%d", i),
			})
		}

		expected := appends
		if expected > capacity {
			expected = capacity
		}

		if log.Len() != expected {
			t.Fatalf("size %d, want %d", log.Len(), expected)
		}

		recent := log.Recent(0)
		if len(recent) != expected {
			t.Fatalf("recent length %d, want %d", len(recent), expected)
		}
		if expected > 0 {
			want := fmt.Sprintf("%d", appends-1)
			if recent[len(recent)-1].Details != want {
				t.Fatalf("newest entry %q, want %q", recent[len(recent)-1].Details, want)
			}
		}
	})
}
