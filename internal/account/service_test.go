// Copyright (c) 2026 Solara. All rights reserved.
// Author: dev@solara.app

package account_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solara-app/solara/internal/account"
	"github.com/solara-app/solara/internal/auth"
	"github.com/solara-app/solara/internal/platform/apperr"
)

type stubUserRepo struct {
	users map[string]*auth.User
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*auth.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("User not found")
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	return nil, apperr.NotFound("User not found with this email")
}

func (r *stubUserRepo) Create(_ context.Context, user *auth.User) error { return nil }

func (r *stubUserRepo) Update(_ context.Context, user *auth.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, userID, newHash string) error { return nil }

func (r *stubUserRepo) SoftDelete(_ context.Context, id string) error {
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) MarkVerified(_ context.Context, userID string) error { return nil }

type stubSessionRepo struct {
	sessions []*auth.Session
}

func (r *stubSessionRepo) Create(_ context.Context, s *auth.Session) error {
	r.sessions = append(r.sessions, s)
	return nil
}

func (r *stubSessionRepo) FindByTokenHash(_ context.Context, hash string) (*auth.Session, error) {
	return nil, apperr.NotFound("Session not found or expired")
}

func (r *stubSessionRepo) ListByUser(_ context.Context, userID string) ([]auth.Session, error) {
	var out []auth.Session
	for _, s := range r.sessions {
		if s.UserID == userID && !s.IsRevoked {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSessionRepo) Revoke(_ context.Context, sessionID string) error {
	for _, s := range r.sessions {
		if s.ID == sessionID {
			s.IsRevoked = true
		}
	}
	return nil
}

func (r *stubSessionRepo) RevokeAll(_ context.Context, userID string) error {
	for _, s := range r.sessions {
		if s.UserID == userID {
			s.IsRevoked = true
		}
	}
	return nil
}

func (r *stubSessionRepo) RevokeOthers(_ context.Context, userID, keep string) error { return nil }

func (r *stubSessionRepo) DeleteExpired(_ context.Context) error { return nil }

func newHarness() (*account.Service, *stubUserRepo, *stubSessionRepo) {
	users := &stubUserRepo{users: map[string]*auth.User{
		"u1": {ID: "u1", Email: "a@b.com", DisplayName: "Alice"},
	}}
	sessions := &stubSessionRepo{sessions: []*auth.Session{
		{ID: "s1", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)},
		{ID: "s2", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)},
		{ID: "s3", UserID: "u2", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	return account.NewService(users, sessions, nil), users, sessions
}

/*
TestService_UpdateProfile applies only the provided fields.
*/
func TestService_UpdateProfile(t *testing.T) {
	service, _, _ := newHarness()

	name := "Alice B"
	user, err := service.UpdateProfile(context.Background(), "u1", account.UpdateProfileInput{
		DisplayName: &name,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", user.DisplayName)

	// A nil field leaves the current value untouched.
	user, err = service.UpdateProfile(context.Background(), "u1", account.UpdateProfileInput{})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", user.DisplayName)
}

/*
TestService_RevokeSession enforces session ownership.
*/
func TestService_RevokeSession(t *testing.T) {
	service, _, sessions := newHarness()

	// Owned session revokes fine.
	require.NoError(t, service.RevokeSession(context.Background(), "u1", "s1"))
	assert.True(t, sessions.sessions[0].IsRevoked)

	// Another user's session is invisible to u1.
	err := service.RevokeSession(context.Background(), "u1", "s3")
	require.Error(t, err)
	assert.Equal(t, 404, apperr.As(err).HTTPStatus)
	assert.False(t, sessions.sessions[2].IsRevoked)
}

/*
TestService_DeleteAccount revokes every session as a side effect.
*/
func TestService_DeleteAccount(t *testing.T) {
	service, users, sessions := newHarness()

	require.NoError(t, service.DeleteAccount(context.Background(), "u1"))

	_, ok := users.users["u1"]
	assert.False(t, ok)
	assert.True(t, sessions.sessions[0].IsRevoked)
	assert.True(t, sessions.sessions[1].IsRevoked)
}
