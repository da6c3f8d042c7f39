// Copyright (c) 2026 Solara. All rights reserved.
// Author: dev@solara.app

package auth_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solara-app/solara/internal/auth"
	"github.com/solara-app/solara/internal/platform/apperr"
	"github.com/solara-app/solara/internal/platform/sec"
	"github.com/solara-app/solara/internal/secevent"
)

// # In-Memory Fakes

type fakeUserRepo struct {
	users map[string]*auth.User // keyed by lowercase email
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*auth.User)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*auth.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

// FindByEmail is deliberately exact-case while Create folds case, so tests
// can drive a pre-check miss into the store-level conflict path.
func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperr.NotFound("User not found with this email")
}

func (r *fakeUserRepo) Create(_ context.Context, user *auth.User) error {
	key := strings.ToLower(user.Email)
	if _, ok := r.users[key]; ok {
		return apperr.Conflict(auth.ConflictUserExists)
	}
	user.CreatedAt = time.Now()
	r.users[key] = user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *auth.User) error {
	r.users[strings.ToLower(user.Email)] = user
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, userID, newHash string) error {
	for _, u := range r.users {
		if u.ID == userID {
			u.PasswordHash = newHash
			return nil
		}
	}
	return apperr.NotFound("User not found")
}

func (r *fakeUserRepo) SoftDelete(_ context.Context, id string) error {
	for key, u := range r.users {
		if u.ID == id {
			delete(r.users, key)
			return nil
		}
	}
	return nil
}

func (r *fakeUserRepo) MarkVerified(_ context.Context, userID string) error {
	for _, u := range r.users {
		if u.ID == userID {
			u.IsVerified = true
			return nil
		}
	}
	return apperr.NotFound("User not found")
}

type fakeSessionRepo struct {
	sessions map[string]*auth.Session // keyed by ID
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*auth.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *auth.Session) error {
	r.sessions[session.ID] = session
	return nil
}

func (r *fakeSessionRepo) FindByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	for _, s := range r.sessions {
		if s.TokenHash == tokenHash && !s.IsRevoked && s.ExpiresAt.After(time.Now()) {
			return s, nil
		}
	}
	return nil, apperr.NotFound("Session not found or expired")
}

func (r *fakeSessionRepo) ListByUser(_ context.Context, userID string) ([]auth.Session, error) {
	var out []auth.Session
	for _, s := range r.sessions {
		if s.UserID == userID && !s.IsRevoked {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) Revoke(_ context.Context, sessionID string) error {
	if s, ok := r.sessions[sessionID]; ok {
		s.IsRevoked = true
	}
	return nil
}

func (r *fakeSessionRepo) RevokeAll(_ context.Context, userID string) error {
	for _, s := range r.sessions {
		if s.UserID == userID {
			s.IsRevoked = true
		}
	}
	return nil
}

func (r *fakeSessionRepo) RevokeOthers(_ context.Context, userID, currentSessionID string) error {
	for _, s := range r.sessions {
		if s.UserID == userID && s.ID != currentSessionID {
			s.IsRevoked = true
		}
	}
	return nil
}

func (r *fakeSessionRepo) DeleteExpired(_ context.Context) error { return nil }

type fakeTokenKV struct {
	values map[string]string
}

func newFakeTokenKV() *fakeTokenKV {
	return &fakeTokenKV{values: make(map[string]string)}
}

func (r *fakeTokenKV) Set(_ context.Context, token, userID string, _ time.Duration) error {
	r.values[token] = userID
	return nil
}

func (r *fakeTokenKV) Get(_ context.Context, token string) (string, error) {
	if userID, ok := r.values[token]; ok {
		return userID, nil
	}
	return "", apperr.NotFound("token is invalid or expired")
}

func (r *fakeTokenKV) Delete(_ context.Context, token string) error {
	delete(r.values, token)
	return nil
}

type fakeRevokedRepo struct {
	revoked map[string]bool
}

func newFakeRevokedRepo() *fakeRevokedRepo {
	return &fakeRevokedRepo{revoked: make(map[string]bool)}
}

func (r *fakeRevokedRepo) Revoke(_ context.Context, jti string, _ time.Duration) error {
	r.revoked[jti] = true
	return nil
}

func (r *fakeRevokedRepo) IsRevoked(_ context.Context, jti string) (bool, error) {
	return r.revoked[jti], nil
}

// # Harness

type serviceHarness struct {
	service  *auth.Service
	users    *fakeUserRepo
	sessions *fakeSessionRepo
	resets   *fakeTokenKV
	verifies *fakeTokenKV
	revoked  *fakeRevokedRepo
	events   *secevent.Log
	tokens   *sec.TokenService
}

func newServiceHarness(t *testing.T) *serviceHarness {
	t.Helper()

	tokens, err := sec.NewTokenService([]byte("test-secret-at-least-32-bytes-long!"), "solara.app")
	require.NoError(t, err)

	h := &serviceHarness{
		users:    newFakeUserRepo(),
		sessions: newFakeSessionRepo(),
		resets:   newFakeTokenKV(),
		verifies: newFakeTokenKV(),
		revoked:  newFakeRevokedRepo(),
		events:   secevent.NewLog(100, nil, nil),
		tokens:   tokens,
	}

	h.service = auth.NewService(h.users, h.sessions, h.resets, h.verifies, h.revoked, tokens, h.events)
	return h
}

func signup(t *testing.T, h *serviceHarness, email, password string) *auth.User {
	t.Helper()
	user, err := h.service.Signup(context.Background(), auth.SignupInput{
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return user
}

// # Signup

/*
TestService_Signup verifies account creation and password handling.
*/
func TestService_Signup(t *testing.T) {
	h := newServiceHarness(t)

	user := signup(t, h, "a@b.com", "12345678")

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "a@b.com", user.Email)
	assert.Equal(t, sec.RoleMember, user.Role)

	// The stored hash must not be the plaintext, and must verify against it.
	assert.NotEqual(t, "12345678", user.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("12345678", user.PasswordHash))

	// Signup is a recorded security event.
	recent := h.events.Recent(10)
	require.NotEmpty(t, recent)
	assert.Equal(t, secevent.TypeSignup, recent[len(recent)-1].Type)
}

/*
TestService_Signup_Duplicate verifies the conflict outcome: a second signup
with the same email returns 409 and does not create a second record.
*/
func TestService_Signup_Duplicate(t *testing.T) {
	h := newServiceHarness(t)

	signup(t, h, "a@b.com", "12345678")

	_, err := h.service.Signup(context.Background(), auth.SignupInput{
		Email:    "a@b.com",
		Password: "12345678",
	})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, 409, ae.HTTPStatus)
	assert.Equal(t, "User already exists", ae.Message)

	assert.Len(t, h.users.users, 1)
}

/*
TestService_Signup_DuplicateRace verifies the store-level unique constraint
is the source of truth: even when the pre-check misses (simulated by pushing
the user directly into the repo), Create's conflict surfaces as 409.
*/
func TestService_Signup_DuplicateRace(t *testing.T) {
	h := newServiceHarness(t)

	// Seed with different casing: the exact-case pre-check misses, so the
	// conflict must come from Create's case-folded unique constraint.
	h.users.users["a@b.com"] = &auth.User{ID: "existing", Email: "a@b.com"}

	_, err := h.service.Signup(context.Background(), auth.SignupInput{
		Email:    "A@B.com",
		Password: "12345678",
	})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, 409, ae.HTTPStatus)
}

// # Login

/*
TestService_Login covers the credential verification outcomes. The rejection
message is identical for unknown email and wrong password to prevent account
enumeration.
*/
func TestService_Login(t *testing.T) {
	h := newServiceHarness(t)
	signup(t, h, "a@b.com", "12345678")

	t.Run("success", func(t *testing.T) {
		session, err := h.service.Login(context.Background(), auth.LoginInput{
			Email:    "a@b.com",
			Password: "12345678",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, session.AccessToken)
		assert.NotEmpty(t, session.RefreshToken)
		assert.Equal(t, "a@b.com", session.User.Email)
	})

	t.Run("wrong_password", func(t *testing.T) {
		_, err := h.service.Login(context.Background(), auth.LoginInput{
			Email:    "a@b.com",
			Password: "wrong-password",
		})
		require.Error(t, err)
		assert.Equal(t, "Invalid login credentials", apperr.As(err).Message)
	})

	t.Run("unknown_email", func(t *testing.T) {
		_, err := h.service.Login(context.Background(), auth.LoginInput{
			Email:    "nobody@b.com",
			Password: "12345678",
		})
		require.Error(t, err)
		assert.Equal(t, "Invalid login credentials", apperr.As(err).Message)
	})
}

// # Verification & Revocation

/*
TestService_VerifyToken_RoundTrip checks that a freshly issued access token
verifies, and that verification fails immediately after logout revokes it.
*/
func TestService_VerifyToken_RoundTrip(t *testing.T) {
	h := newServiceHarness(t)
	signup(t, h, "a@b.com", "12345678")

	session, err := h.service.Login(context.Background(), auth.LoginInput{
		Email:    "a@b.com",
		Password: "12345678",
	})
	require.NoError(t, err)

	claims, err := h.service.VerifyToken(context.Background(), session.AccessToken)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.UserID)

	// Logout denylists the jti; the same token must now fail verification.
	require.NoError(t, h.service.Logout(context.Background(), session.RefreshToken, claims))

	_, err = h.service.VerifyToken(context.Background(), session.AccessToken)
	require.Error(t, err)
	assert.Equal(t, 401, apperr.As(err).HTTPStatus)
}

/*
TestService_VerifyToken_Garbage rejects malformed token strings.
*/
func TestService_VerifyToken_Garbage(t *testing.T) {
	h := newServiceHarness(t)

	_, err := h.service.VerifyToken(context.Background(), "not-a-jwt")
	require.Error(t, err)
	assert.Equal(t, 401, apperr.As(err).HTTPStatus)
}

// # Session rotation

/*
TestService_RefreshSession verifies refresh token rotation: the old token is
revoked, the new one works.
*/
func TestService_RefreshSession(t *testing.T) {
	h := newServiceHarness(t)
	signup(t, h, "a@b.com", "12345678")

	session, err := h.service.Login(context.Background(), auth.LoginInput{
		Email:    "a@b.com",
		Password: "12345678",
	})
	require.NoError(t, err)

	rotated, err := h.service.RefreshSession(context.Background(), session.RefreshToken, "ua", "1.2.3.4")
	require.NoError(t, err)
	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)

	// Replaying the old refresh token must fail.
	_, err = h.service.RefreshSession(context.Background(), session.RefreshToken, "ua", "1.2.3.4")
	require.Error(t, err)
	assert.Equal(t, 401, apperr.As(err).HTTPStatus)

	// The rotated token must still work.
	_, err = h.service.RefreshSession(context.Background(), rotated.RefreshToken, "ua", "1.2.3.4")
	require.NoError(t, err)
}

// # Password recovery

/*
TestService_PasswordReset walks the full forgot-password flow and checks the
session cleanup side effect.
*/
func TestService_PasswordReset(t *testing.T) {
	h := newServiceHarness(t)
	user := signup(t, h, "a@b.com", "12345678")

	session, err := h.service.Login(context.Background(), auth.LoginInput{
		Email:    "a@b.com",
		Password: "12345678",
	})
	require.NoError(t, err)

	token, err := h.service.RequestPasswordReset(context.Background(), "a@b.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, h.service.ResetPassword(context.Background(), token, "new-password-1"))

	// Old password no longer works, new one does.
	_, err = h.service.Login(context.Background(), auth.LoginInput{Email: "a@b.com", Password: "12345678"})
	require.Error(t, err)
	_, err = h.service.Login(context.Background(), auth.LoginInput{Email: "a@b.com", Password: "new-password-1"})
	require.NoError(t, err)

	// Every pre-reset session is revoked.
	_, err = h.service.RefreshSession(context.Background(), session.RefreshToken, "ua", "1.2.3.4")
	require.Error(t, err)

	// The reset token is single-use.
	require.Error(t, h.service.ResetPassword(context.Background(), token, "another-pass-2"))

	_ = user
}

/*
TestService_RequestPasswordReset_UnknownEmail must not reveal whether the
email exists.
*/
func TestService_RequestPasswordReset_UnknownEmail(t *testing.T) {
	h := newServiceHarness(t)

	token, err := h.service.RequestPasswordReset(context.Background(), "nobody@b.com")
	require.NoError(t, err)
	assert.Empty(t, token)
}
