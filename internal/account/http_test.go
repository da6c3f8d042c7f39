// Copyright (c) 2026 Solara. All rights reserved.
// Author: dev@solara.app

package account_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solara-app/solara/internal/account"
	"github.com/solara-app/solara/internal/auth"
	"github.com/solara-app/solara/internal/platform/ctxutil"
	"github.com/solara-app/solara/internal/platform/sec"
)

// newTestHandler mounts the account routes behind a stub identity for userID,
// the way RequireAuth presents an authenticated caller.
func newTestHandler(userID string, sessions *stubSessionRepo) http.Handler {
	users := &stubUserRepo{users: map[string]*auth.User{
		userID: {ID: userID, Email: "a@b.com", DisplayName: "Alice"},
	}}
	service := account.NewService(users, sessions, nil)
	routes := account.NewHandler(service).Routes()

	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := &sec.AuthClaims{UserID: userID, Role: string(sec.RoleMember)}
		ctx := ctxutil.WithAuthUser(request.Context(), claims)
		routes.ServeHTTP(writer, request.WithContext(ctx))
	})
}

/*
TestHandler_RevokeSession_InvalidID verifies that a malformed session ID in
the path is rejected as a validation failure before reaching the service.
*/
func TestHandler_RevokeSession_InvalidID(t *testing.T) {
	handler := newTestHandler("u1", &stubSessionRepo{})

	request := httptest.NewRequest(http.MethodDelete, "/me/sessions/not-a-uuid", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var envelope struct {
		Details []struct {
			Field string `json:"field"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	require.Len(t, envelope.Details, 1)
	assert.Equal(t, "id", envelope.Details[0].Field)
}

/*
TestHandler_RevokeSession verifies revocation of an owned session by its ID.
*/
func TestHandler_RevokeSession(t *testing.T) {
	sessionID := "0198c5f2-0000-7000-8000-000000000001"
	sessions := &stubSessionRepo{sessions: []*auth.Session{
		{ID: sessionID, UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	handler := newTestHandler("u1", sessions)

	request := httptest.NewRequest(http.MethodDelete, "/me/sessions/"+sessionID, nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.True(t, sessions.sessions[0].IsRevoked)
}
