// Copyright (c) 2026 Solara. All rights reserved.
// Author: dev@solara.app

/*
Package account implements profile and device-session management for
authenticated users.

It builds on the auth domain's repositories: the account service reads and
mutates the same user and session records, but through the lens of an
already-authenticated member managing their own data.
*/
package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/solara-app/solara/internal/auth"
	"github.com/solara-app/solara/internal/platform/apperr"
)

// # Service Layer

// Service orchestrates business logic for user accounts and their sessions.
type Service struct {
	userRepository    auth.UserRepository
	sessionRepository auth.SessionRepository
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its repository dependencies.
func NewService(
	userRepo auth.UserRepository,
	sessionRepo auth.SessionRepository,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		userRepository:    userRepo,
		sessionRepository: sessionRepo,
		logger:            logger,
	}
}

// # Profile Management

/*
GetProfile retrieves the full private identity of a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The hydrated user profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*auth.User, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}
	return user, nil
}

// UpdateProfileInput defines the mutable subset of user profile fields.
type UpdateProfileInput struct {
	DisplayName *string
}

/*
UpdateProfile applies a partial set of changes to a user's account metadata.

Description: Fetches the existing user state, overrides provided fields, and
synchronizes the change to persistent storage.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *auth.User: The updated user profile
  - error: Update or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*auth.User, error) {

	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_lookup_failed: %w", err)
	}

	// Apply delta updates
	if input.DisplayName != nil {
		user.DisplayName = *input.DisplayName
	}

	// Persist changes
	if err := service.userRepository.Update(context, user); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.Info("user_profile_updated", slog.String("user_id", userID))

	return user, nil
}

/*
DeleteAccount performs an idempotent soft-deletion of a user account.

Description: Flags the account as deleted and immediately terminates all
active security sessions to force a global sign-out.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Execution failures
*/
func (service *Service) DeleteAccount(context context.Context, userID string) error {

	if err := service.userRepository.SoftDelete(context, userID); err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	// Force global revocation of sessions for the deleted account
	_ = service.sessionRepository.RevokeAll(context, userID)

	service.logger.Warn("user_account_deleted", slog.String("user_id", userID))

	return nil
}

// # Session Security

/*
ListSessions provides a list of all active device sessions for the user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []auth.Session: List of active devices
  - error: Retrieval failures
*/
func (service *Service) ListSessions(context context.Context, userID string) ([]auth.Session, error) {
	sessions, err := service.sessionRepository.ListByUser(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_list_sessions_failed: %w", err)
	}
	return sessions, nil
}

/*
RevokeSession terminates a specific user session by its ID.

Description: Ownership is verified before revocation so users cannot revoke
sessions belonging to other accounts.

Parameters:
  - context: context.Context
  - userID: string
  - sessionID: string

Returns:
  - error: NotFound or revocation failures
*/
func (service *Service) RevokeSession(context context.Context, userID, sessionID string) error {

	sessions, err := service.sessionRepository.ListByUser(context, userID)
	if err != nil {
		return fmt.Errorf("account_service_revoke_lookup_failed: %w", err)
	}

	for _, session := range sessions {
		if session.ID == sessionID {
			if err := service.sessionRepository.Revoke(context, sessionID); err != nil {
				return fmt.Errorf("account_service_revoke_session_failed: %w", err)
			}

			service.logger.Info("user_session_revoked",
				slog.String("user_id", userID),
				slog.String("session_id", sessionID),
			)
			return nil
		}
	}

	return apperr.NotFound("Session not found")
}

/*
RevokeAllSessions terminates every active session for the user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Revocation failures
*/
func (service *Service) RevokeAllSessions(context context.Context, userID string) error {
	if err := service.sessionRepository.RevokeAll(context, userID); err != nil {
		return fmt.Errorf("account_service_revoke_all_failed: %w", err)
	}

	service.logger.Info("user_all_sessions_revoked", slog.String("user_id", userID))

	return nil
}
