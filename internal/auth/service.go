// Copyright (c) 2026 Solara. All rights reserved.
// Author: dev@solara.app

/*
Package auth implements the core identity and access management system.

It handles everything from user signup and secure password hashing to session
lifecycle management via JWT access tokens and rotated refresh tokens.

Architecture:

  - Service: Orchestrates business logic (Signup, Login, Revocation).
  - Repository: Abstracted interfaces for Postgres (Users, Sessions) and
    Redis (volatile tokens, revocation denylist).
  - Security: Leverages bcrypt hashing and HS256-signed JWTs.

Every notable outcome (successful login, failed login, signup conflict,
revocation) is recorded to the in-memory security event log.
*/
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/solara-app/solara/internal/platform/apperr"
	"github.com/solara-app/solara/internal/platform/metrics"
	"github.com/solara-app/solara/internal/platform/sec"
	"github.com/solara-app/solara/internal/secevent"
)

// # Contracts & Types

// TokenProvider defines the contract for generating and parsing access tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - role: The role of the account.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string and its jti, or an err if signing fails.
	GenerateAccessToken(userID, role string, timeToLive time.Duration) (string, string, error)

	// ParseToken validates the signature, issuer, and expiry of a JWT string.
	ParseToken(tokenString string) (*sec.AuthClaims, error)
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, signup,
// or login logic must be reviewed by the security team.
type Service struct {
	userRepository              UserRepository
	sessionRepository           SessionRepository
	resetTokenRepository        ResetTokenRepository
	verificationTokenRepository VerificationTokenRepository
	revokedTokenRepository      RevokedTokenRepository
	tokenProvider               TokenProvider
	securityLog                 *secevent.Log
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	resetRepo ResetTokenRepository,
	verifyRepo VerificationTokenRepository,
	revokedRepo RevokedTokenRepository,
	tokenProv TokenProvider,
	securityLog *secevent.Log,
) *Service {
	return &Service{
		userRepository:              userRepo,
		sessionRepository:           sessionRepo,
		resetTokenRepository:        resetRepo,
		verificationTokenRepository: verifyRepo,
		revokedTokenRepository:      revokedRepo,
		tokenProvider:               tokenProv,
		securityLog:                 securityLog,
	}
}

// # Signup Flow

// SignupInput holds the data required to enroll a new member.
type SignupInput struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

/*
Signup validates, hashes, and persists a brand new user account.

Description: Deep-enrollment of a new member, handling password hashing and
initial verification token state.

The duplicate-email pre-check here is a fast path only; the database's unique
index on LOWER(email) is the source of truth, so two concurrent signups racing
past the pre-check still resolve to exactly one created account.

Parameters:
  - context: context.Context
  - input: SignupInput

Returns:
  - *User: Created entity
  - err: Conflict (if identity exists) or storage errors
*/
func (service *Service) Signup(context context.Context, input SignupInput) (*User, error) {

	// Fast-path uniqueness check. Return a client-safe Conflict err.
	_, err := service.userRepository.FindByEmail(context, input.Email)
	if err == nil {
		service.recordSignupConflict(input)
		return nil, apperr.Conflict(ConflictUserExists)
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during signup spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           newID(),
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Role:         sec.RoleMember,
		IsVerified:   false,
	}

	// Persist the user. The unique index closes the pre-check race window.
	if err := service.userRepository.Create(context, user); err != nil {
		if appErr := apperr.As(err); appErr != nil && appErr.HTTPStatus == 409 {
			service.recordSignupConflict(input)
			return nil, err
		}
		return nil, fmt.Errorf("auth_service_signup_failed: %w", err)
	}

	service.securityLog.Record(secevent.Entry{
		Type:      secevent.TypeSignup,
		Severity:  secevent.SeverityLow,
		UserID:    user.ID,
		UserAgent: input.UserAgent,
		IPAddress: input.IPAddress,
	})

	// Generate and store a verification token in Redis as an async-ready side effect
	token, err := sec.GenerateSecureToken(VerificationTokenLength)
	if err == nil {
		_ = service.verificationTokenRepository.Set(context, token, user.ID, VerificationTokenTTL)
		// TODO: Trigger email service with the verification link
	}

	return user, nil
}

func (service *Service) recordSignupConflict(input SignupInput) {
	service.securityLog.Record(secevent.Entry{
		Type:      secevent.TypeSignupConflict,
		Severity:  secevent.SeverityMedium,
		UserAgent: input.UserAgent,
		IPAddress: input.IPAddress,
		Details:   "duplicate email on signup",
	})
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login validates user credentials and issues security tokens.

Description: Verifies identity, performs constant-time password comparison,
and initializes a new session with rotated security tokens. The rejection
message never distinguishes an unknown email from a wrong password, to
prevent account enumeration.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session identifiers
  - err: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {

	user, err := service.userRepository.FindByEmail(context, input.Email)

	// If (err != nil) the user does not exist. Generic message to prevent enumeration.
	if err != nil {
		service.recordLoginFailure(input, "unknown email")
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Verify password hash using constant-time comparison in bcrypt to prevent timing attacks
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		service.recordLoginFailure(input, "wrong password")
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Generate short-lived Access Token
	accessToken, _, err := service.tokenProvider.GenerateAccessToken(user.ID, string(user.Role), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	// Generate long-lived Refresh Token
	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	// Create and persist the tracking session
	expiresAt := time.Now().Add(RefreshTokenTTL)
	session := &Session{
		ID:        newID(),
		UserID:    user.ID,
		TokenHash: sec.HashToken(refreshToken),
		UserAgent: input.UserAgent,
		IPAddress: input.IPAddress,
		ExpiresAt: expiresAt,
		IsRevoked: false,
	}

	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	service.securityLog.Record(secevent.Entry{
		Type:      secevent.TypeLoginSuccess,
		Severity:  secevent.SeverityLow,
		UserID:    user.ID,
		UserAgent: input.UserAgent,
		IPAddress: input.IPAddress,
	})

	return &LoginSession{
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  time.Now().Add(AccessTokenTTL),
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}

func (service *Service) recordLoginFailure(input LoginInput, reason string) {
	metrics.AuthFailuresTotal.WithLabelValues("invalid_credentials").Inc()
	service.securityLog.Record(secevent.Entry{
		Type:      secevent.TypeLoginFailed,
		Severity:  secevent.SeverityMedium,
		UserAgent: input.UserAgent,
		IPAddress: input.IPAddress,
		Details:   reason,
	})
}

/*
Logout permanently revokes the user's active session.

Description: Revokes the tracked refresh session and places the current
access token's jti on the denylist so it fails verification immediately,
not just at its natural expiry.

Parameters:
  - context: context.Context
  - refreshToken: string
  - claims: *sec.AuthClaims (nil when no access token accompanied the request)

Returns:
  - err: Revocation failures
*/
func (service *Service) Logout(context context.Context, refreshToken string, claims *sec.AuthClaims) error {

	// Denylist the access token for its remaining lifetime
	if claims != nil && claims.ExpiresAt != nil {
		remaining := time.Until(claims.ExpiresAt.Time)
		if err := service.revokedTokenRepository.Revoke(context, claims.ID, remaining); err != nil {
			return fmt.Errorf("auth_service_logout_denylist_failed: %w", err)
		}

		service.securityLog.Record(secevent.Entry{
			Type:     secevent.TypeTokenRevoked,
			Severity: secevent.SeverityLow,
			UserID:   claims.UserID,
		})
	}

	tokenHash := sec.HashToken(refreshToken)
	session, err := service.sessionRepository.FindByTokenHash(context, tokenHash)

	// If (err != nil) session is already gone or invalid, we consider logout successful (idempotent operation).
	if err != nil {
		return nil
	}

	if err := service.sessionRepository.Revoke(context, session.ID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	service.securityLog.Record(secevent.Entry{
		Type:     secevent.TypeLogout,
		Severity: secevent.SeverityLow,
		UserID:   session.UserID,
	})

	return nil
}

// # Token Verification

/*
VerifyToken validates an access token string end to end.

Description: Checks the JWT signature, issuer, and expiry, then consults the
revocation denylist. A structurally valid token whose jti has been revoked is
rejected exactly like a forged one.

Parameters:
  - context: context.Context
  - tokenString: string

Returns:
  - *sec.AuthClaims: Verified claims
  - err: Unauthorized for any invalid, expired, or revoked token
*/
func (service *Service) VerifyToken(context context.Context, tokenString string) (*sec.AuthClaims, error) {

	claims, err := service.tokenProvider.ParseToken(tokenString)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	revoked, err := service.revokedTokenRepository.IsRevoked(context, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_verify_denylist_failed: %w", err)
	}
	if revoked {
		return nil, apperr.Unauthorized("Token has been revoked")
	}

	return claims, nil
}

// # Session Management

/*
RefreshSession implements the Refresh Token Rotation mechanism.

Description: Verifies the existing refresh token, revokes it to prevent reuse
(replay attack mitigation), and issues a fresh pair of rotated tokens.

Parameters:
  - context: context.Context
  - refreshToken: string
  - userAgent: string
  - ipAddress: string

Returns:
  - *LoginSession: New session credentials
  - err: Unauthorized or storage failures
*/
func (service *Service) RefreshSession(context context.Context, refreshToken, userAgent, ipAddress string) (*LoginSession, error) {

	// Hash the incoming refresh token to look it up
	tokenHash := sec.HashToken(refreshToken)
	session, err := service.sessionRepository.FindByTokenHash(context, tokenHash)

	// If (err != nil) the token is either expired, already revoked, or completely invalid.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// Rotation: Revoke the old session to prevent replay attacks
	if err := service.sessionRepository.Revoke(context, session.ID); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}

	// Fetch the user associated with this session
	user, err := service.userRepository.FindByID(context, session.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("User not found or suspended")
	}

	// Generate a fresh Access Token
	accessToken, _, err := service.tokenProvider.GenerateAccessToken(user.ID, string(user.Role), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_access_token_failed: %w", err)
	}

	// Generate a fresh Refresh Token for the rotation
	newRefreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_secure_token_failed: %w", err)
	}

	// Persist the new session
	expiresAt := time.Now().Add(RefreshTokenTTL)
	newSession := &Session{
		ID:        newID(),
		UserID:    user.ID,
		TokenHash: sec.HashToken(newRefreshToken),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: expiresAt,
		IsRevoked: false,
	}

	if err := service.sessionRepository.Create(context, newSession); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_session_creation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  time.Now().Add(AccessTokenTTL),
		RefreshToken:          newRefreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}

// # Password Recovery

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Generates a secure token and saves it to Redis.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - string: Discovery token
  - err: Generation errors
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) (string, error) {
	// Look up user.
	// NOTE: We don't return NOT_FOUND if the email doesn't exist to prevent user enumeration.
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return "", nil
	}

	// Generate reset token
	token, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return "", fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	// Save to Redis
	if err := service.resetTokenRepository.Set(context, token, user.ID, ResetTokenTTL); err != nil {
		return "", fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	service.securityLog.Record(secevent.Entry{
		Type:     secevent.TypePasswordResetRequested,
		Severity: secevent.SeverityLow,
		UserID:   user.ID,
	})

	return token, nil
}

/*
ResetPassword completes the forgot-password flow.

Description: Verifies the token, hashes the new password, updates the DB,
and revokes all active sessions for security cleanup.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - err: Validation or update failures
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {

	// Retrieve the userID associated with the reset token from Redis
	userID, err := service.resetTokenRepository.Get(context, token)
	if err != nil {
		return err
	}

	// Hash the new password securely
	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	// Update the user's password in persistent storage
	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	// Security Cleanup: Revoke EVERY active session for this user
	_ = service.sessionRepository.RevokeAll(context, userID)

	// Delete the used token from Redis
	_ = service.resetTokenRepository.Delete(context, token)

	service.securityLog.Record(secevent.Entry{
		Type:     secevent.TypePasswordChanged,
		Severity: secevent.SeverityMedium,
		UserID:   userID,
		Details:  "via reset token",
	})

	return nil
}

/*
ChangePassword allows an authenticated user to update their credentials.

Description: Verifies the current password and then rotates all OTHER refresh
sessions to ensure high security across devices.

Parameters:
  - context: context.Context
  - userID: string
  - currentPassword: string
  - newPassword: string
  - currentRefreshToken: string

Returns:
  - err: Unauthorized or storage failures
*/
func (service *Service) ChangePassword(context context.Context, userID, currentPassword, newPassword, currentRefreshToken string) error {

	// Fetch user by ID
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	// Verify the current password before allowing change
	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	// Hash the brand new password
	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	// Update the database with the new hash
	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	// Security Side Effect: Revoke all other sessions to force re-login on other devices
	tokenHash := sec.HashToken(currentRefreshToken)
	session, err := service.sessionRepository.FindByTokenHash(context, tokenHash)
	if err == nil {
		_ = service.sessionRepository.RevokeOthers(context, userID, session.ID)
	}

	service.securityLog.Record(secevent.Entry{
		Type:     secevent.TypePasswordChanged,
		Severity: secevent.SeverityMedium,
		UserID:   userID,
	})

	return nil
}

/*
VerifyEmail confirms a user's email address using a secure token.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - err: Database or resolution errors
*/
func (service *Service) VerifyEmail(context context.Context, token string) error {

	// Retrieve the user ID associated with the verification token from Redis
	userID, err := service.verificationTokenRepository.Get(context, token)
	if err != nil {
		return err
	}

	// Update the user's status to verified in persistent storage
	if err := service.userRepository.MarkVerified(context, userID); err != nil {
		return fmt.Errorf("auth_service_verify_email_failed: %w", err)
	}

	// Cleanup the used verification token from Redis
	_ = service.verificationTokenRepository.Delete(context, token)

	service.securityLog.Record(secevent.Entry{
		Type:     secevent.TypeEmailVerified,
		Severity: secevent.SeverityLow,
		UserID:   userID,
	})

	return nil
}

// newID returns a time-sortable UUIDv7 string, falling back to v4 when the
// clock source misbehaves.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
