// Copyright (c) 2026 Solara. All rights reserved.
// Author: dev@solara.app

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/solara-app/solara/internal/platform/constants"
	"github.com/solara-app/solara/internal/platform/ctxutil"
	"github.com/solara-app/solara/internal/platform/metrics"
	"github.com/solara-app/solara/internal/platform/sec"
	"github.com/solara-app/solara/internal/secevent"
)

// TokenVerifier checks a raw access token and returns its claims.
//
// Verification includes the revocation denylist, so the auth service (which
// owns the Redis-backed revoked-token repository) is the implementation, not
// the bare sec.TokenService.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, tokenString string) (*sec.AuthClaims, error)
}

// # Authentication

// Authenticate extracts and validates the access token, populating the
// request context with user claims on success.
//
// Token sources, in order of precedence:
//
//  1. Authorization: Bearer <token> header (API clients).
//  2. The access_token cookie (browser page loads).
//
// Anonymous requests pass through untouched. Invalid tokens are recorded as
// security events and then handled by caller kind: API callers (Bearer
// header, or any /api path) get a hard 401, while a browser page load with
// a stale or revoked access_token cookie is downgraded to anonymous with
// the cookie expired, so the route guard can redirect instead of rendering
// a JSON error. A password change revokes other devices' tokens while their
// cookies persist, so that path is routine.
func Authenticate(verifier TokenVerifier, securityLog *secevent.Log) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			tokenString, fromCookie := extractToken(request)
			if tokenString == "" {
				// Anonymous request: proceed without claims in context
				next.ServeHTTP(writer, request)
				return
			}

			claims, err := verifier.VerifyToken(request.Context(), tokenString)
			if err != nil {
				metrics.AuthFailuresTotal.WithLabelValues("invalid_token").Inc()

				securityLog.Record(secevent.Entry{
					Type:      secevent.TypeInvalidToken,
					Severity:  secevent.SeverityMedium,
					IPAddress: RealIP(request),
					UserAgent: request.UserAgent(),
					Details:   request.Method + " " + request.URL.Path,
				})

				if fromCookie && !isAPIRoute(request.URL.Path) {
					clearAccessCookie(writer)
					next.ServeHTTP(writer, request)
					return
				}

				writeError(writer, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
				return
			}

			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// isAPIRoute reports whether the path belongs to the JSON API surface.
func isAPIRoute(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

// clearAccessCookie expires the access_token cookie. Mirror of the cookie
// written at login: same path and attributes, MaxAge -1.
func clearAccessCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireAuth rejects requests that carry no valid authenticated user.
// Must be mounted after Authenticate.
func RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			if ctxutil.GetAuthUser(request.Context()) == nil {
				writeError(writer, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// RequireRole enforces a minimum role on top of RequireAuth.
func RequireRole(minimum sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			claims := ctxutil.GetAuthUser(request.Context())
			if claims == nil {
				writeError(writer, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}

			if !sec.UserRole(claims.Role).AtLeast(minimum) {
				writeError(writer, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// extractToken pulls the raw access token from the request, header first.
// The second return reports whether the token came from the cookie rather
// than the Authorization header.
func extractToken(request *http.Request) (string, bool) {

	authHeader := request.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer "), false
	}

	if cookie, err := request.Cookie(constants.AccessTokenCookieName); err == nil {
		return cookie.Value, true
	}

	return "", false
}
