// Copyright (c) 2026 Solara. All rights reserved.
// Author: dev@solara.app

/*
Package guard decides, per incoming request, whether a page route is served,
or the client is redirected.

Architecture:

  - Classification: Every page route is public, auth-only, or protected.
  - Decision: A pure function of (route class, token validity). No side
    effects; the middleware layer performs the actual redirect.
*/
package guard

import "github.com/solara-app/solara/internal/platform/constants"

// # Route Classification

// RouteClass categorizes a page route for the guard decision.
type RouteClass int

const (
	// Public routes are served to everyone.
	Public RouteClass = iota

	// AuthOnly routes (login, signup, reset) must NOT be visited by an
	// already-authenticated user.
	AuthOnly

	// Protected routes require a valid session token.
	Protected
)

// String returns the class name for logging.
func (c RouteClass) String() string {
	switch c {
	case AuthOnly:
		return "auth_only"
	case Protected:
		return "protected"
	default:
		return "public"
	}
}

// # Decisions

// Decision is the guard's verdict for a request.
type Decision int

const (
	// Allow passes the request through unchanged.
	Allow Decision = iota

	// RedirectToLogin sends the client to the login page.
	RedirectToLogin

	// RedirectToApp sends the client to the authenticated landing area.
	RedirectToApp
)

// Decide classifies the outcome for a request.
//
// Protected route + missing/invalid token → redirect to login.
// Auth-only route + valid token → redirect to the dashboard.
// Everything else passes through.
func Decide(class RouteClass, authenticated bool) Decision {
	switch class {
	case Protected:
		if !authenticated {
			return RedirectToLogin
		}
	case AuthOnly:
		if authenticated {
			return RedirectToApp
		}
	}
	return Allow
}

// # Page Registry

// pageClasses maps the template's page routes to their classification.
var pageClasses = map[string]RouteClass{
	constants.PageLogin:             AuthOnly,
	constants.PageSignup:            AuthOnly,
	constants.PageResetPassword:     AuthOnly,
	constants.PageEmailVerification: Public,
	constants.PageDashboard:         Protected,
}

// Classify returns the class for a page path. Unknown paths are public.
func Classify(path string) RouteClass {
	return pageClasses[path]
}
