// Copyright (c) 2026 Solara. All rights reserved.
// Author: dev@solara.app

package middleware

import (
	"net/http"

	"github.com/solara-app/solara/internal/guard"
	"github.com/solara-app/solara/internal/platform/constants"
	"github.com/solara-app/solara/internal/platform/ctxutil"
)

// PageGuard enforces route-class navigation rules on page routes.
//
// Unauthenticated visitors on protected pages are sent to the login page;
// authenticated visitors on auth-only pages (login, signup) are sent to the
// dashboard. Must be mounted after Authenticate so claims are in context.
func PageGuard() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			authenticated := ctxutil.GetAuthUser(request.Context()) != nil
			class := guard.Classify(request.URL.Path)

			switch guard.Decide(class, authenticated) {
			case guard.RedirectToLogin:
				http.Redirect(writer, request, constants.PageLogin, http.StatusFound)
			case guard.RedirectToApp:
				http.Redirect(writer, request, constants.PageDashboard, http.StatusFound)
			default:
				next.ServeHTTP(writer, request)
			}
		})
	}
}
